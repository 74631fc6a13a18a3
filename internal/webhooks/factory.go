package webhooks

import (
	"github.com/labstack/echo/v4"

	"github.com/corvusHold/outreach/internal/app"
	irepo "github.com/corvusHold/outreach/internal/interactions/repository"
	ctrl "github.com/corvusHold/outreach/internal/webhooks/controller"
	svc "github.com/corvusHold/outreach/internal/webhooks/service"
)

// RegisterV1 wires the delivery event recorder and registers HTTP routes under /api/v1.
func RegisterV1(g *echo.Group, c *app.Container) {
	s := svc.New(irepo.NewStats(c.DB), c.Cfg)
	s.SetLogger(c.Logger("webhooks"))
	ctrl.New(s).RegisterV1(g)
}
