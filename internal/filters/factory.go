package filters

import (
	"github.com/labstack/echo/v4"

	"github.com/corvusHold/outreach/internal/app"
	ctrl "github.com/corvusHold/outreach/internal/filters/controller"
	repo "github.com/corvusHold/outreach/internal/filters/repository"
	svc "github.com/corvusHold/outreach/internal/filters/service"
)

// RegisterV1 wires the filters module and registers HTTP routes under /api/v1.
func RegisterV1(g *echo.Group, c *app.Container) {
	ctrl.New(svc.New(repo.New(c.DB))).WithJWT(c.JWT).RegisterV1(g)
}
