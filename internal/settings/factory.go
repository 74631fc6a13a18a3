package settings

import (
	"github.com/labstack/echo/v4"

	"github.com/corvusHold/outreach/internal/app"
	ctrl "github.com/corvusHold/outreach/internal/settings/controller"
)

// RegisterV1 wires the settings module and registers HTTP routes under /api/v1.
func RegisterV1(g *echo.Group, c *app.Container) {
	h := ctrl.New(c.SettingsRepo, c.Settings, c.Cfg)
	h.WithJWT(c.JWT).WithRateLimit(c.RateLimit).WithPublisher(c.Publisher)
	h.RegisterV1(g)
}
