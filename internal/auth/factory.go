package auth

import (
	"github.com/labstack/echo/v4"

	"github.com/corvusHold/outreach/internal/app"
	ctrl "github.com/corvusHold/outreach/internal/auth/controller"
	repo "github.com/corvusHold/outreach/internal/auth/repository"
	svc "github.com/corvusHold/outreach/internal/auth/service"
	trepo "github.com/corvusHold/outreach/internal/tenants/repository"
	tsvc "github.com/corvusHold/outreach/internal/tenants/service"
)

// RegisterV1 wires the auth module and registers HTTP routes under /api/v1.
func RegisterV1(g *echo.Group, c *app.Container) {
	s := svc.New(repo.New(c.DB), tsvc.New(trepo.New(c.DB)), c.Cfg)
	s.SetLogger(c.Logger("auth"))
	s.SetPublisher(c.Publisher)
	ctrl.New(s).WithRateLimit(c.Settings, c.RateLimit).WithJWT(c.JWT).RegisterV1(g)
}
