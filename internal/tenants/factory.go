package tenants

import (
	"github.com/labstack/echo/v4"

	"github.com/corvusHold/outreach/internal/app"
	ctrl "github.com/corvusHold/outreach/internal/tenants/controller"
	repo "github.com/corvusHold/outreach/internal/tenants/repository"
	svc "github.com/corvusHold/outreach/internal/tenants/service"
)

// RegisterV1 wires the tenants module and registers HTTP routes under /api/v1.
func RegisterV1(g *echo.Group, c *app.Container) {
	s := svc.New(repo.New(c.DB))
	ctrl.New(s).WithJWT(c.JWT).RegisterV1(g)
}
