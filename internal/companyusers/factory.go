package companyusers

import (
	"github.com/labstack/echo/v4"

	"github.com/corvusHold/outreach/internal/app"
	ctrl "github.com/corvusHold/outreach/internal/companyusers/controller"
	repo "github.com/corvusHold/outreach/internal/companyusers/repository"
	svc "github.com/corvusHold/outreach/internal/companyusers/service"
)

// NewService builds the registry service; the interactions module shares it.
func NewService(c *app.Container) *svc.Service {
	s := svc.New(repo.New(c.DB))
	s.SetLogger(c.Logger("company_users"))
	return s
}

// RegisterV1 wires the company users module and registers HTTP routes under /api/v1.
func RegisterV1(g *echo.Group, c *app.Container) {
	ctrl.New(NewService(c)).WithJWT(c.JWT).WithUploadLimit(c.Cfg.UploadMaxBytes).RegisterV1(g)
}
