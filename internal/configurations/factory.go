package configurations

import (
	"github.com/labstack/echo/v4"

	"github.com/corvusHold/outreach/internal/app"
	ctrl "github.com/corvusHold/outreach/internal/configurations/controller"
	repo "github.com/corvusHold/outreach/internal/configurations/repository"
	svc "github.com/corvusHold/outreach/internal/configurations/service"
)

// NewService builds the configuration store service; the interactions module shares it.
func NewService(c *app.Container) *svc.Service {
	s := svc.New(repo.New(c.DB), c.Identities, c.Dispatcher)
	s.SetLogger(c.Logger("configurations"))
	s.SetPublisher(c.Publisher)
	return s
}

// RegisterV1 wires the configurations module and registers HTTP routes under /api/v1.
func RegisterV1(g *echo.Group, c *app.Container) {
	ctrl.New(NewService(c)).WithJWT(c.JWT).RegisterV1(g)
}
