package interactions

import (
	"github.com/labstack/echo/v4"

	"github.com/corvusHold/outreach/internal/app"
	"github.com/corvusHold/outreach/internal/companyusers"
	"github.com/corvusHold/outreach/internal/configurations"
	ctrl "github.com/corvusHold/outreach/internal/interactions/controller"
	repo "github.com/corvusHold/outreach/internal/interactions/repository"
	svc "github.com/corvusHold/outreach/internal/interactions/service"
	"github.com/corvusHold/outreach/internal/templating"
)

// RegisterV1 wires the bulk interaction orchestrator and registers HTTP routes under /api/v1.
func RegisterV1(g *echo.Group, c *app.Container) {
	users := companyusers.NewService(c)
	s := svc.New(svc.Deps{
		Recipients: users,
		Senders:    configurations.NewService(c),
		Renderer:   templating.NewEngine(users),
		Email:      c.Email,
		Dispatcher: c.Dispatcher,
		Stats:      repo.NewStats(c.DB),
		Settings:   c.Settings,
	}, c.Cfg)
	s.SetLogger(c.Logger("interactions"))
	s.SetPublisher(c.Publisher)
	ctrl.New(s).WithJWT(c.JWT).WithRateLimit(c.Settings, c.RateLimit).RegisterV1(g)
}
