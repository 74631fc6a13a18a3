package controller

import (
	"time"

	"github.com/labstack/echo/v4"

	amw "github.com/corvusHold/outreach/internal/auth/middleware"
	domain "github.com/corvusHold/outreach/internal/interactions/domain"
	"github.com/corvusHold/outreach/internal/platform/envelope"
	"github.com/corvusHold/outreach/internal/platform/ordered"
	rl "github.com/corvusHold/outreach/internal/platform/ratelimit"
	"github.com/corvusHold/outreach/internal/platform/validation"
	sdomain "github.com/corvusHold/outreach/internal/settings/domain"
)

const (
	defaultInteractLimit  = 5
	defaultInteractWindow = time.Minute
)

type Controller struct {
	svc      domain.Service
	jwtMW    echo.MiddlewareFunc
	settings sdomain.Service
	rlStore  rl.Store
}

func New(svc domain.Service) *Controller {
	return &Controller{svc: svc}
}

// WithJWT injects a JWT middleware for these endpoints.
func (h *Controller) WithJWT(mw echo.MiddlewareFunc) *Controller { h.jwtMW = mw; return h }

// WithRateLimit limits bulk sends per tenant; settings may override the defaults.
func (h *Controller) WithRateLimit(settings sdomain.Service, store rl.Store) *Controller {
	h.settings = settings
	h.rlStore = store
	return h
}

// RegisterV1 mounts POST /company-users/interact on the /api/v1 group.
func (h *Controller) RegisterV1(g *echo.Group) {
	var mw []echo.MiddlewareFunc
	if h.jwtMW != nil {
		mw = append(mw, h.jwtMW)
	}
	if h.rlStore != nil {
		mw = append(mw, rl.Middleware(h.policy(), h.rlStore))
	}
	g.POST("/company-users/interact", h.interact, mw...)
}

func (h *Controller) policy() rl.Policy {
	const name = "interactions:interact"
	p := rl.Policy{
		Name:   name,
		Window: defaultInteractWindow,
		Limit:  defaultInteractLimit,
		Key: func(c echo.Context) string {
			tid, _ := amw.TenantID(c)
			return name + ":ten:" + tid.String()
		},
	}
	if h.settings == nil {
		return p
	}
	p.WindowFunc = func(c echo.Context) time.Duration {
		tid, ok := amw.TenantID(c)
		if !ok {
			return defaultInteractWindow
		}
		d, _ := h.settings.GetDuration(c.Request().Context(), sdomain.KeyRLInteractWindow, &tid, defaultInteractWindow)
		return d
	}
	p.LimitFunc = func(c echo.Context) int {
		tid, ok := amw.TenantID(c)
		if !ok {
			return defaultInteractLimit
		}
		n, _ := h.settings.GetInt(c.Request().Context(), sdomain.KeyRLInteractLimit, &tid, defaultInteractLimit)
		return n
	}
	return p
}

type formatReq struct {
	Subject string `json:"subject" validate:"required"`
	Content string `json:"content" validate:"required"`
}

type interactReq struct {
	Filters            *ordered.Map `json:"filters"`
	Channel            string       `json:"channel" validate:"required"`
	Format             formatReq    `json:"format"`
	SourceEmailAddress string       `json:"sourceEmailAddress" validate:"required,email"`
}

// Interact godoc
// @Summary      Bulk interaction
// @Description  Sends the personalized email to every company user matching the filters.
// @Description  Each "#field" in the content is replaced with the recipient's value.
// @Tags         company-users
// @Accept       json
// @Produce      json
// @Param        body  body  interactReq  true  "filters, channel, format, sourceEmailAddress"
// @Success      200  {object}  envelope.Response
// @Failure      400  {object}  envelope.Response
// @Failure      422  {object}  envelope.Response
// @Failure      429  {object}  envelope.Response
// @Security     BearerAuth
// @Router       /api/v1/company-users/interact [post]
func (h *Controller) interact(c echo.Context) error {
	tid, ok := amw.TenantID(c)
	if !ok {
		return amw.ErrTokenRequired
	}
	uid, _ := amw.UserID(c)
	var req interactReq
	if err := c.Bind(&req); err != nil {
		return validation.BindError(err)
	}
	if err := c.Validate(&req); err != nil {
		return validation.ErrorResponse(err)
	}
	sum, err := h.svc.Interact(c.Request().Context(), tid, uid, domain.Request{
		Filters:            req.Filters,
		Channel:            req.Channel,
		Format:             domain.Format{Subject: req.Format.Subject, Content: req.Format.Content},
		SourceEmailAddress: req.SourceEmailAddress,
	})
	if err != nil {
		return err
	}
	return envelope.OK(c, "Interaction completed successfully", sum)
}
