package controller

import (
	"time"

	"github.com/labstack/echo/v4"

	domain "github.com/corvusHold/outreach/internal/auth/domain"
	amw "github.com/corvusHold/outreach/internal/auth/middleware"
	"github.com/corvusHold/outreach/internal/platform/envelope"
	"github.com/corvusHold/outreach/internal/platform/ratelimit"
	"github.com/corvusHold/outreach/internal/platform/validation"
	sdomain "github.com/corvusHold/outreach/internal/settings/domain"
)

type Controller struct {
	svc domain.Service
	// optional dependencies
	settings sdomain.Service
	rl       ratelimit.Store
	jwtMW    echo.MiddlewareFunc
}

func New(svc domain.Service) *Controller {
	return &Controller{svc: svc}
}

// WithRateLimit enables store-backed rate limiting with settings overrides.
func (h *Controller) WithRateLimit(settings sdomain.Service, store ratelimit.Store) *Controller {
	h.settings = settings
	h.rl = store
	return h
}

// WithJWT injects a JWT middleware for the authenticated endpoints.
func (h *Controller) WithJWT(mw echo.MiddlewareFunc) *Controller { h.jwtMW = mw; return h }

// RegisterV1 mounts /auth/* and /users/me on the /api/v1 group.
func (h *Controller) RegisterV1(g *echo.Group) {
	// Auth endpoints run before a tenant is known, so overrides come from global settings.
	mkPolicy := func(prefix, limKey, winKey string, defLim int, defWin time.Duration) ratelimit.Policy {
		p := ratelimit.Policy{Name: prefix, Window: defWin, Limit: defLim, Key: ratelimit.KeyEmailOrIP(prefix)}
		if h.settings != nil {
			p.WindowFunc = func(c echo.Context) time.Duration {
				d, _ := h.settings.GetDuration(c.Request().Context(), winKey, nil, defWin)
				return d
			}
			p.LimitFunc = func(c echo.Context) int {
				n, _ := h.settings.GetInt(c.Request().Context(), limKey, nil, defLim)
				return n
			}
		}
		return p
	}

	rlRegister := ratelimit.Middleware(mkPolicy("auth:register", sdomain.KeyRLRegisterLimit, sdomain.KeyRLRegisterWindow, 5, time.Minute), h.rl)
	rlLogin := ratelimit.Middleware(mkPolicy("auth:login", sdomain.KeyRLLoginLimit, sdomain.KeyRLLoginWindow, 10, time.Minute), h.rl)

	g.POST("/auth/register", h.register, rlRegister)
	g.POST("/auth/login", h.login, rlLogin)

	var meMW []echo.MiddlewareFunc
	if h.jwtMW != nil {
		meMW = append(meMW, h.jwtMW)
	}
	g.GET("/users/me", h.me, meMW...)
}

type companyReq struct {
	Name string `json:"name" validate:"required"`
}

type registerReq struct {
	Company      companyReq `json:"company"`
	EmailAddress string     `json:"emailAddress" validate:"required,email"`
	Password     string     `json:"password" validate:"required,min=8"`
	FirstName    string     `json:"firstName" validate:"required"`
	LastName     string     `json:"lastName" validate:"required"`
}

type loginReq struct {
	EmailAddress string `json:"emailAddress" validate:"required,email"`
	Password     string `json:"password" validate:"required"`
}

// Register godoc
// @Summary      Register a company and its first operator
// @Description  Creates the company (tenant) and the account, and returns an access token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  registerReq  true  "company, emailAddress, password, firstName, lastName"
// @Success      201   {object}  envelope.Response
// @Failure      400   {object}  envelope.Response
// @Failure      422   {object}  envelope.Response
// @Failure      429   {object}  envelope.Response
// @Router       /api/v1/auth/register [post]
func (h *Controller) register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return validation.BindError(err)
	}
	if err := c.Validate(&req); err != nil {
		return validation.ErrorResponse(err)
	}
	sess, err := h.svc.Register(c.Request().Context(), domain.RegisterInput{
		CompanyName:  req.Company.Name,
		EmailAddress: req.EmailAddress,
		Password:     req.Password,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
	})
	if err != nil {
		return err
	}
	return envelope.Created(c, "user registered successfully", sess)
}

// Login godoc
// @Summary      Password login
// @Description  Logs in with email/password. Repeated failures flag the account as locked.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  loginReq  true  "emailAddress/password"
// @Success      200   {object}  envelope.Response
// @Failure      400   {object}  envelope.Response
// @Failure      403   {object}  envelope.Response
// @Failure      429   {object}  envelope.Response
// @Router       /api/v1/auth/login [post]
func (h *Controller) login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return validation.BindError(err)
	}
	if err := c.Validate(&req); err != nil {
		return validation.ErrorResponse(err)
	}
	sess, err := h.svc.Login(c.Request().Context(), domain.LoginInput{
		EmailAddress: req.EmailAddress,
		Password:     req.Password,
		IP:           c.RealIP(),
		UserAgent:    c.Request().UserAgent(),
	})
	if err != nil {
		return err
	}
	return envelope.OK(c, "user logged in successfully", sess)
}

// Me godoc
// @Summary      Current account
// @Tags         users
// @Produce      json
// @Success      200  {object}  envelope.Response
// @Failure      401  {object}  envelope.Response
// @Security     BearerAuth
// @Router       /api/v1/users/me [get]
func (h *Controller) me(c echo.Context) error {
	uid, ok := amw.UserID(c)
	if !ok {
		return amw.ErrTokenRequired
	}
	p, err := h.svc.Me(c.Request().Context(), uid)
	if err != nil {
		return err
	}
	return envelope.OK(c, "user fetched successfully", p)
}
