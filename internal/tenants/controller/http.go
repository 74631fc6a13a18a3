package controller

import (
	"github.com/labstack/echo/v4"

	amw "github.com/corvusHold/outreach/internal/auth/middleware"
	"github.com/corvusHold/outreach/internal/platform/envelope"
	domain "github.com/corvusHold/outreach/internal/tenants/domain"
)

type Controller struct {
	svc   domain.Service
	jwtMW echo.MiddlewareFunc
}

func New(svc domain.Service) *Controller {
	return &Controller{svc: svc}
}

// WithJWT injects a JWT middleware for these endpoints.
func (h *Controller) WithJWT(mw echo.MiddlewareFunc) *Controller { h.jwtMW = mw; return h }

func (h *Controller) RegisterV1(g *echo.Group) {
	var mw []echo.MiddlewareFunc
	if h.jwtMW != nil {
		mw = append(mw, h.jwtMW)
	}
	g.GET("/company", h.getCompany, mw...)
}

// Get Company godoc
// @Summary      Get the caller's company
// @Tags         company
// @Produce      json
// @Success      200  {object}  envelope.Response
// @Failure      401  {object}  envelope.Response
// @Failure      404  {object}  envelope.Response
// @Security     BearerAuth
// @Router       /api/v1/company [get]
func (h *Controller) getCompany(c echo.Context) error {
	tid, ok := amw.TenantID(c)
	if !ok {
		return amw.ErrTokenRequired
	}
	company, err := h.svc.GetByID(c.Request().Context(), tid)
	if err != nil {
		return err
	}
	return envelope.OK(c, "company fetched successfully", company)
}
