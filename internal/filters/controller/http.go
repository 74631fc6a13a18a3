package controller

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	amw "github.com/corvusHold/outreach/internal/auth/middleware"
	domain "github.com/corvusHold/outreach/internal/filters/domain"
	"github.com/corvusHold/outreach/internal/platform/apperror"
	"github.com/corvusHold/outreach/internal/platform/envelope"
	"github.com/corvusHold/outreach/internal/platform/validation"
)

var ErrInvalidFilterID = apperror.Validation("invalid filter id")

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
	fg := g.Group("/filters", mw...)
	fg.POST("", h.create)
	fg.GET("", h.list)
	fg.GET("/:id", h.get)
	fg.PUT("/:id", h.update)
	fg.DELETE("/:id", h.delete)
}

type filterReq struct {
	FilterLabel  string          `json:"filterLabel" validate:"required"`
	FilterType   string          `json:"filterType" validate:"required,oneof=input dropdown radio checkbox range-slider"`
	FilterKey    string          `json:"filterKey" validate:"required"`
	FilterValues json.RawMessage `json:"filterValues" validate:"required"`
}

func (r filterReq) input() domain.Input {
	return domain.Input{Label: r.FilterLabel, Type: domain.Type(r.FilterType), Key: r.FilterKey, Values: r.FilterValues}
}

func bindFilter(c echo.Context) (domain.Input, error) {
	var req filterReq
	if err := c.Bind(&req); err != nil {
		return domain.Input{}, validation.BindError(err)
	}
	if err := c.Validate(&req); err != nil {
		return domain.Input{}, validation.ErrorResponse(err)
	}
	return req.input(), nil
}

func filterID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, ErrInvalidFilterID
	}
	return id, nil
}

// Create godoc
// @Summary      Create a filter
// @Tags         filters
// @Accept       json
// @Produce      json
// @Param        body  body  filterReq  true  "filterLabel/filterType/filterKey/filterValues"
// @Success      201  {object}  envelope.Response
// @Failure      400  {object}  envelope.Response
// @Failure      422  {object}  envelope.Response
// @Security     BearerAuth
// @Router       /api/v1/filters [post]
func (h *Controller) create(c echo.Context) error {
	tid, ok := amw.TenantID(c)
	if !ok {
		return amw.ErrTokenRequired
	}
	in, err := bindFilter(c)
	if err != nil {
		return err
	}
	f, err := h.svc.Create(c.Request().Context(), tid, in)
	if err != nil {
		return err
	}
	return envelope.Created(c, "filter created successfully", f)
}

// List godoc
// @Summary      List active filters
// @Tags         filters
// @Produce      json
// @Success      200  {object}  envelope.Response
// @Security     BearerAuth
// @Router       /api/v1/filters [get]
func (h *Controller) list(c echo.Context) error {
	tid, ok := amw.TenantID(c)
	if !ok {
		return amw.ErrTokenRequired
	}
	fs, err := h.svc.List(c.Request().Context(), tid)
	if err != nil {
		return err
	}
	return envelope.OK(c, "filters fetched successfully", fs)
}

// Get godoc
// @Summary      Read a filter
// @Tags         filters
// @Produce      json
// @Param        id  path  string  true  "filter id"
// @Success      200  {object}  envelope.Response
// @Failure      400  {object}  envelope.Response
// @Security     BearerAuth
// @Router       /api/v1/filters/{id} [get]
func (h *Controller) get(c echo.Context) error {
	tid, ok := amw.TenantID(c)
	if !ok {
		return amw.ErrTokenRequired
	}
	id, err := filterID(c)
	if err != nil {
		return err
	}
	f, err := h.svc.Get(c.Request().Context(), tid, id)
	if err != nil {
		return err
	}
	return envelope.OK(c, "filter fetched successfully", f)
}

// Update godoc
// @Summary      Update a filter
// @Tags         filters
// @Accept       json
// @Produce      json
// @Param        id    path  string     true  "filter id"
// @Param        body  body  filterReq  true  "filterLabel/filterType/filterKey/filterValues"
// @Success      200  {object}  envelope.Response
// @Failure      400  {object}  envelope.Response
// @Failure      422  {object}  envelope.Response
// @Security     BearerAuth
// @Router       /api/v1/filters/{id} [put]
func (h *Controller) update(c echo.Context) error {
	tid, ok := amw.TenantID(c)
	if !ok {
		return amw.ErrTokenRequired
	}
	id, err := filterID(c)
	if err != nil {
		return err
	}
	in, err := bindFilter(c)
	if err != nil {
		return err
	}
	f, err := h.svc.Update(c.Request().Context(), tid, id, in)
	if err != nil {
		return err
	}
	return envelope.OK(c, "filter updated successfully", f)
}

// Delete godoc
// @Summary      Soft-delete a filter
// @Tags         filters
// @Produce      json
// @Param        id  path  string  true  "filter id"
// @Success      200  {object}  envelope.Response
// @Failure      400  {object}  envelope.Response
// @Security     BearerAuth
// @Router       /api/v1/filters/{id} [delete]
func (h *Controller) delete(c echo.Context) error {
	tid, ok := amw.TenantID(c)
	if !ok {
		return amw.ErrTokenRequired
	}
	id, err := filterID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), tid, id); err != nil {
		return err
	}
	return envelope.OK(c, "filter deleted successfully", nil)
}
