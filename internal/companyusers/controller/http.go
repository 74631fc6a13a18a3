package controller

import (
	"github.com/labstack/echo/v4"

	amw "github.com/corvusHold/outreach/internal/auth/middleware"
	domain "github.com/corvusHold/outreach/internal/companyusers/domain"
	"github.com/corvusHold/outreach/internal/platform/apperror"
	"github.com/corvusHold/outreach/internal/platform/envelope"
	"github.com/corvusHold/outreach/internal/platform/ordered"
	"github.com/corvusHold/outreach/internal/platform/validation"
)

// uploadField is the multipart field carrying the import file.
const uploadField = "csvFile"

var ErrFileTooLarge = apperror.Validation("The uploaded file is too large")

type Controller struct {
	svc      domain.Service
	jwtMW    echo.MiddlewareFunc
	maxBytes int64
}

func New(svc domain.Service) *Controller {
	return &Controller{svc: svc}
}

// WithJWT injects a JWT middleware for these endpoints.
func (h *Controller) WithJWT(mw echo.MiddlewareFunc) *Controller { h.jwtMW = mw; return h }

// WithUploadLimit rejects uploads above n bytes. Zero disables the check.
func (h *Controller) WithUploadLimit(n int64) *Controller { h.maxBytes = n; return h }

func (h *Controller) RegisterV1(g *echo.Group) {
	var mw []echo.MiddlewareFunc
	if h.jwtMW != nil {
		mw = append(mw, h.jwtMW)
	}
	g.POST("/users/upload-csv", h.upload, mw...)

	cu := g.Group("/company-users", mw...)
	cu.GET("/possible-filter-keys", h.filterKeys)
	cu.GET("/possible-filter-values", h.filterValues)
	cu.POST("/get-filter-count", h.filterCount)
	cu.POST("/search", h.search)
	cu.GET("/all", h.list)
}

// Upload godoc
// @Summary      Import company users
// @Description  Imports a .csv or .xlsx file; the first row names the fields.
// @Tags         users
// @Accept       multipart/form-data
// @Produce      json
// @Param        csvFile  formData  file  true  "file to import"
// @Success      201  {object}  envelope.Response
// @Failure      400  {object}  envelope.Response
// @Failure      422  {object}  envelope.Response
// @Security     BearerAuth
// @Router       /api/v1/users/upload-csv [post]
func (h *Controller) upload(c echo.Context) error {
	tid, ok := amw.TenantID(c)
	if !ok {
		return amw.ErrTokenRequired
	}
	fh, err := c.FormFile(uploadField)
	if err != nil {
		return domain.ErrNoFile
	}
	if h.maxBytes > 0 && fh.Size > h.maxBytes {
		return ErrFileTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	n, err := h.svc.Import(c.Request().Context(), tid, fh.Filename, f)
	if err != nil {
		return err
	}
	return envelope.Created(c, "file processed successfully", map[string]int64{"imported": n})
}

// Filter Keys godoc
// @Summary      Suggest filter keys
// @Description  Field names shared by a random sample of the tenant's records.
// @Tags         company-users
// @Produce      json
// @Success      200  {object}  envelope.Response
// @Security     BearerAuth
// @Router       /api/v1/company-users/possible-filter-keys [get]
func (h *Controller) filterKeys(c echo.Context) error {
	tid, ok := amw.TenantID(c)
	if !ok {
		return amw.ErrTokenRequired
	}
	keys, err := h.svc.DiscoverFilterKeys(c.Request().Context(), tid)
	if err != nil {
		return err
	}
	return envelope.OK(c, "filter keys fetched successfully", keys)
}

type filterValuesReq struct {
	Key string `json:"key" query:"key" validate:"required"`
}

// Filter Values godoc
// @Summary      Distinct values of a field
// @Tags         company-users
// @Produce      json
// @Param        key  query  string  true  "field name"
// @Success      200  {object}  envelope.Response
// @Failure      422  {object}  envelope.Response
// @Security     BearerAuth
// @Router       /api/v1/company-users/possible-filter-values [get]
func (h *Controller) filterValues(c echo.Context) error {
	tid, ok := amw.TenantID(c)
	if !ok {
		return amw.ErrTokenRequired
	}
	var req filterValuesReq
	if err := c.Bind(&req); err != nil {
		return validation.BindError(err)
	}
	if err := c.Validate(&req); err != nil {
		return validation.ErrorResponse(err)
	}
	vals, err := h.svc.DiscoverFilterValues(c.Request().Context(), tid, req.Key)
	if err != nil {
		return err
	}
	return envelope.OK(c, "filter values fetched successfully", vals)
}

type filterCountReq struct {
	Filters *ordered.Map `json:"filters" validate:"required"`
}

// Filter Count godoc
// @Summary      Count matches per filter key
// @Description  Each key is counted on its own; the counts are not combined.
// @Tags         company-users
// @Accept       json
// @Produce      json
// @Param        body  body  filterCountReq  true  "filters"
// @Success      200  {object}  envelope.Response
// @Failure      422  {object}  envelope.Response
// @Security     BearerAuth
// @Router       /api/v1/company-users/get-filter-count [post]
func (h *Controller) filterCount(c echo.Context) error {
	tid, ok := amw.TenantID(c)
	if !ok {
		return amw.ErrTokenRequired
	}
	var req filterCountReq
	if err := c.Bind(&req); err != nil {
		return validation.BindError(err)
	}
	if err := c.Validate(&req); err != nil {
		return validation.ErrorResponse(err)
	}
	counts, err := h.svc.CountMatches(c.Request().Context(), tid, domain.NewCriteria(req.Filters))
	if err != nil {
		return err
	}
	return envelope.OK(c, "filter count fetched successfully", counts)
}

type searchReq struct {
	SearchString string   `json:"searchString"`
	SearchFields []string `json:"searchFields" validate:"required,min=1,dive,required"`
}

// Search godoc
// @Summary      Prefix search
// @Description  Case-insensitive prefix match on any of the given fields, at most 10 records.
// @Tags         company-users
// @Accept       json
// @Produce      json
// @Param        body  body  searchReq  true  "searchString/searchFields"
// @Success      200  {object}  envelope.Response
// @Failure      422  {object}  envelope.Response
// @Security     BearerAuth
// @Router       /api/v1/company-users/search [post]
func (h *Controller) search(c echo.Context) error {
	tid, ok := amw.TenantID(c)
	if !ok {
		return amw.ErrTokenRequired
	}
	var req searchReq
	if err := c.Bind(&req); err != nil {
		return validation.BindError(err)
	}
	if err := c.Validate(&req); err != nil {
		return validation.ErrorResponse(err)
	}
	users, err := h.svc.PrefixSearch(c.Request().Context(), tid, req.SearchString, req.SearchFields)
	if err != nil {
		return err
	}
	return envelope.OK(c, "search results fetched successfully", users)
}

type listReq struct {
	PageNumber int `json:"pageNumber" query:"pageNumber" validate:"omitempty,min=1"`
	PageSize   int `json:"pageSize" query:"pageSize" validate:"omitempty,min=1,max=100"`
}

// List godoc
// @Summary      List company users
// @Tags         company-users
// @Produce      json
// @Param        pageNumber  query  int  false  "1-based page, default 1"
// @Param        pageSize    query  int  false  "page size, default 10"
// @Success      200  {object}  envelope.Response
// @Failure      422  {object}  envelope.Response
// @Security     BearerAuth
// @Router       /api/v1/company-users/all [get]
func (h *Controller) list(c echo.Context) error {
	tid, ok := amw.TenantID(c)
	if !ok {
		return amw.ErrTokenRequired
	}
	var req listReq
	if err := c.Bind(&req); err != nil {
		return validation.BindError(err)
	}
	if err := c.Validate(&req); err != nil {
		return validation.ErrorResponse(err)
	}
	users, err := h.svc.List(c.Request().Context(), tid, domain.Page{Number: req.PageNumber, Size: req.PageSize})
	if err != nil {
		return err
	}
	return envelope.OK(c, "company users fetched successfully", users)
}
