package controller

import (
	"github.com/labstack/echo/v4"

	amw "github.com/corvusHold/outreach/internal/auth/middleware"
	domain "github.com/corvusHold/outreach/internal/configurations/domain"
	"github.com/corvusHold/outreach/internal/platform/envelope"
	"github.com/corvusHold/outreach/internal/platform/validation"
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
	cg := g.Group("/configuration", mw...)
	cg.POST("", h.create)
	cg.GET("", h.read)
	cg.POST("/email/address", h.registerAddress)
	cg.POST("/email/address/verify", h.verifyAddress)
	cg.POST("/email/domain", h.registerDomain)
	cg.POST("/email/domain/verify", h.verifyDomain)
	cg.GET("/email/verified-addresses", h.verifiedAddresses)
	cg.DELETE("/email-address/:emailAddress", h.deleteAddress)
	cg.DELETE("/email-domain/:emailDomain", h.deleteDomain)
	cg.POST("/email-domain/email-address", h.attach)
}

// bind decodes and validates a request body into dst.
func bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return validation.BindError(err)
	}
	if err := c.Validate(dst); err != nil {
		return validation.ErrorResponse(err)
	}
	return nil
}

type createReq struct {
	EmailAddresses []string `json:"emailAddresses" validate:"dive,required,email"`
	EmailDomains   []string `json:"emailDomains" validate:"dive,required,fqdn"`
}

// Create godoc
// @Summary      Create the tenant configuration in one call
// @Tags         configuration
// @Accept       json
// @Produce      json
// @Param        body  body  createReq  true  "emailAddresses/emailDomains"
// @Success      201  {object}  envelope.Response
// @Failure      400  {object}  envelope.Response
// @Failure      422  {object}  envelope.Response
// @Security     BearerAuth
// @Router       /api/v1/configuration [post]
func (h *Controller) create(c echo.Context) error {
	tid, ok := amw.TenantID(c)
	if !ok {
		return amw.ErrTokenRequired
	}
	var req createReq
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.svc.Create(c.Request().Context(), tid, req.EmailAddresses, req.EmailDomains); err != nil {
		return err
	}
	return envelope.Created(c, "configuration created successfully", nil)
}

// Read godoc
// @Summary      Read the tenant configuration
// @Description  Refreshes verification flags from the provider and returns active entries.
// @Tags         configuration
// @Produce      json
// @Success      200  {object}  envelope.Response
// @Failure      404  {object}  envelope.Response
// @Security     BearerAuth
// @Router       /api/v1/configuration [get]
func (h *Controller) read(c echo.Context) error {
	tid, ok := amw.TenantID(c)
	if !ok {
		return amw.ErrTokenRequired
	}
	cfg, err := h.svc.Read(c.Request().Context(), tid)
	if err != nil {
		return err
	}
	return envelope.OK(c, "configuration fetched successfully", cfg)
}

type addressReq struct {
	EmailAddress string `json:"emailAddress" validate:"required,email"`
}

// Register Address godoc
// @Summary      Register a sender address
// @Description  Stores the address as the new default and asks the provider to send a verification email.
// @Tags         configuration
// @Accept       json
// @Produce      json
// @Param        body  body  addressReq  true  "emailAddress"
// @Success      200  {object}  envelope.Response
// @Failure      400  {object}  envelope.Response
// @Security     BearerAuth
// @Router       /api/v1/configuration/email/address [post]
func (h *Controller) registerAddress(c echo.Context) error {
	tid, ok := amw.TenantID(c)
	if !ok {
		return amw.ErrTokenRequired
	}
	var req addressReq
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.svc.RegisterAddress(c.Request().Context(), tid, req.EmailAddress); err != nil {
		return err
	}
	return envelope.OK(c, "verification email sent", nil)
}

// Verify Address godoc
// @Summary      Check that the provider verified an address
// @Tags         configuration
// @Accept       json
// @Produce      json
// @Param        body  body  addressReq  true  "emailAddress"
// @Success      200  {object}  envelope.Response
// @Failure      400  {object}  envelope.Response
// @Security     BearerAuth
// @Router       /api/v1/configuration/email/address/verify [post]
func (h *Controller) verifyAddress(c echo.Context) error {
	var req addressReq
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.svc.VerifyAddress(c.Request().Context(), req.EmailAddress); err != nil {
		return err
	}
	return envelope.OK(c, "email address verified", nil)
}

type domainReq struct {
	EmailDomain string `json:"emailDomain" validate:"required,fqdn"`
}

// Register Domain godoc
// @Summary      Register a sending domain
// @Description  Returns the DNS TXT record to publish.
// @Tags         configuration
// @Accept       json
// @Produce      json
// @Param        body  body  domainReq  true  "emailDomain"
// @Success      200  {object}  envelope.Response
// @Failure      400  {object}  envelope.Response
// @Security     BearerAuth
// @Router       /api/v1/configuration/email/domain [post]
func (h *Controller) registerDomain(c echo.Context) error {
	tid, ok := amw.TenantID(c)
	if !ok {
		return amw.ErrTokenRequired
	}
	var req domainReq
	if err := bind(c, &req); err != nil {
		return err
	}
	rec, err := h.svc.RegisterDomain(c.Request().Context(), tid, req.EmailDomain)
	if err != nil {
		return err
	}
	return envelope.OK(c, "domain verification initiated", rec)
}

// Verify Domain godoc
// @Summary      Check that the provider verified a domain
// @Tags         configuration
// @Accept       json
// @Produce      json
// @Param        body  body  domainReq  true  "emailDomain"
// @Success      200  {object}  envelope.Response
// @Failure      400  {object}  envelope.Response
// @Security     BearerAuth
// @Router       /api/v1/configuration/email/domain/verify [post]
func (h *Controller) verifyDomain(c echo.Context) error {
	var req domainReq
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.svc.VerifyDomain(c.Request().Context(), req.EmailDomain); err != nil {
		return err
	}
	return envelope.OK(c, "domain verified", nil)
}

// Verified Addresses godoc
// @Summary      Addresses usable as a sender
// @Tags         configuration
// @Produce      json
// @Success      200  {object}  envelope.Response
// @Security     BearerAuth
// @Router       /api/v1/configuration/email/verified-addresses [get]
func (h *Controller) verifiedAddresses(c echo.Context) error {
	tid, ok := amw.TenantID(c)
	if !ok {
		return amw.ErrTokenRequired
	}
	out, err := h.svc.ListVerifiedAddresses(c.Request().Context(), tid)
	if err != nil {
		return err
	}
	return envelope.OK(c, "verified email addresses fetched successfully", out)
}

type deleteAddressReq struct {
	EmailAddress string `json:"emailAddress" param:"emailAddress" validate:"required,email"`
}

// Delete Address godoc
// @Summary      Soft-delete a sender address
// @Tags         configuration
// @Produce      json
// @Param        emailAddress  path  string  true  "address"
// @Success      200  {object}  envelope.Response
// @Failure      400  {object}  envelope.Response
// @Security     BearerAuth
// @Router       /api/v1/configuration/email-address/{emailAddress} [delete]
func (h *Controller) deleteAddress(c echo.Context) error {
	tid, ok := amw.TenantID(c)
	if !ok {
		return amw.ErrTokenRequired
	}
	var req deleteAddressReq
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.svc.DeleteAddress(c.Request().Context(), tid, req.EmailAddress); err != nil {
		return err
	}
	return envelope.OK(c, "email address deleted", nil)
}

type deleteDomainReq struct {
	EmailDomain string `json:"emailDomain" param:"emailDomain" validate:"required"`
}

// Delete Domain godoc
// @Summary      Soft-delete a sending domain
// @Tags         configuration
// @Produce      json
// @Param        emailDomain  path  string  true  "domain"
// @Success      200  {object}  envelope.Response
// @Failure      400  {object}  envelope.Response
// @Security     BearerAuth
// @Router       /api/v1/configuration/email-domain/{emailDomain} [delete]
func (h *Controller) deleteDomain(c echo.Context) error {
	tid, ok := amw.TenantID(c)
	if !ok {
		return amw.ErrTokenRequired
	}
	var req deleteDomainReq
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.svc.DeleteDomain(c.Request().Context(), tid, req.EmailDomain); err != nil {
		return err
	}
	return envelope.OK(c, "domain deleted", nil)
}

type attachReq struct {
	EmailDomain  string `json:"emailDomain" validate:"required"`
	EmailAddress string `json:"emailAddress" validate:"required,email"`
}

// Attach Address godoc
// @Summary      Add a sender address under a domain
// @Tags         configuration
// @Accept       json
// @Produce      json
// @Param        body  body  attachReq  true  "emailDomain/emailAddress"
// @Success      200  {object}  envelope.Response
// @Failure      400  {object}  envelope.Response
// @Security     BearerAuth
// @Router       /api/v1/configuration/email-domain/email-address [post]
func (h *Controller) attach(c echo.Context) error {
	tid, ok := amw.TenantID(c)
	if !ok {
		return amw.ErrTokenRequired
	}
	var req attachReq
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.svc.AttachAddressToDomain(c.Request().Context(), tid, req.EmailDomain, req.EmailAddress); err != nil {
		return err
	}
	return envelope.OK(c, "email address added to domain", nil)
}
