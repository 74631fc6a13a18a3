package controller

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	amw "github.com/corvusHold/outreach/internal/auth/middleware"
	"github.com/corvusHold/outreach/internal/config"
	evdomain "github.com/corvusHold/outreach/internal/events/domain"
	"github.com/corvusHold/outreach/internal/platform/apperror"
	"github.com/corvusHold/outreach/internal/platform/envelope"
	rl "github.com/corvusHold/outreach/internal/platform/ratelimit"
	"github.com/corvusHold/outreach/internal/platform/validation"
	sdomain "github.com/corvusHold/outreach/internal/settings/domain"
)

// Controller exposes tenant-scoped settings for the sending stack. Only whitelisted keys
// are readable and writable.
type Controller struct {
	repo    sdomain.Repository
	service sdomain.Service
	cfg     config.Config

	jwtMW   echo.MiddlewareFunc
	rlStore rl.Store
	pub     evdomain.Publisher
}

func New(repo sdomain.Repository, service sdomain.Service, cfg config.Config) *Controller {
	return &Controller{repo: repo, service: service, cfg: cfg}
}

// WithJWT injects a JWT middleware for these endpoints.
func (h *Controller) WithJWT(mw echo.MiddlewareFunc) *Controller { h.jwtMW = mw; return h }

// WithRateLimit injects a shared Store for distributed rate limiting.
func (h *Controller) WithRateLimit(store rl.Store) *Controller { h.rlStore = store; return h }

// WithPublisher injects an audit event publisher.
func (h *Controller) WithPublisher(p evdomain.Publisher) *Controller { h.pub = p; return h }

// RegisterV1 mounts GET/PUT /settings on the /api/v1 group.
func (h *Controller) RegisterV1(g *echo.Group) {
	mkKey := func(prefix string) func(echo.Context) string {
		return func(c echo.Context) string {
			tid, _ := amw.TenantID(c)
			return prefix + ":ten:" + tid.String()
		}
	}
	tenantDuration := func(key string, def time.Duration) func(echo.Context) time.Duration {
		return func(c echo.Context) time.Duration {
			tid, ok := amw.TenantID(c)
			if !ok {
				return def
			}
			d, _ := h.service.GetDuration(c.Request().Context(), key, &tid, def)
			return d
		}
	}
	tenantInt := func(key string, def int) func(echo.Context) int {
		return func(c echo.Context) int {
			tid, ok := amw.TenantID(c)
			if !ok {
				return def
			}
			n, _ := h.service.GetInt(c.Request().Context(), key, &tid, def)
			return n
		}
	}

	getPolicy := rl.Policy{
		Name: "settings:get", Window: time.Minute, Limit: 60, Key: mkKey("settings:get"),
		WindowFunc: tenantDuration(sdomain.KeyRLSettingsGetWindow, time.Minute),
		LimitFunc:  tenantInt(sdomain.KeyRLSettingsGetLimit, 60),
	}
	putPolicy := rl.Policy{
		Name: "settings:put", Window: time.Minute, Limit: 10, Key: mkKey("settings:put"),
		WindowFunc: tenantDuration(sdomain.KeyRLSettingsPutWindow, time.Minute),
		LimitFunc:  tenantInt(sdomain.KeyRLSettingsPutLimit, 10),
	}

	var getMW, putMW []echo.MiddlewareFunc
	if h.jwtMW != nil {
		getMW = append(getMW, h.jwtMW)
		putMW = append(putMW, h.jwtMW)
	}
	getMW = append(getMW, rl.Middleware(getPolicy, h.rlStore))
	putMW = append(putMW, rl.Middleware(putPolicy, h.rlStore))

	g.GET("/settings", h.getSettings, getMW...)
	g.PUT("/settings", h.putSettings, putMW...)
}

type settingsResponse struct {
	EmailProvider     string `json:"emailProvider"`
	EmailDispatchMode string `json:"emailDispatchMode"`
	BulkConcurrency   int    `json:"bulkConcurrency"`
	SMTPHost          string `json:"smtpHost"`
	SMTPPort          int    `json:"smtpPort"`
	SMTPUsername      string `json:"smtpUsername"`
	SMTPPassword      string `json:"smtpPassword,omitempty"` // masked
	BrevoAPIKey       string `json:"brevoApiKey,omitempty"`  // masked
}

type putSettingsRequest struct {
	EmailProvider     *string `json:"emailProvider" validate:"omitempty,oneof=ses smtp brevo"`
	EmailDispatchMode *string `json:"emailDispatchMode" validate:"omitempty,oneof=async sync"`
	BulkConcurrency   *int    `json:"bulkConcurrency" validate:"omitempty,min=1,max=128"`
	SMTPHost          *string `json:"smtpHost" validate:"omitempty,hostname|ip"`
	SMTPPort          *int    `json:"smtpPort" validate:"omitempty,min=1,max=65535"`
	SMTPUsername      *string `json:"smtpUsername"`
	SMTPPassword      *string `json:"smtpPassword"`
	BrevoAPIKey       *string `json:"brevoApiKey"`
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}

// Get Settings godoc
// @Summary      Get tenant sending settings
// @Tags         settings
// @Produce      json
// @Success      200  {object}  envelope.Response
// @Failure      401  {object}  envelope.Response
// @Failure      429  {object}  envelope.Response
// @Security     BearerAuth
// @Router       /api/v1/settings [get]
func (h *Controller) getSettings(c echo.Context) error {
	id, ok := amw.TenantID(c)
	if !ok {
		return amw.ErrTokenRequired
	}
	ctx := c.Request().Context()
	resp, err := h.read(ctx, id)
	if err != nil {
		return err
	}
	return envelope.OK(c, "settings fetched successfully", resp)
}

func (h *Controller) read(ctx context.Context, id uuid.UUID) (settingsResponse, error) {
	var (
		resp settingsResponse
		err  error
	)
	str := func(key, def string) string {
		if err != nil {
			return def
		}
		var v string
		v, err = h.service.GetString(ctx, key, &id, def)
		return v
	}
	num := func(key string, def int) int {
		if err != nil {
			return def
		}
		var v int
		v, err = h.service.GetInt(ctx, key, &id, def)
		return v
	}
	resp.EmailProvider = str(sdomain.KeyEmailProvider, h.cfg.EmailProvider)
	resp.EmailDispatchMode = str(sdomain.KeyEmailDispatchMode, h.cfg.EmailDispatchMode)
	resp.BulkConcurrency = num(sdomain.KeyBulkConcurrency, h.cfg.BulkConcurrency)
	resp.SMTPHost = str(sdomain.KeySMTPHost, h.cfg.SMTPHost)
	resp.SMTPPort = num(sdomain.KeySMTPPort, h.cfg.SMTPPort)
	resp.SMTPUsername = str(sdomain.KeySMTPUsername, h.cfg.SMTPUsername)
	resp.SMTPPassword = mask(str(sdomain.KeySMTPPassword, ""))
	resp.BrevoAPIKey = mask(str(sdomain.KeyBrevoAPIKey, ""))
	if err != nil {
		return settingsResponse{}, apperror.Internal(err)
	}
	return resp, nil
}

// Put Settings godoc
// @Summary      Upsert tenant sending settings
// @Description  Only whitelisted keys are accepted; secrets are stored flagged and returned masked.
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        body  body  putSettingsRequest  true  "settings"
// @Success      200  {object}  envelope.Response
// @Failure      401  {object}  envelope.Response
// @Failure      422  {object}  envelope.Response
// @Security     BearerAuth
// @Router       /api/v1/settings [put]
func (h *Controller) putSettings(c echo.Context) error {
	id, ok := amw.TenantID(c)
	if !ok {
		return amw.ErrTokenRequired
	}
	uid, _ := amw.UserID(c)
	var req putSettingsRequest
	if err := c.Bind(&req); err != nil {
		return validation.BindError(err)
	}
	if err := c.Validate(&req); err != nil {
		return validation.ErrorResponse(err)
	}
	ctx := c.Request().Context()

	type change struct {
		key    string
		value  *string
		secret bool
	}
	itoa := func(n *int) *string {
		if n == nil {
			return nil
		}
		s := strconv.Itoa(*n)
		return &s
	}
	lower := func(s *string) *string {
		if s == nil {
			return nil
		}
		v := strings.ToLower(strings.TrimSpace(*s))
		return &v
	}
	changes := []change{
		{sdomain.KeyEmailProvider, lower(req.EmailProvider), false},
		{sdomain.KeyEmailDispatchMode, lower(req.EmailDispatchMode), false},
		{sdomain.KeyBulkConcurrency, itoa(req.BulkConcurrency), false},
		{sdomain.KeySMTPHost, req.SMTPHost, false},
		{sdomain.KeySMTPPort, itoa(req.SMTPPort), false},
		{sdomain.KeySMTPUsername, req.SMTPUsername, false},
		{sdomain.KeySMTPPassword, req.SMTPPassword, true},
		{sdomain.KeyBrevoAPIKey, req.BrevoAPIKey, true},
	}
	changed := make([]string, 0, len(changes))
	meta := map[string]string{}
	for _, ch := range changes {
		if ch.value == nil {
			continue
		}
		if err := h.repo.Upsert(ctx, ch.key, &id, *ch.value, ch.secret); err != nil {
			return apperror.Internal(err)
		}
		changed = append(changed, ch.key)
		if ch.secret {
			meta[ch.key] = "redacted"
		}
	}
	if h.pub != nil && len(changed) > 0 {
		meta["changed"] = strings.Join(changed, ",")
		_ = h.pub.Publish(ctx, evdomain.Event{Type: evdomain.TypeSettingsUpdated, TenantID: id, ActorID: uid, Meta: meta, Time: time.Now()})
	}
	resp, err := h.read(ctx, id)
	if err != nil {
		return err
	}
	return envelope.OK(c, "settings updated successfully", resp)
}
