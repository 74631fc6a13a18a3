// Package testutil has helpers for controller tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	amw "github.com/corvusHold/outreach/internal/auth/middleware"
	"github.com/corvusHold/outreach/internal/logger"
	"github.com/corvusHold/outreach/internal/platform/envelope"
	"github.com/corvusHold/outreach/internal/platform/validation"
)

// NewEcho returns an Echo instance configured like the API server.
func NewEcho() *echo.Echo {
	e := echo.New()
	e.Validator = validation.New()
	e.HTTPErrorHandler = envelope.ErrorHandler(logger.Nop())
	return e
}

// FakeAuth seeds a fixed identity, standing in for the JWT middleware.
func FakeAuth(userID, tenantID uuid.UUID) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			amw.WithIdentity(c, userID, tenantID)
			return next(c)
		}
	}
}

// Envelope is the decoded response body.
type Envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Do sends a JSON request through e and decodes the envelope.
func Do(t *testing.T, e *echo.Echo, method, path string, body any) (*httptest.ResponseRecorder, Envelope) {
	t.Helper()
	var rd *bytes.Reader
	switch b := body.(type) {
	case nil:
		rd = bytes.NewReader(nil)
	case string:
		rd = bytes.NewReader([]byte(b))
	default:
		buf, err := json.Marshal(b)
		require.NoError(t, err)
		rd = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	var env Envelope
	if rec.Body.Len() > 0 && method != http.MethodHead {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}
