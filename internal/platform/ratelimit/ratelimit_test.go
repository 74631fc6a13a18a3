package ratelimit

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_BlocksAfterLimit(t *testing.T) {
	e := echo.New()
	p := Policy{Name: "auth:login", Limit: 2, Window: time.Minute, Key: KeyEmailOrIP("auth:login")}
	h := Middleware(p, NewMemoryStore())(func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	call := func(body string) error {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		return h(e.NewContext(req, httptest.NewRecorder()))
	}

	require.NoError(t, call(`{"emailAddress":"A@x.io"}`))
	require.NoError(t, call(`{"emailAddress":"a@x.io"}`))
	err := call(`{"emailAddress":"a@x.io"}`)
	assert.True(t, errors.Is(err, ErrLimited))

	// other bucket unaffected
	require.NoError(t, call(`{"emailAddress":"b@x.io"}`))
}

func TestKeyEmailOrIP_RestoresBodyAndFallsBack(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"emailAddress":" Ops@Example.com "}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())
	assert.Equal(t, "p:email:ops@example.com", KeyEmailOrIP("p")(c))

	var body struct {
		EmailAddress string `json:"emailAddress"`
	}
	require.NoError(t, c.Bind(&body))
	assert.Equal(t, " Ops@Example.com ", body.EmailAddress)

	req2 := httptest.NewRequest(http.MethodPost, "/", nil)
	req2.Header.Set(echo.HeaderXRealIP, "10.0.0.9")
	assert.Equal(t, "p:ip:10.0.0.9", KeyEmailOrIP("p")(e.NewContext(req2, httptest.NewRecorder())))
}

func TestMemoryStore_WindowResets(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	s := &memoryStore{buckets: map[string]*bucket{}, now: func() time.Time { return now }}

	ok, _, _ := s.Allow(nil, "k", 1, time.Minute)
	assert.True(t, ok)
	ok, retry, _ := s.Allow(nil, "k", 1, time.Minute)
	assert.False(t, ok)
	assert.Equal(t, 60, retry)

	now = now.Add(time.Minute)
	ok, _, _ = s.Allow(nil, "k", 1, time.Minute)
	assert.True(t, ok)
}

type failingStore struct{}

func (failingStore) Allow(echo.Context, string, int, time.Duration) (bool, int, error) {
	return false, 0, errors.New("redis down")
}

func TestMiddleware_FailsOpen(t *testing.T) {
	e := echo.New()
	h := Middleware(Policy{Name: "x", Limit: 1}, failingStore{})(func(c echo.Context) error { return nil })
	for i := 0; i < 3; i++ {
		require.NoError(t, h(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())))
	}
}
