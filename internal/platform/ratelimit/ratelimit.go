package ratelimit

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/corvusHold/outreach/internal/metrics"
	"github.com/corvusHold/outreach/internal/platform/apperror"
)

// ErrLimited is returned once a bucket is exhausted.
var ErrLimited = apperror.TooManyRequests("rate limit exceeded")

// Policy defines a fixed-window rate limit: Limit requests within Window per derived key.
type Policy struct {
	// Name identifies the limited endpoint for logs and metrics (e.g. "auth:login").
	Name   string
	Window time.Duration
	Limit  int
	// Optional per-request overrides.
	WindowFunc func(echo.Context) time.Duration
	LimitFunc  func(echo.Context) int
	// Key builds the bucket key for this request.
	Key func(echo.Context) string
}

// Store abstracts a shared counter store for fixed-window limiting.
type Store interface {
	// Allow increments the counter for key and reports whether the request may proceed.
	// When it may not, retryAfterSec is the number of seconds until the window resets.
	Allow(c echo.Context, key string, limit int, window time.Duration) (allowed bool, retryAfterSec int, err error)
}

func (p Policy) normalized() Policy {
	if p.Window <= 0 {
		p.Window = time.Minute
	}
	if p.Limit <= 0 {
		p.Limit = 60
	}
	return p
}

func (p Policy) resolve(c echo.Context) (key string, limit int, window time.Duration) {
	key = "global"
	if p.Key != nil {
		key = p.Key(c)
	}
	window, limit = p.Window, p.Limit
	if p.WindowFunc != nil {
		if w := p.WindowFunc(c); w > 0 {
			window = w
		}
	}
	if p.LimitFunc != nil {
		if l := p.LimitFunc(c); l > 0 {
			limit = l
		}
	}
	return key, limit, window
}

// NewMemoryStore returns a process-local Store. Use the Redis store when running more than
// one instance.
func NewMemoryStore() Store {
	return &memoryStore{buckets: make(map[string]*bucket)}
}

type bucket struct {
	start time.Time
	count int
}

type memoryStore struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

func (s *memoryStore) Allow(_ echo.Context, key string, limit int, window time.Duration) (bool, int, error) {
	now := time.Now()
	if s.now != nil {
		now = s.now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.buckets[key]
	if !ok || now.Sub(b.start) >= window {
		s.buckets[key] = &bucket{start: now, count: 1}
		return true, 0, nil
	}
	if b.count < limit {
		b.count++
		return true, 0, nil
	}
	retry := int((window - now.Sub(b.start) + time.Second - 1) / time.Second)
	return false, retry, nil
}

// Middleware enforces p using s. Store errors fail open.
func Middleware(p Policy, s Store) echo.MiddlewareFunc {
	p = p.normalized()
	if s == nil {
		s = NewMemoryStore()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key, lim, win := p.resolve(c)
			allowed, retryAfter, err := s.Allow(c, key, lim, win)
			if err != nil || allowed {
				return next(c)
			}
			src := "ip"
			if strings.Contains(key, ":email:") {
				src = "email"
			}
			metrics.IncRateLimitExceeded(p.Name, src)
			c.Logger().Warnf("rate limit exceeded: endpoint=%s key=%s limit=%d window=%s retry_after=%ds", p.Name, key, lim, win, retryAfter)
			if retryAfter > 0 {
				c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))
			}
			return ErrLimited
		}
	}
}

// KeyEmailOrIP buckets by the emailAddress field of a JSON body, falling back to the real
// IP. The body is restored for the handler.
func KeyEmailOrIP(prefix string) func(echo.Context) string {
	return func(c echo.Context) string {
		req := c.Request()
		if req.Body != nil && strings.Contains(strings.ToLower(req.Header.Get(echo.HeaderContentType)), echo.MIMEApplicationJSON) {
			buf, _ := io.ReadAll(req.Body)
			req.Body = io.NopCloser(bytes.NewReader(buf))
			var tmp struct {
				EmailAddress string `json:"emailAddress"`
			}
			_ = json.Unmarshal(buf, &tmp)
			if e := strings.ToLower(strings.TrimSpace(tmp.EmailAddress)); e != "" {
				return prefix + ":email:" + e
			}
		}
		return prefix + ":ip:" + c.RealIP()
	}
}
