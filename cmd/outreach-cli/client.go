package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client talks to the Outreach API and unwraps the {message, data} envelope.
type Client struct {
	http *resty.Client
}

func NewClient(baseURL, token string) *Client {
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(2*time.Minute).
		SetHeader("Accept", "application/json")
	if token != "" {
		c.SetAuthToken(token)
	}
	return &Client{http: c}
}

type apiEnvelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string { return fmt.Sprintf("API error (%d): %s", e.Status, e.Message) }

// do sends req and decodes the envelope data into out when out is non-nil.
func (c *Client) do(req *resty.Request, method, path string, out any) error {
	logVerbose("%s %s", method, path)
	var env apiEnvelope
	resp, err := req.SetResult(&env).SetError(&env).Execute(method, path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	logVerbose("response status: %s", resp.Status())
	if resp.IsError() {
		msg := env.Message
		if msg == "" {
			msg = strings.TrimSpace(resp.String())
		}
		return &APIError{Status: resp.StatusCode(), Message: msg}
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) json(method, path string, body, out any) error {
	req := c.http.R()
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	return c.do(req, method, path, out)
}

// Session is what register and login return.
type Session struct {
	Token string `json:"token"`
	User  struct {
		ID           string `json:"id"`
		CompanyID    string `json:"companyId"`
		EmailAddress string `json:"emailAddress"`
	} `json:"user"`
}

func (c *Client) Login(email, password string) (Session, error) {
	var s Session
	err := c.json("POST", "/api/v1/auth/login", map[string]string{"emailAddress": email, "password": password}, &s)
	return s, err
}

type RegisterInput struct {
	Company      string
	EmailAddress string
	Password     string
	FirstName    string
	LastName     string
}

func (c *Client) Register(in RegisterInput) (Session, error) {
	var s Session
	err := c.json("POST", "/api/v1/auth/register", map[string]any{
		"company":      map[string]string{"name": in.Company},
		"emailAddress": in.EmailAddress,
		"password":     in.Password,
		"firstName":    in.FirstName,
		"lastName":     in.LastName,
	}, &s)
	return s, err
}

// Import uploads a .csv or .xlsx file of company users.
func (c *Client) Import(path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	var out struct {
		Imported int64 `json:"imported"`
	}
	req := c.http.R().SetFileReader("csvFile", filepath.Base(path), f)
	if err := c.do(req, "POST", "/api/v1/users/upload-csv", &out); err != nil {
		return 0, err
	}
	return out.Imported, nil
}

func (c *Client) FilterKeys() ([]string, error) {
	var keys []string
	err := c.json("GET", "/api/v1/company-users/possible-filter-keys", nil, &keys)
	return keys, err
}

func (c *Client) FilterValues(key string) ([]any, error) {
	var vals []any
	err := c.do(c.http.R().SetQueryParam("key", key), "GET", "/api/v1/company-users/possible-filter-values", &vals)
	return vals, err
}

type FilterCount struct {
	FilterKey    string   `json:"filterKey" yaml:"filterKey"`
	FilterValues []string `json:"filterValues" yaml:"filterValues"`
	FilterCount  int64    `json:"filterCount" yaml:"filterCount"`
}

// FilterCount sends filters as raw JSON so key order is kept.
func (c *Client) FilterCount(filters json.RawMessage) ([]FilterCount, error) {
	var out []FilterCount
	err := c.json("POST", "/api/v1/company-users/get-filter-count", map[string]json.RawMessage{"filters": filters}, &out)
	return out, err
}

func (c *Client) Search(query string, fields []string) ([]map[string]any, error) {
	var out []map[string]any
	err := c.json("POST", "/api/v1/company-users/search", map[string]any{"searchString": query, "searchFields": fields}, &out)
	return out, err
}

func (c *Client) ListUsers(page, size int) ([]map[string]any, error) {
	var out []map[string]any
	req := c.http.R().SetQueryParams(map[string]string{"pageNumber": strconv.Itoa(page), "pageSize": strconv.Itoa(size)})
	err := c.do(req, "GET", "/api/v1/company-users/all", &out)
	return out, err
}

type Summary struct {
	Matched    int `json:"matched" yaml:"matched"`
	Dispatched int `json:"dispatched" yaml:"dispatched"`
	Queued     int `json:"queued" yaml:"queued"`
	Recorded   int `json:"recorded" yaml:"recorded"`
}

// Interact posts a bulk interaction request as given.
func (c *Client) Interact(request json.RawMessage) (Summary, error) {
	var s Summary
	err := c.json("POST", "/api/v1/company-users/interact", request, &s)
	return s, err
}

func (c *Client) VerifiedAddresses() ([]string, error) {
	var out []string
	err := c.json("GET", "/api/v1/configuration/email/verified-addresses", nil, &out)
	return out, err
}

func (c *Client) RegisterAddress(email string) error {
	return c.json("POST", "/api/v1/configuration/email/address", map[string]string{"emailAddress": email}, nil)
}

type DNSRecord struct {
	Name  string `json:"name" yaml:"name"`
	Type  string `json:"type" yaml:"type"`
	Value string `json:"value" yaml:"value"`
}

func (c *Client) RegisterDomain(domain string) (DNSRecord, error) {
	var rec DNSRecord
	err := c.json("POST", "/api/v1/configuration/email/domain", map[string]string{"emailDomain": domain}, &rec)
	return rec, err
}

func (c *Client) Settings() (map[string]any, error) {
	var out map[string]any
	err := c.json("GET", "/api/v1/settings", nil, &out)
	return out, err
}

func (c *Client) PutSettings(patch json.RawMessage) (map[string]any, error) {
	var out map[string]any
	err := c.json("PUT", "/api/v1/settings", patch, &out)
	return out, err
}

// Health reads /healthz, which is not enveloped.
func (c *Client) Health() (map[string]any, error) {
	var out map[string]any
	resp, err := c.http.R().SetResult(&out).Get("/healthz")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.IsError() {
		return nil, &APIError{Status: resp.StatusCode(), Message: strings.TrimSpace(resp.String())}
	}
	return out, nil
}
