package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	edomain "github.com/corvusHold/outreach/internal/email/domain"
	"github.com/corvusHold/outreach/internal/platform/apperror"
)

// Status is the soft-delete state of a configuration entry.
type Status string

const (
	StatusActive  Status = "active"
	StatusDeleted Status = "deleted"
)

func (s *Status) UnmarshalJSON(b []byte) error {
	var v string
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch Status(v) {
	case "", StatusActive:
		*s = StatusActive
	case StatusDeleted:
		*s = StatusDeleted
	default:
		return fmt.Errorf("unknown status %q", v)
	}
	return nil
}

type Address struct {
	EmailAddress string `json:"emailAddress"`
	IsVerified   bool   `json:"isVerified"`
	IsDefault    bool   `json:"isDefault"`
	Status       Status `json:"status"`
}

func (a Address) Active() bool { return a.Status == StatusActive }

type Domain struct {
	EmailDomain string             `json:"emailDomain"`
	IsVerified  bool               `json:"isVerified"`
	IsDefault   bool               `json:"isDefault"`
	DNSInfo     *edomain.DNSRecord `json:"dnsInfo,omitempty"`
	Status      Status             `json:"status"`
	Addresses   []Address          `json:"addresses"`
}

func (d Domain) Active() bool { return d.Status == StatusActive }

type EmailConfigurations struct {
	Addresses []Address `json:"addresses"`
	Domains   []Domain  `json:"domains"`
}

// Configuration is a tenant's sender setup, stored as a single document.
type Configuration struct {
	CompanyID           uuid.UUID           `json:"companyId"`
	EmailConfigurations EmailConfigurations `json:"emailConfigurations"`
	CreatedAt           time.Time           `json:"createdAt"`
	UpdatedAt           time.Time           `json:"updatedAt"`
}

// Sender is what a bulk send needs to know about its source address.
type Sender struct {
	EmailAddress string
	IsVerified   bool
	Active       bool
}

var (
	ErrDuplicateEmail         = apperror.Duplicate("Email address already exists!")
	ErrDuplicateDomain        = apperror.Duplicate("Domain already exists!")
	ErrEmailNotVerified       = apperror.BadRequest("Email address is not verified!")
	ErrDomainNotVerified      = apperror.BadRequest("Domain is not verified!")
	ErrConfigurationNotFound  = apperror.NotFound("Configuration not found!").WithStatus(http.StatusNotFound)
	ErrDuplicateConfiguration = apperror.Duplicate("Configuration already exists!")
	ErrEmailNotFound          = apperror.NotFound("Email address not found!")
	ErrDomainNotFound         = apperror.NotFound("Domain not found!")
	ErrInactiveIdentity       = apperror.BadRequest("Email address is not active!")
)

func newAddress(email string) Address {
	return Address{EmailAddress: email, IsDefault: true, Status: StatusActive}
}

// AddAddress appends email as the new default address.
func (c *Configuration) AddAddress(email string) error {
	ec := &c.EmailConfigurations
	for _, a := range ec.Addresses {
		if a.Active() && a.EmailAddress == email {
			return ErrDuplicateEmail
		}
	}
	for i := range ec.Addresses {
		ec.Addresses[i].IsDefault = false
	}
	ec.Addresses = append(ec.Addresses, newAddress(email))
	return nil
}

// AddDomain appends domain as the new default domain and returns a pointer to it.
func (c *Configuration) AddDomain(domain string) (*Domain, error) {
	ec := &c.EmailConfigurations
	for _, d := range ec.Domains {
		if d.Active() && d.EmailDomain == domain {
			return nil, ErrDuplicateDomain
		}
	}
	for i := range ec.Domains {
		ec.Domains[i].IsDefault = false
	}
	ec.Domains = append(ec.Domains, Domain{EmailDomain: domain, IsDefault: true, Status: StatusActive, Addresses: []Address{}})
	return &ec.Domains[len(ec.Domains)-1], nil
}

// AttachAddress adds email under every active entry for domain.
func (c *Configuration) AttachAddress(domain, email string) error {
	found := false
	for i := range c.EmailConfigurations.Domains {
		d := &c.EmailConfigurations.Domains[i]
		if !d.Active() || d.EmailDomain != domain {
			continue
		}
		for _, a := range d.Addresses {
			if a.Active() && a.EmailAddress == email {
				return ErrDuplicateEmail
			}
		}
		for j := range d.Addresses {
			d.Addresses[j].IsDefault = false
		}
		na := newAddress(email)
		na.IsVerified = d.IsVerified
		d.Addresses = append(d.Addresses, na)
		found = true
	}
	if !found {
		return ErrDomainNotFound
	}
	return nil
}

// DeleteAddress soft-deletes every active entry for email, top-level and nested.
// It reports whether anything changed.
func (c *Configuration) DeleteAddress(email string) bool {
	changed := false
	ec := &c.EmailConfigurations
	for i := range ec.Addresses {
		if ec.Addresses[i].Active() && ec.Addresses[i].EmailAddress == email {
			ec.Addresses[i].Status = StatusDeleted
			changed = true
		}
	}
	for i := range ec.Domains {
		for j := range ec.Domains[i].Addresses {
			a := &ec.Domains[i].Addresses[j]
			if a.Active() && a.EmailAddress == email {
				a.Status = StatusDeleted
				changed = true
			}
		}
	}
	return changed
}

func (c *Configuration) DeleteDomain(domain string) bool {
	changed := false
	for i := range c.EmailConfigurations.Domains {
		d := &c.EmailConfigurations.Domains[i]
		if d.Active() && d.EmailDomain == domain {
			d.Status = StatusDeleted
			changed = true
		}
	}
	return changed
}

// MarkVerified flips isVerified on entries the provider reports as verified. Nested
// addresses follow their domain. It reports whether anything changed.
func (c *Configuration) MarkVerified(verified edomain.IdentitySet) bool {
	changed := false
	ec := &c.EmailConfigurations
	for i := range ec.Addresses {
		if !ec.Addresses[i].IsVerified && verified.Has(ec.Addresses[i].EmailAddress) {
			ec.Addresses[i].IsVerified = true
			changed = true
		}
	}
	for i := range ec.Domains {
		d := &ec.Domains[i]
		if !d.IsVerified && verified.Has(d.EmailDomain) {
			d.IsVerified = true
			changed = true
		}
		for j := range d.Addresses {
			if d.Addresses[j].IsVerified != d.IsVerified {
				d.Addresses[j].IsVerified = d.IsVerified
				changed = true
			}
		}
	}
	return changed
}

// Active returns a copy holding only active entries, nested lists included.
func (c Configuration) Active() Configuration {
	out := c
	out.EmailConfigurations = EmailConfigurations{Addresses: []Address{}, Domains: []Domain{}}
	for _, a := range c.EmailConfigurations.Addresses {
		if a.Active() {
			out.EmailConfigurations.Addresses = append(out.EmailConfigurations.Addresses, a)
		}
	}
	for _, d := range c.EmailConfigurations.Domains {
		if !d.Active() {
			continue
		}
		nested := make([]Address, 0, len(d.Addresses))
		for _, a := range d.Addresses {
			if a.Active() {
				nested = append(nested, a)
			}
		}
		d.Addresses = nested
		out.EmailConfigurations.Domains = append(out.EmailConfigurations.Domains, d)
	}
	return out
}

// VerifiedAddresses lists top-level addresses that are verified and active, then nested
// domain addresses that are active.
func (c Configuration) VerifiedAddresses() []string {
	out := []string{}
	for _, a := range c.EmailConfigurations.Addresses {
		if a.IsVerified && a.Active() {
			out = append(out, a.EmailAddress)
		}
	}
	for _, d := range c.EmailConfigurations.Domains {
		for _, a := range d.Addresses {
			if a.Active() {
				out = append(out, a.EmailAddress)
			}
		}
	}
	return out
}

// LookupSender finds email among top-level addresses, then among domain addresses. An
// active entry is preferred over a deleted one. A nested address takes its domain's
// verification and is active only while its domain is.
func (c Configuration) LookupSender(email string) (Sender, bool) {
	var (
		found Sender
		ok    bool
	)
	consider := func(s Sender) bool {
		if !ok || (s.Active && !found.Active) {
			found, ok = s, true
		}
		return found.Active
	}
	for _, a := range c.EmailConfigurations.Addresses {
		if strings.EqualFold(a.EmailAddress, email) && consider(Sender{EmailAddress: a.EmailAddress, IsVerified: a.IsVerified, Active: a.Active()}) {
			return found, true
		}
	}
	for _, d := range c.EmailConfigurations.Domains {
		for _, a := range d.Addresses {
			if strings.EqualFold(a.EmailAddress, email) && consider(Sender{EmailAddress: a.EmailAddress, IsVerified: d.IsVerified, Active: a.Active() && d.Active()}) {
				return found, true
			}
		}
	}
	return found, ok
}

type Repository interface {
	Get(ctx context.Context, tenantID uuid.UUID) (Configuration, error)
	// Create fails with ErrDuplicateConfiguration when the tenant already has one.
	Create(ctx context.Context, c Configuration) error
	// Save writes the whole document, creating it when absent. Last writer wins.
	Save(ctx context.Context, c Configuration) error
}

type Service interface {
	Create(ctx context.Context, tenantID uuid.UUID, addresses, domains []string) error
	Read(ctx context.Context, tenantID uuid.UUID) (Configuration, error)
	RegisterAddress(ctx context.Context, tenantID uuid.UUID, email string) error
	RegisterDomain(ctx context.Context, tenantID uuid.UUID, domain string) (edomain.DNSRecord, error)
	VerifyAddress(ctx context.Context, email string) error
	VerifyDomain(ctx context.Context, domain string) error
	AttachAddressToDomain(ctx context.Context, tenantID uuid.UUID, domain, email string) error
	DeleteAddress(ctx context.Context, tenantID uuid.UUID, email string) error
	DeleteDomain(ctx context.Context, tenantID uuid.UUID, domain string) error
	ListVerifiedAddresses(ctx context.Context, tenantID uuid.UUID) ([]string, error)
	LookupSender(ctx context.Context, tenantID uuid.UUID, email string) (Sender, error)
}
