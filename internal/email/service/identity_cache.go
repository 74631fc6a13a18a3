package service

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	edomain "github.com/corvusHold/outreach/internal/email/domain"
)

var _ edomain.IdentityProvider = (*CachedIdentities)(nil)

const verifiedKey = "verified"

// CachedIdentities memoizes the provider's verified identity set for a short TTL.
// Any identity mutation drops the cached set.
type CachedIdentities struct {
	next  edomain.IdentityProvider
	cache *gocache.Cache
}

func NewCachedIdentities(next edomain.IdentityProvider, ttl time.Duration) *CachedIdentities {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachedIdentities{next: next, cache: gocache.New(ttl, time.Minute)}
}

func (c *CachedIdentities) VerifiedIdentities(ctx context.Context) (edomain.IdentitySet, error) {
	if v, ok := c.cache.Get(verifiedKey); ok {
		return v.(edomain.IdentitySet), nil
	}
	set, err := c.next.VerifiedIdentities(ctx)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(verifiedKey, set)
	return set, nil
}

func (c *CachedIdentities) RequestVerification(ctx context.Context, emailAddress string) error {
	c.cache.Delete(verifiedKey)
	return c.next.RequestVerification(ctx, emailAddress)
}

func (c *CachedIdentities) RequestDomainVerification(ctx context.Context, domain string) (edomain.DNSRecord, error) {
	c.cache.Delete(verifiedKey)
	return c.next.RequestDomainVerification(ctx, domain)
}

func (c *CachedIdentities) DeleteIdentity(ctx context.Context, identity string) error {
	defer c.cache.Delete(verifiedKey)
	return c.next.DeleteIdentity(ctx, identity)
}

// Invalidate drops the cached set.
func (c *CachedIdentities) Invalidate() { c.cache.Delete(verifiedKey) }
