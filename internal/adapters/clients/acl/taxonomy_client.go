package acl

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/civiplan/submission-service/internal/platform/httpclient"
	"github.com/civiplan/submission-service/internal/ports"
)

// Compile-time interface check.
var _ ports.TaxonomyService = (*TaxonomyClient)(nil)

// taxonomyDTO matches the downstream Taxonomy schema.
type taxonomyDTO struct {
	Group      string            `json:"group"`
	Code       string            `json:"code"`
	Label      string            `json:"label"`
	Properties map[string]string `json:"properties"`
}

type cachedTaxonomy struct {
	taxonomy  *ports.Taxonomy
	expiresAt time.Time
}

// TaxonomyClient fetches reference data from the planning API's taxonomy
// endpoint and caches entries for a configurable TTL. Taxonomies change
// rarely (they are operator-managed reference data), so a short in-process
// cache removes most of the per-request downstream traffic without a
// dedicated invalidation channel. A TTL of zero disables caching.
type TaxonomyClient struct {
	req    *Requester
	logger *slog.Logger
	ttl    time.Duration

	mu    sync.Mutex
	cache map[string]cachedTaxonomy
	now   func() time.Time
}

// NewTaxonomyClient creates a TaxonomyClient with the given cache TTL.
func NewTaxonomyClient(client *httpclient.Client, ttl time.Duration, logger *slog.Logger) *TaxonomyClient {
	return &TaxonomyClient{
		req:    NewRequester(client, logger),
		logger: logger,
		ttl:    ttl,
		cache:  make(map[string]cachedTaxonomy),
		now:    time.Now,
	}
}

// Get implements ports.TaxonomyService. Returns [domain.ErrNotFound] when
// the group/code pair is not defined downstream; not-found answers are not
// cached.
func (c *TaxonomyClient) Get(ctx context.Context, group, code string) (*ports.Taxonomy, error) {
	key := group + "/" + code

	if tax := c.cached(key); tax != nil {
		return tax, nil
	}

	path := fmt.Sprintf("/api/v1/taxonomies/%s/%s", url.PathEscape(group), url.PathEscape(code))

	var dto taxonomyDTO
	if err := c.req.Do(ctx, http.MethodGet, path, http.StatusOK, nil, &dto); err != nil {
		return nil, err
	}

	tax := &ports.Taxonomy{
		Group:      dto.Group,
		Code:       dto.Code,
		Label:      dto.Label,
		Properties: dto.Properties,
	}
	c.store(key, tax)
	return tax, nil
}

func (c *TaxonomyClient) cached(key string) *ports.Taxonomy {
	if c.ttl <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.cache[key]
	if !ok || c.now().After(entry.expiresAt) {
		return nil
	}
	return entry.taxonomy
}

func (c *TaxonomyClient) store(key string, tax *ports.Taxonomy) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[key] = cachedTaxonomy{taxonomy: tax, expiresAt: c.now().Add(c.ttl)}
}
