package suggest

import (
	"context"
	"time"

	"github.com/schemadraw/schemadraw/pkg/cache"
)

// DefaultCacheTTL bounds how long generated syntax is reused.
const DefaultCacheTTL = 24 * time.Hour

// CachedGenerator reuses generated syntax for identical requests.
// The key covers the target syntax, the instruction, and the dialect,
// so any edit to the target produces a fresh generation.
type CachedGenerator struct {
	inner Generator
	cache cache.Cache
	ttl   time.Duration
}

// NewCachedGenerator wraps inner with a cache. A zero ttl means
// entries never expire.
func NewCachedGenerator(inner Generator, c cache.Cache, ttl time.Duration) *CachedGenerator {
	return &CachedGenerator{inner: inner, cache: c, ttl: ttl}
}

// Generate returns the cached syntax on a hit, otherwise calls the
// inner generator and stores its answer. Cache failures fall through
// to the inner generator.
func (g *CachedGenerator) Generate(ctx context.Context, req Request) (*Response, error) {
	key := cache.Key("generate", req.Syntax, req.Suggestion, string(req.DiagramType))
	if data, hit, err := g.cache.Get(ctx, key); err == nil && hit {
		return &Response{Syntax: string(data)}, nil
	}

	resp, err := g.inner.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	_ = g.cache.Set(ctx, key, []byte(resp.Syntax), g.ttl)
	return resp, nil
}

var _ Generator = (*CachedGenerator)(nil)
