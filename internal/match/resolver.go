package match

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/singleflight"

	"github.com/cageside/picks-cli/internal/model"
)

// DefaultAliasThreshold is the minimum score for an alias match to be
// auto-accepted; weaker matches get flagged for manual resolution.
const DefaultAliasThreshold = 85

// AliasSource is the store surface the resolver needs.
type AliasSource interface {
	ListAliases(ctx context.Context) ([]model.Alias, error)
	SaveAlias(ctx context.Context, canonical, alias string) error
}

// Resolution is the outcome of resolving one raw name.
type Resolution struct {
	Raw       string `json:"raw"`
	Canonical string `json:"canonical"`
	Matched   string `json:"matched"` // the alias or canonical spelling that scored best
	Score     int    `json:"score"`
	Accepted  bool   `json:"accepted"`
}

// Resolver matches raw fighter names against the alias table. The table is
// cached with a short TTL since aliases change rarely; any alias write
// through the resolver invalidates the cache immediately.
type Resolver struct {
	source    AliasSource
	matcher   *Matcher
	threshold int
	ttl       time.Duration

	mu        sync.Mutex
	aliases   []model.Alias
	fetchedAt time.Time
	group     singleflight.Group
}

// NewResolver creates a Resolver. Non-positive threshold/ttl fall back to
// 85 and 5 minutes.
func NewResolver(source AliasSource, matcher *Matcher, threshold int, ttl time.Duration) *Resolver {
	if threshold <= 0 {
		threshold = DefaultAliasThreshold
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Resolver{
		source:    source,
		matcher:   matcher,
		threshold: threshold,
		ttl:       ttl,
	}
}

// Resolve matches raw against the union of all aliases and canonical names.
// Accepted is true only when the best score clears the threshold.
func (r *Resolver) Resolve(ctx context.Context, raw string) (*Resolution, error) {
	aliases, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	res := &Resolution{Raw: raw}
	for _, a := range aliases {
		for _, candidate := range []string{a.Alias, a.CanonicalName} {
			if score := r.matcher.Score(raw, candidate); score > res.Score {
				res.Score = score
				res.Matched = candidate
				res.Canonical = a.CanonicalName
			}
		}
	}
	res.Accepted = res.Score >= r.threshold
	return res, nil
}

// Add persists a new alias and invalidates the cache so the next Resolve
// sees it.
func (r *Resolver) Add(ctx context.Context, canonical, alias string) error {
	if err := r.source.SaveAlias(ctx, canonical, alias); err != nil {
		return err
	}
	r.Invalidate()
	return nil
}

// Invalidate drops the cached alias table.
func (r *Resolver) Invalidate() {
	r.mu.Lock()
	r.fetchedAt = time.Time{}
	r.aliases = nil
	r.mu.Unlock()
}

func (r *Resolver) load(ctx context.Context) ([]model.Alias, error) {
	r.mu.Lock()
	if r.aliases != nil && time.Since(r.fetchedAt) < r.ttl {
		aliases := r.aliases
		r.mu.Unlock()
		return aliases, nil
	}
	r.mu.Unlock()

	// Collapse concurrent reloads into one store read.
	v, err, _ := r.group.Do("aliases", func() (any, error) {
		aliases, err := r.source.ListAliases(ctx)
		if err != nil {
			return nil, eris.Wrap(err, "match: load aliases")
		}
		if aliases == nil {
			aliases = []model.Alias{}
		}
		r.mu.Lock()
		r.aliases = aliases
		r.fetchedAt = time.Now()
		r.mu.Unlock()
		return aliases, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]model.Alias), nil
}
