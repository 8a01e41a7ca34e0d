package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/cageside/picks-cli/internal/aggregate"
	"github.com/cageside/picks-cli/internal/bot"
	"github.com/cageside/picks-cli/internal/classify"
	"github.com/cageside/picks-cli/internal/cost"
	"github.com/cageside/picks-cli/internal/match"
	"github.com/cageside/picks-cli/internal/store"
	"github.com/cageside/picks-cli/pkg/anthropic"
)

// initStore opens the configured backend.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite", "":
		return store.NewSQLite(cfg.Store.DatabaseURL)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// newMatcher builds the side-classification matcher from config.
func newMatcher() *match.Matcher {
	return match.New(cfg.Matcher.SideClassifyScore)
}

// newResolver builds the alias resolver from config.
func newResolver(st store.Store) *match.Resolver {
	ttl := time.Duration(cfg.Matcher.AliasCacheTTLMins) * time.Minute
	return match.NewResolver(st, newMatcher(), cfg.Matcher.AliasAcceptScore, ttl)
}

// newBot wires the full answer path. Requires an API key.
func newBot(st store.Store) (*bot.Bot, error) {
	if cfg.Anthropic.Key == "" {
		return nil, eris.New("anthropic API key not set (PICKS_ANTHROPIC_KEY)")
	}

	thresholds := aggregate.Thresholds{
		UnderdogMinTotal: cfg.Query.UnderdogMinTotal,
		UnderdogMinCount: cfg.Query.UnderdogMinCount,
		FinishMinPicks:   cfg.Query.FinishMinPicks,
	}

	return bot.New(bot.Config{
		Classifier:  classify.New(st),
		Optimizer:   aggregate.New(st, newMatcher(), thresholds),
		Client:      anthropic.NewClient(cfg.Anthropic.Key),
		Calculator:  cost.NewCalculator(cost.Rates(cfg.Pricing)),
		Model:       cfg.Anthropic.Model,
		CallTimeout: time.Duration(cfg.Anthropic.CallTimeoutSecs) * time.Second,
		RPS:         cfg.Anthropic.RequestsPerSec,
	}), nil
}
