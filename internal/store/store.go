package store

import (
	"context"

	"github.com/cageside/picks-cli/internal/model"
)

// Store is the persistence contract for pick data. The query path only reads;
// the write methods exist for the seed command, alias review, and tests. No
// transaction wraps a multi-query aggregation, so callers must tolerate
// content changing between sequential reads.
type Store interface {
	// Reads (the query-path contract)
	GetEvent(ctx context.Context, nameLike string) (*model.Event, error)
	MostRecentEvent(ctx context.Context) (*model.Event, error)
	ListFights(ctx context.Context, eventID string) ([]model.Fight, error)
	GetFight(ctx context.Context, fightID string) (*model.FightInfo, error)
	// FindFights matches hintA against fighter_a and hintB against fighter_b
	// by case-insensitive substring, newest event first. Callers try both
	// orderings themselves.
	FindFights(ctx context.Context, hintA, hintB string, limit int) ([]model.FightInfo, error)
	// ListPicks returns a fight's picks with tags attached, in stable
	// (created_at, id) order.
	ListPicks(ctx context.Context, fightID string) ([]model.Pick, error)
	ListAliases(ctx context.Context) ([]model.Alias, error)

	// Writes (seed / alias review only — never called on the query path)
	UpsertEvent(ctx context.Context, ev model.Event) (string, error)
	UpsertFight(ctx context.Context, f model.Fight) (string, error)
	CreatePick(ctx context.Context, p model.Pick) (string, error)
	SaveAlias(ctx context.Context, canonical, alias string) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
