package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/cageside/picks-cli/internal/db"
	"github.com/cageside/picks-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool db.Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool. Tests substitute a mock here.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS events (
	id       TEXT PRIMARY KEY,
	name     TEXT NOT NULL,
	date     TIMESTAMPTZ,
	location TEXT
);

CREATE TABLE IF NOT EXISTS fights (
	id           TEXT PRIMARY KEY,
	event_id     TEXT NOT NULL REFERENCES events(id),
	fighter_a    TEXT NOT NULL,
	fighter_b    TEXT NOT NULL,
	weight_class TEXT,
	bout_order   INTEGER,
	status       TEXT NOT NULL DEFAULT 'scheduled'
);

CREATE TABLE IF NOT EXISTS analyst_picks (
	id                TEXT PRIMARY KEY,
	fight_id          TEXT NOT NULL REFERENCES fights(id),
	analyst_name      TEXT NOT NULL,
	platform          TEXT,
	picked_fighter    TEXT,
	method_prediction TEXT,
	confidence_tag    TEXT NOT NULL DEFAULT 'lean',
	reasoning_notes   TEXT,
	source_url        TEXT NOT NULL,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS pick_tags (
	pick_id TEXT NOT NULL REFERENCES analyst_picks(id),
	tag     TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS fighter_aliases (
	canonical_name TEXT NOT NULL,
	alias          TEXT NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_events_name ON events(LOWER(name));
CREATE UNIQUE INDEX IF NOT EXISTS idx_fights_pair ON fights(
	event_id,
	LEAST(LOWER(fighter_a), LOWER(fighter_b)),
	GREATEST(LOWER(fighter_a), LOWER(fighter_b))
);
CREATE INDEX IF NOT EXISTS idx_fights_event_id ON fights(event_id);
CREATE INDEX IF NOT EXISTS idx_picks_fight_id ON analyst_picks(fight_id);
CREATE INDEX IF NOT EXISTS idx_pick_tags_pick_id ON pick_tags(pick_id);
CREATE INDEX IF NOT EXISTS idx_aliases_alias ON fighter_aliases(alias);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) GetEvent(ctx context.Context, nameLike string) (*model.Event, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, name, date, location FROM events
		 WHERE name ILIKE '%' || $1 || '%'
		 ORDER BY date DESC NULLS LAST LIMIT 1`,
		nameLike,
	)
	return scanEventPG(row)
}

func (s *PostgresStore) MostRecentEvent(ctx context.Context) (*model.Event, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, name, date, location FROM events
		 ORDER BY date DESC NULLS LAST LIMIT 1`,
	)
	return scanEventPG(row)
}

func (s *PostgresStore) ListFights(ctx context.Context, eventID string) ([]model.Fight, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, event_id, fighter_a, fighter_b, weight_class, bout_order, status
		 FROM fights WHERE event_id = $1
		 ORDER BY bout_order NULLS LAST, id`,
		eventID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list fights")
	}
	defer rows.Close()

	var fights []model.Fight
	for rows.Next() {
		var f model.Fight
		var weightClass, status *string
		var boutOrder *int
		if err := rows.Scan(&f.ID, &f.EventID, &f.FighterA, &f.FighterB, &weightClass, &boutOrder, &status); err != nil {
			return nil, eris.Wrap(err, "postgres: scan fight")
		}
		if weightClass != nil {
			f.WeightClass = *weightClass
		}
		if status != nil {
			f.Status = *status
		}
		f.BoutOrder = boutOrder
		fights = append(fights, f)
	}
	return fights, eris.Wrap(rows.Err(), "postgres: list fights iterate")
}

func (s *PostgresStore) GetFight(ctx context.Context, fightID string) (*model.FightInfo, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT f.id, f.fighter_a, f.fighter_b, e.name, e.date
		 FROM fights f JOIN events e ON e.id = f.event_id
		 WHERE f.id = $1`,
		fightID,
	)
	return scanFightInfoPG(row)
}

func (s *PostgresStore) FindFights(ctx context.Context, hintA, hintB string, limit int) ([]model.FightInfo, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := s.pool.Query(ctx,
		`SELECT f.id, f.fighter_a, f.fighter_b, e.name, e.date
		 FROM fights f JOIN events e ON e.id = f.event_id
		 WHERE f.fighter_a ILIKE '%' || $1 || '%'
		   AND f.fighter_b ILIKE '%' || $2 || '%'
		 ORDER BY e.date DESC NULLS LAST LIMIT $3`,
		hintA, hintB, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: find fights")
	}
	defer rows.Close()

	var fights []model.FightInfo
	for rows.Next() {
		fi, err := scanFightInfoPG(rows)
		if err != nil {
			return nil, err
		}
		fights = append(fights, *fi)
	}
	return fights, eris.Wrap(rows.Err(), "postgres: find fights iterate")
}

func (s *PostgresStore) ListPicks(ctx context.Context, fightID string) ([]model.Pick, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, fight_id, analyst_name, platform, picked_fighter,
		        method_prediction, confidence_tag, reasoning_notes, source_url, created_at
		 FROM analyst_picks WHERE fight_id = $1
		 ORDER BY created_at, id`,
		fightID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list picks")
	}
	defer rows.Close()

	var picks []model.Pick
	for rows.Next() {
		var p model.Pick
		var platform, picked, method, notes *string
		if err := rows.Scan(&p.ID, &p.FightID, &p.AnalystName, &platform, &picked,
			&method, &p.ConfidenceTag, &notes, &p.SourceURL, &p.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan pick")
		}
		if platform != nil {
			p.Platform = *platform
		}
		if picked != nil {
			p.PickedFighter = *picked
		}
		if method != nil {
			p.MethodPrediction = *method
		}
		if notes != nil {
			p.ReasoningNotes = *notes
		}
		picks = append(picks, p)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: list picks iterate")
	}
	if len(picks) == 0 {
		return picks, nil
	}

	ids := make([]string, len(picks))
	for i, p := range picks {
		ids[i] = p.ID
	}
	tagRows, err := s.pool.Query(ctx,
		`SELECT pick_id, tag FROM pick_tags WHERE pick_id = ANY($1) ORDER BY ctid`,
		ids,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list pick tags")
	}
	defer tagRows.Close()

	tagsByPick := make(map[string][]string)
	for tagRows.Next() {
		var pickID, tag string
		if err := tagRows.Scan(&pickID, &tag); err != nil {
			return nil, eris.Wrap(err, "postgres: scan pick tag")
		}
		tagsByPick[pickID] = append(tagsByPick[pickID], tag)
	}
	if err := tagRows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: list pick tags iterate")
	}
	for i := range picks {
		picks[i].Tags = tagsByPick[picks[i].ID]
	}
	return picks, nil
}

func (s *PostgresStore) ListAliases(ctx context.Context) ([]model.Alias, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT canonical_name, alias FROM fighter_aliases ORDER BY ctid`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list aliases")
	}
	defer rows.Close()

	var aliases []model.Alias
	for rows.Next() {
		var a model.Alias
		if err := rows.Scan(&a.CanonicalName, &a.Alias); err != nil {
			return nil, eris.Wrap(err, "postgres: scan alias")
		}
		aliases = append(aliases, a)
	}
	return aliases, eris.Wrap(rows.Err(), "postgres: list aliases iterate")
}

func (s *PostgresStore) UpsertEvent(ctx context.Context, ev model.Event) (string, error) {
	var id string
	err := s.pool.QueryRow(ctx,
		`SELECT id FROM events WHERE LOWER(name) = LOWER($1)`, ev.Name,
	).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", eris.Wrap(err, "postgres: lookup event")
	}

	id = uuid.New().String()
	_, err = s.pool.Exec(ctx,
		`INSERT INTO events (id, name, date, location) VALUES ($1, $2, $3, $4)`,
		id, ev.Name, ev.Date, nullString(ev.Location),
	)
	if err != nil {
		return "", eris.Wrap(err, "postgres: insert event")
	}
	return id, nil
}

func (s *PostgresStore) UpsertFight(ctx context.Context, f model.Fight) (string, error) {
	var id string
	err := s.pool.QueryRow(ctx,
		`SELECT id FROM fights WHERE event_id = $1
		 AND ((LOWER(fighter_a) = LOWER($2) AND LOWER(fighter_b) = LOWER($3))
		   OR (LOWER(fighter_a) = LOWER($3) AND LOWER(fighter_b) = LOWER($2)))`,
		f.EventID, f.FighterA, f.FighterB,
	).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", eris.Wrap(err, "postgres: lookup fight")
	}

	id = uuid.New().String()
	status := f.Status
	if status == "" {
		status = "scheduled"
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO fights (id, event_id, fighter_a, fighter_b, weight_class, bout_order, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, f.EventID, f.FighterA, f.FighterB, nullString(f.WeightClass), f.BoutOrder, status,
	)
	if err != nil {
		return "", eris.Wrap(err, "postgres: insert fight")
	}
	return id, nil
}

func (s *PostgresStore) CreatePick(ctx context.Context, p model.Pick) (string, error) {
	id := uuid.New().String()
	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	confidence := p.ConfidenceTag
	if confidence == "" {
		confidence = string(model.ConfidenceLean)
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO analyst_picks (id, fight_id, analyst_name, platform, picked_fighter,
		        method_prediction, confidence_tag, reasoning_notes, source_url, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		id, p.FightID, p.AnalystName, nullString(p.Platform), nullString(p.PickedFighter),
		nullString(p.MethodPrediction), confidence, nullString(p.ReasoningNotes), p.SourceURL, createdAt,
	)
	if err != nil {
		return "", eris.Wrap(err, "postgres: insert pick")
	}

	for _, tag := range p.Tags {
		if _, err := s.pool.Exec(ctx,
			`INSERT INTO pick_tags (pick_id, tag) VALUES ($1, $2)`, id, tag,
		); err != nil {
			return "", eris.Wrap(err, "postgres: insert pick tag")
		}
	}
	return id, nil
}

func (s *PostgresStore) SaveAlias(ctx context.Context, canonical, alias string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO fighter_aliases (canonical_name, alias) VALUES ($1, $2)`,
		canonical, alias,
	)
	return eris.Wrap(err, "postgres: save alias")
}

// pgx scans straight into pointer fields, so the pg scan helpers differ from
// the database/sql ones.

func scanEventPG(row pgx.Row) (*model.Event, error) {
	var ev model.Event
	var location *string

	err := row.Scan(&ev.ID, &ev.Name, &ev.Date, &location)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan event")
	}
	if location != nil {
		ev.Location = *location
	}
	return &ev, nil
}

func scanFightInfoPG(row pgx.Row) (*model.FightInfo, error) {
	var fi model.FightInfo

	err := row.Scan(&fi.FightID, &fi.FighterA, &fi.FighterB, &fi.EventName, &fi.EventDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan fight info")
	}
	return &fi, nil
}
