package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/cageside/picks-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS events (
	id       TEXT PRIMARY KEY,
	name     TEXT NOT NULL,
	date     DATETIME,
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
	created_at        DATETIME NOT NULL DEFAULT (datetime('now'))
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
	MIN(LOWER(fighter_a), LOWER(fighter_b)),
	MAX(LOWER(fighter_a), LOWER(fighter_b))
);
CREATE INDEX IF NOT EXISTS idx_fights_event_id ON fights(event_id);
CREATE INDEX IF NOT EXISTS idx_picks_fight_id ON analyst_picks(fight_id);
CREATE INDEX IF NOT EXISTS idx_pick_tags_pick_id ON pick_tags(pick_id);
CREATE INDEX IF NOT EXISTS idx_aliases_alias ON fighter_aliases(alias);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// GetEvent looks an event up by case-insensitive substring. The most recent
// event by date wins among multiple matches, so ambiguous names resolve to
// the newest card.
func (s *SQLiteStore) GetEvent(ctx context.Context, nameLike string) (*model.Event, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, date, location FROM events
		 WHERE LOWER(name) LIKE '%' || LOWER(?) || '%'
		 ORDER BY date IS NULL, date DESC LIMIT 1`,
		nameLike,
	)
	return scanEvent(row)
}

func (s *SQLiteStore) MostRecentEvent(ctx context.Context) (*model.Event, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, date, location FROM events
		 ORDER BY date IS NULL, date DESC LIMIT 1`,
	)
	return scanEvent(row)
}

func (s *SQLiteStore) ListFights(ctx context.Context, eventID string) ([]model.Fight, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, event_id, fighter_a, fighter_b, weight_class, bout_order, status
		 FROM fights WHERE event_id = ?
		 ORDER BY bout_order IS NULL, bout_order, id`,
		eventID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list fights")
	}
	defer rows.Close()

	var fights []model.Fight
	for rows.Next() {
		var f model.Fight
		var weightClass, status sql.NullString
		var boutOrder sql.NullInt64
		if err := rows.Scan(&f.ID, &f.EventID, &f.FighterA, &f.FighterB, &weightClass, &boutOrder, &status); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan fight")
		}
		f.WeightClass = weightClass.String
		f.Status = status.String
		if boutOrder.Valid {
			n := int(boutOrder.Int64)
			f.BoutOrder = &n
		}
		fights = append(fights, f)
	}
	return fights, eris.Wrap(rows.Err(), "sqlite: list fights iterate")
}

func (s *SQLiteStore) GetFight(ctx context.Context, fightID string) (*model.FightInfo, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT f.id, f.fighter_a, f.fighter_b, e.name, e.date
		 FROM fights f JOIN events e ON e.id = f.event_id
		 WHERE f.id = ?`,
		fightID,
	)
	return scanFightInfo(row)
}

func (s *SQLiteStore) FindFights(ctx context.Context, hintA, hintB string, limit int) ([]model.FightInfo, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT f.id, f.fighter_a, f.fighter_b, e.name, e.date
		 FROM fights f JOIN events e ON e.id = f.event_id
		 WHERE LOWER(f.fighter_a) LIKE '%' || LOWER(?) || '%'
		   AND LOWER(f.fighter_b) LIKE '%' || LOWER(?) || '%'
		 ORDER BY e.date IS NULL, e.date DESC LIMIT ?`,
		hintA, hintB, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: find fights")
	}
	defer rows.Close()

	var fights []model.FightInfo
	for rows.Next() {
		fi, err := scanFightInfo(rows)
		if err != nil {
			return nil, err
		}
		fights = append(fights, *fi)
	}
	return fights, eris.Wrap(rows.Err(), "sqlite: find fights iterate")
}

func (s *SQLiteStore) ListPicks(ctx context.Context, fightID string) ([]model.Pick, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, fight_id, analyst_name, platform, picked_fighter,
		        method_prediction, confidence_tag, reasoning_notes, source_url, created_at
		 FROM analyst_picks WHERE fight_id = ?
		 ORDER BY created_at, id`,
		fightID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list picks")
	}
	defer rows.Close()

	var picks []model.Pick
	for rows.Next() {
		p, err := scanPick(rows)
		if err != nil {
			return nil, err
		}
		picks = append(picks, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: list picks iterate")
	}
	if len(picks) == 0 {
		return picks, nil
	}

	// Attach tags in one query.
	ids := make([]any, len(picks))
	placeholders := make([]string, len(picks))
	for i, p := range picks {
		ids[i] = p.ID
		placeholders[i] = "?"
	}
	tagRows, err := s.db.QueryContext(ctx,
		`SELECT pick_id, tag FROM pick_tags WHERE pick_id IN (`+strings.Join(placeholders, ", ")+`) ORDER BY rowid`,
		ids...,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list pick tags")
	}
	defer tagRows.Close()

	tagsByPick := make(map[string][]string)
	for tagRows.Next() {
		var pickID, tag string
		if err := tagRows.Scan(&pickID, &tag); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan pick tag")
		}
		tagsByPick[pickID] = append(tagsByPick[pickID], tag)
	}
	if err := tagRows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: list pick tags iterate")
	}
	for i := range picks {
		picks[i].Tags = tagsByPick[picks[i].ID]
	}
	return picks, nil
}

func (s *SQLiteStore) ListAliases(ctx context.Context) ([]model.Alias, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT canonical_name, alias FROM fighter_aliases ORDER BY rowid`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list aliases")
	}
	defer rows.Close()

	var aliases []model.Alias
	for rows.Next() {
		var a model.Alias
		if err := rows.Scan(&a.CanonicalName, &a.Alias); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan alias")
		}
		aliases = append(aliases, a)
	}
	return aliases, eris.Wrap(rows.Err(), "sqlite: list aliases iterate")
}

func (s *SQLiteStore) UpsertEvent(ctx context.Context, ev model.Event) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM events WHERE LOWER(name) = LOWER(?)`, ev.Name,
	).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return "", eris.Wrap(err, "sqlite: lookup event")
	}

	id = uuid.New().String()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO events (id, name, date, location) VALUES (?, ?, ?, ?)`,
		id, ev.Name, nullTime(ev.Date), nullString(ev.Location),
	)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: insert event")
	}
	return id, nil
}

func (s *SQLiteStore) UpsertFight(ctx context.Context, f model.Fight) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM fights WHERE event_id = ?
		 AND ((LOWER(fighter_a) = LOWER(?) AND LOWER(fighter_b) = LOWER(?))
		   OR (LOWER(fighter_a) = LOWER(?) AND LOWER(fighter_b) = LOWER(?)))`,
		f.EventID, f.FighterA, f.FighterB, f.FighterB, f.FighterA,
	).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return "", eris.Wrap(err, "sqlite: lookup fight")
	}

	id = uuid.New().String()
	status := f.Status
	if status == "" {
		status = "scheduled"
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO fights (id, event_id, fighter_a, fighter_b, weight_class, bout_order, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, f.EventID, f.FighterA, f.FighterB, nullString(f.WeightClass), nullInt(f.BoutOrder), status,
	)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: insert fight")
	}
	return id, nil
}

func (s *SQLiteStore) CreatePick(ctx context.Context, p model.Pick) (string, error) {
	id := uuid.New().String()
	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	confidence := p.ConfidenceTag
	if confidence == "" {
		confidence = string(model.ConfidenceLean)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO analyst_picks (id, fight_id, analyst_name, platform, picked_fighter,
		        method_prediction, confidence_tag, reasoning_notes, source_url, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, p.FightID, p.AnalystName, nullString(p.Platform), nullString(p.PickedFighter),
		nullString(p.MethodPrediction), confidence, nullString(p.ReasoningNotes), p.SourceURL, createdAt,
	)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: insert pick")
	}

	for _, tag := range p.Tags {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO pick_tags (pick_id, tag) VALUES (?, ?)`, id, tag,
		); err != nil {
			return "", eris.Wrap(err, "sqlite: insert pick tag")
		}
	}
	return id, nil
}

func (s *SQLiteStore) SaveAlias(ctx context.Context, canonical, alias string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO fighter_aliases (canonical_name, alias) VALUES (?, ?)`,
		canonical, alias,
	)
	return eris.Wrap(err, "sqlite: save alias")
}

// helpers

type scannable interface {
	Scan(dest ...any) error
}

func scanEvent(row scannable) (*model.Event, error) {
	var ev model.Event
	var date sql.NullTime
	var location sql.NullString

	err := row.Scan(&ev.ID, &ev.Name, &date, &location)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "scan event")
	}
	if date.Valid {
		d := date.Time
		ev.Date = &d
	}
	ev.Location = location.String
	return &ev, nil
}

func scanFightInfo(row scannable) (*model.FightInfo, error) {
	var fi model.FightInfo
	var date sql.NullTime

	err := row.Scan(&fi.FightID, &fi.FighterA, &fi.FighterB, &fi.EventName, &date)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "scan fight info")
	}
	if date.Valid {
		d := date.Time
		fi.EventDate = &d
	}
	return &fi, nil
}

func scanPick(row scannable) (*model.Pick, error) {
	var p model.Pick
	var platform, picked, method, notes sql.NullString

	err := row.Scan(&p.ID, &p.FightID, &p.AnalystName, &platform, &picked,
		&method, &p.ConfidenceTag, &notes, &p.SourceURL, &p.CreatedAt)
	if err != nil {
		return nil, eris.Wrap(err, "scan pick")
	}
	p.Platform = platform.String
	p.PickedFighter = picked.String
	p.MethodPrediction = method.String
	p.ReasoningNotes = notes.String
	return &p, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func nullInt(n *int) any {
	if n == nil {
		return nil
	}
	return *n
}
