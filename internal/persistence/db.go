// Package persistence provides SQLite-based world state storage and
// compressed JSON export.
package persistence

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/hamlet/internal/ecs"
	"github.com/talgya/hamlet/internal/engine"
	"github.com/talgya/hamlet/internal/lifeevent"
)

// DB wraps a SQLite connection for world state persistence.
type DB struct {
	conn    *sqlx.DB
	pending []*lifeevent.Instance
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS entities (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		kind TEXT NOT NULL,
		status TEXT NOT NULL,
		age REAL NOT NULL,
		stage TEXT NOT NULL,
		workplace INTEGER NOT NULL,
		role TEXT NOT NULL,
		residence INTEGER NOT NULL,
		traits_json TEXT NOT NULL,
		stats_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS relationships (
		owner INTEGER NOT NULL,
		target INTEGER NOT NULL,
		active INTEGER NOT NULL,
		tags TEXT NOT NULL,
		traits_json TEXT NOT NULL,
		stats_json TEXT NOT NULL,
		PRIMARY KEY (owner, target)
	);

	CREATE TABLE IF NOT EXISTS life_events (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		uid TEXT NOT NULL UNIQUE,
		type TEXT NOT NULL,
		date_days INTEGER NOT NULL,
		date TEXT NOT NULL,
		roles_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS personal_history (
		entity_id INTEGER NOT NULL,
		event_uid TEXT NOT NULL,
		PRIMARY KEY (entity_id, event_uid)
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_life_events_type ON life_events(type);
	CREATE INDEX IF NOT EXISTS idx_life_events_date ON life_events(date_days);
	CREATE INDEX IF NOT EXISTS idx_entities_kind ON entities(kind);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveEntities writes all entities to the database (full replace).
func (db *DB) SaveEntities(records []EntityRecord) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM entities"); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO entities
		(id, name, kind, status, age, stage, workplace, role, residence, traits_json, stats_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range records {
		traitsJSON, _ := json.Marshal(e.Traits)
		statsJSON, _ := json.Marshal(e.Stats)
		_, err := stmt.Exec(
			e.ID, e.Name, e.Kind, e.Status, e.Age, e.Stage,
			e.Workplace, e.Role, e.Residence,
			string(traitsJSON), string(statsJSON),
		)
		if err != nil {
			return fmt.Errorf("insert entity %d: %w", e.ID, err)
		}
	}

	return tx.Commit()
}

// SaveRelationships writes every edge to the database (full replace).
func (db *DB) SaveRelationships(records []RelationshipRecord) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM relationships"); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO relationships
		(owner, target, active, tags, traits_json, stats_json)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		traitsJSON, _ := json.Marshal(r.Traits)
		statsJSON, _ := json.Marshal(r.Stats)
		active := 0
		if r.Active {
			active = 1
		}
		_, err := stmt.Exec(r.Owner, r.Target, active, strings.Join(r.Tags, ","), string(traitsJSON), string(statsJSON))
		if err != nil {
			return fmt.Errorf("insert relationship %d->%d: %w", r.Owner, r.Target, err)
		}
	}

	return tx.Commit()
}

// SaveEvents appends life events and their personal history links.
// Events already stored are skipped.
func (db *DB) SaveEvents(events []*lifeevent.Instance) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, inst := range events {
		rec, err := NewEventRecord(inst)
		if err != nil {
			return err
		}
		_, err = tx.NamedExec(`INSERT OR IGNORE INTO life_events (uid, type, date_days, date, roles_json)
			VALUES (:uid, :type, :date_days, :date, :roles_json)`, rec)
		if err != nil {
			return fmt.Errorf("insert event %s: %w", rec.UID, err)
		}
		for _, id := range inst.Entities() {
			_, err := tx.Exec(
				"INSERT OR IGNORE INTO personal_history (entity_id, event_uid) VALUES (?, ?)",
				uint64(id), rec.UID,
			)
			if err != nil {
				return fmt.Errorf("insert history %d: %w", id, err)
			}
		}
	}

	return tx.Commit()
}

// Listener buffers every dispatched event until Flush.
func (db *DB) Listener() lifeevent.Listener {
	return func(_ *ecs.World, inst *lifeevent.Instance) {
		db.pending = append(db.pending, inst)
	}
}

// Pending is the number of buffered events.
func (db *DB) Pending() int { return len(db.pending) }

// Flush writes buffered events.
func (db *DB) Flush() error {
	if err := db.SaveEvents(db.pending); err != nil {
		return err
	}
	db.pending = nil
	return nil
}

// SaveMeta stores a key-value pair in world metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	return value, err
}

// SaveWorldState performs a full save of all world state.
func (db *DB) SaveWorldState(sim *engine.Simulation) error {
	entities := EntityRecords(sim.World)
	edges := RelationshipRecords(sim.Graph)
	slog.Info("saving world state", "entities", len(entities), "relationships", len(edges))

	if err := db.SaveEntities(entities); err != nil {
		return fmt.Errorf("save entities: %w", err)
	}
	if err := db.SaveRelationships(edges); err != nil {
		return fmt.Errorf("save relationships: %w", err)
	}
	if err := db.SaveEvents(sim.History().Events()); err != nil {
		return fmt.Errorf("save events: %w", err)
	}
	db.pending = nil

	meta := map[string]string{
		"seed":   fmt.Sprintf("%d", sim.Config.Seed),
		"run_id": sim.RunID.String(),
		"date":   sim.Clock.Now.String(),
		"tick":   fmt.Sprintf("%d", sim.Engine.Tick),
	}
	for _, k := range []string{"seed", "run_id", "date", "tick"} {
		if err := db.SaveMeta(k, meta[k]); err != nil {
			return fmt.Errorf("save meta: %w", err)
		}
	}

	slog.Info("world state saved")
	return nil
}

// RecentEvents returns the most recent N events, newest first.
func (db *DB) RecentEvents(limit int) ([]EventRecord, error) {
	var events []EventRecord
	err := db.conn.Select(&events,
		"SELECT uid, type, date_days, date, roles_json FROM life_events ORDER BY seq DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	return decodeAll(events)
}

// History returns an entity's life events, oldest first.
func (db *DB) History(entityID uint64) ([]EventRecord, error) {
	var events []EventRecord
	err := db.conn.Select(&events, `
		SELECT e.uid, e.type, e.date_days, e.date, e.roles_json
		FROM personal_history h
		JOIN life_events e ON e.uid = h.event_uid
		WHERE h.entity_id = ?
		ORDER BY e.seq`,
		entityID,
	)
	if err != nil {
		return nil, err
	}
	return decodeAll(events)
}

// Entity loads one stored entity.
func (db *DB) Entity(id uint64) (EntityRecord, error) {
	var rec EntityRecord
	err := db.conn.Get(&rec, `SELECT id, name, kind, status, age, stage, workplace, role, residence
		FROM entities WHERE id = ?`, id)
	return rec, err
}

func decodeAll(events []EventRecord) ([]EventRecord, error) {
	for i := range events {
		if err := events[i].decodeRoles(); err != nil {
			return nil, fmt.Errorf("event %s: %w", events[i].UID, err)
		}
	}
	return events, nil
}
