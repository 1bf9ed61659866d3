// Package persistence provides SQLite-based storage for the world, its
// population, the event log and template cooldowns.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/worldevents/internal/agents"
	"github.com/talgya/worldevents/internal/engine"
	"github.com/talgya/worldevents/internal/events"
	"github.com/talgya/worldevents/internal/world"
)

// Metadata keys.
const (
	metaDay  = "day"
	metaSeed = "seed"
)

// DB wraps a SQLite connection for world state persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path. Writers from the
// day loop and the API wait on each other instead of failing with SQLITE_BUSY.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
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
	CREATE TABLE IF NOT EXISTS agents (
		name TEXT PRIMARY KEY,
		age INTEGER NOT NULL,
		alive INTEGER NOT NULL,
		location TEXT NOT NULL,
		emotion TEXT NOT NULL,
		emotion_intensity REAL NOT NULL,
		traits_json TEXT NOT NULL,
		personality_json TEXT NOT NULL,
		relationships_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		day INTEGER NOT NULL,
		type TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT NOT NULL,
		location TEXT NOT NULL,
		importance REAL NOT NULL,
		parent_event TEXT NOT NULL DEFAULT '',
		participants_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS cooldowns (
		template TEXT PRIMARY KEY,
		last_fired INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS resources (
		name TEXT PRIMARY KEY,
		level REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS locations (
		name TEXT PRIMARY KEY,
		description TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_day ON events(day);
	CREATE INDEX IF NOT EXISTS idx_agents_alive ON agents(alive);
	`
	_, err := db.conn.Exec(schema)
	return err
}

type agentRow struct {
	Name             string  `db:"name"`
	Age              int     `db:"age"`
	Alive            bool    `db:"alive"`
	Location         string  `db:"location"`
	Emotion          string  `db:"emotion"`
	EmotionIntensity float64 `db:"emotion_intensity"`
	Traits           string  `db:"traits_json"`
	Personality      string  `db:"personality_json"`
	Relationships    string  `db:"relationships_json"`
}

// SaveAgents writes all agents to the database (full replace).
func (db *DB) SaveAgents(agentList []*agents.Agent) error {
	return db.inTx(func(tx *sqlx.Tx) error { return saveAgents(tx, agentList) })
}

func saveAgents(tx *sqlx.Tx, agentList []*agents.Agent) error {
	if _, err := tx.Exec("DELETE FROM agents"); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO agents
		(name, age, alive, location, emotion, emotion_intensity,
		 traits_json, personality_json, relationships_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, a := range agentList {
		traitsJSON, _ := json.Marshal(a.Traits)
		personalityJSON, _ := json.Marshal(a.Personality)
		relJSON, _ := json.Marshal(a.Relationships)

		alive := 0
		if a.Alive {
			alive = 1
		}

		_, err := stmt.Exec(
			a.Name, a.Age, alive, a.Location, a.Emotion, a.EmotionIntensity,
			string(traitsJSON), string(personalityJSON), string(relJSON),
		)
		if err != nil {
			return fmt.Errorf("insert agent %s: %w", a.Name, err)
		}
	}
	return nil
}

// LoadAgents reads the saved population in name order.
func (db *DB) LoadAgents() ([]*agents.Agent, error) {
	var rows []agentRow
	if err := db.conn.Select(&rows, "SELECT * FROM agents ORDER BY name"); err != nil {
		return nil, fmt.Errorf("select agents: %w", err)
	}

	out := make([]*agents.Agent, 0, len(rows))
	for _, r := range rows {
		a := &agents.Agent{
			Name:             r.Name,
			Age:              r.Age,
			Alive:            r.Alive,
			Location:         r.Location,
			Emotion:          r.Emotion,
			EmotionIntensity: r.EmotionIntensity,
			Relationships:    make(map[string]agents.RelationshipTier),
		}
		if err := json.Unmarshal([]byte(r.Traits), &a.Traits); err != nil {
			return nil, fmt.Errorf("decode traits of %s: %w", r.Name, err)
		}
		if err := json.Unmarshal([]byte(r.Personality), &a.Personality); err != nil {
			return nil, fmt.Errorf("decode personality of %s: %w", r.Name, err)
		}
		if err := json.Unmarshal([]byte(r.Relationships), &a.Relationships); err != nil {
			return nil, fmt.Errorf("decode relationships of %s: %w", r.Name, err)
		}
		if a.Relationships == nil {
			a.Relationships = make(map[string]agents.RelationshipTier)
		}
		out = append(out, a)
	}
	return out, nil
}

type eventRow struct {
	ID           string  `db:"id"`
	Day          int     `db:"day"`
	Type         string  `db:"type"`
	Name         string  `db:"name"`
	Description  string  `db:"description"`
	Location     string  `db:"location"`
	Importance   float64 `db:"importance"`
	ParentEvent  string  `db:"parent_event"`
	Participants string  `db:"participants_json"`
}

// SaveEvents appends events to the log and returns the IDs assigned to them,
// in the same order. The events themselves are not modified.
func (db *DB) SaveEvents(evs []events.Event) ([]string, error) {
	if len(evs) == 0 {
		return nil, nil
	}
	var ids []string
	err := db.inTx(func(tx *sqlx.Tx) error {
		var err error
		ids, err = insertEvents(tx, evs)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func insertEvents(tx *sqlx.Tx, evs []events.Event) ([]string, error) {
	ids := make([]string, 0, len(evs))
	for _, e := range evs {
		id := uuid.NewString()
		participants := e.Participants
		if participants == nil {
			participants = []string{}
		}
		partJSON, _ := json.Marshal(participants)

		_, err := tx.Exec(`INSERT INTO events
			(id, day, type, name, description, location, importance, parent_event, participants_json)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, e.Day, string(e.Type), e.Name, e.Description, e.Location,
			e.Importance, e.ParentEvent, string(partJSON),
		)
		if err != nil {
			return nil, fmt.Errorf("insert event %s: %w", e.Name, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// RecentEvents returns logged events on or after sinceDay, oldest first.
func (db *DB) RecentEvents(sinceDay int) ([]events.Event, error) {
	var rows []eventRow
	err := db.conn.Select(&rows, `SELECT id, day, type, name, description, location,
		importance, parent_event, participants_json
		FROM events WHERE day >= ? ORDER BY seq`, sinceDay)
	if err != nil {
		return nil, fmt.Errorf("select events: %w", err)
	}

	out := make([]events.Event, 0, len(rows))
	for _, r := range rows {
		e := events.Event{
			ID:          r.ID,
			Type:        events.EventType(r.Type),
			Name:        r.Name,
			Day:         r.Day,
			Location:    r.Location,
			Description: r.Description,
			Importance:  r.Importance,
			ParentEvent: r.ParentEvent,
		}
		if err := json.Unmarshal([]byte(r.Participants), &e.Participants); err != nil {
			return nil, fmt.Errorf("decode participants of event %s: %w", r.ID, err)
		}
		out = append(out, e)
	}
	return out, nil
}

// SaveCooldowns writes the cooldown table (full replace).
func (db *DB) SaveCooldowns(lastFired map[string]int) error {
	return db.inTx(func(tx *sqlx.Tx) error { return saveCooldowns(tx, lastFired) })
}

func saveCooldowns(tx *sqlx.Tx, lastFired map[string]int) error {
	if _, err := tx.Exec("DELETE FROM cooldowns"); err != nil {
		return err
	}
	for name, day := range lastFired {
		if _, err := tx.Exec("INSERT INTO cooldowns (template, last_fired) VALUES (?, ?)", name, day); err != nil {
			return fmt.Errorf("insert cooldown %s: %w", name, err)
		}
	}
	return nil
}

// LoadCooldowns reads the saved cooldown table.
func (db *DB) LoadCooldowns() (map[string]int, error) {
	var rows []struct {
		Template  string `db:"template"`
		LastFired int    `db:"last_fired"`
	}
	if err := db.conn.Select(&rows, "SELECT template, last_fired FROM cooldowns"); err != nil {
		return nil, fmt.Errorf("select cooldowns: %w", err)
	}

	out := make(map[string]int, len(rows))
	for _, r := range rows {
		out[r.Template] = r.LastFired
	}
	return out, nil
}

// SaveWorld writes the calendar, resources and locations.
func (db *DB) SaveWorld(w *world.World) error {
	return db.inTx(func(tx *sqlx.Tx) error { return saveWorld(tx, w) })
}

func saveWorld(tx *sqlx.Tx, w *world.World) error {
	if _, err := tx.Exec("DELETE FROM resources"); err != nil {
		return err
	}
	for name, level := range w.Resources {
		if _, err := tx.Exec("INSERT INTO resources (name, level) VALUES (?, ?)", name, level); err != nil {
			return fmt.Errorf("insert resource %s: %w", name, err)
		}
	}

	if _, err := tx.Exec("DELETE FROM locations"); err != nil {
		return err
	}
	for name, desc := range w.Locations {
		if _, err := tx.Exec("INSERT INTO locations (name, description) VALUES (?, ?)", name, desc); err != nil {
			return fmt.Errorf("insert location %s: %w", name, err)
		}
	}

	if _, err := tx.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		metaDay, strconv.Itoa(w.Day),
	); err != nil {
		return fmt.Errorf("save day: %w", err)
	}
	return nil
}

// LoadWorld reads the saved world. Noise jitter is not persisted; callers
// reattach it with World.AttachNoise.
func (db *DB) LoadWorld() (*world.World, error) {
	dayStr, err := db.GetMeta(metaDay)
	if err != nil {
		return nil, fmt.Errorf("load day: %w", err)
	}
	day, err := strconv.Atoi(dayStr)
	if err != nil {
		return nil, fmt.Errorf("parse day %q: %w", dayStr, err)
	}

	w := world.New(day)

	var resources []struct {
		Name  string  `db:"name"`
		Level float64 `db:"level"`
	}
	if err := db.conn.Select(&resources, "SELECT name, level FROM resources"); err != nil {
		return nil, fmt.Errorf("select resources: %w", err)
	}
	for _, r := range resources {
		w.Resources[r.Name] = r.Level
	}

	var locations []struct {
		Name        string `db:"name"`
		Description string `db:"description"`
	}
	if err := db.conn.Select(&locations, "SELECT name, description FROM locations"); err != nil {
		return nil, fmt.Errorf("select locations: %w", err)
	}
	for _, l := range locations {
		w.Locations[l.Name] = l.Description
	}

	return w, nil
}

// HasWorldState reports whether a world has been saved before.
func (db *DB) HasWorldState() (bool, error) {
	_, err := db.GetMeta(metaDay)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// SaveSeed records the world seed so resumed runs reuse the same noise field.
func (db *DB) SaveSeed(seed int64) error {
	return db.SaveMeta(metaSeed, strconv.FormatInt(seed, 10))
}

// LoadSeed returns the recorded world seed.
func (db *DB) LoadSeed() (int64, error) {
	v, err := db.GetMeta(metaSeed)
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(v, 10, 64)
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

// SaveWorldState performs a full save of world, population and cooldowns.
func (db *DB) SaveWorldState(sim *engine.Simulation) error {
	_, err := db.SaveDay(sim, nil)
	return err
}

// SaveDay appends a finished day's events and saves the world, population and
// cooldowns in one transaction, so a resumed world never replays a day whose
// events are already logged. It returns the IDs assigned to the events.
func (db *DB) SaveDay(sim *engine.Simulation, todays []events.Event) ([]string, error) {
	slog.Debug("saving world state", "day", sim.World.Day, "agents", len(sim.Agents), "events", len(todays))

	var ids []string
	err := db.inTx(func(tx *sqlx.Tx) error {
		var err error
		if ids, err = insertEvents(tx, todays); err != nil {
			return fmt.Errorf("save events: %w", err)
		}
		if err := saveWorld(tx, sim.World); err != nil {
			return fmt.Errorf("save world: %w", err)
		}
		if err := saveAgents(tx, sim.Agents); err != nil {
			return fmt.Errorf("save agents: %w", err)
		}
		if err := saveCooldowns(tx, sim.Events.Cooldowns().Snapshot()); err != nil {
			return fmt.Errorf("save cooldowns: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (db *DB) inTx(fn func(tx *sqlx.Tx) error) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
