// Package persistence provides SQLite-based world state storage.
package persistence

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/conflict-sim/internal/diplomacy"
	"github.com/talgya/conflict-sim/internal/faction"
	"github.com/talgya/conflict-sim/internal/tension"
	"github.com/talgya/conflict-sim/internal/war"
)

// DB wraps a SQLite connection for world state persistence.
type DB struct {
	conn *sqlx.DB
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
	CREATE TABLE IF NOT EXISTS factions (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		data_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS regions (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		terrain_type TEXT NOT NULL,
		controller_id TEXT,
		stability REAL NOT NULL,
		population INTEGER NOT NULL,
		claims_json TEXT NOT NULL,
		resources_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS tensions (
		region_id TEXT NOT NULL,
		faction_a TEXT NOT NULL,
		faction_b TEXT NOT NULL,
		value REAL NOT NULL,
		last_updated TEXT NOT NULL,
		PRIMARY KEY (region_id, faction_a, faction_b)
	);

	CREATE TABLE IF NOT EXISTS wars (
		id TEXT PRIMARY KEY,
		faction_a TEXT NOT NULL,
		faction_b TEXT NOT NULL,
		is_active INTEGER NOT NULL,
		data_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS peace_attempts (
		id TEXT PRIMARY KEY,
		war_id TEXT NOT NULL,
		status TEXT NOT NULL,
		data_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sanctions (
		id TEXT PRIMARY KEY,
		status TEXT NOT NULL,
		data_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS alliances (
		id TEXT PRIMARY KEY,
		status TEXT NOT NULL,
		data_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS proxy_wars (
		id TEXT PRIMARY KEY,
		status TEXT NOT NULL,
		data_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS diplomatic_events (
		id TEXT PRIMARY KEY,
		event_type TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		data_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_wars_active ON wars(is_active);
	CREATE INDEX IF NOT EXISTS idx_peace_attempts_war ON peace_attempts(war_id);
	CREATE INDEX IF NOT EXISTS idx_events_type ON diplomatic_events(event_type);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveFactions writes all factions to the database (full replace).
func (db *DB) SaveFactions(factions []*faction.Faction) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM factions"); err != nil {
		return err
	}

	for _, f := range factions {
		data, err := json.Marshal(f)
		if err != nil {
			return fmt.Errorf("marshal faction %s: %w", f.ID, err)
		}
		if _, err := tx.Exec(
			"INSERT INTO factions (id, name, data_json) VALUES (?, ?, ?)",
			f.ID, f.Name, string(data),
		); err != nil {
			return fmt.Errorf("insert faction %s: %w", f.ID, err)
		}
	}

	return tx.Commit()
}

// LoadFactions reads every stored faction.
func (db *DB) LoadFactions() ([]*faction.Faction, error) {
	var rows []struct {
		ID       string `db:"id"`
		Name     string `db:"name"`
		DataJSON string `db:"data_json"`
	}
	if err := db.conn.Select(&rows, "SELECT id, name, data_json FROM factions"); err != nil {
		return nil, err
	}

	out := make([]*faction.Faction, 0, len(rows))
	for _, row := range rows {
		var f faction.Faction
		if err := json.Unmarshal([]byte(row.DataJSON), &f); err != nil {
			return nil, fmt.Errorf("unmarshal faction %s: %w", row.ID, err)
		}
		out = append(out, &f)
	}
	return out, nil
}

// SaveRegions writes all regions to the database (full replace).
func (db *DB) SaveRegions(regions []*faction.Region) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM regions"); err != nil {
		return err
	}

	for _, r := range regions {
		claims, _ := json.Marshal(r.Claims)
		resources, _ := json.Marshal(r.Resources)
		if _, err := tx.Exec(`INSERT INTO regions
			(id, name, terrain_type, controller_id, stability, population, claims_json, resources_json)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, r.Name, r.TerrainType, r.ControllerID,
			r.Stability, r.Population, string(claims), string(resources),
		); err != nil {
			return fmt.Errorf("insert region %s: %w", r.ID, err)
		}
	}

	return tx.Commit()
}

// LoadRegions reads every stored region.
func (db *DB) LoadRegions() ([]*faction.Region, error) {
	var rows []struct {
		ID            string  `db:"id"`
		Name          string  `db:"name"`
		TerrainType   string  `db:"terrain_type"`
		ControllerID  string  `db:"controller_id"`
		Stability     float64 `db:"stability"`
		Population    int     `db:"population"`
		ClaimsJSON    string  `db:"claims_json"`
		ResourcesJSON string  `db:"resources_json"`
	}
	if err := db.conn.Select(&rows, `SELECT id, name, terrain_type, controller_id,
		stability, population, claims_json, resources_json FROM regions`); err != nil {
		return nil, err
	}

	out := make([]*faction.Region, 0, len(rows))
	for _, row := range rows {
		r := &faction.Region{
			ID:           row.ID,
			Name:         row.Name,
			TerrainType:  row.TerrainType,
			ControllerID: row.ControllerID,
			Stability:    row.Stability,
			Population:   row.Population,
		}
		if err := json.Unmarshal([]byte(row.ClaimsJSON), &r.Claims); err != nil {
			return nil, fmt.Errorf("unmarshal claims for %s: %w", row.ID, err)
		}
		if err := json.Unmarshal([]byte(row.ResourcesJSON), &r.Resources); err != nil {
			return nil, fmt.Errorf("unmarshal resources for %s: %w", row.ID, err)
		}
		out = append(out, r)
	}
	return out, nil
}

// SaveTensions writes every tension record tracked by the manager (full replace).
func (db *DB) SaveTensions(tm *tension.Manager) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM tensions"); err != nil {
		return err
	}

	for _, regionID := range tm.Regions() {
		for _, rec := range tm.Records(regionID) {
			if _, err := tx.Exec(`INSERT INTO tensions
				(region_id, faction_a, faction_b, value, last_updated)
				VALUES (?, ?, ?, ?, ?)`,
				rec.RegionID, rec.Pair.A, rec.Pair.B,
				rec.Value, rec.LastUpdated.Format(time.RFC3339Nano),
			); err != nil {
				return fmt.Errorf("insert tension %s/%s-%s: %w", rec.RegionID, rec.Pair.A, rec.Pair.B, err)
			}
		}
	}

	return tx.Commit()
}

// LoadTensions restores stored tension records into the manager.
func (db *DB) LoadTensions(tm *tension.Manager) error {
	var rows []struct {
		RegionID    string  `db:"region_id"`
		FactionA    string  `db:"faction_a"`
		FactionB    string  `db:"faction_b"`
		Value       float64 `db:"value"`
		LastUpdated string  `db:"last_updated"`
	}
	if err := db.conn.Select(&rows,
		"SELECT region_id, faction_a, faction_b, value, last_updated FROM tensions"); err != nil {
		return err
	}

	for _, row := range rows {
		ts, err := time.Parse(time.RFC3339Nano, row.LastUpdated)
		if err != nil {
			return fmt.Errorf("parse tension timestamp: %w", err)
		}
		tm.Restore(tension.Record{
			RegionID:    row.RegionID,
			Pair:        tension.NewPairKey(row.FactionA, row.FactionB),
			Value:       row.Value,
			LastUpdated: ts,
		})
	}
	return nil
}

// SaveWars writes every war known to the manager (full replace).
func (db *DB) SaveWars(wm *war.Manager, factionIDs []string) error {
	seen := make(map[string]bool)
	wars := make([]*war.War, 0)
	for _, id := range factionIDs {
		for _, w := range wm.WarsInvolving(id) {
			if !seen[w.ID] {
				seen[w.ID] = true
				wars = append(wars, w)
			}
		}
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM wars"); err != nil {
		return err
	}

	for _, w := range wars {
		data, err := json.Marshal(w)
		if err != nil {
			return fmt.Errorf("marshal war %s: %w", w.ID, err)
		}
		active := 0
		if w.IsActive {
			active = 1
		}
		if _, err := tx.Exec(
			"INSERT INTO wars (id, faction_a, faction_b, is_active, data_json) VALUES (?, ?, ?, ?, ?)",
			w.ID, w.FactionAID, w.FactionBID, active, string(data),
		); err != nil {
			return fmt.Errorf("insert war %s: %w", w.ID, err)
		}
	}

	return tx.Commit()
}

// LoadWars restores stored wars into the manager.
func (db *DB) LoadWars(wm *war.Manager) error {
	var rows []struct {
		ID       string `db:"id"`
		DataJSON string `db:"data_json"`
	}
	if err := db.conn.Select(&rows, "SELECT id, data_json FROM wars"); err != nil {
		return err
	}

	for _, row := range rows {
		var w war.War
		if err := json.Unmarshal([]byte(row.DataJSON), &w); err != nil {
			return fmt.Errorf("unmarshal war %s: %w", row.ID, err)
		}
		wm.Restore(&w)
	}
	return nil
}

// SaveDiplomacy writes the complete diplomatic record: peace attempts,
// sanctions, alliances, proxy wars, and events, regardless of status (full
// replace per table).
func (db *DB) SaveDiplomacy(dm *diplomacy.Manager) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"peace_attempts", "sanctions", "alliances", "proxy_wars", "diplomatic_events"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return err
		}
	}

	for _, a := range dm.AllPeaceAttempts() {
		data, err := json.Marshal(a)
		if err != nil {
			return fmt.Errorf("marshal peace attempt %s: %w", a.ID, err)
		}
		if _, err := tx.Exec(
			"INSERT INTO peace_attempts (id, war_id, status, data_json) VALUES (?, ?, ?, ?)",
			a.ID, a.WarID, string(a.Status), string(data),
		); err != nil {
			return err
		}
	}

	for _, s := range dm.AllSanctions() {
		data, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("marshal sanction %s: %w", s.ID, err)
		}
		if _, err := tx.Exec(
			"INSERT INTO sanctions (id, status, data_json) VALUES (?, ?, ?)",
			s.ID, s.Status, string(data),
		); err != nil {
			return err
		}
	}

	for _, a := range dm.AllAlliances() {
		data, err := json.Marshal(a)
		if err != nil {
			return fmt.Errorf("marshal alliance %s: %w", a.ID, err)
		}
		if _, err := tx.Exec(
			"INSERT INTO alliances (id, status, data_json) VALUES (?, ?, ?)",
			a.ID, a.Status, string(data),
		); err != nil {
			return err
		}
	}

	for _, pw := range dm.AllProxyWars() {
		data, err := json.Marshal(pw)
		if err != nil {
			return fmt.Errorf("marshal proxy war %s: %w", pw.ID, err)
		}
		if _, err := tx.Exec(
			"INSERT INTO proxy_wars (id, status, data_json) VALUES (?, ?, ?)",
			pw.ID, pw.Status, string(data),
		); err != nil {
			return err
		}
	}

	for _, ev := range dm.GetDiplomaticEvents(diplomacy.EventFilter{}) {
		data, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("marshal diplomatic event %s: %w", ev.ID, err)
		}
		if _, err := tx.Exec(
			"INSERT INTO diplomatic_events (id, event_type, timestamp, data_json) VALUES (?, ?, ?, ?)",
			ev.ID, ev.EventType, ev.Timestamp.Format(time.RFC3339Nano), string(data),
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LoadDiplomacy restores the stored diplomatic record into the manager.
func (db *DB) LoadDiplomacy(dm *diplomacy.Manager) error {
	var attempts []struct {
		ID       string `db:"id"`
		DataJSON string `db:"data_json"`
	}
	if err := db.conn.Select(&attempts, "SELECT id, data_json FROM peace_attempts"); err != nil {
		return err
	}
	for _, row := range attempts {
		var a diplomacy.PeaceBrokeringAttempt
		if err := json.Unmarshal([]byte(row.DataJSON), &a); err != nil {
			return fmt.Errorf("unmarshal peace attempt %s: %w", row.ID, err)
		}
		dm.RestorePeaceAttempt(&a)
	}

	var sanctions []struct {
		ID       string `db:"id"`
		DataJSON string `db:"data_json"`
	}
	if err := db.conn.Select(&sanctions, "SELECT id, data_json FROM sanctions"); err != nil {
		return err
	}
	for _, row := range sanctions {
		var s diplomacy.Sanction
		if err := json.Unmarshal([]byte(row.DataJSON), &s); err != nil {
			return fmt.Errorf("unmarshal sanction %s: %w", row.ID, err)
		}
		dm.RestoreSanction(&s)
	}

	var alliances []struct {
		ID       string `db:"id"`
		DataJSON string `db:"data_json"`
	}
	if err := db.conn.Select(&alliances, "SELECT id, data_json FROM alliances"); err != nil {
		return err
	}
	for _, row := range alliances {
		var a diplomacy.Alliance
		if err := json.Unmarshal([]byte(row.DataJSON), &a); err != nil {
			return fmt.Errorf("unmarshal alliance %s: %w", row.ID, err)
		}
		dm.RestoreAlliance(&a)
	}

	var proxyWars []struct {
		ID       string `db:"id"`
		DataJSON string `db:"data_json"`
	}
	if err := db.conn.Select(&proxyWars, "SELECT id, data_json FROM proxy_wars"); err != nil {
		return err
	}
	for _, row := range proxyWars {
		var pw diplomacy.ProxyWar
		if err := json.Unmarshal([]byte(row.DataJSON), &pw); err != nil {
			return fmt.Errorf("unmarshal proxy war %s: %w", row.ID, err)
		}
		dm.RestoreProxyWar(&pw)
	}

	var events []struct {
		ID       string `db:"id"`
		DataJSON string `db:"data_json"`
	}
	if err := db.conn.Select(&events, "SELECT id, data_json FROM diplomatic_events"); err != nil {
		return err
	}
	for _, row := range events {
		var ev diplomacy.DiplomaticEvent
		if err := json.Unmarshal([]byte(row.DataJSON), &ev); err != nil {
			return fmt.Errorf("unmarshal diplomatic event %s: %w", row.ID, err)
		}
		dm.RestoreEvent(&ev)
	}

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

// WorldState bundles everything a full snapshot covers.
type WorldState struct {
	Day       int
	Factions  []*faction.Faction
	Regions   []*faction.Region
	Tensions  *tension.Manager
	Wars      *war.Manager
	Diplomacy *diplomacy.Manager
}

// SaveWorldState performs a full save of all world state.
func (db *DB) SaveWorldState(state WorldState) error {
	slog.Info("saving world state",
		"day", state.Day,
		"factions", len(state.Factions),
		"regions", len(state.Regions),
	)

	factionIDs := make([]string, 0, len(state.Factions))
	for _, f := range state.Factions {
		factionIDs = append(factionIDs, f.ID)
	}

	if err := db.SaveFactions(state.Factions); err != nil {
		return fmt.Errorf("save factions: %w", err)
	}
	if err := db.SaveRegions(state.Regions); err != nil {
		return fmt.Errorf("save regions: %w", err)
	}
	if state.Tensions != nil {
		if err := db.SaveTensions(state.Tensions); err != nil {
			return fmt.Errorf("save tensions: %w", err)
		}
	}
	if state.Wars != nil {
		if err := db.SaveWars(state.Wars, factionIDs); err != nil {
			return fmt.Errorf("save wars: %w", err)
		}
	}
	if state.Diplomacy != nil {
		if err := db.SaveDiplomacy(state.Diplomacy); err != nil {
			return fmt.Errorf("save diplomacy: %w", err)
		}
	}
	if err := db.SaveMeta("last_day", fmt.Sprintf("%d", state.Day)); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}

	slog.Info("world state saved")
	return nil
}
