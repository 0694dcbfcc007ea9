// Package persistence provides SQLite-based snapshots of the agent's
// annotated world view, so a session can resume with its remembered
// tiles and pins intact.
package persistence

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/gridscout/internal/view"
	"github.com/talgya/gridscout/internal/world"
)

// DB wraps a SQLite connection for view snapshots.
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
	CREATE TABLE IF NOT EXISTS cells (
		row INTEGER NOT NULL,
		col INTEGER NOT NULL,
		terrain INTEGER NOT NULL,
		content INTEGER NOT NULL,
		content_amount INTEGER NOT NULL,
		elevation INTEGER NOT NULL,
		PRIMARY KEY (row, col)
	);

	CREATE TABLE IF NOT EXISTS pins (
		row INTEGER NOT NULL,
		col INTEGER NOT NULL,
		kind INTEGER NOT NULL,
		num INTEGER NOT NULL DEFAULT 0,
		text TEXT NOT NULL DEFAULT '',
		terrain INTEGER NOT NULL DEFAULT 0,
		content INTEGER NOT NULL DEFAULT 0,
		token TEXT NOT NULL DEFAULT '',
		payload_json TEXT,
		PRIMARY KEY (row, col)
	);

	CREATE TABLE IF NOT EXISTS session_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SetMeta stores a session metadata value.
func (db *DB) SetMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT INTO session_meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	return err
}

// GetMeta retrieves a session metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM session_meta WHERE key = ?", key)
	if err != nil {
		return "", err
	}
	return value, nil
}

// HasSnapshot reports whether a saved view exists.
func (db *DB) HasSnapshot() bool {
	var n int
	if err := db.conn.Get(&n, "SELECT COUNT(*) FROM session_meta WHERE key = 'rows'"); err != nil {
		return false
	}
	return n > 0
}

// SaveView writes the whole view to the database (full replace).
// Opaque pin payloads are stored as JSON when marshalable; their
// identity tokens are always preserved.
func (db *DB) SaveView(v *view.View, sessionID uuid.UUID, tick uint64) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM cells"); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM pins"); err != nil {
		return err
	}

	stmt, err := tx.Preparex(
		"INSERT INTO cells (row, col, terrain, content, content_amount, elevation) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	tiles := v.Tiles()
	for r := range tiles {
		for c := range tiles[r] {
			t := tiles[r][c]
			if t == nil {
				continue
			}
			if _, err := stmt.Exec(r, c, t.Terrain, t.Content, t.ContentAmount, t.Elevation); err != nil {
				return fmt.Errorf("insert cell (%d,%d): %w", r, c, err)
			}
		}
	}

	for _, pc := range v.Pins() {
		if err := insertPin(tx, pc); err != nil {
			return fmt.Errorf("insert pin at %s: %w", pc.Coord, err)
		}
	}

	meta := [][2]string{
		{"session_id", sessionID.String()},
		{"rows", fmt.Sprint(v.Rows())},
		{"cols", fmt.Sprint(v.Cols())},
		{"saved_tick", fmt.Sprint(tick)},
	}
	for _, kv := range meta {
		if _, err := tx.Exec(
			"INSERT INTO session_meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
			kv[0], kv[1],
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func insertPin(tx *sqlx.Tx, pc view.PinnedCell) error {
	p := pc.Pin
	var (
		num     int
		text    string
		terrain world.Terrain
		content world.Content
		token   string
		payload sql.NullString
	)
	switch p.Kind() {
	case view.KindNumber:
		num, _ = p.NumberValue()
	case view.KindText:
		text, _ = p.TextValue()
	case view.KindTerrain:
		terrain, _ = p.TerrainValue()
	case view.KindContent:
		content, _ = p.ContentValue()
	case view.KindBank:
		num, _ = p.BankBalance()
	case view.KindOpaque:
		tok, _ := p.Token()
		token = tok.String()
		if raw, ok := p.Payload(); ok && raw != nil {
			if data, err := json.Marshal(raw); err == nil {
				payload = sql.NullString{String: string(data), Valid: true}
			} else {
				slog.Debug("opaque pin payload not serializable, keeping token only",
					"at", pc.Coord.String(), "error", err)
			}
		}
	}

	_, err := tx.Exec(
		"INSERT INTO pins (row, col, kind, num, text, terrain, content, token, payload_json) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		pc.Coord.Row, pc.Coord.Col, p.Kind(), num, text, terrain, content, token, payload,
	)
	return err
}

// LoadView rebuilds a view from the saved snapshot.
func (db *DB) LoadView() (*view.View, error) {
	rowsStr, err := db.GetMeta("rows")
	if err != nil {
		return nil, fmt.Errorf("load view dimensions: %w", err)
	}
	colsStr, err := db.GetMeta("cols")
	if err != nil {
		return nil, fmt.Errorf("load view dimensions: %w", err)
	}
	var rows, cols int
	if _, err := fmt.Sscan(rowsStr, &rows); err != nil {
		return nil, fmt.Errorf("parse rows: %w", err)
	}
	if _, err := fmt.Sscan(colsStr, &cols); err != nil {
		return nil, fmt.Errorf("parse cols: %w", err)
	}

	v := view.New(rows, cols)

	var cells []struct {
		Row           int           `db:"row"`
		Col           int           `db:"col"`
		Terrain       world.Terrain `db:"terrain"`
		Content       world.Content `db:"content"`
		ContentAmount int           `db:"content_amount"`
		Elevation     int           `db:"elevation"`
	}
	if err := db.conn.Select(&cells, "SELECT row, col, terrain, content, content_amount, elevation FROM cells"); err != nil {
		return nil, fmt.Errorf("load cells: %w", err)
	}

	obs := make([]view.Observation, 0, len(cells))
	for _, c := range cells {
		obs = append(obs, view.Observation{
			Coord: world.Coord{Row: c.Row, Col: c.Col},
			Tile: world.Tile{
				Terrain:       c.Terrain,
				Content:       c.Content,
				ContentAmount: c.ContentAmount,
				Elevation:     c.Elevation,
			},
		})
	}
	if err := v.ApplyObservations(obs); err != nil {
		return nil, fmt.Errorf("apply loaded cells: %w", err)
	}

	var pins []struct {
		Row     int            `db:"row"`
		Col     int            `db:"col"`
		Kind    view.Kind      `db:"kind"`
		Num     int            `db:"num"`
		Text    string         `db:"text"`
		Terrain world.Terrain  `db:"terrain"`
		Content world.Content  `db:"content"`
		Token   string         `db:"token"`
		Payload sql.NullString `db:"payload_json"`
	}
	if err := db.conn.Select(&pins, "SELECT row, col, kind, num, text, terrain, content, token, payload_json FROM pins"); err != nil {
		return nil, fmt.Errorf("load pins: %w", err)
	}

	for _, row := range pins {
		p, err := rebuildPin(row.Kind, row.Num, row.Text, row.Terrain, row.Content, row.Token, row.Payload)
		if err != nil {
			return nil, fmt.Errorf("rebuild pin at (%d,%d): %w", row.Row, row.Col, err)
		}
		if err := v.AddPin(world.Coord{Row: row.Row, Col: row.Col}, p); err != nil {
			return nil, fmt.Errorf("restore pin at (%d,%d): %w", row.Row, row.Col, err)
		}
	}

	return v, nil
}

func rebuildPin(kind view.Kind, num int, text string, terrain world.Terrain, content world.Content, token string, payload sql.NullString) (view.Pin, error) {
	switch kind {
	case view.KindNumber:
		return view.Number(num), nil
	case view.KindText:
		return view.Text(text), nil
	case view.KindTerrain:
		return view.TerrainMarker(terrain), nil
	case view.KindContent:
		return view.ContentMarker(content), nil
	case view.KindCity:
		return view.City(), nil
	case view.KindBank:
		return view.Bank(num), nil
	case view.KindMarket:
		return view.Market(), nil
	case view.KindOpaque:
		id, err := uuid.Parse(token)
		if err != nil {
			return view.Pin{}, fmt.Errorf("parse opaque token: %w", err)
		}
		var raw any
		if payload.Valid {
			if err := json.Unmarshal([]byte(payload.String), &raw); err != nil {
				return view.Pin{}, fmt.Errorf("decode opaque payload: %w", err)
			}
		}
		return view.RestoreOpaque(id, raw), nil
	}
	return view.Pin{}, fmt.Errorf("unknown pin kind %d", kind)
}
