// Package persistence records simulation history to SQLite: weekly quote
// snapshots, settled trades, the event log and run metadata. It is a
// best-effort recorder for analysis, not a durability layer; the
// simulation never reads its own state back.
package persistence

import (
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/tradewinds/internal/crops"
	"github.com/talgya/tradewinds/internal/engine"
	"github.com/talgya/tradewinds/internal/event"
)

// DB wraps a SQLite connection for session history.
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
	CREATE TABLE IF NOT EXISTS quotes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		week INTEGER NOT NULL,
		year INTEGER NOT NULL,
		commodity TEXT NOT NULL,
		origin TEXT NOT NULL,
		bid REAL NOT NULL,
		offer REAL NOT NULL,
		quoted INTEGER NOT NULL,
		inventory INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS trades (
		id TEXT PRIMARY KEY,
		commodity TEXT NOT NULL,
		origin TEXT NOT NULL,
		destination TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		vessel_class TEXT NOT NULL,
		fob_price REAL NOT NULL,
		freight_rate REAL NOT NULL,
		execution_week INTEGER NOT NULL,
		execution_year INTEGER NOT NULL,
		status TEXT NOT NULL,
		total_cost REAL NOT NULL,
		revenue REAL NOT NULL,
		profit REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		week INTEGER NOT NULL,
		year INTEGER NOT NULL,
		message TEXT NOT NULL,
		category TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS session_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_quotes_week ON quotes(year, week);
	CREATE INDEX IF NOT EXISTS idx_events_week ON events(year, week);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveQuotes appends a snapshot of every FOB quote for one week.
func (db *DB) SaveQuotes(e *engine.Engine) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex(`INSERT INTO quotes
		(week, year, commodity, origin, bid, offer, quoted, inventory)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	week, year := e.Week(), e.Year()
	for _, c := range crops.Commodities {
		for _, origin := range e.Market().OriginNames() {
			q := e.Market().FOBQuote(c, origin)
			if q == nil {
				continue
			}
			quoted := 0
			if q.Quoted {
				quoted = 1
			}
			if _, err := stmt.Exec(week, year, string(c), origin, q.Bid, q.Offer, quoted, q.Inventory); err != nil {
				return fmt.Errorf("insert quote %s/%s: %w", c, origin, err)
			}
		}
	}

	return tx.Commit()
}

// SaveTrades writes every trade, active and settled (full replace).
func (db *DB) SaveTrades(trades []*engine.Trade) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM trades"); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO trades
		(id, commodity, origin, destination, quantity, vessel_class,
		 fob_price, freight_rate, execution_week, execution_year,
		 status, total_cost, revenue, profit)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, t := range trades {
		_, err := stmt.Exec(
			t.ID, string(t.Commodity), t.Origin, t.Destination, t.Quantity,
			string(t.Class), t.FOBPrice, t.FreightRate,
			t.ExecutionWeek, t.ExecutionYear, string(t.Status),
			t.TotalCost, t.Revenue, t.Profit,
		)
		if err != nil {
			return fmt.Errorf("insert trade %s: %w", t.ID, err)
		}
	}

	return tx.Commit()
}

// SaveEvents appends events to the database.
func (db *DB) SaveEvents(events []event.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, ev := range events {
		_, err := tx.Exec(
			"INSERT INTO events (week, year, message, category) VALUES (?, ?, ?, ?)",
			ev.Week, ev.Year, ev.Message, string(ev.Category),
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// SaveMeta stores a key-value pair in session metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO session_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM session_meta WHERE key = ?", key)
	return value, err
}

// SaveWeek records one week of history: quotes, trades, fresh events and
// the calendar position.
func (db *DB) SaveWeek(e *engine.Engine) error {
	if err := db.SaveQuotes(e); err != nil {
		return fmt.Errorf("save quotes: %w", err)
	}

	trades := append([]*engine.Trade{}, e.ActiveTrades()...)
	trades = append(trades, e.CompletedTrades()...)
	if err := db.SaveTrades(trades); err != nil {
		return fmt.Errorf("save trades: %w", err)
	}

	if err := db.SaveEvents(db.newEvents(e)); err != nil {
		return fmt.Errorf("save events: %w", err)
	}
	if err := db.SaveMeta("week", fmt.Sprintf("%d", e.Week())); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}
	if err := db.SaveMeta("year", fmt.Sprintf("%d", e.Year())); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}
	if err := db.SaveMeta("capital", fmt.Sprintf("%.2f", e.Ledger().Balance())); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}

	slog.Debug("week saved", "week", e.Week(), "year", e.Year())
	return nil
}

// newEvents returns recorder events not yet written, judged by count.
// The recorder keeps a bounded log, so after long runs the count-based
// cursor may re-save a few events; harmless for an append-only history.
func (db *DB) newEvents(e *engine.Engine) []event.Event {
	all := e.Recorder().All()
	var saved int
	if err := db.conn.Get(&saved, "SELECT COUNT(*) FROM events"); err != nil {
		return all
	}
	if saved >= len(all) {
		return nil
	}
	return all[saved:]
}

// eventRow maps the events table for scanning.
type eventRow struct {
	Week     int    `db:"week"`
	Year     int    `db:"year"`
	Message  string `db:"message"`
	Category string `db:"category"`
}

// RecentEvents returns the most recent N stored events, newest first.
func (db *DB) RecentEvents(limit int) ([]event.Event, error) {
	var rows []eventRow
	err := db.conn.Select(&rows,
		"SELECT week, year, message, category FROM events ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	out := make([]event.Event, len(rows))
	for i, r := range rows {
		out[i] = event.Event{Week: r.Week, Year: r.Year, Message: r.Message, Category: event.Category(r.Category)}
	}
	return out, nil
}
