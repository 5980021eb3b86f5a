package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/arusso/matchbook/internal/markets"
	"github.com/arusso/matchbook/internal/models"
)

const defaultPath = "data/matchbook.db"

// Store wraps a SQLite DB connection.
type Store struct {
	path string
	db   *sql.DB
}

// Open creates (if needed) and opens the SQLite database.
func Open(path string) (*Store, error) {
	if path == "" {
		path = defaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure data dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := ensureWAL(db); err != nil {
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	return &Store{path: path, db: db}, nil
}

func ensureWAL(db *sql.DB) error {
	const (
		maxAttempts = 5
		delay       = 200 * time.Millisecond
	)
	for i := 0; i < maxAttempts; i++ {
		if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			if strings.Contains(err.Error(), "database is locked") {
				time.Sleep(delay)
				continue
			}
			return err
		}
		return nil
	}
	return fmt.Errorf("database is locked after retries")
}

// Path returns the path backing the store.
func (s *Store) Path() string {
	return s.path
}

// Close closes the DB.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// CreateTables ensures the markets and opportunities tables exist.
func (s *Store) CreateTables(ctx context.Context) error {
	for _, stmt := range []string{marketsSchemaSQL, opportunitiesSchemaSQL} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// DropTables removes all tables.
func (s *Store) DropTables(ctx context.Context) error {
	for _, stmt := range []string{
		`DROP TABLE IF EXISTS markets;`,
		`DROP TABLE IF EXISTS opportunities;`,
	} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// ClearTables truncates all tables.
func (s *Store) ClearTables(ctx context.Context) error {
	for _, stmt := range []string{
		`DELETE FROM markets;`,
		`DELETE FROM opportunities;`,
	} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

const marketsSchemaSQL = `
CREATE TABLE IF NOT EXISTS markets (
	platform TEXT NOT NULL,
	market_id TEXT NOT NULL,
	question TEXT NOT NULL,
	category TEXT,
	close_time TEXT,
	yes_price REAL,
	no_price REAL,
	liquidity REAL,
	status TEXT,
	captured_at TEXT,
	last_seen_at TEXT,
	PRIMARY KEY (platform, market_id)
);
CREATE INDEX IF NOT EXISTS markets_status_idx ON markets(platform, status);
`

const marketUpsertSQL = `
INSERT INTO markets (
	platform, market_id, question, category, close_time,
	yes_price, no_price, liquidity, status, captured_at, last_seen_at
) VALUES (?,?,?,?,?,?,?,?,?,?,?)
ON CONFLICT(platform, market_id) DO UPDATE SET
	question=excluded.question,
	category=excluded.category,
	close_time=excluded.close_time,
	yes_price=excluded.yes_price,
	no_price=excluded.no_price,
	liquidity=excluded.liquidity,
	status=excluded.status,
	captured_at=excluded.captured_at,
	last_seen_at=excluded.last_seen_at;
`

// UpsertSnapshots inserts/updates the latest normalized record per market.
func (s *Store) UpsertSnapshots(ctx context.Context, snaps []models.MarketSnapshot) error {
	if len(snaps) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, marketUpsertSQL)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, snap := range snaps {
		if err := execUpsert(ctx, stmt, snap, now); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// UpsertSnapshot stores a single snapshot.
func (s *Store) UpsertSnapshot(ctx context.Context, snap models.MarketSnapshot) error {
	return s.UpsertSnapshots(ctx, []models.MarketSnapshot{snap})
}

func execUpsert(ctx context.Context, stmt *sql.Stmt, snap models.MarketSnapshot, ts string) error {
	m := snap.Market
	_, err := stmt.ExecContext(
		ctx,
		string(m.Platform),
		m.ID,
		m.Question,
		categoryValue(m.Category),
		timeValue(m.CloseTime),
		floatValue(m.YesPrice),
		floatValue(m.NoPrice),
		floatValue(m.Liquidity),
		string(m.Status),
		snap.CapturedAt.UTC().Format(time.RFC3339Nano),
		ts,
	)
	return err
}

// GetMarketStatus returns the stored lifecycle status, or ("", false) when
// the market is unknown.
func (s *Store) GetMarketStatus(ctx context.Context, platform markets.Platform, id string) (markets.Status, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT status FROM markets WHERE platform = ? AND market_id = ?`,
		string(platform), id)
	var status string
	if err := row.Scan(&status); err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, err
	}
	return markets.Status(status), true, nil
}

// ListMarkets returns the stored records for a platform ordered by ID.
func (s *Store) ListMarkets(ctx context.Context, platform markets.Platform) ([]markets.Market, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT platform, market_id, question, category, close_time,
	yes_price, no_price, liquidity, status
FROM markets WHERE platform = ? ORDER BY market_id`, string(platform))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []markets.Market
	for rows.Next() {
		var (
			m         markets.Market
			plat      string
			category  sql.NullString
			closeTime sql.NullString
			yesPrice  sql.NullFloat64
			noPrice   sql.NullFloat64
			liquidity sql.NullFloat64
			status    sql.NullString
		)
		if err := rows.Scan(&plat, &m.ID, &m.Question, &category, &closeTime,
			&yesPrice, &noPrice, &liquidity, &status); err != nil {
			return nil, err
		}
		m.Platform = markets.Platform(plat)
		if category.Valid && category.String != "" {
			c := markets.Category(category.String)
			m.Category = &c
		}
		if closeTime.Valid && closeTime.String != "" {
			if t, err := time.Parse(time.RFC3339Nano, closeTime.String); err == nil {
				m.CloseTime = &t
			}
		}
		if yesPrice.Valid {
			v := yesPrice.Float64
			m.YesPrice = &v
		}
		if noPrice.Valid {
			v := noPrice.Float64
			m.NoPrice = &v
		}
		if liquidity.Valid {
			v := liquidity.Float64
			m.Liquidity = &v
		}
		if status.Valid {
			m.Status = markets.Status(status.String)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func categoryValue(c *markets.Category) any {
	if c == nil {
		return nil
	}
	return string(*c)
}

func timeValue(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func floatValue(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

// Migrate brings an existing database up to the current schema: it creates
// missing tables and backfills the last_seen_at column that early databases
// lack.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.CreateTables(ctx); err != nil {
		return err
	}
	hasColumn, err := s.columnExists(ctx, "markets", "last_seen_at")
	if err != nil {
		return err
	}
	if !hasColumn {
		if _, err := s.db.ExecContext(ctx, `ALTER TABLE markets ADD COLUMN last_seen_at TEXT;`); err != nil {
			return fmt.Errorf("add last_seen_at: %w", err)
		}
	}
	return nil
}

func (s *Store) columnExists(ctx context.Context, table, column string) (bool, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`PRAGMA table_info(%s);`, table))
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid     int
			name    string
			ctype   string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dflt, &pk); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}
