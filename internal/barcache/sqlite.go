package barcache

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"PatternSentinel/internal/model"
)

// SQLiteCache persists fetched bar series to a SQLite database.
type SQLiteCache struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteCache opens (or creates) the SQLite database and runs migrations.
func NewSQLiteCache(dbPath string) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	c := &SQLiteCache{db: db}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Infof("sqlite bar cache opened: %s", dbPath)
	return c, nil
}

func (c *SQLiteCache) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS series (
			symbol     TEXT NOT NULL,
			interval   TEXT NOT NULL,
			fetched_at INTEGER NOT NULL,
			PRIMARY KEY (symbol, interval)
		)`,
		`CREATE TABLE IF NOT EXISTS bars (
			symbol   TEXT NOT NULL,
			interval TEXT NOT NULL,
			ts       INTEGER NOT NULL,
			open     REAL,
			high     REAL,
			low      REAL,
			close    REAL,
			volume   REAL,
			PRIMARY KEY (symbol, interval, ts)
		)`,
	}

	for _, s := range stmts {
		if _, err := c.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// Load returns the cached series for (symbol, interval), or nil, nil when
// nothing is cached.
func (c *SQLiteCache) Load(symbol string, interval model.Interval) (*model.Series, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var fetchedAt int64
	err := c.db.QueryRow(
		`SELECT fetched_at FROM series WHERE symbol = ? AND interval = ?`,
		symbol, string(interval),
	).Scan(&fetchedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load series meta: %w", err)
	}

	rows, err := c.db.Query(
		`SELECT ts, open, high, low, close, volume FROM bars
		 WHERE symbol = ? AND interval = ? ORDER BY ts`,
		symbol, string(interval),
	)
	if err != nil {
		return nil, fmt.Errorf("load bars: %w", err)
	}
	defer rows.Close()

	var bars []model.Bar
	for rows.Next() {
		var ts int64
		var b model.Bar
		if err := rows.Scan(&ts, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		b.Time = time.Unix(ts, 0)
		bars = append(bars, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bars: %w", err)
	}
	if len(bars) == 0 {
		return nil, nil
	}

	return &model.Series{
		Symbol:    symbol,
		Interval:  interval,
		Bars:      bars,
		FetchedAt: time.Unix(fetchedAt, 0),
	}, nil
}

// Store replaces the cached bars for the series' (symbol, interval) pair
// inside a single transaction.
func (c *SQLiteCache) Store(s *model.Series) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM bars WHERE symbol = ? AND interval = ?`,
		s.Symbol, string(s.Interval)); err != nil {
		return fmt.Errorf("clear bars: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO bars
		(symbol, interval, ts, open, high, low, close, volume)
		VALUES (?,?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, b := range s.Bars {
		if _, err := stmt.Exec(s.Symbol, string(s.Interval), b.Time.Unix(),
			b.Open, b.High, b.Low, b.Close, b.Volume); err != nil {
			return fmt.Errorf("insert bar: %w", err)
		}
	}

	if _, err := tx.Exec(
		`INSERT INTO series (symbol, interval, fetched_at) VALUES (?,?,?)
		 ON CONFLICT(symbol, interval) DO UPDATE SET fetched_at = excluded.fetched_at`,
		s.Symbol, string(s.Interval), s.FetchedAt.Unix(),
	); err != nil {
		return fmt.Errorf("upsert series meta: %w", err)
	}
	return tx.Commit()
}

func (c *SQLiteCache) Close() error {
	log.Info("closing sqlite bar cache")
	return c.db.Close()
}
