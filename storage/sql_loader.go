package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"auction-etl/models"
	"auction-etl/utils"
)

// dialect holds driver-specific SQL details. maxParams is the per-statement
// bind-parameter limit.
type dialect struct {
	driver      string
	placeholder func(n int) string
	maxParams   int
}

var (
	postgresDialect = dialect{driver: "postgres", maxParams: 65535, placeholder: func(n int) string { return fmt.Sprintf("$%d", n) }}
	sqliteDialect   = dialect{driver: "sqlite", maxParams: 32766, placeholder: func(int) string { return "?" }}
)

// SQLLoader bulk-loads relation files into PostgreSQL or SQLite.
type SQLLoader struct {
	db        *sql.DB
	dialect   dialect
	batchSize int
	logger    *utils.Logger
}

// NewPostgresLoader connects to PostgreSQL, runs schema migrations and
// returns a ready-to-use loader.
func NewPostgresLoader(dsn string, batchSize int, retry *utils.RetryConfig) (*SQLLoader, error) {
	return openLoader(postgresDialect, dsn, batchSize, retry)
}

// NewSQLiteLoader opens (creating if needed) the SQLite database at path.
func NewSQLiteLoader(path string, batchSize int, retry *utils.RetryConfig) (*SQLLoader, error) {
	return openLoader(sqliteDialect, path, batchSize, retry)
}

func openLoader(d dialect, dsn string, batchSize int, retry *utils.RetryConfig) (*SQLLoader, error) {
	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: open: %w", d.driver, err)
	}

	if err := retry.Do(d.driver+" ping", db.Ping); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", d.driver, err)
	}

	if batchSize < 1 {
		batchSize = 1
	}
	l := &SQLLoader{db: db, dialect: d, batchSize: batchSize, logger: retry.Logger}
	if err := l.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: migrate: %w", d.driver, err)
	}
	return l, nil
}

// Tables carry no keys: users legitimately repeat across listings and
// referential integrity is left to later load steps.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS items (
		item_id        TEXT NOT NULL,
		name           TEXT,
		currently      NUMERIC(12,2),
		buy_price      NUMERIC(12,2),
		first_bid      NUMERIC(12,2),
		number_of_bids INTEGER,
		started        TIMESTAMP,
		ends           TIMESTAMP,
		description    TEXT,
		seller_id      TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		category TEXT NOT NULL,
		item_id  TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS bids (
		item_id   TEXT NOT NULL,
		bidder_id TEXT NOT NULL,
		bid_time  TIMESTAMP,
		amount    NUMERIC(12,2)
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		user_id  TEXT NOT NULL,
		location TEXT,
		rating   INTEGER,
		country  TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_items_item_id      ON items(item_id)`,
	`CREATE INDEX IF NOT EXISTS idx_categories_item_id ON categories(item_id)`,
	`CREATE INDEX IF NOT EXISTS idx_bids_item_id       ON bids(item_id)`,
	`CREATE INDEX IF NOT EXISTS idx_users_user_id      ON users(user_id)`,
}

func (l *SQLLoader) migrate() error {
	for _, stmt := range schema {
		if _, err := l.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Clear deletes all existing rows from the four tables.
func (l *SQLLoader) Clear() error {
	for _, rel := range models.AllRelations {
		if _, err := l.db.Exec("DELETE FROM " + rel.Table()); err != nil {
			return fmt.Errorf("%s: clear %s: %w", l.dialect.driver, rel.Table(), err)
		}
	}
	return nil
}

// LoadDir inserts the rows of every relation file found in dir, one
// transaction per relation. Missing files load nothing.
func (l *SQLLoader) LoadDir(dir, suffix string) (map[models.Relation]int, error) {
	loaded := make(map[models.Relation]int, len(models.AllRelations))
	for _, rel := range models.AllRelations {
		path := DatPath(dir, rel, suffix)
		rows, err := ReadDat(path)
		if errors.Is(err, os.ErrNotExist) {
			if l.logger != nil {
				l.logger.Warn("[loader] %s not found, skipping", path)
			}
			continue
		}
		if err != nil {
			return loaded, err
		}
		if err := l.Load(rel, rows); err != nil {
			return loaded, err
		}
		loaded[rel] = len(rows)
		if l.logger != nil {
			l.logger.Info("[loader] Loaded %d rows into %s", len(rows), rel.Table())
		}
	}
	return loaded, nil
}

// Load inserts rows into the relation's table in batches inside one transaction.
func (l *SQLLoader) Load(rel models.Relation, rows [][]Field) error {
	if len(rows) == 0 {
		return nil
	}
	width := len(rel.Columns())
	for i, row := range rows {
		if len(row) != width {
			return fmt.Errorf("%s: %s row %d has %d fields, want %d",
				l.dialect.driver, rel.Name(), i+1, len(row), width)
		}
	}

	batch := l.batchSize
	if batch*width > l.dialect.maxParams {
		batch = l.dialect.maxParams / width
	}

	tx, err := l.db.Begin()
	if err != nil {
		return fmt.Errorf("%s: begin: %w", l.dialect.driver, err)
	}
	for i := 0; i < len(rows); i += batch {
		end := i + batch
		if end > len(rows) {
			end = len(rows)
		}
		if err := l.insertBatch(tx, rel, rows[i:end]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("%s: insert %s: %w", l.dialect.driver, rel.Table(), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit %s: %w", l.dialect.driver, rel.Table(), err)
	}
	return nil
}

func (l *SQLLoader) insertBatch(tx *sql.Tx, rel models.Relation, batch [][]Field) error {
	cols := rel.Columns()
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]any, 0, len(batch)*len(cols))

	n := 0
	for _, row := range batch {
		ph := make([]string, len(cols))
		for j := range cols {
			n++
			ph[j] = l.dialect.placeholder(n)
		}
		valueStrings = append(valueStrings, "("+strings.Join(ph, ",")+")")
		valueArgs = append(valueArgs, Args(row)...)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		rel.Table(), strings.Join(cols, ", "), strings.Join(valueStrings, ","))

	_, err := tx.Exec(query, valueArgs...)
	return err
}

// Count returns the number of rows in the relation's table.
func (l *SQLLoader) Count(rel models.Relation) (int, error) {
	var n int
	if err := l.db.QueryRow("SELECT COUNT(*) FROM " + rel.Table()).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s: count %s: %w", l.dialect.driver, rel.Table(), err)
	}
	return n, nil
}

// DB exposes the underlying handle for read-back queries.
func (l *SQLLoader) DB() *sql.DB {
	return l.db
}

func (l *SQLLoader) Close() error {
	return l.db.Close()
}
