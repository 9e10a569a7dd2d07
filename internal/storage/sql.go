package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/bptracker/internal/apperr"
	"github.com/starford/bptracker/internal/reading"
)

// Supported database/sql driver names.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

const sqliteSchemaSQL = `
CREATE TABLE IF NOT EXISTS entries (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	date_time  TEXT NOT NULL,
	systolic   INTEGER NOT NULL,
	diastolic  INTEGER NOT NULL,
	heart_rate INTEGER NOT NULL,
	location   TEXT,
	notes      TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_entries_date_time ON entries(date_time);
`

const postgresSchemaSQL = `
CREATE TABLE IF NOT EXISTS entries (
	id         SERIAL PRIMARY KEY,
	date_time  TEXT NOT NULL,
	systolic   INTEGER NOT NULL,
	diastolic  INTEGER NOT NULL,
	heart_rate INTEGER NOT NULL,
	location   TEXT,
	notes      TEXT,
	created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_entries_date_time ON entries(date_time);
`

type dialect struct {
	schema string
	// dsn decorates the user-supplied connection string.
	dsn func(string) string
	// positional placeholders ($1, $2, ...) instead of '?'.
	positional bool
}

var dialects = map[string]dialect{
	DriverSQLite: {
		schema: sqliteSchemaSQL,
		dsn: func(dsn string) string {
			sep := "?"
			if strings.Contains(dsn, "?") {
				sep = "&"
			}
			return dsn + sep + "_journal_mode=WAL&_busy_timeout=5000"
		},
	},
	DriverPostgres: {
		schema:     postgresSchemaSQL,
		dsn:        func(dsn string) string { return dsn },
		positional: true,
	},
}

// rebind rewrites '?' placeholders for dialects that use positional ones.
func (d dialect) rebind(query string) string {
	if !d.positional {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SQL implements Provider on top of a relational database.
type SQL struct {
	conn    *sql.DB
	dialect dialect
}

// OpenSQL opens (or creates) the database and applies the schema.
func OpenSQL(driver, dsn string) (*SQL, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("storage: unsupported sql driver %q", driver)
	}
	conn, err := sql.Open(driver, d.dsn(dsn))
	if err != nil {
		return nil, fmt.Errorf("storage: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("storage: ping: %w", err)
	}
	s := &SQL{conn: conn, dialect: d}
	if err := s.Migrate(context.Background()); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

// NewSQL wraps an already open connection without touching the schema.
func NewSQL(conn *sql.DB, driver string) (*SQL, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("storage: unsupported sql driver %q", driver)
	}
	return &SQL{conn: conn, dialect: d}, nil
}

// Migrate creates the entries table if it does not exist.
func (s *SQL) Migrate(ctx context.Context) error {
	if _, err := s.conn.ExecContext(ctx, s.dialect.schema); err != nil {
		return fmt.Errorf("storage: apply schema: %w", err)
	}
	return nil
}

const selectColumns = `SELECT id, date_time, systolic, diastolic, heart_rate, COALESCE(location, ''), COALESCE(notes, '') FROM entries`

type scanner interface {
	Scan(dest ...any) error
}

func scanReading(sc scanner) (reading.Reading, error) {
	var (
		r  reading.Reading
		dt string
	)
	if err := sc.Scan(&r.ID, &dt, &r.Systolic, &r.Diastolic, &r.HeartRate, &r.Location, &r.Notes); err != nil {
		return reading.Reading{}, err
	}
	ts, err := reading.ParseTimestamp(dt)
	if err != nil {
		return reading.Reading{}, fmt.Errorf("storage: entry %d date_time: %w", r.ID, err)
	}
	r.Timestamp = ts
	return r, nil
}

// List returns all readings, newest first.
func (s *SQL) List(ctx context.Context) ([]reading.Reading, error) {
	rows, err := s.conn.QueryContext(ctx, selectColumns+` ORDER BY date_time DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	defer rows.Close()

	var out []reading.Reading
	for rows.Next() {
		r, err := scanReading(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Get returns the reading with the given id.
func (s *SQL) Get(ctx context.Context, id int64) (reading.Reading, error) {
	row := s.conn.QueryRowContext(ctx, s.dialect.rebind(selectColumns+` WHERE id = ?`), id)
	r, err := scanReading(row)
	if errors.Is(err, sql.ErrNoRows) {
		return reading.Reading{}, apperr.ErrNotFound
	}
	if err != nil {
		return reading.Reading{}, fmt.Errorf("storage: get %d: %w", id, err)
	}
	return r, nil
}

// Create inserts r and returns it with the database-assigned id.
func (s *SQL) Create(ctx context.Context, r reading.Reading) (reading.Reading, error) {
	q := s.dialect.rebind(`
		INSERT INTO entries (date_time, systolic, diastolic, heart_rate, location, notes)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`)
	err := s.conn.QueryRowContext(ctx, q,
		r.DateTime(), r.Systolic, r.Diastolic, r.HeartRate, r.Location, r.Notes,
	).Scan(&r.ID)
	if err != nil {
		return reading.Reading{}, fmt.Errorf("storage: insert: %w", err)
	}
	return r, nil
}

const deleteReturning = `DELETE FROM entries WHERE id = ?
	RETURNING id, date_time, systolic, diastolic, heart_rate, COALESCE(location, ''), COALESCE(notes, '')`

// Delete removes the reading with the given id in a single statement.
func (s *SQL) Delete(ctx context.Context, id int64) (reading.Reading, error) {
	r, err := scanReading(s.conn.QueryRowContext(ctx, s.dialect.rebind(deleteReturning), id))
	if errors.Is(err, sql.ErrNoRows) {
		return reading.Reading{}, apperr.ErrNotFound
	}
	if err != nil {
		return reading.Reading{}, fmt.Errorf("storage: delete %d: %w", id, err)
	}
	return r, nil
}

// Close closes the underlying database connection.
func (s *SQL) Close() error {
	return s.conn.Close()
}

// Verify implementations satisfy Provider at compile time.
var (
	_ Provider = (*SQL)(nil)
	_ Provider = (*CSV)(nil)
)
