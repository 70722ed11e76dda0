// Package manifest keeps a SQLite ledger of prepared runs: which configuration
// produced each run directory, with what arguments and descriptors.
package manifest

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned by Get for a run name with no entry.
var ErrNotFound = errors.New("run not in manifest")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	name              TEXT PRIMARY KEY,
	config_path       TEXT NOT NULL,
	results_dir       TEXT NOT NULL,
	args              TEXT NOT NULL,
	delay_assignment  TEXT,
	packet_properties TEXT,
	prepared_at       TEXT NOT NULL
);`

// Entry is one prepared run.
type Entry struct {
	Name             string
	ConfigPath       string
	ResultsDir       string
	Args             []string
	DelayAssignment  json.RawMessage // nil when the run has none
	PacketProperties json.RawMessage // nil when the run has none
	PreparedAt       time.Time
}

// Store is a manifest backed by a single SQLite file.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the manifest at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create manifest directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}
	db.SetMaxOpenConns(1)

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize manifest schema: %w", err)
	}
	logrus.Debugf("manifest: opened %s", path)
	return &Store{db: db, path: path}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts e, replacing any earlier entry with the same name.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.Name == "" {
		return errors.New("manifest entry needs a run name")
	}
	args, err := json.Marshal(e.Args)
	if err != nil {
		return fmt.Errorf("encoding args: %w", err)
	}
	if e.PreparedAt.IsZero() {
		e.PreparedAt = time.Now()
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (name, config_path, results_dir, args, delay_assignment, packet_properties, prepared_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			config_path = excluded.config_path,
			results_dir = excluded.results_dir,
			args = excluded.args,
			delay_assignment = excluded.delay_assignment,
			packet_properties = excluded.packet_properties,
			prepared_at = excluded.prepared_at`,
		e.Name, e.ConfigPath, e.ResultsDir, string(args),
		nullable(e.DelayAssignment), nullable(e.PacketProperties),
		e.PreparedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("recording run %s: %w", e.Name, err)
	}
	return nil
}

// Get returns the entry for name, or ErrNotFound.
func (s *Store) Get(ctx context.Context, name string) (Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT name, config_path, results_dir, args, delay_assignment, packet_properties, prepared_at
		FROM runs WHERE name = ?`, name)
	e, err := scan(row)
	if err == sql.ErrNoRows {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return e, err
}

// List returns every entry ordered by run name.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, config_path, results_dir, args, delay_assignment, packet_properties, prepared_at
		FROM runs ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scan(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(r scanner) (Entry, error) {
	var (
		e                 Entry
		args, preparedAt  string
		delay, properties sql.NullString
	)
	if err := r.Scan(&e.Name, &e.ConfigPath, &e.ResultsDir, &args, &delay, &properties, &preparedAt); err != nil {
		return Entry{}, err
	}
	if err := json.Unmarshal([]byte(args), &e.Args); err != nil {
		return Entry{}, fmt.Errorf("decoding args of %s: %w", e.Name, err)
	}
	if delay.Valid {
		e.DelayAssignment = json.RawMessage(delay.String)
	}
	if properties.Valid {
		e.PacketProperties = json.RawMessage(properties.String)
	}
	t, err := time.Parse(time.RFC3339Nano, preparedAt)
	if err != nil {
		return Entry{}, fmt.Errorf("decoding prepared_at of %s: %w", e.Name, err)
	}
	e.PreparedAt = t
	return e, nil
}

func nullable(raw json.RawMessage) any {
	if raw == nil {
		return nil
	}
	return string(raw)
}
