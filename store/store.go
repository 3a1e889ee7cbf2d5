// Package store keeps named datum snapshots in a SQLite database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/tliron/commonlog"
	_ "modernc.org/sqlite"

	"github.com/chazu/brim/image"
	"github.com/chazu/brim/vm"
)

// ErrNotFound indicates the requested snapshot doesn't exist.
var ErrNotFound = errors.New("store: snapshot not found")

// Snapshot describes a stored snapshot without its contents.
type Snapshot struct {
	Name    string
	Size    int
	Created time.Time
}

// Store handles SQLite storage for snapshots.
type Store struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
	log  commonlog.Logger
}

// Open opens (creating if needed) the snapshot database at path. The
// special path ":memory:" gives a private in-memory database.
func Open(ctx context.Context, path string) (*Store, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("store: creating %s: %w", dir, err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: opening database: %w", err)
	}
	// A second connection to ":memory:" would see a different database.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: setting busy timeout: %w", err)
	}

	_, err = db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS snapshots (
		name TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		created_at INTEGER NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("store: creating table: %w", err)
	}

	s := &Store{
		db:   db,
		path: path,
		log:  commonlog.GetLogger("brim.store"),
	}
	s.log.Debugf("opened %s", path)
	return s, nil
}

// Path returns the database path the store was opened with.
func (s *Store) Path() string { return s.path }

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save encodes the graph reachable from obj and stores it under name,
// replacing any previous snapshot of that name.
func (s *Store) Save(ctx context.Context, name string, rt *vm.Runtime, obj vm.Object) error {
	data, err := image.Encode(rt, obj)
	if err != nil {
		return fmt.Errorf("store: encoding %q: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO snapshots (name, data, created_at) VALUES (?, ?, ?)",
		name, data, time.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("store: saving %q: %w", name, err)
	}
	s.log.Infof("saved %q (%d bytes)", name, len(data))
	return nil
}

// Load rebuilds the snapshot stored under name in rt and pushes it onto the
// current frame.
func (s *Store) Load(ctx context.Context, name string, rt *vm.Runtime) (vm.Object, error) {
	s.mu.Lock()
	var data []byte
	err := s.db.QueryRowContext(ctx, "SELECT data FROM snapshots WHERE name = ?", name).Scan(&data)
	s.mu.Unlock()
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return vm.Undefined, ErrNotFound
		}
		return vm.Undefined, fmt.Errorf("store: querying %q: %w", name, err)
	}

	obj, err := image.Decode(rt, data)
	if err != nil {
		return vm.Undefined, fmt.Errorf("store: decoding %q: %w", name, err)
	}
	return obj, nil
}

// Delete removes the snapshot stored under name.
func (s *Store) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM snapshots WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("store: deleting %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: deleting %q: %w", name, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Names returns the stored snapshot names in sorted order.
func (s *Store) Names(ctx context.Context) ([]string, error) {
	list, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(list))
	for i, snap := range list {
		names[i] = snap.Name
	}
	return names, nil
}

// List returns metadata for every stored snapshot, sorted by name.
func (s *Store) List(ctx context.Context) ([]Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT name, length(data), created_at FROM snapshots ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("store: listing snapshots: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var snap Snapshot
		var created int64
		if err := rows.Scan(&snap.Name, &snap.Size, &created); err != nil {
			return nil, fmt.Errorf("store: listing snapshots: %w", err)
		}
		snap.Created = time.Unix(0, created)
		out = append(out, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: listing snapshots: %w", err)
	}
	return out, nil
}
