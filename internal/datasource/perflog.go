// Package datasource reads benchmark time-series out of the perflog SQLite
// database that the report build produces. The time-series panel is the only
// consumer; a missing or broken store degrades to an empty panel, never to a
// startup failure.
package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sort"
	"sync"

	_ "modernc.org/sqlite"

	"golang.org/x/sync/errgroup"
)

// Point is one sample in a benchmark series.
type Point struct {
	X float64
	Y float64
}

// Series is a named sequence of samples, ordered by X.
type Series struct {
	Name   string
	Unit   string
	Points []Point
}

// PerflogStore reads series from a perflog database.
type PerflogStore struct {
	db   *sql.DB
	path string
}

// OpenPerflog opens the perflog database read-only. The file must exist;
// callers treat an error here as "no time-series available".
func OpenPerflog(path string) (*PerflogStore, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("perflog database: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?mode=ro&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open perflog database: %w", err)
	}
	return &PerflogStore{db: db, path: path}, nil
}

// Close closes the underlying database. Safe on a nil store.
func (s *PerflogStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database path the store was opened from.
func (s *PerflogStore) Path() string {
	return s.path
}

// SeriesNames lists the available series, sorted.
func (s *PerflogStore) SeriesNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM series ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing series: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// LoadSeries reads one series by name.
func (s *PerflogStore) LoadSeries(ctx context.Context, name string) (Series, error) {
	var id int64
	var unit sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, unit FROM series WHERE name = ?`, name).Scan(&id, &unit)
	if err == sql.ErrNoRows {
		return Series{}, fmt.Errorf("no series named %q", name)
	}
	if err != nil {
		return Series{}, fmt.Errorf("looking up series %q: %w", name, err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT x, y FROM points WHERE series_id = ? ORDER BY x`, id)
	if err != nil {
		return Series{}, fmt.Errorf("reading series %q: %w", name, err)
	}
	defer rows.Close()

	out := Series{Name: name, Unit: unit.String}
	for rows.Next() {
		var p Point
		if err := rows.Scan(&p.X, &p.Y); err != nil {
			return Series{}, err
		}
		out.Points = append(out.Points, p)
	}
	return out, rows.Err()
}

// LoadAll reads every series concurrently. Result order matches SeriesNames.
func (s *PerflogStore) LoadAll(ctx context.Context) ([]Series, error) {
	names, err := s.SeriesNames(ctx)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	byName := make(map[string]Series, len(names))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, name := range names {
		g.Go(func() error {
			series, err := s.LoadSeries(ctx, name)
			if err != nil {
				return err
			}
			mu.Lock()
			byName[name] = series
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Strings(names)
	out := make([]Series, 0, len(names))
	for _, name := range names {
		out = append(out, byName[name])
	}
	return out, nil
}
