package archive

import (
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/stazionemeteococito/meteo-archive/internal/meteo"

	// SQLite driver using pure Go implementation
	_ "modernc.org/sqlite"
)

const schema = `
	CREATE TABLE IF NOT EXISTS observations (
		symbol  TEXT NOT NULL,
		instant TEXT NOT NULL,
		value   REAL NOT NULL,
		PRIMARY KEY (symbol, instant)
	);
	CREATE INDEX IF NOT EXISTS idx_observations_instant
		ON observations(instant);
`

// SQLiteStore is a durable implementation of meteo.Store backed by a single
// SQLite file. The (symbol, instant) primary key makes the incremental
// contract a storage-level guarantee: re-ingested rows are ignored.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the archive database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open archive database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init archive schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Update inserts the previously unseen observations inside one transaction.
// Returns the number of rows actually inserted.
func (s *SQLiteStore) Update(obs []meteo.Observation) (int, error) {
	if len(obs) == 0 {
		return 0, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO observations (symbol, instant, value) VALUES (?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	added := 0
	for _, o := range obs {
		res, err := stmt.Exec(string(o.Symbol), o.Instant.UTC().Format(meteo.InstantLayout), o.Value)
		if err != nil {
			return 0, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		added += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return added, nil
}

// QueryRange returns all observations with from <= instant <= to, ascending
// by instant. The instant column holds zero-padded UTC timestamps, so string
// comparison matches chronological comparison. Rows sharing an instant are
// ordered by registry position, same as the in-memory store.
func (s *SQLiteStore) QueryRange(from, to time.Time) ([]meteo.Observation, error) {
	if from.After(to) {
		return nil, meteo.ErrInvalidRange
	}

	rows, err := s.db.Query(
		`SELECT symbol, instant, value FROM observations
		 WHERE instant >= ? AND instant <= ?
		 ORDER BY instant ASC`,
		from.UTC().Format(meteo.InstantLayout), to.UTC().Format(meteo.InstantLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	obs, err := scanObservations(rows)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(obs, func(i, j int) bool {
		if !obs[i].Instant.Equal(obs[j].Instant) {
			return obs[i].Instant.Before(obs[j].Instant)
		}
		return symbolRank(obs[i].Symbol) < symbolRank(obs[j].Symbol)
	})
	return obs, nil
}

// symbolRank is a symbol's position in the data type registry. Unknown
// symbols sort last.
func symbolRank(sym meteo.Symbol) int {
	for i, dt := range meteo.DataTypes {
		if dt.Symbol == sym {
			return i
		}
	}
	return len(meteo.DataTypes)
}

// Latest returns the most recent observation per data type.
func (s *SQLiteStore) Latest() (map[meteo.Symbol]meteo.Observation, error) {
	rows, err := s.db.Query(
		`SELECT o.symbol, o.instant, o.value
		 FROM observations o
		 JOIN (SELECT symbol, MAX(instant) AS newest FROM observations GROUP BY symbol) m
		   ON o.symbol = m.symbol AND o.instant = m.newest`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	obs, err := scanObservations(rows)
	if err != nil {
		return nil, err
	}
	if len(obs) == 0 {
		return nil, meteo.ErrNoData
	}

	latest := make(map[meteo.Symbol]meteo.Observation, len(obs))
	for _, o := range obs {
		latest[o.Symbol] = o
	}
	return latest, nil
}

// LatestInstant returns the instant of the newest observation in the archive.
func (s *SQLiteStore) LatestInstant() (time.Time, error) {
	var newest sql.NullString
	if err := s.db.QueryRow(`SELECT MAX(instant) FROM observations`).Scan(&newest); err != nil {
		return time.Time{}, err
	}
	if !newest.Valid {
		return time.Time{}, meteo.ErrNoData
	}
	ts, err := time.ParseInLocation(meteo.InstantLayout, newest.String, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("corrupt instant %q: %w", newest.String, err)
	}
	return ts, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func scanObservations(rows *sql.Rows) ([]meteo.Observation, error) {
	var result []meteo.Observation
	for rows.Next() {
		var (
			symbol  string
			instant string
			value   float64
		)
		if err := rows.Scan(&symbol, &instant, &value); err != nil {
			return nil, err
		}
		ts, err := time.ParseInLocation(meteo.InstantLayout, instant, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("corrupt instant %q: %w", instant, err)
		}
		result = append(result, meteo.Observation{
			Symbol:  meteo.Symbol(symbol),
			Instant: ts,
			Value:   value,
		})
	}
	return result, rows.Err()
}
