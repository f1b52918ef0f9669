package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/intelligrit/emotion-atlas/internal/graph"
	"github.com/intelligrit/emotion-atlas/internal/model"
)

// FileName is the database file created inside the data directory.
const FileName = "emotion-atlas.duckdb"

// Store caches collaborator results and the stats history in DuckDB.
type Store struct {
	DB      *sql.DB
	DataDir string
}

// New opens (or creates) a DuckDB database in the given data directory.
func New(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, FileName)
	db, err := sql.Open("duckdb", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening duckdb: %w", err)
	}

	s := &Store{DB: db, DataDir: dataDir}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.DB.Close()
}

// cacheTables are emptied by Reset.
var cacheTables = []string{"catalog", "nearby_attractions", "reviews", "classifications", "stats_history", "meta"}

func (s *Store) migrate() error {
	if _, err := s.DB.Exec("CREATE SEQUENCE IF NOT EXISTS stats_history_seq"); err != nil {
		return fmt.Errorf("creating sequence: %w", err)
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS catalog (
			key TEXT PRIMARY KEY,
			body TEXT NOT NULL,
			fetched_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS nearby_attractions (
			city TEXT NOT NULL,
			max_results INTEGER NOT NULL,
			body TEXT NOT NULL,
			fetched_at TEXT NOT NULL,
			PRIMARY KEY (city, max_results)
		)`,
		`CREATE TABLE IF NOT EXISTS reviews (
			place_id TEXT PRIMARY KEY,
			body TEXT NOT NULL,
			review_count INTEGER NOT NULL,
			fetched_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS classifications (
			adjective TEXT PRIMARY KEY,
			emotion TEXT NOT NULL,
			model TEXT NOT NULL,
			classified_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS stats_history (
			id INTEGER PRIMARY KEY DEFAULT nextval('stats_history_seq'),
			run_id TEXT NOT NULL,
			scope TEXT NOT NULL,
			recorded_at TEXT NOT NULL,
			num_nodes INTEGER NOT NULL,
			num_edges INTEGER NOT NULL,
			avg_degree DOUBLE NOT NULL,
			num_components INTEGER NOT NULL,
			body TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.DB.Exec(stmt); err != nil {
			return fmt.Errorf("executing migration %q: %w", firstLine(stmt), err)
		}
	}
	return nil
}

func firstLine(stmt string) string {
	if i := strings.IndexByte(stmt, '\n'); i >= 0 {
		return stmt[:i]
	}
	return stmt
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// Reset empties every cache table.
func (s *Store) Reset() error {
	tx, err := s.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, tbl := range cacheTables {
		if _, err := tx.Exec(fmt.Sprintf("DELETE FROM %s", tbl)); err != nil {
			return fmt.Errorf("clearing %s: %w", tbl, err)
		}
	}
	return tx.Commit()
}

// WriteCatalog caches the ranked location catalog under key.
func (s *Store) WriteCatalog(key string, continents []model.Continent) error {
	body, err := json.Marshal(continents)
	if err != nil {
		return err
	}
	_, err = s.DB.Exec("INSERT OR REPLACE INTO catalog (key, body, fetched_at) VALUES (?, ?, ?)", key, string(body), now())
	return err
}

// ReadCatalog returns the cached catalog for key. ok is false when nothing is
// cached.
func (s *Store) ReadCatalog(key string) (continents []model.Continent, ok bool, err error) {
	var body string
	err = s.DB.QueryRow("SELECT body FROM catalog WHERE key = ?", key).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if err := json.Unmarshal([]byte(body), &continents); err != nil {
		return nil, false, fmt.Errorf("decoding cached catalog: %w", err)
	}
	return continents, true, nil
}

// WriteNearby caches the attractions found around a city.
func (s *Store) WriteNearby(city string, maxResults int, places []model.Place) error {
	body, err := json.Marshal(places)
	if err != nil {
		return err
	}
	_, err = s.DB.Exec("INSERT OR REPLACE INTO nearby_attractions (city, max_results, body, fetched_at) VALUES (?, ?, ?, ?)",
		city, maxResults, string(body), now())
	return err
}

// ReadNearby returns the cached attractions for (city, maxResults).
func (s *Store) ReadNearby(city string, maxResults int) (places []model.Place, ok bool, err error) {
	var body string
	err = s.DB.QueryRow("SELECT body FROM nearby_attractions WHERE city = ? AND max_results = ?", city, maxResults).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if err := json.Unmarshal([]byte(body), &places); err != nil {
		return nil, false, fmt.Errorf("decoding cached attractions for %s: %w", city, err)
	}
	return places, true, nil
}

// WriteReviews caches the reviews scraped for a place.
func (s *Store) WriteReviews(placeID string, reviews []model.Review) error {
	body, err := json.Marshal(reviews)
	if err != nil {
		return err
	}
	_, err = s.DB.Exec("INSERT OR REPLACE INTO reviews (place_id, body, review_count, fetched_at) VALUES (?, ?, ?, ?)",
		placeID, string(body), len(reviews), now())
	return err
}

// ReadReviews returns the cached reviews for a place.
func (s *Store) ReadReviews(placeID string) (reviews []model.Review, ok bool, err error) {
	var body string
	err = s.DB.QueryRow("SELECT body FROM reviews WHERE place_id = ?", placeID).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if err := json.Unmarshal([]byte(body), &reviews); err != nil {
		return nil, false, fmt.Errorf("decoding cached reviews for %s: %w", placeID, err)
	}
	return reviews, true, nil
}

// WriteClassification records the emotion an adjective was classified as.
func (s *Store) WriteClassification(adjective, emotion, modelName string) error {
	_, err := s.DB.Exec("INSERT OR REPLACE INTO classifications (adjective, emotion, model, classified_at) VALUES (?, ?, ?, ?)",
		adjective, emotion, modelName, now())
	return err
}

// ReadClassification returns the cached emotion for an adjective.
func (s *Store) ReadClassification(adjective string) (emotion string, ok bool, err error) {
	err = s.DB.QueryRow("SELECT emotion FROM classifications WHERE adjective = ?", adjective).Scan(&emotion)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return emotion, true, nil
}

// StatsRecord is one row of the stats history.
type StatsRecord struct {
	ID         int64       `json:"id"`
	RunID      string      `json:"run_id"`
	Scope      string      `json:"scope"`
	RecordedAt string      `json:"recorded_at"`
	Stats      graph.Stats `json:"stats"`
}

// AppendStats adds a stats snapshot to the history. scope names what was
// flushed, e.g. "country:Portugal" or "final".
func (s *Store) AppendStats(runID, scope string, st graph.Stats) error {
	body, err := json.Marshal(st)
	if err != nil {
		return err
	}
	_, err = s.DB.Exec(`INSERT INTO stats_history (run_id, scope, recorded_at, num_nodes, num_edges, avg_degree, num_components, body)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, scope, now(), st.NumNodes, st.NumEdges, st.AvgDegree, st.NumComponents, string(body))
	return err
}

// StatsHistory returns the most recent limit records, newest first.
func (s *Store) StatsHistory(limit int) ([]StatsRecord, error) {
	rows, err := s.DB.Query("SELECT id, run_id, scope, recorded_at, body FROM stats_history ORDER BY id DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StatsRecord
	for rows.Next() {
		var r StatsRecord
		var body string
		if err := rows.Scan(&r.ID, &r.RunID, &r.Scope, &r.RecordedAt, &body); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(body), &r.Stats); err != nil {
			return nil, fmt.Errorf("decoding stats record %d: %w", r.ID, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// SetMeta stores a key/value pair.
func (s *Store) SetMeta(key, value string) error {
	_, err := s.DB.Exec("INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)", key, value)
	return err
}

// Meta returns the value stored under key, or "" if unset.
func (s *Store) Meta(key string) string {
	var v sql.NullString
	s.DB.QueryRow("SELECT value FROM meta WHERE key = ?", key).Scan(&v)
	return v.String
}

// CacheCounts reports the number of cached rows per table.
func (s *Store) CacheCounts() map[string]int {
	m := make(map[string]int)
	for _, tbl := range []string{"nearby_attractions", "reviews", "classifications", "stats_history"} {
		var n int
		s.DB.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", tbl)).Scan(&n)
		m[tbl] = n
	}
	return m
}
