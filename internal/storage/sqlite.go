//go:build sqlite

package storage

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"auxesis/internal/model"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists run artifacts in a single sqlite database. Snapshots
// and experiment summaries are stored as versioned JSON payloads; per-run
// histories and top genomes as plain JSON keyed by run id and kind, mirroring
// the memory store's layout.
type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func newSQLiteStore(path string) (Store, error) {
	return NewSQLiteStore(path), nil
}

// DefaultStoreKind reports the backend selected when none is specified.
func DefaultStoreKind() string { return "sqlite" }

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}
	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS snapshots (
			id TEXT PRIMARY KEY,
			schema_version INTEGER NOT NULL,
			codec_version INTEGER NOT NULL,
			payload BLOB NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS run_artifacts (
			run_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			payload BLOB NOT NULL,
			PRIMARY KEY (run_id, kind)
		)`,
		`CREATE TABLE IF NOT EXISTS experiment_summaries (
			name TEXT PRIMARY KEY,
			payload BLOB NOT NULL
		)`,
	} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, errors.New("sqlite store is not initialized")
	}
	return s.db, nil
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) Reset(ctx context.Context) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	for _, table := range []string{"snapshots", "run_artifacts", "experiment_summaries"} {
		if _, err := db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) SavePopulationSnapshot(ctx context.Context, snapshot model.PopulationSnapshot) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	payload, err := EncodePopulationSnapshot(snapshot)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO snapshots (id, schema_version, codec_version, payload)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			schema_version = excluded.schema_version,
			codec_version = excluded.codec_version,
			payload = excluded.payload
	`, snapshot.ID, CurrentSchemaVersion, CurrentCodecVersion, payload)
	return err
}

func (s *SQLiteStore) GetPopulationSnapshot(ctx context.Context, id string) (model.PopulationSnapshot, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return model.PopulationSnapshot{}, false, err
	}
	var payload []byte
	err = db.QueryRowContext(ctx, `SELECT payload FROM snapshots WHERE id = ?`, id).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.PopulationSnapshot{}, false, nil
		}
		return model.PopulationSnapshot{}, false, err
	}
	snapshot, err := DecodePopulationSnapshot(payload)
	if err != nil {
		return model.PopulationSnapshot{}, false, err
	}
	return snapshot, true, nil
}

func (s *SQLiteStore) saveArtifact(ctx context.Context, runID, kind string, v any) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	payload, err := encodeJSON(v)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO run_artifacts (run_id, kind, payload)
		VALUES (?, ?, ?)
		ON CONFLICT(run_id, kind) DO UPDATE SET payload = excluded.payload
	`, runID, kind, payload)
	return err
}

func (s *SQLiteStore) getArtifact(ctx context.Context, runID, kind string, v any) (bool, error) {
	db, err := s.getDB()
	if err != nil {
		return false, err
	}
	var payload []byte
	err = db.QueryRowContext(ctx, `SELECT payload FROM run_artifacts WHERE run_id = ? AND kind = ?`, runID, kind).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	if err := decodeJSON(payload, v); err != nil {
		return false, err
	}
	return true, nil
}

func (s *SQLiteStore) SaveFitnessHistory(ctx context.Context, runID string, history []float64) error {
	return s.saveArtifact(ctx, runID, "fitness", history)
}

func (s *SQLiteStore) GetFitnessHistory(ctx context.Context, runID string) ([]float64, bool, error) {
	var out []float64
	ok, err := s.getArtifact(ctx, runID, "fitness", &out)
	return out, ok, err
}

func (s *SQLiteStore) SaveGenerationDiagnostics(ctx context.Context, runID string, diagnostics []model.GenerationDiagnostics) error {
	return s.saveArtifact(ctx, runID, "diagnostics", diagnostics)
}

func (s *SQLiteStore) GetGenerationDiagnostics(ctx context.Context, runID string) ([]model.GenerationDiagnostics, bool, error) {
	var out []model.GenerationDiagnostics
	ok, err := s.getArtifact(ctx, runID, "diagnostics", &out)
	return out, ok, err
}

func (s *SQLiteStore) SaveSpeciesHistory(ctx context.Context, runID string, history []model.SpeciesGeneration) error {
	return s.saveArtifact(ctx, runID, "species", history)
}

func (s *SQLiteStore) GetSpeciesHistory(ctx context.Context, runID string) ([]model.SpeciesGeneration, bool, error) {
	var out []model.SpeciesGeneration
	ok, err := s.getArtifact(ctx, runID, "species", &out)
	return out, ok, err
}

func (s *SQLiteStore) SaveTopGenomes(ctx context.Context, runID string, top []model.TopGenomeRecord) error {
	return s.saveArtifact(ctx, runID, "top", top)
}

func (s *SQLiteStore) GetTopGenomes(ctx context.Context, runID string) ([]model.TopGenomeRecord, bool, error) {
	var out []model.TopGenomeRecord
	ok, err := s.getArtifact(ctx, runID, "top", &out)
	return out, ok, err
}

func (s *SQLiteStore) SaveExperimentSummary(ctx context.Context, summary model.ExperimentSummary) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	payload, err := EncodeExperimentSummary(summary)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO experiment_summaries (name, payload)
		VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET payload = excluded.payload
	`, summary.Name, payload)
	return err
}

func (s *SQLiteStore) GetExperimentSummary(ctx context.Context, name string) (model.ExperimentSummary, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return model.ExperimentSummary{}, false, err
	}
	var payload []byte
	err = db.QueryRowContext(ctx, `SELECT payload FROM experiment_summaries WHERE name = ?`, name).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.ExperimentSummary{}, false, nil
		}
		return model.ExperimentSummary{}, false, err
	}
	summary, err := DecodeExperimentSummary(payload)
	if err != nil {
		return model.ExperimentSummary{}, false, err
	}
	return summary, true, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context) ([]string, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `SELECT DISTINCT run_id FROM run_artifacts ORDER BY run_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []string
	for rows.Next() {
		var runID string
		if err := rows.Scan(&runID); err != nil {
			return nil, err
		}
		runs = append(runs, runID)
	}
	return runs, rows.Err()
}
