package artifact

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/mattn/go-sqlite3"

	apperrors "nse-insight/internal/errors"
	"nse-insight/internal/models"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based artifact store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabaseError, "opening database")
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, apperrors.Wrap(err, "initializing schema")
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS artifacts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL,
		kind TEXT NOT NULL,
		payload TEXT NOT NULL,
		trained_at DATETIME NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(symbol, kind)
	);
	CREATE INDEX IF NOT EXISTS idx_artifacts_symbol ON artifacts(symbol);
	`
	_, err := s.db.Exec(schema)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrDatabaseError, err.Error())
	}
	return nil
}

// SaveTree stores a tree bundle, replacing any existing one atomically.
func (s *SQLiteStore) SaveTree(ctx context.Context, symbol string, bundle *TreeBundle) error {
	return s.save(ctx, symbol, models.ModelKindTree, bundle, bundle.TrainedAt)
}

// GetTree loads the tree bundle for a symbol.
func (s *SQLiteStore) GetTree(ctx context.Context, symbol string) (*TreeBundle, error) {
	var bundle TreeBundle
	if err := s.load(ctx, symbol, models.ModelKindTree, &bundle); err != nil {
		return nil, err
	}
	return &bundle, nil
}

// SaveNeural stores a neural bundle, replacing any existing one atomically.
func (s *SQLiteStore) SaveNeural(ctx context.Context, symbol string, bundle *NeuralBundle) error {
	return s.save(ctx, symbol, models.ModelKindNeural, bundle, bundle.TrainedAt)
}

// GetNeural loads the neural bundle for a symbol.
func (s *SQLiteStore) GetNeural(ctx context.Context, symbol string) (*NeuralBundle, error) {
	var bundle NeuralBundle
	if err := s.load(ctx, symbol, models.ModelKindNeural, &bundle); err != nil {
		return nil, err
	}
	return &bundle, nil
}

func (s *SQLiteStore) save(ctx context.Context, symbol string, kind models.ModelKind, bundle interface{}, trainedAt time.Time) error {
	payload, err := json.Marshal(bundle)
	if err != nil {
		return apperrors.NewModelError(string(kind), symbol, "encode", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO artifacts (symbol, kind, payload, trained_at) VALUES (?, ?, ?, ?)`,
		symbol, string(kind), string(payload), trainedAt)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrDatabaseError, err.Error())
	}
	return nil
}

func (s *SQLiteStore) load(ctx context.Context, symbol string, kind models.ModelKind, target interface{}) error {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM artifacts WHERE symbol = ? AND kind = ?`,
		symbol, string(kind)).Scan(&payload)
	if err == sql.ErrNoRows {
		return apperrors.NewModelError(string(kind), symbol, "load", apperrors.ErrModelNotFound)
	}
	if err != nil {
		return apperrors.Wrap(apperrors.ErrDatabaseError, err.Error())
	}
	if err := json.Unmarshal([]byte(payload), target); err != nil {
		return apperrors.NewModelError(string(kind), symbol, "decode", apperrors.ErrArtifactCorrupt)
	}
	return nil
}

// Exists reports whether an artifact is stored for symbol and kind.
func (s *SQLiteStore) Exists(ctx context.Context, symbol string, kind models.ModelKind) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM artifacts WHERE symbol = ? AND kind = ?`,
		symbol, string(kind)).Scan(&count)
	if err != nil {
		return false, apperrors.Wrap(apperrors.ErrDatabaseError, err.Error())
	}
	return count > 0, nil
}

// List returns metadata for all stored artifacts, newest first.
func (s *SQLiteStore) List(ctx context.Context) ([]models.ArtifactInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT symbol, kind, trained_at FROM artifacts ORDER BY trained_at DESC`)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabaseError, err.Error())
	}
	defer rows.Close()

	var infos []models.ArtifactInfo
	for rows.Next() {
		var info models.ArtifactInfo
		var kind string
		if err := rows.Scan(&info.Symbol, &kind, &info.TrainedAt); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrDatabaseError, err.Error())
		}
		info.Kind = models.ModelKind(kind)
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// Delete removes a stored artifact. Deleting a missing artifact is not an error.
func (s *SQLiteStore) Delete(ctx context.Context, symbol string, kind models.ModelKind) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM artifacts WHERE symbol = ? AND kind = ?`,
		symbol, string(kind))
	if err != nil {
		return apperrors.Wrap(apperrors.ErrDatabaseError, err.Error())
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
