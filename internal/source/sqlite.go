package source

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"

	"codeberg.org/mutker/battdiag/internal/cycle"
	"codeberg.org/mutker/battdiag/internal/errors"
	"codeberg.org/mutker/battdiag/internal/logger"
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore serves snapshots from a SQLite export. The database is opened
// read-only and is never modified.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

func OpenSQLite(cfg Config) (*SQLiteStore, error) {
	errFactory := errors.New()

	if cfg.DBPath == "" {
		return nil, errFactory.New(ErrInvalidDBPath)
	}

	if _, err := os.Stat(cfg.DBPath); err != nil {
		return nil, errFactory.WithData(ErrStorageInit, struct {
			Phase string
			Path  string
			Error string
		}{
			Phase: "stat_database",
			Path:  cfg.DBPath,
			Error: err.Error(),
		})
	}

	db, err := sql.Open("sqlite3", "file:"+cfg.DBPath+"?mode=ro")
	if err != nil {
		return nil, errFactory.WithData(ErrStorageInit, struct {
			Phase string
			Error string
		}{
			Phase: "open_database",
			Error: err.Error(),
		})
	}

	ctx := context.Background()
	version, err := GetSchemaVersion(ctx, db)
	if err != nil {
		db.Close()
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}
	if version != SchemaVersion {
		db.Close()
		return nil, errFactory.WithData(ErrSchemaValidationFailed, struct {
			Expected int
			Found    int
		}{
			Expected: SchemaVersion,
			Found:    version,
		})
	}

	logger.Info().
		Str("path", cfg.DBPath).
		Int("schema_version", version).
		Msg("Snapshot database opened")

	return &SQLiteStore{db: db, path: cfg.DBPath}, nil
}

func (*SQLiteStore) Name() string {
	return BackendSQLite
}

func (s *SQLiteStore) Snapshots(ctx context.Context, deviceID string, limit int) ([]cycle.Record, error) {
	errFactory := errors.New()

	rows, err := s.db.QueryContext(ctx, selectSnapshotsSQL, deviceID, limit)
	if err != nil {
		return nil, errFactory.Wrap(ErrStorageAccess, err)
	}
	defer rows.Close()

	out := []cycle.Record{}
	for rows.Next() {
		var (
			cycleNumber int64
			payload     string
		)
		if err := rows.Scan(&cycleNumber, &payload); err != nil {
			return nil, errFactory.Wrap(ErrStorageAccess, err)
		}
		rec, err := decodePayload(cycleNumber, payload)
		if err != nil {
			logger.Warn().
				Err(err).
				Str("device", deviceID).
				Int64("cycle_number", cycleNumber).
				Msg("Skipping undecodable snapshot")
			continue
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errFactory.Wrap(ErrStorageAccess, err)
	}

	return out, nil
}

func (s *SQLiteStore) Summary(ctx context.Context) (map[string]any, error) {
	errFactory := errors.New()

	rows, err := s.db.QueryContext(ctx, selectSummarySQL)
	if err != nil {
		return nil, errFactory.Wrap(ErrStorageAccess, err)
	}
	defer rows.Close()

	devices := []any{}
	total := 0
	for rows.Next() {
		var (
			imei           string
			count          int
			first, last    int64
			lastRecordedAt string
		)
		if err := rows.Scan(&imei, &count, &first, &last, &lastRecordedAt); err != nil {
			return nil, errFactory.Wrap(ErrStorageAccess, err)
		}
		total += count
		devices = append(devices, map[string]any{
			"imei":             imei,
			"cycles":           count,
			"first_cycle":      first,
			"last_cycle":       last,
			"last_recorded_at": lastRecordedAt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, errFactory.Wrap(ErrStorageAccess, err)
	}

	return map[string]any{
		"devices":         devices,
		"total_snapshots": total,
	}, nil
}

func (s *SQLiteStore) CycleDetails(ctx context.Context, deviceID string, cycleNumber int) (cycle.Record, error) {
	errFactory := errors.New()

	var (
		n       int64
		payload string
	)
	err := s.db.QueryRowContext(ctx, selectCycleSQL, deviceID, cycleNumber).Scan(&n, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errFactory.WithData(ErrNotFound, struct {
			Device string
			Cycle  int
		}{
			Device: deviceID,
			Cycle:  cycleNumber,
		})
	}
	if err != nil {
		return nil, errFactory.Wrap(ErrStorageAccess, err)
	}

	rec, err := decodePayload(n, payload)
	if err != nil {
		return nil, errFactory.Wrap(ErrDecodeFailed, err)
	}
	return rec, nil
}

func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return errors.New().WithData(ErrStorageClose, struct {
			Phase string
			Error string
		}{
			Phase: "close_database",
			Error: err.Error(),
		})
	}

	logger.Debug().Str("path", s.path).Msg("Snapshot database closed")

	return nil
}

// decodePayload parses a stored record, filling in the cycle number from its
// column when the payload itself lacks one.
func decodePayload(cycleNumber int64, payload string) (cycle.Record, error) {
	var rec cycle.Record
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return nil, err
	}
	if rec == nil {
		rec = cycle.Record{}
	}
	if _, ok := rec[cycle.KeyCycleNumber]; !ok {
		rec[cycle.KeyCycleNumber] = float64(cycleNumber)
	}
	return rec, nil
}
