package source

import (
	"context"
	"database/sql"

	"codeberg.org/mutker/battdiag/internal/errors"
)

const (
	SchemaVersion = 1

	createTablesSQL = `
	   CREATE TABLE IF NOT EXISTS schema_versions (
	       version     INTEGER PRIMARY KEY,
	       applied_at  TEXT NOT NULL
	   );
	   CREATE TABLE IF NOT EXISTS snapshots (
	       imei         TEXT NOT NULL,
	       cycle_number INTEGER NOT NULL CHECK (typeof(cycle_number) = 'integer'),
	       recorded_at  TEXT,
	       payload      TEXT NOT NULL,
	       PRIMARY KEY (imei, cycle_number)
	   );`

	selectSnapshotsSQL = `
    SELECT cycle_number, payload
    FROM snapshots
    WHERE imei = ?
    ORDER BY cycle_number DESC
    LIMIT ?`

	selectCycleSQL = `
    SELECT cycle_number, payload
    FROM snapshots
    WHERE imei = ? AND cycle_number = ?`

	selectSummarySQL = `
    SELECT imei, COUNT(*), MIN(cycle_number), MAX(cycle_number), COALESCE(MAX(recorded_at), '')
    FROM snapshots
    GROUP BY imei
    ORDER BY imei`
)

// GetSchemaVersion returns the current schema version, 0 for an empty database
func GetSchemaVersion(ctx context.Context, db *sql.DB) (int, error) {
	errFactory := errors.New()

	exists, err := TableExists(ctx, db, "schema_versions")
	if err != nil {
		return 0, errFactory.Wrap(ErrSchemaValidationFailed, err)
	}
	if !exists {
		return 0, nil
	}

	var version int
	err = db.QueryRowContext(ctx, `
        SELECT version
        FROM schema_versions
        ORDER BY version DESC
        LIMIT 1
    `).Scan(&version)

	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, errFactory.WithData(ErrSchemaValidationFailed, struct {
			Phase string
			Error string
		}{
			Phase: "get_version",
			Error: err.Error(),
		})
	}

	return version, nil
}

// TableExists checks if a table exists
func TableExists(ctx context.Context, db *sql.DB, tableName string) (bool, error) {
	errFactory := errors.New()
	var exists bool
	err := db.QueryRowContext(ctx, `
        SELECT EXISTS (
            SELECT 1 FROM sqlite_master
            WHERE type='table' AND name=?
        )
    `, tableName).Scan(&exists)
	if err != nil {
		return false, errFactory.WithData(ErrSchemaValidationFailed, struct {
			Phase string
			Table string
			Error string
		}{
			Phase: "check_table_exists",
			Table: tableName,
			Error: err.Error(),
		})
	}
	return exists, nil
}

// GetCreateTablesSQL returns the DDL an exporter must use to produce a
// compatible snapshot database
func GetCreateTablesSQL() string {
	return createTablesSQL
}
