package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	"github.com/huangsam/ghsnap/internal/contract"
	"github.com/huangsam/ghsnap/schema"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

// Table names for run history.
const (
	pipelineRunsTable = "ghsnap_pipeline_runs"
	orgSnapshotsTable = "ghsnap_org_snapshots"
)

// HistoryStoreImpl implements the HistoryStore interface.
type HistoryStoreImpl struct {
	db         *sql.DB
	backend    schema.DatabaseBackend
	driverName string
}

var _ contract.HistoryStore = &HistoryStoreImpl{} // Compile-time check

// openDB opens and pings a database for the backend.
func openDB(backend schema.DatabaseBackend, connStr string) (*sql.DB, string, error) {
	var db *sql.DB
	var err error
	var driverName string

	switch backend {
	case schema.SQLiteBackend:
		driverName = "sqlite"
		dbPath := connStr
		if dbPath == "" {
			dbPath = GetHistoryDBFilePath()
		}
		db, err = sql.Open(driverName, dbPath)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open SQLite database at %q: %w. Check that the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)

	case schema.MySQLBackend:
		driverName = "mysql"
		db, err = sql.Open(driverName, connStr)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open MySQL database: %w. Check connection string format: user:password@tcp(host:port)/dbname?parseTime=true", err)
		}

	case schema.PostgreSQLBackend:
		driverName = "pgx"
		db, err = sql.Open(driverName, connStr)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open PostgreSQL database: %w. Check connection string format: host=... dbname=... user=...", err)
		}

	default:
		return nil, "", fmt.Errorf("unsupported backend: %s", backend)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		var connDetail string
		switch backend {
		case schema.MySQLBackend:
			connDetail = "Check that MySQL is running and the connection string is correct. Ensure user/password are valid."
		case schema.PostgreSQLBackend:
			connDetail = "Check that PostgreSQL is running and the connection string is correct. Ensure user/password are valid."
		default:
			connDetail = "Verify the database file is accessible."
		}
		return nil, "", fmt.Errorf("failed to connect to %s database: %w. %s", backend, err, connDetail)
	}
	return db, driverName, nil
}

// NewHistoryStore creates a new HistoryStore with the specified backend.
func NewHistoryStore(backend schema.DatabaseBackend, connStr string) (contract.HistoryStore, error) {
	if backend == schema.NoneBackend {
		// Return a no-op store for disabled tracking
		return &HistoryStoreImpl{backend: backend}, nil
	}

	db, driverName, err := openDB(backend, connStr)
	if err != nil {
		return nil, err
	}

	if err := createHistoryTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history tables: %w", err)
	}

	return &HistoryStoreImpl{
		db:         db,
		backend:    backend,
		driverName: driverName,
	}, nil
}

// createHistoryTables creates the run history tables.
func createHistoryTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{pipelineRunsTable, getCreatePipelineRunsQuery(backend)},
		{orgSnapshotsTable, getCreateOrgSnapshotsQuery(backend)},
	}

	for _, table := range tables {
		if err := validateTableName(table.name); err != nil {
			return err
		}
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}
	return nil
}

// getCreatePipelineRunsQuery returns the CREATE TABLE query for ghsnap_pipeline_runs.
func getCreatePipelineRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(pipelineRunsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				stage VARCHAR(64) NOT NULL,
				date_token VARCHAR(10) NOT NULL,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				records_written INT NOT NULL DEFAULT 0,
				skipped INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGSERIAL PRIMARY KEY,
				stage TEXT NOT NULL,
				date_token TEXT NOT NULL,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				records_written INT NOT NULL DEFAULT 0,
				skipped INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER PRIMARY KEY AUTOINCREMENT,
				stage TEXT NOT NULL,
				date_token TEXT NOT NULL,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				records_written INTEGER NOT NULL DEFAULT 0,
				skipped INTEGER NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)
	}
}

// getCreateOrgSnapshotsQuery returns the CREATE TABLE query for ghsnap_org_snapshots.
func getCreateOrgSnapshotsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(orgSnapshotsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				date_token VARCHAR(10) NOT NULL,
				organization VARCHAR(255) NOT NULL,
				repositories INT NOT NULL,
				total_stars INT NOT NULL,
				total_forks INT NOT NULL,
				total_open_issues INT NOT NULL,
				mean_stars DOUBLE NOT NULL,
				mean_forks DOUBLE NOT NULL,
				PRIMARY KEY (run_id, organization)
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				date_token TEXT NOT NULL,
				organization TEXT NOT NULL,
				repositories INT NOT NULL,
				total_stars INT NOT NULL,
				total_forks INT NOT NULL,
				total_open_issues INT NOT NULL,
				mean_stars DOUBLE PRECISION NOT NULL,
				mean_forks DOUBLE PRECISION NOT NULL,
				PRIMARY KEY (run_id, organization)
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER NOT NULL,
				date_token TEXT NOT NULL,
				organization TEXT NOT NULL,
				repositories INTEGER NOT NULL,
				total_stars INTEGER NOT NULL,
				total_forks INTEGER NOT NULL,
				total_open_issues INTEGER NOT NULL,
				mean_stars REAL NOT NULL,
				mean_forks REAL NOT NULL,
				PRIMARY KEY (run_id, organization)
			);
		`, quotedTableName)
	}
}

// disabled reports whether the store is a no-op.
func (hs *HistoryStoreImpl) disabled() bool {
	return hs.backend == schema.NoneBackend || hs.db == nil
}

// BeginRun creates a new run for a stage and returns its unique ID.
func (hs *HistoryStoreImpl) BeginRun(stage schema.Stage, dateToken string, startTime time.Time, configParams map[string]any) (int64, error) {
	if hs.disabled() {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quotedTableName := quoteTableName(pipelineRunsTable, hs.backend)
	ph := strings.Join(placeholders(hs.backend, 4), ", ")
	args := []any{string(stage), dateToken, formatTime(startTime, hs.backend), string(configJSON)}

	var runID int64
	switch hs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (stage, date_token, start_time, config_params) VALUES (%s) RETURNING run_id`, quotedTableName, ph)
		err = hs.db.QueryRow(query, args...).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (stage, date_token, start_time, config_params) VALUES (%s)`, quotedTableName, ph)
		var result sql.Result
		result, err = hs.db.Exec(query, args...)
		if err == nil {
			runID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert pipeline run: %w", err)
	}
	return runID, nil
}

// EndRun updates the run with completion data.
func (hs *HistoryStoreImpl) EndRun(runID int64, endTime time.Time, recordsWritten, skipped int) error {
	if hs.disabled() {
		return nil
	}

	quotedTableName := quoteTableName(pipelineRunsTable, hs.backend)
	ph := placeholders(hs.backend, 5)

	query := fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`, quotedTableName, ph[0])
	startTime, err := hs.scanTime(hs.db.QueryRow(query, runID))
	if err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}

	durationMs := endTime.Sub(startTime).Milliseconds()
	updateQuery := fmt.Sprintf(`UPDATE %s SET end_time = %s, run_duration_ms = %s, records_written = %s, skipped = %s WHERE run_id = %s`,
		quotedTableName, ph[0], ph[1], ph[2], ph[3], ph[4])
	if _, err := hs.db.Exec(updateQuery, formatTime(endTime, hs.backend), durationMs, recordsWritten, skipped, runID); err != nil {
		return fmt.Errorf("failed to update pipeline run: %w", err)
	}
	return nil
}

// RecordOrgRollups stores one row per organization for a run, in organization order.
func (hs *HistoryStoreImpl) RecordOrgRollups(runID int64, dateToken string, rollups map[string]schema.OrgRollup) error {
	if hs.disabled() || len(rollups) == 0 {
		return nil
	}

	quotedTableName := quoteTableName(orgSnapshotsTable, hs.backend)
	query := fmt.Sprintf(`
		INSERT INTO %s (run_id, date_token, organization, repositories, total_stars,
		                total_forks, total_open_issues, mean_stars, mean_forks)
		VALUES (%s)
	`, quotedTableName, strings.Join(placeholders(hs.backend, 9), ", "))

	tx, err := hs.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	orgs := make([]string, 0, len(rollups))
	for org := range rollups {
		orgs = append(orgs, org)
	}
	slices.Sort(orgs)

	for _, org := range orgs {
		r := rollups[org]
		if _, err := tx.Exec(query, runID, dateToken, org, r.Repositories, r.Stars.Sum,
			r.Forks.Sum, r.OpenIssues, r.Stars.Mean, r.Forks.Mean); err != nil {
			return fmt.Errorf("failed to insert org snapshot for %s: %w", org, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit org snapshots: %w", err)
	}
	return nil
}

// scanTime scans a single time column, handling the SQLite text encoding.
func (hs *HistoryStoreImpl) scanTime(row *sql.Row) (time.Time, error) {
	if hs.backend == schema.SQLiteBackend {
		var s string
		if err := row.Scan(&s); err != nil {
			return time.Time{}, err
		}
		return parseTime(s)
	}
	var t time.Time
	err := row.Scan(&t)
	return t, err
}

// Close closes the underlying connection.
func (hs *HistoryStoreImpl) Close() error {
	if hs.db != nil {
		return hs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the history store.
func (hs *HistoryStoreImpl) GetStatus() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:    string(hs.backend),
		Connected:  hs.db != nil,
		TableSizes: make(map[string]int64),
	}
	if hs.disabled() {
		return status, nil
	}

	runsTable := quoteTableName(pipelineRunsTable, hs.backend)
	if err := hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", runsTable)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		lastRunQuery := fmt.Sprintf("SELECT run_id FROM %s ORDER BY run_id DESC LIMIT 1", runsTable)
		if err := hs.db.QueryRow(lastRunQuery).Scan(&status.LastRunID); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}

		var err error
		lastTimeQuery := fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id DESC LIMIT 1", runsTable)
		if status.LastRunTime, err = hs.scanTime(hs.db.QueryRow(lastTimeQuery)); err != nil {
			return status, fmt.Errorf("failed to get last run time: %w", err)
		}
		oldestQuery := fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", runsTable)
		if status.OldestRunTime, err = hs.scanTime(hs.db.QueryRow(oldestQuery)); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
	}

	for _, table := range []string{pipelineRunsTable, orgSnapshotsTable} {
		var count int64
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, hs.backend))
		if err := hs.db.QueryRow(countQuery).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	status.TotalSnapshots = int(status.TableSizes[orgSnapshotsTable])

	return status, nil
}

// GetAllRuns retrieves all pipeline runs from the store.
func (hs *HistoryStoreImpl) GetAllRuns() ([]schema.PipelineRunRecord, error) {
	if hs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, stage, date_token, start_time, end_time, run_duration_ms,
		records_written, skipped, config_params FROM %s ORDER BY run_id`, quoteTableName(pipelineRunsTable, hs.backend))

	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query pipeline runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.PipelineRunRecord
	for rows.Next() {
		var record schema.PipelineRunRecord

		switch hs.backend {
		case schema.SQLiteBackend:
			var startTimeStr string
			var endTimeStr *string
			if err := rows.Scan(&record.RunID, &record.Stage, &record.DateToken, &startTimeStr, &endTimeStr,
				&record.RunDurationMs, &record.RecordsWritten, &record.Skipped, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan pipeline run: %w", err)
			}
			if record.StartTime, err = parseTime(startTimeStr); err != nil {
				return nil, fmt.Errorf("failed to parse start_time: %w", err)
			}
			if endTimeStr != nil {
				endTime, err := parseTime(*endTimeStr)
				if err != nil {
					return nil, fmt.Errorf("failed to parse end_time: %w", err)
				}
				record.EndTime = &endTime
			}
		default: // MySQL and PostgreSQL
			if err := rows.Scan(&record.RunID, &record.Stage, &record.DateToken, &record.StartTime, &record.EndTime,
				&record.RunDurationMs, &record.RecordsWritten, &record.Skipped, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan pipeline run: %w", err)
			}
		}
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pipeline runs: %w", err)
	}
	return results, nil
}

// GetAllOrgSnapshots retrieves all org snapshots from the store.
func (hs *HistoryStoreImpl) GetAllOrgSnapshots() ([]schema.OrgSnapshotRecord, error) {
	if hs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, date_token, organization, repositories, total_stars,
		total_forks, total_open_issues, mean_stars, mean_forks
		FROM %s ORDER BY run_id, organization`, quoteTableName(orgSnapshotsTable, hs.backend))

	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query org snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.OrgSnapshotRecord
	for rows.Next() {
		var r schema.OrgSnapshotRecord
		if err := rows.Scan(&r.RunID, &r.DateToken, &r.Organization, &r.Repositories, &r.TotalStars,
			&r.TotalForks, &r.TotalOpenIssues, &r.MeanStars, &r.MeanForks); err != nil {
			return nil, fmt.Errorf("failed to scan org snapshot: %w", err)
		}
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating org snapshots: %w", err)
	}
	return results, nil
}
