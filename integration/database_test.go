//go:build database

package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestHistoryWithMySQL runs the history lifecycle against a MySQL backend.
func TestHistoryWithMySQL(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "ghsnap",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/ghsnap?parseTime=true", host, port.Port())
	runHistoryLifecycle(t, []string{
		"GHSNAP_HISTORY_BACKEND=mysql",
		"GHSNAP_HISTORY_DB_CONNECT=" + connStr,
	})
}

// TestHistoryWithPostgres runs the history lifecycle against a PostgreSQL backend.
func TestHistoryWithPostgres(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres sslmode=disable", host, port.Port())
	runHistoryLifecycle(t, []string{
		"GHSNAP_HISTORY_BACKEND=postgresql",
		"GHSNAP_HISTORY_DB_CONNECT=" + connStr,
	})
}

// runHistoryLifecycle migrates and clears the store, records a summarize run
// and reads it back through history status.
func runHistoryLifecycle(t *testing.T, env []string) {
	t.Helper()
	dir := t.TempDir()
	seedSnapshots(t, dir)

	_, err := runGhsnap(t, env, "history", "migrate")
	require.NoError(t, err)

	_, err = runGhsnap(t, env, "history", "clear")
	require.NoError(t, err)

	_, err = runGhsnap(t, env, "summarize", "--output-dir", dir, "--date", verifyDate)
	require.NoError(t, err)

	output, err := runGhsnap(t, env, "history", "status")
	require.NoError(t, err)
	assert.Contains(t, output, "Connected: true")
	assert.Contains(t, output, "Total Runs: 1")
	assert.Contains(t, output, "Org Snapshots: 2")
}
