package migration

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/BaSui01/synthdoc/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDatabaseType(t *testing.T) {
	tests := []struct {
		input    string
		expected DatabaseType
		wantErr  bool
	}{
		{"postgres", DatabaseTypePostgres, false},
		{"postgresql", DatabaseTypePostgres, false},
		{"pg", DatabaseTypePostgres, false},
		{"mysql", DatabaseTypeMySQL, false},
		{"mariadb", DatabaseTypeMySQL, false},
		{"sqlite", DatabaseTypeSQLite, false},
		{"sqlite3", DatabaseTypeSQLite, false},
		{"POSTGRES", DatabaseTypePostgres, false},
		{"invalid", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := ParseDatabaseType(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestBuildDatabaseURL(t *testing.T) {
	assert.Equal(t,
		"postgres://u:p@db:5432/synthdoc?sslmode=disable",
		BuildDatabaseURL(DatabaseTypePostgres, "db", 5432, "synthdoc", "u", "p", "disable"))
	assert.Equal(t,
		"postgres://u:p@db:5432/synthdoc?sslmode=require",
		BuildDatabaseURL(DatabaseTypePostgres, "db", 5432, "synthdoc", "u", "p", ""))
	assert.Equal(t,
		"u:p@tcp(db:3306)/synthdoc?parseTime=true&multiStatements=true",
		BuildDatabaseURL(DatabaseTypeMySQL, "db", 3306, "synthdoc", "u", "p", ""))
	assert.Equal(t,
		"file:runs.db?mode=rwc&_foreign_keys=on",
		BuildDatabaseURL(DatabaseTypeSQLite, "", 0, "runs.db", "", "", ""))
	assert.Empty(t, BuildDatabaseURL("oracle", "", 0, "", "", "", ""))
}

func TestAvailableMigrations(t *testing.T) {
	for _, dbType := range []DatabaseType{DatabaseTypePostgres, DatabaseTypeMySQL, DatabaseTypeSQLite} {
		t.Run(string(dbType), func(t *testing.T) {
			migrations, err := availableMigrations(dbType)
			require.NoError(t, err)
			require.Len(t, migrations, 2)
			assert.Equal(t, uint(1), migrations[0].version)
			assert.Equal(t, "create_runs", migrations[0].name)
			assert.Equal(t, uint(2), migrations[1].version)
			assert.Equal(t, "create_attempts", migrations[1].name)
		})
	}

	_, err := availableMigrations("oracle")
	assert.Error(t, err)
}

func TestGetMigrationsPath(t *testing.T) {
	assert.Equal(t, "migrations/sqlite", GetMigrationsPath(DatabaseTypeSQLite))
}

func TestNewMigrator_InvalidConfig(t *testing.T) {
	_, err := NewMigrator(nil)
	assert.ErrorContains(t, err, "config is required")

	_, err = NewMigrator(&Config{DatabaseType: DatabaseTypeSQLite})
	assert.ErrorContains(t, err, "database URL is required")

	_, err = NewMigratorFromDatabaseConfig(config.DatabaseConfig{Driver: "oracle"})
	assert.ErrorContains(t, err, "invalid database type")
}

// sqlite3 驱动需要 CGO
func TestMigrator_SQLite_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	dbPath := filepath.Join(t.TempDir(), "runs.db")
	migrator, err := NewMigratorFromDatabaseConfig(config.DatabaseConfig{Driver: "sqlite", Name: dbPath})
	require.NoError(t, err)
	defer migrator.Close()

	ctx := context.Background()

	version, dirty, err := migrator.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint(0), version)
	assert.False(t, dirty)

	var out bytes.Buffer
	cli := NewCLI(migrator)
	cli.SetOutput(&out)

	require.NoError(t, cli.RunVersion(ctx))
	assert.Contains(t, out.String(), "No migrations applied yet")

	require.NoError(t, cli.RunUp(ctx))
	assert.Contains(t, out.String(), "Current version: 2")

	info, err := migrator.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, info.AppliedMigrations)
	assert.Equal(t, 0, info.PendingMigrations)

	out.Reset()
	require.NoError(t, cli.RunStatus(ctx))
	assert.Contains(t, out.String(), "create_attempts")
	assert.Contains(t, out.String(), "Applied")

	require.NoError(t, cli.RunDown(ctx))
	version, _, err = migrator.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)

	statuses, err := migrator.Status(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	assert.True(t, statuses[0].Applied)
	assert.False(t, statuses[1].Applied)
}
