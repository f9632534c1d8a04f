package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRunMigrations_Skip(t *testing.T) {
	observedCore, observedLogs := observer.New(zapcore.InfoLevel)

	err := RunMigrations("postgres://unused", false, zap.New(observedCore))

	assert.NoError(t, err)
	assert.Equal(t, 1, observedLogs.FilterMessageSnippet("skipping migrations").Len())
}

func TestRunMigrations_UnknownDriver(t *testing.T) {
	err := RunMigrations("unknown://localhost/db", true, zap.NewNop())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "could not create migrator")
}

func TestMigrateURL(t *testing.T) {
	testCases := map[string]string{
		"postgres://u:p@localhost:5432/db?sslmode=disable": "pgx5://u:p@localhost:5432/db?sslmode=disable",
		"postgresql://localhost/db":                        "pgx5://localhost/db",
		"pgx5://localhost/db":                              "pgx5://localhost/db",
	}
	for in, want := range testCases {
		assert.Equal(t, want, migrateURL(in), in)
	}
}
