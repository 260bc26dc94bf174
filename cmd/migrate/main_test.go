package main

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractMigrationPart(t *testing.T) {
	content := `
-- +migrate Up
CREATE TABLE payment_transactions (id bigserial);
CREATE INDEX idx_ref ON payment_transactions (reference);

-- +migrate Down
DROP TABLE payment_transactions;
`
	t.Run("Up", func(t *testing.T) {
		up := extractMigrationPart(content, "Up")
		assert.Contains(t, up, "CREATE TABLE payment_transactions")
		assert.Contains(t, up, "CREATE INDEX idx_ref")
		assert.NotContains(t, up, "DROP TABLE")
		assert.NotContains(t, up, "-- +migrate Up")
	})

	t.Run("Down", func(t *testing.T) {
		down := extractMigrationPart(content, "Down")
		assert.Contains(t, down, "DROP TABLE payment_transactions")
		assert.NotContains(t, down, "CREATE TABLE")
	})
}

func TestRunUnknownMode(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = run(db, "sideways", t.TempDir())
	assert.ErrorContains(t, err, "unknown mode")
}

func TestRunMigrationsDownWithNothingApplied(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT version FROM schema_migrations ORDER BY applied_at DESC LIMIT 1`).
		WillReturnRows(sqlmock.NewRows([]string{"version"}))

	assert.NoError(t, runMigrationsDown(db, nil))
}
