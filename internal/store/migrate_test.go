package store

import (
	"context"
	"io/fs"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voyagen/tvdetection/migrations"
)

func TestVerifySchemaComplete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	tables := sqlmock.NewRows([]string{"table_name"})
	for _, name := range requiredTables {
		tables.AddRow(name)
	}
	enums := sqlmock.NewRows([]string{"typname"})
	for _, name := range requiredEnums {
		enums.AddRow(name)
	}
	mock.ExpectQuery(`FROM information_schema.tables`).WillReturnRows(tables)
	mock.ExpectQuery(`FROM pg_type`).WillReturnRows(enums)

	require.NoError(t, verifySchema(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerifySchemaReportsMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM information_schema.tables`).
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}).AddRow("channels").AddRow("programs").AddRow("schedules").AddRow("scans"))
	mock.ExpectQuery(`FROM pg_type`).
		WillReturnRows(sqlmock.NewRows([]string{"typname"}).AddRow("tuning_type").AddRow("channel_status"))

	err = verifySchema(context.Background(), db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "table recordings")
	assert.Contains(t, err.Error(), "type recording_status")
	assert.NotContains(t, err.Error(), "table channels")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerifySchemaQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM information_schema.tables`).WillReturnError(assert.AnError)

	err = verifySchema(context.Background(), db)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	ups, err := fs.Glob(migrations.FS, "*.up.sql")
	require.NoError(t, err)
	downs, err := fs.Glob(migrations.FS, "*.down.sql")
	require.NoError(t, err)

	require.NotEmpty(t, ups)
	assert.Len(t, downs, len(ups))
}

func TestEmbeddedMigrationsUseRestrict(t *testing.T) {
	raw, err := fs.ReadFile(migrations.FS, "000002_create_tables.up.sql")
	require.NoError(t, err)
	sql := string(raw)

	assert.NotContains(t, sql, "CASCADE")
	assert.Contains(t, sql, "ON DELETE RESTRICT")
	assert.Contains(t, sql, "channels_name_key UNIQUE")
}
