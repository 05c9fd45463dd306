package db

import (
	"encoding/json"
	"errors"
	"testing"

	"serbench/internal/benchmark"
	benchErrors "serbench/internal/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withMockStore(t *testing.T, fn func(*PostgresStore, sqlmock.Sqlmock)) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	store := &PostgresStore{newSQLStore(db, postgresDialect, "run")}
	fn(store, mock)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func recordBody(t *testing.T, version string) string {
	t.Helper()
	b, err := json.Marshal(testRecord(version))
	require.NoError(t, err)
	return string(b)
}

func TestPostgresStore_Mocked(t *testing.T) {
	t.Run("Migrate", func(t *testing.T) {
		withMockStore(t, func(store *PostgresStore, mock sqlmock.Sqlmock) {
			mock.ExpectExec("CREATE TABLE IF NOT EXISTS run_records").
				WillReturnResult(sqlmock.NewResult(0, 0))
			assert.NoError(t, store.migrate())
		})
	})

	t.Run("Save Success", func(t *testing.T) {
		withMockStore(t, func(store *PostgresStore, mock sqlmock.Sqlmock) {
			mock.ExpectExec(`INSERT INTO run_records .* VALUES \(\$1, \$2, \$3, \$4\) ON CONFLICT \(record_key\) DO NOTHING`).
				WithArgs(sqlmock.AnyArg(), "go1.22.0", sqlmock.AnyArg(), sqlmock.AnyArg()).
				WillReturnResult(sqlmock.NewResult(0, 1))

			key, err := store.Save(testRecord("go1.22.0"))
			assert.NoError(t, err)
			assert.True(t, benchmark.MatchPrefix("run")(key))
		})
	})

	t.Run("Save Retries Taken Key", func(t *testing.T) {
		withMockStore(t, func(store *PostgresStore, mock sqlmock.Sqlmock) {
			mock.ExpectExec("INSERT INTO run_records").
				WillReturnResult(sqlmock.NewResult(0, 0))
			mock.ExpectExec("INSERT INTO run_records").
				WillReturnResult(sqlmock.NewResult(0, 1))

			_, err := store.Save(testRecord("go1.22.0"))
			assert.NoError(t, err)
		})
	})

	t.Run("Save Error", func(t *testing.T) {
		withMockStore(t, func(store *PostgresStore, mock sqlmock.Sqlmock) {
			mock.ExpectExec("INSERT INTO run_records").
				WillReturnError(errors.New("insert error"))

			_, err := store.Save(testRecord("go1.22.0"))
			assert.Error(t, err)
		})
	})

	t.Run("LoadAll Success", func(t *testing.T) {
		withMockStore(t, func(store *PostgresStore, mock sqlmock.Sqlmock) {
			rows := sqlmock.NewRows([]string{"record_key", "body"}).
				AddRow("run-00000000000000000002.json", recordBody(t, "go1.22.0")).
				AddRow("run-00000000000000000001.json", recordBody(t, "go1.21.0")).
				AddRow("other-00000000000000000003.json", recordBody(t, "go1.23.0"))
			mock.ExpectQuery("SELECT record_key, body FROM run_records").WillReturnRows(rows)

			entries, err := store.LoadAll(benchmark.MatchPrefix("run"))
			require.NoError(t, err)
			require.Len(t, entries, 2)
			assert.Equal(t, "go1.21.0", entries[0].Record.RuntimeVersion)
			assert.Equal(t, "go1.22.0", entries[1].Record.RuntimeVersion)
		})
	})

	t.Run("LoadAll Empty", func(t *testing.T) {
		withMockStore(t, func(store *PostgresStore, mock sqlmock.Sqlmock) {
			mock.ExpectQuery("SELECT record_key, body FROM run_records").
				WillReturnRows(sqlmock.NewRows([]string{"record_key", "body"}))

			_, err := store.LoadAll(benchmark.MatchAll)
			assert.True(t, errors.Is(err, benchErrors.ErrNoRecordsFound))
		})
	})

	t.Run("LoadAll Corrupt", func(t *testing.T) {
		withMockStore(t, func(store *PostgresStore, mock sqlmock.Sqlmock) {
			rows := sqlmock.NewRows([]string{"record_key", "body"}).
				AddRow("run-1.json", "{").
				AddRow("run-2.json", recordBody(t, "go1.22.0"))
			mock.ExpectQuery("SELECT record_key, body FROM run_records").WillReturnRows(rows)

			_, err := store.LoadAll(benchmark.MatchAll)
			assert.True(t, errors.Is(err, benchErrors.ErrCorruptRecord))
			assert.Contains(t, err.Error(), "run-1.json")
		})
	})

	t.Run("LoadValid Skips Corrupt", func(t *testing.T) {
		withMockStore(t, func(store *PostgresStore, mock sqlmock.Sqlmock) {
			rows := sqlmock.NewRows([]string{"record_key", "body"}).
				AddRow("run-1.json", "{").
				AddRow("run-2.json", recordBody(t, "go1.22.0"))
			mock.ExpectQuery("SELECT record_key, body FROM run_records").WillReturnRows(rows)

			entries, corrupt, err := store.LoadValid(benchmark.MatchAll)
			require.NoError(t, err)
			assert.Len(t, entries, 1)
			require.Len(t, corrupt, 1)
			assert.Equal(t, "run-1.json", corrupt[0].Key)
		})
	})

	t.Run("LoadAll Query Error", func(t *testing.T) {
		withMockStore(t, func(store *PostgresStore, mock sqlmock.Sqlmock) {
			mock.ExpectQuery("SELECT record_key, body FROM run_records").
				WillReturnError(errors.New("query error"))

			_, err := store.LoadAll(benchmark.MatchAll)
			assert.Error(t, err)
			assert.False(t, errors.Is(err, benchErrors.ErrNoRecordsFound))
		})
	})
}
