package settings

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db), mock
}

func TestGetMissingKey(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM game_settings WHERE key = $1`)).
		WithArgs("password").
		WillReturnRows(sqlmock.NewRows([]string{"value"}))

	_, ok, err := repo.Get(context.Background(), "password")
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetBoolParsesStoredString(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM game_settings`)).
		WithArgs("game_active").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("True"))

	active, err := repo.GetBool(context.Background(), "game_active")
	require.NoError(t, err)
	assert.True(t, active)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM game_settings`)).
		WithArgs("game_active").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("False"))

	active, err = repo.GetBool(context.Background(), "game_active")
	require.NoError(t, err)
	assert.False(t, active)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetBoolWritesStoredString(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(`ON CONFLICT (key) DO UPDATE`)).
		WithArgs("game_active", "True").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetBool(context.Background(), "game_active", true))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureDefaultsDoesNotOverwrite(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(`ON CONFLICT (key) DO NOTHING`)).
		WithArgs("password", "SAPEREVENT").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.EnsureDefaults(context.Background(), map[string]string{"password": "SAPEREVENT"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
