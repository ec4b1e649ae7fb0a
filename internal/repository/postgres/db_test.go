package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T, limit int64) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = raw.Close() })
	return Wrap(sqlx.NewDb(raw, "sqlmock"), limit), mock
}

func TestSelectMaps(t *testing.T) {
	db, mock := newMockDB(t, 0)
	mock.ExpectQuery("SELECT sku, on_hand FROM inventory").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"sku", "on_hand"}).
			AddRow("A-1", int64(4)).
			AddRow("B-2", nil))

	out, err := db.SelectMaps(context.Background(), "SELECT sku, on_hand FROM inventory WHERE store_id = $1", int64(7))
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "A-1", out[0]["sku"])
	assert.Equal(t, int64(4), out[0]["on_hand"])
	assert.Nil(t, out[1]["on_hand"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSelectMapsPropagatesQueryError(t *testing.T) {
	db, mock := newMockDB(t, 1)
	mock.ExpectQuery("SELECT 1").WillReturnError(errors.New("boom"))

	_, err := db.SelectMaps(context.Background(), "SELECT 1")
	require.Error(t, err)

	// the semaphore slot must be released after a failure
	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"one"}).AddRow(int64(1)))
	_, err = db.SelectMaps(context.Background(), "SELECT 1")
	require.NoError(t, err)
}

func TestSelectMapsHonoursCancelledContext(t *testing.T) {
	db, _ := newMockDB(t, 1)
	require.True(t, db.sem.TryAcquire(1))
	defer db.sem.Release(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := db.SelectMaps(ctx, "SELECT 1")
	require.Error(t, err)
}
