package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

func TestRunInTransaction(t *testing.T) {
	errBoom := errors.New("boom")

	tests := []struct {
		name  string
		setup func(mock sqlmock.Sqlmock)
		fn    TxFn
		check func(t *testing.T, err error)
	}{
		{
			name: "commits writes made through the tx",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("UPDATE cards SET fsrs_state").WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec("INSERT INTO review_logs").WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
			fn: func(ctx context.Context, tx *sql.Tx) error {
				if _, err := tx.ExecContext(ctx, "UPDATE cards SET fsrs_state = $1", "{}"); err != nil {
					return err
				}
				_, err := tx.ExecContext(ctx, "INSERT INTO review_logs (id) VALUES ($1)", "x")
				return err
			},
		},
		{
			name: "rolls back and returns the callback error unchanged",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectRollback()
			},
			fn: func(context.Context, *sql.Tx) error { return ErrCardNotFound },
			check: func(t *testing.T, err error) {
				assert.Equal(t, ErrCardNotFound, err)
			},
		},
		{
			name: "begin failure",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin().WillReturnError(errBoom)
			},
			fn: func(context.Context, *sql.Tx) error {
				t.Fatal("callback must not run")
				return nil
			},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrTransactionFailed)
				assert.ErrorIs(t, err, errBoom)
			},
		},
		{
			name: "commit failure",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectCommit().WillReturnError(errBoom)
			},
			fn: func(context.Context, *sql.Tx) error { return nil },
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrTransactionFailed)
				assert.ErrorIs(t, err, errBoom)
			},
		},
		{
			name: "rollback failure keeps both errors",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectRollback().WillReturnError(errBoom)
			},
			fn: func(context.Context, *sql.Tx) error { return ErrDeckNotFound },
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrDeckNotFound)
				assert.ErrorIs(t, err, errBoom)
				assert.Contains(t, err.Error(), "rollback")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMock(t)
			tt.setup(mock)

			err := RunInTransaction(context.Background(), db, tt.fn)
			if tt.check == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestRunInTransaction_Panic(t *testing.T) {
	for _, rollbackErr := range []error{nil, errors.New("connection lost")} {
		db, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectRollback().WillReturnError(rollbackErr)

		assert.PanicsWithValue(t, "corrupt memory state", func() {
			_ = RunInTransaction(context.Background(), db, func(context.Context, *sql.Tx) error {
				panic("corrupt memory state")
			})
		})
	}
}
