package postgres

import (
	"context"
	"errors"
	"testing"

	"wallet-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalletRepo_GetByUserID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	w := newTestWallet("user-a", "100.00")

	mock.ExpectQuery("SELECT .+ FROM wallets WHERE user_id").
		WithArgs("user-a").
		WillReturnRows(walletRow(w))

	result, err := repo.GetByUserID(context.Background(), "user-a")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, int64(7), result.WalletID)
	assert.True(t, result.Balance.Equal(dec("100")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_GetByUserID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM wallets WHERE user_id").
		WithArgs("ghost").
		WillReturnRows(pgxmock.NewRows(walletColumnNames()))

	result, err := repo.GetByUserID(context.Background(), "ghost")
	assert.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_GetBalance(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)

	mock.ExpectQuery("SELECT balance FROM wallets").
		WithArgs("user-a").
		WillReturnRows(pgxmock.NewRows([]string{"balance"}).AddRow(dec("10.50")))

	balance, err := repo.GetBalance(context.Background(), "user-a")
	require.NoError(t, err)
	assert.Equal(t, "10.50", balance.StringFixed(2))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_GetBalance_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)

	mock.ExpectQuery("SELECT balance FROM wallets").
		WithArgs("ghost").
		WillReturnRows(pgxmock.NewRows([]string{"balance"}))

	_, err = repo.GetBalance(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrWalletNotFound)
}

func TestWalletRepo_LockForUpdate_SortsIDs(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT user_id FROM wallets WHERE user_id = ANY.+ORDER BY user_id FOR UPDATE").
		WithArgs([]string{"alice", "bob"}).
		WillReturnRows(pgxmock.NewRows([]string{"user_id"}).AddRow("alice").AddRow("bob"))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.LockForUpdate(context.Background(), tx, "bob", "alice")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_LockForUpdate_NoIDs(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)

	mock.ExpectBegin()
	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	assert.NoError(t, repo.LockForUpdate(context.Background(), tx))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_AdjustBalance_Success(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	updated := newTestWallet("user-a", "60.00")
	delta := dec("-40.00")

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE wallets SET balance = balance \\+ \\$2").
		WithArgs("user-a", delta, zero).
		WillReturnRows(walletRow(updated))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	result, err := repo.AdjustBalance(context.Background(), tx, "user-a", delta, zero)
	require.NoError(t, err)
	assert.Equal(t, "60.00", result.Balance.StringFixed(2))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_AdjustBalance_Insufficient(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE wallets SET balance").
		WithArgs("user-a", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(walletColumnNames()))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("user-a").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	result, err := repo.AdjustBalance(context.Background(), tx, "user-a", dec("-50"), zero)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_AdjustBalance_WalletMissing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE wallets SET balance").
		WithArgs("ghost", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(walletColumnNames()))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("ghost").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	_, err = repo.AdjustBalance(context.Background(), tx, "ghost", dec("10"), zero)
	assert.ErrorIs(t, err, domain.ErrWalletNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_AdjustBalance_Overflow(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE wallets SET balance").
		WithArgs("user-a", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "22003", Message: "numeric field overflow"})

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	_, err = repo.AdjustBalance(context.Background(), tx, "user-a", dec("99999999"), zero)
	assert.ErrorIs(t, err, domain.ErrBalanceLimit)
}

func TestWalletRepo_AdjustBalance_DBError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE wallets SET balance").
		WithArgs("user-a", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errors.New("connection reset"))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	_, err = repo.AdjustBalance(context.Background(), tx, "user-a", dec("1"), zero)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "adjust wallet balance")
	assert.NotErrorIs(t, err, domain.ErrInsufficientBalance)
}
