package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTransaction() *domain.Transaction {
	return &domain.Transaction{
		TxnRef:        "UPI1700000000000000000-1a2b3c4d",
		Type:          domain.TransactionTypeP2P,
		FromUserID:    strPtr("alice"),
		ToUserID:      strPtr("bob"),
		RecipientName: "Bob",
		Amount:        dec("40.00"),
		Status:        domain.TransactionStatusSuccess,
		Channel:       domain.ChannelUPI,
		Description:   strPtr("dinner"),
		CreatedAt:     time.Now().UTC().Truncate(time.Microsecond),
	}
}

func txColumns() []string {
	return []string{"transaction_id", "txn_ref", "type", "from_user_id", "to_user_id", "to_merchant_id",
		"recipient_name", "amount", "status", "channel", "description", "created_at"}
}

func txRow(t *domain.Transaction) *pgxmock.Rows {
	return pgxmock.NewRows(txColumns()).AddRow(
		t.TransactionID, t.TxnRef, t.Type, t.FromUserID, t.ToUserID, t.ToMerchantID,
		t.RecipientName, t.Amount, t.Status, t.Channel, t.Description, t.CreatedAt,
	)
}

func expectAppend(mock pgxmock.PgxPoolIface, txn *domain.Transaction) *pgxmock.ExpectedQuery {
	return mock.ExpectQuery("INSERT INTO transactions").
		WithArgs(txn.TxnRef, txn.Type, txn.FromUserID, txn.ToUserID, txn.ToMerchantID,
			txn.RecipientName, txn.Amount, txn.Status, txn.Channel, txn.Description, createdAtArg(txn.CreatedAt))
}

func TestTransactionRepo_Append(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	txn := newTestTransaction()

	mock.ExpectBegin()
	expectAppend(mock, txn).
		WillReturnRows(pgxmock.NewRows([]string{"transaction_id", "created_at"}).AddRow(int64(42), txn.CreatedAt))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	stored, err := repo.Append(context.Background(), tx, txn)
	require.NoError(t, err)
	assert.Equal(t, int64(42), stored.TransactionID)
	assert.Equal(t, txn.TxnRef, stored.TxnRef)
	assert.Zero(t, txn.TransactionID, "input must not be mutated")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_Append_BindsCreatedAt(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	txn := newTestTransaction()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO transactions").
		WithArgs(txn.TxnRef, txn.Type, txn.FromUserID, txn.ToUserID, txn.ToMerchantID,
			txn.RecipientName, txn.Amount, txn.Status, txn.Channel, txn.Description, &txn.CreatedAt).
		WillReturnRows(pgxmock.NewRows([]string{"transaction_id", "created_at"}).AddRow(int64(1), txn.CreatedAt))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	stored, err := repo.Append(context.Background(), tx, txn)
	require.NoError(t, err)
	assert.Equal(t, txn.CreatedAt, stored.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_Append_ZeroCreatedAtUsesDatabaseClock(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	txn := newTestTransaction()
	txn.CreatedAt = time.Time{}
	stamped := time.Now().UTC().Truncate(time.Microsecond)

	mock.ExpectBegin()
	mock.ExpectQuery(`COALESCE\(\$11::timestamp, NOW\(\) AT TIME ZONE 'UTC'\)`).
		WithArgs(txn.TxnRef, txn.Type, txn.FromUserID, txn.ToUserID, txn.ToMerchantID,
			txn.RecipientName, txn.Amount, txn.Status, txn.Channel, txn.Description, (*time.Time)(nil)).
		WillReturnRows(pgxmock.NewRows([]string{"transaction_id", "created_at"}).AddRow(int64(2), stamped))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	stored, err := repo.Append(context.Background(), tx, txn)
	require.NoError(t, err)
	assert.False(t, stored.CreatedAt.IsZero())
	assert.Equal(t, stamped, stored.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_Append_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{"unique violation", &pgconn.PgError{Code: "23505", ConstraintName: "transactions_txn_ref_key"}, domain.ErrDuplicateReference},
		{"foreign key violation", &pgconn.PgError{Code: "23503"}, domain.ErrUnknownParty},
		{"numeric overflow", &pgconn.PgError{Code: "22003"}, domain.ErrBalanceLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			repo := NewTransactionRepo(mock)
			txn := newTestTransaction()

			mock.ExpectBegin()
			expectAppend(mock, txn).WillReturnError(tt.err)

			tx, err := mock.Begin(context.Background())
			require.NoError(t, err)

			stored, err := repo.Append(context.Background(), tx, txn)
			assert.Nil(t, stored)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestTransactionRepo_Append_OtherError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	txn := newTestTransaction()

	mock.ExpectBegin()
	expectAppend(mock, txn).WillReturnError(errors.New("conn closed"))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	_, err = repo.Append(context.Background(), tx, txn)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert transaction")
}

func TestTransactionRepo_List_AllFilters(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	txn := newTestTransaction()
	txn.TransactionID = 9

	userID := "alice"
	txType := domain.TransactionTypeP2P
	status := domain.TransactionStatusSuccess

	mock.ExpectQuery(`SELECT .+ FROM transactions WHERE \(from_user_id = \$1 OR to_user_id = \$1\) AND type = \$2 AND status = \$3 ORDER BY created_at DESC.+LIMIT \$4`).
		WithArgs(userID, txType, status, 50).
		WillReturnRows(txRow(txn))

	txns, err := repo.List(context.Background(), ports.TransactionListParams{
		UserID: &userID,
		Type:   &txType,
		Status: &status,
		Limit:  50,
	})
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, int64(9), txns[0].TransactionID)
	assert.Equal(t, "bob", *txns[0].ToUserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_List_NoFilters(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)

	mock.ExpectQuery(`SELECT .+ FROM transactions ORDER BY created_at DESC.+LIMIT \$1`).
		WithArgs(100).
		WillReturnRows(pgxmock.NewRows(txColumns()))

	txns, err := repo.List(context.Background(), ports.TransactionListParams{Limit: 100})
	require.NoError(t, err)
	assert.NotNil(t, txns)
	assert.Empty(t, txns)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_List_QueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM transactions").
		WillReturnError(errors.New("timeout"))

	_, err = repo.List(context.Background(), ports.TransactionListParams{Limit: 10})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list transactions")
}
