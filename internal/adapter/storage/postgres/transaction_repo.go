package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"

	"github.com/jackc/pgx/v5"
)

const transactionColumns = `transaction_id, txn_ref, type, from_user_id, to_user_id, to_merchant_id,
		recipient_name, amount, status, channel, description, created_at`

// TransactionRepo implements ports.TransactionRecorder. Rows are never
// updated or deleted.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

// Append inserts a new transaction within a database transaction.
func (r *TransactionRepo) Append(ctx context.Context, tx pgx.Tx, t *domain.Transaction) (*domain.Transaction, error) {
	query := `INSERT INTO transactions (txn_ref, type, from_user_id, to_user_id, to_merchant_id,
		recipient_name, amount, status, channel, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, COALESCE($11::timestamp, NOW() AT TIME ZONE 'UTC'))
		RETURNING transaction_id, created_at`

	stored := *t
	err := tx.QueryRow(ctx, query,
		t.TxnRef, t.Type, t.FromUserID, t.ToUserID, t.ToMerchantID,
		t.RecipientName, t.Amount, t.Status, t.Channel, t.Description, createdAtArg(t.CreatedAt),
	).Scan(&stored.TransactionID, &stored.CreatedAt)
	if err != nil {
		switch pgErrorCode(err) {
		case pgUniqueViolation:
			return nil, domain.ErrDuplicateReference
		case pgForeignKeyViolation:
			return nil, domain.ErrUnknownParty
		case pgNumericOutOfRange:
			return nil, domain.ErrBalanceLimit
		}
		return nil, fmt.Errorf("insert transaction: %w", err)
	}
	return &stored, nil
}

// List fetches transactions with filtering, newest first.
func (r *TransactionRepo) List(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, error) {
	var conditions []string
	var args []any
	argIdx := 1

	if params.UserID != nil {
		conditions = append(conditions, fmt.Sprintf("(from_user_id = $%d OR to_user_id = $%d)", argIdx, argIdx))
		args = append(args, *params.UserID)
		argIdx++
	}
	if params.Type != nil {
		conditions = append(conditions, fmt.Sprintf("type = $%d", argIdx))
		args = append(args, *params.Type)
		argIdx++
	}
	if params.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *params.Status)
		argIdx++
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`SELECT %s FROM transactions %s ORDER BY created_at DESC, transaction_id DESC LIMIT $%d`,
		transactionColumns, where, argIdx)
	args = append(args, params.Limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	txns := []domain.Transaction{}
	for rows.Next() {
		t := domain.Transaction{}
		err := rows.Scan(
			&t.TransactionID, &t.TxnRef, &t.Type, &t.FromUserID, &t.ToUserID, &t.ToMerchantID,
			&t.RecipientName, &t.Amount, &t.Status, &t.Channel, &t.Description, &t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction rows: %w", err)
	}
	return txns, nil
}

// createdAtArg binds a zero time as NULL so the row is stamped with the
// database clock in UTC.
func createdAtArg(ts time.Time) *time.Time {
	if ts.IsZero() {
		return nil
	}
	return &ts
}
