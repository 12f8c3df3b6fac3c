package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"wallet-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const walletColumns = `wallet_id, user_id, balance, currency, created_at, updated_at`

// WalletRepo implements ports.WalletStore.
type WalletRepo struct {
	pool Pool
}

// NewWalletRepo creates a new WalletRepo.
func NewWalletRepo(pool Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

// GetByUserID fetches a wallet by its owner (without locking).
func (r *WalletRepo) GetByUserID(ctx context.Context, userID string) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1`

	w, err := scanWallet(r.pool.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wallet by user id: %w", err)
	}
	return w, nil
}

// GetBalance reads the committed balance of a user's wallet.
func (r *WalletRepo) GetBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	query := `SELECT balance FROM wallets WHERE user_id = $1`

	var balance decimal.Decimal
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, domain.ErrWalletNotFound
		}
		return decimal.Zero, fmt.Errorf("get wallet balance: %w", err)
	}
	return balance, nil
}

// LockForUpdate takes row locks on the given wallets in ascending user ID
// order. Missing wallets are skipped; AdjustBalance reports them.
// This MUST be called within a transaction.
func (r *WalletRepo) LockForUpdate(ctx context.Context, tx pgx.Tx, userIDs ...string) error {
	if len(userIDs) == 0 {
		return nil
	}
	ids := append([]string(nil), userIDs...)
	sort.Strings(ids)

	query := `SELECT user_id FROM wallets WHERE user_id = ANY($1) ORDER BY user_id FOR UPDATE`

	rows, err := tx.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("lock wallets: %w", err)
	}
	if _, err := pgx.CollectRows(rows, pgx.RowTo[string]); err != nil {
		return fmt.Errorf("lock wallets: %w", err)
	}
	return nil
}

// AdjustBalance applies delta in a single conditional statement so the
// floor check and the write cannot be split by another writer.
// This MUST be called within a transaction.
func (r *WalletRepo) AdjustBalance(ctx context.Context, tx pgx.Tx, userID string, delta, floor decimal.Decimal) (*domain.Wallet, error) {
	query := `UPDATE wallets SET balance = balance + $2, updated_at = NOW()
		WHERE user_id = $1 AND balance + $2 >= $3
		RETURNING ` + walletColumns

	w, err := scanWallet(tx.QueryRow(ctx, query, userID, delta, floor))
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		if code := pgErrorCode(err); code == pgNumericOutOfRange || code == pgCheckViolation {
			return nil, domain.ErrBalanceLimit
		}
		return nil, fmt.Errorf("adjust wallet balance: %w", err)
	}

	// No row matched: tell a missing wallet apart from a failed floor check.
	var exists bool
	existsQuery := `SELECT EXISTS(SELECT 1 FROM wallets WHERE user_id = $1)`
	if err := tx.QueryRow(ctx, existsQuery, userID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check wallet: %w", err)
	}
	if !exists {
		return nil, domain.ErrWalletNotFound
	}
	return nil, domain.ErrInsufficientBalance
}

func scanWallet(row pgx.Row) (*domain.Wallet, error) {
	w := &domain.Wallet{}
	err := row.Scan(&w.WalletID, &w.UserID, &w.Balance, &w.Currency, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return w, nil
}
