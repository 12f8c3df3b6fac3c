package ports

//go:generate mockgen -source=repositories.go -destination=mocks/mock_repositories.go -package=mocks

import (
	"context"

	"wallet-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// WalletStore defines persistence operations for wallets.
// Methods accepting pgx.Tx are used inside transaction blocks; callers must
// lock every wallet they adjust with LockForUpdate first.
type WalletStore interface {
	// GetByUserID returns nil, nil when the user has no wallet.
	GetByUserID(ctx context.Context, userID string) (*domain.Wallet, error)
	// GetBalance returns domain.ErrWalletNotFound when the user has no wallet.
	GetBalance(ctx context.Context, userID string) (decimal.Decimal, error)
	// LockForUpdate row-locks the wallets of userIDs in ascending user ID order.
	LockForUpdate(ctx context.Context, tx pgx.Tx, userIDs ...string) error
	// AdjustBalance adds delta to the balance unless the result would fall
	// below floor. Fails with domain.ErrWalletNotFound or
	// domain.ErrInsufficientBalance, leaving the balance untouched.
	AdjustBalance(ctx context.Context, tx pgx.Tx, userID string, delta, floor decimal.Decimal) (*domain.Wallet, error)
}

// TransactionRecorder is the append-only transaction log.
type TransactionRecorder interface {
	// Append inserts t and fills in its ID and creation time. A reused
	// reference yields domain.ErrDuplicateReference; a dangling user or
	// merchant reference yields domain.ErrUnknownParty.
	Append(ctx context.Context, tx pgx.Tx, t *domain.Transaction) (*domain.Transaction, error)
	List(ctx context.Context, params TransactionListParams) ([]domain.Transaction, error)
}

// TransactionListParams filters the transaction log. Results are ordered
// newest first.
type TransactionListParams struct {
	UserID *string // matches sender or receiver
	Type   *domain.TransactionType
	Status *domain.TransactionStatus
	Limit  int
}

// MerchantRepository defines persistence operations for merchants.
type MerchantRepository interface {
	List(ctx context.Context, params MerchantListParams) ([]domain.Merchant, error)
	GetByID(ctx context.Context, id int64) (*domain.Merchant, error)
	// IncrementTransactions bumps the denormalized counter inside tx.
	// Returns domain.ErrMerchantNotFound for an unknown id.
	IncrementTransactions(ctx context.Context, tx pgx.Tx, id int64) error
}

// MerchantListParams filters the merchant directory. Results are ordered by
// total transactions, busiest first.
type MerchantListParams struct {
	Category *string
	Search   *string // substring of the merchant name
	Featured *bool
	Limit    int
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
