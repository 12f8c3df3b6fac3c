package ports

//go:generate mockgen -source=services.go -destination=mocks/mock_services.go -package=mocks

import (
	"context"
	"time"

	"wallet-ledger/internal/core/domain"
)

// ReferenceRegistry reserves transaction references ahead of the insert so
// concurrent writers never race on the same one.
type ReferenceRegistry interface {
	// Reserve returns true if ref was free and is now held for ttl.
	Reserve(ctx context.Context, ref string, ttl time.Duration) (bool, error)
}

// IdempotencyCache stores replayable responses keyed by Idempotency-Key.
type IdempotencyCache interface {
	// Lock claims key for an in-flight request. False means another request
	// holds it right now; a completed request releases it, so callers check
	// Get again after a successful Lock.
	Lock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) ([]byte, error) // Returns cached response or nil
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Unlock(ctx context.Context, key string) error
}

// EventPublisher emits ledger events after commit.
type EventPublisher interface {
	PublishTransaction(ctx context.Context, event TransactionEvent) error
}

// TransactionEvent is the payload published for every committed ledger entry.
type TransactionEvent struct {
	TxnRef       string                   `json:"txnRef"`
	Type         domain.TransactionType   `json:"type"`
	Status       domain.TransactionStatus `json:"status"`
	Channel      domain.Channel           `json:"channel"`
	FromUserID   *string                  `json:"fromUserId,omitempty"`
	ToUserID     *string                  `json:"toUserId,omitempty"`
	ToMerchantID *int64                   `json:"toMerchantId,omitempty"`
	Amount       string                   `json:"amount"`
	OccurredAt   time.Time                `json:"occurredAt"`
}

// --- Service Ports (Business Logic) ---

// LedgerService mutates balances and appends the matching ledger entry as
// one atomic unit.
type LedgerService interface {
	Transfer(ctx context.Context, cmd domain.TransferCommand) (*domain.Transaction, error)
	TopUp(ctx context.Context, cmd domain.TopUpCommand) (*domain.Wallet, error)
	Withdraw(ctx context.Context, cmd domain.WithdrawCommand) (*domain.Wallet, error)
}

// QueryService is the read side used by the HTTP surface.
type QueryService interface {
	ListMerchants(ctx context.Context, params MerchantListParams) ([]domain.Merchant, error)
	GetMerchant(ctx context.Context, id int64) (*domain.Merchant, error)
	ListTransactions(ctx context.Context, params TransactionListParams) ([]domain.Transaction, error)
	GetWallet(ctx context.Context, userID string) (*domain.Wallet, error)
}
