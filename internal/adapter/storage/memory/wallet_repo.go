package memory

import (
	"context"

	"wallet-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// WalletRepo implements ports.WalletStore.
type WalletRepo struct {
	store *Store
}

func NewWalletRepo(store *Store) *WalletRepo {
	return &WalletRepo{store: store}
}

func (r *WalletRepo) GetByUserID(ctx context.Context, userID string) (*domain.Wallet, error) {
	var w *domain.Wallet
	err := r.store.read(ctx, func() {
		if stored, ok := r.store.wallets[userID]; ok {
			cp := *stored
			w = &cp
		}
	})
	return w, err
}

func (r *WalletRepo) GetBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	w, err := r.GetByUserID(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	if w == nil {
		return decimal.Zero, domain.ErrWalletNotFound
	}
	return w.Balance, nil
}

// LockForUpdate only validates tx: an open unit of work already holds the
// whole store.
func (r *WalletRepo) LockForUpdate(ctx context.Context, tx pgx.Tx, _ ...string) error {
	_, err := r.store.open(ctx, tx)
	return err
}

func (r *WalletRepo) AdjustBalance(ctx context.Context, tx pgx.Tx, userID string, delta, floor decimal.Decimal) (*domain.Wallet, error) {
	mt, err := r.store.open(ctx, tx)
	if err != nil {
		return nil, err
	}

	w, ok := r.store.wallets[userID]
	if !ok {
		return nil, domain.ErrWalletNotFound
	}
	next := w.Balance.Add(delta)
	if next.LessThan(floor) {
		return nil, domain.ErrInsufficientBalance
	}
	if next.GreaterThanOrEqual(domain.AmountLimit) {
		return nil, domain.ErrBalanceLimit
	}

	prev := *w
	mt.record(func() { *w = prev })
	w.Balance = next
	w.UpdatedAt = r.store.now()

	cp := *w
	return &cp, nil
}
