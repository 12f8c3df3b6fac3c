// Package memory is an in-process implementation of the storage ports.
// A unit of work holds the store exclusively from Begin until Commit or
// Rollback, and Rollback replays an undo journal, so callers get the same
// all-or-nothing behavior as the PostgreSQL adapter.
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

var errForeignTx = errors.New("memory: transaction was not started by this store")

// Store holds every table in memory.
type Store struct {
	sem chan struct{}

	users     map[string]domain.User
	wallets   map[string]*domain.Wallet
	merchants map[int64]*domain.Merchant
	txns      []domain.Transaction
	refs      map[string]struct{}

	nextWalletID   int64
	nextMerchantID int64
	nextTxnID      int64

	now func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		sem:       make(chan struct{}, 1),
		users:     make(map[string]domain.User),
		wallets:   make(map[string]*domain.Wallet),
		merchants: make(map[int64]*domain.Merchant),
		refs:      make(map[string]struct{}),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) acquire(ctx context.Context) error {
	select {
	case s.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) release() { <-s.sem }

// Begin implements ports.DBTransactor. It blocks until no other unit of
// work is open or ctx is done.
func (s *Store) Begin(ctx context.Context) (pgx.Tx, error) {
	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	return &Tx{store: s}, nil
}

// Tx is a unit of work over the store. Only Commit and Rollback are
// implemented; the remaining pgx.Tx methods are never called by the
// memory repositories.
type Tx struct {
	pgx.Tx
	store *Store

	mu   sync.Mutex
	undo []func()
	done bool
}

func (t *Tx) record(undo func()) {
	t.undo = append(t.undo, undo)
}

// Commit keeps every change made through the transaction.
func (t *Tx) Commit(_ context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return pgx.ErrTxClosed
	}
	t.done = true
	t.undo = nil
	t.store.release()
	return nil
}

// Rollback reverts every change in reverse order. It ignores ctx so an
// abandoned request still releases the store.
func (t *Tx) Rollback(_ context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return pgx.ErrTxClosed
	}
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.done = true
	t.undo = nil
	t.store.release()
	return nil
}

// open unwraps tx and checks it belongs to s and is still usable. Like a
// pgx query, a statement on a cancelled ctx fails and leaves the unit of
// work to be rolled back.
func (s *Store) open(ctx context.Context, tx pgx.Tx) (*Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	mt, ok := tx.(*Tx)
	if !ok || mt.store != s {
		return nil, errForeignTx
	}
	if mt.done {
		return nil, pgx.ErrTxClosed
	}
	return mt, nil
}

// read runs fn with the store held, outside any unit of work.
func (s *Store) read(ctx context.Context, fn func()) error {
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()
	fn()
	return nil
}

// AddUser registers a user, standing in for the identity provider.
func (s *Store) AddUser(ctx context.Context, u domain.User) error {
	return s.read(ctx, func() {
		if u.CreatedAt.IsZero() {
			u.CreatedAt = s.now()
		}
		s.users[u.UserID] = u
	})
}

// OpenWallet creates the wallet of an existing user with an opening balance.
func (s *Store) OpenWallet(ctx context.Context, userID string, balance decimal.Decimal) (*domain.Wallet, error) {
	var (
		w   domain.Wallet
		err error
	)
	lockErr := s.read(ctx, func() {
		if _, ok := s.users[userID]; !ok {
			err = domain.ErrUnknownParty
			return
		}
		if _, ok := s.wallets[userID]; ok {
			err = errors.New("memory: wallet already exists")
			return
		}
		s.nextWalletID++
		now := s.now()
		s.wallets[userID] = &domain.Wallet{
			WalletID:  s.nextWalletID,
			UserID:    userID,
			Balance:   balance.Round(domain.AmountScale),
			Currency:  domain.DefaultCurrency,
			CreatedAt: now,
			UpdatedAt: now,
		}
		w = *s.wallets[userID]
	})
	if lockErr != nil {
		return nil, lockErr
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// AddMerchant registers a merchant and assigns its ID.
func (s *Store) AddMerchant(ctx context.Context, m domain.Merchant) (*domain.Merchant, error) {
	err := s.read(ctx, func() {
		s.nextMerchantID++
		m.MerchantID = s.nextMerchantID
		if m.CreatedAt.IsZero() {
			m.CreatedAt = s.now()
		}
		stored := m
		s.merchants[m.MerchantID] = &stored
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// HealthCheck implements ports.HealthChecker for the memory store.
type HealthCheck struct{}

func (HealthCheck) Ping(context.Context) error { return nil }

func (HealthCheck) Name() string { return "memory" }
