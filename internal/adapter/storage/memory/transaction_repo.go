package memory

import (
	"context"
	"sort"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"

	"github.com/jackc/pgx/v5"
)

// TransactionRepo implements ports.TransactionRecorder.
type TransactionRepo struct {
	store *Store
}

func NewTransactionRepo(store *Store) *TransactionRepo {
	return &TransactionRepo{store: store}
}

// Append enforces the same constraints as the SQL schema: unique
// reference and existing users and merchant.
func (r *TransactionRepo) Append(ctx context.Context, tx pgx.Tx, t *domain.Transaction) (*domain.Transaction, error) {
	mt, err := r.store.open(ctx, tx)
	if err != nil {
		return nil, err
	}
	s := r.store

	if _, taken := s.refs[t.TxnRef]; taken {
		return nil, domain.ErrDuplicateReference
	}
	if !s.userExists(t.FromUserID) || !s.userExists(t.ToUserID) {
		return nil, domain.ErrUnknownParty
	}
	if t.ToMerchantID != nil {
		if _, ok := s.merchants[*t.ToMerchantID]; !ok {
			return nil, domain.ErrUnknownParty
		}
	}
	if t.Amount.Abs().GreaterThanOrEqual(domain.AmountLimit) {
		return nil, domain.ErrBalanceLimit
	}

	stored := *t
	s.nextTxnID++
	stored.TransactionID = s.nextTxnID
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = s.now()
	}

	n := len(s.txns)
	s.txns = append(s.txns, stored)
	s.refs[stored.TxnRef] = struct{}{}
	mt.record(func() {
		s.txns = s.txns[:n]
		delete(s.refs, stored.TxnRef)
		s.nextTxnID--
	})

	return &stored, nil
}

func (s *Store) userExists(id *string) bool {
	if id == nil {
		return true
	}
	_, ok := s.users[*id]
	return ok
}

// List returns matching transactions, newest first.
func (r *TransactionRepo) List(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, error) {
	out := []domain.Transaction{}
	err := r.store.read(ctx, func() {
		for _, t := range r.store.txns {
			if params.UserID != nil && !t.Involves(*params.UserID) {
				continue
			}
			if params.Type != nil && t.Type != *params.Type {
				continue
			}
			if params.Status != nil && t.Status != *params.Status {
				continue
			}
			out = append(out, t)
		}
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].TransactionID > out[j].TransactionID
	})
	if params.Limit > 0 && len(out) > params.Limit {
		out = out[:params.Limit]
	}
	return out, nil
}
