package memory

import (
	"context"
	"sort"
	"strings"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"

	"github.com/jackc/pgx/v5"
)

// MerchantRepo implements ports.MerchantRepository.
type MerchantRepo struct {
	store *Store
}

func NewMerchantRepo(store *Store) *MerchantRepo {
	return &MerchantRepo{store: store}
}

func (r *MerchantRepo) List(ctx context.Context, params ports.MerchantListParams) ([]domain.Merchant, error) {
	out := []domain.Merchant{}
	err := r.store.read(ctx, func() {
		for _, m := range r.store.merchants {
			if params.Category != nil && m.Category != *params.Category {
				continue
			}
			if params.Search != nil && !strings.Contains(m.Name, *params.Search) {
				continue
			}
			if params.Featured != nil && m.Featured != *params.Featured {
				continue
			}
			out = append(out, *m)
		}
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalTransactions != out[j].TotalTransactions {
			return out[i].TotalTransactions > out[j].TotalTransactions
		}
		return out[i].MerchantID < out[j].MerchantID
	})
	if params.Limit > 0 && len(out) > params.Limit {
		out = out[:params.Limit]
	}
	return out, nil
}

func (r *MerchantRepo) GetByID(ctx context.Context, id int64) (*domain.Merchant, error) {
	var m *domain.Merchant
	err := r.store.read(ctx, func() {
		if stored, ok := r.store.merchants[id]; ok {
			cp := *stored
			m = &cp
		}
	})
	return m, err
}

func (r *MerchantRepo) IncrementTransactions(ctx context.Context, tx pgx.Tx, id int64) error {
	mt, err := r.store.open(ctx, tx)
	if err != nil {
		return err
	}
	m, ok := r.store.merchants[id]
	if !ok {
		return domain.ErrMerchantNotFound
	}
	m.TotalTransactions++
	mt.record(func() { m.TotalTransactions-- })
	return nil
}
