package service

import (
	"context"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"
)

type queryService struct {
	wallets   ports.WalletStore
	txns      ports.TransactionRecorder
	merchants ports.MerchantRepository
}

// NewQueryService creates the read-side service.
func NewQueryService(
	wallets ports.WalletStore,
	txns ports.TransactionRecorder,
	merchants ports.MerchantRepository,
) ports.QueryService {
	return &queryService{
		wallets:   wallets,
		txns:      txns,
		merchants: merchants,
	}
}

func (s *queryService) ListMerchants(ctx context.Context, params ports.MerchantListParams) ([]domain.Merchant, error) {
	merchants, err := s.merchants.List(ctx, params)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	return merchants, nil
}

func (s *queryService) GetMerchant(ctx context.Context, id int64) (*domain.Merchant, error) {
	merchant, err := s.merchants.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	if merchant == nil {
		return nil, apperror.ErrMerchantNotFound()
	}
	return merchant, nil
}

func (s *queryService) ListTransactions(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, error) {
	txns, err := s.txns.List(ctx, params)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	return txns, nil
}

func (s *queryService) GetWallet(ctx context.Context, userID string) (*domain.Wallet, error) {
	wallet, err := s.wallets.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	if wallet == nil {
		return nil, apperror.ErrWalletNotFound()
	}
	return wallet, nil
}
