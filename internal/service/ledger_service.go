package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wallet-ledger/config"
	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	topUpDescription    = "Added money to wallet"
	withdrawDescription = "Withdrawn money from wallet"
)

// LedgerServiceImpl implements ports.LedgerService. Each call is one
// database transaction: balances and the ledger row commit together or not
// at all.
type LedgerServiceImpl struct {
	wallets    ports.WalletStore
	txns       ports.TransactionRecorder
	merchants  ports.MerchantRepository
	transactor ports.DBTransactor
	refs       *ReferenceGenerator
	now        func() time.Time
	registry   ports.ReferenceRegistry // optional
	publisher  ports.EventPublisher    // optional
	cfg        config.LedgerConfig
	log        zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl. registry and publisher
// may be nil.
func NewLedgerService(
	wallets ports.WalletStore,
	txns ports.TransactionRecorder,
	merchants ports.MerchantRepository,
	transactor ports.DBTransactor,
	registry ports.ReferenceRegistry,
	publisher ports.EventPublisher,
	cfg config.LedgerConfig,
	log zerolog.Logger,
) *LedgerServiceImpl {
	if cfg.MaxReferenceAttempts < 1 {
		cfg.MaxReferenceAttempts = 1
	}
	return &LedgerServiceImpl{
		wallets:    wallets,
		txns:       txns,
		merchants:  merchants,
		transactor: transactor,
		refs:       NewReferenceGenerator(),
		now:        time.Now,
		registry:   registry,
		publisher:  publisher,
		cfg:        cfg,
		log:        log,
	}
}

// Transfer records a movement between users and merchants. Only SUCCESS
// transfers touch balances; the sender is debited before the receiver is
// credited, and neither may end below zero.
func (s *LedgerServiceImpl) Transfer(ctx context.Context, cmd domain.TransferCommand) (*domain.Transaction, error) {
	var txn *domain.Transaction
	err := s.withReference(ctx, cmd.Channel, func(ref string) error {
		var err error
		txn, err = s.transfer(ctx, cmd, ref)
		return err
	})
	if err != nil {
		return nil, s.mapError(err)
	}

	s.log.Info().
		Str("txn_ref", txn.TxnRef).
		Str("type", string(txn.Type)).
		Str("status", string(txn.Status)).
		Str("amount", txn.Amount.StringFixed(domain.AmountScale)).
		Msg("transfer recorded")

	s.publish(ctx, txn)
	return txn, nil
}

func (s *LedgerServiceImpl) transfer(ctx context.Context, cmd domain.TransferCommand, ref string) (*domain.Transaction, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer dbTx.Rollback(context.WithoutCancel(ctx)) //nolint:errcheck

	if cmd.Status.MovesMoney() {
		if users := cmd.TouchedUsers(); len(users) > 0 {
			if err := s.wallets.LockForUpdate(ctx, dbTx, users...); err != nil {
				return nil, fmt.Errorf("lock wallets: %w", err)
			}
		}
		if cmd.FromUserID != nil {
			if _, err := s.wallets.AdjustBalance(ctx, dbTx, *cmd.FromUserID, cmd.Amount.Neg(), decimal.Zero); err != nil {
				return nil, fmt.Errorf("debit sender: %w", err)
			}
		}
		if cmd.ToUserID != nil {
			if _, err := s.wallets.AdjustBalance(ctx, dbTx, *cmd.ToUserID, cmd.Amount, decimal.Zero); err != nil {
				return nil, fmt.Errorf("credit receiver: %w", err)
			}
		}
	}

	txn, err := s.txns.Append(ctx, dbTx, &domain.Transaction{
		TxnRef:        ref,
		Type:          cmd.Type,
		FromUserID:    cmd.FromUserID,
		ToUserID:      cmd.ToUserID,
		ToMerchantID:  cmd.ToMerchantID,
		RecipientName: cmd.RecipientName,
		Amount:        cmd.Amount,
		Status:        cmd.Status,
		Channel:       cmd.Channel,
		Description:   cmd.Description,
		CreatedAt:     s.now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("append transaction: %w", err)
	}

	if cmd.Status.MovesMoney() && cmd.ToMerchantID != nil {
		if err := s.merchants.IncrementTransactions(ctx, dbTx, *cmd.ToMerchantID); err != nil {
			return nil, fmt.Errorf("increment merchant counter: %w", err)
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return txn, nil
}

// TopUp credits a wallet from the bank rail and records a TOPUP entry.
func (s *LedgerServiceImpl) TopUp(ctx context.Context, cmd domain.TopUpCommand) (*domain.Wallet, error) {
	userID := cmd.UserID
	entry := domain.Transaction{
		Type:          domain.TransactionTypeTopup,
		ToUserID:      &userID,
		RecipientName: s.cfg.TopUpLabel,
		Amount:        cmd.Amount,
		Status:        domain.TransactionStatusSuccess,
		Channel:       domain.ChannelBank,
		Description:   strPtr(topUpDescription),
	}
	return s.moveBankFunds(ctx, userID, cmd.Amount, entry)
}

// Withdraw debits a wallet to the bank rail and records a WITHDRAW entry
// with a negative amount. A wallet holding less than the amount is left
// untouched.
func (s *LedgerServiceImpl) Withdraw(ctx context.Context, cmd domain.WithdrawCommand) (*domain.Wallet, error) {
	userID := cmd.UserID
	entry := domain.Transaction{
		Type:          domain.TransactionTypeWithdraw,
		FromUserID:    &userID,
		RecipientName: s.cfg.WithdrawLabel,
		Amount:        cmd.Amount.Neg(),
		Status:        domain.TransactionStatusSuccess,
		Channel:       domain.ChannelBank,
		Description:   strPtr(withdrawDescription),
	}
	return s.moveBankFunds(ctx, userID, cmd.Amount.Neg(), entry)
}

// moveBankFunds applies delta to one wallet and appends entry.
func (s *LedgerServiceImpl) moveBankFunds(ctx context.Context, userID string, delta decimal.Decimal, entry domain.Transaction) (*domain.Wallet, error) {
	var (
		wallet *domain.Wallet
		txn    *domain.Transaction
	)
	err := s.withReference(ctx, entry.Channel, func(ref string) error {
		dbTx, err := s.transactor.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer dbTx.Rollback(context.WithoutCancel(ctx)) //nolint:errcheck

		if err := s.wallets.LockForUpdate(ctx, dbTx, userID); err != nil {
			return fmt.Errorf("lock wallet: %w", err)
		}
		wallet, err = s.wallets.AdjustBalance(ctx, dbTx, userID, delta, decimal.Zero)
		if err != nil {
			return fmt.Errorf("adjust balance: %w", err)
		}

		e := entry
		e.TxnRef = ref
		e.CreatedAt = s.now().UTC()
		txn, err = s.txns.Append(ctx, dbTx, &e)
		if err != nil {
			return fmt.Errorf("append transaction: %w", err)
		}

		if err := dbTx.Commit(ctx); err != nil {
			return fmt.Errorf("commit tx: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, s.mapError(err)
	}

	s.log.Info().
		Str("txn_ref", txn.TxnRef).
		Str("type", string(txn.Type)).
		Str("user_id", userID).
		Str("amount", txn.Amount.StringFixed(domain.AmountScale)).
		Str("balance", wallet.Balance.StringFixed(domain.AmountScale)).
		Msg("wallet updated")

	s.publish(ctx, txn)
	return wallet, nil
}

// withReference runs fn with a fresh reference, retrying on reservation
// misses and duplicate-reference conflicts until the attempts run out.
func (s *LedgerServiceImpl) withReference(ctx context.Context, channel domain.Channel, fn func(ref string) error) error {
	var lastErr error
	for attempt := 1; attempt <= s.cfg.MaxReferenceAttempts; attempt++ {
		ref := s.refs.Next(channel)

		if s.registry != nil {
			ok, err := s.registry.Reserve(ctx, ref, s.cfg.ReferenceTTL)
			switch {
			case err != nil:
				// The unique constraint still guards the insert.
				s.log.Warn().Err(err).Str("txn_ref", ref).Msg("reference registry unavailable")
			case !ok:
				lastErr = domain.ErrReferenceTaken
				s.log.Warn().Str("txn_ref", ref).Int("attempt", attempt).Msg("reference already reserved, retrying")
				continue
			}
		}

		err := fn(ref)
		if errors.Is(err, domain.ErrDuplicateReference) {
			lastErr = err
			s.log.Warn().Str("txn_ref", ref).Int("attempt", attempt).Msg("duplicate reference, retrying")
			continue
		}
		return err
	}
	return apperror.ErrReferenceExhausted(
		fmt.Errorf("no unique reference after %d attempts: %w", s.cfg.MaxReferenceAttempts, lastErr),
	)
}

// mapError converts storage sentinels to API errors.
func (s *LedgerServiceImpl) mapError(err error) error {
	var appErr *apperror.AppError
	switch {
	case errors.As(err, &appErr):
		if appErr.HTTPStatus >= 500 {
			s.log.Error().Err(err).Msg("ledger operation failed")
		}
		return appErr
	case errors.Is(err, domain.ErrWalletNotFound):
		return apperror.ErrWalletNotFound()
	case errors.Is(err, domain.ErrMerchantNotFound):
		return apperror.ErrMerchantNotFound()
	case errors.Is(err, domain.ErrUnknownParty):
		return apperror.ErrNotFound("User or merchant")
	case errors.Is(err, domain.ErrInsufficientBalance):
		return apperror.ErrInsufficientBalance()
	case errors.Is(err, domain.ErrBalanceLimit):
		return apperror.ErrBalanceLimit()
	case errors.Is(err, pgx.ErrTxClosed):
		s.log.Error().Err(err).Msg("transaction closed unexpectedly")
		return apperror.ErrDatabaseError(err)
	default:
		s.log.Error().Err(err).Msg("ledger operation failed")
		return apperror.InternalError(err)
	}
}

// publish emits the committed entry. Failures only get logged: the money
// has already moved.
func (s *LedgerServiceImpl) publish(ctx context.Context, txn *domain.Transaction) {
	if s.publisher == nil {
		return
	}
	event := ports.TransactionEvent{
		TxnRef:       txn.TxnRef,
		Type:         txn.Type,
		Status:       txn.Status,
		Channel:      txn.Channel,
		FromUserID:   txn.FromUserID,
		ToUserID:     txn.ToUserID,
		ToMerchantID: txn.ToMerchantID,
		Amount:       txn.Amount.StringFixed(domain.AmountScale),
		OccurredAt:   txn.CreatedAt,
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	if err := s.publisher.PublishTransaction(context.WithoutCancel(ctx), event); err != nil {
		s.log.Warn().Err(err).Str("txn_ref", txn.TxnRef).Msg("failed to publish transaction event")
	}
}

func strPtr(s string) *string { return &s }
