package postgres

import (
	"context"
	"errors"
	"fmt"

	"wallet-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Seeder writes seed data. Every insert is idempotent so a seed file can be
// applied on each start.
type Seeder struct {
	pool Pool
}

func NewSeeder(pool Pool) *Seeder {
	return &Seeder{pool: pool}
}

func (s *Seeder) AddUser(ctx context.Context, u domain.User) error {
	query := `INSERT INTO users (user_id, name, email, phone) VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO NOTHING`

	if _, err := s.pool.Exec(ctx, query, u.UserID, u.Name, u.Email, u.Phone); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// OpenWallet creates the wallet of userID. An existing wallet is returned
// unchanged.
func (s *Seeder) OpenWallet(ctx context.Context, userID string, balance decimal.Decimal) (*domain.Wallet, error) {
	query := `INSERT INTO wallets (user_id, balance, currency) VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO NOTHING
		RETURNING ` + walletColumns

	w, err := scanWallet(s.pool.QueryRow(ctx, query, userID, balance.Round(domain.AmountScale), domain.DefaultCurrency))
	if errors.Is(err, pgx.ErrNoRows) {
		return NewWalletRepo(s.pool).GetByUserID(ctx, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("insert wallet: %w", err)
	}
	return w, nil
}

// AddMerchant inserts m keyed by merchant code. An existing merchant is
// returned unchanged.
func (s *Seeder) AddMerchant(ctx context.Context, m domain.Merchant) (*domain.Merchant, error) {
	query := `INSERT INTO merchants (merchant_code, name, category, contact_phone, description, rating, featured, logo)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (merchant_code) DO NOTHING
		RETURNING ` + merchantColumns

	out, err := scanMerchant(s.pool.QueryRow(ctx, query,
		m.MerchantCode, m.Name, m.Category, m.ContactPhone, m.Description, m.Rating, m.Featured, m.Logo,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		out, err = scanMerchant(s.pool.QueryRow(ctx,
			`SELECT `+merchantColumns+` FROM merchants WHERE merchant_code = $1`, m.MerchantCode))
	}
	if err != nil {
		return nil, fmt.Errorf("insert merchant: %w", err)
	}
	return out, nil
}
