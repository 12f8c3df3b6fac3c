package postgres

import (
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
)

func strPtr(s string) *string { return &s }

func int64Ptr(i int64) *int64 { return &i }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newTestWallet(userID, balance string) *domain.Wallet {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Wallet{
		WalletID:  7,
		UserID:    userID,
		Balance:   dec(balance),
		Currency:  "INR",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func walletColumnNames() []string {
	return []string{"wallet_id", "user_id", "balance", "currency", "created_at", "updated_at"}
}

func walletRow(w *domain.Wallet) *pgxmock.Rows {
	return pgxmock.NewRows(walletColumnNames()).AddRow(
		w.WalletID, w.UserID, w.Balance, w.Currency, w.CreatedAt, w.UpdatedAt,
	)
}

var zero = decimal.Zero
