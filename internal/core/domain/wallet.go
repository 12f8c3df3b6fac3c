package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is the tag given to wallets created without one.
const DefaultCurrency = "INR"

// AmountScale is the number of fraction digits kept on money values.
const AmountScale = 2

// AmountLimit is the exclusive upper bound of a stored amount or balance,
// the range of NUMERIC(10,2).
var AmountLimit = decimal.New(1, 8)

// Wallet is the single balance record owned by one user.
type Wallet struct {
	WalletID  int64           `json:"walletId"`
	UserID    string          `json:"userId"`
	Balance   decimal.Decimal `json:"balance"`
	Currency  string          `json:"currency"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}
