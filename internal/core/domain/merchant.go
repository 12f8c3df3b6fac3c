package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Merchant is a payment destination with its own integer ID space.
type Merchant struct {
	MerchantID        int64           `json:"merchantId"`
	MerchantCode      string          `json:"merchantCode"`
	Name              string          `json:"name"`
	Category          string          `json:"category"`
	ContactPhone      *string         `json:"contactPhone"`
	Description       *string         `json:"description"`
	TotalTransactions int             `json:"totalTransactions"`
	Rating            decimal.Decimal `json:"rating"`
	Featured          bool            `json:"featured"`
	Logo              string          `json:"logo"`
	CreatedAt         time.Time       `json:"createdAt"`
}
