package dto

import (
	"encoding/json"
	"time"

	"wallet-ledger/internal/core/domain"
)

// TransferRequest is the request body for POST /transactions. Amount is kept
// raw so a missing value and a non-numeric value can be told apart.
type TransferRequest struct {
	Type          string          `json:"type" binding:"required,oneof=P2P PAYMENT TOPUP BILL WITHDRAW"`
	FromUserID    *string         `json:"fromUserId"`
	ToUserID      *string         `json:"toUserId"`
	ToMerchantID  *int64          `json:"toMerchantId"`
	RecipientName string          `json:"recipientName" binding:"required"`
	Amount        json.RawMessage `json:"amount" binding:"required,amount_present"`
	Status        string          `json:"status" binding:"required,oneof=SUCCESS FAILED REFUNDED INITIATED"`
	Channel       string          `json:"channel" binding:"required,oneof=UPI WALLET BANK"`
	Description   *string         `json:"description"`
}

// WalletAmountRequest is the request body for add-money and withdraw.
type WalletAmountRequest struct {
	UserID string          `json:"userId" binding:"required"`
	Amount json.RawMessage `json:"amount" binding:"required,amount_present"`
}

// MerchantListQuery holds the query string of GET /merchants.
type MerchantListQuery struct {
	Category string `form:"category"`
	Search   string `form:"search"`
	Featured string `form:"featured"`
	Limit    string `form:"limit"`
}

// TransactionListQuery holds the query string of GET /transactions.
type TransactionListQuery struct {
	UserID string `form:"user_id"`
	Type   string `form:"type"`
	Status string `form:"status"`
	Limit  string `form:"limit"`
}

// WalletResponse is the wallet object returned by the wallet routes.
type WalletResponse struct {
	WalletID  int64  `json:"walletId"`
	UserID    string `json:"userId"`
	Balance   string `json:"balance"`
	Currency  string `json:"currency"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// TransactionResponse is a single ledger entry.
type TransactionResponse struct {
	TransactionID int64   `json:"transactionId"`
	TxnRef        string  `json:"txnRef"`
	Type          string  `json:"type"`
	FromUserID    *string `json:"fromUserId"`
	ToUserID      *string `json:"toUserId"`
	ToMerchantID  *int64  `json:"toMerchantId"`
	RecipientName string  `json:"recipientName"`
	Amount        string  `json:"amount"`
	Status        string  `json:"status"`
	Channel       string  `json:"channel"`
	Description   *string `json:"description"`
	CreatedAt     string  `json:"createdAt"`
}

// MerchantResponse is a merchant directory entry.
type MerchantResponse struct {
	MerchantID        int64   `json:"merchantId"`
	MerchantCode      string  `json:"merchantCode"`
	Name              string  `json:"name"`
	Category          string  `json:"category"`
	ContactPhone      *string `json:"contactPhone"`
	Description       *string `json:"description"`
	TotalTransactions int     `json:"totalTransactions"`
	Rating            string  `json:"rating"`
	Featured          bool    `json:"featured"`
	Logo              string  `json:"logo"`
	CreatedAt         string  `json:"createdAt"`
}

// timeLayout renders timestamps with millisecond precision in UTC.
const timeLayout = "2006-01-02T15:04:05.000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func NewWalletResponse(w *domain.Wallet) WalletResponse {
	return WalletResponse{
		WalletID:  w.WalletID,
		UserID:    w.UserID,
		Balance:   w.Balance.StringFixed(domain.AmountScale),
		Currency:  w.Currency,
		CreatedAt: formatTime(w.CreatedAt),
		UpdatedAt: formatTime(w.UpdatedAt),
	}
}

func NewTransactionResponse(t *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID: t.TransactionID,
		TxnRef:        t.TxnRef,
		Type:          string(t.Type),
		FromUserID:    t.FromUserID,
		ToUserID:      t.ToUserID,
		ToMerchantID:  t.ToMerchantID,
		RecipientName: t.RecipientName,
		Amount:        t.Amount.StringFixed(domain.AmountScale),
		Status:        string(t.Status),
		Channel:       string(t.Channel),
		Description:   t.Description,
		CreatedAt:     formatTime(t.CreatedAt),
	}
}

func NewTransactionListResponse(txns []domain.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(txns))
	for i := range txns {
		out = append(out, NewTransactionResponse(&txns[i]))
	}
	return out
}

func NewMerchantResponse(m *domain.Merchant) MerchantResponse {
	return MerchantResponse{
		MerchantID:        m.MerchantID,
		MerchantCode:      m.MerchantCode,
		Name:              m.Name,
		Category:          m.Category,
		ContactPhone:      m.ContactPhone,
		Description:       m.Description,
		TotalTransactions: m.TotalTransactions,
		Rating:            m.Rating.StringFixed(2),
		Featured:          m.Featured,
		Logo:              m.Logo,
		CreatedAt:         formatTime(m.CreatedAt),
	}
}

func NewMerchantListResponse(merchants []domain.Merchant) []MerchantResponse {
	out := make([]MerchantResponse, 0, len(merchants))
	for i := range merchants {
		out = append(out, NewMerchantResponse(&merchants[i]))
	}
	return out
}
