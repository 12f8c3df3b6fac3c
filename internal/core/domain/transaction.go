package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType represents the kind of money movement.
type TransactionType string

const (
	TransactionTypeP2P      TransactionType = "P2P"
	TransactionTypePayment  TransactionType = "PAYMENT"
	TransactionTypeTopup    TransactionType = "TOPUP"
	TransactionTypeBill     TransactionType = "BILL"
	TransactionTypeWithdraw TransactionType = "WITHDRAW"
)

// TransactionTypes lists every accepted type in display order.
var TransactionTypes = []TransactionType{
	TransactionTypeP2P,
	TransactionTypePayment,
	TransactionTypeTopup,
	TransactionTypeBill,
	TransactionTypeWithdraw,
}

// TransactionStatus is written once at creation and never changes.
type TransactionStatus string

const (
	TransactionStatusSuccess   TransactionStatus = "SUCCESS"
	TransactionStatusFailed    TransactionStatus = "FAILED"
	TransactionStatusRefunded  TransactionStatus = "REFUNDED"
	TransactionStatusInitiated TransactionStatus = "INITIATED"
)

var TransactionStatuses = []TransactionStatus{
	TransactionStatusSuccess,
	TransactionStatusFailed,
	TransactionStatusRefunded,
	TransactionStatusInitiated,
}

// MovesMoney is true only for SUCCESS; every other status is recorded
// without touching balances.
func (s TransactionStatus) MovesMoney() bool {
	return s == TransactionStatusSuccess
}

// Channel is the rail a transaction travelled over.
type Channel string

const (
	ChannelUPI    Channel = "UPI"
	ChannelWallet Channel = "WALLET"
	ChannelBank   Channel = "BANK"
)

var Channels = []Channel{ChannelUPI, ChannelWallet, ChannelBank}

// Transaction is an immutable ledger entry for one money-movement attempt.
type Transaction struct {
	TransactionID int64             `json:"transactionId"`
	TxnRef        string            `json:"txnRef"`
	Type          TransactionType   `json:"type"`
	FromUserID    *string           `json:"fromUserId"`
	ToUserID      *string           `json:"toUserId"`
	ToMerchantID  *int64            `json:"toMerchantId"`
	RecipientName string            `json:"recipientName"`
	Amount        decimal.Decimal   `json:"amount"` // negative for withdrawals
	Status        TransactionStatus `json:"status"`
	Channel       Channel           `json:"channel"`
	Description   *string           `json:"description"`
	CreatedAt     time.Time         `json:"createdAt"`
}

// Involves reports whether userID is the sender or the receiver.
func (t *Transaction) Involves(userID string) bool {
	return (t.FromUserID != nil && *t.FromUserID == userID) ||
		(t.ToUserID != nil && *t.ToUserID == userID)
}
