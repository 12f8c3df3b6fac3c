package domain

import "github.com/shopspring/decimal"

// TransferCommand records a movement between users and merchants. Commands
// are only built by the request validator.
type TransferCommand struct {
	Type          TransactionType
	FromUserID    *string
	ToUserID      *string
	ToMerchantID  *int64
	RecipientName string
	Amount        decimal.Decimal
	Status        TransactionStatus
	Channel       Channel
	Description   *string
}

// TouchedUsers returns the wallet owners a SUCCESS transfer mutates, in
// ascending order with duplicates removed.
func (c TransferCommand) TouchedUsers() []string {
	var ids []string
	if c.FromUserID != nil {
		ids = append(ids, *c.FromUserID)
	}
	if c.ToUserID != nil {
		switch {
		case len(ids) == 0:
			ids = append(ids, *c.ToUserID)
		case *c.ToUserID < ids[0]:
			ids = []string{*c.ToUserID, ids[0]}
		case *c.ToUserID > ids[0]:
			ids = append(ids, *c.ToUserID)
		}
	}
	return ids
}

// TopUpCommand credits a wallet from the bank rail.
type TopUpCommand struct {
	UserID string
	Amount decimal.Decimal
}

// WithdrawCommand debits a wallet to the bank rail.
type WithdrawCommand struct {
	UserID string
	Amount decimal.Decimal
}

