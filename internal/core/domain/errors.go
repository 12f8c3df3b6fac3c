package domain

import "errors"

// Storage-level sentinels. The service layer maps them to API errors.
var (
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrMerchantNotFound    = errors.New("merchant not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrBalanceLimit        = errors.New("balance would exceed the storable maximum")
	ErrDuplicateReference  = errors.New("duplicate transaction reference")
	ErrUnknownParty        = errors.New("transaction references an unknown user or merchant")
	ErrReferenceTaken      = errors.New("transaction reference already reserved")
)
