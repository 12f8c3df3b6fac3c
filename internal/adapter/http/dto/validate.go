package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/pkg/apperror"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Validation turns decoded request bodies into ledger commands. Rules run
// in a fixed order and the first failure wins, so the returned code is
// deterministic. It never touches storage.

var (
	errMissingType          = apperror.Validation(apperror.CodeMissingType, "Type is required")
	errMissingRecipientName = apperror.Validation(apperror.CodeMissingRecipientName, "Recipient name is required")
	errMissingAmount        = apperror.Validation(apperror.CodeMissingAmount, "Amount is required")
	errMissingStatus        = apperror.Validation(apperror.CodeMissingStatus, "Status is required")
	errMissingChannel       = apperror.Validation(apperror.CodeMissingChannel, "Channel is required")
	errMissingParticipant   = apperror.Validation(apperror.CodeMissingParticipant, "At least one of fromUserId, toUserId or toMerchantId is required")
	errBothDestinations     = apperror.Validation(apperror.CodeInvalidDestination, "Only one of toUserId and toMerchantId may be set")
	errSelfTransfer         = apperror.Validation(apperror.CodeInvalidDestination, "Sender and recipient must differ")
	errAmountNotNumber      = apperror.Validation(apperror.CodeInvalidAmount, "Amount must be a valid number")
	errAmountNotPositive    = apperror.Validation(apperror.CodeInvalidAmount, "Amount must be greater than 0")
	errAmountTooLarge       = apperror.Validation(apperror.CodeInvalidAmount, "Amount must be less than 100000000")
)

var (
	errInvalidType    = invalidEnum(apperror.CodeInvalidType, "type", enumStrings(domain.TransactionTypes))
	errInvalidStatus  = invalidEnum(apperror.CodeInvalidStatus, "status", enumStrings(domain.TransactionStatuses))
	errInvalidChannel = invalidEnum(apperror.CodeInvalidChannel, "channel", enumStrings(domain.Channels))
)

func invalidEnum(code, field string, values []string) *apperror.AppError {
	return apperror.Validation(code, fmt.Sprintf("Invalid %s. Must be one of: %s", field, strings.Join(values, ", ")))
}

// tagRule maps a failed binding tag on a struct field to an API error.
type tagRule struct {
	field string
	tags  []string
	err   error
}

var presenceTags = []string{"required", "amount_present"}

// Presence of every field is reported before any enum value.
var transferRules = []tagRule{
	{"Type", presenceTags, errMissingType},
	{"RecipientName", presenceTags, errMissingRecipientName},
	{"Amount", presenceTags, errMissingAmount},
	{"Status", presenceTags, errMissingStatus},
	{"Channel", presenceTags, errMissingChannel},
	{"Type", []string{"oneof"}, errInvalidType},
	{"Status", []string{"oneof"}, errInvalidStatus},
	{"Channel", []string{"oneof"}, errInvalidChannel},
}

var walletAmountRules = []tagRule{
	{"UserID", presenceTags, apperror.ErrMissingUserID()},
	{"Amount", presenceTags, errMissingAmount},
}

// checkTags runs the binding validator on v and returns the error of the
// first rule that matches a failed field.
func checkTags(v any, rules []tagRule) error {
	err := binding.Validator.ValidateStruct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperror.ErrInvalidRequest(err)
	}
	for _, rule := range rules {
		for _, fe := range verrs {
			if fe.StructField() == rule.field && slices.Contains(rule.tags, fe.Tag()) {
				return rule.err
			}
		}
	}
	return apperror.ErrInvalidRequest(err)
}

// ToCommand validates a transfer request.
func (r *TransferRequest) ToCommand() (domain.TransferCommand, error) {
	if err := checkTags(r, transferRules); err != nil {
		return domain.TransferCommand{}, err
	}

	amount, err := parseAmount(r.Amount)
	if err != nil {
		return domain.TransferCommand{}, err
	}
	if !withinLimit(amount) {
		return domain.TransferCommand{}, errAmountTooLarge
	}

	toMerchantID := r.ToMerchantID
	if toMerchantID != nil && *toMerchantID == 0 {
		toMerchantID = nil
	}
	switch {
	case r.FromUserID == nil && r.ToUserID == nil && toMerchantID == nil:
		return domain.TransferCommand{}, errMissingParticipant
	case r.ToUserID != nil && toMerchantID != nil:
		return domain.TransferCommand{}, errBothDestinations
	case r.FromUserID != nil && r.ToUserID != nil && *r.FromUserID == *r.ToUserID:
		return domain.TransferCommand{}, errSelfTransfer
	}

	return domain.TransferCommand{
		Type:          domain.TransactionType(r.Type),
		FromUserID:    r.FromUserID,
		ToUserID:      r.ToUserID,
		ToMerchantID:  toMerchantID,
		RecipientName: r.RecipientName,
		Amount:        amount,
		Status:        domain.TransactionStatus(r.Status),
		Channel:       domain.Channel(r.Channel),
		Description:   r.Description,
	}, nil
}

// ToTopUpCommand validates an add-money request.
func (r *WalletAmountRequest) ToTopUpCommand() (domain.TopUpCommand, error) {
	userID, amount, err := r.validate()
	if err != nil {
		return domain.TopUpCommand{}, err
	}
	return domain.TopUpCommand{UserID: userID, Amount: amount}, nil
}

// ToWithdrawCommand validates a withdraw request.
func (r *WalletAmountRequest) ToWithdrawCommand() (domain.WithdrawCommand, error) {
	userID, amount, err := r.validate()
	if err != nil {
		return domain.WithdrawCommand{}, err
	}
	return domain.WithdrawCommand{UserID: userID, Amount: amount}, nil
}

func (r *WalletAmountRequest) validate() (string, decimal.Decimal, error) {
	if err := checkTags(r, walletAmountRules); err != nil {
		return "", decimal.Zero, err
	}
	amount, err := parseAmount(r.Amount)
	if err != nil {
		return "", decimal.Zero, err
	}
	if !amount.IsPositive() {
		return "", decimal.Zero, errAmountNotPositive
	}
	if !withinLimit(amount) {
		return "", decimal.Zero, errAmountTooLarge
	}
	return r.UserID, amount, nil
}

func amountPresent(raw json.RawMessage) bool {
	v := bytes.TrimSpace(raw)
	return len(v) > 0 && !bytes.Equal(v, []byte("null"))
}

// parseAmount accepts only JSON number literals and rounds them to cents.
func parseAmount(raw json.RawMessage) (decimal.Decimal, error) {
	v := bytes.TrimSpace(raw)
	if len(v) == 0 || (v[0] != '-' && (v[0] < '0' || v[0] > '9')) {
		return decimal.Zero, errAmountNotNumber
	}
	d, err := decimal.NewFromString(string(v))
	if err != nil {
		return decimal.Zero, errAmountNotNumber
	}
	return d.Round(domain.AmountScale), nil
}

// withinLimit reports whether d fits a NUMERIC(10,2) column.
func withinLimit(d decimal.Decimal) bool {
	return d.Abs().LessThan(domain.AmountLimit)
}

func enumStrings[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
