package dto

import (
	"encoding/json"
	"testing"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/pkg/apperror"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func validTransfer() TransferRequest {
	return TransferRequest{
		Type:          "P2P",
		FromUserID:    strPtr("user-a"),
		ToUserID:      strPtr("user-b"),
		RecipientName: "Bob",
		Amount:        json.RawMessage(`40`),
		Status:        "SUCCESS",
		Channel:       "UPI",
	}
}

func assertValidationError(t *testing.T, err error, code, message string) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok, "expected *apperror.AppError, got %T", err)
	assert.Equal(t, 400, appErr.HTTPStatus)
	assert.Equal(t, code, appErr.Code)
	if message != "" {
		assert.Equal(t, message, appErr.Message)
	}
}

func TestTransferRequest_ToCommand_Valid(t *testing.T) {
	req := validTransfer()
	req.Amount = json.RawMessage(`40.005`)

	cmd, err := req.ToCommand()
	require.NoError(t, err)

	assert.Equal(t, domain.TransactionTypeP2P, cmd.Type)
	assert.Equal(t, domain.TransactionStatusSuccess, cmd.Status)
	assert.Equal(t, domain.ChannelUPI, cmd.Channel)
	assert.Equal(t, "user-a", *cmd.FromUserID)
	assert.Equal(t, "user-b", *cmd.ToUserID)
	assert.Nil(t, cmd.ToMerchantID)
	assert.True(t, decimal.RequireFromString("40.01").Equal(cmd.Amount), "got %s", cmd.Amount)
}

func TestTransferRequest_ToCommand_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *TransferRequest)
		code    string
		message string
	}{
		{"missing type", func(r *TransferRequest) { r.Type = "" }, apperror.CodeMissingType, "Type is required"},
		{"missing recipient", func(r *TransferRequest) { r.RecipientName = "" }, apperror.CodeMissingRecipientName, "Recipient name is required"},
		{"missing amount", func(r *TransferRequest) { r.Amount = nil }, apperror.CodeMissingAmount, "Amount is required"},
		{"null amount", func(r *TransferRequest) { r.Amount = json.RawMessage(`null`) }, apperror.CodeMissingAmount, ""},
		{"missing status", func(r *TransferRequest) { r.Status = "" }, apperror.CodeMissingStatus, "Status is required"},
		{"missing channel", func(r *TransferRequest) { r.Channel = "" }, apperror.CodeMissingChannel, "Channel is required"},
		{
			"invalid type",
			func(r *TransferRequest) { r.Type = "GIFT" },
			apperror.CodeInvalidType,
			"Invalid type. Must be one of: P2P, PAYMENT, TOPUP, BILL, WITHDRAW",
		},
		{
			"invalid status",
			func(r *TransferRequest) { r.Status = "PENDING" },
			apperror.CodeInvalidStatus,
			"Invalid status. Must be one of: SUCCESS, FAILED, REFUNDED, INITIATED",
		},
		{
			"invalid channel",
			func(r *TransferRequest) { r.Channel = "CARD" },
			apperror.CodeInvalidChannel,
			"Invalid channel. Must be one of: UPI, WALLET, BANK",
		},
		{"string amount", func(r *TransferRequest) { r.Amount = json.RawMessage(`"40"`) }, apperror.CodeInvalidAmount, "Amount must be a valid number"},
		{"bool amount", func(r *TransferRequest) { r.Amount = json.RawMessage(`true`) }, apperror.CodeInvalidAmount, ""},
		{"too large", func(r *TransferRequest) { r.Amount = json.RawMessage(`100000000`) }, apperror.CodeInvalidAmount, ""},
		{
			"no participants",
			func(r *TransferRequest) { r.FromUserID, r.ToUserID = nil, nil },
			apperror.CodeMissingParticipant, "",
		},
		{
			"two destinations",
			func(r *TransferRequest) { id := int64(3); r.ToMerchantID = &id },
			apperror.CodeInvalidDestination, "",
		},
		{
			"self transfer",
			func(r *TransferRequest) { r.ToUserID = strPtr("user-a") },
			apperror.CodeInvalidDestination, "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validTransfer()
			tt.mutate(&req)
			_, err := req.ToCommand()
			assertValidationError(t, err, tt.code, tt.message)
		})
	}
}

func TestTransferRequest_ToCommand_CheckOrder(t *testing.T) {
	// Presence checks run before enum checks.
	req := validTransfer()
	req.Type = "GIFT"
	req.Channel = ""
	_, err := req.ToCommand()
	assertValidationError(t, err, apperror.CodeMissingChannel, "")

	// Enum checks run before the amount type check.
	req = validTransfer()
	req.Status = "PENDING"
	req.Amount = json.RawMessage(`"abc"`)
	_, err = req.ToCommand()
	assertValidationError(t, err, apperror.CodeInvalidStatus, "")
}

func TestTransferRequest_EnumTagsAcceptEveryDomainValue(t *testing.T) {
	for _, typ := range domain.TransactionTypes {
		for _, status := range domain.TransactionStatuses {
			for _, channel := range domain.Channels {
				req := validTransfer()
				req.Type, req.Status, req.Channel = string(typ), string(status), string(channel)
				_, err := req.ToCommand()
				assert.NoError(t, err, "%s/%s/%s", typ, status, channel)
			}
		}
	}

	req := validTransfer()
	req.Type = "p2p"
	_, err := req.ToCommand()
	assertValidationError(t, err, apperror.CodeInvalidType, "")
}

func TestAmountPresentRuleRegistered(t *testing.T) {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)

	type amountOnly struct {
		Amount json.RawMessage `binding:"amount_present"`
	}
	assert.NoError(t, v.Struct(amountOnly{Amount: json.RawMessage(`12.5`)}))
	assert.Error(t, v.Struct(amountOnly{Amount: json.RawMessage(`null`)}))
	assert.Error(t, v.Struct(amountOnly{Amount: json.RawMessage(` `)}))
}

func TestTransferRequest_ToCommand_MerchantPayment(t *testing.T) {
	id := int64(7)
	req := validTransfer()
	req.Type = "PAYMENT"
	req.ToUserID = nil
	req.ToMerchantID = &id

	cmd, err := req.ToCommand()
	require.NoError(t, err)
	require.NotNil(t, cmd.ToMerchantID)
	assert.Equal(t, int64(7), *cmd.ToMerchantID)
	assert.Equal(t, []string{"user-a"}, cmd.TouchedUsers())
}

func TestTransferRequest_ToCommand_NonPositiveAmountAccepted(t *testing.T) {
	req := validTransfer()
	req.Amount = json.RawMessage(`0`)
	cmd, err := req.ToCommand()
	require.NoError(t, err)
	assert.True(t, cmd.Amount.IsZero())
}

func TestWalletAmountRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     WalletAmountRequest
		code    string
		message string
	}{
		{"missing user", WalletAmountRequest{Amount: json.RawMessage(`10`)}, apperror.CodeMissingUserID, "User ID is required"},
		{"missing amount", WalletAmountRequest{UserID: "u1"}, apperror.CodeMissingAmount, "Amount is required"},
		{"not a number", WalletAmountRequest{UserID: "u1", Amount: json.RawMessage(`"ten"`)}, apperror.CodeInvalidAmount, "Amount must be a valid number"},
		{"zero", WalletAmountRequest{UserID: "u1", Amount: json.RawMessage(`0`)}, apperror.CodeInvalidAmount, "Amount must be greater than 0"},
		{"negative", WalletAmountRequest{UserID: "u1", Amount: json.RawMessage(`-5`)}, apperror.CodeInvalidAmount, "Amount must be greater than 0"},
		{"rounds to zero", WalletAmountRequest{UserID: "u1", Amount: json.RawMessage(`0.004`)}, apperror.CodeInvalidAmount, "Amount must be greater than 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.req.ToTopUpCommand()
			assertValidationError(t, err, tt.code, tt.message)
			_, err = tt.req.ToWithdrawCommand()
			assertValidationError(t, err, tt.code, tt.message)
		})
	}

	req := WalletAmountRequest{UserID: "u1", Amount: json.RawMessage(`500`)}
	top, err := req.ToTopUpCommand()
	require.NoError(t, err)
	assert.Equal(t, "u1", top.UserID)
	assert.True(t, decimal.NewFromInt(500).Equal(top.Amount))

	wd, err := req.ToWithdrawCommand()
	require.NoError(t, err)
	assert.Equal(t, "u1", wd.UserID)
	assert.True(t, decimal.NewFromInt(500).Equal(wd.Amount))
}

func TestSanitizeStruct(t *testing.T) {
	req := TransferRequest{
		Type:          " P2P ",
		RecipientName: "  Bob\t",
		FromUserID:    strPtr("  user-a "),
		ToUserID:      strPtr("   "),
		Description:   strPtr(""),
	}
	SanitizeStruct(&req)

	assert.Equal(t, "P2P", req.Type)
	assert.Equal(t, "Bob", req.RecipientName)
	assert.Equal(t, "user-a", *req.FromUserID)
	assert.Nil(t, req.ToUserID)
	assert.Nil(t, req.Description)

	// Non-pointer input is ignored.
	SanitizeStruct(req)
}

func TestResponses(t *testing.T) {
	created := time.Date(2024, 5, 1, 10, 30, 0, 123000000, time.UTC)
	w := &domain.Wallet{
		WalletID:  1,
		UserID:    "u1",
		Balance:   decimal.NewFromInt(60),
		Currency:  "INR",
		CreatedAt: created,
		UpdatedAt: created,
	}
	resp := NewWalletResponse(w)
	assert.Equal(t, "60.00", resp.Balance)
	assert.Equal(t, "2024-05-01T10:30:00.123Z", resp.CreatedAt)

	txns := []domain.Transaction{
		{TransactionID: 2, TxnRef: "BANK1", Type: domain.TransactionTypeWithdraw, Amount: decimal.NewFromInt(-50), CreatedAt: created},
	}
	list := NewTransactionListResponse(txns)
	require.Len(t, list, 1)
	assert.Equal(t, "-50.00", list[0].Amount)
	assert.Equal(t, "WITHDRAW", list[0].Type)

	assert.NotNil(t, NewTransactionListResponse(nil))
	assert.NotNil(t, NewMerchantListResponse(nil))

	m := NewMerchantResponse(&domain.Merchant{MerchantID: 3, Name: "Cafe", Rating: decimal.RequireFromString("4.5")})
	assert.Equal(t, "4.50", m.Rating)

	b, err := json.Marshal(NewTransactionResponse(&txns[0]))
	require.NoError(t, err)
	assert.Contains(t, string(b), `"fromUserId":null`)
}
