package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/sharedsaver/shared_saver_app/internal/core/domain"
)

// RecordTransactionRequest defines the payload for recording a ledger entry.
// A pending entry reserves its place in the ledger without touching the
// balance; the effect applies when the entry is completed.
type RecordTransactionRequest struct {
	AccountID       string                 `json:"accountID" binding:"required"`
	TransactionType domain.TransactionType `json:"transactionType" binding:"required"`
	Amount          decimal.Decimal        `json:"amount" binding:"required"`
	Description     string                 `json:"description"`
	RecipientID     *string                `json:"recipientID,omitempty"`
	Notes           string                 `json:"notes"`
	Pending         bool                   `json:"pending"`
}

// ContributionRequest defines the payload for a member contribution.
type ContributionRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Description string          `json:"description"`
}

// WithdrawalRequest defines the payload for a member withdrawal.
type WithdrawalRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Description string          `json:"description"`
}

// ListTransactionsParams holds pagination parameters for listing transactions.
type ListTransactionsParams struct {
	Limit     int     `form:"limit"`
	NextToken *string `form:"nextToken"`
}

// TransactionResponse is the API representation of a ledger entry.
type TransactionResponse struct {
	TransactionID   string          `json:"transactionID"`
	AccountID       string          `json:"accountID"`
	TransactionType string          `json:"transactionType"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	Status          string          `json:"status"`
	InitiatedBy     string          `json:"initiatedBy"`
	RecipientID     *string         `json:"recipientID,omitempty"`
	RelatedLoan     *string         `json:"relatedLoan,omitempty"`
	BalanceBefore   decimal.Decimal `json:"balanceBefore"`
	BalanceAfter    decimal.Decimal `json:"balanceAfter"`
	ReferenceNumber string          `json:"referenceNumber"`
	ProcessedAt     *time.Time      `json:"processedAt,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// ListTransactionsResponse is a page of transactions with a continuation token.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}

// ToTransactionResponse converts a domain Transaction to its API representation.
func ToTransactionResponse(t *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:   t.TransactionID,
		AccountID:       t.AccountID,
		TransactionType: string(t.TransactionType),
		Amount:          t.Amount,
		Description:     t.Description,
		Status:          string(t.Status),
		InitiatedBy:     t.InitiatedBy,
		RecipientID:     t.RecipientID,
		RelatedLoan:     t.RelatedLoan,
		BalanceBefore:   t.BalanceBefore,
		BalanceAfter:    t.BalanceAfter,
		ReferenceNumber: t.ReferenceNumber,
		ProcessedAt:     t.ProcessedAt,
		CreatedAt:       t.CreatedAt,
	}
}

// ToTransactionResponses converts a slice of transactions.
func ToTransactionResponses(ts []domain.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, len(ts))
	for i := range ts {
		out[i] = ToTransactionResponse(&ts[i])
	}
	return out
}
