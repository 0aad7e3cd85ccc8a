package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction mirrors the transactions table. reference_number is unique;
// rows are never updated once status reaches completed.
type Transaction struct {
	TransactionID   string          `json:"transactionID"`
	AccountID       string          `json:"accountID"`
	TransactionType string          `json:"transactionType"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	Status          string          `json:"status"`
	InitiatedBy     string          `json:"initiatedBy"`
	RecipientID     *string         `json:"recipientID"`
	RelatedLoanID   *string         `json:"relatedLoanID"`
	BalanceBefore   decimal.Decimal `json:"balanceBefore"`
	BalanceAfter    decimal.Decimal `json:"balanceAfter"`
	ReferenceNumber string          `json:"referenceNumber"`
	Notes           string          `json:"notes"`
	ProcessedAt     *time.Time      `json:"processedAt"`
	AuditFields
}
