package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType categorizes a ledger entry and fixes its sign convention.
type TransactionType string

const (
	TxnContribution     TransactionType = "contribution"
	TxnWithdrawal       TransactionType = "withdrawal"
	TxnLoanDisbursement TransactionType = "loan_disbursement"
	TxnLoanRepayment    TransactionType = "loan_repayment"
	TxnTransfer         TransactionType = "transfer"
	TxnFee              TransactionType = "fee"
	TxnRefund           TransactionType = "refund"
)

// IsValid reports whether the transaction type is one of the known kinds.
func (t TransactionType) IsValid() bool {
	switch t {
	case TxnContribution, TxnWithdrawal, TxnLoanDisbursement, TxnLoanRepayment, TxnTransfer, TxnFee, TxnRefund:
		return true
	}
	return false
}

// IsCredit reports whether the type increases the account balance.
// Credits: contribution, loan_repayment, refund.
// Debits: withdrawal, loan_disbursement, fee, transfer.
func (t TransactionType) IsCredit() bool {
	switch t {
	case TxnContribution, TxnLoanRepayment, TxnRefund:
		return true
	}
	return false
}

// SignedAmount applies the type's sign convention to a positive amount.
func (t TransactionType) SignedAmount(amount decimal.Decimal) decimal.Decimal {
	if t.IsCredit() {
		return amount
	}
	return amount.Neg()
}

// TransactionStatus is the processing state of a ledger entry. The balance
// effect is applied exactly once, when the entry transitions into completed.
type TransactionStatus string

const (
	TxnPending   TransactionStatus = "pending"
	TxnCompleted TransactionStatus = "completed"
	TxnFailed    TransactionStatus = "failed"
	TxnCancelled TransactionStatus = "cancelled"
)

// Transaction is an immutable record of one balance-affecting event on a
// shared account, with before/after balance snapshots captured at completion.
type Transaction struct {
	TransactionID   string            `json:"transactionID"` // Primary Key (UUID)
	AccountID       string            `json:"accountID"`
	TransactionType TransactionType   `json:"transactionType"`
	Amount          decimal.Decimal   `json:"amount"` // > 0; sign comes from the type
	Description     string            `json:"description"`
	Status          TransactionStatus `json:"status"`

	InitiatedBy string  `json:"initiatedBy"`
	RecipientID *string `json:"recipientID,omitempty"`
	RelatedLoan *string `json:"relatedLoan,omitempty"` // LoanID back-link

	BalanceBefore decimal.Decimal `json:"balanceBefore"`
	BalanceAfter  decimal.Decimal `json:"balanceAfter"`

	ReferenceNumber string     `json:"referenceNumber"` // TXN-XXXXXXXX, unique
	Notes           string     `json:"notes"`
	ProcessedAt     *time.Time `json:"processedAt,omitempty"`
	AuditFields
}
