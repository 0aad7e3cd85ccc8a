package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType categorizes a shared account by the group that pools into it.
type AccountType string

const (
	AccountTypeFamily   AccountType = "family"
	AccountTypeFriends  AccountType = "friends"
	AccountTypeBusiness AccountType = "business"
)

// AccountStatus is the lifecycle state of a shared account. Accounts are never
// hard-deleted while loans or transactions reference them.
type AccountStatus string

const (
	AccountActive    AccountStatus = "active"
	AccountInactive  AccountStatus = "inactive"
	AccountSuspended AccountStatus = "suspended"
)

// SharedAccount represents a pooled savings balance owned collectively by its members.
// Balance is derived exclusively from completed transactions; only the transaction
// recorder's storage unit may write it, and it never goes negative.
type SharedAccount struct {
	AccountID       string           `json:"accountID"` // Primary Key (UUID)
	Name            string           `json:"name"`
	Description     string           `json:"description"`
	AccountType     AccountType      `json:"accountType"`
	Status          AccountStatus    `json:"status"`
	Balance         decimal.Decimal  `json:"balance"`                // Non-negative, 2 fractional digits
	TargetAmount    *decimal.Decimal `json:"targetAmount,omitempty"` // Optional savings goal
	CreatedBy       string           `json:"createdBy"`              // UserID of the owner
	AllowLoans      bool             `json:"allowLoans"`
	MaxLoanAmount   *decimal.Decimal `json:"maxLoanAmount,omitempty"` // Optional per-loan cap
	MinContribution decimal.Decimal  `json:"minContribution"`
	AuditFields
}

// IsActive reports whether the account accepts balance-affecting operations.
func (a *SharedAccount) IsActive() bool {
	return a.Status == AccountActive
}

// CanBorrow checks whether the account can provide a loan of the given amount
// against the supplied available balance (balance minus active loan principal).
// The authoritative evaluation happens under the account row lock at disbursement.
func (a *SharedAccount) CanBorrow(amount decimal.Decimal, availableBalance decimal.Decimal) bool {
	if !a.AllowLoans {
		return false
	}
	if availableBalance.LessThan(amount) {
		return false
	}
	if a.MaxLoanAmount != nil && amount.GreaterThan(*a.MaxLoanAmount) {
		return false
	}
	return true
}
