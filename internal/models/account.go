package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SharedAccount mirrors the shared_accounts table.
type SharedAccount struct {
	AccountID       string           `json:"accountID"`
	Name            string           `json:"name"`
	Description     string           `json:"description"`
	AccountType     string           `json:"accountType"`
	Status          string           `json:"status"`
	Balance         decimal.Decimal  `json:"balance"`
	TargetAmount    *decimal.Decimal `json:"targetAmount"`
	CreatedByUserID string           `json:"createdByUserID"`
	AllowLoans      bool             `json:"allowLoans"`
	MaxLoanAmount   *decimal.Decimal `json:"maxLoanAmount"`
	MinContribution decimal.Decimal  `json:"minContribution"`
	AuditFields
}

// AccountMembership mirrors the account_memberships table.
// Unique on (account_id, user_id).
type AccountMembership struct {
	AccountID     string    `json:"accountID"`
	UserID        string    `json:"userID"`
	Role          string    `json:"role"`
	CanContribute bool      `json:"canContribute"`
	CanBorrow     bool      `json:"canBorrow"`
	CanInvite     bool      `json:"canInvite"`
	CanManage     bool      `json:"canManage"`
	JoinedAt      time.Time `json:"joinedAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
