package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/sharedsaver/shared_saver_app/internal/core/domain"
)

// CreateAccountRequest defines the payload for creating a shared account.
type CreateAccountRequest struct {
	Name            string             `json:"name" binding:"required,max=100"`
	Description     string             `json:"description"`
	AccountType     domain.AccountType `json:"accountType" binding:"required,oneof=family friends business"`
	TargetAmount    *decimal.Decimal   `json:"targetAmount,omitempty"`
	AllowLoans      *bool              `json:"allowLoans,omitempty"` // Defaults to true
	MaxLoanAmount   *decimal.Decimal   `json:"maxLoanAmount,omitempty"`
	MinContribution *decimal.Decimal   `json:"minContribution,omitempty"` // Defaults to 10.00
}

// UpdateAccountRequest defines the payload for updating account details/settings.
// Balance is deliberately absent; it only moves through the transaction recorder.
type UpdateAccountRequest struct {
	Name            *string          `json:"name,omitempty"`
	Description     *string          `json:"description,omitempty"`
	TargetAmount    *decimal.Decimal `json:"targetAmount,omitempty"`
	AllowLoans      *bool            `json:"allowLoans,omitempty"`
	MaxLoanAmount   *decimal.Decimal `json:"maxLoanAmount,omitempty"`
	MinContribution *decimal.Decimal `json:"minContribution,omitempty"`
}

// AddMemberRequest defines the payload for adding a member to an account.
type AddMemberRequest struct {
	UserID string                `json:"userID" binding:"required"`
	Role   domain.MembershipRole `json:"role" binding:"omitempty,oneof=owner admin member viewer"`
}

// AccountResponse is the API representation of a shared account.
type AccountResponse struct {
	AccountID       string           `json:"accountID"`
	Name            string           `json:"name"`
	Description     string           `json:"description"`
	AccountType     string           `json:"accountType"`
	Status          string           `json:"status"`
	Balance         decimal.Decimal  `json:"balance"`
	TargetAmount    *decimal.Decimal `json:"targetAmount,omitempty"`
	AllowLoans      bool             `json:"allowLoans"`
	MaxLoanAmount   *decimal.Decimal `json:"maxLoanAmount,omitempty"`
	MinContribution decimal.Decimal  `json:"minContribution"`
	CreatedBy       string           `json:"createdBy"`
	CreatedAt       time.Time        `json:"createdAt"`
}

// MembershipResponse is the API representation of an account membership.
type MembershipResponse struct {
	AccountID     string    `json:"accountID"`
	UserID        string    `json:"userID"`
	Role          string    `json:"role"`
	CanContribute bool      `json:"canContribute"`
	CanBorrow     bool      `json:"canBorrow"`
	CanInvite     bool      `json:"canInvite"`
	CanManage     bool      `json:"canManage"`
	JoinedAt      time.Time `json:"joinedAt"`
}

// AccountBalanceResponse carries the balance projections for an account.
type AccountBalanceResponse struct {
	AccountID          string          `json:"accountID"`
	Balance            decimal.Decimal `json:"balance"`
	AvailableBalance   decimal.Decimal `json:"availableBalance"`
	TotalContributions decimal.Decimal `json:"totalContributions"`
}

// ToAccountResponse converts a domain SharedAccount to its API representation.
func ToAccountResponse(a *domain.SharedAccount) AccountResponse {
	return AccountResponse{
		AccountID:       a.AccountID,
		Name:            a.Name,
		Description:     a.Description,
		AccountType:     string(a.AccountType),
		Status:          string(a.Status),
		Balance:         a.Balance,
		TargetAmount:    a.TargetAmount,
		AllowLoans:      a.AllowLoans,
		MaxLoanAmount:   a.MaxLoanAmount,
		MinContribution: a.MinContribution,
		CreatedBy:       a.CreatedBy,
		CreatedAt:       a.CreatedAt,
	}
}

// ToMembershipResponse converts a domain AccountMembership to its API representation.
func ToMembershipResponse(m *domain.AccountMembership) MembershipResponse {
	return MembershipResponse{
		AccountID:     m.AccountID,
		UserID:        m.UserID,
		Role:          string(m.Role),
		CanContribute: m.Permissions.CanContribute,
		CanBorrow:     m.Permissions.CanBorrow,
		CanInvite:     m.Permissions.CanInvite,
		CanManage:     m.Permissions.CanManage,
		JoinedAt:      m.JoinedAt,
	}
}

// ToMembershipResponses converts a slice of memberships.
func ToMembershipResponses(ms []domain.AccountMembership) []MembershipResponse {
	out := make([]MembershipResponse, len(ms))
	for i := range ms {
		out[i] = ToMembershipResponse(&ms[i])
	}
	return out
}
