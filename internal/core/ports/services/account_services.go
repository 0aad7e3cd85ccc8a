package services

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/sharedsaver/shared_saver_app/internal/core/domain"
	"github.com/sharedsaver/shared_saver_app/internal/dto"
)

// AccountReaderSvc defines read operations for shared account data
type AccountReaderSvc interface {
	// GetAccountByID retrieves a specific account by its unique identifier.
	GetAccountByID(ctx context.Context, accountID string, userID string) (*domain.SharedAccount, error)

	// ListAccountsForUser retrieves all accounts the user is a member of.
	ListAccountsForUser(ctx context.Context, userID string) ([]domain.SharedAccount, error)

	// ListMembers retrieves the memberships of an account.
	ListMembers(ctx context.Context, accountID string, userID string) ([]domain.AccountMembership, error)
}

// AccountWriterSvc defines write operations for shared account data
type AccountWriterSvc interface {
	// CreateAccount persists a new account and enrolls the creator as owner.
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorUserID string) (*domain.SharedAccount, error)

	// UpdateAccount updates an existing account's details and loan settings.
	UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.SharedAccount, error)

	// DeactivateAccount marks an account as inactive.
	DeactivateAccount(ctx context.Context, accountID string, userID string) error
}

// MembershipSvc defines operations on account membership
type MembershipSvc interface {
	// AddMember enrolls a user into an account with the given role.
	// Adding an existing member is a no-op returning the current membership.
	AddMember(ctx context.Context, accountID string, req dto.AddMemberRequest, requestingUserID string) (*domain.AccountMembership, error)

	// RemoveMember removes a user from an account. Returns false when the
	// user was not a member.
	RemoveMember(ctx context.Context, accountID string, userID string, requestingUserID string) (bool, error)

	// ChangeMemberRole updates a member's role and rederives permissions.
	ChangeMemberRole(ctx context.Context, accountID string, userID string, role domain.MembershipRole, requestingUserID string) (*domain.AccountMembership, error)
}

// AccountCalculatorSvc defines calculation operations for account data
type AccountCalculatorSvc interface {
	// AvailableBalance returns balance minus the sum of active loan principal.
	AvailableBalance(ctx context.Context, accountID string) (decimal.Decimal, error)

	// TotalContributions sums completed contribution transactions.
	TotalContributions(ctx context.Context, accountID string) (decimal.Decimal, error)

	// CanBorrow reports whether the account can fund a loan of the given amount.
	CanBorrow(ctx context.Context, accountID string, amount decimal.Decimal) (bool, error)
}

// AccountSvcFacade combines all account-related service interfaces
// This is a facade for clients that need access to all operations
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
	MembershipSvc
	AccountCalculatorSvc
}
