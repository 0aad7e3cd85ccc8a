package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/sharedsaver/shared_saver_app/internal/core/domain"
)

// AccountReader defines read operations for shared account data
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.SharedAccount, error)

	// ListAccountsByUserID retrieves the accounts a user is a member of.
	ListAccountsByUserID(ctx context.Context, userID string) ([]domain.SharedAccount, error)
}

// AccountWriter defines write operations for shared account data.
// None of these touch the balance column; only the ledger units in
// AccountTransactionSupport may move it.
type AccountWriter interface {
	// SaveAccount persists a new account.
	SaveAccount(ctx context.Context, account domain.SharedAccount) error

	// UpdateAccount updates an existing account's details and settings.
	UpdateAccount(ctx context.Context, account domain.SharedAccount) error

	// UpdateAccountStatus moves an account between active/inactive/suspended.
	UpdateAccountStatus(ctx context.Context, accountID string, status domain.AccountStatus, userID string, now time.Time) error
}

// AccountTransactionSupport defines operations used inside the atomic ledger unit.
type AccountTransactionSupport interface {
	// FindAccountByIDForUpdate selects the account row and locks it within a transaction.
	FindAccountByIDForUpdate(ctx context.Context, tx pgx.Tx, accountID string) (*domain.SharedAccount, error)

	// ApplyBalanceDeltaInTx applies a signed delta to the locked account's balance,
	// returning the before/after snapshots. Fails with ErrInsufficientCapacity if
	// the result would go negative.
	ApplyBalanceDeltaInTx(ctx context.Context, tx pgx.Tx, accountID string, delta decimal.Decimal, userID string, now time.Time) (before decimal.Decimal, after decimal.Decimal, err error)
}

// MembershipReader defines read operations for account memberships
type MembershipReader interface {
	// FindMembership retrieves the membership for the (account, user) pair.
	FindMembership(ctx context.Context, accountID string, userID string) (*domain.AccountMembership, error)

	// ListMembershipsByAccount retrieves all memberships of an account.
	ListMembershipsByAccount(ctx context.Context, accountID string) ([]domain.AccountMembership, error)
}

// MembershipWriter defines write operations for account memberships
type MembershipWriter interface {
	// SaveMembership persists a membership, rederiving permissions from the role.
	// A duplicate (account, user) pair surfaces as ErrDuplicate.
	SaveMembership(ctx context.Context, membership domain.AccountMembership) error

	// UpdateMembershipRole changes the role (and thus derived permissions).
	UpdateMembershipRole(ctx context.Context, membership domain.AccountMembership) error

	// DeleteMembership removes the membership; returns whether a removal occurred.
	DeleteMembership(ctx context.Context, accountID string, userID string) (bool, error)
}

// AccountRepositoryFacade combines all account-related repository interfaces
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	AccountTransactionSupport
	MembershipReader
	MembershipWriter
}
