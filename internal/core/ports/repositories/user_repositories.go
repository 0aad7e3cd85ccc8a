package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sharedsaver/shared_saver_app/internal/core/domain"
)

// UserReader defines read operations for user data
type UserReader interface {
	// FindUserByID retrieves a user by their unique identifier.
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)

	// FindUserByUsername retrieves a user by username.
	FindUserByUsername(ctx context.Context, username string) (*domain.User, error)

	// FindUserByUsernameWithHash retrieves a user together with their
	// credential hash, for authentication only.
	FindUserByUsernameWithHash(ctx context.Context, username string) (*domain.User, string, error)

	// TotalSavingsByUser sums the balances of accounts the user is a member of.
	TotalSavingsByUser(ctx context.Context, userID string) (decimal.Decimal, error)

	// TotalActiveLoanByUser sums the principal of the user's active loans.
	TotalActiveLoanByUser(ctx context.Context, userID string) (decimal.Decimal, error)
}

// UserWriter defines write operations for user data
type UserWriter interface {
	// SaveUser persists a new user with their credential hash.
	SaveUser(ctx context.Context, user domain.User, passwordHash string) error

	// UpdateUser updates profile fields.
	UpdateUser(ctx context.Context, user domain.User) error

	// DeleteUser soft-deletes a user.
	DeleteUser(ctx context.Context, userID string, deletedBy string, now time.Time) error
}

// UserRepositoryFacade combines all user-related repository interfaces
type UserRepositoryFacade interface {
	UserReader
	UserWriter
}
