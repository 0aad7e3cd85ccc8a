package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sharedsaver/shared_saver_app/internal/apperrors"
	"github.com/sharedsaver/shared_saver_app/internal/core/domain"
	portsrepo "github.com/sharedsaver/shared_saver_app/internal/core/ports/repositories"
	portssvc "github.com/sharedsaver/shared_saver_app/internal/core/ports/services"
	"github.com/sharedsaver/shared_saver_app/internal/dto"
	"github.com/sharedsaver/shared_saver_app/internal/middleware"
	"github.com/sharedsaver/shared_saver_app/internal/utils"
)

type userService struct {
	userRepo portsrepo.UserRepositoryFacade
}

// NewUserService creates the user service.
func NewUserService(userRepo portsrepo.UserRepositoryFacade) portssvc.UserSvcFacade {
	return &userService{userRepo: userRepo}
}

var _ portssvc.UserSvcFacade = (*userService)(nil)

func (s *userService) CreateUser(ctx context.Context, req dto.CreateUserRequest) (*domain.User, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		logger.Error("Failed to hash password", slog.String("error", err.Error()))
		return nil, apperrors.NewAppError(500, "failed to hash password", err)
	}

	now := time.Now()
	user := domain.User{
		UserID:      uuid.NewString(),
		Username:    req.Username,
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		IsVerified:  false,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     "system",
			LastUpdatedAt: now,
			LastUpdatedBy: "system",
		},
	}

	if err := s.userRepo.SaveUser(ctx, user, passwordHash); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			logger.Error("Failed to save user", slog.String("error", err.Error()), slog.String("username", req.Username))
		}
		return nil, err
	}

	logger.Info("User created", slog.String("user_id", user.UserID), slog.String("username", user.Username))
	return &user, nil
}

// AuthenticateUser verifies credentials. A bad username and a bad password
// both surface as ErrForbidden so callers cannot distinguish them.
func (s *userService) AuthenticateUser(ctx context.Context, username string, password string) (*domain.User, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	user, hash, err := s.userRepo.FindUserByUsernameWithHash(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid credentials", apperrors.ErrForbidden)
		}
		logger.Error("Failed to look up user for authentication", slog.String("error", err.Error()))
		return nil, err
	}

	if !utils.CheckPasswordHash(password, hash) {
		logger.Warn("Failed login attempt", slog.String("username", username))
		return nil, fmt.Errorf("%w: invalid credentials", apperrors.ErrForbidden)
	}
	return user, nil
}

func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	return s.userRepo.FindUserByID(ctx, userID)
}

func (s *userService) UpdateUser(ctx context.Context, user domain.User, requestingUserID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if user.UserID != requestingUserID {
		return fmt.Errorf("%w: users may only update their own profile", apperrors.ErrForbidden)
	}

	user.LastUpdatedAt = time.Now()
	user.LastUpdatedBy = requestingUserID

	if err := s.userRepo.UpdateUser(ctx, user); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to update user", slog.String("error", err.Error()), slog.String("user_id", user.UserID))
		}
		return err
	}
	logger.Info("User updated", slog.String("user_id", user.UserID))
	return nil
}

func (s *userService) DeleteUser(ctx context.Context, userID string, requestingUserID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if userID != requestingUserID {
		return fmt.Errorf("%w: users may only delete their own account", apperrors.ErrForbidden)
	}

	if err := s.userRepo.DeleteUser(ctx, userID, requestingUserID, time.Now()); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to delete user", slog.String("error", err.Error()), slog.String("user_id", userID))
		}
		return err
	}
	logger.Info("User deleted", slog.String("user_id", userID))
	return nil
}

// TotalSavings sums the balances of active accounts the user belongs to.
func (s *userService) TotalSavings(ctx context.Context, userID string) (decimal.Decimal, error) {
	return s.userRepo.TotalSavingsByUser(ctx, userID)
}

// TotalLoans sums the principal of the user's active and overdue loans.
func (s *userService) TotalLoans(ctx context.Context, userID string) (decimal.Decimal, error) {
	return s.userRepo.TotalActiveLoanByUser(ctx, userID)
}
