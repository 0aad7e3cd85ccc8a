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
)

// defaultMinContribution applies when account creation omits the threshold.
var defaultMinContribution = decimal.NewFromInt(10)

type accountService struct {
	accountRepo portsrepo.AccountRepositoryFacade
	loanRepo    portsrepo.LoanReader
	txnRepo     portsrepo.TransactionReader
}

// NewAccountService creates the account service.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade, loanRepo portsrepo.LoanReader, txnRepo portsrepo.TransactionReader) portssvc.AccountSvcFacade {
	return &accountService{
		accountRepo: accountRepo,
		loanRepo:    loanRepo,
		txnRepo:     txnRepo,
	}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// requireMembership loads the requesting user's membership, translating a
// missing row into ErrForbidden.
func (s *accountService) requireMembership(ctx context.Context, accountID string, userID string) (*domain.AccountMembership, error) {
	membership, err := s.accountRepo.FindMembership(ctx, accountID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: user %s is not a member of account %s", apperrors.ErrForbidden, userID, accountID)
		}
		return nil, err
	}
	return membership, nil
}

func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorUserID string) (*domain.SharedAccount, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now()
	allowLoans := true
	if req.AllowLoans != nil {
		allowLoans = *req.AllowLoans
	}
	minContribution := defaultMinContribution
	if req.MinContribution != nil {
		if req.MinContribution.IsNegative() {
			return nil, fmt.Errorf("%w: minimum contribution cannot be negative", apperrors.ErrValidation)
		}
		minContribution = *req.MinContribution
	}
	if req.TargetAmount != nil && !req.TargetAmount.IsPositive() {
		return nil, fmt.Errorf("%w: target amount must be positive", apperrors.ErrValidation)
	}
	if req.MaxLoanAmount != nil && !req.MaxLoanAmount.IsPositive() {
		return nil, fmt.Errorf("%w: max loan amount must be positive", apperrors.ErrValidation)
	}

	account := domain.SharedAccount{
		AccountID:       uuid.NewString(),
		Name:            req.Name,
		Description:     req.Description,
		AccountType:     req.AccountType,
		Status:          domain.AccountActive,
		Balance:         decimal.Zero,
		TargetAmount:    req.TargetAmount,
		CreatedBy:       creatorUserID,
		AllowLoans:      allowLoans,
		MaxLoanAmount:   req.MaxLoanAmount,
		MinContribution: minContribution,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		logger.Error("Failed to save account in repository", slog.String("error", err.Error()), slog.String("account_id", account.AccountID))
		return nil, err
	}

	// The creator becomes the owning member.
	ownerMembership := domain.AccountMembership{
		AccountID: account.AccountID,
		UserID:    creatorUserID,
		JoinedAt:  now,
		UpdatedAt: now,
	}
	ownerMembership.SetRole(domain.RoleOwner)
	if err := s.accountRepo.SaveMembership(ctx, ownerMembership); err != nil {
		logger.Error("Failed to save owner membership", slog.String("error", err.Error()), slog.String("account_id", account.AccountID))
		return nil, err
	}

	logger.Info("Account created successfully", slog.String("account_id", account.AccountID))
	return &account, nil
}

func (s *accountService) GetAccountByID(ctx context.Context, accountID string, userID string) (*domain.SharedAccount, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.requireMembership(ctx, accountID, userID); err != nil {
		return nil, err
	}

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find account by ID in repository", slog.String("error", err.Error()), slog.String("account_id", accountID))
		}
		return nil, err
	}
	return account, nil
}

func (s *accountService) ListAccountsForUser(ctx context.Context, userID string) ([]domain.SharedAccount, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	accounts, err := s.accountRepo.ListAccountsByUserID(ctx, userID)
	if err != nil {
		logger.Error("Failed to list accounts for user", slog.String("error", err.Error()), slog.String("user_id", userID))
		return nil, err
	}
	if accounts == nil {
		return []domain.SharedAccount{}, nil
	}
	return accounts, nil
}

func (s *accountService) ListMembers(ctx context.Context, accountID string, userID string) ([]domain.AccountMembership, error) {
	if _, err := s.requireMembership(ctx, accountID, userID); err != nil {
		return nil, err
	}
	return s.accountRepo.ListMembershipsByAccount(ctx, accountID)
}

func (s *accountService) UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.SharedAccount, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	membership, err := s.requireMembership(ctx, accountID, userID)
	if err != nil {
		return nil, err
	}
	if !membership.Permissions.CanManage {
		return nil, fmt.Errorf("%w: user %s cannot manage account %s", apperrors.ErrForbidden, userID, accountID)
	}

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		account.Name = *req.Name
	}
	if req.Description != nil {
		account.Description = *req.Description
	}
	if req.TargetAmount != nil {
		if !req.TargetAmount.IsPositive() {
			return nil, fmt.Errorf("%w: target amount must be positive", apperrors.ErrValidation)
		}
		account.TargetAmount = req.TargetAmount
	}
	if req.AllowLoans != nil {
		account.AllowLoans = *req.AllowLoans
	}
	if req.MaxLoanAmount != nil {
		if !req.MaxLoanAmount.IsPositive() {
			return nil, fmt.Errorf("%w: max loan amount must be positive", apperrors.ErrValidation)
		}
		account.MaxLoanAmount = req.MaxLoanAmount
	}
	if req.MinContribution != nil {
		if req.MinContribution.IsNegative() {
			return nil, fmt.Errorf("%w: minimum contribution cannot be negative", apperrors.ErrValidation)
		}
		account.MinContribution = *req.MinContribution
	}
	account.LastUpdatedAt = time.Now()
	account.LastUpdatedBy = userID

	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		logger.Error("Failed to update account", slog.String("error", err.Error()), slog.String("account_id", accountID))
		return nil, err
	}

	logger.Info("Account updated", slog.String("account_id", accountID))
	return account, nil
}

func (s *accountService) DeactivateAccount(ctx context.Context, accountID string, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	membership, err := s.requireMembership(ctx, accountID, userID)
	if err != nil {
		return err
	}
	if !membership.Permissions.CanManage {
		return fmt.Errorf("%w: user %s cannot manage account %s", apperrors.ErrForbidden, userID, accountID)
	}

	if err := s.accountRepo.UpdateAccountStatus(ctx, accountID, domain.AccountInactive, userID, time.Now()); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to deactivate account", slog.String("error", err.Error()), slog.String("account_id", accountID))
		}
		return err
	}

	logger.Info("Account deactivated", slog.String("account_id", accountID))
	return nil
}

// AddMember enrolls a user into an account. Adding an existing member is a
// no-op that returns the current membership unchanged.
func (s *accountService) AddMember(ctx context.Context, accountID string, req dto.AddMemberRequest, requestingUserID string) (*domain.AccountMembership, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	requester, err := s.requireMembership(ctx, accountID, requestingUserID)
	if err != nil {
		return nil, err
	}
	if !requester.Permissions.CanInvite {
		return nil, fmt.Errorf("%w: user %s cannot invite members to account %s", apperrors.ErrForbidden, requestingUserID, accountID)
	}

	role := req.Role
	if role == "" {
		role = domain.RoleMember
	}
	if role == domain.RoleOwner {
		return nil, fmt.Errorf("%w: ownership is assigned at account creation", apperrors.ErrValidation)
	}

	existing, err := s.accountRepo.FindMembership(ctx, accountID, req.UserID)
	if err == nil {
		logger.Debug("User already a member, returning existing membership", slog.String("account_id", accountID), slog.String("user_id", req.UserID))
		return existing, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	now := time.Now()
	membership := domain.AccountMembership{
		AccountID: accountID,
		UserID:    req.UserID,
		JoinedAt:  now,
		UpdatedAt: now,
	}
	membership.SetRole(role)

	if err := s.accountRepo.SaveMembership(ctx, membership); err != nil {
		// A concurrent AddMember for the same user can win the insert race;
		// the existing row is the answer either way.
		if errors.Is(err, apperrors.ErrDuplicate) {
			return s.accountRepo.FindMembership(ctx, accountID, req.UserID)
		}
		logger.Error("Failed to save membership", slog.String("error", err.Error()), slog.String("account_id", accountID), slog.String("user_id", req.UserID))
		return nil, err
	}

	logger.Info("Member added", slog.String("account_id", accountID), slog.String("user_id", req.UserID), slog.String("role", string(role)))
	return &membership, nil
}

// RemoveMember removes a user from an account. Members may remove themselves;
// removing anyone else requires manage permission. The owner cannot be removed.
func (s *accountService) RemoveMember(ctx context.Context, accountID string, userID string, requestingUserID string) (bool, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	requester, err := s.requireMembership(ctx, accountID, requestingUserID)
	if err != nil {
		return false, err
	}
	if userID != requestingUserID && !requester.Permissions.CanManage {
		return false, fmt.Errorf("%w: user %s cannot remove members from account %s", apperrors.ErrForbidden, requestingUserID, accountID)
	}

	target, err := s.accountRepo.FindMembership(ctx, accountID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if target.Role == domain.RoleOwner {
		return false, fmt.Errorf("%w: the account owner cannot be removed", apperrors.ErrValidation)
	}

	removed, err := s.accountRepo.DeleteMembership(ctx, accountID, userID)
	if err != nil {
		logger.Error("Failed to delete membership", slog.String("error", err.Error()), slog.String("account_id", accountID), slog.String("user_id", userID))
		return false, err
	}
	if removed {
		logger.Info("Member removed", slog.String("account_id", accountID), slog.String("user_id", userID))
	}
	return removed, nil
}

func (s *accountService) ChangeMemberRole(ctx context.Context, accountID string, userID string, role domain.MembershipRole, requestingUserID string) (*domain.AccountMembership, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	requester, err := s.requireMembership(ctx, accountID, requestingUserID)
	if err != nil {
		return nil, err
	}
	if !requester.Permissions.CanManage {
		return nil, fmt.Errorf("%w: user %s cannot manage account %s", apperrors.ErrForbidden, requestingUserID, accountID)
	}
	if role == domain.RoleOwner {
		return nil, fmt.Errorf("%w: ownership cannot be reassigned", apperrors.ErrValidation)
	}

	membership, err := s.accountRepo.FindMembership(ctx, accountID, userID)
	if err != nil {
		return nil, err
	}
	if membership.Role == domain.RoleOwner {
		return nil, fmt.Errorf("%w: the owner's role cannot be changed", apperrors.ErrValidation)
	}

	membership.SetRole(role)
	membership.UpdatedAt = time.Now()

	if err := s.accountRepo.UpdateMembershipRole(ctx, *membership); err != nil {
		logger.Error("Failed to update membership role", slog.String("error", err.Error()), slog.String("account_id", accountID), slog.String("user_id", userID))
		return nil, err
	}

	logger.Info("Member role changed", slog.String("account_id", accountID), slog.String("user_id", userID), slog.String("role", string(role)))
	return membership, nil
}

// AvailableBalance returns the balance minus the principal of loans currently
// drawing on it. Lock-free; the authoritative figure is computed under the
// account row lock at disbursement time.
func (s *accountService) AvailableBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	activeSum, err := s.loanRepo.SumActiveLoanAmountByAccount(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	return account.Balance.Sub(activeSum), nil
}

func (s *accountService) TotalContributions(ctx context.Context, accountID string) (decimal.Decimal, error) {
	return s.txnRepo.SumCompletedByType(ctx, accountID, domain.TxnContribution)
}

func (s *accountService) CanBorrow(ctx context.Context, accountID string, amount decimal.Decimal) (bool, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return false, err
	}
	if !account.IsActive() {
		return false, nil
	}
	available, err := s.AvailableBalance(ctx, accountID)
	if err != nil {
		return false, err
	}
	return account.CanBorrow(amount, available), nil
}
