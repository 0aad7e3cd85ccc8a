package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/sharedsaver/shared_saver_app/internal/apperrors"
	"github.com/sharedsaver/shared_saver_app/internal/core/domain"
	portssvc "github.com/sharedsaver/shared_saver_app/internal/core/ports/services"
	"github.com/sharedsaver/shared_saver_app/internal/core/services"
	"github.com/sharedsaver/shared_saver_app/internal/dto"
)

type AccountServiceTestSuite struct {
	suite.Suite
	mockAccountRepo *MockAccountRepository
	mockLoanRepo    *MockLoanRepository
	mockTxnRepo     *MockTransactionRepository
	service         portssvc.AccountSvcFacade

	accountID string
	ownerID   string
	memberID  string
}

func (suite *AccountServiceTestSuite) SetupTest() {
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockLoanRepo = new(MockLoanRepository)
	suite.mockTxnRepo = new(MockTransactionRepository)
	suite.service = services.NewAccountService(suite.mockAccountRepo, suite.mockLoanRepo, suite.mockTxnRepo)

	suite.accountID = uuid.NewString()
	suite.ownerID = uuid.NewString()
	suite.memberID = uuid.NewString()
}

func (suite *AccountServiceTestSuite) TestCreateAccount_EnrollsCreatorAsOwner() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{
		Name:        "Family Pool",
		AccountType: domain.AccountTypeFamily,
	}

	var savedAccount domain.SharedAccount
	suite.mockAccountRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.SharedAccount")).
		Run(func(args mock.Arguments) { savedAccount = args.Get(1).(domain.SharedAccount) }).
		Return(nil).Once()

	var savedMembership domain.AccountMembership
	suite.mockAccountRepo.On("SaveMembership", ctx, mock.AnythingOfType("domain.AccountMembership")).
		Run(func(args mock.Arguments) { savedMembership = args.Get(1).(domain.AccountMembership) }).
		Return(nil).Once()

	account, err := suite.service.CreateAccount(ctx, req, suite.ownerID)

	suite.Require().NoError(err)
	suite.Equal(domain.AccountActive, account.Status)
	suite.True(account.Balance.IsZero())
	suite.True(account.AllowLoans, "loans default to enabled")
	suite.True(account.MinContribution.Equal(decimal.NewFromInt(10)), "minimum contribution defaults to 10")
	suite.Equal(account.AccountID, savedAccount.AccountID)

	suite.Equal(suite.ownerID, savedMembership.UserID)
	suite.Equal(domain.RoleOwner, savedMembership.Role)
	suite.True(savedMembership.Permissions.CanManage)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestCreateAccount_NegativeMinContributionRejected() {
	ctx := context.Background()
	neg := decimal.NewFromFloat(-1.00)
	req := dto.CreateAccountRequest{
		Name:            "Bad",
		AccountType:     domain.AccountTypeFriends,
		MinContribution: &neg,
	}

	_, err := suite.service.CreateAccount(ctx, req, suite.ownerID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "SaveAccount", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestAddMember_NewMemberDefaultsToMemberRole() {
	ctx := context.Background()
	newUserID := uuid.NewString()

	suite.mockAccountRepo.On("FindMembership", ctx, suite.accountID, suite.ownerID).
		Return(membershipWithRole(suite.accountID, suite.ownerID, domain.RoleOwner), nil).Once()
	suite.mockAccountRepo.On("FindMembership", ctx, suite.accountID, newUserID).
		Return(nil, apperrors.ErrNotFound).Once()

	var saved domain.AccountMembership
	suite.mockAccountRepo.On("SaveMembership", ctx, mock.AnythingOfType("domain.AccountMembership")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(domain.AccountMembership) }).
		Return(nil).Once()

	membership, err := suite.service.AddMember(ctx, suite.accountID, dto.AddMemberRequest{UserID: newUserID}, suite.ownerID)

	suite.Require().NoError(err)
	suite.Equal(domain.RoleMember, membership.Role)
	suite.True(membership.Permissions.CanContribute)
	suite.False(membership.Permissions.CanManage)
	suite.Equal(domain.RoleMember, saved.Role)
}

func (suite *AccountServiceTestSuite) TestAddMember_ExistingMemberIsNoOp() {
	ctx := context.Background()
	existing := membershipWithRole(suite.accountID, suite.memberID, domain.RoleViewer)

	suite.mockAccountRepo.On("FindMembership", ctx, suite.accountID, suite.ownerID).
		Return(membershipWithRole(suite.accountID, suite.ownerID, domain.RoleOwner), nil).Once()
	suite.mockAccountRepo.On("FindMembership", ctx, suite.accountID, suite.memberID).
		Return(existing, nil).Once()

	membership, err := suite.service.AddMember(ctx, suite.accountID, dto.AddMemberRequest{UserID: suite.memberID, Role: domain.RoleAdmin}, suite.ownerID)

	suite.Require().NoError(err)
	suite.Equal(existing, membership, "existing membership is returned unchanged")
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "SaveMembership", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestAddMember_OwnerRoleRejected() {
	ctx := context.Background()

	suite.mockAccountRepo.On("FindMembership", ctx, suite.accountID, suite.ownerID).
		Return(membershipWithRole(suite.accountID, suite.ownerID, domain.RoleOwner), nil).Once()

	_, err := suite.service.AddMember(ctx, suite.accountID, dto.AddMemberRequest{UserID: uuid.NewString(), Role: domain.RoleOwner}, suite.ownerID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *AccountServiceTestSuite) TestAddMember_LosingInsertRaceReturnsExistingRow() {
	ctx := context.Background()
	newUserID := uuid.NewString()
	winner := membershipWithRole(suite.accountID, newUserID, domain.RoleMember)

	suite.mockAccountRepo.On("FindMembership", ctx, suite.accountID, suite.ownerID).
		Return(membershipWithRole(suite.accountID, suite.ownerID, domain.RoleOwner), nil).Once()
	suite.mockAccountRepo.On("FindMembership", ctx, suite.accountID, newUserID).
		Return(nil, apperrors.ErrNotFound).Once()
	suite.mockAccountRepo.On("SaveMembership", ctx, mock.AnythingOfType("domain.AccountMembership")).
		Return(apperrors.ErrDuplicate).Once()
	suite.mockAccountRepo.On("FindMembership", ctx, suite.accountID, newUserID).
		Return(winner, nil).Once()

	membership, err := suite.service.AddMember(ctx, suite.accountID, dto.AddMemberRequest{UserID: newUserID}, suite.ownerID)

	suite.Require().NoError(err)
	suite.Equal(winner, membership)
}

func (suite *AccountServiceTestSuite) TestRemoveMember_SelfRemoval() {
	ctx := context.Background()
	member := membershipWithRole(suite.accountID, suite.memberID, domain.RoleMember)

	suite.mockAccountRepo.On("FindMembership", ctx, suite.accountID, suite.memberID).
		Return(member, nil).Twice() // as requester and as target
	suite.mockAccountRepo.On("DeleteMembership", ctx, suite.accountID, suite.memberID).
		Return(true, nil).Once()

	removed, err := suite.service.RemoveMember(ctx, suite.accountID, suite.memberID, suite.memberID)

	suite.Require().NoError(err)
	suite.True(removed)
}

func (suite *AccountServiceTestSuite) TestRemoveMember_NotAMemberReturnsFalse() {
	ctx := context.Background()
	ghostID := uuid.NewString()

	suite.mockAccountRepo.On("FindMembership", ctx, suite.accountID, suite.ownerID).
		Return(membershipWithRole(suite.accountID, suite.ownerID, domain.RoleOwner), nil).Once()
	suite.mockAccountRepo.On("FindMembership", ctx, suite.accountID, ghostID).
		Return(nil, apperrors.ErrNotFound).Once()

	removed, err := suite.service.RemoveMember(ctx, suite.accountID, ghostID, suite.ownerID)

	suite.Require().NoError(err)
	suite.False(removed)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "DeleteMembership", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestRemoveMember_OwnerCannotBeRemoved() {
	ctx := context.Background()
	adminID := uuid.NewString()

	suite.mockAccountRepo.On("FindMembership", ctx, suite.accountID, adminID).
		Return(membershipWithRole(suite.accountID, adminID, domain.RoleAdmin), nil).Once()
	suite.mockAccountRepo.On("FindMembership", ctx, suite.accountID, suite.ownerID).
		Return(membershipWithRole(suite.accountID, suite.ownerID, domain.RoleOwner), nil).Once()

	_, err := suite.service.RemoveMember(ctx, suite.accountID, suite.ownerID, adminID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *AccountServiceTestSuite) TestRemoveMember_MemberCannotRemoveOthers() {
	ctx := context.Background()
	otherID := uuid.NewString()

	suite.mockAccountRepo.On("FindMembership", ctx, suite.accountID, suite.memberID).
		Return(membershipWithRole(suite.accountID, suite.memberID, domain.RoleMember), nil).Once()

	_, err := suite.service.RemoveMember(ctx, suite.accountID, otherID, suite.memberID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *AccountServiceTestSuite) TestChangeMemberRole_RederivesPermissions() {
	ctx := context.Background()

	suite.mockAccountRepo.On("FindMembership", ctx, suite.accountID, suite.ownerID).
		Return(membershipWithRole(suite.accountID, suite.ownerID, domain.RoleOwner), nil).Once()
	suite.mockAccountRepo.On("FindMembership", ctx, suite.accountID, suite.memberID).
		Return(membershipWithRole(suite.accountID, suite.memberID, domain.RoleMember), nil).Once()

	var updated domain.AccountMembership
	suite.mockAccountRepo.On("UpdateMembershipRole", ctx, mock.AnythingOfType("domain.AccountMembership")).
		Run(func(args mock.Arguments) { updated = args.Get(1).(domain.AccountMembership) }).
		Return(nil).Once()

	membership, err := suite.service.ChangeMemberRole(ctx, suite.accountID, suite.memberID, domain.RoleAdmin, suite.ownerID)

	suite.Require().NoError(err)
	suite.Equal(domain.RoleAdmin, membership.Role)
	suite.True(membership.Permissions.CanManage)
	suite.True(updated.Permissions.CanInvite)
}

func (suite *AccountServiceTestSuite) TestChangeMemberRole_OwnerRoleImmutable() {
	ctx := context.Background()
	adminID := uuid.NewString()

	suite.mockAccountRepo.On("FindMembership", ctx, suite.accountID, adminID).
		Return(membershipWithRole(suite.accountID, adminID, domain.RoleAdmin), nil).Once()
	suite.mockAccountRepo.On("FindMembership", ctx, suite.accountID, suite.ownerID).
		Return(membershipWithRole(suite.accountID, suite.ownerID, domain.RoleOwner), nil).Once()

	_, err := suite.service.ChangeMemberRole(ctx, suite.accountID, suite.ownerID, domain.RoleViewer, adminID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "UpdateMembershipRole", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestAvailableBalance_SubtractsActiveLoanPrincipal() {
	ctx := context.Background()
	account := &domain.SharedAccount{
		AccountID: suite.accountID,
		Status:    domain.AccountActive,
		Balance:   decimal.NewFromFloat(1000.00),
	}

	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.accountID).Return(account, nil).Once()
	suite.mockLoanRepo.On("SumActiveLoanAmountByAccount", ctx, suite.accountID).
		Return(decimal.NewFromFloat(400.00), nil).Once()

	available, err := suite.service.AvailableBalance(ctx, suite.accountID)

	suite.Require().NoError(err)
	suite.True(available.Equal(decimal.NewFromFloat(600.00)))
}

func (suite *AccountServiceTestSuite) TestCanBorrow_InactiveAccount() {
	ctx := context.Background()
	account := &domain.SharedAccount{
		AccountID:  suite.accountID,
		Status:     domain.AccountInactive,
		Balance:    decimal.NewFromFloat(1000.00),
		AllowLoans: true,
	}

	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.accountID).Return(account, nil).Once()

	ok, err := suite.service.CanBorrow(ctx, suite.accountID, decimal.NewFromFloat(100.00))

	suite.Require().NoError(err)
	suite.False(ok)
}

func (suite *AccountServiceTestSuite) TestGetAccountByID_NonMemberForbidden() {
	ctx := context.Background()
	outsiderID := uuid.NewString()

	suite.mockAccountRepo.On("FindMembership", ctx, suite.accountID, outsiderID).
		Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.GetAccountByID(ctx, suite.accountID, outsiderID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func TestAccountServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}
