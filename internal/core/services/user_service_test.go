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
	"github.com/sharedsaver/shared_saver_app/internal/utils"
)

type UserServiceTestSuite struct {
	suite.Suite
	mockUserRepo *MockUserRepository
	service      portssvc.UserSvcFacade
}

func (suite *UserServiceTestSuite) SetupTest() {
	suite.mockUserRepo = new(MockUserRepository)
	suite.service = services.NewUserService(suite.mockUserRepo)
}

func (suite *UserServiceTestSuite) TestCreateUser_HashesPassword() {
	ctx := context.Background()
	req := dto.CreateUserRequest{
		Username:  "jdoe",
		Email:     "jdoe@example.com",
		Password:  "s3cret-enough",
		FirstName: "Jane",
		LastName:  "Doe",
	}

	var savedHash string
	suite.mockUserRepo.On("SaveUser", ctx, mock.AnythingOfType("domain.User"), mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { savedHash = args.String(2) }).
		Return(nil).Once()

	user, err := suite.service.CreateUser(ctx, req)

	suite.Require().NoError(err)
	suite.Equal("jdoe", user.Username)
	suite.False(user.IsVerified)
	suite.NotEmpty(user.UserID)

	suite.NotEmpty(savedHash)
	suite.NotEqual(req.Password, savedHash, "the raw password must never reach storage")
	suite.True(utils.CheckPasswordHash(req.Password, savedHash))
}

func (suite *UserServiceTestSuite) TestCreateUser_DuplicateUsername() {
	ctx := context.Background()
	req := dto.CreateUserRequest{Username: "jdoe", Email: "jdoe@example.com", Password: "s3cret-enough"}

	suite.mockUserRepo.On("SaveUser", ctx, mock.AnythingOfType("domain.User"), mock.AnythingOfType("string")).
		Return(apperrors.ErrDuplicate).Once()

	_, err := suite.service.CreateUser(ctx, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
}

func (suite *UserServiceTestSuite) TestAuthenticateUser_Success() {
	ctx := context.Background()
	hash, err := utils.HashPassword("correct-horse")
	suite.Require().NoError(err)

	stored := &domain.User{UserID: uuid.NewString(), Username: "jdoe"}
	suite.mockUserRepo.On("FindUserByUsernameWithHash", ctx, "jdoe").Return(stored, hash, nil).Once()

	user, err := suite.service.AuthenticateUser(ctx, "jdoe", "correct-horse")

	suite.Require().NoError(err)
	suite.Equal(stored.UserID, user.UserID)
}

func (suite *UserServiceTestSuite) TestAuthenticateUser_WrongPassword() {
	ctx := context.Background()
	hash, err := utils.HashPassword("correct-horse")
	suite.Require().NoError(err)

	stored := &domain.User{UserID: uuid.NewString(), Username: "jdoe"}
	suite.mockUserRepo.On("FindUserByUsernameWithHash", ctx, "jdoe").Return(stored, hash, nil).Once()

	_, err = suite.service.AuthenticateUser(ctx, "jdoe", "wrong-password")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *UserServiceTestSuite) TestAuthenticateUser_UnknownUserSameError() {
	ctx := context.Background()

	suite.mockUserRepo.On("FindUserByUsernameWithHash", ctx, "ghost").Return(nil, "", apperrors.ErrNotFound).Once()

	_, err := suite.service.AuthenticateUser(ctx, "ghost", "anything")

	suite.Require().Error(err)
	// An unknown user and a wrong password are indistinguishable to the caller
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.NotErrorIs(err, apperrors.ErrNotFound)
}

func (suite *UserServiceTestSuite) TestUpdateUser_SelfOnly() {
	ctx := context.Background()
	user := domain.User{UserID: uuid.NewString(), Username: "jdoe"}

	err := suite.service.UpdateUser(ctx, user, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockUserRepo.AssertNotCalled(suite.T(), "UpdateUser", mock.Anything, mock.Anything)
}

func (suite *UserServiceTestSuite) TestDeleteUser_SelfOnly() {
	ctx := context.Background()

	err := suite.service.DeleteUser(ctx, uuid.NewString(), uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *UserServiceTestSuite) TestTotalSavingsAndLoans() {
	ctx := context.Background()
	userID := uuid.NewString()

	suite.mockUserRepo.On("TotalSavingsByUser", ctx, userID).Return(decimal.NewFromFloat(1250.50), nil).Once()
	suite.mockUserRepo.On("TotalActiveLoanByUser", ctx, userID).Return(decimal.NewFromFloat(300.00), nil).Once()

	savings, err := suite.service.TotalSavings(ctx, userID)
	suite.Require().NoError(err)
	suite.True(savings.Equal(decimal.NewFromFloat(1250.50)))

	loans, err := suite.service.TotalLoans(ctx, userID)
	suite.Require().NoError(err)
	suite.True(loans.Equal(decimal.NewFromFloat(300.00)))
}

func TestUserServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}
