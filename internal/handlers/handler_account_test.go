package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/sharedsaver/shared_saver_app/internal/apperrors"
	"github.com/sharedsaver/shared_saver_app/internal/core/domain"
	portssvc "github.com/sharedsaver/shared_saver_app/internal/core/ports/services"
	"github.com/sharedsaver/shared_saver_app/internal/dto"
	"github.com/sharedsaver/shared_saver_app/internal/handlers"
	"github.com/sharedsaver/shared_saver_app/internal/platform/config"
)

// --- Mock AccountService ---
type MockAccountService struct {
	mock.Mock
}

var _ portssvc.AccountSvcFacade = (*MockAccountService)(nil)

func (m *MockAccountService) GetAccountByID(ctx context.Context, accountID string, userID string) (*domain.SharedAccount, error) {
	args := m.Called(ctx, accountID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SharedAccount), args.Error(1)
}
func (m *MockAccountService) ListAccountsForUser(ctx context.Context, userID string) ([]domain.SharedAccount, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SharedAccount), args.Error(1)
}
func (m *MockAccountService) ListMembers(ctx context.Context, accountID string, userID string) ([]domain.AccountMembership, error) {
	args := m.Called(ctx, accountID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountMembership), args.Error(1)
}
func (m *MockAccountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorUserID string) (*domain.SharedAccount, error) {
	args := m.Called(ctx, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SharedAccount), args.Error(1)
}
func (m *MockAccountService) UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.SharedAccount, error) {
	args := m.Called(ctx, accountID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SharedAccount), args.Error(1)
}
func (m *MockAccountService) DeactivateAccount(ctx context.Context, accountID string, userID string) error {
	args := m.Called(ctx, accountID, userID)
	return args.Error(0)
}
func (m *MockAccountService) AddMember(ctx context.Context, accountID string, req dto.AddMemberRequest, requestingUserID string) (*domain.AccountMembership, error) {
	args := m.Called(ctx, accountID, req, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountMembership), args.Error(1)
}
func (m *MockAccountService) RemoveMember(ctx context.Context, accountID string, userID string, requestingUserID string) (bool, error) {
	args := m.Called(ctx, accountID, userID, requestingUserID)
	return args.Bool(0), args.Error(1)
}
func (m *MockAccountService) ChangeMemberRole(ctx context.Context, accountID string, userID string, role domain.MembershipRole, requestingUserID string) (*domain.AccountMembership, error) {
	args := m.Called(ctx, accountID, userID, role, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountMembership), args.Error(1)
}
func (m *MockAccountService) AvailableBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}
func (m *MockAccountService) TotalContributions(ctx context.Context, accountID string) (decimal.Decimal, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}
func (m *MockAccountService) CanBorrow(ctx context.Context, accountID string, amount decimal.Decimal) (bool, error) {
	args := m.Called(ctx, accountID, amount)
	return args.Bool(0), args.Error(1)
}

// --- Mock TransactionService ---
type MockTransactionService struct {
	mock.Mock
}

var _ portssvc.TransactionSvcFacade = (*MockTransactionService)(nil)

func (m *MockTransactionService) GetTransactionByID(ctx context.Context, transactionID string, userID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}
func (m *MockTransactionService) ListTransactionsByAccount(ctx context.Context, accountID string, userID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	args := m.Called(ctx, accountID, userID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListTransactionsResponse), args.Error(1)
}
func (m *MockTransactionService) RecordTransaction(ctx context.Context, req dto.RecordTransactionRequest, userID string) (*domain.Transaction, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}
func (m *MockTransactionService) Contribute(ctx context.Context, accountID string, req dto.ContributionRequest, userID string) (*domain.Transaction, error) {
	args := m.Called(ctx, accountID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}
func (m *MockTransactionService) Withdraw(ctx context.Context, accountID string, req dto.WithdrawalRequest, userID string) (*domain.Transaction, error) {
	args := m.Called(ctx, accountID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}
func (m *MockTransactionService) CompleteTransaction(ctx context.Context, transactionID string, userID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

// --- Mock LoanService ---
type MockLoanService struct {
	mock.Mock
}

var _ portssvc.LoanSvcFacade = (*MockLoanService)(nil)

func (m *MockLoanService) GetLoanByID(ctx context.Context, loanID string, userID string) (*domain.Loan, error) {
	args := m.Called(ctx, loanID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}
func (m *MockLoanService) ListLoansByAccount(ctx context.Context, accountID string, userID string, status *domain.LoanStatus) ([]domain.Loan, error) {
	args := m.Called(ctx, accountID, userID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Loan), args.Error(1)
}
func (m *MockLoanService) ListLoansByBorrower(ctx context.Context, borrowerID string, userID string) ([]domain.Loan, error) {
	args := m.Called(ctx, borrowerID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Loan), args.Error(1)
}
func (m *MockLoanService) GetLoanSummary(ctx context.Context, loanID string, userID string) (*dto.LoanSummaryResponse, error) {
	args := m.Called(ctx, loanID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.LoanSummaryResponse), args.Error(1)
}
func (m *MockLoanService) RequestLoan(ctx context.Context, req dto.RequestLoanRequest, borrowerID string) (*domain.Loan, error) {
	args := m.Called(ctx, req, borrowerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}
func (m *MockLoanService) ApproveLoan(ctx context.Context, loanID string, req dto.ApproveLoanRequest, approverID string) (*domain.Loan, error) {
	args := m.Called(ctx, loanID, req, approverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}
func (m *MockLoanService) DisburseLoan(ctx context.Context, loanID string, userID string) (*domain.Loan, error) {
	args := m.Called(ctx, loanID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}
func (m *MockLoanService) MakePayment(ctx context.Context, loanID string, req dto.LoanPaymentRequest, userID string) (*domain.Loan, error) {
	args := m.Called(ctx, loanID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}
func (m *MockLoanService) CancelLoan(ctx context.Context, loanID string, userID string) (*domain.Loan, error) {
	args := m.Called(ctx, loanID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}
func (m *MockLoanService) MarkOverdueLoans(ctx context.Context, asOf time.Time) (int, error) {
	args := m.Called(ctx, asOf)
	return args.Int(0), args.Error(1)
}
func (m *MockLoanService) MarkDefaulted(ctx context.Context, loanID string, userID string) (*domain.Loan, error) {
	args := m.Called(ctx, loanID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

// --- Mock UserService ---
type MockUserService struct {
	mock.Mock
}

var _ portssvc.UserSvcFacade = (*MockUserService)(nil)

func (m *MockUserService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserService) AuthenticateUser(ctx context.Context, username string, password string) (*domain.User, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserService) TotalSavings(ctx context.Context, userID string) (decimal.Decimal, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}
func (m *MockUserService) TotalLoans(ctx context.Context, userID string) (decimal.Decimal, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}
func (m *MockUserService) CreateUser(ctx context.Context, req dto.CreateUserRequest) (*domain.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserService) UpdateUser(ctx context.Context, user domain.User, requestingUserID string) error {
	args := m.Called(ctx, user, requestingUserID)
	return args.Error(0)
}
func (m *MockUserService) DeleteUser(ctx context.Context, userID string, requestingUserID string) error {
	args := m.Called(ctx, userID, requestingUserID)
	return args.Error(0)
}

// --- Test Suite ---
type AccountHandlerTestSuite struct {
	suite.Suite
	router                 *gin.Engine
	mockAccountService     *MockAccountService
	mockTransactionService *MockTransactionService
	mockLoanService        *MockLoanService
	mockUserService        *MockUserService
	jwtSecret              string
}

func (suite *AccountHandlerTestSuite) generateTestToken(userID string) string {
	claims := jwt.RegisteredClaims{
		Issuer:    "ssa-test",
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (suite *AccountHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"

	suite.mockAccountService = new(MockAccountService)
	suite.mockTransactionService = new(MockTransactionService)
	suite.mockLoanService = new(MockLoanService)
	suite.mockUserService = new(MockUserService)

	cfg := &config.Config{
		JWTSecret:         suite.jwtSecret,
		JWTExpiryDuration: time.Hour,
		JWTIssuer:         "ssa-test",
		IsProduction:      true, // no swagger routes in tests
	}
	handlers.RegisterRoutes(suite.router, cfg, &portssvc.ServiceContainer{
		Account:     suite.mockAccountService,
		Transaction: suite.mockTransactionService,
		Loan:        suite.mockLoanService,
		User:        suite.mockUserService,
	})
}

func (suite *AccountHandlerTestSuite) doRequest(method, url, userID string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			suite.FailNow("Failed to encode request body", err.Error())
		}
	}
	req, _ := http.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(userID))
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

// --- Test Cases ---

func (suite *AccountHandlerTestSuite) TestCreateAccount_Success() {
	userID := uuid.NewString()
	req := dto.CreateAccountRequest{
		Name:        "Family Pool",
		AccountType: domain.AccountTypeFamily,
	}
	created := &domain.SharedAccount{
		AccountID:   uuid.NewString(),
		Name:        req.Name,
		AccountType: req.AccountType,
		Status:      domain.AccountActive,
		Balance:     decimal.Zero,
	}

	suite.mockAccountService.On("CreateAccount",
		mock.Anything,
		mock.MatchedBy(func(r dto.CreateAccountRequest) bool { return r.Name == req.Name }),
		userID,
	).Return(created, nil).Once()

	w := suite.doRequest(http.MethodPost, "/api/v1/accounts", userID, req)

	suite.Equal(http.StatusCreated, w.Code)

	var resp dto.AccountResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(created.AccountID, resp.AccountID)
	suite.Equal("active", resp.Status)
	suite.mockAccountService.AssertExpectations(suite.T())
}

func (suite *AccountHandlerTestSuite) TestCreateAccount_MissingTokenUnauthorized() {
	w := suite.doRequest(http.MethodPost, "/api/v1/accounts", "", dto.CreateAccountRequest{
		Name:        "No Auth",
		AccountType: domain.AccountTypeFriends,
	})

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockAccountService.AssertNotCalled(suite.T(), "CreateAccount", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AccountHandlerTestSuite) TestCreateAccount_InvalidAccountType() {
	userID := uuid.NewString()
	w := suite.doRequest(http.MethodPost, "/api/v1/accounts", userID, map[string]any{
		"name":        "Bad Type",
		"accountType": "corporate",
	})

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *AccountHandlerTestSuite) TestGetAccountBalance_Success() {
	userID := uuid.NewString()
	accountID := uuid.NewString()
	account := &domain.SharedAccount{
		AccountID: accountID,
		Status:    domain.AccountActive,
		Balance:   decimal.NewFromFloat(1000.00),
	}

	suite.mockAccountService.On("GetAccountByID", mock.Anything, accountID, userID).Return(account, nil).Once()
	suite.mockAccountService.On("AvailableBalance", mock.Anything, accountID).Return(decimal.NewFromFloat(600.00), nil).Once()
	suite.mockAccountService.On("TotalContributions", mock.Anything, accountID).Return(decimal.NewFromFloat(1400.00), nil).Once()

	w := suite.doRequest(http.MethodGet, fmt.Sprintf("/api/v1/accounts/%s/balance", accountID), userID, nil)

	suite.Equal(http.StatusOK, w.Code)

	var resp dto.AccountBalanceResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.True(resp.Balance.Equal(decimal.NewFromFloat(1000.00)))
	suite.True(resp.AvailableBalance.Equal(decimal.NewFromFloat(600.00)))
	suite.True(resp.TotalContributions.Equal(decimal.NewFromFloat(1400.00)))
	suite.mockAccountService.AssertExpectations(suite.T())
}

func (suite *AccountHandlerTestSuite) TestGetAccountBalance_NonMemberForbidden() {
	userID := uuid.NewString()
	accountID := uuid.NewString()

	suite.mockAccountService.On("GetAccountByID", mock.Anything, accountID, userID).
		Return(nil, fmt.Errorf("%w: not a member", apperrors.ErrForbidden)).Once()

	w := suite.doRequest(http.MethodGet, fmt.Sprintf("/api/v1/accounts/%s/balance", accountID), userID, nil)

	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *AccountHandlerTestSuite) TestWithdraw_InsufficientBalanceUnprocessable() {
	userID := uuid.NewString()
	accountID := uuid.NewString()

	suite.mockTransactionService.On("Withdraw", mock.Anything, accountID, mock.AnythingOfType("dto.WithdrawalRequest"), userID).
		Return(nil, fmt.Errorf("%w: balance would go negative", apperrors.ErrInsufficientCapacity)).Once()

	w := suite.doRequest(http.MethodPost, fmt.Sprintf("/api/v1/accounts/%s/withdrawals", accountID), userID, dto.WithdrawalRequest{
		Amount: decimal.NewFromFloat(9999.00),
	})

	suite.Equal(http.StatusUnprocessableEntity, w.Code)
}

func (suite *AccountHandlerTestSuite) TestRemoveMember_NotFoundWhenAbsent() {
	userID := uuid.NewString()
	accountID := uuid.NewString()
	targetID := uuid.NewString()

	suite.mockAccountService.On("RemoveMember", mock.Anything, accountID, targetID, userID).
		Return(false, nil).Once()

	w := suite.doRequest(http.MethodDelete, fmt.Sprintf("/api/v1/accounts/%s/members/%s", accountID, targetID), userID, nil)

	suite.Equal(http.StatusNotFound, w.Code)
}

func TestAccountHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(AccountHandlerTestSuite))
}
