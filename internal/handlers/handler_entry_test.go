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
	"github.com/sebenza-books/sebenza_ledger/internal/apperrors"
	"github.com/sebenza-books/sebenza_ledger/internal/core/domain"
	"github.com/sebenza-books/sebenza_ledger/internal/core/draft"
	portssvc "github.com/sebenza-books/sebenza_ledger/internal/core/ports/services"
	"github.com/sebenza-books/sebenza_ledger/internal/core/services"
	"github.com/sebenza-books/sebenza_ledger/internal/dto"
	"github.com/sebenza-books/sebenza_ledger/internal/handlers"
	"github.com/sebenza-books/sebenza_ledger/internal/platform/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock EntryService ---
type MockEntryService struct {
	mock.Mock
}

func (m *MockEntryService) CreateEntry(ctx context.Context, req dto.SaveEntryRequest, creatorUserID string) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}
func (m *MockEntryService) GetEntryByID(ctx context.Context, entryID int64) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}
func (m *MockEntryService) ListEntries(ctx context.Context, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListEntriesResponse), args.Error(1)
}
func (m *MockEntryService) UpdateEntry(ctx context.Context, entryID int64, req dto.SaveEntryRequest, userID string) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, entryID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}
func (m *MockEntryService) DeleteEntry(ctx context.Context, entryID int64, userID string) error {
	args := m.Called(ctx, entryID, userID)
	return args.Error(0)
}
func (m *MockEntryService) PostEntry(ctx context.Context, entryID int64, userID string) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, entryID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}
func (m *MockEntryService) ReverseEntry(ctx context.Context, entryID int64, userID string) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, entryID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}
func (m *MockEntryService) ValidateEntry(req dto.SaveEntryRequest) (draft.Result, error) {
	args := m.Called(req)
	return args.Get(0).(draft.Result), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.EntrySvcFacade = (*MockEntryService)(nil)

// --- Mock AccountService ---
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) GetAccountByID(ctx context.Context, accountID int64) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) GetAccountsByIDs(ctx context.Context, accountIDs []int64) (map[int64]domain.Account, error) {
	args := m.Called(ctx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]domain.Account), args.Error(1)
}
func (m *MockAccountService) ListAccounts(ctx context.Context, params dto.ListAccountsParams) ([]domain.Account, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}
func (m *MockAccountService) DeactivateAccount(ctx context.Context, accountID int64, userID string) error {
	args := m.Called(ctx, accountID, userID)
	return args.Error(0)
}

// Ensure mock implements the interface
var _ portssvc.AccountSvcFacade = (*MockAccountService)(nil)

// --- Test Suite ---
type EntryHandlerTestSuite struct {
	suite.Suite
	router             *gin.Engine
	mockEntryService   *MockEntryService
	mockAccountService *MockAccountService
	jwtSecret          string
}

// generateTestToken creates a dummy JWT for testing.
func (suite *EntryHandlerTestSuite) generateTestToken(userID string) string {
	claims := jwt.RegisteredClaims{
		Issuer:    "sebenza-test",
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

func (suite *EntryHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"

	suite.mockEntryService = new(MockEntryService)
	suite.mockAccountService = new(MockAccountService)

	cfg := &config.Config{
		JWTSecret:    suite.jwtSecret,
		IsProduction: true, // no swagger group in tests
	}
	container := &portssvc.ServiceContainer{
		Entry:   suite.mockEntryService,
		Account: suite.mockAccountService,
	}
	handlers.RegisterRoutes(suite.router, cfg, container)
}

// doJSON performs an authenticated JSON request against the test router.
func (suite *EntryHandlerTestSuite) doJSON(method, url, userID string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			suite.FailNow("Failed to encode request body", err.Error())
		}
	}
	req, _ := http.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(userID))
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func sampleEntry() *domain.LedgerEntry {
	return &domain.LedgerEntry{
		ID:              101,
		EntryNumber:     "JE1736951000000",
		TransactionDate: time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC),
		Description:     "Office rent for August",
		TotalDebit:      decimal.NewFromInt(1500),
		TotalCredit:     decimal.NewFromInt(1500),
		Status:          domain.EntryDraft,
		Lines: []domain.LedgerLine{
			{ID: 1, EntryID: 101, AccountID: 1, AccountName: "Rent Expense", DebitAmount: decimal.NewFromInt(1500)},
			{ID: 2, EntryID: 101, AccountID: 2, AccountName: "Bank Account", CreditAmount: decimal.NewFromInt(1500)},
		},
	}
}

// --- Test Cases ---

func (suite *EntryHandlerTestSuite) TestCreateEntry_Success() {
	req := dto.SaveEntryRequest{
		TransactionDate: "2026-08-30",
		Description:     "Office rent for August",
		Lines: []dto.LedgerLineRequest{
			{AccountID: 1, DebitAmount: "1500.00"},
			{AccountID: 2, CreditAmount: "1500.00"},
		},
	}

	suite.mockEntryService.On("CreateEntry", mock.Anything, mock.AnythingOfType("dto.SaveEntryRequest"), "user-1").
		Return(sampleEntry(), nil).Once()

	w := suite.doJSON(http.MethodPost, "/api/v1/entries", "user-1", req)

	suite.Equal(http.StatusCreated, w.Code)

	var resp dto.EntryResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(int64(101), resp.ID)
	suite.Equal("JE1736951000000", resp.EntryNumber)
	suite.Equal("2026-08-30", resp.TransactionDate)
	suite.Equal("1500.00", resp.TotalDebit)
	suite.Equal("1500.00", resp.TotalCredit)
	suite.False(resp.IsPosted)
	suite.False(resp.IsReversed)

	suite.mockEntryService.AssertExpectations(suite.T())
}

func (suite *EntryHandlerTestSuite) TestCreateEntry_ValidationErrors() {
	req := dto.SaveEntryRequest{
		TransactionDate: "2026-08-30",
		Description:     "Unbalanced",
		Lines: []dto.LedgerLineRequest{
			{AccountID: 1, DebitAmount: "100.00"},
			{AccountID: 2, CreditAmount: "90.00"},
		},
	}
	vErr := apperrors.NewValidationError([]string{"Entry is not balanced. Debit: R100.00, Credit: R90.00"})

	suite.mockEntryService.On("CreateEntry", mock.Anything, mock.AnythingOfType("dto.SaveEntryRequest"), "user-1").
		Return(nil, vErr).Once()

	w := suite.doJSON(http.MethodPost, "/api/v1/entries", "user-1", req)

	suite.Equal(http.StatusBadRequest, w.Code)

	var resp struct {
		Error  string   `json:"error"`
		Errors []string `json:"errors"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("Validation failed", resp.Error)
	suite.Contains(resp.Errors, "Entry is not balanced. Debit: R100.00, Credit: R90.00")
}

func (suite *EntryHandlerTestSuite) TestCreateEntry_BadAmountRejectedByBinding() {
	req := dto.SaveEntryRequest{
		TransactionDate: "2026-08-30",
		Description:     "Bad amount shape",
		Lines: []dto.LedgerLineRequest{
			{AccountID: 1, DebitAmount: "12.345"},
			{AccountID: 2, CreditAmount: "12.345"},
		},
	}

	w := suite.doJSON(http.MethodPost, "/api/v1/entries", "user-1", req)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockEntryService.AssertNotCalled(suite.T(), "CreateEntry", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *EntryHandlerTestSuite) TestCreateEntry_Unauthorized() {
	var buf bytes.Buffer
	_ = json.NewEncoder(&buf).Encode(dto.SaveEntryRequest{})
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/entries", &buf)
	req.Header.Set("Content-Type", "application/json")
	// No Authorization header.
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockEntryService.AssertNotCalled(suite.T(), "CreateEntry", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *EntryHandlerTestSuite) TestGetEntry_NotFound() {
	suite.mockEntryService.On("GetEntryByID", mock.Anything, int64(999)).
		Return(nil, apperrors.ErrNotFound).Once()

	w := suite.doJSON(http.MethodGet, "/api/v1/entries/999", "user-1", nil)

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *EntryHandlerTestSuite) TestGetEntry_BadID() {
	w := suite.doJSON(http.MethodGet, "/api/v1/entries/not-a-number", "user-1", nil)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockEntryService.AssertNotCalled(suite.T(), "GetEntryByID", mock.Anything, mock.Anything)
}

func (suite *EntryHandlerTestSuite) TestListEntries_Success() {
	entry := sampleEntry()
	resp := &dto.ListEntriesResponse{
		Entries: dto.ToEntryResponses([]domain.LedgerEntry{*entry}),
	}

	suite.mockEntryService.On("ListEntries", mock.Anything, mock.MatchedBy(func(p dto.ListEntriesParams) bool {
		return p.Limit == 10 && p.SourceModule == "invoicing"
	})).Return(resp, nil).Once()

	w := suite.doJSON(http.MethodGet, "/api/v1/entries?limit=10&sourceModule=invoicing", "user-1", nil)

	suite.Equal(http.StatusOK, w.Code)

	var body dto.ListEntriesResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Len(body.Entries, 1)
	suite.Nil(body.NextToken)
	suite.mockEntryService.AssertExpectations(suite.T())
}

func (suite *EntryHandlerTestSuite) TestUpdateEntry_ReadOnlyConflict() {
	req := dto.SaveEntryRequest{
		TransactionDate: "2026-08-30",
		Description:     "Attempted edit",
		Lines: []dto.LedgerLineRequest{
			{AccountID: 1, DebitAmount: "100.00"},
			{AccountID: 2, CreditAmount: "100.00"},
		},
	}

	suite.mockEntryService.On("UpdateEntry", mock.Anything, int64(101), mock.AnythingOfType("dto.SaveEntryRequest"), "user-1").
		Return(nil, services.ErrEntryNotEditable).Once()

	w := suite.doJSON(http.MethodPut, "/api/v1/entries/101", "user-1", req)

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *EntryHandlerTestSuite) TestDeleteEntry_Success() {
	suite.mockEntryService.On("DeleteEntry", mock.Anything, int64(101), "user-1").Return(nil).Once()

	w := suite.doJSON(http.MethodDelete, "/api/v1/entries/101", "user-1", nil)

	suite.Equal(http.StatusNoContent, w.Code)
	suite.mockEntryService.AssertExpectations(suite.T())
}

func (suite *EntryHandlerTestSuite) TestPostEntry_Success() {
	posted := sampleEntry()
	posted.Status = domain.EntryPosted

	suite.mockEntryService.On("PostEntry", mock.Anything, int64(101), "user-1").Return(posted, nil).Once()

	w := suite.doJSON(http.MethodPost, "/api/v1/entries/101/post", "user-1", nil)

	suite.Equal(http.StatusOK, w.Code)

	var resp dto.EntryResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.True(resp.IsPosted)
	suite.mockEntryService.AssertExpectations(suite.T())
}

func (suite *EntryHandlerTestSuite) TestPostEntry_NotDraftConflict() {
	suite.mockEntryService.On("PostEntry", mock.Anything, int64(101), "user-1").
		Return(nil, services.ErrEntryNotDraft).Once()

	w := suite.doJSON(http.MethodPost, "/api/v1/entries/101/post", "user-1", nil)

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *EntryHandlerTestSuite) TestReverseEntry_Success() {
	original := sampleEntry()
	reversal := sampleEntry()
	reversal.ID = 102
	reversal.Description = fmt.Sprintf("Reversal of %s", original.EntryNumber)
	reversal.Status = domain.EntryPosted
	reversal.OriginalEntryID = &original.ID

	suite.mockEntryService.On("ReverseEntry", mock.Anything, int64(101), "user-1").Return(reversal, nil).Once()

	w := suite.doJSON(http.MethodPost, "/api/v1/entries/101/reverse", "user-1", nil)

	suite.Equal(http.StatusCreated, w.Code)

	var resp dto.EntryResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(int64(102), resp.ID)
	suite.Equal("Reversal of JE1736951000000", resp.Description)
	suite.Require().NotNil(resp.OriginalEntryID)
	suite.Equal(int64(101), *resp.OriginalEntryID)
	suite.mockEntryService.AssertExpectations(suite.T())
}

func (suite *EntryHandlerTestSuite) TestValidateEntry_DryRun() {
	req := dto.SaveEntryRequest{
		TransactionDate: "2026-08-30",
		Description:     "Unbalanced",
		Lines: []dto.LedgerLineRequest{
			{AccountID: 1, DebitAmount: "100.00"},
			{AccountID: 2, CreditAmount: "90.00"},
		},
	}
	result := draft.Result{Valid: false, Errors: []string{"Entry is not balanced. Debit: R100.00, Credit: R90.00"}}

	suite.mockEntryService.On("ValidateEntry", mock.AnythingOfType("dto.SaveEntryRequest")).Return(result, nil).Once()

	w := suite.doJSON(http.MethodPost, "/api/v1/entries/validate", "user-1", req)

	suite.Equal(http.StatusOK, w.Code)

	var resp dto.ValidationResultResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.False(resp.Valid)
	suite.Contains(resp.Errors, "Entry is not balanced. Debit: R100.00, Credit: R90.00")
	suite.mockEntryService.AssertExpectations(suite.T())
}

// --- Run Test Suite ---
func TestEntryHandler(t *testing.T) {
	suite.Run(t, new(EntryHandlerTestSuite))
}
