package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/sebenza-books/sebenza_ledger/internal/apperrors"
	"github.com/sebenza-books/sebenza_ledger/internal/core/domain"
	portssvc "github.com/sebenza-books/sebenza_ledger/internal/core/ports/services"
	"github.com/sebenza-books/sebenza_ledger/internal/core/services"
	"github.com/sebenza-books/sebenza_ledger/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// MockEntryRepository is a mock type for the EntryRepositoryFacade interface
type MockEntryRepository struct {
	mock.Mock
}

// --- Implement mock methods for EntryRepositoryFacade ---

func (m *MockEntryRepository) FindEntryByID(ctx context.Context, entryID int64) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}

func (m *MockEntryRepository) ListEntries(ctx context.Context, limit int, nextToken *string, sourceModule string) ([]domain.LedgerEntry, *string, error) {
	args := m.Called(ctx, limit, nextToken, sourceModule)
	var entries []domain.LedgerEntry
	if args.Get(0) != nil {
		entries = args.Get(0).([]domain.LedgerEntry)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return entries, token, args.Error(2)
}

func (m *MockEntryRepository) SaveEntry(ctx context.Context, entry domain.LedgerEntry) (int64, error) {
	args := m.Called(ctx, entry)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockEntryRepository) UpdateEntry(ctx context.Context, entry domain.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockEntryRepository) DeleteEntry(ctx context.Context, entryID int64) error {
	args := m.Called(ctx, entryID)
	return args.Error(0)
}

func (m *MockEntryRepository) UpdateEntryStatus(ctx context.Context, entryID int64, status domain.EntryStatus, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, entryID, status, updatedBy, updatedAt)
	return args.Error(0)
}

func (m *MockEntryRepository) SaveReversal(ctx context.Context, original domain.LedgerEntry, reversal domain.LedgerEntry) (int64, error) {
	args := m.Called(ctx, original, reversal)
	return args.Get(0).(int64), args.Error(1)
}

// --- Test Suite Setup ---

type EntryServiceTestSuite struct {
	suite.Suite
	mockEntryRepo   *MockEntryRepository
	mockAccountRepo *MockAccountRepository
	service         portssvc.EntrySvcFacade
}

func (suite *EntryServiceTestSuite) SetupTest() {
	suite.mockEntryRepo = new(MockEntryRepository)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.service = services.NewEntryService(suite.mockEntryRepo, suite.mockAccountRepo)
}

// balancedRequest builds a request that passes every validation rule.
func balancedRequest() dto.SaveEntryRequest {
	return dto.SaveEntryRequest{
		TransactionDate: "2026-08-30",
		Description:     "Office rent for August",
		Lines: []dto.LedgerLineRequest{
			{AccountID: 1, DebitAmount: "1500.00"},
			{AccountID: 2, CreditAmount: "1500.00"},
		},
	}
}

func activeAccounts() map[int64]domain.Account {
	return map[int64]domain.Account{
		1: {ID: 1, AccountCode: "6400", AccountName: "Rent Expense", AccountType: domain.Expense, IsActive: true},
		2: {ID: 2, AccountCode: "1000", AccountName: "Bank Account", AccountType: domain.Asset, IsActive: true},
	}
}

// --- Test Cases ---

func (suite *EntryServiceTestSuite) TestCreateEntry_Success() {
	ctx := context.Background()
	req := balancedRequest()

	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, mock.AnythingOfType("[]int64")).Return(activeAccounts(), nil).Once()
	suite.mockEntryRepo.On("SaveEntry", ctx, mock.AnythingOfType("domain.LedgerEntry")).Return(int64(101), nil).Once()

	created, err := suite.service.CreateEntry(ctx, req, "user-1")

	suite.Require().NoError(err)
	suite.Require().NotNil(created)
	suite.Equal(int64(101), created.ID)
	suite.Equal(domain.EntryDraft, created.Status)
	suite.True(created.TotalDebit.Equal(decimal.NewFromInt(1500)))
	suite.True(created.TotalCredit.Equal(decimal.NewFromInt(1500)))
	suite.Require().Len(created.Lines, 2)
	suite.Equal("Rent Expense", created.Lines[0].AccountName)
	suite.Equal("Bank Account", created.Lines[1].AccountName)
	suite.Equal("user-1", created.CreatedBy)

	suite.mockEntryRepo.AssertExpectations(suite.T())
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *EntryServiceTestSuite) TestCreateEntry_Unbalanced() {
	ctx := context.Background()
	req := balancedRequest()
	req.Lines[1].CreditAmount = "1400.00"

	created, err := suite.service.CreateEntry(ctx, req, "user-1")

	suite.Require().Error(err)
	suite.Nil(created)
	suite.ErrorIs(err, apperrors.ErrValidation)

	var vErr *apperrors.ValidationError
	suite.Require().ErrorAs(err, &vErr)
	suite.Contains(vErr.Errors, "Entry is not balanced. Debit: R1500.00, Credit: R1400.00")

	suite.mockEntryRepo.AssertNotCalled(suite.T(), "SaveEntry", mock.Anything, mock.Anything)
}

func (suite *EntryServiceTestSuite) TestCreateEntry_InactiveAccount() {
	ctx := context.Background()
	req := balancedRequest()
	accounts := activeAccounts()
	bank := accounts[2]
	bank.IsActive = false
	accounts[2] = bank

	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, mock.AnythingOfType("[]int64")).Return(accounts, nil).Once()

	created, err := suite.service.CreateEntry(ctx, req, "user-1")

	suite.Require().Error(err)
	suite.Nil(created)
	suite.ErrorIs(err, services.ErrAccountInactive)
	suite.mockEntryRepo.AssertNotCalled(suite.T(), "SaveEntry", mock.Anything, mock.Anything)
}

func (suite *EntryServiceTestSuite) TestCreateEntry_UnknownAccount() {
	ctx := context.Background()
	req := balancedRequest()
	accounts := activeAccounts()
	delete(accounts, 2)

	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, mock.AnythingOfType("[]int64")).Return(accounts, nil).Once()

	created, err := suite.service.CreateEntry(ctx, req, "user-1")

	suite.Require().Error(err)
	suite.Nil(created)
	suite.ErrorIs(err, services.ErrAccountNotFound)
}

func (suite *EntryServiceTestSuite) TestUpdateEntry_PostedIsReadOnly() {
	ctx := context.Background()
	posted := &domain.LedgerEntry{ID: 5, EntryNumber: "JE1", Status: domain.EntryPosted}

	suite.mockEntryRepo.On("FindEntryByID", ctx, int64(5)).Return(posted, nil).Once()

	updated, err := suite.service.UpdateEntry(ctx, 5, balancedRequest(), "user-1")

	suite.Require().Error(err)
	suite.Nil(updated)
	suite.ErrorIs(err, services.ErrEntryNotEditable)
	suite.mockEntryRepo.AssertNotCalled(suite.T(), "UpdateEntry", mock.Anything, mock.Anything)
}

func (suite *EntryServiceTestSuite) TestUpdateEntry_KeepsEntryNumber() {
	ctx := context.Background()
	existing := &domain.LedgerEntry{
		ID:          5,
		EntryNumber: "JE1736951000000",
		Status:      domain.EntryDraft,
		AuditFields: domain.AuditFields{CreatedBy: "user-0", CreatedAt: time.Now().Add(-time.Hour)},
	}
	req := balancedRequest()
	req.EntryNumber = "JE9999999999999" // client attempt to rename, must be ignored

	suite.mockEntryRepo.On("FindEntryByID", ctx, int64(5)).Return(existing, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, mock.AnythingOfType("[]int64")).Return(activeAccounts(), nil).Once()
	suite.mockEntryRepo.On("UpdateEntry", ctx, mock.AnythingOfType("domain.LedgerEntry")).Return(nil).Once()

	updated, err := suite.service.UpdateEntry(ctx, 5, req, "user-1")

	suite.Require().NoError(err)
	suite.Require().NotNil(updated)
	suite.Equal("JE1736951000000", updated.EntryNumber)
	suite.Equal("user-0", updated.CreatedBy)
	suite.Equal("user-1", updated.LastUpdatedBy)
	suite.mockEntryRepo.AssertExpectations(suite.T())
}

func (suite *EntryServiceTestSuite) TestDeleteEntry_PostedIsReadOnly() {
	ctx := context.Background()
	posted := &domain.LedgerEntry{ID: 5, Status: domain.EntryPosted}

	suite.mockEntryRepo.On("FindEntryByID", ctx, int64(5)).Return(posted, nil).Once()

	err := suite.service.DeleteEntry(ctx, 5, "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrEntryNotEditable)
	suite.mockEntryRepo.AssertNotCalled(suite.T(), "DeleteEntry", mock.Anything, mock.Anything)
}

func (suite *EntryServiceTestSuite) TestPostEntry_Success() {
	ctx := context.Background()
	entry := &domain.LedgerEntry{
		ID:              5,
		EntryNumber:     "JE1",
		TransactionDate: time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC),
		Description:     "Office rent for August",
		TotalDebit:      decimal.NewFromInt(1500),
		TotalCredit:     decimal.NewFromInt(1500),
		Status:          domain.EntryDraft,
		Lines: []domain.LedgerLine{
			{ID: 1, EntryID: 5, AccountID: 1, DebitAmount: decimal.NewFromInt(1500)},
			{ID: 2, EntryID: 5, AccountID: 2, CreditAmount: decimal.NewFromInt(1500)},
		},
	}

	suite.mockEntryRepo.On("FindEntryByID", ctx, int64(5)).Return(entry, nil).Once()
	suite.mockEntryRepo.On("UpdateEntryStatus", ctx, int64(5), domain.EntryPosted, "user-1", mock.AnythingOfType("time.Time")).Return(nil).Once()

	posted, err := suite.service.PostEntry(ctx, 5, "user-1")

	suite.Require().NoError(err)
	suite.Require().NotNil(posted)
	suite.Equal(domain.EntryPosted, posted.Status)
	suite.mockEntryRepo.AssertExpectations(suite.T())
}

func (suite *EntryServiceTestSuite) TestPostEntry_AlreadyPosted() {
	ctx := context.Background()
	entry := &domain.LedgerEntry{ID: 5, Status: domain.EntryPosted}

	suite.mockEntryRepo.On("FindEntryByID", ctx, int64(5)).Return(entry, nil).Once()

	posted, err := suite.service.PostEntry(ctx, 5, "user-1")

	suite.Require().Error(err)
	suite.Nil(posted)
	suite.ErrorIs(err, services.ErrEntryNotDraft)
}

func (suite *EntryServiceTestSuite) TestReverseEntry_Success() {
	ctx := context.Background()
	original := &domain.LedgerEntry{
		ID:              5,
		EntryNumber:     "JE1",
		TransactionDate: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		Description:     "Office rent for August",
		TotalDebit:      decimal.NewFromInt(1500),
		TotalCredit:     decimal.NewFromInt(1500),
		Status:          domain.EntryPosted,
		Lines: []domain.LedgerLine{
			{ID: 1, EntryID: 5, AccountID: 1, AccountName: "Rent Expense", DebitAmount: decimal.NewFromInt(1500)},
			{ID: 2, EntryID: 5, AccountID: 2, AccountName: "Bank Account", CreditAmount: decimal.NewFromInt(1500)},
		},
	}

	suite.mockEntryRepo.On("FindEntryByID", ctx, int64(5)).Return(original, nil).Once()
	suite.mockEntryRepo.On("SaveReversal", ctx, mock.AnythingOfType("domain.LedgerEntry"), mock.AnythingOfType("domain.LedgerEntry")).Return(int64(6), nil).Once()

	reversal, err := suite.service.ReverseEntry(ctx, 5, "user-1")

	suite.Require().NoError(err)
	suite.Require().NotNil(reversal)
	suite.Equal(int64(6), reversal.ID)
	suite.Equal("Reversal of JE1", reversal.Description)
	suite.Equal(domain.EntryPosted, reversal.Status)
	suite.Require().NotNil(reversal.OriginalEntryID)
	suite.Equal(int64(5), *reversal.OriginalEntryID)
	suite.Require().Len(reversal.Lines, 2)
	// Debits and credits swap on the reversing entry.
	suite.True(reversal.Lines[0].CreditAmount.Equal(decimal.NewFromInt(1500)))
	suite.True(reversal.Lines[0].DebitAmount.IsZero())
	suite.True(reversal.Lines[1].DebitAmount.Equal(decimal.NewFromInt(1500)))
	suite.mockEntryRepo.AssertExpectations(suite.T())
}

func (suite *EntryServiceTestSuite) TestReverseEntry_DraftRefused() {
	ctx := context.Background()
	entry := &domain.LedgerEntry{ID: 5, Status: domain.EntryDraft}

	suite.mockEntryRepo.On("FindEntryByID", ctx, int64(5)).Return(entry, nil).Once()

	reversal, err := suite.service.ReverseEntry(ctx, 5, "user-1")

	suite.Require().Error(err)
	suite.Nil(reversal)
	suite.ErrorIs(err, services.ErrEntryNotPosted)
	suite.mockEntryRepo.AssertNotCalled(suite.T(), "SaveReversal", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *EntryServiceTestSuite) TestListEntries_BadToken() {
	ctx := context.Background()
	badToken := "not-base64!!"

	resp, err := suite.service.ListEntries(ctx, dto.ListEntriesParams{Limit: 20, NextToken: &badToken})

	suite.Require().Error(err)
	suite.Nil(resp)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockEntryRepo.AssertNotCalled(suite.T(), "ListEntries", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *EntryServiceTestSuite) TestValidateEntry_DryRun() {
	req := dto.SaveEntryRequest{
		TransactionDate: "2026-08-30",
		Description:     "Unbalanced attempt",
		Lines: []dto.LedgerLineRequest{
			{AccountID: 1, DebitAmount: "100.00"},
			{AccountID: 2, CreditAmount: "90.00"},
		},
	}

	res, err := suite.service.ValidateEntry(req)

	suite.Require().NoError(err)
	suite.False(res.Valid)
	suite.Contains(res.Errors, "Entry is not balanced. Debit: R100.00, Credit: R90.00")

	// No repository interaction on a dry run.
	suite.mockEntryRepo.AssertNotCalled(suite.T(), "SaveEntry", mock.Anything, mock.Anything)
}

func TestEntryServiceTestSuite(t *testing.T) {
	suite.Run(t, new(EntryServiceTestSuite))
}
