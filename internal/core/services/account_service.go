package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/sebenza-books/sebenza_ledger/internal/core/domain"
	portsrepo "github.com/sebenza-books/sebenza_ledger/internal/core/ports/repositories"
	portssvc "github.com/sebenza-books/sebenza_ledger/internal/core/ports/services"
	"github.com/sebenza-books/sebenza_ledger/internal/dto"
	"github.com/sebenza-books/sebenza_ledger/internal/middleware"
)

// accountService implements the AccountSvcFacade interface over the chart of accounts.
type accountService struct {
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewAccountService creates a new AccountService.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade) portssvc.AccountSvcFacade {
	return &accountService{accountRepo: accountRepo}
}

// Ensure accountService implements the AccountSvcFacade interface
var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// CreateAccount persists a new chart-of-accounts entry.
func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now()
	account := domain.Account{
		AccountCode: req.AccountCode,
		AccountName: req.AccountName,
		AccountType: req.AccountType,
		Description: req.Description,
		IsActive:    true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	accountID, err := s.accountRepo.SaveAccount(ctx, account)
	if err != nil {
		logger.Error("Failed to save account", slog.String("account_code", req.AccountCode), slog.String("error", err.Error()))
		return nil, err
	}
	account.ID = accountID

	logger.Info("Account created", slog.Int64("account_id", accountID), slog.String("account_code", account.AccountCode))
	return &account, nil
}

// GetAccountByID retrieves a specific account.
func (s *accountService) GetAccountByID(ctx context.Context, accountID int64) (*domain.Account, error) {
	return s.accountRepo.FindAccountByID(ctx, accountID)
}

// GetAccountsByIDs retrieves multiple accounts keyed by ID.
func (s *accountService) GetAccountsByIDs(ctx context.Context, accountIDs []int64) (map[int64]domain.Account, error) {
	return s.accountRepo.FindAccountsByIDs(ctx, accountIDs)
}

// ListAccounts retrieves a page of accounts.
func (s *accountService) ListAccounts(ctx context.Context, params dto.ListAccountsParams) ([]domain.Account, error) {
	return s.accountRepo.ListAccounts(ctx, params.Limit, params.Offset)
}

// DeactivateAccount soft deletes an account so new entry lines can no longer
// reference it. Existing lines keep their history.
func (s *accountService) DeactivateAccount(ctx context.Context, accountID int64, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.accountRepo.DeactivateAccount(ctx, accountID, userID, time.Now()); err != nil {
		logger.Error("Failed to deactivate account", slog.Int64("account_id", accountID), slog.String("error", err.Error()))
		return err
	}

	logger.Info("Account deactivated", slog.Int64("account_id", accountID))
	return nil
}
