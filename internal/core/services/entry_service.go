package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sebenza-books/sebenza_ledger/internal/apperrors"
	"github.com/sebenza-books/sebenza_ledger/internal/core/domain"
	"github.com/sebenza-books/sebenza_ledger/internal/core/draft"
	portsrepo "github.com/sebenza-books/sebenza_ledger/internal/core/ports/repositories"
	portssvc "github.com/sebenza-books/sebenza_ledger/internal/core/ports/services"
	"github.com/sebenza-books/sebenza_ledger/internal/dto"
	"github.com/sebenza-books/sebenza_ledger/internal/middleware"
	"github.com/sebenza-books/sebenza_ledger/internal/platform/metrics"
	"github.com/sebenza-books/sebenza_ledger/internal/utils/pagination"
)

var (
	ErrEntryNotEditable = errors.New("entry is posted or reversed and cannot be modified")
	ErrEntryNotPosted   = errors.New("entry must be posted before it can be reversed")
	ErrEntryNotDraft    = errors.New("entry must be in draft status")
	ErrAccountNotFound  = errors.New("account not found")
	ErrAccountInactive  = errors.New("account is inactive")
)

// entryService provides ledger entry operations on top of the draft validator.
type entryService struct {
	entryRepo   portsrepo.EntryRepositoryFacade
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewEntryService creates a new EntryService.
func NewEntryService(entryRepo portsrepo.EntryRepositoryFacade, accountRepo portsrepo.AccountRepositoryFacade) portssvc.EntrySvcFacade {
	return &entryService{
		entryRepo:   entryRepo,
		accountRepo: accountRepo,
	}
}

// Ensure entryService implements the portssvc.EntrySvcFacade interface
var _ portssvc.EntrySvcFacade = (*entryService)(nil)

// validateAndClean runs the draft validator and returns the clean entry ready
// for persistence. Validation failures come back as a single
// apperrors.ValidationError carrying every message.
func (s *entryService) validateAndClean(req dto.SaveEntryRequest) (domain.LedgerEntry, error) {
	d, err := req.ToDraft()
	if err != nil {
		return domain.LedgerEntry{}, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}

	if res := d.Validate(); !res.Valid {
		metrics.ValidationFailed()
		return domain.LedgerEntry{}, apperrors.NewValidationError(res.Errors)
	}

	entry, err := d.PrepareForSave()
	if err != nil {
		return domain.LedgerEntry{}, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}
	return entry, nil
}

// resolveAccounts checks that every line references an existing, active
// account and stamps the account name onto the line for display.
func (s *entryService) resolveAccounts(ctx context.Context, entry *domain.LedgerEntry) error {
	ids := make([]int64, 0, len(entry.Lines))
	seen := make(map[int64]struct{}, len(entry.Lines))
	for _, ln := range entry.Lines {
		if _, ok := seen[ln.AccountID]; !ok {
			seen[ln.AccountID] = struct{}{}
			ids = append(ids, ln.AccountID)
		}
	}

	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to resolve accounts: %w", err)
	}

	for i, ln := range entry.Lines {
		acc, ok := accounts[ln.AccountID]
		if !ok {
			return fmt.Errorf("%w: account %d", ErrAccountNotFound, ln.AccountID)
		}
		if !acc.IsActive {
			return fmt.Errorf("%w: account %d (%s)", ErrAccountInactive, acc.ID, acc.AccountName)
		}
		entry.Lines[i].AccountName = acc.AccountName
	}
	return nil
}

// CreateEntry validates and persists a new ledger entry.
// Implements portssvc.EntrySvcFacade
func (s *entryService) CreateEntry(ctx context.Context, req dto.SaveEntryRequest, creatorUserID string) (*domain.LedgerEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	entry, err := s.validateAndClean(req)
	if err != nil {
		logger.Warn("Entry failed validation", slog.String("error", err.Error()))
		return nil, err
	}

	if err := s.resolveAccounts(ctx, &entry); err != nil {
		logger.Warn("Entry references bad accounts", slog.String("error", err.Error()))
		return nil, err
	}

	now := time.Now()
	entry.Status = domain.EntryDraft
	entry.AuditFields = domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     creatorUserID,
		LastUpdatedAt: now,
		LastUpdatedBy: creatorUserID,
	}

	entryID, err := s.entryRepo.SaveEntry(ctx, entry)
	if err != nil {
		logger.Error("Failed to save entry", slog.String("error", err.Error()))
		return nil, err
	}
	entry.ID = entryID

	metrics.EntryCreated()
	logger.Info("Ledger entry created", slog.Int64("entry_id", entryID), slog.String("entry_number", entry.EntryNumber))
	return &entry, nil
}

// GetEntryByID retrieves an entry with its lines.
func (s *entryService) GetEntryByID(ctx context.Context, entryID int64) (*domain.LedgerEntry, error) {
	return s.entryRepo.FindEntryByID(ctx, entryID)
}

// ListEntries retrieves a page of entries.
func (s *entryService) ListEntries(ctx context.Context, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	if params.NextToken != nil {
		if _, _, err := pagination.DecodeToken(*params.NextToken); err != nil {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
	}

	entries, nextToken, err := s.entryRepo.ListEntries(ctx, params.Limit, params.NextToken, params.SourceModule)
	if err != nil {
		return nil, err
	}

	return &dto.ListEntriesResponse{
		Entries:   dto.ToEntryResponses(entries),
		NextToken: nextToken,
	}, nil
}

// UpdateEntry validates and replaces a draft-status entry.
func (s *entryService) UpdateEntry(ctx context.Context, entryID int64, req dto.SaveEntryRequest, userID string) (*domain.LedgerEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	existing, err := s.entryRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if !existing.Editable() {
		return nil, ErrEntryNotEditable
	}

	entry, err := s.validateAndClean(req)
	if err != nil {
		logger.Warn("Entry update failed validation", slog.Int64("entry_id", entryID), slog.String("error", err.Error()))
		return nil, err
	}

	if err := s.resolveAccounts(ctx, &entry); err != nil {
		logger.Warn("Entry update references bad accounts", slog.String("error", err.Error()))
		return nil, err
	}

	entry.ID = entryID
	// The entry number is immutable once the entry exists.
	entry.EntryNumber = existing.EntryNumber
	entry.Status = existing.Status
	entry.AuditFields = existing.AuditFields
	entry.LastUpdatedAt = time.Now()
	entry.LastUpdatedBy = userID
	for i := range entry.Lines {
		entry.Lines[i].EntryID = entryID
	}

	if err := s.entryRepo.UpdateEntry(ctx, entry); err != nil {
		logger.Error("Failed to update entry", slog.Int64("entry_id", entryID), slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Ledger entry updated", slog.Int64("entry_id", entryID))
	return &entry, nil
}

// DeleteEntry removes a draft-status entry.
func (s *entryService) DeleteEntry(ctx context.Context, entryID int64, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	existing, err := s.entryRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return err
	}
	if !existing.Editable() {
		return ErrEntryNotEditable
	}

	if err := s.entryRepo.DeleteEntry(ctx, entryID); err != nil {
		logger.Error("Failed to delete entry", slog.Int64("entry_id", entryID), slog.String("error", err.Error()))
		return err
	}

	logger.Info("Ledger entry deleted", slog.Int64("entry_id", entryID), slog.String("deleted_by", userID))
	return nil
}

// PostEntry finalizes a draft entry into the permanent ledger. Posted entries
// are immutable from then on.
func (s *entryService) PostEntry(ctx context.Context, entryID int64, userID string) (*domain.LedgerEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	entry, err := s.entryRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.Status != domain.EntryDraft {
		return nil, ErrEntryNotDraft
	}

	// Re-validate before posting: hydrated data is not trusted blindly.
	if res := draft.FromEntry(*entry).Validate(); !res.Valid {
		metrics.ValidationFailed()
		return nil, apperrors.NewValidationError(res.Errors)
	}

	now := time.Now()
	if err := s.entryRepo.UpdateEntryStatus(ctx, entryID, domain.EntryPosted, userID, now); err != nil {
		logger.Error("Failed to post entry", slog.Int64("entry_id", entryID), slog.String("error", err.Error()))
		return nil, err
	}

	entry.Status = domain.EntryPosted
	entry.LastUpdatedAt = now
	entry.LastUpdatedBy = userID

	metrics.EntryPosted()
	logger.Info("Ledger entry posted", slog.Int64("entry_id", entryID))
	return entry, nil
}

// ReverseEntry creates the equal-and-opposite entry for a posted entry and
// marks the original reversed.
func (s *entryService) ReverseEntry(ctx context.Context, entryID int64, userID string) (*domain.LedgerEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	original, err := s.entryRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if original.Status != domain.EntryPosted {
		return nil, ErrEntryNotPosted
	}

	now := time.Now()
	reversal := domain.LedgerEntry{
		EntryNumber:     fmt.Sprintf("JE%d", now.UnixMilli()),
		TransactionDate: time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
		Description:     fmt.Sprintf("Reversal of %s", original.EntryNumber),
		Reference:       original.Reference,
		TotalDebit:      original.TotalCredit,
		TotalCredit:     original.TotalDebit,
		Status:          domain.EntryPosted,
		SourceModule:    original.SourceModule,
		OriginalEntryID: &original.ID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	for _, ln := range original.Lines {
		reversal.Lines = append(reversal.Lines, domain.LedgerLine{
			AccountID:    ln.AccountID,
			AccountName:  ln.AccountName,
			Description:  ln.Description,
			DebitAmount:  ln.CreditAmount,
			CreditAmount: ln.DebitAmount,
		})
	}

	reversalID, err := s.entryRepo.SaveReversal(ctx, *original, reversal)
	if err != nil {
		logger.Error("Failed to reverse entry", slog.Int64("entry_id", entryID), slog.String("error", err.Error()))
		return nil, err
	}
	reversal.ID = reversalID
	for i := range reversal.Lines {
		reversal.Lines[i].EntryID = reversalID
	}

	metrics.EntryReversed()
	logger.Info("Ledger entry reversed", slog.Int64("entry_id", entryID), slog.Int64("reversing_entry_id", reversalID))
	return &reversal, nil
}

// ValidateEntry runs the draft validator without touching persistence. Useful
// for editor UIs that validate on every keystroke.
func (s *entryService) ValidateEntry(req dto.SaveEntryRequest) (draft.Result, error) {
	d, err := req.ToDraft()
	if err != nil {
		return draft.Result{}, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}
	return d.Validate(), nil
}
