package services

import (
	"context"

	"github.com/sebenza-books/sebenza_ledger/internal/core/domain"
	"github.com/sebenza-books/sebenza_ledger/internal/core/draft"
	"github.com/sebenza-books/sebenza_ledger/internal/dto"
)

// EntryReaderSvc defines read operations for ledger entries
type EntryReaderSvc interface {
	// GetEntryByID retrieves a specific entry with its lines.
	GetEntryByID(ctx context.Context, entryID int64) (*domain.LedgerEntry, error)

	// ListEntries retrieves a paginated list of entries.
	ListEntries(ctx context.Context, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error)
}

// EntryWriterSvc defines write operations for ledger entries
type EntryWriterSvc interface {
	// CreateEntry validates and persists a new entry with its lines.
	CreateEntry(ctx context.Context, req dto.SaveEntryRequest, creatorUserID string) (*domain.LedgerEntry, error)

	// UpdateEntry validates and replaces an existing draft-status entry.
	UpdateEntry(ctx context.Context, entryID int64, req dto.SaveEntryRequest, userID string) (*domain.LedgerEntry, error)

	// DeleteEntry removes a draft-status entry.
	DeleteEntry(ctx context.Context, entryID int64, userID string) error

	// PostEntry finalizes a draft entry into the permanent ledger.
	PostEntry(ctx context.Context, entryID int64, userID string) (*domain.LedgerEntry, error)

	// ReverseEntry creates the equal-and-opposite entry for a posted entry
	// and marks the original reversed. Returns the reversing entry.
	ReverseEntry(ctx context.Context, entryID int64, userID string) (*domain.LedgerEntry, error)
}

// EntryValidatorSvc exposes dry-run validation for editor UIs.
type EntryValidatorSvc interface {
	// ValidateEntry runs the draft validator without persisting anything.
	ValidateEntry(req dto.SaveEntryRequest) (draft.Result, error)
}

// EntrySvcFacade combines all entry-related service interfaces
type EntrySvcFacade interface {
	EntryReaderSvc
	EntryWriterSvc
	EntryValidatorSvc
}
