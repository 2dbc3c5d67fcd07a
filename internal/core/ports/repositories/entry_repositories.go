package repositories

import (
	"context"
	"time"

	"github.com/sebenza-books/sebenza_ledger/internal/core/domain"
)

// EntryReader defines read operations for ledger entry data
type EntryReader interface {
	// FindEntryByID retrieves a specific entry, including its lines.
	FindEntryByID(ctx context.Context, entryID int64) (*domain.LedgerEntry, error)

	// ListEntries retrieves a paginated list of entries using token-based
	// pagination, newest transaction date first. It returns the entries, a
	// token for the next page, and an error.
	ListEntries(ctx context.Context, limit int, nextToken *string, sourceModule string) ([]domain.LedgerEntry, *string, error)
}

// EntryWriter defines write operations for ledger entry data
type EntryWriter interface {
	// SaveEntry persists a new entry and its lines within a transaction and
	// returns the assigned entry ID.
	SaveEntry(ctx context.Context, entry domain.LedgerEntry) (int64, error)

	// UpdateEntry replaces an entry's header fields and lines within a transaction.
	UpdateEntry(ctx context.Context, entry domain.LedgerEntry) error

	// DeleteEntry removes an entry and its lines.
	DeleteEntry(ctx context.Context, entryID int64) error

	// UpdateEntryStatus transitions an entry's status (e.g. DRAFT -> POSTED).
	UpdateEntryStatus(ctx context.Context, entryID int64, status domain.EntryStatus, updatedBy string, updatedAt time.Time) error

	// SaveReversal persists the reversing entry and marks the original entry
	// REVERSED with both-way linkage, in a single transaction. It returns the
	// reversing entry's assigned ID.
	SaveReversal(ctx context.Context, original domain.LedgerEntry, reversal domain.LedgerEntry) (int64, error)
}

// EntryRepositoryFacade combines all entry-related repository interfaces
type EntryRepositoryFacade interface {
	EntryReader
	EntryWriter
}

// EntryRepositoryWithTx extends EntryRepositoryFacade with transaction capabilities
type EntryRepositoryWithTx interface {
	EntryRepositoryFacade
	TransactionManager
}
