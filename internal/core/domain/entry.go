package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus indicates the state of a ledger entry.
type EntryStatus string

const (
	EntryDraft    EntryStatus = "DRAFT"
	EntryPosted   EntryStatus = "POSTED"
	EntryReversed EntryStatus = "REVERSED"
)

// LedgerEntry represents a single, balanced financial event composed of multiple lines.
type LedgerEntry struct {
	ID              int64           `json:"id"`
	EntryNumber     string          `json:"entryNumber"`     // Human-facing identifier (e.g. JE1736951000000)
	TransactionDate time.Time       `json:"transactionDate"` // Date the event is effective (no time component)
	Description     string          `json:"description"`
	Reference       string          `json:"reference"` // Optional external cross-reference
	TotalDebit      decimal.Decimal `json:"totalDebit"`
	TotalCredit     decimal.Decimal `json:"totalCredit"`
	Status          EntryStatus     `json:"status"`
	SourceModule    string          `json:"sourceModule"` // Originating subsystem tag, display grouping only
	// Reversal linkage - set when an entry is reversed
	OriginalEntryID  *int64       `json:"originalEntryID,omitempty"`
	ReversingEntryID *int64       `json:"reversingEntryID,omitempty"`
	Lines            []LedgerLine `json:"lines,omitempty"` // Often loaded separately
	AuditFields
}

// LedgerLine represents a single debit-or-credit posting within a LedgerEntry.
// At most one of DebitAmount/CreditAmount may be positive on a valid line.
type LedgerLine struct {
	ID           int64           `json:"id"`
	EntryID      int64           `json:"entryID"`
	AccountID    int64           `json:"accountID"` // FK -> Account.ID (0 means unset)
	AccountName  string          `json:"accountName,omitempty"`
	Description  string          `json:"description"`
	DebitAmount  decimal.Decimal `json:"debitAmount"`
	CreditAmount decimal.Decimal `json:"creditAmount"`
}

// IsPosted reports whether the entry has been finalized into the ledger.
func (e *LedgerEntry) IsPosted() bool {
	return e.Status == EntryPosted
}

// IsReversed reports whether the entry has been offset by a reversing entry.
func (e *LedgerEntry) IsReversed() bool {
	return e.Status == EntryReversed
}

// Editable reports whether structural edits (lines, amounts, accounts) are permitted.
// Posted and reversed entries are immutable.
func (e *LedgerEntry) Editable() bool {
	return e.Status == EntryDraft
}
