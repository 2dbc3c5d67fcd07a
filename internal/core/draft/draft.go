// Package draft holds the in-memory editing model for a ledger entry and the
// double-entry validation that gates persistence. Everything here is pure and
// synchronous; persistence is the caller's concern.
package draft

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sebenza-books/sebenza_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

var (
	ErrReadOnly     = errors.New("entry is posted or reversed and cannot be edited")
	ErrMinLines     = errors.New("entry must keep at least two lines")
	ErrNoSuchLine   = errors.New("line index out of range")
	ErrUnknownField = errors.New("unknown line field")
	ErrBadAmount    = errors.New("amount must be a non-negative decimal")
	ErrBadAccountID = errors.New("account id must be a non-negative integer")
)

// DateFormat is the calendar-date layout used throughout the editor.
const DateFormat = "2006-01-02"

// minLines is the floor enforced on line removal; new drafts are seeded with
// exactly this many blank lines.
const minLines = 2

// Field names a mutable attribute of a draft line.
type Field string

const (
	FieldAccountID    Field = "accountId"
	FieldDescription  Field = "description"
	FieldDebitAmount  Field = "debitAmount"
	FieldCreditAmount Field = "creditAmount"
)

// Line is a single debit-or-credit posting being edited.
type Line struct {
	ID           int64
	AccountID    int64
	Description  string
	DebitAmount  decimal.Decimal
	CreditAmount decimal.Decimal
}

// Draft is the entry being created or edited. Totals are derived from Lines
// and recomputed after every line mutation; they are never set directly.
type Draft struct {
	ID              int64
	EntryNumber     string
	TransactionDate string // DateFormat, empty until the user picks a date
	Description     string
	Reference       string
	SourceModule    string
	Lines           []Line
	TotalDebit      decimal.Decimal
	TotalCredit     decimal.Decimal

	posted   bool
	reversed bool
}

// New returns a fresh draft for a new entry: a time-based entry number,
// today's date and two blank lines.
func New() *Draft {
	now := time.Now()
	d := &Draft{
		EntryNumber:     fmt.Sprintf("JE%d", now.UnixMilli()),
		TransactionDate: now.Format(DateFormat),
		Lines:           []Line{blankLine(), blankLine()},
	}
	d.recalcTotals()
	return d
}

// FromEntry hydrates a draft from a previously persisted entry, copying all
// fields verbatim. Posted and reversed entries hydrate into read-only drafts.
func FromEntry(e domain.LedgerEntry) *Draft {
	d := &Draft{
		ID:              e.ID,
		EntryNumber:     e.EntryNumber,
		TransactionDate: e.TransactionDate.Format(DateFormat),
		Description:     e.Description,
		Reference:       e.Reference,
		SourceModule:    e.SourceModule,
		Lines:           make([]Line, len(e.Lines)),
		posted:          e.IsPosted(),
		reversed:        e.IsReversed(),
	}
	for i, ln := range e.Lines {
		d.Lines[i] = Line{
			ID:           ln.ID,
			AccountID:    ln.AccountID,
			Description:  ln.Description,
			DebitAmount:  ln.DebitAmount,
			CreditAmount: ln.CreditAmount,
		}
	}
	d.recalcTotals()
	return d
}

// ReadOnly reports whether the draft refuses structural mutation.
func (d *Draft) ReadOnly() bool {
	return d.posted || d.reversed
}

// SetLines replaces the draft's lines wholesale and recomputes the totals.
// Used when hydrating a draft from an external payload.
func (d *Draft) SetLines(lines []Line) error {
	if d.ReadOnly() {
		return ErrReadOnly
	}
	d.Lines = lines
	d.recalcTotals()
	return nil
}

// AddLine appends one blank line. Totals are unaffected since the new line is
// zero-valued.
func (d *Draft) AddLine() error {
	if d.ReadOnly() {
		return ErrReadOnly
	}
	d.Lines = append(d.Lines, blankLine())
	return nil
}

// RemoveLine removes the line at index. Removal is refused once only the
// minimum two lines remain.
func (d *Draft) RemoveLine(index int) error {
	if d.ReadOnly() {
		return ErrReadOnly
	}
	if index < 0 || index >= len(d.Lines) {
		return ErrNoSuchLine
	}
	if len(d.Lines) <= minLines {
		return ErrMinLines
	}
	d.Lines = append(d.Lines[:index], d.Lines[index+1:]...)
	d.recalcTotals()
	return nil
}

// UpdateLine sets one field of the line at index from its string form and
// recomputes the totals.
//
// Setting a debit amount greater than zero forcibly resets the line's credit
// to zero, and vice versa. The reset is conditional on the new value being
// positive: writing "0.00" to one side leaves the other side untouched.
func (d *Draft) UpdateLine(index int, field Field, value string) error {
	if d.ReadOnly() {
		return ErrReadOnly
	}
	if index < 0 || index >= len(d.Lines) {
		return ErrNoSuchLine
	}
	line := &d.Lines[index]

	switch field {
	case FieldAccountID:
		id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil || id < 0 {
			return ErrBadAccountID
		}
		line.AccountID = id
	case FieldDescription:
		line.Description = value
	case FieldDebitAmount:
		amt, err := parseAmount(value)
		if err != nil {
			return err
		}
		line.DebitAmount = amt
		if amt.IsPositive() {
			line.CreditAmount = decimal.Zero
		}
	case FieldCreditAmount:
		amt, err := parseAmount(value)
		if err != nil {
			return err
		}
		line.CreditAmount = amt
		if amt.IsPositive() {
			line.DebitAmount = decimal.Zero
		}
	default:
		return ErrUnknownField
	}

	d.recalcTotals()
	return nil
}

// PrepareForSave produces the clean entry handed to persistence: totals are
// recomputed and lines where both amounts are zero are dropped (they are
// editing scratch rows, not postings). Callers run Validate first; the only
// failure left here is an unparseable transaction date.
func (d *Draft) PrepareForSave() (domain.LedgerEntry, error) {
	txnDate, err := time.Parse(DateFormat, d.TransactionDate)
	if err != nil {
		return domain.LedgerEntry{}, fmt.Errorf("invalid transaction date %q: %w", d.TransactionDate, err)
	}

	entry := domain.LedgerEntry{
		ID:              d.ID,
		EntryNumber:     d.EntryNumber,
		TransactionDate: txnDate,
		Description:     d.Description,
		Reference:       d.Reference,
		SourceModule:    d.SourceModule,
		Status:          domain.EntryDraft,
	}

	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	for _, ln := range d.Lines {
		if ln.DebitAmount.IsZero() && ln.CreditAmount.IsZero() {
			continue
		}
		entry.Lines = append(entry.Lines, domain.LedgerLine{
			ID:           ln.ID,
			EntryID:      d.ID,
			AccountID:    ln.AccountID,
			Description:  ln.Description,
			DebitAmount:  ln.DebitAmount,
			CreditAmount: ln.CreditAmount,
		})
		totalDebit = totalDebit.Add(ln.DebitAmount)
		totalCredit = totalCredit.Add(ln.CreditAmount)
	}
	entry.TotalDebit = totalDebit.Round(2)
	entry.TotalCredit = totalCredit.Round(2)

	return entry, nil
}

// recalcTotals recomputes the derived debit/credit totals from the lines.
func (d *Draft) recalcTotals() {
	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	for _, ln := range d.Lines {
		totalDebit = totalDebit.Add(ln.DebitAmount)
		totalCredit = totalCredit.Add(ln.CreditAmount)
	}
	d.TotalDebit = totalDebit
	d.TotalCredit = totalCredit
}

func blankLine() Line {
	return Line{
		DebitAmount:  decimal.Zero,
		CreditAmount: decimal.Zero,
	}
}

// parseAmount parses a user-entered amount string. Empty input reads as zero,
// matching a cleared form field.
func parseAmount(value string) (decimal.Decimal, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Zero, nil
	}
	amt, err := decimal.NewFromString(value)
	if err != nil || amt.IsNegative() {
		return decimal.Zero, ErrBadAmount
	}
	return amt, nil
}
