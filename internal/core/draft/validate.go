package draft

import (
	"fmt"
	"strings"

	"github.com/sebenza-books/sebenza_ledger/internal/utils"
	"github.com/shopspring/decimal"
)

// balanceTolerance absorbs decimal rounding when comparing debit and credit
// totals.
var balanceTolerance = decimal.NewFromFloat(0.01)

// Result carries the outcome of validating a draft. Errors holds every
// violation found, in rule order, so callers can display them together.
type Result struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// Validate checks the draft against the double-entry invariants. It has no
// side effects, never panics, and is safe to call on every edit or only at
// submit time.
//
// Rule order is fixed: description, date, balance, degeneracy, then per-line
// checks. The balance rule and the degeneracy rule are evaluated
// independently; a draft whose totals are both exactly zero passes the
// balance check (zero equals zero) and fails only the degeneracy check.
func (d *Draft) Validate() Result {
	var errs []string

	if strings.TrimSpace(d.Description) == "" {
		errs = append(errs, "Description is required")
	}
	if strings.TrimSpace(d.TransactionDate) == "" {
		errs = append(errs, "Transaction date is required")
	}

	diff := d.TotalDebit.Sub(d.TotalCredit).Abs()
	if diff.GreaterThan(balanceTolerance) {
		errs = append(errs, fmt.Sprintf("Entry is not balanced. Debit: %s, Credit: %s",
			utils.FormatRand(d.TotalDebit), utils.FormatRand(d.TotalCredit)))
	}

	if d.TotalDebit.IsZero() && d.TotalCredit.IsZero() {
		errs = append(errs, "Entry must have at least one debit and one credit")
	}

	for i, ln := range d.Lines {
		// Scratch rows (both amounts zero) are discarded before save and are
		// not held to the per-line rules.
		if ln.DebitAmount.IsZero() && ln.CreditAmount.IsZero() {
			continue
		}
		if ln.AccountID == 0 {
			errs = append(errs, fmt.Sprintf("Line %d: Account is required", i+1))
		}
		// Unreachable through UpdateLine, but hydrated drafts can carry it.
		if ln.DebitAmount.IsPositive() && ln.CreditAmount.IsPositive() {
			errs = append(errs, fmt.Sprintf("Line %d: Cannot have both debit and credit amount", i+1))
		}
	}

	return Result{Valid: len(errs) == 0, Errors: errs}
}
