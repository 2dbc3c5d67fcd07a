package dto

import (
	"time"

	"github.com/sebenza-books/sebenza_ledger/internal/core/domain"
	"github.com/sebenza-books/sebenza_ledger/internal/core/draft"
	"github.com/sebenza-books/sebenza_ledger/internal/utils"
	"github.com/shopspring/decimal"
)

// LedgerLineRequest carries one line of an entry being created or edited.
// Amounts travel as two-decimal strings, exactly as the editor holds them.
type LedgerLineRequest struct {
	ID           int64  `json:"id,omitempty"`
	AccountID    int64  `json:"accountId" binding:"min=0"`
	Description  string `json:"description"`
	DebitAmount  string `json:"debitAmount" binding:"omitempty,amount2dp"`
	CreditAmount string `json:"creditAmount" binding:"omitempty,amount2dp"`
}

// SaveEntryRequest defines the payload for creating, updating or dry-run
// validating a ledger entry. Header-field requirements (description, date)
// are deliberately not enforced by binding tags: the draft validator reports
// them as user-facing messages alongside the accounting rules.
type SaveEntryRequest struct {
	EntryNumber     string              `json:"entryNumber"`
	TransactionDate string              `json:"transactionDate"`
	Description     string              `json:"description"`
	Reference       string              `json:"reference"`
	SourceModule    string              `json:"sourceModule"`
	Lines           []LedgerLineRequest `json:"lines" binding:"omitempty,dive"`
}

// ToDraft hydrates an editor draft from the request. A request without an
// entry number or date inherits the defaults of a fresh draft.
func (r SaveEntryRequest) ToDraft() (*draft.Draft, error) {
	d := draft.New()
	if r.EntryNumber != "" {
		d.EntryNumber = r.EntryNumber
	}
	if r.TransactionDate != "" {
		d.TransactionDate = r.TransactionDate
	}
	d.Description = r.Description
	d.Reference = r.Reference
	d.SourceModule = r.SourceModule

	if len(r.Lines) > 0 {
		lines := make([]draft.Line, len(r.Lines))
		for i, lr := range r.Lines {
			debit, err := parseWireAmount(lr.DebitAmount)
			if err != nil {
				return nil, err
			}
			credit, err := parseWireAmount(lr.CreditAmount)
			if err != nil {
				return nil, err
			}
			lines[i] = draft.Line{
				ID:           lr.ID,
				AccountID:    lr.AccountID,
				Description:  lr.Description,
				DebitAmount:  debit,
				CreditAmount: credit,
			}
		}
		if err := d.SetLines(lines); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// LedgerLineResponse defines the data returned for a single entry line.
type LedgerLineResponse struct {
	ID           int64  `json:"id"`
	AccountID    int64  `json:"accountId"`
	AccountName  string `json:"accountName,omitempty"`
	Description  string `json:"description,omitempty"`
	DebitAmount  string `json:"debitAmount"`
	CreditAmount string `json:"creditAmount"`
}

// EntryResponse defines the data returned for a ledger entry.
type EntryResponse struct {
	ID               int64                `json:"id"`
	EntryNumber      string               `json:"entryNumber"`
	TransactionDate  string               `json:"transactionDate"` // YYYY-MM-DD
	Description      string               `json:"description"`
	Reference        string               `json:"reference,omitempty"`
	TotalDebit       string               `json:"totalDebit"`
	TotalCredit      string               `json:"totalCredit"`
	IsPosted         bool                 `json:"isPosted"`
	IsReversed       bool                 `json:"isReversed"`
	SourceModule     string               `json:"sourceModule,omitempty"`
	OriginalEntryID  *int64               `json:"originalEntryId,omitempty"`
	ReversingEntryID *int64               `json:"reversingEntryId,omitempty"`
	Lines            []LedgerLineResponse `json:"lines"`
	CreatedAt        time.Time            `json:"createdAt"`
	CreatedBy        string               `json:"createdBy"`
	LastUpdatedAt    time.Time            `json:"lastUpdatedAt"`
	LastUpdatedBy    string               `json:"lastUpdatedBy"`
}

// ListEntriesParams defines query parameters for listing entries.
type ListEntriesParams struct {
	Limit        int     `form:"limit,default=20" binding:"omitempty,min=1,max=100"`
	NextToken    *string `form:"nextToken"`
	SourceModule string  `form:"sourceModule"`
}

// ListEntriesResponse is the paged response for listing entries.
type ListEntriesResponse struct {
	Entries   []EntryResponse `json:"entries"`
	NextToken *string         `json:"nextToken,omitempty"`
}

// ValidationResultResponse mirrors draft.Result for the dry-run endpoint.
type ValidationResultResponse struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// ToEntryResponse converts a domain.LedgerEntry to its wire shape.
func ToEntryResponse(e *domain.LedgerEntry) EntryResponse {
	resp := EntryResponse{
		ID:               e.ID,
		EntryNumber:      e.EntryNumber,
		TransactionDate:  e.TransactionDate.Format(draft.DateFormat),
		Description:      e.Description,
		Reference:        e.Reference,
		TotalDebit:       utils.FormatAmount(e.TotalDebit),
		TotalCredit:      utils.FormatAmount(e.TotalCredit),
		IsPosted:         e.IsPosted(),
		IsReversed:       e.IsReversed(),
		SourceModule:     e.SourceModule,
		OriginalEntryID:  e.OriginalEntryID,
		ReversingEntryID: e.ReversingEntryID,
		Lines:            make([]LedgerLineResponse, len(e.Lines)),
		CreatedAt:        e.CreatedAt,
		CreatedBy:        e.CreatedBy,
		LastUpdatedAt:    e.LastUpdatedAt,
		LastUpdatedBy:    e.LastUpdatedBy,
	}
	for i, ln := range e.Lines {
		resp.Lines[i] = LedgerLineResponse{
			ID:           ln.ID,
			AccountID:    ln.AccountID,
			AccountName:  ln.AccountName,
			Description:  ln.Description,
			DebitAmount:  utils.FormatAmount(ln.DebitAmount),
			CreditAmount: utils.FormatAmount(ln.CreditAmount),
		}
	}
	return resp
}

// ToEntryResponses converts a slice of domain entries.
func ToEntryResponses(entries []domain.LedgerEntry) []EntryResponse {
	responses := make([]EntryResponse, len(entries))
	for i := range entries {
		responses[i] = ToEntryResponse(&entries[i])
	}
	return responses
}

func parseWireAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
