package domain

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// Account represents an entry in the chart of accounts.
// Ledger lines reference accounts by numeric ID.
type Account struct {
	ID          int64       `json:"id"`
	AccountCode string      `json:"accountCode"` // User-facing code (e.g. "1000")
	AccountName string      `json:"accountName"`
	AccountType AccountType `json:"accountType"`
	Description string      `json:"description"`
	IsActive    bool        `json:"isActive"` // Soft delete flag
	AuditFields
}
