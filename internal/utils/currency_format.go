package utils

import (
	"github.com/shopspring/decimal"
)

// FormatRand formats an amount as South African Rand with two decimals.
// Example: amount 100 returns "R100.00"; amount 12.3456 returns "R12.35".
func FormatRand(amount decimal.Decimal) string {
	return "R" + amount.StringFixed(2)
}

// FormatAmount formats an amount with two-decimal precision and no currency
// symbol, for wire DTOs.
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
