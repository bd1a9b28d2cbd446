package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Prorate computes the first-month charge for a membership that starts on
// startDate: monthlyPrice × remainingDays / daysInMonth, rounded to two
// decimal places half away from zero. A start on the first of the month pays
// the full monthly price.
func Prorate(monthlyPrice decimal.Decimal, startDate time.Time) decimal.Decimal {
	startDate = DateOf(startDate)
	if startDate.Day() == 1 {
		return monthlyPrice.Round(2)
	}

	days := decimal.NewFromInt(int64(DaysInMonth(startDate)))
	remaining := decimal.NewFromInt(int64(RemainingDaysInMonth(startDate)))
	return monthlyPrice.Mul(remaining).Div(days).Round(2)
}
