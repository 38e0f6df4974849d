package utils

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidRange  = errors.New("due date must be after start date")
	ErrInvalidAmount = errors.New("amount must be positive and interest rate must not be negative")
	ErrInvalidDate   = errors.New("invalid date format")
)

var hundred = decimal.NewFromInt(100)

// Interest is the result of an interest computation over a loan term
type Interest struct {
	Months       int             `json:"months"`
	Interest     decimal.Decimal `json:"interest"`
	TotalPayable decimal.Decimal `json:"total_payable"`
}

// CalculateInterest computes flat monthly interest for a loan.
// Formula: principal * ratePercentPerMonth * elapsedMonths / 100
func CalculateInterest(principal, rate decimal.Decimal, start, due time.Time) (Interest, error) {
	if !principal.IsPositive() || rate.IsNegative() {
		return Interest{}, ErrInvalidAmount
	}
	if !due.After(start) {
		return Interest{}, ErrInvalidRange
	}

	months := ElapsedMonths(start, due)

	interest := principal.Mul(rate).Mul(decimal.NewFromInt(int64(months))).Div(hundred).Round(2)
	totalPayable := principal.Add(interest).Round(2)

	return Interest{
		Months:       months,
		Interest:     interest,
		TotalPayable: totalPayable,
	}, nil
}

// ElapsedMonths counts whole calendar months between start and due, never less than 1.
// A due day-of-month earlier than the start day-of-month does not complete the last month.
func ElapsedMonths(start, due time.Time) int {
	months := (due.Year()-start.Year())*12 + int(due.Month()-start.Month())
	if due.Day() < start.Day() {
		months--
	}

	if months < 1 {
		return 1
	}

	return months
}

// CivilDate drops the clock part of t, keeping its calendar date as midnight UTC
func CivilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DiffDays returns the number of calendar days from now (as seen in loc) to the due date.
// Negative values mean the due date has passed.
func DiffDays(dueDate, now time.Time, loc *time.Location) int {
	if loc == nil {
		loc = time.UTC
	}

	today := CivilDate(now.In(loc))
	due := CivilDate(dueDate)

	return int(math.Floor(due.Sub(today).Hours() / 24))
}

// ParseDate accepts YYYY-MM-DD or RFC3339 and returns the calendar date
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrInvalidDate
	}

	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return CivilDate(t), nil
	}

	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}

	return CivilDate(t), nil
}

// FormatDate renders a calendar date the way notifications and ledger notes show it
func FormatDate(t time.Time) string {
	return t.Format("02 Jan 2006")
}
