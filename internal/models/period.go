package models

import (
	"fmt"
	"strings"
	"time"
)

// MonthNames are the reporting month names in calendar order
var MonthNames = [12]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

// Period is a reporting (month, year) pair. Month always holds one of MonthNames.
type Period struct {
	Month string `json:"month"`
	Year  int    `json:"year"`
}

// ParseMonth returns the canonical month name for s, accepting any letter case
// and the numbers 1 through 12.
func ParseMonth(s string) (string, error) {
	s = strings.TrimSpace(s)
	for i, name := range MonthNames {
		if strings.EqualFold(s, name) || s == fmt.Sprint(i+1) {
			return name, nil
		}
	}
	return "", fmt.Errorf("unknown month %q", s)
}

// NewPeriod validates month and year and returns the canonical period
func NewPeriod(month string, year int) (Period, error) {
	name, err := ParseMonth(month)
	if err != nil {
		return Period{}, err
	}
	if year < 2000 || year > 9999 {
		return Period{}, fmt.Errorf("invalid year %d", year)
	}
	return Period{Month: name, Year: year}, nil
}

// PeriodOf returns the period containing t
func PeriodOf(t time.Time) Period {
	return Period{Month: MonthNames[t.Month()-1], Year: t.Year()}
}

// PreviousPeriod returns the calendar month before the one containing now.
// Reports submitted in a month always belong to the month before.
func PreviousPeriod(now time.Time) Period {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return PeriodOf(first.AddDate(0, -1, 0))
}

// MonthNumber returns 1..12, or 0 for a period that was not built through NewPeriod
func (p Period) MonthNumber() int {
	for i, name := range MonthNames {
		if name == p.Month {
			return i + 1
		}
	}
	return 0
}

// Matches reports whether month and year denote this period
func (p Period) Matches(month string, year int) bool {
	return year == p.Year && strings.EqualFold(month, p.Month)
}

func (p Period) String() string {
	return fmt.Sprintf("%s %d", p.Month, p.Year)
}
