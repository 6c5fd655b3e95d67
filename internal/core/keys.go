package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Layouts of the canonical document keys.
const (
	DayLayout   = "2006-01-02"
	MonthLayout = "2006-01"
	YearLayout  = "2006"
	labelLayout = "02/01"
)

// MonthNames are the savings keys, January first.
var MonthNames = [12]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

func DayKey(t time.Time) string   { return t.Format(DayLayout) }
func MonthKey(t time.Time) string { return t.Format(MonthLayout) }
func YearKey(t time.Time) string  { return t.Format(YearLayout) }

// DateLabel is the DD/MM label given to a new expense row.
func DateLabel(t time.Time) string { return t.Format(labelLayout) }

// MonthName returns the savings key for m.
func MonthName(m time.Month) string {
	return MonthNames[m-1]
}

// IsMonthName reports whether s is one of MonthNames.
func IsMonthName(s string) bool {
	for _, n := range MonthNames {
		if n == s {
			return true
		}
	}
	return false
}

// ParseMonthName accepts a month name in any case or a month number 1-12
// and returns the savings key.
func ParseMonthName(s string) (string, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 || n > 12 {
			return "", fmt.Errorf("invalid month %d: must be between 1 and 12", n)
		}
		return MonthNames[n-1], nil
	}
	for _, name := range MonthNames {
		if strings.EqualFold(name, s) {
			return name, nil
		}
	}
	return "", fmt.Errorf("invalid month %q", s)
}

// CanonicalDay parses a day key and returns it re-formatted.
func CanonicalDay(s string) (string, error) {
	return canonical(s, DayLayout, "day")
}

// CanonicalMonth parses a month key and returns it re-formatted.
func CanonicalMonth(s string) (string, error) {
	return canonical(s, MonthLayout, "month")
}

// CanonicalYear parses a year key and returns it re-formatted.
func CanonicalYear(s string) (string, error) {
	return canonical(s, YearLayout, "year")
}

func canonical(s, layout, what string) (string, error) {
	t, err := time.Parse(layout, s)
	if err != nil {
		return "", fmt.Errorf("invalid %s key %q: want %s", what, s, layout)
	}
	return t.Format(layout), nil
}
