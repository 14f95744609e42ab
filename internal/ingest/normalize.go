package ingest

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Day-first layouts tried in order. Single-digit layouts also accept two
// digits. ISO is unambiguous and accepted last.
var dateLayouts = []string{
	"2/1/2006",
	"2/1/06",
	"2-1-2006",
	"2-1-06",
	"2.1.2006",
	"2.1.06",
	"2006-01-02",
}

// ParseDate parses a statement date. A trailing time of day is ignored.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, " T"); i > 0 {
		s = s[:i]
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New("unrecognised date")
}

// amountPlaces is the precision of stored amounts.
const amountPlaces = 2

var errBadAmount = errors.New("not a decimal amount")

// ParseAmount parses a statement amount and rounds it to two places, half
// away from zero.
//
// The rightmost of ',' and '.' is the decimal separator and the other is a
// thousands separator. A separator that occurs more than once with no other
// separator present groups thousands: "1.234.567" is 1234567. A currency
// prefix "R$", inner spaces, parentheses and a trailing minus are accepted.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	if strings.HasSuffix(s, "-") {
		neg = !neg
		s = s[:len(s)-1]
	}
	s = strings.NewReplacer(" ", "", "\u00a0", "", "R$", "", "r$", "").Replace(s)
	switch {
	case strings.HasPrefix(s, "-"):
		neg = !neg
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}

	s, err := canonicalDigits(s)
	if err != nil {
		return decimal.Decimal{}, err
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if neg {
		d = d.Neg()
	}
	return d.Round(amountPlaces), nil
}

// canonicalDigits rewrites s to digits with at most one '.' decimal point.
func canonicalDigits(s string) (string, error) {
	if s == "" {
		return "", errBadAmount
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != ',' && r != '.' {
			return "", errBadAmount
		}
	}

	comma, dot := strings.LastIndexByte(s, ','), strings.LastIndexByte(s, '.')
	var decSep, thouSep string
	switch {
	case comma < 0 && dot < 0:
		return s, nil
	case comma > dot:
		decSep, thouSep = ",", "."
	default:
		decSep, thouSep = ".", ","
	}

	grouped := strings.Contains(s, thouSep)
	s = strings.ReplaceAll(s, thouSep, "")
	switch n := strings.Count(s, decSep); {
	case n == 1:
		s = strings.Replace(s, decSep, ".", 1)
	case grouped:
		return "", errBadAmount
	default:
		s = strings.ReplaceAll(s, decSep, "")
	}
	if strings.Trim(s, ".") == "" {
		return "", errBadAmount
	}
	return s, nil
}
