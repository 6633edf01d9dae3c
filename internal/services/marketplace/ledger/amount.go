// Package ledger provides the read-side financial aggregation core.
package ledger

import (
	"fmt"
	"strings"
)

// Amount is a signed monetary value in cents. Balances are persisted as
// decimal strings; arithmetic happens on cents to avoid float drift.
type Amount int64

// ParseAmount parses a decimal string such as "150.00" or "-30.5" into cents.
func ParseAmount(raw string) (Amount, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return 0, fmt.Errorf("empty amount")
	}

	negative := false
	switch value[0] {
	case '-':
		negative = true
		value = value[1:]
	case '+':
		value = value[1:]
	}
	if value == "" {
		return 0, fmt.Errorf("amount %q has no digits", raw)
	}

	units := value
	fraction := ""
	if idx := strings.IndexByte(value, '.'); idx >= 0 {
		units = value[:idx]
		fraction = value[idx+1:]
	}
	if units == "" {
		units = "0"
	}
	// "20.5" means 50 cents, not 5.
	switch len(fraction) {
	case 0:
		fraction = "00"
	case 1:
		fraction += "0"
	case 2:
	default:
		fraction = fraction[:2]
	}

	var cents int64
	for _, r := range units {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("amount %q is not numeric", raw)
		}
		cents = cents*10 + int64(r-'0')
	}
	cents *= 100
	for _, r := range fraction {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("amount %q is not numeric", raw)
		}
	}
	cents += int64(fraction[0]-'0')*10 + int64(fraction[1]-'0')

	if negative {
		cents = -cents
	}
	return Amount(cents), nil
}

// CoerceAmount parses a stored balance, treating missing or non-numeric
// values as zero. Balance rows are written by external order flows, so the
// read path degrades instead of failing the whole summary.
func CoerceAmount(raw string) Amount {
	amount, err := ParseAmount(raw)
	if err != nil {
		return 0
	}
	return amount
}

// String renders the amount as a decimal string with two fraction digits.
func (a Amount) String() string {
	cents := int64(a)
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
