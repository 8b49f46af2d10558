package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatMinorUnits renders an integer minor-unit amount as a display string
// with thousand separators, e.g. 450000 -> "450.000". Money never goes
// through floating point.
func FormatMinorUnits(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return sign + formatThousand(amount)
}

// FormatAmountLabel prefixes the currency code for documents.
func FormatAmountLabel(currency string, amount int64) string {
	currency = strings.TrimSpace(currency)
	if currency == "" {
		return FormatMinorUnits(amount)
	}
	return fmt.Sprintf("%s %s", currency, FormatMinorUnits(amount))
}

func formatThousand(n int64) string {
	if n == 0 {
		return "0"
	}
	str := strconv.FormatInt(n, 10)
	var out strings.Builder
	for i, c := range str {
		if i != 0 && (len(str)-i)%3 == 0 {
			out.WriteByte('.')
		}
		out.WriteRune(c)
	}
	return out.String()
}
