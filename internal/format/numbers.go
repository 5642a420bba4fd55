// Package format holds presentation helpers used by the API responses.
// Output follows Colombian Spanish conventions.
package format

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const DefaultCurrency = "COP"

var (
	colombia = language.MustParse("es-CO")
	printer  = message.NewPrinter(colombia)

	currencySymbols = map[string]string{
		"COP": "$",
		"USD": "US$",
		"EUR": "€",
	}
)

// Currency renders amount with es-CO digit grouping, e.g. "$ 50.000".
// A non-breaking space separates the symbol from the digits. Unknown
// codes are printed as given.
func Currency(amount decimal.Decimal, code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		code = DefaultCurrency
	}

	symbol := code
	if unit, err := currency.ParseISO(code); err == nil {
		symbol = unit.String()
	}
	if s, ok := currencySymbols[symbol]; ok {
		symbol = s
	}

	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Abs()
	}

	digits := printer.Sprintf("%v", number.Decimal(amount.InexactFloat64(),
		number.MinFractionDigits(0),
		number.MaxFractionDigits(2),
	))
	return sign + symbol + "\u00a0" + digits
}

// Percentage renders a ratio (0.25) as "25.00%".
func Percentage(value float64, decimals int) string {
	if decimals < 0 {
		decimals = 0
	}
	return fmt.Sprintf("%.*f%%", decimals, value*100)
}

var sizeUnits = []string{"Bytes", "KB", "MB", "GB"}

func FileSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}
	i := int(math.Floor(math.Log(float64(bytes)) / math.Log(1024)))
	if i >= len(sizeUnits) {
		i = len(sizeUnits) - 1
	}
	return fmt.Sprintf("%.2f %s", float64(bytes)/math.Pow(1024, float64(i)), sizeUnits[i])
}

// Phone formats Colombian numbers: ten local digits, or the same digits
// behind the 57 country code. Anything else is returned untouched.
func Phone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	d := b.String()

	switch {
	case len(d) == 10:
		return d[:3] + " " + d[3:6] + " " + d[6:]
	case len(d) == 12 && strings.HasPrefix(d, "57"):
		return "+57 " + d[2:5] + " " + d[5:8] + " " + d[8:]
	default:
		return phone
	}
}
