package report

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Missing is shown in place of NaN statistics
const Missing = "—"

var printer = message.NewPrinter(language.English)

// FormatNumber renders v with two decimals and thousands grouping
func FormatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Missing
	}
	return printer.Sprintf("%.2f", v)
}

// FormatCount renders an integer with thousands grouping
func FormatCount(n int) string {
	return printer.Sprintf("%d", n)
}
