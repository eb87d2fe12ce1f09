// Package money TL tutarlarının yuvarlanması ve biçimlendirilmesi.
package money

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.Turkish)

// Round2: kuruş hassasiyetine yuvarlar
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Format: 1234.5 -> "₺1.234,50"
func Format(v float64) string {
	v = Round2(v)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return sign + "₺" + printer.Sprintf("%.2f", v)
}

// Percent: 12.5 -> "%12,5"
func Percent(v float64) string {
	return "%" + printer.Sprintf("%.1f", v)
}
