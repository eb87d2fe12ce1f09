package models

import "strings"

type Unit string

const (
	UnitKg    Unit = "kg"
	UnitGr    Unit = "gr"
	UnitLt    Unit = "lt"
	UnitMl    Unit = "ml"
	UnitPiece Unit = "adet"
)

// ParseUnit: kullanıcıdan gelen birimi normalize eder ("g" -> "gr", "l" -> "lt" vb.)
func ParseUnit(s string) (Unit, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "kg", "kilo", "kilogram":
		return UnitKg, true
	case "gr", "g", "gram":
		return UnitGr, true
	case "lt", "l", "litre", "liter":
		return UnitLt, true
	case "ml", "mililitre":
		return UnitMl, true
	case "adet", "piece", "pcs", "ad":
		return UnitPiece, true
	}
	return "", false
}
