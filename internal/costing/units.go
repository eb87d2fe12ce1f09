package costing

import "rasyon-backend/internal/models"

type dimension int

const (
	dimUnknown dimension = iota
	dimMass
	dimVolume
	dimCount
)

// gr ve ml taban birimdir
func unitInfo(u models.Unit) (dimension, float64) {
	switch u {
	case models.UnitKg:
		return dimMass, 1000
	case models.UnitGr:
		return dimMass, 1
	case models.UnitLt:
		return dimVolume, 1000
	case models.UnitMl:
		return dimVolume, 1
	case models.UnitPiece:
		return dimCount, 1
	}
	return dimUnknown, 0
}

// ConvertPrice: "from" birimi başına fiyatı "to" birimi başına fiyata çevirir.
// Birimler aynı boyutta değilse ok=false döner.
func ConvertPrice(price float64, from, to models.Unit) (float64, bool) {
	if from == to {
		return price, true
	}
	fd, ff := unitInfo(from)
	td, tf := unitInfo(to)
	if fd == dimUnknown || fd != td {
		return price, false
	}
	return price * tf / ff, true
}
