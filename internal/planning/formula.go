// Package planning satış hedeflerinden aylık bütçe (bilanço) projeksiyonu.
package planning

import (
	"errors"
	"fmt"

	"rasyon-backend/internal/models"
)

var ErrUnknownFormula = errors.New("bilinmeyen gider formülü")

// Basis: otomatik giderlerin hesaplandığı aylık büyüklükler (KDV dahil)
type Basis struct {
	GrossRevenue          float64
	FoodCost              float64
	TakeawayUnits         float64
	TakeawayRevenue       float64
	PackagingCostPerOrder float64
}

type evaluator func(b Basis, rate float64) float64

var evaluators = map[models.FormulaKind]evaluator{
	models.FormulaRevenuePercent: func(b Basis, rate float64) float64 {
		return b.GrossRevenue * rate / 100
	},
	models.FormulaFoodCost: func(b Basis, rate float64) float64 {
		return b.FoodCost * fullIfZero(rate) / 100
	},
	models.FormulaPackaging: func(b Basis, rate float64) float64 {
		return b.TakeawayUnits * b.PackagingCostPerOrder * fullIfZero(rate) / 100
	},
	models.FormulaCourier: func(b Basis, rate float64) float64 {
		return b.TakeawayRevenue * rate / 100
	},
}

// oran girilmemişse tutarın tamamı
func fullIfZero(rate float64) float64 {
	if rate == 0 {
		return 100
	}
	return rate
}

// Evaluate: otomatik giderin aylık KDV dahil tutarı
func Evaluate(f models.ExpenseFormula, b Basis) (float64, error) {
	fn, ok := evaluators[f.Kind]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownFormula, f.Kind)
	}
	return fn(b, f.Rate), nil
}
