package models

type ExpenseKind string

const (
	ExpenseFixed     ExpenseKind = "fixed"
	ExpenseAutomated ExpenseKind = "automated"
)

type FormulaKind string

const (
	FormulaRevenuePercent FormulaKind = "percentage" // cironun yüzdesi
	FormulaFoodCost       FormulaKind = "food_cost"  // gıda maliyeti
	FormulaPackaging      FormulaKind = "packaging"  // paket servis ambalajı
	FormulaCourier        FormulaKind = "courier"    // kurye / platform komisyonu
)

type ExpenseFormula struct {
	Kind FormulaKind `json:"kind" bson:"kind"`
	Rate float64     `json:"rate" bson:"rate"` // yüzde
}

// Expense: aylık gider kalemi. Tutarlar KDV dahildir.
type Expense struct {
	ID      string          `json:"id" bson:"id"`
	Name    string          `json:"name" bson:"name"`
	Group   string          `json:"group,omitempty" bson:"group,omitempty"`
	Kind    ExpenseKind     `json:"kind" bson:"kind"`
	Amount  float64         `json:"amount" bson:"amount"`
	Formula *ExpenseFormula `json:"formula,omitempty" bson:"formula,omitempty"`
	VATRate float64         `json:"vatRate" bson:"vat_rate"`
}
