package models

import "time"

type TaxMethod string

const (
	TaxMethodVAT    TaxMethod = "vat"    // KDV indirimi
	TaxMethodStopaj TaxMethod = "stopaj" // kira stopajı
	TaxMethodNone   TaxMethod = "none"
)

const InvoiceCategoryRent = "rent"

// Invoice: aylık fatura / gider satırı. Amount KDV hariç net tutardır.
type Invoice struct {
	ID          string    `json:"id" bson:"id"`
	Date        string    `json:"date" bson:"date"` // "2025-03-14"
	Description string    `json:"description" bson:"description"`
	Category    string    `json:"category" bson:"category"`
	Amount      float64   `json:"amount" bson:"amount"`
	VATRate     float64   `json:"vatRate" bson:"vat_rate"`
	TaxMethod   TaxMethod `json:"taxMethod" bson:"tax_method"`
}

// DailySale: günlük satış, ödeme kanalı kırılımıyla (KDV dahil)
type DailySale struct {
	Date     string  `json:"date" bson:"date"`
	Cash     float64 `json:"cash" bson:"cash"`
	Card     float64 `json:"card" bson:"card"`
	MealCard float64 `json:"mealCard" bson:"meal_card"`
	Online   float64 `json:"online" bson:"online"`
}

func (d DailySale) Total() float64 {
	return d.Cash + d.Card + d.MealCard + d.Online
}

// MonthData: aylık muhasebe defteri. Kapanmış ay düzenlenemez.
type MonthData struct {
	Month      string      `json:"month" bson:"month"` // "2025-03"
	Invoices   []Invoice   `json:"invoices" bson:"invoices"`
	DailySales []DailySale `json:"dailySales" bson:"daily_sales"`
	IsClosed   bool        `json:"isClosed" bson:"is_closed"`
	ClosedAt   *time.Time  `json:"closedAt,omitempty" bson:"closed_at,omitempty"`
}
