package tax

import (
	"math"
	"sort"
)

type VATResult struct {
	IncomeVAT     float64 `json:"incomeVat"`
	DeductibleVAT float64 `json:"deductibleVat"`
	CarryIn       float64 `json:"carryIn"`
	Payable       float64 `json:"payableVat"`
	CarryOver     float64 `json:"carryOverToNext"`
}

// VAT: hesaplanan KDV'den indirilecek KDV ve devreden KDV düşülür.
// Payable ve CarryOver aynı anda pozitif olamaz.
func VAT(revenue, ratePercent, deductible, carryIn float64) VATResult {
	income := revenue * ratePercent / 100
	return VATResult{
		IncomeVAT:     income,
		DeductibleVAT: deductible,
		CarryIn:       carryIn,
		Payable:       math.Max(0, income-deductible-carryIn),
		CarryOver:     math.Max(0, deductible+carryIn-income),
	}
}

// MonthVAT: devir zinciri için bir ayın KDV özeti
type MonthVAT struct {
	Month         string
	Closed        bool
	IncomeVAT     float64
	DeductibleVAT float64
}

// CarryIn: hedef aydan önceki kapanmış ayları kronolojik sırayla katlayarak
// hedef aya devreden KDV'yi bulur.
func CarryIn(months []MonthVAT, target string) float64 {
	sorted := make([]MonthVAT, 0, len(months))
	for _, m := range months {
		if m.Closed && m.Month < target {
			sorted = append(sorted, m)
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Month < sorted[j].Month })

	carry := 0.0
	for _, m := range sorted {
		carry = math.Max(0, m.DeductibleVAT+carry-m.IncomeVAT)
	}
	return carry
}
