package tax

import "rasyon-backend/internal/models"

// AnnualProgressive: yıllık matraha artan oranlı tarifeyi uygular
func (y YearTable) AnnualProgressive(annual float64) float64 {
	if annual <= 0 {
		return 0
	}
	var tax, lower float64
	for _, b := range y.Brackets {
		if b.UpTo == 0 || annual <= b.UpTo {
			return tax + (annual-lower)*b.Rate
		}
		tax += (b.UpTo - lower) * b.Rate
		lower = b.UpTo
	}
	return tax
}

// MonthlyIncomeTax: aylık kâr üzerinden aylık vergi yükü.
// Limited: kârın sabit oranı. Şahıs: kâr x 12 yıllığa çevrilir, tarife uygulanır, 12'ye bölünür.
func (y YearTable) MonthlyIncomeTax(companyType models.CompanyType, monthlyProfit float64) float64 {
	if monthlyProfit <= 0 {
		return 0
	}
	if companyType == models.CompanyLimited {
		return monthlyProfit * y.CorporateRate
	}
	return y.AnnualProgressive(monthlyProfit*12) / 12
}
