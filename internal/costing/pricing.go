package costing

import "rasyon-backend/internal/models"

const DefaultCostMultiplier = 3.0

// Reprice: maliyet değiştiğinde satış fiyatını sabit tutar ve çarpanı yeniden çözer.
// Maliyet sıfırsa fiyat ve önceki çarpan olduğu gibi kalır; maliyet geri geldiğinde
// çarpan aynı fiyattan tekrar çözülür.
func Reprice(r models.Recipe, total float64) models.Recipe {
	r.TotalCost = total
	switch {
	case total <= 0:
		return r
	case r.CalculatedPrice > 0:
		r.CostMultiplier = r.CalculatedPrice / total
	default:
		r.CalculatedPrice = total * r.CostMultiplier
	}
	return r
}

// PriceFromMultiplier: kullanıcı çarpanı girdiğinde satış fiyatı
func PriceFromMultiplier(r models.Recipe, multiplier float64) models.Recipe {
	r.CostMultiplier = multiplier
	r.CalculatedPrice = r.TotalCost * multiplier
	return r
}

// PriceFromSalePrice: kullanıcı satış fiyatını girdiğinde çarpan.
// Maliyet sıfırken fiyat sabitlenemez, ok=false döner.
func PriceFromSalePrice(r models.Recipe, price float64) (models.Recipe, bool) {
	if r.TotalCost <= 0 {
		return r, false
	}
	r.CalculatedPrice = price
	r.CostMultiplier = price / r.TotalCost
	return r, true
}
