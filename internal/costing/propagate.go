// Package costing hammadde -> ara ürün -> reçete maliyet yayılımı.
package costing

import (
	"slices"

	"rasyon-backend/internal/models"
)

// Sources: satır fiyatlarının çözüldüğü kaynaklar
type Sources struct {
	raws          map[string]models.RawIngredient
	intermediates map[string]models.IntermediateProduct
}

func NewSources(raws []models.RawIngredient, intermediates []models.IntermediateProduct) Sources {
	s := Sources{
		raws:          make(map[string]models.RawIngredient, len(raws)),
		intermediates: make(map[string]models.IntermediateProduct, len(intermediates)),
	}
	for _, r := range raws {
		s.raws[r.ID] = r
	}
	for _, p := range intermediates {
		s.intermediates[p.ID] = p
	}
	return s
}

// LinePrice: satırın kaynağından satır birimine göre güncel fiyatı.
// Kaynak yoksa veya satır elle girilmişse ok=false.
func (s Sources) LinePrice(line models.IngredientLine) (float64, bool) {
	switch line.SourceKind {
	case models.SourceRaw:
		raw, ok := s.raws[line.SourceID]
		if !ok {
			return 0, false
		}
		price, _ := ConvertPrice(raw.Price, raw.Unit, unitOr(line.Unit, raw.Unit))
		return price, true

	case models.SourceIntermediate:
		p, ok := s.intermediates[line.SourceID]
		if !ok {
			return 0, false
		}
		to := unitOr(line.Unit, p.ProductionUnit)
		if to == models.UnitPiece && p.ProductionUnit != models.UnitPiece && p.PortionWeight > 0 {
			return p.CostPerUnit * p.PortionWeight, true
		}
		price, _ := ConvertPrice(p.CostPerUnit, p.ProductionUnit, to)
		return price, true
	}
	return 0, false
}

// RepriceLines: kaynağı olan satırların fiyatını günceller (yeni dilim döner)
func (s Sources) RepriceLines(lines []models.IngredientLine) []models.IngredientLine {
	out := slices.Clone(lines)
	for i, line := range out {
		if price, ok := s.LinePrice(line); ok {
			out[i].Price = price
		}
	}
	return out
}

func Total(lines []models.IngredientLine) float64 {
	total := 0.0
	for _, l := range lines {
		total += l.Cost()
	}
	return total
}

// ComputeIntermediate: toplam maliyet ve birim maliyeti yeniden hesaplar
func ComputeIntermediate(p models.IntermediateProduct) models.IntermediateProduct {
	p.TotalCost = Total(p.Ingredients)
	p.CostPerUnit = 0
	if p.ProductionQuantity > 0 {
		p.CostPerUnit = p.TotalCost / p.ProductionQuantity
	}
	return p
}

// Recalculate: tüm ara ürün ve reçete maliyetlerini bağımlılık sırasıyla yeniden
// hesaplar. Girdi dilimleri değiştirilmez; sıralama korunur.
func Recalculate(raws []models.RawIngredient, intermediates []models.IntermediateProduct, recipes []models.Recipe) ([]models.IntermediateProduct, []models.Recipe, error) {
	order, err := Order(intermediates)
	if err != nil {
		return nil, nil, err
	}

	src := NewSources(raws, nil)
	outI := slices.Clone(intermediates)
	for _, i := range order {
		p := outI[i]
		p.Ingredients = src.RepriceLines(p.Ingredients)
		p = ComputeIntermediate(p)
		outI[i] = p
		src.intermediates[p.ID] = p
	}

	outR := slices.Clone(recipes)
	for i, r := range outR {
		r.Ingredients = src.RepriceLines(r.Ingredients)
		outR[i] = Reprice(r, Total(r.Ingredients))
	}
	return outI, outR, nil
}

func unitOr(u, fallback models.Unit) models.Unit {
	if u == "" {
		return fallback
	}
	return u
}
