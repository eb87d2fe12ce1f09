package costing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rasyon-backend/internal/models"
)

func TestConvertPrice(t *testing.T) {
	tests := []struct {
		name     string
		price    float64
		from, to models.Unit
		want     float64
		ok       bool
	}{
		{"same unit", 50, models.UnitKg, models.UnitKg, 50, true},
		{"kg to gr", 100, models.UnitKg, models.UnitGr, 0.1, true},
		{"gr to kg", 0.1, models.UnitGr, models.UnitKg, 100, true},
		{"lt to ml", 40, models.UnitLt, models.UnitMl, 0.04, true},
		{"mass to volume", 40, models.UnitKg, models.UnitLt, 40, false},
		{"piece to mass", 3, models.UnitPiece, models.UnitGr, 3, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ConvertPrice(tc.price, tc.from, tc.to)
			assert.Equal(t, tc.ok, ok)
			assert.InDelta(t, tc.want, got, 1e-9)
		})
	}
}

func pizzaFixture(flourPrice float64) ([]models.RawIngredient, []models.IntermediateProduct, []models.Recipe) {
	raws := []models.RawIngredient{
		{ID: "flour", Name: "Un", Unit: models.UnitKg, Price: flourPrice},
		{ID: "cheese", Name: "Kaşar", Unit: models.UnitKg, Price: 100},
	}
	// base, dough'a bağlı; dizide önce gelir
	inters := []models.IntermediateProduct{
		{
			ID: "base", Name: "Pizza tabanı", ProductionQuantity: 1, ProductionUnit: models.UnitPiece,
			Ingredients: []models.IngredientLine{
				{ID: "l1", Name: "Hamur", Quantity: 500, Unit: models.UnitGr, SourceKind: models.SourceIntermediate, SourceID: "dough"},
			},
		},
		{
			ID: "dough", Name: "Hamur", ProductionQuantity: 2, ProductionUnit: models.UnitKg, PortionWeight: 0.25,
			Ingredients: []models.IngredientLine{
				{ID: "l2", Name: "Un", Quantity: 1, Unit: models.UnitKg, SourceKind: models.SourceRaw, SourceID: "flour"},
				{ID: "l3", Name: "Su", Quantity: 1, Unit: models.UnitLt, Price: 0},
			},
		},
	}
	recipes := []models.Recipe{
		{
			ID: "margherita", Name: "Margherita", CalculatedPrice: 100,
			Ingredients: []models.IngredientLine{
				{ID: "l4", Name: "Taban", Quantity: 1, Unit: models.UnitPiece, SourceKind: models.SourceIntermediate, SourceID: "base"},
				{ID: "l5", Name: "Kaşar", Quantity: 200, Unit: models.UnitGr, SourceKind: models.SourceRaw, SourceID: "cheese"},
				{ID: "l6", Name: "Fesleğen", Quantity: 1, Unit: models.UnitPiece, Price: 2},
			},
		},
	}
	return raws, inters, recipes
}

func TestRecalculate_PropagatesThroughIntermediates(t *testing.T) {
	raws, inters, recipes := pizzaFixture(20)

	outI, outR, err := Recalculate(raws, inters, recipes)
	require.NoError(t, err)

	assert.Equal(t, "base", outI[0].ID, "order is preserved")
	assert.InDelta(t, 20.0, outI[1].TotalCost, 1e-9)
	assert.InDelta(t, 10.0, outI[1].CostPerUnit, 1e-9)
	assert.InDelta(t, 5.0, outI[0].TotalCost, 1e-9)

	r := outR[0]
	assert.InDelta(t, 27.0, r.TotalCost, 1e-9)
	assert.InDelta(t, 100.0, r.CalculatedPrice, 1e-9)
	assert.InDelta(t, 100.0/27.0, r.CostMultiplier, 1e-9)
	assert.InDelta(t, 2.0, r.Ingredients[2].Price, 1e-9, "manual line keeps its price")

	// girdiler değişmemeli
	assert.Equal(t, 0.0, inters[1].TotalCost)
	assert.Equal(t, 0.0, recipes[0].Ingredients[0].Price)

	// un fiyatı iki katına çıkınca satış fiyatı sabit kalır
	raws[0].Price = 40
	_, outR2, err := Recalculate(raws, outI, outR)
	require.NoError(t, err)
	assert.InDelta(t, 32.0, outR2[0].TotalCost, 1e-9)
	assert.InDelta(t, 100.0, outR2[0].CalculatedPrice, 1e-9)
	assert.InDelta(t, outR2[0].TotalCost*outR2[0].CostMultiplier, outR2[0].CalculatedPrice, 1e-9)
}

func TestLinePrice_Portion(t *testing.T) {
	_, inters, _ := pizzaFixture(20)
	inters[1] = ComputeIntermediate(models.IntermediateProduct{
		ID: "dough", ProductionQuantity: 2, ProductionUnit: models.UnitKg, PortionWeight: 0.25,
		Ingredients: []models.IngredientLine{{Quantity: 1, Price: 20}},
	})
	src := NewSources(nil, inters)

	price, ok := src.LinePrice(models.IngredientLine{Quantity: 1, Unit: models.UnitPiece, SourceKind: models.SourceIntermediate, SourceID: "dough"})
	require.True(t, ok)
	assert.InDelta(t, 2.5, price, 1e-9)

	_, ok = src.LinePrice(models.IngredientLine{SourceKind: models.SourceRaw, SourceID: "missing"})
	assert.False(t, ok)
}

func TestOrder_DetectsCycles(t *testing.T) {
	items := []models.IntermediateProduct{
		{ID: "a", Name: "A", Ingredients: []models.IngredientLine{{SourceKind: models.SourceIntermediate, SourceID: "b"}}},
		{ID: "b", Name: "B", Ingredients: []models.IngredientLine{{SourceKind: models.SourceIntermediate, SourceID: "c"}}},
		{ID: "c", Name: "C", Ingredients: []models.IngredientLine{{SourceKind: models.SourceIntermediate, SourceID: "a"}}},
	}

	_, err := Order(items)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCycle))

	var cycle *CycleError
	require.ErrorAs(t, err, &cycle)
	assert.Equal(t, []string{"A", "B", "C", "A"}, cycle.Path)
}

func TestOrder_SelfReference(t *testing.T) {
	items := []models.IntermediateProduct{
		{ID: "a", Name: "A", Ingredients: []models.IngredientLine{{SourceKind: models.SourceIntermediate, SourceID: "a"}}},
	}
	_, err := Order(items)
	assert.ErrorIs(t, err, ErrCycle)
}

func TestOrder_DependenciesFirst(t *testing.T) {
	items := []models.IntermediateProduct{
		{ID: "b", Ingredients: []models.IngredientLine{{SourceKind: models.SourceIntermediate, SourceID: "a"}}},
		{ID: "a"},
	}
	order, err := Order(items)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0}, order)
}

func TestPricingInvariant(t *testing.T) {
	for _, total := range []float64{0, 0.5, 12.75, 340, 9999.99} {
		for _, m := range []float64{0, 1, 2.5, 3.33, 7} {
			r := PriceFromMultiplier(models.Recipe{TotalCost: total}, m)
			assert.InDelta(t, total*m, r.CalculatedPrice, 1e-9)

			r = Reprice(r, total*1.1)
			assert.InDelta(t, r.TotalCost*r.CostMultiplier, r.CalculatedPrice, 1e-6)
		}
	}
}

func TestReprice_ZeroTotalKeepsPriceAndMultiplier(t *testing.T) {
	r := models.Recipe{TotalCost: 10, CostMultiplier: 3, CalculatedPrice: 30}

	r = Reprice(r, 0)
	assert.Equal(t, 0.0, r.TotalCost)
	assert.Equal(t, 3.0, r.CostMultiplier)
	assert.Equal(t, 30.0, r.CalculatedPrice)

	// maliyet geri geldiğinde eski satış fiyatı korunur
	r = Reprice(r, 20)
	assert.Equal(t, 30.0, r.CalculatedPrice)
	assert.Equal(t, 1.5, r.CostMultiplier)
}

func TestReprice_NoPriceUsesMultiplier(t *testing.T) {
	r := Reprice(models.Recipe{CostMultiplier: 2.5}, 8)
	assert.Equal(t, 20.0, r.CalculatedPrice)
	assert.Equal(t, 2.5, r.CostMultiplier)
}

func TestPriceFromSalePrice(t *testing.T) {
	r, ok := PriceFromSalePrice(models.Recipe{TotalCost: 25}, 100)
	require.True(t, ok)
	assert.Equal(t, 4.0, r.CostMultiplier)

	_, ok = PriceFromSalePrice(models.Recipe{}, 100)
	assert.False(t, ok)
}
