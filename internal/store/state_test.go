package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rasyon-backend/internal/costing"
	"rasyon-backend/internal/models"
)

// chain: un -> hamur (ara ürün) -> pide (reçete)
func chain(t *testing.T) (State, string, string, string) {
	t.Helper()
	var st State

	st, flour, err := st.AddRawIngredient(models.RawIngredient{Name: "Un", Unit: "kg", Price: 20})
	require.NoError(t, err)

	st, dough, err := st.AddIntermediate(models.IntermediateProduct{
		Name: "Hamur", ProductionQuantity: 2, ProductionUnit: "kg",
		Ingredients: []models.IngredientLine{
			{Quantity: 1, Unit: "kg", SourceKind: models.SourceRaw, SourceID: flour.ID},
		},
	})
	require.NoError(t, err)

	st, recipe, err := st.AddRecipe(models.Recipe{
		Name: "Pide",
		Ingredients: []models.IngredientLine{
			{Quantity: 500, Unit: "gr", SourceKind: models.SourceIntermediate, SourceID: dough.ID},
		},
	})
	require.NoError(t, err)
	return st, flour.ID, dough.ID, recipe.ID
}

func TestAddRawIngredient_PackagePricing(t *testing.T) {
	var st State
	next, raw, err := st.AddRawIngredient(models.RawIngredient{
		Name: " Salça ", Unit: "KG",
		Package: &models.PackagePricing{Quantity: 5, Price: 850},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, raw.ID)
	assert.Equal(t, "Salça", raw.Name)
	assert.Equal(t, models.UnitKg, raw.Unit)
	assert.InDelta(t, 170.0, raw.Price, 1e-9)
	assert.Len(t, next.RawIngredients, 1)
	assert.Empty(t, st.RawIngredients, "receiver is not modified")
}

func TestAddRawIngredient_Validation(t *testing.T) {
	tests := []struct {
		name string
		in   models.RawIngredient
	}{
		{"empty name", models.RawIngredient{Unit: "kg"}},
		{"bad unit", models.RawIngredient{Name: "Un", Unit: "bucket"}},
		{"negative price", models.RawIngredient{Name: "Un", Unit: "kg", Price: -1}},
		{"vat out of range", models.RawIngredient{Name: "Un", Unit: "kg", VATRate: 120}},
		{"empty package", models.RawIngredient{Name: "Un", Unit: "kg", Package: &models.PackagePricing{}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var st State
			_, _, err := st.AddRawIngredient(tc.in)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestRecipeDefaults(t *testing.T) {
	st, _, _, recipeID := chain(t)
	r, ok := st.Recipe(recipeID)
	require.True(t, ok)

	assert.InDelta(t, 5.0, r.TotalCost, 1e-9)
	assert.Equal(t, costing.DefaultCostMultiplier, r.CostMultiplier)
	assert.InDelta(t, 15.0, r.CalculatedPrice, 1e-9)
	assert.Equal(t, "Hamur", r.Ingredients[0].Name, "line name comes from the source")
}

func TestUpdateRawIngredient_HoldsSalePrice(t *testing.T) {
	st, flourID, doughID, recipeID := chain(t)

	raw, _ := st.RawIngredient(flourID)
	raw.Price = 40
	next, _, err := st.UpdateRawIngredient(raw)
	require.NoError(t, err)

	dough, _ := next.Intermediate(doughID)
	assert.InDelta(t, 40.0, dough.TotalCost, 1e-9)
	assert.InDelta(t, 20.0, dough.CostPerUnit, 1e-9)

	r, _ := next.Recipe(recipeID)
	assert.InDelta(t, 10.0, r.TotalCost, 1e-9)
	assert.InDelta(t, 15.0, r.CalculatedPrice, 1e-9)
	assert.InDelta(t, 1.5, r.CostMultiplier, 1e-9)
	assert.InDelta(t, r.TotalCost*r.CostMultiplier, r.CalculatedPrice, 1e-9)

	old, _ := st.Recipe(recipeID)
	assert.InDelta(t, 5.0, old.TotalCost, 1e-9, "previous state is untouched")
}

func TestUpdateIntermediate_RejectsCycle(t *testing.T) {
	st, _, doughID, _ := chain(t)

	st, sauce, err := st.AddIntermediate(models.IntermediateProduct{
		Name: "Sos", ProductionQuantity: 1, ProductionUnit: "kg",
		Ingredients: []models.IngredientLine{
			{Quantity: 1, Unit: "kg", SourceKind: models.SourceIntermediate, SourceID: doughID},
		},
	})
	require.NoError(t, err)

	dough, _ := st.Intermediate(doughID)
	dough.Ingredients = append(dough.Ingredients, models.IngredientLine{
		Quantity: 1, Unit: "kg", SourceKind: models.SourceIntermediate, SourceID: sauce.ID,
	})
	next, _, err := st.UpdateIntermediate(dough)
	require.Error(t, err)
	assert.True(t, errors.Is(err, costing.ErrCycle))

	var cycle *costing.CycleError
	require.ErrorAs(t, err, &cycle)
	assert.Contains(t, cycle.Path, "Sos")

	unchanged, _ := next.Intermediate(doughID)
	assert.Len(t, unchanged.Ingredients, 1)
}

func TestDeleteRawIngredient_Cascades(t *testing.T) {
	st, flourID, doughID, recipeID := chain(t)

	next, err := st.DeleteRawIngredient(flourID)
	require.NoError(t, err)

	dough, _ := next.Intermediate(doughID)
	assert.Empty(t, dough.Ingredients)
	assert.Zero(t, dough.TotalCost)

	r, _ := next.Recipe(recipeID)
	assert.Zero(t, r.TotalCost)
	assert.InDelta(t, 15.0, r.CalculatedPrice, 1e-9, "sale price survives an empty recipe")

	_, err = next.DeleteRawIngredient(flourID)
	assert.ErrorIs(t, err, ErrNotFound)

	// yeni un eklenince aynı satış fiyatından çarpan çözülür
	next, rice, err := next.AddRawIngredient(models.RawIngredient{Name: "Pirinç", Unit: models.UnitKg, Price: 30})
	require.NoError(t, err)
	r.Ingredients = []models.IngredientLine{{Name: "Pirinç", Quantity: 0.5, Unit: models.UnitKg, SourceKind: models.SourceRaw, SourceID: rice.ID}}
	_, r, err = next.UpdateRecipe(r)
	require.NoError(t, err)
	assert.InDelta(t, 15.0, r.TotalCost, 1e-9)
	assert.InDelta(t, 15.0, r.CalculatedPrice, 1e-9)
	assert.InDelta(t, 1.0, r.CostMultiplier, 1e-9)
}

func TestDeleteIntermediate_RemovesLines(t *testing.T) {
	st, _, doughID, recipeID := chain(t)

	next, err := st.DeleteIntermediate(doughID)
	require.NoError(t, err)

	r, _ := next.Recipe(recipeID)
	assert.Empty(t, r.Ingredients)
	assert.Len(t, next.IntermediateProducts, 0)
}

func TestDeleteRecipe_RemovesSalesTarget(t *testing.T) {
	st, _, _, recipeID := chain(t)
	st, err := st.SetSalesTarget(models.SalesTarget{RecipeID: recipeID, DailyRestaurant: 10, DailyTakeaway: 5})
	require.NoError(t, err)
	require.Len(t, st.SalesTargets, 1)

	next, err := st.DeleteRecipe(recipeID)
	require.NoError(t, err)
	assert.Empty(t, next.Recipes)
	assert.Empty(t, next.SalesTargets)
}

func TestSetRecipePricing(t *testing.T) {
	st, _, _, recipeID := chain(t)

	next, r, err := st.SetRecipePricing(recipeID, PricingByPrice, 20)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, r.CostMultiplier, 1e-9)

	_, r, err = next.SetRecipePricing(recipeID, PricingByMultiplier, 2)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, r.CalculatedPrice, 1e-9)

	_, _, err = st.SetRecipePricing(recipeID, "bogus", 1)
	assert.ErrorIs(t, err, ErrValidation)

	st, manual, err := st.AddRecipe(models.Recipe{Name: "Su"})
	require.NoError(t, err)
	_, _, err = st.SetRecipePricing(manual.ID, PricingByPrice, 10)
	assert.ErrorIs(t, err, ErrValidation, "zero-cost recipe cannot be priced by sale price")
}

func TestReorderRecipes(t *testing.T) {
	var st State
	st, a, err := st.AddRecipe(models.Recipe{Name: "A"})
	require.NoError(t, err)
	st, b, err := st.AddRecipe(models.Recipe{Name: "B"})
	require.NoError(t, err)

	next, err := st.ReorderRecipes([]string{b.ID, a.ID})
	require.NoError(t, err)
	assert.Equal(t, "B", next.Recipes[0].Name)
	assert.Equal(t, "A", st.Recipes[0].Name)

	_, err = st.ReorderRecipes([]string{a.ID, a.ID})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = st.ReorderRecipes([]string{a.ID})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCategories(t *testing.T) {
	var st State
	st, cat, err := st.AddRecipeCategory("Pizzalar")
	require.NoError(t, err)

	_, _, err = st.AddRecipeCategory("pizzalar")
	assert.ErrorIs(t, err, ErrValidation, "names are unique case-insensitively")

	st, r, err := st.AddRecipe(models.Recipe{Name: "Margherita", CategoryID: cat.ID})
	require.NoError(t, err)

	st, renamed, err := st.RenameRecipeCategory(cat.ID, "Pizza")
	require.NoError(t, err)
	assert.Equal(t, "Pizza", renamed.Name)

	st, err = st.DeleteRecipeCategory(cat.ID)
	require.NoError(t, err)
	got, _ := st.Recipe(r.ID)
	assert.Empty(t, got.CategoryID)

	_, _, err = st.AddRecipe(models.Recipe{Name: "X", CategoryID: "missing"})
	assert.ErrorIs(t, err, ErrNotFound)

	st, icat, err := st.AddIngredientCategory("Kuru gıda")
	require.NoError(t, err)
	st, raw, err := st.AddRawIngredient(models.RawIngredient{Name: "Un", Unit: "kg", CategoryID: icat.ID})
	require.NoError(t, err)
	st, err = st.DeleteIngredientCategory(icat.ID)
	require.NoError(t, err)
	gotRaw, _ := st.RawIngredient(raw.ID)
	assert.Empty(t, gotRaw.CategoryID)
}

func TestExpenseValidation(t *testing.T) {
	tests := []struct {
		name    string
		in      models.Expense
		wantErr bool
	}{
		{"fixed", models.Expense{Name: "Kira", Kind: models.ExpenseFixed, Amount: 30000}, false},
		{"automated", models.Expense{Name: "Kurye", Kind: models.ExpenseAutomated,
			Formula: &models.ExpenseFormula{Kind: models.FormulaCourier, Rate: 15}}, false},
		{"automated without formula", models.Expense{Name: "X", Kind: models.ExpenseAutomated}, true},
		{"unknown formula", models.Expense{Name: "X", Kind: models.ExpenseAutomated,
			Formula: &models.ExpenseFormula{Kind: "magic"}}, true},
		{"unknown kind", models.Expense{Name: "X", Kind: "weekly"}, true},
		{"negative amount", models.Expense{Name: "X", Kind: models.ExpenseFixed, Amount: -5}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var st State
			next, e, err := st.AddExpense(tc.in)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Len(t, next.Expenses, 1)
			if e.Kind == models.ExpenseFixed {
				assert.Nil(t, e.Formula)
			} else {
				assert.Zero(t, e.Amount)
			}
		})
	}
}

func TestExpenseUpdateDelete(t *testing.T) {
	var st State
	st, e, err := st.AddExpense(models.Expense{Name: "Kira", Kind: models.ExpenseFixed, Amount: 30000})
	require.NoError(t, err)

	e.Amount = 35000
	st, _, err = st.UpdateExpense(e)
	require.NoError(t, err)
	got, _ := st.Expense(e.ID)
	assert.Equal(t, 35000.0, got.Amount)

	st, err = st.DeleteExpense(e.ID)
	require.NoError(t, err)
	assert.Empty(t, st.Expenses)

	_, _, err = st.UpdateExpense(e)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSalesTargets(t *testing.T) {
	st, _, _, recipeID := chain(t)

	_, err := st.SetSalesTarget(models.SalesTarget{RecipeID: "missing"})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = st.SetSalesTarget(models.SalesTarget{RecipeID: recipeID, DailyTakeaway: -1})
	assert.ErrorIs(t, err, ErrValidation)

	st, err = st.SetSalesTarget(models.SalesTarget{RecipeID: recipeID, DailyRestaurant: 3})
	require.NoError(t, err)
	st, err = st.SetSalesTarget(models.SalesTarget{RecipeID: recipeID, DailyRestaurant: 7})
	require.NoError(t, err)
	require.Len(t, st.SalesTargets, 1, "upsert")
	assert.Equal(t, 7, st.SalesTargets[0].DailyRestaurant)

	st, err = st.DeleteSalesTarget(recipeID)
	require.NoError(t, err)
	_, err = st.DeleteSalesTarget(recipeID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateSettings(t *testing.T) {
	var st State
	next, s, err := st.UpdateSettings(models.Settings{Company: models.Company{Name: "Lokanta", Type: models.CompanyLimited}})
	require.NoError(t, err)
	assert.Equal(t, models.CompanyLimited, s.Company.Type)
	assert.Equal(t, models.DefaultWorkingDays, next.Settings.WorkingDays)

	_, _, err = st.UpdateSettings(models.Settings{Company: models.Company{Type: "anonim"}})
	assert.ErrorIs(t, err, ErrValidation)
	_, _, err = st.UpdateSettings(models.Settings{WorkingDays: 40})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestIngredientLineValidation(t *testing.T) {
	st, flourID, _, _ := chain(t)

	_, _, err := st.AddRecipe(models.Recipe{Name: "X", Ingredients: []models.IngredientLine{
		{Quantity: 1, Unit: "adet", SourceKind: models.SourceRaw, SourceID: flourID},
	}})
	assert.ErrorIs(t, err, ErrValidation, "piece line cannot use a kg ingredient")

	_, _, err = st.AddRecipe(models.Recipe{Name: "X", Ingredients: []models.IngredientLine{
		{Quantity: 1, SourceKind: models.SourceRaw, SourceID: "missing"},
	}})
	assert.ErrorIs(t, err, ErrNotFound)

	_, r, err := st.AddRecipe(models.Recipe{Name: "X", Ingredients: []models.IngredientLine{
		{Name: "Peçete", Quantity: 2, Unit: "adet", Price: 0.5},
	}})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, r.TotalCost, 1e-9)
}

func TestApplyPriceUpdates(t *testing.T) {
	var st State
	st, salca, err := st.AddRawIngredient(models.RawIngredient{Name: "Domates Salçası", Unit: "kg", Price: 100,
		Package: &models.PackagePricing{Quantity: 5, Price: 500}})
	require.NoError(t, err)
	st, _, err = st.AddRecipe(models.Recipe{Name: "Sos", Ingredients: []models.IngredientLine{
		{Quantity: 100, Unit: "gr", SourceKind: models.SourceRaw, SourceID: salca.ID},
	}})
	require.NoError(t, err)

	next, report, err := st.ApplyPriceUpdates([]PriceUpdate{
		{Name: "DOMATES SALÇASI 5 KG", Price: 120},
		{Name: "Zeytinyağı", Price: 400},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Domates Salçası"}, report.Updated)
	assert.Equal(t, []string{"Zeytinyağı"}, report.Unmatched)

	raw, _ := next.RawIngredient(salca.ID)
	assert.Equal(t, 120.0, raw.Price)
	assert.InDelta(t, 600.0, raw.Package.Price, 1e-9)
	assert.InDelta(t, 500.0, st.RawIngredients[0].Package.Price, 1e-9, "package of the old state is not shared")
	assert.InDelta(t, 12.0, next.Recipes[0].TotalCost, 1e-9)
}

func TestNormalizeName(t *testing.T) {
	tests := map[string]string{
		"SÜTLÜ ÇİKOLATA":       "sutlu cikolata",
		"Domates Salçası 5 KG": "domates salcasi",
		"  Un  ":               "un",
		"Ayçiçek Yağı 18 LT":   "aycicek yagi",
		"Şeker 1kg":            "seker",
	}
	for in, want := range tests {
		assert.Equal(t, want, normalizeName(in), in)
	}
}

func TestChangedSections(t *testing.T) {
	st, _, _, recipeID := chain(t)
	next, err := st.SetSalesTarget(models.SalesTarget{RecipeID: recipeID, DailyRestaurant: 1})
	require.NoError(t, err)

	assert.Equal(t, []models.Section{models.SectionSalesTargets}, ChangedSections(st, next))
	assert.Empty(t, ChangedSections(st, st))
}
