package backup

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"rasyon-backend/internal/ledger"
	"rasyon-backend/internal/models"
	"rasyon-backend/internal/store"
)

func sampleSnapshot() models.Snapshot {
	return models.Snapshot{
		RawIngredients: []models.RawIngredient{
			{ID: "r1", Name: "Un", Unit: models.UnitKg, Price: 20, VATRate: 1},
			{ID: "r2", Name: "Salça", Unit: models.UnitKg, Price: 170, VATRate: 10,
				Package: &models.PackagePricing{Quantity: 5, Price: 850}, CategoryID: "c1"},
		},
		IntermediateProducts: []models.IntermediateProduct{
			{ID: "i1", Name: "Hamur", ProductionQuantity: 2, ProductionUnit: models.UnitKg, TotalCost: 20, CostPerUnit: 10,
				Ingredients: []models.IngredientLine{{ID: "l1", Name: "Un", Quantity: 1, Unit: models.UnitKg, Price: 20, SourceKind: models.SourceRaw, SourceID: "r1"}}},
		},
		Recipes: []models.Recipe{
			{ID: "p2", Name: "Lahmacun", TotalCost: 8, CostMultiplier: 5, CalculatedPrice: 40, CategoryID: "rc1",
				Ingredients: []models.IngredientLine{{ID: "l2", Name: "Hamur", Quantity: 0.2, Unit: models.UnitKg, Price: 10, SourceKind: models.SourceIntermediate, SourceID: "i1"}}},
			{ID: "p1", Name: "Pide", TotalCost: 10, CostMultiplier: 3, CalculatedPrice: 30},
		},
		RecipeCategories:     []models.Category{{ID: "rc1", Name: "Fırın"}},
		IngredientCategories: []models.Category{{ID: "c1", Name: "Konserve"}},
		Expenses: []models.Expense{
			{ID: "e1", Name: "Kira", Kind: models.ExpenseFixed, Amount: 30000},
			{ID: "e2", Name: "Kurye", Kind: models.ExpenseAutomated, Formula: &models.ExpenseFormula{Kind: models.FormulaCourier, Rate: 12}, VATRate: 20},
		},
		SalesTargets: []models.SalesTarget{{RecipeID: "p2", DailyRestaurant: 30, DailyTakeaway: 10}},
		Settings: models.Settings{
			Company:     models.Company{Name: "Usta Fırın", Type: models.CompanyLimited},
			WorkingDays: 26, RevenueVATRate: 10, PackagingCostPerOrder: 4, TaxYear: 2025,
		},
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	snap := sampleSnapshot()
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	data, err := Export(snap, now)
	require.NoError(t, err)

	doc, err := Import(data)
	require.NoError(t, err)
	assert.Equal(t, Version, doc.Version)
	assert.True(t, now.Equal(doc.ExportDate))

	if diff := cmp.Diff(snap, doc.Snapshot); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestImport_OnlyRecipesRequired(t *testing.T) {
	doc, err := Import([]byte(`{"recipes": []}`))
	require.NoError(t, err)
	assert.NotNil(t, doc.RawIngredients)
	assert.Empty(t, doc.RawIngredients)
	assert.Empty(t, doc.Recipes)
	assert.Empty(t, doc.Version)
}

func TestImport_Invalid(t *testing.T) {
	tests := map[string]string{
		"not json":          `{recipes`,
		"missing recipes":   `{"rawIngredients": []}`,
		"recipes is object": `{"recipes": {}}`,
		"recipes is null":   `{"recipes": null}`,
		"top level array":   `[]`,
		"wrong field type":  `{"recipes": [], "settings": "x"}`,
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Import([]byte(in))
			assert.ErrorIs(t, err, ErrInvalidImport)
		})
	}
}

func TestWriteRecipes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRecipes(&buf, sampleSnapshot()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{sheetRecipes, sheetIngredients}, f.GetSheetList())

	rows, err := f.GetRows(sheetRecipes)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Reçete", rows[0][0])
	assert.Equal(t, []string{"Lahmacun", "Fırın", "8", "5", "40", "20"}, rows[1])
	assert.Equal(t, "Pide", rows[2][0])

	rows, err = f.GetRows(sheetIngredients)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Salça", "kg", "170", "10"}, rows[2])
}

func TestWriteMonth(t *testing.T) {
	m := models.MonthData{
		Month:      "2025-03",
		IsClosed:   true,
		Invoices:   []models.Invoice{{ID: "f1", Date: "2025-03-01", Description: "Mart kirası", Category: "rent", Amount: 8000, TaxMethod: models.TaxMethodStopaj}},
		DailySales: []models.DailySale{{Date: "2025-03-01", Cash: 100, Card: 200}},
	}
	sum := ledger.Summary{Month: "2025-03", IsClosed: true, Sales: ledger.ChannelTotals{Cash: 100, Card: 200, Total: 300}}

	var buf bytes.Buffer
	require.NoError(t, WriteMonth(&buf, m, sum))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{sheetSummary, sheetInvoices, sheetSales}, f.GetSheetList())

	rows, err := f.GetRows(sheetSummary)
	require.NoError(t, err)
	assert.Equal(t, []string{"Durum", "Kapalı"}, rows[2])
	assert.Equal(t, []string{"Brüt Satış", "300"}, rows[3])

	rows, err = f.GetRows(sheetSales)
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-03-01", "100", "200", "0", "0", "300"}, rows[1])
}

func priceListFile(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return &buf
}

func TestParsePriceList(t *testing.T) {
	buf := priceListFile(t, [][]any{
		{"ÜRÜN ADI", "FİYAT"},
		{"Domates Salçası 5 KG", "1.234,50"},
		{"", ""},
		{"Kadayıf", 95.5},
		{"Un", "₺20"},
	})

	got, err := ParsePriceList(buf)
	require.NoError(t, err)
	assert.Equal(t, []store.PriceUpdate{
		{Name: "Domates Salçası 5 KG", Price: 1234.5},
		{Name: "Kadayıf", Price: 95.5},
		{Name: "Un", Price: 20},
	}, got)
}

func TestParsePriceList_NoHeader(t *testing.T) {
	buf := priceListFile(t, [][]any{
		{"Kadayıf", 95},
		{"Un", "20 TL"},
	})
	got, err := ParsePriceList(buf)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Kadayıf", got[0].Name)
}

func TestParsePriceList_BadPrice(t *testing.T) {
	buf := priceListFile(t, [][]any{
		{"Un", 20},
		{"Şeker", "pahalı"},
	})
	_, err := ParsePriceList(buf)
	assert.Error(t, err)

	_, err = ParsePriceList(bytes.NewBufferString("not a zip"))
	assert.Error(t, err)
}

func TestParsePrice(t *testing.T) {
	tests := map[string]float64{
		"1.234,50": 1234.5,
		"1234.50":  1234.5,
		"₺85":      85,
		"85 TL":    85,
		" 12,5 ":   12.5,
	}
	for in, want := range tests {
		got, err := parsePrice(in)
		require.NoError(t, err, in)
		assert.InDelta(t, want, got, 1e-9, in)
	}
	_, err := parsePrice("-3")
	assert.Error(t, err)
}

const supplierInvoice = `SİPARİŞ FORMU
Sipariş No: 12345
| Stok Kodu | Ürün | Birim Fiyat | Miktar | Kdv Oranı | Kdv Tutarı | Toplam Tutar |
|---|---|---|---|---|---|---|
| TM0012 | Şeker | 35,50 TL | 2 Paket | %1 | 0,71 | 71,71 |
| TM0040 | Domates | 1.240,00 | 1,5 Kilogram | %1 | 18,60 | 1.878,60 |
|  | Salçası |  |  |  |  |  |
| TM0099 | Bozuk | abc | 1 Adet | %20 | 0 | 0 |
Genel Toplam: 1.950,31
`

func TestParseInvoiceText(t *testing.T) {
	lines, err := ParseInvoiceText(supplierInvoice)
	require.NoError(t, err)
	require.Len(t, lines, 2, "rows with unreadable prices are skipped")

	assert.Equal(t, InvoiceLine{
		StockCode: "TM0012", Name: "Şeker", UnitPrice: 35.5, Quantity: 2, Unit: "Paket", VATRate: 1, Total: 71.71,
	}, lines[0])
	assert.Equal(t, "Domates Salçası", lines[1].Name)
	assert.Equal(t, 1240.0, lines[1].UnitPrice)
	assert.Equal(t, 1.5, lines[1].Quantity)

	updates := PriceUpdates(lines)
	assert.Equal(t, "Şeker", updates[0].Name)
	assert.Equal(t, 35.5, updates[0].Price)

	_, err = ParseInvoiceText("sadece metin")
	assert.ErrorIs(t, err, ErrNoInvoiceTable)
}
