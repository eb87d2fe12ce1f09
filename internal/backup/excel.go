package backup

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"rasyon-backend/internal/ledger"
	"rasyon-backend/internal/money"
	"rasyon-backend/internal/models"
	"rasyon-backend/internal/store"
)

const (
	sheetRecipes     = "Reçeteler"
	sheetIngredients = "Hammaddeler"
	sheetSummary     = "Özet"
	sheetInvoices    = "Faturalar"
	sheetSales       = "Satışlar"
)

// sheetWriter: satır satır yazım ve başlık stili
type sheetWriter struct {
	f      *excelize.File
	header int
}

func newSheetWriter() (*sheetWriter, error) {
	f := excelize.NewFile()
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		f.Close()
		return nil, err
	}
	return &sheetWriter{f: f, header: style}, nil
}

// sheet: ilk çağrıda varsayılan sayfayı yeniden adlandırır
func (w *sheetWriter) sheet(name string, header []any, rows [][]any) error {
	if list := w.f.GetSheetList(); len(list) == 1 && list[0] == "Sheet1" {
		if err := w.f.SetSheetName("Sheet1", name); err != nil {
			return err
		}
	} else if _, err := w.f.NewSheet(name); err != nil {
		return err
	}

	if err := w.f.SetSheetRow(name, "A1", &header); err != nil {
		return err
	}
	if err := w.f.SetRowStyle(name, 1, 1, w.header); err != nil {
		return err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := w.f.SetSheetRow(name, cell, &row); err != nil {
			return err
		}
	}
	return w.f.SetColWidth(name, "A", "A", 32)
}

func (w *sheetWriter) writeTo(out io.Writer) error {
	defer w.f.Close()
	return w.f.Write(out)
}

// WriteRecipes: reçete maliyet çalışma kitabı (reçeteler + hammaddeler)
func WriteRecipes(out io.Writer, snap models.Snapshot) error {
	w, err := newSheetWriter()
	if err != nil {
		return err
	}

	categories := make(map[string]string, len(snap.RecipeCategories))
	for _, c := range snap.RecipeCategories {
		categories[c.ID] = c.Name
	}

	rows := make([][]any, 0, len(snap.Recipes))
	for _, r := range snap.Recipes {
		ratio := 0.0
		if r.CalculatedPrice > 0 {
			ratio = r.TotalCost / r.CalculatedPrice * 100
		}
		rows = append(rows, []any{r.Name, categories[r.CategoryID], money.Round2(r.TotalCost), money.Round2(r.CostMultiplier), money.Round2(r.CalculatedPrice), money.Round2(ratio)})
	}
	if err := w.sheet(sheetRecipes, []any{"Reçete", "Kategori", "Maliyet", "Çarpan", "Satış Fiyatı", "Gıda Maliyeti %"}, rows); err != nil {
		w.f.Close()
		return err
	}

	rows = rows[:0]
	for _, r := range snap.RawIngredients {
		rows = append(rows, []any{r.Name, string(r.Unit), money.Round2(r.Price), r.VATRate})
	}
	if err := w.sheet(sheetIngredients, []any{"Hammadde", "Birim", "Birim Fiyat", "KDV %"}, rows); err != nil {
		w.f.Close()
		return err
	}
	return w.writeTo(out)
}

// WriteMonth: aylık defter çalışma kitabı (özet, faturalar, satışlar)
func WriteMonth(out io.Writer, m models.MonthData, sum ledger.Summary) error {
	w, err := newSheetWriter()
	if err != nil {
		return err
	}

	status := "Açık"
	if m.IsClosed {
		status = "Kapalı"
	}
	summary := [][]any{
		{"Ay", m.Month},
		{"Durum", status},
		{"Brüt Satış", money.Round2(sum.Sales.Total)},
		{"Nakit", money.Round2(sum.Sales.Cash)},
		{"Kredi Kartı", money.Round2(sum.Sales.Card)},
		{"Yemek Kartı", money.Round2(sum.Sales.MealCard)},
		{"Online", money.Round2(sum.Sales.Online)},
		{"Net Ciro", money.Round2(sum.NetRevenue)},
		{"Toplam Gider", money.Round2(sum.TotalExpenses)},
		{"İndirilecek KDV", money.Round2(sum.DeductibleVAT)},
		{"Devreden KDV (giriş)", money.Round2(sum.VAT.CarryIn)},
		{"Ödenecek KDV", money.Round2(sum.VAT.Payable)},
		{"Sonraki Aya Devreden KDV", money.Round2(sum.VAT.CarryOver)},
		{"Stopaj", money.Round2(sum.Withholding)},
		{"Vergi Öncesi Kâr", money.Round2(sum.Profit)},
		{"Gelir/Kurumlar Vergisi", money.Round2(sum.IncomeTax)},
		{"Net Kâr", money.Round2(sum.NetProfit)},
	}
	if err := w.sheet(sheetSummary, []any{"Kalem", "Tutar"}, summary); err != nil {
		w.f.Close()
		return err
	}

	invoices := make([][]any, 0, len(m.Invoices))
	for _, inv := range m.Invoices {
		invoices = append(invoices, []any{inv.Date, inv.Description, inv.Category, money.Round2(inv.Amount), inv.VATRate, string(inv.TaxMethod)})
	}
	if err := w.sheet(sheetInvoices, []any{"Tarih", "Açıklama", "Kategori", "Tutar", "KDV %", "Yöntem"}, invoices); err != nil {
		w.f.Close()
		return err
	}

	sales := make([][]any, 0, len(m.DailySales))
	for _, d := range m.DailySales {
		sales = append(sales, []any{d.Date, money.Round2(d.Cash), money.Round2(d.Card), money.Round2(d.MealCard), money.Round2(d.Online), money.Round2(d.Total())})
	}
	if err := w.sheet(sheetSales, []any{"Tarih", "Nakit", "Kredi Kartı", "Yemek Kartı", "Online", "Toplam"}, sales); err != nil {
		w.f.Close()
		return err
	}
	return w.writeTo(out)
}

// ParsePriceList: ilk sayfadan A sütunu ad, B sütunu birim fiyat olarak okunur.
// İlk satır başlık ise atlanır; fiyatı okunamayan satırlar hata döner.
func ParsePriceList(r io.Reader) ([]store.PriceUpdate, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("excel dosyası okunamadı: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("excel dosyasında sayfa bulunamadı")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("sayfa okunamadı: %w", err)
	}

	start := 0
	if len(rows) > 0 && isHeader(rows[0]) {
		start = 1
	}

	var out []store.PriceUpdate
	for i := start; i < len(rows); i++ {
		row := rows[i]
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		if len(row) < 2 {
			return nil, fmt.Errorf("%d. satırda fiyat yok", i+1)
		}
		price, err := parsePrice(row[1])
		if err != nil {
			return nil, fmt.Errorf("%d. satır: %w", i+1, err)
		}
		out = append(out, store.PriceUpdate{Name: strings.TrimSpace(row[0]), Price: price})
	}
	return out, nil
}

func isHeader(row []string) bool {
	if len(row) == 0 {
		return false
	}
	first := strings.ToUpper(strings.TrimSpace(row[0]))
	for _, word := range []string{"ÜRÜN", "HAMMADDE", "PRODUCT"} {
		if strings.Contains(first, word) {
			return true
		}
	}
	switch first {
	case "AD", "ADI", "İSİM", "NAME":
		return true
	}
	if len(row) > 1 {
		if _, err := parsePrice(row[1]); err != nil {
			return true
		}
	}
	return false
}

// parsePrice: "1.234,50", "1234.50", "₺85" ve "85 TL" biçimlerini okur
func parsePrice(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "₺")
	s = strings.TrimSuffix(strings.TrimSuffix(s, "TL"), "tl")
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("geçersiz fiyat %q", s)
	}
	return v, nil
}
