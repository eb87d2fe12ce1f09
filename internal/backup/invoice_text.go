package backup

import (
	"errors"
	"strings"
	"unicode"

	"rasyon-backend/internal/store"
)

var ErrNoInvoiceTable = errors.New("fatura tablosu başlığı bulunamadı")

// InvoiceLine: tedarikçi faturasından okunan satır
type InvoiceLine struct {
	StockCode string  `json:"stockCode"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unitPrice"`
	Quantity  float64 `json:"quantity"`
	Unit      string  `json:"unit"`
	VATRate   float64 `json:"vatRate"`
	Total     float64 `json:"total"`
}

const invoiceColumns = 7 // stok kodu, ürün, birim fiyat, miktar, kdv oranı, kdv tutarı, toplam

// ParseInvoiceText: PDF'ten kopyalanmış, "|" ile ayrılmış fatura tablosunu okur.
// Başlık satırından sonraki ayırıcı satır atlanır; stok kodu olmayan satırlar
// bir önceki ürün adının devamı sayılır.
func ParseInvoiceText(text string) ([]InvoiceLine, error) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	start := -1
	for i, l := range lines {
		if strings.Contains(l, "Stok Kodu") && strings.Contains(l, "Ürün") {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return nil, ErrNoInvoiceTable
	}

	out := []InvoiceLine{}
	for _, raw := range lines[start:] {
		l := strings.TrimSpace(raw)
		if l == "" || isSeparator(l) || isTotalsRow(l) {
			continue
		}
		cells := splitCells(l)
		if len(cells) < invoiceColumns || cells[0] == "" {
			appendName(out, strings.Join(nonEmpty(cells), " "))
			continue
		}

		price, err := parsePrice(cells[2])
		if err != nil {
			continue
		}
		total, err := parsePrice(cells[6])
		if err != nil {
			continue
		}
		qty, unit := splitQuantity(cells[3])
		vat, _ := parsePrice(strings.TrimPrefix(strings.TrimPrefix(cells[4], "%"), "% "))

		out = append(out, InvoiceLine{
			StockCode: cells[0],
			Name:      cells[1],
			UnitPrice: price,
			Quantity:  qty,
			Unit:      unit,
			VATRate:   vat,
			Total:     total,
		})
	}
	return out, nil
}

// PriceUpdates: fatura satırlarını hammadde fiyat güncellemelerine çevirir
func PriceUpdates(lines []InvoiceLine) []store.PriceUpdate {
	out := make([]store.PriceUpdate, 0, len(lines))
	for _, l := range lines {
		out = append(out, store.PriceUpdate{Name: l.Name, Price: l.UnitPrice})
	}
	return out
}

func splitCells(l string) []string {
	parts := strings.Split(strings.Trim(l, "|"), "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func nonEmpty(cells []string) []string {
	out := cells[:0:0]
	for _, c := range cells {
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

func appendName(lines []InvoiceLine, more string) {
	if len(lines) == 0 || more == "" {
		return
	}
	last := &lines[len(lines)-1]
	last.Name = strings.TrimSpace(last.Name + " " + more)
}

func isSeparator(l string) bool {
	return strings.Trim(l, "|-+: ") == ""
}

func isTotalsRow(l string) bool {
	for _, p := range []string{"Genel Toplam", "Toplam:", "KDV:"} {
		if strings.Contains(l, p) {
			return true
		}
	}
	return false
}

// splitQuantity: "2 Paket" -> (2, "Paket"), "1,5 Kilogram" -> (1.5, "Kilogram")
func splitQuantity(s string) (float64, string) {
	i := strings.IndexFunc(s, func(r rune) bool {
		return !unicode.IsDigit(r) && r != '.' && r != ','
	})
	num, unit := s, ""
	if i >= 0 {
		num, unit = s[:i], strings.TrimSpace(s[i:])
	}
	q, err := parsePrice(num)
	if err != nil {
		return 0, unit
	}
	return q, unit
}
