package tax

import "rasyon-backend/internal/models"

// InvoiceEffect: bir faturanın gider, indirilecek KDV ve stopaj etkisi
type InvoiceEffect struct {
	Cost          float64 `json:"cost"`
	DeductibleVAT float64 `json:"deductibleVat"`
	Withholding   float64 `json:"withholding"`
}

// Effect: stopajlı kirada net tutar brüte çevrilir (net / 0.8), stopaj brüt x %20'dir
// ve fatura KDV indiriminden çıkarılır. KDV yönteminde tutar x oran indirilir.
func (y YearTable) Effect(inv models.Invoice) InvoiceEffect {
	switch inv.TaxMethod {
	case models.TaxMethodStopaj:
		gross := inv.Amount / (1 - y.RentWithholdingRate)
		return InvoiceEffect{
			Cost:        gross,
			Withholding: gross * y.RentWithholdingRate,
		}
	case models.TaxMethodVAT:
		return InvoiceEffect{
			Cost:          inv.Amount,
			DeductibleVAT: inv.Amount * inv.VATRate / 100,
		}
	default:
		return InvoiceEffect{Cost: inv.Amount}
	}
}
