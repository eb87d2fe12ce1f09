package models

type CompanyType string

const (
	CompanySoleProprietor CompanyType = "sahis"
	CompanyLimited        CompanyType = "limited"
)

func (t CompanyType) Valid() bool {
	return t == CompanySoleProprietor || t == CompanyLimited
}

type Company struct {
	Name string      `json:"name" bson:"name"`
	Type CompanyType `json:"type" bson:"type"`
}

const (
	DefaultWorkingDays    = 30
	DefaultRevenueVATRate = 10
	DefaultTaxYear        = 2025
)

type Settings struct {
	Company               Company `json:"company" bson:"company"`
	WorkingDays           int     `json:"workingDays" bson:"working_days"`
	RevenueVATRate        float64 `json:"revenueVatRate" bson:"revenue_vat_rate"`
	PackagingCostPerOrder float64 `json:"packagingCostPerOrder" bson:"packaging_cost_per_order"`
	TaxYear               int     `json:"taxYear" bson:"tax_year"`
}

// WithDefaults: boş alanları varsayılan değerlerle doldurur
func (s Settings) WithDefaults() Settings {
	if !s.Company.Type.Valid() {
		s.Company.Type = CompanySoleProprietor
	}
	if s.WorkingDays <= 0 {
		s.WorkingDays = DefaultWorkingDays
	}
	if s.RevenueVATRate <= 0 {
		s.RevenueVATRate = DefaultRevenueVATRate
	}
	if s.TaxYear <= 0 {
		s.TaxYear = DefaultTaxYear
	}
	return s
}
