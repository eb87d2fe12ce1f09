package models

type SourceKind string

const (
	SourceManual       SourceKind = ""
	SourceRaw          SourceKind = "raw"
	SourceIntermediate SourceKind = "intermediate"
)

// PackagePricing: paket bazlı alım (ör: 5 kg'lık kova 850 TL)
type PackagePricing struct {
	Quantity float64 `json:"quantity" bson:"quantity"`
	Price    float64 `json:"price" bson:"price"`
}

// RawIngredient: hammadde
type RawIngredient struct {
	ID         string          `json:"id" bson:"id"`
	Name       string          `json:"name" bson:"name"`
	Unit       Unit            `json:"unit" bson:"unit"`   // alış birimi
	Price      float64         `json:"price" bson:"price"` // birim fiyat
	Package    *PackagePricing `json:"package,omitempty" bson:"package,omitempty"`
	VATRate    float64         `json:"vatRate" bson:"vat_rate"`
	CategoryID string          `json:"categoryId,omitempty" bson:"category_id,omitempty"`
}

// IngredientLine: reçete veya ara ürün içindeki tek satır.
// SourceKind boşsa satır elle girilmiştir ve fiyatı yeniden hesaplanmaz.
type IngredientLine struct {
	ID         string     `json:"id" bson:"id"`
	Name       string     `json:"name" bson:"name"`
	Quantity   float64    `json:"quantity" bson:"quantity"`
	Unit       Unit       `json:"unit" bson:"unit"`
	Price      float64    `json:"price" bson:"price"` // satır biriminin fiyatı
	SourceKind SourceKind `json:"sourceKind,omitempty" bson:"source_kind,omitempty"`
	SourceID   string     `json:"sourceId,omitempty" bson:"source_id,omitempty"`
}

func (l IngredientLine) Cost() float64 {
	return l.Quantity * l.Price
}

// IntermediateProduct: ara ürün (sos, hamur vb.)
type IntermediateProduct struct {
	ID                 string           `json:"id" bson:"id"`
	Name               string           `json:"name" bson:"name"`
	CategoryID         string           `json:"categoryId,omitempty" bson:"category_id,omitempty"`
	Ingredients        []IngredientLine `json:"ingredients" bson:"ingredients"`
	ProductionQuantity float64          `json:"productionQuantity" bson:"production_quantity"`
	ProductionUnit     Unit             `json:"productionUnit" bson:"production_unit"`
	TotalCost          float64          `json:"totalCost" bson:"total_cost"`
	CostPerUnit        float64          `json:"costPerUnit" bson:"cost_per_unit"`
	PortionWeight      float64          `json:"portionWeight,omitempty" bson:"portion_weight,omitempty"` // 1 adet kaç üretim birimi
}
