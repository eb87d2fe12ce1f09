package planning

import (
	"rasyon-backend/internal/costing"
	"rasyon-backend/internal/models"
	"rasyon-backend/internal/tax"
)

type RecipeLine struct {
	RecipeID        string  `json:"recipeId"`
	Name            string  `json:"name"`
	DailyRestaurant int     `json:"dailyRestaurant"`
	DailyTakeaway   int     `json:"dailyTakeaway"`
	MonthlyUnits    int     `json:"monthlyUnits"`
	UnitPrice       float64 `json:"unitPrice"`
	UnitCost        float64 `json:"unitCost"`
	Revenue         float64 `json:"revenue"`
	FoodCost        float64 `json:"foodCost"`
}

type ExpenseLine struct {
	ExpenseID string             `json:"expenseId"`
	Name      string             `json:"name"`
	Group     string             `json:"group,omitempty"`
	Kind      models.ExpenseKind `json:"kind"`
	Gross     float64            `json:"gross"`
	Net       float64            `json:"net"`
	VAT       float64            `json:"vat"`
}

// Projection: aylık bütçe. Ciro ve giderler KDV dahil girilir, kâr KDV
// hariç tutarlar üzerinden hesaplanır.
type Projection struct {
	WorkingDays     int                `json:"workingDays"`
	TaxYear         int                `json:"taxYear"`
	CompanyType     models.CompanyType `json:"companyType"`
	Recipes         []RecipeLine       `json:"recipes"`
	MonthlyUnits    int                `json:"monthlyUnits"`
	GrossRevenue    float64            `json:"grossRevenue"`
	NetRevenue      float64            `json:"netRevenue"`
	RevenueVAT      float64            `json:"revenueVat"`
	FoodCost        float64            `json:"foodCost"`
	FoodCostNet     float64            `json:"foodCostNet"`
	FoodCostVAT     float64            `json:"foodCostVat"`
	FoodCostRatio   float64            `json:"foodCostRatio"` // yüzde
	Expenses        []ExpenseLine      `json:"expenses"`
	ExpensesGross   float64            `json:"expensesGross"`
	ExpensesNet     float64            `json:"expensesNet"`
	DeductibleVAT   float64            `json:"deductibleVat"`
	VAT             tax.VATResult      `json:"vat"`
	ProfitBeforeTax float64            `json:"profitBeforeTax"`
	IncomeTax       float64            `json:"incomeTax"`
	NetProfit       float64            `json:"netProfit"`
}

// Project: satış hedefleri, reçete fiyatları ve giderlerden aylık projeksiyon
func Project(snap models.Snapshot, table *tax.Table) (Projection, error) {
	settings := snap.Settings.WithDefaults()
	yt := table.Year(settings.TaxYear)

	vatShare, err := purchaseVATShares(snap.RawIngredients, snap.IntermediateProducts)
	if err != nil {
		return Projection{}, err
	}

	p := Projection{
		WorkingDays: settings.WorkingDays,
		TaxYear:     yt.Year,
		CompanyType: settings.Company.Type,
		Recipes:     []RecipeLine{},
		Expenses:    []ExpenseLine{},
	}

	recipes := make(map[string]models.Recipe, len(snap.Recipes))
	for _, r := range snap.Recipes {
		recipes[r.ID] = r
	}

	var basis Basis
	basis.PackagingCostPerOrder = settings.PackagingCostPerOrder
	for _, t := range snap.SalesTargets {
		r, ok := recipes[t.RecipeID]
		if !ok {
			continue
		}
		units := t.Daily() * settings.WorkingDays
		takeaway := t.DailyTakeaway * settings.WorkingDays
		line := RecipeLine{
			RecipeID:        r.ID,
			Name:            r.Name,
			DailyRestaurant: t.DailyRestaurant,
			DailyTakeaway:   t.DailyTakeaway,
			MonthlyUnits:    units,
			UnitPrice:       r.CalculatedPrice,
			UnitCost:        r.TotalCost,
			Revenue:         float64(units) * r.CalculatedPrice,
			FoodCost:        float64(units) * r.TotalCost,
		}
		p.Recipes = append(p.Recipes, line)
		p.MonthlyUnits += units
		p.FoodCostVAT += float64(units) * linesVAT(r.Ingredients, vatShare)

		basis.GrossRevenue += line.Revenue
		basis.FoodCost += line.FoodCost
		basis.TakeawayUnits += float64(takeaway)
		basis.TakeawayRevenue += float64(takeaway) * r.CalculatedPrice
	}

	p.GrossRevenue = basis.GrossRevenue
	p.NetRevenue = p.GrossRevenue / (1 + settings.RevenueVATRate/100)
	p.RevenueVAT = p.GrossRevenue - p.NetRevenue
	p.FoodCost = basis.FoodCost
	p.FoodCostNet = p.FoodCost - p.FoodCostVAT
	if p.GrossRevenue > 0 {
		p.FoodCostRatio = p.FoodCost / p.GrossRevenue * 100
	}

	for _, e := range snap.Expenses {
		gross := e.Amount
		if e.Kind == models.ExpenseAutomated && e.Formula != nil {
			gross, err = Evaluate(*e.Formula, basis)
			if err != nil {
				return Projection{}, err
			}
		}
		net := gross / (1 + e.VATRate/100)
		p.Expenses = append(p.Expenses, ExpenseLine{
			ExpenseID: e.ID,
			Name:      e.Name,
			Group:     e.Group,
			Kind:      e.Kind,
			Gross:     gross,
			Net:       net,
			VAT:       gross - net,
		})
		p.ExpensesGross += gross
		p.ExpensesNet += net
	}

	p.DeductibleVAT = p.FoodCostVAT + (p.ExpensesGross - p.ExpensesNet)
	p.VAT = tax.VAT(p.NetRevenue, settings.RevenueVATRate, p.DeductibleVAT, 0)
	p.ProfitBeforeTax = p.NetRevenue - p.FoodCostNet - p.ExpensesNet
	p.IncomeTax = yt.MonthlyIncomeTax(settings.Company.Type, p.ProfitBeforeTax)
	p.NetProfit = p.ProfitBeforeTax - p.IncomeTax
	return p, nil
}

// purchaseVATShares: her ara ürün maliyetinin ne kadarının indirilebilir alış
// KDV'si olduğu (0-1 arası pay). Hammadde fiyatları KDV dahildir.
func purchaseVATShares(raws []models.RawIngredient, inters []models.IntermediateProduct) (vatShares, error) {
	shares := vatShares{
		raw:          make(map[string]float64, len(raws)),
		intermediate: make(map[string]float64, len(inters)),
	}
	for _, r := range raws {
		shares.raw[r.ID] = r.VATRate / (100 + r.VATRate)
	}

	order, err := costing.Order(inters)
	if err != nil {
		return shares, err
	}
	for _, i := range order {
		p := inters[i]
		if p.TotalCost <= 0 {
			continue
		}
		shares.intermediate[p.ID] = linesVAT(p.Ingredients, shares) / p.TotalCost
	}
	return shares, nil
}

type vatShares struct {
	raw          map[string]float64
	intermediate map[string]float64
}

func linesVAT(lines []models.IngredientLine, shares vatShares) float64 {
	total := 0.0
	for _, l := range lines {
		switch l.SourceKind {
		case models.SourceRaw:
			total += l.Cost() * shares.raw[l.SourceID]
		case models.SourceIntermediate:
			total += l.Cost() * shares.intermediate[l.SourceID]
		}
	}
	return total
}
