package ledger

import (
	"context"
	"fmt"
	"sort"

	"rasyon-backend/internal/models"
	"rasyon-backend/internal/tax"
)

type ChannelTotals struct {
	Cash     float64 `json:"cash"`
	Card     float64 `json:"card"`
	MealCard float64 `json:"mealCard"`
	Online   float64 `json:"online"`
	Total    float64 `json:"total"`
}

type CategoryTotal struct {
	Category      string  `json:"category"`
	Cost          float64 `json:"cost"`
	DeductibleVAT float64 `json:"deductibleVat"`
	Withholding   float64 `json:"withholding"`
}

// Summary: bir ayın gelir, gider, KDV ve vergi özeti
type Summary struct {
	Month         string             `json:"month"`
	IsClosed      bool               `json:"isClosed"`
	CompanyType   models.CompanyType `json:"companyType"`
	Sales         ChannelTotals      `json:"sales"`
	SalesDays     int                `json:"salesDays"`
	NetRevenue    float64            `json:"netRevenue"`
	RevenueVAT    float64            `json:"revenueVat"`
	Expenses      []CategoryTotal    `json:"expenses"`
	TotalExpenses float64            `json:"totalExpenses"`
	DeductibleVAT float64            `json:"deductibleVat"`
	Withholding   float64            `json:"withholding"`
	VAT           tax.VATResult      `json:"vat"`
	Profit        float64            `json:"profit"`
	IncomeTax     float64            `json:"incomeTax"`
	NetProfit     float64            `json:"netProfit"`
}

func (s *Service) Summary(ctx context.Context, userID uint, month string) (Summary, error) {
	if _, err := ParseMonth(month); err != nil {
		return Summary{}, err
	}
	settings, err := s.settings.Settings(ctx, userID)
	if err != nil {
		return Summary{}, fmt.Errorf("ayarlar okunamadı: %w", err)
	}
	all, err := s.repo.ListMonths(ctx, userID)
	if err != nil {
		return Summary{}, err
	}
	m, err := s.load(ctx, userID, month)
	if err != nil {
		return Summary{}, err
	}
	return s.summarize(m, all, settings.WithDefaults()), nil
}

// yearTable: ayın yılına ait tarife
func (s *Service) yearTable(month string) tax.YearTable {
	t, _ := ParseMonth(month)
	return s.table.Year(t.Year())
}

func (s *Service) summarize(m models.MonthData, all []models.MonthData, settings models.Settings) Summary {
	yt := s.yearTable(m.Month)
	sum := Summary{
		Month:       m.Month,
		IsClosed:    m.IsClosed,
		CompanyType: settings.Company.Type,
		Expenses:    []CategoryTotal{},
	}

	for _, d := range m.DailySales {
		sum.Sales.Cash += d.Cash
		sum.Sales.Card += d.Card
		sum.Sales.MealCard += d.MealCard
		sum.Sales.Online += d.Online
		if d.Total() > 0 {
			sum.SalesDays++
		}
	}
	sum.Sales.Total = sum.Sales.Cash + sum.Sales.Card + sum.Sales.MealCard + sum.Sales.Online
	sum.NetRevenue = sum.Sales.Total / (1 + settings.RevenueVATRate/100)
	sum.RevenueVAT = sum.Sales.Total - sum.NetRevenue

	byCategory := map[string]*CategoryTotal{}
	for _, inv := range m.Invoices {
		eff := yt.Effect(inv)
		ct, ok := byCategory[inv.Category]
		if !ok {
			ct = &CategoryTotal{Category: inv.Category}
			byCategory[inv.Category] = ct
		}
		ct.Cost += eff.Cost
		ct.DeductibleVAT += eff.DeductibleVAT
		ct.Withholding += eff.Withholding

		sum.TotalExpenses += eff.Cost
		sum.DeductibleVAT += eff.DeductibleVAT
		sum.Withholding += eff.Withholding
	}
	for _, ct := range byCategory {
		sum.Expenses = append(sum.Expenses, *ct)
	}
	sort.Slice(sum.Expenses, func(i, j int) bool { return sum.Expenses[i].Category < sum.Expenses[j].Category })

	carryIn := tax.CarryIn(s.monthVATs(all, settings), m.Month)
	sum.VAT = tax.VAT(sum.NetRevenue, settings.RevenueVATRate, sum.DeductibleVAT, carryIn)

	sum.Profit = sum.NetRevenue - sum.TotalExpenses
	sum.IncomeTax = yt.MonthlyIncomeTax(settings.Company.Type, sum.Profit)
	sum.NetProfit = sum.Profit - sum.IncomeTax
	return sum
}

// monthVATs: devir zinciri için her ayın hesaplanan ve indirilecek KDV'si
func (s *Service) monthVATs(all []models.MonthData, settings models.Settings) []tax.MonthVAT {
	out := make([]tax.MonthVAT, 0, len(all))
	for _, m := range all {
		yt := s.yearTable(m.Month)
		gross := 0.0
		for _, d := range m.DailySales {
			gross += d.Total()
		}
		net := gross / (1 + settings.RevenueVATRate/100)
		deductible := 0.0
		for _, inv := range m.Invoices {
			deductible += yt.Effect(inv).DeductibleVAT
		}
		out = append(out, tax.MonthVAT{
			Month:         m.Month,
			Closed:        m.IsClosed,
			IncomeVAT:     net * settings.RevenueVATRate / 100,
			DeductibleVAT: deductible,
		})
	}
	return out
}

type MonthOverview struct {
	Month         string  `json:"month"`
	Exists        bool    `json:"exists"`
	IsClosed      bool    `json:"isClosed"`
	GrossSales    float64 `json:"grossSales"`
	NetRevenue    float64 `json:"netRevenue"`
	TotalExpenses float64 `json:"totalExpenses"`
	Profit        float64 `json:"profit"`
	PayableVAT    float64 `json:"payableVat"`
	CarryOverVAT  float64 `json:"carryOverVat"`
	IncomeTax     float64 `json:"incomeTax"`
	NetProfit     float64 `json:"netProfit"`
}

// YearOverview: yılın 12 ayı ve toplamları
type YearOverview struct {
	Year   int             `json:"year"`
	Months []MonthOverview `json:"months"`
	Totals MonthOverview   `json:"totals"`
}

func (s *Service) Year(ctx context.Context, userID uint, year int) (YearOverview, error) {
	if year < 2000 || year > 2100 {
		return YearOverview{}, fmt.Errorf("%w: yıl %d", ErrInvalidMonth, year)
	}
	settings, err := s.settings.Settings(ctx, userID)
	if err != nil {
		return YearOverview{}, fmt.Errorf("ayarlar okunamadı: %w", err)
	}
	settings = settings.WithDefaults()
	all, err := s.repo.ListMonths(ctx, userID)
	if err != nil {
		return YearOverview{}, err
	}
	byMonth := make(map[string]models.MonthData, len(all))
	for _, m := range all {
		byMonth[m.Month] = m
	}

	out := YearOverview{Year: year, Months: make([]MonthOverview, 0, 12)}
	out.Totals.Month = fmt.Sprintf("%d", year)
	for i := 1; i <= 12; i++ {
		key := fmt.Sprintf("%d-%02d", year, i)
		m, ok := byMonth[key]
		if !ok {
			out.Months = append(out.Months, MonthOverview{Month: key})
			continue
		}
		sum := s.summarize(m, all, settings)
		ov := MonthOverview{
			Month:         key,
			Exists:        true,
			IsClosed:      m.IsClosed,
			GrossSales:    sum.Sales.Total,
			NetRevenue:    sum.NetRevenue,
			TotalExpenses: sum.TotalExpenses,
			Profit:        sum.Profit,
			PayableVAT:    sum.VAT.Payable,
			CarryOverVAT:  sum.VAT.CarryOver,
			IncomeTax:     sum.IncomeTax,
			NetProfit:     sum.NetProfit,
		}
		out.Months = append(out.Months, ov)

		out.Totals.GrossSales += ov.GrossSales
		out.Totals.NetRevenue += ov.NetRevenue
		out.Totals.TotalExpenses += ov.TotalExpenses
		out.Totals.Profit += ov.Profit
		out.Totals.PayableVAT += ov.PayableVAT
		out.Totals.IncomeTax += ov.IncomeTax
		out.Totals.NetProfit += ov.NetProfit
	}
	return out, nil
}
