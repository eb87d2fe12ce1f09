package dashboard

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"rasyon-backend/internal/auth"
	"rasyon-backend/internal/httperr"
	"rasyon-backend/internal/models"
	"rasyon-backend/internal/money"
)

type SalesChartPoint struct {
	Label    string  `json:"label"` // tarih / hafta başlangıcı / ay başlangıcı
	Cash     float64 `json:"cash"`
	Card     float64 `json:"card"`
	MealCard float64 `json:"mealCard"`
	Online   float64 `json:"online"`
	Total    float64 `json:"total"`
}

type SalesChartResponse struct {
	Period      string            `json:"period"` // daily | weekly | monthly
	From        string            `json:"from"`
	To          string            `json:"to"`
	Points      []SalesChartPoint `json:"points"`
	GrandTotals SalesChartPoint   `json:"grandTotals"`
}

// MonthLister: aylık defterlerin kaynağı (ledger.Service)
type MonthLister interface {
	List(ctx context.Context, userID uint) ([]models.MonthData, error)
}

// chartRange: period ve count'a göre [start, end] aralığı; end günün kendisidir
func chartRange(period string, count int, end time.Time) (string, time.Time, time.Time) {
	switch period {
	case "weekly":
		return period, weekStart(end).AddDate(0, 0, -7*(count-1)), end
	case "monthly":
		first := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC)
		return period, first.AddDate(0, -(count - 1), 0), end
	default:
		return "daily", end.AddDate(0, 0, -(count - 1)), end
	}
}

// weekStart: haftanın pazartesi günü
func weekStart(d time.Time) time.Time {
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

func bucketOf(period string, d time.Time) time.Time {
	switch period {
	case "weekly":
		return weekStart(d)
	case "monthly":
		return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	return d
}

// buildChart: günlük satışları kanal kırılımıyla bucket'lara toplar
func buildChart(months []models.MonthData, period string, start, end time.Time) SalesChartResponse {
	buckets := make(map[time.Time]*SalesChartPoint)
	for _, m := range months {
		for _, s := range m.DailySales {
			d, err := time.Parse(time.DateOnly, s.Date)
			if err != nil || d.Before(start) || d.After(end) {
				continue
			}
			key := bucketOf(period, d)
			p, ok := buckets[key]
			if !ok {
				p = &SalesChartPoint{Label: key.Format(time.DateOnly)}
				buckets[key] = p
			}
			p.Cash += s.Cash
			p.Card += s.Card
			p.MealCard += s.MealCard
			p.Online += s.Online
		}
	}

	keys := make([]time.Time, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })

	resp := SalesChartResponse{
		Period: period,
		From:   start.Format(time.DateOnly),
		To:     end.Format(time.DateOnly),
		Points: make([]SalesChartPoint, 0, len(keys)),
	}
	grand := &resp.GrandTotals
	for _, k := range keys {
		p := buckets[k]
		p.Cash, p.Card = money.Round2(p.Cash), money.Round2(p.Card)
		p.MealCard, p.Online = money.Round2(p.MealCard), money.Round2(p.Online)
		p.Total = money.Round2(p.Cash + p.Card + p.MealCard + p.Online)
		resp.Points = append(resp.Points, *p)

		grand.Cash += p.Cash
		grand.Card += p.Card
		grand.MealCard += p.MealCard
		grand.Online += p.Online
		grand.Total += p.Total
	}
	grand.Label = "total"
	return resp
}

// GET /api/dashboard/sales-chart?period=daily&count=7&end=2025-03-31
func SalesChartHandler(months MonthLister) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}

		period := c.Query("period", "daily")
		count := 0
		if s := c.Query("count"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 || n > 366 {
				return fiber.NewError(fiber.StatusBadRequest, "count geçersiz")
			}
			count = n
		}
		if count == 0 {
			switch period {
			case "weekly":
				count = 8
			case "monthly":
				count = 12
			default:
				count = 7
			}
		}

		now := time.Now()
		end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		if s := c.Query("end"); s != "" {
			if end, err = time.Parse(time.DateOnly, s); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "end geçersiz (YYYY-MM-DD)")
			}
		}

		all, err := months.List(c.UserContext(), userID)
		if err != nil {
			return httperr.From(err)
		}

		period, start, end := chartRange(period, count, end)
		return c.JSON(buildChart(all, period, start, end))
	}
}
