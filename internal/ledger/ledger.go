// Package ledger aylık muhasebe defteri: faturalar, günlük satışlar, ay
// kapatma ve vergi özetleri.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"rasyon-backend/internal/events"
	"rasyon-backend/internal/models"
	"rasyon-backend/internal/repository"
	"rasyon-backend/internal/tax"
)

var (
	ErrMonthClosed  = errors.New("ay kapatılmış, düzenlenemez")
	ErrInvalidMonth = errors.New("geçersiz ay")
	ErrNotFound     = errors.New("kayıt bulunamadı")
	ErrValidation   = errors.New("geçersiz veri")
)

const monthLayout = "2006-01"

// SettingsSource: şirket türü ve satış KDV oranı için ayarlar
type SettingsSource interface {
	Settings(ctx context.Context, userID uint) (models.Settings, error)
}

type Service struct {
	repo     repository.MonthStore
	settings SettingsSource
	table    *tax.Table
	events   events.Publisher
	log      *zap.Logger
	now      func() time.Time

	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func NewService(repo repository.MonthStore, settings SettingsSource, table *tax.Table, pub events.Publisher, log *zap.Logger) *Service {
	if pub == nil {
		pub = events.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		repo:     repo,
		settings: settings,
		table:    table,
		events:   pub,
		log:      log,
		now:      time.Now,
		locks:    make(map[uint]*sync.Mutex),
	}
}

// ParseMonth: "2025-03" biçimini doğrular
func ParseMonth(month string) (time.Time, error) {
	t, err := time.Parse(monthLayout, month)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidMonth, month)
	}
	return t, nil
}

func (s *Service) lock(userID uint) func() {
	s.mu.Lock()
	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	s.mu.Unlock()
	l.Lock()
	return l.Unlock
}

func emptyMonth(month string) models.MonthData {
	return models.MonthData{Month: month, Invoices: []models.Invoice{}, DailySales: []models.DailySale{}}
}

func (s *Service) load(ctx context.Context, userID uint, month string) (models.MonthData, error) {
	m, err := s.repo.LoadMonth(ctx, userID, month)
	if errors.Is(err, repository.ErrNotFound) {
		return emptyMonth(month), nil
	}
	if err != nil {
		return models.MonthData{}, fmt.Errorf("ay yüklenemedi: %w", err)
	}
	if m.Invoices == nil {
		m.Invoices = []models.Invoice{}
	}
	if m.DailySales == nil {
		m.DailySales = []models.DailySale{}
	}
	return m, nil
}

// Month: kayıt yoksa boş ay döner
func (s *Service) Month(ctx context.Context, userID uint, month string) (models.MonthData, error) {
	if _, err := ParseMonth(month); err != nil {
		return models.MonthData{}, err
	}
	return s.load(ctx, userID, month)
}

// List: kullanıcının kayıtlı ayları, kronolojik
func (s *Service) List(ctx context.Context, userID uint) ([]models.MonthData, error) {
	months, err := s.repo.ListMonths(ctx, userID)
	if err != nil {
		return nil, err
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Month < months[j].Month })
	return months, nil
}

// mutate: açık ay üzerinde fn'i uygular ve ayı kaydeder
func (s *Service) mutate(ctx context.Context, userID uint, month string, fn func(m *models.MonthData) error) (models.MonthData, error) {
	if _, err := ParseMonth(month); err != nil {
		return models.MonthData{}, err
	}
	unlock := s.lock(userID)
	defer unlock()

	m, err := s.load(ctx, userID, month)
	if err != nil {
		return models.MonthData{}, err
	}
	if m.IsClosed {
		return m, fmt.Errorf("%w: %s", ErrMonthClosed, month)
	}
	if err := fn(&m); err != nil {
		return m, err
	}
	if err := s.repo.SaveMonth(ctx, userID, m); err != nil {
		return m, fmt.Errorf("ay kaydedilemedi: %w", err)
	}
	return m, nil
}

// ---- Faturalar ----

func validateInvoice(month string, inv models.Invoice) (models.Invoice, error) {
	inv.Description = strings.TrimSpace(inv.Description)
	inv.Category = strings.TrimSpace(inv.Category)
	if inv.Category == "" {
		return inv, fmt.Errorf("%w: kategori boş olamaz", ErrValidation)
	}
	if err := validateDay(month, inv.Date); err != nil {
		return inv, err
	}
	if inv.Amount < 0 {
		return inv, fmt.Errorf("%w: tutar negatif olamaz", ErrValidation)
	}
	if inv.VATRate < 0 || inv.VATRate > 100 {
		return inv, fmt.Errorf("%w: KDV oranı 0-100 arasında olmalı", ErrValidation)
	}
	switch inv.TaxMethod {
	case "":
		inv.TaxMethod = models.TaxMethodVAT
	case models.TaxMethodVAT, models.TaxMethodNone:
	case models.TaxMethodStopaj:
		if inv.Category != models.InvoiceCategoryRent {
			return inv, fmt.Errorf("%w: stopaj sadece kira faturalarında kullanılabilir", ErrValidation)
		}
		inv.VATRate = 0
	default:
		return inv, fmt.Errorf("%w: geçersiz vergi yöntemi %q", ErrValidation, inv.TaxMethod)
	}
	return inv, nil
}

// validateDay: tarih "2025-03-14" biçiminde ve verilen ay içinde olmalı
func validateDay(month, date string) error {
	d, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return fmt.Errorf("%w: geçersiz tarih %q", ErrValidation, date)
	}
	if d.Format(monthLayout) != month {
		return fmt.Errorf("%w: %s tarihi %s ayına ait değil", ErrValidation, date, month)
	}
	return nil
}

func (s *Service) AddInvoice(ctx context.Context, userID uint, month string, inv models.Invoice) (models.Invoice, error) {
	inv, err := validateInvoice(month, inv)
	if err != nil {
		return inv, err
	}
	inv.ID = uuid.NewString()
	_, err = s.mutate(ctx, userID, month, func(m *models.MonthData) error {
		m.Invoices = append(m.Invoices, inv)
		return nil
	})
	return inv, err
}

func (s *Service) UpdateInvoice(ctx context.Context, userID uint, month string, inv models.Invoice) (models.Invoice, error) {
	inv, err := validateInvoice(month, inv)
	if err != nil {
		return inv, err
	}
	_, err = s.mutate(ctx, userID, month, func(m *models.MonthData) error {
		i := slices.IndexFunc(m.Invoices, func(x models.Invoice) bool { return x.ID == inv.ID })
		if i < 0 {
			return fmt.Errorf("%w: fatura %q", ErrNotFound, inv.ID)
		}
		m.Invoices[i] = inv
		return nil
	})
	return inv, err
}

func (s *Service) DeleteInvoice(ctx context.Context, userID uint, month, id string) error {
	_, err := s.mutate(ctx, userID, month, func(m *models.MonthData) error {
		n := len(m.Invoices)
		m.Invoices = slices.DeleteFunc(m.Invoices, func(x models.Invoice) bool { return x.ID == id })
		if len(m.Invoices) == n {
			return fmt.Errorf("%w: fatura %q", ErrNotFound, id)
		}
		return nil
	})
	return err
}

// ---- Günlük satışlar ----

// SetDailySale: aynı güne ait kayıt varsa üzerine yazar; satışlar tarihe göre sıralı tutulur
func (s *Service) SetDailySale(ctx context.Context, userID uint, month string, sale models.DailySale) (models.DailySale, error) {
	if err := validateDay(month, sale.Date); err != nil {
		return sale, err
	}
	if sale.Cash < 0 || sale.Card < 0 || sale.MealCard < 0 || sale.Online < 0 {
		return sale, fmt.Errorf("%w: satış tutarları negatif olamaz", ErrValidation)
	}
	_, err := s.mutate(ctx, userID, month, func(m *models.MonthData) error {
		i := slices.IndexFunc(m.DailySales, func(x models.DailySale) bool { return x.Date == sale.Date })
		if i >= 0 {
			m.DailySales[i] = sale
		} else {
			m.DailySales = append(m.DailySales, sale)
		}
		sort.Slice(m.DailySales, func(a, b int) bool { return m.DailySales[a].Date < m.DailySales[b].Date })
		return nil
	})
	return sale, err
}

func (s *Service) DeleteDailySale(ctx context.Context, userID uint, month, date string) error {
	_, err := s.mutate(ctx, userID, month, func(m *models.MonthData) error {
		n := len(m.DailySales)
		m.DailySales = slices.DeleteFunc(m.DailySales, func(x models.DailySale) bool { return x.Date == date })
		if len(m.DailySales) == n {
			return fmt.Errorf("%w: %s tarihli satış", ErrNotFound, date)
		}
		return nil
	})
	return err
}

// ---- Kapatma ----

// Close: ayı kilitler. Kapanmış aylar KDV devir zincirine girer.
func (s *Service) Close(ctx context.Context, userID uint, month string) (models.MonthData, error) {
	m, err := s.mutate(ctx, userID, month, func(m *models.MonthData) error {
		now := s.now()
		m.IsClosed = true
		m.ClosedAt = &now
		return nil
	})
	if err != nil {
		return m, err
	}
	s.publish(ctx, events.Event{Type: events.TypeMonthClosed, UserID: userID, Month: month})
	return m, nil
}

func (s *Service) Reopen(ctx context.Context, userID uint, month string) (models.MonthData, error) {
	if _, err := ParseMonth(month); err != nil {
		return models.MonthData{}, err
	}
	unlock := s.lock(userID)
	defer unlock()

	m, err := s.load(ctx, userID, month)
	if err != nil {
		return m, err
	}
	if !m.IsClosed {
		return m, fmt.Errorf("%w: %s ayı zaten açık", ErrValidation, month)
	}
	m.IsClosed = false
	m.ClosedAt = nil
	if err := s.repo.SaveMonth(ctx, userID, m); err != nil {
		return m, fmt.Errorf("ay kaydedilemedi: %w", err)
	}
	s.publish(ctx, events.Event{Type: events.TypeMonthReopened, UserID: userID, Month: month})
	return m, nil
}

// publish: olay yayımlama hatası işlemi bozmaz, sadece loglanır
func (s *Service) publish(ctx context.Context, e events.Event) {
	e.At = s.now()
	if err := s.events.Publish(ctx, e); err != nil {
		s.log.Warn("olay yayımlanamadı", zap.String("type", e.Type), zap.Uint("user_id", e.UserID), zap.Error(err))
	}
}
