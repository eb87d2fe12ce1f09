// Package memory süreç içi depo. Testlerde ve STORE_BACKEND=memory ile
// geliştirme ortamında kullanılır.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"rasyon-backend/internal/models"
	"rasyon-backend/internal/repository"
)

type monthKey struct {
	userID uint
	month  string
}

type Repository struct {
	mu      sync.RWMutex
	users   map[uint]models.User
	states  map[uint]map[models.Section]json.RawMessage
	months  map[monthKey]models.MonthData
	audits  []models.AuditLog
	backups []models.StateBackup
	nextID  uint

	saveCalls [][]models.Section
}

var _ repository.Repository = (*Repository)(nil)

func New() *Repository {
	return &Repository{
		users:  make(map[uint]models.User),
		states: make(map[uint]map[models.Section]json.RawMessage),
		months: make(map[monthKey]models.MonthData),
	}
}

func (r *Repository) id() uint {
	r.nextID++
	return r.nextID
}

// ---- Users ----

func (r *Repository) CreateUser(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, user.Email) {
			return fmt.Errorf("%w: %s", repository.ErrDuplicate, user.Email)
		}
	}
	now := time.Now()
	user.ID = r.id()
	user.CreatedAt, user.UpdatedAt = now, now
	r.users[user.ID] = *user
	return nil
}

func (r *Repository) UserByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *Repository) UserByID(_ context.Context, id uint) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *Repository) ListUsers(_ context.Context) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *Repository) CountUsers(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.users)), nil
}

// ---- State ----

// Bölümler JSON olarak saklanır; böylece çağıranın dilimleri paylaşılmaz ve
// birleştirme davranışı postgres uygulamasıyla aynı kalır.
func (r *Repository) LoadState(_ context.Context, userID uint) (models.Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.states[userID]
	if !ok {
		return models.Snapshot{}, repository.ErrNotFound
	}
	var snap models.Snapshot
	for sec, raw := range doc {
		if err := repository.DecodeSection(&snap, sec, raw); err != nil {
			return models.Snapshot{}, err
		}
	}
	return snap, nil
}

func (r *Repository) SaveState(_ context.Context, userID uint, snap models.Snapshot, sections []models.Section) error {
	sections = repository.SectionsOrAll(sections)
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.states[userID]
	if !ok {
		doc = make(map[models.Section]json.RawMessage)
		r.states[userID] = doc
	}
	for _, sec := range sections {
		raw, err := repository.EncodeSection(snap, sec)
		if err != nil {
			return err
		}
		doc[sec] = raw
	}
	r.saveCalls = append(r.saveCalls, slices.Clone(sections))
	return nil
}

// SaveCalls: SaveState'e gelen bölüm listeleri
func (r *Repository) SaveCalls() [][]models.Section {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.saveCalls)
}

// ---- Months ----

func (r *Repository) LoadMonth(_ context.Context, userID uint, month string) (models.MonthData, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.months[monthKey{userID, month}]
	if !ok {
		return models.MonthData{}, repository.ErrNotFound
	}
	return cloneMonth(m), nil
}

func (r *Repository) SaveMonth(_ context.Context, userID uint, data models.MonthData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.months[monthKey{userID, data.Month}] = cloneMonth(data)
	return nil
}

func (r *Repository) ListMonths(_ context.Context, userID uint) ([]models.MonthData, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.MonthData
	for k, m := range r.months {
		if k.userID == userID {
			out = append(out, cloneMonth(m))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, nil
}

func cloneMonth(m models.MonthData) models.MonthData {
	m.Invoices = slices.Clone(m.Invoices)
	m.DailySales = slices.Clone(m.DailySales)
	if m.ClosedAt != nil {
		t := *m.ClosedAt
		m.ClosedAt = &t
	}
	return m
}

// ---- Audit ----

func (r *Repository) WriteAudit(_ context.Context, log *models.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	log.ID = r.id()
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now()
	}
	r.audits = append(r.audits, *log)
	return nil
}

func (r *Repository) ListAudit(_ context.Context, f repository.AuditFilter) ([]models.AuditLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.AuditLog
	for i := len(r.audits) - 1; i >= 0; i-- {
		l := r.audits[i]
		if f.UserID != 0 && l.UserID != f.UserID {
			continue
		}
		if f.EntityType != "" && l.EntityType != f.EntityType {
			continue
		}
		if f.EntityID != "" && l.EntityID != f.EntityID {
			continue
		}
		out = append(out, l)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out, nil
}

// ---- Backups ----

func (r *Repository) SaveBackup(_ context.Context, b *models.StateBackup) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b.ID = r.id()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
	r.backups = append(r.backups, *b)
	return nil
}

func (r *Repository) ListBackups(_ context.Context, userID uint, limit int) ([]models.StateBackup, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.StateBackup
	for i := len(r.backups) - 1; i >= 0; i-- {
		b := r.backups[i]
		if userID != 0 && b.UserID != userID {
			continue
		}
		out = append(out, b)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *Repository) Close(context.Context) error { return nil }
