package store

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"rasyon-backend/internal/models"
	"rasyon-backend/internal/repository"
)

type userState struct {
	mu     sync.Mutex
	loaded bool
	state  State
	dirty  map[models.Section]bool

	// aynı kullanıcı için yazmaları sıraya koyar
	saveMu sync.Mutex
}

// Service: kullanıcı durumlarının tek denetleyicisi. Komutlar kullanıcı başına
// sırayla uygulanır, değişen bölümler Saver üzerinden kalıcı depoya yazılır.
type Service struct {
	repo  repository.StateStore
	saver *Saver
	log   *zap.Logger

	mu    sync.Mutex
	users map[uint]*userState
}

func NewService(repo repository.StateStore, debounce time.Duration, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		repo:  repo,
		log:   log,
		users: make(map[uint]*userState),
	}
	s.saver = NewSaver(debounce, s.flush, log)
	return s
}

func (s *Service) entry(userID uint) *userState {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.users[userID]
	if !ok {
		e = &userState{dirty: make(map[models.Section]bool)}
		s.users[userID] = e
	}
	return e
}

// loadLocked: e.mu tutulurken çağrılır
func (s *Service) loadLocked(ctx context.Context, userID uint, e *userState) error {
	if e.loaded {
		return nil
	}
	snap, err := s.repo.LoadState(ctx, userID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		snap = models.Snapshot{}
	case err != nil:
		return fmt.Errorf("durum yüklenemedi: %w", err)
	}
	st := FromSnapshot(snap)
	st.Settings = st.Settings.WithDefaults()
	e.state = st
	e.loaded = true
	return nil
}

// State: kullanıcının güncel durumu (ilk erişimde depodan yüklenir)
func (s *Service) State(ctx context.Context, userID uint) (State, error) {
	e := s.entry(userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := s.loadLocked(ctx, userID, e); err != nil {
		return State{}, err
	}
	return e.state, nil
}

func (s *Service) Settings(ctx context.Context, userID uint) (models.Settings, error) {
	st, err := s.State(ctx, userID)
	if err != nil {
		return models.Settings{}, err
	}
	return st.Settings.WithDefaults(), nil
}

// Update: fn'i güncel durum üzerinde uygular. fn hata dönerse durum değişmez.
func (s *Service) Update(ctx context.Context, userID uint, fn func(State) (State, error)) (State, error) {
	e := s.entry(userID)
	e.mu.Lock()
	if err := s.loadLocked(ctx, userID, e); err != nil {
		e.mu.Unlock()
		return State{}, err
	}
	next, err := fn(e.state)
	if err != nil {
		e.mu.Unlock()
		return e.state, err
	}
	changed := ChangedSections(e.state, next)
	e.state = next
	for _, sec := range changed {
		e.dirty[sec] = true
	}
	e.mu.Unlock()

	if len(changed) == 0 {
		return next, nil
	}
	if err := s.saver.Schedule(ctx, userID); err != nil {
		s.log.Warn("durum kaydedilemedi, bölümler kirli kaldı", zap.Uint("user_id", userID), zap.Error(err))
		return next, fmt.Errorf("%w: %w", ErrNotSaved, err)
	}
	return next, nil
}

// Replace: içe aktarım; tüm bölümler değişmiş sayılır
func (s *Service) Replace(ctx context.Context, userID uint, st State) (State, error) {
	st, err := st.Normalize()
	if err != nil {
		return State{}, err
	}
	e := s.entry(userID)
	e.mu.Lock()
	e.state = st
	e.loaded = true
	for _, sec := range models.AllSections {
		e.dirty[sec] = true
	}
	e.mu.Unlock()

	if err := s.saver.Schedule(ctx, userID); err != nil {
		s.log.Warn("durum kaydedilemedi, bölümler kirli kaldı", zap.Uint("user_id", userID), zap.Error(err))
		return st, fmt.Errorf("%w: %w", ErrNotSaved, err)
	}
	return st, nil
}

// Save: bekleyen değişiklikleri hemen yazar
func (s *Service) Save(ctx context.Context, userID uint) error {
	return s.saver.Flush(ctx, userID)
}

// Close: zamanlayıcıları durdurur ve kirli bölümü kalan her kullanıcıyı yazar.
// Arka planda başarısız olmuş kayıtlar da burada yeniden denenir.
func (s *Service) Close(ctx context.Context) error {
	if err := s.saver.Close(ctx); err != nil {
		s.log.Warn("bekleyen kayıtlar yazılamadı, yeniden deneniyor", zap.Error(err))
	}

	var errs []error
	for _, uid := range s.dirtyUsers() {
		if err := s.flush(ctx, uid); err != nil {
			errs = append(errs, fmt.Errorf("kullanıcı %d: %w", uid, err))
		}
	}
	return errors.Join(errs...)
}

func (s *Service) dirtyUsers() []uint {
	s.mu.Lock()
	entries := make(map[uint]*userState, len(s.users))
	for uid, e := range s.users {
		entries[uid] = e
	}
	s.mu.Unlock()

	var out []uint
	for uid, e := range entries {
		e.mu.Lock()
		if len(e.dirty) > 0 {
			out = append(out, uid)
		}
		e.mu.Unlock()
	}
	slices.Sort(out)
	return out
}

// Dirty: henüz yazılmamış bölümler
func (s *Service) Dirty(userID uint) []models.Section {
	e := s.entry(userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	return sortedSections(e.dirty)
}

func (s *Service) flush(ctx context.Context, userID uint) error {
	e := s.entry(userID)
	e.saveMu.Lock()
	defer e.saveMu.Unlock()

	e.mu.Lock()
	if len(e.dirty) == 0 {
		e.mu.Unlock()
		return nil
	}
	snap := e.state.Snapshot()
	sections := sortedSections(e.dirty)
	e.dirty = make(map[models.Section]bool)
	e.mu.Unlock()

	if err := s.repo.SaveState(ctx, userID, snap, sections); err != nil {
		e.mu.Lock()
		for _, sec := range sections {
			e.dirty[sec] = true
		}
		e.mu.Unlock()
		return err
	}
	s.log.Debug("durum kaydedildi", zap.Uint("user_id", userID), zap.Int("sections", len(sections)))
	return nil
}

func sortedSections(set map[models.Section]bool) []models.Section {
	out := make([]models.Section, 0, len(set))
	for _, sec := range models.AllSections {
		if set[sec] {
			out = append(out, sec)
		}
	}
	return out
}

// ChangedSections: iki durum arasında değişen bölümler
func ChangedSections(prev, next State) []models.Section {
	var out []models.Section
	check := func(sec models.Section, a, b any) {
		if !reflect.DeepEqual(a, b) {
			out = append(out, sec)
		}
	}
	check(models.SectionRawIngredients, prev.RawIngredients, next.RawIngredients)
	check(models.SectionIntermediateProducts, prev.IntermediateProducts, next.IntermediateProducts)
	check(models.SectionRecipes, prev.Recipes, next.Recipes)
	check(models.SectionRecipeCategories, prev.RecipeCategories, next.RecipeCategories)
	check(models.SectionIngredientCategories, prev.IngredientCategories, next.IngredientCategories)
	check(models.SectionExpenses, prev.Expenses, next.Expenses)
	check(models.SectionSalesTargets, prev.SalesTargets, next.SalesTargets)
	check(models.SectionSettings, prev.Settings, next.Settings)
	return out
}
