package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// FlushFunc: bir kullanıcının bekleyen değişikliklerini kalıcı depoya yazar
type FlushFunc func(ctx context.Context, userID uint) error

type pendingSave struct {
	timer *time.Timer
}

// Saver: kullanıcı başına kayıtları geciktirir ve birleştirir. Gecikme
// süresince gelen yeni değişiklikler zamanlayıcıyı yeniden başlatır.
type Saver struct {
	delay        time.Duration
	flush        FlushFunc
	log          *zap.Logger
	flushTimeout time.Duration

	mu      sync.Mutex
	pending map[uint]*pendingSave
	closed  bool
	wg      sync.WaitGroup
}

func NewSaver(delay time.Duration, flush FlushFunc, log *zap.Logger) *Saver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Saver{
		delay:        delay,
		flush:        flush,
		log:          log,
		flushTimeout: 30 * time.Second,
		pending:      make(map[uint]*pendingSave),
	}
}

// Schedule: gecikme 0 ise veya Saver kapatılmışsa hemen yazar
func (s *Saver) Schedule(ctx context.Context, userID uint) error {
	s.mu.Lock()
	if s.delay <= 0 || s.closed {
		s.mu.Unlock()
		return s.flush(ctx, userID)
	}
	defer s.mu.Unlock()

	if p, ok := s.pending[userID]; ok {
		s.stopLocked(p)
	}
	p := &pendingSave{}
	s.wg.Add(1)
	p.timer = time.AfterFunc(s.delay, func() {
		defer s.wg.Done()
		s.fire(userID, p)
	})
	s.pending[userID] = p
	return nil
}

// Flush: bekleyen zamanlayıcıyı iptal edip hemen yazar
func (s *Saver) Flush(ctx context.Context, userID uint) error {
	s.mu.Lock()
	if p, ok := s.pending[userID]; ok {
		s.stopLocked(p)
		delete(s.pending, userID)
	}
	s.mu.Unlock()
	return s.flush(ctx, userID)
}

// Pending: zamanlayıcısı bekleyen kullanıcı sayısı
func (s *Saver) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Close: yeni zamanlayıcı kurulmasını durdurur, çalışan yazmaları bekler ve
// bekleyen tüm kullanıcıları yazar
func (s *Saver) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	users := make([]uint, 0, len(s.pending))
	for uid, p := range s.pending {
		s.stopLocked(p)
		users = append(users, uid)
	}
	s.pending = make(map[uint]*pendingSave)
	s.mu.Unlock()

	s.wg.Wait()

	var errs []error
	for _, uid := range users {
		if err := s.flush(ctx, uid); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// stopLocked: zamanlayıcı henüz tetiklenmediyse WaitGroup sayacını düşer
func (s *Saver) stopLocked(p *pendingSave) {
	if p.timer.Stop() {
		s.wg.Done()
	}
}

func (s *Saver) fire(userID uint, p *pendingSave) {
	s.mu.Lock()
	if s.pending[userID] == p {
		delete(s.pending, userID)
	}
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.flushTimeout)
	defer cancel()
	if err := s.flush(ctx, userID); err != nil {
		s.log.Error("gecikmeli kayıt başarısız", zap.Uint("user_id", userID), zap.Error(err))
	}
}
