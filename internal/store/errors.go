package store

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("kayıt bulunamadı")
	ErrValidation = errors.New("geçersiz veri")

	// ErrNotSaved: değişiklik bellekte uygulandı fakat depoya yazılamadı.
	// Bölümler kirli kalır; sonraki kayıt, Save veya Close tekrar dener.
	ErrNotSaved = errors.New("değişiklik uygulandı ancak kaydedilemedi")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func notFound(kind, id string) error {
	return fmt.Errorf("%w: %s %q", ErrNotFound, kind, id)
}
