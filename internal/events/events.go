// Package events alan olaylarının yayımlanması (kafka veya no-op).
package events

import (
	"context"
	"time"
)

const (
	TypeMonthClosed   = "month.closed"
	TypeMonthReopened = "month.reopened"
	TypeStateImported = "state.imported"
)

type Event struct {
	Type    string    `json:"type"`
	UserID  uint      `json:"user_id"`
	Month   string    `json:"month,omitempty"`
	At      time.Time `json:"at"`
	Payload any       `json:"payload,omitempty"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop: KAFKA_BROKERS tanımlı değilse kullanılır
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

// Recorder: yayımlanan olayları bellekte tutar
type Recorder struct {
	Events []Event
}

func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.Events = append(r.Events, e)
	return nil
}

func (r *Recorder) Close() error { return nil }
