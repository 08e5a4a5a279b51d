package ports

import (
	"context"

	"github.com/bnema/blum-farm-cli/internal/domain"
)

type EventKind string

const (
	EventCycleCompleted EventKind = "cycle_completed"
	EventCycleFailed    EventKind = "cycle_failed"
	EventSessionInvalid EventKind = "session_invalid"
)

type Event struct {
	Kind    EventKind
	Account domain.AccountID
	Text    string
}

type Notifier interface {
	Notify(ctx context.Context, event Event) error
}
