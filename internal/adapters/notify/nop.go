package notify

import (
	"context"

	"github.com/bnema/blum-farm-cli/internal/ports"
)

// Nop drops every event. It is used when no notification channel is configured.
type Nop struct{}

var _ ports.Notifier = Nop{}

func (Nop) Notify(context.Context, ports.Event) error {
	return nil
}
