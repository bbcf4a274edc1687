package ports

import (
	"context"
	"errors"

	"github.com/deatransindo/absensi/internal/domain"
)

// HealthChecker is used to probe dependencies.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// ErrSubscriptionGone reports a push endpoint the provider considers
// permanently invalid (expired or unsubscribed).
var ErrSubscriptionGone = errors.New("push subscription gone")

// PushSender delivers an opaque payload to one browser push subscription.
type PushSender interface {
	Send(ctx context.Context, sub domain.PushSubscription, payload []byte) error
}
