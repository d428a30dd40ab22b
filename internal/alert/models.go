// Package alert holds per-session flash messages shown at the top of a view.
package alert

import (
	"context"
	"time"
)

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
	KindWarning Kind = "warning"
)

// Alert is one message queued for a browser session.
type Alert struct {
	ID      string `json:"id"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	// KeepAfterRouteChange lets the alert survive the next navigation.
	KeepAfterRouteChange bool      `json:"keep_after_route_change"`
	AutoClose            bool      `json:"auto_close"`
	CreatedAt            time.Time `json:"created_at"`
}

// Options tune a single alert.
type Options struct {
	KeepAfterRouteChange bool
	AutoClose            bool
}

// Store persists alerts per session. Update applies fn atomically to the
// session's alerts and stores its result.
type Store interface {
	Append(ctx context.Context, sessionID string, a Alert) error
	List(ctx context.Context, sessionID string) ([]Alert, error)
	Update(ctx context.Context, sessionID string, fn func([]Alert) []Alert) ([]Alert, error)
	Clear(ctx context.Context, sessionID string) error
}
