package alert

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"signup/internal/platform/metrics"
	dErrors "signup/pkg/domain-errors"
	"signup/pkg/requestcontext"
)

// Service queues alerts for the session found in the request context.
type Service struct {
	store   Store
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

type Option func(*Service)

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Success(ctx context.Context, message string, opts Options) error {
	return s.add(ctx, KindSuccess, message, opts)
}

// Error queues err's text unchanged as an error alert.
func (s *Service) Error(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	return s.add(ctx, KindError, err.Error(), Options{})
}

func (s *Service) Info(ctx context.Context, message string, opts Options) error {
	return s.add(ctx, KindInfo, message, opts)
}

func (s *Service) Warn(ctx context.Context, message string, opts Options) error {
	return s.add(ctx, KindWarning, message, opts)
}

// Clear removes every alert of the current session.
func (s *Service) Clear(ctx context.Context) error {
	sid, err := sessionID(ctx)
	if err != nil {
		return err
	}
	if err := s.store.Clear(ctx, sid); err != nil {
		return fmt.Errorf("clear alerts: %w", err)
	}
	return nil
}

// Pending returns the session's alerts without consuming them.
func (s *Service) Pending(ctx context.Context) ([]Alert, error) {
	sid, err := sessionID(ctx)
	if err != nil {
		return nil, err
	}
	alerts, err := s.store.List(ctx, sid)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	return alerts, nil
}

// Navigated records a route change. Alerts not marked KeepAfterRouteChange are
// dropped. Kept alerts survive this navigation only: their flag is cleared so
// the next one drops them. The survivors are returned for display.
func (s *Service) Navigated(ctx context.Context) ([]Alert, error) {
	sid, err := sessionID(ctx)
	if err != nil {
		return nil, err
	}
	alerts, err := s.store.Update(ctx, sid, routeChange)
	if err != nil {
		return nil, fmt.Errorf("apply route change: %w", err)
	}
	return alerts, nil
}

func routeChange(alerts []Alert) []Alert {
	kept := make([]Alert, 0, len(alerts))
	for _, a := range alerts {
		if !a.KeepAfterRouteChange {
			continue
		}
		a.KeepAfterRouteChange = false
		kept = append(kept, a)
	}
	return kept
}

func (s *Service) add(ctx context.Context, kind Kind, message string, opts Options) error {
	sid, err := sessionID(ctx)
	if err != nil {
		return err
	}
	a := Alert{
		ID:                   uuid.NewString(),
		Kind:                 kind,
		Message:              message,
		KeepAfterRouteChange: opts.KeepAfterRouteChange,
		AutoClose:            opts.AutoClose,
		CreatedAt:            s.now(),
	}
	if err := s.store.Append(ctx, sid, a); err != nil {
		return fmt.Errorf("append alert: %w", err)
	}
	s.metrics.IncAlert(string(kind))
	if s.logger != nil {
		s.logger.DebugContext(ctx, "alert queued",
			"kind", kind,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	return nil
}

func sessionID(ctx context.Context) (string, error) {
	sid := requestcontext.SessionID(ctx)
	if sid == "" {
		return "", dErrors.New(dErrors.CodeUnauthorized, "missing browser session")
	}
	return sid, nil
}
