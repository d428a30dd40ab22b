// Package service runs the registration submit flow: validate the form, call
// the account service, then report the outcome through alerts and navigation.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"signup/internal/account"
	"signup/internal/alert"
	"signup/internal/platform/metrics"
	"signup/internal/registration/form"
	"signup/pkg/platform/audit"
	"signup/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks AccountService,AlertService,Navigator,AuditPublisher

const (
	// SuccessMessage is shown on the login view after an account is created.
	SuccessMessage = "Registration successful"
	// LoginPath is resolved against the register route after success.
	LoginPath = "../login"
	// DefaultCallTimeout bounds one account call.
	DefaultCallTimeout = 30 * time.Second
)

type AccountService interface {
	Register(ctx context.Context, reg account.Registration) error
}

type AlertService interface {
	Clear(ctx context.Context) error
	Success(ctx context.Context, message string, opts alert.Options) error
	Error(ctx context.Context, err error) error
}

type Navigator interface {
	Navigate(ctx context.Context, segments []string, relativeTo string) (string, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// State is a step of one submit attempt.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateRejected
	StateSubmitting
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateRejected:
		return "rejected"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Outcome is the terminal state of a submit. Location is set on success and
// is where the caller should send the browser. Err is the account service
// error on failure, or a navigation error on success.
type Outcome struct {
	State    State
	Location string
	Err      error
	// Joined is true when this submit shared a call already in flight for
	// the same session instead of issuing its own.
	Joined bool
}

// Service handles registration submits. It is safe for concurrent use.
type Service struct {
	accounts  AccountService
	alerts    AlertService
	navigator Navigator
	auditor   AuditPublisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	inflight  singleflight.Group

	// callTimeout bounds an account call once it no longer follows the
	// cancellation of the request that started it.
	callTimeout time.Duration
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithCallTimeout bounds each account call. Defaults to DefaultCallTimeout.
func WithCallTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.callTimeout = d
		}
	}
}

func WithAuditor(p AuditPublisher) Option {
	return func(s *Service) {
		s.auditor = p
	}
}

func New(accounts AccountService, alerts AlertService, navigator Navigator, opts ...Option) *Service {
	s := &Service{
		accounts:    accounts,
		alerts:      alerts,
		navigator:   navigator,
		logger:      slog.Default(),
		callTimeout: DefaultCallTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit runs one submit attempt for f, which belongs to the view at route.
//
// An invalid form is rejected without contacting the account service. A valid
// one is sent with loading set. On success a kept success alert is queued and
// the login path relative to route is returned; loading stays set because the
// view is being left. On failure the error is queued verbatim as an alert and
// loading is cleared.
func (s *Service) Submit(ctx context.Context, f *form.Form, route string) Outcome {
	f.MarkSubmitted()
	s.logger.DebugContext(ctx, "registration submit", "state", StateValidating)
	if err := s.alerts.Clear(ctx); err != nil {
		s.logger.WarnContext(ctx, "failed to clear alerts",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}

	values := f.Values()
	if !f.Valid() {
		s.finish(ctx, StateRejected, values, "form invalid")
		return Outcome{State: StateRejected}
	}

	f.SetLoading(true)
	s.logger.DebugContext(ctx, "registration submit", "state", StateSubmitting)
	joined, err := s.register(ctx, values)
	if joined {
		s.metrics.IncSubmitsJoined()
	}

	if err != nil {
		f.SetLoading(false)
		s.logger.WarnContext(ctx, "registration failed",
			"error", err,
			"username", values.Username,
			"joined", joined,
			"request_id", requestcontext.RequestID(ctx),
		)
		return Outcome{State: StateFailed, Err: err, Joined: joined}
	}

	location, navErr := s.navigator.Navigate(ctx, []string{LoginPath}, route)
	if navErr != nil {
		s.logger.ErrorContext(ctx, "failed to resolve login path",
			"error", navErr,
			"route", route,
		)
		return Outcome{State: StateSucceeded, Err: navErr, Joined: joined}
	}
	return Outcome{State: StateSucceeded, Location: location, Joined: joined}
}

// register calls the account service and queues the resulting alert and audit
// event. Submits from the same browser session share one call: the alert is
// queued before any of them returns, and the call is not cancelled when the
// request that started it goes away. callTimeout bounds it instead.
func (s *Service) register(ctx context.Context, values form.Values) (bool, error) {
	call := func() (any, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.callTimeout)
		defer cancel()
		err := s.accounts.Register(callCtx, account.FromValues(values))
		s.report(callCtx, values, err)
		return nil, err
	}

	sid := requestcontext.SessionID(ctx)
	if sid == "" {
		_, err := call()
		return false, err
	}
	leader := false
	_, err, shared := s.inflight.Do(sid, func() (any, error) {
		leader = true
		return call()
	})
	return shared && !leader, err
}

// report queues the outcome alert and records the terminal state.
func (s *Service) report(ctx context.Context, values form.Values, err error) {
	if err != nil {
		if alertErr := s.alerts.Error(ctx, err); alertErr != nil {
			s.logger.ErrorContext(ctx, "failed to queue error alert", "error", alertErr)
		}
		s.finish(ctx, StateFailed, values, err.Error())
		return
	}
	if alertErr := s.alerts.Success(ctx, SuccessMessage, alert.Options{KeepAfterRouteChange: true}); alertErr != nil {
		s.logger.ErrorContext(ctx, "failed to queue success alert", "error", alertErr)
	}
	s.finish(ctx, StateSucceeded, values, "")
}

func (s *Service) finish(ctx context.Context, state State, values form.Values, reason string) {
	s.metrics.IncRegistrationOutcome(state.String())

	if state == StateSucceeded {
		s.logger.InfoContext(ctx, "account registered",
			"username", values.Username,
			"request_id", requestcontext.RequestID(ctx),
		)
	}

	if s.auditor == nil {
		return
	}
	action := audit.ActionRegistrationSucceeded
	switch state {
	case StateRejected:
		action = audit.ActionRegistrationRejected
	case StateFailed:
		action = audit.ActionRegistrationFailed
	}
	err := s.auditor.Emit(ctx, audit.Event{
		Action:    action,
		Timestamp: requestcontext.Now(ctx),
		SessionID: requestcontext.SessionID(ctx),
		Username:  values.Username,
		Country:   values.Country,
		Reason:    reason,
		RequestID: requestcontext.RequestID(ctx),
		ClientIP:  requestcontext.ClientIP(ctx),
		Device:    requestcontext.Device(ctx),
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.ErrorContext(ctx, "failed to emit audit event",
			"action", action,
			"error", err,
		)
	}
}
