package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"signup/internal/alert"
	"signup/internal/registration/form"
	"signup/internal/registration/service"
	dErrors "signup/pkg/domain-errors"
	"signup/pkg/platform/httputil"
	"signup/pkg/requestcontext"
)

//go:generate mockgen -source=handlers_register.go -destination=mocks/register-mocks.go -package=mocks Submitter,AlertReader

const (
	registerPath = "/account/register"
	loginPath    = "/account/login"
)

// Submitter runs the registration submit flow.
type Submitter interface {
	Submit(ctx context.Context, f *form.Form, route string) service.Outcome
}

// AlertReader exposes the session alerts to the views.
type AlertReader interface {
	Navigated(ctx context.Context) ([]alert.Alert, error)
	Pending(ctx context.Context) ([]alert.Alert, error)
}

// RegisterHandler serves the registration and login views.
type RegisterHandler struct {
	logger    *slog.Logger
	submitter Submitter
	alerts    AlertReader
	validator *form.Validator
	countries []string
}

func NewRegisterHandler(
	logger *slog.Logger,
	submitter Submitter,
	alerts AlertReader,
	validator *form.Validator,
	countries []string,
) *RegisterHandler {
	return &RegisterHandler{
		logger:    logger,
		submitter: submitter,
		alerts:    alerts,
		validator: validator,
		countries: countries,
	}
}

// HandleRegisterPage renders an empty form. Opening the view is a route
// change, so alerts not kept across navigation are consumed.
func (h *RegisterHandler) HandleRegisterPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	alerts := h.navigated(ctx)
	h.writeHTML(ctx, w, http.StatusOK, renderRegister(form.New(h.validator), alerts, h.countries))
}

// HandleRegister submits the posted form.
func (h *RegisterHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	if err := r.ParseForm(); err != nil {
		h.logger.WarnContext(ctx, "failed to parse registration form",
			"error", err,
			"request_id", requestID,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "malformed form body"))
		return
	}

	f := form.New(h.validator)
	values := form.Values{}
	for _, field := range form.Fields {
		// Fields is exhaustive, so With cannot fail here.
		values, _ = values.With(field, r.PostForm.Get(string(field)))
	}
	f.SetValues(values)

	out := h.submitter.Submit(ctx, f, r.URL.Path)
	switch out.State {
	case service.StateSucceeded:
		if out.Location == "" {
			httputil.WriteError(w, dErrors.Wrap(out.Err, dErrors.CodeInternal, "failed to resolve next view"))
			return
		}
		http.Redirect(w, r, out.Location, http.StatusSeeOther)
	case service.StateRejected, service.StateFailed:
		alerts, err := h.alerts.Pending(ctx)
		if err != nil {
			h.logger.ErrorContext(ctx, "failed to load alerts",
				"error", err,
				"request_id", requestID,
			)
		}
		h.writeHTML(ctx, w, http.StatusUnprocessableEntity, renderRegister(f, alerts, h.countries))
	default:
		h.logger.ErrorContext(ctx, "unexpected submit state",
			"state", out.State,
			"request_id", requestID,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "unexpected submit state"))
	}
}

// HandleLoginPage renders the login view with any alert kept from the
// previous view.
func (h *RegisterHandler) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.writeHTML(ctx, w, http.StatusOK, renderLogin(h.navigated(ctx)))
}

func (h *RegisterHandler) navigated(ctx context.Context) []alert.Alert {
	alerts, err := h.alerts.Navigated(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to apply route change to alerts",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	return alerts
}

func (h *RegisterHandler) writeHTML(ctx context.Context, w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write([]byte(body)); err != nil {
		h.logger.ErrorContext(ctx, "failed to write response",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}
