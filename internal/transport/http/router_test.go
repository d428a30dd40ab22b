package httptransport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signup/internal/account"
	"signup/internal/alert"
	"signup/internal/navigation"
	"signup/internal/platform/metrics"
	"signup/internal/platform/middleware"
	"signup/internal/registration/form"
	"signup/internal/registration/service"
	"signup/internal/session"
	"signup/pkg/platform/audit/publisher"
	auditmemory "signup/pkg/platform/audit/store/memory"
	"signup/pkg/testutil"
)

type stubHealth struct{ err error }

func (h stubHealth) Health(context.Context) error { return h.err }

type stack struct {
	router   http.Handler
	accounts *account.InMemory
	audit    *auditmemory.InMemoryStore
}

func newStack(t *testing.T, health map[string]HealthChecker) stack {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	accounts := account.NewInMemory()
	alerts := alert.NewService(alert.NewInMemoryStore(), alert.WithMetrics(m))
	auditStore := auditmemory.NewInMemoryStore()
	submit := service.New(accounts, alerts, navigation.NewRouter(),
		service.WithLogger(logger),
		service.WithMetrics(m),
		service.WithAuditor(publisher.NewPublisher(auditStore)),
	)
	h := NewRegisterHandler(logger, submit, alerts, form.NewRegistrationValidator(), []string{"Canada"})

	router := NewRouter(h, RouterConfig{
		Logger:         logger,
		Metrics:        m,
		Gatherer:       reg,
		Tokens:         session.NewTokens("test-key"),
		Session:        middleware.SessionConfig{CookieName: "signup_session", TTL: time.Hour},
		RequestTimeout: 5 * time.Second,
		Health:         health,
	})
	return stack{router: router, accounts: accounts, audit: auditStore}
}

func registration() url.Values {
	return url.Values{
		"firstName":       {"Jane"},
		"lastName":        {"Doe"},
		"username":        {"jdoe"},
		"phone":           {"555-0100"},
		"country":         {"Canada"},
		"password":        {"secret"},
		"confirmPassword": {"secret"},
	}
}

func TestRegisterThenLoginShowsSuccessOnce(t *testing.T) {
	st := newStack(t, nil)

	page := testutil.DoRequest(st.router, testutil.NewRequest(t, http.MethodGet, registerPath))
	testutil.AssertStatus(t, page, http.StatusOK)

	req := testutil.WithCookies(testutil.NewFormRequest(t, http.MethodPost, registerPath, registration()), page)
	rr := testutil.DoRequest(st.router, req)
	testutil.AssertRedirect(t, rr, loginPath)
	assert.True(t, st.accounts.Registered("jdoe"))

	login := testutil.DoRequest(st.router, testutil.WithCookies(testutil.NewRequest(t, http.MethodGet, loginPath), page))
	testutil.AssertStatus(t, login, http.StatusOK)
	testutil.AssertBodyContains(t, login, "Registration successful")

	again := testutil.DoRequest(st.router, testutil.WithCookies(testutil.NewRequest(t, http.MethodGet, loginPath), page))
	testutil.AssertStatus(t, again, http.StatusOK)
	testutil.AssertBodyNotContains(t, again, "Registration successful")

	events, err := st.audit.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "jdoe", events[0].Username)
}

func TestDuplicateUsernameShowsRemoteError(t *testing.T) {
	st := newStack(t, nil)
	require.NoError(t, st.accounts.Register(context.Background(), account.Registration{Username: "jdoe"}))

	page := testutil.DoRequest(st.router, testutil.NewRequest(t, http.MethodGet, registerPath))
	req := testutil.WithCookies(testutil.NewFormRequest(t, http.MethodPost, registerPath, registration()), page)
	rr := testutil.DoRequest(st.router, req)

	testutil.AssertStatus(t, rr, http.StatusUnprocessableEntity)
	testutil.AssertBodyContains(t, rr, "is already taken", "alert-error")

	// the error alert is not kept across navigation
	next := testutil.DoRequest(st.router, testutil.WithCookies(testutil.NewRequest(t, http.MethodGet, registerPath), page))
	testutil.AssertBodyNotContains(t, next, "is already taken")
}

func TestInvalidSubmitDoesNotReachAccountService(t *testing.T) {
	st := newStack(t, nil)

	values := registration()
	values.Set("confirmPassword", "secrets")
	rr := testutil.DoRequest(st.router, testutil.NewFormRequest(t, http.MethodPost, registerPath, values))

	testutil.AssertStatus(t, rr, http.StatusUnprocessableEntity)
	testutil.AssertBodyContains(t, rr, "Passwords must match")
	assert.False(t, st.accounts.Registered("jdoe"))
}

func TestRootRedirectsToRegister(t *testing.T) {
	st := newStack(t, nil)
	rr := testutil.DoRequest(st.router, testutil.NewRequest(t, http.MethodGet, "/"))
	testutil.AssertRedirect(t, rr, registerPath)
}

func TestHealthz(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		st := newStack(t, map[string]HealthChecker{"redis": stubHealth{}})
		rr := testutil.DoRequest(st.router, testutil.NewRequest(t, http.MethodGet, "/healthz"))
		testutil.AssertStatus(t, rr, http.StatusOK)
		testutil.AssertBodyContains(t, rr, `"status":"ok"`)
	})

	t.Run("degraded", func(t *testing.T) {
		st := newStack(t, map[string]HealthChecker{"redis": stubHealth{err: errors.New("connection refused")}})
		rr := testutil.DoRequest(st.router, testutil.NewRequest(t, http.MethodGet, "/healthz"))
		testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
		testutil.AssertBodyContains(t, rr, `"status":"degraded"`, "connection refused")
	})
}

func TestMetricsEndpoint(t *testing.T) {
	st := newStack(t, nil)
	testutil.DoRequest(st.router, testutil.NewFormRequest(t, http.MethodPost, registerPath, url.Values{}))

	rr := testutil.DoRequest(st.router, testutil.NewRequest(t, http.MethodGet, "/metrics"))
	testutil.AssertStatus(t, rr, http.StatusOK)
	testutil.AssertBodyContains(t, rr, "signup_registration_outcomes_total", `outcome="rejected"`)
}
