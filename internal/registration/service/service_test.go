package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"signup/internal/account"
	"signup/internal/alert"
	"signup/internal/registration/form"
	"signup/internal/registration/service/mocks"
	"signup/pkg/platform/audit"
	"signup/pkg/requestcontext"
)

const registerRoute = "/account/register"

type SubmitSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	accounts  *mocks.MockAccountService
	alerts    *mocks.MockAlertService
	navigator *mocks.MockNavigator
	auditor   *mocks.MockAuditPublisher
	service   *Service
	validator *form.Validator
	ctx       context.Context
}

func TestSubmitSuite(t *testing.T) {
	suite.Run(t, new(SubmitSuite))
}

func (s *SubmitSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.accounts = mocks.NewMockAccountService(s.ctrl)
	s.alerts = mocks.NewMockAlertService(s.ctrl)
	s.navigator = mocks.NewMockNavigator(s.ctrl)
	s.auditor = mocks.NewMockAuditPublisher(s.ctrl)
	s.service = New(s.accounts, s.alerts, s.navigator, WithAuditor(s.auditor))
	s.validator = form.NewRegistrationValidator()
	s.ctx = requestcontext.WithSessionID(context.Background(), "sess-1")
	s.ctx = requestcontext.WithRequestID(s.ctx, "req-1")
}

func (s *SubmitSuite) TearDownTest() {
	s.ctrl.Finish()
}

func janeDoe() form.Values {
	return form.Values{
		FirstName:       "Jane",
		LastName:        "Doe",
		Username:        "jdoe",
		Phone:           "555-0100",
		Country:         "Canada",
		Password:        "secret",
		ConfirmPassword: "secret",
	}
}

func (s *SubmitSuite) newForm(v form.Values) *form.Form {
	f := form.New(s.validator)
	f.SetValues(v)
	return f
}

func (s *SubmitSuite) expectAudit(action audit.Action) {
	s.auditor.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, e audit.Event) error {
			s.Equal(action, e.Action)
			s.Equal("sess-1", e.SessionID)
			s.Equal("req-1", e.RequestID)
			return nil
		})
}

func (s *SubmitSuite) TestValidSubmitRegistersExactPayload() {
	f := s.newForm(janeDoe())
	s.Require().True(f.Valid())

	want := account.Registration{
		FirstName:       "Jane",
		LastName:        "Doe",
		Username:        "jdoe",
		Phone:           "555-0100",
		Country:         "Canada",
		Password:        "secret",
		ConfirmPassword: "secret",
	}
	gomock.InOrder(
		s.alerts.EXPECT().Clear(s.ctx).Return(nil),
		s.accounts.EXPECT().Register(gomock.Any(), want).DoAndReturn(
			func(context.Context, account.Registration) error {
				s.True(f.Loading(), "loading is set while the call is in flight")
				return nil
			}),
		s.alerts.EXPECT().Success(gomock.Any(), SuccessMessage, alert.Options{KeepAfterRouteChange: true}).Return(nil),
		s.navigator.EXPECT().Navigate(s.ctx, []string{"../login"}, registerRoute).Return("/account/login", nil),
	)
	s.expectAudit(audit.ActionRegistrationSucceeded)

	out := s.service.Submit(s.ctx, f, registerRoute)

	s.Equal(StateSucceeded, out.State)
	s.Equal("/account/login", out.Location)
	s.NoError(out.Err)
	s.True(f.Submitted())
	s.True(f.Loading(), "loading is left set on success")
}

func (s *SubmitSuite) TestMismatchIsRejectedWithoutRemoteCall() {
	v := janeDoe()
	v.ConfirmPassword = "secrets"
	f := s.newForm(v)

	s.alerts.EXPECT().Clear(s.ctx).Return(nil)
	s.expectAudit(audit.ActionRegistrationRejected)

	out := s.service.Submit(s.ctx, f, registerRoute)

	s.Equal(StateRejected, out.State)
	s.Empty(out.Location)
	kind, ok := f.FieldError(form.FieldConfirmPassword)
	s.True(ok)
	s.Equal(form.KindMismatch, kind)
	s.False(f.Loading())
}

func (s *SubmitSuite) TestEmptyFormIsRejected() {
	f := form.New(s.validator)

	s.alerts.EXPECT().Clear(s.ctx).Return(nil)
	s.expectAudit(audit.ActionRegistrationRejected)

	out := s.service.Submit(s.ctx, f, registerRoute)

	s.Equal(StateRejected, out.State)
	s.True(f.Submitted())
	s.False(f.Valid())
	s.False(f.Loading())
}

func (s *SubmitSuite) TestRemoteFailureQueuesErrorVerbatim() {
	f := s.newForm(janeDoe())
	remoteErr := errors.New("username taken")

	gomock.InOrder(
		s.alerts.EXPECT().Clear(s.ctx).Return(nil),
		s.accounts.EXPECT().Register(gomock.Any(), gomock.Any()).Return(remoteErr),
		s.alerts.EXPECT().Error(gomock.Any(), remoteErr).Return(nil),
	)
	s.expectAudit(audit.ActionRegistrationFailed)

	out := s.service.Submit(s.ctx, f, registerRoute)

	s.Equal(StateFailed, out.State)
	s.Empty(out.Location)
	s.ErrorIs(out.Err, remoteErr)
	s.Contains(out.Err.Error(), "username taken")
	s.False(f.Loading())
	s.True(f.Submitted())
}

func (s *SubmitSuite) TestAlertStoreFailuresDoNotChangeOutcome() {
	f := s.newForm(janeDoe())

	s.alerts.EXPECT().Clear(s.ctx).Return(errors.New("redis down"))
	s.accounts.EXPECT().Register(gomock.Any(), gomock.Any()).Return(nil)
	s.alerts.EXPECT().Success(gomock.Any(), SuccessMessage, gomock.Any()).Return(errors.New("redis down"))
	s.navigator.EXPECT().Navigate(s.ctx, gomock.Any(), registerRoute).Return("/account/login", nil)
	s.expectAudit(audit.ActionRegistrationSucceeded)

	out := s.service.Submit(s.ctx, f, registerRoute)
	s.Equal(StateSucceeded, out.State)
	s.Equal("/account/login", out.Location)
}

func (s *SubmitSuite) TestNavigationErrorIsReported() {
	f := s.newForm(janeDoe())
	navErr := errors.New("above root")

	s.alerts.EXPECT().Clear(s.ctx).Return(nil)
	s.accounts.EXPECT().Register(gomock.Any(), gomock.Any()).Return(nil)
	s.alerts.EXPECT().Success(gomock.Any(), SuccessMessage, gomock.Any()).Return(nil)
	s.navigator.EXPECT().Navigate(s.ctx, gomock.Any(), "/").Return("", navErr)
	s.expectAudit(audit.ActionRegistrationSucceeded)

	out := s.service.Submit(s.ctx, f, "/")
	s.Equal(StateSucceeded, out.State)
	s.ErrorIs(out.Err, navErr)
	s.Empty(out.Location)
}

func (s *SubmitSuite) TestDuplicateSubmitJoinsInFlightCall() {
	started := make(chan struct{})
	release := make(chan struct{})

	s.alerts.EXPECT().Clear(s.ctx).Return(nil).Times(2)
	s.accounts.EXPECT().Register(gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, account.Registration) error {
			close(started)
			<-release
			return nil
		}).Times(1)
	s.alerts.EXPECT().Success(gomock.Any(), SuccessMessage, gomock.Any()).Return(nil).Times(1)
	s.navigator.EXPECT().Navigate(s.ctx, gomock.Any(), registerRoute).Return("/account/login", nil).Times(2)
	s.expectAudit(audit.ActionRegistrationSucceeded)

	outcomes := make([]Outcome, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		outcomes[0] = s.service.Submit(s.ctx, s.newForm(janeDoe()), registerRoute)
	}()
	<-started
	go func() {
		defer wg.Done()
		outcomes[1] = s.service.Submit(s.ctx, s.newForm(janeDoe()), registerRoute)
	}()
	// give the second submit time to reach the in-flight call
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, out := range outcomes {
		s.Equal(StateSucceeded, out.State)
		s.Equal("/account/login", out.Location)
	}
	s.False(outcomes[0].Joined)
	s.True(outcomes[1].Joined)
}

func (s *SubmitSuite) TestJoinedFailureReturnsAfterErrorAlertIsQueued() {
	started := make(chan struct{})
	release := make(chan struct{})
	remoteErr := errors.New("username taken")
	var queued atomic.Bool

	s.alerts.EXPECT().Clear(s.ctx).Return(nil).Times(2)
	s.accounts.EXPECT().Register(gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, account.Registration) error {
			close(started)
			<-release
			return remoteErr
		}).Times(1)
	s.alerts.EXPECT().Error(gomock.Any(), remoteErr).DoAndReturn(
		func(context.Context, error) error {
			// a slow alert store
			time.Sleep(50 * time.Millisecond)
			queued.Store(true)
			return nil
		}).Times(1)
	s.expectAudit(audit.ActionRegistrationFailed)

	outcomes := make([]Outcome, 2)
	alertSeen := make([]bool, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		outcomes[0] = s.service.Submit(s.ctx, s.newForm(janeDoe()), registerRoute)
		alertSeen[0] = queued.Load()
	}()
	<-started
	go func() {
		defer wg.Done()
		f := s.newForm(janeDoe())
		outcomes[1] = s.service.Submit(s.ctx, f, registerRoute)
		alertSeen[1] = queued.Load()
		s.False(f.Loading())
	}()
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	s.True(outcomes[1].Joined)
	for i, out := range outcomes {
		s.Equal(StateFailed, out.State)
		s.ErrorIs(out.Err, remoteErr)
		s.True(alertSeen[i], "submit %d returned before its error alert was queued", i)
	}
}

func (s *SubmitSuite) TestCancelledLeaderDoesNotFailJoinedSubmit() {
	started := make(chan struct{})
	release := make(chan struct{})
	leaderCtx, cancelLeader := context.WithCancel(s.ctx)

	s.alerts.EXPECT().Clear(gomock.Any()).Return(nil).Times(2)
	s.accounts.EXPECT().Register(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ account.Registration) error {
			close(started)
			<-release
			return ctx.Err()
		}).Times(1)
	s.alerts.EXPECT().Success(gomock.Any(), SuccessMessage, gomock.Any()).Return(nil).Times(1)
	s.navigator.EXPECT().Navigate(gomock.Any(), gomock.Any(), registerRoute).Return("/account/login", nil).Times(2)
	s.expectAudit(audit.ActionRegistrationSucceeded)

	var follower Outcome
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.service.Submit(leaderCtx, s.newForm(janeDoe()), registerRoute)
	}()
	<-started
	go func() {
		defer wg.Done()
		follower = s.service.Submit(s.ctx, s.newForm(janeDoe()), registerRoute)
	}()
	time.Sleep(100 * time.Millisecond)
	cancelLeader()
	close(release)
	wg.Wait()

	s.True(follower.Joined)
	s.Equal(StateSucceeded, follower.State)
	s.NoError(follower.Err)
	s.Equal("/account/login", follower.Location)
}

func (s *SubmitSuite) TestAccountCallIsBoundedByCallTimeout() {
	svc := New(s.accounts, s.alerts, s.navigator, WithCallTimeout(20*time.Millisecond))
	f := s.newForm(janeDoe())

	s.alerts.EXPECT().Clear(s.ctx).Return(nil)
	s.accounts.EXPECT().Register(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ account.Registration) error {
			<-ctx.Done()
			return ctx.Err()
		})
	s.alerts.EXPECT().Error(gomock.Any(), gomock.Any()).Return(nil)

	out := svc.Submit(s.ctx, f, registerRoute)
	s.Equal(StateFailed, out.State)
	s.ErrorIs(out.Err, context.DeadlineExceeded)
	s.False(f.Loading())
}

func (s *SubmitSuite) TestSubmitWithoutSessionCallsDirectly() {
	ctx := context.Background()
	svc := New(s.accounts, s.alerts, s.navigator)
	f := s.newForm(janeDoe())

	s.alerts.EXPECT().Clear(ctx).Return(nil)
	s.accounts.EXPECT().Register(gomock.Any(), gomock.Any()).Return(nil)
	s.alerts.EXPECT().Success(gomock.Any(), SuccessMessage, gomock.Any()).Return(nil)
	s.navigator.EXPECT().Navigate(ctx, gomock.Any(), registerRoute).Return("/account/login", nil)

	out := svc.Submit(ctx, f, registerRoute)
	s.Equal(StateSucceeded, out.State)
	s.False(out.Joined)
}

func TestStateString(t *testing.T) {
	want := map[State]string{
		StateIdle:       "idle",
		StateValidating: "validating",
		StateRejected:   "rejected",
		StateSubmitting: "submitting",
		StateSucceeded:  "succeeded",
		StateFailed:     "failed",
		State(99):       "unknown",
	}
	for state, name := range want {
		if got := state.String(); got != name {
			t.Errorf("State(%d).String() = %q, want %q", state, got, name)
		}
	}
}
