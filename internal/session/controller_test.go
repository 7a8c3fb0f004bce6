package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/gdinexus/gfit-workout-service/internal/memberapi"
	"github.com/gdinexus/gfit-workout-service/internal/telemetry/metrics"
)

// TestMain will run goleak after all tests have been run in the package
// to detect any goroutine leaks
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// INFO: https://github.com/go-redis/redis/issues/1029
		goleak.IgnoreTopFunction(
			"github.com/go-redis/redis/v8/internal/pool.(*ConnPool).reaper",
		),
	)
}

type controllerTestTools struct {
	controller *Controller
	store      *storeMock
	api        *MockinstancesApi
	now        time.Time
}

func newTestController(t *testing.T) *controllerTestTools {
	t.Helper()
	ctrl := gomock.NewController(t)
	api := NewMockinstancesApi(ctrl)
	store := NewStoreMock()

	db, _ := redismock.NewClientMock()
	controller := NewController(store, api, NewHistory(db), metrics.NewTestManager())

	tools := &controllerTestTools{
		controller: controller,
		store:      store,
		api:        api,
		now:        time.Date(2026, 8, 31, 10, 0, 0, 0, time.Local),
	}
	controller.now = func() time.Time { return tools.now }
	t.Cleanup(controller.Dispose)
	return tools
}

func (tt *controllerTestTools) advance(d time.Duration) {
	tt.now = tt.now.Add(d)
}

func TestController_StartStopConfirm(t *testing.T) {
	tt := newTestController(t)
	ctx := context.Background()

	tt.api.EXPECT().
		CreateInstance(gomock.Any(), "ex1", memberapi.InstancePayload{Completed: false}).
		Return(&memberapi.InstanceResponse{InstanceIDField: "inst-1"}, nil)

	s, err := tt.controller.Start(ctx, StartParams{
		MemberExerciseID: "ex1",
		ExerciseName:     "Push Ups",
		MemberID:         "member-1",
		Duration:         "20 min",
	})
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "inst-1", s.InstanceID)
	assert.Equal(t, 20*60, s.DurationSec)
	assert.Equal(t, StateRunning, tt.controller.State())
	require.NotNil(t, tt.store.Stored())

	tt.advance(125 * time.Second)
	elapsed, err := tt.controller.ElapsedSec()
	require.NoError(t, err)
	assert.Equal(t, 125, elapsed)

	stopped, err := tt.controller.Stop(ctx)
	require.NoError(t, err)
	require.NotNil(t, stopped.StoppedAt)
	assert.Equal(t, StatePaused, tt.controller.State())

	// the display is frozen while paused
	tt.advance(time.Hour)
	elapsed, err = tt.controller.ElapsedSec()
	require.NoError(t, err)
	assert.Equal(t, 125, elapsed)

	tt.api.EXPECT().
		UpdateInstance(gomock.Any(), "inst-1", memberapi.InstancePayload{
			Completed:         true,
			DurationInMinutes: 2,
			Feedback:          "felt good",
		}).
		Return(&memberapi.InstanceResponse{InstanceIDField: "inst-1"}, nil)
	tt.api.EXPECT().InvalidateExercises("member-1")
	tt.api.EXPECT().
		SendBulkNotifications(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, n memberapi.BulkNotification) error {
			assert.Equal(t, []string{"member-1"}, n.UserIDs)
			return nil
		})

	completed, err := tt.controller.Confirm(ctx, ConfirmParams{Feedback: "felt good"})
	require.NoError(t, err)
	assert.Equal(t, 2, completed.DurationInMinutes)
	assert.Equal(t, "inst-1", completed.InstanceID)
	assert.Equal(t, StateIdle, tt.controller.State())
	assert.Nil(t, tt.store.Stored())
}

func TestController_StartWhileActive(t *testing.T) {
	tt := newTestController(t)
	ctx := context.Background()

	tt.api.EXPECT().
		CreateInstance(gomock.Any(), "ex1", gomock.Any()).
		Return(&memberapi.InstanceResponse{IDField: "inst-1"}, nil)

	first, err := tt.controller.Start(ctx, StartParams{MemberExerciseID: "ex1"})
	require.NoError(t, err)

	// the active session wins over a second start
	second, err := tt.controller.Start(ctx, StartParams{MemberExerciseID: "ex2"})
	require.ErrorIs(t, err, ErrSessionActive)
	require.NotNil(t, second)
	assert.Equal(t, first.MemberExerciseID, second.MemberExerciseID)
}

func TestController_StartCreateFails_ConfirmFallsBackToCreate(t *testing.T) {
	tt := newTestController(t)
	ctx := context.Background()

	tt.api.EXPECT().
		CreateInstance(gomock.Any(), "ex1", memberapi.InstancePayload{Completed: false}).
		Return(nil, errors.New("network error"))

	s, err := tt.controller.Start(ctx, StartParams{MemberExerciseID: "ex1", Duration: "20 min"})
	require.NoError(t, err) // start-time create failure is non-fatal
	assert.Empty(t, s.InstanceID)

	tt.advance(125 * time.Second)
	_, err = tt.controller.Stop(ctx)
	require.NoError(t, err)

	// no instance id captured, so commit creates instead of updates
	tt.api.EXPECT().
		CreateInstance(gomock.Any(), "ex1", memberapi.InstancePayload{
			Completed:         true,
			DurationInMinutes: 2,
			Feedback:          "felt good",
		}).
		Return(&memberapi.InstanceResponse{ExerciseInstanceIDField: "inst-9"}, nil)

	completed, err := tt.controller.Confirm(ctx, ConfirmParams{Feedback: "felt good"})
	require.NoError(t, err)
	assert.Equal(t, "inst-9", completed.InstanceID)
}

func TestController_ConfirmFailureKeepsSession(t *testing.T) {
	tt := newTestController(t)
	ctx := context.Background()

	tt.api.EXPECT().
		CreateInstance(gomock.Any(), "ex1", gomock.Any()).
		Return(&memberapi.InstanceResponse{InstanceIDField: "inst-1"}, nil)
	_, err := tt.controller.Start(ctx, StartParams{MemberExerciseID: "ex1"})
	require.NoError(t, err)

	tt.advance(90 * time.Second)
	_, err = tt.controller.Stop(ctx)
	require.NoError(t, err)

	tt.api.EXPECT().
		UpdateInstance(gomock.Any(), "inst-1", gomock.Any()).
		Return(nil, errors.New("503"))

	_, err = tt.controller.Confirm(ctx, ConfirmParams{})
	require.Error(t, err)
	assert.Equal(t, StatePaused, tt.controller.State())
	require.NotNil(t, tt.store.Stored())

	// retry goes through the update path again, no duplicate record
	tt.api.EXPECT().
		UpdateInstance(gomock.Any(), "inst-1", gomock.Any()).
		Return(&memberapi.InstanceResponse{InstanceIDField: "inst-1"}, nil)

	completed, err := tt.controller.Confirm(ctx, ConfirmParams{})
	require.NoError(t, err)
	assert.Equal(t, "inst-1", completed.InstanceID)
	assert.Equal(t, StateIdle, tt.controller.State())
}

func TestController_CancelResumes(t *testing.T) {
	tt := newTestController(t)
	ctx := context.Background()

	tt.api.EXPECT().
		CreateInstance(gomock.Any(), "ex1", gomock.Any()).
		Return(&memberapi.InstanceResponse{InstanceIDField: "inst-1"}, nil)
	_, err := tt.controller.Start(ctx, StartParams{MemberExerciseID: "ex1"})
	require.NoError(t, err)

	tt.advance(60 * time.Second)
	_, err = tt.controller.Stop(ctx)
	require.NoError(t, err)

	resumed, err := tt.controller.Cancel(ctx)
	require.NoError(t, err)
	assert.Nil(t, resumed.StoppedAt)
	assert.Equal(t, StateRunning, tt.controller.State())

	// the clock never stopped, elapsed includes the paused window
	tt.advance(60 * time.Second)
	elapsed, err := tt.controller.ElapsedSec()
	require.NoError(t, err)
	assert.Equal(t, 120, elapsed)

	_, err = tt.controller.Cancel(ctx)
	require.ErrorIs(t, err, ErrNotPaused)
}

func TestController_QuickComplete(t *testing.T) {
	tt := newTestController(t)
	ctx := context.Background()

	tt.api.EXPECT().
		CreateInstance(gomock.Any(), "ex2", memberapi.InstancePayload{
			Completed:         true,
			DurationInMinutes: 15,
			Feedback:          "quick one",
		}).
		Return(&memberapi.InstanceResponse{InstanceIDField: "inst-5"}, nil)
	tt.api.EXPECT().InvalidateExercises("member-1")
	tt.api.EXPECT().SendBulkNotifications(gomock.Any(), gomock.Any()).Return(nil)

	completed, err := tt.controller.QuickComplete(ctx, QuickCompleteParams{
		MemberExerciseID:  "ex2",
		ExerciseName:      "Squats",
		MemberID:          "member-1",
		DurationInMinutes: 15,
		Feedback:          "quick one",
	})
	require.NoError(t, err)
	assert.True(t, completed.QuickComplete)
	assert.Equal(t, "inst-5", completed.InstanceID)
	assert.Equal(t, StateIdle, tt.controller.State())
}

func TestController_QuickCompleteBlockedWhileActive(t *testing.T) {
	tt := newTestController(t)
	ctx := context.Background()

	tt.api.EXPECT().
		CreateInstance(gomock.Any(), "ex1", gomock.Any()).
		Return(&memberapi.InstanceResponse{InstanceIDField: "inst-1"}, nil)
	_, err := tt.controller.Start(ctx, StartParams{MemberExerciseID: "ex1"})
	require.NoError(t, err)

	_, err = tt.controller.QuickComplete(ctx, QuickCompleteParams{
		MemberExerciseID:  "ex2",
		DurationInMinutes: 10,
	})
	require.ErrorIs(t, err, ErrSessionActive)
}

func TestController_QuickCompleteValidation(t *testing.T) {
	tt := newTestController(t)
	ctx := context.Background()

	_, err := tt.controller.QuickComplete(ctx, QuickCompleteParams{DurationInMinutes: 10})
	require.ErrorIs(t, err, ErrEmptyExerciseID)

	_, err = tt.controller.QuickComplete(ctx, QuickCompleteParams{MemberExerciseID: "ex1"})
	require.ErrorIs(t, err, ErrInvalidDurationInMin)
}

func TestController_Discard(t *testing.T) {
	tt := newTestController(t)
	ctx := context.Background()

	require.ErrorIs(t, tt.controller.Discard(ctx), ErrNoActiveSession)

	tt.api.EXPECT().
		CreateInstance(gomock.Any(), "ex1", gomock.Any()).
		Return(&memberapi.InstanceResponse{InstanceIDField: "inst-1"}, nil)
	_, err := tt.controller.Start(ctx, StartParams{MemberExerciseID: "ex1"})
	require.NoError(t, err)

	require.NoError(t, tt.controller.Discard(ctx))
	assert.Equal(t, StateIdle, tt.controller.State())
	assert.Nil(t, tt.store.Stored())

	// discarding counts as a cancelled session, resuming via Cancel does not
	assert.Equal(t, float64(1), testutil.ToFloat64(tt.controller.metrics.CounterSessionsCancelled))
}

func TestController_InitRestoresSession(t *testing.T) {
	tt := newTestController(t)
	ctx := context.Background()

	startedAt := tt.now.Add(-10 * time.Minute)
	require.NoError(t, tt.store.Set(ctx, Session{
		MemberExerciseID: "ex1",
		ExerciseName:     "Push Ups",
		InstanceID:       "inst-1",
		DurationSec:      1200,
		StartedAt:        startedAt,
	}))

	require.NoError(t, tt.controller.Init(ctx))
	assert.Equal(t, StateRunning, tt.controller.State())

	// the clock kept running while the service was down
	elapsed, err := tt.controller.ElapsedSec()
	require.NoError(t, err)
	assert.Equal(t, 600, elapsed)

	current := tt.controller.Current()
	require.NotNil(t, current)
	assert.Equal(t, 600, current.RemainingSec(tt.now))
}

func TestController_InitRestoresPausedSession(t *testing.T) {
	tt := newTestController(t)
	ctx := context.Background()

	startedAt := tt.now.Add(-10 * time.Minute)
	stoppedAt := tt.now.Add(-5 * time.Minute)
	require.NoError(t, tt.store.Set(ctx, Session{
		MemberExerciseID: "ex1",
		StartedAt:        startedAt,
		StoppedAt:        &stoppedAt,
	}))

	require.NoError(t, tt.controller.Init(ctx))
	assert.Equal(t, StatePaused, tt.controller.State())

	elapsed, err := tt.controller.ElapsedSec()
	require.NoError(t, err)
	assert.Equal(t, 300, elapsed)
}

func TestController_InitEmptyStore(t *testing.T) {
	tt := newTestController(t)
	require.NoError(t, tt.controller.Init(context.Background()))
	assert.Equal(t, StateIdle, tt.controller.State())
	assert.Nil(t, tt.controller.Current())
}

func TestController_StopAndConfirmRequireActiveSession(t *testing.T) {
	tt := newTestController(t)
	ctx := context.Background()

	_, err := tt.controller.Stop(ctx)
	require.ErrorIs(t, err, ErrNoActiveSession)

	_, err = tt.controller.Confirm(ctx, ConfirmParams{})
	require.ErrorIs(t, err, ErrNoActiveSession)

	_, err = tt.controller.Cancel(ctx)
	require.ErrorIs(t, err, ErrNoActiveSession)
}

func TestController_ConfirmRequiresStop(t *testing.T) {
	tt := newTestController(t)
	ctx := context.Background()

	tt.api.EXPECT().
		CreateInstance(gomock.Any(), "ex1", gomock.Any()).
		Return(&memberapi.InstanceResponse{InstanceIDField: "inst-1"}, nil)
	_, err := tt.controller.Start(ctx, StartParams{MemberExerciseID: "ex1"})
	require.NoError(t, err)

	_, err = tt.controller.Confirm(ctx, ConfirmParams{})
	require.ErrorIs(t, err, ErrNotPaused)

	_, err = tt.controller.Stop(ctx)
	require.NoError(t, err)
	_, err = tt.controller.Stop(ctx)
	require.ErrorIs(t, err, ErrAlreadyPaused)
}
