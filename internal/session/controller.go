package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/gdinexus/gfit-workout-service/internal/memberapi"
	"github.com/gdinexus/gfit-workout-service/internal/schedule"
	"github.com/gdinexus/gfit-workout-service/internal/telemetry/metrics"
	"github.com/gdinexus/gfit-workout-service/internal/telemetry/tracing"
)

//go:generate mockgen -source=$GOFILE -destination=controller_mocks_test.go -package=session

type instancesApi interface {
	CreateInstance(ctx context.Context, memberExerciseID string, payload memberapi.InstancePayload) (*memberapi.InstanceResponse, error)
	UpdateInstance(ctx context.Context, instanceID string, payload memberapi.InstancePayload) (*memberapi.InstanceResponse, error)
	SendBulkNotifications(ctx context.Context, notification memberapi.BulkNotification) error
	InvalidateExercises(memberID string)
}

// StartParams describes the exercise the member picked to train.
type StartParams struct {
	MemberExerciseID string `json:"memberExerciseId"`
	ExerciseName     string `json:"exerciseName"`
	MemberID         string `json:"memberId"`
	// Duration is the free-form target duration text of the exercise,
	// used to seed the countdown display.
	Duration string `json:"duration"`
}

// ConfirmParams carries the feedback collected on the stop screen.
type ConfirmParams struct {
	Feedback string `json:"feedback"`
	Notes    string `json:"notes"`
}

// QuickCompleteParams records a finished exercise without a running timer.
type QuickCompleteParams struct {
	MemberExerciseID  string `json:"memberExerciseId"`
	ExerciseName      string `json:"exerciseName"`
	MemberID          string `json:"memberId"`
	DurationInMinutes int    `json:"durationInMinutes"`
	Feedback          string `json:"feedback"`
	Notes             string `json:"notes"`
}

// Controller owns the single active workout session. State transitions:
// idle -> running (Start), running -> paused (Stop), paused -> running
// (Cancel), paused -> idle (Confirm), any -> idle (Discard). Every
// mutation is persisted through the Store before it is visible, so a
// service restart resumes the same timer via Init.
type Controller struct {
	mutex   sync.Mutex
	active  *Session
	store   Store
	api     instancesApi
	history *History
	metrics *metrics.Manager

	// now is swappable in tests
	now func() time.Time

	tickerDone chan struct{}
}

func NewController(store Store, api instancesApi, history *History, metricsManager *metrics.Manager) *Controller {
	return &Controller{
		store:   store,
		api:     api,
		history: history,
		metrics: metricsManager,
		now:     time.Now,
	}
}

// Init loads a previously persisted session, so the timer survives
// service restarts. Elapsed time is derived from StartedAt, meaning the
// clock kept running while the service was down.
func (c *Controller) Init(ctx context.Context) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	stored, err := c.store.Get(ctx)
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	if stored == nil {
		return nil
	}

	c.active = stored
	if stored.State() == StateRunning {
		c.startTickerLocked()
	}
	log.Infof(
		"restored %s session for exercise [%s], started at %s",
		stored.State(), stored.MemberExerciseID, stored.StartedAt.Format(time.RFC3339),
	)
	return nil
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.active == nil {
		return StateIdle
	}
	return c.active.State()
}

// Current returns a copy of the active session, or nil when idle.
func (c *Controller) Current() *Session {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.active == nil {
		return nil
	}
	s := *c.active
	return &s
}

// ElapsedSec returns the elapsed seconds of the active session.
func (c *Controller) ElapsedSec() (int, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.active == nil {
		return 0, ErrNoActiveSession
	}
	return c.active.ElapsedSec(c.now()), nil
}

// Start begins a new session for the given exercise. While a session is
// active, Start returns it together with ErrSessionActive instead of
// replacing it. The remote instance create is best effort: a failure is
// logged and the local timer proceeds without an instance id.
func (c *Controller) Start(ctx context.Context, params StartParams) (_ *Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "sessionController.start")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if params.MemberExerciseID == "" {
		return nil, ErrEmptyExerciseID
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.active != nil {
		existing := *c.active
		return &existing, ErrSessionActive
	}

	s := Session{
		MemberExerciseID: params.MemberExerciseID,
		ExerciseName:     params.ExerciseName,
		MemberID:         params.MemberID,
		DurationSec:      schedule.ParseDurationToSeconds(params.Duration),
		StartedAt:        c.now(),
	}

	instance, err := c.api.CreateInstance(ctx, params.MemberExerciseID, memberapi.InstancePayload{
		Completed: false,
	})
	if err != nil {
		// non-fatal, commit will fall back to a create call
		log.Errorf("create instance for member exercise [%s] failed: %s", params.MemberExerciseID, err)
		c.metrics.CounterRemoteWriteFailures.Inc()
	} else {
		s.InstanceID = instance.InstanceID()
	}
	span.SetAttributes(attribute.String("instance.id", s.InstanceID))

	if err := c.store.Set(ctx, s); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}

	c.active = &s
	c.startTickerLocked()
	c.metrics.CounterSessionsStarted.Inc()

	log.Infof("session started for member exercise [%s], instance [%s]", s.MemberExerciseID, s.InstanceID)
	started := s
	return &started, nil
}

// Stop freezes the timer and moves the session to paused, awaiting
// Confirm or Cancel. No remote state is touched.
func (c *Controller) Stop(ctx context.Context) (*Session, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.active == nil {
		return nil, ErrNoActiveSession
	}
	if c.active.StoppedAt != nil {
		return nil, ErrAlreadyPaused
	}

	stoppedAt := c.now()
	c.active.StoppedAt = &stoppedAt
	if err := c.store.Set(ctx, *c.active); err != nil {
		c.active.StoppedAt = nil
		return nil, fmt.Errorf("persist session: %w", err)
	}

	c.stopTickerLocked()
	stopped := *c.active
	return &stopped, nil
}

// Cancel discards the pending feedback and resumes the paused session.
// The clock never stopped conceptually, only the display was frozen, so
// the elapsed time picks up as if Stop never happened.
func (c *Controller) Cancel(ctx context.Context) (*Session, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.active == nil {
		return nil, ErrNoActiveSession
	}
	if c.active.StoppedAt == nil {
		return nil, ErrNotPaused
	}

	stoppedAt := c.active.StoppedAt
	c.active.StoppedAt = nil
	if err := c.store.Set(ctx, *c.active); err != nil {
		c.active.StoppedAt = stoppedAt
		return nil, fmt.Errorf("persist session: %w", err)
	}

	c.startTickerLocked()
	resumed := *c.active
	return &resumed, nil
}

// Confirm commits the stopped session to the remote API and clears it.
// With a captured instance id this is an update, otherwise a create, so
// a durable remote record exists either way. On a remote failure the
// session stays intact, locally and in the store, and Confirm can be
// retried with the same arguments without creating a second record.
func (c *Controller) Confirm(ctx context.Context, params ConfirmParams) (_ *CompletedSession, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "sessionController.confirm")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.active == nil {
		return nil, ErrNoActiveSession
	}
	if c.active.StoppedAt == nil {
		return nil, ErrNotPaused
	}

	now := c.now()
	// a session stopped within the first minute commits with duration 0
	durationInMinutes := c.active.ElapsedSec(now) / 60
	payload := memberapi.InstancePayload{
		Completed:         true,
		DurationInMinutes: durationInMinutes,
		Feedback:          params.Feedback,
		Notes:             params.Notes,
	}

	instanceID := c.active.InstanceID
	if instanceID != "" {
		_, err = c.api.UpdateInstance(ctx, instanceID, payload)
	} else {
		var instance *memberapi.InstanceResponse
		instance, err = c.api.CreateInstance(ctx, c.active.MemberExerciseID, payload)
		if err == nil {
			instanceID = instance.InstanceID()
		}
	}
	if err != nil {
		c.metrics.CounterRemoteWriteFailures.Inc()
		return nil, fmt.Errorf("commit session for member exercise [%s]: %w", c.active.MemberExerciseID, err)
	}

	completed := CompletedSession{
		MemberExerciseID:  c.active.MemberExerciseID,
		ExerciseName:      c.active.ExerciseName,
		InstanceID:        instanceID,
		DurationInMinutes: durationInMinutes,
		CompletedAt:       now,
	}
	c.finishLocked(ctx, c.active.MemberID, completed)
	c.metrics.CounterSessionsCompleted.Inc()

	log.Infof(
		"session committed for member exercise [%s], instance [%s], %d min",
		completed.MemberExerciseID, completed.InstanceID, completed.DurationInMinutes,
	)
	return &completed, nil
}

// QuickComplete records a finished exercise without going through the
// timer flow. Rejected while a timer session exists.
func (c *Controller) QuickComplete(ctx context.Context, params QuickCompleteParams) (_ *CompletedSession, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "sessionController.quickComplete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if params.MemberExerciseID == "" {
		return nil, ErrEmptyExerciseID
	}
	if params.DurationInMinutes <= 0 {
		return nil, ErrInvalidDurationInMin
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.active != nil {
		return nil, ErrSessionActive
	}

	instance, err := c.api.CreateInstance(ctx, params.MemberExerciseID, memberapi.InstancePayload{
		Completed:         true,
		DurationInMinutes: params.DurationInMinutes,
		Feedback:          params.Feedback,
		Notes:             params.Notes,
	})
	if err != nil {
		c.metrics.CounterRemoteWriteFailures.Inc()
		return nil, fmt.Errorf("quick-complete member exercise [%s]: %w", params.MemberExerciseID, err)
	}

	completed := CompletedSession{
		MemberExerciseID:  params.MemberExerciseID,
		ExerciseName:      params.ExerciseName,
		InstanceID:        instance.InstanceID(),
		DurationInMinutes: params.DurationInMinutes,
		QuickComplete:     true,
		CompletedAt:       c.now(),
	}
	c.finishLocked(ctx, params.MemberID, completed)
	c.metrics.CounterQuickCompletes.Inc()

	return &completed, nil
}

// Discard drops the active session without any remote call. Used when
// the member abandons a workout entirely.
func (c *Controller) Discard(ctx context.Context) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.active == nil {
		return ErrNoActiveSession
	}
	if err := c.store.Remove(ctx); err != nil {
		return fmt.Errorf("remove session: %w", err)
	}

	c.stopTickerLocked()
	c.active = nil
	c.metrics.CounterSessionsCancelled.Inc()
	c.metrics.GaugeSessionElapsedSec.Set(0)
	return nil
}

// Dispose stops the background tick. Called on service shutdown.
func (c *Controller) Dispose() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.stopTickerLocked()
}

// finishLocked runs the shared after-commit bookkeeping: clear the
// persisted session, record history, refresh the exercises cache and
// congratulate the member. Only the remote write itself is fatal to the
// commit, everything here is best effort.
func (c *Controller) finishLocked(ctx context.Context, memberID string, completed CompletedSession) {
	if c.active != nil {
		c.stopTickerLocked()
		c.active = nil
	}
	c.metrics.GaugeSessionElapsedSec.Set(0)

	if err := c.store.Remove(ctx); err != nil {
		log.Errorf("remove committed session from store: %s", err)
	}
	if err := c.history.Add(ctx, completed); err != nil {
		log.Errorf("record completed session: %s", err)
	}

	if memberID != "" {
		c.api.InvalidateExercises(memberID)
		notification := memberapi.BulkNotification{
			UserIDs:  []string{memberID},
			Title:    "Workout complete",
			Message:  fmt.Sprintf("Nice work, you finished %s!", completed.ExerciseName),
			Type:     "workout",
			Severity: "info",
		}
		if err := c.api.SendBulkNotifications(ctx, notification); err != nil {
			log.Errorf("send workout completion notification: %s", err)
		}
	}
}

// startTickerLocked spawns the 1s tick that mirrors the elapsed time
// into the metrics gauge. Caller must hold the mutex. Every path that
// leaves the running state stops the tick, otherwise a stale goroutine
// would keep updating the gauge.
func (c *Controller) startTickerLocked() {
	if c.tickerDone != nil {
		return
	}
	done := make(chan struct{})
	c.tickerDone = done

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				c.mutex.Lock()
				if c.active != nil {
					c.metrics.GaugeSessionElapsedSec.Set(float64(c.active.ElapsedSec(c.now())))
				}
				c.mutex.Unlock()
			}
		}
	}()
}

func (c *Controller) stopTickerLocked() {
	if c.tickerDone == nil {
		return
	}
	close(c.tickerDone)
	c.tickerDone = nil
}
