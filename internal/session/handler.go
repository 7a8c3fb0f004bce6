package session

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/gdinexus/gfit-workout-service/internal/memberapi"
	"github.com/gdinexus/gfit-workout-service/internal/schedule"
	"github.com/gdinexus/gfit-workout-service/internal/telemetry/tracing"
	"github.com/gdinexus/gfit-workout-service/pkg"
)

// StatusResponse is the session as clients render it: the state plus the
// derived clock values for the current instant.
type StatusResponse struct {
	State        State    `json:"state"`
	Session      *Session `json:"session,omitempty"`
	ElapsedSec   int      `json:"elapsedSec"`
	RemainingSec int      `json:"remainingSec"`
	Display      string   `json:"display"`
	DisplayWords string   `json:"displayWords,omitempty"`
}

// ActivityResponse is the local completion history with its aggregates.
type ActivityResponse struct {
	Sessions []CompletedSession `json:"sessions"`
	Stats    HistoryStats       `json:"stats"`
}

type Handler struct {
	controller *Controller
	history    *History
}

func NewHandler(controller *Controller, history *History) *Handler {
	return &Handler{
		controller: controller,
		history:    history,
	}
}

func (handler *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.session.start")
	defer span.End()

	var params StartParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		log.Tracef("start session, unmarshal json params: %s", err)
		http.Error(w, "start session failed", http.StatusBadRequest)
		return
	}

	s, err := handler.controller.Start(ctx, params)
	switch {
	case errors.Is(err, ErrSessionActive):
		// the already-active session wins, start is a no-op returning it
		handler.writeStatus(w, s, http.StatusOK)
		return
	case errors.Is(err, ErrEmptyExerciseID):
		http.Error(w, "error, member exercise id empty", http.StatusBadRequest)
		return
	case err != nil:
		log.Errorf("failed to start session: %s", err)
		http.Error(w, "error, failed to start session", http.StatusInternalServerError)
		return
	}

	handler.writeStatus(w, s, http.StatusCreated)
}

func (handler *Handler) HandleStop(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.session.stop")
	defer span.End()

	s, err := handler.controller.Stop(ctx)
	switch {
	case errors.Is(err, ErrNoActiveSession):
		http.Error(w, "error, no active session", http.StatusNotFound)
		return
	case errors.Is(err, ErrAlreadyPaused):
		http.Error(w, "error, session already stopped", http.StatusConflict)
		return
	case err != nil:
		log.Errorf("failed to stop session: %s", err)
		http.Error(w, "error, failed to stop session", http.StatusInternalServerError)
		return
	}

	handler.writeStatus(w, s, http.StatusOK)
}

func (handler *Handler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.session.confirm")
	defer span.End()

	var params ConfirmParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		log.Tracef("confirm session, unmarshal json params: %s", err)
		http.Error(w, "confirm session failed", http.StatusBadRequest)
		return
	}

	completed, err := handler.controller.Confirm(ctx, params)
	switch {
	case errors.Is(err, ErrNoActiveSession):
		http.Error(w, "error, no active session", http.StatusNotFound)
		return
	case errors.Is(err, ErrNotPaused):
		http.Error(w, "error, stop the session first", http.StatusConflict)
		return
	case err != nil:
		// the session is kept for a retry
		log.Errorf("failed to confirm session: %s", err)
		handler.writeRemoteError(w, err)
		return
	}

	completedJson, err := json.Marshal(completed)
	if err != nil {
		log.Errorf("failed to marshal completed session: %s", err)
		http.Error(w, "error, failed to confirm session", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, completedJson, http.StatusOK)
}

func (handler *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.session.cancel")
	defer span.End()

	s, err := handler.controller.Cancel(ctx)
	switch {
	case errors.Is(err, ErrNoActiveSession):
		http.Error(w, "error, no active session", http.StatusNotFound)
		return
	case errors.Is(err, ErrNotPaused):
		http.Error(w, "error, session is not stopped", http.StatusConflict)
		return
	case err != nil:
		log.Errorf("failed to cancel session stop: %s", err)
		http.Error(w, "error, failed to cancel", http.StatusInternalServerError)
		return
	}

	handler.writeStatus(w, s, http.StatusOK)
}

func (handler *Handler) HandleQuickComplete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.session.quickComplete")
	defer span.End()

	var params QuickCompleteParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		log.Tracef("quick-complete, unmarshal json params: %s", err)
		http.Error(w, "quick-complete failed", http.StatusBadRequest)
		return
	}

	completed, err := handler.controller.QuickComplete(ctx, params)
	switch {
	case errors.Is(err, ErrSessionActive):
		http.Error(w, "error, a session is already active", http.StatusConflict)
		return
	case errors.Is(err, ErrEmptyExerciseID):
		http.Error(w, "error, member exercise id empty", http.StatusBadRequest)
		return
	case errors.Is(err, ErrInvalidDurationInMin):
		http.Error(w, "error, duration must be positive", http.StatusBadRequest)
		return
	case err != nil:
		log.Errorf("failed to quick-complete: %s", err)
		handler.writeRemoteError(w, err)
		return
	}

	completedJson, err := json.Marshal(completed)
	if err != nil {
		log.Errorf("failed to marshal completed session: %s", err)
		http.Error(w, "error, failed to quick-complete", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, completedJson, http.StatusCreated)
}

func (handler *Handler) HandleDiscard(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.session.discard")
	defer span.End()

	err := handler.controller.Discard(ctx)
	switch {
	case errors.Is(err, ErrNoActiveSession):
		http.Error(w, "error, no active session", http.StatusNotFound)
		return
	case err != nil:
		log.Errorf("failed to discard session: %s", err)
		http.Error(w, "error, failed to discard session", http.StatusInternalServerError)
		return
	}

	pkg.WriteTextResponseOK(w, "session discarded")
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.session.get")
	defer span.End()

	current := handler.controller.Current()
	if current == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	handler.writeStatus(w, current, http.StatusOK)
}

func (handler *Handler) HandleActivity(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.session.activity")
	defer span.End()

	sessions, err := handler.history.All(ctx)
	if err != nil {
		log.Errorf("failed to read session history: %s", err)
		http.Error(w, "error, failed to read activity", http.StatusInternalServerError)
		return
	}
	stats, err := handler.history.Stats(ctx, time.Now())
	if err != nil {
		log.Errorf("failed to aggregate session history: %s", err)
		http.Error(w, "error, failed to read activity", http.StatusInternalServerError)
		return
	}

	activityJson, err := json.Marshal(ActivityResponse{
		Sessions: sessions,
		Stats:    *stats,
	})
	if err != nil {
		log.Errorf("failed to marshal activity: %s", err)
		http.Error(w, "error, failed to read activity", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, activityJson, http.StatusOK)
}

func (handler *Handler) writeStatus(w http.ResponseWriter, s *Session, statusCode int) {
	status := StatusResponse{
		State: StateIdle,
	}
	if s != nil {
		now := time.Now()
		status.State = s.State()
		status.Session = s
		status.ElapsedSec = s.ElapsedSec(now)
		status.RemainingSec = s.RemainingSec(now)
		status.Display = schedule.FormatMMSS(status.ElapsedSec)
		status.DisplayWords = schedule.FormatWords(status.RemainingSec)
	}

	statusJson, err := json.Marshal(status)
	if err != nil {
		log.Errorf("failed to marshal session status: %s", err)
		http.Error(w, "error, failed to get session", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, statusJson, statusCode)
}

// writeRemoteError maps a backend failure to the closest status code,
// so that clients can tell a retryable commit failure from a rejection.
func (handler *Handler) writeRemoteError(w http.ResponseWriter, err error) {
	var apiErr *memberapi.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
		http.Error(w, "error, rejected by member api", http.StatusBadGateway)
		return
	}
	http.Error(w, "error, member api unavailable, retry", http.StatusBadGateway)
}
