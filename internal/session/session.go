package session

import (
	"errors"
	"time"
)

// State of the session controller.
type State string

const (
	// StateIdle means no active session exists.
	StateIdle State = "idle"
	// StateRunning means a session is active and the clock is ticking.
	StateRunning State = "running"
	// StatePaused means the timer display is frozen and the member is
	// being asked for feedback. The session still exists and can resume.
	StatePaused State = "paused"
)

var (
	ErrNoActiveSession      = errors.New("no active session")
	ErrSessionActive        = errors.New("a session is already active")
	ErrNotPaused            = errors.New("session is not paused")
	ErrAlreadyPaused        = errors.New("session is already paused")
	ErrEmptyExerciseID      = errors.New("member exercise id is empty")
	ErrInvalidDurationInMin = errors.New("duration in minutes must be positive")
)

// Session is the single active workout timer. It is persisted on every
// mutation so that a restart of the service picks the timer back up.
// Elapsed time is never stored, it is always derived from StartedAt.
type Session struct {
	MemberExerciseID string `json:"memberExerciseId"`
	ExerciseName     string `json:"exerciseName"`
	MemberID         string `json:"memberId,omitempty"`
	// InstanceID is the remote exercise-instance id captured at start.
	// Empty when the start-time create failed, in which case commit
	// falls back to a create call.
	InstanceID  string     `json:"instanceId,omitempty"`
	DurationSec int        `json:"durationSec,omitempty"`
	StartedAt   time.Time  `json:"startedAt"`
	StoppedAt   *time.Time `json:"stoppedAt,omitempty"`
}

// ElapsedSec derives the elapsed seconds at the given time. A paused
// session reports the frozen value instead.
func (s Session) ElapsedSec(now time.Time) int {
	ref := now
	if s.StoppedAt != nil {
		ref = *s.StoppedAt
	}
	elapsed := int(ref.Sub(s.StartedAt).Seconds())
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

// RemainingSec derives the countdown seconds left of the target duration.
func (s Session) RemainingSec(now time.Time) int {
	remaining := s.DurationSec - s.ElapsedSec(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (s Session) State() State {
	if s.StoppedAt != nil {
		return StatePaused
	}
	return StateRunning
}
