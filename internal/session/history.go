package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"

	"github.com/gdinexus/gfit-workout-service/internal/schedule"
)

const (
	historyKey = "workout::session-history"
	// enough for over a year of daily workouts
	historyMaxEntries = 500
)

// CompletedSession is one committed workout, kept locally so stats keep
// working when the backend is unreachable.
type CompletedSession struct {
	MemberExerciseID  string    `json:"memberExerciseId"`
	ExerciseName      string    `json:"exerciseName"`
	InstanceID        string    `json:"instanceId,omitempty"`
	DurationInMinutes int       `json:"durationInMinutes"`
	QuickComplete     bool      `json:"quickComplete,omitempty"`
	CompletedAt       time.Time `json:"completedAt"`
}

// HistoryStats is an aggregate over the local completion history.
type HistoryStats struct {
	TotalWorkouts    int `json:"totalWorkouts"`
	TotalDurationMin int `json:"totalDurationMin"`
	WorkoutsThisWeek int `json:"workoutsThisWeek"`
	StreakDays       int `json:"streakDays"`
}

// History keeps committed workouts in a capped redis list, newest first.
type History struct {
	redisClient *redis.Client
}

func NewHistory(redisClient *redis.Client) *History {
	return &History{
		redisClient: redisClient,
	}
}

func (h *History) Add(ctx context.Context, cs CompletedSession) error {
	csJson, err := json.Marshal(cs)
	if err != nil {
		return fmt.Errorf("marshal completed session: %w", err)
	}

	pipe := h.redisClient.TxPipeline()
	pipe.LPush(ctx, historyKey, csJson)
	pipe.LTrim(ctx, historyKey, 0, historyMaxEntries-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("push completed session: %w", err)
	}
	return nil
}

// All returns the completion history, newest first.
func (h *History) All(ctx context.Context) ([]CompletedSession, error) {
	rawEntries, err := h.redisClient.LRange(ctx, historyKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read session history: %w", err)
	}

	sessions := make([]CompletedSession, 0, len(rawEntries))
	for _, raw := range rawEntries {
		var cs CompletedSession
		if err := json.Unmarshal([]byte(raw), &cs); err != nil {
			log.Errorf("skipping corrupted history entry: %s", err)
			continue
		}
		sessions = append(sessions, cs)
	}
	return sessions, nil
}

func (h *History) Clear(ctx context.Context) error {
	if err := h.redisClient.Del(ctx, historyKey).Err(); err != nil {
		return fmt.Errorf("clear session history: %w", err)
	}
	return nil
}

// Stats aggregates the history as of the given time. The week window is
// a rolling 7 days, the streak counts consecutive local calendar days
// with at least one workout, ending today or yesterday.
func (h *History) Stats(ctx context.Context, now time.Time) (*HistoryStats, error) {
	sessions, err := h.All(ctx)
	if err != nil {
		return nil, err
	}

	stats := &HistoryStats{}
	weekAgo := now.AddDate(0, 0, -7)
	daysWithWorkout := map[string]bool{}
	for _, cs := range sessions {
		stats.TotalWorkouts++
		stats.TotalDurationMin += cs.DurationInMinutes
		if cs.CompletedAt.After(weekAgo) {
			stats.WorkoutsThisWeek++
		}
		daysWithWorkout[schedule.DateKey(cs.CompletedAt)] = true
	}

	// a streak is kept alive until the end of the day after the last workout
	day := now
	if !daysWithWorkout[schedule.DateKey(day)] {
		day = day.AddDate(0, 0, -1)
	}
	for daysWithWorkout[schedule.DateKey(day)] {
		stats.StreakDays++
		day = day.AddDate(0, 0, -1)
	}

	return stats, nil
}
