package schedule

import (
	"time"

	"github.com/gdinexus/gfit-workout-service/internal/memberapi"
)

// Entry is one exercise resolved for a particular calendar day.
type Entry struct {
	MemberExerciseID string `json:"memberExerciseId"`
	Name             string `json:"name"`
	NumberOfSets     int    `json:"numberOfSets"`
	NumberOfTimes    int    `json:"numberOfTimes"`
	Instruction      string `json:"instruction"`
	DurationSec      int    `json:"durationSec"`
	Completed        bool   `json:"completed"`
	Fallback         bool   `json:"fallback"`
}

// MonthIndex maps date keys (YYYY-MM-DD) to the exercises due on that day.
type MonthIndex map[string][]Entry

// ResolveForDay filters the exercise list down to the ones scheduled for the
// given calendar day. When no exercise matches the day, the whole list is
// returned instead, flagged as fallback, so the member always has something
// to train.
func ResolveForDay(exercises []memberapi.Exercise, day time.Time) []Entry {
	var due []Entry
	for _, ex := range exercises {
		if IsScheduledOn(ex, day) {
			due = append(due, toEntry(ex, false))
		}
	}
	if len(due) > 0 || len(exercises) == 0 {
		return due
	}

	fallback := make([]Entry, 0, len(exercises))
	for _, ex := range exercises {
		fallback = append(fallback, toEntry(ex, true))
	}
	return fallback
}

// BuildMonthIndex resolves every day of the given month. Days where the
// fallback kicked in are included like any other day.
func BuildMonthIndex(exercises []memberapi.Exercise, year int, month time.Month, loc *time.Location) MonthIndex {
	if loc == nil {
		loc = time.Local
	}
	index := MonthIndex{}
	lastDay := time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
	for d := 1; d <= lastDay; d++ {
		day := time.Date(year, month, d, 12, 0, 0, 0, loc)
		index[DateKey(day)] = ResolveForDay(exercises, day)
	}
	return index
}

func toEntry(ex memberapi.Exercise, fallback bool) Entry {
	return Entry{
		MemberExerciseID: ex.MemberExerciseID,
		Name:             ex.Name,
		NumberOfSets:     ex.NumberOfSets,
		NumberOfTimes:    ex.NumberOfTimes,
		Instruction:      ex.Instruction,
		DurationSec:      ParseDurationToSeconds(ex.Duration),
		Completed:        ex.CompletedOnce(),
		Fallback:         fallback,
	}
}
