package memberapi

import "time"

// ScheduleType is a recurrence tag on an assigned exercise. The name is
// either a weekday ("Monday") or an everyday alias ("Daily", "all day", ...).
type ScheduleType struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// Instance is a remote record of one attempt at an exercise.
type Instance struct {
	InstanceID        string `json:"instanceId,omitempty"`
	Completed         bool   `json:"completed"`
	DurationInMinutes int    `json:"durationInMinutes"`
	Feedback          string `json:"feedback,omitempty"`
	Notes             string `json:"notes,omitempty"`
}

// Exercise is an exercise assigned to a member, as returned by
// GET /api/Member/member-allExercise/{memberId}.
type Exercise struct {
	MemberExerciseID string         `json:"memberExerciseId"`
	Name             string         `json:"exerciseName"`
	NumberOfSets     int            `json:"numberOfSets,omitempty"`
	NumberOfTimes    int            `json:"numberOfTimes,omitempty"`
	Instruction      string         `json:"instruction,omitempty"`
	Duration         string         `json:"duration,omitempty"`
	ScheduleTypes    []ScheduleType `json:"scheduleTypes"`
	Instances        []Instance     `json:"instances"`
}

// CompletedOnce reports whether any past instance of the exercise is
// marked completed. Used only for display state, the instances are
// owned by the remote API.
func (e Exercise) CompletedOnce() bool {
	for _, inst := range e.Instances {
		if inst.Completed {
			return true
		}
	}
	return false
}

type Profile struct {
	MemberID string `json:"memberId"`
	ID       string `json:"id"`
	UserID   string `json:"userId"`
	Name     string `json:"name"`
	FullName string `json:"fullName"`
}

// ResolveMemberID mirrors the fallback chain the backend's inconsistent
// payloads require: memberId, then id, then userId.
func (p Profile) ResolveMemberID() string {
	if p.MemberID != "" {
		return p.MemberID
	}
	if p.ID != "" {
		return p.ID
	}
	return p.UserID
}

// WeeklyStats is the response of GET /api/Member/weekly-memberExerciseTracker/{memberId}.
type WeeklyStats struct {
	WeekStart      *time.Time `json:"weekStart"`
	WeekEnd        *time.Time `json:"weekEnd"`
	AssignedCount  int        `json:"assignedCount"`
	CompletedCount int        `json:"completedCount"`
}

// InstancePayload is the write payload for creating or updating an instance.
type InstancePayload struct {
	Completed         bool   `json:"completed"`
	DurationInMinutes int    `json:"durationInMinutes"`
	Feedback          string `json:"feedback"`
	Notes             string `json:"notes"`
}

// InstanceResponse covers the id field variants different backend
// endpoints use for the same thing.
type InstanceResponse struct {
	InstanceIDField          string `json:"instanceId"`
	IDField                  string `json:"id"`
	ExerciseInstanceIDField  string `json:"exerciseInstanceId"`
	MemberExerciseInstanceID string `json:"memberExerciseInstanceId"`
	Completed                bool   `json:"completed"`
	DurationInMinutes        int    `json:"durationInMinutes"`
}

// InstanceID returns the first non-empty id variant.
func (r InstanceResponse) InstanceID() string {
	for _, id := range []string{
		r.InstanceIDField,
		r.IDField,
		r.ExerciseInstanceIDField,
		r.MemberExerciseInstanceID,
	} {
		if id != "" {
			return id
		}
	}
	return ""
}

// BulkNotification is the payload for the backend's bulk notification sender,
// used to congratulate the member right after a committed workout.
type BulkNotification struct {
	UserIDs  []string `json:"userIds"`
	Title    string   `json:"title"`
	Message  string   `json:"message"`
	Type     string   `json:"type"`
	Severity string   `json:"severity"`
}
