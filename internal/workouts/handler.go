package workouts

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/gdinexus/gfit-workout-service/internal/memberapi"
	"github.com/gdinexus/gfit-workout-service/internal/schedule"
	"github.com/gdinexus/gfit-workout-service/internal/telemetry/tracing"
	"github.com/gdinexus/gfit-workout-service/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=workouts

type memberApi interface {
	GetProfile(ctx context.Context) (*memberapi.Profile, error)
	AllExercises(ctx context.Context, memberID string) ([]memberapi.Exercise, error)
	WeeklyStats(ctx context.Context, memberID string) (*memberapi.WeeklyStats, error)
}

type TodayResponse struct {
	Date     string           `json:"date"`
	Weekday  string           `json:"weekday"`
	Entries  []schedule.Entry `json:"entries"`
	Fallback bool             `json:"fallback"`
}

type CalendarResponse struct {
	Year  int                 `json:"year"`
	Month int                 `json:"month"`
	Days  schedule.MonthIndex `json:"days"`
}

type Handler struct {
	api memberApi

	// now is swappable in tests
	now func() time.Time
}

func NewHandler(api memberApi) *Handler {
	return &Handler{
		api: api,
		now: time.Now,
	}
}

// HandleToday resolves the exercises due on the current calendar day.
func (handler *Handler) HandleToday(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.today")
	defer span.End()

	exercises, ok := handler.memberExercises(ctx, w)
	if !ok {
		return
	}

	now := handler.now()
	entries := schedule.ResolveForDay(exercises, now)
	todayResponse := TodayResponse{
		Date:    schedule.DateKey(now),
		Weekday: now.Weekday().String(),
		Entries: entries,
	}
	if len(entries) > 0 && entries[0].Fallback {
		todayResponse.Fallback = true
	}

	todayJson, err := json.Marshal(todayResponse)
	if err != nil {
		log.Errorf("failed to marshal today response: %s", err)
		http.Error(w, "error, failed to get today's workouts", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, todayJson, http.StatusOK)
}

// HandleCalendar resolves the full schedule of one month, for the
// calendar view.
func (handler *Handler) HandleCalendar(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.calendar")
	defer span.End()

	vars := mux.Vars(r)
	year, err := strconv.Atoi(vars["year"])
	if err != nil || year < 2000 || year > 2100 {
		http.Error(w, "error, invalid year", http.StatusBadRequest)
		return
	}
	month, err := strconv.Atoi(vars["month"])
	if err != nil || month < 1 || month > 12 {
		http.Error(w, "error, invalid month", http.StatusBadRequest)
		return
	}

	exercises, ok := handler.memberExercises(ctx, w)
	if !ok {
		return
	}

	calendarJson, err := json.Marshal(CalendarResponse{
		Year:  year,
		Month: month,
		Days:  schedule.BuildMonthIndex(exercises, year, time.Month(month), time.Local),
	})
	if err != nil {
		log.Errorf("failed to marshal calendar response: %s", err)
		http.Error(w, "error, failed to get calendar", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, calendarJson, http.StatusOK)
}

// HandleWeeklyStats proxies the backend's weekly exercise tracker.
func (handler *Handler) HandleWeeklyStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.weeklyStats")
	defer span.End()

	memberID, ok := handler.resolveMemberID(ctx, w)
	if !ok {
		return
	}

	stats, err := handler.api.WeeklyStats(ctx, memberID)
	if err != nil {
		log.Errorf("failed to get weekly stats for member [%s]: %s", memberID, err)
		http.Error(w, "error, failed to get weekly stats", http.StatusBadGateway)
		return
	}

	statsJson, err := json.Marshal(stats)
	if err != nil {
		log.Errorf("failed to marshal weekly stats: %s", err)
		http.Error(w, "error, failed to get weekly stats", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, statsJson, http.StatusOK)
}

func (handler *Handler) memberExercises(ctx context.Context, w http.ResponseWriter) ([]memberapi.Exercise, bool) {
	memberID, ok := handler.resolveMemberID(ctx, w)
	if !ok {
		return nil, false
	}

	exercises, err := handler.api.AllExercises(ctx, memberID)
	if err != nil {
		log.Errorf("failed to get exercises for member [%s]: %s", memberID, err)
		http.Error(w, "error, failed to get exercises", http.StatusBadGateway)
		return nil, false
	}
	return exercises, true
}

func (handler *Handler) resolveMemberID(ctx context.Context, w http.ResponseWriter) (string, bool) {
	profile, err := handler.api.GetProfile(ctx)
	if err != nil {
		log.Errorf("failed to get member profile: %s", err)
		http.Error(w, "error, failed to get member profile", http.StatusBadGateway)
		return "", false
	}

	memberID := profile.ResolveMemberID()
	if memberID == "" {
		log.Errorf("member profile without any usable id")
		http.Error(w, "error, member id not found", http.StatusBadGateway)
		return "", false
	}
	return memberID, true
}
