package memberapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gdinexus/gfit-workout-service/internal/telemetry/tracing"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// TokenProvider supplies the member's bearer token for the remote API.
// Token acquisition and refresh live outside this service.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenProvider returning a fixed token.
type StaticToken string

func (t StaticToken) Token(_ context.Context) (string, error) {
	return string(t), nil
}

// APIError is a non-2xx response from the member API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("member api: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("member api: HTTP %d: %s", e.StatusCode, e.Message)
}

// Client talks to the GFit Member/Exercise HTTP API.
// https://gfit-dev.gdinexus.com:8412/swagger
type Client struct {
	baseURL    string
	tokens     TokenProvider
	httpClient *http.Client
	cache      *freecache.Cache
	// cache expiry for the member-allExercise response
	exercisesCacheExpireSec int
}

func NewClient(
	baseURL string,
	tokens TokenProvider,
	httpClient *http.Client,
	exercisesCacheExpireSec int,
) *Client {
	megabyte := 1024 * 1024
	return &Client{
		baseURL:                 baseURL,
		tokens:                  tokens,
		httpClient:              httpClient,
		cache:                   freecache.NewCache(10 * megabyte),
		exercisesCacheExpireSec: exercisesCacheExpireSec,
	}
}

// GetProfile fetches the logged-in member's profile; used to resolve the member id.
func (c *Client) GetProfile(ctx context.Context) (_ *Profile, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "memberApi.getProfile")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	profile := &Profile{}
	if err := c.do(ctx, http.MethodGet, "/api/Member/profile", nil, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// AllExercises fetches the member's assigned exercises. Responses are cached
// for a short while since the dashboard re-reads the list on every render.
func (c *Client) AllExercises(ctx context.Context, memberID string) (_ []Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "memberApi.allExercises")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("member.id", memberID))

	cacheKey := []byte(fmt.Sprintf("exercises::%s", memberID))
	if cachedBytes, err := c.cache.Get(cacheKey); err == nil {
		var exercises []Exercise
		if err = json.Unmarshal(cachedBytes, &exercises); err == nil {
			log.Tracef("found exercises for member %s in cache", memberID)
			span.SetAttributes(attribute.Bool("exercises.from-cache", true))
			return exercises, nil
		}
		log.Errorf("failed to unmarshal cached exercises for member %s: %s", memberID, err)
	}
	span.SetAttributes(attribute.Bool("exercises.from-cache", false))

	var exercises []Exercise
	path := fmt.Sprintf("/api/Member/member-allExercise/%s", memberID)
	if err := c.do(ctx, http.MethodGet, path, nil, &exercises); err != nil {
		return nil, err
	}

	if exercisesBytes, err := json.Marshal(exercises); err == nil {
		if err = c.cache.Set(cacheKey, exercisesBytes, c.exercisesCacheExpireSec); err != nil {
			log.Errorf("failed to cache exercises for member %s: %s", memberID, err)
		}
	}

	return exercises, nil
}

// InvalidateExercises drops the cached exercise list for a member, to be
// called after an instance write so completion flags refresh promptly.
func (c *Client) InvalidateExercises(memberID string) {
	c.cache.Del([]byte(fmt.Sprintf("exercises::%s", memberID)))
}

// WeeklyStats fetches this week's assigned/completed exercise counts.
func (c *Client) WeeklyStats(ctx context.Context, memberID string) (_ *WeeklyStats, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "memberApi.weeklyStats")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	stats := &WeeklyStats{}
	path := fmt.Sprintf("/api/Member/weekly-memberExerciseTracker/%s", memberID)
	if err := c.do(ctx, http.MethodGet, path, nil, stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// CreateInstance creates a new exercise instance record.
func (c *Client) CreateInstance(
	ctx context.Context,
	memberExerciseID string,
	payload InstancePayload,
) (_ *InstanceResponse, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "memberApi.createInstance")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("member.exercise.id", memberExerciseID),
		attribute.Bool("instance.completed", payload.Completed),
	)

	resp := &InstanceResponse{}
	path := fmt.Sprintf("/api/Member/exercise-instances/%s", memberExerciseID)
	if err := c.do(ctx, http.MethodPost, path, payload, resp); err != nil {
		return nil, err
	}

	log.Debugf("created exercise instance [%s] for member exercise [%s]", resp.InstanceID(), memberExerciseID)
	return resp, nil
}

// UpdateInstance updates an existing exercise instance record.
func (c *Client) UpdateInstance(
	ctx context.Context,
	instanceID string,
	payload InstancePayload,
) (_ *InstanceResponse, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "memberApi.updateInstance")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("instance.id", instanceID),
		attribute.Bool("instance.completed", payload.Completed),
	)

	resp := &InstanceResponse{}
	path := fmt.Sprintf("/api/Member/update-exerciseInstance/%s", instanceID)
	if err := c.do(ctx, http.MethodPut, path, payload, resp); err != nil {
		return nil, err
	}

	log.Debugf("updated exercise instance [%s]", instanceID)
	return resp, nil
}

// SendBulkNotifications delivers an in-app notification to the given users.
func (c *Client) SendBulkNotifications(ctx context.Context, notification BulkNotification) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "memberApi.sendBulkNotifications")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return c.do(ctx, http.MethodPost, "/api/Member/send-bulkNotification", notification, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("get auth token: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	log.Tracef("member api call: %s %s", method, path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var errBody struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if err := json.Unmarshal(respBytes, &errBody); err == nil {
			apiErr.Message = errBody.Message
			if apiErr.Message == "" {
				apiErr.Message = errBody.Error
			}
		}
		return apiErr
	}

	if out == nil || len(respBytes) == 0 {
		return nil
	}

	if err := json.Unmarshal(respBytes, out); err != nil {
		return fmt.Errorf("unmarshal response body: %w", err)
	}
	return nil
}
