package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/2beens/gymtrack/internal/exercises"
	"github.com/2beens/gymtrack/internal/musclegroups"
	"github.com/2beens/gymtrack/internal/telemetry/tracing"
	"github.com/2beens/gymtrack/internal/tracker"
	"github.com/2beens/gymtrack/internal/users"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
)

const userAgent = "GymTrack/1"

// Client is a tracker.Store over the remote CRUD API. All tree data lives
// server-side; the client keeps only the current user selection, which is a
// purely client-side notion.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mutex         sync.RWMutex
	currentUser   string
	currentUserID int
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   time.Minute,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

func (c *Client) CreateUser(ctx context.Context, username string) (_ *tracker.User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "apiclient.createUser")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	reqJson, err := json.Marshal(users.AddUserRequest{Username: username})
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, http.MethodPost, "/api/users", bytes.NewReader(reqJson), "application/json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict {
		return nil, tracker.ErrUsernameTaken
	}
	if resp.StatusCode != http.StatusCreated {
		return nil, apiError(resp)
	}

	var createdUser users.User
	if err := json.NewDecoder(resp.Body).Decode(&createdUser); err != nil {
		return nil, fmt.Errorf("decode created user: %w", err)
	}

	span.SetAttributes(attribute.Int("user.id", createdUser.ID))

	// like a fresh sign-up in the UI, the new user becomes current
	c.mutex.Lock()
	c.currentUser = createdUser.Username
	c.currentUserID = createdUser.ID
	c.mutex.Unlock()

	return &tracker.User{
		ID:       createdUser.ID,
		Username: createdUser.Username,
	}, nil
}

func (c *Client) Users(ctx context.Context) (_ []tracker.User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "apiclient.users")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	resp, err := c.do(ctx, http.MethodGet, "/api/users", nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var apiUsers []users.User
	if err := json.NewDecoder(resp.Body).Decode(&apiUsers); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}

	trackerUsers := make([]tracker.User, 0, len(apiUsers))
	for _, u := range apiUsers {
		trackerUsers = append(trackerUsers, tracker.User{
			ID:       u.ID,
			Username: u.Username,
		})
	}
	return trackerUsers, nil
}

func (c *Client) SelectUser(ctx context.Context, username string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "apiclient.selectUser")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if username == "" {
		c.mutex.Lock()
		c.currentUser = ""
		c.currentUserID = 0
		c.mutex.Unlock()
		return nil
	}

	allUsers, err := c.Users(ctx)
	if err != nil {
		return err
	}
	for _, u := range allUsers {
		if u.Username == username {
			c.mutex.Lock()
			c.currentUser = u.Username
			c.currentUserID = u.ID
			c.mutex.Unlock()
			return nil
		}
	}
	return tracker.ErrUserNotFound
}

func (c *Client) CurrentUser() string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.currentUser
}

func (c *Client) CreateMuscleGroup(ctx context.Context, name string) (_ *tracker.MuscleGroup, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "apiclient.createMuscleGroup")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	userID, err := c.currentUserIDChecked()
	if err != nil {
		return nil, err
	}

	reqJson, err := json.Marshal(musclegroups.AddMuscleGroupRequest{Name: name})
	if err != nil {
		return nil, err
	}

	resp, err := c.do(
		ctx, http.MethodPost,
		fmt.Sprintf("/api/users/%d/musclegroups", userID),
		bytes.NewReader(reqJson), "application/json",
	)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, apiError(resp)
	}

	var createdGroup musclegroups.MuscleGroup
	if err := json.NewDecoder(resp.Body).Decode(&createdGroup); err != nil {
		return nil, fmt.Errorf("decode created muscle group: %w", err)
	}

	return &tracker.MuscleGroup{
		ID:   createdGroup.ID,
		Name: createdGroup.Name,
	}, nil
}

func (c *Client) MuscleGroups(ctx context.Context) (_ []tracker.MuscleGroup, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "apiclient.muscleGroups")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	userID, err := c.currentUserIDChecked()
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/users/%d/musclegroups", userID), nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var apiGroups []musclegroups.MuscleGroup
	if err := json.NewDecoder(resp.Body).Decode(&apiGroups); err != nil {
		return nil, fmt.Errorf("decode muscle groups: %w", err)
	}

	trackerGroups := make([]tracker.MuscleGroup, 0, len(apiGroups))
	for _, g := range apiGroups {
		trackerGroups = append(trackerGroups, tracker.MuscleGroup{
			ID:   g.ID,
			Name: g.Name,
		})
	}
	return trackerGroups, nil
}

func (c *Client) DeleteMuscleGroup(ctx context.Context, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "apiclient.deleteMuscleGroup")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("musclegroup.id", id))

	resp, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/musclegroups/%d", id), nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		return apiError(resp)
	}
	return nil
}

func (c *Client) Exercises(ctx context.Context, groupID int) (_ []tracker.Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "apiclient.exercises")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("musclegroup.id", groupID))

	if groupID <= 0 {
		return nil, tracker.ErrNoCurrentGroup
	}

	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/musclegroups/%d/exercises", groupID), nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, tracker.ErrGroupNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var apiExercises []exercises.Exercise
	if err := json.NewDecoder(resp.Body).Decode(&apiExercises); err != nil {
		return nil, fmt.Errorf("decode exercises: %w", err)
	}

	trackerExercises := make([]tracker.Exercise, 0, len(apiExercises))
	for _, e := range apiExercises {
		trackerExercises = append(trackerExercises, toTrackerExercise(e))
	}
	return trackerExercises, nil
}

func (c *Client) CreateExercise(ctx context.Context, groupID int, params tracker.ExerciseParams) (_ *tracker.Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "apiclient.createExercise")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("musclegroup.id", groupID))

	if groupID <= 0 {
		return nil, tracker.ErrNoCurrentGroup
	}

	body, contentType, err := exerciseForm(params)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(
		ctx, http.MethodPost,
		fmt.Sprintf("/api/musclegroups/%d/exercises", groupID),
		body, contentType,
	)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, tracker.ErrGroupNotFound
	}
	if resp.StatusCode != http.StatusCreated {
		return nil, apiError(resp)
	}

	var createdExercise exercises.Exercise
	if err := json.NewDecoder(resp.Body).Decode(&createdExercise); err != nil {
		return nil, fmt.Errorf("decode created exercise: %w", err)
	}

	trackerExercise := toTrackerExercise(createdExercise)
	return &trackerExercise, nil
}

func (c *Client) UpdateExercise(ctx context.Context, groupID, exerciseID int, params tracker.ExerciseParams) (_ *tracker.Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "apiclient.updateExercise")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("exercise.id", exerciseID))

	body, contentType, err := exerciseForm(params)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/exercises/%d", exerciseID), body, contentType)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, tracker.ErrExerciseNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var updatedExercise exercises.Exercise
	if err := json.NewDecoder(resp.Body).Decode(&updatedExercise); err != nil {
		return nil, fmt.Errorf("decode updated exercise: %w", err)
	}

	trackerExercise := toTrackerExercise(updatedExercise)
	return &trackerExercise, nil
}

func (c *Client) DeleteExercise(ctx context.Context, groupID, exerciseID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "apiclient.deleteExercise")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("exercise.id", exerciseID))

	resp, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/exercises/%d", exerciseID), nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		return apiError(resp)
	}
	return nil
}

func (c *Client) currentUserIDChecked() (int, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	if c.currentUser == "" {
		return 0, tracker.ErrNoCurrentUser
	}
	return c.currentUserID, nil
}

func (c *Client) do(
	ctx context.Context,
	method, path string,
	body io.Reader,
	contentType string,
) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

func toTrackerExercise(e exercises.Exercise) tracker.Exercise {
	return tracker.Exercise{
		ID:     e.ID,
		Name:   e.Name,
		Weight: e.Weight,
		Sets:   e.Sets,
		Reps:   e.Reps,
		Image:  e.ImagePath,
	}
}

// exerciseForm packs the exercise fields, plus the image when present, into
// a multipart body.
func exerciseForm(params tracker.ExerciseParams) (io.Reader, string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	fields := map[string]string{
		"name":   params.Name,
		"weight": params.Weight,
		"sets":   params.Sets,
		"reps":   params.Reps,
	}
	for key, val := range fields {
		if err := writer.WriteField(key, val); err != nil {
			return nil, "", fmt.Errorf("write form field %s: %w", key, err)
		}
	}

	if params.Image != nil {
		part, err := writer.CreateFormFile("image", params.Image.Filename)
		if err != nil {
			return nil, "", fmt.Errorf("create image form file: %w", err)
		}
		if _, err := part.Write(params.Image.Data); err != nil {
			return nil, "", fmt.Errorf("write image form file: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close form writer: %w", err)
	}
	return &body, writer.FormDataContentType(), nil
}

type errorResponse struct {
	Error string `json:"error"`
}

// apiError turns a non-success response into an error, surfacing the
// server's JSON error message when one is present.
func apiError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, errResp.Error)
	}
	return fmt.Errorf("unexpected status %d", resp.StatusCode)
}

var _ tracker.Store = (*Client)(nil)
