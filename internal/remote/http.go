package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"moodtrack/internal/tracker"
)

// StatusError is a non-2xx answer other than 401.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// maxErrorBody caps how much of an error response is kept in a StatusError.
const maxErrorBody = 512

// HTTPClient talks to the mood tracking REST API.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	ids     tracker.IDGenerator
	logger  tracker.Logger
}

var _ tracker.Remote = (*HTTPClient)(nil)

// NewHTTPClient creates a client for baseURL (for example
// "https://api.example.com/api"). timeout bounds every request; zero means
// tracker.DefaultRemoteTimeout.
func NewHTTPClient(baseURL string, timeout time.Duration, ids tracker.IDGenerator, logger tracker.Logger) *HTTPClient {
	if timeout <= 0 {
		timeout = tracker.DefaultRemoteTimeout
	}
	if ids == nil {
		ids = tracker.UUIDGenerator{}
	}
	if logger == nil {
		logger = tracker.NewNopLogger()
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		ids:     ids,
		logger:  logger,
	}
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*tracker.AuthResult, error) {
	var res tracker.AuthResult
	body := credentials{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/auth/login/", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) Register(ctx context.Context, email, password string) (*tracker.AuthResult, error) {
	var res tracker.AuthResult
	body := credentials{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/auth/register/", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) LoginWithGoogle(ctx context.Context, providerToken string, profile tracker.Profile) (*tracker.AuthResult, error) {
	var res tracker.AuthResult
	body := googleExchange{Token: providerToken, Profile: profile}
	if err := c.do(ctx, http.MethodPost, "/auth/google/", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) FetchMoods(ctx context.Context) ([]tracker.MoodEntry, error) {
	var out []tracker.MoodEntry
	if err := c.do(ctx, http.MethodGet, "/moods/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) CreateMood(ctx context.Context, entry tracker.MoodEntry) (*tracker.MoodEntry, error) {
	var out tracker.MoodEntry
	if err := c.do(ctx, http.MethodPost, "/moods/", entry, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) UpdateMood(ctx context.Context, id int64, entry tracker.MoodEntry) (*tracker.MoodEntry, error) {
	var out tracker.MoodEntry
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/moods/%d/", id), entry, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) DeleteMood(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/moods/%d/", id), nil, nil)
}

func (c *HTTPClient) FetchMedications(ctx context.Context) ([]tracker.Medication, error) {
	var out []tracker.Medication
	if err := c.do(ctx, http.MethodGet, "/medications/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) CreateMedication(ctx context.Context, med tracker.Medication) (*tracker.Medication, error) {
	var out tracker.Medication
	if err := c.do(ctx, http.MethodPost, "/medications/", med, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) UpdateMedication(ctx context.Context, id int64, med tracker.Medication) (*tracker.Medication, error) {
	var out tracker.Medication
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/medications/%d/", id), med, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) DeleteMedication(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/medications/%d/", id), nil, nil)
}

// do sends one JSON request. Failures to get any answer wrap
// tracker.ErrNetwork, a 401 wraps tracker.ErrUnauthorized, and other non-2xx
// statuses return a *StatusError.
func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	reqID := c.ids.New()
	req.Header.Set("X-Request-ID", reqID)
	if token := tracker.TokenFromContext(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("%s %s: %w", method, path, err)
		}
		return fmt.Errorf("%s %s: %w: %w", method, path, tracker.ErrNetwork, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("remote call", "method", method, "path", path, "status", resp.StatusCode,
		"request_id", reqID, "duration", time.Since(start))

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%s %s: %w", method, path, tracker.ErrUnauthorized)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type googleExchange struct {
	Token   string          `json:"token"`
	Profile tracker.Profile `json:"user"`
}
