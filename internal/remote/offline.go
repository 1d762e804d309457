package remote

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"moodtrack/internal/tracker"
)

// mockTokenPrefix starts every token the offline backend issues for password logins.
const mockTokenPrefix = "mock-jwt-token-"

type offlineUser struct {
	user     tracker.User
	password string
}

// OfflineClient is an in-process stand-in for the REST API. It keeps its
// users and collections in memory, so state lasts only as long as the process.
type OfflineClient struct {
	clock tracker.Clock
	ids   tracker.IDGenerator

	mu          sync.Mutex
	users       []offlineUser
	tokens      map[string]int64
	moods       []tracker.MoodEntry
	medications []tracker.Medication
}

var _ tracker.Remote = (*OfflineClient)(nil)

// NewOfflineClient returns a backend seeded with two users, moods for today
// and yesterday, and two medications.
func NewOfflineClient(clock tracker.Clock, ids tracker.IDGenerator) *OfflineClient {
	if clock == nil {
		clock = tracker.RealClock{}
	}
	if ids == nil {
		ids = tracker.UUIDGenerator{}
	}
	now := clock.Now()
	return &OfflineClient{
		clock: clock,
		ids:   ids,
		users: []offlineUser{
			{user: tracker.User{ID: 1, Email: "test@example.com", Name: "Test User"}, password: "password"},
			{user: tracker.User{ID: 2, Email: "admin@example.com", Name: "Admin User"}, password: "admin123"},
		},
		tokens: make(map[string]int64),
		moods: []tracker.MoodEntry{
			offlineMood(1, now, 7, "Good day overall"),
			offlineMood(2, now.AddDate(0, 0, -1), 5, "Feeling balanced"),
		},
		medications: []tracker.Medication{
			{ID: 1, Name: "Medication 1", Dosage: "10mg", Frequency: "Once daily", Time: "9:00 AM"},
			{ID: 2, Name: "Medication 2", Dosage: "20mg", Frequency: "Twice daily", Time: "9:00 AM, 9:00 PM"},
		},
	}
}

func offlineMood(id int64, day time.Time, score int, notes string) tracker.MoodEntry {
	cat := tracker.CategoryForScore(score)
	return tracker.MoodEntry{
		ID:    id,
		Date:  day.Format(tracker.DateLayout),
		Mood:  tracker.Mood{Score: score, Category: cat.Name},
		Notes: notes,
	}
}

func (c *OfflineClient) Login(_ context.Context, email, password string) (*tracker.AuthResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, u := range c.users {
		if strings.EqualFold(u.user.Email, email) && u.password == password {
			return c.issue(u.user, mockTokenPrefix+strconv.FormatInt(u.user.ID, 10)), nil
		}
	}
	return nil, fmt.Errorf("POST /auth/login/: %w", tracker.ErrUnauthorized)
}

func (c *OfflineClient) Register(_ context.Context, email, password string) (*tracker.AuthResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var maxID int64
	for _, u := range c.users {
		if strings.EqualFold(u.user.Email, email) {
			return nil, &StatusError{Method: http.MethodPost, Path: "/auth/register/", StatusCode: http.StatusBadRequest, Body: "User already exists"}
		}
		maxID = max(maxID, u.user.ID)
	}

	name, _, _ := strings.Cut(email, "@")
	u := offlineUser{user: tracker.User{ID: maxID + 1, Email: email, Name: name}, password: password}
	c.users = append(c.users, u)
	return c.issue(u.user, mockTokenPrefix+strconv.FormatInt(u.user.ID, 10)), nil
}

// LoginWithGoogle trusts the profile as given and issues a development token.
func (c *OfflineClient) LoginWithGoogle(_ context.Context, providerToken string, profile tracker.Profile) (*tracker.AuthResult, error) {
	if providerToken == "" || profile.Email == "" {
		return nil, &StatusError{Method: http.MethodPost, Path: "/auth/google/", StatusCode: http.StatusBadRequest, Body: "Invalid token"}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	subject := profile.Subject
	if subject == "" {
		subject = c.ids.New()
	}

	var maxID int64
	for _, u := range c.users {
		if strings.EqualFold(u.user.Email, profile.Email) {
			return c.issue(u.user, tracker.DevTokenPrefix+"google-"+subject), nil
		}
		maxID = max(maxID, u.user.ID)
	}
	name := profile.Name
	if name == "" {
		name, _, _ = strings.Cut(profile.Email, "@")
	}
	u := offlineUser{user: tracker.User{ID: maxID + 1, Email: profile.Email, Name: name}}
	c.users = append(c.users, u)
	return c.issue(u.user, tracker.DevTokenPrefix+"google-"+subject), nil
}

// issue must be called with c.mu held.
func (c *OfflineClient) issue(u tracker.User, token string) *tracker.AuthResult {
	c.tokens[token] = u.ID
	return &tracker.AuthResult{Token: token, User: u}
}

// authorize accepts issued tokens, development tokens and the mock token of
// any known user, so a session saved by an earlier process stays valid.
// Must be called with c.mu held.
func (c *OfflineClient) authorize(ctx context.Context, method, path string) error {
	token := tracker.TokenFromContext(ctx)
	if strings.HasPrefix(token, tracker.DevTokenPrefix) {
		return nil
	}
	if _, ok := c.tokens[token]; ok {
		return nil
	}
	if rest, ok := strings.CutPrefix(token, mockTokenPrefix); ok {
		if id, err := strconv.ParseInt(rest, 10, 64); err == nil {
			for _, u := range c.users {
				if u.user.ID == id {
					return nil
				}
			}
		}
	}
	return fmt.Errorf("%s %s: %w", method, path, tracker.ErrUnauthorized)
}

func (c *OfflineClient) FetchMoods(ctx context.Context) ([]tracker.MoodEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.authorize(ctx, http.MethodGet, "/moods/"); err != nil {
		return nil, err
	}
	out := make([]tracker.MoodEntry, len(c.moods))
	for i := range c.moods {
		out[i] = c.moods[i].Clone()
	}
	return out, nil
}

func (c *OfflineClient) CreateMood(ctx context.Context, entry tracker.MoodEntry) (*tracker.MoodEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.authorize(ctx, http.MethodPost, "/moods/"); err != nil {
		return nil, err
	}
	var maxID int64
	for _, m := range c.moods {
		maxID = max(maxID, m.ID)
	}
	stored := entry.Clone()
	stored.ID = maxID + 1
	c.moods = append(c.moods, stored)
	out := stored.Clone()
	return &out, nil
}

func (c *OfflineClient) UpdateMood(ctx context.Context, id int64, entry tracker.MoodEntry) (*tracker.MoodEntry, error) {
	path := fmt.Sprintf("/moods/%d/", id)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.authorize(ctx, http.MethodPut, path); err != nil {
		return nil, err
	}
	stored := entry.Clone()
	stored.ID = id
	replaced := false
	for i := range c.moods {
		if c.moods[i].ID == id {
			c.moods[i] = stored
			replaced = true
			break
		}
	}
	if !replaced {
		c.moods = append(c.moods, stored)
	}
	out := stored.Clone()
	return &out, nil
}

func (c *OfflineClient) DeleteMood(ctx context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.authorize(ctx, http.MethodDelete, fmt.Sprintf("/moods/%d/", id)); err != nil {
		return err
	}
	for i := range c.moods {
		if c.moods[i].ID == id {
			c.moods = append(c.moods[:i], c.moods[i+1:]...)
			break
		}
	}
	return nil
}

func (c *OfflineClient) FetchMedications(ctx context.Context) ([]tracker.Medication, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.authorize(ctx, http.MethodGet, "/medications/"); err != nil {
		return nil, err
	}
	return append([]tracker.Medication(nil), c.medications...), nil
}

func (c *OfflineClient) CreateMedication(ctx context.Context, med tracker.Medication) (*tracker.Medication, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.authorize(ctx, http.MethodPost, "/medications/"); err != nil {
		return nil, err
	}
	var maxID int64
	for _, m := range c.medications {
		maxID = max(maxID, m.ID)
	}
	med.ID = maxID + 1
	c.medications = append(c.medications, med)
	return &med, nil
}

func (c *OfflineClient) UpdateMedication(ctx context.Context, id int64, med tracker.Medication) (*tracker.Medication, error) {
	path := fmt.Sprintf("/medications/%d/", id)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.authorize(ctx, http.MethodPut, path); err != nil {
		return nil, err
	}
	med.ID = id
	for i := range c.medications {
		if c.medications[i].ID == id {
			c.medications[i] = med
			return &med, nil
		}
	}
	c.medications = append(c.medications, med)
	return &med, nil
}

func (c *OfflineClient) DeleteMedication(ctx context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.authorize(ctx, http.MethodDelete, fmt.Sprintf("/medications/%d/", id)); err != nil {
		return err
	}
	for i := range c.medications {
		if c.medications[i].ID == id {
			c.medications = append(c.medications[:i], c.medications[i+1:]...)
			break
		}
	}
	return nil
}
