package remote

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"moodtrack/internal/tracker"
)

type stubClock struct{ t time.Time }

func (c stubClock) Now() time.Time { return c.t }

func newOffline() *OfflineClient {
	return NewOfflineClient(stubClock{time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)}, fixedIDs{})
}

func TestOfflineClient_Login(t *testing.T) {
	tests := []struct {
		name      string
		email     string
		password  string
		wantID    int64
		wantToken string
		wantErr   error
	}{
		{"test user", "test@example.com", "password", 1, "mock-jwt-token-1", nil},
		{"admin", "admin@example.com", "admin123", 2, "mock-jwt-token-2", nil},
		{"wrong password", "test@example.com", "nope", 0, "", tracker.ErrUnauthorized},
		{"unknown user", "who@example.com", "password", 0, "", tracker.ErrUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := newOffline().Login(context.Background(), tt.email, tt.password)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Login() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Login() error = %v", err)
			}
			if res.User.ID != tt.wantID || res.Token != tt.wantToken {
				t.Errorf("Login() = %+v, want id %d token %q", res, tt.wantID, tt.wantToken)
			}
		})
	}
}

func TestOfflineClient_Register(t *testing.T) {
	c := newOffline()
	ctx := context.Background()

	res, err := c.Register(ctx, "new.person@example.com", "secret")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if res.User.ID != 3 || res.User.Name != "new.person" || res.Token != "mock-jwt-token-3" {
		t.Errorf("Register() = %+v", res)
	}

	if _, err := c.Login(ctx, "new.person@example.com", "secret"); err != nil {
		t.Errorf("Login() after register error = %v", err)
	}

	_, err = c.Register(ctx, "test@example.com", "x")
	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusBadRequest || se.Body != "User already exists" {
		t.Errorf("duplicate Register() error = %v", err)
	}
}

func TestOfflineClient_GoogleIssuesDevToken(t *testing.T) {
	c := newOffline()
	res, err := c.LoginWithGoogle(context.Background(), "id-token", tracker.Profile{Subject: "42", Email: "g@example.com", Name: "Gee"})
	if err != nil {
		t.Fatalf("LoginWithGoogle() error = %v", err)
	}
	if res.Token != "dev-token-google-42" {
		t.Errorf("token = %q", res.Token)
	}
	if res.User.Name != "Gee" || res.User.ID != 3 {
		t.Errorf("user = %+v", res.User)
	}

	res, err = c.LoginWithGoogle(context.Background(), "id-token", tracker.Profile{Email: "test@example.com"})
	if err != nil {
		t.Fatalf("LoginWithGoogle() existing user error = %v", err)
	}
	if res.User.ID != 1 || !strings.HasPrefix(res.Token, tracker.DevTokenPrefix) {
		t.Errorf("existing user result = %+v", res)
	}

	if _, err := c.LoginWithGoogle(context.Background(), "", tracker.Profile{Email: "g@example.com"}); err == nil {
		t.Error("LoginWithGoogle() without provider token succeeded")
	}
}

func TestOfflineClient_RejectsUnknownTokens(t *testing.T) {
	c := newOffline()
	ctx := tracker.WithToken(context.Background(), "forged")
	if _, err := c.FetchMoods(ctx); !errors.Is(err, tracker.ErrUnauthorized) {
		t.Errorf("FetchMoods() error = %v, want ErrUnauthorized", err)
	}
	if err := c.DeleteMedication(ctx, 1); !errors.Is(err, tracker.ErrUnauthorized) {
		t.Errorf("DeleteMedication() error = %v, want ErrUnauthorized", err)
	}

	if _, err := c.FetchMoods(tracker.WithToken(context.Background(), "mock-jwt-token-99")); !errors.Is(err, tracker.ErrUnauthorized) {
		t.Errorf("FetchMoods() with unknown user token error = %v, want ErrUnauthorized", err)
	}
	if _, err := c.FetchMoods(tracker.WithToken(context.Background(), "mock-jwt-token-2")); err != nil {
		t.Errorf("FetchMoods() with earlier session token error = %v", err)
	}

	dev := tracker.WithToken(context.Background(), "dev-token-local")
	if _, err := c.FetchMoods(dev); err != nil {
		t.Errorf("FetchMoods() with dev token error = %v", err)
	}
}

func TestOfflineClient_MoodLifecycle(t *testing.T) {
	c := newOffline()
	res, err := c.Login(context.Background(), "test@example.com", "password")
	if err != nil {
		t.Fatal(err)
	}
	ctx := tracker.WithToken(context.Background(), res.Token)

	moods, err := c.FetchMoods(ctx)
	if err != nil {
		t.Fatalf("FetchMoods() error = %v", err)
	}
	if len(moods) != 2 || moods[0].Date != "2024-01-15" || moods[1].Date != "2024-01-14" {
		t.Fatalf("seeded moods = %+v", moods)
	}

	created, err := c.CreateMood(ctx, tracker.MoodEntry{Date: "2024-01-16", Mood: tracker.Mood{Score: 3}})
	if err != nil {
		t.Fatalf("CreateMood() error = %v", err)
	}
	if created.ID != 3 {
		t.Errorf("CreateMood() id = %d, want 3", created.ID)
	}

	updated, err := c.UpdateMood(ctx, 3, tracker.MoodEntry{Date: "2024-01-16", Mood: tracker.Mood{Score: 9}})
	if err != nil {
		t.Fatalf("UpdateMood() error = %v", err)
	}
	if updated.ID != 3 || updated.Mood.Score != 9 {
		t.Errorf("UpdateMood() = %+v", updated)
	}

	if err := c.DeleteMood(ctx, 1); err != nil {
		t.Fatalf("DeleteMood() error = %v", err)
	}
	moods, _ = c.FetchMoods(ctx)
	if len(moods) != 2 {
		t.Errorf("after delete got %d moods, want 2", len(moods))
	}
	for _, m := range moods {
		if m.ID == 1 {
			t.Error("deleted mood still present")
		}
	}
}

func TestOfflineClient_MedicationLifecycle(t *testing.T) {
	c := newOffline()
	ctx := tracker.WithToken(context.Background(), "dev-token-x")

	created, err := c.CreateMedication(ctx, tracker.Medication{Name: "X", Dosage: "1mg", Frequency: "Daily"})
	if err != nil || created.ID != 3 {
		t.Fatalf("CreateMedication() = %+v, %v", created, err)
	}
	if _, err := c.UpdateMedication(ctx, 3, tracker.Medication{Name: "Y", Dosage: "2mg", Frequency: "Daily"}); err != nil {
		t.Fatalf("UpdateMedication() error = %v", err)
	}
	if err := c.DeleteMedication(ctx, 1); err != nil {
		t.Fatalf("DeleteMedication() error = %v", err)
	}
	meds, err := c.FetchMedications(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(meds) != 2 || meds[0].ID != 2 || meds[1].Name != "Y" {
		t.Errorf("medications = %+v", meds)
	}
}
