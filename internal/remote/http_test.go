package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"moodtrack/internal/tracker"
)

type fixedIDs struct{}

func (fixedIDs) New() string { return "req-1" }

type recorded struct {
	method string
	path   string
	header http.Header
	body   []byte
}

func newServer(t *testing.T, status int, response any) (*httptest.Server, *[]recorded) {
	t.Helper()
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		calls = append(calls, recorded{method: r.Method, path: r.URL.Path, header: r.Header.Clone(), body: body})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if response != nil {
			_ = json.NewEncoder(w).Encode(response)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestHTTPClient_LoginSendsCredentials(t *testing.T) {
	want := tracker.AuthResult{Token: "jwt", User: tracker.User{ID: 3, Email: "a@b.c", Name: "A"}}
	srv, calls := newServer(t, http.StatusOK, want)
	c := NewHTTPClient(srv.URL+"/api/", time.Second, fixedIDs{}, nil)

	got, err := c.Login(context.Background(), "a@b.c", "pw")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if *got != want {
		t.Errorf("Login() = %+v, want %+v", *got, want)
	}

	if len(*calls) != 1 {
		t.Fatalf("got %d calls, want 1", len(*calls))
	}
	call := (*calls)[0]
	if call.method != http.MethodPost || call.path != "/api/auth/login/" {
		t.Errorf("request = %s %s, want POST /api/auth/login/", call.method, call.path)
	}
	if ct := call.header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if id := call.header.Get("X-Request-ID"); id != "req-1" {
		t.Errorf("X-Request-ID = %q, want req-1", id)
	}
	if auth := call.header.Get("Authorization"); auth != "" {
		t.Errorf("Authorization = %q, want none", auth)
	}
	var body credentials
	if err := json.Unmarshal(call.body, &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Email != "a@b.c" || body.Password != "pw" {
		t.Errorf("body = %+v", body)
	}
}

func TestHTTPClient_BearerFromContext(t *testing.T) {
	srv, calls := newServer(t, http.StatusOK, []tracker.MoodEntry{{ID: 1, Date: "2024-01-15", Mood: tracker.Mood{Score: 5}}})
	c := NewHTTPClient(srv.URL, time.Second, fixedIDs{}, nil)

	ctx := tracker.WithToken(context.Background(), "abc")
	moods, err := c.FetchMoods(ctx)
	if err != nil {
		t.Fatalf("FetchMoods() error = %v", err)
	}
	if len(moods) != 1 || moods[0].Date != "2024-01-15" {
		t.Errorf("FetchMoods() = %+v", moods)
	}
	if auth := (*calls)[0].header.Get("Authorization"); auth != "Bearer abc" {
		t.Errorf("Authorization = %q, want %q", auth, "Bearer abc")
	}
}

func TestHTTPClient_Paths(t *testing.T) {
	ctx := tracker.WithToken(context.Background(), "abc")
	tests := []struct {
		name   string
		call   func(*HTTPClient) error
		method string
		path   string
	}{
		{"create mood", func(c *HTTPClient) error { _, err := c.CreateMood(ctx, tracker.MoodEntry{}); return err }, http.MethodPost, "/moods/"},
		{"update mood", func(c *HTTPClient) error { _, err := c.UpdateMood(ctx, 7, tracker.MoodEntry{}); return err }, http.MethodPut, "/moods/7/"},
		{"delete mood", func(c *HTTPClient) error { return c.DeleteMood(ctx, 7) }, http.MethodDelete, "/moods/7/"},
		{"fetch medications", func(c *HTTPClient) error { _, err := c.FetchMedications(ctx); return err }, http.MethodGet, "/medications/"},
		{"create medication", func(c *HTTPClient) error { _, err := c.CreateMedication(ctx, tracker.Medication{}); return err }, http.MethodPost, "/medications/"},
		{"update medication", func(c *HTTPClient) error { _, err := c.UpdateMedication(ctx, 2, tracker.Medication{}); return err }, http.MethodPut, "/medications/2/"},
		{"delete medication", func(c *HTTPClient) error { return c.DeleteMedication(ctx, 2) }, http.MethodDelete, "/medications/2/"},
		{"register", func(c *HTTPClient) error { _, err := c.Register(ctx, "x@y.z", "pw"); return err }, http.MethodPost, "/auth/register/"},
		{"google", func(c *HTTPClient) error {
			_, err := c.LoginWithGoogle(ctx, "id-token", tracker.Profile{Email: "g@x.y"})
			return err
		}, http.MethodPost, "/auth/google/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, calls := newServer(t, http.StatusOK, nil)
			c := NewHTTPClient(srv.URL, time.Second, fixedIDs{}, nil)
			if err := tt.call(c); err != nil {
				t.Fatalf("call error = %v", err)
			}
			got := (*calls)[0]
			if got.method != tt.method || got.path != tt.path {
				t.Errorf("request = %s %s, want %s %s", got.method, got.path, tt.method, tt.path)
			}
		})
	}
}

func TestHTTPClient_ErrorMapping(t *testing.T) {
	t.Run("401 is unauthorized", func(t *testing.T) {
		srv, _ := newServer(t, http.StatusUnauthorized, map[string]string{"detail": "expired"})
		c := NewHTTPClient(srv.URL, time.Second, fixedIDs{}, nil)
		_, err := c.FetchMoods(context.Background())
		if !errors.Is(err, tracker.ErrUnauthorized) {
			t.Errorf("error = %v, want ErrUnauthorized", err)
		}
	})

	t.Run("400 is a status error", func(t *testing.T) {
		srv, _ := newServer(t, http.StatusBadRequest, map[string]string{"error": "User already exists"})
		c := NewHTTPClient(srv.URL, time.Second, fixedIDs{}, nil)
		_, err := c.Register(context.Background(), "a@b.c", "pw")
		var se *StatusError
		if !errors.As(err, &se) {
			t.Fatalf("error = %v, want *StatusError", err)
		}
		if se.StatusCode != http.StatusBadRequest || !strings.Contains(se.Body, "User already exists") {
			t.Errorf("StatusError = %+v", se)
		}
		if errors.Is(err, tracker.ErrNetwork) || errors.Is(err, tracker.ErrUnauthorized) {
			t.Errorf("status error must not match network or unauthorized: %v", err)
		}
	})

	t.Run("unreachable server is a network error", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()
		c := NewHTTPClient(url, time.Second, fixedIDs{}, nil)
		_, err := c.FetchMedications(context.Background())
		if !errors.Is(err, tracker.ErrNetwork) {
			t.Errorf("error = %v, want ErrNetwork", err)
		}
	})

	t.Run("slow server is a network error", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(release)
		c := NewHTTPClient(srv.URL, 50*time.Millisecond, fixedIDs{}, nil)
		_, err := c.FetchMoods(context.Background())
		if !errors.Is(err, tracker.ErrNetwork) {
			t.Errorf("error = %v, want ErrNetwork", err)
		}
	})
}

func TestHTTPClient_EmptyBodyIsOK(t *testing.T) {
	srv, _ := newServer(t, http.StatusNoContent, nil)
	c := NewHTTPClient(srv.URL, time.Second, fixedIDs{}, nil)
	if err := c.DeleteMood(context.Background(), 1); err != nil {
		t.Errorf("DeleteMood() error = %v", err)
	}
}
