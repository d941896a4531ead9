package translate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func completionBody(content string) string {
	return `{"choices":[{"message":{"content":"` + content + `"}}]}`
}

func newTestClient(serverURL string, opts ...Option) *Client {
	base := []Option{WithSleeper(func(time.Duration) {})}
	return NewClient(Config{
		APIKey:  "key",
		BaseURL: serverURL,
		Model:   "test-model",
	}, append(base, opts...)...)
}

func TestCompleteReturnsContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer key" {
			t.Errorf("auth header %q", got)
		}
		w.Write([]byte(completionBody("translated text")))
	}))
	defer server.Close()

	content, err := newTestClient(server.URL).Complete(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if content != "translated text" {
		t.Fatalf("content %q", content)
	}
}

func TestCompleteRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(completionBody("eventually fine")))
	}))
	defer server.Close()

	content, err := newTestClient(server.URL, WithRetryMaxAttempts(4)).Complete(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if content != "eventually fine" {
		t.Fatalf("content %q", content)
	}
	if calls.Load() != 3 {
		t.Fatalf("made %d calls, want 3", calls.Load())
	}
}

func TestCompleteHonorsRetryAfter(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "3")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(completionBody("ok")))
	}))
	defer server.Close()

	var slept time.Duration
	client := NewClient(Config{APIKey: "key", BaseURL: server.URL, Model: "m"},
		WithRetryMaxAttempts(2),
		WithSleeper(func(d time.Duration) { slept = d }),
	)
	if _, err := client.Complete(context.Background(), "system", "user"); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if slept != 3*time.Second {
		t.Fatalf("slept %v, want 3s from Retry-After", slept)
	}
}

func TestCompleteDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	if _, err := newTestClient(server.URL, WithRetryMaxAttempts(3)).Complete(context.Background(), "system", "user"); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Fatalf("made %d calls, want 1", calls.Load())
	}
}

func TestCompleteRetriesEmptyCompletion(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Write([]byte(`{"choices":[]}`))
			return
		}
		w.Write([]byte(completionBody("second try")))
	}))
	defer server.Close()

	content, err := newTestClient(server.URL, WithRetryMaxAttempts(2)).Complete(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if content != "second try" {
		t.Fatalf("content %q", content)
	}
}

func TestCompleteRequiresPrompts(t *testing.T) {
	client := newTestClient("http://unused")
	if _, err := client.Complete(context.Background(), "", "user"); err == nil {
		t.Fatal("expected error for empty system prompt")
	}
	if _, err := client.Complete(context.Background(), "system", ""); err == nil {
		t.Fatal("expected error for empty user prompt")
	}
}

func TestParseRetryAfterSeconds(t *testing.T) {
	if d, ok := parseRetryAfter("7"); !ok || d != 7*time.Second {
		t.Fatalf("parseRetryAfter(7) = %v, %v", d, ok)
	}
	if _, ok := parseRetryAfter("soon"); ok {
		t.Fatal("unparseable value accepted")
	}
	if _, ok := parseRetryAfter("-1"); ok {
		t.Fatal("negative value accepted")
	}
}
