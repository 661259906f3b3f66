package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestHTTPTimeoutFromEnv(t *testing.T) {
	t.Run("default has no timeout", func(t *testing.T) {
		t.Setenv(httpTimeoutEnvKey, "")
		if got := httpTimeoutFromEnv(); got != 0 {
			t.Fatalf("expected no timeout, got %v", got)
		}
	})

	t.Run("duration format", func(t *testing.T) {
		t.Setenv(httpTimeoutEnvKey, "45s")
		if got := httpTimeoutFromEnv(); got != 45*time.Second {
			t.Fatalf("expected 45s timeout, got %v", got)
		}
	})

	t.Run("integer seconds", func(t *testing.T) {
		t.Setenv(httpTimeoutEnvKey, "25")
		if got := httpTimeoutFromEnv(); got != 25*time.Second {
			t.Fatalf("expected 25s timeout, got %v", got)
		}
	})

	t.Run("invalid falls back", func(t *testing.T) {
		t.Setenv(httpTimeoutEnvKey, "invalid")
		if got := httpTimeoutFromEnv(); got != 0 {
			t.Fatalf("expected no timeout, got %v", got)
		}
	})
}

func TestNewClientTokenFromEnv(t *testing.T) {
	t.Setenv(tokenEnvKey, " env-token ")
	if got := NewClient("http://x", "").authToken; got != "env-token" {
		t.Fatalf("expected env token, got %q", got)
	}
	if got := NewClient("http://x", "flag-token").authToken; got != "flag-token" {
		t.Fatalf("expected flag token, got %q", got)
	}
}

func TestUploadStreamsMultipart(t *testing.T) {
	var gotAuth, gotName, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/new" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		reader, err := r.MultipartReader()
		if err != nil {
			t.Errorf("multipart reader: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		part, err := reader.NextPart()
		if err != nil {
			t.Errorf("next part: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		gotName = part.FileName()
		data, _ := io.ReadAll(part)
		gotBody = string(data)
		_, _ = io.WriteString(w, "http://127.0.0.1:3001/paste/abc.txt")
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/", "T1")
	url, err := client.Upload(context.Background(), "notes.txt", strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if url != "http://127.0.0.1:3001/paste/abc.txt" {
		t.Fatalf("unexpected url %q", url)
	}
	if gotAuth != "Bearer T1" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
	if gotName != "notes.txt" || gotBody != "hello" {
		t.Fatalf("unexpected part name=%q body=%q", gotName, gotBody)
	}
}

func TestUploadRequiresToken(t *testing.T) {
	t.Setenv(tokenEnvKey, "")
	client := NewClient("http://127.0.0.1:1", "")
	if _, err := client.Upload(context.Background(), "a.txt", strings.NewReader("x")); err == nil {
		t.Fatal("expected error without token")
	}
}

func TestDeleteMapsStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantCode string
	}{
		{name: "ok", status: http.StatusOK},
		{name: "unauthorized", status: http.StatusUnauthorized, wantCode: "unauthorized"},
		{name: "not found", status: http.StatusNotFound, wantCode: "not_found"},
		{name: "server error", status: http.StatusInternalServerError, wantCode: "internal"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var gotID string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodDelete || r.URL.Path != "/delete" {
					t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
				}
				gotID = r.URL.Query().Get("id")
				w.WriteHeader(tc.status)
			}))
			defer srv.Close()

			err := NewClient(srv.URL, "T1").Delete(context.Background(), "some-id")
			if gotID != "some-id" {
				t.Fatalf("expected id query, got %q", gotID)
			}
			if tc.wantCode == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected APIError, got %v", err)
			}
			if apiErr.Status != tc.status || apiErr.Code != tc.wantCode {
				t.Fatalf("unexpected api error %+v", apiErr)
			}
		})
	}
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = io.WriteString(w, "ok")
	}))
	defer srv.Close()

	if err := NewClient(srv.URL, "").Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}
