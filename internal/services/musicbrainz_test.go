package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/thomas-fazzari/ciderfy/internal/shared"
)

func TestMusicBrainzResolveISRC(t *testing.T) {
	t.Run("Best Scored Recording Wins", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, "/recording") {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if ua := r.Header.Get("User-Agent"); !strings.Contains(ua, "ciderfy") {
				t.Errorf("User-Agent = %q, want identifying agent", ua)
			}

			query := r.URL.Query().Get("query")
			if !strings.Contains(query, `recording:"Fortunate Son"`) || !strings.Contains(query, `artist:"CCR"`) {
				t.Errorf("query = %q", query)
			}

			json.NewEncoder(w).Encode(map[string]any{
				"recordings": []any{
					map[string]any{"score": 100, "isrcs": []string{"usfi16900604"}},
					map[string]any{"score": 85, "isrcs": []string{"USXXX0000000"}},
				},
			})
		}))
		defer server.Close()

		svc := NewMusicBrainzService(server.URL, time.Millisecond)
		code, err := svc.ResolveISRC(context.Background(), "Fortunate Son", "CCR")
		if err != nil {
			t.Fatalf("ResolveISRC() returned error: %v", err)
		}
		if code != "USFI16900604" {
			t.Errorf("code = %q, want uppercased USFI16900604", code)
		}
	})

	t.Run("Low Scores Rejected", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"recordings": []any{
					map[string]any{"score": 80, "isrcs": []string{"USAAA0000001"}},
					map[string]any{"score": 40, "isrcs": []string{"USBBB0000001"}},
				},
			})
		}))
		defer server.Close()

		svc := NewMusicBrainzService(server.URL, time.Millisecond)
		code, err := svc.ResolveISRC(context.Background(), "Obscure", "Nobody")
		if err != nil {
			t.Fatalf("ResolveISRC() returned error: %v", err)
		}
		if code != "" {
			t.Errorf("code = %q, want empty for low-score recordings", code)
		}
	})

	t.Run("Recording Without Codes Skipped", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"recordings": []any{
					map[string]any{"score": 100, "isrcs": []string{}},
					map[string]any{"score": 95, "isrcs": []string{"GBUM71029604"}},
				},
			})
		}))
		defer server.Close()

		svc := NewMusicBrainzService(server.URL, time.Millisecond)
		code, err := svc.ResolveISRC(context.Background(), "Song", "Artist")
		if err != nil {
			t.Fatalf("ResolveISRC() returned error: %v", err)
		}
		if code != "GBUM71029604" {
			t.Errorf("code = %q, want fallback to next scored recording", code)
		}
	})

	t.Run("Service Unavailable Is Rate Limited", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		svc := NewMusicBrainzService(server.URL, time.Millisecond)
		_, err := svc.ResolveISRC(context.Background(), "Song", "Artist")
		if !errors.Is(err, shared.ErrRateLimited) {
			t.Errorf("ResolveISRC() = %v, want ErrRateLimited", err)
		}
	})

	t.Run("Cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		svc := NewMusicBrainzService("http://invalid", time.Millisecond)
		_, err := svc.ResolveISRC(ctx, "Song", "Artist")
		if !errors.Is(err, context.Canceled) {
			t.Errorf("ResolveISRC() = %v, want context.Canceled", err)
		}
	})
}

func TestEscapeLucene(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Fortunate Son", "Fortunate Son"},
		{`What's Up?`, `What's Up\?`},
		{`AC/DC`, `AC\/DC`},
		{`Help! (Live)`, `Help\! \(Live\)`},
		{`a:b`, `a\:b`},
	}

	for _, tt := range tests {
		if got := escapeLucene(tt.in); got != tt.want {
			t.Errorf("escapeLucene(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
