// Kuchikomi - Socially Weighted Venue Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kuchikomi

package geocode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/kuchikomi/internal/config"
)

const shibuyaResponse = `{
  "status": "OK",
  "results": [{
    "formatted_address": "Shibuya City, Tokyo, Japan",
    "types": ["locality", "political"],
    "geometry": {
      "location": {"lat": 35.6640, "lng": 139.6982},
      "viewport": {
        "northeast": {"lat": 35.6930, "lng": 139.7240},
        "southwest": {"lat": 35.6390, "lng": 139.6610}
      }
    }
  }]
}`

func testConfig(baseURL string) *config.GeocodeConfig {
	return &config.GeocodeConfig{
		Enabled:           true,
		APIKey:            "test-key",
		BaseURL:           baseURL,
		Language:          "ja",
		Region:            "jp",
		Timeout:           2 * time.Second,
		CacheSize:         16,
		RequestsPerSecond: 0,
		Burst:             1,
		Breaker: config.BreakerConfig{
			MaxRequests:  1,
			Interval:     time.Minute,
			Timeout:      time.Hour,
			MinRequests:  2,
			FailureRatio: 1.0,
		},
	}
}

func TestGoogleClient_Geocode(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("address")
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("missing api key in request")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(shibuyaResponse))
	}))
	defer server.Close()

	client := NewGoogleClient(testConfig(server.URL))
	result, err := client.Geocode(context.Background(), "渋谷")
	if err != nil {
		t.Fatalf("Geocode() error = %v", err)
	}

	if gotQuery != "渋谷" {
		t.Errorf("address param = %q, want %q", gotQuery, "渋谷")
	}
	if result.FormattedAddress != "Shibuya City, Tokyo, Japan" {
		t.Errorf("FormattedAddress = %q", result.FormattedAddress)
	}
	if result.Location.Lat != 35.6640 || result.Location.Lng != 139.6982 {
		t.Errorf("Location = %+v", result.Location)
	}
	if result.Viewport == nil {
		t.Fatal("Viewport = nil, want bounds")
	}
	if len(result.Types) != 2 || result.Types[0] != "locality" {
		t.Errorf("Types = %v", result.Types)
	}
}

func TestGoogleClient_Statuses(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"zero results", http.StatusOK, `{"status":"ZERO_RESULTS","results":[]}`, ErrNoResults},
		{"quota", http.StatusOK, `{"status":"OVER_QUERY_LIMIT","error_message":"slow down"}`, ErrQuotaExceeded},
		{"denied", http.StatusOK, `{"status":"REQUEST_DENIED","error_message":"bad key"}`, ErrRequestDenied},
		{"ok but empty", http.StatusOK, `{"status":"OK","results":[]}`, ErrNoResults},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewGoogleClient(testConfig(server.URL)).Geocode(context.Background(), "x")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Geocode() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestGoogleClient_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := NewGoogleClient(testConfig(server.URL)).Geocode(context.Background(), "x")
	if err == nil {
		t.Fatal("Geocode() error = nil, want status error")
	}
	if errors.Is(err, ErrNoResults) {
		t.Errorf("HTTP failure must not look like an empty result")
	}
}

type stubGeocoder struct {
	calls  atomic.Int32
	result *Result
	err    error
}

func (s *stubGeocoder) Geocode(ctx context.Context, text string) (*Result, error) {
	s.calls.Add(1)
	return s.result, s.err
}

func TestProvider_CachesByNormalizedText(t *testing.T) {
	upstream := &stubGeocoder{result: &Result{FormattedAddress: "Shibuya"}}
	p, err := NewProvider(upstream, testConfig("http://unused"))
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}

	for _, text := range []string{"Shibuya", "  shibuya ", "ＳＨＩＢＵＹＡ"} {
		result, err := p.Geocode(context.Background(), text)
		if err != nil {
			t.Fatalf("Geocode(%q) error = %v", text, err)
		}
		if result.FormattedAddress != "Shibuya" {
			t.Errorf("Geocode(%q) = %q", text, result.FormattedAddress)
		}
	}

	if got := upstream.calls.Load(); got != 1 {
		t.Errorf("upstream calls = %d, want 1", got)
	}
	if p.CacheLen() != 1 {
		t.Errorf("CacheLen() = %d, want 1", p.CacheLen())
	}
}

func TestProvider_NegativeCache(t *testing.T) {
	upstream := &stubGeocoder{err: ErrNoResults}
	p, err := NewProvider(upstream, testConfig("http://unused"))
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := p.Geocode(context.Background(), "nowhere"); !errors.Is(err, ErrNoResults) {
			t.Fatalf("Geocode() error = %v, want ErrNoResults", err)
		}
	}
	if got := upstream.calls.Load(); got != 1 {
		t.Errorf("upstream calls = %d, want 1", got)
	}
	if p.BreakerState() != "closed" {
		t.Errorf("BreakerState() = %s, empty results must not trip the breaker", p.BreakerState())
	}
}

func TestProvider_FailuresAreNotCached(t *testing.T) {
	upstream := &stubGeocoder{err: errors.New("connection reset")}
	p, err := NewProvider(upstream, testConfig("http://unused"))
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}

	_, _ = p.Geocode(context.Background(), "somewhere")
	_, _ = p.Geocode(context.Background(), "somewhere")
	if got := upstream.calls.Load(); got != 2 {
		t.Errorf("upstream calls = %d, want 2", got)
	}

	// MinRequests=2 with ratio 1.0 opens the breaker after two failures.
	_, err = p.Geocode(context.Background(), "somewhere")
	if err == nil {
		t.Fatal("Geocode() error = nil, want breaker rejection")
	}
	if got := upstream.calls.Load(); got != 2 {
		t.Errorf("upstream calls after open = %d, want 2", got)
	}
	if p.BreakerState() != "open" {
		t.Errorf("BreakerState() = %s, want open", p.BreakerState())
	}
}

func TestProvider_EmptyText(t *testing.T) {
	upstream := &stubGeocoder{}
	p, err := NewProvider(upstream, testConfig("http://unused"))
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}
	if _, err := p.Geocode(context.Background(), "   "); !errors.Is(err, ErrNoResults) {
		t.Errorf("Geocode(blank) error = %v, want ErrNoResults", err)
	}
	if upstream.calls.Load() != 0 {
		t.Errorf("blank text reached upstream")
	}
}

func TestDisabled(t *testing.T) {
	_, err := Disabled().Geocode(context.Background(), "Shibuya")
	if !errors.Is(err, ErrDisabled) {
		t.Errorf("Disabled() error = %v, want ErrDisabled", err)
	}
}

func TestProvider_DisabledDoesNotTrip(t *testing.T) {
	p, err := NewProvider(Disabled(), testConfig("http://unused"))
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}

	for _, text := range []string{"渋谷", "新宿", "渋谷", "池袋", "横浜"} {
		if _, err := p.Geocode(context.Background(), text); !errors.Is(err, ErrDisabled) {
			t.Fatalf("Geocode(%q) error = %v, want ErrDisabled", text, err)
		}
	}
	if p.BreakerState() != "closed" {
		t.Errorf("BreakerState() = %s, want closed", p.BreakerState())
	}
	if p.CacheLen() != 0 {
		t.Errorf("CacheLen() = %d, disabled lookups must not be cached", p.CacheLen())
	}
}
