// Kuchikomi - Socially Weighted Venue Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kuchikomi

package oracle

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	genai "google.golang.org/genai"

	"github.com/tomtom215/kuchikomi/internal/config"
	"github.com/tomtom215/kuchikomi/internal/models"
)

type fakeGenerator struct {
	raw    string
	err    error
	prompt string
	input  any
	calls  int
}

func (f *fakeGenerator) GenerateJSON(ctx context.Context, prompt string, input any) ([]byte, error) {
	f.calls++
	f.prompt = prompt
	f.input = input
	if f.err != nil {
		return nil, f.err
	}
	return []byte(f.raw), nil
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func testPool() []models.PoolItem {
	return []models.PoolItem{
		{Venue: models.Venue{PlaceID: "p1", Name: "麺屋一", Address: "渋谷1-1"}, DistanceKm: floatPtr(0.84)},
		{Venue: models.Venue{PlaceID: "p2", Name: "鮨二", Address: "渋谷2-2"}, DistanceKm: floatPtr(1.26), SocialScore: 0.9, ClosestK: intPtr(1)},
		{Venue: models.Venue{PlaceID: "p3", Name: "焼肉三", Address: "渋谷3-3"}, DistanceKm: floatPtr(0.12)},
	}
}

func pickIDs(picks []models.PickedResult) []string {
	out := make([]string, len(picks))
	for i := range picks {
		out[i] = picks[i].PlaceID
	}
	return out
}

func TestParseRanking_Valid(t *testing.T) {
	raw := `{
	  "understood": {"summary": "ramen near Shibuya", "extracted_tags": ["ラーメン"]},
	  "assistant_message": "Here are some picks.",
	  "results": [
	    {"place_id": "p2", "headline": "H2", "subline": "S2", "reason": "R2", "match_score": 88},
	    {"place_id": "p1", "headline": "H1", "subline": "S1", "reason": "R1", "match_score": 70.6}
	  ]
	}`

	res := ParseRanking([]byte(raw), testPool(), 4)
	if !res.OK() {
		t.Fatalf("ParseRanking() error = %v", res.Err)
	}
	r := res.Ranking
	if r.Understood.Summary != "ramen near Shibuya" || len(r.Understood.ExtractedTags) != 1 {
		t.Errorf("Understood = %+v", r.Understood)
	}
	if r.AssistantMessage == nil || *r.AssistantMessage != "Here are some picks." {
		t.Errorf("AssistantMessage = %v", r.AssistantMessage)
	}
	if got := pickIDs(r.Results); strings.Join(got, ",") != "p2,p1" {
		t.Errorf("Results = %v, want [p2 p1]", got)
	}
	if r.Results[1].MatchScore != 71 {
		t.Errorf("MatchScore = %d, want 71", r.Results[1].MatchScore)
	}
}

func TestParseRanking_MembershipAndBounds(t *testing.T) {
	raw := `{"results": [
	  {"place_id": "fabricated", "headline": "x", "match_score": 99},
	  {"place_id": "p1", "match_score": 140},
	  {"place_id": "p1", "match_score": 50},
	  {"place_id": "p3", "match_score": -5},
	  {"headline": "no id", "match_score": 50},
	  {"place_id": "p2", "match_score": 60}
	]}`

	res := ParseRanking([]byte(raw), testPool(), 2)
	if !res.OK() {
		t.Fatalf("ParseRanking() error = %v", res.Err)
	}
	got := res.Ranking.Results
	if strings.Join(pickIDs(got), ",") != "p1,p3" {
		t.Fatalf("Results = %v, want [p1 p3]", pickIDs(got))
	}
	if got[0].MatchScore != 100 || got[1].MatchScore != 0 {
		t.Errorf("scores = %d,%d, want clamped 100,0", got[0].MatchScore, got[1].MatchScore)
	}
	if got[0].Headline != "麺屋一" || got[0].Subline != "渋谷1-1" {
		t.Errorf("missing headline/subline should default to name/address, got %+v", got[0])
	}
	if res.Ranking.Dropped != 2 {
		t.Errorf("Dropped = %d, want 2", res.Ranking.Dropped)
	}
}

func TestParseRanking_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"prose", "Sure! Here are your results: {\"results\": []}"},
		{"array", `[{"place_id": "p1"}]`},
		{"truncated", `{"results": [{"place_id": "p1"`},
		{"missing results", `{"understood": {"summary": "x"}}`},
		{"wrong type", `{"results": "p1"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ParseRanking([]byte(tt.raw), testPool(), 4)
			if res.OK() {
				t.Fatalf("ParseRanking() OK, want ParseError")
			}
			if res.Ranking != nil {
				t.Errorf("Ranking should be nil on error")
			}
			if !errors.Is(res.Err, ErrInvalidResponse) {
				t.Errorf("errors.Is(err, ErrInvalidResponse) = false for %v", res.Err)
			}
		})
	}
}

func TestParseRanking_EmptyResultsIsValid(t *testing.T) {
	res := ParseRanking([]byte(`{"results": []}`), testPool(), 4)
	if !res.OK() || len(res.Ranking.Results) != 0 {
		t.Errorf("ParseRanking(empty results) = %+v", res)
	}
}

func TestFallback(t *testing.T) {
	picks := Fallback(testPool(), 2)
	if strings.Join(pickIDs(picks), ",") != "p3,p1" {
		t.Fatalf("Fallback() = %v, want nearest [p3 p1]", pickIDs(picks))
	}
	for _, p := range picks {
		if p.MatchScore != FallbackScore || p.Reason != FallbackReason {
			t.Errorf("pick %+v does not carry fallback score/reason", p)
		}
	}
	if picks[0].Headline != "焼肉三" || picks[0].Subline != "渋谷3-3" {
		t.Errorf("headline/subline = %q/%q", picks[0].Headline, picks[0].Subline)
	}

	if got := Fallback(testPool(), 10); len(got) != 3 {
		t.Errorf("len(Fallback(pool, 10)) = %d, want 3", len(got))
	}
	if got := Fallback(nil, 4); got == nil || len(got) != 0 {
		t.Errorf("Fallback(nil) = %v, want empty", got)
	}
}

func TestFallback_NoCenterKeepsPoolOrder(t *testing.T) {
	pool := testPool()
	for i := range pool {
		pool[i].DistanceKm = nil
	}
	if got := pickIDs(Fallback(pool, 3)); strings.Join(got, ",") != "p1,p2,p3" {
		t.Errorf("Fallback() = %v, want pool order", got)
	}
}

func TestAdapter_RankPayload(t *testing.T) {
	gen := &fakeGenerator{raw: `{"results": [{"place_id": "p1", "match_score": 80}]}`}
	a := NewAdapter(gen, 5)

	pool := testPool()
	pool[0].DistanceKm = nil
	_, err := a.Rank(context.Background(), RankRequest{
		Query:      "渋谷 ラーメン",
		MaxResults: 3,
		Genres:     []string{"ラーメン"},
		Pool:       pool,
		History: []models.Turn{
			{Role: models.RoleUser, Content: "ラーメンが食べたいです"},
			{Role: models.RoleAssistant, Content: "   "},
		},
	})
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	if gen.prompt != rankingPrompt {
		t.Errorf("Rank() did not send the ranking prompt")
	}

	payload, ok := gen.input.(rankPayload)
	if !ok {
		t.Fatalf("input type = %T, want rankPayload", gen.input)
	}
	if payload.Location != nil {
		t.Errorf("Location = %q, want nil without label", *payload.Location)
	}
	if payload.Candidates[0].DistanceKm != nil {
		t.Errorf("candidate without distance should send null")
	}
	if d := payload.Candidates[1].DistanceKm; d == nil || *d != 1.3 {
		t.Errorf("distance_km = %v, want 1.3", d)
	}
	if len(payload.History) != 1 || payload.History[0].Content != "ラーメンが" {
		t.Errorf("History = %+v, want one turn cut to 5 runes", payload.History)
	}
}

func TestAdapter_RankErrors(t *testing.T) {
	t.Run("generator failure", func(t *testing.T) {
		a := NewAdapter(&fakeGenerator{err: context.DeadlineExceeded}, 0)
		_, err := a.Rank(context.Background(), RankRequest{Pool: testPool(), MaxResults: 2})
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("Rank() error = %v, want deadline exceeded", err)
		}
	})

	t.Run("parse failure", func(t *testing.T) {
		a := NewAdapter(&fakeGenerator{raw: "not json"}, 0)
		_, err := a.Rank(context.Background(), RankRequest{Pool: testPool(), MaxResults: 2})
		var parseErr *ParseError
		if !errors.As(err, &parseErr) {
			t.Errorf("Rank() error = %v, want *ParseError", err)
		}
	})
}

func TestAdapter_InferPlace(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"place", `{"place": "渋谷駅"}`, "渋谷駅", false},
		{"null", `{"place": null}`, "", false},
		{"blank", `{"place": "  "}`, "", false},
		{"garbage", `渋谷`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAdapter(&fakeGenerator{raw: tt.raw}, 0)
			got, err := a.InferPlace(context.Background(), "渋谷でイタリアン")
			if (err != nil) != tt.wantErr {
				t.Fatalf("InferPlace() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("InferPlace() = %q, want %q", got, tt.want)
			}
		})
	}
}

type blockingGenerator struct{}

func (blockingGenerator) GenerateJSON(ctx context.Context, _ string, _ any) ([]byte, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func testOracleConfig() *config.OracleConfig {
	return &config.OracleConfig{
		Enabled: true,
		Timeout: 20 * time.Millisecond,
		Burst:   1,
		Breaker: config.BreakerConfig{
			MaxRequests:  1,
			Interval:     time.Minute,
			Timeout:      time.Hour,
			MinRequests:  2,
			FailureRatio: 1.0,
		},
	}
}

func TestClient_Timeout(t *testing.T) {
	c := NewClient(blockingGenerator{}, testOracleConfig())

	_, err := c.GenerateJSON(context.Background(), "p", nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("GenerateJSON() error = %v, want deadline exceeded", err)
	}
}

func TestClient_ParseErrorsDoNotTrip(t *testing.T) {
	gen := &fakeGenerator{err: &ParseError{Reason: "empty candidate list"}}
	c := NewClient(gen, testOracleConfig())

	for i := 0; i < 4; i++ {
		_, _ = c.GenerateJSON(context.Background(), "p", nil)
	}
	if c.BreakerState() != "closed" {
		t.Errorf("BreakerState() = %s, want closed", c.BreakerState())
	}
	if gen.calls != 4 {
		t.Errorf("calls = %d, want 4", gen.calls)
	}
}

func TestClient_TransportErrorsTrip(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("503 unavailable")}
	c := NewClient(gen, testOracleConfig())

	for i := 0; i < 3; i++ {
		_, _ = c.GenerateJSON(context.Background(), "p", nil)
	}
	if c.BreakerState() != "open" {
		t.Errorf("BreakerState() = %s, want open", c.BreakerState())
	}
	if gen.calls != 2 {
		t.Errorf("calls = %d, want 2 before the breaker opened", gen.calls)
	}
}

func TestDisabled(t *testing.T) {
	_, err := Disabled().GenerateJSON(context.Background(), "p", nil)
	if !errors.Is(err, ErrDisabled) {
		t.Errorf("Disabled() error = %v, want ErrDisabled", err)
	}
}

func TestClient_DisabledDoesNotTrip(t *testing.T) {
	c := NewClient(Disabled(), testOracleConfig())

	for i := 0; i < 5; i++ {
		if _, err := c.GenerateJSON(context.Background(), "p", nil); !errors.Is(err, ErrDisabled) {
			t.Fatalf("call %d error = %v, want ErrDisabled", i, err)
		}
	}
	if c.BreakerState() != "closed" {
		t.Errorf("BreakerState() = %s, want closed", c.BreakerState())
	}
}

func TestResponseText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		parts   []*genai.Part
		want    string
		wantErr bool
	}{
		{
			name:  "single part",
			parts: []*genai.Part{{Text: `{"picks":[]}`}},
			want:  `{"picks":[]}`,
		},
		{
			name:  "thought part skipped",
			parts: []*genai.Part{{Text: "considering", Thought: true}, {Text: `{"picks":[]}`}},
			want:  `{"picks":[]}`,
		},
		{
			name:  "split across parts",
			parts: []*genai.Part{{Text: `{"picks":`}, {Text: `[]}`}},
			want:  `{"picks":[]}`,
		},
		{name: "no parts", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			resp := &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: tt.parts}}},
			}
			got, err := responseText(resp)
			if tt.wantErr {
				var parseErr *ParseError
				if !errors.As(err, &parseErr) {
					t.Fatalf("responseText() error = %v, want *ParseError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("responseText() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("responseText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResponseText_NoCandidates(t *testing.T) {
	t.Parallel()
	if _, err := responseText(&genai.GenerateContentResponse{}); err == nil {
		t.Error("responseText() error = nil for empty response")
	}
}
