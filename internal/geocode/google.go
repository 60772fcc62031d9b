// Kuchikomi - Socially Weighted Venue Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kuchikomi

package geocode

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/goccy/go-json"

	"github.com/tomtom215/kuchikomi/internal/config"
	"github.com/tomtom215/kuchikomi/internal/geo"
)

// GoogleClient queries the Google Geocoding REST API.
type GoogleClient struct {
	client   *http.Client
	apiKey   string
	baseURL  string
	language string
	region   string
}

type googleLatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type googleResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		FormattedAddress string   `json:"formatted_address"`
		Types            []string `json:"types"`
		Geometry         struct {
			Location googleLatLng `json:"location"`
			Viewport *struct {
				NorthEast googleLatLng `json:"northeast"`
				SouthWest googleLatLng `json:"southwest"`
			} `json:"viewport"`
		} `json:"geometry"`
	} `json:"results"`
}

// NewGoogleClient creates a geocoding client. The HTTP timeout bounds a
// single upstream call; callers may pass a shorter context deadline.
func NewGoogleClient(cfg *config.GeocodeConfig) *GoogleClient {
	return &GoogleClient{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		apiKey:   cfg.APIKey,
		baseURL:  cfg.BaseURL,
		language: cfg.Language,
		region:   cfg.Region,
	}
}

// Name returns the provider name for logging and metrics.
func (c *GoogleClient) Name() string {
	return "google-geocoding"
}

// Geocode resolves text to the first geocoding result.
// Returns ErrNoResults when the service finds nothing.
func (c *GoogleClient) Geocode(ctx context.Context, text string) (*Result, error) {
	params := url.Values{}
	params.Set("address", text)
	params.Set("key", c.apiKey)
	if c.language != "" {
		params.Set("language", c.language)
	}
	if c.region != "" {
		params.Set("region", c.region)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query geocoder: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoder returned status %d", resp.StatusCode)
	}

	var body googleResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode geocoder response: %w", err)
	}

	if err := checkStatus(body.Status, body.ErrorMessage); err != nil {
		return nil, err
	}
	if len(body.Results) == 0 {
		return nil, ErrNoResults
	}

	first := body.Results[0]
	result := &Result{
		FormattedAddress: first.FormattedAddress,
		Location:         geo.Point{Lat: first.Geometry.Location.Lat, Lng: first.Geometry.Location.Lng},
		Types:            first.Types,
	}
	if vp := first.Geometry.Viewport; vp != nil {
		result.Viewport = &geo.Viewport{
			NorthEast: geo.Point{Lat: vp.NorthEast.Lat, Lng: vp.NorthEast.Lng},
			SouthWest: geo.Point{Lat: vp.SouthWest.Lat, Lng: vp.SouthWest.Lng},
		}
	}
	if !result.Location.Valid() {
		return nil, fmt.Errorf("geocoder returned invalid coordinates %v", result.Location)
	}
	return result, nil
}

func checkStatus(status, message string) error {
	switch status {
	case "OK":
		return nil
	case "ZERO_RESULTS":
		return ErrNoResults
	case "OVER_QUERY_LIMIT", "OVER_DAILY_LIMIT":
		return fmt.Errorf("%w: %s", ErrQuotaExceeded, message)
	case "REQUEST_DENIED":
		return fmt.Errorf("%w: %s", ErrRequestDenied, message)
	default:
		return fmt.Errorf("geocoder status %s: %s", status, message)
	}
}
