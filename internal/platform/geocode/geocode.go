// Package geocode resolves postal addresses to coordinates with the Google
// Maps Geocoding API.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/imamik/switchyard/internal/metrics"
)

// DefaultBaseURL is the public Maps API endpoint.
const DefaultBaseURL = "https://maps.googleapis.com"

// Coordinates is a WGS84 position.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// StatusError is returned when the API answers with a status other than OK,
// e.g. ZERO_RESULTS or REQUEST_DENIED.
type StatusError struct {
	Status  string
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("geocoding failed: %s", e.Status)
	}
	return fmt.Sprintf("geocoding failed: %s: %s", e.Status, e.Message)
}

// Client looks up addresses.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a geocoding client. An empty baseURL selects DefaultBaseURL.
func NewClient(apiKey, baseURL string, timeout time.Duration) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("geocoding API key is required")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type response struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Lookup returns the coordinates of the first result for address.
func (c *Client) Lookup(ctx context.Context, address string) (Coordinates, error) {
	q := url.Values{}
	q.Set("address", address)
	q.Set("key", c.apiKey)
	endpoint := c.baseURL + "/maps/api/geocode/json?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Coordinates{}, err
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.ObserveCall("geocode", start)
	if err != nil {
		return Coordinates{}, fmt.Errorf("geocoding %q: %w", address, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Coordinates{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Coordinates{}, fmt.Errorf("geocoding API error (status %d): %s", resp.StatusCode, string(body))
	}

	var out response
	if err := json.Unmarshal(body, &out); err != nil {
		return Coordinates{}, fmt.Errorf("parse response: %w", err)
	}
	if out.Status != "OK" {
		return Coordinates{}, &StatusError{Status: out.Status, Message: out.ErrorMessage}
	}
	if len(out.Results) == 0 {
		return Coordinates{}, &StatusError{Status: "ZERO_RESULTS"}
	}

	loc := out.Results[0].Geometry.Location
	return Coordinates{Latitude: loc.Lat, Longitude: loc.Lng}, nil
}
