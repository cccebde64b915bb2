// Package fdc is a small client for the USDA FoodData Central API. It finds
// the top-ranked food for a name and returns its per-100g nutrient rows.
package fdc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"lg/plate-nutrition-api/nutrition"
)

// Default configuration values. DEMO_KEY works without signing up but is
// limited to a few requests per hour per IP.
const (
	DefaultBaseURL = "https://api.nal.usda.gov/fdc/v1"
	DefaultAPIKey  = "DEMO_KEY"
	DefaultTimeout = 10 * time.Second
	// FDC allows 1000 requests per hour per key.
	DefaultRequestsPerSecond = 1000.0 / 3600
	DefaultBurst             = 5
	// DEMO_KEY allows 30 requests per hour per IP.
	DemoKeyRequestsPerSecond = 30.0 / 3600
	// One lookup is a search plus a details call.
	DemoKeyBurst   = 2
	searchPageSize = 5
)

// Config holds client settings. Zero values pick the defaults.
type Config struct {
	APIKey            string
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// Client implements nutrition.Lookup against FoodData Central.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	limiter    *rate.Limiter
}

var _ nutrition.Lookup = (*Client)(nil)

// NewClient builds a Client from cfg.
func NewClient(cfg Config) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = DefaultAPIKey
	}
	if cfg.APIKey == DefaultAPIKey {
		log.Printf("[fdc] using %s; most lookups will wait on the rate limit or fall back to the model", DefaultAPIKey)
		if cfg.RequestsPerSecond <= 0 {
			cfg.RequestsPerSecond = DemoKeyRequestsPerSecond
		}
		if cfg.Burst <= 0 {
			cfg.Burst = DemoKeyBurst
		}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if cfg.Burst <= 0 {
		cfg.Burst = DefaultBurst
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
	}
}

/* ─── Wire types ─────────────────────────────────────────────────────── */

// searchResponse is the /foods/search shape. Hits carry abridged nutrients.
type searchResponse struct {
	Foods []searchFood `json:"foods"`
}

type searchFood struct {
	FdcID         int    `json:"fdcId"`
	Description   string `json:"description"`
	DataType      string `json:"dataType"`
	FoodNutrients []struct {
		NutrientID   int      `json:"nutrientId"`
		NutrientName string   `json:"nutrientName"`
		UnitName     string   `json:"unitName"`
		Value        *float64 `json:"value"`
	} `json:"foodNutrients"`
}

// foodDetails is the /food/{fdcId} shape.
type foodDetails struct {
	FdcID         int    `json:"fdcId"`
	Description   string `json:"description"`
	FoodNutrients []struct {
		Nutrient struct {
			ID       int    `json:"id"`
			Name     string `json:"name"`
			UnitName string `json:"unitName"`
		} `json:"nutrient"`
		Amount *float64 `json:"amount"`
	} `json:"foodNutrients"`
}

func (f searchFood) record() *nutrition.Record {
	rec := &nutrition.Record{FdcID: f.FdcID, Description: f.Description}
	for _, n := range f.FoodNutrients {
		rec.Nutrients = append(rec.Nutrients, nutrition.NutrientEntry{
			ID: n.NutrientID, Name: n.NutrientName, UnitName: n.UnitName, Amount: n.Value,
		})
	}
	return rec
}

func (d foodDetails) record() *nutrition.Record {
	rec := &nutrition.Record{FdcID: d.FdcID, Description: d.Description}
	for _, n := range d.FoodNutrients {
		rec.Nutrients = append(rec.Nutrients, nutrition.NutrientEntry{
			ID: n.Nutrient.ID, Name: n.Nutrient.Name, UnitName: n.Nutrient.UnitName, Amount: n.Amount,
		})
	}
	return rec
}

/* ─── Lookup ─────────────────────────────────────────────────────────── */

// LookupFood searches for name and returns the top hit's full nutrient list.
// When the details call fails the hit's abridged nutrients are used instead.
// Returns (nil, nil) when the search has no hits.
func (c *Client) LookupFood(ctx context.Context, name string) (*nutrition.Record, error) {
	hit, err := c.Search(ctx, name)
	if err != nil {
		return nil, err
	}
	if hit == nil {
		return nil, nil
	}
	details, err := c.Food(ctx, hit.FdcID)
	if err != nil {
		log.Printf("[fdc] details for %d failed, using search hit: %v", hit.FdcID, err)
		return hit, nil
	}
	return details, nil
}

// Search returns the first (most relevant) Foundation food matching query
// with its abridged nutrient list, or nil when there are no hits.
func (c *Client) Search(ctx context.Context, query string) (*nutrition.Record, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("pageSize", strconv.Itoa(searchPageSize))
	params.Set("dataType", "Foundation")
	params.Set("sortBy", "dataType.keyword")
	params.Set("sortOrder", "asc")

	var resp searchResponse
	if err := c.get(ctx, "/foods/search", params, &resp); err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	if len(resp.Foods) == 0 {
		return nil, nil
	}
	return resp.Foods[0].record(), nil
}

// Food fetches the full record for fdcID.
func (c *Client) Food(ctx context.Context, fdcID int) (*nutrition.Record, error) {
	var resp foodDetails
	if err := c.get(ctx, "/food/"+strconv.Itoa(fdcID), url.Values{}, &resp); err != nil {
		return nil, fmt.Errorf("food %d: %w", fdcID, err)
	}
	return resp.record(), nil
}

// get performs a rate-limited GET and decodes the JSON body into out. Every
// failure is reported as nutrition.ErrUpstreamUnavailable.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %v: %w", err, nutrition.ErrUpstreamUnavailable)
	}
	params.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %v: %w", err, nutrition.ErrUpstreamUnavailable)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %v: %w", err, nutrition.ErrUpstreamUnavailable)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fdc returned status %d: %s: %w", resp.StatusCode, truncate(body, 200), nutrition.ErrUpstreamUnavailable)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unmarshal response: %v: %w", err, nutrition.ErrUpstreamUnavailable)
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
