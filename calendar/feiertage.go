/*
Package calendar resolves public holidays from the feiertage-api.de service.

The API returns, per year and German federal state, a JSON object mapping the
holiday name to its date:

  GET {base}/api/?jahr=2023&nur_land=SN
  {"Neujahrstag":{"datum":"2023-01-01","hinweis":""}, ...}

A (region, year) calendar never changes once published, so the client caches
every successful response for the lifetime of the process. Errors are not
cached; the engine decides how to degrade when a lookup fails.
*/
package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/henrydatei/working-time-recording/engine"
)

const DefaultBaseURL = "https://feiertage-api.de"

// Client fetches and caches public-holiday calendars per (region, year).
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	cache map[cacheKey]map[engine.Date]string
}

type cacheKey struct {
	Region string
	Year   int
}

// NewClient creates a client against baseURL (DefaultBaseURL if empty).
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
		cache:   make(map[cacheKey]map[engine.Date]string),
	}
}

// Compile-time check.
var _ engine.FreeDaySource = (*Client)(nil)

// FreeDays returns the public holidays of one region and year as a
// date-to-name mapping.
func (c *Client) FreeDays(ctx context.Context, region string, year int) (map[engine.Date]string, error) {
	key := cacheKey{Region: region, Year: year}

	c.mu.RLock()
	cached, ok := c.cache[key]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	days, err := c.fetch(ctx, region, year)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.cache[key] = days
	c.mu.Unlock()
	return days, nil
}

type apiHoliday struct {
	Datum   string `json:"datum"`
	Hinweis string `json:"hinweis"`
}

func (c *Client) fetch(ctx context.Context, region string, year int) (map[engine.Date]string, error) {
	q := url.Values{}
	q.Set("jahr", fmt.Sprintf("%d", year))
	q.Set("nur_land", region)
	endpoint := fmt.Sprintf("%s/api/?%s", c.baseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching holidays for %s/%d: %w", region, year, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching holidays for %s/%d: unexpected status %d", region, year, resp.StatusCode)
	}

	var payload map[string]apiHoliday
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding holidays for %s/%d: %w", region, year, err)
	}

	days := make(map[engine.Date]string, len(payload))
	for name, h := range payload {
		d, err := engine.ParseDate(h.Datum)
		if err != nil {
			return nil, fmt.Errorf("holiday %q: %w", name, err)
		}
		days[d] = name
	}
	return days, nil
}
