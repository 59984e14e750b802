package sunset

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"smart_hub/internal/timeofday"
)

const (
	DefaultAPIURL  = "https://api.sunrisesunset.io/json"
	DefaultTimeout = 5 * time.Second

	// sunrisesunset.io reports local times like "6:12:34 PM".
	apiTimeLayout = "3:04:05 PM"
	apiStatusOK   = "OK"
)

type apiResponse struct {
	Results struct {
		Sunset string `json:"sunset"`
	} `json:"results"`
	Status string `json:"status"`
}

// APIResolver queries the sunrisesunset.io JSON API.
type APIResolver struct {
	baseURL string
	loc     Location
	client  *http.Client
	timeout time.Duration
	retries int
}

// APIOption customizes an APIResolver.
type APIOption func(*APIResolver)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) APIOption {
	return func(r *APIResolver) { r.client = c }
}

// WithTimeout bounds each attempt.
func WithTimeout(d time.Duration) APIOption {
	return func(r *APIResolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithRetries sets how many extra attempts follow a failed call.
func WithRetries(n int) APIOption {
	return func(r *APIResolver) {
		if n >= 0 {
			r.retries = n
		}
	}
}

// NewAPIResolver builds a resolver for baseURL (DefaultAPIURL when empty).
// Defaults: 5s per attempt and a single retry.
func NewAPIResolver(baseURL string, loc Location, opts ...APIOption) *APIResolver {
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}
	r := &APIResolver{
		baseURL: baseURL,
		loc:     loc,
		client:  http.DefaultClient,
		timeout: DefaultTimeout,
		retries: 1,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Sunset calls the API, retrying once on failure.
func (r *APIResolver) Sunset(ctx context.Context) (timeofday.Clock, error) {
	var lastErr error
	for attempt := 0; attempt <= r.retries; attempt++ {
		c, err := r.fetch(ctx)
		if err == nil {
			return c, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return 0, lastErr
}

func (r *APIResolver) requestURL() (string, error) {
	u, err := url.Parse(r.baseURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("lat", strconv.FormatFloat(r.loc.Latitude, 'f', -1, 64))
	q.Set("lng", strconv.FormatFloat(r.loc.Longitude, 'f', -1, 64))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (r *APIResolver) fetch(ctx context.Context) (timeofday.Clock, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	target, err := r.requestURL()
	if err != nil {
		return 0, unavailable("bad api url %q: %v", r.baseURL, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, unavailable("build request: %v", err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return 0, unavailable("request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, unavailable("unexpected status %d", resp.StatusCode)
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, unavailable("decode response: %v", err)
	}
	if body.Status != "" && body.Status != apiStatusOK {
		return 0, unavailable("api status %q", body.Status)
	}
	return parseAPITime(body.Results.Sunset)
}

func parseAPITime(s string) (timeofday.Clock, error) {
	if s == "" {
		return 0, unavailable("response has no sunset field")
	}
	t, err := time.Parse(apiTimeLayout, s)
	if err != nil {
		return 0, unavailable("sunset %q is not h:mm:ss AM/PM", s)
	}
	return timeofday.FromTime(t), nil
}
