package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"finops-console/internal/manifest"
)

const dayFormat = "2006-01-02"

// Options parameterise the cost-service client.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	APIToken  string
}

// Client talks to the remote cost/policy service.
type Client struct {
	opts    Options
	logger  zerolog.Logger
	client  *http.Client
	baseURL string
}

// NewClient constructs a cost-service client.
func NewClient(opts Options, logger zerolog.Logger) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		opts:    opts,
		logger:  logger.With().Str("component", "telemetry_client").Logger(),
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
	}
}

// FetchSeries retrieves daily usage telemetry for the window.
func (c *Client) FetchSeries(ctx context.Context, q SeriesQuery) ([]DayUsage, error) {
	query := windowQuery(q)

	var days []DayUsage
	if err := c.getJSON(ctx, "/v1/usage/daily", query, &days); err != nil {
		return nil, fmt.Errorf("fetch usage series: %w", err)
	}
	return days, nil
}

// FetchBreakdown retrieves the provider x route x lane cost breakdown.
func (c *Client) FetchBreakdown(ctx context.Context, q SeriesQuery) ([]RouteUsage, error) {
	query := windowQuery(q)

	var rows []RouteUsage
	if err := c.getJSON(ctx, "/v1/usage/routes", query, &rows); err != nil {
		return nil, fmt.Errorf("fetch route breakdown: %w", err)
	}
	return rows, nil
}

// FetchManifest retrieves the current policy manifest snapshot.
func (c *Client) FetchManifest(ctx context.Context, policyID string) (*manifest.Snapshot, error) {
	if policyID == "" {
		return nil, errors.New("policy id required")
	}

	var snapshot manifest.Snapshot
	path := "/v1/policies/" + url.PathEscape(policyID) + "/manifest"
	if err := c.getJSON(ctx, path, nil, &snapshot); err != nil {
		return nil, fmt.Errorf("fetch manifest: %w", err)
	}
	return &snapshot, nil
}

// RequestPlan asks the remote service for a structured plan of the change.
func (c *Client) RequestPlan(ctx context.Context, req PlanRequest) (*PlanResponse, error) {
	if req.PolicyID == "" {
		return nil, errors.New("policy id required")
	}

	var res PlanResponse
	if err := c.postJSON(ctx, "/v1/policies/plan", req, &res); err != nil {
		return nil, fmt.Errorf("request plan: %w", err)
	}
	return &res, nil
}

// SubmitApply submits a confirmed plan for application.
func (c *Client) SubmitApply(ctx context.Context, req ApplyRequest) (*ApplyResponse, error) {
	if req.PlanID == "" {
		return nil, errors.New("plan id required")
	}

	var res ApplyResponse
	if err := c.postJSON(ctx, "/v1/policies/apply", req, &res); err != nil {
		return nil, fmt.Errorf("submit apply: %w", err)
	}
	return &res, nil
}

// ParseDay parses a wire day value.
func ParseDay(v string) (time.Time, error) {
	day, err := time.Parse(dayFormat, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse day %q: %w", v, err)
	}
	return day, nil
}

func windowQuery(q SeriesQuery) url.Values {
	query := url.Values{}
	query.Set("start", q.Start.Format(dayFormat))
	query.Set("end", q.End.Format(dayFormat))
	if q.ProviderID != "" {
		query.Set("provider_id", q.ProviderID)
	}
	return query
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) postJSON(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, nil, payload, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body []byte, out any) error {
	if c.baseURL == "" {
		return errors.New("service base url not configured")
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if ua := strings.TrimSpace(c.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	}
	if c.opts.APIToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.opts.APIToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseHTTPError(resp.StatusCode, payload)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

type errorResponse struct {
	ErrorType   string `json:"errorType"`
	Description string `json:"description"`
	Message     string `json:"message"`
}

func parseHTTPError(status int, payload []byte) error {
	var apiErr errorResponse
	if err := json.Unmarshal(payload, &apiErr); err == nil {
		if apiErr.Description != "" {
			return fmt.Errorf("cost service error (%d): %s", status, apiErr.Description)
		}
		if apiErr.Message != "" {
			return fmt.Errorf("cost service error (%d): %s", status, apiErr.Message)
		}
		if apiErr.ErrorType != "" {
			return fmt.Errorf("cost service error (%d): %s", status, apiErr.ErrorType)
		}
	}
	if len(payload) > 0 {
		return fmt.Errorf("cost service error (%d): %s", status, strings.TrimSpace(string(payload)))
	}
	return fmt.Errorf("cost service error (%d)", status)
}
