// Package mirror implements the tabular content mirror client against an
// Airtable-style records API.
package mirror

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"autopress/internal/resilience/circuitbreaker"
	"autopress/internal/usecase/publish"

	"golang.org/x/time/rate"
)

// DefaultBaseURL is the production records API endpoint.
const DefaultBaseURL = "https://api.airtable.com/v0"

// Client creates records in the mirror. It implements
// publish.MirrorClient. Calls are rate-limited (the API allows 5 requests
// per second per base) and go through a circuit breaker; there is no retry,
// an unmirrored article is picked up again on the next cycle.
type Client struct {
	// BaseURL can be overridden in tests.
	BaseURL string

	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *circuitbreaker.CircuitBreaker
}

// NewClient creates a mirror client with the given HTTP timeout.
func NewClient(timeout time.Duration) *Client {
	return &Client{
		BaseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(5), 5),
		breaker: circuitbreaker.New(circuitbreaker.MirrorConfig()),
	}
}

type recordFields struct {
	Name        string `json:"Name"`
	Description string `json:"Description"`
	Body        string `json:"Body"`
	Featured    bool   `json:"Featured"`
	Finished    bool   `json:"Finished"`
	Hashtags    string `json:"Hashtags"`
	Scheduled   string `json:"Scheduled"`
	Date        string `json:"Date"`
}

type recordEnvelope struct {
	Fields recordFields `json:"fields"`
}

type createRecordsRequest struct {
	Records []recordEnvelope `json:"records"`
}

type createRecordsResponse struct {
	Records []struct {
		ID string `json:"id"`
	} `json:"records"`
}

// CreateRecord creates one record and returns its identifier.
func (c *Client) CreateRecord(ctx context.Context, cfg publish.MirrorConfig, record publish.MirrorRecord) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.createRecord(ctx, cfg, record)
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

func (c *Client) createRecord(ctx context.Context, cfg publish.MirrorConfig, record publish.MirrorRecord) (string, error) {
	payload := createRecordsRequest{
		Records: []recordEnvelope{{
			Fields: recordFields{
				Name:        record.Name,
				Description: record.Description,
				Body:        record.Body,
				Featured:    record.Featured,
				Finished:    record.Finished,
				Hashtags:    record.Hashtags,
				Scheduled:   record.Scheduled,
				Date:        record.Date,
			},
		}},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal create-records payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/%s",
		c.BaseURL, url.PathEscape(cfg.BaseID), url.PathEscape(cfg.Table))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("create http request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("mirror API status %d: %s", resp.StatusCode, string(body))
	}

	var created createRecordsResponse
	if err := json.Unmarshal(body, &created); err != nil {
		return "", fmt.Errorf("decode create-records response: %w", err)
	}
	if len(created.Records) == 0 || created.Records[0].ID == "" {
		return "", fmt.Errorf("create-records response carried no record id")
	}
	return created.Records[0].ID, nil
}
