// Package crosspost implements the social cross-post client against an
// Instagram Graph-style API.
package crosspost

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"autopress/internal/domain/entity"
	"autopress/internal/resilience/circuitbreaker"
	"autopress/internal/usecase/publish"

	"golang.org/x/time/rate"
)

// DefaultBaseURL is the production graph API endpoint.
const DefaultBaseURL = "https://graph.facebook.com/v19.0"

// Captions above this length are rejected by the API, so they are truncated
// client-side.
const maxCaptionLength = 2200

// InstagramConfig contains configuration for the cross-post integration.
type InstagramConfig struct {
	Enabled     bool
	AccessToken string
	AccountID   string
	Timeout     time.Duration
}

// Client posts published articles to Instagram. It implements
// publish.CrossPoster. Publishing is a two-step call: create a media
// container, then publish it. API-reported rejections travel in the
// result value; transport failures are returned as errors.
type Client struct {
	// BaseURL can be overridden in tests.
	BaseURL string

	config     InstagramConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *circuitbreaker.CircuitBreaker
}

// NewClient creates a cross-post client.
func NewClient(config InstagramConfig) *Client {
	return &Client{
		BaseURL: DefaultBaseURL,
		config:  config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(0.5), 2),
		breaker: circuitbreaker.New(circuitbreaker.CrossPostConfig()),
	}
}

type graphResponse struct {
	ID    string `json:"id"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// buildCaption assembles the post caption from the article's content
// fields, truncated to the API limit.
func buildCaption(article *entity.Article) string {
	parts := make([]string, 0, 3)
	if article.Title != "" {
		parts = append(parts, article.Title)
	}
	if article.Description != "" {
		parts = append(parts, article.Description)
	}
	if article.Hashtags != "" {
		parts = append(parts, article.Hashtags)
	}
	caption := strings.Join(parts, "\n\n")
	if len(caption) > maxCaptionLength {
		caption = caption[:maxCaptionLength]
	}
	return caption
}

// PostArticle posts the article. A result with Success=false and a nil
// error means the API or the article's data rejected the post; a non-nil
// error means the call itself failed.
func (c *Client) PostArticle(ctx context.Context, article *entity.Article) (publish.CrossPostResult, error) {
	if !c.config.Enabled || c.config.AccessToken == "" || c.config.AccountID == "" {
		return publish.CrossPostResult{Message: "instagram integration not configured"}, nil
	}
	if article.Image == "" {
		return publish.CrossPostResult{Message: "article has no image to post"}, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return publish.CrossPostResult{}, fmt.Errorf("rate limiter: %w", err)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.publishMedia(ctx, article)
	})
	if err != nil {
		return publish.CrossPostResult{}, err
	}
	return result.(publish.CrossPostResult), nil
}

func (c *Client) publishMedia(ctx context.Context, article *entity.Article) (publish.CrossPostResult, error) {
	container, err := c.call(ctx, fmt.Sprintf("%s/%s/media", c.BaseURL, c.config.AccountID), map[string]string{
		"image_url":    article.Image,
		"caption":      buildCaption(article),
		"access_token": c.config.AccessToken,
	})
	if err != nil {
		return publish.CrossPostResult{}, fmt.Errorf("create media container: %w", err)
	}
	if container.Error != nil {
		return publish.CrossPostResult{Message: container.Error.Message}, nil
	}

	published, err := c.call(ctx, fmt.Sprintf("%s/%s/media_publish", c.BaseURL, c.config.AccountID), map[string]string{
		"creation_id":  container.ID,
		"access_token": c.config.AccessToken,
	})
	if err != nil {
		return publish.CrossPostResult{}, fmt.Errorf("publish media container: %w", err)
	}
	if published.Error != nil {
		return publish.CrossPostResult{Message: published.Error.Message}, nil
	}

	return publish.CrossPostResult{Success: true, Message: published.ID}, nil
}

func (c *Client) call(ctx context.Context, endpoint string, params map[string]string) (*graphResponse, error) {
	jsonData, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var decoded graphResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("decode graph response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("graph API status %d: %s", resp.StatusCode, string(body))
	}
	return &decoded, nil
}
