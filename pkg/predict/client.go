package predict

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/iequus/iequus_backend/config"
)

var ErrUnavailable = errors.New("prediction service unavailable")

// Scorer is what the measure service needs from the scoring backend.
type Scorer interface {
	Predict(ctx context.Context, v Vector) (float64, error)
	Health(ctx context.Context) error
}

type predictRequest struct {
	Features []float64 `json:"features"`
}

type predictResponse struct {
	BodyScore *float64 `json:"body_score"`
}

type Client struct {
	http *resty.Client
}

func NewClient(cfg config.PredictionConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	rc := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Accept", "application/json")

	return &Client{http: rc}
}

// Predict posts the feature vector and returns the body condition score.
func (c *Client) Predict(ctx context.Context, v Vector) (float64, error) {
	var out predictResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(predictRequest{Features: v.Slice()}).
		SetResult(&out).
		Post("/predict")
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return 0, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode())
	}
	if out.BodyScore == nil {
		return 0, fmt.Errorf("%w: response without body_score", ErrUnavailable)
	}
	return *out.BodyScore, nil
}

// Health expects GET /health to answer 200 with body "OK".
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	resp, err := c.http.R().SetContext(ctx).Get("/health")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp.StatusCode() != http.StatusOK || strings.TrimSpace(resp.String()) != "OK" {
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode())
	}
	return nil
}
