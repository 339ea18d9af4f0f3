package smoke

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/churn/internal/domain/model"
	"github.com/okian/churn/pkg/logger"
)

const requestIDHeader = "X-Request-ID"

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client *http.Client
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Get performs a GET request
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with JSON body
func (c *HTTPClient) Post(ctx context.Context, url, requestID string, body any) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if requestID != "" {
		req.Header.Set(requestIDHeader, requestID)
	}
	return c.client.Do(req)
}

// predict submits one form at threshold and decodes the answer.
func (c *HTTPClient) predict(ctx context.Context, url, requestID string, form model.FormInput, threshold float64) Result {
	res := Result{RequestID: requestID}

	resp, err := c.Post(ctx, url, requestID, predictRequest{FormInput: form, Threshold: threshold})
	if err != nil {
		res.Error = err.Error()
		return res
	}
	defer func() { _ = resp.Body.Close() }()

	res.StatusCode = resp.StatusCode
	if id := resp.Header.Get(requestIDHeader); id != "" {
		res.RequestID = id
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	if resp.StatusCode != StatusOK {
		res.Error = string(bytes.TrimSpace(body))
		return res
	}

	var pred model.Prediction
	if err := json.Unmarshal(body, &pred); err != nil {
		res.Error = fmt.Sprintf("decode prediction: %v", err)
		return res
	}
	res.Prediction = &pred
	return res
}

// submitCases submits cases concurrently using a worker pool. Results keep
// the order of cases.
func submitCases(ctx context.Context, cfg *Config, cases []Case, stats *Stats) []Result {
	logger.Get().Info(ctx, "submitting cases",
		logger.Int("count", len(cases)),
		logger.Int("workers", cfg.Workers),
	)

	client := newHTTPClient(cfg.Timeout)
	url := cfg.BaseURL + "/predict"
	results := make([]Result, len(cases))

	var submitted, successful, failed atomic.Int64

	indexes := make(chan int, cfg.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				c := cases[i]
				res := client.predict(ctx, url, c.CustomerID, c.Form, c.Threshold)
				res.Case = c
				results[i] = res

				n := submitted.Add(1)
				if res.Prediction != nil {
					successful.Add(1)
				} else {
					failed.Add(1)
				}
				if cfg.Verbose && n%100 == 0 {
					logger.Get().Debug(ctx, "progress",
						logger.Int64("submitted", n),
						logger.Int64("failed", failed.Load()),
					)
				}
			}
		}()
	}

	go func() {
		defer close(indexes)
		for i := range cases {
			select {
			case <-ctx.Done():
				return
			case indexes <- i:
			}
		}
	}()

	wg.Wait()

	stats.Submitted = int(submitted.Load())
	stats.Successful = int(successful.Load())
	stats.Failed = int(failed.Load())

	logger.Get().Info(ctx, "submission completed",
		logger.Int("successful", stats.Successful),
		logger.Int("failed", stats.Failed),
	)
	return results
}
