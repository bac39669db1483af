// Package larekapi is the HTTP client of the storefront backend: it fetches the
// catalog and submits orders.
package larekapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/abgdnv/weblarek/internal/config"
	"github.com/abgdnv/weblarek/internal/domain"
	"github.com/sony/gobreaker/v2"
)

const (
	productPath = "/product/"
	orderPath   = "/order"
	// responses larger than this are rejected
	maxBodyBytes = 4 << 20
)

// listResponse is the envelope of list endpoints.
type listResponse[T any] struct {
	Total int `json:"total"`
	Items []T `json:"items"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Client talks to the storefront backend. It is safe for concurrent use.
type Client struct {
	baseURL    string
	cdnURL     string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[[]byte]
	logger     *slog.Logger
}

// NewClient creates a client for the configured backend.
func NewClient(apiCfg config.APIConfig, cbCfg config.CircuitBreakerConfig, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(apiCfg.BaseURL, "/"),
		cdnURL:     strings.TrimSuffix(apiCfg.CDNURL, "/"),
		httpClient: &http.Client{Timeout: apiCfg.Timeout},
		breaker:    newCircuitBreaker(cbCfg, logger),
		logger:     logger.With("component", "larekapi"),
	}
}

func newCircuitBreaker(cfg config.CircuitBreakerConfig, logger *slog.Logger) *gobreaker.CircuitBreaker[[]byte] {
	st := gobreaker.Settings{
		Name:        "larek-api-cb",
		MaxRequests: 3,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			total := counts.TotalSuccesses + counts.TotalFailures
			return counts.ConsecutiveFailures > cfg.ConsecutiveFailures ||
				(total > cfg.ConsecutiveFailures &&
					float64(counts.TotalFailures)/float64(total)*100 > float64(cfg.ErrorRatePercent))
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			// client mistakes say nothing about backend health
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return !apiErr.Temporary()
			}
			return errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	}
	return gobreaker.NewCircuitBreaker[[]byte](st)
}

// FetchCatalog loads the product list. Image paths are resolved against the CDN.
func (c *Client) FetchCatalog(ctx context.Context) ([]*domain.Product, error) {
	body, err := c.do(ctx, http.MethodGet, productPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalog: %w", err)
	}
	var list listResponse[*domain.Product]
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	items := make([]*domain.Product, 0, len(list.Items))
	for _, item := range list.Items {
		if item == nil {
			continue
		}
		item.Image = c.cdnURL + item.Image
		items = append(items, item)
	}
	c.logger.DebugContext(ctx, "Catalog fetched", "count", len(items), "total", list.Total)
	return items, nil
}

// SubmitOrder places the order and returns the backend's confirmation.
func (c *Client) SubmitOrder(ctx context.Context, order domain.Order) (*domain.OrderResult, error) {
	body, err := c.do(ctx, http.MethodPost, orderPath, order)
	if err != nil {
		return nil, fmt.Errorf("failed to submit order: %w", err)
	}
	var result domain.OrderResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode order result: %w", err)
	}
	c.logger.InfoContext(ctx, "Order submitted", "order_id", result.ID, "total", result.Total)
	return &result, nil
}

// do performs one request through the circuit breaker and returns the body of a 2xx answer.
func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	return c.breaker.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
		if err != nil {
			return nil, fmt.Errorf("failed to build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer func() { _ = resp.Body.Close() }()

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			apiErr := &APIError{StatusCode: resp.StatusCode}
			var e errorResponse
			if json.Unmarshal(body, &e) == nil {
				apiErr.Message = e.Error
			}
			c.logger.WarnContext(ctx, "API request failed", "method", method, "path", path, "status", resp.StatusCode, "error", apiErr.Message)
			return nil, apiErr
		}
		return body, nil
	})
}
