// Package mpesa calls the server-side STK push trigger.
package mpesa

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"mpesa-paywall/config"
	"mpesa-paywall/internal/core/ports"
	"mpesa-paywall/internal/metrics"
	"mpesa-paywall/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

const maxResponseBytes = 64 << 10

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// triggerResponse is the trigger's success envelope:
// { success: true, data: { CheckoutRequestID, MerchantRequestID } }.
type triggerResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
	Data    *struct {
		CheckoutRequestID string `json:"CheckoutRequestID"`
		MerchantRequestID string `json:"MerchantRequestID"`
	} `json:"data"`
}

// Client implements ports.PaymentGateway.
type Client struct {
	url     string
	http    HTTPClient
	breaker *gobreaker.CircuitBreaker
	metrics *metrics.Metrics
	log     zerolog.Logger
}

// NewHTTPClient builds the transport used for trigger calls.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        20,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// NewClient creates a gateway client. With the breaker disabled every call
// goes straight through.
func NewClient(cfg config.GatewayConfig, bcfg config.BreakerConfig, httpClient HTTPClient, m *metrics.Metrics, log zerolog.Logger) *Client {
	c := &Client{
		url:     cfg.STKPushURL,
		http:    httpClient,
		metrics: m,
		log:     log,
	}
	if bcfg.Enabled {
		c.breaker = gobreaker.NewCircuitBreaker(breakerSettings(bcfg, log))
	}
	return c
}

func breakerSettings(cfg config.BreakerConfig, log zerolog.Logger) gobreaker.Settings {
	return gobreaker.Settings{
		Name:        "stk_push",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return cfg.ConsecutiveFailures > 0 && counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
		},
	}
}

// BreakerState reports the breaker state, or "disabled".
func (c *Client) BreakerState() string {
	if c.breaker == nil {
		return "disabled"
	}
	return c.breaker.State().String()
}

// Name implements ports.HealthChecker.
func (c *Client) Name() string {
	return "mpesa_gateway"
}

// Ping reports the gateway unhealthy while the breaker is open. It never
// calls the trigger, which would start a real payment.
func (c *Client) Ping(_ context.Context) error {
	if c.breaker != nil && c.breaker.State() == gobreaker.StateOpen {
		return errors.New("circuit breaker open")
	}
	return nil
}

// InitiateSTKPush posts the push request and returns the gateway ids.
// Errors are GW_001 for an empty or unparseable body and GW_002 for
// transport failures, non-2xx statuses and gateway-reported failures.
func (c *Client) InitiateSTKPush(ctx context.Context, req ports.STKPushRequest) (*ports.STKPushResponse, error) {
	start := time.Now()

	var (
		out *ports.STKPushResponse
		err error
	)
	if c.breaker == nil {
		out, err = c.do(ctx, req)
	} else {
		var res interface{}
		res, err = c.breaker.Execute(func() (interface{}, error) {
			return c.do(ctx, req)
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = apperror.ErrGatewayFailure(fmt.Errorf("stk push breaker: %w", err))
		}
		if err == nil {
			out = res.(*ports.STKPushResponse)
		}
	}

	c.metrics.ObserveGatewayCall(time.Since(start), apperror.CodeOf(err))
	if err != nil {
		c.log.Warn().Err(err).Str("transaction_id", req.TransactionID).Msg("stk push failed")
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, req ports.STKPushRequest) (*ports.STKPushResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("marshal stk push request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, apperror.ErrGatewayFailure(fmt.Errorf("build stk push request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, apperror.ErrGatewayFailure(fmt.Errorf("stk push request: %w", err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, apperror.ErrGatewayInvalidBody(fmt.Errorf("read stk push response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperror.ErrGatewayFailure(fmt.Errorf("stk push returned status %d", resp.StatusCode))
	}

	return parseResponse(raw)
}

// parseResponse separates an unusable body from a gateway-reported failure.
func parseResponse(raw []byte) (*ports.STKPushResponse, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, apperror.ErrGatewayInvalidBody(errors.New("server returned empty body"))
	}

	var tr triggerResponse
	if err := json.Unmarshal(raw, &tr); err != nil {
		return nil, apperror.ErrGatewayInvalidBody(fmt.Errorf("server returned invalid body: %w", err))
	}

	if !tr.Success {
		reason := strings.TrimSpace(tr.Error)
		if reason == "" {
			reason = strings.TrimSpace(tr.Message)
		}
		if reason == "" {
			reason = "success=false"
		}
		return nil, apperror.ErrGatewayFailure(fmt.Errorf("gateway reported failure: %s", reason))
	}

	if tr.Data == nil || tr.Data.CheckoutRequestID == "" {
		return nil, apperror.ErrGatewayInvalidBody(errors.New("response missing CheckoutRequestID"))
	}

	return &ports.STKPushResponse{
		CheckoutRequestID: tr.Data.CheckoutRequestID,
		MerchantRequestID: tr.Data.MerchantRequestID,
	}, nil
}
