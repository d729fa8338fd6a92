// Package advisory proxies questions to the Flask advisory chatbot.
package advisory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"uny-compass-be/internal/pkg/logger"

	"github.com/sony/gobreaker/v2"
)

const (
	askPath    = "/api/chatbot/ask"
	statusPath = "/api/chatbot/status"
	warmupPath = "/api/chatbot/warmup"

	maxBodyBytes = 50 << 20
	logModule    = "ADVISORY"
)

type Config struct {
	BaseURL       string
	Timeout       time.Duration
	StatusTimeout time.Duration
	MaxFailures   uint32
	Cooldown      time.Duration
}

// Client talks to the upstream over HTTP. It never returns errors to callers;
// every outcome is folded into AskResult or StatusResult.
type Client struct {
	cfg     Config
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	logger  logger.ILogger
}

var _ Provider = (*Client)(nil)

// statusError is a non-2xx upstream reply.
type statusError struct {
	Code    int
	Message string
}

func (e *statusError) Error() string {
	return e.Message
}

var errInvalidResponse = errors.New("invalid response from Flask API")

func NewClient(cfg Config, log logger.ILogger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.StatusTimeout <= 0 {
		cfg.StatusTimeout = 10 * time.Second
	}
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 5
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 30 * time.Second
	}

	c := &Client{
		cfg: cfg,
		http: &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger: log,
	}

	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "flask-advisory",
		MaxRequests: 1,
		Timeout:     cfg.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		// a 4xx means the upstream is alive and rejected the payload
		IsSuccessful: func(err error) bool {
			var se *statusError
			if errors.As(err, &se) {
				return se.Code < http.StatusInternalServerError
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn(logModule, "circuit breaker state changed", map[string]interface{}{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			})
		},
	})

	return c
}

// Ask sends prompt to the upstream on behalf of the UI chat session.
func (c *Client) Ask(ctx context.Context, prompt string, uiSessionID uint) AskResult {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	payload, err := json.Marshal(askRequest{Message: prompt, UISessionID: uiSessionID})
	if err != nil {
		return c.askFailure(err, uiSessionID, start)
	}

	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.do(ctx, http.MethodPost, askPath, payload)
	})
	if err != nil {
		return c.askFailure(err, uiSessionID, start)
	}

	var resp askResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return c.askFailure(errInvalidResponse, uiSessionID, start)
	}
	answer := resp.Response
	if strings.TrimSpace(answer) == "" {
		answer = resp.Answer
	}
	if strings.TrimSpace(answer) == "" {
		return c.askFailure(errInvalidResponse, uiSessionID, start)
	}

	elapsed := time.Since(start)
	c.logger.Info(logModule, "ask completed", map[string]interface{}{
		"ui_session_id":   uiSessionID,
		"response_ms":     elapsed.Milliseconds(),
		"processing_time": resp.ProcessingTime,
	})

	return AskResult{
		Success:        true,
		Question:       resp.Question,
		Answer:         answer,
		Timestamp:      resp.Timestamp,
		ProcessingTime: resp.ProcessingTime,
		ResponseTime:   elapsed,
	}
}

func (c *Client) askFailure(err error, uiSessionID uint, start time.Time) AskResult {
	failure, reason := classify(err)
	elapsed := time.Since(start)

	c.logger.Error(logModule, "ask failed", map[string]interface{}{
		"ui_session_id": uiSessionID,
		"failure":       string(failure),
		"reason":        reason,
		"response_ms":   elapsed.Milliseconds(),
		"error":         err,
	})

	return AskResult{
		ResponseTime: elapsed,
		Failure:      failure,
		Reason:       reason,
	}
}

// CheckStatus reports whether the upstream is reachable and ready. It always
// pings the upstream and leaves the ask breaker counts alone.
func (c *Client) CheckStatus(ctx context.Context) StatusResult {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, c.cfg.StatusTimeout)
	defer cancel()

	body, err := c.do(ctx, http.MethodGet, statusPath, nil)
	if err == nil {
		var resp statusResponse
		if jsonErr := json.Unmarshal(body, &resp); jsonErr != nil {
			err = errInvalidResponse
		} else {
			message := resp.Message
			if message == "" {
				message = "Flask API is ready"
			}
			return StatusResult{
				Online:        true,
				Status:        resp.Status,
				PythonWorking: resp.PythonWorking,
				Message:       message,
				ResponseTime:  time.Since(start),
			}
		}
	}

	message := statusMessage(err)
	c.logger.Warn(logModule, "status check failed", map[string]interface{}{
		"reason": message,
		"error":  err.Error(),
	})
	return StatusResult{
		Status:       "offline",
		Message:      message,
		ResponseTime: time.Since(start),
	}
}

// Warmup asks the upstream to load its models ahead of the first question.
func (c *Client) Warmup(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	_, err := c.do(ctx, http.MethodPost, warmupPath, []byte("{}"))
	if err != nil {
		c.logger.Warn(logModule, "warmup failed", map[string]interface{}{"error": err.Error()})
		return err
	}
	c.logger.Info(logModule, "warmup completed", nil)
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := &statusError{Code: resp.StatusCode, Message: fmt.Sprintf("Server error: %d", resp.StatusCode)}
		var upstream errorResponse
		if json.Unmarshal(body, &upstream) == nil && upstream.Error != "" {
			se.Message = upstream.Error
		}
		return nil, se
	}

	return body, nil
}

func classify(err error) (Failure, string) {
	var (
		se     *statusError
		dnsErr *net.DNSError
		netErr net.Error
	)

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return FailureCircuitOpen, "Advisory service temporarily unavailable"
	case errors.As(err, &se):
		return FailureServerError, se.Message
	case errors.Is(err, errInvalidResponse):
		return FailureInvalidResponse, "Invalid response from Flask API"
	case errors.Is(err, syscall.ECONNREFUSED):
		return FailureConnectionRefused, "Flask API connection refused - service may be down"
	case errors.As(err, &dnsErr):
		return FailureDNS, "Cannot reach Flask API - DNS resolution failed"
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return FailureTimeout, "Request timeout - Flask API took too long to respond"
	default:
		return FailureNetwork, "Network error: " + err.Error()
	}
}

func statusMessage(err error) string {
	var se *statusError
	failure, reason := classify(err)

	switch failure {
	case FailureConnectionRefused:
		return "Flask API connection refused"
	case FailureDNS:
		return reason
	case FailureTimeout:
		return "Status check timeout"
	case FailureServerError:
		if errors.As(err, &se) {
			return fmt.Sprintf("Flask API error: %d", se.Code)
		}
		return reason
	default:
		return "Flask API is offline"
	}
}
