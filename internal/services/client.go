package services

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

	"go.uber.org/zap"

	"shopnest-bff/internal/config"
	"shopnest-bff/internal/resilience"
	"shopnest-bff/internal/telemetry"
)

// Upstream names, also used as metric labels.
const (
	svcUsers           = "users"
	svcOrders          = "orders"
	svcProducts        = "products"
	svcRecommendations = "recommendations"
	svcHealth          = "health"
)

// APIError is a non-2xx answer from the backend. Detail carries the
// backend's "detail" message when it sent one.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("backend returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Detail)
}

// StatusOf returns the backend status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

func IsNotFound(err error) bool {
	return StatusOf(err) == http.StatusNotFound
}

type ServiceClient struct {
	cfg              *config.Config
	client           *http.Client
	recommendationCB *resilience.CircuitBreaker
	log              *zap.Logger
}

func NewServiceClient(cfg *config.Config, log *zap.Logger) *ServiceClient {
	breaker := resilience.NewCircuitBreaker(svcRecommendations, cfg.Upstream.BreakerThreshold, cfg.Upstream.BreakerTimeout)
	breaker.OnStateChange = func(name string, _, to resilience.State) {
		telemetry.BreakerState.WithLabelValues(name).Set(float64(to))
	}

	return &ServiceClient{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Upstream.Timeout,
		},
		recommendationCB: breaker,
		log:              log,
	}
}

// call describes one backend request.
type call struct {
	service string
	method  string
	url     string
	token   string
	body    any
	out     any
	once    bool // no retries even for GET
}

func endpoint(base, path string, query url.Values) string {
	u := base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (s *ServiceClient) get(ctx context.Context, service, url, token string, out any) error {
	return s.do(ctx, call{service: service, method: http.MethodGet, url: url, token: token, out: out})
}

func (s *ServiceClient) send(ctx context.Context, service, method, url, token string, body, out any) error {
	return s.do(ctx, call{service: service, method: method, url: url, token: token, body: body, out: out})
}

// do runs c against the backend. GETs are retried on network errors and 5xx
// answers; other methods are sent once.
func (s *ServiceClient) do(ctx context.Context, c call) error {
	var payload []byte
	if c.body != nil {
		var err error
		if payload, err = json.Marshal(c.body); err != nil {
			return fmt.Errorf("encode %s request: %w", c.service, err)
		}
	}

	attempts := 1
	if c.method == http.MethodGet && !c.once {
		attempts = s.cfg.Upstream.RetryAttempts
	}

	start := time.Now()
	err := resilience.Retry(ctx, attempts, s.cfg.Upstream.RetryDelay, func() error {
		return s.roundTrip(ctx, c, payload)
	})
	telemetry.UpstreamDuration.WithLabelValues(c.service).Observe(time.Since(start).Seconds())
	telemetry.UpstreamRequests.WithLabelValues(c.service, outcome(err)).Inc()

	if status := StatusOf(err); err != nil && (status == 0 || status >= 500) {
		s.log.Warn("Backend request failed",
			zap.String("service", c.service),
			zap.String("method", c.method),
			zap.String("url", c.url),
			zap.Error(err),
		)
	}
	return err
}

func (s *ServiceClient) roundTrip(ctx context.Context, c call, payload []byte) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, c.method, c.url, body)
	if err != nil {
		return resilience.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return decodeError(resp)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resilience.Permanent(decodeError(resp))
	}

	if c.out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(c.out); err != nil {
		return resilience.Permanent(fmt.Errorf("decode %s response: %w", c.service, err))
	}
	return nil
}

// decodeError reads a FastAPI style error body. "detail" is either a
// message or a list of validation errors.
func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(data, &body); err != nil || len(body.Detail) == 0 {
		return apiErr
	}

	var msg string
	if err := json.Unmarshal(body.Detail, &msg); err == nil {
		apiErr.Detail = msg
		return apiErr
	}

	var list []struct {
		Loc []any  `json:"loc"`
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(body.Detail, &list); err == nil {
		msgs := make([]string, 0, len(list))
		for _, item := range list {
			if n := len(item.Loc); n > 0 {
				msgs = append(msgs, fmt.Sprintf("%v: %s", item.Loc[n-1], item.Msg))
				continue
			}
			msgs = append(msgs, item.Msg)
		}
		apiErr.Detail = strings.Join(msgs, "; ")
	}
	return apiErr
}

func outcome(err error) string {
	switch status := StatusOf(err); {
	case err == nil:
		return "success"
	case status >= 400 && status < 500:
		return "client_error"
	default:
		return "error"
	}
}
