package services

import (
	"context"
	"net/http"
)

// Ping checks the backend health endpoint once, without retries.
func (s *ServiceClient) Ping(ctx context.Context) error {
	return s.do(ctx, call{service: svcHealth, method: http.MethodGet, url: s.cfg.BackendHealthURL, once: true})
}
