// Package keepalive pings the marketplace backend so hosted instances that
// sleep when idle stay warm, and tracks whether it answers.
package keepalive

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"shopnest-bff/internal/telemetry"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Status struct {
	Healthy             bool      `json:"healthy"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	LastCheck           time.Time `json:"last_check"`
	LastSuccess         time.Time `json:"last_success"`
	LastError           string    `json:"last_error,omitempty"`
}

type Service struct {
	pinger      Pinger
	interval    time.Duration
	timeout     time.Duration
	maxFailures int
	log         *zap.Logger

	mu     sync.RWMutex
	status Status
}

func New(pinger Pinger, interval, timeout time.Duration, maxFailures int, log *zap.Logger) *Service {
	return &Service{
		pinger:      pinger,
		interval:    interval,
		timeout:     timeout,
		maxFailures: maxFailures,
		log:         log,
	}
}

// Run pings immediately and then every interval until ctx is done.
func (s *Service) Run(ctx context.Context) {
	s.log.Info("Keep-alive started", zap.Duration("interval", s.interval))
	s.Check(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.log.Info("Keep-alive stopped")
			return
		case <-ticker.C:
			s.Check(ctx)
		}
	}
}

// Check performs a single ping and updates the status.
func (s *Service) Check(ctx context.Context) Status {
	pingCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	err := s.pinger.Ping(pingCtx)

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.status.LastCheck = now
	if err == nil {
		if s.status.ConsecutiveFailures >= s.maxFailures {
			s.log.Info("Backend is reachable again", zap.Int("after_failures", s.status.ConsecutiveFailures))
		}
		s.status.Healthy = true
		s.status.ConsecutiveFailures = 0
		s.status.LastSuccess = now
		s.status.LastError = ""
		telemetry.BackendUp.Set(1)
		return s.status
	}

	s.status.Healthy = false
	s.status.ConsecutiveFailures++
	s.status.LastError = err.Error()
	telemetry.BackendUp.Set(0)

	if s.status.ConsecutiveFailures == s.maxFailures {
		s.log.Warn("Backend keep-alive failing",
			zap.Int("consecutive_failures", s.status.ConsecutiveFailures),
			zap.Error(err),
		)
	} else {
		s.log.Debug("Keep-alive ping failed", zap.Error(err))
	}
	return s.status
}

func (s *Service) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}
