// Copyright 2025 The Protectd Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/go-logr/logr"

	"github.com/protectd/protectd/internal/decision"
	"github.com/protectd/protectd/internal/github"
)

// eventDeploymentProtectionRule is the only event type this service acts on.
const eventDeploymentProtectionRule = "deployment_protection_rule"

// Server handles GitHub webhook requests
type Server struct {
	addr          string
	dispatcher    github.Dispatcher
	webhookSecret string
	logger        logr.Logger
	server        *http.Server
	rateLimiter   *RateLimiter
}

// RateLimiter provides per-repository rate limiting
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*bucket
	limit    int
	window   time.Duration
}

type bucket struct {
	tokens    int
	lastReset time.Time
}

// NewServer creates a new webhook server
func NewServer(addr string, dispatcher github.Dispatcher, webhookSecret string, logger logr.Logger) *Server {
	return &Server{
		addr:          addr,
		dispatcher:    dispatcher,
		webhookSecret: webhookSecret,
		logger:        logger,
		rateLimiter:   NewRateLimiter(10, time.Second), // 10 deliveries per second per repo
	}
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*bucket),
		limit:    limit,
		window:   window,
	}
}

// Allow checks if a delivery for the given repository should be allowed
func (rl *RateLimiter) Allow(repo string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, exists := rl.limiters[repo]
	if !exists {
		b = &bucket{
			tokens:    rl.limit,
			lastReset: time.Now(),
		}
		rl.limiters[repo] = b
	}

	// Reset bucket if window has passed
	if time.Since(b.lastReset) >= rl.window {
		b.tokens = rl.limit
		b.lastReset = time.Now()
	}

	if b.tokens > 0 {
		b.tokens--
		return true
	}

	return false
}

// Start starts the webhook server and blocks until ctx is cancelled or the
// listener fails.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/webhook", s.handleWebhook)
	mux.HandleFunc("/healthz", s.handleHealth)

	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting webhook server", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	s.logger.Info("shutting down webhook server")
	return s.server.Shutdown(ctx)
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "protectd",
	})
}

// handleWebhook runs the per-delivery pipeline: verify the signature
// against the raw body, filter by event type, parse, decide, and dispatch
// Approve/Reject decisions back to GitHub. Each stage short-circuits with
// its own status code; nothing is parsed before the signature passes.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	logger := s.logger.WithValues("delivery_id", r.Header.Get("X-GitHub-Delivery"))

	// Only accept POST requests
	if r.Method != http.MethodPost {
		s.respondJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		logger.Error(err, "failed to read request body")
		s.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "failed to read body"})
		return
	}
	defer r.Body.Close()

	if !ValidateSignature(payload, r.Header.Get("X-Hub-Signature-256"), s.webhookSecret) {
		logger.Info("invalid webhook signature")
		s.respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid signature"})
		return
	}

	// Other event types may legitimately arrive on this endpoint; accept
	// and ignore them rather than erroring.
	eventType := r.Header.Get("X-GitHub-Event")
	if eventType != eventDeploymentProtectionRule {
		logger.V(1).Info("ignoring event type", "event", eventType)
		s.respondJSON(w, http.StatusOK, map[string]string{"message": "event type not supported"})
		return
	}

	var event DeploymentProtectionRuleEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		logger.Error(err, "failed to parse JSON payload")
		s.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	if event.Repository.Owner.Login == "" || event.Repository.Name == "" ||
		event.Deployment.ID == 0 || event.Installation.ID == 0 {
		logger.Info("payload missing required identifiers")
		s.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "missing required fields"})
		return
	}

	if !s.rateLimiter.Allow(event.Repository.FullName) {
		logger.Info("rate limit exceeded", "repository", event.Repository.FullName)
		s.respondJSON(w, http.StatusTooManyRequests, map[string]string{"error": "too many requests"})
		return
	}

	logger = logger.WithValues(
		"action", event.Action,
		"trigger_event", event.Event,
		"repository", event.Repository.FullName,
		"run_id", event.Deployment.ID,
		"installation_id", event.Installation.ID,
		"environment", event.Environment,
	)

	outcome := decision.Decide(decision.Input{
		Action:       event.Action,
		TriggerEvent: event.Event,
	})

	switch outcome.Kind {
	case decision.Ignore:
		logger.V(1).Info("action does not require processing")
		s.respondJSON(w, http.StatusOK, map[string]string{"message": "action not handled"})
		return
	case decision.Defer:
		logger.Info("deployment requires manual review")
		s.respondJSON(w, http.StatusOK, map[string]string{
			"message": "deployment requires manual review",
			"trigger": outcome.Reason,
		})
		return
	}

	state := github.ReviewApproved
	if outcome.Kind == decision.Reject {
		state = github.ReviewRejected
	}

	target := github.DeploymentTarget{
		Owner:           event.Repository.Owner.Login,
		Repo:            event.Repository.Name,
		RunID:           event.Deployment.ID,
		InstallationID:  event.Installation.ID,
		EnvironmentName: event.Environment,
	}

	if err := s.dispatcher.ReviewDeployment(r.Context(), target, state, outcome.Comment); err != nil {
		// The run stays pending on GitHub's side; the logged ids are what
		// an operator needs to review it by hand.
		logger.Error(err, "failed to submit deployment review")
		s.respondJSON(w, http.StatusInternalServerError, map[string]string{
			"error": dispatchErrorMessage(err),
		})
		return
	}

	logger.Info("deployment review submitted", "state", string(state))
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status":  string(state),
		"message": "deployment " + string(state),
	})
}

// dispatchErrorMessage maps dispatcher error kinds to the response body.
// Detail stays in the logs; the sender only needs the category.
func dispatchErrorMessage(err error) string {
	switch {
	case errors.Is(err, github.ErrAuthRejected):
		return "app authentication rejected"
	case errors.Is(err, github.ErrTransport):
		return "github api unreachable"
	case errors.Is(err, github.ErrReviewFailed):
		return "deployment review failed"
	}
	return "internal error"
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error(err, "failed to write response")
	}
}
