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

package github

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

var testTarget = DeploymentTarget{
	Owner:           "company",
	Repo:            "repo",
	RunID:           424242,
	InstallationID:  99,
	EnvironmentName: "production",
}

// apiStub emulates the two GitHub endpoints the dispatcher touches.
type apiStub struct {
	t *testing.T

	exchangeStatus int
	reviewStatus   int

	exchangeCalls atomic.Int64
	reviewCalls   atomic.Int64
	lastReview    atomic.Pointer[reviewBody]
}

type reviewBody struct {
	EnvironmentName string `json:"environment_name"`
	State           string `json:"state"`
	Comment         string `json:"comment"`
}

func newAPIStub(t *testing.T) *apiStub {
	return &apiStub{t: t, exchangeStatus: http.StatusCreated, reviewStatus: http.StatusNoContent}
}

func (s *apiStub) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")

		switch {
		case r.URL.Path == "/app/installations/99/access_tokens":
			s.exchangeCalls.Add(1)
			// App endpoints authenticate with the JWT assertion.
			if !strings.HasPrefix(auth, "Bearer ") || strings.Count(auth, ".") != 2 {
				s.t.Errorf("Token exchange used %q, expected a bearer JWT", auth)
			}
			if s.exchangeStatus != http.StatusCreated {
				w.WriteHeader(s.exchangeStatus)
				w.Write([]byte(`{"message":"Integration not found"}`))
				return
			}
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"token":"ghs_testtoken","expires_at":"2025-06-01T13:00:00Z"}`))

		case r.URL.Path == "/repos/company/repo/actions/runs/424242/deployment_protection_rule":
			s.reviewCalls.Add(1)
			if auth != "Bearer ghs_testtoken" {
				s.t.Errorf("Review used %q, expected the installation token", auth)
			}
			var body reviewBody
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				s.t.Errorf("Failed to decode review body: %v", err)
			}
			s.lastReview.Store(&body)
			if s.reviewStatus != http.StatusNoContent {
				w.WriteHeader(s.reviewStatus)
				w.Write([]byte(`{"message":"Validation Failed"}`))
				return
			}
			w.WriteHeader(http.StatusNoContent)

		default:
			s.t.Errorf("Unexpected API call: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func newTestDispatcher(t *testing.T, baseURL string) Dispatcher {
	t.Helper()

	pemBytes, _ := generateTestKey(t)
	dispatcher, err := NewClient(12345, pemBytes, baseURL, 5*time.Second)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return dispatcher
}

func TestNewClient_InvalidKey(t *testing.T) {
	if _, err := NewClient(12345, []byte("garbage"), "", 0); err == nil {
		t.Error("NewClient accepted an unparseable key")
	}
}

func TestReviewDeployment_Approved(t *testing.T) {
	stub := newAPIStub(t)
	server := httptest.NewServer(stub.handler())
	defer server.Close()

	dispatcher := newTestDispatcher(t, server.URL)

	err := dispatcher.ReviewDeployment(context.Background(), testTarget, ReviewApproved, "Auto-approved: scheduled deployment")
	if err != nil {
		t.Fatalf("ReviewDeployment: %v", err)
	}

	if got := stub.exchangeCalls.Load(); got != 1 {
		t.Errorf("Token exchange called %d times, expected 1", got)
	}
	if got := stub.reviewCalls.Load(); got != 1 {
		t.Errorf("Review called %d times, expected 1", got)
	}

	review := stub.lastReview.Load()
	if review == nil {
		t.Fatal("No review body recorded")
	}
	if review.State != "approved" {
		t.Errorf("Review state is %q, expected %q", review.State, "approved")
	}
	if review.EnvironmentName != "production" {
		t.Errorf("Review environment is %q, expected %q", review.EnvironmentName, "production")
	}
	if review.Comment != "Auto-approved: scheduled deployment" {
		t.Errorf("Review comment is %q", review.Comment)
	}
}

func TestReviewDeployment_Rejected(t *testing.T) {
	stub := newAPIStub(t)
	server := httptest.NewServer(stub.handler())
	defer server.Close()

	dispatcher := newTestDispatcher(t, server.URL)

	err := dispatcher.ReviewDeployment(context.Background(), testTarget, ReviewRejected, "Rejected by protection rule")
	if err != nil {
		t.Fatalf("ReviewDeployment: %v", err)
	}

	if review := stub.lastReview.Load(); review == nil || review.State != "rejected" {
		t.Errorf("Review body is %+v, expected state rejected", review)
	}
}

func TestReviewDeployment_ExchangeRejected(t *testing.T) {
	stub := newAPIStub(t)
	stub.exchangeStatus = http.StatusNotFound
	server := httptest.NewServer(stub.handler())
	defer server.Close()

	dispatcher := newTestDispatcher(t, server.URL)

	err := dispatcher.ReviewDeployment(context.Background(), testTarget, ReviewApproved, "comment")
	if !errors.Is(err, ErrAuthRejected) {
		t.Errorf("ReviewDeployment error is %v, expected ErrAuthRejected", err)
	}

	// A refused exchange must not produce a state change.
	if got := stub.reviewCalls.Load(); got != 0 {
		t.Errorf("Review called %d times after rejected exchange, expected 0", got)
	}
}

func TestReviewDeployment_ReviewFailed(t *testing.T) {
	stub := newAPIStub(t)
	stub.reviewStatus = http.StatusUnprocessableEntity
	server := httptest.NewServer(stub.handler())
	defer server.Close()

	dispatcher := newTestDispatcher(t, server.URL)

	err := dispatcher.ReviewDeployment(context.Background(), testTarget, ReviewApproved, "comment")
	if !errors.Is(err, ErrReviewFailed) {
		t.Errorf("ReviewDeployment error is %v, expected ErrReviewFailed", err)
	}
	if err != nil && !strings.Contains(err.Error(), "Validation Failed") {
		t.Errorf("Error does not carry the response body: %v", err)
	}
}

func TestReviewDeployment_TransportError(t *testing.T) {
	// A server that is already gone yields a connection error, not an API
	// status.
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	dispatcher := newTestDispatcher(t, url)

	err := dispatcher.ReviewDeployment(context.Background(), testTarget, ReviewApproved, "comment")
	if !errors.Is(err, ErrTransport) {
		t.Errorf("ReviewDeployment error is %v, expected ErrTransport", err)
	}
}
