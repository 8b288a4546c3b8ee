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
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v66/github"
)

// defaultReviewTimeout bounds the whole mint+exchange+review sequence so a
// stalled remote cannot hold the delivery's handler goroutine open.
const defaultReviewTimeout = 10 * time.Second

// client implements Dispatcher against the GitHub REST API using go-github.
type client struct {
	tokens  *AppTokenSource
	baseURL string
	timeout time.Duration
	httpc   *http.Client
}

// NewClient builds a Dispatcher that authenticates as the given GitHub App.
// baseURL overrides the API endpoint (GitHub Enterprise or test servers);
// empty means api.github.com. The returned error is a startup condition:
// it only occurs when the private key cannot be parsed.
func NewClient(appID int64, privateKeyPEM []byte, baseURL string, timeout time.Duration) (Dispatcher, error) {
	tokens, err := NewAppTokenSource(appID, privateKeyPEM)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = defaultReviewTimeout
	}
	return &client{
		tokens:  tokens,
		baseURL: baseURL,
		timeout: timeout,
		httpc:   &http.Client{},
	}, nil
}

// ReviewDeployment mints a fresh assertion, exchanges it for an installation
// token, and submits one protection-rule review for the target run. Only a
// 204 No Content counts as success. Nothing is retried here: GitHub
// redelivers the webhook on 5xx responses, and a blind retry after a
// partial failure could double-submit the state change.
func (c *client) ReviewDeployment(ctx context.Context, target DeploymentTarget, state ReviewState, comment string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	token, err := c.exchangeInstallationToken(ctx, target.InstallationID)
	if err != nil {
		return err
	}

	api, err := c.api(token)
	if err != nil {
		return err
	}

	req := github.ReviewCustomDeploymentProtectionRuleRequest{
		EnvironmentName: target.EnvironmentName,
		State:           string(state),
		Comment:         comment,
	}

	resp, err := api.Actions.ReviewCustomDeploymentProtectionRule(ctx, target.Owner, target.Repo, target.RunID, &req)
	if err != nil {
		var ghErr *github.ErrorResponse
		if errors.As(err, &ghErr) {
			return fmt.Errorf("%w: run %d in %s/%s: status %d: %s",
				ErrReviewFailed, target.RunID, target.Owner, target.Repo,
				ghErr.Response.StatusCode, ghErr.Message)
		}
		return fmt.Errorf("%w: run %d in %s/%s: %v",
			ErrTransport, target.RunID, target.Owner, target.Repo, err)
	}
	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("%w: run %d in %s/%s: unexpected status %d",
			ErrReviewFailed, target.RunID, target.Owner, target.Repo, resp.StatusCode)
	}

	return nil
}

// exchangeInstallationToken trades a freshly minted app assertion for an
// access token scoped to one installation. Tokens are not cached: one
// webhook delivery needs at most one, and an always-fresh token cannot
// outlive its installation binding.
func (c *client) exchangeInstallationToken(ctx context.Context, installationID int64) (string, error) {
	assertion, err := c.tokens.Mint()
	if err != nil {
		return "", err
	}

	api, err := c.api(assertion)
	if err != nil {
		return "", err
	}

	token, resp, err := api.Apps.CreateInstallationToken(ctx, installationID, nil)
	if err != nil {
		if isAuthRejection(resp) {
			return "", fmt.Errorf("%w: create installation token for %d: %v",
				ErrAuthRejected, installationID, err)
		}
		return "", fmt.Errorf("%w: create installation token for %d: %v",
			ErrTransport, installationID, err)
	}

	return token.GetToken(), nil
}

// api builds a REST client carrying the given bearer credential. The
// underlying http.Client is shared so connections are reused across
// requests; the go-github wrapper itself is cheap and holds no state
// beyond the credential.
func (c *client) api(token string) (*github.Client, error) {
	api := github.NewClient(c.httpc).WithAuthToken(token)
	if c.baseURL != "" {
		base, err := url.Parse(strings.TrimSuffix(c.baseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("parse API base URL: %w", err)
		}
		api.BaseURL = base
	}
	return api, nil
}

// isAuthRejection reports whether the response indicates GitHub refused the
// credential rather than failing to answer. 404 is included because the
// token endpoint answers it for unknown installations.
func isAuthRejection(resp *github.Response) bool {
	if resp == nil {
		return false
	}
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return true
	}
	return false
}
