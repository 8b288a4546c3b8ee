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

// Package config loads process configuration from environment variables.
// Missing credentials are load errors, not defaults: the service must not
// come up able to accept traffic it cannot authenticate or act on.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config is the immutable process configuration. It is built once at
// startup and passed by value into the component constructors; nothing
// reads the environment after Load returns.
type Config struct {
	// AppID is the GitHub App identifier, used as the JWT issuer.
	AppID int64
	// WebhookSecret is the shared secret GitHub signs deliveries with.
	// Never logged.
	WebhookSecret string
	// PrivateKeyPEM is the App's RSA private key in PEM form.
	PrivateKeyPEM []byte
	// Bind is the listen address, e.g. ":8080".
	Bind string
	// APIBaseURL overrides the GitHub API endpoint; empty means
	// api.github.com.
	APIBaseURL string
	// DispatchTimeout bounds one outbound review sequence.
	DispatchTimeout time.Duration
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Load reads configuration from the environment. It returns an error when
// any of GITHUB_APP_ID, GITHUB_WEBHOOK_SECRET, or the private key
// (GITHUB_APP_PRIVATE_KEY inline, or GITHUB_APP_PRIVATE_KEY_PATH) is
// missing or unreadable.
func Load() (Config, error) {
	appIDStr := os.Getenv("GITHUB_APP_ID")
	if appIDStr == "" {
		return Config{}, errors.New("GITHUB_APP_ID is required")
	}
	appID, err := strconv.ParseInt(appIDStr, 10, 64)
	if err != nil {
		return Config{}, fmt.Errorf("GITHUB_APP_ID: %w", err)
	}

	secret := os.Getenv("GITHUB_WEBHOOK_SECRET")
	if secret == "" {
		return Config{}, errors.New("GITHUB_WEBHOOK_SECRET is required")
	}

	pem := []byte(os.Getenv("GITHUB_APP_PRIVATE_KEY"))
	if len(pem) == 0 {
		path := os.Getenv("GITHUB_APP_PRIVATE_KEY_PATH")
		if path == "" {
			return Config{}, errors.New("GITHUB_APP_PRIVATE_KEY or GITHUB_APP_PRIVATE_KEY_PATH is required")
		}
		pem, err = os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read private key: %w", err)
		}
	}

	timeout := 10 * time.Second
	if v := os.Getenv("DISPATCH_TIMEOUT_S"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil || secs <= 0 {
			return Config{}, fmt.Errorf("DISPATCH_TIMEOUT_S: invalid value %q", v)
		}
		timeout = time.Duration(secs) * time.Second
	}

	return Config{
		AppID:           appID,
		WebhookSecret:   secret,
		PrivateKeyPEM:   pem,
		Bind:            getenv("BIND", ":8080"),
		APIBaseURL:      os.Getenv("GITHUB_API_URL"),
		DispatchTimeout: timeout,
	}, nil
}
