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

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"

	"github.com/protectd/protectd/internal/config"
	"github.com/protectd/protectd/internal/github"
	"github.com/protectd/protectd/internal/webhook"
)

func main() {
	zl, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = zl.Sync() }()
	logger := zapr.NewLogger(zl)

	if err := run(logger); err != nil {
		logger.Error(err, "fatal")
		os.Exit(1)
	}
}

func run(logger logr.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	// An unparseable key must stop the process here; a service that
	// accepts deliveries it cannot act on leaves deployments stuck.
	dispatcher, err := github.NewClient(cfg.AppID, cfg.PrivateKeyPEM, cfg.APIBaseURL, cfg.DispatchTimeout)
	if err != nil {
		return fmt.Errorf("github client: %w", err)
	}

	logger.Info("starting protectd",
		"app_id", cfg.AppID,
		"bind", cfg.Bind,
		"dispatch_timeout", cfg.DispatchTimeout.String(),
	)

	server := webhook.NewServer(cfg.Bind, dispatcher, cfg.WebhookSecret, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return server.Start(ctx)
}
