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

// Package github authenticates as a GitHub App and submits deployment
// protection-rule reviews.
//
// Authentication is the standard App two-step: a short-lived RS256 JWT
// signed with the App's private key proves control of the App identity,
// and is exchanged for an installation access token scoped to the single
// installation a webhook delivery belongs to. The long-lived private key
// never crosses the wire.
//
// Every review mints and exchanges fresh credentials. Request volume is
// one review per webhook delivery, so the extra round trip is cheaper
// than getting token caching right (per-installation keying, remote
// expiry handling).
//
// Failure classification:
//   - ErrAuthRejected: GitHub refused the assertion or the exchange.
//   - ErrTransport: the API could not be reached.
//   - ErrReviewFailed: the review call returned a non-204 status.
//
// None of the calls are retried inside this package. GitHub retries
// webhook deliveries on 5xx responses per its own policy, and the review
// endpoint's state change is irreversible, so retrying locally risks a
// double submit.
package github
