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

// Package webhook receives GitHub deployment_protection_rule events and
// turns them into gate decisions.
//
// Pipeline per delivery:
//   - validate the X-Hub-Signature-256 HMAC against the raw body (401 on
//     failure, before any parsing)
//   - filter by X-GitHub-Event; unrelated event types are acknowledged
//     with 200 and dropped
//   - parse the payload and check the identifiers a decision needs
//     (400 when malformed or incomplete)
//   - run the decision engine; Approve/Reject decisions are dispatched to
//     GitHub, Defer/Ignore are answered locally with the reason
//
// Dispatch failures respond 500 so GitHub redelivers; the service itself
// never retries. Deliveries are independent: the only shared state is the
// read-only secret and the dispatcher's connection pool, so no
// synchronization happens on the request path beyond the rate limiter.
//
// Rate Limiting:
//
// Deliveries are rate-limited per repository using a token bucket, 10 per
// second by default. Excess deliveries receive HTTP 429.
package webhook
