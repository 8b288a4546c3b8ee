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

import "errors"

// Error kinds surfaced by the dispatcher. Callers classify failures with
// errors.Is; the wrapped message carries the diagnostic detail.
var (
	// ErrAuthRejected means GitHub refused the app assertion or the
	// installation-token exchange (bad credentials, unknown installation,
	// expired assertion).
	ErrAuthRejected = errors.New("github: app authentication rejected")

	// ErrTransport means the API could not be reached at all.
	ErrTransport = errors.New("github: transport failure")

	// ErrReviewFailed means the deployment review call returned a
	// non-success status.
	ErrReviewFailed = errors.New("github: deployment review failed")
)
