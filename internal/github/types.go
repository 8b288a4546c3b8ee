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

import "context"

// Dispatcher pushes gate decisions back to GitHub.
type Dispatcher interface {
	// ReviewDeployment approves or rejects the pending deployment run
	// identified by target. It authenticates as the App installation the
	// event arrived for and issues exactly one state change; it never
	// retries on its own.
	ReviewDeployment(ctx context.Context, target DeploymentTarget, state ReviewState, comment string) error
}

// ReviewState is the decision submitted to the protection-rule endpoint.
type ReviewState string

const (
	// ReviewApproved lets the deployment proceed.
	ReviewApproved ReviewState = "approved"
	// ReviewRejected blocks the deployment.
	ReviewRejected ReviewState = "rejected"
)

// DeploymentTarget identifies a deployment run awaiting a gate decision.
type DeploymentTarget struct {
	Owner           string
	Repo            string
	RunID           int64
	InstallationID  int64
	EnvironmentName string
}
