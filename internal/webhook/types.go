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

// DeploymentProtectionRuleEvent is the payload of a GitHub
// deployment_protection_rule webhook delivery. It lives only for the
// duration of one request.
type DeploymentProtectionRuleEvent struct {
	Action       string       `json:"action"`
	Environment  string       `json:"environment"`
	Event        string       `json:"event"`
	Deployment   Deployment   `json:"deployment"`
	Repository   Repository   `json:"repository"`
	Installation Installation `json:"installation"`
}

// Deployment identifies the workflow run awaiting the gate decision.
type Deployment struct {
	ID int64 `json:"id"`
}

// Repository contains repository metadata
type Repository struct {
	FullName string `json:"full_name"`
	Name     string `json:"name"`
	Owner    Owner  `json:"owner"`
}

// Owner represents the repository owner
type Owner struct {
	Login string `json:"login"`
}

// Installation identifies the App installation the event was delivered for.
// The id is attacker-writable in principle but is covered by the payload
// signature; GitHub treats it as authoritative once the HMAC check passes.
type Installation struct {
	ID int64 `json:"id"`
}
