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

package decision

// Kind enumerates the possible gate decisions for a deployment run.
type Kind string

const (
	// Approve submits an approval for the pending deployment.
	Approve Kind = "approve"
	// Reject submits a rejection for the pending deployment.
	Reject Kind = "reject"
	// Defer leaves the deployment waiting for a human reviewer.
	Defer Kind = "defer"
	// Ignore means the event does not require processing at all.
	Ignore Kind = "ignore"
)

// Input carries the trigger metadata a decision is based on.
type Input struct {
	// Action is the webhook action, e.g. "requested".
	Action string
	// TriggerEvent is the event that started the workflow run,
	// e.g. "schedule", "push", "workflow_dispatch".
	TriggerEvent string
}

// Outcome is the engine's verdict plus the text attached to it.
type Outcome struct {
	Kind Kind
	// Comment accompanies an Approve or Reject submitted to GitHub.
	Comment string
	// Reason explains a Defer or Ignore; it is returned to the sender
	// but never triggers an API call.
	Reason string
}

// RequiresDispatch reports whether the outcome must be pushed to GitHub.
func (o Outcome) RequiresDispatch() bool {
	return o.Kind == Approve || o.Kind == Reject
}

// Decide maps trigger metadata to a gate decision.
//
// The mapping is total and deterministic: deployments requested by a
// schedule trigger are approved automatically, anything else requested
// stays pending for manual review, and non-"requested" actions are
// ignored. No clock, no I/O.
func Decide(in Input) Outcome {
	if in.Action != "requested" {
		return Outcome{Kind: Ignore, Reason: "action not requested"}
	}
	if in.TriggerEvent == "schedule" {
		return Outcome{Kind: Approve, Comment: "Auto-approved: scheduled deployment"}
	}
	return Outcome{Kind: Defer, Reason: in.TriggerEvent}
}
