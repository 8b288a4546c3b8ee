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

package decision_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/protectd/protectd/internal/decision"
)

var _ = Describe("Decide", func() {
	Context("when the action is requested", func() {
		It("approves scheduled deployments automatically", func() {
			outcome := decision.Decide(decision.Input{Action: "requested", TriggerEvent: "schedule"})

			Expect(outcome.Kind).To(Equal(decision.Approve))
			Expect(outcome.Comment).To(Equal("Auto-approved: scheduled deployment"))
			Expect(outcome.RequiresDispatch()).To(BeTrue())
		})

		It("defers push-triggered deployments to a human reviewer", func() {
			outcome := decision.Decide(decision.Input{Action: "requested", TriggerEvent: "push"})

			Expect(outcome.Kind).To(Equal(decision.Defer))
			Expect(outcome.Reason).To(Equal("push"))
			Expect(outcome.RequiresDispatch()).To(BeFalse())
		})

		It("defers manually dispatched deployments", func() {
			outcome := decision.Decide(decision.Input{Action: "requested", TriggerEvent: "workflow_dispatch"})

			Expect(outcome.Kind).To(Equal(decision.Defer))
			Expect(outcome.Reason).To(Equal("workflow_dispatch"))
		})

		It("defers when the trigger event is empty", func() {
			outcome := decision.Decide(decision.Input{Action: "requested"})

			Expect(outcome.Kind).To(Equal(decision.Defer))
		})
	})

	Context("when the action is anything else", func() {
		It("ignores completed events even for scheduled triggers", func() {
			outcome := decision.Decide(decision.Input{Action: "completed", TriggerEvent: "schedule"})

			Expect(outcome.Kind).To(Equal(decision.Ignore))
			Expect(outcome.Reason).To(Equal("action not requested"))
			Expect(outcome.RequiresDispatch()).To(BeFalse())
		})

		It("ignores events with an empty action", func() {
			outcome := decision.Decide(decision.Input{TriggerEvent: "schedule"})

			Expect(outcome.Kind).To(Equal(decision.Ignore))
		})
	})

	Context("determinism", func() {
		It("returns identical outcomes for identical inputs", func() {
			in := decision.Input{Action: "requested", TriggerEvent: "schedule"}

			Expect(decision.Decide(in)).To(Equal(decision.Decide(in)))
		})
	})
})
