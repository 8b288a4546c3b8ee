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

// Package decision holds the deployment gate rules.
//
// It is deliberately free of I/O so the rule table can be audited and
// tested in isolation: the webhook layer feeds it the trigger metadata
// of one event and acts on the returned Outcome.
package decision
