// Copyright Go-Datalog Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package synth

// Provenance modes accepted by Config.Provenance.
const (
	// ProvenanceExplain launches the interactive proof explainer.
	ProvenanceExplain = "explain"
	// ProvenanceExplore launches the explainer in exploration mode.
	ProvenanceExplore = "explore"
	// ProvenanceSubtreeHeights additionally materialises height indexes.
	ProvenanceSubtreeHeights = "subtreeHeights"
)

// Config carries the synthesiser options.  The zero value disables every
// optional feature.
type Config struct {
	// DebugReport wraps every emitted fragment in begin/end comments.
	DebugReport bool
	// Verbose enables begin/end comments and signal-handler logging.
	Verbose bool
	// ProfileEnabled emits profiling scaffolding (frequency and read
	// counters, dumpFreqs, per-node increments).
	ProfileEnabled bool
	// ProfileName is the profile log written by the emitted program.
	ProfileName string
	// LiveProfile spawns the profile UI thread in runAll.
	LiveProfile bool
	// Provenance selects a provenance mode, or is empty.
	Provenance string
	// Jobs is the embedded default thread count.
	Jobs int
	// Version is recorded as a profile configuration event.
	Version string
	// SourceName is the Datalog source the RAM program was translated from.
	SourceName string
}

// Comments reports whether begin/end comments are emitted.
func (c *Config) Comments() bool {
	return c.DebugReport || c.Verbose
}

// HasProvenance reports whether any provenance mode is selected.
func (c *Config) HasProvenance() bool {
	return c.Provenance != ""
}
