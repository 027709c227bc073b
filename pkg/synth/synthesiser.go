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

// Package synth lowers a typed, index-analysed RAM program into a
// self-contained C++ compilation unit.  It is the compiler's last pass
// before the host compiler is invoked on the emitted artifact.
package synth

import (
	"sort"
	"strconv"
	"strings"

	"github.com/datalog-lang/go-datalog/pkg/ram"
	"github.com/datalog-lang/go-datalog/pkg/ram/analysis"
)

// TranslationUnit bundles everything the synthesiser consumes: the RAM
// program, its symbol table and the index analysis.
type TranslationUnit struct {
	Program     *ram.Program
	SymbolTable *ram.SymbolTable
	Analysis    *analysis.IndexAnalysis
}

// Synthesiser holds the process-lived state of one compilation: the
// identifier map, the emitted-type cache and the profile counter
// registries.  All counters are instance fields, so compilations are
// hermetic and a fresh Synthesiser always mints the same identifiers for
// the same program.
type Synthesiser struct {
	unit TranslationUnit
	cfg  Config
	// RAM name -> emitted identifier
	identifiers map[string]string
	// Container type names already emitted
	typeCache map[string]bool
	// Profile text -> dense frequency counter id (insertion ordered)
	freqIdx  map[string]int
	freqKeys []string
	// Relation read key -> dense read counter id (insertion ordered)
	readIdx  map[string]int
	readKeys []string
}

// New constructs a synthesiser for the given translation unit.
func New(unit TranslationUnit, cfg Config) *Synthesiser {
	return &Synthesiser{
		unit:        unit,
		cfg:         cfg,
		identifiers: make(map[string]string),
		typeCache:   make(map[string]bool),
		freqIdx:     make(map[string]int),
		readIdx:     make(map[string]int),
	}
}

// Maximum length of a minted identifier.  Most host compilers cap
// identifiers at 2048 characters (if at all); half of that is used for
// safety.
const maxIdentLength = 1024

// convertRamIdent maps a RAM symbolic name to a legal target identifier.
// The mapping is memoised and incorporates the insertion ordinal, so equal
// names convert equally and distinct names never collide.
func (s *Synthesiser) convertRamIdent(name string) string {
	if id, ok := s.identifiers[name]; ok {
		return id
	}
	// strip leading non-alphanumerics
	i := 0
	for ; i < len(name); i++ {
		if isAlnum(name[i]) || name[i] == '_' {
			break
		}
	}
	//
	var id []byte
	//
	for _, ch := range strconv.Itoa(len(s.identifiers)+1) + "_" + name[i:] {
		switch {
		case isAlnumRune(ch):
			id = append(id, byte(ch))
		case len(id) == 0 || id[len(id)-1] != '_':
			// all other characters are replaced by an underscore, except
			// when the previous character was an underscore as double
			// underscores in identifiers are reserved
			id = append(id, '_')
		}
	}
	//
	result := string(id)
	if len(result) > maxIdentLength {
		result = result[:maxIdentLength]
	}
	//
	s.identifiers[name] = result
	//
	return result
}

// relationName returns the emitted member name of a relation.
func (s *Synthesiser) relationName(rel *ram.Relation) string {
	return "rel_" + s.convertRamIdent(rel.Name)
}

// opContextName returns the emitted name of a relation's operation context.
func (s *Synthesiser) opContextName(rel *ram.Relation) string {
	return s.relationName(rel) + "_op_ctxt"
}

// lookupFreqIdx assigns a dense id to a frequency profile text.
func (s *Synthesiser) lookupFreqIdx(txt string) int {
	if idx, ok := s.freqIdx[txt]; ok {
		return idx
	}
	//
	idx := len(s.freqKeys)
	s.freqIdx[txt] = idx
	s.freqKeys = append(s.freqKeys, txt)
	//
	return idx
}

// lookupReadIdx assigns a dense id to a per-relation read counter key.
// Dashes are normalised to dots so the key parses as a profile path.
func (s *Synthesiser) lookupReadIdx(txt string) int {
	txt = strings.ReplaceAll(txt, "-", ".")
	//
	if idx, ok := s.readIdx[txt]; ok {
		return idx
	}
	//
	idx := len(s.readKeys)
	s.readIdx[txt] = idx
	s.readKeys = append(s.readKeys, txt)
	//
	return idx
}

// referencedRelations computes the set of relations transitively referenced
// by an operation tree: scans, aggregates, existence checks and projections
// all count.  Order is by relation name, so emission is deterministic.
func (s *Synthesiser) referencedRelations(op ram.Operation) []*ram.Relation {
	seen := make(map[*ram.Relation]bool)
	//
	ram.VisitDepthFirst(op, func(n ram.Node) {
		switch n := n.(type) {
		case *ram.Scan:
			seen[n.Relation] = true
		case *ram.ParallelScan:
			seen[n.Relation] = true
		case *ram.IndexScan:
			seen[n.Relation] = true
		case *ram.ParallelIndexScan:
			seen[n.Relation] = true
		case *ram.Choice:
			seen[n.Relation] = true
		case *ram.ParallelChoice:
			seen[n.Relation] = true
		case *ram.IndexChoice:
			seen[n.Relation] = true
		case *ram.ParallelIndexChoice:
			seen[n.Relation] = true
		case *ram.Aggregate:
			seen[n.Relation] = true
		case *ram.IndexAggregate:
			seen[n.Relation] = true
		case *ram.ExistenceCheck:
			seen[n.Relation] = true
		case *ram.ProvenanceExistenceCheck:
			seen[n.Relation] = true
		case *ram.Project:
			seen[n.Relation] = true
		}
	})
	//
	rels := make([]*ram.Relation, 0, len(seen))
	for rel := range seen {
		rels = append(rels, rel)
	}
	//
	sort.Slice(rels, func(i, j int) bool { return rels[i].Name < rels[j].Name })
	//
	return rels
}

func isAlnum(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9')
}

func isAlnumRune(ch rune) bool {
	return ch < 128 && isAlnum(byte(ch))
}
