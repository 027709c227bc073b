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

import (
	"strings"
	"testing"

	"github.com/datalog-lang/go-datalog/pkg/ram"
	"github.com/datalog-lang/go-datalog/pkg/ram/analysis"
)

func emptySynthesiser() *Synthesiser {
	prog := &ram.Program{Main: &ram.Sequence{}}
	//
	return New(TranslationUnit{
		Program:     prog,
		SymbolTable: ram.NewSymbolTable(),
		Analysis:    analysis.Analyse(prog),
	}, Config{})
}

func Test_ConvertRamIdent_01(t *testing.T) {
	ConvertCheck(t, "edge", "1_edge")
}

func Test_ConvertRamIdent_02(t *testing.T) {
	ConvertCheck(t, "@delta_path", "1_delta_path")
}

func Test_ConvertRamIdent_03(t *testing.T) {
	ConvertCheck(t, "a--b", "1_a_b")
}

func Test_ConvertRamIdent_04(t *testing.T) {
	ConvertCheck(t, "???", "1_")
}

func ConvertCheck(t *testing.T, name string, expected string) {
	s := emptySynthesiser()
	//
	if id := s.convertRamIdent(name); id != expected {
		t.Errorf("converted %q to %q, expected %q", name, id, expected)
	}
}

// Equal names convert equally; distinct names never collide.
func Test_ConvertRamIdent_05(t *testing.T) {
	s := emptySynthesiser()
	//
	first := s.convertRamIdent("edge")
	second := s.convertRamIdent("path")
	//
	if first == second {
		t.Errorf("distinct names minted the same identifier %q", first)
	}
	//
	if again := s.convertRamIdent("edge"); again != first {
		t.Errorf("repeated conversion changed %q to %q", first, again)
	}
}

// Near-collisions are kept apart by the ordinal prefix.
func Test_ConvertRamIdent_06(t *testing.T) {
	s := emptySynthesiser()
	//
	first := s.convertRamIdent("a_b")
	second := s.convertRamIdent("a-b")
	//
	if first == second {
		t.Errorf("names %q and %q minted the same identifier", "a_b", "a-b")
	}
}

// Identifier alphabet is [A-Za-z0-9_] with no two consecutive underscores.
func Test_ConvertRamIdent_07(t *testing.T) {
	s := emptySynthesiser()
	//
	for _, name := range []string{"x!!y", "--a--", "p.q.r", "m~n", "@new_path"} {
		id := s.convertRamIdent(name)
		//
		if strings.Contains(id, "__") {
			t.Errorf("identifier %q contains consecutive underscores", id)
		}
		//
		for _, ch := range id {
			alnum := (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') ||
				(ch >= '0' && ch <= '9') || ch == '_'
			if !alnum {
				t.Errorf("identifier %q contains illegal character %q", id, ch)
			}
		}
	}
}

// Overly long names are truncated, not rejected.
func Test_ConvertRamIdent_08(t *testing.T) {
	s := emptySynthesiser()
	//
	id := s.convertRamIdent(strings.Repeat("x", 4096))
	//
	if len(id) != 1024 {
		t.Errorf("expected identifier of length 1024, got %d", len(id))
	}
}

// Conversion is idempotent once the first mapping is seeded.
func Test_ConvertRamIdent_09(t *testing.T) {
	s := emptySynthesiser()
	//
	id := s.convertRamIdent("7edge")
	//
	if again := s.convertRamIdent("7edge"); again != id {
		t.Errorf("re-seeded conversion changed %q to %q", id, again)
	}
}

func Test_RelationName_01(t *testing.T) {
	s := emptySynthesiser()
	rel := &ram.Relation{Name: "edge", Arity: 2}
	//
	if name := s.relationName(rel); name != "rel_1_edge" {
		t.Errorf("unexpected relation name %q", name)
	}
	//
	if name := s.opContextName(rel); name != "rel_1_edge_op_ctxt" {
		t.Errorf("unexpected context name %q", name)
	}
}

func Test_FreqIdx_01(t *testing.T) {
	s := emptySynthesiser()
	//
	if idx := s.lookupFreqIdx("rule one"); idx != 0 {
		t.Errorf("first key assigned %d", idx)
	}
	//
	if idx := s.lookupFreqIdx("rule two"); idx != 1 {
		t.Errorf("second key assigned %d", idx)
	}
	//
	if idx := s.lookupFreqIdx("rule one"); idx != 0 {
		t.Errorf("repeated key reassigned to %d", idx)
	}
	//
	if len(s.freqKeys) != 2 {
		t.Errorf("registry holds %d keys, expected 2", len(s.freqKeys))
	}
}

// Dashes in read keys are normalised to dots before interning.
func Test_ReadIdx_01(t *testing.T) {
	s := emptySynthesiser()
	//
	first := s.lookupReadIdx("a-b-c")
	second := s.lookupReadIdx("a.b.c")
	//
	if first != second {
		t.Errorf("normalised keys assigned distinct ids %d and %d", first, second)
	}
	//
	if len(s.readKeys) != 1 {
		t.Errorf("registry holds %d keys, expected 1", len(s.readKeys))
	}
	//
	if s.readKeys[0] != "a.b.c" {
		t.Errorf("registry holds %q", s.readKeys[0])
	}
}
