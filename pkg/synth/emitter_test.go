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
	"bytes"
	"testing"

	"github.com/datalog-lang/go-datalog/pkg/ram"
	"github.com/datalog-lang/go-datalog/pkg/ram/analysis"
)

// Named subroutines become numbered subproof methods behind a string
// dispatcher.
func Test_Subroutines_01(t *testing.T) {
	relEdge := numberRelation("edge", 2)
	//
	body := &ram.Query{Operation: &ram.Scan{
		Relation: relEdge,
		TupleID:  0,
		NestedOperation: ram.NestedOperation{Body: &ram.Filter{
			Condition: &ram.Constraint{
				Op:  ram.EQ,
				LHS: &ram.TupleElement{TupleID: 0, Element: 0},
				RHS: &ram.SubroutineArgument{Index: 0},
			},
			NestedOperation: ram.NestedOperation{Body: &ram.SubroutineReturnValue{
				Values: []ram.Expression{
					&ram.TupleElement{TupleID: 0, Element: 1},
					&ram.UndefValue{},
				},
			}},
		}},
	}}
	//
	prog := &ram.Program{
		Relations:   []*ram.Relation{relEdge},
		Main:        &ram.Sequence{},
		Subroutines: []ram.Subroutine{{Name: "edge_subproof", Body: body}},
	}
	//
	output := generate(t, prog, ram.NewSymbolTable(), Config{Provenance: ProvenanceExplain})
	//
	assertContains(t, output,
		"#include \"souffle/Explain.h\"",
		"void executeSubroutine(std::string name, const std::vector<RamDomain>& args, std::vector<RamDomain>& ret) override {",
		"if (name == \"edge_subproof\") {",
		"subproof_0(args, ret);",
		"std::mutex lock;",
		"std::lock_guard<std::mutex> guard(lock);",
		"ret.push_back(env0[1]);",
		"ret.push_back(0);",
		"(args)[0]",
	)
}

// Under subtree heights, copyIndex touches every relation exposing
// provenance indexes.
func Test_Subroutines_02(t *testing.T) {
	relPath := &ram.Relation{
		Name: "path", Arity: 3, AuxiliaryArity: 1,
		AttributeNames: []string{"x", "y", "@height"},
		AttributeTypes: []string{"i", "i", "i"},
	}
	//
	prog := &ram.Program{
		Relations: []*ram.Relation{relPath},
		Main: &ram.Query{Operation: &ram.Project{
			Relation: relPath,
			Values: []ram.Expression{
				&ram.SignedConstant{Value: 1},
				&ram.SignedConstant{Value: 2},
				&ram.SignedConstant{Value: 0},
			},
		}},
	}
	//
	output := generate(t, prog, ram.NewSymbolTable(), Config{Provenance: ProvenanceSubtreeHeights})
	//
	assertContains(t, output,
		"void copyIndex() {",
		"rel_1_path->copyIndex();",
		"obj.copyIndex();",
		"explain(obj, false, true);",
	)
}

func assertPanics(t *testing.T, what string, fn func()) {
	t.Helper()
	//
	defer func() {
		if recover() == nil {
			t.Errorf("expected %s to fail", what)
		}
	}()
	//
	fn()
}

// An undefined value outside a range pattern is a compilation error.
func Test_Errors_01(t *testing.T) {
	relFact := numberRelation("fact", 1)
	//
	prog := &ram.Program{
		Relations: []*ram.Relation{relFact},
		Main: &ram.Query{Operation: &ram.Project{
			Relation: relFact,
			Values:   []ram.Expression{&ram.UndefValue{}},
		}},
	}
	//
	assertPanics(t, "projecting an undefined value", func() {
		unit := TranslationUnit{
			Program:     prog,
			SymbolTable: ram.NewSymbolTable(),
			Analysis:    analysis.Analyse(prog),
		}
		New(unit, Config{}).Generate(&bytes.Buffer{}, "test")
	})
}

// A parallel operation must bind tuple id 0.
func Test_Errors_02(t *testing.T) {
	relEdge := numberRelation("edge", 2)
	//
	prog := &ram.Program{
		Relations: []*ram.Relation{relEdge},
		Main: &ram.Query{Operation: &ram.Scan{
			Relation: relEdge,
			TupleID:  0,
			NestedOperation: ram.NestedOperation{Body: &ram.ParallelScan{
				Relation: relEdge,
				TupleID:  1,
				NestedOperation: ram.NestedOperation{Body: &ram.Project{
					Relation: relEdge,
					Values: []ram.Expression{
						&ram.TupleElement{TupleID: 1, Element: 0},
						&ram.TupleElement{TupleID: 1, Element: 1},
					},
				}},
			}},
		}},
	}
	//
	assertPanics(t, "a nested parallel scan", func() {
		unit := TranslationUnit{
			Program:     prog,
			SymbolTable: ram.NewSymbolTable(),
			Analysis:    analysis.Analyse(prog),
		}
		New(unit, Config{}).Generate(&bytes.Buffer{}, "test")
	})
}

// Scans over nullary relations are structural errors.
func Test_Errors_03(t *testing.T) {
	relNull := &ram.Relation{Name: "flag"}
	//
	prog := &ram.Program{
		Relations: []*ram.Relation{relNull},
		Main: &ram.Query{Operation: &ram.Scan{
			Relation: relNull,
			TupleID:  0,
			NestedOperation: ram.NestedOperation{Body: &ram.Project{
				Relation: relNull,
			}},
		}},
	}
	//
	assertPanics(t, "scanning a nullary relation", func() {
		unit := TranslationUnit{
			Program:     prog,
			SymbolTable: ram.NewSymbolTable(),
			Analysis:    analysis.Analyse(prog),
		}
		New(unit, Config{}).Generate(&bytes.Buffer{}, "test")
	})
}
