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
	"regexp"
	"strings"
	"testing"

	"github.com/datalog-lang/go-datalog/pkg/ram"
	"github.com/datalog-lang/go-datalog/pkg/ram/analysis"
)

// Synthesise a program and return the emitted unit.
func generate(t *testing.T, prog *ram.Program, symbols *ram.SymbolTable, cfg Config) string {
	t.Helper()
	//
	var out bytes.Buffer
	//
	unit := TranslationUnit{Program: prog, SymbolTable: symbols, Analysis: analysis.Analyse(prog)}
	New(unit, cfg).Generate(&out, "test")
	//
	return out.String()
}

func assertContains(t *testing.T, output string, fragments ...string) {
	t.Helper()
	//
	for _, fragment := range fragments {
		if !strings.Contains(output, fragment) {
			t.Errorf("emitted unit does not contain %q", fragment)
		}
	}
}

func assertNotContains(t *testing.T, output string, fragments ...string) {
	t.Helper()
	//
	for _, fragment := range fragments {
		if strings.Contains(output, fragment) {
			t.Errorf("emitted unit contains unexpected %q", fragment)
		}
	}
}

func symbolRelation(name string, arity int) *ram.Relation {
	types := make([]string, arity)
	names := make([]string, arity)
	//
	for i := range types {
		types[i] = "s"
		names[i] = string(rune('x' + i))
	}
	//
	return &ram.Relation{
		Name: name, Arity: arity, AttributeNames: names, AttributeTypes: types,
	}
}

func numberRelation(name string, arity int) *ram.Relation {
	rel := symbolRelation(name, arity)
	//
	for i := range rel.AttributeTypes {
		rel.AttributeTypes[i] = "i"
	}
	//
	return rel
}

// Scenario: nullary fact and constant-head rule, N("0"). A("0",x) :- N(x).
func Test_Generate_01(t *testing.T) {
	var (
		symbols = ram.NewSymbolTable("0")
		relN    = symbolRelation("N", 1)
		relA    = symbolRelation("A", 2)
		zero    = int64(symbols.Lookup("0"))
	)
	//
	prog := &ram.Program{
		Relations: []*ram.Relation{relN, relA},
		Main: &ram.Sequence{Statements: []ram.Statement{
			&ram.Query{Operation: &ram.Project{
				Relation: relN,
				Values:   []ram.Expression{&ram.SignedConstant{Value: zero}},
			}},
			&ram.Query{Operation: &ram.Scan{
				Relation: relN,
				TupleID:  0,
				NestedOperation: ram.NestedOperation{Body: &ram.Project{
					Relation: relA,
					Values: []ram.Expression{
						&ram.SignedConstant{Value: zero},
						&ram.TupleElement{TupleID: 0, Element: 0},
					},
				}},
			}},
		}},
	}
	//
	output := generate(t, prog, symbols, Config{})
	//
	assertContains(t, output,
		"std::unique_ptr<t_btree_s__0> rel_1_N",
		"std::unique_ptr<t_btree_ss__0_1> rel_2_A",
		"Tuple<RamDomain,1> tuple{{static_cast<RamDomain>(RamSigned(0))}};",
		"rel_1_N->insert(tuple,READ_OP_CONTEXT(rel_1_N_op_ctxt));",
		"for(const auto& env0 : *rel_1_N) {",
		"Tuple<RamDomain,2> tuple{{static_cast<RamDomain>(RamSigned(0)),static_cast<RamDomain>(env0[0])}};",
		"rel_2_A->insert(tuple,READ_OP_CONTEXT(rel_2_A_op_ctxt));",
	)
}

// Scenario: outer parallel scan partitions the relation, creates contexts
// inside each worker and routes worker errors to the signal handler.
func Test_Generate_02(t *testing.T) {
	var (
		relEdge = numberRelation("edge", 2)
		relOut  = numberRelation("reach", 2)
	)
	//
	prog := &ram.Program{
		Relations: []*ram.Relation{relEdge, relOut},
		Main: &ram.Query{Operation: &ram.ParallelScan{
			Relation: relEdge,
			TupleID:  0,
			NestedOperation: ram.NestedOperation{Body: &ram.Project{
				Relation: relOut,
				Values: []ram.Expression{
					&ram.TupleElement{TupleID: 0, Element: 0},
					&ram.TupleElement{TupleID: 0, Element: 1},
				},
			}},
		}},
	}
	//
	output := generate(t, prog, ram.NewSymbolTable(), Config{})
	//
	assertContains(t, output,
		"auto part = rel_1_edge->partition();",
		"PARALLEL_START;",
		"pfor(auto it = part.begin(); it<part.end();++it){",
		"try{",
		"} catch(std::exception &e) { SignalHandler::instance()->error(e.what());}",
		"PARALLEL_END;",
	)
	// contexts are thread-local: created after the parallel region opens
	parallel := strings.Index(output, "PARALLEL_START;")
	context := strings.Index(output, "CREATE_OP_CONTEXT(rel_1_edge_op_ctxt")
	//
	if parallel < 0 || context < 0 || context < parallel {
		t.Errorf("operation contexts must be created inside the parallel region")
	}
}

// Scenario: COUNT over the trivial condition reduces to size() with no
// aggregation loop.
func Test_Generate_03(t *testing.T) {
	var (
		relEdge  = numberRelation("edge", 2)
		relCount = numberRelation("count", 1)
	)
	//
	prog := &ram.Program{
		Relations: []*ram.Relation{relEdge, relCount},
		Main: &ram.Query{Operation: &ram.Aggregate{
			Function:   ram.AggCount,
			Relation:   relEdge,
			TupleID:    1,
			Expression: &ram.SignedConstant{Value: 0},
			Condition:  &ram.True{},
			NestedOperation: ram.NestedOperation{Body: &ram.Project{
				Relation: relCount,
				Values:   []ram.Expression{&ram.TupleElement{TupleID: 1, Element: 0}},
			}},
		}},
	}
	//
	output := generate(t, prog, ram.NewSymbolTable(), Config{})
	//
	assertContains(t, output, "env1[0] = rel_1_edge->size();")
	assertNotContains(t, output, "res1")
}

// Scenario: a partial-key existence check conducts a range query with undef
// slots zeroed.
func Test_Generate_04(t *testing.T) {
	var (
		relEdge = numberRelation("edge", 2)
		relFact = numberRelation("fact", 1)
	)
	//
	prog := &ram.Program{
		Relations: []*ram.Relation{relEdge, relFact},
		Main: &ram.Query{Operation: &ram.Scan{
			Relation: relFact,
			TupleID:  0,
			NestedOperation: ram.NestedOperation{Body: &ram.Filter{
				Condition: &ram.ExistenceCheck{
					Relation: relEdge,
					Values: []ram.Expression{
						&ram.TupleElement{TupleID: 0, Element: 0},
						&ram.UndefValue{},
					},
				},
				NestedOperation: ram.NestedOperation{Body: &ram.Project{
					Relation: relFact,
					Values:   []ram.Expression{&ram.TupleElement{TupleID: 0, Element: 0}},
				}},
			}},
		}},
	}
	//
	output := generate(t, prog, ram.NewSymbolTable(), Config{})
	//
	assertContains(t, output,
		"!rel_1_edge->equalRange_1(Tuple<RamDomain,2>{{env0[0],0}},READ_OP_CONTEXT(rel_1_edge_op_ctxt)).empty()")
}

// Scenario: a total-key existence check is a point query via contains.
func Test_Generate_05(t *testing.T) {
	var (
		relEdge = numberRelation("edge", 2)
		relFact = numberRelation("fact", 1)
	)
	//
	prog := &ram.Program{
		Relations: []*ram.Relation{relEdge, relFact},
		Main: &ram.Query{Operation: &ram.Scan{
			Relation: relFact,
			TupleID:  0,
			NestedOperation: ram.NestedOperation{Body: &ram.Filter{
				Condition: &ram.ExistenceCheck{
					Relation: relEdge,
					Values: []ram.Expression{
						&ram.TupleElement{TupleID: 0, Element: 0},
						&ram.TupleElement{TupleID: 0, Element: 0},
					},
				},
				NestedOperation: ram.NestedOperation{Body: &ram.Project{
					Relation: relFact,
					Values:   []ram.Expression{&ram.TupleElement{TupleID: 0, Element: 0}},
				}},
			}},
		}},
	}
	//
	output := generate(t, prog, ram.NewSymbolTable(), Config{})
	//
	assertContains(t, output,
		"rel_1_edge->contains(Tuple<RamDomain,2>{{env0[0],env0[0]}},READ_OP_CONTEXT(rel_1_edge_op_ctxt))")
	assertNotContains(t, output, "equalRange_3(Tuple")
}

// Scenario: provenance existence with auxiliary arity 2 bounds the single
// height column.
func Test_Generate_06(t *testing.T) {
	relPath := &ram.Relation{
		Name: "path", Arity: 4, AuxiliaryArity: 2,
		AttributeNames: []string{"x", "y", "@rule", "@height"},
		AttributeTypes: []string{"i", "i", "i", "i"},
	}
	relFact := numberRelation("fact", 1)
	//
	prog := &ram.Program{
		Relations: []*ram.Relation{relPath, relFact},
		Main: &ram.Query{Operation: &ram.Scan{
			Relation: relFact,
			TupleID:  0,
			NestedOperation: ram.NestedOperation{Body: &ram.Filter{
				Condition: &ram.ProvenanceExistenceCheck{
					Relation: relPath,
					Values: []ram.Expression{
						&ram.TupleElement{TupleID: 0, Element: 0},
						&ram.TupleElement{TupleID: 0, Element: 0},
						&ram.UndefValue{},
						&ram.SignedConstant{Value: 5},
					},
				},
				NestedOperation: ram.NestedOperation{Body: &ram.Project{
					Relation: relFact,
					Values:   []ram.Expression{&ram.TupleElement{TupleID: 0, Element: 0}},
				}},
			}},
		}},
	}
	//
	output := generate(t, prog, ram.NewSymbolTable(), Config{Provenance: ProvenanceExplain})
	//
	assertContains(t, output,
		"[&]() -> bool {",
		"if (existenceCheck.empty()) return false; else return ((*existenceCheck.begin())[3] <= RamSigned(5))",
	)
	// with a single height column there is no lexicographic tie chain
	assertNotContains(t, output, " &&  !(")
}

// Scenario: a filter mixing an existence check with a pure comparison
// hoists the comparison outside the context-creation scope.
func Test_Generate_07(t *testing.T) {
	var (
		relEdge = numberRelation("edge", 2)
		relFact = numberRelation("fact", 1)
	)
	//
	prog := &ram.Program{
		Relations: []*ram.Relation{relEdge, relFact},
		Main: &ram.Query{Operation: &ram.Filter{
			Condition: &ram.Conjunction{
				LHS: &ram.Constraint{
					Op:  ram.LT,
					LHS: &ram.SignedConstant{Value: 1},
					RHS: &ram.SignedConstant{Value: 2},
				},
				RHS: &ram.ExistenceCheck{
					Relation: relEdge,
					Values: []ram.Expression{
						&ram.SignedConstant{Value: 1},
						&ram.SignedConstant{Value: 2},
					},
				},
			},
			NestedOperation: ram.NestedOperation{Body: &ram.Project{
				Relation: relFact,
				Values:   []ram.Expression{&ram.SignedConstant{Value: 1}},
			}},
		}},
	}
	//
	output := generate(t, prog, ram.NewSymbolTable(), Config{})
	//
	var (
		guard   = strings.Index(output, "if(((RamSigned(1)) < (RamSigned(2)))) {")
		scope   = strings.Index(output, "[&]()")
		context = strings.Index(output, "CREATE_OP_CONTEXT(rel_1_edge_op_ctxt")
		exists  = strings.Index(output, "rel_1_edge->contains(")
	)
	//
	if guard < 0 {
		t.Fatalf("context-free comparison was not hoisted")
	}
	//
	if !(guard < scope && scope < context && context < exists) {
		t.Errorf("expected hoisted guard before scope, contexts before existence check")
	}
}

// Each relation referenced by a query yields exactly one context, no matter
// how often it occurs in the nest.
func Test_Generate_08(t *testing.T) {
	relEdge := numberRelation("edge", 2)
	//
	prog := &ram.Program{
		Relations: []*ram.Relation{relEdge},
		Main: &ram.Query{Operation: &ram.Scan{
			Relation: relEdge,
			TupleID:  0,
			NestedOperation: ram.NestedOperation{Body: &ram.Project{
				Relation: relEdge,
				Values: []ram.Expression{
					&ram.TupleElement{TupleID: 0, Element: 1},
					&ram.TupleElement{TupleID: 0, Element: 0},
				},
			}},
		}},
	}
	//
	output := generate(t, prog, ram.NewSymbolTable(), Config{})
	//
	if n := strings.Count(output, "CREATE_OP_CONTEXT("); n != 1 {
		t.Errorf("expected exactly one context creation, found %d", n)
	}
}

// Structurally identical relations share one container type definition.
func Test_Generate_09(t *testing.T) {
	var (
		relA = numberRelation("a", 2)
		relB = numberRelation("b", 2)
	)
	//
	prog := &ram.Program{
		Relations: []*ram.Relation{relA, relB},
		Main: &ram.Query{Operation: &ram.Scan{
			Relation: relA,
			TupleID:  0,
			NestedOperation: ram.NestedOperation{Body: &ram.Project{
				Relation: relB,
				Values: []ram.Expression{
					&ram.TupleElement{TupleID: 0, Element: 0},
					&ram.TupleElement{TupleID: 0, Element: 1},
				},
			}},
		}},
	}
	//
	output := generate(t, prog, ram.NewSymbolTable(), Config{})
	//
	if n := strings.Count(output, "struct t_btree_ii__0_1 {"); n != 1 {
		t.Errorf("expected one type definition, found %d", n)
	}
}

// Emitting the same program twice yields byte-identical output.
func Test_Generate_10(t *testing.T) {
	prog, symbols := transitiveClosure()
	//
	first := generate(t, prog, symbols, Config{})
	second := generate(t, prog, symbols, Config{})
	//
	if first != second {
		t.Errorf("re-emission is not byte-identical")
	}
}

// Toggling debug-report only adds comment lines; stripping them recovers
// the plain output.
func Test_Generate_11(t *testing.T) {
	prog, symbols := transitiveClosure()
	//
	var (
		plain     = generate(t, prog, symbols, Config{})
		commented = generate(t, prog, symbols, Config{DebugReport: true})
		comments  = regexp.MustCompile(`/\* (BEGIN|END) [A-Za-z]+ \*/\n`)
	)
	//
	if plain == commented {
		t.Fatalf("debug-report made no difference")
	}
	//
	if stripped := comments.ReplaceAllString(commented, ""); stripped != plain {
		t.Errorf("stripping comments does not recover the plain output")
	}
}

// Under profiling, counter array sizes equal the number of registered keys.
func Test_Generate_12(t *testing.T) {
	prog, symbols := transitiveClosure()
	//
	output := generate(t, prog, symbols, Config{ProfileEnabled: true, ProfileName: "p.log"})
	//
	assertContains(t, output,
		"size_t freqs[1]{};",
		"size_t reads[1]{};",
		"freqs[0]++;",
		"(reads[0]++,",
		"dumpFreqs();",
		"makeQuantityEvent(R\"_(@relation-reads;path)_\", reads[0],0);",
	)
}

// A fixpoint loop: path(x,y) :- edge(x,y). path(x,z) :- path(x,y), edge(y,z),
// with a frequency annotation and an exit condition.
func transitiveClosure() (*ram.Program, *ram.SymbolTable) {
	var (
		relEdge  = numberRelation("edge", 2)
		relPath  = numberRelation("path", 2)
		relDelta = numberRelation("@delta_path", 2)
	)
	//
	relDelta.Temp = true
	//
	rule := &ram.Query{Operation: &ram.Scan{
		Relation: relDelta,
		TupleID:  0,
		NestedOperation: ram.NestedOperation{
			ProfileText: "path(x,z) :- path(x,y), edge(y,z).",
			Body: &ram.IndexScan{
				Relation: relEdge,
				TupleID:  1,
				RangePattern: []ram.Expression{
					&ram.TupleElement{TupleID: 0, Element: 1},
					&ram.UndefValue{},
				},
				NestedOperation: ram.NestedOperation{Body: &ram.Filter{
					Condition: &ram.Negation{Operand: &ram.ExistenceCheck{
						Relation: relPath,
						Values: []ram.Expression{
							&ram.TupleElement{TupleID: 0, Element: 0},
							&ram.TupleElement{TupleID: 1, Element: 1},
						},
					}},
					NestedOperation: ram.NestedOperation{Body: &ram.Project{
						Relation: relPath,
						Values: []ram.Expression{
							&ram.TupleElement{TupleID: 0, Element: 0},
							&ram.TupleElement{TupleID: 1, Element: 1},
						},
					}},
				}},
			},
		},
	}}
	//
	prog := &ram.Program{
		Relations: []*ram.Relation{relEdge, relPath, relDelta},
		Main: &ram.Sequence{Statements: []ram.Statement{
			&ram.Load{Relation: relEdge, Directives: []ram.Directives{
				{"IO": "file", "filename": "edge.facts"},
			}},
			&ram.Loop{Body: &ram.Sequence{Statements: []ram.Statement{
				rule,
				&ram.Exit{Condition: &ram.EmptinessCheck{Relation: relDelta}},
				&ram.Swap{First: relDelta, Second: relPath},
				&ram.Clear{Relation: relDelta},
			}}},
			&ram.Store{Relation: relPath, Directives: []ram.Directives{
				{"IO": "file", "filename": "path.csv"},
			}},
		}},
	}
	//
	return prog, ram.NewSymbolTable()
}

// The fixpoint program assembles the full scaffolding.
func Test_Generate_13(t *testing.T) {
	prog, symbols := transitiveClosure()
	//
	output := generate(t, prog, symbols, Config{})
	//
	assertContains(t, output,
		"#include \"souffle/CompiledSouffle.h\"",
		"class Sf_test : public SouffleProgram {",
		"iter = 0;\nfor(;;) {",
		"if(rel_3_delta_path->empty()) break;",
		"std::swap(rel_3_delta_path, rel_2_path);",
		"if (!isHintsProfilingEnabled()) rel_3_delta_path->purge();",
		"{{\"IO\",\"file\"},{\"filename\",\"edge.facts\"}}",
		"readAll(*rel_1_edge);",
		"writeAll(*rel_2_path);",
		"addRelation(\"edge\",&wrapper_rel_1_edge,true,false);",
		"addRelation(\"path\",&wrapper_rel_2_path,false,true);",
		"void loadAll(std::string inputDirectory = \".\") override {",
		"void printAll(std::string outputDirectory = \".\") override {",
		"void dumpInputs(std::ostream& out = std::cout) override {",
		"void dumpOutputs(std::ostream& out = std::cout) override {",
		"SouffleProgram *newInstance_test(){return new Sf_test;}",
		"int main(int argc, char** argv)",
	)
	// temporary relations get no wrapper
	assertNotContains(t, output, "wrapper_rel_3_delta_path")
}
