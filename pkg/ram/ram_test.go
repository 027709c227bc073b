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
package ram

import (
	"testing"
)

func Test_ConjunctionList_01(t *testing.T) {
	ConjunctionCheck(t, &True{}, 1)
}

func Test_ConjunctionList_02(t *testing.T) {
	cond := &Conjunction{LHS: &True{}, RHS: &False{}}
	ConjunctionCheck(t, cond, 2)
}

func Test_ConjunctionList_03(t *testing.T) {
	cond := &Conjunction{
		LHS: &Conjunction{LHS: &True{}, RHS: &False{}},
		RHS: &EmptinessCheck{Relation: &Relation{Name: "r"}},
	}
	ConjunctionCheck(t, cond, 3)
}

func ConjunctionCheck(t *testing.T, cond Condition, expected int) {
	conjuncts := ToConjunctionList(cond)
	//
	if len(conjuncts) != expected {
		t.Errorf("expected %d conjuncts, got %d", expected, len(conjuncts))
	}
	// folding the list back preserves the conjunct count
	if again := ToConjunctionList(ToCondition(conjuncts)); len(again) != expected {
		t.Errorf("refolding changed conjunct count to %d", len(again))
	}
}

// The empty list folds to the trivially true condition.
func Test_ToCondition_01(t *testing.T) {
	if !IsTrue(ToCondition(nil)) {
		t.Errorf("empty conjunct list did not fold to true")
	}
}

func Test_SymbolTable_01(t *testing.T) {
	table := NewSymbolTable("a", "b")
	//
	if table.Size() != 2 {
		t.Errorf("expected 2 symbols, got %d", table.Size())
	}
	//
	if idx := table.Lookup("a"); idx != 0 {
		t.Errorf("symbol a has index %d", idx)
	}
	//
	if idx := table.Lookup("c"); idx != 2 {
		t.Errorf("fresh symbol interned at %d", idx)
	}
	//
	if sym := table.Resolve(1); sym != "b" {
		t.Errorf("index 1 resolves to %q", sym)
	}
}

func Test_VisitDepthFirst_01(t *testing.T) {
	rel := &Relation{Name: "edge", Arity: 2,
		AttributeNames: []string{"x", "y"}, AttributeTypes: []string{"i", "i"}}
	//
	query := &Query{Operation: &Scan{
		Relation: rel,
		TupleID:  0,
		NestedOperation: NestedOperation{Body: &Filter{
			Condition: &Constraint{
				Op:  LT,
				LHS: &TupleElement{TupleID: 0, Element: 0},
				RHS: &TupleElement{TupleID: 0, Element: 1},
			},
			NestedOperation: NestedOperation{Body: &Project{
				Relation: rel,
				Values:   []Expression{&TupleElement{TupleID: 0, Element: 0}},
			}},
		}},
	}}
	// expected: query, scan, filter, constraint, 2 elements, project, 1 element
	count := 0
	VisitDepthFirst(query, func(Node) { count++ })
	//
	if count != 8 {
		t.Errorf("visited %d nodes, expected 8", count)
	}
	// conditions and expressions are reachable
	constraints, elements := 0, 0
	//
	VisitDepthFirst(query, func(n Node) {
		switch n.(type) {
		case *Constraint:
			constraints++
		case *TupleElement:
			elements++
		}
	})
	//
	if constraints != 1 || elements != 3 {
		t.Errorf("found %d constraints and %d tuple elements", constraints, elements)
	}
}

func Test_Directives_01(t *testing.T) {
	directives := Directives{"filename": "edge.facts", "IO": "file"}
	//
	expected := `{{"IO","file"},{"filename","edge.facts"}}`
	if s := directives.String(); s != expected {
		t.Errorf("directives render as %s", s)
	}
}

// Quotes and backslashes in directive values are escaped.
func Test_Directives_02(t *testing.T) {
	directives := Directives{"filename": `a"b\c`}
	//
	expected := `{{"filename","a\"b\\c"}}`
	if s := directives.String(); s != expected {
		t.Errorf("directives render as %s", s)
	}
}
