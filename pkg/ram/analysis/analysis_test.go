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
package analysis

import (
	"reflect"
	"testing"

	"github.com/datalog-lang/go-datalog/pkg/ram"
)

func Test_Signature_01(t *testing.T) {
	pattern := []ram.Expression{
		&ram.SignedConstant{Value: 1},
		&ram.UndefValue{},
		&ram.TupleElement{TupleID: 0, Element: 0},
	}
	//
	if sig := SignatureFromPattern(pattern); sig != 0b101 {
		t.Errorf("derived signature %s", sig)
	}
}

func Test_Signature_02(t *testing.T) {
	if sig := TotalSignature(3); sig != 0b111 {
		t.Errorf("total signature of arity 3 is %s", sig)
	}
	//
	if !TotalSignature(3).Contains(0b101) {
		t.Errorf("total signature does not contain a partial one")
	}
	//
	if SearchSignature(0b101).Count() != 2 {
		t.Errorf("wrong popcount")
	}
}

func Test_Signature_03(t *testing.T) {
	cols := SearchSignature(0b1101).Columns()
	//
	if !reflect.DeepEqual(cols, []uint32{0, 2, 3}) {
		t.Errorf("columns %v", cols)
	}
}

// Subset-chained signatures share one index whose prefix serves them all.
func Test_Selection_01(t *testing.T) {
	selection := NewIndexSelection(2, []SearchSignature{0b01, 0b11})
	//
	orders := selection.Orders()
	if len(orders) != 1 {
		t.Fatalf("expected one index, got %d", len(orders))
	}
	//
	if !reflect.DeepEqual(orders[0], []uint32{0, 1}) {
		t.Errorf("unexpected order %v", orders[0])
	}
	//
	if p := selection.Placement(0b01); p.Index != 0 || p.Prefix != 1 {
		t.Errorf("signature 1 placed at %v", p)
	}
	//
	if p := selection.Placement(0b11); p.Index != 0 || p.Prefix != 2 {
		t.Errorf("signature 3 placed at %v", p)
	}
}

// A signature over later columns orders them first, padded to full arity.
func Test_Selection_02(t *testing.T) {
	selection := NewIndexSelection(3, []SearchSignature{0b100})
	//
	orders := selection.Orders()
	if len(orders) != 1 {
		t.Fatalf("expected one index, got %d", len(orders))
	}
	//
	if !reflect.DeepEqual(orders[0], []uint32{2, 0, 1}) {
		t.Errorf("unexpected order %v", orders[0])
	}
}

// Disjoint signatures require separate indexes.
func Test_Selection_03(t *testing.T) {
	selection := NewIndexSelection(2, []SearchSignature{0b01, 0b10})
	//
	if len(selection.Orders()) != 2 {
		t.Errorf("expected two indexes, got %d", len(selection.Orders()))
	}
}

// A relation with no searches still carries one full index.
func Test_Selection_04(t *testing.T) {
	selection := NewIndexSelection(3, nil)
	//
	orders := selection.Orders()
	if len(orders) != 1 || !reflect.DeepEqual(orders[0], []uint32{0, 1, 2}) {
		t.Errorf("unexpected default selection %v", orders)
	}
}

// Duplicate and empty signatures are dropped from the search set.
func Test_Selection_05(t *testing.T) {
	selection := NewIndexSelection(2, []SearchSignature{0, 0b01, 0b01})
	//
	if searches := selection.Searches(); len(searches) != 1 || searches[0] != 0b01 {
		t.Errorf("unexpected search set %v", searches)
	}
}

func indexedProgram() (*ram.Program, *ram.IndexScan, *ram.ExistenceCheck) {
	relEdge := &ram.Relation{Name: "edge", Arity: 2,
		AttributeNames: []string{"x", "y"}, AttributeTypes: []string{"i", "i"}}
	//
	exists := &ram.ExistenceCheck{
		Relation: relEdge,
		Values: []ram.Expression{
			&ram.TupleElement{TupleID: 0, Element: 0},
			&ram.TupleElement{TupleID: 0, Element: 1},
		},
	}
	//
	iscan := &ram.IndexScan{
		Relation: relEdge,
		TupleID:  1,
		RangePattern: []ram.Expression{
			&ram.TupleElement{TupleID: 0, Element: 1},
			&ram.UndefValue{},
		},
		NestedOperation: ram.NestedOperation{Body: &ram.Filter{
			Condition: exists,
			NestedOperation: ram.NestedOperation{Body: &ram.Project{
				Relation: relEdge,
				Values: []ram.Expression{
					&ram.TupleElement{TupleID: 1, Element: 0},
					&ram.TupleElement{TupleID: 1, Element: 1},
				},
			}},
		}},
	}
	//
	prog := &ram.Program{
		Relations: []*ram.Relation{relEdge},
		Main: &ram.Query{Operation: &ram.Scan{
			Relation:        relEdge,
			TupleID:         0,
			NestedOperation: ram.NestedOperation{Body: iscan},
		}},
	}
	//
	return prog, iscan, exists
}

func Test_Analyse_01(t *testing.T) {
	prog, iscan, exists := indexedProgram()
	//
	a := Analyse(prog)
	//
	if sig := a.SearchSignature(iscan); sig != 0b01 {
		t.Errorf("index scan signature %s", sig)
	}
	//
	if a.IsTotalSignature(iscan) {
		t.Errorf("partial scan reported total")
	}
	//
	if sig := a.SearchSignature(exists); sig != 0b11 {
		t.Errorf("existence signature %s", sig)
	}
	//
	if !a.IsTotalSignature(exists) {
		t.Errorf("full existence check not reported total")
	}
	// both signatures chain onto a single index
	if orders := a.Indexes(prog.Relations[0]); len(orders) != 1 {
		t.Errorf("expected one index, got %d", len(orders))
	}
}

// The analysis is deterministic across runs.
func Test_Analyse_02(t *testing.T) {
	prog, _, _ := indexedProgram()
	//
	first := Analyse(prog).Indexes(prog.Relations[0])
	second := Analyse(prog).Indexes(prog.Relations[0])
	//
	if !reflect.DeepEqual(first, second) {
		t.Errorf("index selection differs between runs")
	}
}
