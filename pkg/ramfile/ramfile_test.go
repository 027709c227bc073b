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
package ramfile

import (
	"testing"

	"github.com/datalog-lang/go-datalog/pkg/ram"
)

func roundTripProgram() *ram.Program {
	relEdge := &ram.Relation{Name: "edge", Arity: 2,
		AttributeNames: []string{"x", "y"}, AttributeTypes: []string{"i", "i"}}
	//
	return &ram.Program{
		Relations: []*ram.Relation{relEdge},
		Main: &ram.Sequence{Statements: []ram.Statement{
			&ram.Load{Relation: relEdge, Directives: []ram.Directives{
				{"IO": "file", "filename": "edge.facts"},
			}},
			&ram.Query{Operation: &ram.Scan{
				Relation: relEdge,
				TupleID:  0,
				NestedOperation: ram.NestedOperation{Body: &ram.Filter{
					Condition: &ram.Conjunction{
						LHS: &ram.True{},
						RHS: &ram.Negation{Operand: &ram.ExistenceCheck{
							Relation: relEdge,
							Values: []ram.Expression{
								&ram.TupleElement{TupleID: 0, Element: 1},
								&ram.UndefValue{},
							},
						}},
					},
					NestedOperation: ram.NestedOperation{Body: &ram.Project{
						Relation: relEdge,
						Values: []ram.Expression{
							&ram.TupleElement{TupleID: 0, Element: 1},
							&ram.TupleElement{TupleID: 0, Element: 0},
						},
					}},
				}},
			}},
		}},
	}
}

func Test_RoundTrip_01(t *testing.T) {
	var (
		prog    = roundTripProgram()
		symbols = ram.NewSymbolTable("a", "b")
	)
	//
	data, err := Encode(prog, symbols)
	if err != nil {
		t.Fatalf("encoding failed: %s", err)
	}
	//
	decoded, decodedSymbols, err := Decode(data)
	if err != nil {
		t.Fatalf("decoding failed: %s", err)
	}
	//
	if len(decoded.Relations) != 1 || decoded.Relations[0].Name != "edge" {
		t.Fatalf("relations not preserved")
	}
	//
	if decodedSymbols.Size() != 2 || decodedSymbols.Resolve(0) != "a" {
		t.Errorf("symbol table not preserved")
	}
	// the decoded tree has the same shape
	count := func(p *ram.Program) int {
		n := 0
		ram.VisitDepthFirst(p, func(ram.Node) { n++ })
		//
		return n
	}
	//
	if count(decoded) != count(prog) {
		t.Errorf("decoded tree has %d nodes, expected %d", count(decoded), count(prog))
	}
}

// Relation references are canonicalised against the program's relation
// list, preserving pointer identity across the tree.
func Test_RoundTrip_02(t *testing.T) {
	prog := roundTripProgram()
	//
	data, err := Encode(prog, ram.NewSymbolTable())
	if err != nil {
		t.Fatalf("encoding failed: %s", err)
	}
	//
	decoded, _, err := Decode(data)
	if err != nil {
		t.Fatalf("decoding failed: %s", err)
	}
	//
	canonical := decoded.Relations[0]
	//
	ram.VisitDepthFirst(decoded, func(n ram.Node) {
		switch n := n.(type) {
		case *ram.Scan:
			if n.Relation != canonical {
				t.Errorf("scan references a non-canonical relation")
			}
		case *ram.ExistenceCheck:
			if n.Relation != canonical {
				t.Errorf("existence check references a non-canonical relation")
			}
		case *ram.Project:
			if n.Relation != canonical {
				t.Errorf("projection references a non-canonical relation")
			}
		}
	})
}

func Test_Decode_01(t *testing.T) {
	if _, _, err := Decode([]byte("not a ram file")); err == nil {
		t.Errorf("expected a decoding error")
	}
}

// The JSON program form round-trips the same trees as the gob encoding.
func Test_Json_01(t *testing.T) {
	var (
		prog    = roundTripProgram()
		symbols = ram.NewSymbolTable("a", "b")
	)
	//
	data, err := ToJson(prog, symbols)
	if err != nil {
		t.Fatalf("writing failed: %s", err)
	}
	//
	decoded, decodedSymbols, err := FromJson(data)
	if err != nil {
		t.Fatalf("parsing failed: %s", err)
	}
	//
	if len(decoded.Relations) != 1 || decoded.Relations[0].Name != "edge" {
		t.Fatalf("relations not preserved")
	}
	//
	if decodedSymbols.Size() != 2 || decodedSymbols.Resolve(1) != "b" {
		t.Errorf("symbol table not preserved")
	}
	// writing the decoded tree again yields the same text
	again, err := ToJson(decoded, decodedSymbols)
	if err != nil {
		t.Fatalf("rewriting failed: %s", err)
	}
	//
	if string(data) != string(again) {
		t.Errorf("JSON round trip is not stable")
	}
}

// A hand-written JSON program parses with relations resolved by name.
func Test_Json_02(t *testing.T) {
	source := `{
	  "relations": [
	    {"name": "edge", "arity": 2,
	     "attributeNames": ["x", "y"], "attributeTypes": ["i", "i"]}
	  ],
	  "main": {
	    "kind": "query",
	    "operation": {
	      "kind": "scan", "relation": "edge",
	      "body": {
	        "kind": "filter",
	        "condition": {
	          "kind": "constraint", "op": "lt",
	          "lhs": {"kind": "element", "element": 0},
	          "rhs": {"kind": "element", "element": 1}
	        },
	        "body": {
	          "kind": "project", "relation": "edge",
	          "values": [
	            {"kind": "element", "element": 1},
	            {"kind": "element", "element": 0}
	          ]
	        }
	      }
	    }
	  }
	}`
	//
	prog, _, err := FromJson([]byte(source))
	if err != nil {
		t.Fatalf("parsing failed: %s", err)
	}
	//
	canonical := prog.Relations[0]
	//
	ram.VisitDepthFirst(prog, func(n ram.Node) {
		switch n := n.(type) {
		case *ram.Scan:
			if n.Relation != canonical {
				t.Errorf("scan references a non-canonical relation")
			}
		case *ram.Project:
			if n.Relation != canonical {
				t.Errorf("projection references a non-canonical relation")
			}
		case *ram.Constraint:
			if n.Op != ram.LT {
				t.Errorf("constraint operator parsed as %s", n.Op.Name())
			}
		}
	})
}

// Unknown node kinds and undeclared relations are parse errors.
func Test_Json_03(t *testing.T) {
	cases := []string{
		`{"relations": [], "main": {"kind": "teleport"}}`,
		`{"relations": [], "main": {"kind": "clear", "relation": "ghost"}}`,
		`{"relations": []}`,
	}
	//
	for _, source := range cases {
		if _, _, err := FromJson([]byte(source)); err == nil {
			t.Errorf("expected a parse error for %s", source)
		}
	}
}
