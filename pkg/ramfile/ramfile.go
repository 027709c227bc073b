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

// Package ramfile reads and writes RAM translation units as gob-encoded
// files, the interchange format between the translator front-end and this
// backend, and also in a human-readable JSON program form (ToJson/FromJson).
package ramfile

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/datalog-lang/go-datalog/pkg/ram"
)

// File is the on-disk form of a RAM translation unit: the program plus the
// interned symbols of its symbol table.
type File struct {
	Program *ram.Program
	Symbols []string
}

// Gob needs every concrete node type registered before interface-typed
// fields can be decoded.
//
//nolint:gochecknoinits
func init() {
	for _, n := range []any{
		// statements
		&ram.Sequence{}, &ram.Parallel{}, &ram.Loop{}, &ram.Exit{},
		&ram.Swap{}, &ram.Extend{}, &ram.Clear{}, &ram.Load{}, &ram.Store{},
		&ram.LogSize{}, &ram.LogRelationTimer{}, &ram.LogTimer{},
		&ram.DebugInfo{}, &ram.Query{},
		// operations
		&ram.Scan{}, &ram.ParallelScan{}, &ram.IndexScan{}, &ram.ParallelIndexScan{},
		&ram.Choice{}, &ram.ParallelChoice{}, &ram.IndexChoice{}, &ram.ParallelIndexChoice{},
		&ram.Aggregate{}, &ram.IndexAggregate{}, &ram.UnpackRecord{},
		&ram.Filter{}, &ram.Break{}, &ram.Project{},
		// conditions
		&ram.True{}, &ram.False{}, &ram.Conjunction{}, &ram.Negation{},
		&ram.Constraint{}, &ram.EmptinessCheck{}, &ram.ExistenceCheck{},
		&ram.ProvenanceExistenceCheck{},
		// expressions
		&ram.SignedConstant{}, &ram.UnsignedConstant{}, &ram.FloatConstant{},
		&ram.TupleElement{}, &ram.AutoIncrement{}, &ram.IntrinsicOperator{},
		&ram.UserDefinedOperator{}, &ram.PackRecord{}, &ram.SubroutineArgument{},
		&ram.SubroutineReturnValue{}, &ram.UndefValue{},
	} {
		gob.Register(n)
	}
}

// Encode serialises a program and its symbol table.
func Encode(prog *ram.Program, symbols *ram.SymbolTable) ([]byte, error) {
	var buffer bytes.Buffer
	//
	file := File{Program: prog, Symbols: symbols.Symbols()}
	//
	if err := gob.NewEncoder(&buffer).Encode(file); err != nil {
		return nil, fmt.Errorf("encoding RAM program: %w", err)
	}
	//
	return buffer.Bytes(), nil
}

// Decode deserialises a program and its symbol table.  Relation references
// throughout the decoded tree are re-canonicalised against the program's
// relation list, since gob clones shared pointers per reference site while
// the rest of the backend relies on relation identity.
func Decode(data []byte) (*ram.Program, *ram.SymbolTable, error) {
	var file File
	//
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&file); err != nil {
		return nil, nil, fmt.Errorf("decoding RAM program: %w", err)
	}
	//
	if file.Program == nil {
		return nil, nil, fmt.Errorf("decoding RAM program: no program present")
	}
	//
	canonicalise(file.Program)
	//
	return file.Program, ram.NewSymbolTable(file.Symbols...), nil
}

// Rebind every relation reference in the tree to the canonical descriptor
// of the same name held by the program.
//
//nolint:gocyclo
func canonicalise(prog *ram.Program) {
	lookup := func(rel *ram.Relation) *ram.Relation {
		if rel == nil {
			return nil
		}
		//
		if canonical := prog.Relation(rel.Name); canonical != nil {
			return canonical
		}
		//
		panic(fmt.Sprintf("undeclared relation %s", rel.Name))
	}
	//
	ram.VisitDepthFirst(prog, func(n ram.Node) {
		switch n := n.(type) {
		case *ram.Swap:
			n.First, n.Second = lookup(n.First), lookup(n.Second)
		case *ram.Extend:
			n.Source, n.Target = lookup(n.Source), lookup(n.Target)
		case *ram.Clear:
			n.Relation = lookup(n.Relation)
		case *ram.Load:
			n.Relation = lookup(n.Relation)
		case *ram.Store:
			n.Relation = lookup(n.Relation)
		case *ram.LogSize:
			n.Relation = lookup(n.Relation)
		case *ram.LogRelationTimer:
			n.Relation = lookup(n.Relation)
		case *ram.Scan:
			n.Relation = lookup(n.Relation)
		case *ram.ParallelScan:
			n.Relation = lookup(n.Relation)
		case *ram.IndexScan:
			n.Relation = lookup(n.Relation)
		case *ram.ParallelIndexScan:
			n.Relation = lookup(n.Relation)
		case *ram.Choice:
			n.Relation = lookup(n.Relation)
		case *ram.ParallelChoice:
			n.Relation = lookup(n.Relation)
		case *ram.IndexChoice:
			n.Relation = lookup(n.Relation)
		case *ram.ParallelIndexChoice:
			n.Relation = lookup(n.Relation)
		case *ram.Aggregate:
			n.Relation = lookup(n.Relation)
		case *ram.IndexAggregate:
			n.Relation = lookup(n.Relation)
		case *ram.Project:
			n.Relation = lookup(n.Relation)
		case *ram.EmptinessCheck:
			n.Relation = lookup(n.Relation)
		case *ram.ExistenceCheck:
			n.Relation = lookup(n.Relation)
		case *ram.ProvenanceExistenceCheck:
			n.Relation = lookup(n.Relation)
		}
	})
}
