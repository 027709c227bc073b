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

import "fmt"

// VisitDepthFirst applies the given function to every node reachable from
// root, in pre-order.  Statements, operations, conditions and expressions
// are all visited.
func VisitDepthFirst(root Node, visit func(Node)) {
	if root == nil {
		return
	}
	//
	visit(root)
	//
	for _, child := range children(root) {
		VisitDepthFirst(child, visit)
	}
}

// Enumerate the direct children of a node.  Every node kind must have an
// arm; an unknown kind is a hard failure since it would otherwise be
// silently skipped by analyses.
//
//nolint:gocyclo
func children(n Node) []Node {
	switch n := n.(type) {
	// Programs
	case *Program:
		nodes := []Node{n.Main}
		for _, sub := range n.Subroutines {
			nodes = append(nodes, sub.Body)
		}
		//
		return nodes
	// Statements
	case *Sequence:
		return statements(n.Statements)
	case *Parallel:
		return statements(n.Statements)
	case *Loop:
		return []Node{n.Body}
	case *Exit:
		return []Node{n.Condition}
	case *Swap, *Extend, *Clear, *Load, *Store, *LogSize:
		return nil
	case *LogRelationTimer:
		return []Node{n.Statement}
	case *LogTimer:
		return []Node{n.Statement}
	case *DebugInfo:
		return []Node{n.Statement}
	case *Query:
		return []Node{n.Operation}
	// Operations
	case *Scan:
		return []Node{n.Body}
	case *ParallelScan:
		return []Node{n.Body}
	case *IndexScan:
		return append(expressions(n.RangePattern), n.Body)
	case *ParallelIndexScan:
		return append(expressions(n.RangePattern), n.Body)
	case *Choice:
		return []Node{n.Condition, n.Body}
	case *ParallelChoice:
		return []Node{n.Condition, n.Body}
	case *IndexChoice:
		return append(expressions(n.RangePattern), n.Condition, n.Body)
	case *ParallelIndexChoice:
		return append(expressions(n.RangePattern), n.Condition, n.Body)
	case *Aggregate:
		return []Node{n.Expression, n.Condition, n.Body}
	case *IndexAggregate:
		return append(expressions(n.RangePattern), n.Expression, n.Condition, n.Body)
	case *UnpackRecord:
		return []Node{n.Expression, n.Body}
	case *Filter:
		return []Node{n.Condition, n.Body}
	case *Break:
		return []Node{n.Condition, n.Body}
	case *Project:
		return expressions(n.Values)
	// Conditions
	case *True, *False:
		return nil
	case *Conjunction:
		return []Node{n.LHS, n.RHS}
	case *Negation:
		return []Node{n.Operand}
	case *Constraint:
		return []Node{n.LHS, n.RHS}
	case *EmptinessCheck:
		return nil
	case *ExistenceCheck:
		return expressions(n.Values)
	case *ProvenanceExistenceCheck:
		return expressions(n.Values)
	// Expressions
	case *SignedConstant, *UnsignedConstant, *FloatConstant:
		return nil
	case *TupleElement, *AutoIncrement, *UndefValue, *SubroutineArgument:
		return nil
	case *IntrinsicOperator:
		return expressions(n.Args)
	case *UserDefinedOperator:
		return expressions(n.Args)
	case *PackRecord:
		return expressions(n.Args)
	case *SubroutineReturnValue:
		return expressions(n.Values)
	}
	//
	panic(fmt.Sprintf("unknown RAM node type %T", n))
}

func statements(stmts []Statement) []Node {
	nodes := make([]Node, len(stmts))
	for i, s := range stmts {
		nodes[i] = s
	}
	//
	return nodes
}

func expressions(exprs []Expression) []Node {
	nodes := make([]Node, len(exprs))
	for i, e := range exprs {
		nodes[i] = e
	}
	//
	return nodes
}
