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

// NestedOperation is embedded by every operation which continues with a
// nested operation.  ProfileText, when non-empty and profiling is enabled,
// names the frequency counter bumped after each execution of the body.
type NestedOperation struct {
	Body        Operation
	ProfileText string
}

// Nested gives emitters uniform access to an operation's continuation.
type Nested interface {
	NestedBody() Operation
	NestedProfileText() string
}

// NestedBody returns the nested operation.
func (n *NestedOperation) NestedBody() Operation { return n.Body }

// NestedProfileText returns the profile text, possibly empty.
func (n *NestedOperation) NestedProfileText() string { return n.ProfileText }

// Scan iterates every tuple of a relation, binding each to the tuple
// identifier in turn.
type Scan struct {
	isOperation
	NestedOperation
	Relation *Relation
	TupleID  int
}

// ParallelScan is a Scan whose iteration is partitioned over worker threads.
// It must be the outermost operation of its query (tuple id 0).
type ParallelScan struct {
	isOperation
	NestedOperation
	Relation *Relation
	TupleID  int
}

// IndexScan iterates the tuples matching the range pattern, using an index
// covering the pattern's bound columns.
type IndexScan struct {
	isOperation
	NestedOperation
	Relation     *Relation
	TupleID      int
	RangePattern []Expression
}

// ParallelIndexScan is the partitioned form of IndexScan.
type ParallelIndexScan struct {
	isOperation
	NestedOperation
	Relation     *Relation
	TupleID      int
	RangePattern []Expression
}

// Choice binds the first tuple satisfying the condition, then stops
// iterating.
type Choice struct {
	isOperation
	NestedOperation
	Relation  *Relation
	TupleID   int
	Condition Condition
}

// ParallelChoice is the partitioned form of Choice.
type ParallelChoice struct {
	isOperation
	NestedOperation
	Relation  *Relation
	TupleID   int
	Condition Condition
}

// IndexChoice binds the first tuple in the indexed range satisfying the
// condition.
type IndexChoice struct {
	isOperation
	NestedOperation
	Relation     *Relation
	TupleID      int
	RangePattern []Expression
	Condition    Condition
}

// ParallelIndexChoice is the partitioned form of IndexChoice.
type ParallelIndexChoice struct {
	isOperation
	NestedOperation
	Relation     *Relation
	TupleID      int
	RangePattern []Expression
	Condition    Condition
}

// Aggregate folds Function over the expression values of all tuples
// satisfying the condition, binding the result as a 1-arity tuple.
type Aggregate struct {
	isOperation
	NestedOperation
	Function   AggregateFunction
	Relation   *Relation
	TupleID    int
	Expression Expression
	Condition  Condition
}

// IndexAggregate is an Aggregate restricted to an indexed range.
type IndexAggregate struct {
	isOperation
	NestedOperation
	Function     AggregateFunction
	Relation     *Relation
	TupleID      int
	Expression   Expression
	Condition    Condition
	RangePattern []Expression
}

// UnpackRecord decodes the record referenced by Expression into a fresh
// tuple of the given arity; a null reference skips the iteration.
type UnpackRecord struct {
	isOperation
	NestedOperation
	Expression Expression
	Arity      int
	TupleID    int
}

// Filter guards its nested operation with a condition.
type Filter struct {
	isOperation
	NestedOperation
	Condition Condition
}

// Break exits the immediately enclosing loop when the condition holds;
// otherwise proceeds with its nested operation.
type Break struct {
	isOperation
	NestedOperation
	Condition Condition
}

// Project constructs a tuple from the given expressions and inserts it into
// the target relation.  It terminates an operation pipeline.
type Project struct {
	isOperation
	Relation *Relation
	Values   []Expression
}
