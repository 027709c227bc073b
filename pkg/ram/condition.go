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

// True is the always-satisfied condition.
type True struct {
	isCondition
}

// False is the never-satisfied condition.
type False struct {
	isCondition
}

// Conjunction is the conjunction of two conditions.
type Conjunction struct {
	isCondition
	LHS Condition
	RHS Condition
}

// Negation negates its operand.
type Negation struct {
	isCondition
	Operand Condition
}

// Constraint applies a binary constraint operator to two expressions.
type Constraint struct {
	isCondition
	Op  BinaryConstraintOp
	LHS Expression
	RHS Expression
}

// EmptinessCheck holds iff the relation is empty.
type EmptinessCheck struct {
	isCondition
	Relation *Relation
}

// ExistenceCheck holds iff a tuple matching Values is present in the
// relation.  Unconstrained columns carry an UndefValue.
type ExistenceCheck struct {
	isCondition
	Relation *Relation
	Values   []Expression
}

// ProvenanceExistenceCheck holds iff a tuple matching the non-provenance
// columns exists whose height annotation is lexicographically no greater
// than the queried one.
type ProvenanceExistenceCheck struct {
	isCondition
	Relation *Relation
	Values   []Expression
}

// IsTrue reports whether the given condition is the trivial True condition.
func IsTrue(c Condition) bool {
	_, ok := c.(*True)
	return ok
}

// ToConjunctionList flattens a condition into its list of conjuncts.  A
// non-conjunction is its own singleton list.
func ToConjunctionList(c Condition) []Condition {
	if conj, ok := c.(*Conjunction); ok {
		return append(ToConjunctionList(conj.LHS), ToConjunctionList(conj.RHS)...)
	}
	//
	return []Condition{c}
}

// ToCondition folds a list of conjuncts back into a single condition, with
// True as the identity of the empty list.
func ToCondition(conds []Condition) Condition {
	if len(conds) == 0 {
		return &True{}
	}
	//
	result := conds[0]
	for _, c := range conds[1:] {
		result = &Conjunction{LHS: result, RHS: c}
	}
	//
	return result
}
