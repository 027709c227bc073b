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
	"fmt"
	"io"

	"github.com/datalog-lang/go-datalog/pkg/ram"
)

func (e *codeEmitter) condition(w io.Writer, cond ram.Condition) {
	switch cond := cond.(type) {
	case *ram.True:
		fmt.Fprintf(w, "true")
	case *ram.False:
		fmt.Fprintf(w, "false")
	case *ram.Conjunction:
		e.condition(w, cond.LHS)
		fmt.Fprintf(w, " && ")
		e.condition(w, cond.RHS)
	case *ram.Negation:
		fmt.Fprintf(w, "!(")
		e.condition(w, cond.Operand)
		fmt.Fprintf(w, ")")
	case *ram.Constraint:
		e.emitConstraint(w, cond)
	case *ram.EmptinessCheck:
		fmt.Fprintf(w, "%s->empty()", e.s.relationName(cond.Relation))
	case *ram.ExistenceCheck:
		e.emitExistenceCheck(w, cond)
	case *ram.ProvenanceExistenceCheck:
		e.emitProvenanceExistenceCheck(w, cond)
	default:
		panic(fmt.Sprintf("unsupported condition type %T", cond))
	}
}

func (e *codeEmitter) emitConstraint(w io.Writer, constraint *ram.Constraint) {
	// The signed, unsigned and float variants of an ordering all lower to
	// the same relational operator; the operand kind carries the semantics.
	relational := func(op string) {
		fmt.Fprintf(w, "((")
		e.expression(w, constraint.LHS)
		fmt.Fprintf(w, ") %s (", op)
		e.expression(w, constraint.RHS)
		fmt.Fprintf(w, "))")
	}
	//
	switch constraint.Op {
	case ram.EQ:
		relational("==")
	case ram.NE:
		relational("!=")
	case ram.LT, ram.ULT, ram.FLT:
		relational("<")
	case ram.LE, ram.ULE, ram.FLE:
		relational("<=")
	case ram.GT, ram.UGT, ram.FGT:
		relational(">")
	case ram.GE, ram.UGE, ram.FGE:
		relational(">=")
	case ram.MATCH:
		fmt.Fprintf(w, "regex_wrapper(symTable.resolve(")
		e.expression(w, constraint.LHS)
		fmt.Fprintf(w, "),symTable.resolve(")
		e.expression(w, constraint.RHS)
		fmt.Fprintf(w, "))")
	case ram.NOT_MATCH:
		fmt.Fprintf(w, "!regex_wrapper(symTable.resolve(")
		e.expression(w, constraint.LHS)
		fmt.Fprintf(w, "),symTable.resolve(")
		e.expression(w, constraint.RHS)
		fmt.Fprintf(w, "))")
	case ram.CONTAINS:
		fmt.Fprintf(w, "(symTable.resolve(")
		e.expression(w, constraint.RHS)
		fmt.Fprintf(w, ").find(symTable.resolve(")
		e.expression(w, constraint.LHS)
		fmt.Fprintf(w, ")) != std::string::npos)")
	case ram.NOT_CONTAINS:
		fmt.Fprintf(w, "(symTable.resolve(")
		e.expression(w, constraint.RHS)
		fmt.Fprintf(w, ").find(symTable.resolve(")
		e.expression(w, constraint.LHS)
		fmt.Fprintf(w, ")) == std::string::npos)")
	default:
		panic(fmt.Sprintf("unsupported binary constraint operator (%d)", int(constraint.Op)))
	}
}

func (e *codeEmitter) emitExistenceCheck(w io.Writer, exists *ram.ExistenceCheck) {
	var (
		rel     = exists.Relation
		relName = e.s.relationName(rel)
		ctxName = e.readContext(rel)
		arity   = rel.Arity
		after   = ""
	)
	//
	if rel.IsNullary() {
		panic(fmt.Sprintf("existence check over nullary relation %s", rel.Name))
	}
	// under profiling, every check over a named relation bumps its read
	// counter
	if e.s.cfg.ProfileEnabled && !rel.Temp {
		fmt.Fprintf(w, "(reads[%d]++,", e.s.lookupReadIdx(rel.Name))
		after = ")"
	}
	// a total signature is a point query
	if e.isa.IsTotalSignature(exists) {
		fmt.Fprintf(w, "%s->contains(Tuple<RamDomain,%d>{{", relName, arity)
		//
		for i, value := range exists.Values {
			if i != 0 {
				fmt.Fprintf(w, ",")
			}
			//
			e.expression(w, value)
		}
		//
		fmt.Fprintf(w, "}},%s)%s", ctxName, after)
		//
		return
	}
	// otherwise conduct a range query, with undef slots zeroed
	fmt.Fprintf(w, "!%s->equalRange_%s(Tuple<RamDomain,%d>{{",
		relName, e.isa.SearchSignature(exists), arity)
	//
	for i, value := range exists.Values {
		if i != 0 {
			fmt.Fprintf(w, ",")
		}
		//
		if !ram.IsUndefValue(value) {
			e.expression(w, value)
		} else {
			fmt.Fprintf(w, "0")
		}
	}
	//
	fmt.Fprintf(w, "}},%s).empty()%s", ctxName, after)
}

// A provenance existence check is never total.  It ranges over all
// non-provenance columns plus the first auxiliary column, then imposes a
// lexicographic bound on the height annotation of the first hit: true iff
// the stored height tuple is lexicographically no greater than the queried
// one.
func (e *codeEmitter) emitProvenanceExistenceCheck(w io.Writer, provExists *ram.ProvenanceExistenceCheck) {
	var (
		rel     = provExists.Relation
		relName = e.s.relationName(rel)
		ctxName = e.readContext(rel)
		arity   = rel.Arity
		aux     = rel.AuxiliaryArity
		values  = provExists.Values
		first   = func() { fmt.Fprintf(w, "(*existenceCheck.begin())") }
	)
	//
	fmt.Fprintf(w, "[&]() -> bool {\n")
	fmt.Fprintf(w, "auto existenceCheck = %s->equalRange_%s(Tuple<RamDomain,%d>{{",
		relName, e.isa.SearchSignature(provExists), arity)
	//
	for i := 0; i < len(values)-aux+1; i++ {
		if !ram.IsUndefValue(values[i]) {
			e.expression(w, values[i])
		} else {
			fmt.Fprintf(w, "0")
		}
		//
		fmt.Fprintf(w, ",")
	}
	// zeroes for the open height annotations
	for i := 0; i < aux-2; i++ {
		fmt.Fprintf(w, "0,")
	}
	//
	fmt.Fprintf(w, "0")
	fmt.Fprintf(w, "}},%s);\n", ctxName)
	// bound the first height column
	fmt.Fprintf(w, "if (existenceCheck.empty()) return false; else return (")
	first()
	fmt.Fprintf(w, "[%d] <= ", arity-aux+1)
	e.expression(w, values[arity-aux+1])
	fmt.Fprintf(w, ")")
	// exclude any tie on earlier height columns followed by a greater one
	if aux > 2 {
		fmt.Fprintf(w, " &&  !(")
		first()
		fmt.Fprintf(w, "[%d] == ", arity-aux+1)
		e.expression(w, values[arity-aux+1])
		fmt.Fprintf(w, " && (")
		first()
		fmt.Fprintf(w, "[%d] > ", arity-aux+2)
		e.expression(w, values[arity-aux+2])
		//
		for i := arity - aux + 3; i < arity; i++ {
			fmt.Fprintf(w, " || (")
			//
			for j := arity - aux + 2; j < i; j++ {
				first()
				fmt.Fprintf(w, "[%d] == ", j)
				e.expression(w, values[j])
				fmt.Fprintf(w, " && ")
			}
			//
			first()
			fmt.Fprintf(w, "[%d] > ", i)
			e.expression(w, values[i])
			fmt.Fprintf(w, ")")
		}
		//
		fmt.Fprintf(w, "))")
	}
	//
	fmt.Fprintf(w, ";}()\n")
}
