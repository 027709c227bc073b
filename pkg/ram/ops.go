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

// BinaryConstraintOp enumerates the binary operators permitted in a
// Constraint condition.  Signed, unsigned and float orderings are distinct
// operators at the RAM level, even though they lower to the same relational
// operator on the concrete numeric kind.
type BinaryConstraintOp int

// Binary constraint operators.
const (
	EQ BinaryConstraintOp = iota
	NE
	LT
	ULT
	FLT
	LE
	ULE
	FLE
	GT
	UGT
	FGT
	GE
	UGE
	FGE
	MATCH
	NOT_MATCH
	CONTAINS
	NOT_CONTAINS
)

var constraintOpNames = [...]string{
	EQ: "eq", NE: "ne",
	LT: "lt", ULT: "ult", FLT: "flt",
	LE: "le", ULE: "ule", FLE: "fle",
	GT: "gt", UGT: "ugt", FGT: "fgt",
	GE: "ge", UGE: "uge", FGE: "fge",
	MATCH: "match", NOT_MATCH: "not_match",
	CONTAINS: "contains", NOT_CONTAINS: "not_contains",
}

// Name returns the distinct lowercase tag of the operator, as used in the
// textual program form.  Unlike String, variants do not collapse.
func (op BinaryConstraintOp) Name() string {
	if op < 0 || int(op) >= len(constraintOpNames) {
		panic(fmt.Sprintf("unknown binary constraint operator (%d)", int(op)))
	}
	//
	return constraintOpNames[op]
}

// ParseBinaryConstraintOp is the inverse of Name.
func ParseBinaryConstraintOp(name string) (BinaryConstraintOp, error) {
	for op, n := range constraintOpNames {
		if n == name {
			return BinaryConstraintOp(op), nil
		}
	}
	//
	return 0, fmt.Errorf("unknown binary constraint operator %q", name)
}

func (op BinaryConstraintOp) String() string {
	switch op {
	case EQ:
		return "="
	case NE:
		return "!="
	case LT, ULT, FLT:
		return "<"
	case LE, ULE, FLE:
		return "<="
	case GT, UGT, FGT:
		return ">"
	case GE, UGE, FGE:
		return ">="
	case MATCH:
		return "match"
	case NOT_MATCH:
		return "!match"
	case CONTAINS:
		return "contains"
	case NOT_CONTAINS:
		return "!contains"
	}
	//
	panic(fmt.Sprintf("unknown binary constraint operator (%d)", int(op)))
}

// FunctorOp enumerates the intrinsic functors of the RAM expression language.
// Operators prefixed U or F are the unsigned and float variants of their base
// operator.
type FunctorOp int

// Intrinsic functor operators.
const (
	// Unary
	ORD FunctorOp = iota
	STRLEN
	NEG
	FNEG
	BNOT
	UBNOT
	LNOT
	ULNOT
	TOSTRING
	TONUMBER
	ITOU
	ITOF
	UTOI
	UTOF
	FTOI
	FTOU
	// Binary
	ADD
	UADD
	FADD
	SUB
	USUB
	FSUB
	MUL
	UMUL
	FMUL
	DIV
	UDIV
	FDIV
	EXP
	UEXP
	FEXP
	MOD
	UMOD
	BAND
	UBAND
	BOR
	UBOR
	BXOR
	UBXOR
	LAND
	ULAND
	LOR
	ULOR
	// Variadic
	MAX
	UMAX
	FMAX
	MIN
	UMIN
	FMIN
	CAT
	// Ternary
	SUBSTR
)

var functorOpNames = [...]string{
	ORD: "ord", STRLEN: "strlen",
	NEG: "neg", FNEG: "fneg",
	BNOT: "bnot", UBNOT: "ubnot",
	LNOT: "lnot", ULNOT: "ulnot",
	TOSTRING: "to_string", TONUMBER: "to_number",
	ITOU: "itou", ITOF: "itof",
	UTOI: "utoi", UTOF: "utof",
	FTOI: "ftoi", FTOU: "ftou",
	ADD: "add", UADD: "uadd", FADD: "fadd",
	SUB: "sub", USUB: "usub", FSUB: "fsub",
	MUL: "mul", UMUL: "umul", FMUL: "fmul",
	DIV: "div", UDIV: "udiv", FDIV: "fdiv",
	EXP: "exp", UEXP: "uexp", FEXP: "fexp",
	MOD: "mod", UMOD: "umod",
	BAND: "band", UBAND: "uband",
	BOR: "bor", UBOR: "ubor",
	BXOR: "bxor", UBXOR: "ubxor",
	LAND: "land", ULAND: "uland",
	LOR: "lor", ULOR: "ulor",
	MAX: "max", UMAX: "umax", FMAX: "fmax",
	MIN: "min", UMIN: "umin", FMIN: "fmin",
	CAT: "cat", SUBSTR: "substr",
}

func (op FunctorOp) String() string {
	if op < 0 || int(op) >= len(functorOpNames) {
		panic(fmt.Sprintf("unknown intrinsic operator (%d)", int(op)))
	}
	//
	return functorOpNames[op]
}

// ParseFunctorOp is the inverse of String.
func ParseFunctorOp(name string) (FunctorOp, error) {
	for op, n := range functorOpNames {
		if n == name {
			return FunctorOp(op), nil
		}
	}
	//
	return 0, fmt.Errorf("unknown intrinsic operator %q", name)
}

// AggregateFunction enumerates the functions computable by an Aggregate or
// IndexAggregate operation.
type AggregateFunction int

// Aggregate functions.
const (
	AggMin AggregateFunction = iota
	AggMax
	AggCount
	AggSum
)

func (fn AggregateFunction) String() string {
	switch fn {
	case AggMin:
		return "min"
	case AggMax:
		return "max"
	case AggCount:
		return "count"
	case AggSum:
		return "sum"
	}
	//
	panic(fmt.Sprintf("unknown aggregate function (%d)", int(fn)))
}

// ParseAggregateFunction is the inverse of String.
func ParseAggregateFunction(name string) (AggregateFunction, error) {
	switch name {
	case "min":
		return AggMin, nil
	case "max":
		return AggMax, nil
	case "count":
		return AggCount, nil
	case "sum":
		return AggSum, nil
	}
	//
	return 0, fmt.Errorf("unknown aggregate function %q", name)
}
