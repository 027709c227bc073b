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
	"strconv"

	"github.com/datalog-lang/go-datalog/pkg/ram"
)

func (e *codeEmitter) expression(w io.Writer, expr ram.Expression) {
	switch expr := expr.(type) {
	case *ram.SignedConstant:
		fmt.Fprintf(w, "RamSigned(%d)", expr.Value)
	case *ram.UnsignedConstant:
		fmt.Fprintf(w, "RamUnsigned(%d)", expr.Value)
	case *ram.FloatConstant:
		fmt.Fprintf(w, "RamFloat(%s)", strconv.FormatFloat(expr.Value, 'g', -1, 64))
	case *ram.TupleElement:
		fmt.Fprintf(w, "env%d[%d]", expr.TupleID, expr.Element)
	case *ram.AutoIncrement:
		fmt.Fprintf(w, "(ctr++)")
	case *ram.IntrinsicOperator:
		e.emitIntrinsicOperator(w, expr)
	case *ram.UserDefinedOperator:
		e.emitUserDefinedOperator(w, expr)
	case *ram.PackRecord:
		e.emitPackRecord(w, expr)
	case *ram.SubroutineArgument:
		fmt.Fprintf(w, "(args)[%d]", expr.Index)
	case *ram.SubroutineReturnValue:
		e.emitSubroutineReturnValue(w, expr)
	case *ram.UndefValue:
		panic("undefined value used as a value")
	default:
		panic(fmt.Sprintf("unsupported expression type %T", expr))
	}
}

//nolint:gocyclo
func (e *codeEmitter) emitIntrinsicOperator(w io.Writer, op *ram.IntrinsicOperator) {
	args := op.Args
	//
	unary := func(prefix, suffix string) {
		fmt.Fprintf(w, "%s", prefix)
		e.expression(w, args[0])
		fmt.Fprintf(w, "%s", suffix)
	}
	//
	binary := func(operator string) {
		fmt.Fprintf(w, "(")
		e.expression(w, args[0])
		fmt.Fprintf(w, ") %s (", operator)
		e.expression(w, args[1])
		fmt.Fprintf(w, ")")
	}
	//
	variadic := func(fn string) {
		fmt.Fprintf(w, "std::%s({", fn)
		//
		for _, cur := range args {
			e.expression(w, cur)
			fmt.Fprintf(w, ", ")
		}
		//
		fmt.Fprintf(w, "})")
	}
	//
	switch op.Op {
	// unary
	case ram.ORD:
		// symbol handles are ordinals already
		e.expression(w, args[0])
	case ram.STRLEN:
		unary("static_cast<RamDomain>(symTable.resolve(", ").size())")
	case ram.NEG, ram.FNEG:
		unary("(-(", "))")
	case ram.BNOT, ram.UBNOT:
		unary("(~(", "))")
	case ram.LNOT, ram.ULNOT:
		unary("(!(", "))")
	case ram.TOSTRING:
		unary("symTable.lookup(std::to_string(", "))")
	case ram.TONUMBER:
		unary("(wrapper_tonumber(symTable.resolve((size_t)", ")))")
	case ram.ITOU, ram.FTOU:
		unary("(static_cast<RamUnsigned>(", "))")
	case ram.UTOI, ram.FTOI:
		unary("(static_cast<RamSigned>(", "))")
	case ram.ITOF, ram.UTOF:
		unary("(static_cast<RamFloat>(", "))")
	// binary arithmetic
	case ram.ADD, ram.UADD, ram.FADD:
		binary("+")
	case ram.SUB, ram.USUB, ram.FSUB:
		binary("-")
	case ram.MUL, ram.UMUL, ram.FMUL:
		binary("*")
	case ram.DIV, ram.UDIV, ram.FDIV:
		binary("/")
	case ram.EXP, ram.UEXP, ram.FEXP:
		// computed in a widened integer, to avoid wrapping to negative in
		// 32-bit domains
		fmt.Fprintf(w, "static_cast<int64_t>(std::pow(")
		e.expression(w, args[0])
		fmt.Fprintf(w, ",")
		e.expression(w, args[1])
		fmt.Fprintf(w, "))")
	case ram.MOD, ram.UMOD:
		binary("%")
	// binary bitwise and logical
	case ram.BAND, ram.UBAND:
		binary("&")
	case ram.BOR, ram.UBOR:
		binary("|")
	case ram.BXOR, ram.UBXOR:
		binary("^")
	case ram.LAND, ram.ULAND:
		binary("&&")
	case ram.LOR, ram.ULOR:
		binary("||")
	// variadic
	case ram.MAX, ram.UMAX, ram.FMAX:
		variadic("max")
	case ram.MIN, ram.UMIN, ram.FMIN:
		variadic("min")
	case ram.CAT:
		fmt.Fprintf(w, "symTable.lookup(")
		//
		for i, cur := range args {
			if i != 0 {
				fmt.Fprintf(w, " + ")
			}
			//
			fmt.Fprintf(w, "symTable.resolve(")
			e.expression(w, cur)
			fmt.Fprintf(w, ")")
		}
		//
		fmt.Fprintf(w, ")")
	// ternary
	case ram.SUBSTR:
		fmt.Fprintf(w, "symTable.lookup(substr_wrapper(symTable.resolve(")
		e.expression(w, args[0])
		fmt.Fprintf(w, "),(")
		e.expression(w, args[1])
		fmt.Fprintf(w, "),(")
		e.expression(w, args[2])
		fmt.Fprintf(w, ")))")
	default:
		panic(fmt.Sprintf("unsupported intrinsic operator (%d)", int(op.Op)))
	}
}

// A user-defined operator's type signature tags each argument and the
// return as 'N' (number) or 'S' (symbol): symbol arguments are resolved to
// raw text before the call, symbol returns re-interned afterwards.
func (e *codeEmitter) emitUserDefinedOperator(w io.Writer, op *ram.UserDefinedOperator) {
	var (
		signature = op.TypeSignature
		arity     = len(signature) - 1
	)
	//
	if len(op.Args) != arity {
		panic(fmt.Sprintf("functor %s: %d arguments for signature %s", op.Name, len(op.Args), signature))
	}
	//
	if signature[arity] == 'S' {
		fmt.Fprintf(w, "symTable.lookup(")
	}
	//
	fmt.Fprintf(w, "%s(", op.Name)
	//
	for i := 0; i < arity; i++ {
		if i > 0 {
			fmt.Fprintf(w, ",")
		}
		//
		if signature[i] == 'N' {
			fmt.Fprintf(w, "((RamDomain)")
			e.expression(w, op.Args[i])
			fmt.Fprintf(w, ")")
		} else {
			fmt.Fprintf(w, "symTable.resolve((RamDomain)")
			e.expression(w, op.Args[i])
			fmt.Fprintf(w, ").c_str()")
		}
	}
	//
	fmt.Fprintf(w, ")")
	//
	if signature[arity] == 'S' {
		fmt.Fprintf(w, ")")
	}
}

func (e *codeEmitter) emitPackRecord(w io.Writer, pack *ram.PackRecord) {
	fmt.Fprintf(w, "pack(ram::Tuple<RamDomain,%d>({", len(pack.Args))
	//
	for i, cur := range pack.Args {
		if i != 0 {
			fmt.Fprintf(w, ",")
		}
		//
		e.expression(w, cur)
	}
	//
	fmt.Fprintf(w, "}))")
}

// The subroutine return vector is shared between workers, so appends are
// serialised through the subroutine's mutex.
func (e *codeEmitter) emitSubroutineReturnValue(w io.Writer, ret *ram.SubroutineReturnValue) {
	fmt.Fprintf(w, "std::lock_guard<std::mutex> guard(lock);\n")
	//
	for _, value := range ret.Values {
		if ram.IsUndefValue(value) {
			fmt.Fprintf(w, "ret.push_back(0);\n")
		} else {
			fmt.Fprintf(w, "ret.push_back(")
			e.expression(w, value)
			fmt.Fprintf(w, ");\n")
		}
	}
}
