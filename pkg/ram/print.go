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
	"fmt"
	"io"
	"strings"
)

// Print renders a program as an indented textual tree, for debugging.
func Print(w io.Writer, prog *Program) {
	for _, rel := range prog.Relations {
		fmt.Fprintf(w, "DECL %s(%s) %s arity=%d aux=%d\n", rel.Name,
			strings.Join(rel.AttributeNames, ","), rel.Representation,
			rel.Arity, rel.AuxiliaryArity)
	}
	//
	fmt.Fprintf(w, "MAIN\n")
	printStatement(w, prog.Main, 1)
	//
	for _, sub := range prog.Subroutines {
		fmt.Fprintf(w, "SUBROUTINE %s\n", sub.Name)
		printStatement(w, sub.Body, 1)
	}
}

func indent(w io.Writer, depth int) {
	fmt.Fprint(w, strings.Repeat("  ", depth))
}

//nolint:gocyclo
func printStatement(w io.Writer, stmt Statement, depth int) {
	indent(w, depth)
	//
	switch stmt := stmt.(type) {
	case *Sequence:
		fmt.Fprintf(w, "SEQUENCE\n")
		//
		for _, cur := range stmt.Statements {
			printStatement(w, cur, depth+1)
		}
	case *Parallel:
		fmt.Fprintf(w, "PARALLEL\n")
		//
		for _, cur := range stmt.Statements {
			printStatement(w, cur, depth+1)
		}
	case *Loop:
		fmt.Fprintf(w, "LOOP\n")
		printStatement(w, stmt.Body, depth+1)
	case *Exit:
		fmt.Fprintf(w, "EXIT %s\n", conditionString(stmt.Condition))
	case *Swap:
		fmt.Fprintf(w, "SWAP (%s, %s)\n", stmt.First.Name, stmt.Second.Name)
	case *Extend:
		fmt.Fprintf(w, "EXTEND %s WITH %s\n", stmt.Target.Name, stmt.Source.Name)
	case *Clear:
		fmt.Fprintf(w, "CLEAR %s\n", stmt.Relation.Name)
	case *Load:
		fmt.Fprintf(w, "LOAD DATA %s\n", stmt.Relation.Name)
	case *Store:
		fmt.Fprintf(w, "STORE DATA %s\n", stmt.Relation.Name)
	case *LogSize:
		fmt.Fprintf(w, "LOGSIZE %s\n", stmt.Relation.Name)
	case *LogRelationTimer:
		fmt.Fprintf(w, "START_TIMER ON %s %q\n", stmt.Relation.Name, stmt.Message)
		printStatement(w, stmt.Statement, depth+1)
	case *LogTimer:
		fmt.Fprintf(w, "START_TIMER %q\n", stmt.Message)
		printStatement(w, stmt.Statement, depth+1)
	case *DebugInfo:
		fmt.Fprintf(w, "BEGIN_DEBUG %q\n", stmt.Message)
		printStatement(w, stmt.Statement, depth+1)
	case *Query:
		fmt.Fprintf(w, "QUERY\n")
		printOperation(w, stmt.Operation, depth+1)
	default:
		panic(fmt.Sprintf("unknown RAM statement type %T", stmt))
	}
}

//nolint:gocyclo
func printOperation(w io.Writer, op Operation, depth int) {
	indent(w, depth)
	//
	switch op := op.(type) {
	case *Scan:
		fmt.Fprintf(w, "FOR t%d IN %s\n", op.TupleID, op.Relation.Name)
		printOperation(w, op.Body, depth+1)
	case *ParallelScan:
		fmt.Fprintf(w, "PARALLEL FOR t%d IN %s\n", op.TupleID, op.Relation.Name)
		printOperation(w, op.Body, depth+1)
	case *IndexScan:
		fmt.Fprintf(w, "FOR t%d IN %s ON INDEX %s\n", op.TupleID, op.Relation.Name,
			patternString(op.RangePattern))
		printOperation(w, op.Body, depth+1)
	case *ParallelIndexScan:
		fmt.Fprintf(w, "PARALLEL FOR t%d IN %s ON INDEX %s\n", op.TupleID,
			op.Relation.Name, patternString(op.RangePattern))
		printOperation(w, op.Body, depth+1)
	case *Choice:
		fmt.Fprintf(w, "CHOICE t%d IN %s WHERE %s\n", op.TupleID, op.Relation.Name,
			conditionString(op.Condition))
		printOperation(w, op.Body, depth+1)
	case *ParallelChoice:
		fmt.Fprintf(w, "PARALLEL CHOICE t%d IN %s WHERE %s\n", op.TupleID,
			op.Relation.Name, conditionString(op.Condition))
		printOperation(w, op.Body, depth+1)
	case *IndexChoice:
		fmt.Fprintf(w, "CHOICE t%d IN %s ON INDEX %s WHERE %s\n", op.TupleID,
			op.Relation.Name, patternString(op.RangePattern), conditionString(op.Condition))
		printOperation(w, op.Body, depth+1)
	case *ParallelIndexChoice:
		fmt.Fprintf(w, "PARALLEL CHOICE t%d IN %s ON INDEX %s WHERE %s\n", op.TupleID,
			op.Relation.Name, patternString(op.RangePattern), conditionString(op.Condition))
		printOperation(w, op.Body, depth+1)
	case *Aggregate:
		fmt.Fprintf(w, "t%d.0 = %s %s FOR ALL IN %s WHERE %s\n", op.TupleID,
			op.Function, expressionString(op.Expression), op.Relation.Name,
			conditionString(op.Condition))
		printOperation(w, op.Body, depth+1)
	case *IndexAggregate:
		fmt.Fprintf(w, "t%d.0 = %s %s FOR ALL IN %s ON INDEX %s WHERE %s\n", op.TupleID,
			op.Function, expressionString(op.Expression), op.Relation.Name,
			patternString(op.RangePattern), conditionString(op.Condition))
		printOperation(w, op.Body, depth+1)
	case *UnpackRecord:
		fmt.Fprintf(w, "UNPACK t%d ARITY %d FROM %s\n", op.TupleID, op.Arity,
			expressionString(op.Expression))
		printOperation(w, op.Body, depth+1)
	case *Filter:
		fmt.Fprintf(w, "IF %s\n", conditionString(op.Condition))
		printOperation(w, op.Body, depth+1)
	case *Break:
		fmt.Fprintf(w, "BREAK IF %s\n", conditionString(op.Condition))
		printOperation(w, op.Body, depth+1)
	case *Project:
		fmt.Fprintf(w, "PROJECT (%s) INTO %s\n", patternString(op.Values), op.Relation.Name)
	default:
		panic(fmt.Sprintf("unknown RAM operation type %T", op))
	}
}

func conditionString(cond Condition) string {
	switch cond := cond.(type) {
	case *True:
		return "true"
	case *False:
		return "false"
	case *Conjunction:
		return conditionString(cond.LHS) + " AND " + conditionString(cond.RHS)
	case *Negation:
		return "NOT " + conditionString(cond.Operand)
	case *Constraint:
		return fmt.Sprintf("%s %s %s", expressionString(cond.LHS), cond.Op,
			expressionString(cond.RHS))
	case *EmptinessCheck:
		return fmt.Sprintf("(%s = EMPTY)", cond.Relation.Name)
	case *ExistenceCheck:
		return fmt.Sprintf("(%s) IN %s", patternString(cond.Values), cond.Relation.Name)
	case *ProvenanceExistenceCheck:
		return fmt.Sprintf("PROV (%s) IN %s", patternString(cond.Values), cond.Relation.Name)
	default:
		panic(fmt.Sprintf("unknown RAM condition type %T", cond))
	}
}

//nolint:gocyclo
func expressionString(expr Expression) string {
	switch expr := expr.(type) {
	case *SignedConstant:
		return fmt.Sprintf("number(%d)", expr.Value)
	case *UnsignedConstant:
		return fmt.Sprintf("unsigned(%d)", expr.Value)
	case *FloatConstant:
		return fmt.Sprintf("float(%g)", expr.Value)
	case *TupleElement:
		return fmt.Sprintf("t%d.%d", expr.TupleID, expr.Element)
	case *AutoIncrement:
		return "autoinc()"
	case *IntrinsicOperator:
		return fmt.Sprintf("%s(%s)", expr.Op, patternString(expr.Args))
	case *UserDefinedOperator:
		return fmt.Sprintf("@%s:%s(%s)", expr.Name, expr.TypeSignature,
			patternString(expr.Args))
	case *PackRecord:
		return fmt.Sprintf("[%s]", patternString(expr.Args))
	case *SubroutineArgument:
		return fmt.Sprintf("arg(%d)", expr.Index)
	case *SubroutineReturnValue:
		return fmt.Sprintf("return (%s)", patternString(expr.Values))
	case *UndefValue:
		return "_"
	default:
		panic(fmt.Sprintf("unknown RAM expression type %T", expr))
	}
}

func patternString(exprs []Expression) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = expressionString(e)
	}
	//
	return strings.Join(parts, ",")
}
