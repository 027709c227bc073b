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

func (e *codeEmitter) operation(w io.Writer, op ram.Operation) {
	switch op := op.(type) {
	case *ram.Scan:
		e.emitScan(w, op)
	case *ram.ParallelScan:
		e.emitParallelScan(w, op)
	case *ram.IndexScan:
		e.emitIndexScan(w, op)
	case *ram.ParallelIndexScan:
		e.emitParallelIndexScan(w, op)
	case *ram.Choice:
		e.emitChoice(w, op)
	case *ram.ParallelChoice:
		e.emitParallelChoice(w, op)
	case *ram.IndexChoice:
		e.emitIndexChoice(w, op)
	case *ram.ParallelIndexChoice:
		e.emitParallelIndexChoice(w, op)
	case *ram.Aggregate:
		e.emitAggregate(w, op)
	case *ram.IndexAggregate:
		e.emitIndexAggregate(w, op)
	case *ram.UnpackRecord:
		e.emitUnpackRecord(w, op)
	case *ram.Filter:
		e.emitFilter(w, op)
	case *ram.Break:
		e.emitBreak(w, op)
	case *ram.Project:
		e.emitProject(w, op)
	case *ram.SubroutineReturnValue:
		e.emitSubroutineReturnValue(w, op)
	default:
		panic(fmt.Sprintf("unsupported operation type %T", op))
	}
}

// emitNestedOperation continues with the nested operation and, under
// profiling, bumps the node's frequency counter.
func (e *codeEmitter) emitNestedOperation(w io.Writer, op ram.Nested) {
	e.operation(w, op.NestedBody())
	//
	if e.s.cfg.ProfileEnabled && op.NestedProfileText() != "" {
		fmt.Fprintf(w, "freqs[%d]++;\n", e.s.lookupFreqIdx(op.NestedProfileText()))
	}
}

func (e *codeEmitter) emitTupleOperation(w io.Writer, op ram.Nested) {
	e.begin(w, "TupleOperation")
	e.emitNestedOperation(w, op)
	e.end(w, "TupleOperation")
}

// emitKeyTuple builds the lookup key of an indexed access: constrained
// positions take their range pattern expression, unconstrained positions
// are zero.
func (e *codeEmitter) emitKeyTuple(w io.Writer, pattern []ram.Expression, arity int) {
	fmt.Fprintf(w, "const Tuple<RamDomain,%d> key{{", arity)
	//
	for i := 0; i < arity; i++ {
		if !ram.IsUndefValue(pattern[i]) {
			e.expression(w, pattern[i])
		} else {
			fmt.Fprintf(w, "0")
		}
		//
		if i+1 < arity {
			fmt.Fprintf(w, ",")
		}
	}
	//
	fmt.Fprintf(w, "}};\n")
}

// claimParallel checks the structural constraints of a parallel operation:
// it must bind tuple id 0 and be the only parallel construct of its query.
func (e *codeEmitter) claimParallel(tupleID int, rel *ram.Relation) {
	if tupleID != 0 {
		panic(fmt.Sprintf("parallel operation over %s is not the outer-most loop", rel.Name))
	}
	//
	if e.preambleIssued {
		panic("only the first loop of a query can be made parallel")
	}
	//
	e.preambleIssued = true
}

func assertNotNullary(rel *ram.Relation, what string) {
	if rel.IsNullary() {
		panic(fmt.Sprintf("no %s over nullary relation %s", what, rel.Name))
	}
}

func (e *codeEmitter) readContext(rel *ram.Relation) string {
	return "READ_OP_CONTEXT(" + e.s.opContextName(rel) + ")"
}

func (e *codeEmitter) emitScan(w io.Writer, scan *ram.Scan) {
	assertNotNullary(scan.Relation, "scan")
	//
	e.begin(w, "Scan")
	fmt.Fprintf(w, "for(const auto& env%d : *%s) {\n", scan.TupleID, e.s.relationName(scan.Relation))
	e.emitTupleOperation(w, scan)
	fmt.Fprintf(w, "}\n")
	e.end(w, "Scan")
}

func (e *codeEmitter) emitParallelScan(w io.Writer, pscan *ram.ParallelScan) {
	assertNotNullary(pscan.Relation, "parallel scan")
	e.claimParallel(pscan.TupleID, pscan.Relation)
	//
	e.begin(w, "ParallelScan")
	fmt.Fprintf(w, "auto part = %s->partition();\n", e.s.relationName(pscan.Relation))
	fmt.Fprintf(w, "PARALLEL_START;\n")
	_, _ = w.Write(e.preamble.Bytes())
	fmt.Fprintf(w, "pfor(auto it = part.begin(); it<part.end();++it){\n")
	fmt.Fprintf(w, "try{\n")
	fmt.Fprintf(w, "for(const auto& env0 : *it) {\n")
	e.emitTupleOperation(w, pscan)
	fmt.Fprintf(w, "}\n")
	fmt.Fprintf(w, "} catch(std::exception &e) { SignalHandler::instance()->error(e.what());}\n")
	fmt.Fprintf(w, "}\n")
	e.end(w, "ParallelScan")
}

func (e *codeEmitter) emitIndexScan(w io.Writer, iscan *ram.IndexScan) {
	assertNotNullary(iscan.Relation, "index scan")
	//
	e.begin(w, "IndexScan")
	e.emitKeyTuple(w, iscan.RangePattern, iscan.Relation.Arity)
	fmt.Fprintf(w, "auto range = %s->equalRange_%s(key,%s);\n",
		e.s.relationName(iscan.Relation), e.isa.SearchSignature(iscan), e.readContext(iscan.Relation))
	fmt.Fprintf(w, "for(const auto& env%d : range) {\n", iscan.TupleID)
	e.emitTupleOperation(w, iscan)
	fmt.Fprintf(w, "}\n")
	e.end(w, "IndexScan")
}

func (e *codeEmitter) emitParallelIndexScan(w io.Writer, piscan *ram.ParallelIndexScan) {
	assertNotNullary(piscan.Relation, "parallel index scan")
	e.claimParallel(piscan.TupleID, piscan.Relation)
	//
	e.begin(w, "ParallelIndexScan")
	e.emitKeyTuple(w, piscan.RangePattern, piscan.Relation.Arity)
	// the range query deliberately omits the context argument, matching the
	// serial/parallel asymmetry of the upstream scheme
	fmt.Fprintf(w, "auto range = %s->equalRange_%s(key);\n",
		e.s.relationName(piscan.Relation), e.isa.SearchSignature(piscan))
	fmt.Fprintf(w, "auto part = range.partition();\n")
	fmt.Fprintf(w, "PARALLEL_START;\n")
	_, _ = w.Write(e.preamble.Bytes())
	fmt.Fprintf(w, "pfor(auto it = part.begin(); it<part.end(); ++it) { \n")
	fmt.Fprintf(w, "try{\n")
	fmt.Fprintf(w, "for(const auto& env0 : *it) {\n")
	e.emitTupleOperation(w, piscan)
	fmt.Fprintf(w, "}\n")
	fmt.Fprintf(w, "} catch(std::exception &e) { SignalHandler::instance()->error(e.what());}\n")
	fmt.Fprintf(w, "}\n")
	e.end(w, "ParallelIndexScan")
}

func (e *codeEmitter) emitChoice(w io.Writer, choice *ram.Choice) {
	assertNotNullary(choice.Relation, "choice")
	//
	e.begin(w, "Choice")
	fmt.Fprintf(w, "for(const auto& env%d : *%s) {\n", choice.TupleID, e.s.relationName(choice.Relation))
	fmt.Fprintf(w, "if( ")
	e.condition(w, choice.Condition)
	fmt.Fprintf(w, ") {\n")
	e.emitTupleOperation(w, choice)
	fmt.Fprintf(w, "break;\n")
	fmt.Fprintf(w, "}\n")
	fmt.Fprintf(w, "}\n")
	e.end(w, "Choice")
}

func (e *codeEmitter) emitParallelChoice(w io.Writer, pchoice *ram.ParallelChoice) {
	assertNotNullary(pchoice.Relation, "parallel choice")
	e.claimParallel(pchoice.TupleID, pchoice.Relation)
	//
	e.begin(w, "ParallelChoice")
	fmt.Fprintf(w, "auto part = %s->partition();\n", e.s.relationName(pchoice.Relation))
	fmt.Fprintf(w, "PARALLEL_START;\n")
	_, _ = w.Write(e.preamble.Bytes())
	fmt.Fprintf(w, "pfor(auto it = part.begin(); it<part.end();++it){\n")
	fmt.Fprintf(w, "try{\n")
	fmt.Fprintf(w, "for(const auto& env0 : *it) {\n")
	fmt.Fprintf(w, "if( ")
	e.condition(w, pchoice.Condition)
	fmt.Fprintf(w, ") {\n")
	e.emitTupleOperation(w, pchoice)
	fmt.Fprintf(w, "break;\n")
	fmt.Fprintf(w, "}\n")
	fmt.Fprintf(w, "}\n")
	fmt.Fprintf(w, "} catch(std::exception &e) { SignalHandler::instance()->error(e.what());}\n")
	fmt.Fprintf(w, "}\n")
	e.end(w, "ParallelChoice")
}

func (e *codeEmitter) emitIndexChoice(w io.Writer, ichoice *ram.IndexChoice) {
	assertNotNullary(ichoice.Relation, "index choice")
	//
	e.begin(w, "IndexChoice")
	e.emitKeyTuple(w, ichoice.RangePattern, ichoice.Relation.Arity)
	fmt.Fprintf(w, "auto range = %s->equalRange_%s(key,%s);\n",
		e.s.relationName(ichoice.Relation), e.isa.SearchSignature(ichoice), e.readContext(ichoice.Relation))
	fmt.Fprintf(w, "for(const auto& env%d : range) {\n", ichoice.TupleID)
	fmt.Fprintf(w, "if( ")
	e.condition(w, ichoice.Condition)
	fmt.Fprintf(w, ") {\n")
	e.emitTupleOperation(w, ichoice)
	fmt.Fprintf(w, "break;\n")
	fmt.Fprintf(w, "}\n")
	fmt.Fprintf(w, "}\n")
	e.end(w, "IndexChoice")
}

func (e *codeEmitter) emitParallelIndexChoice(w io.Writer, pichoice *ram.ParallelIndexChoice) {
	assertNotNullary(pichoice.Relation, "parallel index choice")
	e.claimParallel(pichoice.TupleID, pichoice.Relation)
	//
	e.begin(w, "ParallelIndexChoice")
	e.emitKeyTuple(w, pichoice.RangePattern, pichoice.Relation.Arity)
	fmt.Fprintf(w, "auto range = %s->equalRange_%s(key);\n",
		e.s.relationName(pichoice.Relation), e.isa.SearchSignature(pichoice))
	fmt.Fprintf(w, "auto part = range.partition();\n")
	fmt.Fprintf(w, "PARALLEL_START;\n")
	_, _ = w.Write(e.preamble.Bytes())
	fmt.Fprintf(w, "pfor(auto it = part.begin(); it<part.end(); ++it) { \n")
	fmt.Fprintf(w, "try{")
	fmt.Fprintf(w, "for(const auto& env0 : *it) {\n")
	fmt.Fprintf(w, "if( ")
	e.condition(w, pichoice.Condition)
	fmt.Fprintf(w, ") {\n")
	e.emitTupleOperation(w, pichoice)
	fmt.Fprintf(w, "break;\n")
	fmt.Fprintf(w, "}\n")
	fmt.Fprintf(w, "}\n")
	fmt.Fprintf(w, "} catch(std::exception &e) { SignalHandler::instance()->error(e.what());}\n")
	fmt.Fprintf(w, "}\n")
	e.end(w, "ParallelIndexChoice")
}

func (e *codeEmitter) emitUnpackRecord(w io.Writer, lookup *ram.UnpackRecord) {
	e.begin(w, "UnpackRecord")
	//
	tupleType := fmt.Sprintf("ram::Tuple<RamDomain,%d>", lookup.Arity)
	// look up the reference
	fmt.Fprintf(w, "auto ref = ")
	e.expression(w, lookup.Expression)
	fmt.Fprintf(w, ";\n")
	// a null reference skips this iteration
	fmt.Fprintf(w, "if (isNull<%s>(ref)) continue;\n", tupleType)
	fmt.Fprintf(w, "%s env%d = unpack<%s>(ref);\n", tupleType, lookup.TupleID, tupleType)
	fmt.Fprintf(w, "{\n")
	e.emitTupleOperation(w, lookup)
	fmt.Fprintf(w, "}\n")
	e.end(w, "UnpackRecord")
}

// Initial accumulator of an aggregate: the domain extremum for MIN/MAX so
// the first match always improves it, zero for COUNT/SUM.
func aggregateInit(fn ram.AggregateFunction) string {
	switch fn {
	case ram.AggMin:
		return "MAX_RAM_DOMAIN"
	case ram.AggMax:
		return "MIN_RAM_DOMAIN"
	case ram.AggCount, ram.AggSum:
		return "0"
	}
	//
	panic(fmt.Sprintf("unsupported aggregate function %s", fn))
}

func (e *codeEmitter) emitAggregateBody(w io.Writer, fn ram.AggregateFunction, id int, expr ram.Expression) {
	switch fn {
	case ram.AggMin:
		fmt.Fprintf(w, "res%d = std::min(res%d,", id, id)
		e.expression(w, expr)
		fmt.Fprintf(w, ");\n")
	case ram.AggMax:
		fmt.Fprintf(w, "res%d = std::max(res%d,", id, id)
		e.expression(w, expr)
		fmt.Fprintf(w, ");\n")
	case ram.AggCount:
		fmt.Fprintf(w, "++res%d\n;", id)
	case ram.AggSum:
		fmt.Fprintf(w, "res%d += ", id)
		e.expression(w, expr)
		fmt.Fprintf(w, ";\n")
	default:
		panic(fmt.Sprintf("unsupported aggregate function %s", fn))
	}
}

// Close out an aggregate: write the accumulator into the 1-arity
// environment tuple and, for MIN/MAX, proceed with the nest only if at
// least one match moved the accumulator off its sentinel.
func (e *codeEmitter) emitAggregateResult(w io.Writer, fn ram.AggregateFunction, id int, init string, op ram.Nested) {
	fmt.Fprintf(w, "env%d[0] = res%d;\n", id, id)
	//
	if fn == ram.AggMin || fn == ram.AggMax {
		fmt.Fprintf(w, "if(res%d != %s){\n", id, init)
		e.emitTupleOperation(w, op)
		fmt.Fprintf(w, "}\n")
	} else {
		e.emitTupleOperation(w, op)
	}
}

func (e *codeEmitter) emitAggregate(w io.Writer, aggregate *ram.Aggregate) {
	e.begin(w, "Aggregate")
	//
	var (
		relName = e.s.relationName(aggregate.Relation)
		id      = aggregate.TupleID
	)
	// declare environment variable
	fmt.Fprintf(w, "ram::Tuple<RamDomain,1> env%d;\n", id)
	// special case: counting elements over an unrestricted predicate
	if aggregate.Function == ram.AggCount && ram.IsTrue(aggregate.Condition) {
		// shortcut: use the relation size
		fmt.Fprintf(w, "env%d[0] = %s->size();\n", id, relName)
		e.emitTupleOperation(w, aggregate)
		e.end(w, "Aggregate")
		//
		return
	}
	//
	init := aggregateInit(aggregate.Function)
	fmt.Fprintf(w, "RamDomain res%d = %s;\n", id, init)
	//
	fmt.Fprintf(w, "for(const auto& env%d : *%s) {\n", id, relName)
	fmt.Fprintf(w, "if( ")
	e.condition(w, aggregate.Condition)
	fmt.Fprintf(w, ") {\n")
	e.emitAggregateBody(w, aggregate.Function, id, aggregate.Expression)
	fmt.Fprintf(w, "}\n")
	fmt.Fprintf(w, "}\n")
	//
	e.emitAggregateResult(w, aggregate.Function, id, init, aggregate)
	e.end(w, "Aggregate")
}

func (e *codeEmitter) emitIndexAggregate(w io.Writer, aggregate *ram.IndexAggregate) {
	e.begin(w, "IndexAggregate")
	//
	var (
		rel     = aggregate.Relation
		arity   = rel.Arity
		relName = e.s.relationName(rel)
		id      = aggregate.TupleID
		keys    = e.isa.SearchSignature(aggregate)
	)
	// declare environment variable
	fmt.Fprintf(w, "ram::Tuple<RamDomain,1> env%d;\n", id)
	// special case: counting elements over an unrestricted predicate
	if aggregate.Function == ram.AggCount && keys.Empty() && ram.IsTrue(aggregate.Condition) {
		fmt.Fprintf(w, "env%d[0] = %s->size();\n", id, relName)
		e.emitTupleOperation(w, aggregate)
		e.end(w, "IndexAggregate")
		//
		return
	}
	//
	init := aggregateInit(aggregate.Function)
	fmt.Fprintf(w, "RamDomain res%d = %s;\n", id, init)
	// iterate the whole relation, or an indexed range if one applies
	if keys.Empty() {
		fmt.Fprintf(w, "for(const auto& env%d : *%s) {\n", id, relName)
	} else {
		fmt.Fprintf(w, "const ram::Tuple<RamDomain,%d> key{{", arity)
		//
		for i := 0; i < arity; i++ {
			if !ram.IsUndefValue(aggregate.RangePattern[i]) {
				e.expression(w, aggregate.RangePattern[i])
			} else {
				fmt.Fprintf(w, "0")
			}
			//
			if i+1 < arity {
				fmt.Fprintf(w, ",")
			}
		}
		//
		fmt.Fprintf(w, "}};\n")
		fmt.Fprintf(w, "auto range = %s->equalRange_%s(key,%s);\n",
			relName, keys, e.readContext(rel))
		fmt.Fprintf(w, "for(const auto& env%d : range) {\n", id)
	}
	//
	fmt.Fprintf(w, "if( ")
	e.condition(w, aggregate.Condition)
	fmt.Fprintf(w, ") {\n")
	e.emitAggregateBody(w, aggregate.Function, id, aggregate.Expression)
	fmt.Fprintf(w, "}\n")
	fmt.Fprintf(w, "}\n")
	//
	e.emitAggregateResult(w, aggregate.Function, id, init, aggregate)
	e.end(w, "IndexAggregate")
}

func (e *codeEmitter) emitFilter(w io.Writer, filter *ram.Filter) {
	e.begin(w, "Filter")
	fmt.Fprintf(w, "if( ")
	e.condition(w, filter.Condition)
	fmt.Fprintf(w, ") {\n")
	e.emitNestedOperation(w, filter)
	fmt.Fprintf(w, "}\n")
	e.end(w, "Filter")
}

func (e *codeEmitter) emitBreak(w io.Writer, breakOp *ram.Break) {
	e.begin(w, "Break")
	fmt.Fprintf(w, "if( ")
	e.condition(w, breakOp.Condition)
	fmt.Fprintf(w, ") break;\n")
	e.emitNestedOperation(w, breakOp)
	e.end(w, "Break")
}

func (e *codeEmitter) emitProject(w io.Writer, project *ram.Project) {
	e.begin(w, "Project")
	//
	var (
		rel     = project.Relation
		relName = e.s.relationName(rel)
	)
	// create the projected tuple
	if len(project.Values) == 0 {
		fmt.Fprintf(w, "Tuple<RamDomain,%d> tuple{{}};\n", rel.Arity)
	} else {
		fmt.Fprintf(w, "Tuple<RamDomain,%d> tuple{{static_cast<RamDomain>(", rel.Arity)
		//
		for i, value := range project.Values {
			if i != 0 {
				fmt.Fprintf(w, "),static_cast<RamDomain>(")
			}
			//
			e.expression(w, value)
		}
		//
		fmt.Fprintf(w, ")}};\n")
	}
	// insert the tuple using the relation's context
	fmt.Fprintf(w, "%s->insert(tuple,%s);\n", relName, e.readContext(rel))
	e.end(w, "Project")
}
