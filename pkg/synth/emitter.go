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
	"bytes"
	"fmt"
	"io"

	"github.com/datalog-lang/go-datalog/pkg/ram"
	"github.com/datalog-lang/go-datalog/pkg/ram/analysis"
)

// codeEmitter lowers RAM statements, operations, conditions and expressions
// to C++ fragments.  One emitter serves one emission pass; the preamble
// buffer carries the operation-context creation lines of the current query
// so parallel operations can inject them inside each worker.
type codeEmitter struct {
	s   *Synthesiser
	isa *analysis.IndexAnalysis
	// Context-creation preamble of the current query
	preamble bytes.Buffer
	// Whether the current query's preamble was claimed by a parallel
	// operation; at most one loop per query can be parallel
	preambleIssued bool
}

func newCodeEmitter(s *Synthesiser) *codeEmitter {
	return &codeEmitter{s: s, isa: s.unit.Analysis}
}

// emitCode lowers one RAM statement tree into the given writer.
func (s *Synthesiser) emitCode(w io.Writer, stmt ram.Statement) {
	newCodeEmitter(s).statement(w, stmt)
}

func (e *codeEmitter) begin(w io.Writer, what string) {
	if e.s.cfg.Comments() {
		fmt.Fprintf(w, "/* BEGIN %s */\n", what)
	}
}

func (e *codeEmitter) end(w io.Writer, what string) {
	if e.s.cfg.Comments() {
		fmt.Fprintf(w, "/* END %s */\n", what)
	}
}

// -- statements -------------------------------------------------------------

func (e *codeEmitter) statement(w io.Writer, stmt ram.Statement) {
	switch stmt := stmt.(type) {
	case *ram.Sequence:
		e.emitSequence(w, stmt)
	case *ram.Parallel:
		e.emitParallel(w, stmt)
	case *ram.Loop:
		e.emitLoop(w, stmt)
	case *ram.Exit:
		e.emitExit(w, stmt)
	case *ram.Swap:
		e.emitSwap(w, stmt)
	case *ram.Extend:
		e.emitExtend(w, stmt)
	case *ram.Clear:
		e.emitClear(w, stmt)
	case *ram.Load:
		e.emitLoad(w, stmt)
	case *ram.Store:
		e.emitStore(w, stmt)
	case *ram.LogSize:
		e.emitLogSize(w, stmt)
	case *ram.LogRelationTimer:
		e.emitLogRelationTimer(w, stmt)
	case *ram.LogTimer:
		e.emitLogTimer(w, stmt)
	case *ram.DebugInfo:
		e.emitDebugInfo(w, stmt)
	case *ram.Query:
		e.emitQuery(w, stmt)
	default:
		panic(fmt.Sprintf("unsupported statement type %T", stmt))
	}
}

func (e *codeEmitter) emitSequence(w io.Writer, seq *ram.Sequence) {
	e.begin(w, "Sequence")
	//
	for _, cur := range seq.Statements {
		e.statement(w, cur)
	}
	//
	e.end(w, "Sequence")
}

func (e *codeEmitter) emitParallel(w io.Writer, par *ram.Parallel) {
	e.begin(w, "Parallel")
	//
	stmts := par.Statements
	//
	switch len(stmts) {
	case 0:
		// nothing to do
	case 1:
		// a single statement, save the sections overhead
		e.statement(w, stmts[0])
	default:
		fmt.Fprintf(w, "SECTIONS_START;\n")
		//
		for _, cur := range stmts {
			fmt.Fprintf(w, "SECTION_START;\n")
			e.statement(w, cur)
			fmt.Fprintf(w, "SECTION_END\n")
		}
		//
		fmt.Fprintf(w, "SECTIONS_END;\n")
	}
	//
	e.end(w, "Parallel")
}

func (e *codeEmitter) emitLoop(w io.Writer, loop *ram.Loop) {
	e.begin(w, "Loop")
	fmt.Fprintf(w, "iter = 0;\n")
	fmt.Fprintf(w, "for(;;) {\n")
	e.statement(w, loop.Body)
	fmt.Fprintf(w, "iter++;\n")
	fmt.Fprintf(w, "}\n")
	fmt.Fprintf(w, "iter = 0;\n")
	e.end(w, "Loop")
}

func (e *codeEmitter) emitExit(w io.Writer, exit *ram.Exit) {
	e.begin(w, "Exit")
	fmt.Fprintf(w, "if(")
	e.condition(w, exit.Condition)
	fmt.Fprintf(w, ") break;\n")
	e.end(w, "Exit")
}

func (e *codeEmitter) emitSwap(w io.Writer, swap *ram.Swap) {
	e.begin(w, "Swap")
	fmt.Fprintf(w, "std::swap(%s, %s);\n",
		e.s.relationName(swap.First), e.s.relationName(swap.Second))
	e.end(w, "Swap")
}

func (e *codeEmitter) emitExtend(w io.Writer, extend *ram.Extend) {
	e.begin(w, "Extend")
	fmt.Fprintf(w, "%s->extend(*%s);\n",
		e.s.relationName(extend.Source), e.s.relationName(extend.Target))
	e.end(w, "Extend")
}

func (e *codeEmitter) emitClear(w io.Writer, clear *ram.Clear) {
	e.begin(w, "Clear")
	//
	if clear.Relation.Temp {
		fmt.Fprintf(w, "if (!isHintsProfilingEnabled()) ")
	} else {
		fmt.Fprintf(w, "if (!isHintsProfilingEnabled()&& performIO) ")
	}
	//
	fmt.Fprintf(w, "%s->purge();\n", e.s.relationName(clear.Relation))
	e.end(w, "Clear")
}

func (e *codeEmitter) emitLoad(w io.Writer, load *ram.Load) {
	e.begin(w, "Load")
	fmt.Fprintf(w, "if (performIO) {\n")
	//
	for _, directives := range load.Directives {
		fmt.Fprintf(w, "try {")
		fmt.Fprintf(w, "std::map<std::string, std::string> directiveMap(%s);\n", directives)
		fmt.Fprintf(w, `if (!inputDirectory.empty() && directiveMap["IO"] == "file" && `)
		fmt.Fprintf(w, "directiveMap[\"filename\"].front() != '/') {")
		fmt.Fprintf(w, `directiveMap["filename"] = inputDirectory + "/" + directiveMap["filename"];`)
		fmt.Fprintf(w, "}\n")
		fmt.Fprintf(w, "IODirectives ioDirectives(directiveMap);\n")
		fmt.Fprintf(w, "IOSystem::getInstance().getReader(")
		fmt.Fprintf(w, "std::vector<RamTypeAttribute>({%s})", attributeMask(load.Relation))
		fmt.Fprintf(w, ", symTable, ioDirectives")
		fmt.Fprintf(w, ", %d", load.Relation.AuxiliaryArity)
		fmt.Fprintf(w, ")->readAll(*%s);\n", e.s.relationName(load.Relation))
		fmt.Fprintf(w, "} catch (std::exception& e) {std::cerr << \"Error loading data: \" << e.what() << '\\n';}\n")
	}
	//
	fmt.Fprintf(w, "}\n")
	e.end(w, "Load")
}

func (e *codeEmitter) emitStore(w io.Writer, store *ram.Store) {
	e.begin(w, "Store")
	fmt.Fprintf(w, "if (performIO) {\n")
	//
	for _, directives := range store.Directives {
		fmt.Fprintf(w, "try {")
		fmt.Fprintf(w, "std::map<std::string, std::string> directiveMap(%s);\n", directives)
		fmt.Fprintf(w, `if (!outputDirectory.empty() && directiveMap["IO"] == "file" && `)
		fmt.Fprintf(w, "directiveMap[\"filename\"].front() != '/') {")
		fmt.Fprintf(w, `directiveMap["filename"] = outputDirectory + "/" + directiveMap["filename"];`)
		fmt.Fprintf(w, "}\n")
		fmt.Fprintf(w, "IODirectives ioDirectives(directiveMap);\n")
		fmt.Fprintf(w, "IOSystem::getInstance().getWriter(")
		fmt.Fprintf(w, "std::vector<RamTypeAttribute>({%s})", attributeMask(store.Relation))
		fmt.Fprintf(w, ", symTable, ioDirectives")
		fmt.Fprintf(w, ", %d", store.Relation.AuxiliaryArity)
		fmt.Fprintf(w, ")->writeAll(*%s);\n", e.s.relationName(store.Relation))
		fmt.Fprintf(w, "} catch (std::exception& e) {std::cerr << e.what();exit(1);}\n")
	}
	//
	fmt.Fprintf(w, "}\n")
	e.end(w, "Store")
}

func (e *codeEmitter) emitLogSize(w io.Writer, size *ram.LogSize) {
	e.begin(w, "LogSize")
	fmt.Fprintf(w, "ProfileEventSingleton::instance().makeQuantityEvent( R\"(%s)\",", size.Message)
	fmt.Fprintf(w, "%s->size(),iter);", e.s.relationName(size.Relation))
	e.end(w, "LogSize")
}

func (e *codeEmitter) emitLogRelationTimer(w io.Writer, timer *ram.LogRelationTimer) {
	e.begin(w, "LogRelationTimer")
	// local scope for name resolution
	fmt.Fprintf(w, "{\n")
	fmt.Fprintf(w, "\tLogger logger(R\"_(%s)_\",iter, [&](){return %s->size();});\n",
		timer.Message, e.s.relationName(timer.Relation))
	e.statement(w, timer.Statement)
	fmt.Fprintf(w, "}\n")
	e.end(w, "LogRelationTimer")
}

func (e *codeEmitter) emitLogTimer(w io.Writer, timer *ram.LogTimer) {
	e.begin(w, "LogTimer")
	fmt.Fprintf(w, "{\n")
	fmt.Fprintf(w, "\tLogger logger(R\"_(%s)_\",iter);\n", timer.Message)
	e.statement(w, timer.Statement)
	fmt.Fprintf(w, "}\n")
	e.end(w, "LogTimer")
}

func (e *codeEmitter) emitDebugInfo(w io.Writer, dbg *ram.DebugInfo) {
	e.begin(w, "DebugInfo")
	fmt.Fprintf(w, "SignalHandler::instance()->setMsg(R\"_(%s)_\");\n", dbg.Message)
	e.statement(w, dbg.Statement)
	e.end(w, "DebugInfo")
}

// -- query ------------------------------------------------------------------

func (e *codeEmitter) emitQuery(w io.Writer, query *ram.Query) {
	e.begin(w, "Query")
	// Split the terms of an outer filter into those which require an
	// operation context (existence checks) and those which do not; the
	// latter are discharged before contexts are even created.
	var (
		next       = query.Operation
		requireCtx []ram.Condition
		freeOfCtx  []ram.Condition
	)
	//
	if filter, ok := query.Operation.(*ram.Filter); ok {
		next = filter.Body
		//
		for _, cur := range ram.ToConjunctionList(filter.Condition) {
			needContext := false
			//
			ram.VisitDepthFirst(cur, func(n ram.Node) {
				if _, ok := n.(*ram.ExistenceCheck); ok {
					needContext = true
				}
			})
			//
			if needContext {
				requireCtx = append(requireCtx, cur)
			} else {
				freeOfCtx = append(freeOfCtx, cur)
			}
		}
		//
		if len(freeOfCtx) > 0 {
			fmt.Fprintf(w, "if(")
			e.condition(w, ram.ToCondition(freeOfCtx))
			fmt.Fprintf(w, ") {\n")
		}
	}
	// Outline the search operation in its own scope, so contexts are
	// destroyed on exit
	fmt.Fprintf(w, "[&]()")
	fmt.Fprintf(w, "{\n")
	// check whether the loop nest is parallelised
	isParallel := false
	//
	ram.VisitDepthFirst(next, func(n ram.Node) {
		switch n.(type) {
		case *ram.ParallelScan, *ram.ParallelIndexScan, *ram.ParallelChoice, *ram.ParallelIndexChoice:
			isParallel = true
		}
	})
	// reset preamble
	e.preamble.Reset()
	e.preambleIssued = false
	// create operation contexts for this operation
	for _, rel := range e.s.referencedRelations(query.Operation) {
		fmt.Fprintf(&e.preamble, "CREATE_OP_CONTEXT(%s,%s->createContext());\n",
			e.s.opContextName(rel), e.s.relationName(rel))
	}
	// discharge conditions that require a context
	if isParallel {
		// the parallel operation injects the preamble inside each worker,
		// making contexts thread-local
		if len(requireCtx) > 0 {
			fmt.Fprintf(&e.preamble, "if(")
			e.condition(&e.preamble, ram.ToCondition(requireCtx))
			fmt.Fprintf(&e.preamble, ") {\n")
			e.operation(w, next)
			fmt.Fprintf(w, "}\n")
		} else {
			e.operation(w, next)
		}
	} else {
		_, _ = w.Write(e.preamble.Bytes())
		//
		if len(requireCtx) > 0 {
			fmt.Fprintf(w, "if(")
			e.condition(w, ram.ToCondition(requireCtx))
			fmt.Fprintf(w, ") {\n")
			e.operation(w, next)
			fmt.Fprintf(w, "}\n")
		} else {
			e.operation(w, next)
		}
	}
	//
	if isParallel {
		fmt.Fprintf(w, "PARALLEL_END;\n")
	}
	//
	fmt.Fprintf(w, "}\n")
	fmt.Fprintf(w, "();")
	//
	if len(freeOfCtx) > 0 {
		fmt.Fprintf(w, "}\n")
	}
	//
	e.end(w, "Query")
}

// attributeMask renders the attribute-type mask of a relation as a list of
// runtime type attributes.
func attributeMask(rel *ram.Relation) string {
	var mask bytes.Buffer
	//
	for i, t := range rel.AttributeTypes {
		if i != 0 {
			mask.WriteString(",")
		}
		//
		mask.WriteString(typeAttribute(t))
	}
	//
	return mask.String()
}

func typeAttribute(attributeType string) string {
	if attributeType == "" {
		panic("empty attribute type")
	}
	//
	switch attributeType[0] {
	case 'i':
		return "RamTypeAttribute::Signed"
	case 'u':
		return "RamTypeAttribute::Unsigned"
	case 'f':
		return "RamTypeAttribute::Float"
	case 's':
		return "RamTypeAttribute::Symbol"
	case 'r':
		return "RamTypeAttribute::Record"
	}
	//
	panic(fmt.Sprintf("unknown attribute type %q", attributeType))
}
