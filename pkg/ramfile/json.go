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
package ramfile

import (
	"encoding/json"
	"fmt"

	"github.com/datalog-lang/go-datalog/pkg/ram"
)

// The JSON program form is the human-readable counterpart of the gob
// encoding, used by tests and tooling.  Every tree node maps to one object
// whose "kind" field selects the variant; relations are referenced by name
// and resolved against the declaration list on reading.

type jsonFile struct {
	Relations   []jsonRelation   `json:"relations"`
	Main        *jsonNode        `json:"main"`
	Subroutines []jsonSubroutine `json:"subroutines,omitempty"`
	Symbols     []string         `json:"symbols,omitempty"`
}

type jsonRelation struct {
	Name           string   `json:"name"`
	Arity          int      `json:"arity"`
	AuxiliaryArity int      `json:"aux,omitempty"`
	AttributeNames []string `json:"attributeNames,omitempty"`
	AttributeTypes []string `json:"attributeTypes,omitempty"`
	Representation string   `json:"representation,omitempty"`
	Temp           bool     `json:"temp,omitempty"`
}

type jsonSubroutine struct {
	Name string    `json:"name"`
	Body *jsonNode `json:"body"`
}

// One object shape serves all node kinds; unused fields stay absent.
type jsonNode struct {
	Kind        string              `json:"kind"`
	Name        string              `json:"name,omitempty"`
	Type        string              `json:"type,omitempty"`
	Op          string              `json:"op,omitempty"`
	Function    string              `json:"function,omitempty"`
	Relation    string              `json:"relation,omitempty"`
	First       string              `json:"first,omitempty"`
	Second      string              `json:"second,omitempty"`
	Source      string              `json:"source,omitempty"`
	Target      string              `json:"target,omitempty"`
	Message     string              `json:"message,omitempty"`
	ProfileText string              `json:"profileText,omitempty"`
	TupleID     int                 `json:"tupleId,omitempty"`
	Element     int                 `json:"element,omitempty"`
	Index       int                 `json:"index,omitempty"`
	Arity       int                 `json:"arity,omitempty"`
	Number      int64               `json:"number,omitempty"`
	Unsigned    uint64              `json:"unsigned,omitempty"`
	Float       float64             `json:"float,omitempty"`
	Statements  []jsonNode          `json:"statements,omitempty"`
	Statement   *jsonNode           `json:"statement,omitempty"`
	Operation   *jsonNode           `json:"operation,omitempty"`
	Body        *jsonNode           `json:"body,omitempty"`
	Condition   *jsonNode           `json:"condition,omitempty"`
	LHS         *jsonNode           `json:"lhs,omitempty"`
	RHS         *jsonNode           `json:"rhs,omitempty"`
	Operand     *jsonNode           `json:"operand,omitempty"`
	Expression  *jsonNode           `json:"expression,omitempty"`
	Pattern     []jsonNode          `json:"pattern,omitempty"`
	Values      []jsonNode          `json:"values,omitempty"`
	Args        []jsonNode          `json:"args,omitempty"`
	Directives  []map[string]string `json:"directives,omitempty"`
}

// ToJson renders a program and its symbol table in the JSON program form.
func ToJson(prog *ram.Program, symbols *ram.SymbolTable) ([]byte, error) {
	file := jsonFile{
		Main:    statementToJson(prog.Main),
		Symbols: symbols.Symbols(),
	}
	//
	for _, rel := range prog.Relations {
		file.Relations = append(file.Relations, jsonRelation{
			Name:           rel.Name,
			Arity:          rel.Arity,
			AuxiliaryArity: rel.AuxiliaryArity,
			AttributeNames: rel.AttributeNames,
			AttributeTypes: rel.AttributeTypes,
			Representation: rel.Representation.String(),
			Temp:           rel.Temp,
		})
	}
	//
	for _, sub := range prog.Subroutines {
		file.Subroutines = append(file.Subroutines, jsonSubroutine{
			Name: sub.Name,
			Body: statementToJson(sub.Body),
		})
	}
	//
	return json.MarshalIndent(file, "", "  ")
}

// FromJson parses the JSON program form.  Relation references are resolved
// against the declaration list, so pointer identity holds across the tree.
func FromJson(data []byte) (*ram.Program, *ram.SymbolTable, error) {
	var file jsonFile
	//
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, nil, fmt.Errorf("parsing RAM program: %w", err)
	}
	//
	if file.Main == nil {
		return nil, nil, fmt.Errorf("parsing RAM program: no main statement present")
	}
	//
	reader := &jsonReader{relations: make(map[string]*ram.Relation)}
	prog := &ram.Program{}
	//
	for _, rel := range file.Relations {
		representation, err := ram.ParseRepresentation(rel.Representation)
		if err != nil {
			return nil, nil, err
		}
		//
		decl := &ram.Relation{
			Name:           rel.Name,
			Arity:          rel.Arity,
			AuxiliaryArity: rel.AuxiliaryArity,
			AttributeNames: rel.AttributeNames,
			AttributeTypes: rel.AttributeTypes,
			Representation: representation,
			Temp:           rel.Temp,
		}
		//
		prog.Relations = append(prog.Relations, decl)
		reader.relations[rel.Name] = decl
	}
	//
	main, err := reader.statement(file.Main)
	if err != nil {
		return nil, nil, err
	}
	//
	prog.Main = main
	//
	for _, sub := range file.Subroutines {
		body, err := reader.statement(sub.Body)
		if err != nil {
			return nil, nil, err
		}
		//
		prog.Subroutines = append(prog.Subroutines, ram.Subroutine{Name: sub.Name, Body: body})
	}
	//
	return prog, ram.NewSymbolTable(file.Symbols...), nil
}

// -- writing ----------------------------------------------------------------

func statementsToJson(stmts []ram.Statement) []jsonNode {
	nodes := make([]jsonNode, len(stmts))
	for i, s := range stmts {
		nodes[i] = *statementToJson(s)
	}
	//
	return nodes
}

//nolint:gocyclo
func statementToJson(stmt ram.Statement) *jsonNode {
	switch stmt := stmt.(type) {
	case *ram.Sequence:
		return &jsonNode{Kind: "sequence", Statements: statementsToJson(stmt.Statements)}
	case *ram.Parallel:
		return &jsonNode{Kind: "parallel", Statements: statementsToJson(stmt.Statements)}
	case *ram.Loop:
		return &jsonNode{Kind: "loop", Body: statementToJson(stmt.Body)}
	case *ram.Exit:
		return &jsonNode{Kind: "exit", Condition: conditionToJson(stmt.Condition)}
	case *ram.Swap:
		return &jsonNode{Kind: "swap", First: stmt.First.Name, Second: stmt.Second.Name}
	case *ram.Extend:
		return &jsonNode{Kind: "extend", Source: stmt.Source.Name, Target: stmt.Target.Name}
	case *ram.Clear:
		return &jsonNode{Kind: "clear", Relation: stmt.Relation.Name}
	case *ram.Load:
		return &jsonNode{Kind: "load", Relation: stmt.Relation.Name,
			Directives: directivesToJson(stmt.Directives)}
	case *ram.Store:
		return &jsonNode{Kind: "store", Relation: stmt.Relation.Name,
			Directives: directivesToJson(stmt.Directives)}
	case *ram.LogSize:
		return &jsonNode{Kind: "logsize", Relation: stmt.Relation.Name, Message: stmt.Message}
	case *ram.LogRelationTimer:
		return &jsonNode{Kind: "logreltimer", Relation: stmt.Relation.Name,
			Message: stmt.Message, Statement: statementToJson(stmt.Statement)}
	case *ram.LogTimer:
		return &jsonNode{Kind: "logtimer", Message: stmt.Message,
			Statement: statementToJson(stmt.Statement)}
	case *ram.DebugInfo:
		return &jsonNode{Kind: "debuginfo", Message: stmt.Message,
			Statement: statementToJson(stmt.Statement)}
	case *ram.Query:
		return &jsonNode{Kind: "query", Operation: operationToJson(stmt.Operation)}
	default:
		panic(fmt.Sprintf("unknown RAM statement type %T", stmt))
	}
}

//nolint:gocyclo
func operationToJson(op ram.Operation) *jsonNode {
	switch op := op.(type) {
	case *ram.Scan:
		return &jsonNode{Kind: "scan", Relation: op.Relation.Name, TupleID: op.TupleID,
			ProfileText: op.ProfileText, Body: operationToJson(op.Body)}
	case *ram.ParallelScan:
		return &jsonNode{Kind: "parallelscan", Relation: op.Relation.Name, TupleID: op.TupleID,
			ProfileText: op.ProfileText, Body: operationToJson(op.Body)}
	case *ram.IndexScan:
		return &jsonNode{Kind: "indexscan", Relation: op.Relation.Name, TupleID: op.TupleID,
			Pattern: expressionsToJson(op.RangePattern), ProfileText: op.ProfileText,
			Body: operationToJson(op.Body)}
	case *ram.ParallelIndexScan:
		return &jsonNode{Kind: "parallelindexscan", Relation: op.Relation.Name, TupleID: op.TupleID,
			Pattern: expressionsToJson(op.RangePattern), ProfileText: op.ProfileText,
			Body: operationToJson(op.Body)}
	case *ram.Choice:
		return &jsonNode{Kind: "choice", Relation: op.Relation.Name, TupleID: op.TupleID,
			Condition: conditionToJson(op.Condition), ProfileText: op.ProfileText,
			Body: operationToJson(op.Body)}
	case *ram.ParallelChoice:
		return &jsonNode{Kind: "parallelchoice", Relation: op.Relation.Name, TupleID: op.TupleID,
			Condition: conditionToJson(op.Condition), ProfileText: op.ProfileText,
			Body: operationToJson(op.Body)}
	case *ram.IndexChoice:
		return &jsonNode{Kind: "indexchoice", Relation: op.Relation.Name, TupleID: op.TupleID,
			Pattern: expressionsToJson(op.RangePattern), Condition: conditionToJson(op.Condition),
			ProfileText: op.ProfileText, Body: operationToJson(op.Body)}
	case *ram.ParallelIndexChoice:
		return &jsonNode{Kind: "parallelindexchoice", Relation: op.Relation.Name, TupleID: op.TupleID,
			Pattern: expressionsToJson(op.RangePattern), Condition: conditionToJson(op.Condition),
			ProfileText: op.ProfileText, Body: operationToJson(op.Body)}
	case *ram.Aggregate:
		return &jsonNode{Kind: "aggregate", Function: op.Function.String(),
			Relation: op.Relation.Name, TupleID: op.TupleID,
			Expression: expressionToJson(op.Expression), Condition: conditionToJson(op.Condition),
			ProfileText: op.ProfileText, Body: operationToJson(op.Body)}
	case *ram.IndexAggregate:
		return &jsonNode{Kind: "indexaggregate", Function: op.Function.String(),
			Relation: op.Relation.Name, TupleID: op.TupleID,
			Pattern:    expressionsToJson(op.RangePattern),
			Expression: expressionToJson(op.Expression), Condition: conditionToJson(op.Condition),
			ProfileText: op.ProfileText, Body: operationToJson(op.Body)}
	case *ram.UnpackRecord:
		return &jsonNode{Kind: "unpackrecord", Expression: expressionToJson(op.Expression),
			Arity: op.Arity, TupleID: op.TupleID, ProfileText: op.ProfileText,
			Body: operationToJson(op.Body)}
	case *ram.Filter:
		return &jsonNode{Kind: "filter", Condition: conditionToJson(op.Condition),
			ProfileText: op.ProfileText, Body: operationToJson(op.Body)}
	case *ram.Break:
		return &jsonNode{Kind: "break", Condition: conditionToJson(op.Condition),
			ProfileText: op.ProfileText, Body: operationToJson(op.Body)}
	case *ram.Project:
		return &jsonNode{Kind: "project", Relation: op.Relation.Name,
			Values: expressionsToJson(op.Values)}
	case *ram.SubroutineReturnValue:
		return &jsonNode{Kind: "return", Values: expressionsToJson(op.Values)}
	default:
		panic(fmt.Sprintf("unknown RAM operation type %T", op))
	}
}

func conditionToJson(cond ram.Condition) *jsonNode {
	switch cond := cond.(type) {
	case *ram.True:
		return &jsonNode{Kind: "true"}
	case *ram.False:
		return &jsonNode{Kind: "false"}
	case *ram.Conjunction:
		return &jsonNode{Kind: "and", LHS: conditionToJson(cond.LHS), RHS: conditionToJson(cond.RHS)}
	case *ram.Negation:
		return &jsonNode{Kind: "not", Operand: conditionToJson(cond.Operand)}
	case *ram.Constraint:
		return &jsonNode{Kind: "constraint", Op: cond.Op.Name(),
			LHS: expressionToJson(cond.LHS), RHS: expressionToJson(cond.RHS)}
	case *ram.EmptinessCheck:
		return &jsonNode{Kind: "empty", Relation: cond.Relation.Name}
	case *ram.ExistenceCheck:
		return &jsonNode{Kind: "exists", Relation: cond.Relation.Name,
			Values: expressionsToJson(cond.Values)}
	case *ram.ProvenanceExistenceCheck:
		return &jsonNode{Kind: "provexists", Relation: cond.Relation.Name,
			Values: expressionsToJson(cond.Values)}
	default:
		panic(fmt.Sprintf("unknown RAM condition type %T", cond))
	}
}

func expressionsToJson(exprs []ram.Expression) []jsonNode {
	nodes := make([]jsonNode, len(exprs))
	for i, e := range exprs {
		nodes[i] = *expressionToJson(e)
	}
	//
	return nodes
}

//nolint:gocyclo
func expressionToJson(expr ram.Expression) *jsonNode {
	switch expr := expr.(type) {
	case *ram.SignedConstant:
		return &jsonNode{Kind: "number", Number: expr.Value}
	case *ram.UnsignedConstant:
		return &jsonNode{Kind: "unsigned", Unsigned: expr.Value}
	case *ram.FloatConstant:
		return &jsonNode{Kind: "float", Float: expr.Value}
	case *ram.TupleElement:
		return &jsonNode{Kind: "element", TupleID: expr.TupleID, Element: expr.Element}
	case *ram.AutoIncrement:
		return &jsonNode{Kind: "autoinc"}
	case *ram.IntrinsicOperator:
		return &jsonNode{Kind: "intrinsic", Op: expr.Op.String(), Args: expressionsToJson(expr.Args)}
	case *ram.UserDefinedOperator:
		return &jsonNode{Kind: "functor", Name: expr.Name, Type: expr.TypeSignature,
			Args: expressionsToJson(expr.Args)}
	case *ram.PackRecord:
		return &jsonNode{Kind: "pack", Args: expressionsToJson(expr.Args)}
	case *ram.SubroutineArgument:
		return &jsonNode{Kind: "argument", Index: expr.Index}
	case *ram.SubroutineReturnValue:
		return &jsonNode{Kind: "return", Values: expressionsToJson(expr.Values)}
	case *ram.UndefValue:
		return &jsonNode{Kind: "undef"}
	default:
		panic(fmt.Sprintf("unknown RAM expression type %T", expr))
	}
}

func directivesToJson(directives []ram.Directives) []map[string]string {
	maps := make([]map[string]string, len(directives))
	for i, d := range directives {
		maps[i] = d
	}
	//
	return maps
}

// -- reading ----------------------------------------------------------------

type jsonReader struct {
	relations map[string]*ram.Relation
}

func (r *jsonReader) relation(name string) (*ram.Relation, error) {
	if rel, ok := r.relations[name]; ok {
		return rel, nil
	}
	//
	return nil, fmt.Errorf("undeclared relation %q", name)
}

func (r *jsonReader) statements(nodes []jsonNode) ([]ram.Statement, error) {
	stmts := make([]ram.Statement, len(nodes))
	//
	for i := range nodes {
		stmt, err := r.statement(&nodes[i])
		if err != nil {
			return nil, err
		}
		//
		stmts[i] = stmt
	}
	//
	return stmts, nil
}

//nolint:gocyclo
func (r *jsonReader) statement(n *jsonNode) (ram.Statement, error) {
	if n == nil {
		return nil, fmt.Errorf("missing statement")
	}
	//
	switch n.Kind {
	case "sequence":
		stmts, err := r.statements(n.Statements)
		if err != nil {
			return nil, err
		}
		//
		return &ram.Sequence{Statements: stmts}, nil
	case "parallel":
		stmts, err := r.statements(n.Statements)
		if err != nil {
			return nil, err
		}
		//
		return &ram.Parallel{Statements: stmts}, nil
	case "loop":
		body, err := r.statement(n.Body)
		if err != nil {
			return nil, err
		}
		//
		return &ram.Loop{Body: body}, nil
	case "exit":
		cond, err := r.condition(n.Condition)
		if err != nil {
			return nil, err
		}
		//
		return &ram.Exit{Condition: cond}, nil
	case "swap":
		first, err := r.relation(n.First)
		if err != nil {
			return nil, err
		}
		//
		second, err := r.relation(n.Second)
		if err != nil {
			return nil, err
		}
		//
		return &ram.Swap{First: first, Second: second}, nil
	case "extend":
		source, err := r.relation(n.Source)
		if err != nil {
			return nil, err
		}
		//
		target, err := r.relation(n.Target)
		if err != nil {
			return nil, err
		}
		//
		return &ram.Extend{Source: source, Target: target}, nil
	case "clear":
		rel, err := r.relation(n.Relation)
		if err != nil {
			return nil, err
		}
		//
		return &ram.Clear{Relation: rel}, nil
	case "load":
		rel, err := r.relation(n.Relation)
		if err != nil {
			return nil, err
		}
		//
		return &ram.Load{Relation: rel, Directives: directivesFromJson(n.Directives)}, nil
	case "store":
		rel, err := r.relation(n.Relation)
		if err != nil {
			return nil, err
		}
		//
		return &ram.Store{Relation: rel, Directives: directivesFromJson(n.Directives)}, nil
	case "logsize":
		rel, err := r.relation(n.Relation)
		if err != nil {
			return nil, err
		}
		//
		return &ram.LogSize{Relation: rel, Message: n.Message}, nil
	case "logreltimer":
		rel, err := r.relation(n.Relation)
		if err != nil {
			return nil, err
		}
		//
		stmt, err := r.statement(n.Statement)
		if err != nil {
			return nil, err
		}
		//
		return &ram.LogRelationTimer{Relation: rel, Message: n.Message, Statement: stmt}, nil
	case "logtimer":
		stmt, err := r.statement(n.Statement)
		if err != nil {
			return nil, err
		}
		//
		return &ram.LogTimer{Message: n.Message, Statement: stmt}, nil
	case "debuginfo":
		stmt, err := r.statement(n.Statement)
		if err != nil {
			return nil, err
		}
		//
		return &ram.DebugInfo{Message: n.Message, Statement: stmt}, nil
	case "query":
		op, err := r.operation(n.Operation)
		if err != nil {
			return nil, err
		}
		//
		return &ram.Query{Operation: op}, nil
	}
	//
	return nil, fmt.Errorf("unknown statement kind %q", n.Kind)
}

// Shared fields of the loop-introducing operations.
func (r *jsonReader) nested(n *jsonNode) (ram.NestedOperation, error) {
	body, err := r.operation(n.Body)
	if err != nil {
		return ram.NestedOperation{}, err
	}
	//
	return ram.NestedOperation{Body: body, ProfileText: n.ProfileText}, nil
}

//nolint:gocyclo
func (r *jsonReader) operation(n *jsonNode) (ram.Operation, error) {
	if n == nil {
		return nil, fmt.Errorf("missing operation")
	}
	// project and return terminate a nest and have no body
	switch n.Kind {
	case "project":
		rel, err := r.relation(n.Relation)
		if err != nil {
			return nil, err
		}
		//
		values, err := r.expressions(n.Values)
		if err != nil {
			return nil, err
		}
		//
		return &ram.Project{Relation: rel, Values: values}, nil
	case "return":
		values, err := r.expressions(n.Values)
		if err != nil {
			return nil, err
		}
		//
		return &ram.SubroutineReturnValue{Values: values}, nil
	}
	//
	nested, err := r.nested(n)
	if err != nil {
		return nil, err
	}
	//
	switch n.Kind {
	case "scan":
		rel, err := r.relation(n.Relation)
		if err != nil {
			return nil, err
		}
		//
		return &ram.Scan{Relation: rel, TupleID: n.TupleID, NestedOperation: nested}, nil
	case "parallelscan":
		rel, err := r.relation(n.Relation)
		if err != nil {
			return nil, err
		}
		//
		return &ram.ParallelScan{Relation: rel, TupleID: n.TupleID, NestedOperation: nested}, nil
	case "indexscan":
		rel, pattern, err := r.indexed(n)
		if err != nil {
			return nil, err
		}
		//
		return &ram.IndexScan{Relation: rel, TupleID: n.TupleID, RangePattern: pattern,
			NestedOperation: nested}, nil
	case "parallelindexscan":
		rel, pattern, err := r.indexed(n)
		if err != nil {
			return nil, err
		}
		//
		return &ram.ParallelIndexScan{Relation: rel, TupleID: n.TupleID, RangePattern: pattern,
			NestedOperation: nested}, nil
	case "choice":
		rel, cond, err := r.guarded(n)
		if err != nil {
			return nil, err
		}
		//
		return &ram.Choice{Relation: rel, TupleID: n.TupleID, Condition: cond,
			NestedOperation: nested}, nil
	case "parallelchoice":
		rel, cond, err := r.guarded(n)
		if err != nil {
			return nil, err
		}
		//
		return &ram.ParallelChoice{Relation: rel, TupleID: n.TupleID, Condition: cond,
			NestedOperation: nested}, nil
	case "indexchoice":
		rel, cond, err := r.guarded(n)
		if err != nil {
			return nil, err
		}
		//
		pattern, err := r.expressions(n.Pattern)
		if err != nil {
			return nil, err
		}
		//
		return &ram.IndexChoice{Relation: rel, TupleID: n.TupleID, RangePattern: pattern,
			Condition: cond, NestedOperation: nested}, nil
	case "parallelindexchoice":
		rel, cond, err := r.guarded(n)
		if err != nil {
			return nil, err
		}
		//
		pattern, err := r.expressions(n.Pattern)
		if err != nil {
			return nil, err
		}
		//
		return &ram.ParallelIndexChoice{Relation: rel, TupleID: n.TupleID, RangePattern: pattern,
			Condition: cond, NestedOperation: nested}, nil
	case "aggregate":
		fn, rel, expr, cond, err := r.aggregate(n)
		if err != nil {
			return nil, err
		}
		//
		return &ram.Aggregate{Function: fn, Relation: rel, TupleID: n.TupleID,
			Expression: expr, Condition: cond, NestedOperation: nested}, nil
	case "indexaggregate":
		fn, rel, expr, cond, err := r.aggregate(n)
		if err != nil {
			return nil, err
		}
		//
		pattern, err := r.expressions(n.Pattern)
		if err != nil {
			return nil, err
		}
		//
		return &ram.IndexAggregate{Function: fn, Relation: rel, TupleID: n.TupleID,
			Expression: expr, Condition: cond, RangePattern: pattern,
			NestedOperation: nested}, nil
	case "unpackrecord":
		expr, err := r.expression(n.Expression)
		if err != nil {
			return nil, err
		}
		//
		return &ram.UnpackRecord{Expression: expr, Arity: n.Arity, TupleID: n.TupleID,
			NestedOperation: nested}, nil
	case "filter":
		cond, err := r.condition(n.Condition)
		if err != nil {
			return nil, err
		}
		//
		return &ram.Filter{Condition: cond, NestedOperation: nested}, nil
	case "break":
		cond, err := r.condition(n.Condition)
		if err != nil {
			return nil, err
		}
		//
		return &ram.Break{Condition: cond, NestedOperation: nested}, nil
	}
	//
	return nil, fmt.Errorf("unknown operation kind %q", n.Kind)
}

func (r *jsonReader) indexed(n *jsonNode) (*ram.Relation, []ram.Expression, error) {
	rel, err := r.relation(n.Relation)
	if err != nil {
		return nil, nil, err
	}
	//
	pattern, err := r.expressions(n.Pattern)
	if err != nil {
		return nil, nil, err
	}
	//
	return rel, pattern, nil
}

func (r *jsonReader) guarded(n *jsonNode) (*ram.Relation, ram.Condition, error) {
	rel, err := r.relation(n.Relation)
	if err != nil {
		return nil, nil, err
	}
	//
	cond, err := r.condition(n.Condition)
	if err != nil {
		return nil, nil, err
	}
	//
	return rel, cond, nil
}

func (r *jsonReader) aggregate(n *jsonNode) (ram.AggregateFunction, *ram.Relation,
	ram.Expression, ram.Condition, error) {
	fn, err := ram.ParseAggregateFunction(n.Function)
	if err != nil {
		return 0, nil, nil, nil, err
	}
	//
	rel, err := r.relation(n.Relation)
	if err != nil {
		return 0, nil, nil, nil, err
	}
	//
	expr, err := r.expression(n.Expression)
	if err != nil {
		return 0, nil, nil, nil, err
	}
	//
	cond, err := r.condition(n.Condition)
	if err != nil {
		return 0, nil, nil, nil, err
	}
	//
	return fn, rel, expr, cond, nil
}

func (r *jsonReader) condition(n *jsonNode) (ram.Condition, error) {
	if n == nil {
		return nil, fmt.Errorf("missing condition")
	}
	//
	switch n.Kind {
	case "true":
		return &ram.True{}, nil
	case "false":
		return &ram.False{}, nil
	case "and":
		lhs, err := r.condition(n.LHS)
		if err != nil {
			return nil, err
		}
		//
		rhs, err := r.condition(n.RHS)
		if err != nil {
			return nil, err
		}
		//
		return &ram.Conjunction{LHS: lhs, RHS: rhs}, nil
	case "not":
		operand, err := r.condition(n.Operand)
		if err != nil {
			return nil, err
		}
		//
		return &ram.Negation{Operand: operand}, nil
	case "constraint":
		op, err := ram.ParseBinaryConstraintOp(n.Op)
		if err != nil {
			return nil, err
		}
		//
		lhs, err := r.expression(n.LHS)
		if err != nil {
			return nil, err
		}
		//
		rhs, err := r.expression(n.RHS)
		if err != nil {
			return nil, err
		}
		//
		return &ram.Constraint{Op: op, LHS: lhs, RHS: rhs}, nil
	case "empty":
		rel, err := r.relation(n.Relation)
		if err != nil {
			return nil, err
		}
		//
		return &ram.EmptinessCheck{Relation: rel}, nil
	case "exists":
		rel, values, err := r.checked(n)
		if err != nil {
			return nil, err
		}
		//
		return &ram.ExistenceCheck{Relation: rel, Values: values}, nil
	case "provexists":
		rel, values, err := r.checked(n)
		if err != nil {
			return nil, err
		}
		//
		return &ram.ProvenanceExistenceCheck{Relation: rel, Values: values}, nil
	}
	//
	return nil, fmt.Errorf("unknown condition kind %q", n.Kind)
}

func (r *jsonReader) checked(n *jsonNode) (*ram.Relation, []ram.Expression, error) {
	rel, err := r.relation(n.Relation)
	if err != nil {
		return nil, nil, err
	}
	//
	values, err := r.expressions(n.Values)
	if err != nil {
		return nil, nil, err
	}
	//
	return rel, values, nil
}

func (r *jsonReader) expressions(nodes []jsonNode) ([]ram.Expression, error) {
	exprs := make([]ram.Expression, len(nodes))
	//
	for i := range nodes {
		expr, err := r.expression(&nodes[i])
		if err != nil {
			return nil, err
		}
		//
		exprs[i] = expr
	}
	//
	return exprs, nil
}

//nolint:gocyclo
func (r *jsonReader) expression(n *jsonNode) (ram.Expression, error) {
	if n == nil {
		return nil, fmt.Errorf("missing expression")
	}
	//
	switch n.Kind {
	case "number":
		return &ram.SignedConstant{Value: n.Number}, nil
	case "unsigned":
		return &ram.UnsignedConstant{Value: n.Unsigned}, nil
	case "float":
		return &ram.FloatConstant{Value: n.Float}, nil
	case "element":
		return &ram.TupleElement{TupleID: n.TupleID, Element: n.Element}, nil
	case "autoinc":
		return &ram.AutoIncrement{}, nil
	case "intrinsic":
		op, err := ram.ParseFunctorOp(n.Op)
		if err != nil {
			return nil, err
		}
		//
		args, err := r.expressions(n.Args)
		if err != nil {
			return nil, err
		}
		//
		return &ram.IntrinsicOperator{Op: op, Args: args}, nil
	case "functor":
		args, err := r.expressions(n.Args)
		if err != nil {
			return nil, err
		}
		//
		return &ram.UserDefinedOperator{Name: n.Name, TypeSignature: n.Type, Args: args}, nil
	case "pack":
		args, err := r.expressions(n.Args)
		if err != nil {
			return nil, err
		}
		//
		return &ram.PackRecord{Args: args}, nil
	case "argument":
		return &ram.SubroutineArgument{Index: n.Index}, nil
	case "return":
		values, err := r.expressions(n.Values)
		if err != nil {
			return nil, err
		}
		//
		return &ram.SubroutineReturnValue{Values: values}, nil
	case "undef":
		return &ram.UndefValue{}, nil
	}
	//
	return nil, fmt.Errorf("unknown expression kind %q", n.Kind)
}

func directivesFromJson(maps []map[string]string) []ram.Directives {
	directives := make([]ram.Directives, len(maps))
	for i, m := range maps {
		directives[i] = m
	}
	//
	return directives
}
