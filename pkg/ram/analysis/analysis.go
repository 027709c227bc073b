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

// Package analysis determines, for every indexed access in a RAM program,
// which columns are constrained (its search signature), and chooses a
// minimal covering set of indexes per relation.  The synthesiser consults it
// at every access site to select the concrete lookup entry point.
package analysis

import (
	log "github.com/sirupsen/logrus"

	"github.com/datalog-lang/go-datalog/pkg/ram"
)

// IndexAnalysis holds the per-access search signatures and the per-relation
// index selections of one RAM program.
type IndexAnalysis struct {
	signatures map[ram.Node]SearchSignature
	totals     map[ram.Node]bool
	selections map[*ram.Relation]*IndexSelection
}

// Analyse computes the index analysis of a program: it walks the main
// statement and all subroutines, derives the search signature of every
// indexed access, and computes one covering index selection per relation.
func Analyse(prog *ram.Program) *IndexAnalysis {
	a := &IndexAnalysis{
		signatures: make(map[ram.Node]SearchSignature),
		totals:     make(map[ram.Node]bool),
		selections: make(map[*ram.Relation]*IndexSelection),
	}
	//
	searches := make(map[*ram.Relation][]SearchSignature)
	//
	ram.VisitDepthFirst(prog, func(n ram.Node) {
		switch n := n.(type) {
		case *ram.IndexScan:
			a.register(searches, n, n.Relation, SignatureFromPattern(n.RangePattern))
		case *ram.ParallelIndexScan:
			a.register(searches, n, n.Relation, SignatureFromPattern(n.RangePattern))
		case *ram.IndexChoice:
			a.register(searches, n, n.Relation, SignatureFromPattern(n.RangePattern))
		case *ram.ParallelIndexChoice:
			a.register(searches, n, n.Relation, SignatureFromPattern(n.RangePattern))
		case *ram.IndexAggregate:
			a.register(searches, n, n.Relation, SignatureFromPattern(n.RangePattern))
		case *ram.ExistenceCheck:
			a.register(searches, n, n.Relation, SignatureFromPattern(n.Values))
		case *ram.ProvenanceExistenceCheck:
			a.register(searches, n, n.Relation, provenanceSignature(n))
		}
	})
	//
	for _, rel := range prog.Relations {
		a.selections[rel] = NewIndexSelection(rel.Arity, searches[rel])
		//
		log.Debugf("relation %s: %d indexes for %d searches", rel.Name,
			len(a.selections[rel].Orders()), len(a.selections[rel].Searches()))
	}
	//
	return a
}

func (a *IndexAnalysis) register(searches map[*ram.Relation][]SearchSignature,
	n ram.Node, rel *ram.Relation, sig SearchSignature) {
	a.signatures[n] = sig
	a.totals[n] = sig == TotalSignature(rel.Arity)
	searches[rel] = append(searches[rel], sig)
}

// A provenance existence check queries all non-provenance columns plus the
// first auxiliary column; the remaining height columns are left open for the
// lexicographic bound.
func provenanceSignature(n *ram.ProvenanceExistenceCheck) SearchSignature {
	var (
		sig   SearchSignature
		bound = n.Relation.Arity - n.Relation.AuxiliaryArity + 1
	)
	//
	for i := 0; i < bound && i < len(n.Values); i++ {
		if !ram.IsUndefValue(n.Values[i]) {
			sig |= 1 << uint(i)
		}
	}
	//
	return sig
}

// SearchSignature returns the signature derived for an indexed access node.
func (a *IndexAnalysis) SearchSignature(n ram.Node) SearchSignature {
	sig, ok := a.signatures[n]
	if !ok {
		panic("no search signature derived for node")
	}
	//
	return sig
}

// IsTotalSignature reports whether the given access constrains every column
// of its relation (a point query).
func (a *IndexAnalysis) IsTotalSignature(n ram.Node) bool {
	total, ok := a.totals[n]
	if !ok {
		panic("no search signature derived for node")
	}
	//
	return total
}

// Selection returns the index selection of the given relation.
func (a *IndexAnalysis) Selection(rel *ram.Relation) *IndexSelection {
	sel, ok := a.selections[rel]
	if !ok {
		// Relations outside the analysed program still realise a default
		// selection so the synthesiser can emit their container type.
		sel = NewIndexSelection(rel.Arity, nil)
		a.selections[rel] = sel
	}
	//
	return sel
}

// Indexes returns the lexicographic column orders of the relation's chosen
// indexes.
func (a *IndexAnalysis) Indexes(rel *ram.Relation) [][]uint32 {
	return a.Selection(rel).Orders()
}
