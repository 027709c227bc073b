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
package analysis

import (
	"sort"

	"github.com/bits-and-blooms/bitset"
)

// Placement locates a search signature within an index selection: the index
// realising it and the length of the index prefix it binds.
type Placement struct {
	Index  int
	Prefix int
}

// IndexSelection is the covering set of indexes chosen for one relation.
// Signatures used on the relation are arranged into subset-ordered chains;
// each chain contributes one lexicographic column order, completed to full
// arity so the first index can also serve insertion and full scans.
type IndexSelection struct {
	arity      int
	orders     [][]uint32
	placements map[SearchSignature]Placement
	searches   []SearchSignature
}

// NewIndexSelection computes a covering selection for a relation of the
// given arity from the set of signatures used on it.
func NewIndexSelection(arity int, searches []SearchSignature) *IndexSelection {
	selection := &IndexSelection{
		arity:      arity,
		placements: make(map[SearchSignature]Placement),
	}
	// Deduplicate, dropping the empty signature (a full scan needs no key)
	seen := make(map[SearchSignature]bool)
	//
	for _, s := range searches {
		if !s.Empty() && !seen[s] {
			seen[s] = true
			selection.searches = append(selection.searches, s)
		}
	}
	// Chains are built smallest-first so subset links are found greedily
	sort.Slice(selection.searches, func(i, j int) bool {
		l, r := selection.searches[i], selection.searches[j]
		if l.Count() != r.Count() {
			return l.Count() < r.Count()
		}
		//
		return l < r
	})
	//
	selection.buildChains()
	// A relation always carries at least one index, covering all columns
	if len(selection.orders) == 0 && arity > 0 {
		selection.orders = append(selection.orders, completeOrder(nil, arity))
	}
	//
	return selection
}

// Arrange the search set into subset chains and derive one column order per
// chain.
func (s *IndexSelection) buildChains() {
	var chains [][]SearchSignature
	//
	for _, sig := range s.searches {
		placed := false
		// Extend the first chain whose tip is a subset of this signature
		for i, chain := range chains {
			if sig.Contains(chain[len(chain)-1]) {
				chains[i] = append(chain, sig)
				placed = true

				break
			}
		}
		//
		if !placed {
			chains = append(chains, []SearchSignature{sig})
		}
	}
	//
	for idx, chain := range chains {
		order := chainOrder(chain, s.arity)
		s.orders = append(s.orders, order)
		//
		for _, sig := range chain {
			s.placements[sig] = Placement{Index: idx, Prefix: sig.Count()}
		}
	}
}

// Derive the lexicographic column order of a chain: the columns of each
// signature appear before those added by its successors, ascending within
// each step, padded with the unused columns.
func chainOrder(chain []SearchSignature, arity int) []uint32 {
	var (
		order  []uint32
		placed = bitset.New(uint(arity))
	)
	//
	for _, sig := range chain {
		for _, col := range sig.Columns() {
			if !placed.Test(uint(col)) {
				placed.Set(uint(col))
				order = append(order, col)
			}
		}
	}
	//
	return completeOrderWith(order, placed, arity)
}

func completeOrder(order []uint32, arity int) []uint32 {
	placed := bitset.New(uint(arity))
	for _, col := range order {
		placed.Set(uint(col))
	}
	//
	return completeOrderWith(order, placed, arity)
}

func completeOrderWith(order []uint32, placed *bitset.BitSet, arity int) []uint32 {
	for col := uint(0); col < uint(arity); col++ {
		if !placed.Test(col) {
			order = append(order, uint32(col))
		}
	}
	//
	return order
}

// Orders returns the lexicographic column order of every index, one per
// chain.
func (s *IndexSelection) Orders() [][]uint32 {
	return s.orders
}

// Searches returns the covered (non-empty) search signatures in
// deterministic order.
func (s *IndexSelection) Searches() []SearchSignature {
	return s.searches
}

// Placement returns the index and prefix length realising the given
// signature.
func (s *IndexSelection) Placement(sig SearchSignature) Placement {
	p, ok := s.placements[sig]
	if !ok {
		panic("no index covers search signature " + sig.String())
	}
	//
	return p
}
