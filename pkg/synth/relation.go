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
	"strings"

	"github.com/datalog-lang/go-datalog/pkg/ram"
	"github.com/datalog-lang/go-datalog/pkg/ram/analysis"
)

// Realisation is the concrete data-structure realisation chosen for a
// relation: it knows its unique container type name, its index layout, and
// can emit the container type definition.  Structurally identical
// descriptors yield identical type names, so the synthesiser's type cache
// deduplicates their definitions.
type Realisation interface {
	// Relation returns the realised relation.
	Relation() *ram.Relation
	// TypeName returns the deterministic container type name.
	TypeName() string
	// ProvenanceIndexNumbers returns the numbers of auxiliary provenance
	// indexes, if any.
	ProvenanceIndexNumbers() []int
	// GenerateTypeStruct emits the container type definition.
	GenerateTypeStruct(w io.Writer)
}

// NewRealisation resolves a relation plus its analysed index selection to a
// concrete realisation.  Provenance-info relations bypass indexing
// entirely; the provenance flag adds height indexes to ordinary relations.
func NewRealisation(rel *ram.Relation, sel *analysis.IndexSelection, provenance bool) Realisation {
	switch {
	case rel.IsNullary():
		return &nullaryRealisation{rel: rel}
	case rel.Representation == ram.InfoRepresentation:
		return &infoRealisation{rel: rel}
	case rel.Representation == ram.EqrelRepresentation:
		return &eqrelRealisation{rel: rel, sel: sel}
	case rel.Representation == ram.BrieRepresentation:
		return &brieRealisation{rel: rel, sel: sel}
	default:
		return newBtreeRealisation(rel, sel, provenance)
	}
}

// One-letter codes of the attribute types, used in container type names so
// that structurally distinct relations realise distinct types.
func attributeCodes(rel *ram.Relation) string {
	var codes strings.Builder
	//
	for _, t := range rel.AttributeTypes {
		if len(t) > 0 {
			codes.WriteByte(t[0])
		}
	}
	//
	return codes.String()
}

func orderSuffix(orders [][]uint32) string {
	var suffix strings.Builder
	//
	for _, order := range orders {
		suffix.WriteString("__")
		//
		for i, col := range order {
			if i != 0 {
				suffix.WriteString("_")
			}
			//
			fmt.Fprintf(&suffix, "%d", col)
		}
	}
	//
	return suffix.String()
}

func searchSuffix(searches []analysis.SearchSignature) string {
	var suffix strings.Builder
	//
	for _, sig := range searches {
		suffix.WriteString("__")
		suffix.WriteString(sig.String())
	}
	//
	return suffix.String()
}

// -- nullary ----------------------------------------------------------------

type nullaryRealisation struct {
	rel *ram.Relation
}

func (r *nullaryRealisation) Relation() *ram.Relation { return r.rel }
func (r *nullaryRealisation) TypeName() string { return "t_nullaries" }
func (r *nullaryRealisation) ProvenanceIndexNumbers() []int { return nil }

func (r *nullaryRealisation) GenerateTypeStruct(w io.Writer) {
	fmt.Fprintf(w, "struct %s {\n", r.TypeName())
	fmt.Fprintf(w, "std::atomic<bool> data{false};\n")
	fmt.Fprintf(w, "struct context {};\n")
	fmt.Fprintf(w, "context createContext() { return context(); }\n")
	fmt.Fprintf(w, "bool insert(const Tuple<RamDomain,0>&) { bool was = data.exchange(true); return !was; }\n")
	fmt.Fprintf(w, "bool insert(const Tuple<RamDomain,0>& t, context&) { return insert(t); }\n")
	fmt.Fprintf(w, "bool contains(const Tuple<RamDomain,0>&) const { return data; }\n")
	fmt.Fprintf(w, "bool contains(const Tuple<RamDomain,0>& t, context&) const { return contains(t); }\n")
	fmt.Fprintf(w, "std::size_t size() const { return data ? 1 : 0; }\n")
	fmt.Fprintf(w, "bool empty() const { return !data; }\n")
	fmt.Fprintf(w, "void purge() { data = false; }\n")
	fmt.Fprintf(w, "void printHintStatistics(std::ostream&, const std::string&) const {}\n")
	fmt.Fprintf(w, "};\n")
}

// -- info -------------------------------------------------------------------

// Provenance metadata relations are append-only and never queried through
// indexes, so a plain insertion-ordered store suffices.
type infoRealisation struct {
	rel *ram.Relation
}

func (r *infoRealisation) Relation() *ram.Relation { return r.rel }
func (r *infoRealisation) ProvenanceIndexNumbers() []int { return nil }

func (r *infoRealisation) TypeName() string {
	return fmt.Sprintf("t_info_%s", attributeCodes(r.rel))
}

func (r *infoRealisation) GenerateTypeStruct(w io.Writer) {
	arity := r.rel.Arity
	//
	fmt.Fprintf(w, "struct %s {\n", r.TypeName())
	fmt.Fprintf(w, "using t_tuple = Tuple<RamDomain, %d>;\n", arity)
	fmt.Fprintf(w, "std::vector<t_tuple> data;\n")
	fmt.Fprintf(w, "std::mutex insert_lock;\n")
	fmt.Fprintf(w, "using iterator = std::vector<t_tuple>::const_iterator;\n")
	fmt.Fprintf(w, "struct context {};\n")
	fmt.Fprintf(w, "context createContext() { return context(); }\n")
	fmt.Fprintf(w, "bool insert(const t_tuple& t) {\n")
	fmt.Fprintf(w, "std::lock_guard<std::mutex> guard(insert_lock);\n")
	fmt.Fprintf(w, "data.push_back(t);\n")
	fmt.Fprintf(w, "return true;\n")
	fmt.Fprintf(w, "}\n")
	fmt.Fprintf(w, "bool insert(const t_tuple& t, context&) { return insert(t); }\n")
	fmt.Fprintf(w, "bool contains(const t_tuple& t, context&) const {\n")
	fmt.Fprintf(w, "return std::find(data.begin(), data.end(), t) != data.end();\n")
	fmt.Fprintf(w, "}\n")
	fmt.Fprintf(w, "std::size_t size() const { return data.size(); }\n")
	fmt.Fprintf(w, "bool empty() const { return data.empty(); }\n")
	fmt.Fprintf(w, "void purge() { data.clear(); }\n")
	fmt.Fprintf(w, "iterator begin() const { return data.begin(); }\n")
	fmt.Fprintf(w, "iterator end() const { return data.end(); }\n")
	fmt.Fprintf(w, "void printHintStatistics(std::ostream&, const std::string&) const {}\n")
	fmt.Fprintf(w, "};\n")
}

// -- btree (direct indexed, the default) ------------------------------------

type btreeRealisation struct {
	rel *ram.Relation
	sel *analysis.IndexSelection
	// All index orders, including any appended provenance index
	orders [][]uint32
	// Numbers of appended provenance indexes
	provenanceIndexes []int
}

func newBtreeRealisation(rel *ram.Relation, sel *analysis.IndexSelection, provenance bool) *btreeRealisation {
	r := &btreeRealisation{rel: rel, sel: sel, orders: sel.Orders()}
	// With provenance enabled, every relation carrying height columns gets
	// one additional index whose comparator ignores those columns, so proofs
	// can be located irrespective of their annotations.
	if provenance && rel.AuxiliaryArity > 0 {
		order := make([]uint32, 0, rel.Arity)
		for i := 0; i < rel.Arity-rel.AuxiliaryArity; i++ {
			order = append(order, uint32(i))
		}
		//
		r.provenanceIndexes = []int{len(r.orders)}
		r.orders = append(r.orders, order)
	}
	//
	return r
}

func (r *btreeRealisation) Relation() *ram.Relation { return r.rel }
func (r *btreeRealisation) ProvenanceIndexNumbers() []int { return r.provenanceIndexes }

func (r *btreeRealisation) TypeName() string {
	name := "t_btree_" + attributeCodes(r.rel) + orderSuffix(r.orders) + searchSuffix(r.sel.Searches())
	if len(r.provenanceIndexes) > 0 {
		name += "__p"
	}
	//
	return name
}

func (r *btreeRealisation) GenerateTypeStruct(w io.Writer) {
	arity := r.rel.Arity
	//
	fmt.Fprintf(w, "struct %s {\n", r.TypeName())
	fmt.Fprintf(w, "static constexpr Relation::arity_type Arity = %d;\n", arity)
	fmt.Fprintf(w, "using t_tuple = Tuple<RamDomain, %d>;\n", arity)
	// index members
	for i, order := range r.orders {
		fmt.Fprintf(w, "using t_ind_%d = btree_set<t_tuple, index_utils::comparator<%s>>;\n",
			i, joinColumns(order))
		fmt.Fprintf(w, "t_ind_%d ind_%d;\n", i, i)
	}
	//
	fmt.Fprintf(w, "using iterator = t_ind_0::iterator;\n")
	// operation context carries one hint set per index
	fmt.Fprintf(w, "struct context {\n")
	for i := range r.orders {
		fmt.Fprintf(w, "t_ind_%d::operation_hints hints_%d;\n", i, i)
	}
	fmt.Fprintf(w, "};\n")
	fmt.Fprintf(w, "context createContext() { return context(); }\n")
	// insert
	fmt.Fprintf(w, "bool insert(const t_tuple& t) {\n")
	fmt.Fprintf(w, "context h;\n")
	fmt.Fprintf(w, "return insert(t, h);\n")
	fmt.Fprintf(w, "}\n")
	fmt.Fprintf(w, "bool insert(const t_tuple& t, context& h) {\n")
	fmt.Fprintf(w, "if (ind_0.insert(t, h.hints_0)) {\n")
	for i := 1; i < len(r.orders); i++ {
		// provenance indexes are filled by copyIndex, not on insertion
		if !r.isProvenanceIndex(i) {
			fmt.Fprintf(w, "ind_%d.insert(t, h.hints_%d);\n", i, i)
		}
	}
	fmt.Fprintf(w, "return true;\n")
	fmt.Fprintf(w, "} else return false;\n")
	fmt.Fprintf(w, "}\n")
	// contains
	fmt.Fprintf(w, "bool contains(const t_tuple& t, context& h) const {\n")
	fmt.Fprintf(w, "return ind_0.contains(t, h.hints_0);\n")
	fmt.Fprintf(w, "}\n")
	fmt.Fprintf(w, "bool contains(const t_tuple& t) const {\n")
	fmt.Fprintf(w, "context h;\n")
	fmt.Fprintf(w, "return contains(t, h);\n")
	fmt.Fprintf(w, "}\n")
	// size/empty/purge
	fmt.Fprintf(w, "std::size_t size() const { return ind_0.size(); }\n")
	fmt.Fprintf(w, "bool empty() const { return ind_0.empty(); }\n")
	fmt.Fprintf(w, "void purge() {\n")
	for i := range r.orders {
		fmt.Fprintf(w, "ind_%d.clear();\n", i)
	}
	fmt.Fprintf(w, "}\n")
	// iteration and partitioning
	fmt.Fprintf(w, "iterator begin() const { return ind_0.begin(); }\n")
	fmt.Fprintf(w, "iterator end() const { return ind_0.end(); }\n")
	fmt.Fprintf(w, "auto partition() const { return ind_0.getChunks(400); }\n")
	// per-signature range queries
	for _, sig := range r.sel.Searches() {
		r.generateEqualRange(w, sig)
	}
	// provenance index maintenance
	if len(r.provenanceIndexes) > 0 {
		fmt.Fprintf(w, "void copyIndex() {\n")
		fmt.Fprintf(w, "for (const auto& t : ind_0) {\n")
		for _, i := range r.provenanceIndexes {
			fmt.Fprintf(w, "ind_%d.insert(t);\n", i)
		}
		fmt.Fprintf(w, "}\n")
		fmt.Fprintf(w, "}\n")
	}
	//
	fmt.Fprintf(w, "void printHintStatistics(std::ostream& o, const std::string& prefix) const {\n")
	for i := range r.orders {
		fmt.Fprintf(w, "o << prefix << \"index %d:\\n\";\n", i)
		fmt.Fprintf(w, "ind_%d.printStats(o);\n", i)
	}
	fmt.Fprintf(w, "}\n")
	fmt.Fprintf(w, "};\n")
}

func (r *btreeRealisation) isProvenanceIndex(i int) bool {
	for _, p := range r.provenanceIndexes {
		if p == i {
			return true
		}
	}
	//
	return false
}

// Emit the equalRange entry point of one search signature, with and without
// a caller-supplied context.
func (r *btreeRealisation) generateEqualRange(w io.Writer, sig analysis.SearchSignature) {
	var (
		placement = r.sel.Placement(sig)
		order     = r.orders[placement.Index]
		ind       = placement.Index
	)
	//
	fmt.Fprintf(w, "range<t_ind_%d::iterator> equalRange_%s(const t_tuple& t, context& h) const {\n",
		ind, sig)
	//
	if sig == analysis.TotalSignature(r.rel.Arity) {
		// point query
		fmt.Fprintf(w, "auto pos = ind_%d.find(t, h.hints_%d);\n", ind, ind)
		fmt.Fprintf(w, "auto fin = ind_%d.end();\n", ind)
		fmt.Fprintf(w, "if (pos != fin) {fin = pos; ++fin;}\n")
		fmt.Fprintf(w, "return make_range(pos, fin);\n")
	} else {
		// range query: open the columns beyond the bound prefix
		fmt.Fprintf(w, "t_tuple low(t); t_tuple high(t);\n")
		for _, col := range order[placement.Prefix:] {
			fmt.Fprintf(w, "low[%d] = MIN_RAM_DOMAIN;\n", col)
			fmt.Fprintf(w, "high[%d] = MAX_RAM_DOMAIN;\n", col)
		}
		fmt.Fprintf(w, "return make_range(ind_%d.lower_bound(low, h.hints_%d), ind_%d.upper_bound(high, h.hints_%d));\n",
			ind, ind, ind, ind)
	}
	//
	fmt.Fprintf(w, "}\n")
	fmt.Fprintf(w, "range<t_ind_%d::iterator> equalRange_%s(const t_tuple& t) const {\n", ind, sig)
	fmt.Fprintf(w, "context h;\n")
	fmt.Fprintf(w, "return equalRange_%s(t, h);\n", sig)
	fmt.Fprintf(w, "}\n")
}

// -- brie -------------------------------------------------------------------

type brieRealisation struct {
	rel *ram.Relation
	sel *analysis.IndexSelection
}

func (r *brieRealisation) Relation() *ram.Relation { return r.rel }
func (r *brieRealisation) ProvenanceIndexNumbers() []int { return nil }

func (r *brieRealisation) TypeName() string {
	return "t_brie_" + attributeCodes(r.rel) + searchSuffix(r.sel.Searches())
}

func (r *brieRealisation) GenerateTypeStruct(w io.Writer) {
	arity := r.rel.Arity
	//
	fmt.Fprintf(w, "struct %s {\n", r.TypeName())
	fmt.Fprintf(w, "static constexpr Relation::arity_type Arity = %d;\n", arity)
	fmt.Fprintf(w, "using t_tuple = Tuple<RamDomain, %d>;\n", arity)
	fmt.Fprintf(w, "using t_ind_0 = Trie<%d>;\n", arity)
	fmt.Fprintf(w, "t_ind_0 ind_0;\n")
	fmt.Fprintf(w, "using iterator = t_ind_0::iterator;\n")
	fmt.Fprintf(w, "struct context {\n")
	fmt.Fprintf(w, "t_ind_0::op_context hints_0;\n")
	fmt.Fprintf(w, "};\n")
	fmt.Fprintf(w, "context createContext() { return context(); }\n")
	fmt.Fprintf(w, "bool insert(const t_tuple& t) {\n")
	fmt.Fprintf(w, "context h;\n")
	fmt.Fprintf(w, "return insert(t, h);\n")
	fmt.Fprintf(w, "}\n")
	fmt.Fprintf(w, "bool insert(const t_tuple& t, context& h) {\n")
	fmt.Fprintf(w, "return ind_0.insert(t, h.hints_0);\n")
	fmt.Fprintf(w, "}\n")
	fmt.Fprintf(w, "bool contains(const t_tuple& t, context& h) const {\n")
	fmt.Fprintf(w, "return ind_0.contains(t, h.hints_0);\n")
	fmt.Fprintf(w, "}\n")
	fmt.Fprintf(w, "bool contains(const t_tuple& t) const {\n")
	fmt.Fprintf(w, "context h;\n")
	fmt.Fprintf(w, "return contains(t, h);\n")
	fmt.Fprintf(w, "}\n")
	fmt.Fprintf(w, "std::size_t size() const { return ind_0.size(); }\n")
	fmt.Fprintf(w, "bool empty() const { return ind_0.empty(); }\n")
	fmt.Fprintf(w, "void purge() { ind_0.clear(); }\n")
	fmt.Fprintf(w, "iterator begin() const { return ind_0.begin(); }\n")
	fmt.Fprintf(w, "iterator end() const { return ind_0.end(); }\n")
	fmt.Fprintf(w, "auto partition() const { return ind_0.partition(10000); }\n")
	//
	for _, sig := range r.sel.Searches() {
		fmt.Fprintf(w, "auto equalRange_%s(const t_tuple& t, context& h) const {\n", sig)
		fmt.Fprintf(w, "return ind_0.template getBoundaries<%d>(t, h.hints_0);\n", sig.Count())
		fmt.Fprintf(w, "}\n")
		fmt.Fprintf(w, "auto equalRange_%s(const t_tuple& t) const {\n", sig)
		fmt.Fprintf(w, "context h;\n")
		fmt.Fprintf(w, "return equalRange_%s(t, h);\n", sig)
		fmt.Fprintf(w, "}\n")
	}
	//
	fmt.Fprintf(w, "void printHintStatistics(std::ostream& o, const std::string& prefix) const {\n")
	fmt.Fprintf(w, "o << prefix << \"brie index:\\n\";\n")
	fmt.Fprintf(w, "}\n")
	fmt.Fprintf(w, "};\n")
}

// -- eqrel ------------------------------------------------------------------

type eqrelRealisation struct {
	rel *ram.Relation
	sel *analysis.IndexSelection
}

func (r *eqrelRealisation) Relation() *ram.Relation { return r.rel }
func (r *eqrelRealisation) ProvenanceIndexNumbers() []int { return nil }

func (r *eqrelRealisation) TypeName() string {
	return "t_eqrel" + searchSuffix(r.sel.Searches())
}

func (r *eqrelRealisation) GenerateTypeStruct(w io.Writer) {
	if r.rel.Arity != 2 {
		panic(fmt.Sprintf("equivalence relation %s must be binary", r.rel.Name))
	}
	//
	fmt.Fprintf(w, "struct %s {\n", r.TypeName())
	fmt.Fprintf(w, "static constexpr Relation::arity_type Arity = 2;\n")
	fmt.Fprintf(w, "using t_tuple = Tuple<RamDomain, 2>;\n")
	fmt.Fprintf(w, "using t_ind_0 = EquivalenceRelation<t_tuple>;\n")
	fmt.Fprintf(w, "t_ind_0 ind_0;\n")
	fmt.Fprintf(w, "using iterator = t_ind_0::iterator;\n")
	fmt.Fprintf(w, "struct context {\n")
	fmt.Fprintf(w, "t_ind_0::operation_hints hints_0;\n")
	fmt.Fprintf(w, "};\n")
	fmt.Fprintf(w, "context createContext() { return context(); }\n")
	fmt.Fprintf(w, "bool insert(const t_tuple& t) {\n")
	fmt.Fprintf(w, "return ind_0.insert(t[0], t[1]);\n")
	fmt.Fprintf(w, "}\n")
	fmt.Fprintf(w, "bool insert(const t_tuple& t, context&) {\n")
	fmt.Fprintf(w, "return insert(t);\n")
	fmt.Fprintf(w, "}\n")
	fmt.Fprintf(w, "bool contains(const t_tuple& t, context&) const {\n")
	fmt.Fprintf(w, "return ind_0.contains(t[0], t[1]);\n")
	fmt.Fprintf(w, "}\n")
	fmt.Fprintf(w, "bool contains(const t_tuple& t) const {\n")
	fmt.Fprintf(w, "return ind_0.contains(t[0], t[1]);\n")
	fmt.Fprintf(w, "}\n")
	fmt.Fprintf(w, "std::size_t size() const { return ind_0.size(); }\n")
	fmt.Fprintf(w, "bool empty() const { return ind_0.size() == 0; }\n")
	fmt.Fprintf(w, "void purge() { ind_0.clear(); }\n")
	fmt.Fprintf(w, "iterator begin() const { return ind_0.begin(); }\n")
	fmt.Fprintf(w, "iterator end() const { return ind_0.end(); }\n")
	fmt.Fprintf(w, "auto partition() const { return ind_0.partition(10000); }\n")
	// equivalence-relation merge
	fmt.Fprintf(w, "void extend(const %s& other) {\n", r.TypeName())
	fmt.Fprintf(w, "ind_0.extend(other.ind_0);\n")
	fmt.Fprintf(w, "}\n")
	//
	for _, sig := range r.sel.Searches() {
		fmt.Fprintf(w, "auto equalRange_%s(const t_tuple& t, context& h) const {\n", sig)
		fmt.Fprintf(w, "return ind_0.template getBoundaries<%d>(t, h.hints_0);\n", sig.Count())
		fmt.Fprintf(w, "}\n")
		fmt.Fprintf(w, "auto equalRange_%s(const t_tuple& t) const {\n", sig)
		fmt.Fprintf(w, "context h;\n")
		fmt.Fprintf(w, "return equalRange_%s(t, h);\n", sig)
		fmt.Fprintf(w, "}\n")
	}
	//
	fmt.Fprintf(w, "void printHintStatistics(std::ostream& o, const std::string& prefix) const {\n")
	fmt.Fprintf(w, "o << prefix << \"eqrel index:\\n\";\n")
	fmt.Fprintf(w, "}\n")
	fmt.Fprintf(w, "};\n")
}

func joinColumns(order []uint32) string {
	var b strings.Builder
	//
	for i, col := range order {
		if i != 0 {
			b.WriteString(",")
		}
		//
		fmt.Fprintf(&b, "%d", col)
	}
	//
	return b.String()
}

// generateRelationTypeStruct emits the container type of a realisation once
// per unique type name; structurally identical descriptors share one
// definition.
func (s *Synthesiser) generateRelationTypeStruct(w io.Writer, r Realisation) {
	name := r.TypeName()
	//
	if s.typeCache[name] {
		return
	}
	//
	s.typeCache[name] = true
	r.GenerateTypeStruct(w)
}

// realisation resolves the realisation of a relation under the current
// configuration.
func (s *Synthesiser) realisation(rel *ram.Relation) Realisation {
	isProvInfo := rel.Representation == ram.InfoRepresentation
	//
	return NewRealisation(rel, s.unit.Analysis.Selection(rel),
		s.cfg.HasProvenance() && !isProvInfo)
}
