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

// Representation selects the container family realising a relation.
type Representation int

// Relation representations.
const (
	// DefaultRepresentation leaves the choice to the synthesiser (a direct
	// indexed b-tree).
	DefaultRepresentation Representation = iota
	// BtreeRepresentation forces a b-tree container.
	BtreeRepresentation
	// BrieRepresentation selects a brie (specialised trie) container.
	BrieRepresentation
	// EqrelRepresentation selects an equivalence-relation container.
	EqrelRepresentation
	// InfoRepresentation marks a provenance metadata relation, stored
	// without indexing.
	InfoRepresentation
)

func (r Representation) String() string {
	switch r {
	case DefaultRepresentation:
		return "default"
	case BtreeRepresentation:
		return "btree"
	case BrieRepresentation:
		return "brie"
	case EqrelRepresentation:
		return "eqrel"
	case InfoRepresentation:
		return "info"
	}
	//
	return "unknown"
}

// ParseRepresentation is the inverse of String.  The empty string parses as
// the default representation.
func ParseRepresentation(name string) (Representation, error) {
	switch name {
	case "", "default":
		return DefaultRepresentation, nil
	case "btree":
		return BtreeRepresentation, nil
	case "brie":
		return BrieRepresentation, nil
	case "eqrel":
		return EqrelRepresentation, nil
	case "info":
		return InfoRepresentation, nil
	}
	//
	return 0, fmt.Errorf("unknown relation representation %q", name)
}

// Relation describes a RAM relation.  AuxiliaryArity counts the trailing
// columns reserved for provenance bookkeeping; attribute types are single
// characters (i/u/f/s/r for signed, unsigned, float, symbol, record), with
// qualifiers appended after a colon.
type Relation struct {
	Name           string
	Arity          int
	AuxiliaryArity int
	AttributeNames []string
	AttributeTypes []string
	Representation Representation
	Temp           bool
}

// IsNullary reports whether the relation has no columns.
func (r *Relation) IsNullary() bool {
	return r.Arity == 0
}
