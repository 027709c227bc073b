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
	"math/bits"
	"strconv"

	"github.com/datalog-lang/go-datalog/pkg/ram"
)

// SearchSignature is a bitmask over a relation's columns where bit i is set
// iff column i is constrained by a given access.  Relations are therefore
// limited to 64 columns, which is far beyond any practical arity.
type SearchSignature uint64

// Empty reports whether no column is constrained.
func (s SearchSignature) Empty() bool {
	return s == 0
}

// Count returns the number of constrained columns.
func (s SearchSignature) Count() int {
	return bits.OnesCount64(uint64(s))
}

// Contains reports whether every column constrained by other is also
// constrained by this signature.
func (s SearchSignature) Contains(other SearchSignature) bool {
	return s&other == other
}

// Columns returns the constrained columns in ascending order.
func (s SearchSignature) Columns() []uint32 {
	var cols []uint32
	//
	for i := 0; s != 0; i++ {
		if s&1 != 0 {
			cols = append(cols, uint32(i))
		}
		//
		s >>= 1
	}
	//
	return cols
}

// String renders the signature as the decimal mask used to name the
// corresponding equalRange entry point.
func (s SearchSignature) String() string {
	return strconv.FormatUint(uint64(s), 10)
}

// TotalSignature returns the signature constraining every column of the
// given arity.
func TotalSignature(arity int) SearchSignature {
	if arity > 64 {
		panic("relation arity exceeds search signature width")
	}
	//
	return SearchSignature(1<<uint(arity)) - 1
}

// SignatureFromPattern derives the signature of a range pattern or
// existence-check value list: a column is constrained iff its slot is not
// the undefined-value marker.
func SignatureFromPattern(pattern []ram.Expression) SearchSignature {
	var sig SearchSignature
	//
	for i, e := range pattern {
		if !ram.IsUndefValue(e) {
			sig |= 1 << uint(i)
		}
	}
	//
	return sig
}
