// Copyright 2020 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package binning

import (
	"github.com/dgryski/go-farm"

	"github.com/grailbio/tagzilla/ldpair"
)

// LDValue is the pairwise LD data retained for one locus pair.
type LDValue struct {
	RSquared, DPrime float64
}

type ldEntry struct {
	name1, name2 string
	value        LDValue
}

// LDTable is a farm-hash-bucketed map from unordered locus-name pairs to
// their pairwise LD. A single pair is stored once, under its name-sorted
// key, so a lookup works regardless of which order the caller names the
// two loci in.
type LDTable struct {
	buckets map[uint64][]ldEntry
	len     int
}

// NewLDTable builds an empty table.
func NewLDTable() *LDTable {
	return &LDTable{buckets: map[uint64][]ldEntry{}}
}

func pairHash(a, b string) (uint64, string, string) {
	if b < a {
		a, b = b, a
	}
	h := farm.Hash64([]byte(a))
	h = farm.Hash64WithSeed([]byte(b), h)
	return h, a, b
}

// Set records the LD between name1 and name2, overwriting any prior entry.
func (t *LDTable) Set(name1, name2 string, v LDValue) {
	h, a, b := pairHash(name1, name2)
	bucket := t.buckets[h]
	for i, e := range bucket {
		if e.name1 == a && e.name2 == b {
			bucket[i].value = v
			return
		}
	}
	t.buckets[h] = append(bucket, ldEntry{a, b, v})
	t.len++
}

// Get looks up the LD between name1 and name2.
func (t *LDTable) Get(name1, name2 string) (LDValue, bool) {
	h, a, b := pairHash(name1, name2)
	for _, e := range t.buckets[h] {
		if e.name1 == a && e.name2 == b {
			return e.value, true
		}
	}
	return LDValue{}, false
}

// Delete removes the LD entry between name1 and name2, if present.
func (t *LDTable) Delete(name1, name2 string) {
	h, a, b := pairHash(name1, name2)
	bucket := t.buckets[h]
	for i, e := range bucket {
		if e.name1 == a && e.name2 == b {
			t.buckets[h] = append(bucket[:i], bucket[i+1:]...)
			t.len--
			return
		}
	}
}

// Len returns the number of stored pairs.
func (t *LDTable) Len() int { return t.len }

// LoadPairs populates the table from a flat list of thresholded pairs, as
// produced by ldpair.Scan or ldpair.ScanMulti.
func LoadPairs(pairs []ldpair.Pair) *LDTable {
	t := NewLDTable()
	for _, p := range pairs {
		t.Set(p.Locus1, p.Locus2, LDValue{RSquared: p.RSquared, DPrime: p.DPrime})
	}
	return t
}
