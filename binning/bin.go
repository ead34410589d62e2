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

// Package binning implements the greedy maximal binning algorithm: given a
// table of thresholded pairwise LD, it iteratively selects the
// highest-priority candidate bin, splits it when an obligate tag-count
// policy demands more tags than the bin can supply, and emits a BinResult
// per selection until every locus has been assigned to a bin.
package binning

import (
	"sort"

	"github.com/grailbio/tagzilla/locus"
)

// Disposition orders candidate bins (and, later, emitted results) by how
// obligatory their membership is. Lower values sort first: an untyped
// obligate bin is always selected before a normal bin, which is always
// selected before an excluded one.
type Disposition int

const (
	IncludeUntyped Disposition = -2
	IncludeTyped   Disposition = -1
	Normal         Disposition = 0
	// Residual marks a BinResult pushed past the run's target-bins or
	// target-loci cap; it never appears on a CandidateBin, only on the
	// emitted result, and sorts after Normal but before Exclude.
	Residual Disposition = 1
	Exclude  Disposition = 2
)

func (d Disposition) String() string {
	switch d {
	case IncludeUntyped:
		return "obligate-untyped"
	case IncludeTyped:
		return "obligate-typed"
	case Residual:
		return "residual"
	case Exclude:
		return "obligate-exclude"
	default:
		return "maximal-bin"
	}
}

// CandidateBin is the mutable working set the binner maintains per locus
// during selection: the set of loci in LD with the reference locus, their
// summed MAF, and a disposition used to prioritize obligate bins ahead of
// normal ones. CandidateBin is mutated in place as the binner withdraws
// loci claimed by earlier selections.
type CandidateBin struct {
	Members     map[string]bool
	MAFSum      float64
	Disposition Disposition
	// MaxCovered is the largest size this bin has ever held, retained
	// after members are withdrawn so the emitted result can report how
	// many loci a tag originally covered.
	MaxCovered int
}

// NewCandidateBin builds a singleton bin for name.
func NewCandidateBin(name string, maf float64) *CandidateBin {
	return &CandidateBin{
		Members:    map[string]bool{name: true},
		MAFSum:     maf,
		MaxCovered: 1,
	}
}

// Len reports the current bin size.
func (b *CandidateBin) Len() int { return len(b.Members) }

// Add inserts name into the bin, accumulating its MAF.
func (b *CandidateBin) Add(name string, maf float64) {
	if b.Members[name] {
		return
	}
	b.Members[name] = true
	b.MAFSum += maf
	if len(b.Members) > b.MaxCovered {
		b.MaxCovered = len(b.Members)
	}
}

// Remove deletes name from the bin, subtracting its MAF; it does nothing if
// name is not a member.
func (b *CandidateBin) Remove(name string, maf float64) {
	if !b.Members[name] {
		return
	}
	delete(b.Members, name)
	b.MAFSum -= maf
}

// Discard deletes name from the bin if present, subtracting its MAF; it is
// a no-op if name is absent.
func (b *CandidateBin) Discard(name string, maf float64) {
	if b.Members[name] {
		b.Remove(name, maf)
	}
}

// AverageMAF returns the bin's mean member MAF.
func (b *CandidateBin) AverageMAF() float64 {
	if len(b.Members) == 0 {
		return 0
	}
	return b.MAFSum / float64(len(b.Members))
}

// IsSuperset reports whether b contains every member of other.
func (b *CandidateBin) IsSuperset(other *CandidateBin) bool {
	for name := range other.Members {
		if !b.Members[name] {
			return false
		}
	}
	return true
}

// CanTag reports whether candidate can stand in as a tag for reference: a
// candidate with disposition Exclude may only tag another excluded bin, and
// the candidate's membership must cover everything the reference covers.
func CanTag(candidate, reference *CandidateBin) bool {
	if candidate.Disposition == Exclude && reference.Disposition != Exclude {
		return false
	}
	return candidate.IsSuperset(reference)
}

// sortedNames returns bin membership in a deterministic order, for
// iteration that must not depend on Go's randomized map order.
func sortedNames(members map[string]bool) []string {
	names := make([]string, 0, len(members))
	for name := range members {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// locusMAF looks up a locus's MAF by name, returning 0 if absent so
// withdrawal bookkeeping never panics on a locus the caller already
// dropped from its working set.
func locusMAF(loci map[string]*locus.Locus, name string) float64 {
	if l, ok := loci[name]; ok {
		return l.MAF
	}
	return 0
}
