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
	"fmt"

	"github.com/grailbio/tagzilla/locus"
)

// LDRecord is one pairwise LD observation retained in a BinResult, or a
// self-pair (Locus1 == Locus2, RSquared == DPrime == 1) representing a tag.
type LDRecord struct {
	Locus1, Locus2   string
	RSquared, DPrime float64
}

// BinResult is the immutable record the binner emits each time it selects
// and withdraws a bin: which loci were chosen as tags, which were left as
// others, the bin's disposition, and the pairwise LD within it.
type BinResult struct {
	BinNum       int
	Reference    string
	Disposition  Disposition
	Tags         []string
	Others       []string
	AverageMAF   float64
	MaxCovered   int
	TagsRequired int
	// Include is the obligate reference locus's name, or "" if this bin
	// has no obligate tag.
	Include string
	// IncludeTyped holds any other typed-obligate loci that happened to
	// fall into this bin alongside its own obligate tag.
	IncludeTyped map[string]bool
	LD           []LDRecord
}

// Len reports the total number of loci (tags and others) in the result.
func (r *BinResult) Len() int { return len(r.Tags) + len(r.Others) }

// Binner runs the greedy maximal binning algorithm over a set of candidate
// bins: it repeatedly selects the highest-priority bin (splitting it first
// if the tags-required policy demands more tags than it can supply),
// withdraws its members from every other bin, and emits a BinResult.
type Binner struct {
	binsets      map[string]*CandidateBin
	table        *LDTable
	mafOf        func(string) float64
	includes     *locus.Includes
	tagsRequired TagsRequiredFunc
	pq           *pqueue

	targetBins int
	targetLoci int

	binNum     int
	binnedLoci int
}

// NewBinner builds a Binner over binsets/table as produced by
// BuildBinsets. targetBins and targetLoci, when positive, cap how many
// bins/loci may be assigned a non-residual disposition before every
// further bin is marked Residual (excluded bins are exempt from the cap).
// A targetBins or targetLoci of 0 means unlimited.
func NewBinner(
	binsets map[string]*CandidateBin,
	table *LDTable,
	loci map[string]*locus.Locus,
	includes *locus.Includes,
	tagsRequired TagsRequiredFunc,
	targetBins, targetLoci int,
) *Binner {
	pq := newPQueue()
	for name, bin := range binsets {
		pq.Set(name, bin)
	}
	return &Binner{
		binsets:      binsets,
		table:        table,
		mafOf:        func(name string) float64 { return locusMAF(loci, name) },
		includes:     includes,
		tagsRequired: tagsRequired,
		pq:           pq,
		targetBins:   targetBins,
		targetLoci:   targetLoci,
	}
}

// Next selects and withdraws the next bin, returning (nil, false) once
// every locus has been assigned.
func (bn *Binner) Next() (*BinResult, bool) {
	if bn.pq.Len() == 0 {
		return nil, false
	}

	var ref string
	for {
		var ok bool
		ref, ok = bn.pq.Peek()
		if !ok {
			return nil, false
		}
		largest := bn.binsets[ref]
		if !MustSplit(largest, bn.binsets, bn.tagsRequired) {
			break
		}
		SplitBin(ref, largest, bn.binsets, bn.mafOf, bn.table)
		bn.pq.Set(ref, largest)
	}

	largest := bn.binsets[ref]
	members := sortedNames(largest.Members)

	bins := make(map[string]*CandidateBin, len(members))
	for _, name := range members {
		bin := bn.binsets[name]
		bins[name] = bin
		delete(bn.binsets, name)
		bn.pq.Remove(name)

		maf := bn.mafOf(name)
		for other := range bin.Members {
			if largest.Members[other] {
				continue
			}
			if ob, ok := bn.binsets[other]; ok {
				ob.Discard(name, maf)
				bn.pq.Set(other, ob)
			}
		}
	}

	result := BuildResult(ref, largest, bins, bn.table, bn.includes, bn.tagsRequired)

	residual := (bn.targetBins > 0 && bn.binNum+1 > bn.targetBins) ||
		(bn.targetLoci > 0 && bn.binnedLoci > bn.targetLoci)
	if residual && result.Disposition != Exclude {
		result.Disposition = Residual
	}

	bn.binNum++
	result.BinNum = bn.binNum
	bn.binnedLoci += result.Len()

	return result, true
}

// BuildResult classifies each member of largest as a tag (any bin in the
// withdrawal set that is a superset of largest, per CanTag) or other,
// computes the tags-required count, and carries over the pairwise LD
// entries among largest's members, including self-pairs for each tag.
func BuildResult(
	ref string,
	largest *CandidateBin,
	bins map[string]*CandidateBin,
	table *LDTable,
	includes *locus.Includes,
	tagsRequired TagsRequiredFunc,
) *BinResult {
	result := &BinResult{
		Reference:    ref,
		Disposition:  largest.Disposition,
		AverageMAF:   largest.AverageMAF(),
		MaxCovered:   largest.MaxCovered,
		IncludeTyped: map[string]bool{},
	}

	if tagsRequired != nil {
		result.TagsRequired = tagsRequired(largest.Len())
	} else {
		result.TagsRequired = 1
	}

	if largest.Disposition == IncludeTyped || largest.Disposition == IncludeUntyped {
		result.Include = ref
	}

	for name := range largest.Members {
		if includes.Typed[name] {
			result.IncludeTyped[name] = true
		}
	}

	names := sortedNames(largest.Members)
	for _, name := range names {
		bin := bins[name]
		if CanTag(bin, largest) {
			result.Tags = append(result.Tags, name)
			if largest.Disposition != IncludeTyped && largest.Disposition != IncludeUntyped {
				if bin.MaxCovered > result.MaxCovered {
					result.MaxCovered = bin.MaxCovered
				}
			}
		} else {
			result.Others = append(result.Others, name)
		}
	}

	if len(result.Tags) < result.TagsRequired {
		panic(fmt.Sprintf("binning: bin %s has %d tags, fewer than %d required", ref, len(result.Tags), result.TagsRequired))
	}

	for _, tag := range result.Tags {
		result.LD = append(result.LD, LDRecord{Locus1: tag, Locus2: tag, RSquared: 1, DPrime: 1})
	}

	for i := 0; i < len(names); i++ {
		for j := 0; j < i; j++ {
			if v, ok := table.Get(names[i], names[j]); ok {
				result.LD = append(result.LD, LDRecord{Locus1: names[j], Locus2: names[i], RSquared: v.RSquared, DPrime: v.DPrime})
				table.Delete(names[i], names[j])
			}
		}
	}

	return result
}
