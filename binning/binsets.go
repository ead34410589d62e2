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
	"github.com/grailbio/tagzilla/ldpair"
	"github.com/grailbio/tagzilla/locus"
)

// BuildBinsets constructs the per-locus candidate bins and the pairwise LD
// table that seed the binner. Every locus named in pairs or loci gets a
// singleton-or-larger bin; excluded loci and loci with a sub-epsilon design
// score are marked Exclude; obligate untyped/typed loci are marked
// accordingly and, for untyped obligates, pre-isolated from each other so
// conflicting untyped obligates never share a bin (each must form its own).
func BuildBinsets(
	loci map[string]*locus.Locus,
	pairs []ldpair.Pair,
	includes *locus.Includes,
	exclude map[string]bool,
	designScores map[string]float64,
) (map[string]*CandidateBin, *LDTable) {
	binsets := map[string]*CandidateBin{}
	table := NewLDTable()

	get := func(name string) *CandidateBin {
		b, ok := binsets[name]
		if !ok {
			b = NewCandidateBin(name, locusMAF(loci, name))
			binsets[name] = b
		}
		return b
	}

	for _, p := range pairs {
		b1, b2 := get(p.Locus1), get(p.Locus2)
		table.Set(p.Locus1, p.Locus2, LDValue{RSquared: p.RSquared, DPrime: p.DPrime})
		b1.Add(p.Locus2, locusMAF(loci, p.Locus2))
		b2.Add(p.Locus1, locusMAF(loci, p.Locus1))
	}

	// Singletons: loci that never cleared the LD threshold with anything
	// still need a bin of their own.
	for name := range loci {
		get(name)
	}

	const designEpsilon = 1e-10
	for name, bin := range binsets {
		if exclude[name] {
			bin.Disposition = Exclude
			continue
		}
		if designScores != nil {
			if designScores[name] < designEpsilon {
				bin.Disposition = Exclude
				exclude[name] = true
			}
		}
	}

	for name := range includes.Untyped {
		bin, ok := binsets[name]
		if !ok {
			continue
		}
		bin.Disposition = IncludeUntyped
		// Isolate conflicting untyped obligates from each other: an
		// untyped obligate must form its own bin, so any other untyped
		// obligate that happened to be in LD with it is withdrawn here.
		for other := range includes.Untyped {
			if other != name && bin.Members[other] {
				bin.Remove(other, locusMAF(loci, other))
			}
		}
	}

	for name := range includes.Typed {
		if bin, ok := binsets[name]; ok {
			bin.Disposition = IncludeTyped
		}
	}

	return binsets, table
}
