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

import "math"

// TagsRequiredFunc computes how many tags a bin of n loci must retain. A
// nil TagsRequiredFunc means the default policy of exactly one tag per
// bin, and the binner never attempts to split a bin to satisfy it.
type TagsRequiredFunc func(n int) int

// LociPerTag builds a policy requiring roughly one tag per lociPerTag
// members, capped at the bin's own size.
func LociPerTag(lociPerTag float64) TagsRequiredFunc {
	return func(n int) int {
		required := int(float64(n)/lociPerTag) + 1
		if required > n {
			return n
		}
		return required
	}
}

// LogLociPerTag builds a policy requiring tags to grow logarithmically
// with bin size, with base controlling the growth rate.
func LogLociPerTag(base float64) TagsRequiredFunc {
	logBase := math.Log(base)
	return func(n int) int {
		return int(math.Ceil(math.Log(float64(n+1)) / logBase))
	}
}

// MustSplit reports whether bin needs to be split to satisfy fn, and
// SplitBin applies one split step, mirroring the original binner's
// must_split_bin / split_bin pair: a bin is split when fewer loci can
// legally stand in as its tag than the policy requires, and splitting
// withdraws the least-informative, best-covered-elsewhere member.
func MustSplit(bin *CandidateBin, binsets map[string]*CandidateBin, fn TagsRequiredFunc) bool {
	if fn == nil {
		return false
	}
	required := fn(bin.Len())
	if required == 1 {
		return false
	}

	tags := 0
	for name := range bin.Members {
		if candidate, ok := binsets[name]; ok && CanTag(candidate, bin) {
			tags++
		}
	}
	return tags < required && required <= bin.Len()
}

// SplitBin removes from bin the member that is both best-covered by other
// bins and weakest in LD with ref, then severs the mutual reference
// between ref and that member across both bins. mafOf looks up a locus's
// MAF by name.
func SplitBin(ref string, bin *CandidateBin, binsets map[string]*CandidateBin, mafOf func(string) float64, table *LDTable) {
	type candidate struct {
		covered int
		r2      float64
		name    string
	}
	var cands []candidate
	for name := range bin.Members {
		if name == ref {
			continue
		}
		covered := 0
		if other, ok := binsets[name]; ok {
			covered = other.Len()
		}
		var r2 float64
		if v, ok := table.Get(ref, name); ok {
			r2 = v.RSquared
		}
		cands = append(cands, candidate{covered: covered, r2: r2, name: name})
	}
	if len(cands) == 0 {
		return
	}

	best := cands[0]
	for _, c := range cands[1:] {
		if c.covered > best.covered ||
			(c.covered == best.covered && c.r2 < best.r2) ||
			(c.covered == best.covered && c.r2 == best.r2 && c.name < best.name) {
			best = c
		}
	}

	bin.Discard(best.name, mafOf(best.name))
	if other, ok := binsets[best.name]; ok {
		other.Discard(ref, mafOf(ref))
	}
}
