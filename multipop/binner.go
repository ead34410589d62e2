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

package multipop

import (
	"sort"

	"github.com/grailbio/tagzilla/binning"
	"github.com/grailbio/tagzilla/locus"
)

// MultiBinResult is one joint selection under the Global method: the
// shared reference locus and, for each population, the BinResult that
// population contributed, or nil if that population never genotyped the
// reference locus.
type MultiBinResult struct {
	BinNum    int
	Reference string
	PerPop    []*binning.BinResult
}

// Population bundles one population's binning inputs: its candidate bins
// and LD table, as produced by binning.BuildBinsets, plus the obligate
// sets and a MAF lookup used while splitting bins.
type Population struct {
	Binsets  map[string]*binning.CandidateBin
	Table    *binning.LDTable
	Includes *locus.Includes
	MAFOf    func(name string) float64
}

// MultiBinner runs the Global multi-population binning method: candidate
// bins are kept separate per population, but selection is driven by a
// single priority queue keyed on each locus's combined coverage across
// every population that genotyped it. A bin is split population-by-
// population until every population's own tags-required policy is
// satisfied, then every population's bin for the winning locus is
// withdrawn together.
type MultiBinner struct {
	pops         []Population
	tagsRequired binning.TagsRequiredFunc
	pq           *multiPQueue

	targetBins int
	targetLoci int

	binNum     int
	binnedLoci int
}

// NewMultiBinner builds a MultiBinner over pops. tagsRequired, when
// non-nil, is applied identically to every population's bins. targetBins
// and targetLoci cap how many joint selections (and how many loci, each
// selection counting the size of its largest per-population bin) may
// receive a non-residual disposition before every further selection is
// marked Residual, mirroring binning.Binner.
func NewMultiBinner(pops []Population, tagsRequired binning.TagsRequiredFunc, targetBins, targetLoci int) *MultiBinner {
	binsets := make([]map[string]*binning.CandidateBin, len(pops))
	names := map[string]bool{}
	for i, p := range pops {
		binsets[i] = p.Binsets
		for name := range p.Binsets {
			names[name] = true
		}
	}

	pq := newMultiPQueue()
	for name := range names {
		pq.Refresh(name, binsets)
	}

	return &MultiBinner{pops: pops, tagsRequired: tagsRequired, pq: pq, targetBins: targetBins, targetLoci: targetLoci}
}

func (bn *MultiBinner) binsets() []map[string]*binning.CandidateBin {
	out := make([]map[string]*binning.CandidateBin, len(bn.pops))
	for i, p := range bn.pops {
		out[i] = p.Binsets
	}
	return out
}

// Next selects and withdraws the next joint bin, returning (nil, false)
// once no population has any loci left.
func (bn *MultiBinner) Next() (*MultiBinResult, bool) {
	if bn.pq.Len() == 0 {
		return nil, false
	}

	binsets := bn.binsets()

	var ref string
	for {
		var ok bool
		ref, ok = bn.pq.Peek()
		if !ok {
			return nil, false
		}

		split := false
		for i, p := range bn.pops {
			bin, ok := p.Binsets[ref]
			if !ok || !binning.MustSplit(bin, p.Binsets, bn.tagsRequired) {
				continue
			}
			before := sortedCopy(bin.Members)
			binning.SplitBin(ref, bin, p.Binsets, bn.pops[i].MAFOf, p.Table)
			for _, name := range before {
				bn.pq.Refresh(name, binsets)
			}
			split = true
			break
		}
		if !split {
			break
		}
	}

	perPop := make([]*binning.BinResult, len(bn.pops))
	touched := map[string]bool{}
	maxLen := 0

	for i, p := range bn.pops {
		largest, ok := p.Binsets[ref]
		if !ok {
			continue
		}
		members := sortedCopy(largest.Members)
		bins := make(map[string]*binning.CandidateBin, len(members))
		for _, name := range members {
			touched[name] = true
			bin := p.Binsets[name]
			bins[name] = bin
			delete(p.Binsets, name)

			maf := p.MAFOf(name)
			for other := range bin.Members {
				if largest.Members[other] {
					continue
				}
				if ob, ok := p.Binsets[other]; ok {
					ob.Discard(name, maf)
					touched[other] = true
				}
			}
		}
		perPop[i] = binning.BuildResult(ref, largest, bins, p.Table, p.Includes, bn.tagsRequired)
		if n := perPop[i].Len(); n > maxLen {
			maxLen = n
		}
	}

	touched[ref] = true
	for name := range touched {
		bn.pq.Refresh(name, binsets)
	}

	result := &MultiBinResult{Reference: ref, PerPop: perPop}

	residual := (bn.targetBins > 0 && bn.binNum+1 > bn.targetBins) ||
		(bn.targetLoci > 0 && bn.binnedLoci > bn.targetLoci)
	if residual {
		for _, r := range perPop {
			if r != nil && r.Disposition != binning.Exclude {
				r.Disposition = binning.Residual
			}
		}
	}

	bn.binNum++
	result.BinNum = bn.binNum
	bn.binnedLoci += maxLen

	return result, true
}

func sortedCopy(members map[string]bool) []string {
	names := make([]string, 0, len(members))
	for name := range members {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
