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
	"testing"

	"github.com/grailbio/tagzilla/binning"
	"github.com/grailbio/tagzilla/ldpair"
	"github.com/grailbio/tagzilla/locus"
)

func testLocus(name string, maf float64) *locus.Locus {
	return &locus.Locus{Name: name, MAF: maf}
}

func lociMap(ls ...*locus.Locus) map[string]*locus.Locus {
	m := map[string]*locus.Locus{}
	for _, l := range ls {
		m[l.Name] = l
	}
	return m
}

func newPopulation(loci map[string]*locus.Locus, pairs []ldpair.Pair) Population {
	binsets, table := binning.BuildBinsets(loci, pairs, locus.NewIncludes(nil, nil), map[string]bool{}, nil)
	return Population{
		Binsets:  binsets,
		Table:    table,
		Includes: locus.NewIncludes(nil, nil),
		MAFOf:    func(name string) float64 { return loci[name].MAF },
	}
}

// Both populations genotype rs1/rs2 in strong LD, so the joint bin covers
// 2 populations worth of coverage; only population 0 genotypes the
// standalone rs3, so it has half the combined priority and is selected
// second.
func TestMultiBinnerJoinsCoverageAcrossPopulations(t *testing.T) {
	pop0Loci := lociMap(testLocus("rs1", 0.3), testLocus("rs2", 0.25), testLocus("rs3", 0.4))
	pop0Pairs := []ldpair.Pair{{Locus1: "rs1", Locus2: "rs2", RSquared: 0.9, DPrime: 1}}
	pop1Loci := lociMap(testLocus("rs1", 0.3), testLocus("rs2", 0.25))
	pop1Pairs := []ldpair.Pair{{Locus1: "rs1", Locus2: "rs2", RSquared: 0.9, DPrime: 1}}

	pops := []Population{newPopulation(pop0Loci, pop0Pairs), newPopulation(pop1Loci, pop1Pairs)}
	binner := NewMultiBinner(pops, nil, 0, 0)

	result, ok := binner.Next()
	if !ok {
		t.Fatal("expected a result")
	}
	if result.Reference != "rs1" && result.Reference != "rs2" {
		t.Fatalf("got reference %s, want rs1 or rs2", result.Reference)
	}
	if result.PerPop[0] == nil || result.PerPop[0].Len() != 2 {
		t.Errorf("population 0's bin: got %+v, want a size-2 bin", result.PerPop[0])
	}
	if result.PerPop[1] == nil || result.PerPop[1].Len() != 2 {
		t.Errorf("population 1's bin: got %+v, want a size-2 bin", result.PerPop[1])
	}

	result2, ok := binner.Next()
	if !ok {
		t.Fatal("expected a second result")
	}
	if result2.Reference != "rs3" {
		t.Errorf("got reference %s, want rs3 (only genotyped in population 0)", result2.Reference)
	}
	if result2.PerPop[0] == nil || result2.PerPop[0].Len() != 1 {
		t.Errorf("population 0's rs3 bin: got %+v, want a singleton", result2.PerPop[0])
	}
	if result2.PerPop[1] != nil {
		t.Errorf("population 1 never genotyped rs3, want a nil result, got %+v", result2.PerPop[1])
	}

	if _, ok := binner.Next(); ok {
		t.Error("expected no further bins")
	}
}

func TestMultiBinnerTargetBinsMarksResidual(t *testing.T) {
	loci := lociMap(testLocus("rs1", 0.3), testLocus("rs2", 0.25), testLocus("rs3", 0.4))
	pairs := []ldpair.Pair{{Locus1: "rs1", Locus2: "rs2", RSquared: 0.9, DPrime: 1}}
	pops := []Population{newPopulation(loci, pairs)}
	binner := NewMultiBinner(pops, nil, 1, 0)

	first, _ := binner.Next()
	if first.PerPop[0].Disposition == binning.Residual {
		t.Error("first bin should not be residual")
	}
	second, _ := binner.Next()
	if second.PerPop[0].Disposition != binning.Residual {
		t.Errorf("got disposition %v, want Residual once targetBins is exceeded", second.PerPop[0].Disposition)
	}
}
