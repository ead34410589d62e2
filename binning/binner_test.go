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
	"testing"

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

// hubFixture makes rs3 the sole hub in LD with each of rs1,rs2,rs4,rs5,
// none of which are in LD with each other; rs3's bin is the unique
// superset of itself, so it is the only valid tag. rs6 stands alone.
func hubFixture() (map[string]*locus.Locus, []ldpair.Pair) {
	loci := lociMap(
		testLocus("rs1", 0.3), testLocus("rs2", 0.25), testLocus("rs3", 0.4),
		testLocus("rs4", 0.1), testLocus("rs5", 0.2), testLocus("rs6", 0.45),
	)
	var pairs []ldpair.Pair
	for _, spoke := range []string{"rs1", "rs2", "rs4", "rs5"} {
		pairs = append(pairs, ldpair.Pair{Locus1: "rs3", Locus2: spoke, RSquared: 0.9, DPrime: 1})
	}
	return loci, pairs
}

// cliqueFixture makes rs1..rs5 a fully-connected clique (every locus is a
// valid tag for the whole bin) with rs6 standing alone.
func cliqueFixture() (map[string]*locus.Locus, []ldpair.Pair) {
	loci := lociMap(
		testLocus("rs1", 0.3), testLocus("rs2", 0.25), testLocus("rs3", 0.4),
		testLocus("rs4", 0.1), testLocus("rs5", 0.2), testLocus("rs6", 0.45),
	)
	var pairs []ldpair.Pair
	names := []string{"rs1", "rs2", "rs3", "rs4", "rs5"}
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			pairs = append(pairs, ldpair.Pair{Locus1: names[i], Locus2: names[j], RSquared: 0.9, DPrime: 1})
		}
	}
	return loci, pairs
}

func TestBinnerSelectsLargestBinFirst(t *testing.T) {
	loci, pairs := hubFixture()
	binsets, table := BuildBinsets(loci, pairs, locus.NewIncludes(nil, nil), map[string]bool{}, nil)
	binner := NewBinner(binsets, table, loci, locus.NewIncludes(nil, nil), nil, 0, 0)

	result, ok := binner.Next()
	if !ok {
		t.Fatal("expected a result")
	}
	if result.Len() != 5 {
		t.Fatalf("got bin size %d, want 5 (the maximal bin should be selected first)", result.Len())
	}
	if result.Reference != "rs3" {
		t.Errorf("got reference %s, want rs3 (the hub)", result.Reference)
	}

	result2, ok := binner.Next()
	if !ok {
		t.Fatal("expected a second result")
	}
	if result2.Len() != 1 || result2.Tags[0] != "rs6" {
		t.Fatalf("got %+v, want the rs6 singleton", result2)
	}

	if _, ok := binner.Next(); ok {
		t.Error("expected no further bins")
	}
}

func TestBinnerSingleTagWhenOnlyHubIsASuperset(t *testing.T) {
	loci, pairs := hubFixture()
	binsets, table := BuildBinsets(loci, pairs, locus.NewIncludes(nil, nil), map[string]bool{}, nil)
	binner := NewBinner(binsets, table, loci, locus.NewIncludes(nil, nil), nil, 0, 0)

	result, _ := binner.Next()
	if len(result.Tags) != 1 || result.Tags[0] != "rs3" {
		t.Errorf("got tags %v, want only rs3 (no spoke's bin is a superset of the hub's)", result.Tags)
	}
}

func TestBinnerAllCliqueMembersAreValidTags(t *testing.T) {
	loci, pairs := cliqueFixture()
	binsets, table := BuildBinsets(loci, pairs, locus.NewIncludes(nil, nil), map[string]bool{}, nil)
	binner := NewBinner(binsets, table, loci, locus.NewIncludes(nil, nil), nil, 0, 0)

	result, _ := binner.Next()
	if len(result.Tags) != 5 {
		t.Errorf("got %d tags, want 5: every member of a fully-connected clique is an equally valid tag", len(result.Tags))
	}
}

func TestBinnerUntypedObligateIsolated(t *testing.T) {
	loci, pairs := cliqueFixture()
	includes := locus.NewIncludes(nil, map[string]bool{"rs1": true, "rs2": true})
	binsets, table := BuildBinsets(loci, pairs, includes, map[string]bool{}, nil)
	binner := NewBinner(binsets, table, loci, includes, nil, 0, 0)

	seen := map[string]*BinResult{}
	for {
		r, ok := binner.Next()
		if !ok {
			break
		}
		seen[r.Reference] = r
	}

	rs1, ok := seen["rs1"]
	if !ok {
		t.Fatal("expected rs1 to be its own bin reference")
	}
	if rs1.Disposition != IncludeUntyped {
		t.Errorf("got disposition %v, want IncludeUntyped", rs1.Disposition)
	}
	if rs1.Len() != 4 {
		t.Errorf("got bin size %d, want 4 (rs1, rs3, rs4, rs5: untyped obligates must not share a bin, so rs2 is withdrawn)", rs1.Len())
	}
}

func TestBinnerExcludeSortsLast(t *testing.T) {
	loci, pairs := cliqueFixture()
	exclude := map[string]bool{"rs6": true}
	binsets, table := BuildBinsets(loci, pairs, locus.NewIncludes(nil, nil), exclude, nil)
	binner := NewBinner(binsets, table, loci, locus.NewIncludes(nil, nil), nil, 0, 0)

	var order []string
	for {
		r, ok := binner.Next()
		if !ok {
			break
		}
		order = append(order, r.Reference)
	}
	if order[len(order)-1] != "rs6" {
		t.Errorf("got order %v, want the excluded locus last", order)
	}
}

func TestBinnerTargetBinsMarksResidual(t *testing.T) {
	loci, pairs := cliqueFixture()
	binsets, table := BuildBinsets(loci, pairs, locus.NewIncludes(nil, nil), map[string]bool{}, nil)
	binner := NewBinner(binsets, table, loci, locus.NewIncludes(nil, nil), nil, 1, 0)

	first, _ := binner.Next()
	if first.Disposition == Residual {
		t.Errorf("first bin should not be residual")
	}
	second, _ := binner.Next()
	if second.Disposition != Residual {
		t.Errorf("got disposition %v, want Residual once targetBins is exceeded", second.Disposition)
	}
}

func TestMustSplitRequiresMoreTagsThanAvailable(t *testing.T) {
	loci := lociMap(testLocus("a", 0.2), testLocus("b", 0.2), testLocus("c", 0.2))
	pairs := []ldpair.Pair{
		{Locus1: "a", Locus2: "b", RSquared: 0.9, DPrime: 1},
		{Locus1: "a", Locus2: "c", RSquared: 0.9, DPrime: 1},
	}
	binsets, _ := BuildBinsets(loci, pairs, locus.NewIncludes(nil, nil), map[string]bool{}, nil)

	fn := func(n int) int { return 2 }
	if !MustSplit(binsets["a"], binsets, fn) {
		t.Error("expected a split: only 'a' can tag itself (b and c are not supersets), but 2 tags are required")
	}
}

func TestMustSplitFalseWhenOneTagRequired(t *testing.T) {
	loci := lociMap(testLocus("a", 0.2), testLocus("b", 0.2))
	pairs := []ldpair.Pair{{Locus1: "a", Locus2: "b", RSquared: 0.9, DPrime: 1}}
	binsets, _ := BuildBinsets(loci, pairs, locus.NewIncludes(nil, nil), map[string]bool{}, nil)

	if MustSplit(binsets["a"], binsets, LociPerTag(10)) {
		t.Error("a policy requiring exactly one tag should never force a split")
	}
}
