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

package tagselect

import (
	"testing"

	"github.com/grailbio/tagzilla/binning"
)

func threeTagBin() *binning.BinResult {
	return &binning.BinResult{
		Reference:    "rs1",
		Tags:         []string{"rs1", "rs2", "rs3"},
		TagsRequired: 1,
		LD: []binning.LDRecord{
			{Locus1: "rs1", Locus2: "rs1", RSquared: 1, DPrime: 1},
			{Locus1: "rs2", Locus2: "rs2", RSquared: 1, DPrime: 1},
			{Locus1: "rs3", Locus2: "rs3", RSquared: 1, DPrime: 1},
			{Locus1: "rs1", Locus2: "rs2", RSquared: 0.9, DPrime: 1},
			{Locus1: "rs1", Locus2: "rs3", RSquared: 0.5, DPrime: 1},
		},
	}
}

func TestSelectTagsNoOpWithoutScoresOrWeights(t *testing.T) {
	ts := &TagSelector{}
	_, ok := ts.SelectTags(threeTagBin())
	if ok {
		t.Error("expected no selection with no scores or weights configured")
	}
}

func TestSelectTagsSingleTagShortCircuits(t *testing.T) {
	bin := &binning.BinResult{Tags: []string{"rs1"}, TagsRequired: 1}
	ts := &TagSelector{Scores: map[string]float64{"rs1": 0.1}}
	sel, ok := ts.SelectTags(bin)
	if !ok || len(sel.Recommended) != 1 || sel.Recommended[0] != "rs1" {
		t.Fatalf("got %+v, %v", sel, ok)
	}
}

func TestSelectTagsPrefersHigherDesignScore(t *testing.T) {
	ts := &TagSelector{Scores: map[string]float64{"rs1": 0.2, "rs2": 0.9, "rs3": 0.5}}
	sel, ok := ts.SelectTags(threeTagBin())
	if !ok {
		t.Fatal("expected a selection")
	}
	if sel.Tags[0] != "rs2" {
		t.Errorf("got top tag %s, want rs2 (highest design score)", sel.Tags[0])
	}
	if len(sel.Recommended) != 1 || sel.Recommended[0] != "rs2" {
		t.Errorf("got recommended %v, want [rs2]", sel.Recommended)
	}
}

func TestSelectTagsIncludesObligateTag(t *testing.T) {
	bin := threeTagBin()
	bin.Include = "rs3"
	ts := &TagSelector{Scores: map[string]float64{"rs1": 0.2, "rs2": 0.9, "rs3": 0.1}}
	sel, ok := ts.SelectTags(bin)
	if !ok {
		t.Fatal("expected a selection")
	}
	if !contains(sel.Recommended, "rs3") {
		t.Errorf("got recommended %v, want it to include the obligate tag rs3", sel.Recommended)
	}
}

func TestSelectTagsMaxSNPCriterionDownweightsWeakerLinkedTags(t *testing.T) {
	ts := &TagSelector{Weights: TagCriteria{MaxSNP: 2}}
	sel, ok := ts.SelectTags(threeTagBin())
	if !ok {
		t.Fatal("expected a selection")
	}
	if sel.Tags[0] != "rs2" {
		t.Errorf("got top tag %s, want rs2 (only tag not downweighted: its min r-squared to the bin ties the maximum)", sel.Tags[0])
	}
}
