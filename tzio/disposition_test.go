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

package tzio

import (
	"testing"

	"github.com/grailbio/tagzilla/binning"
)

func TestTagDispositionNormalBin(t *testing.T) {
	bin := &binning.BinResult{Tags: []string{"rs1", "rs2"}}
	if got := TagDisposition("rs1", bin, nil); got != "candidate-tag" {
		t.Errorf("got %q, want candidate-tag", got)
	}
}

func TestTagDispositionSingletonBin(t *testing.T) {
	bin := &binning.BinResult{Tags: []string{"rs1"}, MaxCovered: 1}
	if got := TagDisposition("rs1", bin, nil); got != "singleton-tag" {
		t.Errorf("got %q, want singleton-tag", got)
	}
}

func TestTagDispositionRecommendedSuffix(t *testing.T) {
	bin := &binning.BinResult{Tags: []string{"rs1", "rs2"}}
	got := TagDisposition("rs1", bin, map[string]bool{"rs1": true})
	if got != "candidate-tag,recommended" {
		t.Errorf("got %q", got)
	}
}

func TestTagDispositionObligateUntyped(t *testing.T) {
	bin := &binning.BinResult{
		Disposition:  binning.IncludeUntyped,
		Include:      "rs1",
		Tags:         []string{"rs1", "rs2"},
		IncludeTyped: map[string]bool{},
	}
	if got := TagDisposition("rs1", bin, nil); got != "untyped-tag" {
		t.Errorf("got %q, want untyped-tag", got)
	}
	if got := TagDisposition("rs2", bin, nil); got != "alternate-tag" {
		t.Errorf("got %q, want alternate-tag", got)
	}
}

func TestLocusDispositionExcludedNonTag(t *testing.T) {
	bin := &binning.BinResult{Tags: []string{"rs1"}, Others: []string{"rs2"}}
	got := LocusDisposition("rs2", bin, map[string]bool{"rs2": true}, nil, "")
	if got != "exclude" {
		t.Errorf("got %q, want exclude", got)
	}
}

func TestLocusDispositionOther(t *testing.T) {
	bin := &binning.BinResult{Tags: []string{"rs1"}, Others: []string{"rs2"}}
	got := LocusDisposition("rs2", bin, map[string]bool{}, nil, "")
	if got != "other" {
		t.Errorf("got %q, want other", got)
	}
}

func TestLocusDispositionQualifier(t *testing.T) {
	bin := &binning.BinResult{Tags: []string{"rs1"}, Others: []string{"rs2"}}
	got := LocusDisposition("rs2", bin, map[string]bool{}, nil, "residual")
	if got != "other,residual" {
		t.Errorf("got %q, want other,residual", got)
	}
}

func TestPairDispositionSelfPair(t *testing.T) {
	bin := &binning.BinResult{Tags: []string{"rs1", "rs2"}}
	got := PairDisposition("rs1", "rs1", bin, nil, "")
	if got != "candidate-tag" {
		t.Errorf("got %q, want candidate-tag", got)
	}
}

func TestPairDispositionCrossPair(t *testing.T) {
	bin := &binning.BinResult{Tags: []string{"rs1"}, Others: []string{"rs2"}}
	if got := PairDisposition("rs1", "rs2", bin, nil, ""); got != "tag-other" {
		t.Errorf("got %q, want tag-other", got)
	}
	if got := PairDisposition("rs2", "rs1", bin, nil, ""); got != "other-tag" {
		t.Errorf("got %q, want other-tag", got)
	}
}
