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
package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grailbio/tagzilla/binning"
)

func TestParseRangeSpecBothBounds(t *testing.T) {
	r, err := parseRangeSpec("1000:2000")
	require.NoError(t, err)
	assert.True(t, r.Contains(1500))
	assert.False(t, r.Contains(2000))
	assert.False(t, r.Contains(999))
}

func TestParseRangeSpecOpenEnded(t *testing.T) {
	r, err := parseRangeSpec("1000:")
	require.NoError(t, err)
	assert.True(t, r.Contains(10_000_000), "expected an unbounded upper end, got %+v", r)
}

func TestParseRangeSpecRejectsBackwardsRange(t *testing.T) {
	_, err := parseRangeSpec("2000:1000")
	assert.Error(t, err, "expected an error for end < start")
}

func TestBuildTagsRequiredDefaultsToNil(t *testing.T) {
	assert.Nil(t, buildTagsRequired(&Opts{}), "expected a nil policy by default")
}

func TestBuildTagsRequiredLociPerTag(t *testing.T) {
	fn := buildTagsRequired(&Opts{LociPerTag: 5})
	require.NotNil(t, fn)
	assert.Equal(t, 3, fn(10))
}

func TestQualifierFor(t *testing.T) {
	cases := []struct {
		d    binning.Disposition
		want string
	}{
		{binning.Normal, ""},
		{binning.Residual, "residual"},
		{binning.IncludeUntyped, "untyped_bin"},
		{binning.IncludeTyped, "typed_bin"},
		{binning.Exclude, "excluded"},
	}
	for _, c := range cases {
		if got := qualifierFor(c.d); got != c.want {
			t.Errorf("qualifierFor(%v) = %q, want %q", c.d, got, c.want)
		}
	}
}

func TestParsePopulationSpecs(t *testing.T) {
	opts := &Opts{
		MinRSquared: 0.8,
		MaxDistance: 1000,
		Populations: []string{"pop1=a.hapmap", "pop2=b.hapmap:0.5:0.9"},
	}
	specs, err := parsePopulationSpecs(opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(specs) != 2 {
		t.Fatalf("got %d specs, want 2", len(specs))
	}
	if specs[0].Name != "pop1" || specs[0].Path != "a.hapmap" || specs[0].Th.MinRSquared != 0.8 {
		t.Errorf("got %+v", specs[0])
	}
	if specs[1].Name != "pop2" || specs[1].Th.MinRSquared != 0.5 || specs[1].Th.MinDPrime != 0.9 {
		t.Errorf("got %+v", specs[1])
	}
}

func TestParsePopulationSpecsRequiresNameEquals(t *testing.T) {
	opts := &Opts{Populations: []string{"not-a-valid-spec"}}
	if _, err := parsePopulationSpecs(opts); err == nil {
		t.Error("expected an error for a spec missing '='")
	}
}
