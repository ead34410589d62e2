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
	"bytes"
	"testing"

	"github.com/grailbio/tagzilla/ldpair"
)

func TestPairKeyIsOrderIndependent(t *testing.T) {
	if pairKey("rs1", "rs2") != pairKey("rs2", "rs1") {
		t.Error("pairKey should not depend on argument order")
	}
	if pairKey("rs1", "rs2") == pairKey("rs1", "rs3") {
		t.Error("different pairs should not collide in this small example")
	}
}

func TestCacheRoundTripsPairs(t *testing.T) {
	var buf bytes.Buffer
	w := NewCacheWriter(&buf, 500000)
	want := []ldpair.Pair{
		{Locus1: "rs1", Locus2: "rs2", RSquared: 0.81, DPrime: 0.95},
		{Locus1: "rs2", Locus2: "rs3", RSquared: 0.42, DPrime: 0.5},
	}
	for _, p := range want {
		w.Append(p)
	}
	if err := w.Finish(); err != nil {
		t.Fatal(err)
	}

	r := NewCacheReader(bytes.NewReader(buf.Bytes()))
	var got []ldpair.Pair
	for r.Scan() {
		got = append(got, r.Pair())
	}
	if err := r.Err(); err != nil {
		t.Fatal(err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d pairs, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Locus1 != want[i].Locus1 || got[i].Locus2 != want[i].Locus2 {
			t.Errorf("pair %d: got %+v, want %+v", i, got[i], want[i])
		}
		if diff := got[i].RSquared - want[i].RSquared; diff > 1e-6 || diff < -1e-6 {
			t.Errorf("pair %d: RSquared got %v, want %v", i, got[i].RSquared, want[i].RSquared)
		}
	}
}
