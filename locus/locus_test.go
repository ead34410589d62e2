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

package locus

import (
	"testing"

	"github.com/grailbio/tagzilla/tzerr"
)

func genos(pairs ...[2]byte) []Genotype {
	out := make([]Genotype, len(pairs))
	for i, p := range pairs {
		out[i] = ParseGenotype(p[0], p[1], ' ')
	}
	return out
}

func TestEstimateMAF(t *testing.T) {
	g := genos([2]byte{'A', 'A'}, [2]byte{'A', 'B'}, [2]byte{'B', 'B'}, [2]byte{' ', ' '})
	maf, err := EstimateMAF(g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if maf != 0.5 {
		t.Errorf("got MAF %v, want 0.5", maf)
	}
}

func TestEstimateMAFMonomorphic(t *testing.T) {
	g := genos([2]byte{'A', 'A'}, [2]byte{'A', 'A'})
	maf, err := EstimateMAF(g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if maf != 0 {
		t.Errorf("got MAF %v, want 0", maf)
	}
}

func TestEstimateMAFTriallelicError(t *testing.T) {
	g := genos([2]byte{'A', 'A'}, [2]byte{'B', 'B'}, [2]byte{'C', 'C'})
	_, err := EstimateMAF(g)
	if err == nil {
		t.Fatal("expected an error for a triallelic locus")
	}
}

func TestNewBiallelicError(t *testing.T) {
	g := genos([2]byte{'A', 'A'}, [2]byte{'B', 'B'}, [2]byte{'C', 'C'})
	_, err := New("rs1", 100, g)
	if !tzerr.Is(err, tzerr.Biallelic) {
		t.Fatalf("got error %v, want tzerr.Biallelic", err)
	}
}

func TestCompletion(t *testing.T) {
	g := genos([2]byte{'A', 'A'}, [2]byte{' ', ' '}, [2]byte{'A', 'B'})
	called, total := Completion(g)
	if called != 2 || total != 3 {
		t.Errorf("got (%d, %d), want (2, 3)", called, total)
	}
}

func TestSort(t *testing.T) {
	loci := []*Locus{
		{Name: "rs2", Location: 100},
		{Name: "rs1", Location: 100},
		{Name: "rs3", Location: 50},
	}
	Sort(loci)
	want := []string{"rs3", "rs1", "rs2"}
	for i, name := range want {
		if loci[i].Name != name {
			t.Errorf("position %d: got %s, want %s", i, loci[i].Name, name)
		}
	}
}

func TestGenotypeCanonical(t *testing.T) {
	g := Genotype{A: 'B', B: 'A'}.Canonical()
	if g.A != 'A' || g.B != 'B' {
		t.Errorf("got %v, want A<B ordering", g)
	}
}

func TestGenotypeIsHeterozygous(t *testing.T) {
	if !(Genotype{A: 'A', B: 'B'}).IsHeterozygous() {
		t.Error("AB should be heterozygous")
	}
	if (Genotype{A: 'A', B: 'A'}).IsHeterozygous() {
		t.Error("AA should not be heterozygous")
	}
	if (Genotype{A: Missing, B: 'A'}).IsHeterozygous() {
		t.Error("hemizygous call should not be heterozygous")
	}
}
