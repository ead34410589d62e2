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

// Package locus holds the value objects shared by every stage of the
// binning pipeline: the Locus marker itself, its obligate include/exclude
// sets, and the locus-level filters that run ahead of LD-pair scanning.
package locus

import (
	"sort"

	"github.com/grailbio/tagzilla/tzerr"
)

// Locus is one genetic marker: its name, genomic location, estimated minor
// allele frequency, and the per-sample genotypes observed at it. Locus is
// immutable after construction.
type Locus struct {
	Name     string
	Location int64
	MAF      float64
	Genos    []Genotype
}

// New builds a Locus, estimating its MAF from genos. It returns a
// *tzerr.Error of kind tzerr.Biallelic if genos carries more than two
// distinct non-missing alleles.
func New(name string, location int64, genos []Genotype) (*Locus, error) {
	maf, err := EstimateMAF(genos)
	if err != nil {
		return nil, tzerr.E(tzerr.Biallelic, "locus.New", err)
	}
	return &Locus{Name: name, Location: location, MAF: maf, Genos: genos}, nil
}

// EstimateMAF returns the minor allele frequency across genos: the smaller
// of the two observed allele frequencies, ignoring missing calls. A
// monomorphic or entirely missing locus has MAF 0. EstimateMAF returns an
// error if more than two distinct alleles are observed.
func EstimateMAF(genos []Genotype) (float64, error) {
	counts := map[Allele]int{}
	for _, g := range genos {
		if g.A != Missing {
			counts[g.A]++
		}
		if g.B != Missing {
			counts[g.B]++
		}
	}

	switch len(counts) {
	case 0, 1:
		return 0, nil
	case 2:
		n := 0
		min := -1
		for _, c := range counts {
			n += c
			if min < 0 || c < min {
				min = c
			}
		}
		return float64(min) / float64(n), nil
	default:
		return 0, errBiallelic(counts)
	}
}

type biallelicViolation struct {
	alleles []Allele
}

func errBiallelic(counts map[Allele]int) error {
	v := biallelicViolation{}
	for a := range counts {
		v.alleles = append(v.alleles, a)
	}
	sort.Slice(v.alleles, func(i, j int) bool { return v.alleles[i] < v.alleles[j] })
	return &v
}

func (v *biallelicViolation) Error() string {
	return "locus may have no more than 2 alleles"
}

// Completion returns the number of called (non-missing) genotypes and the
// total sample count for a locus.
func Completion(genos []Genotype) (called, total int) {
	total = len(genos)
	for _, g := range genos {
		if !g.IsMissing() {
			called++
		}
	}
	return called, total
}

// ByLocation sorts loci ascending by (location, name), the order the
// LD-pair generator requires.
type ByLocation []*Locus

func (b ByLocation) Len() int      { return len(b) }
func (b ByLocation) Swap(i, j int) { b[i], b[j] = b[j], b[i] }
func (b ByLocation) Less(i, j int) bool {
	if b[i].Location != b[j].Location {
		return b[i].Location < b[j].Location
	}
	return b[i].Name < b[j].Name
}

// Sort orders loci the way the LD-pair generator requires.
func Sort(loci []*Locus) {
	sort.Sort(ByLocation(loci))
}
