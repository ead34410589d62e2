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

// Package ld computes pairwise linkage disequilibrium between two
// biallelic loci from unphased diploid genotypes, via a two-locus
// expectation-maximization haplotype frequency estimator.
package ld

import (
	"sort"

	"github.com/grailbio/tagzilla/locus"
	"github.com/grailbio/tagzilla/tzerr"
)

// pad is an internal placeholder allele used to fill out a monomorphic
// locus's heterozygote exemplar to two positions. It is distinct from
// locus.Missing so the phase-alignment logic below never confuses "no
// data" with "no second allele at this locus".
const pad = locus.Allele(0xff)

type allelePair [2]locus.Allele

// countHaplotypes tallies c11, c12, c21, c22 (coupled haplotype counts)
// and dh (double-heterozygote, phase-ambiguous count) across aligned,
// unphased genotypes at two loci. It follows the same generic
// exemplar-alignment approach as the original estimator: rather than
// enumerate phased haplotypes directly, each observed diplotype is
// compared position-wise against a canonical heterozygote genotype for
// each locus, which deterministically assigns it to the haplotype
// bucket(s) it is consistent with.
func countHaplotypes(genos1, genos2 []locus.Genotype) (c11, c12, c21, c22, dh float64, err error) {
	if len(genos1) != len(genos2) {
		return 0, 0, 0, 0, 0, tzerr.E(tzerr.Format, "ld.countHaplotypes", nil)
	}

	counts := map[allelePair]map[allelePair]int{}
	alleles1 := map[locus.Allele]bool{}
	alleles2 := map[locus.Allele]bool{}

	for i := range genos1 {
		g1 := genos1[i].Canonical()
		g2 := genos2[i].Canonical()
		if g1.IsMissing() || g2.IsMissing() {
			continue
		}
		k1 := allelePair{g1.A, g1.B}
		k2 := allelePair{g2.A, g2.B}
		if counts[k1] == nil {
			counts[k1] = map[allelePair]int{}
		}
		counts[k1][k2]++
		alleles1[g1.A] = true
		alleles1[g1.B] = true
		alleles2[g2.A] = true
		alleles2[g2.B] = true
	}

	het1, err := findHetz(alleles1)
	if err != nil {
		return 0, 0, 0, 0, 0, tzerr.E(tzerr.Biallelic, "ld.countHaplotypes", err)
	}
	het2, err := findHetz(alleles2)
	if err != nil {
		return 0, 0, 0, 0, 0, tzerr.E(tzerr.Biallelic, "ld.countHaplotypes", err)
	}

	var x [5]float64
	for g1, inner := range counts {
		for g2, n := range inner {
			nf := float64(n)

			if g1 == het1 && g2 == het2 {
				x[4] += nf
				continue
			}

			if g1[0] == locus.Missing && g1[1] != het1[1] {
				g1[0], g1[1] = g1[1], g1[0]
			}
			if g2[0] == locus.Missing && g2[1] != het2[1] {
				g2[0], g2[1] = g2[1], g2[0]
			}

			fullyCalled := g1[0] != locus.Missing && g1[1] != locus.Missing &&
				g2[0] != locus.Missing && g2[1] != locus.Missing
			if fullyCalled && g1 != het1 && g2 != het2 {
				nf *= 2
			}

			if g1[0] == het1[0] && g2[0] == het2[0] {
				x[0] += nf
			}
			if g1[0] == het1[0] && g2[1] == het2[1] {
				x[1] += nf
			}
			if g1[1] == het1[1] && g2[0] == het2[0] {
				x[2] += nf
			}
			if g1[1] == het1[1] && g2[1] == het2[1] {
				x[3] += nf
			}
		}
	}

	return x[0], x[1], x[2], x[3], x[4], nil
}

// findHetz returns the canonical two-allele heterozygote exemplar for a
// locus, given the set of non-missing alleles observed there. A
// monomorphic locus is padded with the sentinel pad allele. More than two
// distinct alleles is a biallelic constraint violation.
func findHetz(alleles map[locus.Allele]bool) (allelePair, error) {
	var as []locus.Allele
	for a := range alleles {
		if a != locus.Missing {
			as = append(as, a)
		}
	}
	sort.Slice(as, func(i, j int) bool { return as[i] < as[j] })

	if len(as) > 2 {
		return allelePair{}, errTriallelic
	}
	for len(as) < 2 {
		as = append(as, pad)
	}
	return allelePair{as[0], as[1]}, nil
}

type triallelicErr struct{}

func (triallelicErr) Error() string { return "locus may have no more than 2 alleles" }

var errTriallelic = triallelicErr{}
