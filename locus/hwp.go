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

import "gonum.org/v1/gonum/stat/distuv"

// countGenos tallies the two homozygote classes and the heterozygote class
// observed at a biallelic locus, ignoring missing and hemizygous calls. The
// two homozygote buckets are assigned in order of first appearance; which
// bucket ends up "hom1" vs "hom2" is immaterial to every caller below,
// since both HWP tests are symmetric in the two homozygote counts.
func countGenos(genos []Genotype) (hom1, het, hom2 int) {
	var homAllele Allele
	haveHom := false
	for _, g := range genos {
		if g.A == Missing || g.B == Missing {
			continue
		}
		if g.A != g.B {
			het++
			continue
		}
		if !haveHom {
			homAllele, haveHom = g.A, true
		}
		if g.A == homAllele {
			hom1++
		} else {
			hom2++
		}
	}
	return hom1, het, hom2
}

// hwpExactBiallelic computes the exact two-sided p-value for deviation
// from Hardy-Weinberg proportions, following Wigginton, Cutler & Abecasis
// 2005 (Am J Hum Genet 76:887-93).
func hwpExactBiallelic(hom1Count, hetCount, hom2Count int) float64 {
	rare := 2*min(hom1Count, hom2Count) + hetCount
	common := 2*max(hom1Count, hom2Count) + hetCount

	if rare == 0 {
		return 1.0
	}

	hets := rare * common / (rare + common)
	if rare%2 != hets%2 {
		hets++
	}

	homR := (rare - hets) / 2
	homC := (common - hets) / 2

	probs := make([]float64, rare/2+1)
	probs[hets/2] = 1.0

	for i, h := 0, hets; h > 1; i, h = i+1, h-2 {
		probs[h/2-1] = probs[h/2] * float64(h) * float64(h-1) /
			(4 * float64(homR+i+1) * float64(homC+i+1))
	}

	for i, h := 0, hets; h < rare-1; i, h = i+1, h+2 {
		probs[h/2+1] = probs[h/2] * 4 * float64(homR-i) * float64(homC-i) /
			(float64(h+1) * float64(h+2))
	}

	pObs := probs[hetCount/2]
	var sum, sumLE float64
	for _, p := range probs {
		sum += p
		if p <= pObs {
			sumLE += p
		}
	}
	if sum == 0 {
		return 1.0
	}
	return sumLE / sum
}

// hwpChiSquareBiallelic computes the asymptotic Hardy-Weinberg chi-squared
// p-value (1 degree of freedom).
func hwpChiSquareBiallelic(hom1Count, hetCount, hom2Count int) float64 {
	n := hom1Count + hetCount + hom2Count
	if n == 0 {
		return 1.0
	}

	nf := float64(n)
	p := float64(2*hom1Count+hetCount) / (2 * nf)
	q := float64(2*hom2Count+hetCount) / (2 * nf)

	score := func(o, e float64) float64 {
		if e <= 0 {
			return 0
		}
		return (o - e) * (o - e) / e
	}

	xx := score(float64(hom1Count), nf*p*p) +
		score(float64(hetCount), 2*nf*p*q) +
		score(float64(hom2Count), nf*q*q)

	if xx <= 0 {
		return 1.0
	}

	chi := distuv.ChiSquared{K: 1}
	return 1 - chi.CDF(xx)
}

// HWPBiallelic returns the p-value for deviation from Hardy-Weinberg
// proportions at a biallelic locus, using the exact test below 1000 rare
// alleles and the chi-squared approximation above.
func HWPBiallelic(genos []Genotype) float64 {
	hom1, het, hom2 := countGenos(genos)

	if 2*min(hom1, hom2)+het < 1000 {
		return hwpExactBiallelic(hom1, het, hom2)
	}
	return hwpChiSquareBiallelic(hom1, het, hom2)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
