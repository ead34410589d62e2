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

package ld

import (
	"math"

	"github.com/grailbio/tagzilla/locus"
	"github.com/grailbio/tagzilla/tzerr"
)

const (
	// boundaryEpsilon keeps EM haplotype-frequency estimates away from 0
	// so the log-likelihood stays finite.
	boundaryEpsilon = 1e-10
	// convergenceTolerance is the log-likelihood delta below which the EM
	// is considered converged.
	convergenceTolerance = 1e-9
	maxIterations        = 100
)

// Result is the pairwise LD estimate between two loci.
type Result struct {
	RSquared float64
	DPrime   float64
	// Monomorphic is true when one or both loci had fewer than two
	// observed alleles and dh was 0; RSquared and DPrime are both 0 in
	// that case and no EM iteration ran.
	Monomorphic bool
}

// Estimate runs the two-locus EM haplotype frequency estimator on aligned
// genotype vectors at two biallelic loci and returns (r-squared, D-prime).
// Samples missing a call at either locus are dropped. Estimate returns a
// *tzerr.Error of kind tzerr.NumericFailure if the resulting D-max or
// variance terms are degenerate.
func Estimate(genos1, genos2 []locus.Genotype) (Result, error) {
	c11, c12, c21, c22, dh, err := countHaplotypes(genos1, genos2)
	if err != nil {
		return Result{}, err
	}

	information := [4]float64{c11 + c12, c21 + c22, c11 + c21, c12 + c22}
	if dh == 0 {
		for _, v := range information {
			if v == 0 {
				return Result{Monomorphic: true}, nil
			}
		}
	}

	n := c11 + c12 + c21 + c22 + 2*dh
	if n == 0 {
		return Result{Monomorphic: true}, nil
	}

	p := (c11 + c12 + dh) / n
	q := (c11 + c21 + dh) / n

	p11 := p * q
	p12 := p * (1 - q)
	p21 := (1 - p) * q
	p22 := (1 - p) * (1 - q)

	loglike := math.Inf(-1)

	for iter := 0; iter < maxIterations; iter++ {
		oldLoglike := loglike

		p11 = math.Max(boundaryEpsilon, p11)
		p12 = math.Max(boundaryEpsilon, p12)
		p21 = math.Max(boundaryEpsilon, p21)
		p22 = math.Max(boundaryEpsilon, p22)

		a := p11*p22 + p12*p21

		loglike = c11*math.Log(p11) + c12*math.Log(p12) +
			c21*math.Log(p21) + c22*math.Log(p22) + dh*math.Log(a)

		if math.Abs(loglike-oldLoglike) < convergenceTolerance {
			break
		}

		nx1 := dh * p11 * p22 / a
		nx2 := dh * p12 * p21 / a

		p11 = (c11 + nx1) / n
		p12 = (c12 + nx2) / n
		p21 = (c21 + nx2) / n
		p22 = (c22 + nx1) / n
	}

	d := p11*p22 - p12*p21

	var dmax float64
	if d > 0 {
		dmax = math.Min(p*(1-q), (1-p)*q)
	} else {
		dmax = -math.Min(p*q, (1-p)*(1-q))
	}

	variance := p * (1 - p) * q * (1 - q)
	if dmax == 0 || variance == 0 {
		return Result{}, tzerr.E(tzerr.NumericFailure, "ld.Estimate", nil)
	}

	return Result{
		RSquared: d * d / variance,
		DPrime:   d / dmax,
	}, nil
}

// Bound returns a closed-form upper bound on r-squared that ignores
// double heterozygotes, letting a caller skip the full EM when the bound
// already falls below the r-squared reporting threshold. The coupling vs.
// repulsion branch is resolved with a tolerance that favors the coupling
// branch, per the design note accompanying this shortcut: preferring
// coupling keeps the bound conservative (i.e. non-decreasing) near d=0.
func Bound(genos1, genos2 []locus.Genotype) (float64, error) {
	c11, c12, c21, c22, dh, err := countHaplotypes(genos1, genos2)
	if err != nil {
		return 0, err
	}

	n := c11 + c12 + c21 + c22 + 2*dh
	if n == 0 {
		return 0, nil
	}

	p := (c11 + c12 + dh) / n
	q := (c11 + c21 + dh) / n

	if p > 0.5 {
		p = 1 - p
		c11, c12, c21, c22 = c21, c22, c11, c12
	}
	if q > 0.5 {
		q = 1 - q
		c11, c12, c21, c22 = c12, c11, c22, c21
	}
	if p > q {
		p, q = q, p
		c11, c12, c21, c22 = c22, c21, c12, c11
	}

	nn := n - 2*dh
	if nn == 0 {
		return 1.0, nil
	}
	d := (c11*c22 - c12*c21) / nn / nn

	const couplingTolerance = -0.005

	var dmax float64
	if d > couplingTolerance {
		dmax = math.Min(p*(1-q), (1-p)*q)
	} else {
		dmax = -math.Min(p*q, (1-p)*(1-q))
	}

	if p <= 0 {
		return 1.0, nil
	}
	variance := p * (1 - p) * q * (1 - q)
	if variance == 0 {
		return 1.0, nil
	}
	return dmax * dmax / variance, nil
}
