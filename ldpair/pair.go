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

// Package ldpair generates candidate LD pairs from a sorted locus list: for
// each locus, every downstream locus within a genomic distance window whose
// pairwise LD clears the configured r-squared and D-prime thresholds.
package ldpair

import (
	"github.com/grailbio/base/log"

	"github.com/grailbio/tagzilla/ld"
	"github.com/grailbio/tagzilla/locus"
)

// Pair is one thresholded LD relationship between two loci, named in the
// deterministic (earlier, later) order the scan discovered them in.
type Pair struct {
	Locus1, Locus2 string
	RSquared       float64
	DPrime         float64
}

// Thresholds bounds which pairs Scan reports.
type Thresholds struct {
	MaxDistance int64
	MinRSquared float64
	MinDPrime   float64
}

// Scan reports every pair of loci within MaxDistance of each other whose LD
// clears MinRSquared and |D-prime| clears MinDPrime. loci must already be
// sorted by (location, name); see locus.Sort. The scan is O(N*W) where W is
// the average number of loci within the distance window, since the inner
// loop breaks as soon as a downstream locus falls outside it.
//
// A pair whose LD estimate fails numerically (see ld.Estimate) is skipped
// and logged rather than propagated, matching the recovery policy for
// per-pair numeric failures: one bad pair should not abort a run.
func Scan(loci []*locus.Locus, th Thresholds) []Pair {
	var pairs []Pair
	n := len(loci)
	for i := 0; i < n; i++ {
		l1 := loci[i]
		for j := i + 1; j < n; j++ {
			l2 := loci[j]
			if l2.Location-l1.Location > th.MaxDistance {
				break
			}

			if bound, err := ld.Bound(l1.Genos, l2.Genos); err == nil && bound < th.MinRSquared {
				continue
			}

			res, err := ld.Estimate(l1.Genos, l2.Genos)
			if err != nil {
				log.Error.Printf("ld.Estimate(%s, %s): %v", l1.Name, l2.Name, err)
				continue
			}
			if res.Monomorphic {
				continue
			}
			if res.RSquared >= th.MinRSquared && abs(res.DPrime) >= th.MinDPrime {
				pairs = append(pairs, Pair{
					Locus1:   l1.Name,
					Locus2:   l2.Name,
					RSquared: res.RSquared,
					DPrime:   res.DPrime,
				})
			}
		}
	}
	return pairs
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
