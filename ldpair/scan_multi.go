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

package ldpair

import (
	"math"

	"github.com/grailbio/base/log"

	"github.com/grailbio/tagzilla/ld"
	"github.com/grailbio/tagzilla/locus"
)

// joinedLocus pairs one locus's worth of per-population data at a shared
// (location, name) coordinate. A population with no locus at this
// coordinate contributes a nil Genos slice.
type joinedLocus struct {
	name     string
	location int64
	genos    [][]locus.Genotype
}

// mergeByCoordinate walks each population's locus stream in lockstep by
// (location, name), the same way the original multi-population scan
// synchronizes disjoint per-population locus lists before joint-scanning
// them. Each population stream must already be sorted by locus.Sort.
func mergeByCoordinate(populations [][]*locus.Locus) []joinedLocus {
	idx := make([]int, len(populations))
	var joined []joinedLocus

	for {
		var minLoc int64
		minName := ""
		haveAny := false
		for p, loci := range populations {
			if idx[p] >= len(loci) {
				continue
			}
			l := loci[idx[p]]
			if !haveAny || l.Location < minLoc || (l.Location == minLoc && l.Name < minName) {
				minLoc, minName, haveAny = l.Location, l.Name, true
			}
		}
		if !haveAny {
			break
		}

		row := joinedLocus{name: minName, location: minLoc, genos: make([][]locus.Genotype, len(populations))}
		for p, loci := range populations {
			if idx[p] < len(loci) && loci[idx[p]].Location == minLoc && loci[idx[p]].Name == minName {
				row.genos[p] = loci[idx[p]].Genos
				idx[p]++
			}
		}
		joined = append(joined, row)
	}
	return joined
}

// ScanMulti generates the "minld" multi-population LD pairs: two loci are
// reported once every population in which the pair is polymorphic clears
// that population's own thresholds, and the reported r-squared/D-prime are
// each the minimum across those populations (the most conservative value).
// A population missing either locus, or in which the pair is monomorphic,
// is skipped for that pair, but at least one population must have the pair
// polymorphic for it to be eligible.
func ScanMulti(populations [][]*locus.Locus, maxd int64, perPop []Thresholds) []Pair {
	if len(populations) != len(perPop) {
		log.Error.Printf("ldpair.ScanMulti: %d populations but %d threshold sets", len(populations), len(perPop))
		return nil
	}

	joined := mergeByCoordinate(populations)

	var pairs []Pair
	n := len(joined)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if joined[j].location-joined[i].location > maxd {
				break
			}

			r2 := math.Inf(1)
			dprime := math.Inf(1)
			sawAny := false
			good := true

			for p := range populations {
				g1 := joined[i].genos[p]
				g2 := joined[j].genos[p]
				if len(g1) == 0 || len(g2) == 0 {
					continue
				}

				res, err := ld.Estimate(g1, g2)
				if err != nil {
					good = false
					break
				}
				if res.Monomorphic {
					continue
				}
				sawAny = true

				if res.RSquared < r2 {
					r2 = res.RSquared
				}
				if res.DPrime < dprime {
					dprime = res.DPrime
				}

				if res.RSquared < perPop[p].MinRSquared || abs(res.DPrime) < perPop[p].MinDPrime {
					good = false
					break
				}
			}

			if sawAny && good {
				pairs = append(pairs, Pair{
					Locus1:   joined[i].name,
					Locus2:   joined[j].name,
					RSquared: r2,
					DPrime:   dprime,
				})
			}
		}
	}
	return pairs
}
