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

package multipop

import (
	"github.com/grailbio/base/log"

	"github.com/grailbio/tagzilla/locus"
)

// joinedRow pairs one shared (location, name) coordinate across every
// population's sorted locus stream. A population with no locus at this
// coordinate contributes a nil Genos slice.
type joinedRow struct {
	name     string
	location int64
	genos    [][]locus.Genotype
}

// mergeByCoordinate walks each population's locus list in lockstep by
// (location, name). Every input slice must already be sorted by
// locus.Sort.
func mergeByCoordinate(populations [][]*locus.Locus) []joinedRow {
	idx := make([]int, len(populations))
	var joined []joinedRow

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

		row := joinedRow{name: minName, location: minLoc, genos: make([][]locus.Genotype, len(populations))}
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

// MergeLoci pools genotypes across populations for the merge2/merge3
// composition methods: at every coordinate any population genotyped, the
// merged locus's sample list is the concatenation of each population's
// genotypes in population order, with a population that has no call at
// this coordinate padded with that population's sample count worth of
// missing genotypes. A merged locus with more than two alleles (e.g. from
// a strand mismatch between populations) is dropped with a warning rather
// than failing the whole run.
func MergeLoci(populations [][]*locus.Locus) []*locus.Locus {
	sampleCounts := make([]int, len(populations))
	for p, loci := range populations {
		for _, l := range loci {
			if n := len(l.Genos); n > sampleCounts[p] {
				sampleCounts[p] = n
			}
		}
	}

	joined := mergeByCoordinate(populations)
	merged := make([]*locus.Locus, 0, len(joined))
	for _, row := range joined {
		var genos []locus.Genotype
		for p := range populations {
			if row.genos[p] != nil {
				genos = append(genos, row.genos[p]...)
			} else {
				genos = append(genos, make([]locus.Genotype, sampleCounts[p])...)
			}
		}

		l, err := locus.New(row.name, row.location, genos)
		if err != nil {
			log.Error.Printf("multipop: dropping locus %s (too many alleles after merge): %v", row.name, err)
			continue
		}
		merged = append(merged, l)
	}
	return merged
}
