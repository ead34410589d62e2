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
	"fmt"

	"github.com/grailbio/tagzilla/ldpair"
	"github.com/grailbio/tagzilla/locus"
)

// Compose reduces a multi-population run into the single-population shape
// the rest of the pipeline (locus filters, binning.BuildBinsets) already
// understands, for the three methods that admit such a reduction:
//
//   - Merge2 and Merge3 pool genotypes across populations locus-by-locus
//     (MergeLoci) and run one ordinary LD scan over the pooled cohort,
//     using the first population's thresholds (the original requires all
//     populations share one -r/-d/-maxdist setting for these methods).
//     Compose treats them identically; the two differ only in when the
//     caller applies MAF/completion/HWP filtering relative to the merge
//     (see cmd/tagzilla's loadPopulation/runComposedPopulations), which
//     Compose has no visibility into.
//   - MinLD keeps each population's genotypes separate and scans jointly
//     (ldpair.ScanMulti), reporting the union of loci any population
//     genotyped alongside the conservative cross-population pairs.
//
// Global does not reduce this way: it keeps every population's candidate
// bins distinct through selection. Callers that pass Global get an error;
// build a MultiBinner directly instead.
func Compose(method Method, populations [][]*locus.Locus, maxDist int64, perPop []ldpair.Thresholds) ([]*locus.Locus, []ldpair.Pair, error) {
	switch method {
	case Merge2, Merge3:
		if len(perPop) == 0 {
			return nil, nil, fmt.Errorf("multipop: Compose(%s) requires at least one threshold set", method)
		}
		merged := MergeLoci(populations)
		pairs := ldpair.Scan(merged, ldpair.Thresholds{
			MaxDistance: maxDist,
			MinRSquared: perPop[0].MinRSquared,
			MinDPrime:   perPop[0].MinDPrime,
		})
		return merged, pairs, nil

	case MinLD:
		pairs := ldpair.ScanMulti(populations, maxDist, perPop)
		return unionLoci(populations), pairs, nil

	case Global:
		return nil, nil, fmt.Errorf("multipop: Compose does not support Global; build a MultiBinner directly")

	default:
		return nil, nil, fmt.Errorf("multipop: unsupported method %q", method)
	}
}

// unionLoci returns one Locus per distinct name seen across populations,
// preferring the first population that genotyped it, for reporting
// purposes (MAF lookups, locus listings) after a MinLD scan.
func unionLoci(populations [][]*locus.Locus) []*locus.Locus {
	seen := map[string]bool{}
	var out []*locus.Locus
	for _, pop := range populations {
		for _, l := range pop {
			if seen[l.Name] {
				continue
			}
			seen[l.Name] = true
			out = append(out, l)
		}
	}
	return out
}
