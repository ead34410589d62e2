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

package tagselect

import (
	"math"
	"sort"

	"github.com/grailbio/tagzilla/binning"
)

// Selection is the outcome of applying a TagSelector to one bin: Tags is
// the bin's tag list reordered by descending weight (best tag first),
// and Recommended is the subset a run should actually order, sized to
// the bin's tags-required count.
type Selection struct {
	Tags        []string
	Recommended []string
}

// TagSelector ranks the tags within a bin by design score and tag
// information criteria, then recommends the tags-required best of them
// (always including the bin's obligate tag, if any).
type TagSelector struct {
	Scores  map[string]float64
	Weights TagCriteria
}

// SelectTags reorders bin's tags by weight and picks the recommended
// subset. It reports ok=false when neither scores nor criteria were
// configured (or the bin is an obligate-exclude bin with no criteria),
// matching the original's no-op case: the caller should fall back to
// bin.Tags unmodified.
func (ts *TagSelector) SelectTags(bin *binning.BinResult) (Selection, bool) {
	if len(ts.Weights) == 0 && len(ts.Scores) == 0 {
		return Selection{}, false
	}
	if len(ts.Weights) == 0 && bin.Disposition == binning.Exclude {
		return Selection{}, false
	}
	if len(bin.Tags) == 1 {
		return Selection{Tags: bin.Tags, Recommended: []string{bin.Tags[0]}}, true
	}

	weights := map[string]float64{}
	for method, weight := range ts.Weights {
		for name, w := range ts.buildWeights(bin, method, weight) {
			if _, ok := weights[name]; !ok {
				weights[name] = 1
			}
			weights[name] *= w
		}
	}

	var scores map[string]float64
	if bin.Disposition == binning.Exclude {
		scores = map[string]float64{}
	} else {
		scores = ts.Scores
	}
	defaultScore := 0.0
	if len(scores) == 0 {
		defaultScore = 1.0
	}

	type ranked struct {
		score float64
		name  string
	}
	rankedTags := make([]ranked, 0, len(bin.Tags))
	for _, tag := range bin.Tags {
		score, ok := scores[tag]
		if !ok {
			score = defaultScore
		}
		weight, ok := weights[tag]
		if !ok {
			weight = 1
		}
		rankedTags = append(rankedTags, ranked{score: score * weight, name: tag})
	}

	sort.Slice(rankedTags, func(i, j int) bool {
		if rankedTags[i].score != rankedTags[j].score {
			return rankedTags[i].score > rankedTags[j].score
		}
		return rankedTags[i].name > rankedTags[j].name
	})

	tags := make([]string, len(rankedTags))
	for i, r := range rankedTags {
		tags[i] = r.name
	}

	n := bin.TagsRequired
	if n > len(tags) {
		n = len(tags)
	}
	if n < 0 {
		n = 0
	}
	recommended := append([]string(nil), tags[:n]...)

	if bin.Include != "" && !contains(recommended, bin.Include) {
		rest := bin.TagsRequired - 1
		if rest < 0 {
			rest = 0
		}
		if rest > len(tags) {
			rest = len(tags)
		}
		recommended = append([]string{bin.Include}, tags[:rest]...)
	}

	return Selection{Tags: tags, Recommended: recommended}, true
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// buildWeights computes, for one criterion, the set of tags that should
// be down-weighted relative to the strongest-linked tag: every tag
// tied for the maximum accumulated r-squared keeps weight 1, and every
// other tag gets 1/weight.
func (ts *TagSelector) buildWeights(bin *binning.BinResult, method Criterion, weight float64) map[string]float64 {
	isTag := map[string]bool{}
	for _, t := range bin.Tags {
		isTag[t] = true
	}

	accum := map[string]float64{}
	apply := func(lname1, lname2 string, r2 float64) {
		switch method {
		case MaxSNP:
			if cur, ok := accum[lname1]; !ok || r2 < cur {
				accum[lname1] = r2
			}
		case AvgSNP:
			accum[lname1] += r2
		case MaxTag:
			if !isTag[lname2] {
				if cur, ok := accum[lname1]; !ok || r2 < cur {
					accum[lname1] = r2
				}
			}
		case AvgTag:
			if !isTag[lname2] {
				accum[lname1] += r2
			}
		}
	}

	for _, rec := range bin.LD {
		if rec.Locus1 == rec.Locus2 {
			continue
		}
		pairs := [2][2]string{{rec.Locus1, rec.Locus2}, {rec.Locus2, rec.Locus1}}
		for _, p := range pairs {
			lname1, lname2 := p[0], p[1]
			if isTag[lname1] {
				apply(lname1, lname2, rec.RSquared)
			}
		}
	}

	if len(accum) == 0 {
		return nil
	}

	maxVal := math.Inf(-1)
	for _, v := range accum {
		if v > maxVal {
			maxVal = v
		}
	}

	out := map[string]float64{}
	for _, tag := range bin.Tags {
		v, ok := accum[tag]
		if !ok {
			continue
		}
		if math.Abs(v-maxVal) > 1e-10 {
			out[tag] = 1.0 / weight
		}
	}
	return out
}
