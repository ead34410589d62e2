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
	"fmt"
	"strconv"
	"strings"
)

// Criterion names one of the tag-information weighting methods: how
// strongly a candidate tag's own LD to the rest of the bin should be
// rewarded, and whether loci already covered by another tag still count.
type Criterion string

const (
	// MaxSNP scores each tag by its single weakest (smallest) r-squared
	// to any other bin member, regardless of whether that member is itself
	// also a tag, and rewards the tags whose score is the largest.
	MaxSNP Criterion = "maxsnp"
	// AvgSNP sums r-squared to every other bin member.
	AvgSNP Criterion = "avgsnp"
	// MaxTag is MaxSNP restricted to members that are not themselves tags.
	MaxTag Criterion = "maxtag"
	// AvgTag is AvgSNP restricted to members that are not themselves tags.
	AvgTag Criterion = "avgtag"
)

// DefaultWeight is applied to a criterion named with no explicit weight.
const DefaultWeight = 2.0

// TagCriteria maps each requested criterion to its weight.
type TagCriteria map[Criterion]float64

// BuildTagCriteria parses "--tagcriterion" arguments of the form
// "method" or "method:weight" into a TagCriteria, applying DefaultWeight
// when a weight is omitted.
func BuildTagCriteria(specs []string) (TagCriteria, error) {
	weights := TagCriteria{}
	for _, spec := range specs {
		parts := strings.SplitN(strings.ToLower(spec), ":", 2)
		method := Criterion(parts[0])
		switch method {
		case MaxSNP, AvgSNP, MaxTag, AvgTag:
		default:
			return nil, fmt.Errorf("tagselect: unknown tag criterion %q", parts[0])
		}

		weight := DefaultWeight
		if len(parts) > 1 {
			w, err := strconv.ParseFloat(parts[1], 64)
			if err != nil {
				return nil, fmt.Errorf("tagselect: invalid weight in %q: %w", spec, err)
			}
			weight = w
		}
		weights[method] = weight
	}
	return weights, nil
}
