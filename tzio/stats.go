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

package tzio

import "github.com/grailbio/tagzilla/binning"

// dispositionLabels lists the bin dispositions in the fixed order the
// summary tables report them.
var dispositionLabels = []string{
	"obligate-untyped",
	"obligate-typed",
	"maximal-bin",
	"residual",
	"obligate-exclude",
}

func dispositionLabel(d binning.Disposition) string {
	switch d {
	case binning.IncludeUntyped:
		return "obligate-untyped"
	case binning.IncludeTyped:
		return "obligate-typed"
	case binning.Residual:
		return "residual"
	case binning.Exclude:
		return "obligate-exclude"
	default:
		return "maximal-bin"
	}
}

// BinStat accumulates the per-disposition, per-bin-size-bucket totals the
// summary report prints: how many bins fell in the bucket, how many loci
// and tags they covered, and how many were obligate includes/excludes.
type BinStat struct {
	Count        int
	TagsRequired int
	Loci         int
	Width        int64
	Spacing      float64
	TotalTags    int
	Others       int
	Includes     int
	Excludes     int
}

// Update folds one bin's statistics into s.
func (s *BinStat) Update(required, tags, others int, width int64, spacing float64, include bool, excludes int) {
	s.Count++
	s.TagsRequired += required
	s.Loci += tags + others
	s.Width += width
	s.Spacing += spacing
	s.TotalTags += tags
	s.Others += others
	if include {
		s.Includes++
	}
	s.Excludes += excludes
}

// Add returns the element-wise sum of s and other.
func (s BinStat) Add(other BinStat) BinStat {
	return BinStat{
		Count:        s.Count + other.Count,
		TagsRequired: s.TagsRequired + other.TagsRequired,
		Loci:         s.Loci + other.Loci,
		Width:        s.Width + other.Width,
		Spacing:      s.Spacing + other.Spacing,
		TotalTags:    s.TotalTags + other.TotalTags,
		Others:       s.Others + other.Others,
		Includes:     s.Includes + other.Includes,
		Excludes:     s.Excludes + other.Excludes,
	}
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(n) / float64(total)
}

// histoMax bounds the bin-size histogram: bins of size 1..histoMax-1 get
// their own bucket, and anything histoMax or larger is folded into the
// final bucket.
const histoMax = 10

func histoBucket(binLen, maxCovered int) int {
	if maxCovered == 1 {
		return 0
	}
	if binLen > histoMax {
		return histoMax
	}
	return binLen
}
