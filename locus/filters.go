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

import (
	"github.com/grailbio/tagzilla/tzerr"
)

// Range is a half-open genomic interval [Start, End) that FilterByRange
// keeps loci within. An End of 0 with a non-zero Start is treated as
// unbounded, mirroring a one-sided "start:" range specification.
type Range struct {
	Start, End int64
}

// Contains reports whether location falls within r.
func (r Range) Contains(location int64) bool {
	if location < r.Start {
		return false
	}
	if r.End != 0 && location >= r.End {
		return false
	}
	return true
}

// ParseRange parses a "start:end" or "start:" or ":end" genomic range
// specification. Either bound may be empty to mean unbounded on that side.
func ParseRange(start, end int64, haveStart, haveEnd bool) (Range, error) {
	if haveStart && haveEnd && end < start {
		return Range{}, tzerr.E(tzerr.RangeSyntax, "locus.ParseRange", nil)
	}
	r := Range{}
	if haveStart {
		r.Start = start
	}
	if haveEnd {
		r.End = end
	}
	return r, nil
}

// FilterByMAF keeps loci whose MAF is >= min and, when max > 0, <= max.
func FilterByMAF(loci []*Locus, min, max float64) []*Locus {
	out := loci[:0:0]
	for _, l := range loci {
		if l.MAF < min {
			continue
		}
		if max > 0 && l.MAF > max {
			continue
		}
		out = append(out, l)
	}
	return out
}

// FilterByCompletion keeps loci whose fraction of called genotypes is >=
// minCompletion.
func FilterByCompletion(loci []*Locus, minCompletion float64) []*Locus {
	out := loci[:0:0]
	for _, l := range loci {
		called, total := Completion(l.Genos)
		if total == 0 {
			continue
		}
		if float64(called)/float64(total) < minCompletion {
			continue
		}
		out = append(out, l)
	}
	return out
}

// FilterByRange keeps loci whose location falls within r.
func FilterByRange(loci []*Locus, r Range) []*Locus {
	out := loci[:0:0]
	for _, l := range loci {
		if r.Contains(l.Location) {
			out = append(out, l)
		}
	}
	return out
}

// FilterByHWP keeps loci whose Hardy-Weinberg proportions p-value is >=
// minPvalue. A minPvalue <= 0 disables the filter.
func FilterByHWP(loci []*Locus, minPvalue float64) []*Locus {
	if minPvalue <= 0 {
		return loci
	}
	out := loci[:0:0]
	for _, l := range loci {
		if HWPBiallelic(l.Genos) >= minPvalue {
			out = append(out, l)
		}
	}
	return out
}

// FilterByInclusion keeps only loci named in subset. A nil or empty subset
// disables the filter and returns loci unchanged.
func FilterByInclusion(loci []*Locus, subset map[string]bool) []*Locus {
	if len(subset) == 0 {
		return loci
	}
	out := loci[:0:0]
	for _, l := range loci {
		if subset[l.Name] {
			out = append(out, l)
		}
	}
	return out
}

// FilterByExclusion drops loci named in excluded.
func FilterByExclusion(loci []*Locus, excluded map[string]bool) []*Locus {
	if len(excluded) == 0 {
		return loci
	}
	out := loci[:0:0]
	for _, l := range loci {
		if !excluded[l.Name] {
			out = append(out, l)
		}
	}
	return out
}
