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

import (
	"github.com/grailbio/tagzilla/binning"
)

// TagDisposition classifies one of bin's tags for reporting: how
// obligatory the bin was, whether this tag is the obligate locus itself
// or merely shares its bin, and whether it is among the bin's
// recommended tags.
func TagDisposition(name string, bin *binning.BinResult, recommended map[string]bool) string {
	var disposition string
	switch {
	case bin.Disposition == binning.IncludeUntyped:
		switch {
		case name == bin.Include:
			disposition = "untyped-tag"
		case bin.IncludeTyped[name]:
			disposition = "redundant-tag"
		default:
			disposition = "alternate-tag"
		}
	case bin.Disposition == binning.IncludeTyped:
		switch {
		case name == bin.Include:
			disposition = "typed-tag"
		case bin.IncludeTyped[name]:
			disposition = "redundant-tag"
		default:
			disposition = "alternate-tag"
		}
	case bin.Disposition == binning.Exclude:
		disposition = "excluded-tag"
	case len(bin.Tags) > 1:
		disposition = "candidate-tag"
	case bin.Len() > 1:
		disposition = "necessary-tag"
	case bin.MaxCovered > 1:
		disposition = "lonely-tag"
	default:
		disposition = "singleton-tag"
	}

	if recommended[name] {
		disposition += ",recommended"
	}
	return disposition
}

// LocusDisposition classifies any member of bin (tag or not) for the
// locus report: a tag gets TagDisposition, an excluded non-tag is
// "exclude" (unless the whole bin is itself an obligate-exclude bin, in
// which case every member already reads as a tag disposition), and
// everything else is "other". qualifier, if non-empty, is appended after
// a comma (e.g. "residual", "untyped_bin", "excluded").
func LocusDisposition(name string, bin *binning.BinResult, exclude map[string]bool, recommended map[string]bool, qualifier string) string {
	var disposition string
	switch {
	case containsName(bin.Tags, name):
		disposition = TagDisposition(name, bin, recommended)
	case exclude[name] && bin.Disposition != binning.Exclude:
		disposition = "exclude"
	default:
		disposition = "other"
	}
	if qualifier != "" {
		disposition += "," + qualifier
	}
	return disposition
}

// PairDisposition classifies one LD pair for the pair report: a self-pair
// (a tag's diagonal entry) reads as that tag's TagDisposition; any other
// pair reads as "{tag|other}-{tag|other}" according to whether each
// locus is one of the bin's tags.
func PairDisposition(name1, name2 string, bin *binning.BinResult, recommended map[string]bool, qualifier string) string {
	var disposition string
	if name1 == name2 {
		disposition = TagDisposition(name1, bin, recommended)
	} else {
		label := func(name string) string {
			if containsName(bin.Tags, name) {
				return "tag"
			}
			return "other"
		}
		disposition = label(name1) + "-" + label(name2)
	}
	if qualifier != "" {
		disposition += "," + qualifier
	}
	return disposition
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
