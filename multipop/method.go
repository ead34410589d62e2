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

// Package multipop composes per-population locus streams into a single
// binning run. Four composition strategies are supported: merge2 and
// merge3 pool genotypes across populations and run a single-population LD
// scan over the pooled samples; minld runs an independent LD scan per
// population and keeps only pairs that clear the thresholds of every
// population in which both loci are genotyped and polymorphic; global binning keeps each population's candidate bins separate
// and selects across all of them jointly, by total coverage summed over
// populations.
package multipop

import "fmt"

// Method names one of the four multi-population composition strategies.
type Method string

const (
	Merge2 Method = "merge2"
	Merge3 Method = "merge3"
	MinLD  Method = "minld"
	Global Method = "global"
)

// ParseMethod validates a --multimethod argument, returning an error
// naming the unsupported value otherwise.
func ParseMethod(s string) (Method, error) {
	switch m := Method(s); m {
	case Merge2, Merge3, MinLD, Global:
		return m, nil
	default:
		return "", fmt.Errorf("multipop: unsupported multipopulation method %q", s)
	}
}

// Joint reports whether a method keeps each population's bins separate
// through binning (Global) rather than reducing to a single pooled or
// joint-scanned locus set beforehand (Merge2, Merge3, MinLD).
func (m Method) Joint() bool { return m == Global }
