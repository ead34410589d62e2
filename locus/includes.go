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

// Includes holds the two disjoint obligate-tag sets a run may specify.
// Typed obligates are already genotyped and may coexist with each other in
// a bin; untyped obligates must each form their own bin. The constructor
// enforces disjointness by removing any name present in both from Typed.
type Includes struct {
	Typed   map[string]bool
	Untyped map[string]bool
}

// NewIncludes builds an Includes, subtracting untyped from typed so the two
// sets are disjoint.
func NewIncludes(typed, untyped map[string]bool) *Includes {
	t := make(map[string]bool, len(typed))
	for name := range typed {
		if !untyped[name] {
			t[name] = true
		}
	}
	u := make(map[string]bool, len(untyped))
	for name := range untyped {
		u[name] = true
	}
	return &Includes{Typed: t, Untyped: u}
}

// Contains reports whether name is either a typed or untyped obligate.
func (in *Includes) Contains(name string) bool {
	return in.Typed[name] || in.Untyped[name]
}

// Len returns the total number of obligate tags.
func (in *Includes) Len() int {
	return len(in.Typed) + len(in.Untyped)
}
