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

// Package tzio holds the run's ambient text-output stack: compact float
// formatting, the tag/locus/pair disposition taxonomy, the tab-separated
// report writers, and a recordio-backed LD cache.
package tzio

import (
	"strconv"
	"strings"
)

// FormatFloat renders x rounded to three decimal digits, with trailing
// zeros (and a bare trailing decimal point) stripped, but the leading
// digit always kept: 0.8 not 0.800, 0 for exactly zero.
func FormatFloat(x float64) string {
	s := strconv.FormatFloat(x, 'f', 3, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimRight(s, ".")
	}
	if s == "" || s == "-" {
		return "0"
	}
	return s
}
