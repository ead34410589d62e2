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

// Package tzerr defines TagZilla's error taxonomy: the small set of error
// kinds a run can fail with, each carrying the operation that raised it and
// the underlying cause.
package tzerr

import "fmt"

// Kind classifies an Error for callers that want to react differently to
// different failure modes (e.g. skip a malformed locus but abort on an
// incompatible multipopulation configuration).
type Kind int

const (
	// Format marks an unrecognized input header or malformed record.
	Format Kind = iota
	// Biallelic marks a locus with more than two non-missing alleles.
	Biallelic
	// RangeSyntax marks an invalid genomic range specification.
	RangeSyntax
	// IncompatibleConfig marks a configuration that cannot be satisfied,
	// e.g. the global multipopulation method with FESTA/LD-only inputs.
	IncompatibleConfig
	// NumericFailure marks an LD computation that produced an invalid
	// r-squared or D-prime; the offending pair is dropped, not fatal.
	NumericFailure
	// IOConflict marks two output sinks directed at the same stream.
	IOConflict
)

func (k Kind) String() string {
	switch k {
	case Format:
		return "format error"
	case Biallelic:
		return "biallelic constraint"
	case RangeSyntax:
		return "invalid range syntax"
	case IncompatibleConfig:
		return "incompatible configuration"
	case NumericFailure:
		return "numeric failure"
	case IOConflict:
		return "output conflict"
	default:
		return "error"
	}
}

// Error is the concrete error type raised by every TagZilla package. Op
// names the operation that failed (e.g. "locus.New", "multipop.Compose")
// and Err, when non-nil, is the underlying cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// E constructs an *Error. err may be nil when the kind itself is the whole
// story (e.g. IncompatibleConfig).
func E(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Is reports whether err is a *Error of the given kind, unwrapping as
// needed.
func Is(err error, kind Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind == kind
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
