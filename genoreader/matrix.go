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

package genoreader

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/grailbio/base/log"

	"github.com/grailbio/tagzilla/locus"
)

var matrixFields = regexp.MustCompile(`[\t ,]+`)

// ReadMatrix parses the plain whitespace (or comma) delimited genotype
// matrix format: one row per locus, "name location geno1 geno2 ...",
// where each genotype token is a two-character biallelic code ('-' or
// 'N' marking a missing allele). It is a simplification of the
// original's Linkage/raw loaders sufficient to drive tests and small
// ad-hoc inputs, not those formats' full pedigree/marker-map syntax.
func ReadMatrix(r io.Reader) ([]*locus.Locus, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var loci []*locus.Locus
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := matrixFields.Split(line, -1)
		if len(fields) < 3 {
			log.Error.Printf("genoreader: skipping line %d: expected at least 3 fields, got %d", lineNum, len(fields))
			continue
		}
		loc, err := parseMatrixRow(fields)
		if err != nil {
			log.Error.Printf("genoreader: skipping line %d: %v", lineNum, err)
			continue
		}
		loci = append(loci, loc)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return loci, nil
}

func parseMatrixRow(fields []string) (*locus.Locus, error) {
	name := fields[0]
	location, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid location for locus %q: %w", name, err)
	}

	genos := make([]locus.Genotype, 0, len(fields)-2)
	for _, code := range fields[2:] {
		genos = append(genos, matrixGenotype(code))
	}
	return locus.New(name, location, genos)
}

// matrixGenotype decodes a two-character genotype token, treating both
// '-' and 'N' as the missing-allele marker.
func matrixGenotype(code string) locus.Genotype {
	norm := strings.Map(func(r rune) rune {
		if r == '-' || r == 'N' {
			return ' '
		}
		return r
	}, code)
	var a, b byte = ' ', ' '
	if len(norm) > 0 {
		a = norm[0]
	}
	if len(norm) > 1 {
		b = norm[1]
	}
	return locus.ParseGenotype(a, b, ' ')
}
