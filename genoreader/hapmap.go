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

// Package genoreader loads locus.Locus streams from the two small input
// shapes cmd/tagzilla and its tests need: a HapMap-subset text format and
// a plain whitespace genotype matrix. It is deliberately not a general
// multi-format genotype loader — see spec.md's Non-goals.
package genoreader

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/grailbio/base/log"

	"github.com/grailbio/tagzilla/locus"
)

// hapmapHeaders are the two historical HapMap header lines this reader
// recognizes, matched by prefix since later columns (genome_build vs.
// assembly#) vary by release.
var hapmapHeaders = []string{
	"rs# SNPalleles chrom pos strand genome_build center protLSID assayLSID panelLSID QC_code",
	"rs# alleles chrom pos strand assembly# center protLSID assayLSID panelLSID QCcode",
}

// sampleColumn is the first column index holding a sample's genotype in a
// HapMap file; columns before it are marker metadata.
const sampleColumn = 11

// ReadHapMap parses a HapMap-formatted genotype file from r. nonfounders,
// if non-nil, names sample columns (by header name) to exclude from MAF
// estimation and LD scanning — e.g. children in a trio, whose genotypes
// are not independent observations.
//
// A data row with a non-numeric location or too few columns for the
// header's samples is skipped with a log warning, matching the original loader's tolerance
// for a handful of malformed rows in an otherwise good file.
func ReadHapMap(r io.Reader, nonfounders map[string]bool) ([]*locus.Locus, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var header string
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") {
			continue
		}
		header = line
		break
	}
	if header == "" {
		return nil, fmt.Errorf("genoreader: empty HapMap input")
	}
	if !hasHapMapHeader(header) {
		return nil, fmt.Errorf("genoreader: input does not look like a HapMap file (unrecognized header)")
	}
	columns := strings.Split(strings.TrimRight(header, "\r\n"), " ")

	var sampleIdx []int
	for i := sampleColumn; i < len(columns); i++ {
		if nonfounders != nil && nonfounders[columns[i]] {
			continue
		}
		sampleIdx = append(sampleIdx, i)
	}

	var loci []*locus.Locus
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		fields := strings.Split(line, " ")
		loc, err := parseHapMapRow(fields, sampleIdx)
		if err != nil {
			log.Error.Printf("genoreader: skipping invalid HapMap row: %v", err)
			continue
		}
		loci = append(loci, loc)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return loci, nil
}

func hasHapMapHeader(header string) bool {
	for _, h := range hapmapHeaders {
		if strings.HasPrefix(header, h) {
			return true
		}
	}
	return false
}

func parseHapMapRow(fields []string, sampleIdx []int) (*locus.Locus, error) {
	if len(fields) <= sampleColumn {
		return nil, fmt.Errorf("too few columns (%d)", len(fields))
	}
	name := fields[0]
	location, err := strconv.ParseInt(fields[3], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid location for locus %q: %w", name, err)
	}

	genos := make([]locus.Genotype, 0, len(sampleIdx))
	for _, i := range sampleIdx {
		if i >= len(fields) {
			return nil, fmt.Errorf("too few columns (%d) for locus %q", len(fields), name)
		}
		genos = append(genos, hapMapGenotype(fields[i]))
	}
	return locus.New(name, location, genos)
}

// hapMapGenotype decodes a two-letter HapMap genotype code ("AA", "AG",
// "NN" for missing) into a Genotype, treating 'N' as the missing allele.
func hapMapGenotype(code string) locus.Genotype {
	code = strings.TrimSpace(code)
	var a, b byte = 'N', 'N'
	if len(code) > 0 {
		a = code[0]
	}
	if len(code) > 1 {
		b = code[1]
	}
	return locus.ParseGenotype(a, b, 'N')
}
