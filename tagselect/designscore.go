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

// Package tagselect ranks and recommends tags within an already-formed
// bin: design scores (e.g. assay manufacturability) and tag-information
// criteria (how much of the bin's LD a candidate tag alone would
// capture) combine into a per-locus weight that reorders a bin's tag
// list and picks the recommended subset.
package tagselect

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// ScoreEntry is one (locus name, design score) observation read from a
// design-score file.
type ScoreEntry struct {
	Name  string
	Score float64
}

var designScoreFields = regexp.MustCompile(`\s+`)

// ReadDesignScores parses the plain-text "lname score ..." design-score
// format (whitespace-separated, any trailing fields ignored): one locus
// per line, skipping lines whose second field isn't a valid float.
func ReadDesignScores(r io.Reader) ([]ScoreEntry, error) {
	var entries []ScoreEntry
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := designScoreFields.Split(line, -1)
		if len(fields) < 2 {
			continue
		}
		score, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			continue
		}
		entries = append(entries, ScoreEntry{Name: fields[0], Score: score})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// ReadIlluminaDesignScores parses an Illumina design-score CSV: a header
// row naming a "SNP_Score" column, then one locus per row in its first
// field, skipping rows whose score column isn't a valid float.
func ReadIlluminaDesignScores(r io.Reader) ([]ScoreEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, err
	}
	scoreIndex := -1
	for i, h := range header {
		if strings.TrimSpace(h) == "SNP_Score" {
			scoreIndex = i
			break
		}
	}
	if scoreIndex < 0 {
		return nil, fmt.Errorf("tagselect: no SNP_Score column in Illumina design-score header")
	}

	var entries []ScoreEntry
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) <= scoreIndex {
			continue
		}
		score, err := strconv.ParseFloat(record[scoreIndex], 64)
		if err != nil {
			continue
		}
		entries = append(entries, ScoreEntry{Name: record[0], Score: score})
	}
	return entries, nil
}

// ParseDesignScoreSpec parses one "--designscores" argument of the form
// "file[:threshold[:scale]]" into its path, threshold (default 0), and
// scale (default 1).
func ParseDesignScoreSpec(spec string) (path string, threshold, scale float64) {
	parts := strings.Split(spec, ":")
	path = parts[0]
	threshold = 0.0
	scale = 1.0
	if len(parts) > 1 {
		if v, err := strconv.ParseFloat(parts[1], 64); err == nil {
			threshold = v
		}
	}
	if len(parts) > 2 {
		if v, err := strconv.ParseFloat(parts[2], 64); err == nil {
			scale = v
		}
	}
	return path, threshold, scale
}

// DesignScoreFile is one --designscores argument: a set of per-locus
// scores plus the threshold below which a score is zeroed out and the
// multiplicative scale applied to surviving scores, mirroring the
// "file:threshold:scale" argument syntax.
type DesignScoreFile struct {
	Scores    []ScoreEntry
	Threshold float64
	Scale     float64
}

// CombineDesignScores aggregates multiple design-score files into one
// per-locus score, multiplying across files so a locus must clear every
// file's threshold to retain a nonzero aggregate score. A locus named in
// no file has no entry in the result (distinct from an explicit zero
// score), matching the original's dict-based accumulation.
func CombineDesignScores(files []DesignScoreFile) map[string]float64 {
	agg := map[string]float64{}
	for _, f := range files {
		for _, e := range f.Scores {
			score := e.Score
			if score < f.Threshold {
				score = 0
			}
			prior, ok := agg[e.Name]
			if !ok {
				prior = 1.0
			}
			agg[e.Name] = prior * score * f.Scale
		}
	}
	return agg
}
