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
package main

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"

	"github.com/grailbio/tagzilla/binning"
	"github.com/grailbio/tagzilla/genoreader"
	"github.com/grailbio/tagzilla/locus"
	"github.com/grailbio/tagzilla/multipop"
	"github.com/grailbio/tagzilla/tagselect"
	"github.com/grailbio/tagzilla/tzerr"
	"github.com/grailbio/tagzilla/util"
)

// Opts is every tagzilla run option, parsed from flags in main and handed
// down to Run, mirroring cmd/bio-pileup's snp.Opts.
type Opts struct {
	Format    string
	OutPrefix string

	MinRSquared float64
	MinDPrime   float64
	MaxDistance int64

	MinMAF        float64
	MaxMAF        float64
	MinCompletion float64
	MinHWP        float64
	Range         string

	SubsetPath         string
	IncludeTypedPath   string
	IncludeUntypedPath string
	ExcludePath        string
	NonfoundersPath    string
	Limit              int

	LociPerTag    float64
	LogLociPerTag float64
	TargetBins    int
	TargetLoci    int

	DesignScores         []string
	IlluminaDesignScores []string
	TagCriteria          []string

	SaveLDPairs string
	LoadLDPairs string

	MultiMethod string
	Populations []string
}

// Run executes a tagzilla analysis and writes its reports to
// opts.OutPrefix. It dispatches to the multi-population path when
// opts.MultiMethod or opts.Populations is set, in which case paths is
// ignored and each population's file comes from opts.Populations;
// otherwise paths must name exactly one genotype file.
func Run(ctx context.Context, paths []string, opts *Opts) error {
	if opts.MultiMethod != "" || len(opts.Populations) > 0 {
		return runMultiPopulation(ctx, opts)
	}
	if len(paths) != 1 {
		return tzerr.E(tzerr.IncompatibleConfig, "main.Run",
			fmt.Errorf("single-population mode takes exactly one genotype file, got %d", len(paths)))
	}
	return runSinglePopulation(ctx, paths[0], opts)
}

// loadLoci reads path in opts.Format, honoring opts.NonfoundersPath and
// opts.Limit.
func loadLoci(ctx context.Context, path string, opts *Opts) ([]*locus.Locus, error) {
	f, err := file.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer f.Close(ctx) // nolint: errcheck

	var nonfounders map[string]bool
	if opts.NonfoundersPath != "" {
		nonfounders, err = loadNameSet(ctx, opts.NonfoundersPath)
		if err != nil {
			return nil, err
		}
	}

	var loci []*locus.Locus
	switch strings.ToLower(opts.Format) {
	case "hapmap":
		loci, err = genoreader.ReadHapMap(f.Reader(ctx), nonfounders)
	case "matrix":
		loci, err = genoreader.ReadMatrix(f.Reader(ctx))
	default:
		return nil, tzerr.E(tzerr.Format, "main.loadLoci", fmt.Errorf("unrecognized -format %q", opts.Format))
	}
	if err != nil {
		return nil, err
	}
	if opts.Limit > 0 && len(loci) > opts.Limit {
		loci = loci[:opts.Limit]
	}
	return loci, nil
}

// loadNameSet reads a newline-delimited file of locus (or sample) names
// into a set, ignoring blank lines and "#"-prefixed comments.
func loadNameSet(ctx context.Context, path string) (map[string]bool, error) {
	f, err := file.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer f.Close(ctx) // nolint: errcheck

	names := map[string]bool{}
	scanner := bufio.NewScanner(f.Reader(ctx))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names[line] = true
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return names, nil
}

// warnUnknownNames logs a "did you mean" suggestion for every name in
// names that does not match a loaded locus, so a typo in a -subset,
// -includetyped/-includeuntyped, or -exclude file doesn't silently drop
// every row.
func warnUnknownNames(names map[string]bool, loci []*locus.Locus, label string) {
	if len(names) == 0 {
		return
	}
	candidates := make([]string, len(loci))
	known := make(map[string]bool, len(loci))
	for i, l := range loci {
		candidates[i] = l.Name
		known[l.Name] = true
	}
	for name := range names {
		if known[name] {
			continue
		}
		if suggestion := util.SuggestName(name, candidates, 0.85); suggestion != "" {
			log.Printf("tagzilla: %s name %q not found among loci; did you mean %q?", label, name, suggestion)
		} else {
			log.Printf("tagzilla: %s name %q not found among loci", label, name)
		}
	}
}

// applyFilters runs the locus.Filter* pipeline (§4.10) ahead of LD-pair
// scanning, in the original's order: subset, exclusion is applied later
// by the bin builder itself (excluded loci still participate in LD
// scanning so their LD to retained loci is visible in the pair report).
func applyFilters(loci []*locus.Locus, opts *Opts, subset map[string]bool) ([]*locus.Locus, error) {
	loci, err := applySelectionFilters(loci, opts, subset)
	if err != nil {
		return nil, err
	}
	return applyQualityFilters(loci, opts)
}

// applySelectionFilters restricts loci to a requested subset and/or genomic
// range. These name which loci a run considers at all and don't depend on
// genotype counts, so merge2 and merge3 both apply them per-population
// before merging.
func applySelectionFilters(loci []*locus.Locus, opts *Opts, subset map[string]bool) ([]*locus.Locus, error) {
	if len(subset) > 0 {
		loci = locus.FilterByInclusion(loci, subset)
	}
	if opts.Range != "" {
		r, err := parseRangeSpec(opts.Range)
		if err != nil {
			return nil, err
		}
		loci = locus.FilterByRange(loci, r)
	}
	return loci, nil
}

// applyQualityFilters drops loci failing MAF, completion, or Hardy-Weinberg
// thresholds. These depend on how many samples genotyped a locus, so
// merge2 applies them per-population before merging while merge3 defers
// them to the merged cohort instead (spec.md §4.6).
func applyQualityFilters(loci []*locus.Locus, opts *Opts) ([]*locus.Locus, error) {
	if opts.MinMAF > 0 || opts.MaxMAF > 0 {
		loci = locus.FilterByMAF(loci, opts.MinMAF, opts.MaxMAF)
	}
	if opts.MinCompletion > 0 {
		loci = locus.FilterByCompletion(loci, opts.MinCompletion)
	}
	if opts.MinHWP > 0 {
		loci = locus.FilterByHWP(loci, opts.MinHWP)
	}
	return loci, nil
}

// parseRangeSpec parses a "start:end" genomic range specification, either
// bound optional.
func parseRangeSpec(spec string) (locus.Range, error) {
	parts := strings.SplitN(spec, ":", 2)
	var start, end int64
	haveStart, haveEnd := false, false
	if len(parts) > 0 && parts[0] != "" {
		v, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			return locus.Range{}, tzerr.E(tzerr.RangeSyntax, "main.parseRangeSpec", err)
		}
		start, haveStart = v, true
	}
	if len(parts) > 1 && parts[1] != "" {
		v, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return locus.Range{}, tzerr.E(tzerr.RangeSyntax, "main.parseRangeSpec", err)
		}
		end, haveEnd = v, true
	}
	return locus.ParseRange(start, end, haveStart, haveEnd)
}

// buildIncludes loads the obligate typed/untyped sets named by opts.
func buildIncludes(ctx context.Context, opts *Opts) (*locus.Includes, error) {
	var typed, untyped map[string]bool
	var err error
	if opts.IncludeTypedPath != "" {
		if typed, err = loadNameSet(ctx, opts.IncludeTypedPath); err != nil {
			return nil, err
		}
	}
	if opts.IncludeUntypedPath != "" {
		if untyped, err = loadNameSet(ctx, opts.IncludeUntypedPath); err != nil {
			return nil, err
		}
	}
	return locus.NewIncludes(typed, untyped), nil
}

// buildDesignScores loads every -designscores/-illuminadesignscores spec
// and combines them into a single per-locus score map (nil if none were
// given).
func buildDesignScores(ctx context.Context, opts *Opts) (map[string]float64, error) {
	if len(opts.DesignScores) == 0 && len(opts.IlluminaDesignScores) == 0 {
		return nil, nil
	}
	var files []tagselect.DesignScoreFile
	for _, spec := range opts.DesignScores {
		path, threshold, scale := tagselect.ParseDesignScoreSpec(spec)
		entries, err := readDesignScoreFile(ctx, path, false)
		if err != nil {
			return nil, err
		}
		files = append(files, tagselect.DesignScoreFile{Scores: entries, Threshold: threshold, Scale: scale})
	}
	for _, spec := range opts.IlluminaDesignScores {
		path, threshold, scale := tagselect.ParseDesignScoreSpec(spec)
		entries, err := readDesignScoreFile(ctx, path, true)
		if err != nil {
			return nil, err
		}
		files = append(files, tagselect.DesignScoreFile{Scores: entries, Threshold: threshold, Scale: scale})
	}
	return tagselect.CombineDesignScores(files), nil
}

func readDesignScoreFile(ctx context.Context, path string, illumina bool) ([]tagselect.ScoreEntry, error) {
	f, err := file.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer f.Close(ctx) // nolint: errcheck
	if illumina {
		return tagselect.ReadIlluminaDesignScores(f.Reader(ctx))
	}
	return tagselect.ReadDesignScores(f.Reader(ctx))
}

// buildTagsRequired builds the tags_required policy named by opts, or nil
// for the default (exactly one tag per bin).
func buildTagsRequired(opts *Opts) binning.TagsRequiredFunc {
	switch {
	case opts.LociPerTag > 0:
		return binning.LociPerTag(opts.LociPerTag)
	case opts.LogLociPerTag > 0:
		return binning.LogLociPerTag(opts.LogLociPerTag)
	default:
		return nil
	}
}

// buildTagSelector builds a tagselect.TagSelector from opts' design
// scores and tag criteria.
func buildTagSelector(scores map[string]float64, criteriaSpecs []string) (*tagselect.TagSelector, error) {
	criteria, err := tagselect.BuildTagCriteria(criteriaSpecs)
	if err != nil {
		return nil, err
	}
	return &tagselect.TagSelector{Scores: scores, Weights: criteria}, nil
}

// parseMultiMethod validates opts.MultiMethod.
func parseMultiMethod(s string) (multipop.Method, error) {
	if s == "" {
		return "", tzerr.E(tzerr.IncompatibleConfig, "main.parseMultiMethod",
			fmt.Errorf("multi-population mode requires -multimethod"))
	}
	m, err := multipop.ParseMethod(s)
	if err != nil {
		return "", tzerr.E(tzerr.IncompatibleConfig, "main.parseMultiMethod", err)
	}
	return m, nil
}
