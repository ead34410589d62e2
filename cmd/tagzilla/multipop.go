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
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/grailbio/base/log"

	"github.com/grailbio/tagzilla/binning"
	"github.com/grailbio/tagzilla/ldpair"
	"github.com/grailbio/tagzilla/locus"
	"github.com/grailbio/tagzilla/multipop"
	"github.com/grailbio/tagzilla/tzerr"
	"github.com/grailbio/tagzilla/tzio"
)

// populationSpec is one "-population name=path[:r[:d]]" argument.
type populationSpec struct {
	Name string
	Path string
	Th   ldpair.Thresholds
}

// parsePopulationSpecs parses opts.Populations, defaulting a population's
// own r-squared/D-prime thresholds to opts' global ones when not given
// explicitly as "name=path:r:d".
func parsePopulationSpecs(opts *Opts) ([]populationSpec, error) {
	if len(opts.Populations) == 0 {
		return nil, tzerr.E(tzerr.IncompatibleConfig, "main.parsePopulationSpecs",
			fmt.Errorf("multi-population mode requires at least one -population spec"))
	}
	specs := make([]populationSpec, 0, len(opts.Populations))
	for _, raw := range opts.Populations {
		nameAndRest := strings.SplitN(raw, "=", 2)
		if len(nameAndRest) != 2 {
			return nil, tzerr.E(tzerr.Format, "main.parsePopulationSpecs",
				fmt.Errorf("population spec %q is not \"name=path\"", raw))
		}
		parts := strings.Split(nameAndRest[1], ":")
		spec := populationSpec{
			Name: nameAndRest[0],
			Path: parts[0],
			Th:   ldpair.Thresholds{MaxDistance: opts.MaxDistance, MinRSquared: opts.MinRSquared, MinDPrime: opts.MinDPrime},
		}
		if len(parts) > 1 {
			v, err := strconv.ParseFloat(parts[1], 64)
			if err != nil {
				return nil, tzerr.E(tzerr.Format, "main.parsePopulationSpecs", err)
			}
			spec.Th.MinRSquared = v
		}
		if len(parts) > 2 {
			v, err := strconv.ParseFloat(parts[2], 64)
			if err != nil {
				return nil, tzerr.E(tzerr.Format, "main.parsePopulationSpecs", err)
			}
			spec.Th.MinDPrime = v
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// loadPopulation loads and filters one population's loci. deferQuality
// skips the MAF/completion/HWP quality filters, leaving only the
// subset/range selection filters applied: merge3 uses this so those
// quality filters run once, after merging, against the pooled cohort
// instead of against each population individually (spec.md §4.6).
func loadPopulation(ctx context.Context, spec populationSpec, opts *Opts, subset map[string]bool, deferQuality bool) ([]*locus.Locus, error) {
	loci, err := loadLoci(ctx, spec.Path, opts)
	if err != nil {
		return nil, err
	}
	if loci, err = applySelectionFilters(loci, opts, subset); err != nil {
		return nil, err
	}
	if !deferQuality {
		if loci, err = applyQualityFilters(loci, opts); err != nil {
			return nil, err
		}
	}
	locus.Sort(loci)
	return loci, nil
}

// runMultiPopulation dispatches to the composing (merge2/merge3/minld) or
// joint (global) multi-population strategy named by opts.MultiMethod.
func runMultiPopulation(ctx context.Context, opts *Opts) error {
	method, err := parseMultiMethod(opts.MultiMethod)
	if err != nil {
		return err
	}
	specs, err := parsePopulationSpecs(opts)
	if err != nil {
		return err
	}

	var subset map[string]bool
	if opts.SubsetPath != "" {
		if subset, err = loadNameSet(ctx, opts.SubsetPath); err != nil {
			return err
		}
	}

	deferQuality := method == multipop.Merge3

	populations := make([][]*locus.Locus, len(specs))
	for i, spec := range specs {
		if populations[i], err = loadPopulation(ctx, spec, opts, subset, deferQuality); err != nil {
			return err
		}
	}

	if method.Joint() {
		return runGlobalPopulations(ctx, specs, populations, opts)
	}
	return runComposedPopulations(ctx, method, specs, populations, opts)
}

// runComposedPopulations handles merge2, merge3, and minld: reduce to a
// single pooled/jointly-scanned locus set via multipop.Compose, then run
// the ordinary single-population binning pipeline over it, reporting
// under the population label "ALL".
func runComposedPopulations(ctx context.Context, method multipop.Method, specs []populationSpec, populations [][]*locus.Locus, opts *Opts) (err error) {
	perPop := make([]ldpair.Thresholds, len(specs))
	for i, s := range specs {
		perPop[i] = s.Th
	}

	var merged []*locus.Locus
	var pairs []ldpair.Pair
	if method == multipop.Merge3 {
		// merge3 defers MAF/completion/HWP filtering to the merged cohort
		// (spec.md §4.6): loadPopulation already skipped it per-population,
		// so apply it here, before the pooled LD scan, rather than going
		// through Compose's merge-then-scan in one step.
		merged = multipop.MergeLoci(populations)
		if merged, err = applyQualityFilters(merged, opts); err != nil {
			return err
		}
		locus.Sort(merged)
		pairs = ldpair.Scan(merged, ldpair.Thresholds{
			MaxDistance: opts.MaxDistance,
			MinRSquared: perPop[0].MinRSquared,
			MinDPrime:   perPop[0].MinDPrime,
		})
	} else {
		if merged, pairs, err = multipop.Compose(method, populations, opts.MaxDistance, perPop); err != nil {
			return err
		}
	}
	log.Debug.Printf("tagzilla: %s composed %d loci, %d pairs across %d populations", method, len(merged), len(pairs), len(populations))

	lociMap, locations, mafs := indexLoci(merged)

	includes, err := buildIncludes(ctx, opts)
	if err != nil {
		return err
	}
	var exclude map[string]bool
	if opts.ExcludePath != "" {
		if exclude, err = loadNameSet(ctx, opts.ExcludePath); err != nil {
			return err
		}
	} else {
		exclude = map[string]bool{}
	}

	designScores, err := buildDesignScores(ctx, opts)
	if err != nil {
		return err
	}

	binsets, table := binning.BuildBinsets(lociMap, pairs, includes, exclude, designScores)
	binner := binning.NewBinner(binsets, table, lociMap, includes, buildTagsRequired(opts), opts.TargetBins, opts.TargetLoci)

	selector, err := buildTagSelector(designScores, opts.TagCriteria)
	if err != nil {
		return err
	}

	out, err := openReportSinks(ctx, opts.OutPrefix)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()

	digest := &tzio.RunDigest{}
	for _, l := range merged {
		digest.AddLocus(l.Name, l.Location, l.MAF)
	}

	for {
		bin, ok := binner.Next()
		if !ok {
			break
		}
		if err = reportBin(out, bin, selector, exclude, locations, mafs, "ALL", digest); err != nil {
			return err
		}
	}
	if err = out.binInfo.WriteSummary(out.binInfoFile.Writer(ctx), "ALL"); err != nil {
		return err
	}
	log.Debug.Printf("tagzilla: run digest %s", digest.Sum())
	return nil
}

// runGlobalPopulations handles the global method: candidate bins stay
// separate per population, but selection runs jointly via a
// multipop.MultiBinner. Every population gets its own report sink
// (opts.OutPrefix + "." + population name).
func runGlobalPopulations(ctx context.Context, specs []populationSpec, populations [][]*locus.Locus, opts *Opts) (err error) {
	includes, err := buildIncludes(ctx, opts)
	if err != nil {
		return err
	}
	var exclude map[string]bool
	if opts.ExcludePath != "" {
		if exclude, err = loadNameSet(ctx, opts.ExcludePath); err != nil {
			return err
		}
	} else {
		exclude = map[string]bool{}
	}
	designScores, err := buildDesignScores(ctx, opts)
	if err != nil {
		return err
	}
	selector, err := buildTagSelector(designScores, opts.TagCriteria)
	if err != nil {
		return err
	}

	pops := make([]multipop.Population, len(specs))
	lociMaps := make([]map[string]*locus.Locus, len(specs))
	locationsPerPop := make([]map[string]int64, len(specs))
	mafsPerPop := make([]map[string]float64, len(specs))
	sinks := make([]*reportSinks, len(specs))

	defer func() {
		for _, s := range sinks {
			if s == nil {
				continue
			}
			if cerr := s.Close(); err == nil {
				err = cerr
			}
		}
	}()

	for i, spec := range specs {
		loci := populations[i]
		lociMap, locations, mafs := indexLoci(loci)
		lociMaps[i], locationsPerPop[i], mafsPerPop[i] = lociMap, locations, mafs

		pairs := ldpair.Scan(loci, spec.Th)
		binsets, table := binning.BuildBinsets(lociMap, pairs, includes, exclude, designScores)
		pops[i] = multipop.Population{
			Binsets:  binsets,
			Table:    table,
			Includes: includes,
			MAFOf:    func(name string) float64 { return lociMap[name].MAF },
		}

		sinks[i], err = openReportSinks(ctx, opts.OutPrefix+"."+spec.Name)
		if err != nil {
			return err
		}
	}

	binner := multipop.NewMultiBinner(pops, buildTagsRequired(opts), opts.TargetBins, opts.TargetLoci)

	digest := &tzio.RunDigest{}
	for i, loci := range populations {
		_ = i
		for _, l := range loci {
			digest.AddLocus(l.Name, l.Location, l.MAF)
		}
	}

	for {
		joint, ok := binner.Next()
		if !ok {
			break
		}
		for i, bin := range joint.PerPop {
			if bin == nil {
				continue
			}
			bin.BinNum = joint.BinNum
			if err = reportBin(sinks[i], bin, selector, exclude, locationsPerPop[i], mafsPerPop[i], specs[i].Name, digest); err != nil {
				return err
			}
		}
	}

	for i, spec := range specs {
		if err = sinks[i].binInfo.WriteSummary(sinks[i].binInfoFile.Writer(ctx), spec.Name); err != nil {
			return err
		}
	}
	log.Debug.Printf("tagzilla: run digest %s", digest.Sum())
	return nil
}
