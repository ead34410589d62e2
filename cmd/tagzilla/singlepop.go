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

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"

	"github.com/grailbio/tagzilla/binning"
	"github.com/grailbio/tagzilla/ldpair"
	"github.com/grailbio/tagzilla/locus"
	"github.com/grailbio/tagzilla/tagselect"
	"github.com/grailbio/tagzilla/tzio"
)

// runSinglePopulation runs the ordinary (non-multi-population) analysis
// over one genotype file: filter, scan LD, bin, select tags, report.
func runSinglePopulation(ctx context.Context, path string, opts *Opts) (err error) {
	loci, err := loadLoci(ctx, path, opts)
	if err != nil {
		return err
	}

	var subset map[string]bool
	if opts.SubsetPath != "" {
		if subset, err = loadNameSet(ctx, opts.SubsetPath); err != nil {
			return err
		}
		warnUnknownNames(subset, loci, "-subset")
	}
	if loci, err = applyFilters(loci, opts, subset); err != nil {
		return err
	}
	locus.Sort(loci)
	log.Debug.Printf("tagzilla: %d loci retained after filtering", len(loci))

	lociMap, locations, mafs := indexLoci(loci)

	includes, err := buildIncludes(ctx, opts)
	if err != nil {
		return err
	}
	warnUnknownNames(includes.Typed, loci, "-includetyped")
	warnUnknownNames(includes.Untyped, loci, "-includeuntyped")
	var exclude map[string]bool
	if opts.ExcludePath != "" {
		if exclude, err = loadNameSet(ctx, opts.ExcludePath); err != nil {
			return err
		}
		warnUnknownNames(exclude, loci, "-exclude")
	} else {
		exclude = map[string]bool{}
	}

	designScores, err := buildDesignScores(ctx, opts)
	if err != nil {
		return err
	}

	pairs, err := loadOrScanPairs(ctx, loci, ldpair.Thresholds{
		MaxDistance: opts.MaxDistance,
		MinRSquared: opts.MinRSquared,
		MinDPrime:   opts.MinDPrime,
	}, opts)
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
	for _, l := range loci {
		digest.AddLocus(l.Name, l.Location, l.MAF)
	}

	for {
		bin, ok := binner.Next()
		if !ok {
			break
		}
		if err = reportBin(out, bin, selector, exclude, locations, mafs, "", digest); err != nil {
			return err
		}
	}

	if err = out.binInfo.WriteSummary(out.binInfoFile.Writer(ctx), ""); err != nil {
		return err
	}
	log.Debug.Printf("tagzilla: run digest %s", digest.Sum())
	return nil
}

// indexLoci builds the three lookup maps the binning/reporting stages
// need from a locus slice.
func indexLoci(loci []*locus.Locus) (byName map[string]*locus.Locus, locations map[string]int64, mafs map[string]float64) {
	byName = make(map[string]*locus.Locus, len(loci))
	locations = make(map[string]int64, len(loci))
	mafs = make(map[string]float64, len(loci))
	for _, l := range loci {
		byName[l.Name] = l
		locations[l.Name] = l.Location
		mafs[l.Name] = l.MAF
	}
	return byName, locations, mafs
}

// qualifierFor names the disposition-table suffix §6 appends to every
// member of a bin carrying one of these special dispositions.
func qualifierFor(d binning.Disposition) string {
	switch d {
	case binning.Residual:
		return "residual"
	case binning.IncludeUntyped:
		return "untyped_bin"
	case binning.IncludeTyped:
		return "typed_bin"
	case binning.Exclude:
		return "excluded"
	default:
		return ""
	}
}

// reportSinks bundles the three report writers a run emits to, plus the
// still-open bininfo file handle (needed again at the end, to write the
// summary table after the per-bin stream).
type reportSinks struct {
	ctx         context.Context
	locus       tzio.LocusWriter
	pair        tzio.PairWriter
	binInfo     tzio.BinInfoWriter
	binInfoFile file.File
}

func openReportSinks(ctx context.Context, prefix string) (*reportSinks, error) {
	locusWriter, err := tzio.OpenLocusWriter(ctx, prefix+".loci")
	if err != nil {
		return nil, err
	}
	pairWriter, err := tzio.OpenPairWriter(ctx, prefix+".pairs")
	if err != nil {
		locusWriter.Close() // nolint: errcheck
		return nil, err
	}
	binInfoFile, err := file.Create(ctx, prefix+".bininfo")
	if err != nil {
		locusWriter.Close() // nolint: errcheck
		pairWriter.Close()  // nolint: errcheck
		return nil, err
	}
	return &reportSinks{
		ctx:         ctx,
		locus:       locusWriter,
		pair:        pairWriter,
		binInfo:     tzio.NewBinInfoWriter(binInfoFile.Writer(ctx)),
		binInfoFile: binInfoFile,
	}, nil
}

func (s *reportSinks) Close() error {
	var first error
	if err := s.locus.Close(); err != nil && first == nil {
		first = err
	}
	if err := s.pair.Close(); err != nil && first == nil {
		first = err
	}
	var closeErr error
	file.CloseAndReport(s.ctx, s.binInfoFile, &closeErr)
	if closeErr != nil && first == nil {
		first = closeErr
	}
	return first
}

// reportBin runs bin through the tag selector (if configured) and writes
// it to every sink in out, folding it into digest.
func reportBin(out *reportSinks, bin *binning.BinResult, selector *tagselect.TagSelector, exclude map[string]bool, locations map[string]int64, mafs map[string]float64, population string, digest *tzio.RunDigest) error {
	recommended := map[string]bool{}
	if selection, ok := selector.SelectTags(bin); ok {
		bin.Tags = selection.Tags
		for _, name := range selection.Recommended {
			recommended[name] = true
		}
	}
	qualifier := qualifierFor(bin.Disposition)

	if err := out.locus.WriteBin(bin, locations, mafs, exclude, recommended, qualifier, population); err != nil {
		return err
	}
	if err := out.pair.WriteBin(bin, recommended, qualifier, population); err != nil {
		return err
	}
	if err := out.binInfo.WriteBin(bin, locations, recommended, exclude, population); err != nil {
		return err
	}
	digest.AddBin(bin.BinNum, bin.Reference, bin.Tags, int(bin.Disposition))
	return nil
}
