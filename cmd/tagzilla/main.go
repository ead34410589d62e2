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

/*
tagzilla partitions a set of genetic markers into bins of mutually high
linkage disequilibrium and selects a minimal tag-SNP set per bin.
*/

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
)

// stringList accumulates repeated occurrences of a flag, e.g.
// -designscores a.txt -designscores b.txt:0.5.
type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ",") }
func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

var (
	format    = flag.String("format", "hapmap", "Input genotype format: 'hapmap' or 'matrix'")
	outPrefix = flag.String("out", "tagzilla", "Output path prefix; writes prefix.loci, prefix.pairs, prefix.bininfo")

	minRSquared = flag.Float64("r", 0.8, "Minimum r-squared for two loci to be considered in LD")
	minDPrime   = flag.Float64("d", 0, "Minimum |D-prime| for two loci to be considered in LD")
	maxDistance = flag.Int64("maxdist", 200000, "Maximum genomic distance (bp) between loci scanned for LD")

	minMAF        = flag.Float64("maf", 0, "Minimum minor allele frequency a locus must have to be retained")
	maxMAF        = flag.Float64("maxmaf", 0, "Maximum minor allele frequency a locus may have to be retained; 0 = unbounded")
	minCompletion = flag.Float64("completion", 0, "Minimum genotype completion fraction a locus must have to be retained")
	minHWP        = flag.Float64("hwp", 0, "Minimum Hardy-Weinberg proportions p-value a locus must have to be retained; 0 = filter disabled")
	rangeSpec     = flag.String("range", "", "Restrict loci to the genomic range \"start:end\" (either bound may be empty)")

	subsetPath         = flag.String("subset", "", "Path to a file of locus names to which the run is restricted")
	includeTypedPath   = flag.String("includetyped", "", "Path to a file of locus names that are obligate, already-typed tags")
	includeUntypedPath = flag.String("includeuntyped", "", "Path to a file of locus names that are obligate, not-yet-typed tags")
	excludePath        = flag.String("exclude", "", "Path to a file of locus names excluded from consideration as tags")
	nonfoundersPath    = flag.String("nonfounders", "", "Path to a file of sample names (HapMap column headers) excluded from MAF/LD estimation")
	limit              = flag.Int("limit", 0, "Stop after reading this many loci; 0 = unbounded")

	lociPerTag    = flag.Float64("lociPerTag", 0, "tags_required policy: roughly one tag per this many bin members; 0 = exactly one tag per bin")
	logLociPerTag = flag.Float64("logLociPerTag", 0, "tags_required policy: tags grow logarithmically (this value is the log base) with bin size; 0 = disabled")
	targetBins    = flag.Int("targetbins", 0, "Cap on the number of bins given a non-residual disposition; 0 = unbounded")
	targetLoci    = flag.Int("targetloci", 0, "Cap on the number of loci given a non-residual disposition; 0 = unbounded")

	designScores         stringList
	illuminaDesignScores stringList
	tagCriteria          stringList

	saveLDPairs = flag.String("saveldpairs", "", "Path to cache the scanned LD pairs to (zstd recordio); speeds up a repeat run over the same genotypes")
	loadLDPairs = flag.String("loadldpairs", "", "Path to load previously cached LD pairs from, skipping the LD scan entirely")

	multiMethod = flag.String("multimethod", "", "Multi-population composition method: 'merge2', 'merge3', 'minld', or 'global'; unset means single-population")
	populations stringList
)

func init() {
	flag.Var(&designScores, "designscores", "Design-score file spec \"path[:threshold[:scale]]\"; repeatable")
	flag.Var(&illuminaDesignScores, "illuminadesignscores", "Illumina design-score CSV spec \"path[:threshold[:scale]]\"; repeatable")
	flag.Var(&tagCriteria, "tagcriterion", "Tag-ranking criterion \"method[:weight]\" (maxsnp, avgsnp, maxtag, avgtag); repeatable")
	flag.Var(&populations, "population", "Multi-population input spec \"name=path[:r[:d]]\"; repeatable, required when -multimethod is set")
}

func tagzillaUsage() {
	fmt.Printf("Usage: %s [OPTIONS] genotype-file [genotype-file ...]\n", os.Args[0])
	fmt.Printf("Other options:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = tagzillaUsage
	flag.Parse()
	shutdown := grail.Init()
	defer shutdown()

	paths := flag.Args()
	if len(paths) == 0 && *multiMethod == "" && len(populations) == 0 {
		log.Fatalf("missing positional argument(s): a genotype file is required (or -population in multi-population mode); please check flag syntax")
	}

	ctx := vcontext.Background()
	opts := &Opts{
		Format:               *format,
		OutPrefix:            *outPrefix,
		MinRSquared:          *minRSquared,
		MinDPrime:            *minDPrime,
		MaxDistance:          *maxDistance,
		MinMAF:               *minMAF,
		MaxMAF:               *maxMAF,
		MinCompletion:        *minCompletion,
		MinHWP:               *minHWP,
		Range:                *rangeSpec,
		SubsetPath:           *subsetPath,
		IncludeTypedPath:     *includeTypedPath,
		IncludeUntypedPath:   *includeUntypedPath,
		ExcludePath:          *excludePath,
		NonfoundersPath:      *nonfoundersPath,
		Limit:                *limit,
		LociPerTag:           *lociPerTag,
		LogLociPerTag:        *logLociPerTag,
		TargetBins:           *targetBins,
		TargetLoci:           *targetLoci,
		DesignScores:         append([]string(nil), designScores...),
		IlluminaDesignScores: append([]string(nil), illuminaDesignScores...),
		TagCriteria:          append([]string(nil), tagCriteria...),
		SaveLDPairs:          *saveLDPairs,
		LoadLDPairs:          *loadLDPairs,
		MultiMethod:          *multiMethod,
		Populations:          append([]string(nil), populations...),
	}

	if err := Run(ctx, paths, opts); err != nil {
		log.Panicf("%v", err)
	}
	log.Debug.Printf("exiting")
}
