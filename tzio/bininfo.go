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

package tzio

import (
	"fmt"
	"io"
	"sort"

	"github.com/grailbio/tagzilla/binning"
)

// BinInfoWriter both emits a human-readable block for every bin (when
// backed by a real writer) and accumulates the BinStat histograms that
// WriteSummary later reports, broken down by population and disposition.
type BinInfoWriter interface {
	WriteBin(bin *binning.BinResult, locations map[string]int64, recommended map[string]bool, exclude map[string]bool, population string) error
	WriteSummary(out io.Writer, population string) error
	// MultiPopSummary reports, across populations, how many tags bins of
	// each disposition required, and each disposition's share of the total.
	MultiPopSummary(out io.Writer, tagsByDisposition map[string]int) error
}

// NullBinInfo discards per-bin text but, unlike the real implementation,
// also skips the histogram accounting entirely: use it only when neither
// the per-bin report nor the summary will ever be requested.
type NullBinInfo struct{}

func (NullBinInfo) WriteBin(*binning.BinResult, map[string]int64, map[string]bool, map[string]bool, string) error {
	return nil
}
func (NullBinInfo) WriteSummary(io.Writer, string) error       { return nil }
func (NullBinInfo) MultiPopSummary(io.Writer, map[string]int) error { return nil }

type binInfoWriter struct {
	out   io.Writer // nil suppresses the per-bin text block, but stats still accumulate
	stats map[string]map[binning.Disposition][]BinStat
}

// NewBinInfoWriter returns a BinInfoWriter. If out is nil, per-bin detail
// blocks are suppressed but bin statistics still accumulate for
// WriteSummary.
func NewBinInfoWriter(out io.Writer) BinInfoWriter {
	return &binInfoWriter{out: out, stats: map[string]map[binning.Disposition][]BinStat{}}
}

func (w *binInfoWriter) WriteBin(bin *binning.BinResult, locations map[string]int64, recommended map[string]bool, exclude map[string]bool, population string) error {
	names := make([]string, 0, bin.Len())
	names = append(names, bin.Tags...)
	names = append(names, bin.Others...)

	locs := make([]int64, 0, len(names))
	for _, name := range names {
		locs = append(locs, locations[name])
	}
	sort.Slice(locs, func(i, j int) bool { return locs[i] < locs[j] })

	var width int64
	var aspacing float64
	spacing := make([]int64, 0)
	if len(locs) > 0 {
		width = locs[len(locs)-1] - locs[0]
	}
	for i := 0; i+1 < len(locs); i++ {
		spacing = append(spacing, locs[i+1]-locs[i])
	}
	if len(spacing) > 1 {
		var sum int64
		for _, s := range spacing {
			sum += s
		}
		aspacing = float64(sum) / float64(len(spacing))
	}

	excluded := 0
	for _, name := range names {
		if exclude[name] {
			excluded++
		}
	}

	popStats := w.stats[population]
	if popStats == nil {
		popStats = map[binning.Disposition][]BinStat{}
		w.stats[population] = popStats
	}
	hist := popStats[bin.Disposition]
	if hist == nil {
		hist = make([]BinStat, histoMax+1)
		popStats[bin.Disposition] = hist
	}
	bucket := histoBucket(bin.Len(), bin.MaxCovered)
	hist[bucket].Update(bin.TagsRequired, len(bin.Tags), len(bin.Others), width, aspacing, bin.Include != "", excluded)

	if w.out == nil {
		return nil
	}

	label := population
	if label == "" {
		label = "user specified"
	}
	amaf := bin.AverageMAF * 100

	fmt.Fprintf(w.out, "Bin %-4d population: %s, sites: %d, tags %d, other %d, tags required %d, width %d, avg. MAF %.1f%%\n",
		bin.BinNum, label, bin.Len(), len(bin.Tags), len(bin.Others), bin.TagsRequired, width, amaf)
	if len(locs) > 0 {
		fmt.Fprintf(w.out, "Bin %-4d Location: min %d, median %d, average %d, max %d\n",
			bin.BinNum, locs[0], medianInt64(locs), averageInt64(locs), locs[len(locs)-1])
	}
	if len(spacing) > 1 {
		sorted := append([]int64(nil), spacing...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
		fmt.Fprintf(w.out, "Bin %-4d Spacing: min %d, median %d, average %d, max %d\n",
			bin.BinNum, sorted[0], medianInt64(sorted), averageInt64(sorted), sorted[len(sorted)-1])
	}

	tags := append([]string(nil), bin.Tags...)
	sort.Strings(tags)
	fmt.Fprintf(w.out, "Bin %-4d TagSnps: %s\n", bin.BinNum, joinSpace(tags))

	var recTags []string
	for _, t := range bin.Tags {
		if recommended[t] {
			recTags = append(recTags, t)
		}
	}
	if len(recTags) > 0 {
		fmt.Fprintf(w.out, "Bin %-4d RecommendedTags: %s\n", bin.BinNum, joinSpace(recTags))
	}

	others := append([]string(nil), bin.Others...)
	sort.Strings(others)
	fmt.Fprintf(w.out, "Bin %-4d other_snps: %s\n", bin.BinNum, joinSpace(others))

	if bin.Include != "" {
		if bin.Disposition == binning.IncludeUntyped {
			fmt.Fprintf(w.out, "Bin %-4d Obligate_tag: %s, untyped\n", bin.BinNum, bin.Include)
		} else {
			fmt.Fprintf(w.out, "Bin %-4d Obligate_tag: %s, typed\n", bin.BinNum, bin.Include)
		}
	}

	var excls []string
	for _, name := range names {
		if exclude[name] {
			excls = append(excls, name)
		}
	}
	if len(excls) > 0 {
		sort.Strings(excls)
		fmt.Fprintf(w.out, "Bin %-4d Excluded_as_tags: %s\n", bin.BinNum, joinSpace(excls))
	}

	fmt.Fprintf(w.out, "Bin %-4d Bin_disposition: %s\n", bin.BinNum, dispositionLabel(bin.Disposition))
	fmt.Fprintf(w.out, "Bin %-4d Loci_covered: %d\n\n", bin.BinNum, bin.MaxCovered)
	return nil
}

func (w *binInfoWriter) WriteSummary(out io.Writer, population string) error {
	stats := w.stats[population]
	totals := map[string]BinStat{}
	for d, hist := range stats {
		label := dispositionLabel(d)
		var sum BinStat
		for _, s := range hist {
			sum = sum.Add(s)
		}
		totals[label] = sum
		if err := w.writeSummaryStats(out, hist, label, population); err != nil {
			return err
		}
	}

	if population == "" {
		fmt.Fprintf(out, "\nBin statistics by disposition:\n")
	} else {
		fmt.Fprintf(out, "\nBin statistics by disposition for population %s:\n", population)
	}
	fmt.Fprintf(out, "                      tags                                total   non-     avg    avg\n")
	fmt.Fprintf(out, " disposition          req.   bins     %%    loci      %%    tags    tags    tags  width\n")
	fmt.Fprintf(out, " -------------------- ------ ------ ------ ------- ------ ------- ------- ---- ------\n")

	var totalBins, totalLoci int
	var tTotal BinStat
	for _, label := range dispositionLabels {
		s := totals[label]
		totalBins += s.Count
		totalLoci += s.Loci
		tTotal = tTotal.Add(s)
	}
	for _, label := range dispositionLabels {
		writeSummaryLine(out, fmt.Sprintf("%-20s", label), totals[label], totalBins, totalLoci)
	}
	writeSummaryLine(out, "              Total ", tTotal, totalBins, totalLoci)
	fmt.Fprintln(out)
	return nil
}

func (w *binInfoWriter) writeSummaryStats(out io.Writer, hist []BinStat, disposition, population string) error {
	if population == "" {
		fmt.Fprintf(out, "\nBin statistics by bin size for %s:\n\n", disposition)
	} else {
		fmt.Fprintf(out, "\nBin statistics by bin size for %s in population %s:\n\n", disposition, population)
	}
	fmt.Fprintf(out, " bin   tags                                total   non-     avg    avg\n")
	fmt.Fprintf(out, " size  req.   bins     %%    loci      %%    tags    tags    tags  width\n")
	fmt.Fprintf(out, " ----- ------ ------ ------ ------- ------ ------- ------- ---- ------\n")

	var totalBins, totalLoci int
	hmin, hmax := -1, -1
	for i, s := range hist {
		if s.Count == 0 {
			continue
		}
		totalBins += s.Count
		totalLoci += s.Loci
		if hmin == -1 {
			hmin = i
		}
		hmax = i
	}
	if hmin == -1 {
		fmt.Fprintln(out)
		return nil
	}

	var sum BinStat
	for i := hmin; i <= hmax; i++ {
		var label string
		switch {
		case i == 0:
			label = "singl"
		case i == histoMax:
			label = fmt.Sprintf(">%2d  ", i-1)
		default:
			label = fmt.Sprintf("%3d  ", i)
		}
		writeSummaryLine(out, label, hist[i], totalBins, totalLoci)
		sum = sum.Add(hist[i])
	}
	writeSummaryLine(out, "Total", sum, totalBins, totalLoci)
	fmt.Fprintln(out)
	return nil
}

func (w *binInfoWriter) MultiPopSummary(out io.Writer, tagsByDisposition map[string]int) error {
	n := 0
	for _, m := range tagsByDisposition {
		n += m
	}
	fmt.Fprintf(out, "\nTags required by disposition for all population:\n")
	fmt.Fprintf(out, "                      tags         \n")
	fmt.Fprintf(out, " disposition          req.     %%   \n")
	fmt.Fprintf(out, " -------------------- ------ ------\n")
	for _, label := range dispositionLabels {
		m := tagsByDisposition[label]
		fmt.Fprintf(out, " %-20s %6d %6.2f\n", label, m, percent(m, n))
	}
	fmt.Fprintf(out, "              Total   %6d %6.2f\n\n", n, percent(n, n))
	return nil
}

func writeSummaryLine(out io.Writer, label string, s BinStat, totalBins, totalLoci int) {
	var t, width float64
	if s.Count > 0 {
		t = float64(s.TotalTags) / float64(s.Count)
		width = float64(s.Width) / float64(s.Count)
	}
	fmt.Fprintf(out, " %s %6d %6d %6.2f %7d %6.2f %7d %7d %4.1f %6d\n",
		label, s.TagsRequired, s.Count, percent(s.Count, totalBins),
		s.Loci, percent(s.Loci, totalLoci), s.TotalTags, s.Others, t, int64(width))
}

func joinSpace(names []string) string {
	out := ""
	for i, n := range names {
		if i > 0 {
			out += " "
		}
		out += n
	}
	return out
}

func medianInt64(sorted []int64) int64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func averageInt64(vals []int64) int64 {
	var sum int64
	for _, v := range vals {
		sum += v
	}
	return sum / int64(len(vals))
}
