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
	"strconv"

	"github.com/grailbio/tagzilla/binning"
)

// LocusWriter emits the per-locus report row: LNAME LOCATION POPULATION
// MAF BINNUM DISPOSITION, one row per tag or other member of a bin.
type LocusWriter interface {
	WriteBin(bin *binning.BinResult, locations map[string]int64, mafs map[string]float64, exclude, recommended map[string]bool, qualifier, population string) error
	Close() error
}

// PairWriter emits the per-pair report row: BIN LNAME1 LNAME2 POPULATION
// RSQUARED DPRIME DISPOSITION, one row per LD pair (including a tag's
// self-pair) retained in a bin.
type PairWriter interface {
	WriteBin(bin *binning.BinResult, recommended map[string]bool, qualifier, population string) error
	Close() error
}

// NullLocusWriter discards every bin, for runs that requested no locus
// report.
type NullLocusWriter struct{}

func (NullLocusWriter) WriteBin(*binning.BinResult, map[string]int64, map[string]float64, map[string]bool, map[string]bool, string, string) error {
	return nil
}
func (NullLocusWriter) Close() error { return nil }

// NullPairWriter discards every bin, for runs that requested no pair
// report.
type NullPairWriter struct{}

func (NullPairWriter) WriteBin(*binning.BinResult, map[string]bool, string, string) error { return nil }
func (NullPairWriter) Close() error                                                       { return nil }

// tsvSink is the subset of *tsv.Writer the report writers below use,
// letting tests substitute a recording fake without pulling in the real
// tsv package. Genomic locations and bin numbers are written through
// WriteString (via strconv) rather than a fixed-width integer method,
// since tsv.Writer's integer helpers are sized for counts, not the
// genome-length coordinates this report carries.
type tsvSink interface {
	WriteString(string)
	EndLine() error
	Flush() error
}

// locusWriter writes the tab-separated locus report via a tsvSink (in
// production, a *tsv.Writer over a file.File opened by the caller).
type locusWriter struct {
	w    tsvSink
	close func() error
}

// NewLocusWriter wraps sink as a LocusWriter, writing the header row
// immediately. close is invoked by Close after the final Flush (e.g. to
// close the underlying file.File).
func NewLocusWriter(sink tsvSink, close func() error) (LocusWriter, error) {
	sink.WriteString("LNAME\tLOCATION\tPOPULATION\tMAF\tBINNUM\tDISPOSITION")
	if err := sink.EndLine(); err != nil {
		return nil, err
	}
	return &locusWriter{w: sink, close: close}, nil
}

func (lw *locusWriter) WriteBin(
	bin *binning.BinResult,
	locations map[string]int64,
	mafs map[string]float64,
	exclude, recommended map[string]bool,
	qualifier, population string,
) error {
	names := make([]string, 0, bin.Len())
	names = append(names, bin.Tags...)
	names = append(names, bin.Others...)

	for _, name := range names {
		disposition := LocusDisposition(name, bin, exclude, recommended, qualifier)
		lw.w.WriteString(name)
		lw.w.WriteString(strconv.FormatInt(locations[name], 10))
		lw.w.WriteString(population)
		lw.w.WriteString(FormatFloat(mafs[name]))
		lw.w.WriteString(strconv.Itoa(bin.BinNum))
		lw.w.WriteString(disposition)
		if err := lw.w.EndLine(); err != nil {
			return err
		}
	}
	return nil
}

func (lw *locusWriter) Close() error {
	if err := lw.w.Flush(); err != nil {
		return err
	}
	if lw.close != nil {
		return lw.close()
	}
	return nil
}

type pairWriter struct {
	w     tsvSink
	close func() error
}

// NewPairWriter wraps sink as a PairWriter, writing the header row
// immediately.
func NewPairWriter(sink tsvSink, close func() error) (PairWriter, error) {
	sink.WriteString("BIN\tLNAME1\tLNAME2\tPOPULATION\tRSQUARED\tDPRIME\tDISPOSITION")
	if err := sink.EndLine(); err != nil {
		return nil, err
	}
	return &pairWriter{w: sink, close: close}, nil
}

func (pw *pairWriter) WriteBin(bin *binning.BinResult, recommended map[string]bool, qualifier, population string) error {
	for _, rec := range bin.LD {
		disposition := PairDisposition(rec.Locus1, rec.Locus2, bin, recommended, qualifier)
		pw.w.WriteString(pw.binLabel(bin))
		pw.w.WriteString(rec.Locus1)
		pw.w.WriteString(rec.Locus2)
		pw.w.WriteString(population)
		pw.w.WriteString(FormatFloat(rec.RSquared))
		pw.w.WriteString(FormatFloat(rec.DPrime))
		pw.w.WriteString(disposition)
		if err := pw.w.EndLine(); err != nil {
			return err
		}
	}
	return nil
}

func (pw *pairWriter) binLabel(bin *binning.BinResult) string {
	return strconv.Itoa(bin.BinNum)
}

func (pw *pairWriter) Close() error {
	if err := pw.w.Flush(); err != nil {
		return err
	}
	if pw.close != nil {
		return pw.close()
	}
	return nil
}
