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
	"strings"
	"testing"

	"github.com/grailbio/tagzilla/binning"
)

// recordingSink is a minimal tsvSink fake that records each row as a
// tab-joined string, mirroring how *tsv.Writer lays out a line.
type recordingSink struct {
	fields []string
	lines  []string
	closed bool
}

func (s *recordingSink) WriteString(v string) { s.fields = append(s.fields, v) }
func (s *recordingSink) EndLine() error {
	s.lines = append(s.lines, strings.Join(s.fields, "\t"))
	s.fields = nil
	return nil
}
func (s *recordingSink) Flush() error { return nil }

func testBin() *binning.BinResult {
	return &binning.BinResult{
		BinNum:       1,
		Reference:    "rs1",
		Disposition:  binning.Normal,
		Tags:         []string{"rs1"},
		Others:       []string{"rs2"},
		TagsRequired: 1,
		LD: []binning.LDRecord{
			{Locus1: "rs1", Locus2: "rs1", RSquared: 1, DPrime: 1},
			{Locus1: "rs1", Locus2: "rs2", RSquared: 0.85, DPrime: 1},
		},
	}
}

func TestLocusWriterEmitsHeaderAndRows(t *testing.T) {
	sink := &recordingSink{}
	lw, err := NewLocusWriter(sink, nil)
	if err != nil {
		t.Fatal(err)
	}
	bin := testBin()
	locations := map[string]int64{"rs1": 100, "rs2": 200}
	mafs := map[string]float64{"rs1": 0.3, "rs2": 0.1}
	if err := lw.WriteBin(bin, locations, mafs, map[string]bool{}, map[string]bool{"rs1": true}, "", "CEU"); err != nil {
		t.Fatal(err)
	}
	if err := lw.Close(); err != nil {
		t.Fatal(err)
	}
	if len(sink.lines) != 3 {
		t.Fatalf("got %d lines, want 3 (header + 2 rows): %v", len(sink.lines), sink.lines)
	}
	if sink.lines[0] != "LNAME\tLOCATION\tPOPULATION\tMAF\tBINNUM\tDISPOSITION" {
		t.Errorf("got header %q", sink.lines[0])
	}
	if !strings.HasPrefix(sink.lines[1], "rs1\t100\tCEU\t0.3\t1\t") {
		t.Errorf("got row %q", sink.lines[1])
	}
	if !strings.Contains(sink.lines[1], "recommended") {
		t.Errorf("expected rs1's row to carry the recommended qualifier: %q", sink.lines[1])
	}
}

func TestPairWriterEmitsSelfAndCrossPairs(t *testing.T) {
	sink := &recordingSink{}
	pw, err := NewPairWriter(sink, nil)
	if err != nil {
		t.Fatal(err)
	}
	bin := testBin()
	if err := pw.WriteBin(bin, map[string]bool{}, "", "CEU"); err != nil {
		t.Fatal(err)
	}
	if err := pw.Close(); err != nil {
		t.Fatal(err)
	}
	if len(sink.lines) != 3 {
		t.Fatalf("got %d lines, want 3 (header + 2 pairs): %v", len(sink.lines), sink.lines)
	}
	if !strings.Contains(sink.lines[1], "rs1\trs1") {
		t.Errorf("expected a self-pair row for rs1: %q", sink.lines[1])
	}
	if !strings.Contains(sink.lines[2], "rs1\trs2") {
		t.Errorf("expected a cross pair row for rs1/rs2: %q", sink.lines[2])
	}
}

func TestNullWritersDiscardEverything(t *testing.T) {
	var lw LocusWriter = NullLocusWriter{}
	var pw PairWriter = NullPairWriter{}
	if err := lw.WriteBin(testBin(), nil, nil, nil, nil, "", ""); err != nil {
		t.Fatal(err)
	}
	if err := pw.WriteBin(testBin(), nil, "", ""); err != nil {
		t.Fatal(err)
	}
	if err := lw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := pw.Close(); err != nil {
		t.Fatal(err)
	}
}
