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
	"strings"
	"testing"
)

func TestReadMatrixParsesLociAndGenotypes(t *testing.T) {
	in := "rs1 1000 AG AA GG\n" +
		"rs2 2000 -- AA AG\n"
	loci, err := ReadMatrix(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(loci) != 2 {
		t.Fatalf("got %d loci, want 2", len(loci))
	}
	if loci[0].Name != "rs1" || loci[0].Location != 1000 {
		t.Errorf("got %+v", loci[0])
	}
	if len(loci[0].Genos) != 3 {
		t.Fatalf("got %d genotypes, want 3", len(loci[0].Genos))
	}
	if !loci[1].Genos[0].IsMissing() {
		t.Errorf("expected rs2's first sample (--) to be missing, got %+v", loci[1].Genos[0])
	}
}

func TestReadMatrixAcceptsCommaDelimiters(t *testing.T) {
	in := "rs1,1000,AG,AA,GG\n"
	loci, err := ReadMatrix(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(loci) != 1 || len(loci[0].Genos) != 3 {
		t.Fatalf("got %+v", loci)
	}
}

func TestReadMatrixSkipsShortLines(t *testing.T) {
	in := "rs1 1000\nrs2 2000 AG AA\n"
	loci, err := ReadMatrix(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(loci) != 1 {
		t.Fatalf("got %d loci, want 1 (rs1's row has no genotype columns)", len(loci))
	}
}

func TestReadMatrixSkipsCommentsAndBlankLines(t *testing.T) {
	in := "# comment\n\nrs1 1000 AG AA\n"
	loci, err := ReadMatrix(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(loci) != 1 {
		t.Fatalf("got %d loci, want 1", len(loci))
	}
}
