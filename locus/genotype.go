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

package locus

// Allele is a single allele symbol at a biallelic marker. The zero value
// represents a missing call, mirroring the original format's ' ' sentinel.
type Allele byte

// Missing is the distinguished "no call" allele.
const Missing Allele = 0

// Genotype is an unordered pair of alleles observed in one diploid sample
// at one locus. A hemizygous call (one missing allele, as on a male X
// chromosome) is represented with one Missing and one called allele; a
// fully uncalled genotype has both alleles Missing.
type Genotype struct {
	A, B Allele
}

// Canonical returns g with its two alleles ordered so that Missing sorts
// first, matching the original's min(g)+max(g) convention where ' ' < any
// letter.
func (g Genotype) Canonical() Genotype {
	if g.A > g.B {
		g.A, g.B = g.B, g.A
	}
	return g
}

// IsMissing reports whether neither allele was called.
func (g Genotype) IsMissing() bool {
	return g.A == Missing && g.B == Missing
}

// IsHeterozygous reports whether the two called alleles differ. A
// hemizygous genotype (one Missing allele) is not heterozygous.
func (g Genotype) IsHeterozygous() bool {
	return g.A != Missing && g.B != Missing && g.A != g.B
}

// ParseGenotype builds a Genotype from a two-byte code, treating a byte
// equal to missing (the caller's placeholder, e.g. ' ' or 'N') as
// Missing. Callers that already hold Allele values should
// construct Genotype{A,B} directly.
func ParseGenotype(a, b byte, missing byte) Genotype {
	g := Genotype{}
	if a != missing {
		g.A = Allele(a)
	}
	if b != missing {
		g.B = Allele(b)
	}
	return g.Canonical()
}
