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
	"encoding/binary"
	"encoding/hex"
	"sort"

	"github.com/minio/highwayhash"
)

var digestSeed = [highwayhash.Size]uint8{}

// RunDigest is a stable fingerprint over the loci a binning run consumed
// and the bins it emitted: two runs over the same genotype data and
// options hash identically, so a pipeline can detect when a re-run
// produced different results without diffing every report line.
type RunDigest struct {
	buf []byte
}

// AddLocus folds one input locus (name, location, minor allele frequency
// scaled to parts-per-billion) into the digest. Call it for every locus
// considered by the run. Loci and bins are hashed in the order they are
// added, so the same inputs added in a different order give a different
// digest.
func (d *RunDigest) AddLocus(name string, location int64, maf float64) {
	d.buf = appendString(d.buf, "L")
	d.buf = appendString(d.buf, name)
	var b [16]byte
	binary.LittleEndian.PutUint64(b[0:8], uint64(location))
	binary.LittleEndian.PutUint64(b[8:16], uint64(int64(maf*1e9)))
	d.buf = append(d.buf, b[:]...)
}

// AddBin folds one emitted bin (its reference locus, tags, and
// disposition) into the digest.
func (d *RunDigest) AddBin(binNum int, reference string, tags []string, disposition int) {
	sorted := append([]string(nil), tags...)
	sort.Strings(sorted)

	d.buf = appendString(d.buf, "B")
	var n [8]byte
	binary.LittleEndian.PutUint32(n[0:4], uint32(binNum))
	binary.LittleEndian.PutUint32(n[4:8], uint32(disposition))
	d.buf = append(d.buf, n[:]...)
	d.buf = appendString(d.buf, reference)
	for _, tag := range sorted {
		d.buf = appendString(d.buf, tag)
	}
}

// Sum returns the hex-encoded HighwayHash digest of everything added so
// far.
func (d *RunDigest) Sum() string {
	sum := highwayhash.Sum(d.buf, digestSeed[:])
	return hex.EncodeToString(sum[:])
}
