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
	"fmt"
	"io"

	"github.com/dgryski/go-farm"
	"github.com/grailbio/base/recordio"
	"github.com/grailbio/base/recordio/recordiozstd"

	"github.com/grailbio/tagzilla/ldpair"
)

func init() {
	recordiozstd.Init()
}

// cacheKeyHeader names the recordio header holding the MaxDistance the
// pairs in this cache file were scanned with. CacheReader does not check
// it.
const cacheKeyHeader = "tagzilla.maxdistance"

// CacheWriter appends pairwise LD records to a recordio file, one record
// per ldpair.Pair, so a subsequent run over the same loci can skip
// re-scanning genotypes for pairs it has already computed.
type CacheWriter struct {
	rio recordio.Writer
}

// NewCacheWriter wraps out (already positioned at the start of the file)
// as a CacheWriter. maxDistance is recorded in the file header;
// NewCacheReader does not validate it.
func NewCacheWriter(out io.Writer, maxDistance int64) *CacheWriter {
	rio := recordio.NewWriter(out, recordio.WriterOpts{
		Marshal:      marshalPair,
		Transformers: []string{recordiozstd.Name},
	})
	rio.AddHeader(cacheKeyHeader, maxDistance)
	rio.AddHeader(recordio.KeyTrailer, true)
	return &CacheWriter{rio: rio}
}

// Append writes one pair's LD to the cache.
func (cw *CacheWriter) Append(pair ldpair.Pair) {
	cw.rio.Append(&pair)
}

// Finish flushes and closes out the recordio trailer.
func (cw *CacheWriter) Finish() error {
	return cw.rio.Finish()
}

// CacheReader scans a recordio file written by CacheWriter.
type CacheReader struct {
	scanner recordio.Scanner
}

// NewCacheReader wraps in as a CacheReader.
func NewCacheReader(in io.ReadSeeker) *CacheReader {
	scanner := recordio.NewScanner(in, recordio.ScannerOpts{Unmarshal: unmarshalPair})
	return &CacheReader{scanner: scanner}
}

// Scan advances to the next cached pair. It returns false at EOF or on
// error; call Err to distinguish the two.
func (cr *CacheReader) Scan() bool { return cr.scanner.Scan() }

// Pair returns the pair Scan most recently advanced to.
func (cr *CacheReader) Pair() ldpair.Pair { return *cr.scanner.Get().(*ldpair.Pair) }

// Err reports any error encountered during Scan.
func (cr *CacheReader) Err() error { return cr.scanner.Err() }

// pairKey hashes an unordered locus-name pair the same way
// binning.LDTable buckets its entries, so a cache and an in-memory table
// built from the same pairs agree on identity.
func pairKey(name1, name2 string) uint64 {
	a, b := name1, name2
	if a > b {
		a, b = b, a
	}
	h := farm.Hash64([]byte(a))
	return farm.Hash64WithSeed([]byte(b), h)
}

func marshalPair(scratch []byte, v interface{}) ([]byte, error) {
	p := v.(*ldpair.Pair)
	key := pairKey(p.Locus1, p.Locus2)

	buf := scratch[:0]
	buf = appendString(buf, p.Locus1)
	buf = appendString(buf, p.Locus2)
	var f [16]byte
	binary.LittleEndian.PutUint64(f[0:8], uint64(int64(p.RSquared*1e9)))
	binary.LittleEndian.PutUint64(f[8:16], uint64(int64(p.DPrime*1e9)))
	buf = append(buf, f[:]...)
	var k [8]byte
	binary.LittleEndian.PutUint64(k[:], key)
	buf = append(buf, k[:]...)
	return buf, nil
}

func unmarshalPair(in []byte) (interface{}, error) {
	name1, rest, err := readString(in)
	if err != nil {
		return nil, err
	}
	name2, rest, err := readString(rest)
	if err != nil {
		return nil, err
	}
	if len(rest) < 24 {
		return nil, fmt.Errorf("tzio: truncated cache record")
	}
	rsquared := float64(int64(binary.LittleEndian.Uint64(rest[0:8]))) / 1e9
	dprime := float64(int64(binary.LittleEndian.Uint64(rest[8:16]))) / 1e9
	wantKey := binary.LittleEndian.Uint64(rest[16:24])
	if gotKey := pairKey(name1, name2); gotKey != wantKey {
		return nil, fmt.Errorf("tzio: cache record checksum mismatch for %s/%s", name1, name2)
	}
	return &ldpair.Pair{Locus1: name1, Locus2: name2, RSquared: rsquared, DPrime: dprime}, nil
}

func appendString(buf []byte, s string) []byte {
	var n [4]byte
	binary.LittleEndian.PutUint32(n[:], uint32(len(s)))
	buf = append(buf, n[:]...)
	buf = append(buf, s...)
	return buf
}

func readString(in []byte) (string, []byte, error) {
	if len(in) < 4 {
		return "", nil, fmt.Errorf("tzio: truncated cache record length")
	}
	n := int(binary.LittleEndian.Uint32(in[:4]))
	in = in[4:]
	if len(in) < n {
		return "", nil, fmt.Errorf("tzio: truncated cache record string")
	}
	return string(in[:n]), in[n:], nil
}
