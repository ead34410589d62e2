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

	"github.com/grailbio/tagzilla/ldpair"
	"github.com/grailbio/tagzilla/locus"
	"github.com/grailbio/tagzilla/tzio"
)

// loadOrScanPairs returns the LD pairs for loci, either by replaying
// opts.LoadLDPairs (skipping the LD scan entirely) or by running
// ldpair.Scan and, if opts.SaveLDPairs is set, caching the result for a
// later run over the same genotypes.
func loadOrScanPairs(ctx context.Context, loci []*locus.Locus, th ldpair.Thresholds, opts *Opts) ([]ldpair.Pair, error) {
	if opts.LoadLDPairs != "" {
		return readCachedPairs(ctx, opts.LoadLDPairs)
	}

	pairs := ldpair.Scan(loci, th)
	log.Debug.Printf("tagzilla: LD scan found %d pairs over %d loci", len(pairs), len(loci))

	if opts.SaveLDPairs != "" {
		if err := writeCachedPairs(ctx, opts.SaveLDPairs, pairs, th.MaxDistance); err != nil {
			return nil, err
		}
	}
	return pairs, nil
}

func writeCachedPairs(ctx context.Context, path string, pairs []ldpair.Pair, maxDistance int64) (err error) {
	f, err := file.Create(ctx, path)
	if err != nil {
		return err
	}
	defer file.CloseAndReport(ctx, f, &err)

	cw := tzio.NewCacheWriter(f.Writer(ctx), maxDistance)
	for _, p := range pairs {
		cw.Append(p)
	}
	return cw.Finish()
}

func readCachedPairs(ctx context.Context, path string) (pairs []ldpair.Pair, err error) {
	f, err := file.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer file.CloseAndReport(ctx, f, &err)

	cr := tzio.NewCacheReader(f.Reader(ctx))
	for cr.Scan() {
		pairs = append(pairs, cr.Pair())
	}
	if err := cr.Err(); err != nil {
		return nil, err
	}
	return pairs, nil
}
