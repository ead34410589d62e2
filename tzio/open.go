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
	"context"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/tsv"
)

// OpenLocusWriter creates path (any scheme file.Create supports: local
// path, s3://, etc.) and returns a LocusWriter backed by a tsv.Writer over
// it. Close closes the underlying file.
func OpenLocusWriter(ctx context.Context, path string) (LocusWriter, error) {
	f, err := file.Create(ctx, path)
	if err != nil {
		return nil, err
	}
	w := tsv.NewWriter(f.Writer(ctx))
	return NewLocusWriter(w, func() error {
		var closeErr error
		file.CloseAndReport(ctx, f, &closeErr)
		return closeErr
	})
}

// OpenPairWriter is OpenLocusWriter's counterpart for the pair report.
func OpenPairWriter(ctx context.Context, path string) (PairWriter, error) {
	f, err := file.Create(ctx, path)
	if err != nil {
		return nil, err
	}
	w := tsv.NewWriter(f.Writer(ctx))
	return NewPairWriter(w, func() error {
		var closeErr error
		file.CloseAndReport(ctx, f, &closeErr)
		return closeErr
	})
}
