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

package multipop

import (
	"github.com/biogo/store/llrb"

	"github.com/grailbio/tagzilla/binning"
)

// multiKey orders loci for the Global method's joint selection: ascending
// by (disposition, -pops, -totalSize, -totalMAF, name). pops and
// totalSize are doubled when any one population's bin for this locus has
// shrunk to a singleton, mirroring the original's bias toward finishing
// off loci that are down to their last population-local member before
// moving on to broader bins.
type multiKey struct {
	name        string
	disposition binning.Disposition
	pops        int
	totalSize   int
	totalMAF    float64
}

func (k multiKey) Compare(c llrb.Comparable) int {
	o := c.(multiKey)
	if k.disposition != o.disposition {
		return int(k.disposition - o.disposition)
	}
	if k.pops != o.pops {
		return o.pops - k.pops
	}
	if k.totalSize != o.totalSize {
		return o.totalSize - k.totalSize
	}
	if k.totalMAF != o.totalMAF {
		if k.totalMAF > o.totalMAF {
			return -1
		}
		return 1
	}
	if k.name != o.name {
		if k.name < o.name {
			return -1
		}
		return 1
	}
	return 0
}

// noDisposition sentinels a locus absent from every population's binsets.
const noDisposition = binning.Disposition(1000)

// priorityFor aggregates the per-population candidate bins for name into a
// single multiKey, or reports ok=false if no population currently holds a
// bin for name.
func priorityFor(name string, binsets []map[string]*binning.CandidateBin) (multiKey, bool) {
	disposition := noDisposition
	pops, totalSize := 0, 0
	totalMAF := 0.0
	minLen := -1

	for _, bs := range binsets {
		bin, ok := bs[name]
		if !ok {
			continue
		}
		if bin.Disposition < disposition {
			disposition = bin.Disposition
		}
		if minLen == -1 || bin.Len() < minLen {
			minLen = bin.Len()
		}
		totalSize += bin.Len()
		totalMAF += bin.MAFSum
		pops++
	}
	if pops == 0 {
		return multiKey{}, false
	}
	if minLen == 1 {
		pops *= 2
		totalSize *= 2
	}
	return multiKey{name: name, disposition: disposition, pops: pops, totalSize: totalSize, totalMAF: totalMAF}, true
}

// multiPQueue is the Global method's priority queue, an LLRB tree of
// multiKey entries with delete-then-reinsert decrease-key, analogous to
// binning's single-population pqueue.
type multiPQueue struct {
	tree    llrb.Tree
	current map[string]multiKey
}

func newMultiPQueue() *multiPQueue {
	return &multiPQueue{current: map[string]multiKey{}}
}

// Refresh recomputes name's priority from binsets and reinstalls it,
// removing the entry entirely if no population holds a bin for name.
func (q *multiPQueue) Refresh(name string, binsets []map[string]*binning.CandidateBin) {
	if old, ok := q.current[name]; ok {
		q.tree.Delete(old)
		delete(q.current, name)
	}
	if k, ok := priorityFor(name, binsets); ok {
		q.tree.Insert(k)
		q.current[name] = k
	}
}

func (q *multiPQueue) Peek() (string, bool) {
	var found string
	var ok bool
	q.tree.Do(func(c llrb.Comparable) bool {
		found = c.(multiKey).name
		ok = true
		return true
	})
	return found, ok
}

func (q *multiPQueue) Len() int { return q.tree.Len() }
