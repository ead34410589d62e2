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

package binning

import "github.com/biogo/store/llrb"

// binKey is the llrb.Comparable ordering bins for selection: ascending by
// (disposition, -size, -mafSum, name). The ascending-smallest entry is
// therefore the highest-priority bin: obligate dispositions first, then
// largest bins, then highest total MAF, with locus name as a final
// deterministic tie-break.
type binKey struct {
	name        string
	disposition Disposition
	size        int
	mafSum      float64
}

func (k binKey) Compare(c llrb.Comparable) int {
	o := c.(binKey)
	if k.disposition != o.disposition {
		return int(k.disposition - o.disposition)
	}
	if k.size != o.size {
		return o.size - k.size
	}
	if k.mafSum != o.mafSum {
		if k.mafSum > o.mafSum {
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

// pqueue is the binner's priority queue: an LLRB tree of binKey entries,
// with decrease-key simulated as delete-then-reinsert (the llrb package
// exposes no native decrease-key, but the tree's O(log n) insert and
// delete keep that simulation within the same complexity bound). A side
// map tracks each locus's currently-installed key so it can be located and
// removed before reinsertion.
type pqueue struct {
	tree    llrb.Tree
	current map[string]binKey
}

func newPQueue() *pqueue {
	return &pqueue{current: map[string]binKey{}}
}

func keyFor(name string, bin *CandidateBin) binKey {
	return binKey{name: name, disposition: bin.Disposition, size: bin.Len(), mafSum: bin.MAFSum}
}

// Set installs or updates name's priority key from bin's current state.
func (q *pqueue) Set(name string, bin *CandidateBin) {
	if old, ok := q.current[name]; ok {
		q.tree.Delete(old)
	}
	k := keyFor(name, bin)
	q.tree.Insert(k)
	q.current[name] = k
}

// Remove deletes name from the queue entirely.
func (q *pqueue) Remove(name string) {
	if old, ok := q.current[name]; ok {
		q.tree.Delete(old)
		delete(q.current, name)
	}
}

// Peek returns the name of the highest-priority bin without removing it.
func (q *pqueue) Peek() (string, bool) {
	var found string
	var ok bool
	q.tree.Do(func(c llrb.Comparable) bool {
		found = c.(binKey).name
		ok = true
		return true // stop after the first (smallest/highest-priority) entry
	})
	return found, ok
}

// Len reports the number of entries currently queued.
func (q *pqueue) Len() int { return q.tree.Len() }
