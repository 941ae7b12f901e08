// Copyright 2024 The Compile-Cache Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package rustc

import (
	"golang.org/x/sync/errgroup"

	"github.com/golang/glog"
)

// Pool runs a batch of blocking closures with bounded concurrency. A
// single Pool is shared by reference across every file-hashing fan-out in
// one process (the two compiler probes run on their own errgroup in
// GenerateHashKey, not on the Pool); each Run call is its own
// independent batch, so the pool may be reused across many unrelated
// batches without the result of one leaking into the next.
type Pool interface {
	// Run schedules every fn to run, at most Limit() at a time, and
	// blocks until all of them have returned. It returns the first
	// non-nil error; a failing fn does not stop or cancel the others,
	// which all still run.
	Run(fns []func() error) error
	// Limit returns the maximum number of fns this pool runs at once.
	Limit() int
}

// ErrgroupPool is a Pool backed by golang.org/x/sync/errgroup, replacing
// the hand-rolled channel/goroutine job-queue an earlier design needed
// with a single SetLimit call per batch.
type ErrgroupPool struct {
	limit int
}

// NewBoundedPool returns an ErrgroupPool that runs at most limit closures
// concurrently per batch. A limit <= 0 means unbounded: SetLimit is then
// not called at all.
func NewBoundedPool(limit int) *ErrgroupPool {
	return &ErrgroupPool{limit: limit}
}

// Limit implements Pool.
func (p *ErrgroupPool) Limit() int { return p.limit }

// Run implements Pool.
func (p *ErrgroupPool) Run(fns []func() error) error {
	glog.V(2).Infof("rustc: running batch of %d against a bound of %d", len(fns), p.Limit())
	var g errgroup.Group
	if p.limit > 0 {
		g.SetLimit(p.limit)
	}
	for _, fn := range fns {
		fn := fn
		g.Go(fn)
	}
	return g.Wait()
}

// hashFilesOrdered hashes each of paths on pool, concurrently, and returns
// the digests in the same order as paths regardless of which goroutine
// finishes first. If any file fails to hash, the first error is returned
// and no digests are.
func hashFilesOrdered(pool Pool, digester Digester, paths []string) ([]Digest, error) {
	digests := make([]Digest, len(paths))
	fns := make([]func() error, len(paths))
	for i, path := range paths {
		i, path := i, path
		fns[i] = func() error {
			d, err := digester.DigestFile(path)
			if err != nil {
				return err
			}
			digests[i] = d
			return nil
		}
	}
	if err := pool.Run(fns); err != nil {
		return nil, err
	}
	return digests, nil
}
