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
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestHashFilesOrderedPreservesInputOrder(t *testing.T) {
	dir := t.TempDir()
	paths := make([]string, 10)
	for i := range paths {
		// Each file holds one distinct byte, so every digest differs; the
		// digests must come back index-aligned with paths whatever order
		// the workers finish in.
		p := filepath.Join(dir, string(rune('a'+i))+".txt")
		if err := os.WriteFile(p, []byte{byte(i)}, 0o644); err != nil {
			t.Fatal(err)
		}
		paths[i] = p
	}

	pool := NewBoundedPool(4)
	digester := SHA1Digester{}
	digests, err := hashFilesOrdered(pool, digester, paths)
	if err != nil {
		t.Fatalf("hashFilesOrdered: %v", err)
	}
	for i, p := range paths {
		want, err := digester.DigestFile(p)
		if err != nil {
			t.Fatal(err)
		}
		if digests[i] != want {
			t.Errorf("digests[%d] does not match DigestFile(%s)", i, p)
		}
	}
}

func TestHashFilesOrderedPropagatesFirstError(t *testing.T) {
	pool := NewBoundedPool(2)
	digester := SHA1Digester{}
	_, err := hashFilesOrdered(pool, digester, []string{"/nonexistent/path/one", "/nonexistent/path/two"})
	if err == nil {
		t.Errorf("expected an error for nonexistent files")
	}
}

func TestErrgroupPoolRunIsReusableAcrossBatches(t *testing.T) {
	pool := NewBoundedPool(2)
	for i := 0; i < 3; i++ {
		err := pool.Run([]func() error{
			func() error { return nil },
			func() error { return nil },
		})
		if err != nil {
			t.Fatalf("batch %d: %v", i, err)
		}
	}

	err := pool.Run([]func() error{
		func() error { return errors.New("boom") },
	})
	if err == nil {
		t.Errorf("expected the failing batch to return its error")
	}

	// A later, all-succeeding batch must not see the previous batch's
	// error leak through.
	if err := pool.Run([]func() error{func() error { return nil }}); err != nil {
		t.Errorf("later successful batch returned stale error: %v", err)
	}
}
