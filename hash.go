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
	"crypto/sha1"
	"encoding/binary"
	"fmt"
	"hash"
	"path/filepath"
	"sort"

	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"
)

// CacheVersion is folded into every key first. Any change to the hashing
// inputs or normalization below must increment it. This adapter
// length-prefixes each argument token rather than concatenating them bare
// (see writeCanonicalArgs), which is a deliberate deviation from a bare
// concatenation scheme and so carries its own version tag rather than
// reusing one meant for the bare-concatenation form.
const CacheVersion = "rustc-adapter-v3"

// sortableArgFlags are the flag families whose relative order the key is
// invariant to: the upstream build tool is known to emit these in
// non-deterministic order.
var sortableArgFlags = map[string]bool{"--extern": true, "-L": true, "--cfg": true}

// HashResult bundles the cache key with the compilation handle that
// reproduces it on a miss.
type HashResult struct {
	Key         Digest
	Compilation *Compilation
}

// Hasher derives the cache key for one gated compilation. It is a thin
// pairing of a Compiler handle with the ParsedArguments from a successful
// Gate call.
type Hasher struct {
	Compiler *Compiler
	Args     *ParsedArguments
}

// NewHasher pairs a compiler handle with parsed arguments into a Hasher.
func NewHasher(compiler *Compiler, pa *ParsedArguments) *Hasher {
	return &Hasher{Compiler: compiler, Args: pa}
}

// GenerateHashKey derives the cache key, delegating to the package-level
// GenerateHashKey with this Hasher's compiler and parsed arguments.
func (hs *Hasher) GenerateHashKey(launcher ProcessLauncher, pool Pool, digester Digester, envProvider EnvironmentProvider, cwd string) (*HashResult, error) {
	return GenerateHashKey(hs.Compiler, hs.Args, launcher, pool, digester, envProvider, cwd)
}

// GenerateHashKey derives the cache key for pa, invoking the compiler
// twice (dep-info and file-names probes, issued concurrently) and hashing
// every input in the fixed order §4.4 specifies. The two probes and the
// two hashing fan-outs they feed are each awaited and reduced in
// deterministic order before the next step appends to the digest; nothing
// about completion timing can change the resulting key.
func GenerateHashKey(compiler *Compiler, pa *ParsedArguments, launcher ProcessLauncher, pool Pool, digester Digester, envProvider EnvironmentProvider, cwd string) (*HashResult, error) {
	env := envProvider.Environ()
	finalizedArgs := flattenArgs(pa.Pairs)

	var sources, outputNames []string
	var g errgroup.Group
	g.Go(func() error {
		var err error
		sources, err = enumerateSources(compiler, launcher, pa.Pairs, env, cwd)
		return err
	})
	g.Go(func() error {
		var err error
		outputNames, err = enumerateOutputs(compiler, launcher, finalizedArgs, env, cwd)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("rustc: probing compiler: %w", err)
	}

	sourceDigests, err := hashFilesOrdered(pool, digester, sources)
	if err != nil {
		return nil, fmt.Errorf("rustc: hashing source files: %w", err)
	}
	externDigests, err := hashFilesOrdered(pool, digester, pa.ExternPaths)
	if err != nil {
		return nil, fmt.Errorf("rustc: hashing extern artifacts: %w", err)
	}

	h := sha1.New()
	h.Write([]byte(CacheVersion))
	for _, d := range compiler.LibDigests {
		h.Write(d[:])
	}
	writeCanonicalArgs(h, pa.Pairs)
	for _, d := range sourceDigests {
		h.Write(d[:])
	}
	for _, d := range externDigests {
		h.Write(d[:])
	}
	for _, v := range cargoEnvDigestInput(env) {
		h.Write([]byte(v.Name))
		h.Write([]byte{'='})
		h.Write([]byte(v.Value))
	}

	var key Digest
	copy(key[:], h.Sum(nil))

	outputs := buildOutputMap(pa, outputNames)
	comp := &Compilation{
		Executable: compiler.Executable,
		Args:       finalizedArgs,
		CrateName:  pa.CrateName,
		Outputs:    outputs,
	}

	glog.V(1).Infof("rustc: derived key for crate %q from %d sources, %d externs", pa.CrateName, len(sources), len(pa.ExternPaths))
	return &HashResult{Key: key, Compilation: comp}, nil
}

// writeCanonicalArgs feeds pairs into h as the canonical argument blob:
// pairs whose flag is --extern, -L, or --cfg are moved to the end of the
// sequence, sorted lexicographically by (flag, value), while every other
// pair keeps its original relative order. Each flag and value is written
// length-prefixed so that ("ab", "cd") cannot collide with ("a", "bcd").
func writeCanonicalArgs(h hash.Hash, pairs []ArgPair) {
	var rest, sortable []ArgPair
	for _, p := range pairs {
		if sortableArgFlags[p.Flag] {
			sortable = append(sortable, p)
		} else {
			rest = append(rest, p)
		}
	}
	sort.Slice(sortable, func(i, j int) bool {
		if sortable[i].Flag != sortable[j].Flag {
			return sortable[i].Flag < sortable[j].Flag
		}
		return sortable[i].Value < sortable[j].Value
	})

	for _, p := range append(rest, sortable...) {
		writeLenPrefixed(h, p.Flag)
		writeLenPrefixed(h, p.Value)
	}
}

// writeLenPrefixed writes a 4-byte big-endian length followed by s's
// bytes, so variable-length tokens concatenated in sequence can never be
// reinterpreted as a different split of the same total bytes.
func writeLenPrefixed(h hash.Hash, s string) {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(s)))
	h.Write(lenBuf[:])
	h.Write([]byte(s))
}

// buildOutputMap joins each basename reported by the file-names probe
// with the output directory, then adds the dep-info file (if one was
// synthesized during parsing) under its own full path.
func buildOutputMap(pa *ParsedArguments, outputNames []string) map[string]string {
	outputs := make(map[string]string, len(outputNames)+1)
	for _, name := range outputNames {
		outputs[name] = filepath.Join(pa.OutDir, name)
	}
	if pa.DepInfoName != "" {
		outputs[pa.DepInfoName] = filepath.Join(pa.OutDir, pa.DepInfoName)
	}
	return outputs
}
