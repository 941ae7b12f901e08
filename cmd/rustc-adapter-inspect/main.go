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

// Command rustc-adapter-inspect gates and, on a cacheable invocation,
// derives the cache key for a rustc command line, without touching any
// actual cache storage. It exists to exercise the rustc package from the
// command line during development.
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"

	"github.com/golang/glog"

	rustc "github.com/compilecache/rustc-adapter"
)

var (
	compilerFlag = flag.String("compiler", "rustc", "path to the rustc executable to probe")
	jobsFlag     = flag.Int("j", 4, "maximum concurrent file-hashing tasks")
)

func fatalf(f string, a ...interface{}) {
	fmt.Fprintf(os.Stderr, f+"\n", a...)
	os.Exit(2)
}

func main() {
	flag.Parse()
	args := flag.Args()

	cwd, err := os.Getwd()
	if err != nil {
		fatalf("rustc-adapter-inspect: getwd: %v", err)
	}

	launcher := rustc.ExecLauncher{}
	digester := rustc.SHA1Digester{}
	env := rustc.OSEnvironment{}
	pool := rustc.NewBoundedPool(*jobsFlag)

	outcome, pa := rustc.Gate(args, cwd)
	fmt.Println(outcome)
	if !outcome.IsCacheable() {
		if reason, ok := outcome.Reason(); ok {
			glog.V(1).Infof("rustc-adapter-inspect: cannot cache: %s", reason)
		}
		return
	}

	compiler, err := rustc.NewCompiler(*compilerFlag, launcher, digester, env.Environ(), cwd)
	if err != nil {
		fatalf("rustc-adapter-inspect: building compiler handle: %v", err)
	}

	hasher := rustc.NewHasher(compiler, pa)
	result, err := hasher.GenerateHashKey(launcher, pool, digester, env, cwd)
	if err != nil {
		fatalf("rustc-adapter-inspect: deriving cache key: %v", err)
	}

	fmt.Printf("key: %s\n", hex.EncodeToString(result.Key[:]))
	fmt.Printf("crate: %s\n", result.Compilation.OutputPretty())
	for _, of := range result.Compilation.OutputList() {
		fmt.Printf("output: %s -> %s\n", of.Basename, of.Path)
	}
}
