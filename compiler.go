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
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/golang/glog"
)

// Compiler is an immutable descriptor of one compiler instance: its
// executable path and the digests of the shared libraries found in its
// reported system-root library directory, computed once at construction.
// The digest list amounts to a one-shot, process-wide value; treat it as
// computed once at startup rather than as a mutable global.
type Compiler struct {
	Executable string
	// LibDigests are the shared-library digests, already sorted by the
	// lexicographic order of their source filenames.
	LibDigests []Digest
}

// libDirName is the platform-dependent name of the compiler's own library
// directory under its sysroot: "bin" on Windows, "lib" everywhere else.
func libDirName() string {
	if runtime.GOOS == "windows" {
		return "bin"
	}
	return "lib"
}

// dynamicLibExt is the platform's dynamic-library file extension.
func dynamicLibExt() string {
	switch runtime.GOOS {
	case "windows":
		return ".dll"
	case "darwin":
		return ".dylib"
	default:
		return ".so"
	}
}

// NewCompiler probes the compiler at exe for its sysroot via
// "--print=sysroot", then hashes the shared libraries found in the
// sysroot's library directory, sorted lexicographically by filename so the
// digest list is reproducible across runs.
func NewCompiler(exe string, launcher ProcessLauncher, digester Digester, env []EnvVar, cwd string) (*Compiler, error) {
	out, err := launcher.Run(exe, []string{"--print=sysroot"}, env, cwd)
	if err != nil {
		return nil, fmt.Errorf("rustc: probing sysroot: %w", err)
	}
	if !out.Success() {
		return nil, fmt.Errorf("rustc: %s --print=sysroot exited %d: %s", exe, out.ExitCode, out.Stderr)
	}
	sysroot := strings.TrimRight(string(out.Stdout), "\r\n")
	libDir := filepath.Join(sysroot, libDirName())

	entries, err := os.ReadDir(libDir)
	if err != nil {
		return nil, fmt.Errorf("rustc: reading sysroot lib dir %q: %w", libDir, err)
	}
	ext := dynamicLibExt()
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if filepath.Ext(e.Name()) == ext {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	digests := make([]Digest, len(names))
	for i, name := range names {
		d, err := digester.DigestFile(filepath.Join(libDir, name))
		if err != nil {
			return nil, fmt.Errorf("rustc: hashing sysroot library %q: %w", name, err)
		}
		digests[i] = d
	}

	glog.V(1).Infof("rustc: compiler %s sysroot %s, %d shared libraries", exe, sysroot, len(digests))
	return &Compiler{Executable: exe, LibDigests: digests}, nil
}

// ParseArguments gates a raw command line for this compiler instance. The
// gating rules are independent of any particular Compiler value, but the
// method is offered here so callers can read compiler.ParseArguments(...)
// rather than the free function.
func (c *Compiler) ParseArguments(args []string, cwd string) (Outcome, *ParsedArguments) {
	return Gate(args, cwd)
}
