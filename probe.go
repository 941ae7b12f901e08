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
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// filteredArgs returns pairs with every --emit and --out-dir pair removed,
// used only for the dep-info probe so it does not inherit our own
// --emit/-o and collide with the probe's own.
func filteredArgs(pairs []ArgPair) []ArgPair {
	out := make([]ArgPair, 0, len(pairs))
	for _, p := range pairs {
		if p.Flag == "--emit" || p.Flag == "--out-dir" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// enumerateSources runs the dep-info probe: it spawns the compiler with
// the filtered arguments plus --emit dep-info -o <tmp>/deps.d, then parses
// the resulting file. The temporary directory is removed on every exit
// path.
func enumerateSources(compiler *Compiler, launcher ProcessLauncher, pairs []ArgPair, env []EnvVar, cwd string) ([]string, error) {
	tmpDir, err := os.MkdirTemp("", "rustc-adapter-depinfo-")
	if err != nil {
		return nil, errors.Wrap(err, "rustc: creating dep-info temp dir")
	}
	defer os.RemoveAll(tmpDir)

	depFile := filepath.Join(tmpDir, "deps.d")
	args := flattenArgs(filteredArgs(pairs))
	args = append(args, "--emit", "dep-info", "-o", depFile)

	out, err := launcher.Run(compiler.Executable, args, env, cwd)
	if err != nil {
		return nil, errors.Wrap(err, "rustc: dep-info probe")
	}
	if !out.Success() {
		return nil, errors.Errorf("rustc: dep-info probe exited %d: %s", out.ExitCode, out.Stderr)
	}

	body, err := os.ReadFile(depFile)
	if err != nil {
		return nil, errors.Wrap(err, "rustc: reading dep-info file")
	}
	sources := parseDepInfo(body, cwd)
	glog.V(1).Infof("rustc: dep-info probe found %d source files", len(sources))
	return sources, nil
}

// enumerateOutputs runs the output-name probe: it spawns the compiler with
// the finalized arguments plus --print file-names and parses stdout, one
// basename per non-empty line.
func enumerateOutputs(compiler *Compiler, launcher ProcessLauncher, finalizedArgs []string, env []EnvVar, cwd string) ([]string, error) {
	args := append(append([]string{}, finalizedArgs...), "--print", "file-names")
	out, err := launcher.Run(compiler.Executable, args, env, cwd)
	if err != nil {
		return nil, errors.Wrap(err, "rustc: file-names probe")
	}
	if !out.Success() {
		return nil, errors.Errorf("rustc: file-names probe exited %d: %s", out.ExitCode, out.Stderr)
	}

	var names []string
	scanner := bufio.NewScanner(bytes.NewReader(out.Stdout))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			names = append(names, line)
		}
	}
	return names, nil
}

// parseDepInfo parses the Makefile-style dep-info format: only the first
// line is consulted. Everything after the first occurrence of ": " is the
// dependency field, split on spaces, trimmed, with empties discarded and
// each remaining token joined onto cwd. The result is sorted
// lexicographically. A file with no lines, or whose first line lacks
// ": ", yields an empty list.
func parseDepInfo(body []byte, cwd string) []string {
	nl := bytes.IndexByte(body, '\n')
	var firstLine string
	if nl >= 0 {
		firstLine = string(body[:nl])
	} else {
		firstLine = string(body)
	}

	i := strings.Index(firstLine, ": ")
	if i < 0 {
		return nil
	}
	field := firstLine[i+len(": "):]

	var paths []string
	for _, tok := range strings.Split(field, " ") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		paths = append(paths, joinDepPath(cwd, tok))
	}
	sort.Strings(paths)
	return paths
}

// joinDepPath joins tok onto cwd the way the original dependency-path join
// behaves: an absolute tok is returned unchanged, overriding cwd, whereas
// Go's filepath.Join would instead concatenate and clean the two
// components together regardless of tok being absolute.
func joinDepPath(cwd, tok string) string {
	if filepath.IsAbs(tok) {
		return tok
	}
	return filepath.Join(cwd, tok)
}
