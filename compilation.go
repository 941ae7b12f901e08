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
	"sort"

	"github.com/golang/glog"
)

// Compilation is the immutable handle produced by a cache miss: everything
// needed to actually run the compiler and locate the artifacts it
// produces. It survives past the key lookup and is discarded after the
// real compile runs.
type Compilation struct {
	Executable string
	Args       []string
	CrateName  string
	Outputs    map[string]string
}

// OutputFile is one (basename, full path) pair from a Compilation's
// output map.
type OutputFile struct {
	Basename string
	Path     string
}

// Compile runs the compiler with the handle's finalized arguments,
// clearing the inherited environment and overlaying only env. A non-zero
// compiler exit is returned verbatim in the ProcessOutput, not as a Go
// error: the caller treats it as an ordinary compile failure rather than a
// defect in this adapter. A Go error return means the compiler could not
// even be launched.
func (c *Compilation) Compile(launcher ProcessLauncher, env []EnvVar, cwd string) (ProcessOutput, error) {
	glog.V(1).Infof("rustc: compiling crate %q: %s %v", c.CrateName, c.Executable, c.Args)
	out, err := launcher.Run(c.Executable, c.Args, env, cwd)
	if err != nil {
		return out, fmt.Errorf("rustc: running compiler: %w", err)
	}
	return out, nil
}

// OutputList returns the handle's output map as a slice of
// (basename, path) pairs, sorted by basename for a deterministic order.
func (c *Compilation) OutputList() []OutputFile {
	files := make([]OutputFile, 0, len(c.Outputs))
	for basename, path := range c.Outputs {
		files = append(files, OutputFile{Basename: basename, Path: path})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Basename < files[j].Basename })
	return files
}

// OutputPretty returns a short human-readable label for this compilation:
// its crate name.
func (c *Compilation) OutputPretty() string {
	return c.CrateName
}
