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
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/golang/glog"
)

// allowedCrateTypes are the crate kinds that do not invoke the system
// linker, and so are the only ones this adapter can cache.
var allowedCrateTypes = map[string]bool{"lib": true, "rlib": true, "staticlib": true}

// notCompilationFlags classify an invocation as informational rather than
// a build, regardless of anything else on the line.
var notCompilationFlags = map[string]bool{
	"--help": true, "-V": true, "--version": true, "--print": true,
	"--explain": true, "--pretty": true, "--unpretty": true,
}

// ParsedArguments is the result of successfully gating a command line.
type ParsedArguments struct {
	// Pairs is the argument-pair list in original occurrence order, held
	// onto for the key composer rather than re-tokenizing.
	Pairs []ArgPair
	// OutDir is the value of --out-dir.
	OutDir string
	// ExternPaths is the right-hand side of each --extern name=path,
	// sorted lexicographically.
	ExternPaths []string
	// CrateName is the value of --crate-name.
	CrateName string
	// DepInfoName is "{crate_name}{extra_filename}.d" when dep-info is
	// among the emit kinds, else empty.
	DepInfoName string
}

// Gate classifies a raw rustc argument vector and current working
// directory, returning the Outcome and, only when Cacheable, the parsed
// structure the rest of the pipeline consumes.
func Gate(args []string, cwd string) (Outcome, *ParsedArguments) {
	for _, a := range args {
		if !utf8.ValidString(a) {
			glog.V(2).Infof("rustc: argument is not valid utf-8")
			return CannotCache(ReasonNotUTF8), nil
		}
	}

	pairs := CollectArgPairs(args)

	var (
		outDir        string
		crateName     string
		extraFilename string
		input         string
		sawInput      bool
		sawEmit       bool
		emitSet       map[string]bool
		externPaths   []string
	)

	for _, p := range pairs {
		if notCompilationFlags[p.Flag] {
			glog.V(2).Infof("rustc: %s is informational, not a compilation", p.Flag)
			return NotCompilation(), nil
		}
		switch p.Flag {
		case "-o":
			return CannotCache(ReasonDashO), nil
		case "-l":
			return CannotCache(ReasonDashL), nil
		case "--emit":
			if sawEmit {
				return CannotCache(ReasonMultipleEmit), nil
			}
			sawEmit = true
			emitSet = splitCommaSet(p.Value)
		case "--crate-type":
			for t := range splitCommaSet(p.Value) {
				if !allowedCrateTypes[t] {
					return CannotCache(ReasonCrateType), nil
				}
			}
		case "--out-dir":
			outDir = p.Value
		case "--crate-name":
			crateName = p.Value
		case "--extern":
			if p.HasValue {
				if i := strings.IndexByte(p.Value, '='); i >= 0 {
					externPaths = append(externPaths, p.Value[i+1:])
				}
			}
		case "-C", "--codegen":
			if i := strings.IndexByte(p.Value, '='); i >= 0 && p.Value[:i] == "extra-filename" {
				extraFilename = p.Value[i+1:]
			}
		case "-":
			return CannotCache(ReasonStdin), nil
		default:
			if strings.HasPrefix(p.Flag, "-") {
				continue
			}
			if sawInput && p.Flag != input {
				return CannotCache(ReasonMultipleInputFiles), nil
			}
			input = p.Flag
			sawInput = true
		}
	}

	switch {
	case !sawInput:
		return cannotCacheMissing(missingInput), nil
	case outDir == "":
		return cannotCacheMissing(missingOutDir), nil
	case !sawEmit || len(emitSet) == 0:
		return cannotCacheMissing(missingEmit), nil
	case crateName == "":
		return cannotCacheMissing(missingCrateName), nil
	}

	if !emitSet["link"] {
		glog.V(2).Infof("rustc: --emit without link, not a compilation")
		return NotCompilation(), nil
	}
	union := map[string]bool{"link": true, "dep-info": true}
	for k := range emitSet {
		union[k] = true
	}
	if len(union) != 2 {
		return CannotCache(ReasonUnsupportedEmit), nil
	}

	sort.Strings(externPaths)

	var depInfoName string
	if emitSet["dep-info"] {
		depInfoName = crateName + extraFilename + ".d"
	}

	pa := &ParsedArguments{
		Pairs:       pairs,
		OutDir:      outDir,
		ExternPaths: externPaths,
		CrateName:   crateName,
		DepInfoName: depInfoName,
	}
	glog.V(1).Infof("rustc: gated cacheable compilation, crate=%q out-dir=%q", crateName, outDir)
	return Cacheable(), pa
}
