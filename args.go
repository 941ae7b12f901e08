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

import "strings"

// argsWithValue are the rustc flags known to take a value, either attached
// (--flag=value) or detached (--flag value). Taken from rustc's own
// librustc_session/config.rs flag table.
var argsWithValue = []string{
	"--cfg", "-L", "-l", "--crate-type", "--crate-name", "--emit", "--print",
	"-o", "--out-dir", "--explain", "--target",
	"-W", "--warn", "-A", "--allow", "-D", "--deny", "-F", "--forbid",
	"--cap-lints", "-C", "--codegen", "--extern", "--sysroot", "-Z",
	"--error-format", "--color", "--pretty", "--unpretty",
}

// argTakesValue reports whether arg is a member of argsWithValue: it is a
// member if it equals one of the flags, or if one of the flags is a prefix
// of it (so this matches both "--emit" and "--emit=link" in one test).
func argTakesValue(arg string) bool {
	for _, a := range argsWithValue {
		if arg == a || strings.HasPrefix(arg, a) {
			return true
		}
	}
	return false
}

// ArgPair is one (flag, optional value) pair yielded by ArgsIter, in the
// order the flag occurred on the command line.
type ArgPair struct {
	Flag     string
	Value    string
	HasValue bool
}

// ArgsIter walks a raw argument vector and yields (flag, value) pairs,
// resolving attached ("--flag=value") and detached ("--flag" "value") forms
// against argsWithValue. It is finite, not restartable, and yields every
// input token exactly once.
type ArgsIter struct {
	args []string
	pos  int
}

// NewArgsIter returns an iterator over args.
func NewArgsIter(args []string) *ArgsIter {
	return &ArgsIter{args: args}
}

// Next returns the next (flag, value) pair, or ok=false when exhausted.
func (it *ArgsIter) Next() (pair ArgPair, ok bool) {
	if it.pos >= len(it.args) {
		return ArgPair{}, false
	}
	arg := it.args[it.pos]
	it.pos++
	if !argTakesValue(arg) {
		return ArgPair{Flag: arg}, true
	}
	if i := strings.IndexByte(arg, '='); i >= 0 {
		return ArgPair{Flag: arg[:i], Value: arg[i+1:], HasValue: true}, true
	}
	if it.pos < len(it.args) {
		v := it.args[it.pos]
		it.pos++
		return ArgPair{Flag: arg, Value: v, HasValue: true}, true
	}
	// Value-taking flag at the end of the stream with nothing left to
	// consume: yield it with no value rather than losing the token.
	return ArgPair{Flag: arg}, true
}

// CollectArgPairs runs an ArgsIter over args to completion and returns every
// pair in occurrence order. Gating and the canonical pair list used by the
// key composer are both built from this single, deterministic pass.
func CollectArgPairs(args []string) []ArgPair {
	it := NewArgsIter(args)
	pairs := make([]ArgPair, 0, len(args))
	for {
		p, ok := it.Next()
		if !ok {
			break
		}
		pairs = append(pairs, p)
	}
	return pairs
}

// flattenArgs flattens argument pairs back to a positional vector, emitting
// for each pair the flag followed by its value when present. Occurrence
// order is preserved.
func flattenArgs(pairs []ArgPair) []string {
	out := make([]string, 0, len(pairs)*2)
	for _, p := range pairs {
		out = append(out, p.Flag)
		if p.HasValue {
			out = append(out, p.Value)
		}
	}
	return out
}

// splitCommaSet splits a comma-separated flag value into a set of distinct
// members, as used for --emit and --crate-type.
func splitCommaSet(value string) map[string]bool {
	set := make(map[string]bool)
	if value == "" {
		return set
	}
	for _, v := range strings.Split(value, ",") {
		set[v] = true
	}
	return set
}
