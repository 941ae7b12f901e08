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
	"reflect"
	"testing"
)

func TestArgTakesValue(t *testing.T) {
	for _, tc := range []struct {
		arg  string
		want bool
	}{
		{"--emit", true},
		{"--emit=link", true},
		{"-L", true},
		{"-Lfoo", true},
		{"--crate-name", true},
		{"foo.rs", false},
		{"-O", false},
		{"--verbose", false},
	} {
		got := argTakesValue(tc.arg)
		if got != tc.want {
			t.Errorf("argTakesValue(%q)=%v, want %v", tc.arg, got, tc.want)
		}
	}
}

func TestArgsIterAttachedDetached(t *testing.T) {
	attached := CollectArgPairs([]string{"--emit=link", "--crate-name=foo"})
	detached := CollectArgPairs([]string{"--emit", "link", "--crate-name", "foo"})
	if !reflect.DeepEqual(attached, detached) {
		t.Errorf("attached=%+v detached=%+v, want equal", attached, detached)
	}
}

func TestArgsIterBareFlag(t *testing.T) {
	pairs := CollectArgPairs([]string{"-v", "foo.rs"})
	want := []ArgPair{
		{Flag: "-v"},
		{Flag: "foo.rs"},
	}
	if !reflect.DeepEqual(pairs, want) {
		t.Errorf("pairs=%+v, want %+v", pairs, want)
	}
}

func TestArgsIterValueFlagAtEnd(t *testing.T) {
	pairs := CollectArgPairs([]string{"foo.rs", "--crate-name"})
	want := []ArgPair{
		{Flag: "foo.rs"},
		{Flag: "--crate-name"},
	}
	if !reflect.DeepEqual(pairs, want) {
		t.Errorf("pairs=%+v, want %+v", pairs, want)
	}
}

func TestFlattenArgsRoundTrip(t *testing.T) {
	in := []string{"--crate-name", "foo", "foo.rs", "--emit=link"}
	pairs := CollectArgPairs(in)
	got := flattenArgs(pairs)
	want := []string{"--crate-name", "foo", "foo.rs", "--emit", "link"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("flattenArgs(%+v)=%q, want %q", pairs, got, want)
	}
}
