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

func TestCompilationOutputListSorted(t *testing.T) {
	c := &Compilation{
		CrateName: "foo",
		Outputs: map[string]string{
			"libfoo.rlib": "/out/libfoo.rlib",
			"foo.d":       "/out/foo.d",
		},
	}
	got := c.OutputList()
	want := []OutputFile{
		{Basename: "foo.d", Path: "/out/foo.d"},
		{Basename: "libfoo.rlib", Path: "/out/libfoo.rlib"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("OutputList()=%+v, want %+v", got, want)
	}
}

func TestCompilationOutputPretty(t *testing.T) {
	c := &Compilation{CrateName: "my_crate"}
	if got := c.OutputPretty(); got != "my_crate" {
		t.Errorf("OutputPretty()=%q, want my_crate", got)
	}
}

func TestCompilationCompileCapturesNonZeroExit(t *testing.T) {
	c := &Compilation{Executable: "rustc", Args: []string{"foo.rs"}}
	launcher := &fakeLauncher{responses: map[string]ProcessOutput{
		"rustc foo.rs": {ExitCode: 1, Stderr: []byte("error: aborting")},
	}}
	out, err := c.Compile(launcher, nil, "")
	if err != nil {
		t.Fatalf("Compile returned a Go error for a non-zero compiler exit: %v", err)
	}
	if out.Success() {
		t.Errorf("out.Success()=true, want false")
	}
	if string(out.Stderr) != "error: aborting" {
		t.Errorf("Stderr=%q, want %q", out.Stderr, "error: aborting")
	}
}
