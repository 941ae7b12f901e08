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
	"testing"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// diffString fails t with a human-readable diff when got != want, in the
// same red/green style run_test.go uses to compare Make's output against
// kati's: plain %q output on a long canonical-argument blob or dep-info
// listing is unreadable, a diff is not.
func diffString(t *testing.T, want, got string) {
	t.Helper()
	if got == want {
		return
	}
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(want, got, true)
	diffs = dmp.DiffCleanupSemantic(diffs)
	t.Errorf("Different output from got (red) to the expected value from want (green):\n%s",
		dmp.DiffPrettyText(diffs))
}
