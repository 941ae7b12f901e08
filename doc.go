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

// Package rustc is the compiler-adapter core of a compile caching system: it
// understands rustc invocations well enough to decide, from the command line
// alone plus a couple of cheap side probes, whether an invocation is
// cacheable and what cache key uniquely identifies its outputs.
//
// The package has no opinion about where cache entries are stored or how
// they travel over a network; a caller gets a Compiler, asks it to parse a
// command line, and on a cache miss gets back a Compilation it can run.
package rustc
