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
	"crypto/sha1"
	"io"
	"os"
)

// Digest is a 160-bit SHA-1 digest.
type Digest [sha1.Size]byte

// Digester computes SHA-1 digests over byte streams. It is an external
// collaborator so tests can substitute a fake that avoids real file I/O.
type Digester interface {
	DigestFile(path string) (Digest, error)
	DigestBytes(b []byte) Digest
}

// SHA1Digester is the real Digester, reading files from the local
// filesystem.
type SHA1Digester struct{}

// DigestFile implements Digester.
func (SHA1Digester) DigestFile(path string) (Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return Digest{}, err
	}
	defer f.Close()
	h := sha1.New()
	if _, err := io.Copy(h, f); err != nil {
		return Digest{}, err
	}
	var d Digest
	copy(d[:], h.Sum(nil))
	return d, nil
}

// DigestBytes implements Digester.
func (SHA1Digester) DigestBytes(b []byte) Digest {
	return sha1.Sum(b)
}
