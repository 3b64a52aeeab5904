// Copyright 2026 The Caseflow Authors
// SPDX-License-Identifier: Apache-2.0

// Package fingerprint computes BLAKE3 content digests for workflow
// definitions and mesh-description inputs. Digests are recorded in
// the run state and journal so an operator can tell whether a case
// directory was produced by the workflow revision they expect.
package fingerprint

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/zeebo/blake3"
)

// Digest is a 32-byte BLAKE3 digest.
type Digest [32]byte

// Bytes computes the digest of an in-memory byte slice (typically the
// raw workflow definition as read from disk, before JSONC stripping —
// comments are part of the authored revision).
func Bytes(data []byte) Digest {
	return Digest(blake3.Sum256(data))
}

// File computes the digest of the file at path, streamed in chunks so
// memory usage is constant regardless of file size (mesh-description
// inputs can run to gigabytes).
func File(path string) (Digest, error) {
	file, err := os.Open(path)
	if err != nil {
		return Digest{}, fmt.Errorf("opening %s for hashing: %w", path, err)
	}
	defer file.Close()

	hasher := blake3.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return Digest{}, fmt.Errorf("hashing %s: %w", path, err)
	}

	var digest Digest
	copy(digest[:], hasher.Sum(nil))
	return digest, nil
}

// Format returns the hex-encoded string representation of a digest.
// This is the canonical format used in the state file, journal rows,
// and log output.
func Format(digest Digest) string {
	return hex.EncodeToString(digest[:])
}

// Parse parses a 64-character hex string into a Digest.
func Parse(hexString string) (Digest, error) {
	var digest Digest
	decoded, err := hex.DecodeString(hexString)
	if err != nil {
		return digest, fmt.Errorf("parsing digest: %w", err)
	}
	if len(decoded) != 32 {
		return digest, fmt.Errorf("digest is %d bytes, want 32", len(decoded))
	}
	copy(digest[:], decoded)
	return digest, nil
}

// Short returns the first 12 hex characters of a digest — enough to
// disambiguate workflow revisions in status output without filling
// the line.
func Short(digest Digest) string {
	return hex.EncodeToString(digest[:6])
}
