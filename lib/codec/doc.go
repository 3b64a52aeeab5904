// Copyright 2026 The Caseflow Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides Caseflow's standard CBOR encoding
// configuration.
//
// Caseflow uses two serialization formats with a clear boundary:
//
//   - JSON for operator-facing interfaces: workflow definitions
//     (JSONC), the run record (JSONL), the state file, and CLI output.
//   - CBOR for compact internal storage: the per-run stage record
//     blobs in the journal database.
//
// This package provides the shared CBOR encoding and decoding modes so
// that every package encodes identically without duplicating
// configuration. The encoder uses Core Deterministic Encoding
// (RFC 8949 §4.2): sorted map keys, smallest integer encoding, no
// indefinite-length items. Same logical data always produces identical
// bytes.
//
// For buffer-oriented operations:
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
package codec
