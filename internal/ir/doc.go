// Package ir provides the canonical value representation used to identify
// predicate trees and query descriptors.
//
// Literal operands captured in a specification are arbitrary Go values. To
// compare two trees, or to use one as a cache or log key, the operands are
// lowered into a small closed set of value types and serialized with RFC 8785
// canonical JSON. The serialized bytes are hashed with SHA-256 under a
// versioned domain prefix.
//
// ir imports nothing internal. spex and query build on it.
//
// Key constraints:
//   - Object keys are ordered by UTF-16 code units, not UTF-8 bytes
//   - Strings are NFC normalized before encoding
//   - Floats and timestamps never appear as JSON numbers; they are encoded
//     as tagged objects so that equal values always produce equal bytes
package ir
