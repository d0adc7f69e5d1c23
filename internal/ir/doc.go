// Package ir provides the constrained value types shared by every statecore
// package.
//
// Event payloads, story data and persisted trace records are all expressed
// as ir.Value so that they can be serialized canonically and hashed.
// This package imports nothing internal; all other packages may import it.
//
// Key design constraints:
//   - NO float types anywhere - durations travel as Int nanoseconds
//   - Object keys are ordered by UTF-16 code units (RFC 8785)
//   - All JSON tags use snake_case
package ir
