// Package sanitizer normalizes booking input before validation and storage.
//
// All functions are idempotent and never fail: invalid input collapses to an
// empty string (or is dropped from a slice), which the validator then rejects.
//
// Normalization includes:
//   - Emails: trimmed and lowercased, so ownership checks compare like with like
//   - Slots and dates: trimmed, otherwise opaque
//   - Names and notes: whitespace collapsed, leading/trailing spaces removed
//   - Slices: duplicates and empty values removed after normalization
package sanitizer
