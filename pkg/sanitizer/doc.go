// Package sanitizer normalises free-text input before validation and storage.
//
// All functions are idempotent and never fail; input that normalises to
// nothing becomes the empty string, which validation then rejects.
package sanitizer
