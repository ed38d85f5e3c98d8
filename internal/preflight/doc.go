// Package preflight verifies the filesystem preconditions an extraction run
// depends on: readable source roots, a writable output root, and a free-space
// floor on the output filesystem. Checks return named results instead of
// errors so callers can render them and decide what is fatal.
package preflight
