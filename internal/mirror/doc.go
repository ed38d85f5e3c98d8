// Package mirror copies a source subtree verbatim into a destination subtree,
// preserving relative paths. Symlinks are never followed; non-regular entries
// and unreadable files are skipped with a warning so a single bad file cannot
// abort a run. Every copy is integrity-verified.
package mirror
