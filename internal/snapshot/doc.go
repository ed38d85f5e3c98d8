// Package snapshot publishes immutable dated copies of the latest tree under
// release/<YYYY-MM-DD>. A snapshot is built in a temporary sibling directory
// and swapped into place, so consumers never observe a partially written or
// mixed-run snapshot. Re-running on the same date replaces that date only.
package snapshot
