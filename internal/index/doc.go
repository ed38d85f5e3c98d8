// Package index builds the listing manifests consumers use to discover what
// an extraction run published: one CategoryIndex per mirrored category and a
// RootIndex aggregating them with a generation timestamp.
//
// File lists are sorted by slash-separated relative path so two runs over
// identical input produce byte-identical manifests.
package index
