// Package imagescan derives an image tag manifest from asset file names.
//
// Each file name is reduced to a subject slug; files sharing a slug group
// into one manifest entry holding the file list and a tag set. The manifest
// is human-curated downstream, so re-running the scanner merges discoveries
// into the existing manifest instead of replacing it: file lists are unioned
// and hand-added tags always survive.
package imagescan
