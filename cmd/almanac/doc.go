// Command almanac mirrors game-data JSON tables and story text into a
// versioned static tree, maintains the image tag manifest, splits tables
// into per-entity files, and builds JSONL knowledge bundles.
package main
