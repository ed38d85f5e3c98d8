// Package extract drives a full extraction run: mirror the game-data
// sources, optionally wrap story text as JSON, index every category, and
// snapshot the published tree under a dated release directory. Each stage
// assembles its output in a staging directory and swaps it into place, so
// consumers of latest/ never see a half-written tree.
package extract
