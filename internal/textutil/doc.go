// Package textutil provides small string helpers shared by the extraction
// tools: filesystem-safe token sanitization for entity IDs and display-title
// derivation from file names.
package textutil
