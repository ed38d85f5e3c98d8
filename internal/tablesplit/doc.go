// Package tablesplit explodes one large keyed game-data table into one JSON
// document per entity, named by sanitized entity ID, plus a category index
// over the results. Output follows the same clear-then-write idempotence rule
// as the mirror: the full desired set is staged and swapped into place.
package tablesplit
