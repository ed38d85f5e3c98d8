// Package bundle chunks a published latest/ tree into size-capped JSONL
// knowledge bundles for downstream retrieval systems. Story documents
// contribute one record each; excel tables are re-encoded compactly and
// chunked by character count. Output is fully regenerated per run.
package bundle
