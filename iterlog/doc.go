// Package iterlog is the append-only experiment log for prompt template
// changes. It enforces uniqueness of (prompt, version) pairs, persists a
// structured JSON record store, and regenerates a deterministic markdown
// changelog as a pure projection of the record sequence. The store is the
// source of truth; the changelog is always derived from it.
package iterlog
