// Package fileloader resolves prompt templates by name from a backing
// directory, with an in-process cache and optional auto-reload driven by an
// injectable modification signature. Every load runs strict validation; a
// template that fails validation is never served from cache.
package fileloader
