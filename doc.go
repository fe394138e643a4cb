// Package promptkit manages versioned prompt templates for the Sentinel
// intelligence-analysis pipeline: template representation with placeholder
// scanning, strict and safe rendering, and structural validation/linting.
// Cached loading lives in fileloader, catalog metadata in registry, and
// change tracking in iterlog.
package promptkit
