// Package registry is the metadata catalog for prompt templates: category,
// recommended generation parameters, and documentation, independent of
// template content. It is bootstrapped explicitly from a fixed entry table or
// a YAML manifest and delegates content access to a fileloader.Loader.
package registry
