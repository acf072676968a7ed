package loader

import "strings"

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithFormat registers a backend for a file extension, replacing any existing one.
//
// Parameters:
//   - ext: the extension including the dot, e.g. ".obj"
//   - backend: the decoder
//
// Returns:
//   - LoaderBuilderOption: a function that applies the option to a loader
func WithFormat(ext string, backend Backend) LoaderBuilderOption {
	return func(l *loader) {
		l.backends[strings.ToLower(ext)] = backend
	}
}

// WithModel pre-populates the model cache.
//
// Parameters:
//   - key: the cache key, normally the file path
//   - m: the model to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the option to a loader
func WithModel(key string, m Model) LoaderBuilderOption {
	return func(l *loader) {
		l.models[key] = m
	}
}
