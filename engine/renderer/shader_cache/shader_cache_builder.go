package shader_cache

// ShaderCacheBuilderOption configures a ShaderCache during construction.
type ShaderCacheBuilderOption func(*shaderCache) error

// WithStatic registers an in-memory source.
//
// Parameters:
//   - id: the shader identifier
//   - source: the WGSL source
//
// Returns:
//   - ShaderCacheBuilderOption: the option
func WithStatic(id, source string) ShaderCacheBuilderOption {
	return func(c *shaderCache) error {
		c.AddStatic(id, source)
		return nil
	}
}

// WithFile registers a file-backed source.
//
// Parameters:
//   - id: the shader identifier
//   - path: the WGSL file path
//
// Returns:
//   - ShaderCacheBuilderOption: the option
func WithFile(id, path string) ShaderCacheBuilderOption {
	return func(c *shaderCache) error {
		return c.AddFile(id, path)
	}
}
