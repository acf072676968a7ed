package shader

// PreProcessorBuilderOption configures a PreProcessor during construction.
type PreProcessorBuilderOption func(*preProcessor)

// WithStruct registers an additional struct source under key, usable by include and group directives.
//
// Parameters:
//   - key: the directive argument naming the struct
//   - source: the WGSL struct definition
//   - typeName: the struct's WGSL type name
//
// Returns:
//   - PreProcessorBuilderOption: the option
func WithStruct(key AnnotationArg, source, typeName string) PreProcessorBuilderOption {
	return func(p *preProcessor) {
		p.structs[key] = registryEntry{Source: source, Type: typeName}
	}
}
