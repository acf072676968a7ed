package shader

// ShaderBuilderOption configures shader compilation.
type ShaderBuilderOption func(*shader)

// WithPreProcessor replaces the default PreProcessor.
//
// Parameters:
//   - pp: the pre-processor to expand directives with
//
// Returns:
//   - ShaderBuilderOption: the option
func WithPreProcessor(pp PreProcessor) ShaderBuilderOption {
	return func(s *shader) {
		s.pp = pp
	}
}

// WithContract requires the reflected bindings to satisfy c.
//
// Parameters:
//   - c: the binding contract
//
// Returns:
//   - ShaderBuilderOption: the option
func WithContract(c Contract) ShaderBuilderOption {
	return func(s *shader) {
		s.contract = &c
	}
}

// WithFrontEndCheck toggles the naga parse and lower step. It is enabled by default.
//
// Parameters:
//   - enabled: whether to run the check
//
// Returns:
//   - ShaderBuilderOption: the option
func WithFrontEndCheck(enabled bool) ShaderBuilderOption {
	return func(s *shader) {
		s.skipNaga = !enabled
	}
}
