package shader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/cogentcore/webgpu/wgpu"
)

type shader struct {
	label  string
	source string
	refl   *reflection
	module *wgpu.ShaderModuleDescriptor

	pp       PreProcessor
	contract *Contract
	skipNaga bool
	decls    []Annotation
}

// Shader is a pre-processed, reflected WGSL module holding one vertex and one fragment entry
// point. It is CPU-side only; the renderer turns it into GPU objects.
type Shader interface {
	// Label returns the debug label the shader was compiled with.
	//
	// Returns:
	//   - string: the label
	Label() string

	// Source returns the pre-processed WGSL source.
	//
	// Returns:
	//   - string: the WGSL source handed to the device
	Source() string

	// VertexEntryPoint returns the name of the @vertex function.
	//
	// Returns:
	//   - string: the entry point name
	VertexEntryPoint() string

	// FragmentEntryPoint returns the name of the @fragment function.
	//
	// Returns:
	//   - string: the entry point name
	FragmentEntryPoint() string

	// BindGroupLayoutDescriptor returns the reflected layout for one group, or an empty descriptor.
	//
	// Parameters:
	//   - group: the bind group index
	//
	// Returns:
	//   - wgpu.BindGroupLayoutDescriptor: the layout descriptor
	BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor

	// BindGroupLayoutDescriptors returns every reflected layout keyed by group index.
	//
	// Returns:
	//   - map[int]wgpu.BindGroupLayoutDescriptor: the layout descriptors
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// Bindings returns every declared binding ordered by group then binding.
	//
	// Returns:
	//   - []Binding: the bindings
	Bindings() []Binding

	// Binding looks up one declared binding.
	//
	// Parameters:
	//   - group: the bind group index
	//   - binding: the binding index
	//
	// Returns:
	//   - Binding: the binding
	//   - bool: false if nothing is declared there
	Binding(group, binding int) (Binding, bool)

	// StructSize returns the host-shareable size of a struct declared in the module.
	//
	// Parameters:
	//   - name: the WGSL struct name
	//
	// Returns:
	//   - uint64: the size in bytes
	//   - bool: false if the struct is unknown
	StructSize(name string) (uint64, bool)

	// VertexLayouts returns the vertex buffer layouts consumed by the vertex entry point.
	// Full-screen shaders that derive positions from @builtin(vertex_index) return none.
	//
	// Returns:
	//   - []wgpu.VertexBufferLayout: the layouts in parameter order
	VertexLayouts() []wgpu.VertexBufferLayout

	// Module returns the descriptor used to create the GPU shader module.
	//
	// Returns:
	//   - *wgpu.ShaderModuleDescriptor: the module descriptor
	Module() *wgpu.ShaderModuleDescriptor

	// Declarations returns the @oxy:group directives expanded while pre-processing.
	//
	// Returns:
	//   - []Annotation: the declarations
	Declarations() []Annotation
}

var _ Shader = &shader{}

// NewShader pre-processes, validates and reflects WGSL source. Every failure wraps common.ErrCompile
// so callers can tell a broken shader apart from a broken device.
//
// Parameters:
//   - label: a debug label, usually the file path
//   - source: the WGSL source, which may contain @oxy: directives
//   - options: optional builder options such as WithContract
//
// Returns:
//   - Shader: the compiled shader
//   - error: a compile error
func NewShader(label, source string, options ...ShaderBuilderOption) (Shader, error) {
	s := &shader{label: label}
	for _, opt := range options {
		opt(s)
	}
	if s.pp == nil {
		s.pp = NewPreProcessor()
	}

	processed, err := s.pp.Process(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: pre-process: %v", common.ErrCompile, label, err)
	}
	s.source = processed
	s.decls = append([]Annotation(nil), s.pp.Declarations()...)

	s.refl, err = reflectSource(processed)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", common.ErrCompile, label, err)
	}
	if !s.skipNaga {
		if err := frontEndCheck(processed, s.refl.bindings); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", common.ErrCompile, label, err)
		}
	}
	if s.contract != nil {
		if err := s.contract.Check(s); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", common.ErrCompile, label, err)
		}
	}

	s.module = &wgpu.ShaderModuleDescriptor{
		Label:          label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: processed},
	}
	return s, nil
}

func (s *shader) Label() string {
	return s.label
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) VertexEntryPoint() string {
	return s.refl.vertexEntry
}

func (s *shader) FragmentEntryPoint() string {
	return s.refl.fragmentEntry
}

func (s *shader) BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor {
	return s.refl.layouts[group]
}

func (s *shader) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return s.refl.layouts
}

func (s *shader) Bindings() []Binding {
	return s.refl.bindings
}

func (s *shader) Binding(group, binding int) (Binding, bool) {
	for _, b := range s.refl.bindings {
		if b.Group == group && b.Binding == binding {
			return b, true
		}
	}
	return Binding{}, false
}

func (s *shader) StructSize(name string) (uint64, bool) {
	l, ok := s.refl.structSizes[name]
	return l.size, ok
}

func (s *shader) VertexLayouts() []wgpu.VertexBufferLayout {
	return s.refl.vertexLayouts
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	return s.module
}

func (s *shader) Declarations() []Annotation {
	return s.decls
}
