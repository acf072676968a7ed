package shader

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-fx/engine/camera"
	"github.com/Carmen-Shannon/oxy-fx/engine/frame"
	"github.com/Carmen-Shannon/oxy-fx/engine/light"
	"github.com/Carmen-Shannon/oxy-fx/engine/mesh"
	"github.com/Carmen-Shannon/oxy-fx/engine/overlay"
)

// registryEntry pairs an embedded WGSL struct source with the type name it declares.
type registryEntry struct {
	Source string
	Type   string
}

type preProcessor struct {
	structs      map[AnnotationArg]registryEntry
	declarations []Annotation
}

// PreProcessor expands @oxy: directives in WGSL source so shaders can pull in the engine's
// canonical uniform layouts instead of copying them by hand.
type PreProcessor interface {
	// Process replaces every directive in source with generated WGSL. Include directives are
	// replaced by the registered struct source; a struct is only injected once per call.
	// Group directives become @group/@binding declarations.
	//
	// Parameters:
	//   - source: the raw WGSL source
	//
	// Returns:
	//   - string: the expanded WGSL source
	//   - error: an error if a directive is malformed or references an unknown struct
	Process(source string) (string, error)

	// Declarations returns the group directives collected by the most recent Process call.
	//
	// Returns:
	//   - []Annotation: the declarations in source order
	Declarations() []Annotation
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor with the engine's struct registry:
// screen, world, camera, light, model, vertex3d, vertex2d and overlay.
//
// Parameters:
//   - options: optional builder options such as WithStruct
//
// Returns:
//   - PreProcessor: the pre-processor
func NewPreProcessor(options ...PreProcessorBuilderOption) PreProcessor {
	p := &preProcessor{
		structs: map[AnnotationArg]registryEntry{
			AnnotationArgScreen:   {Source: frame.GPUScreenUniformsSource, Type: "ScreenUniforms"},
			AnnotationArgWorld:    {Source: frame.GPUWorldUniformsSource, Type: "WorldUniforms"},
			AnnotationArgCamera:   {Source: camera.GPUCameraUniformSource, Type: "CameraUniform"},
			AnnotationArgLight:    {Source: light.GPULightUniformSource, Type: "LightUniform"},
			AnnotationArgFade:     {Source: frame.GPUFadeUniformSource, Type: "FadeUniform"},
			AnnotationArgModel:    {Source: mesh.GPUModelUniformSource, Type: "ModelUniform"},
			AnnotationArgVertex3D: {Source: mesh.GPUVertexSource, Type: "VertexInput"},
			AnnotationArgVertex2D: {Source: overlay.GPUVertexSource, Type: "OverlayVertex"},
			AnnotationArgOverlay:  {Source: overlay.GPUOverlayUniformsSource, Type: "OverlayUniforms"},
		},
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *preProcessor) Process(source string) (string, error) {
	p.declarations = nil
	included := make(map[AnnotationArg]bool)

	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))
	for i, line := range lines {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", err
		}
		if a == nil {
			out = append(out, line)
			continue
		}

		switch a.Type {
		case AnnotationTypeInclude:
			entry, ok := p.structs[a.Args[0]]
			if !ok {
				return "", fmt.Errorf("line %d: unknown struct %q", a.Line, a.Args[0])
			}
			if !included[a.Args[0]] {
				out = append(out, strings.TrimRight(entry.Source, "\n"))
				included[a.Args[0]] = true
			}
		case AnnotationTypeBindingGroup:
			decl, err := p.declaration(a)
			if err != nil {
				return "", err
			}
			out = append(out, decl)
			p.declarations = append(p.declarations, *a)
		}
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) declaration(a *Annotation) (string, error) {
	space, name, typ := a.Args[0], string(a.Args[1]), a.Args[2]
	if space == AnnotationArgHandle {
		return fmt.Sprintf("@group(%d) @binding(%d) var %s: %s;", a.Group, a.Binding, name, typ), nil
	}

	wgslType, err := p.resolveType(typ)
	if err != nil {
		return "", fmt.Errorf("line %d: %w", a.Line, err)
	}
	qualifier := "uniform"
	if space == AnnotationArgStorageRead {
		qualifier = "storage, read"
	}
	return fmt.Sprintf("@group(%d) @binding(%d) var<%s> %s: %s;", a.Group, a.Binding, qualifier, name, wgslType), nil
}

// resolveType maps a struct key, or array<key>, to its WGSL type name.
func (p *preProcessor) resolveType(key AnnotationArg) (string, error) {
	if inner, ok := strings.CutPrefix(string(key), "array<"); ok {
		elem, err := p.resolveType(AnnotationArg(strings.TrimSuffix(inner, ">")))
		if err != nil {
			return "", err
		}
		return "array<" + elem + ">", nil
	}
	entry, ok := p.structs[key]
	if !ok {
		return "", fmt.Errorf("unknown struct %q", key)
	}
	return entry.Type, nil
}

func (p *preProcessor) Declarations() []Annotation {
	return p.declarations
}
