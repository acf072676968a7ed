package shader

import (
	"fmt"
	"strconv"
	"strings"
)

// annotationPrefix marks an Oxy pre-processor directive inside a WGSL line comment, e.g.
//
//	//@oxy:include screen
//	//@oxy:group 0 0 uniform frame screen
const annotationPrefix = "@oxy:"

// AnnotationType is the directive name following the @oxy: prefix.
type AnnotationType string

const (
	// AnnotationTypeInclude injects a registered struct source in place of the directive.
	AnnotationTypeInclude AnnotationType = "include"

	// AnnotationTypeBindingGroup generates a @group/@binding variable declaration.
	AnnotationTypeBindingGroup AnnotationType = "group"
)

// AnnotationArg is a single whitespace-separated directive argument.
type AnnotationArg string

// Struct keys available to include and group directives.
const (
	AnnotationArgScreen   AnnotationArg = "screen"
	AnnotationArgWorld    AnnotationArg = "world"
	AnnotationArgCamera   AnnotationArg = "camera"
	AnnotationArgModel    AnnotationArg = "model"
	AnnotationArgVertex3D AnnotationArg = "vertex3d"
	AnnotationArgVertex2D AnnotationArg = "vertex2d"
	AnnotationArgOverlay  AnnotationArg = "overlay"
	AnnotationArgLight    AnnotationArg = "light"
	AnnotationArgFade     AnnotationArg = "fade"
)

// Address spaces accepted by group directives. Handle bindings (textures and samplers) take the
// WGSL type verbatim as their last argument.
const (
	AnnotationArgUniform     AnnotationArg = "uniform"
	AnnotationArgStorageRead AnnotationArg = "storage_read"
	AnnotationArgHandle      AnnotationArg = "handle"
)

// Annotation is a parsed @oxy: directive.
type Annotation struct {
	Type AnnotationType
	// Args holds the directive arguments after any numeric group/binding pair.
	// include: [struct]; group: [address space, variable name, type].
	Args []AnnotationArg
	Line int
	// Group and Binding are set for group directives.
	Group   int
	Binding int
}

// parseAnnotation returns nil when the line carries no directive.
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "//") {
		return nil, nil
	}
	_, body, ok := strings.Cut(trimmed, annotationPrefix)
	if !ok {
		return nil, nil
	}

	args := strings.Fields(body)
	if len(args) == 0 {
		return nil, fmt.Errorf("line %d: empty @oxy annotation", lineNum)
	}

	switch AnnotationType(args[0]) {
	case AnnotationTypeInclude:
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: @oxy:include takes exactly one struct key", lineNum)
		}
		return &Annotation{Type: AnnotationTypeInclude, Args: []AnnotationArg{AnnotationArg(args[1])}, Line: lineNum}, nil

	case AnnotationTypeBindingGroup:
		if len(args) != 6 {
			return nil, fmt.Errorf("line %d: @oxy:group takes group, binding, address space, name and type", lineNum)
		}
		group, err := strconv.Atoi(args[1])
		if err != nil || group < 0 {
			return nil, fmt.Errorf("line %d: invalid group %q", lineNum, args[1])
		}
		binding, err := strconv.Atoi(args[2])
		if err != nil || binding < 0 {
			return nil, fmt.Errorf("line %d: invalid binding %q", lineNum, args[2])
		}
		switch AnnotationArg(args[3]) {
		case AnnotationArgUniform, AnnotationArgStorageRead, AnnotationArgHandle:
		default:
			return nil, fmt.Errorf("line %d: unknown address space %q", lineNum, args[3])
		}
		return &Annotation{
			Type:    AnnotationTypeBindingGroup,
			Args:    []AnnotationArg{AnnotationArg(args[3]), AnnotationArg(args[4]), AnnotationArg(args[5])},
			Line:    lineNum,
			Group:   group,
			Binding: binding,
		}, nil

	default:
		return nil, fmt.Errorf("line %d: unknown annotation %q", lineNum, args[0])
	}
}
