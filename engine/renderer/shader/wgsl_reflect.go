package shader

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// BindingKind classifies a resource binding declared by a shader.
type BindingKind int

const (
	BindingKindUnknown BindingKind = iota
	BindingKindUniform
	BindingKindStorage
	BindingKindReadOnlyStorage
	BindingKindTexture
	BindingKindDepthTexture
	BindingKindSampler
	BindingKindComparisonSampler
)

func (k BindingKind) String() string {
	switch k {
	case BindingKindUniform:
		return "uniform"
	case BindingKindStorage:
		return "storage"
	case BindingKindReadOnlyStorage:
		return "read-only storage"
	case BindingKindTexture:
		return "texture"
	case BindingKindDepthTexture:
		return "depth texture"
	case BindingKindSampler:
		return "sampler"
	case BindingKindComparisonSampler:
		return "comparison sampler"
	default:
		return "unknown"
	}
}

// Binding describes one @group/@binding resource declaration.
type Binding struct {
	Group   int
	Binding int
	Name    string
	// Type is the normalized WGSL type, e.g. "ScreenUniforms" or "texture_2d<f32>".
	Type string
	Kind BindingKind
	// Size is the host-shareable size of buffer bindings, zero otherwise.
	Size uint64
}

type wgslField struct {
	name     string
	typeName string
	location int
	builtin  bool
}

type wgslStruct struct {
	name   string
	fields []wgslField
}

// reflection is everything extracted from a pre-processed WGSL module.
type reflection struct {
	vertexEntry   string
	fragmentEntry string
	bindings      []Binding
	layouts       map[int]wgpu.BindGroupLayoutDescriptor
	vertexLayouts []wgpu.VertexBufferLayout
	structSizes   map[string]typeLayout
}

var (
	structRegex   = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)
	locationRegex = regexp.MustCompile(`@location\((\d+)\)`)
	builtinRegex  = regexp.MustCompile(`@builtin\(\w+\)`)
	fieldRegex    = regexp.MustCompile(`^(?:@\w+\([^)]*\)\s*)*(\w+)\s*:\s*(.+)$`)
	entryRegex    = regexp.MustCompile(`@(vertex|fragment)\s+fn\s+(\w+)\s*\(`)
	bindingRegex  = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)
)

var vertexFormats = map[string]struct {
	format wgpu.VertexFormat
	size   uint64
}{
	"f32":       {wgpu.VertexFormatFloat32, 4},
	"vec2<f32>": {wgpu.VertexFormatFloat32x2, 8},
	"vec3<f32>": {wgpu.VertexFormatFloat32x3, 12},
	"vec4<f32>": {wgpu.VertexFormatFloat32x4, 16},
	"i32":       {wgpu.VertexFormatSint32, 4},
	"vec2<i32>": {wgpu.VertexFormatSint32x2, 8},
	"vec4<i32>": {wgpu.VertexFormatSint32x4, 16},
	"u32":       {wgpu.VertexFormatUint32, 4},
	"vec2<u32>": {wgpu.VertexFormatUint32x2, 8},
	"vec4<u32>": {wgpu.VertexFormatUint32x4, 16},
}

var textureDimensions = map[string]wgpu.TextureViewDimension{
	"texture_1d":         wgpu.TextureViewDimension1D,
	"texture_2d":         wgpu.TextureViewDimension2D,
	"texture_2d_array":   wgpu.TextureViewDimension2DArray,
	"texture_3d":         wgpu.TextureViewDimension3D,
	"texture_cube":       wgpu.TextureViewDimensionCube,
	"texture_cube_array": wgpu.TextureViewDimensionCubeArray,
	"texture_depth_2d":   wgpu.TextureViewDimension2D,
	"texture_depth_cube": wgpu.TextureViewDimensionCube,
}

var sampleTypes = map[string]wgpu.TextureSampleType{
	"f32": wgpu.TextureSampleTypeFloat,
	"i32": wgpu.TextureSampleTypeSint,
	"u32": wgpu.TextureSampleTypeUint,
}

// reflectSource extracts entry points, bindings and vertex inputs from WGSL source. Both a vertex and a
// fragment entry point are required. Every binding is visible to both stages.
func reflectSource(source string) (*reflection, error) {
	cleaned := stripComments(source)
	structs := parseStructs(cleaned)
	r := &reflection{
		layouts:     make(map[int]wgpu.BindGroupLayoutDescriptor),
		structSizes: resolveStructLayouts(structs),
	}

	var vertexParams string
	for _, loc := range entryRegex.FindAllStringSubmatchIndex(cleaned, -1) {
		stage, name := cleaned[loc[2]:loc[3]], cleaned[loc[4]:loc[5]]
		switch stage {
		case "vertex":
			if r.vertexEntry == "" {
				r.vertexEntry, vertexParams = name, parenBody(cleaned[loc[1]:])
			}
		case "fragment":
			if r.fragmentEntry == "" {
				r.fragmentEntry = name
			}
		}
	}
	if r.vertexEntry == "" {
		return nil, fmt.Errorf("no @vertex entry point")
	}
	if r.fragmentEntry == "" {
		return nil, fmt.Errorf("no @fragment entry point")
	}

	layouts, err := vertexInputLayouts(vertexParams, structs)
	if err != nil {
		return nil, err
	}
	r.vertexLayouts = layouts

	entries := make(map[int][]wgpu.BindGroupLayoutEntry)
	seen := make(map[[2]int]string)
	for _, m := range bindingRegex.FindAllStringSubmatch(cleaned, -1) {
		group, _ := strconv.Atoi(m[1])
		binding, _ := strconv.Atoi(m[2])
		b := Binding{
			Group:   group,
			Binding: binding,
			Name:    m[4],
			Type:    normalizeType(m[5]),
		}
		if prev, dup := seen[[2]int{group, binding}]; dup {
			return nil, fmt.Errorf("@group(%d) @binding(%d) declared twice (%s, %s)", group, binding, prev, b.Name)
		}
		seen[[2]int{group, binding}] = b.Name

		entry, err := classifyBinding(&b, strings.TrimSpace(m[3]), r.structSizes)
		if err != nil {
			return nil, err
		}
		r.bindings = append(r.bindings, b)
		entries[group] = append(entries[group], entry)
	}

	for g, es := range entries {
		sort.Slice(es, func(i, j int) bool { return es[i].Binding < es[j].Binding })
		r.layouts[g] = wgpu.BindGroupLayoutDescriptor{Entries: es}
	}
	sort.Slice(r.bindings, func(i, j int) bool {
		if r.bindings[i].Group != r.bindings[j].Group {
			return r.bindings[i].Group < r.bindings[j].Group
		}
		return r.bindings[i].Binding < r.bindings[j].Binding
	})
	return r, nil
}

// parenBody returns the text up to the parenthesis that closes an already opened one.
func parenBody(s string) string {
	depth := 1
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return s[:i]
			}
		}
	}
	return s
}

func parseStructs(source string) []wgslStruct {
	var out []wgslStruct
	for _, m := range structRegex.FindAllStringSubmatch(source, -1) {
		s := wgslStruct{name: m[1]}
		for _, raw := range splitTopLevel(m[2], ',') {
			line := strings.Join(strings.Fields(raw), " ")
			fm := fieldRegex.FindStringSubmatch(line)
			if fm == nil {
				continue
			}
			f := wgslField{
				name:     fm[1],
				typeName: normalizeType(fm[2]),
				location: -1,
				builtin:  builtinRegex.MatchString(line),
			}
			if lm := locationRegex.FindStringSubmatch(line); lm != nil {
				f.location, _ = strconv.Atoi(lm[1])
			}
			s.fields = append(s.fields, f)
		}
		out = append(out, s)
	}
	return out
}

// vertexInputLayouts builds one interleaved vertex buffer layout for every struct parameter of the
// vertex entry point that carries @location fields. Builtin-only parameters such as
// @builtin(vertex_index) need no buffer.
func vertexInputLayouts(params string, structs []wgslStruct) ([]wgpu.VertexBufferLayout, error) {
	byName := make(map[string]wgslStruct, len(structs))
	for _, s := range structs {
		byName[s.name] = s
	}

	var out []wgpu.VertexBufferLayout
	for _, p := range splitTopLevel(params, ',') {
		p = strings.TrimSpace(p)
		if p == "" || builtinRegex.MatchString(p) {
			continue
		}
		fm := fieldRegex.FindStringSubmatch(p)
		if fm == nil {
			continue
		}
		s, ok := byName[normalizeType(fm[2])]
		if !ok {
			return nil, fmt.Errorf("vertex input %q: loose @location parameters are not supported, use a struct", fm[1])
		}

		var attrs []wgpu.VertexAttribute
		var offset uint64
		for _, f := range s.fields {
			if f.builtin || f.location < 0 {
				continue
			}
			vf, ok := vertexFormats[f.typeName]
			if !ok {
				return nil, fmt.Errorf("vertex input %s.%s: unsupported vertex type %s", s.name, f.name, f.typeName)
			}
			attrs = append(attrs, wgpu.VertexAttribute{
				Format:         vf.format,
				Offset:         offset,
				ShaderLocation: uint32(f.location),
			})
			offset += vf.size
		}
		if len(attrs) == 0 {
			continue
		}
		out = append(out, wgpu.VertexBufferLayout{
			ArrayStride: offset,
			StepMode:    wgpu.VertexStepModeVertex,
			Attributes:  attrs,
		})
	}
	return out, nil
}

// classifyBinding fills in the kind and size of b and returns its layout entry.
func classifyBinding(b *Binding, addressSpace string, structs map[string]typeLayout) (wgpu.BindGroupLayoutEntry, error) {
	entry := wgpu.BindGroupLayoutEntry{
		Binding:    uint32(b.Binding),
		Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
	}

	if addressSpace != "" {
		switch {
		case addressSpace == "uniform":
			b.Kind = BindingKindUniform
			entry.Buffer.Type = wgpu.BufferBindingTypeUniform
		case strings.HasPrefix(addressSpace, "storage") && strings.Contains(addressSpace, "read_write"):
			b.Kind = BindingKindStorage
			entry.Buffer.Type = wgpu.BufferBindingTypeStorage
			entry.Visibility = wgpu.ShaderStageFragment
		case strings.HasPrefix(addressSpace, "storage"):
			b.Kind = BindingKindReadOnlyStorage
			entry.Buffer.Type = wgpu.BufferBindingTypeReadOnlyStorage
		default:
			return entry, fmt.Errorf("%s: unsupported address space %q", b.Name, addressSpace)
		}
		l, ok := layoutOf(b.Type, structs)
		if !ok {
			return entry, fmt.Errorf("%s: cannot resolve the layout of %s", b.Name, b.Type)
		}
		b.Size = l.size
		entry.Buffer.MinBindingSize = l.size
		return entry, nil
	}

	base, param := splitTypeParams(b.Type)
	switch {
	case base == "sampler":
		b.Kind = BindingKindSampler
		entry.Sampler.Type = wgpu.SamplerBindingTypeFiltering
	case base == "sampler_comparison":
		b.Kind = BindingKindComparisonSampler
		entry.Sampler.Type = wgpu.SamplerBindingTypeComparison
	case strings.HasPrefix(base, "texture_depth_"):
		b.Kind = BindingKindDepthTexture
		entry.Texture.SampleType = wgpu.TextureSampleTypeDepth
		entry.Texture.ViewDimension = textureDimensions[base]
	case strings.HasPrefix(base, "texture_"):
		dim, ok := textureDimensions[base]
		if !ok {
			return entry, fmt.Errorf("%s: unsupported texture type %s", b.Name, b.Type)
		}
		b.Kind = BindingKindTexture
		entry.Texture.ViewDimension = dim
		entry.Texture.SampleType = sampleTypes[param]
	default:
		return entry, fmt.Errorf("%s: unsupported handle type %s", b.Name, b.Type)
	}
	return entry, nil
}
