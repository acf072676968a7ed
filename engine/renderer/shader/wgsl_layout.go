package shader

import (
	"strconv"
	"strings"
)

// typeLayout is the byte size and alignment of a host-shareable WGSL type.
type typeLayout struct {
	size  uint64
	align uint64
}

// primitiveLayouts holds size and alignment for scalars, vectors and matrices.
// Reference: https://www.w3.org/TR/WGSL/#alignment-and-size
var primitiveLayouts = map[string]typeLayout{
	"f32":  {4, 4},
	"i32":  {4, 4},
	"u32":  {4, 4},
	"f16":  {2, 2},
	"bool": {4, 4},

	"vec2<f32>": {8, 8},
	"vec3<f32>": {12, 16},
	"vec4<f32>": {16, 16},
	"vec2<i32>": {8, 8},
	"vec3<i32>": {12, 16},
	"vec4<i32>": {16, 16},
	"vec2<u32>": {8, 8},
	"vec3<u32>": {12, 16},
	"vec4<u32>": {16, 16},
	"vec2<f16>": {4, 4},
	"vec4<f16>": {8, 8},

	"mat2x2<f32>": {16, 8},
	"mat3x3<f32>": {48, 16},
	"mat4x3<f32>": {64, 16},
	"mat4x4<f32>": {64, 16},

	"atomic<u32>": {4, 4},
	"atomic<i32>": {4, 4},
}

func alignUp(align, v uint64) uint64 {
	if align == 0 {
		return v
	}
	return (v + align - 1) &^ (align - 1)
}

// layoutOf resolves a type against the primitives and the structs resolved so far. Runtime-sized
// arrays resolve to a single element stride.
func layoutOf(typeName string, structs map[string]typeLayout) (typeLayout, bool) {
	t := normalizeType(typeName)
	if l, ok := primitiveLayouts[t]; ok {
		return l, true
	}
	if l, ok := structs[t]; ok {
		return l, true
	}

	inner, ok := strings.CutPrefix(t, "array<")
	if !ok {
		return typeLayout{}, false
	}
	parts := splitTopLevel(strings.TrimSuffix(inner, ">"), ',')
	elem, ok := layoutOf(parts[0], structs)
	if !ok {
		return typeLayout{}, false
	}
	stride := alignUp(elem.align, elem.size)
	if len(parts) == 1 {
		return typeLayout{stride, elem.align}, true
	}
	n, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil {
		return typeLayout{}, false
	}
	return typeLayout{n * stride, elem.align}, true
}

// structLayout lays out fields in declaration order: each field starts at its alignment and
// the struct size rounds up to the largest field alignment.
func structLayout(s wgslStruct, structs map[string]typeLayout) (typeLayout, bool) {
	var offset uint64
	align := uint64(1)
	for _, f := range s.fields {
		if f.builtin {
			continue
		}
		l, ok := layoutOf(f.typeName, structs)
		if !ok {
			return typeLayout{}, false
		}
		offset = alignUp(l.align, offset) + l.size
		align = max(align, l.align)
	}
	return typeLayout{alignUp(align, offset), align}, true
}

// resolveStructLayouts resolves every struct, repeating until nested struct fields settle.
func resolveStructLayouts(structs []wgslStruct) map[string]typeLayout {
	resolved := make(map[string]typeLayout, len(structs))
	pending := structs
	for len(pending) > 0 {
		var unresolved []wgslStruct
		for _, s := range pending {
			if l, ok := structLayout(s, resolved); ok {
				resolved[s.name] = l
			} else {
				unresolved = append(unresolved, s)
			}
		}
		if len(unresolved) == len(pending) {
			break
		}
		pending = unresolved
	}
	return resolved
}
