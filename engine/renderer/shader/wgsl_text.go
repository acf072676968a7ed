package shader

import "strings"

// stripComments removes line (//) and nested block (/* */) comments from WGSL source.
// Newlines inside block comments are kept so line numbers stay stable.
func stripComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))

	depth := 0
	inLine := false
	for i := 0; i < len(source); i++ {
		c := source[i]
		var next byte
		if i+1 < len(source) {
			next = source[i+1]
		}

		switch {
		case inLine:
			if c == '\n' {
				inLine = false
				sb.WriteByte(c)
			}
		case c == '/' && next == '*':
			depth++
			i++
		case depth > 0 && c == '*' && next == '/':
			depth--
			i++
		case depth > 0:
			if c == '\n' {
				sb.WriteByte(c)
			}
		case c == '/' && next == '/':
			inLine = true
			i++
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// splitTopLevel splits s at sep when sep is not nested inside angle brackets or parentheses,
// so "array<T, 4>" and "@location(0)" survive intact.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<', '(':
			depth++
		case '>', ')':
			if depth > 0 {
				depth--
			}
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

// splitTypeParams splits "texture_2d<f32>" into ("texture_2d", "f32").
func splitTypeParams(typeName string) (string, string) {
	base, params, ok := strings.Cut(typeName, "<")
	if !ok {
		return typeName, ""
	}
	return base, strings.TrimSpace(strings.TrimSuffix(params, ">"))
}

// normalizeType collapses whitespace in a WGSL type and expands the predeclared aliases so
// "vec3f" and "vec3< f32 >" compare equal.
func normalizeType(typeName string) string {
	t := strings.Join(strings.Fields(typeName), "")
	if alias, ok := wgslTypeAliases[t]; ok {
		return alias
	}
	return t
}

var wgslTypeAliases = map[string]string{
	"vec2f":   "vec2<f32>",
	"vec3f":   "vec3<f32>",
	"vec4f":   "vec4<f32>",
	"vec2i":   "vec2<i32>",
	"vec3i":   "vec3<i32>",
	"vec4i":   "vec4<i32>",
	"vec2u":   "vec2<u32>",
	"vec3u":   "vec3<u32>",
	"vec4u":   "vec4<u32>",
	"mat2x2f": "mat2x2<f32>",
	"mat3x3f": "mat3x3<f32>",
	"mat4x4f": "mat4x4<f32>",
}
