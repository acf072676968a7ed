package render_graph

import _ "embed"

var (
	// MeshShaderSource draws lit, tinted and optionally textured meshes.
	//go:embed assets/mesh.wgsl
	MeshShaderSource string

	// BlitShaderSource copies a texture to the full output with a single triangle, mixed toward the
	// frame fade color.
	//go:embed assets/blit.wgsl
	BlitShaderSource string
)
