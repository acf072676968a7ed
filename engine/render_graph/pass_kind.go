package render_graph

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-fx/engine/frame"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/shader"
)

// PassKind is the closed set of full-screen pass shapes. The kind fixes the uniform layout and the
// bind group a pass expects, and never changes after the pass is built.
type PassKind int

const (
	// ScreenEffect receives ScreenUniforms and draws without reading the previous target.
	ScreenEffect PassKind = iota
	// WorldEffect receives WorldUniforms and draws without reading the previous target.
	WorldEffect
	// ScreenPostProcess receives ScreenUniforms and samples the previous target.
	ScreenPostProcess
	// WorldPostProcess receives WorldUniforms and samples the previous target.
	WorldPostProcess
)

func (k PassKind) String() string {
	switch k {
	case ScreenEffect:
		return "screen effect"
	case WorldEffect:
		return "world effect"
	case ScreenPostProcess:
		return "screen post-process"
	case WorldPostProcess:
		return "world post-process"
	default:
		return fmt.Sprintf("PassKind(%d)", int(k))
	}
}

// ParsePassKind maps configuration names ("effect", "world_effect", "post_process",
// "world_post_process") to a PassKind.
//
// Parameters:
//   - s: the kind name, case-insensitive, with '-' or '_' separators
//
// Returns:
//   - PassKind: the kind
//   - error: an error for an unknown name
func ParsePassKind(s string) (PassKind, error) {
	norm := strings.NewReplacer("-", "_", " ", "_").Replace(strings.ToLower(strings.TrimSpace(s)))
	switch norm {
	case "effect", "screen_effect":
		return ScreenEffect, nil
	case "world_effect":
		return WorldEffect, nil
	case "post_process", "screen_post_process":
		return ScreenPostProcess, nil
	case "world_post_process":
		return WorldPostProcess, nil
	default:
		return 0, fmt.Errorf("unknown pass kind %q", s)
	}
}

// IsPostProcess reports whether passes of this kind sample the previous target.
func (k PassKind) IsPostProcess() bool {
	return k == ScreenPostProcess || k == WorldPostProcess
}

// IsWorld reports whether passes of this kind receive camera state.
func (k PassKind) IsWorld() bool {
	return k == WorldEffect || k == WorldPostProcess
}

// UniformSize returns the byte size of the uniform block at @group(0) @binding(0).
func (k PassKind) UniformSize() uint64 {
	if k.IsWorld() {
		var u frame.WorldUniforms
		return uint64(u.Size())
	}
	var u frame.ScreenUniforms
	return uint64(u.Size())
}

func (k PassKind) uniformType() string {
	if k.IsWorld() {
		return "WorldUniforms"
	}
	return "ScreenUniforms"
}

// Contract returns the bindings a shader of this kind must declare: the uniform block at (0,0) and,
// for post-process kinds, a texture_2d<f32> at (0,1) and a sampler at (0,2). The uniform is checked
// by size, so a shader may name its struct freely as long as the layout matches.
func (k PassKind) Contract() shader.Contract {
	c := shader.Contract{
		Name: k.String(),
		Requirements: []shader.Requirement{
			{Group: 0, Binding: 0, Kind: shader.BindingKindUniform, Size: k.UniformSize()},
		},
	}
	if k.IsPostProcess() {
		c.Requirements = append(c.Requirements,
			shader.Requirement{Group: 0, Binding: 1, Kind: shader.BindingKindTexture, Type: "texture_2d<f32>"},
			shader.Requirement{Group: 0, Binding: 2, Kind: shader.BindingKindSampler},
		)
	}
	return c
}
