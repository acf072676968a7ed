package shader

import (
	"fmt"
	"strings"
)

// Requirement is one binding a shader must declare to satisfy a Contract.
type Requirement struct {
	Group   int
	Binding int
	Kind    BindingKind
	// Type, when set, is the exact normalized WGSL type required (e.g. "texture_2d<f32>").
	Type string
	// Size, when non-zero, is the exact byte size a buffer binding must have.
	Size uint64
}

// Contract is the set of bindings the host provides to a family of shaders. A shader that omits a
// required binding, or declares one with a different kind, type or size, fails compilation.
// Bindings outside the contract are rejected too, because the host would have nothing to bind.
type Contract struct {
	Name         string
	Requirements []Requirement
	// AllowExtra permits bindings the contract does not list.
	AllowExtra bool
}

// Check validates the shader's reflected bindings against the contract.
//
// Parameters:
//   - s: the reflected shader
//
// Returns:
//   - error: a description of every violation, or nil
func (c Contract) Check(s Shader) error {
	var problems []string
	declared := make(map[[2]int]Binding)
	for _, b := range s.Bindings() {
		declared[[2]int{b.Group, b.Binding}] = b
	}

	required := make(map[[2]int]struct{}, len(c.Requirements))
	for _, r := range c.Requirements {
		key := [2]int{r.Group, r.Binding}
		required[key] = struct{}{}

		b, ok := declared[key]
		switch {
		case !ok:
			problems = append(problems, fmt.Sprintf("missing %s at @group(%d) @binding(%d)", r.Kind, r.Group, r.Binding))
		case b.Kind != r.Kind:
			problems = append(problems, fmt.Sprintf("%s at @group(%d) @binding(%d) is a %s, want %s", b.Name, r.Group, r.Binding, b.Kind, r.Kind))
		case r.Type != "" && b.Type != r.Type:
			problems = append(problems, fmt.Sprintf("%s at @group(%d) @binding(%d) has type %s, want %s", b.Name, r.Group, r.Binding, b.Type, r.Type))
		case r.Size != 0 && b.Size != r.Size:
			problems = append(problems, fmt.Sprintf("%s at @group(%d) @binding(%d) is %d bytes, want %d", b.Name, r.Group, r.Binding, b.Size, r.Size))
		}
	}

	if !c.AllowExtra {
		for key, b := range declared {
			if _, ok := required[key]; !ok {
				problems = append(problems, fmt.Sprintf("unexpected binding %s at @group(%d) @binding(%d)", b.Name, key[0], key[1]))
			}
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%s contract: %s", c.Name, strings.Join(problems, "; "))
}
