package shader

import (
	"fmt"

	"github.com/gogpu/naga"
)

// frontEndCheck parses and lowers the WGSL module on the CPU so syntax and type errors surface as
// compile errors with source positions instead of device validation failures. It also confirms
// that every reflected binding names a global the module actually declares.
func frontEndCheck(source string, bindings []Binding) error {
	ast, err := naga.Parse(source)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	module, err := naga.Lower(ast)
	if err != nil {
		return fmt.Errorf("lower: %w", err)
	}
	if len(module.EntryPoints) < 2 {
		return fmt.Errorf("expected vertex and fragment entry points, found %d", len(module.EntryPoints))
	}

	globals := make(map[string]struct{}, len(module.GlobalVariables))
	for _, gv := range module.GlobalVariables {
		globals[gv.Name] = struct{}{}
	}
	for _, b := range bindings {
		if _, ok := globals[b.Name]; !ok {
			return fmt.Errorf("binding %s at @group(%d) @binding(%d) not found in lowered module", b.Name, b.Group, b.Binding)
		}
	}
	return nil
}
