package render_graph

import (
	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/bind_group_provider"
)

// PassNodeBuilderOption configures a PassNode during construction.
type PassNodeBuilderOption func(*passNode)

// WithPassClearColor sets the color the output target is cleared to before the pass draws.
// Post-process passes default to opaque black, effects to transparent black.
//
// Parameters:
//   - c: the clear color
//
// Returns:
//   - PassNodeBuilderOption: the option
func WithPassClearColor(c common.Color) PassNodeBuilderOption {
	return func(n *passNode) {
		n.clear = c
	}
}

// WithSharedSampler makes a post-process pass sample with the sampler at binding 0 of provider
// instead of creating its own.
//
// Parameters:
//   - provider: the provider holding the shared sampler
//
// Returns:
//   - PassNodeBuilderOption: the option
func WithSharedSampler(provider bind_group_provider.BindGroupProvider) PassNodeBuilderOption {
	return func(n *passNode) {
		n.sampler = provider
		n.ownsSampler = false
	}
}
