package render_graph

import "github.com/Carmen-Shannon/oxy-fx/engine/renderer/pipeline"

// ArtifactSource yields the pipeline a pass draws with. hot_reload.WatchEntry implements it for
// watched files; StaticArtifact for sources compiled once.
type ArtifactSource interface {
	Artifact() pipeline.Pipeline
}

// StaticArtifact is an ArtifactSource that never changes.
type StaticArtifact struct {
	Pipeline pipeline.Pipeline
}

func (s StaticArtifact) Artifact() pipeline.Pipeline {
	return s.Pipeline
}
