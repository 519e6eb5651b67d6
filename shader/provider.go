package shader

// Define is a preprocessor definition injected ahead of a stage's
// source. An empty Value produces a bare #define.
type Define struct {
	Name  string
	Value string
}

// Provider supplies the source text for one named shader effect.
//
// Implementations are typically static: a material type embeds its
// GLSL and hands it out here. Sources may contain #pragma inject
// lines, resolved against the provider's snippets first and the global
// registry second, and #define lines, overridable per variant.
type Provider interface {
	// Name identifies the effect. It namespaces the variant cache, so
	// two providers must not share a name unless they share sources.
	Name() string

	// VertexSource returns the vertex stage source.
	VertexSource() string

	// FragmentSource returns the fragment stage source.
	FragmentSource() string

	// Defines returns definitions prepended to both stages, then the
	// vertex stage only, then the fragment stage only.
	Defines() (universal, vertex, fragment []Define)

	// Snippet resolves a named source fragment for #pragma inject.
	Snippet(name string) (string, bool)
}

// Static is a Provider built from literal source strings.
type Static struct {
	Effect   string
	Vertex   string
	Fragment string

	Universal     []Define
	VertexOnly    []Define
	FragmentOnly  []Define
	SourceSnippet map[string]string
}

func (s *Static) Name() string           { return s.Effect }
func (s *Static) VertexSource() string   { return s.Vertex }
func (s *Static) FragmentSource() string { return s.Fragment }

func (s *Static) Defines() (universal, vertex, fragment []Define) {
	return s.Universal, s.VertexOnly, s.FragmentOnly
}

func (s *Static) Snippet(name string) (string, bool) {
	src, ok := s.SourceSnippet[name]
	return src, ok
}
