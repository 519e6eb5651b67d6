package shader

import (
	"fmt"
	"sync"

	"github.com/gogpu/glcore/driver"
	"github.com/gogpu/glcore/internal/cache"
)

// defaultVariantLimit is the soft cap on memoized variants per
// (stage, effect). A pruned entry only forgets the memo; compiled
// objects stay alive until Teardown.
const defaultVariantLimit = 64

// Config configures a shader store.
type Config struct {
	// VariantLimit caps memoized variants per stage and effect.
	// 0 means a reasonable default.
	VariantLimit int
}

type stageKey struct {
	stage  driver.ShaderStage
	effect string
}

type programKey struct {
	vs, fs uint64
}

// Store compiles and links shader programs with two levels of caching:
// per-stage variant caches keyed by effect name and preprocessed
// variant key, and a program cache keyed by the linked shader pair.
// Compile and link failures are returned but never cached, so a fixed
// provider recompiles on the next request.
//
// Store is safe for concurrent use; the driver context under it is
// single-threaded, matching the stores in package resource.
type Store struct {
	mu  sync.Mutex
	ctx driver.Context

	limit    int
	globals  map[string]string
	variants map[stageKey]*cache.Cache[string, driver.Shader]
	programs map[programKey]driver.Program

	// all compiled and linked objects, kept for Teardown. Variant cache
	// pruning must not destroy objects a linked program still uses.
	shaders []driver.Shader
	linked  []driver.Program

	closed bool
}

// NewStore creates a shader store over the given context.
func NewStore(ctx driver.Context, cfg Config) *Store {
	limit := cfg.VariantLimit
	if limit <= 0 {
		limit = defaultVariantLimit
	}
	return &Store{
		ctx:      ctx,
		limit:    limit,
		globals:  make(map[string]string),
		variants: make(map[stageKey]*cache.Cache[string, driver.Shader]),
		programs: make(map[programKey]driver.Program),
	}
}

// RegisterSnippet adds source to the global snippet registry, shared by
// every provider. Provider snippets shadow global ones.
func (s *Store) RegisterSnippet(name, source string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.globals[name]; ok {
		slogger().Warn("global snippet replaced", "snippet", name)
	}
	s.globals[name] = source
}

// Program returns the linked program for the provider instantiated with
// the given variant values, compiling and linking only on cache misses.
func (s *Store) Program(p Provider, variant map[string]string) (driver.Program, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return driver.Program{}, ErrStoreClosed
	}

	universal, vertex, fragment := p.Defines()
	vdefs := make([]Define, 0, len(universal)+len(vertex))
	vdefs = append(append(vdefs, universal...), vertex...)
	fdefs := make([]Define, 0, len(universal)+len(fragment))
	fdefs = append(append(fdefs, universal...), fragment...)

	applied := make(map[string]bool, len(variant))
	vs, err := s.stageLocked(p, driver.StageVertex, p.VertexSource(), vdefs, variant, applied)
	if err != nil {
		return driver.Program{}, err
	}
	fs, err := s.stageLocked(p, driver.StageFragment, p.FragmentSource(), fdefs, variant, applied)
	if err != nil {
		return driver.Program{}, err
	}
	// A variant name neither stage declares is a caller bug; catch it
	// instead of silently compiling something else.
	for name, v := range variant {
		if !applied[name] {
			return driver.Program{}, fmt.Errorf("%w: %q: %s=%s", ErrUnknownVariant, p.Name(), name, v)
		}
	}

	key := programKey{vs: vs.ID, fs: fs.ID}
	if prog, ok := s.programs[key]; ok {
		return prog, nil
	}

	prog, err := s.ctx.LinkProgram(vs, fs)
	if err != nil {
		return driver.Program{}, fmt.Errorf("shader: link %q: %w", p.Name(), err)
	}
	s.programs[key] = prog
	s.linked = append(s.linked, prog)

	slogger().Debug("program linked", "effect", p.Name(), "programs", len(s.programs))
	return prog, nil
}

// stageLocked returns the compiled shader for one stage and variant,
// preprocessing to derive the cache key first.
func (s *Store) stageLocked(p Provider, stage driver.ShaderStage, source string, defines []Define, variant map[string]string, applied map[string]bool) (driver.Shader, error) {
	pp := newPreprocessor(p, s.globals, variant)
	expanded, key, err := pp.run(source, defines)
	if err != nil {
		return driver.Shader{}, fmt.Errorf("shader: preprocess %q %s: %w", p.Name(), stage, err)
	}
	for name := range pp.applied {
		applied[name] = true
	}

	sk := stageKey{stage: stage, effect: p.Name()}
	vc, ok := s.variants[sk]
	if !ok {
		vc = cache.New[string, driver.Shader](s.limit)
		s.variants[sk] = vc
	}
	if sh, ok := vc.Get(key); ok {
		return sh, nil
	}

	sh, err := s.ctx.CompileShader(stage, expanded)
	if err != nil {
		return driver.Shader{}, fmt.Errorf("shader: compile %q %s [%s]: %w", p.Name(), stage, key, err)
	}
	vc.Set(key, sh)
	s.shaders = append(s.shaders, sh)

	slogger().Debug("shader compiled", "effect", p.Name(), "stage", stage, "variant", key)
	return sh, nil
}

// Use resolves the program and makes it current.
func (s *Store) Use(p Provider, variant map[string]string) (driver.Program, error) {
	prog, err := s.Program(p, variant)
	if err != nil {
		return driver.Program{}, err
	}
	s.ctx.UseProgram(prog)
	return prog, nil
}

// ClearProgram makes no program current.
func (s *Store) ClearProgram() {
	s.ctx.UseProgram(driver.Program{})
}

// ProgramCount returns how many distinct programs have been linked.
func (s *Store) ProgramCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.programs)
}

// Teardown destroys every compiled and linked object and rejects
// further use.
func (s *Store) Teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.ctx.UseProgram(driver.Program{})
	for _, prog := range s.linked {
		s.ctx.DeleteProgram(prog)
	}
	for _, sh := range s.shaders {
		s.ctx.DeleteShader(sh)
	}
	s.variants = nil
	s.programs = nil
	s.linked = nil
	s.shaders = nil
	s.globals = nil
	s.closed = true
}
