package shader

import (
	"fmt"
	"strings"
)

const maxInjectDepth = 8

// preprocessor expands one stage's source: stage defines are prepended
// after the #version line, #pragma inject lines are spliced, and
// variant values override matching #define defaults.
//
// The variant key is built as defines are encountered, in source line
// order, so two variants that differ only in map iteration order
// produce the same key.
type preprocessor struct {
	provider Provider
	globals  map[string]string
	variant  map[string]string

	out      strings.Builder
	keyParts []string
	defined  map[string]bool
	injected map[string]bool
	applied  map[string]bool
}

func newPreprocessor(p Provider, globals map[string]string, variant map[string]string) *preprocessor {
	return &preprocessor{
		provider: p,
		globals:  globals,
		variant:  variant,
		defined:  make(map[string]bool),
		injected: make(map[string]bool),
		applied:  make(map[string]bool),
	}
}

// run expands source with the given prepended defines and returns the
// final text and the variant cache key.
func (pp *preprocessor) run(source string, defines []Define) (string, string, error) {
	lines := strings.Split(source, "\n")

	// Stage defines go after the #version directive when present; a
	// define before it would be rejected by real compilers.
	at := 0
	if len(lines) > 0 && strings.HasPrefix(strings.TrimSpace(lines[0]), "#version") {
		pp.out.WriteString(lines[0])
		pp.out.WriteByte('\n')
		at = 1
	}
	for _, def := range defines {
		if err := pp.define(def.Name, def.Value); err != nil {
			return "", "", err
		}
	}
	if err := pp.splice(lines[at:], 0); err != nil {
		return "", "", err
	}
	return pp.out.String(), strings.Join(pp.keyParts, ","), nil
}

func (pp *preprocessor) splice(lines []string, depth int) error {
	if depth > maxInjectDepth {
		return fmt.Errorf("%w: inject nesting exceeds %d", ErrUnknownSnippet, maxInjectDepth)
	}
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "#pragma inject"):
			name := strings.TrimSpace(strings.TrimPrefix(trimmed, "#pragma inject"))
			if name == "" {
				return fmt.Errorf("%w: #pragma inject without a name", ErrUnknownSnippet)
			}
			if pp.injected[name] {
				slogger().Warn("snippet injected twice, dropping", "snippet", name)
				continue
			}
			pp.injected[name] = true
			src, err := pp.lookup(name)
			if err != nil {
				return err
			}
			if err := pp.splice(strings.Split(src, "\n"), depth+1); err != nil {
				return err
			}

		case strings.HasPrefix(trimmed, "#define"):
			name, value := parseDefine(trimmed)
			if name == "" {
				pp.out.WriteString(line)
				pp.out.WriteByte('\n')
				continue
			}
			if err := pp.define(name, value); err != nil {
				return err
			}

		default:
			pp.out.WriteString(line)
			pp.out.WriteByte('\n')
		}
	}
	return nil
}

// define emits one #define, substituting the variant value when the
// name is overridden and falling back to the literal default otherwise.
// A redefinition is dropped with a warning; the first occurrence wins.
func (pp *preprocessor) define(name, value string) error {
	if pp.defined[name] {
		slogger().Warn("duplicate define, dropping", "define", name)
		return nil
	}
	pp.defined[name] = true

	if v, ok := pp.variant[name]; ok {
		value = v
		pp.applied[name] = true
	}
	pp.keyParts = append(pp.keyParts, name+"="+value)

	if value == "" {
		fmt.Fprintf(&pp.out, "#define %s\n", name)
	} else {
		fmt.Fprintf(&pp.out, "#define %s %s\n", name, value)
	}
	return nil
}

func (pp *preprocessor) lookup(name string) (string, error) {
	if pp.provider != nil {
		if src, ok := pp.provider.Snippet(name); ok {
			return src, nil
		}
	}
	if src, ok := pp.globals[name]; ok {
		return src, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSnippet, name)
}

// parseDefine splits a #define line into name and raw value. Returns an
// empty name for function-like macros, which pass through untouched.
func parseDefine(line string) (name, value string) {
	rest := strings.TrimSpace(strings.TrimPrefix(line, "#define"))
	if rest == "" {
		return "", ""
	}
	i := strings.IndexAny(rest, " \t")
	if i < 0 {
		name = rest
	} else {
		name, value = rest[:i], strings.TrimSpace(rest[i:])
	}
	if strings.Contains(name, "(") {
		return "", ""
	}
	return name, value
}
