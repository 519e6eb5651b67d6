package shader

import (
	"errors"
	"strings"
	"testing"
)

func TestPreprocessKeepsVersionFirst(t *testing.T) {
	pp := newPreprocessor(nil, nil, nil)
	out, _, err := pp.run("#version 300 es\nvoid main() {}\n", []Define{{Name: "FOO", Value: "1"}})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	lines := strings.Split(out, "\n")
	if lines[0] != "#version 300 es" {
		t.Fatalf("first line = %q", lines[0])
	}
	if lines[1] != "#define FOO 1" {
		t.Fatalf("second line = %q", lines[1])
	}
}

func TestPreprocessVariantOverridesDefault(t *testing.T) {
	src := "#define LIGHTS 4\n#define SHADOWS\nvoid main() {}\n"

	tests := []struct {
		name    string
		variant map[string]string
		want    string
		wantKey string
	}{
		{
			"defaults",
			nil,
			"#define LIGHTS 4",
			"LIGHTS=4,SHADOWS=",
		},
		{
			"override",
			map[string]string{"LIGHTS": "8"},
			"#define LIGHTS 8",
			"LIGHTS=8,SHADOWS=",
		},
		{
			"override flag",
			map[string]string{"SHADOWS": "1"},
			"#define SHADOWS 1",
			"LIGHTS=4,SHADOWS=1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pp := newPreprocessor(nil, nil, tt.variant)
			out, key, err := pp.run(src, nil)
			if err != nil {
				t.Fatalf("run: %v", err)
			}
			if !strings.Contains(out, tt.want) {
				t.Fatalf("output missing %q:\n%s", tt.want, out)
			}
			if key != tt.wantKey {
				t.Fatalf("key = %q, want %q", key, tt.wantKey)
			}
		})
	}
}

func TestPreprocessKeyFollowsSourceOrder(t *testing.T) {
	src := "#define B 2\n#define A 1\n"
	pp := newPreprocessor(nil, nil, map[string]string{"A": "9", "B": "9"})
	_, key, err := pp.run(src, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if key != "B=9,A=9" {
		t.Fatalf("key = %q, want source order B then A", key)
	}
}

func TestPreprocessInjectResolution(t *testing.T) {
	p := &Static{
		Effect:        "fx",
		SourceSnippet: map[string]string{"noise": "float noise() { return 0.5; }"},
	}
	globals := map[string]string{
		"noise": "float noise() { return 0.0; }",
		"remap": "float remap(float x) { return x; }",
	}

	pp := newPreprocessor(p, globals, nil)
	out, _, err := pp.run("#pragma inject noise\n#pragma inject remap\nvoid main() {}\n", nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	// Provider shadows the global registry.
	if !strings.Contains(out, "return 0.5") {
		t.Fatalf("provider snippet not used:\n%s", out)
	}
	if !strings.Contains(out, "remap") {
		t.Fatalf("global snippet missing:\n%s", out)
	}
}

func TestPreprocessDuplicateInjectDropped(t *testing.T) {
	globals := map[string]string{"noise": "float noise();"}
	pp := newPreprocessor(nil, globals, nil)
	out, _, err := pp.run("#pragma inject noise\n#pragma inject noise\n", nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if strings.Count(out, "float noise();") != 1 {
		t.Fatalf("snippet spliced more than once:\n%s", out)
	}
}

func TestPreprocessDuplicateDefineDropped(t *testing.T) {
	pp := newPreprocessor(nil, nil, nil)
	out, key, err := pp.run("#define N 1\n#define N 2\n", nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if strings.Count(out, "#define N") != 1 {
		t.Fatalf("duplicate define survived:\n%s", out)
	}
	if key != "N=1" {
		t.Fatalf("key = %q, want first occurrence to win", key)
	}
}

func TestPreprocessUnknownSnippet(t *testing.T) {
	pp := newPreprocessor(nil, nil, nil)
	_, _, err := pp.run("#pragma inject missing\n", nil)
	if !errors.Is(err, ErrUnknownSnippet) {
		t.Fatalf("err = %v, want ErrUnknownSnippet", err)
	}
}

func TestPreprocessNestedInject(t *testing.T) {
	globals := map[string]string{
		"outer": "#pragma inject inner\nfloat outer();",
		"inner": "float inner();",
	}
	pp := newPreprocessor(nil, globals, nil)
	out, _, err := pp.run("#pragma inject outer\n", nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out, "float inner();") || !strings.Contains(out, "float outer();") {
		t.Fatalf("nested splice incomplete:\n%s", out)
	}
}

func TestPreprocessFunctionMacroPassesThrough(t *testing.T) {
	src := "#define SQ(x) ((x)*(x))\n"
	pp := newPreprocessor(nil, nil, nil)
	out, key, err := pp.run(src, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out, "#define SQ(x) ((x)*(x))") {
		t.Fatalf("macro rewritten:\n%s", out)
	}
	if key != "" {
		t.Fatalf("key = %q, function macros are not variant material", key)
	}
}
