package resource

import (
	"bytes"
	"testing"
)

func TestFromBytes(t *testing.T) {
	src := FromBytes([]byte{1, 2, 3})
	if src.ByteLen() != 3 {
		t.Fatalf("ByteLen = %d, want 3", src.ByteLen())
	}
	if !bytes.Equal(src.Bytes(), []byte{1, 2, 3}) {
		t.Fatalf("Bytes = %v", src.Bytes())
	}
}

func TestDeferredResolvesLazily(t *testing.T) {
	calls := 0
	src := Deferred(4, func() DataSource {
		calls++
		return FromBytes([]byte{9, 9, 9, 9})
	})
	if calls != 0 {
		t.Fatal("regenerator ran at construction")
	}
	if src.ByteLen() != 4 {
		t.Fatalf("ByteLen = %d, want 4", src.ByteLen())
	}
	if !bytes.Equal(src.Bytes(), []byte{9, 9, 9, 9}) {
		t.Fatalf("Bytes = %v", src.Bytes())
	}
	if calls != 1 {
		t.Fatalf("regenerator calls = %d, want 1", calls)
	}
}

func TestDeferredPanics(t *testing.T) {
	tests := []struct {
		name string
		src  DataSource
	}{
		{
			"nil result",
			Deferred(4, func() DataSource { return nil }),
		},
		{
			"recursive deferred",
			Deferred(4, func() DataSource {
				return Deferred(4, func() DataSource { return nil })
			}),
		},
		{
			"size mismatch",
			Deferred(4, func() DataSource { return FromBytes([]byte{1}) }),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Fatal("expected panic")
				}
			}()
			tt.src.Bytes()
		})
	}
}

func TestRestorableRequiresRegenerator(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	Restorable(nil)
}
