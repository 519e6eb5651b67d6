package resource

import "fmt"

// PolicyKind enumerates the eviction-recovery strategies.
type PolicyKind int

const (
	// KindReadBack snapshots current GPU bytes into the upload queue at
	// eviction time. Re-resolving reproduces the evicted content exactly.
	KindReadBack PolicyKind = iota

	// KindUnfree pins the resource: eviction never touches it.
	KindUnfree

	// KindRestorable installs a regeneration callback as the sole queued
	// item at eviction time. The callback runs lazily on next flush.
	KindRestorable
)

// String returns a short name for the kind.
func (k PolicyKind) String() string {
	switch k {
	case KindReadBack:
		return "ReadBack"
	case KindUnfree:
		return "Unfree"
	case KindRestorable:
		return "Restorable"
	default:
		return fmt.Sprintf("PolicyKind(%d)", int(k))
	}
}

// Regenerator recomputes a resource's content after eviction. It must
// produce a source whose length equals the size recorded at eviction
// time, and must not itself return a callback-backed source; either
// misuse indicates a broken restoration policy and panics at flush time.
type Regenerator func() DataSource

// MemoryPolicy is a descriptor's eviction-recovery strategy. The zero
// value is ReadBack, the safe default.
type MemoryPolicy struct {
	kind       PolicyKind
	regenerate Regenerator
}

// ReadBack returns the policy that snapshots GPU bytes on eviction.
func ReadBack() MemoryPolicy { return MemoryPolicy{kind: KindReadBack} }

// Unfree returns the policy that exempts the resource from eviction.
func Unfree() MemoryPolicy { return MemoryPolicy{kind: KindUnfree} }

// Restorable returns the policy that reinstalls regenerate as the sole
// queued item on eviction. regenerate must not be nil.
func Restorable(regenerate Regenerator) MemoryPolicy {
	if regenerate == nil {
		panic("resource: Restorable requires a non-nil regenerator")
	}
	return MemoryPolicy{kind: KindRestorable, regenerate: regenerate}
}

// Kind returns the policy's strategy.
func (p MemoryPolicy) Kind() PolicyKind { return p.kind }
