package resource

import "fmt"

// MemoryStats contains one store's GPU memory usage statistics.
type MemoryStats struct {
	// BudgetBytes is the configured budget; 0 means unlimited.
	BudgetBytes uint64

	// UsedBytes is the currently allocated native memory in bytes.
	UsedBytes uint64

	// ResourceCount is the number of live native objects.
	ResourceCount int

	// RegisteredCount is the number of tracked descriptors, with or
	// without a live native object.
	RegisteredCount int

	// EvictionCount is the total number of evictions since creation.
	EvictionCount uint64

	// Utilization is the fraction of budget used (0 when unlimited).
	Utilization float64
}

// String returns a human-readable string of memory stats.
func (s MemoryStats) String() string {
	return fmt.Sprintf("Memory[%.1f%% used, %d/%d KB, %d live, %d evictions]",
		s.Utilization*100,
		s.UsedBytes/1024,
		s.BudgetBytes/1024,
		s.ResourceCount,
		s.EvictionCount)
}
