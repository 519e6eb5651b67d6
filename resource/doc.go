// Package resource implements the descriptor/runtime model at the heart
// of glcore: logical, reference-counted identities for GPU buffers and
// textures, queues of pending uploads, and per-kind stores that lazily
// materialize native objects, flush queued writes, and evict
// least-recently-used resources under a byte budget.
//
// # Descriptors and runtimes
//
// A descriptor is a shareable CPU-side identity. It never holds a live
// native object; mutations ([BufferDescriptor.SetData],
// [TextureDescriptor.TexImage], ...) only accumulate in its upload
// queue. A runtime, the native object plus its tracked metadata, is
// created by a store the first time the descriptor is resolved, and can
// be destroyed (eviction, unregistration) without invalidating the
// descriptor.
//
// # Stores
//
// [BufferStore] and [TextureStore] own all runtimes of their kind. The
// hot path is Resolve: materialize if needed, flush the upload queue,
// touch the LRU chain, evict over-budget idle resources, bind, return
// the native handle. Stores are safe for concurrent use, though the
// driver context underneath is still single-threaded.
//
// # Memory policies
//
// Each descriptor carries a [MemoryPolicy] deciding what eviction does:
// never evict (Unfree), snapshot GPU bytes back to the CPU (ReadBack),
// or install a regeneration callback (Restorable). Evicting and then
// resolving again is always content-preserving.
package resource
