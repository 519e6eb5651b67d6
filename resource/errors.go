package resource

import "errors"

// Store errors.
var (
	// ErrStoreClosed is returned when operating on a closed store.
	ErrStoreClosed = errors.New("resource: store closed")

	// ErrSharedAcrossStores is returned when a descriptor already owned
	// by one store is registered with or resolved by another. Descriptors
	// are not store-portable.
	ErrSharedAcrossStores = errors.New("resource: descriptor owned by another store")

	// ErrDescriptorReleased is returned when operating on a descriptor
	// whose last reference has been dropped.
	ErrDescriptorReleased = errors.New("resource: descriptor released")

	// ErrTargetOccupied is returned when binding a texture to a unit
	// already occupied by a different texture. The caller must release
	// the unit first; the store never silently overwrites a binding.
	ErrTargetOccupied = errors.New("resource: texture unit occupied by another texture")
)
