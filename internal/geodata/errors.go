package geodata

import (
	"fmt"
)

// ErrRingIndex indicates a ring index at or past the ring count
type ErrRingIndex struct {
	ID    uint32
	Index int
	Count int
}

func (e *ErrRingIndex) Error() string {
	return fmt.Sprintf("object %d: ring index %d out of range (%d rings)",
		e.ID, e.Index, e.Count)
}

// ErrInvalidObjectType indicates an operation applied to a geometry
// variant that does not support it (e.g. growing a meta object)
type ErrInvalidObjectType struct {
	ID   uint32
	Type ObjectType
}

func (e *ErrInvalidObjectType) Error() string {
	return fmt.Sprintf("object %d: operation not valid for %v geometry", e.ID, e.Type)
}

// ErrDataSize indicates a partial data size past the allocated
// point count
type ErrDataSize struct {
	ID       uint32
	Size     int
	Capacity int
}

func (e *ErrDataSize) Error() string {
	return fmt.Sprintf("object %d: data size %d exceeds allocated %d points",
		e.ID, e.Size, e.Capacity)
}

// ErrUnknownObject indicates an id with no object in the store
type ErrUnknownObject struct {
	ID uint32
}

func (e *ErrUnknownObject) Error() string {
	return fmt.Sprintf("no object with id %d in store", e.ID)
}
