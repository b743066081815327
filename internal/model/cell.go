package model

import "fmt"

// CellKey identifies one square cell of the AOI grid.
type CellKey struct {
	X, Z int32
}

func (k CellKey) String() string {
	return fmt.Sprintf("%d,%d", k.X, k.Z)
}

// Cell tracks the entities present in a grid square and the sockets
// subscribed to updates for that square.
type Cell struct {
	Key         CellKey
	Occupants   map[int64]bool
	Subscribers map[string]bool
}

func NewCell(key CellKey) *Cell {
	return &Cell{
		Key:         key,
		Occupants:   make(map[int64]bool),
		Subscribers: make(map[string]bool),
	}
}
