package core

// CellID is a process-local, stable identifier for a mesh cell.
// It is strictly 32-bit so it can back bitmap-based membership structures.
// The mesh kernel may recycle an id after the cell is deleted; consumers must
// never retain per-cell state for a deleted id.
type CellID uint32

// MaxCellID is the maximum possible value for a CellID.
const MaxCellID = ^CellID(0)
