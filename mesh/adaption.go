package mesh

import "github.com/voxkit/levelset/core"

// Entity identifies the kind of mesh entity an adaptation record refers to.
type Entity uint8

const (
	// EntityCell marks a record describing a cell split or merge.
	EntityCell Entity = iota
	// EntityInterface marks a record describing cell interfaces; the
	// level-set machinery ignores these.
	EntityInterface
)

// AdaptionInfo describes one topology change applied during a mesh adaptation
// step: a refinement (one previous cell, many current children) or a
// coarsening (many previous cells, one current parent). Previous ids no
// longer exist after the step and may be recycled for new cells. Records
// describe exactly one adaptation step and are consumed once.
type AdaptionInfo struct {
	Entity   Entity
	Previous []core.CellID
	Current  []core.CellID
}
