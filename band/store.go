// Package band implements the sparse narrow-band store: per-cell level-set
// records keyed by mesh cell id. Absence of a record means the cell lies
// outside the band.
package band

import (
	"iter"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/bits-and-blooms/bitset"

	"github.com/voxkit/levelset/core"
)

// Status is the band membership state of a record.
type Status uint8

const (
	// StatusComputed marks a record whose Value holds a valid signed distance.
	StatusComputed Status = iota

	// StatusPending marks a record created by band maintenance whose Value has
	// not been refreshed yet.
	StatusPending
)

// Info is the per-cell level-set record. Value is meaningful only while
// Status is StatusComputed.
type Info struct {
	Value  float64
	Status Status
}

// Store maps cell ids to level-set records. Records live in dense arena
// slots; erased slots are recycled through a free list and an occupancy
// bitset, and a roaring bitmap tracks membership so "outside the band" is
// answered without touching the slots. Iteration runs in ascending id order.
//
// Store is not safe for concurrent use, and must not be mutated while an
// iterator returned by IDs or Records is running.
type Store struct {
	slots    []Info
	slotIDs  []core.CellID
	slotOf   map[core.CellID]uint32
	occupied *bitset.BitSet
	free     []uint32
	members  *roaring.Bitmap
}

// New creates an empty store.
func New() *Store {
	return &Store{
		slotOf:   make(map[core.CellID]uint32),
		occupied: bitset.New(0),
		members:  roaring.New(),
	}
}

// Reserve pre-allocates room for n records. It is a performance hint only;
// correctness never depends on it.
func (s *Store) Reserve(n int) {
	if n <= len(s.slots) {
		return
	}
	slots := make([]Info, len(s.slots), n)
	copy(slots, s.slots)
	s.slots = slots

	ids := make([]core.CellID, len(s.slotIDs), n)
	copy(ids, s.slotIDs)
	s.slotIDs = ids
}

// Len returns the number of records in the store.
func (s *Store) Len() int {
	return int(s.members.GetCardinality())
}

// Contains reports whether any record exists for id.
func (s *Store) Contains(id core.CellID) bool {
	return s.members.Contains(uint32(id))
}

// InBand reports whether id holds a computed in-band record. Pending records
// and absent cells both answer false.
func (s *Store) InBand(id core.CellID) bool {
	slot, ok := s.slotOf[id]
	return ok && s.slots[slot].Status == StatusComputed
}

// Get returns the record for id.
func (s *Store) Get(id core.CellID) (Info, bool) {
	slot, ok := s.slotOf[id]
	if !ok {
		return Info{}, false
	}
	return s.slots[slot], true
}

// Insert stores a record for id, overwriting any existing one.
func (s *Store) Insert(id core.CellID, info Info) {
	if slot, ok := s.slotOf[id]; ok {
		s.slots[slot] = info
		return
	}

	var slot uint32
	if n := len(s.free); n > 0 {
		slot = s.free[n-1]
		s.free = s.free[:n-1]
		s.slots[slot] = info
		s.slotIDs[slot] = id
	} else {
		slot = uint32(len(s.slots))
		s.slots = append(s.slots, info)
		s.slotIDs = append(s.slotIDs, id)
	}

	s.slotOf[id] = slot
	s.occupied.Set(uint(slot))
	s.members.Add(uint32(id))
}

// SetValue overwrites the value for id and marks the record computed.
// It reports false when no record exists.
func (s *Store) SetValue(id core.CellID, value float64) bool {
	slot, ok := s.slotOf[id]
	if !ok {
		return false
	}
	s.slots[slot] = Info{Value: value, Status: StatusComputed}
	return true
}

// Erase removes the record for id, recycling its slot. It reports whether a
// record existed.
func (s *Store) Erase(id core.CellID) bool {
	slot, ok := s.slotOf[id]
	if !ok {
		return false
	}
	s.slots[slot] = Info{}
	s.occupied.Clear(uint(slot))
	s.free = append(s.free, slot)
	delete(s.slotOf, id)
	s.members.Remove(uint32(id))
	return true
}

// Clear removes every record.
func (s *Store) Clear() {
	s.slots = s.slots[:0]
	s.slotIDs = s.slotIDs[:0]
	s.slotOf = make(map[core.CellID]uint32)
	s.occupied.ClearAll()
	s.free = s.free[:0]
	s.members.Clear()
}

// IDs iterates record ids in ascending order.
func (s *Store) IDs() iter.Seq[core.CellID] {
	return func(yield func(core.CellID) bool) {
		it := s.members.Iterator()
		for it.HasNext() {
			if !yield(core.CellID(it.Next())) {
				return
			}
		}
	}
}

// Records iterates records in arena slot order, skipping recycled slots
// through the occupancy bitset. The order is stable between mutations.
func (s *Store) Records() iter.Seq2[core.CellID, Info] {
	return func(yield func(core.CellID, Info) bool) {
		for slot, ok := s.occupied.NextSet(0); ok; slot, ok = s.occupied.NextSet(slot + 1) {
			if !yield(s.slotIDs[slot], s.slots[slot]) {
				return
			}
		}
	}
}

// Squeeze compacts the arena, dropping recycled slots and laying surviving
// records out densely in ascending id order. Callers must only squeeze
// between adaptation steps, never mid-update.
func (s *Store) Squeeze() {
	n := s.Len()
	slots := make([]Info, 0, n)
	ids := make([]core.CellID, 0, n)
	slotOf := make(map[core.CellID]uint32, n)
	occupied := bitset.New(uint(n))

	it := s.members.Iterator()
	for it.HasNext() {
		id := core.CellID(it.Next())
		slot := uint32(len(slots))
		slots = append(slots, s.slots[s.slotOf[id]])
		ids = append(ids, id)
		slotOf[id] = slot
		occupied.Set(uint(slot))
	}

	s.slots = slots
	s.slotIDs = ids
	s.slotOf = slotOf
	s.occupied = occupied
	s.free = nil
}
