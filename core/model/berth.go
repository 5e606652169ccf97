package model

import (
	"fmt"
	"slices"
	"sort"
)

// Berth processes vessels one at a time inside its operating window
// [Open, Close). Free intervals and vessel placements tile the window.
type Berth struct {
	ID    int
	Open  int
	Close int

	free    []Interval
	vessels []*Vessel
}

// NewBerth returns an empty berth whose whole window is free.
func NewBerth(id, open, close int) *Berth {
	b := &Berth{ID: id, Open: open, Close: close}
	b.Reset()
	return b
}

// Free returns a copy of the free intervals ordered by start.
func (b *Berth) Free() []Interval {
	return slices.Clone(b.free)
}

// Vessels returns the allocated vessels ordered by start.
func (b *Berth) Vessels() []*Vessel {
	return slices.Clone(b.vessels)
}

// Len returns the number of allocated vessels.
func (b *Berth) Len() int { return len(b.vessels) }

// VesselAt returns the vessel at position i of the sequence.
func (b *Berth) VesselAt(i int) *Vessel { return b.vessels[i] }

// Index returns the position of v in the sequence or -1.
func (b *Berth) Index(v *Vessel) int {
	for i, w := range b.vessels {
		if w.ID == v.ID {
			return i
		}
	}
	return -1
}

// Contains reports whether v is allocated to the berth.
func (b *Berth) Contains(v *Vessel) bool { return b.Index(v) >= 0 }

// Reset frees the whole window and unassigns every vessel.
func (b *Berth) Reset() {
	for _, v := range b.vessels {
		v.Reset()
	}
	b.vessels = nil
	b.free = nil
	if b.Close > b.Open {
		b.free = []Interval{{Start: b.Open, End: b.Close}}
	}
}

// FirstAvailableSlot returns the earliest start at which v fits entirely
// inside one free interval and before its deadline.
func (b *Berth) FirstAvailableSlot(v *Vessel) (int, bool) {
	h, ok := v.HandlingOn(b.ID)
	if !ok {
		return 0, false
	}
	for _, iv := range b.free {
		op := max(v.Arrival, iv.Start)
		if op+h <= iv.End && op+h <= v.Leaving {
			return op, true
		}
	}
	return 0, false
}

// MayInsert reports whether v can be threaded in before the vessel at index
// (or appended when index >= Len) without any vessel of the resulting
// sequence missing its deadline or the berth close.
func (b *Berth) MayInsert(v *Vessel, index int) bool {
	h, ok := v.HandlingOn(b.ID)
	if !ok || v.Allocated() {
		return false
	}
	index = b.clampIndex(index)
	end := max(b.threadStart(index), v.Arrival) + h
	if end > v.Leaving || end > b.Close {
		return false
	}
	for _, w := range b.vessels[index:] {
		end = max(end, w.Arrival) + w.Placement.Handling
		if end > w.Leaving || end > b.Close {
			return false
		}
	}
	return true
}

// FirstFeasibleStartTime returns the earliest position where v can be
// inserted without displacing anybody, together with its start time there.
func (b *Berth) FirstFeasibleStartTime(v *Vessel) (start, index int, ok bool) {
	for i := 0; i <= len(b.vessels); i++ {
		if b.MayInsert(v, i) {
			return max(b.threadStart(i), v.Arrival), i, true
		}
	}
	return 0, 0, false
}

// AddVessel places v at start inside the free interval containing start.
// It returns false, leaving the berth untouched, when the vessel is already
// allocated, not allowed here, or does not fit the interval or its window.
func (b *Berth) AddVessel(v *Vessel, start int) bool {
	if v.Allocated() || b.Contains(v) {
		return false
	}
	h, ok := v.HandlingOn(b.ID)
	if !ok || start < v.Arrival {
		return false
	}
	i := b.slotIndex(start)
	if i < 0 {
		return false
	}
	iv := b.free[i]
	if start+h > iv.End || start+h > v.Leaving {
		return false
	}

	var parts []Interval
	if left := (Interval{Start: iv.Start, End: start}); left.Len() > 0 {
		parts = append(parts, left)
	}
	if right := (Interval{Start: start + h, End: iv.End}); right.Len() > 0 {
		parts = append(parts, right)
	}
	b.free = slices.Replace(b.free, i, i+1, parts...)

	v.place(b.ID, start, h)
	pos := sort.Search(len(b.vessels), func(k int) bool {
		return b.vessels[k].Placement.Start > start
	})
	b.vessels = slices.Insert(b.vessels, pos, v)
	return true
}

// RemoveVessel takes v off the berth. Every later vessel is lifted as well
// and re-added in order from the earliest feasible time, so the sequence
// closes up behind the removed vessel.
func (b *Berth) RemoveVessel(v *Vessel) (*Vessel, error) {
	i := b.Index(v)
	if i < 0 {
		return nil, fmt.Errorf("%w: vessel %d not on berth %d", ErrInconsistent, v.ID, b.ID)
	}
	suffix, err := b.removeSuffix(i)
	if err != nil {
		return nil, err
	}
	if lost := b.readd(suffix[1:]); len(lost) > 0 {
		return nil, fmt.Errorf("%w: berth %d lost vessel %d while closing a gap", ErrInconsistent, b.ID, lost[0].ID)
	}
	return suffix[0], nil
}

// InsertVessel threads v into the sequence before the vessel at index (or at
// the end when index >= Len). Vessels that no longer fit their deadline or
// the berth close, v included, are left unallocated and returned.
func (b *Berth) InsertVessel(v *Vessel, index int) ([]*Vessel, error) {
	if v.Allocated() {
		return nil, fmt.Errorf("%w: vessel %d already on berth %d", ErrInconsistent, v.ID, v.Placement.Berth)
	}
	suffix, err := b.removeSuffix(b.clampIndex(index))
	if err != nil {
		return nil, err
	}
	queue := make([]*Vessel, 0, len(suffix)+1)
	queue = append(queue, v)
	queue = append(queue, suffix...)
	return b.readd(queue), nil
}

// Busy returns the total occupied time.
func (b *Berth) Busy() int {
	idle := 0
	for _, iv := range b.free {
		idle += iv.Len()
	}
	return b.Close - b.Open - idle
}

// Utilization returns the occupied share of the operating window.
func (b *Berth) Utilization() float64 {
	span := b.Close - b.Open
	if span <= 0 {
		return 0
	}
	return float64(b.Busy()) / float64(span)
}

// Completion returns the start of the last free interval, or Close once
// the berth has no free interval left. A berth booked flush against its
// close therefore reports the start of its last gap.
func (b *Berth) Completion() int {
	if len(b.free) == 0 {
		return b.Close
	}
	return b.free[len(b.free)-1].Start
}

// Validate checks that free intervals and placements tile the window.
func (b *Berth) Validate() error {
	all := make([]Interval, 0, len(b.free)+len(b.vessels))
	for k, iv := range b.free {
		if iv.Len() <= 0 {
			return fmt.Errorf("%w: berth %d holds empty free interval %v", ErrInconsistent, b.ID, iv)
		}
		if k > 0 && b.free[k-1].End >= iv.Start {
			return fmt.Errorf("%w: berth %d free intervals %v and %v not disjoint or not merged", ErrInconsistent, b.ID, b.free[k-1], iv)
		}
		all = append(all, iv)
	}
	for k, v := range b.vessels {
		pl := v.Placement
		switch {
		case pl == nil:
			return fmt.Errorf("%w: berth %d holds unallocated vessel %d", ErrInconsistent, b.ID, v.ID)
		case pl.Berth != b.ID:
			return fmt.Errorf("%w: vessel %d points at berth %d, held by %d", ErrInconsistent, v.ID, pl.Berth, b.ID)
		case pl.Start < v.Arrival, pl.Start+pl.Handling != pl.End, pl.End > v.Leaving:
			return fmt.Errorf("%w: vessel %d placement %+v outside window [%d,%d]", ErrInconsistent, v.ID, *pl, v.Arrival, v.Leaving)
		}
		if h, ok := v.HandlingOn(b.ID); !ok || h != pl.Handling {
			return fmt.Errorf("%w: vessel %d handling mismatch on berth %d", ErrInconsistent, v.ID, b.ID)
		}
		if k > 0 && b.vessels[k-1].Placement.Start > pl.Start {
			return fmt.Errorf("%w: berth %d sequence out of order", ErrInconsistent, b.ID)
		}
		all = append(all, Interval{Start: pl.Start, End: pl.End})
	}
	slices.SortFunc(all, func(x, y Interval) int { return x.Start - y.Start })
	t := b.Open
	for _, iv := range all {
		if iv.Start != t {
			return fmt.Errorf("%w: berth %d broken tiling at %d", ErrInconsistent, b.ID, t)
		}
		t = iv.End
	}
	if len(all) > 0 && t != b.Close {
		return fmt.Errorf("%w: berth %d tiling ends at %d, close %d", ErrInconsistent, b.ID, t, b.Close)
	}
	return nil
}

// clone copies the berth. Vessels are resolved through lookup so the copy
// shares nothing with the receiver.
func (b *Berth) clone(lookup map[int]*Vessel) *Berth {
	c := &Berth{ID: b.ID, Open: b.Open, Close: b.Close, free: slices.Clone(b.free)}
	if len(b.vessels) > 0 {
		c.vessels = make([]*Vessel, len(b.vessels))
		for i, v := range b.vessels {
			c.vessels[i] = lookup[v.ID]
		}
	}
	return c
}

func (b *Berth) clampIndex(index int) int {
	return min(max(index, 0), len(b.vessels))
}

// threadStart is the time the vessel at index could start at the earliest
// once everything from index on is lifted.
func (b *Berth) threadStart(index int) int {
	if index == 0 {
		return b.Open
	}
	return b.vessels[index-1].Placement.End
}

func (b *Berth) slotIndex(t int) int {
	for i, iv := range b.free {
		if iv.Contains(t) {
			return i
		}
	}
	return -1
}

// removeSuffix lifts every vessel from index on, returns their intervals to
// the free set and resets them.
func (b *Berth) removeSuffix(index int) ([]*Vessel, error) {
	suffix := slices.Clone(b.vessels[index:])
	b.vessels = b.vessels[:index]
	for _, v := range suffix {
		if err := b.restore(Interval{Start: v.Placement.Start, End: v.Placement.End}); err != nil {
			return nil, err
		}
		v.Reset()
	}
	return suffix, nil
}

// restore returns iv to the free set, merging it with touching neighbours.
func (b *Berth) restore(iv Interval) error {
	pos := sort.Search(len(b.free), func(k int) bool { return b.free[k].Start >= iv.Start })
	if pos > 0 && b.free[pos-1].End > iv.Start {
		return fmt.Errorf("%w: berth %d interval %v overlaps free %v", ErrInconsistent, b.ID, iv, b.free[pos-1])
	}
	if pos < len(b.free) && b.free[pos].Start < iv.End {
		return fmt.Errorf("%w: berth %d interval %v overlaps free %v", ErrInconsistent, b.ID, iv, b.free[pos])
	}
	lo, hi := pos, pos
	if pos > 0 && b.free[pos-1].End == iv.Start {
		iv.Start = b.free[pos-1].Start
		lo--
	}
	if pos < len(b.free) && b.free[pos].Start == iv.End {
		iv.End = b.free[pos].End
		hi++
	}
	b.free = slices.Replace(b.free, lo, hi, iv)
	return nil
}

// readd appends vessels in order, each at the earliest time after the
// previous one. Vessels that do not fit stay unallocated and are returned.
func (b *Berth) readd(queue []*Vessel) []*Vessel {
	var displaced []*Vessel
	t := b.threadStart(len(b.vessels))
	for _, v := range queue {
		if !b.AddVessel(v, max(t, v.Arrival)) {
			v.Reset()
			displaced = append(displaced, v)
			continue
		}
		t = v.Placement.End
	}
	return displaced
}
