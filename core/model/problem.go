package model

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Problem is one berth allocation instance together with its current
// schedule. Berths[i].ID == i for every berth.
type Problem struct {
	Vessels []*Vessel
	Berths  []*Berth
}

// NewProblem checks the cross references of vessels and berths and returns
// the assembled problem.
func NewProblem(vessels []*Vessel, berths []*Berth) (*Problem, error) {
	for i, b := range berths {
		if b == nil {
			return nil, errors.New("model: nil berth")
		}
		if b.ID != i {
			return nil, fmt.Errorf("model: berth at position %d has id %d", i, b.ID)
		}
	}
	seen := make(map[int]struct{}, len(vessels))
	for _, v := range vessels {
		if v == nil {
			return nil, errors.New("model: nil vessel")
		}
		if _, dup := seen[v.ID]; dup {
			return nil, fmt.Errorf("model: duplicate vessel id %d", v.ID)
		}
		seen[v.ID] = struct{}{}
		if len(v.Handling) != len(berths) {
			return nil, fmt.Errorf("model: vessel %d has %d handling times for %d berths", v.ID, len(v.Handling), len(berths))
		}
	}
	return &Problem{Vessels: vessels, Berths: berths}, nil
}

// Vessel returns the vessel with the given id or nil.
func (p *Problem) Vessel(id int) *Vessel {
	for _, v := range p.Vessels {
		if v.ID == id {
			return v
		}
	}
	return nil
}

// Berth returns the berth with the given id or nil.
func (p *Problem) Berth(id int) *Berth {
	if id < 0 || id >= len(p.Berths) {
		return nil
	}
	return p.Berths[id]
}

// BerthOf returns the berth v is allocated to or nil.
func (p *Problem) BerthOf(v *Vessel) *Berth {
	if v.Placement == nil {
		return nil
	}
	return p.Berth(v.Placement.Berth)
}

// NearestAvailableBerth returns the berth offering v the earliest start.
// Ties go to the berth listed first.
func (p *Problem) NearestAvailableBerth(v *Vessel) (*Berth, int, bool) {
	var best *Berth
	bestStart := 0
	for _, b := range p.Berths {
		start, ok := b.FirstAvailableSlot(v)
		if ok && (best == nil || start < bestStart) {
			best, bestStart = b, start
		}
	}
	return best, bestStart, best != nil
}

// FirstAvailableBerth returns the first berth with any slot for v.
func (p *Problem) FirstAvailableBerth(v *Vessel) (*Berth, int, bool) {
	for _, b := range p.Berths {
		if start, ok := b.FirstAvailableSlot(v); ok {
			return b, start, true
		}
	}
	return nil, 0, false
}

// SwapBetweenBerths exchanges two vessels allocated to different berths.
// Each vessel is inserted at the position the other one held. The returned
// lists hold the vessels displaced by the insertion into v0's former berth
// and into v1's former berth respectively.
func (p *Problem) SwapBetweenBerths(v0, v1 *Vessel) (displaced0, displaced1 []*Vessel, err error) {
	b0, b1 := p.BerthOf(v0), p.BerthOf(v1)
	if b0 == nil || b1 == nil {
		return nil, nil, errors.New("model: swap requires two allocated vessels")
	}
	if b0.ID == b1.ID {
		return nil, nil, fmt.Errorf("model: vessels %d and %d share berth %d", v0.ID, v1.ID, b0.ID)
	}
	i0, i1 := b0.Index(v0), b1.Index(v1)
	if i0 < 0 || i1 < 0 {
		return nil, nil, fmt.Errorf("%w: swap of vessels %d and %d", ErrInconsistent, v0.ID, v1.ID)
	}
	if _, err := b0.RemoveVessel(v0); err != nil {
		return nil, nil, err
	}
	if _, err := b1.RemoveVessel(v1); err != nil {
		return nil, nil, err
	}
	if displaced0, err = b0.InsertVessel(v1, i0); err != nil {
		return nil, nil, err
	}
	if displaced1, err = b1.InsertVessel(v0, i1); err != nil {
		return nil, nil, err
	}
	return displaced0, displaced1, nil
}

// Reset clears every berth and unassigns every vessel.
func (p *Problem) Reset() {
	for _, b := range p.Berths {
		b.Reset()
	}
	for _, v := range p.Vessels {
		v.Reset()
	}
}

// Clone returns a deep copy sharing no mutable state with p.
func (p *Problem) Clone() *Problem {
	c := &Problem{
		Vessels: make([]*Vessel, len(p.Vessels)),
		Berths:  make([]*Berth, len(p.Berths)),
	}
	lookup := make(map[int]*Vessel, len(p.Vessels))
	for i, v := range p.Vessels {
		cv := v.Clone()
		c.Vessels[i] = cv
		lookup[cv.ID] = cv
	}
	for i, b := range p.Berths {
		c.Berths[i] = b.clone(lookup)
	}
	return c
}

// AllAllocated reports whether every vessel holds a placement.
func (p *Problem) AllAllocated() bool {
	for _, v := range p.Vessels {
		if !v.Allocated() {
			return false
		}
	}
	return len(p.Vessels) > 0
}

// Unallocated returns the vessels without placement.
func (p *Problem) Unallocated() []*Vessel {
	var out []*Vessel
	for _, v := range p.Vessels {
		if !v.Allocated() {
			out = append(out, v)
		}
	}
	return out
}

// ScheduleEqual reports whether both problems assign every vessel to the
// same berth at the same start time.
func (p *Problem) ScheduleEqual(o *Problem) bool {
	if o == nil || len(p.Vessels) != len(o.Vessels) {
		return false
	}
	other := make(map[int]*Vessel, len(o.Vessels))
	for _, v := range o.Vessels {
		other[v.ID] = v
	}
	for _, v := range p.Vessels {
		w, ok := other[v.ID]
		if !ok {
			return false
		}
		switch {
		case v.Placement == nil && w.Placement == nil:
		case v.Placement == nil || w.Placement == nil:
			return false
		case v.Placement.Berth != w.Placement.Berth || v.Placement.Start != w.Placement.Start:
			return false
		}
	}
	return true
}

// Signature encodes the schedule as a string. Two problems over the same
// vessels are schedule-equal exactly when their signatures match.
func (p *Problem) Signature() string {
	order := slices.Clone(p.Vessels)
	slices.SortFunc(order, func(a, b *Vessel) int { return cmp.Compare(a.ID, b.ID) })
	var sb strings.Builder
	for _, v := range order {
		sb.WriteString(strconv.Itoa(v.ID))
		if pl := v.Placement; pl != nil {
			sb.WriteByte(':')
			sb.WriteString(strconv.Itoa(pl.Berth))
			sb.WriteByte('@')
			sb.WriteString(strconv.Itoa(pl.Start))
		}
		sb.WriteByte(';')
	}
	return sb.String()
}

// Validate checks every berth and the vessel back references.
func (p *Problem) Validate() error {
	members := make(map[int]int, len(p.Vessels))
	for _, b := range p.Berths {
		if err := b.Validate(); err != nil {
			return err
		}
		for _, v := range b.vessels {
			if p.Vessel(v.ID) != v {
				return fmt.Errorf("%w: berth %d holds foreign vessel %d", ErrInconsistent, b.ID, v.ID)
			}
			members[v.ID] = b.ID
		}
	}
	for _, v := range p.Vessels {
		berth, on := members[v.ID]
		switch {
		case v.Placement == nil && on:
			return fmt.Errorf("%w: unallocated vessel %d sits on berth %d", ErrInconsistent, v.ID, berth)
		case v.Placement != nil && !on:
			return fmt.Errorf("%w: vessel %d claims berth %d but is not on it", ErrInconsistent, v.ID, v.Placement.Berth)
		}
	}
	return nil
}
