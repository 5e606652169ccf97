package model

// NotAllowed marks a berth a vessel may not be served at. Any non-positive
// handling duration is treated the same way.
const NotAllowed = -1

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the interval length.
func (iv Interval) Len() int { return iv.End - iv.Start }

// Contains reports whether t lies inside the interval.
func (iv Interval) Contains(t int) bool { return iv.Start <= t && t < iv.End }

// Placement is the realized schedule of an allocated vessel.
type Placement struct {
	Berth    int `json:"berth"`
	Start    int `json:"start"`
	Handling int `json:"handling"`
	End      int `json:"end"`
}

// Vessel is a job with a time window, per-berth handling durations and a
// cost rate. A nil Placement means the vessel is not allocated.
type Vessel struct {
	ID        int        `json:"id"`
	Arrival   int        `json:"arrival"`
	Leaving   int        `json:"leaving"`
	Handling  []int      `json:"handling"`
	Cost      float64    `json:"cost"`
	Placement *Placement `json:"placement,omitempty"`
}

// NewVessel returns an unallocated vessel.
func NewVessel(id, arrival, leaving int, handling []int, cost float64) *Vessel {
	h := make([]int, len(handling))
	copy(h, handling)
	return &Vessel{ID: id, Arrival: arrival, Leaving: leaving, Handling: h, Cost: cost}
}

// HandlingOn returns the handling duration at the given berth. The second
// value is false when the berth is unknown or not allowed.
func (v *Vessel) HandlingOn(berth int) (int, bool) {
	if berth < 0 || berth >= len(v.Handling) {
		return 0, false
	}
	h := v.Handling[berth]
	if h <= 0 {
		return 0, false
	}
	return h, true
}

// Allocated reports whether the vessel currently holds a placement.
func (v *Vessel) Allocated() bool { return v.Placement != nil }

// Window returns the length of the vessel's time window.
func (v *Vessel) Window() int { return v.Leaving - v.Arrival }

// Reset clears the scheduling state.
func (v *Vessel) Reset() { v.Placement = nil }

// Clone returns a deep copy of the vessel.
func (v *Vessel) Clone() *Vessel {
	c := NewVessel(v.ID, v.Arrival, v.Leaving, v.Handling, v.Cost)
	if v.Placement != nil {
		pl := *v.Placement
		c.Placement = &pl
	}
	return c
}

func (v *Vessel) place(berth, start, handling int) {
	v.Placement = &Placement{Berth: berth, Start: start, Handling: handling, End: start + handling}
}
