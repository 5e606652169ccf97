// Package instance loads, validates, writes and generates berth allocation
// instances and builds them into model problems.
package instance

import (
	"errors"
	"fmt"

	"github.com/kilianp07/berthalloc/core/model"
)

// BerthData describes one berth of an instance.
type BerthData struct {
	Open  int `json:"open" yaml:"open"`
	Close int `json:"close" yaml:"close"`
}

// VesselData describes one vessel of an instance. Handling lists one
// duration per berth; non-positive values mark forbidden berths.
type VesselData struct {
	Arrival  int     `json:"arrival" yaml:"arrival"`
	Deadline int     `json:"deadline" yaml:"deadline"`
	Cost     float64 `json:"cost" yaml:"cost"`
	Handling []int   `json:"handling" yaml:"handling,flow"`
}

// Data is a raw instance before it is built into a problem.
type Data struct {
	Name    string       `json:"name,omitempty" yaml:"name,omitempty"`
	Berths  []BerthData  `json:"berths" yaml:"berths"`
	Vessels []VesselData `json:"vessels" yaml:"vessels"`
}

// Dropped reports a vessel left out of the built problem.
type Dropped struct {
	// Index is the vessel position in Data.Vessels.
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// Validate checks the shape of the instance.
func (d *Data) Validate() error {
	if len(d.Berths) == 0 {
		return errors.New("instance: no berths")
	}
	if len(d.Vessels) == 0 {
		return errors.New("instance: no vessels")
	}
	for i, b := range d.Berths {
		if b.Close <= b.Open {
			return fmt.Errorf("instance: berth %d closes at %d before opening at %d", i, b.Close, b.Open)
		}
	}
	for i, v := range d.Vessels {
		if len(v.Handling) != len(d.Berths) {
			return fmt.Errorf("instance: vessel %d has %d handling times for %d berths", i, len(v.Handling), len(d.Berths))
		}
		if v.Deadline < v.Arrival {
			return fmt.Errorf("instance: vessel %d leaves at %d before arriving at %d", i, v.Deadline, v.Arrival)
		}
		if v.Cost < 0 {
			return fmt.Errorf("instance: vessel %d has negative cost %f", i, v.Cost)
		}
	}
	return nil
}

// Build validates d and assembles the problem. Vessels that no berth can
// serve inside both windows are dropped and reported; the others get
// sequential ids in input order.
func (d *Data) Build() (*model.Problem, []Dropped, error) {
	if err := d.Validate(); err != nil {
		return nil, nil, err
	}
	berths := make([]*model.Berth, len(d.Berths))
	for i, b := range d.Berths {
		berths[i] = model.NewBerth(i, b.Open, b.Close)
	}
	var (
		vessels []*model.Vessel
		dropped []Dropped
	)
	for i, vd := range d.Vessels {
		v := model.NewVessel(len(vessels), vd.Arrival, vd.Deadline, vd.Handling, vd.Cost)
		if !servable(v, berths) {
			dropped = append(dropped, Dropped{Index: i, Reason: "no berth can serve it before its deadline"})
			continue
		}
		vessels = append(vessels, v)
	}
	if len(vessels) == 0 {
		return nil, dropped, errors.New("instance: no servable vessels")
	}
	p, err := model.NewProblem(vessels, berths)
	if err != nil {
		return nil, nil, err
	}
	return p, dropped, nil
}

func servable(v *model.Vessel, berths []*model.Berth) bool {
	for _, b := range berths {
		h, ok := v.HandlingOn(b.ID)
		if !ok {
			continue
		}
		end := max(v.Arrival, b.Open) + h
		if end <= v.Leaving && end <= b.Close {
			return true
		}
	}
	return false
}
