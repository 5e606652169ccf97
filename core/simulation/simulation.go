// Package simulation replays a schedule under random arrival and handling
// perturbations to estimate the cost a plan incurs in operation.
package simulation

import (
	"cmp"
	"errors"
	"fmt"
	"math/rand"
	"slices"

	"github.com/kilianp07/berthalloc/core/model"
)

// Config bounds the perturbations and sets the penalties. Upper bounds are
// exclusive.
type Config struct {
	ArrivalDelayMin  int     `json:"arrival_delay_min"`
	ArrivalDelayMax  int     `json:"arrival_delay_max"`
	HandlingExtraMin int     `json:"handling_extra_min"`
	HandlingExtraMax int     `json:"handling_extra_max"`
	DelayPenalty     float64 `json:"delay_penalty"`
	LatePenalty      float64 `json:"late_penalty"`
	Samples          int     `json:"samples"`
}

// DefaultConfig returns the reference perturbation model: arrivals slip by
// 2 to 4 time units, handling grows by 1 to 6, every unit of delayed start
// costs 25 and missing the deadline costs 450.
func DefaultConfig() Config {
	return Config{
		ArrivalDelayMin:  2,
		ArrivalDelayMax:  5,
		HandlingExtraMin: 1,
		HandlingExtraMax: 7,
		DelayPenalty:     25,
		LatePenalty:      450,
		Samples:          1000,
	}
}

// Validate checks the settings.
func (c Config) Validate() error {
	if c.ArrivalDelayMin < 0 || c.ArrivalDelayMax <= c.ArrivalDelayMin {
		return fmt.Errorf("simulation: arrival delay range [%d,%d) is empty or negative", c.ArrivalDelayMin, c.ArrivalDelayMax)
	}
	if c.HandlingExtraMin < 0 || c.HandlingExtraMax <= c.HandlingExtraMin {
		return fmt.Errorf("simulation: handling extra range [%d,%d) is empty or negative", c.HandlingExtraMin, c.HandlingExtraMax)
	}
	if c.DelayPenalty < 0 || c.LatePenalty < 0 {
		return errors.New("simulation: penalties must be >= 0")
	}
	if c.Samples <= 0 {
		return fmt.Errorf("simulation: samples must be > 0 (got %d)", c.Samples)
	}
	return nil
}

// Evaluator draws sampled costs of a schedule.
type Evaluator struct {
	cfg Config
}

// New returns an evaluator for cfg.
func New(cfg Config) (*Evaluator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Evaluator{cfg: cfg}, nil
}

// Config returns the evaluator settings.
func (e *Evaluator) Config() Config { return e.cfg }

// Sample evaluates p with the default perturbation model.
func Sample(p *model.Problem, rng *rand.Rand) float64 {
	e := Evaluator{cfg: DefaultConfig()}
	return e.Sample(p, rng)
}

// Sample walks every berth sequence in order with perturbed arrivals and
// handling times and returns the realised cost. A vessel starts once it
// arrived and the previous one left. p is left untouched.
func (e *Evaluator) Sample(p *model.Problem, rng *rand.Rand) float64 {
	total := 0.0
	for _, b := range p.Berths {
		allowed := b.Open
		for i := 0; i < b.Len(); i++ {
			v := b.VesselAt(i)
			pl := v.Placement
			arrival := v.Arrival + draw(rng, e.cfg.ArrivalDelayMin, e.cfg.ArrivalDelayMax)
			handling := pl.Handling + draw(rng, e.cfg.HandlingExtraMin, e.cfg.HandlingExtraMax)
			start := max(allowed, arrival)
			end := start + handling

			cost := float64(end-arrival) * v.Cost
			if start > pl.Start {
				cost += e.cfg.DelayPenalty * float64(start-pl.Start)
			}
			if end > v.Leaving {
				cost += e.cfg.LatePenalty
			}
			total += cost
			allowed = end
		}
	}
	return total
}

// Profile is the sampled cost distribution of one solution.
type Profile struct {
	Samples []float64 `json:"samples"`
	Summary Summary   `json:"summary"`
}

// RiskProfile draws n samples of p.
func (e *Evaluator) RiskProfile(p *model.Problem, rng *rand.Rand, n int) (Profile, error) {
	if p == nil {
		return Profile{}, errors.New("simulation: nil solution")
	}
	if rng == nil {
		return Profile{}, errors.New("simulation: nil random source")
	}
	if n <= 0 {
		return Profile{}, fmt.Errorf("simulation: samples must be > 0 (got %d)", n)
	}
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = e.Sample(p, rng)
	}
	return Profile{Samples: samples, Summary: Summarize(samples)}, nil
}

// Ranked pairs a candidate's position in the input with its profile.
type Ranked struct {
	Index   int     `json:"index"`
	Profile Profile `json:"profile"`
}

// Compare profiles every solution with n samples and orders them by mean
// sampled cost, cheapest first. Ties keep the input order.
func (e *Evaluator) Compare(solutions []*model.Problem, rng *rand.Rand, n int) ([]Ranked, error) {
	out := make([]Ranked, 0, len(solutions))
	for i, p := range solutions {
		prof, err := e.RiskProfile(p, rng, n)
		if err != nil {
			return nil, fmt.Errorf("simulation: candidate %d: %w", i, err)
		}
		out = append(out, Ranked{Index: i, Profile: prof})
	}
	slices.SortStableFunc(out, func(a, b Ranked) int {
		return cmp.Compare(a.Profile.Summary.Mean, b.Profile.Summary.Mean)
	})
	return out, nil
}

// draw returns a uniform integer in [lo, hi).
func draw(rng *rand.Rand, lo, hi int) int {
	return lo + rng.Intn(hi-lo)
}
