package instance

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/kilianp07/berthalloc/core/model"
)

// GenConfig parameterises random instances.
type GenConfig struct {
	Vessels int `json:"vessels"`
	Berths  int `json:"berths"`
	// Horizon bounds the arrival times.
	Horizon     int `json:"horizon"`
	MinHandling int `json:"min_handling"`
	MaxHandling int `json:"max_handling"`
	// Slack is added on top of the longest handling time to form the
	// deadline, drawn from [MinSlack, MaxSlack].
	MinSlack int     `json:"min_slack"`
	MaxSlack int     `json:"max_slack"`
	MinCost  float64 `json:"min_cost"`
	MaxCost  float64 `json:"max_cost"`
	// ForbiddenRate is the chance a berth cannot serve a vessel. Every
	// vessel keeps at least one allowed berth.
	ForbiddenRate float64 `json:"forbidden_rate"`
}

// DefaultGenConfig returns a medium sized instance shape.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Vessels:       30,
		Berths:        4,
		Horizon:       200,
		MinHandling:   5,
		MaxHandling:   30,
		MinSlack:      20,
		MaxSlack:      120,
		MinCost:       1,
		MaxCost:       5,
		ForbiddenRate: 0.1,
	}
}

// Validate checks the settings.
func (c GenConfig) Validate() error {
	switch {
	case c.Vessels <= 0 || c.Berths <= 0:
		return fmt.Errorf("instance: need vessels and berths (got %d, %d)", c.Vessels, c.Berths)
	case c.Horizon <= 0:
		return fmt.Errorf("instance: horizon must be > 0 (got %d)", c.Horizon)
	case c.MinHandling <= 0 || c.MaxHandling < c.MinHandling:
		return fmt.Errorf("instance: bad handling range [%d,%d]", c.MinHandling, c.MaxHandling)
	case c.MinSlack < 0 || c.MaxSlack < c.MinSlack:
		return fmt.Errorf("instance: bad slack range [%d,%d]", c.MinSlack, c.MaxSlack)
	case c.MinCost < 0 || c.MaxCost < c.MinCost:
		return fmt.Errorf("instance: bad cost range [%f,%f]", c.MinCost, c.MaxCost)
	case c.ForbiddenRate < 0 || c.ForbiddenRate >= 1:
		return errors.New("instance: forbidden_rate must lie in [0,1)")
	}
	return nil
}

// Generate draws a random instance. Berths open within the first tenth of
// the horizon and stay open long enough for the latest deadline.
func Generate(cfg GenConfig, rng *rand.Rand) (*Data, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, errors.New("instance: nil random source")
	}
	d := &Data{
		Name:    fmt.Sprintf("random-%dx%d", cfg.Vessels, cfg.Berths),
		Berths:  make([]BerthData, cfg.Berths),
		Vessels: make([]VesselData, cfg.Vessels),
	}
	closing := cfg.Horizon + cfg.MaxHandling + cfg.MaxSlack
	for j := range d.Berths {
		d.Berths[j] = BerthData{Open: rng.Intn(cfg.Horizon/10 + 1), Close: closing}
	}
	for i := range d.Vessels {
		arrival := rng.Intn(cfg.Horizon)
		handling := make([]int, cfg.Berths)
		longest := 0
		for j := range handling {
			handling[j] = between(rng, cfg.MinHandling, cfg.MaxHandling)
			longest = max(longest, handling[j])
		}
		keep := rng.Intn(cfg.Berths)
		for j := range handling {
			if j != keep && rng.Float64() < cfg.ForbiddenRate {
				handling[j] = model.NotAllowed
			}
		}
		d.Vessels[i] = VesselData{
			Arrival:  arrival,
			Deadline: arrival + longest + between(rng, cfg.MinSlack, cfg.MaxSlack),
			Cost:     cfg.MinCost + rng.Float64()*(cfg.MaxCost-cfg.MinCost),
			Handling: handling,
		}
	}
	return d, nil
}

func between(rng *rand.Rand, lo, hi int) int {
	return lo + rng.Intn(hi-lo+1)
}
