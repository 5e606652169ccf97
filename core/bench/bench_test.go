package bench

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/berthalloc/core/alloc"
	"github.com/kilianp07/berthalloc/core/fitness"
	"github.com/kilianp07/berthalloc/core/instance"
	"github.com/kilianp07/berthalloc/core/model"
	"github.com/kilianp07/berthalloc/core/search"
)

func initial(t *testing.T) *model.Problem {
	t.Helper()
	gen := instance.DefaultGenConfig()
	gen.Vessels, gen.Berths = 15, 3
	d, err := instance.Generate(gen, rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	p, _, err := d.Build()
	require.NoError(t, err)
	p, err = alloc.FCFS{}.Allocate(p)
	require.NoError(t, err)
	return p
}

func quickSearch() search.Config {
	sc := search.DefaultConfig()
	sc.Local.Iterations = 100
	sc.Tabu.Iterations = 100
	sc.Annealing.Iterations = 100
	sc.Pareto.Iterations = 100
	return sc
}

func TestRunnerSummarisesRuns(t *testing.T) {
	p := initial(t)
	r, err := NewRunner(Config{Algorithms: search.Names(), Runs: 3, BaseSeed: 10}, quickSearch())
	require.NoError(t, err)

	rep, err := r.Run(context.Background(), p)
	require.NoError(t, err)
	assert.NotEmpty(t, rep.ID)
	require.Len(t, rep.Records, len(search.Names()))

	seed := fitness.TotalCost(p)
	for _, rec := range rep.Records {
		assert.Equal(t, 3, rec.Runs)
		assert.LessOrEqual(t, rec.CostBest, rec.CostMean+1e-9, rec.Algorithm)
		assert.LessOrEqual(t, rec.CostMean, rec.CostWorst+1e-9, rec.Algorithm)
		assert.LessOrEqual(t, rec.CostWorst, seed+1e-9, rec.Algorithm)
		assert.GreaterOrEqual(t, rec.CostStd, 0.0)
		require.NotNil(t, rec.Best)
		assert.InDelta(t, rec.CostBest, fitness.TotalCost(rec.Best), 1e-9)
		assert.GreaterOrEqual(t, rec.BestSeed, int64(10))
		assert.NotEmpty(t, rec.BestRunID)
	}
}

func TestRunnerIsReproducible(t *testing.T) {
	p := initial(t)
	cfg := Config{Algorithms: []string{search.NameAnnealing}, Runs: 2, BaseSeed: 4}
	a, err := NewRunner(cfg, quickSearch())
	require.NoError(t, err)
	b, err := NewRunner(cfg, quickSearch())
	require.NoError(t, err)

	ra, err := a.Run(context.Background(), p)
	require.NoError(t, err)
	rb, err := b.Run(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, ra.Records[0].CostMean, rb.Records[0].CostMean)
	assert.Equal(t, ra.Records[0].Best.Signature(), rb.Records[0].Best.Signature())
}

func TestRunnerStopsOnCancel(t *testing.T) {
	r, err := NewRunner(Config{Algorithms: []string{search.NameLocal}, Runs: 2, PerRunTimeout: time.Minute}, quickSearch())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Run(ctx, initial(t))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
	assert.Error(t, Config{Runs: 1}.Validate())
	assert.Error(t, Config{Algorithms: []string{"local"}}.Validate())
	_, err := NewRunner(Config{Algorithms: []string{"genetic"}, Runs: 1}, quickSearch())
	assert.Error(t, err)
	_, err = NewRunner(DefaultConfig(), search.Config{})
	assert.Error(t, err)
}
