package operators

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/berthalloc/core/alloc"
	"github.com/kilianp07/berthalloc/core/model"
)

func seeded(t *testing.T, seed int64, berths, vessels int) *model.Problem {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	bs := make([]*model.Berth, berths)
	for i := range bs {
		bs[i] = model.NewBerth(i, 0, 400)
	}
	vs := make([]*model.Vessel, vessels)
	for id := range vs {
		arrival := rng.Intn(150)
		handling := make([]int, berths)
		for j := range handling {
			handling[j] = 5 + rng.Intn(20)
		}
		vs[id] = model.NewVessel(id, arrival, arrival+120+rng.Intn(100), handling, 1+rng.Float64())
	}
	p, err := model.NewProblem(vs, bs)
	require.NoError(t, err)
	out, err := alloc.FCFS{}.Allocate(p)
	require.NoError(t, err)
	return out
}

func TestOperatorsKeepSolutionsValid(t *testing.T) {
	for _, op := range Defaults() {
		t.Run(op.Name(), func(t *testing.T) {
			rng := rand.New(rand.NewSource(11))
			cur := seeded(t, 5, 3, 15)
			changed := 0
			for i := 0; i < 200; i++ {
				before := cur.Clone()
				next, err := op.Apply(cur, rng)
				require.NoError(t, err)
				require.NoError(t, next.Validate())
				require.True(t, next.AllAllocated())
				assert.True(t, cur.ScheduleEqual(before), "input mutated")
				if next != cur {
					changed++
				}
				cur = next
			}
			assert.Positive(t, changed)
		})
	}
}

func TestSwapReturnsInputWithoutSecondBerth(t *testing.T) {
	p := seeded(t, 1, 1, 4)
	rng := rand.New(rand.NewSource(1))
	got, err := SwapBetweenBerths{}.Apply(p, rng)
	require.NoError(t, err)
	assert.Same(t, p, got)
}

func TestMoveReturnsInputWhenNoBerthHasTwoVessels(t *testing.T) {
	bs := []*model.Berth{model.NewBerth(0, 0, 100), model.NewBerth(1, 0, 100)}
	vs := []*model.Vessel{
		model.NewVessel(0, 0, 100, []int{10, 10}, 1),
		model.NewVessel(1, 0, 100, []int{10, 10}, 1),
	}
	p, err := model.NewProblem(vs, bs)
	require.NoError(t, err)
	p, err = alloc.FCFS{}.Allocate(p)
	require.NoError(t, err)

	got, err := MoveInBerth{MaxAttempts: 3}.Apply(p, rand.New(rand.NewSource(2)))
	require.NoError(t, err)
	assert.Same(t, p, got)
}

func TestSwapFallsBackWhenDisplacedCannotBeRehomed(t *testing.T) {
	// Vessel 0 only fits berth 0 and vessel 1 takes its slot there.
	bs := []*model.Berth{model.NewBerth(0, 0, 100), model.NewBerth(1, 0, 100)}
	vs := []*model.Vessel{
		model.NewVessel(0, 0, 10, []int{10, model.NotAllowed}, 1),
		model.NewVessel(1, 0, 10, []int{10, 10}, 1),
	}
	p, err := model.NewProblem(vs, bs)
	require.NoError(t, err)
	p, err = alloc.FCFS{}.Allocate(p)
	require.NoError(t, err)
	require.Equal(t, 1, p.Vessel(1).Placement.Berth)

	got, err := SwapBetweenBerths{}.Apply(p, rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	assert.Same(t, p, got)
	require.NoError(t, p.Validate())
	assert.True(t, p.AllAllocated())
}

func TestByName(t *testing.T) {
	ops, err := ByName(nil)
	require.NoError(t, err)
	assert.Len(t, ops, 2)

	ops, err = ByName([]string{NameMove})
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, NameMove, ops[0].Name())

	_, err = ByName([]string{"two_opt"})
	assert.Error(t, err)
}

func TestRandomCoversAllOperators(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		seen[Random(Defaults(), rng).Name()] = true
	}
	assert.Len(t, seen, 2)
}
