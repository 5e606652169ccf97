package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoBerthProblem(t *testing.T) *Problem {
	t.Helper()
	berths := []*Berth{NewBerth(0, 0, 100), NewBerth(1, 0, 100)}
	vessels := []*Vessel{
		vessel(0, 0, 100, 10, 20),
		vessel(1, 0, 100, 10, 20),
		vessel(2, 5, 100, 15, 10),
		vessel(3, 5, 100, 15, 10),
	}
	p, err := NewProblem(vessels, berths)
	require.NoError(t, err)
	return p
}

func TestNewProblemChecksReferences(t *testing.T) {
	_, err := NewProblem([]*Vessel{vessel(0, 0, 10, 1)}, []*Berth{NewBerth(1, 0, 10)})
	assert.Error(t, err, "berth id must match position")

	_, err = NewProblem([]*Vessel{vessel(0, 0, 10, 1), vessel(0, 0, 10, 1)}, []*Berth{NewBerth(0, 0, 10)})
	assert.Error(t, err, "duplicate vessel")

	_, err = NewProblem([]*Vessel{vessel(0, 0, 10, 1, 2)}, []*Berth{NewBerth(0, 0, 10)})
	assert.Error(t, err, "handling per berth")
}

func TestNearestAvailableBerth(t *testing.T) {
	p := twoBerthProblem(t)
	require.True(t, p.Berths[0].AddVessel(p.Vessels[0], 0))

	b, start, ok := p.NearestAvailableBerth(p.Vessels[1])
	require.True(t, ok)
	assert.Equal(t, 1, b.ID)
	assert.Equal(t, 0, start)

	b, start, ok = p.FirstAvailableBerth(p.Vessels[1])
	require.True(t, ok)
	assert.Equal(t, 0, b.ID)
	assert.Equal(t, 10, start)

	late := NewVessel(9, 95, 100, []int{10, 10}, 1)
	_, _, ok = p.NearestAvailableBerth(late)
	assert.False(t, ok)
}

func TestSwapBetweenBerths(t *testing.T) {
	p := twoBerthProblem(t)
	b0, b1 := p.Berths[0], p.Berths[1]
	require.True(t, b0.AddVessel(p.Vessels[0], 0))
	require.True(t, b0.AddVessel(p.Vessels[1], 10))
	require.True(t, b1.AddVessel(p.Vessels[2], 5))
	require.True(t, b1.AddVessel(p.Vessels[3], 15))

	d0, d1, err := p.SwapBetweenBerths(p.Vessels[0], p.Vessels[3])
	require.NoError(t, err)
	assert.Empty(t, d0)
	assert.Empty(t, d1)
	require.NoError(t, p.Validate())

	assert.Equal(t, 0, p.Vessels[3].Placement.Berth)
	assert.Equal(t, 5, p.Vessels[3].Placement.Start)
	assert.Equal(t, 20, p.Vessels[1].Placement.Start)
	assert.Equal(t, 1, p.Vessels[0].Placement.Berth)
	assert.Equal(t, 15, p.Vessels[0].Placement.Start)

	_, _, err = p.SwapBetweenBerths(p.Vessels[1], p.Vessels[3])
	assert.Error(t, err, "same berth")
}

func TestSwapBetweenBerthsReportsDisallowed(t *testing.T) {
	berths := []*Berth{NewBerth(0, 0, 100), NewBerth(1, 0, 100)}
	a := NewVessel(0, 0, 100, []int{10, NotAllowed}, 1)
	b := vessel(1, 0, 100, 10, 10)
	p, err := NewProblem([]*Vessel{a, b}, berths)
	require.NoError(t, err)
	require.True(t, berths[0].AddVessel(a, 0))
	require.True(t, berths[1].AddVessel(b, 0))

	d0, d1, err := p.SwapBetweenBerths(a, b)
	require.NoError(t, err)
	assert.Empty(t, d0)
	require.Len(t, d1, 1)
	assert.Same(t, a, d1[0])
	assert.False(t, p.AllAllocated())
	assert.Equal(t, []*Vessel{a}, p.Unallocated())
	require.NoError(t, p.Validate())
}

func TestCloneIsIndependent(t *testing.T) {
	p := twoBerthProblem(t)
	require.True(t, p.Berths[0].AddVessel(p.Vessels[0], 0))
	require.True(t, p.Berths[1].AddVessel(p.Vessels[2], 5))

	c := p.Clone()
	require.True(t, p.ScheduleEqual(c))
	require.NoError(t, c.Validate())

	_, err := c.Berths[0].RemoveVessel(c.Vessels[0])
	require.NoError(t, err)
	require.True(t, c.Berths[0].AddVessel(c.Vessels[1], 0))

	assert.True(t, p.Vessels[0].Allocated())
	assert.False(t, p.Vessels[1].Allocated())
	assert.Equal(t, []Interval{{10, 100}}, p.Berths[0].Free())
	assert.False(t, p.ScheduleEqual(c))
	require.NoError(t, p.Validate())
	require.NoError(t, c.Validate())
}

func TestScheduleEqualMatchesByID(t *testing.T) {
	p := twoBerthProblem(t)
	require.True(t, p.Berths[0].AddVessel(p.Vessels[0], 0))
	c := p.Clone()
	c.Vessels[0], c.Vessels[1] = c.Vessels[1], c.Vessels[0]
	assert.True(t, p.ScheduleEqual(c))
	assert.Equal(t, p.Signature(), c.Signature())

	_, err := c.Berths[0].RemoveVessel(c.Vessel(0))
	require.NoError(t, err)
	require.True(t, c.Berths[0].AddVessel(c.Vessel(0), 1))
	assert.False(t, p.ScheduleEqual(c))
	assert.NotEqual(t, p.Signature(), c.Signature())
	assert.False(t, p.ScheduleEqual(nil))
}

func TestProblemReset(t *testing.T) {
	p := twoBerthProblem(t)
	require.True(t, p.Berths[0].AddVessel(p.Vessels[0], 0))
	require.True(t, p.Berths[1].AddVessel(p.Vessels[1], 50))
	p.Reset()
	for _, b := range p.Berths {
		assert.Equal(t, []Interval{{0, 100}}, b.Free())
		assert.Zero(t, b.Len())
	}
	assert.Len(t, p.Unallocated(), 4)
	assert.False(t, p.AllAllocated())
}
