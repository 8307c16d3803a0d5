package transit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCostOrdering(t *testing.T) {
	t.Run("expense first, time breaks ties", func(t *testing.T) {
		assert.True(t, Cost{Expense: 1, Time: 900}.Less(Cost{Expense: 2, Time: 100}))
		assert.True(t, Cost{Expense: 1, Time: 100}.Less(Cost{Expense: 1, Time: 900}))
		assert.False(t, Cost{Expense: 2, Time: 100}.Less(Cost{Expense: 1, Time: 900}))
	})

	t.Run("total order on finite costs", func(t *testing.T) {
		pairs := [][2]Cost{
			{{Expense: 1, Time: 100}, {Expense: 2, Time: 50}},
			{{Expense: 1, Time: 100}, {Expense: 1, Time: 200}},
			{{Expense: 1, Time: 100}, {Expense: 1, Time: 100}},
		}
		for _, pair := range pairs {
			a, b := pair[0], pair[1]
			holds := 0
			if a.Less(b) {
				holds++
			}
			if b.Less(a) {
				holds++
			}
			if a.Equal(b) {
				holds++
			}
			assert.Equal(t, 1, holds)
		}
	})

	t.Run("infinity dominates every finite cost", func(t *testing.T) {
		finite := Cost{Expense: 1e12, Time: 1 << 60}
		assert.True(t, finite.Less(InfCost()))
		assert.False(t, InfCost().Less(finite))
		assert.False(t, InfCost().Less(InfCost()))
		assert.False(t, InfCost().Equal(InfCost()))
	})
}

func TestCostAdd(t *testing.T) {
	sum := Cost{Expense: 1.5, Time: 100}.Add(Cost{Expense: 2.5, Time: 50})
	assert.Equal(t, Cost{Expense: 4.0, Time: 150}, sum)

	assert.True(t, InfCost().Add(Cost{Expense: 1, Time: 1}).IsInf())
	assert.True(t, Cost{Expense: 1, Time: 1}.Add(InfCost()).IsInf())
}

func TestWaitTimeCyclic(t *testing.T) {
	edge := newScheduledEdge(0, "x", 3600, 1800, 0, 600, 400, 1.0)
	assert.Equal(t, int64(2600), edge.EffDep)

	for _, tm := range []int64{0, 1, 2599, 2600, 2601, 86399, 86400, 86400 + 2600, 7 * 86400} {
		wait := edge.WaitTime(tm)
		assert.GreaterOrEqual(t, wait, int64(0))
		assert.Less(t, wait, TimeDurinal)
		assert.Equal(t, edge.EffDep, (tm+wait)%TimeDurinal)
	}
}

func TestEdgeWeight(t *testing.T) {
	t.Run("continuous adds processing only", func(t *testing.T) {
		edge := newContinuousEdge(0, "x", 100, 200, 300, 9.0)
		got := edge.Weight(Cost{Expense: 5, Time: 1000}, 10000)
		assert.Equal(t, Cost{Expense: 5, Time: 1600}, got)
	})

	t.Run("scheduled waits then rides", func(t *testing.T) {
		edge := newScheduledEdge(0, "x", 3600, 1800, 0, 0, 0, 2.0)
		got := edge.Weight(Cost{Expense: 1, Time: 0}, 10000)
		assert.Equal(t, Cost{Expense: 3, Time: 5400}, got)
	})

	t.Run("missed deadline goes infinite", func(t *testing.T) {
		edge := newScheduledEdge(0, "x", 3600, 1800, 0, 0, 0, 2.0)
		assert.True(t, edge.Weight(Cost{Expense: 1, Time: 0}, 5399).IsInf())
		assert.False(t, edge.Weight(Cost{Expense: 1, Time: 0}, 5400).IsInf())
	})

	t.Run("infinite stays infinite", func(t *testing.T) {
		edge := newScheduledEdge(0, "x", 3600, 1800, 0, 0, 0, 2.0)
		assert.True(t, edge.Weight(InfCost(), 1<<40).IsInf())
	})
}

func TestEffectiveDeparture(t *testing.T) {
	// processing pulls the departure before midnight, wraps around
	edge := newScheduledEdge(0, "x", 600, 1800, 100, 500, 400, 1.0)
	assert.Equal(t, TimeDurinal-300, edge.EffDep)
	assert.Equal(t, int64(1800+500+400+100), edge.EffDur)
}
