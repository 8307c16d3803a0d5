package transit

import (
	"math"
)

// TimeDurinal is the length of one day in seconds. Scheduled connections
// depart at the same wall-clock time every day, so all wait times are
// computed modulo this.
const TimeDurinal int64 = 24 * 3600

const timeInf int64 = math.MaxInt64

// Cost is the price of reaching a vertex, both in money spent and in
// elapsed seconds.
type Cost struct {
	Expense float64
	Time    int64
}

// InfCost is the unreachable sentinel. Every finite cost orders strictly
// below it.
func InfCost() Cost {
	return Cost{Expense: math.Inf(1), Time: timeInf}
}

func (c Cost) IsInf() bool {
	return math.IsInf(c.Expense, 1) || c.Time == timeInf
}

// Less orders costs by expense first, elapsed time as tie break. Infinite
// costs are never less than anything; anything finite is less than an
// infinite cost.
func (c Cost) Less(other Cost) bool {
	if c.IsInf() {
		return false
	}
	if other.IsInf() {
		return true
	}
	if c.Expense != other.Expense {
		return c.Expense < other.Expense
	}
	return c.Time < other.Time
}

// Equal holds only between two finite costs with equal components.
// Infinite costs are not orderable against each other.
func (c Cost) Equal(other Cost) bool {
	if c.IsInf() || other.IsInf() {
		return false
	}
	return c.Expense == other.Expense && c.Time == other.Time
}

// Add sums componentwise. An infinite operand poisons the result.
func (c Cost) Add(other Cost) Cost {
	if c.IsInf() || other.IsInf() {
		return InfCost()
	}
	return Cost{Expense: c.Expense + other.Expense, Time: c.Time + other.Time}
}
