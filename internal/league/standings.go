package league

import (
	"fmt"
	"sort"
)

// Ordering selects how standings are ranked.
type Ordering int

const (
	// ByPoints ranks by points, then goal difference, then goals scored.
	ByPoints Ordering = iota
	// ByMarketValue ranks by team value.
	ByMarketValue
)

func (o Ordering) String() string {
	switch o {
	case ByPoints:
		return "points"
	case ByMarketValue:
		return "value"
	}
	return fmt.Sprintf("Ordering(%d)", int(o))
}

// ParseOrdering accepts "points" or "value"; an empty string means points.
func ParseOrdering(s string) (Ordering, error) {
	switch s {
	case "", "points", "performance":
		return ByPoints, nil
	case "value":
		return ByMarketValue, nil
	}
	return 0, fmt.Errorf("%w: unknown ordering %q", ErrInvalidInput, s)
}

// Comparison holds a team's rank by performance and by value.
type Comparison struct {
	Team            string `json:"team"`
	PerformanceRank int    `json:"performance_rank"`
	ValueRank       int    `json:"value_rank"`
	// Diff is PerformanceRank - ValueRank; negative means the team is doing
	// better than its valuation suggests.
	Diff int `json:"diff"`
}

// ByPerformance returns the teams sorted by points, goal difference and goals
// for, all descending. Teams level on all three keep their input order.
func ByPerformance(teams []Team) []Team {
	return Sort(teams, ByPoints)
}

// ByValue returns the teams sorted by value, highest first. Ties keep their
// input order.
func ByValue(teams []Team) []Team {
	return Sort(teams, ByMarketValue)
}

// Sort returns a sorted copy of teams; the input is not modified.
func Sort(teams []Team, order Ordering) []Team {
	idx := rankIndex(teams, order)
	out := make([]Team, len(idx))
	for pos, i := range idx {
		out[pos] = teams[i]
	}
	return out
}

// PositionOf returns the 1-based rank of the first team named exactly name.
func PositionOf(teams []Team, name string, order Ordering) (int, error) {
	for pos, t := range Sort(teams, order) {
		if t.Name == name {
			return pos + 1, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrTeamNotFound, name)
}

// Compare ranks every team both ways, in input order. Ranks are tracked by
// position, so teams sharing a name get their own rank each.
func Compare(teams []Team) []Comparison {
	perf := ranks(rankIndex(teams, ByPoints))
	value := ranks(rankIndex(teams, ByMarketValue))

	out := make([]Comparison, len(teams))
	for i, t := range teams {
		out[i] = Comparison{
			Team:            t.Name,
			PerformanceRank: perf[i],
			ValueRank:       value[i],
			Diff:            perf[i] - value[i],
		}
	}
	return out
}

// rankIndex returns the indices of teams in ranked order.
func rankIndex(teams []Team, order Ordering) []int {
	idx := make([]int, len(teams))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		a, b := teams[idx[i]], teams[idx[j]]
		if order == ByMarketValue {
			return a.Value > b.Value
		}
		if a.Points() != b.Points() {
			return a.Points() > b.Points()
		}
		if a.GoalDiff() != b.GoalDiff() {
			return a.GoalDiff() > b.GoalDiff()
		}
		return a.GoalsFor > b.GoalsFor
	})
	return idx
}

// ranks inverts a ranked index list into 1-based ranks per input position.
func ranks(idx []int) []int {
	out := make([]int, len(idx))
	for pos, i := range idx {
		out[i] = pos + 1
	}
	return out
}
