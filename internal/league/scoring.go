package league

import (
	"math"
	"math/rand"
)

// ScoringPolicy decides the score of a fixture between two resolved teams.
type ScoringPolicy interface {
	Score(home, away Team) (homeGoals, awayGoals int)
}

// ScoreFunc adapts a plain function to ScoringPolicy.
type ScoreFunc func(home, away Team) (int, int)

func (f ScoreFunc) Score(home, away Team) (int, int) {
	return f(home, away)
}

// FixedScore always returns the same result.
func FixedScore(homeGoals, awayGoals int) ScoringPolicy {
	return ScoreFunc(func(Team, Team) (int, int) {
		return homeGoals, awayGoals
	})
}

// ValueWeighted simulates a match from the market values of both teams. Each
// side scores a Poisson number of goals with mean strength/GoalDivisor, where
// the home side's strength is boosted by HomeAdvantage.
type ValueWeighted struct {
	HomeAdvantage float64
	GoalDivisor   float64
	MaxGoals      int

	rng *rand.Rand
}

const (
	DefaultHomeAdvantage = 1.2
	DefaultGoalDivisor   = 50
	DefaultMaxGoals      = 5
)

// NewValueWeighted returns the reference simulation seeded with seed.
func NewValueWeighted(seed int64) *ValueWeighted {
	return &ValueWeighted{
		HomeAdvantage: DefaultHomeAdvantage,
		GoalDivisor:   DefaultGoalDivisor,
		MaxGoals:      DefaultMaxGoals,
		rng:           rand.New(rand.NewSource(seed)),
	}
}

func (v *ValueWeighted) Score(home, away Team) (int, int) {
	divisor := v.GoalDivisor
	if divisor <= 0 {
		divisor = DefaultGoalDivisor
	}
	lambdaHome := home.Value * v.HomeAdvantage / divisor
	lambdaAway := away.Value / divisor

	return v.capped(v.samplePoisson(lambdaHome)), v.capped(v.samplePoisson(lambdaAway))
}

func (v *ValueWeighted) capped(goals int) int {
	if v.MaxGoals > 0 && goals > v.MaxGoals {
		return v.MaxGoals
	}
	return goals
}

// samplePoisson draws from a Poisson distribution with mean lambda (Knuth).
func (v *ValueWeighted) samplePoisson(lambda float64) int {
	if !(lambda > 0) || math.IsInf(lambda, 0) {
		return 0
	}
	L := math.Exp(-lambda)
	p := 1.0
	k := 0
	for {
		k++
		p *= v.rng.Float64()
		if p <= L {
			return k - 1
		}
	}
}
