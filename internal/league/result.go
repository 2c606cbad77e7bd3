package league

import "fmt"

// RoundReport describes what happened when a round was played.
type RoundReport struct {
	Round   int       `json:"round"`
	Played  []Fixture `json:"played"`
	Skipped []Fixture `json:"skipped"`
}

// ApplyScore returns t with one match added: goalsFor scored, goalsAgainst
// conceded, and the outcome counted.
func ApplyScore(t Team, goalsFor, goalsAgainst int) Team {
	t.GoalsFor += goalsFor
	t.GoalsAgainst += goalsAgainst
	switch {
	case goalsFor > goalsAgainst:
		t.Wins++
	case goalsFor < goalsAgainst:
		t.Losses++
	default:
		t.Draws++
	}
	return t
}

// ReverseScore undoes ApplyScore with the same arguments.
func ReverseScore(t Team, goalsFor, goalsAgainst int) Team {
	t.GoalsFor -= goalsFor
	t.GoalsAgainst -= goalsAgainst
	switch {
	case goalsFor > goalsAgainst:
		t.Wins--
	case goalsFor < goalsAgainst:
		t.Losses--
	default:
		t.Draws--
	}
	return t
}

// PlayRound plays every fixture of the 0-based round with scores from policy.
// Fixtures already played are reversed first, so playing a round again
// replaces its results. Fixtures whose teams are no longer registered are
// left untouched and reported as skipped.
func (l *League) PlayRound(round int, policy ScoringPolicy) (RoundReport, error) {
	if round < 0 || round >= len(l.schedule) {
		return RoundReport{}, fmt.Errorf("%w: %d of %d", ErrRoundOutOfRange, round+1, len(l.schedule))
	}

	report := RoundReport{Round: round}
	for i := range l.schedule[round] {
		f := &l.schedule[round][i]
		if !l.play(f, policy) {
			report.Skipped = append(report.Skipped, *f)
			continue
		}
		report.Played = append(report.Played, *f)
	}
	l.markCompleted(round)
	return report, nil
}

// PlayFixture plays a single fixture of the 0-based round, replacing any
// previous result.
func (l *League) PlayFixture(round, match int, policy ScoringPolicy) (Fixture, error) {
	f, err := l.fixture(round, match)
	if err != nil {
		return Fixture{}, err
	}
	if !l.play(f, policy) {
		return *f, fmt.Errorf("%w: %s", ErrDanglingFixture, f.ScoreLine())
	}
	l.markCompleted(round)
	return *f, nil
}

// RecordResult stores a known score for a single fixture.
func (l *League) RecordResult(round, match, homeGoals, awayGoals int) (Fixture, error) {
	if homeGoals < 0 || awayGoals < 0 {
		return Fixture{}, fmt.Errorf("%w: negative score %d-%d", ErrInvalidInput, homeGoals, awayGoals)
	}
	return l.PlayFixture(round, match, FixedScore(homeGoals, awayGoals))
}

func (l *League) fixture(round, match int) (*Fixture, error) {
	if round < 0 || round >= len(l.schedule) {
		return nil, fmt.Errorf("%w: %d of %d", ErrRoundOutOfRange, round+1, len(l.schedule))
	}
	if match < 0 || match >= len(l.schedule[round]) {
		return nil, fmt.Errorf("%w: %d of %d", ErrFixtureOutOfRange, match+1, len(l.schedule[round]))
	}
	return &l.schedule[round][match], nil
}

// play resolves both teams and replaces the fixture's result. It reports false
// without touching anything when either team cannot be resolved.
func (l *League) play(f *Fixture, policy ScoringPolicy) bool {
	home, away := l.teams.lookup(f.Home), l.teams.lookup(f.Away)
	if home == nil || away == nil {
		return false
	}

	if f.Played {
		if holds(*home, f.HomeGoals, f.AwayGoals) {
			*home = ReverseScore(*home, f.HomeGoals, f.AwayGoals)
		}
		if holds(*away, f.AwayGoals, f.HomeGoals) {
			*away = ReverseScore(*away, f.AwayGoals, f.HomeGoals)
		}
	}

	hg, ag := policy.Score(*home, *away)
	if hg < 0 {
		hg = 0
	}
	if ag < 0 {
		ag = 0
	}
	f.HomeGoals, f.AwayGoals, f.Played = hg, ag, true

	*home = ApplyScore(*home, hg, ag)
	*away = ApplyScore(*away, ag, hg)
	return true
}

// holds reports whether t's record can contain a result of goalsFor to
// goalsAgainst. A team promoted under the name of a relegated one starts
// without the old results, and reversing them would drive it negative.
func holds(t Team, goalsFor, goalsAgainst int) bool {
	if t.GoalsFor < goalsFor || t.GoalsAgainst < goalsAgainst {
		return false
	}
	switch {
	case goalsFor > goalsAgainst:
		return t.Wins > 0
	case goalsFor < goalsAgainst:
		return t.Losses > 0
	}
	return t.Draws > 0
}

func (l *League) markCompleted(round int) {
	if round+1 > l.RoundsCompleted {
		l.RoundsCompleted = round + 1
	}
}
