package league

import "fmt"

// Team represents a club in the championship.
type Team struct {
	Name         string  `json:"name"`
	Value        float64 `json:"value"`
	Wins         int     `json:"wins"`
	Draws        int     `json:"draws"`
	Losses       int     `json:"losses"`
	GoalsFor     int     `json:"goals_for"`
	GoalsAgainst int     `json:"goals_against"`
}

// Points is 3 per win and 1 per draw.
func (t Team) Points() int {
	return t.Wins*3 + t.Draws
}

func (t Team) GoalDiff() int {
	return t.GoalsFor - t.GoalsAgainst
}

func (t Team) Played() int {
	return t.Wins + t.Draws + t.Losses
}

// Fixture represents one scheduled match. Home and Away are team names rather
// than pointers, so relegating a team leaves its fixtures in place.
type Fixture struct {
	Home      string `json:"home"`
	Away      string `json:"away"`
	HomeGoals int    `json:"home_goals"`
	AwayGoals int    `json:"away_goals"`
	Played    bool   `json:"played"`
}

func (f Fixture) ScoreLine() string {
	if !f.Played {
		return fmt.Sprintf("%s vs %s", f.Home, f.Away)
	}
	return fmt.Sprintf("%s %d - %d %s", f.Home, f.HomeGoals, f.AwayGoals, f.Away)
}

func (f Fixture) involves(name string) bool {
	return f.Home == name || f.Away == name
}

// Round is one matchday (a stage).
type Round []Fixture

// Schedule is the ordered list of rounds of a championship.
type Schedule []Round

// League is a single championship: its teams, its fixtures and how far it has
// progressed. A League is not safe for concurrent use.
type League struct {
	Name            string
	RoundsCompleted int
	TotalRounds     int

	teams    *Registry
	schedule Schedule
}

// New creates an empty championship.
func New(name string) (*League, error) {
	if err := checkName("championship", name); err != nil {
		return nil, err
	}
	return &League{Name: name, teams: NewRegistry()}, nil
}

// Restore rebuilds a championship from persisted state. Teams and fixtures are
// taken as they are.
func Restore(name string, roundsCompleted, totalRounds int, teams []Team, schedule Schedule) *League {
	r := NewRegistry()
	for _, t := range teams {
		r.teams = append(r.teams, &t)
	}
	return &League{
		Name:            name,
		RoundsCompleted: roundsCompleted,
		TotalRounds:     totalRounds,
		teams:           r,
		schedule:        schedule.clone(),
	}
}

func (l *League) Registry() *Registry {
	return l.teams
}

// Teams returns a snapshot of the roster in registry order.
func (l *League) Teams() []Team {
	return l.teams.Teams()
}

// Schedule returns a copy of the fixture list.
func (l *League) Schedule() Schedule {
	return l.schedule.clone()
}

// Round returns a copy of the fixtures of the 0-based round.
func (l *League) Round(round int) (Round, error) {
	if round < 0 || round >= len(l.schedule) {
		return nil, fmt.Errorf("%w: %d of %d", ErrRoundOutOfRange, round+1, len(l.schedule))
	}
	return append(Round(nil), l.schedule[round]...), nil
}

// Promote adds a new team with zeroed statistics.
func (l *League) Promote(name string, value float64) error {
	return l.teams.Add(name, value)
}

// Relegate removes the first team named exactly name. Fixtures that reference
// it stay in the schedule and are skipped when played.
func (l *League) Relegate(name string) error {
	return l.teams.Remove(name)
}

// FindTeam looks a team up ignoring case.
func (l *League) FindTeam(name string) (Team, error) {
	t, err := l.teams.Find(name)
	if err != nil {
		return Team{}, err
	}
	return *t, nil
}

// GenerateFixtures replaces the schedule with a fresh double round-robin over
// the current roster. Team statistics are kept.
func (l *League) GenerateFixtures() error {
	schedule, err := GenerateSchedule(l.teams.Names())
	l.schedule = schedule
	l.TotalRounds = len(schedule)
	l.RoundsCompleted = 0
	return err
}

// Reset zeroes every team's statistics and marks all fixtures unplayed.
func (l *League) Reset() {
	l.teams.ResetAll()
	l.RoundsCompleted = 0
	for i := range l.schedule {
		for j := range l.schedule[i] {
			f := &l.schedule[i][j]
			f.HomeGoals, f.AwayGoals, f.Played = 0, 0, false
		}
	}
}

// Standings returns the roster sorted by the given ordering.
func (l *League) Standings(order Ordering) []Team {
	return Sort(l.teams.Teams(), order)
}

// Position returns the 1-based rank of the team named exactly name.
func (l *League) Position(name string, order Ordering) (int, error) {
	return PositionOf(l.teams.Teams(), name, order)
}

// Comparison reports performance rank against value rank for every team.
func (l *League) Comparison() []Comparison {
	return Compare(l.teams.Teams())
}

// PlayedCount returns how many played fixtures reference the named team.
func (l *League) PlayedCount(name string) int {
	n := 0
	for _, rnd := range l.schedule {
		for _, f := range rnd {
			if f.Played && f.involves(name) {
				n++
			}
		}
	}
	return n
}

func (s Schedule) clone() Schedule {
	if s == nil {
		return nil
	}
	out := make(Schedule, len(s))
	for i, rnd := range s {
		out[i] = append(Round{}, rnd...)
	}
	return out
}
