package league

import "fmt"

// bye marks the empty slot added when the team count is odd.
const bye = -1

// GenerateSchedule returns a double round-robin schedule for the given team
// names using the circle method. Every ordered (home, away) pair of distinct
// teams appears exactly once; a team paired with the bye slot sits the round
// out.
func GenerateSchedule(names []string) (Schedule, error) {
	if len(names) < 2 {
		return nil, fmt.Errorf("%w: have %d, need at least 2", ErrInsufficientTeams, len(names))
	}

	// Work on indices so the bye slot can never collide with a team name.
	slots := make([]int, len(names), len(names)+1)
	for i := range names {
		slots[i] = i
	}
	if len(slots)%2 != 0 {
		slots = append(slots, bye)
	}
	n := len(slots)

	rounds := make(Schedule, 2*(n-1))
	for r := range rounds {
		round := make(Round, 0, n/2)
		for i := 0; i < n/2; i++ {
			home, away := slots[i], slots[n-1-i]
			if home == bye || away == bye {
				continue
			}
			if r%2 != 0 {
				home, away = away, home
			}
			round = append(round, Fixture{Home: names[home], Away: names[away]})
		}
		rounds[r] = round

		// Rotate everything except the first slot one step to the right.
		last := slots[n-1]
		copy(slots[2:], slots[1:n-1])
		slots[1] = last
	}

	return rounds, nil
}
