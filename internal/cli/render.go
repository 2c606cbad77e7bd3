package cli

import (
	"fmt"
	"io"

	"github.com/utakatalp/championship-manager/internal/league"
)

const nameWidth = 30

// fit pads or truncates a team name to the table's name column.
func fit(name string) string {
	r := []rune(name)
	if len(r) > nameWidth {
		return string(r[:nameWidth-3]) + "..."
	}
	return name
}

func printTeam(w io.Writer, t league.Team) {
	fmt.Fprintf(w, "%-*s Value: %.2fM | W:%d D:%d L:%d | GF:%d GA:%d | Pts:%d\n",
		nameWidth, fit(t.Name), t.Value,
		t.Wins, t.Draws, t.Losses,
		t.GoalsFor, t.GoalsAgainst, t.Points())
}

func printRound(w io.Writer, label string, round int, rnd league.Round) {
	fmt.Fprintf(w, "--- %s Stage %d Fixtures ---\n", label, round+1)
	for i, f := range rnd {
		fmt.Fprintf(w, "  %d. %s\n", i+1, f.ScoreLine())
	}
}

func printStandings(w io.Writer, l *league.League) {
	fmt.Fprintf(w, "%s standings after %d/%d stages\n", l.Name, l.RoundsCompleted, l.TotalRounds)
	fmt.Fprintf(w, "%3s %-*s %3s %2s %2s %2s %3s %3s %4s %3s\n",
		"Pos", nameWidth, "Team", "P", "W", "D", "L", "GF", "GA", "GD", "Pts")
	for i, t := range l.Standings(league.ByPoints) {
		fmt.Fprintf(w, "%3d %-*s %3d %2d %2d %2d %3d %3d %4d %3d\n",
			i+1, nameWidth, fit(t.Name),
			t.Played(),
			t.Wins,
			t.Draws,
			t.Losses,
			t.GoalsFor,
			t.GoalsAgainst,
			t.GoalDiff(),
			t.Points(),
		)
	}
}

func printValues(w io.Writer, l *league.League) {
	fmt.Fprintf(w, "%3s %-*s %10s\n", "Pos", nameWidth, "Team", "Value (M)")
	for i, t := range l.Standings(league.ByMarketValue) {
		fmt.Fprintf(w, "%3d %-*s %10.2f\n", i+1, nameWidth, fit(t.Name), t.Value)
	}
}

func printComparison(w io.Writer, l *league.League) {
	fmt.Fprintf(w, "%-*s %7s %7s %5s\n", nameWidth, "Team", "Pts Pos", "Val Pos", "Diff")
	for _, c := range l.Comparison() {
		fmt.Fprintf(w, "%-*s %7d %7d %+5d\n", nameWidth, fit(c.Team), c.PerformanceRank, c.ValueRank, c.Diff)
	}
}
