package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/utakatalp/championship-manager/internal/league"
)

var header = []string{"Position", "Team", "Points", "Wins", "Draws", "Losses", "GF", "GA", "GD"}

// WriteStandings writes the performance table as CSV, one row per team.
func WriteStandings(w io.Writer, teams []league.Team) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for i, t := range league.ByPerformance(teams) {
		row := []string{
			strconv.Itoa(i + 1),
			t.Name,
			strconv.Itoa(t.Points()),
			strconv.Itoa(t.Wins),
			strconv.Itoa(t.Draws),
			strconv.Itoa(t.Losses),
			strconv.Itoa(t.GoalsFor),
			strconv.Itoa(t.GoalsAgainst),
			strconv.Itoa(t.GoalDiff()),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// StandingsFile writes the performance table to path, replacing it.
func StandingsFile(path string, teams []league.Team) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := WriteStandings(f, teams); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
