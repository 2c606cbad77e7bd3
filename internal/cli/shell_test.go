package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/utakatalp/championship-manager/internal/league"
	"github.com/utakatalp/championship-manager/internal/store"
)

func newTestShell(t *testing.T, input string) (*Shell, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	st := store.NewFileStore(filepath.Join(t.TempDir(), "championships.txt"))
	s, err := New(strings.NewReader(input), out, league.NewCatalog(), st, league.FixedScore(2, 1))
	require.NoError(t, err)
	return s, out
}

func run(t *testing.T, s *Shell, lines ...string) {
	t.Helper()
	for _, line := range lines {
		require.False(t, s.Exec(context.Background(), line), line)
	}
}

func TestShellWorkflow(t *testing.T) {
	s, out := newTestShell(t, "")
	run(t, s,
		"create Liga 1",
		"promote A 10",
		"promote B 20",
		"promote C 5",
		"promote D 15",
		"generate",
		"play 1",
	)

	text := out.String()
	assert.Contains(t, text, "Championship created successfully!")
	assert.Contains(t, text, "Generated 6 stages with 2 matches per stage")
	assert.Contains(t, text, "Stage 1 completed!")
	assert.Contains(t, text, "standings after 1/6 stages")

	require.NotNil(t, s.current)
	assert.Equal(t, "Liga 1", s.current.Name)
	assert.Equal(t, 1, s.current.RoundsCompleted)

	total := 0
	for _, team := range s.current.Teams() {
		total += team.Played()
	}
	assert.Equal(t, 4, total)
}

func TestShellQuotedNames(t *testing.T) {
	s, out := newTestShell(t, "")
	run(t, s,
		`create "Liga 1"`,
		`promote "Steaua Bucuresti" 40`,
		`promote   Dinamo   Bucuresti   12.5`,
		`find "steaua bucuresti"`,
	)

	names := s.current.Registry().Names()
	assert.Equal(t, []string{"Steaua Bucuresti", "Dinamo Bucuresti"}, names)
	assert.Contains(t, out.String(), "Team found:")
	assert.Contains(t, out.String(), "Value: 40.00M")
}

func TestShellRequiresSelection(t *testing.T) {
	s, out := newTestShell(t, "")
	run(t, s, "promote A 10", "standings")

	assert.Equal(t, 2, strings.Count(out.String(), "No championship selected!"))
}

func TestShellInputErrors(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{name: "unknown command", line: "kick A", want: `Unknown command "kick"`},
		{name: "missing arguments", line: "result 1 1", want: "Usage: result <stage> <match> <home goals> <away goals>"},
		{name: "negative value", line: "promote A -3", want: "value must be a non-negative number"},
		{name: "not a number", line: "promote A lots", want: "value must be a non-negative number"},
		{name: "stage out of range", line: "play 9", want: "invalid stage number"},
		{name: "stage not a number", line: "play first", want: "is not a stage number"},
		{name: "unknown team", line: "position Z", want: "team not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, out := newTestShell(t, "")
			run(t, s, "create Liga", "promote B 20", "promote C 5")
			run(t, s, tt.line)
			assert.Contains(t, out.String(), tt.want)
		})
	}
}

func TestShellSuggestions(t *testing.T) {
	s, out := newTestShell(t, "")
	run(t, s, "create Liga", `promote "Steaua Bucuresti" 40`, "promote Rapid 8", "find Stea")

	assert.Contains(t, out.String(), "Did you mean: Steaua Bucuresti?")
	assert.NotContains(t, out.String(), "Team found:")
}

func TestShellResultAndReplay(t *testing.T) {
	s, out := newTestShell(t, "")
	run(t, s, "create Liga", "promote A 10", "promote B 20", "generate", "result 1 1 3 0")

	assert.Contains(t, out.String(), "Recorded A 3 - 0 B")
	a, err := s.current.FindTeam("A")
	require.NoError(t, err)
	assert.Equal(t, 1, a.Wins)

	run(t, s, "result 1 1 0 0")
	a, err = s.current.FindTeam("A")
	require.NoError(t, err)
	assert.Equal(t, 0, a.Wins)
	assert.Equal(t, 1, a.Draws)
	assert.Equal(t, 0, a.GoalsFor)
}

func TestShellReset(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		wins   int
	}{
		{name: "confirmed", answer: "y\n", wins: 0},
		{name: "declined", answer: "n\n", wins: 1},
		{name: "no answer", answer: "", wins: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestShell(t, tt.answer)
			run(t, s, "create Liga", "promote A 10", "promote B 20", "generate", "play 1", "reset")

			home := s.current.Schedule()[0][0].Home
			team, err := s.current.FindTeam(home)
			require.NoError(t, err)
			assert.Equal(t, tt.wins, team.Wins)
		})
	}
}

func TestShellSaveLoad(t *testing.T) {
	s, out := newTestShell(t, "")
	run(t, s, "create First", "promote A 10", "create Second", "promote B 20", "save")

	s.catalog.Replace(nil)
	s.current = nil
	run(t, s, "load", "list")

	assert.Contains(t, out.String(), "Data loaded successfully (2 championships).")
	assert.Contains(t, out.String(), "1. First (1 teams)")
	assert.Contains(t, out.String(), "2. Second (1 teams)")
	require.NotNil(t, s.current)
	assert.Equal(t, "First", s.current.Name)
}

func TestShellExport(t *testing.T) {
	s, out := newTestShell(t, "")
	path := filepath.Join(t.TempDir(), "standings.csv")
	run(t, s, "create Liga", "promote A 10", "export "+path)

	assert.Contains(t, out.String(), "Standings exported to "+path)
	assert.FileExists(t, path)
}

func TestShellRun(t *testing.T) {
	s, out := newTestShell(t, "create Liga\nlist\nexit\nlist\n")
	require.NoError(t, s.Run(context.Background()))

	assert.Contains(t, out.String(), "1. Liga (0 teams)")
	assert.Contains(t, out.String(), "[Liga] > ")
	assert.Contains(t, out.String(), "Exiting...")
	assert.Equal(t, 1, strings.Count(out.String(), "1. Liga"))
}

func TestShellRunEndOfInput(t *testing.T) {
	s, _ := newTestShell(t, "create Liga\n")
	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, 1, s.catalog.Len())
}

func TestFit(t *testing.T) {
	assert.Equal(t, "Short", fit("Short"))

	long := strings.Repeat("x", nameWidth+5)
	got := fit(long)
	assert.Len(t, got, nameWidth)
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestShellTeams(t *testing.T) {
	s, out := newTestShell(t, "")
	run(t, s, "create Liga", "teams", "promote Rapid 8", "promote FCSB 45", "teams")

	text := out.String()
	assert.Contains(t, text, "No teams promoted yet.")
	assert.Less(t, strings.Index(text, "Rapid "), strings.Index(text, "FCSB "))
}
