package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/utakatalp/championship-manager/internal/league"
)

// sampleLeagues returns two championships with played, unplayed and dangling
// fixtures and a few awkward team names.
func sampleLeagues(t *testing.T) []*league.League {
	t.Helper()

	liga1, err := league.New("Liga 1")
	require.NoError(t, err)
	teams := []struct {
		name  string
		value float64
	}{
		{"FCSB", 45.5},
		{"Universitatea Craiova, 1948", 25.25},
		{`Sepsi "OSK"`, 0.1},
		{"Farul", 12},
		{"Rapid", 1000000},
		{"Otelul\nGalati", 7},
		{" Petrolul ", 3},
		{`"`, 1},
	}
	for _, tm := range teams {
		require.NoError(t, liga1.Promote(tm.name, tm.value))
	}
	require.NoError(t, liga1.GenerateFixtures())
	_, err = liga1.PlayRound(0, league.FixedScore(2, 1))
	require.NoError(t, err)
	_, err = liga1.RecordResult(1, 0, 0, 0)
	require.NoError(t, err)
	require.NoError(t, liga1.Relegate("Farul"))

	liga2, err := league.New("Liga 2, Seria\nA")
	require.NoError(t, err)
	require.NoError(t, liga2.Promote("Petrolul", 3))

	return []*league.League{liga1, liga2}
}

func assertSameLeagues(t *testing.T, want, got []*league.League) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].Name, got[i].Name)
		assert.Equal(t, want[i].RoundsCompleted, got[i].RoundsCompleted)
		assert.Equal(t, want[i].TotalRounds, got[i].TotalRounds)
		assert.Equal(t, want[i].Teams(), got[i].Teams())
		assert.Equal(t, want[i].Schedule(), got[i].Schedule())
	}
}
