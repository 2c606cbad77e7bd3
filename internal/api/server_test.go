package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/utakatalp/championship-manager/internal/league"
	"github.com/utakatalp/championship-manager/internal/store"
	"golang.org/x/time/rate"
)

func performRequest(h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	reqBody := &bytes.Buffer{}
	if body != nil {
		if err := json.NewEncoder(reqBody).Encode(body); err != nil {
			panic("failed to marshal request body: " + err.Error())
		}
	}
	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	res := httptest.NewRecorder()
	h.ServeHTTP(res, req)
	return res
}

func decodeBody[T any](t *testing.T, res *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &v), res.Body.String())
	return v
}

type testServer struct {
	*Server
	store *store.FileStore
}

func setupServer(t *testing.T) testServer {
	t.Helper()
	st := store.NewFileStore(filepath.Join(t.TempDir(), "championship_data.txt"))
	s := NewServer(league.NewCatalog(), st, league.FixedScore(2, 1), rate.NewLimiter(rate.Inf, 1))
	return testServer{Server: s, store: st}
}

// seed creates championship 1 with teams A, B, C and D.
func seed(t *testing.T, h http.Handler) {
	t.Helper()
	res := performRequest(h, http.MethodPost, "/leagues", map[string]string{"name": "Liga 1"})
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())
	for _, tm := range []struct {
		name  string
		value float64
	}{{"A", 10}, {"B", 20}, {"C", 5}, {"D", 15}} {
		res = performRequest(h, http.MethodPost, "/leagues/1/teams", map[string]any{"name": tm.name, "value": tm.value})
		require.Equal(t, http.StatusCreated, res.Code, res.Body.String())
	}
}

func TestLeagues(t *testing.T) {
	s := setupServer(t)
	h := s.Handler()

	res := performRequest(h, http.MethodGet, "/leagues", nil)
	assert.Equal(t, http.StatusOK, res.Code)
	assert.JSONEq(t, `[]`, res.Body.String())

	res = performRequest(h, http.MethodPost, "/leagues", map[string]string{"name": ""})
	assert.Equal(t, http.StatusBadRequest, res.Code)

	res = performRequest(h, http.MethodPost, "/leagues", map[string]string{"name": "Liga 1"})
	require.Equal(t, http.StatusCreated, res.Code)
	assert.JSONEq(t, `{"id":1,"name":"Liga 1","teams":0,"rounds_completed":0,"total_rounds":0}`, res.Body.String())

	res = performRequest(h, http.MethodGet, "/leagues/2/teams", nil)
	assert.Equal(t, http.StatusNotFound, res.Code)
}

func TestTeams(t *testing.T) {
	s := setupServer(t)
	h := s.Handler()
	seed(t, h)

	res := performRequest(h, http.MethodPost, "/leagues/1/teams", map[string]any{"name": "E", "value": -1})
	assert.Equal(t, http.StatusBadRequest, res.Code)
	res = performRequest(h, http.MethodPost, "/leagues/1/teams", map[string]any{"name": "E"})
	assert.Equal(t, http.StatusBadRequest, res.Code)

	res = performRequest(h, http.MethodPost, "/leagues/1/teams", map[string]any{"name": "Steaua Bucuresti", "value": 40})
	require.Equal(t, http.StatusCreated, res.Code)

	res = performRequest(h, http.MethodGet, "/leagues/1/teams/steaua%20bucuresti", nil)
	require.Equal(t, http.StatusOK, res.Code)
	team := decodeBody[teamView](t, res)
	assert.Equal(t, "Steaua Bucuresti", team.Name)
	assert.Equal(t, 40.0, team.Value)

	res = performRequest(h, http.MethodGet, "/leagues/1/teams/steua", nil)
	require.Equal(t, http.StatusNotFound, res.Code)
	assert.Equal(t, []string{"Steaua Bucuresti"}, decodeBody[errorResponse](t, res).Suggestions)

	res = performRequest(h, http.MethodDelete, "/leagues/1/teams/steaua%20bucuresti", nil)
	assert.Equal(t, http.StatusNotFound, res.Code)
	res = performRequest(h, http.MethodDelete, "/leagues/1/teams/Steaua%20Bucuresti", nil)
	assert.Equal(t, http.StatusNoContent, res.Code)

	res = performRequest(h, http.MethodGet, "/leagues/1/teams", nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Len(t, decodeBody[[]teamView](t, res), 4)
}

func TestFixturesAndPlay(t *testing.T) {
	s := setupServer(t)
	h := s.Handler()

	res := performRequest(h, http.MethodPost, "/leagues", map[string]string{"name": "Empty"})
	require.Equal(t, http.StatusCreated, res.Code)
	res = performRequest(h, http.MethodPost, "/leagues/1/fixtures", nil)
	assert.Equal(t, http.StatusBadRequest, res.Code)

	s.catalog.Replace(nil)
	seed(t, h)

	res = performRequest(h, http.MethodPost, "/leagues/1/fixtures", nil)
	require.Equal(t, http.StatusCreated, res.Code)
	rounds := decodeBody[[]roundView](t, res)
	require.Len(t, rounds, 6)
	assert.Equal(t, 1, rounds[0].Round)
	assert.Len(t, rounds[0].Fixtures, 2)

	res = performRequest(h, http.MethodGet, "/leagues/1/rounds/7", nil)
	assert.Equal(t, http.StatusNotFound, res.Code)
	res = performRequest(h, http.MethodPost, "/leagues/1/rounds/0/play", nil)
	assert.Equal(t, http.StatusNotFound, res.Code)

	res = performRequest(h, http.MethodPost, "/leagues/1/rounds/1/play", nil)
	require.Equal(t, http.StatusOK, res.Code)
	played := decodeBody[playView](t, res)
	assert.Equal(t, 1, played.Round)
	assert.Len(t, played.Played, 2)
	assert.Empty(t, played.Skipped)
	for _, f := range played.Played {
		assert.True(t, f.Played)
		assert.Equal(t, 2, f.HomeGoals)
		assert.Equal(t, 1, f.AwayGoals)
	}

	res = performRequest(h, http.MethodPut, "/leagues/1/rounds/1/matches/1", map[string]int{"home_goals": 0, "away_goals": 0})
	require.Equal(t, http.StatusOK, res.Code)
	f := decodeBody[league.Fixture](t, res)
	assert.True(t, f.Played)
	assert.Zero(t, f.HomeGoals)

	res = performRequest(h, http.MethodPut, "/leagues/1/rounds/1/matches/3", map[string]int{"home_goals": 0, "away_goals": 0})
	assert.Equal(t, http.StatusNotFound, res.Code)
	res = performRequest(h, http.MethodPut, "/leagues/1/rounds/1/matches/1", map[string]int{"home_goals": 1})
	assert.Equal(t, http.StatusBadRequest, res.Code)

	res = performRequest(h, http.MethodGet, "/leagues/1/rounds/1", nil)
	require.Equal(t, http.StatusOK, res.Code)
	rnd := decodeBody[roundView](t, res)
	assert.Equal(t, league.Fixture{Home: "A", Away: "D", Played: true}, rnd.Fixtures[0])
}

func TestRelegatedTeamIsSkipped(t *testing.T) {
	s := setupServer(t)
	h := s.Handler()
	seed(t, h)
	require.Equal(t, http.StatusCreated, performRequest(h, http.MethodPost, "/leagues/1/fixtures", nil).Code)
	require.Equal(t, http.StatusNoContent, performRequest(h, http.MethodDelete, "/leagues/1/teams/D", nil).Code)

	res := performRequest(h, http.MethodPost, "/leagues/1/rounds/1/play", nil)
	require.Equal(t, http.StatusOK, res.Code)
	played := decodeBody[playView](t, res)
	assert.Len(t, played.Played, 1)
	assert.Len(t, played.Skipped, 1)

	res = performRequest(h, http.MethodPut, "/leagues/1/rounds/1/matches/1", map[string]int{"home_goals": 1, "away_goals": 0})
	assert.Equal(t, http.StatusConflict, res.Code)
}

func TestStandings(t *testing.T) {
	s := setupServer(t)
	h := s.Handler()
	seed(t, h)
	require.Equal(t, http.StatusCreated, performRequest(h, http.MethodPost, "/leagues/1/fixtures", nil).Code)
	require.Equal(t, http.StatusOK, performRequest(h, http.MethodPost, "/leagues/1/rounds/1/play", nil).Code)

	// Round 1 is A 2-1 D and B 2-1 C.
	res := performRequest(h, http.MethodGet, "/leagues/1/standings", nil)
	require.Equal(t, http.StatusOK, res.Code)
	table := decodeBody[[]standingView](t, res)
	require.Len(t, table, 4)
	assert.Equal(t, 1, table[0].Position)
	assert.Equal(t, "A", table[0].Name)
	assert.Equal(t, 3, table[0].Points)
	assert.Equal(t, "B", table[1].Name)

	res = performRequest(h, http.MethodGet, "/leagues/1/standings?order=value", nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "B", decodeBody[[]standingView](t, res)[0].Name)

	res = performRequest(h, http.MethodGet, "/leagues/1/standings?order=height", nil)
	assert.Equal(t, http.StatusBadRequest, res.Code)

	res = performRequest(h, http.MethodGet, "/leagues/1/standings/C?order=value", nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.JSONEq(t, `{"team":"C","order":"value","position":4}`, res.Body.String())

	res = performRequest(h, http.MethodGet, "/leagues/1/standings/c", nil)
	assert.Equal(t, http.StatusNotFound, res.Code)

	res = performRequest(h, http.MethodGet, "/leagues/1/comparison", nil)
	require.Equal(t, http.StatusOK, res.Code)
	cmp := decodeBody[[]league.Comparison](t, res)
	require.Len(t, cmp, 4)
	assert.Equal(t, league.Comparison{Team: "A", PerformanceRank: 1, ValueRank: 3, Diff: -2}, cmp[0])

	res = performRequest(h, http.MethodGet, "/leagues/1/standings.csv", nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "text/csv", res.Header().Get("Content-Type"))
	assert.Contains(t, res.Body.String(), "Position,Team,Points,Wins,Draws,Losses,GF,GA,GD\n1,A,3,1,0,0,2,1,1\n")
}

func TestReset(t *testing.T) {
	s := setupServer(t)
	h := s.Handler()
	seed(t, h)
	require.Equal(t, http.StatusCreated, performRequest(h, http.MethodPost, "/leagues/1/fixtures", nil).Code)
	require.Equal(t, http.StatusOK, performRequest(h, http.MethodPost, "/leagues/1/rounds/1/play", nil).Code)

	res := performRequest(h, http.MethodPost, "/leagues/1/reset", nil)
	assert.Equal(t, http.StatusBadRequest, res.Code)

	res = performRequest(h, http.MethodPost, "/leagues/1/reset?confirm=true", nil)
	assert.Equal(t, http.StatusNoContent, res.Code)

	l, err := s.catalog.Get(1)
	require.NoError(t, err)
	for _, team := range l.Teams() {
		assert.Zero(t, team.Played())
	}
	assert.Zero(t, l.RoundsCompleted)
}

func TestSaveLoad(t *testing.T) {
	s := setupServer(t)
	h := s.Handler()

	res := performRequest(h, http.MethodPost, "/load", nil)
	assert.Equal(t, http.StatusNotFound, res.Code)

	seed(t, h)
	res = performRequest(h, http.MethodPost, "/save", nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.JSONEq(t, `{"saved":1}`, res.Body.String())

	s.catalog.Replace(nil)
	res = performRequest(h, http.MethodPost, "/load", nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.JSONEq(t, `{"loaded":1}`, res.Body.String())

	leagues, err := s.store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, leagues[0].Teams(), s.catalog.All()[0].Teams())
}

func TestRateLimit(t *testing.T) {
	st := store.NewFileStore(filepath.Join(t.TempDir(), "data.txt"))
	s := NewServer(league.NewCatalog(), st, league.FixedScore(0, 0), rate.NewLimiter(0, 1))
	h := s.Handler()

	res := performRequest(h, http.MethodPost, "/leagues", map[string]string{"name": "Liga 1"})
	assert.Equal(t, http.StatusCreated, res.Code)
	res = performRequest(h, http.MethodPost, "/leagues", map[string]string{"name": "Liga 2"})
	assert.Equal(t, http.StatusTooManyRequests, res.Code)

	// reads are not limited
	res = performRequest(h, http.MethodGet, "/leagues", nil)
	assert.Equal(t, http.StatusOK, res.Code)
}

func TestUnknownRoute(t *testing.T) {
	s := setupServer(t)
	res := performRequest(s.Handler(), http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, res.Code)
	assert.JSONEq(t, `{"error":"page not found"}`, res.Body.String())
}
