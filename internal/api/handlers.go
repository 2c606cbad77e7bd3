package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/utakatalp/championship-manager/internal/export"
	"github.com/utakatalp/championship-manager/internal/league"
	"github.com/utakatalp/championship-manager/internal/logging"
	"github.com/utakatalp/championship-manager/internal/store"
)

type errorResponse struct {
	Error       string   `json:"error"`
	Suggestions []string `json:"suggestions,omitempty"`
}

type leagueSummary struct {
	ID              int    `json:"id"`
	Name            string `json:"name"`
	Teams           int    `json:"teams"`
	RoundsCompleted int    `json:"rounds_completed"`
	TotalRounds     int    `json:"total_rounds"`
}

type teamView struct {
	league.Team
	Points   int `json:"points"`
	GoalDiff int `json:"goal_diff"`
	Played   int `json:"played"`
}

type standingView struct {
	Position int `json:"position"`
	teamView
}

type roundView struct {
	Round    int              `json:"round"`
	Fixtures []league.Fixture `json:"fixtures"`
}

type playView struct {
	Round   int              `json:"round"`
	Played  []league.Fixture `json:"played"`
	Skipped []league.Fixture `json:"skipped"`
}

type createLeagueRequest struct {
	Name string `json:"name"`
}

type promoteRequest struct {
	Name  string   `json:"name"`
	Value *float64 `json:"value"`
}

type resultRequest struct {
	HomeGoals *int `json:"home_goals"`
	AwayGoals *int `json:"away_goals"`
}

func newTeamView(t league.Team) teamView {
	return teamView{Team: t, Points: t.Points(), GoalDiff: t.GoalDiff(), Played: t.Played()}
}

func summarize(id int, l *league.League) leagueSummary {
	return leagueSummary{
		ID:              id,
		Name:            l.Name,
		Teams:           l.Registry().Len(),
		RoundsCompleted: l.RoundsCompleted,
		TotalRounds:     l.TotalRounds,
	}
}

func (s *Server) listLeagues(w http.ResponseWriter, r *http.Request) {
	out := make([]leagueSummary, 0, s.catalog.Len())
	for i, l := range s.catalog.All() {
		out = append(out, summarize(i+1, l))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createLeague(w http.ResponseWriter, r *http.Request) {
	var req createLeagueRequest
	if !decode(w, r, &req) {
		return
	}
	l, err := s.catalog.Create(req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	logging.Log.Infof("created championship %q", l.Name)
	writeJSON(w, http.StatusCreated, summarize(s.catalog.Len(), l))
}

func (s *Server) listTeams(w http.ResponseWriter, r *http.Request) {
	l, ok := s.league(w, r)
	if !ok {
		return
	}
	teams := l.Teams()
	out := make([]teamView, 0, len(teams))
	for _, t := range teams {
		out = append(out, newTeamView(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) promoteTeam(w http.ResponseWriter, r *http.Request) {
	l, ok := s.league(w, r)
	if !ok {
		return
	}
	var req promoteRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Value == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "value is required"})
		return
	}
	if err := l.Promote(req.Name, *req.Value); err != nil {
		writeError(w, err)
		return
	}
	logging.Log.Infof("%s: promoted %q", l.Name, req.Name)
	writeJSON(w, http.StatusCreated, newTeamView(league.Team{Name: req.Name, Value: *req.Value}))
}

func (s *Server) findTeam(w http.ResponseWriter, r *http.Request) {
	l, ok := s.league(w, r)
	if !ok {
		return
	}
	name, ok := pathVar(w, r, "name")
	if !ok {
		return
	}
	t, err := l.FindTeam(name)
	if err != nil {
		writeNotFound(w, l, name, err)
		return
	}
	writeJSON(w, http.StatusOK, newTeamView(t))
}

func (s *Server) relegateTeam(w http.ResponseWriter, r *http.Request) {
	l, ok := s.league(w, r)
	if !ok {
		return
	}
	name, ok := pathVar(w, r, "name")
	if !ok {
		return
	}
	if err := l.Relegate(name); err != nil {
		writeNotFound(w, l, name, err)
		return
	}
	logging.Log.Infof("%s: relegated %q", l.Name, name)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) generateFixtures(w http.ResponseWriter, r *http.Request) {
	l, ok := s.league(w, r)
	if !ok {
		return
	}
	if err := l.GenerateFixtures(); err != nil {
		writeError(w, err)
		return
	}
	logging.Log.Infof("%s: generated %d stages", l.Name, l.TotalRounds)
	writeJSON(w, http.StatusCreated, scheduleView(l.Schedule()))
}

func (s *Server) listFixtures(w http.ResponseWriter, r *http.Request) {
	l, ok := s.league(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, scheduleView(l.Schedule()))
}

func (s *Server) getRound(w http.ResponseWriter, r *http.Request) {
	l, ok := s.league(w, r)
	if !ok {
		return
	}
	round, _ := strconv.Atoi(mux.Vars(r)["round"])
	fixtures, err := l.Round(round - 1)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, roundView{Round: round, Fixtures: fixtures})
}

func (s *Server) playRound(w http.ResponseWriter, r *http.Request) {
	l, ok := s.league(w, r)
	if !ok {
		return
	}
	round, _ := strconv.Atoi(mux.Vars(r)["round"])
	report, err := l.PlayRound(round-1, s.policy)
	if err != nil {
		writeError(w, err)
		return
	}
	for _, f := range report.Skipped {
		logging.Log.Warnf("%s: skipped %s, team no longer registered", l.Name, f.ScoreLine())
	}
	logging.Log.Infof("%s: stage %d completed", l.Name, round)
	writeJSON(w, http.StatusOK, playView{
		Round:   round,
		Played:  nonNil(report.Played),
		Skipped: nonNil(report.Skipped),
	})
}

func (s *Server) recordResult(w http.ResponseWriter, r *http.Request) {
	l, ok := s.league(w, r)
	if !ok {
		return
	}
	var req resultRequest
	if !decode(w, r, &req) {
		return
	}
	if req.HomeGoals == nil || req.AwayGoals == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "home_goals and away_goals are required"})
		return
	}
	vars := mux.Vars(r)
	round, _ := strconv.Atoi(vars["round"])
	match, _ := strconv.Atoi(vars["match"])

	f, err := l.RecordResult(round-1, match-1, *req.HomeGoals, *req.AwayGoals)
	if err != nil {
		writeError(w, err)
		return
	}
	logging.Log.Infof("%s: recorded %s", l.Name, f.ScoreLine())
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) standings(w http.ResponseWriter, r *http.Request) {
	l, ok := s.league(w, r)
	if !ok {
		return
	}
	order, err := league.ParseOrdering(r.URL.Query().Get("order"))
	if err != nil {
		writeError(w, err)
		return
	}
	table := l.Standings(order)
	out := make([]standingView, 0, len(table))
	for i, t := range table {
		out = append(out, standingView{Position: i + 1, teamView: newTeamView(t)})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) standingsCSV(w http.ResponseWriter, r *http.Request) {
	l, ok := s.league(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=standings.csv")
	if err := export.WriteStandings(w, l.Teams()); err != nil {
		logging.Log.Errorf("%s: writing csv: %v", l.Name, err)
	}
}

func (s *Server) position(w http.ResponseWriter, r *http.Request) {
	l, ok := s.league(w, r)
	if !ok {
		return
	}
	name, ok := pathVar(w, r, "name")
	if !ok {
		return
	}
	order, err := league.ParseOrdering(r.URL.Query().Get("order"))
	if err != nil {
		writeError(w, err)
		return
	}
	pos, err := l.Position(name, order)
	if err != nil {
		writeNotFound(w, l, name, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"team": name, "order": order.String(), "position": pos})
}

func (s *Server) comparison(w http.ResponseWriter, r *http.Request) {
	l, ok := s.league(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, l.Comparison())
}

// reset requires ?confirm=true since it wipes every result.
func (s *Server) reset(w http.ResponseWriter, r *http.Request) {
	l, ok := s.league(w, r)
	if !ok {
		return
	}
	if confirm, _ := strconv.ParseBool(r.URL.Query().Get("confirm")); !confirm {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "reset must be confirmed with confirm=true"})
		return
	}
	l.Reset()
	logging.Log.Infof("%s: statistics reset", l.Name)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) save(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Save(r.Context(), s.catalog.All()); err != nil {
		logging.Log.Errorf("saving championships: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"saved": s.catalog.Len()})
}

func (s *Server) load(w http.ResponseWriter, r *http.Request) {
	leagues, err := s.store.Load(r.Context())
	if errors.Is(err, store.ErrNoData) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		logging.Log.Errorf("loading championships: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	s.catalog.Replace(leagues)
	writeJSON(w, http.StatusOK, map[string]int{"loaded": len(leagues)})
}

// league resolves the {id} path variable, writing a 404 when it is unknown.
func (s *Server) league(w http.ResponseWriter, r *http.Request) (*league.League, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid championship id"})
		return nil, false
	}
	l, err := s.catalog.Get(id)
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return l, true
}

func scheduleView(schedule league.Schedule) []roundView {
	out := make([]roundView, 0, len(schedule))
	for i, rnd := range schedule {
		out = append(out, roundView{Round: i + 1, Fixtures: nonNil(rnd)})
	}
	return out
}

func nonNil(fixtures []league.Fixture) []league.Fixture {
	if fixtures == nil {
		return []league.Fixture{}
	}
	return fixtures
}

func pathVar(w http.ResponseWriter, r *http.Request, key string) (string, bool) {
	v, err := url.PathUnescape(mux.Vars(r)[key])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid %s", key)})
		return "", false
	}
	return v, true
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, league.ErrTeamNotFound),
		errors.Is(err, league.ErrLeagueNotFound),
		errors.Is(err, league.ErrRoundOutOfRange),
		errors.Is(err, league.ErrFixtureOutOfRange):
		return http.StatusNotFound
	case errors.Is(err, league.ErrInvalidInput),
		errors.Is(err, league.ErrInsufficientTeams):
		return http.StatusBadRequest
	case errors.Is(err, league.ErrDanglingFixture):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorResponse{Error: err.Error()})
}

func writeNotFound(w http.ResponseWriter, l *league.League, name string, err error) {
	writeJSON(w, statusFor(err), errorResponse{
		Error:       err.Error(),
		Suggestions: l.Registry().Suggest(name, 3),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Log.Errorf("encoding response: %v", err)
	}
}
