package league

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Registry holds the roster of a championship in insertion order. Names are
// not required to be unique; lookups return the first match.
type Registry struct {
	teams []*Team
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Add appends a team with zeroed statistics.
func (r *Registry) Add(name string, value float64) error {
	if err := checkName("team", name); err != nil {
		return err
	}
	if value < 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("%w: team value %v is not a non-negative number", ErrInvalidInput, value)
	}
	r.teams = append(r.teams, &Team{Name: name, Value: value})
	return nil
}

// Remove deletes the first team whose name matches exactly.
func (r *Registry) Remove(name string) error {
	i := r.index(name)
	if i == -1 {
		return fmt.Errorf("%w: %q", ErrTeamNotFound, name)
	}
	r.teams = append(r.teams[:i], r.teams[i+1:]...)
	return nil
}

// Find returns the first team whose name matches ignoring case.
func (r *Registry) Find(name string) (*Team, error) {
	for _, t := range r.teams {
		if strings.EqualFold(t.Name, name) {
			return t, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrTeamNotFound, name)
}

// Suggest returns up to limit registered names that fuzzily match name, best
// match first.
func (r *Registry) Suggest(name string, limit int) []string {
	ranks := fuzzy.RankFindFold(name, r.Names())
	sort.Sort(ranks)

	out := make([]string, 0, len(ranks))
	for _, rank := range ranks {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, rank.Target)
	}
	return out
}

// ResetAll zeroes the statistics of every team. Names and values are kept.
func (r *Registry) ResetAll() {
	for _, t := range r.teams {
		t.Wins, t.Draws, t.Losses = 0, 0, 0
		t.GoalsFor, t.GoalsAgainst = 0, 0
	}
}

// Teams returns a copy of the roster.
func (r *Registry) Teams() []Team {
	out := make([]Team, len(r.teams))
	for i, t := range r.teams {
		out[i] = *t
	}
	return out
}

func (r *Registry) Names() []string {
	out := make([]string, len(r.teams))
	for i, t := range r.teams {
		out[i] = t.Name
	}
	return out
}

func (r *Registry) Len() int {
	return len(r.teams)
}

// checkName rejects blank names and carriage returns, which do not survive a
// save and load.
func checkName(kind, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: %s name is empty", ErrInvalidInput, kind)
	}
	if strings.ContainsRune(name, '\r') {
		return fmt.Errorf("%w: %s name %q contains a carriage return", ErrInvalidInput, kind, name)
	}
	return nil
}

// lookup resolves a fixture endpoint. Fixtures store names exactly as they
// were scheduled, so the match is case-sensitive.
func (r *Registry) lookup(name string) *Team {
	if i := r.index(name); i != -1 {
		return r.teams[i]
	}
	return nil
}

func (r *Registry) index(name string) int {
	for i, t := range r.teams {
		if t.Name == name {
			return i
		}
	}
	return -1
}
