package roster

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/utakatalp/championship-manager/internal/league"
	"gopkg.in/yaml.v3"
)

// Roster is a list of teams to promote into a championship, read from YAML:
//
//	name: Liga 1
//	teams:
//	  - name: FCSB
//	    value: 45.5
type Roster struct {
	Name  string  `yaml:"name"`
	Teams []Entry `yaml:"teams"`
}

type Entry struct {
	Name  string  `yaml:"name"`
	Value float64 `yaml:"value"`
}

func Load(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading roster: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Roster, error) {
	var r Roster
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing roster: %w", err)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *Roster) Validate() error {
	if len(r.Teams) == 0 {
		return fmt.Errorf("%w: roster has no teams", league.ErrInvalidInput)
	}
	var errs []error
	for i, e := range r.Teams {
		if strings.TrimSpace(e.Name) == "" {
			errs = append(errs, fmt.Errorf("team %d: name is empty", i+1))
		}
		if strings.ContainsRune(e.Name, '\r') {
			errs = append(errs, fmt.Errorf("team %d: name contains a carriage return", i+1))
		}
		if e.Value < 0 || math.IsNaN(e.Value) || math.IsInf(e.Value, 0) {
			errs = append(errs, fmt.Errorf("team %d (%s): value %v is not a non-negative number", i+1, e.Name, e.Value))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", league.ErrInvalidInput, errors.Join(errs...))
	}
	return nil
}

// Apply promotes every roster team into l. The roster is validated first so
// a bad entry leaves l unchanged.
func (r *Roster) Apply(l *league.League) error {
	if err := r.Validate(); err != nil {
		return err
	}
	for _, e := range r.Teams {
		if err := l.Promote(e.Name, e.Value); err != nil {
			return fmt.Errorf("promoting %q: %w", e.Name, err)
		}
	}
	return nil
}
