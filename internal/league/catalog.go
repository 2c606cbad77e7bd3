package league

import "fmt"

// Catalog is the ordered collection of championships. Callers pick one and
// keep the *League they got back; the catalog has no notion of a current
// championship.
type Catalog struct {
	leagues []*League
}

func NewCatalog(leagues ...*League) *Catalog {
	return &Catalog{leagues: leagues}
}

// Create adds a new empty championship and returns it.
func (c *Catalog) Create(name string) (*League, error) {
	l, err := New(name)
	if err != nil {
		return nil, err
	}
	c.leagues = append(c.leagues, l)
	return l, nil
}

func (c *Catalog) Add(l *League) {
	c.leagues = append(c.leagues, l)
}

// Get returns the championship at the 1-based position pos.
func (c *Catalog) Get(pos int) (*League, error) {
	if pos < 1 || pos > len(c.leagues) {
		return nil, fmt.Errorf("%w: %d of %d", ErrLeagueNotFound, pos, len(c.leagues))
	}
	return c.leagues[pos-1], nil
}

func (c *Catalog) All() []*League {
	return append([]*League(nil), c.leagues...)
}

func (c *Catalog) Len() int {
	return len(c.leagues)
}

// Replace swaps the whole collection, e.g. after loading from a store.
func (c *Catalog) Replace(leagues []*League) {
	c.leagues = append([]*League(nil), leagues...)
}
