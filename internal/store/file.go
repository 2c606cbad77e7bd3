package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/utakatalp/championship-manager/internal/league"
	"github.com/utakatalp/championship-manager/internal/logging"
)

// FileStore keeps championships in a single text file.
type FileStore struct {
	Path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Save writes to a temporary file next to Path and renames it into place.
func (s *FileStore) Save(_ context.Context, leagues []*league.League) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.Path), filepath.Base(s.Path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, leagues); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", s.Path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("replacing %s: %w", s.Path, err)
	}
	logging.Log.Infof("saved %d championships to %s", len(leagues), s.Path)
	return nil
}

func (s *FileStore) Load(_ context.Context) ([]*league.League, error) {
	f, err := os.Open(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s does not exist", ErrNoData, s.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", s.Path, err)
	}
	defer f.Close()

	leagues, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.Path, err)
	}
	logging.Log.Infof("loaded %d championships from %s", len(leagues), s.Path)
	return leagues, nil
}

func (s *FileStore) Close() error {
	return nil
}

// Encode writes championships in the line format
//
//	<championship count>
//	<name>
//	<team count> <rounds completed> <total rounds>
//	<name>,<value>,<wins>,<draws>,<losses>,<goals for>,<goals against>
//	<round count>
//	<fixture count>
//	<home>,<away>,<home goals>,<away goals>,<played 0|1>
//
// Lines are CSV records, so names containing commas, quotes or newlines are
// quoted. Carriage returns would be read back as plain newlines; names never
// contain them.
func Encode(w io.Writer, leagues []*league.League) error {
	cw := csv.NewWriter(w)
	write := func(fields ...string) {
		// errors are sticky and surface from cw.Error
		_ = cw.Write(fields)
	}

	write(strconv.Itoa(len(leagues)))
	for _, l := range leagues {
		teams := l.Teams()
		schedule := l.Schedule()

		write(l.Name)
		write(fmt.Sprintf("%d %d %d", len(teams), l.RoundsCompleted, l.TotalRounds))
		for _, t := range teams {
			write(
				t.Name,
				strconv.FormatFloat(t.Value, 'f', -1, 64),
				strconv.Itoa(t.Wins),
				strconv.Itoa(t.Draws),
				strconv.Itoa(t.Losses),
				strconv.Itoa(t.GoalsFor),
				strconv.Itoa(t.GoalsAgainst),
			)
		}

		write(strconv.Itoa(len(schedule)))
		for _, rnd := range schedule {
			write(strconv.Itoa(len(rnd)))
			for _, f := range rnd {
				played := "0"
				if f.Played {
					played = "1"
				}
				write(f.Home, f.Away, strconv.Itoa(f.HomeGoals), strconv.Itoa(f.AwayGoals), played)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// Decode reads championships written by Encode.
func Decode(r io.Reader) ([]*league.League, error) {
	d := &decoder{r: csv.NewReader(r)}
	d.r.FieldsPerRecord = -1
	// files written before names were quoted may contain bare quotes
	d.r.LazyQuotes = true

	count, err := d.count()
	if err != nil {
		return nil, err
	}
	var leagues []*league.League
	for i := 0; i < count; i++ {
		l, err := d.league()
		if err != nil {
			return nil, fmt.Errorf("championship %d: %w", i+1, err)
		}
		leagues = append(leagues, l)
	}
	return leagues, nil
}

type decoder struct {
	r *csv.Reader
}

func (d *decoder) league() (*league.League, error) {
	rec, err := d.record(1)
	if err != nil {
		return nil, err
	}
	name := rec[0]

	rec, err = d.record(1)
	if err != nil {
		return nil, err
	}
	header, err := d.ints(strings.Fields(rec[0]))
	if err != nil {
		return nil, err
	}
	if len(header) != 3 {
		return nil, d.malformed("want team count, rounds completed and total rounds, got %q", rec[0])
	}

	var teams []league.Team
	for i := 0; i < header[0]; i++ {
		t, err := d.team()
		if err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}

	rounds, err := d.count()
	if err != nil {
		return nil, err
	}
	var schedule league.Schedule
	for i := 0; i < rounds; i++ {
		fixtures, err := d.count()
		if err != nil {
			return nil, err
		}
		rnd := league.Round{}
		for j := 0; j < fixtures; j++ {
			f, err := d.fixture()
			if err != nil {
				return nil, err
			}
			rnd = append(rnd, f)
		}
		schedule = append(schedule, rnd)
	}

	return league.Restore(name, header[1], header[2], teams, schedule), nil
}

func (d *decoder) team() (league.Team, error) {
	rec, err := d.record(7)
	if err != nil {
		return league.Team{}, err
	}
	value, err := strconv.ParseFloat(rec[1], 64)
	if err != nil || value < 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return league.Team{}, d.malformed("bad team value %q", rec[1])
	}
	stats, err := d.ints(rec[2:])
	if err != nil {
		return league.Team{}, err
	}
	return league.Team{
		Name:         rec[0],
		Value:        value,
		Wins:         stats[0],
		Draws:        stats[1],
		Losses:       stats[2],
		GoalsFor:     stats[3],
		GoalsAgainst: stats[4],
	}, nil
}

func (d *decoder) fixture() (league.Fixture, error) {
	rec, err := d.record(5)
	if err != nil {
		return league.Fixture{}, err
	}
	goals, err := d.ints(rec[2:4])
	if err != nil {
		return league.Fixture{}, err
	}
	var played bool
	switch rec[4] {
	case "1":
		played = true
	case "0":
	default:
		return league.Fixture{}, d.malformed("bad played flag %q", rec[4])
	}
	return league.Fixture{Home: rec[0], Away: rec[1], HomeGoals: goals[0], AwayGoals: goals[1], Played: played}, nil
}

func (d *decoder) count() (int, error) {
	rec, err := d.record(1)
	if err != nil {
		return 0, err
	}
	n, err := d.ints(rec)
	if err != nil {
		return 0, err
	}
	return n[0], nil
}

func (d *decoder) record(fields int) ([]string, error) {
	rec, err := d.r.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: unexpected end of data", ErrMalformed)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if len(rec) != fields {
		return nil, d.malformed("want %d fields, got %d", fields, len(rec))
	}
	return rec, nil
}

// ints parses non-negative integers.
func (d *decoder) ints(fields []string) ([]int, error) {
	out := make([]int, len(fields))
	for i, s := range fields {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return nil, d.malformed("bad number %q", s)
		}
		out[i] = n
	}
	return out, nil
}

func (d *decoder) malformed(format string, args ...any) error {
	line, _ := d.r.FieldPos(0)
	return fmt.Errorf("%w: line %d: %s", ErrMalformed, line, fmt.Sprintf(format, args...))
}
