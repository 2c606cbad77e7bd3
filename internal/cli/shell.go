package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/go-andiamo/splitter"
	"github.com/utakatalp/championship-manager/internal/export"
	"github.com/utakatalp/championship-manager/internal/league"
	"github.com/utakatalp/championship-manager/internal/logging"
	"github.com/utakatalp/championship-manager/internal/roster"
	"github.com/utakatalp/championship-manager/internal/store"
)

var errNoChampionship = errors.New("no championship selected")

type command struct {
	usage       string
	help        string
	minArgs     int
	needsLeague bool
	run         func(ctx context.Context, args []string) error
}

// Shell is the interactive console. It keeps the selected championship as a
// handle of its own; the catalog does not know which one is current.
type Shell struct {
	in       *bufio.Scanner
	out      io.Writer
	catalog  *league.Catalog
	current  *league.League
	store    store.Store
	policy   league.ScoringPolicy
	tokens   splitter.Splitter
	commands map[string]command
}

func New(in io.Reader, out io.Writer, catalog *league.Catalog, st store.Store, policy league.ScoringPolicy) (*Shell, error) {
	// double quotes let team names with spaces stay one argument, e.g. promote "Steaua Bucuresti" 40
	tokens, err := splitter.NewSplitter(' ', splitter.DoubleQuotes)
	if err != nil {
		return nil, fmt.Errorf("creating tokenizer: %w", err)
	}
	s := &Shell{
		in:      bufio.NewScanner(in),
		out:     out,
		catalog: catalog,
		store:   st,
		policy:  policy,
		tokens:  tokens,
	}
	s.commands = s.commandTable()
	return s, nil
}

func (s *Shell) commandTable() map[string]command {
	return map[string]command{
		"help":     {usage: "help", help: "show this help", run: s.help},
		"create":   {usage: "create <name>", help: "create a championship and select it", minArgs: 1, run: s.create},
		"list":     {usage: "list", help: "list championships", run: s.list},
		"select":   {usage: "select <n>", help: "select a championship", minArgs: 1, run: s.selectLeague},
		"promote":  {usage: "promote <team> <value>", help: "add a team (value in millions)", minArgs: 2, needsLeague: true, run: s.promote},
		"relegate": {usage: "relegate <team>", help: "remove a team (exact name)", minArgs: 1, needsLeague: true, run: s.relegate},
		"find":     {usage: "find <team>", help: "show a team (any case)", minArgs: 1, needsLeague: true, run: s.find},
		"teams":    {usage: "teams", help: "list teams in registration order", needsLeague: true, run: s.teams},
		"import":   {usage: "import <roster.yaml>", help: "promote every team of a roster file", minArgs: 1, needsLeague: true, run: s.importRoster},
		"generate": {usage: "generate", help: "generate home and away fixtures", needsLeague: true, run: s.generate},
		"fixtures": {usage: "fixtures [stage]", help: "show fixtures of a stage, or all", needsLeague: true, run: s.fixtures},
		"play":     {usage: "play <stage>", help: "simulate a stage (replays it if already played)", minArgs: 1, needsLeague: true, run: s.play},
		"result":   {usage: "result <stage> <match> <home goals> <away goals>", help: "record a score", minArgs: 4, needsLeague: true, run: s.result},
		"standings": {usage: "standings", help: "show standings by points", needsLeague: true, run: func(context.Context, []string) error {
			s.printStandings()
			return nil
		}},
		"position": {usage: "position <team>", help: "show a team's position (exact name)", minArgs: 1, needsLeague: true, run: s.position},
		"values": {usage: "values", help: "show standings by team value", needsLeague: true, run: func(context.Context, []string) error {
			printValues(s.out, s.current)
			return nil
		}},
		"compare": {usage: "compare", help: "compare points and value positions", needsLeague: true, run: func(context.Context, []string) error {
			printComparison(s.out, s.current)
			return nil
		}},
		"export": {usage: "export <file.csv>", help: "export standings to CSV", minArgs: 1, needsLeague: true, run: s.export},
		"save":   {usage: "save", help: "save all championships", run: s.save},
		"load":   {usage: "load", help: "load all championships", run: s.load},
		"reset":  {usage: "reset", help: "reset all statistics of the championship", needsLeague: true, run: s.reset},
	}
}

// Run reads commands until exit or end of input.
func (s *Shell) Run(ctx context.Context) error {
	fmt.Fprintln(s.out, "===== Football Championship Manager =====")
	fmt.Fprintln(s.out, `Type "help" for commands.`)
	for {
		s.prompt()
		line, ok := s.readLine()
		if !ok {
			fmt.Fprintln(s.out)
			return s.in.Err()
		}
		if quit := s.Exec(ctx, line); quit {
			fmt.Fprintln(s.out, "Exiting...")
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

// Exec runs one command line and reports whether the shell should exit.
// Failures are printed; none of them ends the session.
func (s *Shell) Exec(ctx context.Context, line string) bool {
	args, err := s.split(line)
	if err != nil {
		fmt.Fprintf(s.out, "Could not read command: %v\n", err)
		return false
	}
	if len(args) == 0 {
		return false
	}

	name := strings.ToLower(args[0])
	if name == "exit" || name == "quit" {
		return true
	}
	cmd, ok := s.commands[name]
	if !ok {
		fmt.Fprintf(s.out, "Unknown command %q. Type \"help\" for commands.\n", args[0])
		return false
	}
	args = args[1:]
	if len(args) < cmd.minArgs {
		fmt.Fprintf(s.out, "Usage: %s\n", cmd.usage)
		return false
	}
	if cmd.needsLeague && s.current == nil {
		fmt.Fprintln(s.out, "No championship selected!")
		return false
	}

	logging.Log.Debugf("shell: %s %q", name, args)
	if err := cmd.run(ctx, args); err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
	}
	return false
}

func (s *Shell) prompt() {
	name := "none"
	if s.current != nil {
		name = s.current.Name
	}
	fmt.Fprintf(s.out, "[%s] > ", name)
}

func (s *Shell) readLine() (string, bool) {
	if !s.in.Scan() {
		return "", false
	}
	return s.in.Text(), true
}

// split tokenizes a command line. Surrounding quotes are dropped and runs of
// spaces do not produce empty arguments.
func (s *Shell) split(line string) ([]string, error) {
	parts, err := s.tokens.Split(strings.TrimSpace(line))
	if err != nil {
		return nil, err
	}
	args := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		if len(p) >= 2 && strings.HasPrefix(p, `"`) && strings.HasSuffix(p, `"`) {
			p = p[1 : len(p)-1]
		}
		args = append(args, p)
	}
	return args, nil
}

func (s *Shell) help(context.Context, []string) error {
	names := make([]string, 0, len(s.commands))
	for name := range s.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		cmd := s.commands[name]
		fmt.Fprintf(s.out, "  %-50s %s\n", cmd.usage, cmd.help)
	}
	fmt.Fprintf(s.out, "  %-50s %s\n", "exit", "leave the manager")
	return nil
}

func (s *Shell) create(_ context.Context, args []string) error {
	l, err := s.catalog.Create(strings.Join(args, " "))
	if err != nil {
		return err
	}
	s.current = l
	fmt.Fprintln(s.out, "Championship created successfully!")
	return nil
}

func (s *Shell) list(context.Context, []string) error {
	if s.catalog.Len() == 0 {
		fmt.Fprintln(s.out, "No championships available!")
		return nil
	}
	fmt.Fprintln(s.out, "Available Championships:")
	for i, l := range s.catalog.All() {
		fmt.Fprintf(s.out, "%d. %s (%d teams)\n", i+1, l.Name, l.Registry().Len())
	}
	return nil
}

func (s *Shell) selectLeague(_ context.Context, args []string) error {
	pos, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("%w: %q is not a number", league.ErrInvalidInput, args[0])
	}
	l, err := s.catalog.Get(pos)
	if err != nil {
		return err
	}
	s.current = l
	fmt.Fprintf(s.out, "Selected: %s\n", l.Name)
	return nil
}

func (s *Shell) promote(_ context.Context, args []string) error {
	name := strings.Join(args[:len(args)-1], " ")
	value, err := strconv.ParseFloat(args[len(args)-1], 64)
	if err != nil || value < 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("%w: value must be a non-negative number, got %q", league.ErrInvalidInput, args[len(args)-1])
	}
	if err := s.current.Promote(name, value); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "%s promoted successfully.\n", name)
	return nil
}

func (s *Shell) relegate(_ context.Context, args []string) error {
	name := strings.Join(args, " ")
	if err := s.current.Relegate(name); err != nil {
		s.suggest(name)
		return err
	}
	fmt.Fprintf(s.out, "%s relegated successfully.\n", name)
	return nil
}

func (s *Shell) find(_ context.Context, args []string) error {
	name := strings.Join(args, " ")
	t, err := s.current.FindTeam(name)
	if err != nil {
		s.suggest(name)
		return err
	}
	fmt.Fprintln(s.out, "Team found:")
	printTeam(s.out, t)
	return nil
}

func (s *Shell) teams(context.Context, []string) error {
	teams := s.current.Teams()
	if len(teams) == 0 {
		fmt.Fprintln(s.out, "No teams promoted yet.")
		return nil
	}
	for _, t := range teams {
		printTeam(s.out, t)
	}
	return nil
}

func (s *Shell) suggest(name string) {
	if hints := s.current.Registry().Suggest(name, 3); len(hints) > 0 {
		fmt.Fprintf(s.out, "Did you mean: %s?\n", strings.Join(hints, ", "))
	}
}

func (s *Shell) importRoster(_ context.Context, args []string) error {
	r, err := roster.Load(args[0])
	if err != nil {
		return err
	}
	if err := r.Apply(s.current); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Imported %d teams.\n", len(r.Teams))
	return nil
}

func (s *Shell) generate(context.Context, []string) error {
	if err := s.current.GenerateFixtures(); err != nil {
		return err
	}
	schedule := s.current.Schedule()
	fmt.Fprintf(s.out, "Generated %d stages with %d matches per stage\n", len(schedule), len(schedule[0]))
	return nil
}

func (s *Shell) fixtures(_ context.Context, args []string) error {
	if len(args) == 0 {
		schedule := s.current.Schedule()
		if len(schedule) == 0 {
			fmt.Fprintln(s.out, "No fixtures generated yet.")
			return nil
		}
		for i, rnd := range schedule {
			printRound(s.out, s.current.Name, i, rnd)
		}
		return nil
	}
	round, err := stage(args[0])
	if err != nil {
		return err
	}
	rnd, err := s.current.Round(round)
	if err != nil {
		return err
	}
	printRound(s.out, s.current.Name, round, rnd)
	return nil
}

func (s *Shell) play(_ context.Context, args []string) error {
	round, err := stage(args[0])
	if err != nil {
		return err
	}
	report, err := s.current.PlayRound(round, s.policy)
	if err != nil {
		return err
	}
	for _, f := range report.Played {
		fmt.Fprintln(s.out, f.ScoreLine())
	}
	for _, f := range report.Skipped {
		fmt.Fprintf(s.out, "Skipped %s: team no longer in the championship\n", f.ScoreLine())
		logging.Log.Warnf("%s: skipped %s", s.current.Name, f.ScoreLine())
	}
	fmt.Fprintf(s.out, "Stage %d completed!\n", round+1)
	s.printStandings()
	return nil
}

func (s *Shell) result(_ context.Context, args []string) error {
	nums := make([]int, 4)
	for i, a := range args[:4] {
		n, err := strconv.Atoi(a)
		if err != nil {
			return fmt.Errorf("%w: %q is not a number", league.ErrInvalidInput, a)
		}
		nums[i] = n
	}
	f, err := s.current.RecordResult(nums[0]-1, nums[1]-1, nums[2], nums[3])
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Recorded %s\n", f.ScoreLine())
	return nil
}

func (s *Shell) position(_ context.Context, args []string) error {
	name := strings.Join(args, " ")
	pos, err := s.current.Position(name, league.ByPoints)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "%s is in position #%d\n", name, pos)
	return nil
}

func (s *Shell) export(_ context.Context, args []string) error {
	if err := export.StandingsFile(args[0], s.current.Teams()); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Standings exported to %s\n", args[0])
	return nil
}

func (s *Shell) save(ctx context.Context, _ []string) error {
	if err := s.store.Save(ctx, s.catalog.All()); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Data saved successfully.")
	return nil
}

// load replaces every championship and selects the first one.
func (s *Shell) load(ctx context.Context, _ []string) error {
	leagues, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	s.catalog.Replace(leagues)
	s.current = nil
	if len(leagues) > 0 {
		s.current = leagues[0]
	}
	fmt.Fprintf(s.out, "Data loaded successfully (%d championships).\n", len(leagues))
	return nil
}

func (s *Shell) reset(context.Context, []string) error {
	fmt.Fprint(s.out, "Are you sure you want to reset all statistics? (y/n): ")
	answer, ok := s.readLine()
	if !ok || !strings.EqualFold(strings.TrimSpace(answer), "y") {
		fmt.Fprintln(s.out, "Reset cancelled.")
		return nil
	}
	s.current.Reset()
	fmt.Fprintln(s.out, "Championship statistics reset!")
	return nil
}

func (s *Shell) printStandings() {
	printStandings(s.out, s.current)
}

// stage converts a 1-based stage number from the user to a round index.
func stage(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a stage number", league.ErrInvalidInput, arg)
	}
	return n - 1, nil
}
