package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/utakatalp/championship-manager/internal/api"
	"github.com/utakatalp/championship-manager/internal/cli"
	"github.com/utakatalp/championship-manager/internal/config"
	"github.com/utakatalp/championship-manager/internal/league"
	"github.com/utakatalp/championship-manager/internal/logging"
	"github.com/utakatalp/championship-manager/internal/store"
	"golang.org/x/time/rate"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", os.Getenv("CHAMPIONSHIP_CONFIG"), "Path to config file (defaults to ./config.yaml if present)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [-config path] [shell|serve]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	mode := "shell"
	if flag.NArg() > 0 {
		mode = flag.Arg(0)
	}
	if mode != "shell" && mode != "serve" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(mode, configPath); err != nil {
		logging.Log.Fatalf("championship: %v", err)
	}
}

func run(mode, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logging.Bootstrap(cfg.Log.Level)

	ctx := context.Background()
	st, err := store.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("opening %s store: %w", cfg.Storage.Backend, err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			logging.Log.Warnf("closing store: %v", err)
		}
	}()
	logging.Log.Infof("using %s storage", cfg.Storage.Backend)

	catalog := league.NewCatalog()
	policy := scoringPolicy(cfg.Scoring)

	if mode == "serve" {
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		restore(ctx, st, catalog)
		limiter := rate.NewLimiter(rate.Limit(cfg.Server.Rate), cfg.Server.Burst)
		return api.NewServer(catalog, st, policy, limiter).ListenAndServe(ctx, cfg.Server.Addr)
	}

	sh, err := cli.New(os.Stdin, os.Stdout, catalog, st, policy)
	if err != nil {
		return err
	}
	return sh.Run(ctx)
}

// restore loads saved championships into catalog. Missing data is not an
// error; the server then starts empty.
func restore(ctx context.Context, st store.Store, catalog *league.Catalog) {
	leagues, err := st.Load(ctx)
	switch {
	case errors.Is(err, store.ErrNoData):
		logging.Log.Info("no saved championships, starting empty")
	case err != nil:
		logging.Log.Warnf("loading saved championships: %v", err)
	default:
		catalog.Replace(leagues)
		logging.Log.Infof("loaded %d championships", len(leagues))
	}
}

func scoringPolicy(cfg config.ScoringConfig) league.ScoringPolicy {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	p := league.NewValueWeighted(seed)
	p.HomeAdvantage = cfg.HomeAdvantage
	p.GoalDivisor = cfg.GoalDivisor
	p.MaxGoals = cfg.MaxGoals
	return p
}
