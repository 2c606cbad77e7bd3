package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/utakatalp/championship-manager/internal/config"
	"github.com/utakatalp/championship-manager/internal/league"
)

var (
	// ErrNoData is returned by Load when nothing has been saved yet.
	ErrNoData = errors.New("no saved championships")
	// ErrMalformed is returned when saved data cannot be decoded.
	ErrMalformed = errors.New("malformed championship data")
)

// Store persists the whole collection of championships. Save replaces
// whatever was stored before.
type Store interface {
	Save(ctx context.Context, leagues []*league.League) error
	Load(ctx context.Context) ([]*league.League, error)
	Close() error
}

var (
	_ Store = (*FileStore)(nil)
	_ Store = (*PostgresStore)(nil)
	_ Store = (*MongoStore)(nil)
)

// Open returns the backend selected by cfg.Storage.Backend.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Storage.Backend {
	case "file":
		return NewFileStore(cfg.Storage.File), nil
	case "postgres":
		s, err := NewPostgresStore(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, err
		}
		if err := s.Migrate(ctx); err != nil {
			s.Close()
			return nil, err
		}
		return s, nil
	case "mongo":
		return NewMongoStore(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}
