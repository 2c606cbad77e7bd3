package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/utakatalp/championship-manager/internal/league"
	"github.com/utakatalp/championship-manager/internal/logging"
)

// PostgresStore wraps a Postgres connection and persists championships in
// three tables: leagues, teams and fixtures.
type PostgresStore struct {
	DB *sql.DB
}

// NewPostgresStore opens a Postgres connection using the given connection string.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// verify early
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	logging.Log.Info("connected to postgres")
	return &PostgresStore{DB: db}, nil
}

// Migrate creates the necessary tables if they do not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS leagues (
		    id               SERIAL PRIMARY KEY,
		    position         INT  NOT NULL,
		    name             TEXT NOT NULL,
		    rounds_completed INT  NOT NULL DEFAULT 0,
		    total_rounds     INT  NOT NULL DEFAULT 0,
		    round_count      INT  NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS teams (
		    league_id     INT  NOT NULL REFERENCES leagues(id) ON DELETE CASCADE,
		    position      INT  NOT NULL,
		    name          TEXT NOT NULL,
		    value         DOUBLE PRECISION NOT NULL DEFAULT 0,
		    win           INT  NOT NULL DEFAULT 0,
		    draw          INT  NOT NULL DEFAULT 0,
		    lose          INT  NOT NULL DEFAULT 0,
		    goals_for     INT  NOT NULL DEFAULT 0,
		    goals_against INT  NOT NULL DEFAULT 0,
		    PRIMARY KEY (league_id, position)
		);`,
		`CREATE TABLE IF NOT EXISTS fixtures (
		    league_id  INT  NOT NULL REFERENCES leagues(id) ON DELETE CASCADE,
		    round      INT  NOT NULL,
		    position   INT  NOT NULL,
		    home_team  TEXT NOT NULL,
		    away_team  TEXT NOT NULL,
		    home_goals INT  NOT NULL DEFAULT 0,
		    away_goals INT  NOT NULL DEFAULT 0,
		    played     BOOLEAN NOT NULL DEFAULT FALSE,
		    PRIMARY KEY (league_id, round, position)
		);`,
	}
	for _, q := range queries {
		if _, err := s.DB.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("migrating: %w", err)
		}
	}
	return nil
}

// Save replaces every stored championship inside one transaction.
func (s *PostgresStore) Save(ctx context.Context, leagues []*league.League) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM leagues;`); err != nil {
		return fmt.Errorf("deleting leagues: %w", err)
	}

	for pos, l := range leagues {
		if err := saveLeague(ctx, tx, pos, l); err != nil {
			return fmt.Errorf("saving league %q: %w", l.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save tx: %w", err)
	}
	logging.Log.Infof("saved %d championships to postgres", len(leagues))
	return nil
}

func saveLeague(ctx context.Context, tx *sql.Tx, pos int, l *league.League) error {
	schedule := l.Schedule()

	var id int
	err := tx.QueryRowContext(ctx, `
INSERT INTO leagues (position, name, rounds_completed, total_rounds, round_count)
VALUES ($1, $2, $3, $4, $5)
RETURNING id
`, pos, l.Name, l.RoundsCompleted, l.TotalRounds, len(schedule)).Scan(&id)
	if err != nil {
		return fmt.Errorf("inserting league: %w", err)
	}

	const teamQuery = `
    INSERT INTO teams (league_id, position, name, value, win, draw, lose, goals_for, goals_against)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `
	for i, t := range l.Teams() {
		if _, err := tx.ExecContext(ctx, teamQuery,
			id, i, t.Name, t.Value,
			t.Wins, t.Draws, t.Losses,
			t.GoalsFor, t.GoalsAgainst,
		); err != nil {
			return fmt.Errorf("inserting team %d (%s): %w", i, t.Name, err)
		}
	}

	const fixtureQuery = `
    INSERT INTO fixtures (league_id, round, position, home_team, away_team, home_goals, away_goals, played)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `
	for r, rnd := range schedule {
		for i, f := range rnd {
			if _, err := tx.ExecContext(ctx, fixtureQuery,
				id, r, i, f.Home, f.Away, f.HomeGoals, f.AwayGoals, f.Played,
			); err != nil {
				return fmt.Errorf("inserting fixture %d of round %d: %w", i+1, r+1, err)
			}
		}
	}
	return nil
}

type leagueRow struct {
	id, roundsCompleted, totalRounds, roundCount int
	name                                         string
}

func (s *PostgresStore) Load(ctx context.Context) ([]*league.League, error) {
	rows, err := s.DB.QueryContext(ctx, `
SELECT id, name, rounds_completed, total_rounds, round_count
FROM leagues
ORDER BY position
`)
	if err != nil {
		return nil, fmt.Errorf("querying leagues: %w", err)
	}
	var headers []leagueRow
	for rows.Next() {
		var h leagueRow
		if err := rows.Scan(&h.id, &h.name, &h.roundsCompleted, &h.totalRounds, &h.roundCount); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning league row: %w", err)
		}
		headers = append(headers, h)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating league rows: %w", err)
	}
	if len(headers) == 0 {
		return nil, ErrNoData
	}

	leagues := make([]*league.League, 0, len(headers))
	for _, h := range headers {
		teams, err := s.loadTeams(ctx, h.id)
		if err != nil {
			return nil, fmt.Errorf("loading league %q: %w", h.name, err)
		}
		schedule, err := s.loadSchedule(ctx, h.id, h.roundCount)
		if err != nil {
			return nil, fmt.Errorf("loading league %q: %w", h.name, err)
		}
		leagues = append(leagues, league.Restore(h.name, h.roundsCompleted, h.totalRounds, teams, schedule))
	}
	logging.Log.Infof("loaded %d championships from postgres", len(leagues))
	return leagues, nil
}

func (s *PostgresStore) loadTeams(ctx context.Context, leagueID int) ([]league.Team, error) {
	const q = `
        SELECT
            name,
            value,
            win,
            draw,
            lose,
            goals_for,
            goals_against
        FROM teams
        WHERE league_id = $1
        ORDER BY position
    `
	rows, err := s.DB.QueryContext(ctx, q, leagueID)
	if err != nil {
		return nil, fmt.Errorf("querying teams: %w", err)
	}
	defer rows.Close()

	var teams []league.Team
	for rows.Next() {
		var t league.Team
		if err := rows.Scan(
			&t.Name,
			&t.Value,
			&t.Wins,
			&t.Draws,
			&t.Losses,
			&t.GoalsFor,
			&t.GoalsAgainst,
		); err != nil {
			return nil, fmt.Errorf("scanning team row: %w", err)
		}
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating teams rows: %w", err)
	}
	return teams, nil
}

func (s *PostgresStore) loadSchedule(ctx context.Context, leagueID, roundCount int) (league.Schedule, error) {
	if roundCount == 0 {
		return nil, nil
	}
	const q = `
SELECT round, home_team, away_team, home_goals, away_goals, played
FROM fixtures
WHERE league_id = $1
ORDER BY round, position;
`
	rows, err := s.DB.QueryContext(ctx, q, leagueID)
	if err != nil {
		return nil, fmt.Errorf("querying fixtures: %w", err)
	}
	defer rows.Close()

	schedule := make(league.Schedule, roundCount)
	for i := range schedule {
		schedule[i] = league.Round{}
	}
	for rows.Next() {
		var round int
		var f league.Fixture
		if err := rows.Scan(&round, &f.Home, &f.Away, &f.HomeGoals, &f.AwayGoals, &f.Played); err != nil {
			return nil, fmt.Errorf("scanning fixture: %w", err)
		}
		if round < 0 || round >= roundCount {
			return nil, fmt.Errorf("%w: fixture in round %d of %d", ErrMalformed, round+1, roundCount)
		}
		schedule[round] = append(schedule[round], f)
	}
	return schedule, rows.Err()
}

func (s *PostgresStore) Close() error {
	return s.DB.Close()
}
