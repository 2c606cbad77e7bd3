package league

import "errors"

var (
	ErrTeamNotFound      = errors.New("team not found")
	ErrLeagueNotFound    = errors.New("championship not found")
	ErrRoundOutOfRange   = errors.New("invalid stage number")
	ErrFixtureOutOfRange = errors.New("invalid match number")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInsufficientTeams = errors.New("not enough teams to generate fixtures")
	ErrDanglingFixture   = errors.New("fixture references a team that is no longer registered")
)
