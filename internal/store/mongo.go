package store

import (
	"context"
	"fmt"
	"time"

	"github.com/utakatalp/championship-manager/internal/league"
	"github.com/utakatalp/championship-manager/internal/logging"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const leaguesCollection = "leagues"

// MongoStore keeps one document per championship.
type MongoStore struct {
	Client  *mongo.Client
	Leagues *mongo.Collection
}

type leagueDocument struct {
	// Generation identifies the Save call that wrote the document.
	Generation      int64               `bson:"generation"`
	Position        int                 `bson:"position"`
	Name            string              `bson:"name"`
	RoundsCompleted int                 `bson:"rounds_completed"`
	TotalRounds     int                 `bson:"total_rounds"`
	Teams           []teamDocument      `bson:"teams"`
	Rounds          [][]fixtureDocument `bson:"rounds"`
}

type teamDocument struct {
	Name         string  `bson:"name"`
	Value        float64 `bson:"value"`
	Wins         int     `bson:"wins"`
	Draws        int     `bson:"draws"`
	Losses       int     `bson:"losses"`
	GoalsFor     int     `bson:"goals_for"`
	GoalsAgainst int     `bson:"goals_against"`
}

type fixtureDocument struct {
	Home      string `bson:"home"`
	Away      string `bson:"away"`
	HomeGoals int    `bson:"home_goals"`
	AwayGoals int    `bson:"away_goals"`
	Played    bool   `bson:"played"`
}

// NewMongoStore connects to mongoURI and uses the leagues collection of dbName.
func NewMongoStore(ctx context.Context, mongoURI, dbName string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("pinging mongo: %w", err)
	}
	logging.Log.Infof("connected to mongo database %s", dbName)
	return &MongoStore{
		Client:  client,
		Leagues: client.Database(dbName).Collection(leaguesCollection),
	}, nil
}

// Save replaces every stored championship. The new documents are inserted
// before the previous ones are deleted, so a failed insert keeps the last
// save intact.
func (s *MongoStore) Save(ctx context.Context, leagues []*league.League) error {
	if len(leagues) == 0 {
		if _, err := s.Leagues.DeleteMany(ctx, bson.D{}); err != nil {
			return fmt.Errorf("deleting leagues: %w", err)
		}
		return nil
	}

	generation := time.Now().UnixNano()
	docs := make([]interface{}, 0, len(leagues))
	for pos, l := range leagues {
		doc := toDocument(pos, l)
		doc.Generation = generation
		docs = append(docs, doc)
	}
	if _, err := s.Leagues.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("inserting leagues: %w", err)
	}

	stale := bson.D{{Key: "generation", Value: bson.D{{Key: "$ne", Value: generation}}}}
	if _, err := s.Leagues.DeleteMany(ctx, stale); err != nil {
		// Load only reads the newest generation, so leftovers are harmless.
		logging.Log.Warnf("deleting previous leagues: %v", err)
	}
	logging.Log.Infof("saved %d championships to mongo", len(leagues))
	return nil
}

func (s *MongoStore) Load(ctx context.Context) ([]*league.League, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "generation", Value: -1},
		{Key: "position", Value: 1},
	})
	cursor, err := s.Leagues.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("finding leagues: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []leagueDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding leagues: %w", err)
	}
	if len(docs) == 0 {
		return nil, ErrNoData
	}

	leagues := make([]*league.League, 0, len(docs))
	for _, doc := range docs {
		if doc.Generation != docs[0].Generation {
			break
		}
		leagues = append(leagues, doc.toLeague())
	}
	logging.Log.Infof("loaded %d championships from mongo", len(leagues))
	return leagues, nil
}

func (s *MongoStore) Close() error {
	return s.Client.Disconnect(context.Background())
}

func toDocument(pos int, l *league.League) leagueDocument {
	doc := leagueDocument{
		Position:        pos,
		Name:            l.Name,
		RoundsCompleted: l.RoundsCompleted,
		TotalRounds:     l.TotalRounds,
		Teams:           []teamDocument{},
		Rounds:          [][]fixtureDocument{},
	}
	for _, t := range l.Teams() {
		doc.Teams = append(doc.Teams, teamDocument(t))
	}
	for _, rnd := range l.Schedule() {
		fixtures := make([]fixtureDocument, 0, len(rnd))
		for _, f := range rnd {
			fixtures = append(fixtures, fixtureDocument(f))
		}
		doc.Rounds = append(doc.Rounds, fixtures)
	}
	return doc
}

func (doc leagueDocument) toLeague() *league.League {
	teams := make([]league.Team, 0, len(doc.Teams))
	for _, t := range doc.Teams {
		teams = append(teams, league.Team(t))
	}

	var schedule league.Schedule
	for _, fixtures := range doc.Rounds {
		rnd := make(league.Round, 0, len(fixtures))
		for _, f := range fixtures {
			rnd = append(rnd, league.Fixture(f))
		}
		schedule = append(schedule, rnd)
	}
	return league.Restore(doc.Name, doc.RoundsCompleted, doc.TotalRounds, teams, schedule)
}
