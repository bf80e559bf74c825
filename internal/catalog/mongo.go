package catalog

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/YM-Solutions-Official/leetcompete-client/internal/battle"
)

// Mongo picks problems from a problems collection using a sampled aggregation.
type Mongo struct {
	coll *mongo.Collection
}

func NewMongo(ctx context.Context, uri, database string) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &Mongo{coll: client.Database(database).Collection("problems")}, nil
}

type mongoProblem struct {
	ID          string            `bson:"_id"`
	Title       string            `bson:"title"`
	Difficulty  string            `bson:"difficulty"`
	Description string            `bson:"description"`
	Tags        []string          `bson:"tags"`
	Snippets    map[string]string `bson:"snippets"`
	TestCases   []battle.TestCase `bson:"testCases"`
}

func (m *Mongo) Pick(ctx context.Context, f Filter, n int) ([]battle.Problem, error) {
	match := bson.M{}
	if f.Difficulty != "" {
		match["difficulty"] = f.Difficulty
	}
	if len(f.Topics) > 0 {
		match["tags"] = bson.M{"$in": f.Topics}
	}

	cursor, err := m.coll.Aggregate(ctx, mongo.Pipeline{
		bson.D{{Key: "$match", Value: match}},
		bson.D{{Key: "$sample", Value: bson.M{"size": n}}},
	})
	if err != nil {
		return nil, fmt.Errorf("sample problems: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []mongoProblem
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode problems: %w", err)
	}
	if len(docs) < n {
		return nil, ErrNotEnoughProblems
	}

	out := make([]battle.Problem, 0, n)
	for _, d := range docs[:n] {
		out = append(out, battle.Problem{
			ID:          d.ID,
			Title:       d.Title,
			Difficulty:  d.Difficulty,
			Description: d.Description,
			Tags:        d.Tags,
			Snippets:    d.Snippets,
			TestCases:   d.TestCases,
		})
	}
	return out, nil
}
