package index

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	defaultMongoCollection  = "glossary_embeddings"
	defaultMongoVectorIndex = "glossary_vector_index"
)

// MongoDB implements Index using MongoDB with Atlas Vector Search
type MongoDB struct {
	client      *mongo.Client
	collection  *mongo.Collection
	vectorIndex string

	mu    sync.RWMutex
	dim   int
	items []Item // kept for the fallback when $vectorSearch is unavailable
}

// entryDoc is the MongoDB document structure
type entryDoc struct {
	ID        int       `bson:"_id"`
	Embedding []float32 `bson:"embedding"`
}

type searchDoc struct {
	ID    int     `bson:"_id"`
	Score float64 `bson:"score"`
}

// NewMongoDB connects to MongoDB. The collection is emptied and refilled on Build.
func NewMongoDB(ctx context.Context, uri, database, collection, vectorIndex string) (*MongoDB, error) {
	if collection == "" {
		collection = defaultMongoCollection
	}
	if vectorIndex == "" {
		vectorIndex = defaultMongoVectorIndex
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDB{
		client:      client,
		collection:  client.Database(database).Collection(collection),
		vectorIndex: vectorIndex,
	}, nil
}

func (m *MongoDB) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

func (m *MongoDB) Build(ctx context.Context, items []Item) error {
	dim, err := dimensionOf(items)
	if err != nil {
		return err
	}

	if _, err := m.collection.DeleteMany(ctx, bson.D{}); err != nil {
		return fmt.Errorf("failed to clear collection: %w", err)
	}

	docs := make([]interface{}, len(items))
	copied := make([]Item, len(items))
	for i, it := range items {
		vec := make([]float32, len(it.Vector))
		copy(vec, it.Vector)
		docs[i] = entryDoc{ID: it.ID, Embedding: vec}
		copied[i] = Item{ID: it.ID, Vector: vec}
	}

	if _, err := m.collection.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert embeddings: %w", err)
	}

	m.mu.Lock()
	m.dim, m.items = dim, copied
	m.mu.Unlock()
	return nil
}

// Search uses $vectorSearch. This requires an Atlas Vector Search index on
// "embedding" with dotProduct similarity; without it, scoring happens in process.
func (m *MongoDB) Search(ctx context.Context, vec []float32, k int) ([]Hit, error) {
	m.mu.RLock()
	dim, items := m.dim, m.items
	m.mu.RUnlock()

	if err := checkQuery(vec, dim); err != nil {
		return nil, err
	}
	if k <= 0 {
		return []Hit{}, nil
	}

	pipeline := mongo.Pipeline{
		{{Key: "$vectorSearch", Value: bson.D{
			{Key: "index", Value: m.vectorIndex},
			{Key: "path", Value: "embedding"},
			{Key: "queryVector", Value: vec},
			{Key: "numCandidates", Value: k * 10},
			{Key: "limit", Value: k},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "score", Value: bson.D{{Key: "$meta", Value: "vectorSearchScore"}}},
		}}},
	}

	cursor, err := m.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return fallbackSearch(ctx, err, m.vectorIndex, items, vec, k)
	}
	defer cursor.Close(ctx)

	var hits []Hit
	for cursor.Next(ctx) {
		var doc searchDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		// dotProduct scores are reported as (1 + dot) / 2
		hits = append(hits, Hit{ID: doc.ID, Score: float32(2*doc.Score - 1)})
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return sortHits(hits, k), nil
}

func (m *MongoDB) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// fallbackSearch scores items in process when $vectorSearch fails, unless the
// failure came from ctx being done.
func fallbackSearch(ctx context.Context, err error, vectorIndex string, items []Item, vec []float32, k int) ([]Hit, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	slog.Debug("vector search unavailable, scoring in process", "index", vectorIndex, "error", err)
	return scoreAll(items, vec, k), nil
}
