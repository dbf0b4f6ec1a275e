package board

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/m3rciful/kropbot/core/logger"
)

// Store is the persistence contract consumed by the dialogue controller.
type Store interface {
	// NextID atomically increments and returns the named counter,
	// creating it at 1 when absent.
	NextID(ctx context.Context, sequence string) (int64, error)
	Insert(ctx context.Context, l Listing) error
	// FindPage returns up to limit listings starting at offset in
	// descending creation order, plus the total count of matches. The two
	// reads are not snapshot-isolated; callers must tolerate a benign
	// mismatch.
	FindPage(ctx context.Context, f Filter, offset, limit int64) ([]Listing, int64, error)
	// FindOne is an owner-scoped point lookup used for authorization.
	FindOne(ctx context.Context, id, ownerID int64) (Listing, error)
	UpdateDescription(ctx context.Context, id, ownerID int64, description string) (bool, error)
	Delete(ctx context.Context, id, ownerID int64) (bool, error)
	CountByCategory(ctx context.Context) (map[string]int64, error)
}

// MongoStore persists listings and counters in MongoDB. Retention is
// enforced store-side by a TTL index on created_at.
type MongoStore struct {
	listings *mongo.Collection
	counters *mongo.Collection
}

// NewMongoStore builds a store over the given database handle.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		listings: db.Collection("listings"),
		counters: db.Collection("counters"),
	}
}

// EnsureIndexes creates the indexes the store relies on: TTL expiry keyed on
// created_at, the unique listing id, and the two query/sort compounds.
func (s *MongoStore) EnsureIndexes(ctx context.Context, retention time.Duration) error {
	ttlSeconds := int32(retention / time.Second)
	_, err := s.listings.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "created_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(ttlSeconds),
		},
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return storeErr("ensure indexes", err)
	}
	logger.DB.Info("indexes ensured",
		slog.String("event", "db.indexes"),
		slog.Int64("retention_seconds", int64(ttlSeconds)),
	)
	return nil
}

func (s *MongoStore) NextID(ctx context.Context, sequence string) (int64, error) {
	var doc struct {
		Value int64 `bson:"sequence_value"`
	}
	err := s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": sequence},
		bson.M{"$inc": bson.M{"sequence_value": 1}},
		options.FindOneAndUpdate().
			SetUpsert(true).
			SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return 0, storeErr("next id", err)
	}
	return doc.Value, nil
}

func (s *MongoStore) Insert(ctx context.Context, l Listing) error {
	_, err := s.listings.InsertOne(ctx, l)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateID
		}
		return storeErr("insert", err)
	}
	return nil
}

func filterQuery(f Filter) bson.M {
	query := bson.M{}
	if f.Category != "" {
		query["category"] = f.Category
	}
	if f.Kind != "" {
		query["kind"] = f.Kind
	}
	if f.OwnerID != 0 {
		query["owner_id"] = f.OwnerID
	}
	return query
}

func (s *MongoStore) FindPage(ctx context.Context, f Filter, offset, limit int64) ([]Listing, int64, error) {
	query := filterQuery(f)

	total, err := s.listings.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, storeErr("count", err)
	}

	cursor, err := s.listings.Find(ctx, query, options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(offset).
		SetLimit(limit),
	)
	if err != nil {
		return nil, 0, storeErr("find page", err)
	}
	var items []Listing
	if err := cursor.All(ctx, &items); err != nil {
		return nil, 0, storeErr("decode page", err)
	}
	return items, total, nil
}

func (s *MongoStore) FindOne(ctx context.Context, id, ownerID int64) (Listing, error) {
	var l Listing
	err := s.listings.FindOne(ctx, bson.M{"id": id, "owner_id": ownerID}).Decode(&l)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Listing{}, ErrNotFound
	}
	if err != nil {
		return Listing{}, storeErr("find one", err)
	}
	return l, nil
}

func (s *MongoStore) UpdateDescription(ctx context.Context, id, ownerID int64, description string) (bool, error) {
	res, err := s.listings.UpdateOne(ctx,
		bson.M{"id": id, "owner_id": ownerID},
		bson.M{"$set": bson.M{"description": description}},
	)
	if err != nil {
		return false, storeErr("update description", err)
	}
	return res.MatchedCount > 0, nil
}

func (s *MongoStore) Delete(ctx context.Context, id, ownerID int64) (bool, error) {
	res, err := s.listings.DeleteOne(ctx, bson.M{"id": id, "owner_id": ownerID})
	if err != nil {
		return false, storeErr("delete", err)
	}
	return res.DeletedCount > 0, nil
}

func (s *MongoStore) CountByCategory(ctx context.Context) (map[string]int64, error) {
	cursor, err := s.listings.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$category", "count": bson.M{"$sum": 1}}}},
	})
	if err != nil {
		return nil, storeErr("count by category", err)
	}
	var rows []struct {
		Category string `bson:"_id"`
		Count    int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, storeErr("decode counts", err)
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Category] = row.Count
	}
	return counts, nil
}
