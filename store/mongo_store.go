package store

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"balades-api/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type MongoStore struct {
	collection *mongo.Collection
}

// Connect opens a client on uri and checks the primary is reachable.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

func NewMongoStore(client *mongo.Client, database, collection string) *MongoStore {
	return &MongoStore{collection: client.Database(database).Collection(collection)}
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return oid, nil
}

func (s *MongoStore) Insert(ctx context.Context, b *models.Balade) (*models.Balade, error) {
	if b.NomPOI == "" {
		return nil, ErrNameRequired
	}
	doc := *b
	doc.ID = primitive.NewObjectID()
	doc.Normalize()
	if _, err := s.collection.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert balade: %w", err)
	}
	return &doc, nil
}

func (s *MongoStore) FindByID(ctx context.Context, id string) (*models.Balade, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var b models.Balade
	err = s.collection.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&b)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find balade %s: %w", id, err)
	}
	return &b, nil
}

func (s *MongoStore) Find(ctx context.Context, f Filter, opts FindOptions) ([]models.Balade, error) {
	findOpts := options.Find()
	if opts.SortAsc != "" {
		findOpts.SetSort(bson.D{{Key: opts.SortAsc, Value: 1}})
	}
	cursor, err := s.collection.Find(ctx, f.BSON(), findOpts)
	if err != nil {
		return nil, fmt.Errorf("find balades: %w", err)
	}
	defer cursor.Close(ctx)

	balades := []models.Balade{}
	if err := cursor.All(ctx, &balades); err != nil {
		return nil, fmt.Errorf("decode balades: %w", err)
	}
	return balades, nil
}

func (s *MongoStore) Count(ctx context.Context, f Filter) (int64, error) {
	n, err := s.collection.CountDocuments(ctx, f.BSON())
	if err != nil {
		return 0, fmt.Errorf("count balades: %w", err)
	}
	return n, nil
}

func (s *MongoStore) UpdateByID(ctx context.Context, id string, fields Fields) (*models.Balade, error) {
	if len(fields) == 0 {
		return s.FindByID(ctx, id)
	}
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var b models.Balade
	err = s.collection.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: bson.M(fields)}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&b)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update balade %s: %w", id, err)
	}
	return &b, nil
}

func (s *MongoStore) UpdateMany(ctx context.Context, f Filter, fields Fields) (int64, error) {
	res, err := s.collection.UpdateMany(ctx, f.BSON(), bson.D{{Key: "$set", Value: bson.M(fields)}})
	if err != nil {
		return 0, fmt.Errorf("update balades: %w", err)
	}
	return res.MatchedCount, nil
}

// PushUnique runs a single guarded $push so concurrent appends of the same
// value cannot both succeed.
func (s *MongoStore) PushUnique(ctx context.Context, id, field, value string) (*models.Balade, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var b models.Balade
	err = s.collection.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: oid}, {Key: field, Value: bson.D{{Key: "$ne", Value: value}}}},
		bson.D{{Key: "$push", Value: bson.D{{Key: field, Value: value}}}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&b)
	if err == nil {
		return &b, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("push %s on balade %s: %w", field, id, err)
	}

	n, err := s.collection.CountDocuments(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return nil, fmt.Errorf("count balade %s: %w", id, err)
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	return nil, ErrAlreadyPresent
}

func (s *MongoStore) DeleteByID(ctx context.Context, id string) (*models.Balade, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var b models.Balade
	err = s.collection.FindOneAndDelete(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&b)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("delete balade %s: %w", id, err)
	}
	return &b, nil
}

func (s *MongoStore) Distinct(ctx context.Context, field string) ([]string, error) {
	values, err := s.collection.Distinct(ctx, field, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("distinct %s: %w", field, err)
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if str, ok := v.(string); ok {
			out = append(out, str)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *MongoStore) CountBySubstring(ctx context.Context, field string, start, length int) ([]models.ArrondissementCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{{Key: "$substrBytes", Value: bson.A{"$" + field, start, length}}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
	cursor, err := s.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate %s: %w", field, err)
	}
	defer cursor.Close(ctx)

	groups := []models.ArrondissementCount{}
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, fmt.Errorf("decode groups: %w", err)
	}
	return groups, nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.collection.Database().Client().Ping(ctx, readpref.Primary())
}

// Seed inserts balades when the collection is empty and reports how many
// were written.
func (s *MongoStore) Seed(ctx context.Context, balades []models.Balade) (int, error) {
	n, err := s.collection.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("count balades: %w", err)
	}
	if n > 0 || len(balades) == 0 {
		return 0, nil
	}
	docs := make([]any, 0, len(balades))
	for _, b := range balades {
		b.Normalize()
		if b.ID.IsZero() {
			b.ID = primitive.NewObjectID()
		}
		docs = append(docs, b)
	}
	res, err := s.collection.InsertMany(ctx, docs)
	if err != nil {
		return 0, fmt.Errorf("seed balades: %w", err)
	}
	return len(res.InsertedIDs), nil
}
