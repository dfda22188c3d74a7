// Package mongo stores registration documents in MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"symposium/internal/domain"
)

type documentStore struct {
	db *mongo.Database
}

// NewDocumentStore returns a domain.DocumentStore where each collection maps to a Mongo collection
// and each key to the document _id.
func NewDocumentStore(db *mongo.Database) domain.DocumentStore {
	return &documentStore{db: db}
}

// Connect dials uri and pings the primary before returning the named database.
func Connect(ctx context.Context, uri, database string) (*mongo.Client, *mongo.Database, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, client.Database(database), nil
}

func (s *documentStore) Get(ctx context.Context, collection, key string) (domain.Document, error) {
	var raw bson.M
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": key}).Decode(&raw)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	delete(raw, "_id")
	doc := make(domain.Document, len(raw))
	for k, v := range raw {
		doc[k] = normalize(v)
	}
	return doc, nil
}

func (s *documentStore) Create(ctx context.Context, collection, key string, fields domain.Document) error {
	doc := bson.M{"_id": key}
	for k, v := range fields {
		doc[k] = v
	}
	_, err := s.db.Collection(collection).InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// AppendToSet applies $addToSet and reads back the pre-image of field in the same atomic
// findAndModify, so a value is reported as added by exactly one caller.
func (s *documentStore) AppendToSet(ctx context.Context, collection, key, field string, values []string) ([]string, error) {
	update := bson.M{"$addToSet": bson.M{field: bson.M{"$each": values}}}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.Before).
		SetProjection(bson.M{field: 1})

	var before bson.M
	err := s.db.Collection(collection).FindOneAndUpdate(ctx, bson.M{"_id": key}, update, opts).Decode(&before)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	var existing []string
	if arr, ok := normalize(before[field]).([]any); ok {
		for _, v := range arr {
			if name, ok := v.(string); ok {
				existing = append(existing, name)
			}
		}
	}
	return domain.NewSelectionSet(values...).Minus(domain.NewSelectionSet(existing...)).Names(), nil
}

// normalize converts driver-specific containers into plain Go values.
func normalize(v any) any {
	switch t := v.(type) {
	case primitive.A:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalize(e)
		}
		return out
	case bson.M:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = normalize(e)
		}
		return out
	case bson.D:
		out := make(map[string]any, len(t))
		for _, e := range t {
			out[e.Key] = normalize(e.Value)
		}
		return out
	default:
		return v
	}
}
