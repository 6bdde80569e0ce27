package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Mongo struct {
	db *mongo.Database
}

func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{db: db}
}

func (m *Mongo) collection(name string) (*mongo.Collection, error) {
	if !isKnownCollection(name) {
		return nil, unknownCollection(name)
	}
	return m.db.Collection(name), nil
}

func (m *Mongo) Create(ctx context.Context, collection string, doc interface{}) (string, error) {
	col, err := m.collection(collection)
	if err != nil {
		return "", err
	}
	res, err := col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", fmt.Errorf("insert %s: %w", collection, ErrDuplicate)
		}
		return "", fmt.Errorf("insert %s: %w", collection, err)
	}
	switch id := res.InsertedID.(type) {
	case string:
		return id, nil
	case primitive.ObjectID:
		return id.Hex(), nil
	default:
		return fmt.Sprint(id), nil
	}
}

func (m *Mongo) FindOne(ctx context.Context, collection string, filter bson.M, out interface{}) error {
	col, err := m.collection(collection)
	if err != nil {
		return err
	}
	if err := col.FindOne(ctx, filter).Decode(out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNoDocument
		}
		return fmt.Errorf("find %s: %w", collection, err)
	}
	return nil
}

func (m *Mongo) FindMany(ctx context.Context, collection string, filter bson.M, out interface{}) error {
	col, err := m.collection(collection)
	if err != nil {
		return err
	}
	if filter == nil {
		filter = bson.M{}
	}
	cursor, err := col.Find(ctx, filter)
	if err != nil {
		return fmt.Errorf("find %s: %w", collection, err)
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, out); err != nil {
		return fmt.Errorf("decode %s: %w", collection, err)
	}
	return nil
}

func (m *Mongo) UpdateOne(ctx context.Context, collection string, filter bson.M, set bson.M) (int64, error) {
	col, err := m.collection(collection)
	if err != nil {
		return 0, err
	}
	res, err := col.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return 0, fmt.Errorf("update %s: %w", collection, err)
	}
	return res.MatchedCount, nil
}

func (m *Mongo) Count(ctx context.Context, collection string, filter bson.M) (int64, error) {
	col, err := m.collection(collection)
	if err != nil {
		return 0, err
	}
	if filter == nil {
		filter = bson.M{}
	}
	return col.CountDocuments(ctx, filter)
}

func (m *Mongo) Driver() string {
	return DriverMongo
}

func (m *Mongo) DatabaseName() string {
	return m.db.Name()
}

func (m *Mongo) CollectionNames(ctx context.Context) ([]string, error) {
	return m.db.ListCollectionNames(ctx, bson.D{})
}
