package store

import (
	"context"
	"fmt"
	"reflect"

	"healthlab-backend/internal/models"

	"go.mongodb.org/mongo-driver/bson"
)

// Static is the fallback used when no database is configured. It serves the
// test catalog from the seed list and refuses everything that needs real
// persistence.
type Static struct {
	catalog *Memory
}

func NewStatic(tests []models.Test) (*Static, error) {
	catalog := NewMemory()
	for _, t := range tests {
		if _, err := catalog.Create(context.Background(), CollectionTests, t); err != nil {
			return nil, fmt.Errorf("load static catalog: %w", err)
		}
	}
	return &Static{catalog: catalog}, nil
}

func (s *Static) Create(ctx context.Context, collection string, doc interface{}) (string, error) {
	return "", ErrUnavailable
}

func (s *Static) FindOne(ctx context.Context, collection string, filter bson.M, out interface{}) error {
	if collection == CollectionTests {
		return s.catalog.FindOne(ctx, collection, filter, out)
	}
	return ErrUnavailable
}

// FindMany answers with an empty result for collections it does not hold.
func (s *Static) FindMany(ctx context.Context, collection string, filter bson.M, out interface{}) error {
	if collection == CollectionTests {
		return s.catalog.FindMany(ctx, collection, filter, out)
	}
	if !isKnownCollection(collection) {
		return unknownCollection(collection)
	}
	v := reflect.ValueOf(out)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("find %s: result must be a pointer to a slice", collection)
	}
	v.Elem().Set(reflect.MakeSlice(v.Elem().Type(), 0, 0))
	return nil
}

func (s *Static) UpdateOne(ctx context.Context, collection string, filter bson.M, set bson.M) (int64, error) {
	return 0, ErrUnavailable
}

func (s *Static) Count(ctx context.Context, collection string, filter bson.M) (int64, error) {
	if collection == CollectionTests {
		return s.catalog.Count(ctx, collection, filter)
	}
	return 0, ErrUnavailable
}

func (s *Static) Driver() string {
	return DriverStatic
}

func (s *Static) DatabaseName() string {
	return ""
}

func (s *Static) CollectionNames(ctx context.Context) ([]string, error) {
	return nil, ErrUnavailable
}
