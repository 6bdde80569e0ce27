// Package store is the document storage collaborator. Every component talks
// to storage through Store; the concrete implementation (Mongo, Memory or the
// Static fallback) is picked once at startup.
package store

import (
	"context"
	"errors"
	"fmt"

	"healthlab-backend/internal/apperr"

	"go.mongodb.org/mongo-driver/bson"
)

const (
	CollectionUsers    = "user"
	CollectionTests    = "test"
	CollectionBookings = "booking"
	CollectionReports  = "report"
	CollectionPromos   = "promo"
	CollectionMessages = "message"
)

// Collections lists every collection the service reads or writes.
var Collections = []string{
	CollectionUsers,
	CollectionTests,
	CollectionBookings,
	CollectionReports,
	CollectionPromos,
	CollectionMessages,
}

const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
	DriverStatic = "static"
)

var (
	// ErrNoDocument is returned by FindOne when nothing matches the filter.
	ErrNoDocument = errors.New("no document")
	// ErrUnavailable is returned when the backing store cannot serve the call.
	ErrUnavailable = apperr.Unavailable("Database not available")
	// ErrDuplicate is returned by Create when a unique key already exists.
	ErrDuplicate = errors.New("duplicate key")
)

// Store is the storage contract. Filters use the Mongo query shape; only
// equality and $in are relied upon. Documents carry their own string _id.
type Store interface {
	Create(ctx context.Context, collection string, doc interface{}) (string, error)
	FindOne(ctx context.Context, collection string, filter bson.M, out interface{}) error
	FindMany(ctx context.Context, collection string, filter bson.M, out interface{}) error
	UpdateOne(ctx context.Context, collection string, filter bson.M, set bson.M) (int64, error)
	Count(ctx context.Context, collection string, filter bson.M) (int64, error)
}

// Describer is implemented by stores that can report diagnostics for the
// service status endpoint.
type Describer interface {
	Driver() string
	DatabaseName() string
	CollectionNames(ctx context.Context) ([]string, error)
}

func unknownCollection(name string) error {
	return fmt.Errorf("unknown collection %q", name)
}

func isKnownCollection(name string) bool {
	for _, c := range Collections {
		if c == name {
			return true
		}
	}
	return false
}
