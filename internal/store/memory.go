package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// uniqueFields mirrors the unique indexes db.EnsureIndexes creates in Mongo.
var uniqueFields = map[string]string{
	CollectionTests:  "code",
	CollectionPromos: "code",
}

// Memory is an in-process document store. Documents are kept as bson.M so
// they round-trip through the same codec the Mongo driver uses.
type Memory struct {
	mu   sync.RWMutex
	docs map[string][]bson.M
}

func NewMemory() *Memory {
	return &Memory{docs: make(map[string][]bson.M)}
}

func (m *Memory) Create(ctx context.Context, collection string, doc interface{}) (string, error) {
	if !isKnownCollection(collection) {
		return "", unknownCollection(collection)
	}
	stored, err := toDocument(doc)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", collection, err)
	}
	id, _ := stored["_id"].(string)
	if id == "" {
		id = primitive.NewObjectID().Hex()
		stored["_id"] = id
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.docs[collection] {
		if existing["_id"] == id {
			return "", fmt.Errorf("insert %s: %w", collection, ErrDuplicate)
		}
		if field, ok := uniqueFields[collection]; ok && valuesEqual(existing[field], stored[field]) {
			return "", fmt.Errorf("insert %s: %w", collection, ErrDuplicate)
		}
	}
	m.docs[collection] = append(m.docs[collection], stored)
	return id, nil
}

func (m *Memory) FindOne(ctx context.Context, collection string, filter bson.M, out interface{}) error {
	if !isKnownCollection(collection) {
		return unknownCollection(collection)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, doc := range m.docs[collection] {
		if matches(doc, filter) {
			return decodeDocument(doc, out)
		}
	}
	return ErrNoDocument
}

func (m *Memory) FindMany(ctx context.Context, collection string, filter bson.M, out interface{}) error {
	if !isKnownCollection(collection) {
		return unknownCollection(collection)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	found := bson.A{}
	for _, doc := range m.docs[collection] {
		if matches(doc, filter) {
			found = append(found, doc)
		}
	}
	return decodeDocuments(found, out)
}

func (m *Memory) UpdateOne(ctx context.Context, collection string, filter bson.M, set bson.M) (int64, error) {
	if !isKnownCollection(collection) {
		return 0, unknownCollection(collection)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, doc := range m.docs[collection] {
		if !matches(doc, filter) {
			continue
		}
		for key, value := range set {
			normalized, err := normalizeValue(value)
			if err != nil {
				return 0, fmt.Errorf("encode %s.%s: %w", collection, key, err)
			}
			doc[key] = normalized
		}
		return 1, nil
	}
	return 0, nil
}

func (m *Memory) Count(ctx context.Context, collection string, filter bson.M) (int64, error) {
	if !isKnownCollection(collection) {
		return 0, unknownCollection(collection)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var n int64
	for _, doc := range m.docs[collection] {
		if matches(doc, filter) {
			n++
		}
	}
	return n, nil
}

func (m *Memory) Driver() string {
	return DriverMemory
}

func (m *Memory) DatabaseName() string {
	return "memory"
}

func (m *Memory) CollectionNames(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.docs))
	for name, docs := range m.docs {
		if len(docs) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}
