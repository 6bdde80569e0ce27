package store

import (
	"reflect"

	"go.mongodb.org/mongo-driver/bson"
)

func toDocument(doc interface{}) (bson.M, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var out bson.M
	if err := bson.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeDocument(doc bson.M, out interface{}) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return err
	}
	return bson.Unmarshal(raw, out)
}

func decodeDocuments(docs bson.A, out interface{}) error {
	raw, err := bson.Marshal(bson.M{"items": docs})
	if err != nil {
		return err
	}
	var wrapper struct {
		Items bson.RawValue `bson:"items"`
	}
	if err := bson.Unmarshal(raw, &wrapper); err != nil {
		return err
	}
	return wrapper.Items.Unmarshal(out)
}

// normalizeValue converts a Go value into the representation it has after a
// trip through the bson codec, so filters compare like with like.
func normalizeValue(v interface{}) (interface{}, error) {
	doc, err := toDocument(bson.M{"v": v})
	if err != nil {
		return nil, err
	}
	return doc["v"], nil
}

func matches(doc bson.M, filter bson.M) bool {
	for key, want := range filter {
		got := doc[key]
		if ops, ok := asOperator(want); ok {
			if !matchOperator(got, ops) {
				return false
			}
			continue
		}
		normalized, err := normalizeValue(want)
		if err != nil || !valuesEqual(got, normalized) {
			return false
		}
	}
	return true
}

func asOperator(v interface{}) (bson.M, bool) {
	switch m := v.(type) {
	case bson.M:
		_, ok := m["$in"]
		return m, ok
	case map[string]interface{}:
		_, ok := m["$in"]
		return bson.M(m), ok
	}
	return nil, false
}

func matchOperator(got interface{}, ops bson.M) bool {
	normalized, err := normalizeValue(ops["$in"])
	if err != nil {
		return false
	}
	candidates, ok := normalized.(bson.A)
	if !ok {
		return false
	}
	for _, c := range candidates {
		if valuesEqual(got, c) {
			return true
		}
	}
	return false
}

func valuesEqual(a, b interface{}) bool {
	if fa, ok := asFloat(a); ok {
		if fb, ok := asFloat(b); ok {
			return fa == fb
		}
	}
	return reflect.DeepEqual(a, b)
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
