package handlers

import (
	"net/http"
	"reflect"
	"strings"
	"time"

	"healthlab-backend/internal/models"
	"healthlab-backend/internal/store"
	"healthlab-backend/internal/transport"
)

type SchemaField struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
}

type CollectionSchema struct {
	Name   string        `json:"name"`
	Fields []SchemaField `json:"fields"`
}

var collectionModels = []struct {
	name  string
	model interface{}
}{
	{store.CollectionUsers, models.User{}},
	{store.CollectionTests, models.Test{}},
	{store.CollectionBookings, models.Booking{}},
	{store.CollectionReports, models.Report{}},
	{store.CollectionPromos, models.Promo{}},
	{store.CollectionMessages, models.Message{}},
}

var collectionSchemas = buildSchemas()

func (s *Server) Schema(w http.ResponseWriter, r *http.Request) {
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"collections": collectionSchemas,
	})
}

func buildSchemas() []CollectionSchema {
	out := make([]CollectionSchema, 0, len(collectionModels))
	for _, c := range collectionModels {
		out = append(out, CollectionSchema{Name: c.name, Fields: describeFields(reflect.TypeOf(c.model))})
	}
	return out
}

// describeFields lists the stored fields of a model from its bson tags.
// Pointer and omitempty fields are optional.
func describeFields(t reflect.Type) []SchemaField {
	fields := make([]SchemaField, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("bson")
		if tag == "" || tag == "-" {
			continue
		}
		parts := strings.Split(tag, ",")
		omitEmpty := false
		for _, opt := range parts[1:] {
			if opt == "omitempty" {
				omitEmpty = true
			}
		}
		fields = append(fields, SchemaField{
			Name:     parts[0],
			Type:     schemaType(f.Type),
			Required: !omitEmpty && f.Type.Kind() != reflect.Ptr,
		})
	}
	return fields
}

var timeType = reflect.TypeOf(time.Time{})

func schemaType(t reflect.Type) string {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == timeType {
		return "datetime"
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int32, reflect.Int64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Map, reflect.Struct:
		return "object"
	case reflect.Slice, reflect.Array:
		return "array"
	default:
		return t.Kind().String()
	}
}
