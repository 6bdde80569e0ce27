package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"healthlab-backend/internal/apperr"
	"healthlab-backend/internal/cache"
	"healthlab-backend/internal/models"
	"healthlab-backend/internal/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const listCacheKey = "tests:all"

var (
	ErrNotFound  = apperr.NotFound("Test not found")
	ErrCodeTaken = apperr.Conflict("Test code already exists")
)

type Service struct {
	store store.Store
	cache cache.Cache
	ttl   time.Duration
	log   *slog.Logger
}

func NewService(st store.Store, c cache.Cache, ttl time.Duration, log *slog.Logger) *Service {
	if c == nil {
		c = cache.NewNoop()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: st, cache: c, ttl: ttl, log: log}
}

// EnsureSeeded inserts the default catalog when the test collection is
// empty. It reports how many records it created.
func (s *Service) EnsureSeeded(ctx context.Context) (int, error) {
	n, err := s.store.Count(ctx, store.CollectionTests, bson.M{})
	if errors.Is(err, store.ErrUnavailable) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("count tests: %w", err)
	}
	if n > 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	inserted := 0
	for _, t := range DefaultTests() {
		t.ID = primitive.NewObjectID().Hex()
		t.CreatedAt = now
		t.UpdatedAt = now
		if _, err := s.store.Create(ctx, store.CollectionTests, t); err != nil {
			// A concurrent seeder got there first.
			if errors.Is(err, store.ErrDuplicate) {
				continue
			}
			return inserted, fmt.Errorf("seed test %s: %w", t.Code, err)
		}
		inserted++
	}
	if inserted > 0 {
		s.invalidate(ctx)
		s.log.Info("catalog seed: ok", slog.Int("inserted", inserted))
	}
	return inserted, nil
}

func (s *Service) List(ctx context.Context) ([]models.Test, error) {
	if _, err := s.EnsureSeeded(ctx); err != nil {
		return nil, err
	}

	var items []models.Test
	if cache.GetJSON(ctx, s.cache, listCacheKey, &items) {
		return items, nil
	}

	if err := s.store.FindMany(ctx, store.CollectionTests, bson.M{}, &items); err != nil {
		if errors.Is(err, store.ErrUnavailable) {
			return DefaultTests(), nil
		}
		return nil, fmt.Errorf("list tests: %w", err)
	}
	if items == nil {
		items = []models.Test{}
	}

	if err := cache.SetJSON(ctx, s.cache, listCacheKey, items, s.ttl); err != nil {
		s.log.Warn("catalog list: cache set failed", slog.String("error", err.Error()))
	}
	return items, nil
}

// Lookup resolves a test code. Storage unavailability is returned as is so
// callers can decide whether to degrade.
func (s *Service) Lookup(ctx context.Context, code string) (models.Test, error) {
	code = NormalizeCode(code)
	var t models.Test
	err := s.store.FindOne(ctx, store.CollectionTests, bson.M{"code": code}, &t)
	if errors.Is(err, store.ErrNoDocument) {
		return models.Test{}, ErrNotFound
	}
	if err != nil {
		return models.Test{}, fmt.Errorf("find test %s: %w", code, err)
	}
	return t, nil
}

// FindByCodes returns the catalog records for codes, in catalog order.
func (s *Service) FindByCodes(ctx context.Context, codes []string) ([]models.Test, error) {
	items := []models.Test{}
	if len(codes) == 0 {
		return items, nil
	}
	normalized := make([]string, len(codes))
	for i, c := range codes {
		normalized[i] = NormalizeCode(c)
	}

	err := s.store.FindMany(ctx, store.CollectionTests, bson.M{"code": bson.M{"$in": normalized}}, &items)
	if errors.Is(err, store.ErrUnavailable) {
		return filterByCodes(DefaultTests(), normalized), nil
	}
	if err != nil {
		return nil, fmt.Errorf("find tests: %w", err)
	}
	return items, nil
}

type CreateInput struct {
	Code        string
	Name        string
	Category    string
	Price       float64
	Description *string
	Preparation *string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (string, error) {
	code := NormalizeCode(in.Code)
	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = models.DefaultCategory
	}

	now := time.Now().UTC()
	t := models.Test{
		ID:          primitive.NewObjectID().Hex(),
		Code:        code,
		Name:        strings.TrimSpace(in.Name),
		Category:    category,
		Price:       in.Price,
		Description: in.Description,
		Preparation: in.Preparation,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	id, err := s.store.Create(ctx, store.CollectionTests, t)
	if errors.Is(err, store.ErrDuplicate) {
		return "", ErrCodeTaken
	}
	if err != nil {
		return "", fmt.Errorf("create test %s: %w", code, err)
	}
	s.invalidate(ctx)
	return id, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, listCacheKey); err != nil {
		s.log.Warn("catalog cache: invalidate failed", slog.String("error", err.Error()))
	}
}

func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func filterByCodes(tests []models.Test, codes []string) []models.Test {
	want := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		want[c] = struct{}{}
	}
	out := []models.Test{}
	for _, t := range tests {
		if _, ok := want[t.Code]; ok {
			out = append(out, t)
		}
	}
	return out
}
