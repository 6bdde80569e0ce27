package promo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"healthlab-backend/internal/models"
	"healthlab-backend/internal/store"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
)

const (
	MessageNone    = "No promo applied"
	MessageApplied = "Promo applied"
)

type builtin struct {
	percent int64
	message string
}

// Built-in codes win over anything stored under the same code.
var builtins = map[string]builtin{
	"NEWUSER10": {percent: 10, message: "New user 10% discount applied"},
	"MEMBER5":   {percent: 5, message: "Membership 5% discount applied"},
}

type Result struct {
	Discount float64 `json:"discount"`
	Total    float64 `json:"total"`
	Message  string  `json:"message"`
}

type Service struct {
	store store.Store
}

func NewService(st store.Store) *Service {
	return &Service{store: st}
}

func (s *Service) Apply(ctx context.Context, code string, price float64) (Result, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	amount := decimal.NewFromFloat(price)
	discount := decimal.Zero
	message := ""

	if b, ok := builtins[code]; ok {
		discount = percentOf(amount, decimal.NewFromInt(b.percent))
		message = b.message
	} else if code != "" {
		p, found, err := s.findActive(ctx, code)
		if err != nil {
			return Result{}, err
		}
		if found {
			if p.Type == models.PromoTypeFlat {
				discount = decimal.NewFromFloat(p.Value)
			} else {
				discount = percentOf(amount, decimal.NewFromFloat(p.Value))
			}
			message = MessageApplied
			if p.Note != nil && *p.Note != "" {
				message = *p.Note
			}
		}
	}

	total := amount.Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	if message == "" {
		message = MessageNone
	}
	return Result{
		Discount: discount.InexactFloat64(),
		Total:    total.InexactFloat64(),
		Message:  message,
	}, nil
}

func (s *Service) findActive(ctx context.Context, code string) (models.Promo, bool, error) {
	var p models.Promo
	err := s.store.FindOne(ctx, store.CollectionPromos, bson.M{"code": code, "active": true}, &p)
	switch {
	case err == nil:
		return p, true, nil
	case errors.Is(err, store.ErrNoDocument), errors.Is(err, store.ErrUnavailable):
		return models.Promo{}, false, nil
	default:
		return models.Promo{}, false, fmt.Errorf("find promo %s: %w", code, err)
	}
}

func percentOf(amount, percent decimal.Decimal) decimal.Decimal {
	return amount.Mul(percent).Div(decimal.NewFromInt(100)).Round(2)
}
