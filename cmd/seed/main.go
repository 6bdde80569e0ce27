package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"healthlab-backend/internal/auth"
	"healthlab-backend/internal/catalog"
	"healthlab-backend/internal/config"
	"healthlab-backend/internal/db"
	"healthlab-backend/internal/models"
	"healthlab-backend/internal/store"

	"github.com/kelseyhightower/envconfig"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type seedSettings struct {
	UserName  string `envconfig:"SEED_USER_NAME" default:"Demo Patient"`
	UserEmail string `envconfig:"SEED_USER_EMAIL" default:"demo@healthlab.local"`
	UserPIN   string `envconfig:"SEED_USER_PIN" default:"1234"`
	HashPIN   bool   `envconfig:"SEED_HASH_PIN" default:"false"`
}

type seedPromo struct {
	Code  string
	Type  string
	Value float64
	Note  string
}

var promos = []seedPromo{
	{Code: "WELCOME20", Type: models.PromoTypePercent, Value: 20, Note: "Welcome offer: 20% off"},
	{Code: "FLAT5", Type: models.PromoTypeFlat, Value: 5, Note: "5 off any test"},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if cfg.StorageDriver != store.DriverMongo {
		log.Fatal("seed requires DATABASE_URL")
	}

	var settings seedSettings
	if err := envconfig.Process("", &settings); err != nil {
		log.Fatal(err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, database, err := db.Connect(ctx, cfg.DatabaseURL, cfg.DatabaseName)
	if err != nil {
		log.Fatal(err)
	}
	defer client.Disconnect(context.Background())

	if err := db.EnsureIndexes(ctx, database); err != nil {
		log.Fatal(err)
	}

	inserted, err := catalog.NewService(store.NewMongo(database), nil, 0, logger).EnsureSeeded(ctx)
	if err != nil {
		log.Fatalf("seed catalog: %v", err)
	}
	log.Printf("seed catalog: %d tests inserted", inserted)

	if err := seedUser(ctx, database, settings); err != nil {
		log.Fatalf("seed user: %v", err)
	}

	for _, p := range promos {
		if err := seedPromoCode(ctx, database, p); err != nil {
			log.Fatalf("seed promo error for %s: %v", p.Code, err)
		}
	}

	log.Println("seed completed")
}

func seedUser(ctx context.Context, database *mongo.Database, s seedSettings) error {
	email := strings.ToLower(strings.TrimSpace(s.UserEmail))
	if email == "" {
		return nil
	}
	pin := s.UserPIN
	if s.HashPIN {
		hashed, err := auth.HashPIN(pin)
		if err != nil {
			return err
		}
		pin = hashed
	}

	update := bson.M{
		"$set": bson.M{
			"name":      s.UserName,
			"pin":       pin,
			"is_active": true,
		},
		"$setOnInsert": bson.M{
			"_id":   primitive.NewObjectID().Hex(),
			"email": email,
			"role":  models.UserRoleUser,
		},
	}
	res, err := database.Collection(store.CollectionUsers).UpdateOne(ctx, bson.M{"email": email}, update, options.Update().SetUpsert(true))
	if err != nil {
		return err
	}
	if res.UpsertedID != nil {
		log.Printf("seed user: created %s (%v)", email, res.UpsertedID)
	} else {
		log.Printf("seed user: updated %s", email)
	}
	return nil
}

func seedPromoCode(ctx context.Context, database *mongo.Database, p seedPromo) error {
	update := bson.M{
		"$setOnInsert": bson.M{
			"_id":    primitive.NewObjectID().Hex(),
			"code":   p.Code,
			"type":   p.Type,
			"value":  p.Value,
			"active": true,
			"note":   p.Note,
		},
	}
	if _, err := database.Collection(store.CollectionPromos).UpdateOne(ctx, bson.M{"code": p.Code}, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("upsert promo: %w", err)
	}
	return nil
}
