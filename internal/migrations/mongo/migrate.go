package mongo

import (
	"context"
	"fmt"

	"slotly/internal/migrations/mongo/validators"
	"slotly/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	BookingsCollection = "Bookings"
	UsersCollection    = "Users"
)

type Options struct {
	Database string
	// EnforceUniqueSlot makes the (host_email, date, slot) index unique.
	EnforceUniqueSlot bool
}

type collectionDef struct {
	Name      string
	Indexes   []mongo.IndexModel
	Validator bson.M
}

func BookingsIndexes(enforceUniqueSlot bool) []mongo.IndexModel {
	slotIndex := options.Index().SetName("host_date_slot")
	if enforceUniqueSlot {
		slotIndex.SetUnique(true)
	}

	return []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "host_email", Value: 1},
				{Key: "date", Value: 1},
				{Key: "slot", Value: 1},
			},
			Options: slotIndex,
		},
		{Keys: bson.D{
			{Key: "guest_email", Value: 1},
			{Key: "date", Value: 1},
		}},
		{Keys: bson.D{
			{Key: "host_email", Value: 1},
			{Key: "date", Value: 1},
		}},
	}
}

func UsersIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
}

func RunMigration(ctx context.Context, client *mongo.Client, opts Options, log *logger.Logger) error {
	return Migrate(ctx, client.Database(opts.Database), opts, log)
}

// Migrate creates or updates the collections, validators and indexes. It is safe to run
// repeatedly. A slot index created without the unique flag must be dropped by hand
// before enabling EnforceUniqueSlot.
func Migrate(ctx context.Context, db *mongo.Database, opts Options, log *logger.Logger) error {
	log = log.Operation("migrate")
	log.Info("Running Mongo migrations",
		"database", db.Name(),
		"enforce_unique_slot", opts.EnforceUniqueSlot,
	)

	collections := []collectionDef{
		{
			Name:      BookingsCollection,
			Indexes:   BookingsIndexes(opts.EnforceUniqueSlot),
			Validator: validators.BookingValidator,
		},
		{
			Name:      UsersCollection,
			Indexes:   UsersIndexes(),
			Validator: validators.UserValidator,
		},
	}

	for _, def := range collections {
		if err := ensureCollection(ctx, db, def.Name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", def.Name, err)
		}
		if err := ensureIndexes(ctx, db, def.Name, def.Indexes, log); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", def.Name, err)
		}
	}

	log.Info("All migrations applied successfully")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	log.Info("Collection already exists, updating validator", "collection", name)
	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel, log *logger.Logger) error {
	created, err := db.Collection(name).Indexes().CreateMany(ctx, models)
	if err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "indexes", created)
	return nil
}
