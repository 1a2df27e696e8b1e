package mongo

import (
	"context"
	"fmt"

	lotsrepo "parkproof/internal/lots/repository"
	"parkproof/internal/migrations/mongo/validators"
	riskrepo "parkproof/internal/risk/repository"
	sessionsrepo "parkproof/internal/sessions/repository"
	ticketsrepo "parkproof/internal/tickets/repository"
	usersrepo "parkproof/internal/users/repository"
	vehiclesrepo "parkproof/internal/vehicles/repository"
	"parkproof/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const ActiveVehicleIndex = "uniq_active_vehicle"

var (
	ParkingLotsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "pid", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "area", Value: 1}, {Key: "name", Value: 1}}},
	}

	TicketsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "vehicle_number", Value: 1}, {Key: "created_at", Value: -1}}},
		// reserved-spot counts and the expiry sweep
		{Keys: bson.D{
			{Key: "parking_lot_id", Value: 1},
			{Key: "status", Value: 1},
			{Key: "valid_till", Value: 1},
		}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "valid_till", Value: 1}}},
		{Keys: bson.D{{Key: "parking_lot_id", Value: 1}, {Key: "created_at", Value: 1}}},
	}

	SessionsIndexes = []mongo.IndexModel{
		// At most one ACTIVE session per plate. Closed sessions are outside
		// the partial filter, so history is unconstrained.
		{
			Keys: bson.D{{Key: "vehicle_number", Value: 1}},
			Options: options.Index().
				SetName(ActiveVehicleIndex).
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": "ACTIVE"}),
		},
		{Keys: bson.D{{Key: "parking_lot_id", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "parking_lot_id", Value: 1}, {Key: "entry_time", Value: -1}}},
		{Keys: bson.D{{Key: "parking_lot_id", Value: 1}, {Key: "exit_time", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "status", Value: 1}}},
	}

	VehiclesIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "vehicle_number", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
	}

	UsersIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "phone", Value: 1}}, Options: options.Index().SetUnique(true)},
	}

	ReportsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "parking_lot_id", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
	}

	// One score document per lot, replaced on every analysis.
	RiskScoresIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "parking_lot_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "score", Value: -1}}},
	}
)

type collectionDef struct {
	Indexes   []mongo.IndexModel
	Validator bson.M
}

func collections() map[string]collectionDef {
	return map[string]collectionDef{
		lotsrepo.CollectionName: {
			Indexes:   ParkingLotsIndexes,
			Validator: validators.ParkingLotValidator,
		},
		ticketsrepo.CollectionName: {
			Indexes:   TicketsIndexes,
			Validator: validators.TicketValidator,
		},
		sessionsrepo.CollectionName: {
			Indexes:   SessionsIndexes,
			Validator: validators.SessionValidator,
		},
		vehiclesrepo.CollectionName: {
			Indexes:   VehiclesIndexes,
			Validator: validators.VehicleValidator,
		},
		usersrepo.CollectionName: {
			Indexes:   UsersIndexes,
			Validator: validators.UserValidator,
		},
		riskrepo.ReportsCollectionName: {
			Indexes:   ReportsIndexes,
			Validator: validators.ReportValidator,
		},
		riskrepo.ScoresCollectionName: {
			Indexes:   RiskScoresIndexes,
			Validator: validators.RiskScoreValidator,
		},
	}
}

// RunMigration creates every collection with its schema validator and
// indexes. Collections are created up front because multi-document
// transactions cannot create them implicitly on older servers.
func RunMigration(ctx context.Context, client *mongo.Client, dbName string, log *logger.Logger) error {
	db := client.Database(dbName)
	log.Info("Running Mongo migrations", "database", dbName)

	for name, def := range collections() {
		if err := ensureCollection(ctx, db, name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", name, err)
		}
		if err := ensureIndexes(ctx, db, name, def.Indexes, log); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
		}
	}

	log.Info("All migrations applied")
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
	if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "count", len(models))
	return nil
}
