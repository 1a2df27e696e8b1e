package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	vehicleserrors "parkproof/internal/vehicles/errors"
	"parkproof/pkg/config"
	mongotx "parkproof/pkg/db/mongo"
	"parkproof/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "vehicles"
)

type mongoVehicleRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
}

type VehicleRepository interface {
	Create(ctx context.Context, vehicle *model.Vehicle) error
	FindByNumber(ctx context.Context, vehicleNumber string) (*model.Vehicle, error)
	FindByUser(ctx context.Context, userID string) ([]*model.Vehicle, error)

	// Claim assigns an owner to a vehicle that has none.
	Claim(ctx context.Context, id, userID string) (*model.Vehicle, error)
}

func NewMongoVehicleRepository(cfg *config.Config) VehicleRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoVehicleRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
	}
}

type vehicleDocument struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty"`
	VehicleNumber string              `bson:"vehicle_number"`
	UserID        *primitive.ObjectID `bson:"user_id,omitempty"`
	Name          string              `bson:"name"`
	Type          string              `bson:"type"`
	CreatedAt     time.Time           `bson:"created_at"`
}

func (d *vehicleDocument) toModel() *model.Vehicle {
	v := &model.Vehicle{
		ID:            d.ID.Hex(),
		VehicleNumber: d.VehicleNumber,
		Name:          d.Name,
		Type:          d.Type,
		CreatedAt:     d.CreatedAt,
	}
	if d.UserID != nil {
		v.UserID = d.UserID.Hex()
	}
	return v
}

func userObjectID(userID string) (*primitive.ObjectID, error) {
	if userID == "" {
		return nil, nil
	}
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: user %s", vehicleserrors.ErrInvalidID, userID)
	}
	return &oid, nil
}

func (r *mongoVehicleRepository) Create(ctx context.Context, vehicle *model.Vehicle) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	owner, err := userObjectID(vehicle.UserID)
	if err != nil {
		return err
	}

	doc := vehicleDocument{
		VehicleNumber: vehicle.VehicleNumber,
		UserID:        owner,
		Name:          vehicle.Name,
		Type:          vehicle.Type,
		CreatedAt:     vehicle.CreatedAt,
	}
	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		if mongotx.IsDuplicateKey(err) {
			return fmt.Errorf("%w: %s", vehicleserrors.ErrDuplicateNumber, vehicle.VehicleNumber)
		}
		return fmt.Errorf("failed to create vehicle: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		vehicle.ID = oid.Hex()
	}
	return nil
}

func (r *mongoVehicleRepository) FindByNumber(ctx context.Context, vehicleNumber string) (*model.Vehicle, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var doc vehicleDocument
	if err := r.collection.FindOne(ctx, bson.M{"vehicle_number": vehicleNumber}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", vehicleserrors.ErrNotFound, vehicleNumber)
		}
		return nil, fmt.Errorf("failed to find vehicle: %w", err)
	}
	return doc.toModel(), nil
}

func (r *mongoVehicleRepository) FindByUser(ctx context.Context, userID string) ([]*model.Vehicle, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	owner, err := userObjectID(userID)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": owner}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query vehicles: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []vehicleDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode vehicles: %w", err)
	}

	vehicles := make([]*model.Vehicle, 0, len(docs))
	for i := range docs {
		vehicles = append(vehicles, docs[i].toModel())
	}
	return vehicles, nil
}

func (r *mongoVehicleRepository) Claim(ctx context.Context, id, userID string) (*model.Vehicle, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", vehicleserrors.ErrInvalidID, id)
	}
	owner, err := userObjectID(userID)
	if err != nil {
		return nil, err
	}

	filter := bson.M{
		"_id": oid,
		"$or": bson.A{
			bson.M{"user_id": bson.M{"$exists": false}},
			bson.M{"user_id": nil},
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc vehicleDocument
	err = r.collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": bson.M{"user_id": owner}}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", vehicleserrors.ErrAlreadyOwned, id)
		}
		return nil, fmt.Errorf("failed to claim vehicle: %w", err)
	}
	return doc.toModel(), nil
}
