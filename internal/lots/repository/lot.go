package repository

import (
	"context"
	"errors"
	"fmt"

	lotserrors "parkproof/internal/lots/errors"
	"parkproof/pkg/config"
	mongotx "parkproof/pkg/db/mongo"
	"parkproof/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "parking_lots"
)

type mongoLotRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type LotRepository interface {
	Create(ctx context.Context, lot *model.ParkingLot) error
	FindByID(ctx context.Context, id string) (*model.ParkingLot, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.ParkingLot, error)
	Count(ctx context.Context) (int64, error)
	SumCapacity(ctx context.Context) (int64, error)

	// BumpAdmissionSeq increments the lot's admission counter and returns the
	// updated lot. Two transactions bumping the same lot write-conflict.
	BumpAdmissionSeq(ctx context.Context, id string) (*model.ParkingLot, error)

	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoLotRepository(cfg *config.Config) LotRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoLotRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %s", lotserrors.ErrInvalidID, id)
	}
	return oid, nil
}

func (r *mongoLotRepository) Create(ctx context.Context, lot *model.ParkingLot) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	lot.ID = ""
	lot.AdmissionSeq = 0
	result, err := r.collection.InsertOne(ctx, lot)
	if err != nil {
		if mongotx.IsDuplicateKey(err) {
			return fmt.Errorf("%w: %s", lotserrors.ErrDuplicatePID, lot.PID)
		}
		return fmt.Errorf("failed to create parking lot: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		lot.ID = oid.Hex()
	}
	return nil
}

func (r *mongoLotRepository) FindByID(ctx context.Context, id string) (*model.ParkingLot, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var lot model.ParkingLot
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&lot); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", lotserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find parking lot: %w", err)
	}
	return &lot, nil
}

func (r *mongoLotRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.ParkingLot, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "area", Value: 1}, {Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query parking lots: %w", err)
	}
	defer cursor.Close(ctx)

	var lots []*model.ParkingLot
	if err = cursor.All(ctx, &lots); err != nil {
		return nil, fmt.Errorf("failed to decode parking lots: %w", err)
	}
	return lots, nil
}

func (r *mongoLotRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count parking lots: %w", err)
	}
	return count, nil
}

func (r *mongoLotRepository) SumCapacity(ctx context.Context) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: "$capacity"}}},
		}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("failed to sum parking lot capacity: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Total int64 `bson:"total"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, fmt.Errorf("failed to decode capacity sum: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}

func (r *mongoLotRepository) BumpAdmissionSeq(ctx context.Context, id string) (*model.ParkingLot, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var lot model.ParkingLot
	err = r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$inc": bson.M{"admission_seq": 1}},
		opts,
	).Decode(&lot)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", lotserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to bump admission sequence: %w", err)
	}
	return &lot, nil
}

func (r *mongoLotRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
