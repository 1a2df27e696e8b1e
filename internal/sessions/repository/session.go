package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	sessionserrors "parkproof/internal/sessions/errors"
	"parkproof/pkg/config"
	mongotx "parkproof/pkg/db/mongo"
	"parkproof/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "parking_sessions"
)

type mongoSessionRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
}

type SessionRepository interface {
	Create(ctx context.Context, session *model.Session) error
	FindByID(ctx context.Context, id string) (*model.Session, error)
	FindActiveByVehicle(ctx context.Context, vehicleNumber string) (*model.Session, error)
	FindActiveByUser(ctx context.Context, userID string) (*model.Session, error)
	Close(ctx context.Context, id string, exitTime time.Time, amount int) error

	CountActiveByLot(ctx context.Context, lotID string) (int64, error)
	CountActive(ctx context.Context) (int64, error)
	FindByLot(ctx context.Context, lotID string, status model.SessionStatus, limit int, offset int64) ([]*model.Session, error)
	CountByLot(ctx context.Context, lotID string, status model.SessionStatus) (int64, error)
	SumChargedSince(ctx context.Context, lotID string, since time.Time) (int64, error)
}

func NewMongoSessionRepository(cfg *config.Config) SessionRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSessionRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
	}
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %s", sessionserrors.ErrInvalidID, id)
	}
	return oid, nil
}

// Create inserts an ACTIVE session. The partial unique index on
// {vehicle_number, status=ACTIVE} turns a second concurrent entry for the same
// plate into ErrDuplicateActive.
func (r *mongoSessionRepository) Create(ctx context.Context, session *model.Session) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	doc, err := fromModel(session)
	if err != nil {
		return fmt.Errorf("invalid session references: %w", err)
	}

	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		if mongotx.IsDuplicateKey(err) {
			return fmt.Errorf("%w: %s", sessionserrors.ErrDuplicateActive, session.VehicleNumber)
		}
		return fmt.Errorf("failed to create parking session: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		session.ID = oid.Hex()
	}
	return nil
}

func (r *mongoSessionRepository) findOne(ctx context.Context, filter bson.M, what string) (*model.Session, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var doc sessionDocument
	if err := r.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", sessionserrors.ErrNotFound, what)
		}
		return nil, fmt.Errorf("failed to find parking session (%s): %w", what, err)
	}
	return doc.toModel(), nil
}

func (r *mongoSessionRepository) FindByID(ctx context.Context, id string) (*model.Session, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid}, id)
}

func (r *mongoSessionRepository) FindActiveByVehicle(ctx context.Context, vehicleNumber string) (*model.Session, error) {
	return r.findOne(ctx, bson.M{
		"vehicle_number": vehicleNumber,
		"status":         model.SessionActive,
	}, "vehicle "+vehicleNumber)
}

func (r *mongoSessionRepository) FindActiveByUser(ctx context.Context, userID string) (*model.Session, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: user %s", sessionserrors.ErrInvalidID, userID)
	}
	return r.findOne(ctx, bson.M{
		"user_id": oid,
		"status":  model.SessionActive,
	}, "user "+userID)
}

// Close flips an ACTIVE session to CLOSED. ErrNotActive means someone else
// closed it first.
func (r *mongoSessionRepository) Close(ctx context.Context, id string, exitTime time.Time, amount int) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := parseID(id)
	if err != nil {
		return err
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": oid, "status": model.SessionActive},
		bson.M{"$set": bson.M{
			"status":         model.SessionClosed,
			"exit_time":      exitTime,
			"amount_charged": amount,
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to close parking session: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", sessionserrors.ErrNotActive, id)
	}
	return nil
}

func (r *mongoSessionRepository) CountActiveByLot(ctx context.Context, lotID string) (int64, error) {
	return r.CountByLot(ctx, lotID, model.SessionActive)
}

func (r *mongoSessionRepository) CountActive(ctx context.Context) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"status": model.SessionActive})
	if err != nil {
		return 0, fmt.Errorf("failed to count active sessions: %w", err)
	}
	return count, nil
}

func lotFilter(lotID string, status model.SessionStatus) (bson.M, error) {
	oid, err := primitive.ObjectIDFromHex(lotID)
	if err != nil {
		return nil, fmt.Errorf("invalid parking lot reference %q: %w", lotID, err)
	}
	filter := bson.M{"parking_lot_id": oid}
	if status != "" {
		filter["status"] = status
	}
	return filter, nil
}

func (r *mongoSessionRepository) FindByLot(ctx context.Context, lotID string, status model.SessionStatus, limit int, offset int64) ([]*model.Session, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter, err := lotFilter(lotID, status)
	if err != nil {
		return nil, err
	}

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "entry_time", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions for lot [%s]: %w", lotID, err)
	}
	defer cursor.Close(ctx)

	var docs []sessionDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode sessions: %w", err)
	}

	sessions := make([]*model.Session, 0, len(docs))
	for i := range docs {
		sessions = append(sessions, docs[i].toModel())
	}
	return sessions, nil
}

func (r *mongoSessionRepository) CountByLot(ctx context.Context, lotID string, status model.SessionStatus) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter, err := lotFilter(lotID, status)
	if err != nil {
		return 0, err
	}

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count sessions for lot [%s]: %w", lotID, err)
	}
	return count, nil
}

func (r *mongoSessionRepository) SumChargedSince(ctx context.Context, lotID string, since time.Time) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter, err := lotFilter(lotID, model.SessionClosed)
	if err != nil {
		return 0, err
	}
	filter["exit_time"] = bson.M{"$gte": since}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$amount_charged"}}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("failed to sum session revenue for lot [%s]: %w", lotID, err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Total int64 `bson:"total"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, fmt.Errorf("failed to decode session revenue: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}
