package repository

import (
	"context"
	"fmt"
	"time"

	riskerrors "parkproof/internal/risk/errors"
	"parkproof/pkg/config"
	mongotx "parkproof/pkg/db/mongo"
	"parkproof/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const ReportsCollectionName = "reports"

type ReportRepository interface {
	Create(ctx context.Context, report *model.Report) error
	FindByLotSince(ctx context.Context, lotID string, since time.Time) ([]*model.Report, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Report, error)
	Count(ctx context.Context) (int64, error)
}

type mongoReportRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoReportRepository(cfg *config.Config) ReportRepository {
	return &mongoReportRepository{
		cfg:        cfg,
		collection: cfg.Client.Mongo.Database(cfg.MongoDatabaseName).Collection(ReportsCollectionName),
	}
}

type reportDocument struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty"`
	ParkingLotID *primitive.ObjectID `bson:"parking_lot_id"`
	UserID       *primitive.ObjectID `bson:"user_id"`
	Type         model.ReportType    `bson:"type"`
	Description  string              `bson:"description,omitempty"`
	Status       model.ReportStatus  `bson:"status"`
	CreatedAt    time.Time           `bson:"created_at"`
}

func (d *reportDocument) toModel() *model.Report {
	r := &model.Report{
		ID:          d.ID.Hex(),
		Type:        d.Type,
		Description: d.Description,
		Status:      d.Status,
		CreatedAt:   d.CreatedAt,
	}
	if d.ParkingLotID != nil {
		r.ParkingLotID = d.ParkingLotID.Hex()
	}
	if d.UserID != nil {
		r.UserID = d.UserID.Hex()
	}
	return r
}

// optionalID maps "" to a stored null.
func optionalID(id string) (*primitive.ObjectID, error) {
	if id == "" {
		return nil, nil
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", riskerrors.ErrInvalidID, id)
	}
	return &oid, nil
}

func (r *mongoReportRepository) Create(ctx context.Context, report *model.Report) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	lotID, err := optionalID(report.ParkingLotID)
	if err != nil {
		return err
	}
	userID, err := optionalID(report.UserID)
	if err != nil {
		return err
	}

	result, err := r.collection.InsertOne(ctx, reportDocument{
		ParkingLotID: lotID,
		UserID:       userID,
		Type:         report.Type,
		Description:  report.Description,
		Status:       report.Status,
		CreatedAt:    report.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		report.ID = oid.Hex()
	}
	return nil
}

// FindByLotSince returns the lot's reports oldest first.
func (r *mongoReportRepository) FindByLotSince(ctx context.Context, lotID string, since time.Time) ([]*model.Report, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	oid, err := optionalID(lotID)
	if err != nil || oid == nil {
		return nil, fmt.Errorf("%w: %q", riskerrors.ErrInvalidID, lotID)
	}

	filter := bson.M{"parking_lot_id": oid, "created_at": bson.M{"$gte": since}}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	return r.find(ctx, filter, opts)
}

func (r *mongoReportRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Report, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "created_at", Value: -1}})
	return r.find(ctx, bson.M{}, opts)
}

func (r *mongoReportRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.Report, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []reportDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode reports: %w", err)
	}

	reports := make([]*model.Report, 0, len(docs))
	for i := range docs {
		reports = append(reports, docs[i].toModel())
	}
	return reports, nil
}

func (r *mongoReportRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count reports: %w", err)
	}
	return count, nil
}
