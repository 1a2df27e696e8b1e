package repository

import (
	"context"
	"errors"
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

const ScoresCollectionName = "risk_scores"

type ScoreRepository interface {
	Upsert(ctx context.Context, score *model.RiskScore) error
	FindByLot(ctx context.Context, lotID string) (*model.RiskScore, error)
	FindAll(ctx context.Context) ([]*model.RiskScore, error)
}

type mongoScoreRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoScoreRepository(cfg *config.Config) ScoreRepository {
	return &mongoScoreRepository{
		cfg:        cfg,
		collection: cfg.Client.Mongo.Database(cfg.MongoDatabaseName).Collection(ScoresCollectionName),
	}
}

type scoreDocument struct {
	ParkingLotID primitive.ObjectID `bson:"parking_lot_id"`
	Score        int                `bson:"score"`
	Level        model.RiskLevel    `bson:"level"`
	Reason       string             `bson:"reason"`
	Factors      []string           `bson:"factors"`
	AnalyzedAt   time.Time          `bson:"analyzed_at"`
}

func (d *scoreDocument) toModel() *model.RiskScore {
	return &model.RiskScore{
		ParkingLotID: d.ParkingLotID.Hex(),
		Score:        d.Score,
		Level:        d.Level,
		Reason:       d.Reason,
		Factors:      d.Factors,
		AnalyzedAt:   d.AnalyzedAt,
	}
}

func lotObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %s", riskerrors.ErrInvalidID, id)
	}
	return oid, nil
}

// Upsert replaces the lot's score; parking_lot_id is unique.
func (r *mongoScoreRepository) Upsert(ctx context.Context, score *model.RiskScore) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := lotObjectID(score.ParkingLotID)
	if err != nil {
		return err
	}

	doc := scoreDocument{
		ParkingLotID: oid,
		Score:        score.Score,
		Level:        score.Level,
		Reason:       score.Reason,
		Factors:      score.Factors,
		AnalyzedAt:   score.AnalyzedAt,
	}
	_, err = r.collection.UpdateOne(ctx,
		bson.M{"parking_lot_id": oid},
		bson.M{"$set": doc},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to save risk score for lot [%s]: %w", score.ParkingLotID, err)
	}
	return nil
}

func (r *mongoScoreRepository) FindByLot(ctx context.Context, lotID string) (*model.RiskScore, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	oid, err := lotObjectID(lotID)
	if err != nil {
		return nil, err
	}

	var doc scoreDocument
	if err := r.collection.FindOne(ctx, bson.M{"parking_lot_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", riskerrors.ErrNotFound, lotID)
		}
		return nil, fmt.Errorf("failed to find risk score: %w", err)
	}
	return doc.toModel(), nil
}

// FindAll returns every stored score, riskiest first.
func (r *mongoScoreRepository) FindAll(ctx context.Context) ([]*model.RiskScore, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "score", Value: -1}, {Key: "analyzed_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query risk scores: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []scoreDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode risk scores: %w", err)
	}

	scores := make([]*model.RiskScore, 0, len(docs))
	for i := range docs {
		scores = append(scores, docs[i].toModel())
	}
	return scores, nil
}
