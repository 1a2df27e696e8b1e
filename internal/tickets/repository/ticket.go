package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	ticketserrors "parkproof/internal/tickets/errors"
	"parkproof/pkg/config"
	mongotx "parkproof/pkg/db/mongo"
	"parkproof/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "tickets"
)

type mongoTicketRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
}

type TicketRepository interface {
	Create(ctx context.Context, ticket *model.Ticket) error
	FindByID(ctx context.Context, id string) (*model.Ticket, error)
	FindLatestLiveForVehicle(ctx context.Context, vehicleNumber string, now time.Time) (*model.Ticket, error)

	MarkUsed(ctx context.Context, id string, now time.Time) error
	ExpireIfPastDue(ctx context.Context, id string, now time.Time) (bool, error)
	SweepExpired(ctx context.Context, now time.Time) (int64, error)

	CountReservedByLot(ctx context.Context, lotID string, now time.Time) (int64, error)
	CountReserved(ctx context.Context, now time.Time) (int64, error)
	SumAmountSince(ctx context.Context, lotID string, since time.Time) (int64, error)
	CountIssuedSince(ctx context.Context, lotID string, since time.Time) (int64, error)
}

func NewMongoTicketRepository(cfg *config.Config) TicketRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoTicketRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
	}
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %s", ticketserrors.ErrInvalidID, id)
	}
	return oid, nil
}

// ticketDocument mirrors model.Ticket with ObjectID references so indexes
// and $lookup see real ObjectIDs.
type ticketDocument struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	ParkingLotID  primitive.ObjectID `bson:"parking_lot_id"`
	VehicleNumber string             `bson:"vehicle_number"`
	VehicleType   string             `bson:"vehicle_type"`
	Amount        int                `bson:"amount"`
	Status        model.TicketStatus `bson:"status"`
	ValidTill     time.Time          `bson:"valid_till"`
	UsedAt        *time.Time         `bson:"used_at,omitempty"`
	ExpiredAt     *time.Time         `bson:"expired_at,omitempty"`
	CreatedAt     time.Time          `bson:"created_at"`
}

func (d *ticketDocument) toModel() *model.Ticket {
	return &model.Ticket{
		ID:            d.ID.Hex(),
		ParkingLotID:  d.ParkingLotID.Hex(),
		VehicleNumber: d.VehicleNumber,
		VehicleType:   d.VehicleType,
		Amount:        d.Amount,
		Status:        d.Status,
		ValidTill:     d.ValidTill,
		UsedAt:        d.UsedAt,
		ExpiredAt:     d.ExpiredAt,
		CreatedAt:     d.CreatedAt,
	}
}

func (r *mongoTicketRepository) Create(ctx context.Context, ticket *model.Ticket) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	lotID, err := primitive.ObjectIDFromHex(ticket.ParkingLotID)
	if err != nil {
		return fmt.Errorf("invalid parking lot reference %q: %w", ticket.ParkingLotID, err)
	}

	doc := ticketDocument{
		ParkingLotID:  lotID,
		VehicleNumber: ticket.VehicleNumber,
		VehicleType:   ticket.VehicleType,
		Amount:        ticket.Amount,
		Status:        ticket.Status,
		ValidTill:     ticket.ValidTill,
		UsedAt:        ticket.UsedAt,
		CreatedAt:     ticket.CreatedAt,
	}
	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to create ticket: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		ticket.ID = oid.Hex()
	}
	return nil
}

func (r *mongoTicketRepository) FindByID(ctx context.Context, id string) (*model.Ticket, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var doc ticketDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", ticketserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find ticket: %w", err)
	}
	return doc.toModel(), nil
}

func (r *mongoTicketRepository) FindLatestLiveForVehicle(ctx context.Context, vehicleNumber string, now time.Time) (*model.Ticket, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"vehicle_number": vehicleNumber,
		"status":         bson.M{"$in": []model.TicketStatus{model.TicketCreated, model.TicketUsed}},
		"valid_till":     bson.M{"$gt": now},
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})

	var doc ticketDocument
	if err := r.collection.FindOne(ctx, filter, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: vehicle %s", ticketserrors.ErrNotFound, vehicleNumber)
		}
		return nil, fmt.Errorf("failed to find live ticket for vehicle [%s]: %w", vehicleNumber, err)
	}
	return doc.toModel(), nil
}

// MarkUsed moves a CREATED ticket to USED. It reports ErrNotCreated when the
// ticket exists in any other state.
func (r *mongoTicketRepository) MarkUsed(ctx context.Context, id string, now time.Time) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return err
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": oid, "status": model.TicketCreated},
		bson.M{"$set": bson.M{"status": model.TicketUsed, "used_at": now}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark ticket used: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", ticketserrors.ErrNotCreated, id)
	}
	return nil
}

// ExpireIfPastDue performs the CREATED -> EXPIRED transition when the ticket
// is past valid_till. Only the caller whose update matched gets true.
func (r *mongoTicketRepository) ExpireIfPastDue(ctx context.Context, id string, now time.Time) (bool, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return false, err
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": oid, "status": model.TicketCreated, "valid_till": bson.M{"$lt": now}},
		bson.M{"$set": bson.M{"status": model.TicketExpired, "expired_at": now}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to expire ticket: %w", err)
	}
	return result.ModifiedCount == 1, nil
}

func (r *mongoTicketRepository) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.UpdateMany(ctx,
		bson.M{"status": model.TicketCreated, "valid_till": bson.M{"$lt": now}},
		bson.M{"$set": bson.M{"status": model.TicketExpired, "expired_at": now}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep expired tickets: %w", err)
	}
	return result.ModifiedCount, nil
}

func reservedFilter(now time.Time) bson.M {
	return bson.M{"status": model.TicketCreated, "valid_till": bson.M{"$gte": now}}
}

// CountReservedByLot counts CREATED tickets still inside their hold window.
// They hold a spot exactly like a parked vehicle does.
func (r *mongoTicketRepository) CountReservedByLot(ctx context.Context, lotID string, now time.Time) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(lotID)
	if err != nil {
		return 0, fmt.Errorf("invalid parking lot reference %q: %w", lotID, err)
	}

	filter := reservedFilter(now)
	filter["parking_lot_id"] = oid
	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count reserved tickets for lot [%s]: %w", lotID, err)
	}
	return count, nil
}

func (r *mongoTicketRepository) CountReserved(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, reservedFilter(now))
	if err != nil {
		return 0, fmt.Errorf("failed to count reserved tickets: %w", err)
	}
	return count, nil
}

func (r *mongoTicketRepository) SumAmountSince(ctx context.Context, lotID string, since time.Time) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(lotID)
	if err != nil {
		return 0, fmt.Errorf("invalid parking lot reference %q: %w", lotID, err)
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"parking_lot_id": oid, "created_at": bson.M{"$gte": since}}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$amount"}}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("failed to sum ticket revenue for lot [%s]: %w", lotID, err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Total int64 `bson:"total"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, fmt.Errorf("failed to decode ticket revenue: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}

// CountIssuedSince counts tickets of every status issued for the lot since
// the given time, booking holds and profile receipts alike.
func (r *mongoTicketRepository) CountIssuedSince(ctx context.Context, lotID string, since time.Time) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(lotID)
	if err != nil {
		return 0, fmt.Errorf("invalid parking lot reference %q: %w", lotID, err)
	}

	count, err := r.collection.CountDocuments(ctx, bson.M{"parking_lot_id": oid, "created_at": bson.M{"$gte": since}})
	if err != nil {
		return 0, fmt.Errorf("failed to count issued tickets for lot [%s]: %w", lotID, err)
	}
	return count, nil
}
