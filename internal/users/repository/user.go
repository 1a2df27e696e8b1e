package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	userserrors "parkproof/internal/users/errors"
	"parkproof/pkg/config"
	mongotx "parkproof/pkg/db/mongo"
	"parkproof/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	CollectionName = "users"
)

type mongoUserRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
}

// UserRepository is read only. Accounts are provisioned by the identity
// service; entry and vehicle claims only need to resolve them.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByPhone(ctx context.Context, phone string) (*model.User, error)
}

func NewMongoUserRepository(cfg *config.Config) UserRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoUserRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
	}
}

type userDocument struct {
	ID           primitive.ObjectID  `bson:"_id"`
	Phone        string              `bson:"phone"`
	Password     string              `bson:"password"`
	Role         model.Role          `bson:"role"`
	ParkingLotID *primitive.ObjectID `bson:"parking_lot_id,omitempty"`
	CreatedAt    time.Time           `bson:"created_at"`
}

func (d *userDocument) toModel() *model.User {
	u := &model.User{
		ID:        d.ID.Hex(),
		Phone:     d.Phone,
		Password:  d.Password,
		Role:      d.Role,
		CreatedAt: d.CreatedAt,
	}
	if d.ParkingLotID != nil {
		u.ParkingLotID = d.ParkingLotID.Hex()
	}
	return u
}

func (r *mongoUserRepository) findOne(ctx context.Context, filter bson.M, key string) (*model.User, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var doc userDocument
	if err := r.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", userserrors.ErrNotFound, key)
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return doc.toModel(), nil
}

func (r *mongoUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", userserrors.ErrInvalidID, id)
	}
	return r.findOne(ctx, bson.M{"_id": oid}, id)
}

// FindByPhone expects an E.164 number.
func (r *mongoUserRepository) FindByPhone(ctx context.Context, phone string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"phone": phone}, phone)
}
