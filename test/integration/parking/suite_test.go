//go:build integration

package parking

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	lotsrepo "parkproof/internal/lots/repository"
	sessionsrepo "parkproof/internal/sessions/repository"
	ticketsrepo "parkproof/internal/tickets/repository"
	usersrepo "parkproof/internal/users/repository"
	vehiclesrepo "parkproof/internal/vehicles/repository"
	"parkproof/pkg/auth"
	"parkproof/pkg/client"
	"parkproof/pkg/config"
	"parkproof/pkg/model"

	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const ServiceName = "parking-integration-tests"

// ParkingSuite drives a running service over HTTP. Users are seeded straight
// into Mongo since accounts are provisioned outside this service.
type ParkingSuite struct {
	suite.Suite

	cfg    *config.Config
	db     *mongo.Database
	mongo  *mongo.Client
	api    *client.ParkingClient
	admin  *client.ParkingClient
	plates int
}

func TestParkingSuite(t *testing.T) {
	suite.Run(t, new(ParkingSuite))
}

func (s *ParkingSuite) SetupSuite() {
	s.cfg = config.Load(ServiceName)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	mc, err := mongo.Connect(ctx, options.Client().ApplyURI(s.cfg.MongoURI))
	s.Require().NoError(err)
	s.mongo = mc
	s.db = mc.Database(s.cfg.MongoDatabaseName)

	serverURL := os.Getenv("TEST_SERVER_URL")
	if serverURL == "" {
		serverURL = "http://localhost:" + s.cfg.Port
	}
	s.api = client.NewParkingClient(serverURL, s.cfg.GateSigningSecret)
	s.Require().NoError(s.api.WaitForHealthy(30 * time.Second))

	token, err := auth.IssueToken(s.cfg.JWTSecret, primitive.NewObjectID().Hex(), string(model.RoleAdmin), time.Hour)
	s.Require().NoError(err)
	s.admin = s.api.WithToken(token)
}

func (s *ParkingSuite) TearDownSuite() {
	_ = s.mongo.Disconnect(context.Background())
}

// SetupTest empties the collections but keeps their validators and indexes.
func (s *ParkingSuite) SetupTest() {
	ctx := context.Background()
	for _, name := range []string{
		lotsrepo.CollectionName,
		ticketsrepo.CollectionName,
		sessionsrepo.CollectionName,
		vehiclesrepo.CollectionName,
		usersrepo.CollectionName,
	} {
		_, err := s.db.Collection(name).DeleteMany(ctx, bson.M{})
		s.Require().NoError(err)
	}
}

func (s *ParkingSuite) plate() string {
	s.plates++
	return fmt.Sprintf("IT%02dX%04d", s.plates, time.Now().UnixNano()%10000)
}

func (s *ParkingSuite) createLot(capacity int) string {
	resp, err := s.admin.CreateLot(map[string]any{
		"pid":      fmt.Sprintf("IT-%d", time.Now().UnixNano()),
		"name":     "Integration Lot",
		"area":     "Koramangala",
		"capacity": capacity,
	})
	s.Require().NoError(err)
	s.Require().Equal(http.StatusCreated, resp.StatusCode, string(resp.Body))

	var lot model.ParkingLot
	s.Require().NoError(resp.DecodeJSON(&lot))
	return lot.ID
}

func (s *ParkingSuite) seedUser(phone string) string {
	id := primitive.NewObjectID()
	_, err := s.db.Collection(usersrepo.CollectionName).InsertOne(context.Background(), bson.M{
		"_id":        id,
		"phone":      phone,
		"role":       string(model.RoleParker),
		"created_at": time.Now().UTC(),
	})
	s.Require().NoError(err)
	return id.Hex()
}

func (s *ParkingSuite) reason(resp *client.Response) string {
	var body struct {
		Reason string `json:"reason"`
	}
	s.Require().NoError(resp.DecodeJSON(&body))
	return body.Reason
}
