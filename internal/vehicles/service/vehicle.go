package service

import (
	"context"
	"errors"

	vehicleserrors "parkproof/internal/vehicles/errors"
	"parkproof/internal/vehicles/repository"
	"parkproof/internal/vehicles/validator"
	"parkproof/pkg/clock"
	"parkproof/pkg/config"
	apperrors "parkproof/pkg/errors"
	"parkproof/pkg/model"
	"parkproof/pkg/sanitizer"
)

type RegisterInput struct {
	UserID        string
	VehicleNumber string
	Name          string
	Type          string
}

type VehicleService interface {
	// Register returns created=true only when a new record was inserted.
	// Re-registering an owned plate is idempotent; an unowned plate is claimed.
	Register(ctx context.Context, in RegisterInput) (vehicle *model.Vehicle, created bool, err error)
	ListByUser(ctx context.Context, userID string) ([]*model.Vehicle, error)
}

type vehicleService struct {
	repo      repository.VehicleRepository
	validator *validator.VehicleValidator
	clock     clock.Clock
	cfg       *config.Config
}

func NewVehicleService(
	repo repository.VehicleRepository,
	validator *validator.VehicleValidator,
	clk clock.Clock,
	cfg *config.Config,
) VehicleService {
	return &vehicleService{
		repo:      repo,
		validator: validator,
		clock:     clk,
		cfg:       cfg,
	}
}

func ownedByOther(vehicleNumber string) error {
	return apperrors.Conflict("Vehicle already registered by another user").
		WithReason(apperrors.ReasonVehicleOwned).
		WithDetails(map[string]any{"vehicleNumber": vehicleNumber})
}

func (s *vehicleService) Register(ctx context.Context, in RegisterInput) (*model.Vehicle, bool, error) {
	if in.UserID == "" {
		return nil, false, apperrors.Unauthorized("Authentication required")
	}

	vehicle := &model.Vehicle{
		VehicleNumber: sanitizer.NormalizeVehicleNumber(in.VehicleNumber),
		UserID:        in.UserID,
		Name:          sanitizer.NormalizeName(in.Name),
		Type:          sanitizer.NormalizeVehicleType(in.Type),
		CreatedAt:     s.clock.Now(),
	}
	if vehicle.VehicleNumber == "" {
		return nil, false, apperrors.InvalidInput("Vehicle number is required")
	}
	if vehicle.Name == "" {
		vehicle.Name = model.DefaultVehicleName
	}
	if details := s.validator.Validate(vehicle); details != nil {
		s.cfg.Log.Warn("Vehicle validation failed",
			"vehicle_number", vehicle.VehicleNumber,
			"user_id", in.UserID,
			"details", details,
		)
		return nil, false, apperrors.Validation("Vehicle validation failed", details)
	}

	err := s.repo.Create(ctx, vehicle)
	if err == nil {
		s.cfg.Log.Info("Vehicle registered",
			"id", vehicle.ID,
			"vehicle_number", vehicle.VehicleNumber,
			"user_id", vehicle.UserID,
		)
		return vehicle, true, nil
	}
	if !errors.Is(err, vehicleserrors.ErrDuplicateNumber) {
		return nil, false, s.internal("Failed to register vehicle", vehicle, err)
	}

	existing, err := s.repo.FindByNumber(ctx, vehicle.VehicleNumber)
	if err != nil {
		return nil, false, s.internal("Failed to load existing vehicle", vehicle, err)
	}

	switch existing.UserID {
	case in.UserID:
		return existing, false, nil
	case "":
		claimed, err := s.repo.Claim(ctx, existing.ID, in.UserID)
		if errors.Is(err, vehicleserrors.ErrAlreadyOwned) {
			// Someone else claimed it first; only they keep it.
			current, findErr := s.repo.FindByNumber(ctx, vehicle.VehicleNumber)
			if findErr == nil && current.UserID == in.UserID {
				return current, false, nil
			}
			return nil, false, ownedByOther(vehicle.VehicleNumber)
		}
		if err != nil {
			return nil, false, s.internal("Failed to claim vehicle", vehicle, err)
		}
		s.cfg.Log.Info("Vehicle claimed",
			"id", claimed.ID,
			"vehicle_number", claimed.VehicleNumber,
			"user_id", in.UserID,
		)
		return claimed, false, nil
	default:
		s.cfg.Log.Warn("Vehicle registration conflict",
			"vehicle_number", vehicle.VehicleNumber,
			"user_id", in.UserID,
		)
		return nil, false, ownedByOther(vehicle.VehicleNumber)
	}
}

func (s *vehicleService) internal(msg string, vehicle *model.Vehicle, err error) error {
	if errors.Is(err, vehicleserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid user ID format")
	}
	s.cfg.Log.Error(msg,
		"vehicle_number", vehicle.VehicleNumber,
		"user_id", vehicle.UserID,
		"error", err,
	)
	return apperrors.Internal(msg, err)
}

func (s *vehicleService) ListByUser(ctx context.Context, userID string) ([]*model.Vehicle, error) {
	if userID == "" {
		return nil, apperrors.Unauthorized("Authentication required")
	}

	vehicles, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, vehicleserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid user ID format")
		}
		s.cfg.Log.Error("Failed to list vehicles", "user_id", userID, "error", err)
		return nil, apperrors.Internal("Failed to list vehicles", err)
	}
	return vehicles, nil
}
