package handler

import (
	"net/http"

	"parkproof/internal/vehicles/service"
	"parkproof/pkg/auth"
	httputil "parkproof/pkg/http"
	"parkproof/pkg/logger"
	"parkproof/pkg/middleware"

	"github.com/julienschmidt/httprouter"
)

type RegisterRequest struct {
	VehicleNumber string `json:"vehicleNumber"`
	Name          string `json:"name"`
	Type          string `json:"type"`
}

type VehicleHandler struct {
	service  service.VehicleService
	verifier *auth.Verifier
	log      *logger.Logger
}

func NewVehicleHandler(service service.VehicleService, verifier *auth.Verifier, log *logger.Logger) *VehicleHandler {
	return &VehicleHandler{
		service:  service,
		verifier: verifier,
		log:      log,
	}
}

func (h *VehicleHandler) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	identity, _ := auth.FromContext(r.Context())

	var req RegisterRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Register", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	vehicle, created, err := h.service.Register(r.Context(), service.RegisterInput{
		UserID:        identity.UserID,
		VehicleNumber: req.VehicleNumber,
		Name:          req.Name,
		Type:          req.Type,
	})
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Register", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	if err := httputil.WriteJSON(w, status, vehicle); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Register", "operation", "WriteJSON", "error", err)
	}
}

func (h *VehicleHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	identity, _ := auth.FromContext(r.Context())

	vehicles, err := h.service.ListByUser(r.Context(), identity.UserID)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "List", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, vehicles); err != nil {
		h.log.Error("failed to write success response", "handler", "List", "operation", "WriteSuccess", "error", err)
	}
}

func (h *VehicleHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/vehicles", middleware.RequireIdentity(h.verifier, h.log, h.Register))
	router.GET("/api/v1/vehicles", middleware.RequireIdentity(h.verifier, h.log, h.List))
}
