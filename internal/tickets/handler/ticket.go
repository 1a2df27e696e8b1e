package handler

import (
	"net/http"
	"strings"
	"time"

	"parkproof/internal/tickets/service"
	apperrors "parkproof/pkg/errors"
	httputil "parkproof/pkg/http"
	"parkproof/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type ValidationResponse struct {
	Valid         bool       `json:"valid"`
	Reason        string     `json:"reason,omitempty"`
	TicketID      string     `json:"ticketId,omitempty"`
	ParkingLotID  string     `json:"parkingLotId,omitempty"`
	VehicleNumber string     `json:"vehicleNumber,omitempty"`
	ValidTill     *time.Time `json:"validTill,omitempty"`
}

type TicketHandler struct {
	service service.TicketService
	log     *logger.Logger
}

func NewTicketHandler(service service.TicketService, log *logger.Logger) *TicketHandler {
	return &TicketHandler{
		service: service,
		log:     log,
	}
}

// Validate answers a gate scan. Lifecycle failures keep the
// {valid:false, reason} shape that gate firmware parses; malformed input and
// storage failures use the regular error body.
func (h *TicketHandler) Validate(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ticketID := strings.TrimSpace(r.URL.Query().Get("ticketId"))

	ticket, err := h.service.Validate(r.Context(), ticketID)
	if err != nil {
		appErr := apperrors.AsAppError(err)
		if appErr.Reason == "" {
			if writeErr := httputil.WriteError(w, err); writeErr != nil {
				h.log.Error("failed to write error response", "handler", "Validate", "operation", "WriteError", "error", writeErr)
			}
			return
		}
		if writeErr := httputil.WriteJSON(w, appErr.StatusCode(), ValidationResponse{
			Valid:  false,
			Reason: appErr.Reason,
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Validate", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, ValidationResponse{
		Valid:         true,
		TicketID:      ticket.ID,
		ParkingLotID:  ticket.ParkingLotID,
		VehicleNumber: ticket.VehicleNumber,
		ValidTill:     &ticket.ValidTill,
	}); err != nil {
		h.log.Error("failed to write success response", "handler", "Validate", "operation", "WriteSuccess", "error", err)
	}
}

func (h *TicketHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/ticket/validate", h.Validate)
}
