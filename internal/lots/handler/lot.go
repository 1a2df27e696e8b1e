package handler

import (
	"net/http"
	"strings"

	"parkproof/internal/lots/service"
	sessionsservice "parkproof/internal/sessions/service"
	"parkproof/pkg/auth"
	httputil "parkproof/pkg/http"
	"parkproof/pkg/logger"
	"parkproof/pkg/middleware"
	"parkproof/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type LotHandler struct {
	service  service.LotService
	sessions sessionsservice.SessionService
	verifier *auth.Verifier
	log      *logger.Logger
}

func NewLotHandler(
	service service.LotService,
	sessions sessionsservice.SessionService,
	verifier *auth.Verifier,
	log *logger.Logger,
) *LotHandler {
	return &LotHandler{
		service:  service,
		sessions: sessions,
		verifier: verifier,
		log:      log,
	}
}

func (h *LotHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *LotHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var lot model.ParkingLot
	if err := httputil.DecodeJSON(r, &lot); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := h.service.Create(r.Context(), &lot); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, lot); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *LotHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	lot, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, lot); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *LotHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	lots, total, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, lots, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *LotHandler) Stats(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	stats, err := h.service.Stats(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Stats", err)
		return
	}

	if err := httputil.WriteSuccess(w, stats); err != nil {
		h.log.Error("failed to write success response", "handler", "Stats", "operation", "WriteSuccess", "error", err)
	}
}

// Sessions is the attendant history of a lot, newest entry first.
func (h *LotHandler) Sessions(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	lot, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Sessions", err)
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "Sessions", err)
		return
	}
	status := model.SessionStatus(strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("status"))))

	sessions, total, err := h.sessions.ListByLot(r.Context(), lot.ID, status, limit, offset)
	if err != nil {
		h.writeError(w, "Sessions", err)
		return
	}

	if err := httputil.WritePaginated(w, sessions, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "Sessions", "operation", "WritePaginated", "error", err)
	}
}

func (h *LotHandler) Overview(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	overview, err := h.service.Overview(r.Context())
	if err != nil {
		h.writeError(w, "Overview", err)
		return
	}

	if err := httputil.WriteSuccess(w, overview); err != nil {
		h.log.Error("failed to write success response", "handler", "Overview", "operation", "WriteSuccess", "error", err)
	}
}

func (h *LotHandler) RegisterRoutes(router *httprouter.Router) {
	admin := string(model.RoleAdmin)

	router.POST("/api/v1/parking-lots", middleware.RequireRole(h.verifier, h.log, admin, h.Create))
	router.GET("/api/v1/parking-lots", h.GetAll)
	router.GET("/api/v1/parking-lots/:id", h.GetByID)
	router.GET("/api/v1/parking-lots/:id/stats", h.Stats)
	router.GET("/api/v1/parking-lots/:id/sessions", h.Sessions)
	router.GET("/api/v1/admin/overview", middleware.RequireRole(h.verifier, h.log, admin, h.Overview))
}
