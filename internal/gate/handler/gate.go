package handler

import (
	"net/http"
	"strings"

	"parkproof/internal/gate/service"
	httputil "parkproof/pkg/http"
	"parkproof/pkg/logger"
	"parkproof/pkg/model"

	"github.com/julienschmidt/httprouter"
)

const (
	EntryPath = "/api/v1/entry"
	ExitPath  = "/api/v1/exit"
)

type GateHandler struct {
	service service.GateService
	log     *logger.Logger
}

func NewGateHandler(service service.GateService, log *logger.Logger) *GateHandler {
	return &GateHandler{
		service: service,
		log:     log,
	}
}

func (h *GateHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *GateHandler) Enter(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.EntryRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Enter", err)
		return
	}

	result, err := h.service.Enter(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Enter", err)
		return
	}

	if err := httputil.WriteCreated(w, result); err != nil {
		h.log.Error("failed to write created response", "handler", "Enter", "operation", "WriteCreated", "error", err)
	}
}

func (h *GateHandler) Exit(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.ExitRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Exit", err)
		return
	}

	result, err := h.service.Exit(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Exit", err)
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "Exit", "operation", "WriteSuccess", "error", err)
	}
}

// Quote takes the same identifiers as Exit from the query string.
func (h *GateHandler) Quote(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := r.URL.Query()
	req := model.ExitRequest{
		TicketID:      strings.TrimSpace(q.Get("ticketId")),
		UserID:        strings.TrimSpace(q.Get("userId")),
		VehicleNumber: strings.TrimSpace(q.Get("vehicleNumber")),
	}

	quote, err := h.service.QuoteExit(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Quote", err)
		return
	}

	if err := httputil.WriteSuccess(w, quote); err != nil {
		h.log.Error("failed to write success response", "handler", "Quote", "operation", "WriteSuccess", "error", err)
	}
}

func (h *GateHandler) ActiveStatus(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	status, err := h.service.ActiveStatus(r.Context(), r.URL.Query().Get("vehicleNumber"))
	if err != nil {
		h.writeError(w, "ActiveStatus", err)
		return
	}

	if err := httputil.WriteSuccess(w, status); err != nil {
		h.log.Error("failed to write success response", "handler", "ActiveStatus", "operation", "WriteSuccess", "error", err)
	}
}

func (h *GateHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST(EntryPath, h.Enter)
	router.POST(ExitPath, h.Exit)
	router.GET(ExitPath, h.Quote)
	router.GET("/api/v1/tickets/active", h.ActiveStatus)
}
