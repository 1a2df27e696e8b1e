package handler

import (
	"net/http"

	"parkproof/internal/risk/service"
	"parkproof/pkg/auth"
	httputil "parkproof/pkg/http"
	"parkproof/pkg/logger"
	"parkproof/pkg/middleware"
	"parkproof/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type RiskHandler struct {
	service  service.RiskService
	verifier *auth.Verifier
	log      *logger.Logger
}

func NewRiskHandler(service service.RiskService, verifier *auth.Verifier, log *logger.Logger) *RiskHandler {
	return &RiskHandler{
		service:  service,
		verifier: verifier,
		log:      log,
	}
}

func (h *RiskHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

// SubmitReport files a complaint under the caller's identity.
func (h *RiskHandler) SubmitReport(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	identity, _ := auth.FromContext(r.Context())

	var req model.ReportRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "SubmitReport", err)
		return
	}

	report, err := h.service.SubmitReport(r.Context(), identity.UserID, &req)
	if err != nil {
		h.writeError(w, "SubmitReport", err)
		return
	}

	if err := httputil.WriteCreated(w, report); err != nil {
		h.log.Error("failed to write created response", "handler", "SubmitReport", "operation", "WriteCreated", "error", err)
	}
}

func (h *RiskHandler) ListReports(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "ListReports", err)
		return
	}

	reports, total, err := h.service.ListReports(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, "ListReports", err)
		return
	}

	if err := httputil.WritePaginated(w, reports, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "ListReports", "operation", "WritePaginated", "error", err)
	}
}

func (h *RiskHandler) ListScores(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	scores, err := h.service.ListScores(r.Context())
	if err != nil {
		h.writeError(w, "ListScores", err)
		return
	}

	if err := httputil.WriteSuccess(w, scores); err != nil {
		h.log.Error("failed to write success response", "handler", "ListScores", "operation", "WriteSuccess", "error", err)
	}
}

func (h *RiskHandler) GetScore(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	score, err := h.service.GetScore(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetScore", err)
		return
	}

	if err := httputil.WriteSuccess(w, score); err != nil {
		h.log.Error("failed to write success response", "handler", "GetScore", "operation", "WriteSuccess", "error", err)
	}
}

func (h *RiskHandler) RegisterRoutes(router *httprouter.Router) {
	admin := string(model.RoleAdmin)

	router.POST("/api/v1/reports", middleware.RequireIdentity(h.verifier, h.log, h.SubmitReport))
	router.GET("/api/v1/admin/reports", middleware.RequireRole(h.verifier, h.log, admin, h.ListReports))
	router.GET("/api/v1/admin/risk", middleware.RequireRole(h.verifier, h.log, admin, h.ListScores))
	router.GET("/api/v1/admin/risk/:id", middleware.RequireRole(h.verifier, h.log, admin, h.GetScore))
}
