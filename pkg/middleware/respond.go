package middleware

import (
	"net/http"

	apperrors "parkproof/pkg/errors"
	httputil "parkproof/pkg/http"
	"parkproof/pkg/logger"
)

func reject(w http.ResponseWriter, log *logger.Logger, r *http.Request, appErr *apperrors.AppError) {
	if err := httputil.WriteError(w, appErr); err != nil {
		log.Error("failed to write error response",
			"request_id", RequestID(r.Context()),
			"path", r.URL.Path,
			"error", err,
		)
	}
}
