package middleware

import (
	"bytes"
	"io"
	"net/http"

	apperrors "parkproof/pkg/errors"
	"parkproof/pkg/gatesig"
	"parkproof/pkg/logger"
)

const GateSignatureHeader = gatesig.Header

// GateSignatureVerification checks an HMAC-SHA256 of the body sent by gate
// devices on the given paths. Other paths pass through untouched.
func GateSignatureVerification(secret string, paths []string, log *logger.Logger) func(http.Handler) http.Handler {
	protected := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		protected[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := protected[r.URL.Path]; !ok || r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			signature := gatesig.Parse(r.Header.Get(GateSignatureHeader))
			if signature == "" {
				logAndReject(w, log, r, "Missing "+GateSignatureHeader+" header")
				return
			}

			body, err := readAndRestoreBody(r)
			if err != nil {
				logAndReject(w, log, r, "Failed to read request body")
				return
			}

			if !gatesig.Verify(body, signature, secret) {
				logAndReject(w, log, r, "Invalid gate signature")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func readAndRestoreBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))
	return body, nil
}

func logAndReject(w http.ResponseWriter, log *logger.Logger, r *http.Request, reason string) {
	log.Warn("Gate signature verification failed",
		"request_id", RequestID(r.Context()),
		"reason", reason,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr,
	)
	reject(w, log, r, apperrors.Unauthorized("Invalid gate signature"))
}
