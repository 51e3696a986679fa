package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"mawared/internal/store"
	"mawared/internal/transport/http/api"
)

const maxIdempotentBody = 1 << 20

// Idempotency replays the stored response for a repeated mutation that
// carries the same Idempotency-Key, so callers can retry transition and
// draft endpoints safely. Requests without the header pass through.
func Idempotency(st store.IdempotencyAPI) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("Idempotency-Key")
			if key == "" || !mutating(r.Method) {
				next.ServeHTTP(w, r)
				return
			}
			requestID := GetRequestID(r.Context())

			body, err := io.ReadAll(io.LimitReader(r.Body, maxIdempotentBody))
			if err != nil {
				api.Fail(w, http.StatusBadRequest, "invalid_payload", "failed to read request body", requestID)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			user, _ := GetUser(r.Context())
			endpoint := r.Method + " " + r.URL.Path
			hash := requestHash(endpoint, body)

			rec, err := st.GetIdempotencyRecord(r.Context(), user.UserID, endpoint, key)
			switch {
			case err == nil:
				if rec.RequestHash != hash {
					api.Fail(w, http.StatusConflict, "idempotency_conflict", "idempotency key was already used with a different request", requestID)
					return
				}
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("X-Idempotent-Replay", "true")
				w.WriteHeader(rec.Status)
				_, _ = w.Write(rec.Body)
				return
			case !errors.Is(err, store.ErrNotFound):
				api.Fail(w, http.StatusInternalServerError, "idempotency_failed", "failed to check idempotency key", requestID)
				return
			}

			capture := &responseCapture{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(capture, r)

			// 5xx responses are transient and stay replayable.
			if capture.status < http.StatusInternalServerError {
				err := st.PutIdempotencyRecord(r.Context(), user.UserID, endpoint, key, store.IdempotencyRecord{
					RequestHash: hash,
					Status:      capture.status,
					Body:        capture.buf.Bytes(),
				})
				if err != nil {
					slog.Warn("idempotency record save failed", "endpoint", endpoint, "err", err)
				}
			}
		})
	}
}

func mutating(method string) bool {
	return method == http.MethodPost || method == http.MethodPut || method == http.MethodDelete
}

func requestHash(endpoint string, body []byte) string {
	sum := sha256.New()
	sum.Write([]byte(endpoint))
	sum.Write([]byte{0})
	sum.Write(body)
	return hex.EncodeToString(sum.Sum(nil))
}

type responseCapture struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (c *responseCapture) WriteHeader(status int) {
	c.status = status
	c.ResponseWriter.WriteHeader(status)
}

func (c *responseCapture) Write(p []byte) (int, error) {
	c.buf.Write(p)
	return c.ResponseWriter.Write(p)
}
