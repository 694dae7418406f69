package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/wolfman30/leadcapture-api/pkg/logging"
)

// Recoverer turns a panic in a handler into a generic JSON 500.
func Recoverer(logger *logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.Error("panic serving request",
					"method", r.Method,
					"path", r.URL.Path,
					"panic", rec,
					"stack", string(debug.Stack()),
				)
				writeError(w, http.StatusInternalServerError, "Something broke!")
			}()
			next.ServeHTTP(w, r)
		})
	}
}
