package middleware

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/fatimahitawala/Transition-Services-sub002/pkg/composables"
	"github.com/fatimahitawala/Transition-Services-sub002/pkg/configuration"
)

// ProvideParams installs request metadata (IP, user agent) for audit use.
func ProvideParams() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := strings.TrimSpace(r.Header.Get(configuration.Use().RealIPHeader))
			if ip == "" {
				host, _, err := net.SplitHostPort(r.RemoteAddr)
				if err == nil {
					ip = host
				} else {
					ip = r.RemoteAddr
				}
			}
			ctx := composables.WithParams(r.Context(), &composables.Params{
				IP:        ip,
				UserAgent: r.UserAgent(),
				Request:   r,
				Writer:    w,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestLogger installs a per-request logger entry tagged with a request id
// and logs request completion.
func RequestLogger(logger *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := configuration.Use().RequestIDHeader
			requestID := strings.TrimSpace(r.Header.Get(header))
			if requestID == "" {
				requestID = uuid.NewString()
			}

			entry := logger.WithFields(logrus.Fields{
				"request_id": requestID,
				"method":     r.Method,
				"path":       r.URL.Path,
			})
			ctx := composables.WithLogger(r.Context(), entry)

			start := time.Now()
			next.ServeHTTP(w, r.WithContext(ctx))
			entry.WithField("duration", time.Since(start).String()).Debug("request completed")
		})
	}
}
