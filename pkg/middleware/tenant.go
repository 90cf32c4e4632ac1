package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/fatimahitawala/Transition-Services-sub002/pkg/composables"
)

const TenantHeader = "X-Tenant-ID"

// ProvideTenant resolves the acting tenant from the request header.
// Authentication lives in the gateway in front of this service; by the time
// a request arrives here the header is trusted.
func ProvideTenant() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get(TenantHeader))
			if raw == "" {
				http.Error(w, "missing tenant header", http.StatusBadRequest)
				return
			}
			tenantID, err := uuid.Parse(raw)
			if err != nil {
				http.Error(w, "invalid tenant header", http.StatusBadRequest)
				return
			}
			ctx := composables.WithTenantID(r.Context(), tenantID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
