package controllers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/fatimahitawala/Transition-Services-sub002/pkg/configuration"
)

type apiError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Meta    map[string]string `json:"meta,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		panic(err)
	}
}

func ensureRequestID(w http.ResponseWriter, r *http.Request) string {
	if r == nil {
		return ""
	}
	header := strings.TrimSpace(configuration.Use().RequestIDHeader)
	if header == "" {
		header = "X-Request-ID"
	}

	requestID := strings.TrimSpace(r.Header.Get(header))
	if requestID == "" {
		requestID = strings.TrimSpace(r.Header.Get("X-Request-Id"))
	}
	if requestID == "" {
		requestID = uuid.NewString()
		w.Header().Set(header, requestID)
	}
	return requestID
}

func writeAPIError(w http.ResponseWriter, r *http.Request, status int, code string, message string) {
	writeJSON(w, status, apiError{
		Code:    code,
		Message: message,
		Meta: map[string]string{
			"request_id": ensureRequestID(w, r),
		},
	})
}

func writeValidationError(w http.ResponseWriter, r *http.Request, message string, fields map[string]string) {
	writeJSON(w, http.StatusUnprocessableEntity, apiError{
		Code:    "TRANSITION_VALIDATION_FAILED",
		Message: message,
		Meta: map[string]string{
			"request_id": ensureRequestID(w, r),
		},
		Fields: fields,
	})
}
