package api

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"croupier/service"
)

type errorResponse struct {
	Error string `json:"error"`
}

// respondJSON writes v as the JSON response body.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("Failed to encode response")
	}
}

// respondServiceError maps the service layer's sentinel errors onto wire
// codes. An error carrying no sentinel is internal: it is logged and
// surfaced as a bare 500 so database details never leak to callers.
func respondServiceError(w http.ResponseWriter, err error) {
	var status int
	var code string

	switch {
	case errors.Is(err, service.ErrNotFound):
		status, code = http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, service.ErrInsufficientFunds):
		status, code = http.StatusConflict, "INSUFFICIENT_FUNDS"
	case errors.Is(err, service.ErrLocked):
		status, code = http.StatusConflict, "LOCKED"
	case errors.Is(err, service.ErrRoomClosed):
		status, code = http.StatusConflict, "ROOM_CLOSED"
	case errors.Is(err, service.ErrBetOutOfRange):
		status, code = http.StatusBadRequest, "BET_OUT_OF_RANGE"
	case errors.Is(err, service.ErrInvalidBet):
		status, code = http.StatusBadRequest, "INVALID_BET"
	case errors.Is(err, service.ErrUserBanned):
		status, code = http.StatusForbidden, "USER_BANNED"
	default:
		log.WithError(err).Error("Unhandled service error")
		status, code = http.StatusInternalServerError, "INTERNAL"
	}

	respondJSON(w, status, errorResponse{Error: code})
}

// respondBadRequest rejects malformed input before it reaches a service.
func respondBadRequest(w http.ResponseWriter, code string) {
	respondJSON(w, http.StatusBadRequest, errorResponse{Error: code})
}
