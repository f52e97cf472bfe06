package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"croupier/games"
	"croupier/models"
	"croupier/service"
)

func (s *Server) handleOpenRound(w http.ResponseWriter, r *http.Request) {
	round, err := s.roundService.OpenRound(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, newRoundView(round))
}

type forceSettleRequest struct {
	Outcome *games.Outcome `json:"outcome"`
}

// handleForceSettle drives a round to settled immediately. An admin-supplied
// outcome replaces the random draw when the round has not revealed yet; a
// round that already revealed keeps its recorded outcome.
func (s *Server) handleForceSettle(w http.ResponseWriter, r *http.Request) {
	roundUUID, ok := parseUUIDParam(r)
	if !ok {
		respondBadRequest(w, "INVALID_UUID")
		return
	}

	var req forceSettleRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondBadRequest(w, "INVALID_BODY")
			return
		}
	}

	if err := s.roundService.ForceSettle(r.Context(), roundUUID, req.Outcome); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, nil)
}

type roomConfigRequest struct {
	Name              *string `json:"name" validate:"omitempty,min=1,max=100"`
	MinBet            *int64  `json:"minBet" validate:"omitempty,gt=0"`
	MaxBet            *int64  `json:"maxBet" validate:"omitempty,gt=0"`
	BettingSeconds    *int    `json:"bettingSeconds" validate:"omitempty,gte=5,lte=3600"`
	LockBufferSeconds *int    `json:"lockBufferSeconds" validate:"omitempty,gte=0,lte=600"`
	RevealSeconds     *int    `json:"revealSeconds" validate:"omitempty,gte=1,lte=600"`
	CommissionFree    *bool   `json:"commissionFree"`
	Enabled           *bool   `json:"enabled"`
}

func (s *Server) handleSetRoomConfig(w http.ResponseWriter, r *http.Request) {
	var req roomConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "INVALID_BODY")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		respondBadRequest(w, "VALIDATION_FAILED")
		return
	}

	room, err := s.roomService.SetRoomConfig(r.Context(), chi.URLParam(r, "code"), service.RoomConfigUpdate{
		Name:              req.Name,
		MinBet:            req.MinBet,
		MaxBet:            req.MaxBet,
		BettingSeconds:    req.BettingSeconds,
		LockBufferSeconds: req.LockBufferSeconds,
		RevealSeconds:     req.RevealSeconds,
		CommissionFree:    req.CommissionFree,
		Enabled:           req.Enabled,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newRoomView(room))
}

type seedOverrideRequest struct {
	Seed *int64 `json:"seed"` // null clears the override
}

func (s *Server) handleSetSeedOverride(w http.ResponseWriter, r *http.Request) {
	var req seedOverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "INVALID_BODY")
		return
	}

	room, err := s.roomService.SetSeedOverride(r.Context(), chi.URLParam(r, "code"), req.Seed)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newRoomView(room))
}

type adminAdjustRequest struct {
	Partition string `json:"partition" validate:"required,oneof=wallet bank"`
	Delta     int64  `json:"delta" validate:"required"`
	Memo      string `json:"memo" validate:"required,max=500"`
}

func (s *Server) handleAdminAdjust(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(r)
	if !ok {
		respondBadRequest(w, "INVALID_USER_ID")
		return
	}
	var req adminAdjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "INVALID_BODY")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		respondBadRequest(w, "VALIDATION_FAILED")
		return
	}

	user, err := s.walletService.AdminAdjust(r.Context(), userID, models.Partition(req.Partition), req.Delta, req.Memo)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newUserView(user))
}
