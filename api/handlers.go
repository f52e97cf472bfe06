package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"croupier/games"
	"croupier/models"
)

const defaultListLimit = 50

func parseLimit(r *http.Request) int {
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	return limit
}

func parseUserID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func parseUUIDParam(r *http.Request) (uuid.UUID, bool) {
	u, err := uuid.Parse(chi.URLParam(r, "uuid"))
	return u, err == nil
}

type placeBetRequest struct {
	UserID int64  `json:"userId" validate:"required,gt=0"`
	Room   string `json:"room" validate:"required"`
	Kind   string `json:"kind" validate:"required"`
	Amount int64  `json:"amount" validate:"required,gt=0"`
}

func (s *Server) handlePlaceBet(w http.ResponseWriter, r *http.Request) {
	var req placeBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "INVALID_BODY")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		respondBadRequest(w, "VALIDATION_FAILED")
		return
	}

	receipt, err := s.betService.PlaceBet(r.Context(), req.UserID, req.Room, games.BetKind(req.Kind), req.Amount)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, newReceiptView(receipt))
}

type refundBetRequest struct {
	UserID int64 `json:"userId" validate:"required,gt=0"`
}

func (s *Server) handleRefundBet(w http.ResponseWriter, r *http.Request) {
	betUUID, ok := parseUUIDParam(r)
	if !ok {
		respondBadRequest(w, "INVALID_UUID")
		return
	}
	var req refundBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "INVALID_BODY")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		respondBadRequest(w, "VALIDATION_FAILED")
		return
	}

	receipt, err := s.betService.RefundBet(r.Context(), req.UserID, betUUID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newReceiptView(receipt))
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := s.roomService.ListRooms(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	views := make([]roomView, 0, len(rooms))
	for _, room := range rooms {
		views = append(views, newRoomView(room))
	}
	respondJSON(w, http.StatusOK, views)
}

func (s *Server) handleRoomState(w http.ResponseWriter, r *http.Request) {
	state, err := s.roundService.GetRoomState(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newStateView(state))
}

func (s *Server) handleRoomHistory(w http.ResponseWriter, r *http.Request) {
	rounds, err := s.roundService.GetHistory(r.Context(), chi.URLParam(r, "code"), parseLimit(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	views := make([]roundView, 0, len(rounds))
	for _, round := range rounds {
		views = append(views, newRoundView(round))
	}
	respondJSON(w, http.StatusOK, views)
}

type createUserRequest struct {
	Username string `json:"username" validate:"required,min=2,max=64"`
}

func (s *Server) handleGetOrCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "INVALID_BODY")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		respondBadRequest(w, "VALIDATION_FAILED")
		return
	}

	user, err := s.walletService.GetOrCreateUser(r.Context(), req.Username)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newUserView(user))
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(r)
	if !ok {
		respondBadRequest(w, "INVALID_USER_ID")
		return
	}
	user, err := s.walletService.GetUser(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newUserView(user))
}

func (s *Server) handleUserLedger(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(r)
	if !ok {
		respondBadRequest(w, "INVALID_USER_ID")
		return
	}
	entries, err := s.walletService.GetLedger(r.Context(), userID, parseLimit(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	views := make([]ledgerEntryView, 0, len(entries))
	for _, entry := range entries {
		views = append(views, newLedgerEntryView(entry))
	}
	respondJSON(w, http.StatusOK, views)
}

func (s *Server) handleUserBets(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(r)
	if !ok {
		respondBadRequest(w, "INVALID_USER_ID")
		return
	}
	bets, err := s.betService.GetUserBets(r.Context(), userID, parseLimit(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	views := make([]betView, 0, len(bets))
	for _, bet := range bets {
		views = append(views, newBetView(bet))
	}
	respondJSON(w, http.StatusOK, views)
}

type transferRequest struct {
	UserID    int64  `json:"userId" validate:"required,gt=0"`
	Direction string `json:"direction" validate:"required,oneof=deposit withdraw"`
	Amount    int64  `json:"amount" validate:"required,gt=0"`
}

// handleTransfer moves chips between a user's wallet and bank. "deposit"
// moves wallet to bank, "withdraw" the reverse.
func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "INVALID_BODY")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		respondBadRequest(w, "VALIDATION_FAILED")
		return
	}

	from, to := models.PartitionWallet, models.PartitionBank
	if req.Direction == "withdraw" {
		from, to = models.PartitionBank, models.PartitionWallet
	}

	user, err := s.walletService.Transfer(r.Context(), req.UserID, from, to, req.Amount)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newUserView(user))
}
