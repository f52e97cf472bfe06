package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"

	"croupier/service"
)

// Server exposes the casino over HTTP. Handlers are thin: decode, validate,
// call one service method, map the result. All business rules live behind
// the service interfaces.
type Server struct {
	walletService service.WalletService
	betService    service.BetService
	roundService  service.RoundService
	roomService   service.RoomService

	validate *validator.Validate
	httpSrv  *http.Server
}

// NewServer wires the HTTP surface against the given services.
func NewServer(addr string, wallet service.WalletService, bets service.BetService, rounds service.RoundService, rooms service.RoomService) *Server {
	s := &Server{
		walletService: wallet,
		betService:    bets,
		roundService:  rounds,
		roomService:   rooms,
		validate:      validator.New(),
	}
	s.httpSrv = &http.Server{
		Addr:         addr,
		Handler:      s.routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))

	r.Route("/api", func(r chi.Router) {
		r.Post("/bets", s.handlePlaceBet)
		r.Delete("/bets/{uuid}", s.handleRefundBet)

		r.Get("/rooms", s.handleListRooms)
		r.Get("/rooms/{code}/state", s.handleRoomState)
		r.Get("/rooms/{code}/history", s.handleRoomHistory)

		r.Post("/users", s.handleGetOrCreateUser)
		r.Get("/users/{id}", s.handleGetUser)
		r.Get("/users/{id}/ledger", s.handleUserLedger)
		r.Get("/users/{id}/bets", s.handleUserBets)

		r.Post("/transfers", s.handleTransfer)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/rooms/{code}/open", s.handleOpenRound)
			r.Post("/rounds/{uuid}/settle", s.handleForceSettle)
			r.Put("/rooms/{code}", s.handleSetRoomConfig)
			r.Put("/rooms/{code}/seed", s.handleSetSeedOverride)
			r.Post("/users/{id}/adjust", s.handleAdminAdjust)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return r
}

// ListenAndServe blocks serving HTTP until the listener fails or Shutdown
// is called.
func (s *Server) ListenAndServe() error {
	log.WithField("addr", s.httpSrv.Addr).Info("HTTP server listening")
	return s.httpSrv.ListenAndServe()
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}
