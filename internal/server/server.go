// Package server exposes the game over HTTP: a JSON API for room operations,
// a websocket stream of change events, and Prometheus metrics.
package server

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/fmarinoa/el-impostor-game/internal/auth"
	"github.com/fmarinoa/el-impostor-game/internal/events"
	"github.com/fmarinoa/el-impostor-game/internal/metrics"
	"github.com/fmarinoa/el-impostor-game/internal/middleware"
	"github.com/fmarinoa/el-impostor-game/internal/service"
)

// Server wires the service layer to HTTP routes.
type Server struct {
	rooms   *service.RoomService
	hub     *events.Hub
	tokens  *auth.JWTManager
	metrics *metrics.Metrics
}

// New creates a Server.
func New(rooms *service.RoomService, hub *events.Hub, tokens *auth.JWTManager, m *metrics.Metrics) *Server {
	return &Server{rooms: rooms, hub: hub, tokens: tokens, metrics: m}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	router := httprouter.New()

	public := func(route string, h httprouter.Handle) httprouter.Handle {
		return s.instrument(route, h)
	}
	private := func(route string, h httprouter.Handle) httprouter.Handle {
		return s.instrument(route, s.requireSession(h))
	}

	router.POST("/api/rooms", public("/api/rooms", s.handleCreateRoom))
	router.POST("/api/rooms/:code/join", public("/api/rooms/:code/join", s.handleJoinRoom))
	router.GET("/api/rooms/:code", public("/api/rooms/:code", s.handleSnapshot))
	router.GET("/api/rooms/:code/qr", public("/api/rooms/:code/qr", s.handleQR))

	router.PATCH("/api/rooms/:code/settings", private("/api/rooms/:code/settings", s.handleUpdateSettings))
	router.POST("/api/rooms/:code/start", private("/api/rooms/:code/start", s.handleStartGame))
	router.POST("/api/rooms/:code/voting", private("/api/rooms/:code/voting", s.handleStartVoting))
	router.POST("/api/rooms/:code/votes", private("/api/rooms/:code/votes", s.handleSubmitVote))
	router.POST("/api/rooms/:code/tally", private("/api/rooms/:code/tally", s.handleCountVotes))
	router.DELETE("/api/rooms/:code", private("/api/rooms/:code", s.handleEndGame))

	// The websocket upgrade hijacks the connection, so it skips the
	// latency middleware.
	router.GET("/api/rooms/:code/events", s.requireSession(s.handleEvents))

	router.Handler(http.MethodGet, "/metrics", s.metrics.Handler())
	router.GET("/healthz", public("/healthz", s.handleHealth))

	return router
}

func (s *Server) instrument(route string, h httprouter.Handle) httprouter.Handle {
	return middleware.Instrument(s.metrics, route, h)
}

func (s *Server) requireSession(h httprouter.Handle) httprouter.Handle {
	return middleware.RequireSession(s.tokens, h)
}
