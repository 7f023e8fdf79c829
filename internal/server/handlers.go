package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/fmarinoa/el-impostor-game/internal/game"
	"github.com/fmarinoa/el-impostor-game/internal/middleware"
	"github.com/fmarinoa/el-impostor-game/internal/models"
	"github.com/fmarinoa/el-impostor-game/internal/service"
	"github.com/fmarinoa/el-impostor-game/internal/storage"
)

const maxBodyBytes = 1 << 20

// roomView is the JSON shape of a room. Phrases are only revealed to
// non-impostors through the phrase field, never as a full list.
type roomView struct {
	ID                 string            `json:"id"`
	Code               string            `json:"code"`
	HostName           string            `json:"host_name"`
	Status             models.RoomStatus `json:"status"`
	CurrentPhraseIndex int               `json:"current_phrase_index"`
	CurrentRound       int               `json:"current_round"`
	PhraseCount        int               `json:"phrase_count"`
	MinPlayers         int               `json:"min_players"`
	MaxPlayers         int               `json:"max_players"`
}

// playerView is the JSON shape of a player. The impostor flag is only
// included for the requesting player themselves.
type playerView struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	IsHost       bool   `json:"is_host"`
	IsEliminated bool   `json:"is_eliminated"`
	IsImpostor   *bool  `json:"is_impostor,omitempty"`
}

func viewRoom(room *models.Room) roomView {
	return roomView{
		ID:                 room.ID,
		Code:               room.Code,
		HostName:           room.HostName,
		Status:             room.Status,
		CurrentPhraseIndex: room.CurrentPhraseIndex,
		CurrentRound:       room.CurrentRound,
		PhraseCount:        len(room.Phrases),
		MinPlayers:         room.MinPlayers,
		MaxPlayers:         room.MaxPlayers,
	}
}

func viewPlayers(players []models.Player, selfID string) []playerView {
	views := make([]playerView, 0, len(players))
	for _, p := range players {
		v := playerView{
			ID:           p.ID,
			Name:         p.Name,
			IsHost:       p.IsHost,
			IsEliminated: p.IsEliminated,
		}
		if p.ID == selfID {
			impostor := p.IsImpostor
			v.IsImpostor = &impostor
		}
		views = append(views, v)
	}
	return views
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError maps service and storage errors onto HTTP statuses. Validation
// failures are non-fatal notices; anything unexpected becomes a generic 500.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, service.ErrRoomNotFound),
		errors.Is(err, service.ErrPlayerNotFound):
		status, message = http.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrNameRequired),
		errors.Is(err, service.ErrCodeRequired),
		errors.Is(err, service.ErrPhrasesRequired),
		errors.Is(err, service.ErrPlayerCount),
		errors.Is(err, service.ErrPlayerBounds),
		errors.Is(err, service.ErrSelfVote),
		errors.Is(err, service.ErrInvalidTarget):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrNotHost),
		errors.Is(err, service.ErrEliminated):
		status, message = http.StatusForbidden, err.Error()
	case errors.Is(err, service.ErrWrongPhase),
		errors.Is(err, storage.ErrConflict),
		errors.Is(err, storage.ErrDuplicateVote),
		errors.Is(err, storage.ErrDuplicateName):
		status, message = http.StatusConflict, err.Error()
	default:
		slog.Error("Request failed with internal error", "error", err)
	}

	writeJSON(w, status, map[string]string{"error": message})
}

func decodeBody(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return err
	}
	return json.Unmarshal(body, dst)
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	result, err := s.rooms.CreateRoom(r.Context(), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"room":   viewRoom(result.Room),
		"player": viewPlayers([]models.Player{*result.Player}, result.Player.ID)[0],
		"token":  result.Token,
	})
}

func (s *Server) handleJoinRoom(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	result, err := s.rooms.JoinRoom(r.Context(), p.ByName("code"), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"room":   viewRoom(result.Room),
		"player": viewPlayers([]models.Player{*result.Player}, result.Player.ID)[0],
		"token":  result.Token,
	})
}

// handleSnapshot returns the room and player list. With a valid session
// token the response also carries the caller's own role and, for
// non-impostors, the current phrase.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	room, players, err := s.rooms.Snapshot(r.Context(), p.ByName("code"))
	if err != nil {
		writeError(w, err)
		return
	}

	selfID := ""
	if token := middleware.BearerToken(r); token != "" {
		if claims, err := s.tokens.Validate(token); err == nil && claims.RoomID == room.ID {
			selfID = claims.PlayerID
		}
	}

	body := map[string]any{
		"room":    viewRoom(room),
		"players": viewPlayers(players, selfID),
	}

	// Reveal the phrase only to identified non-impostors during play.
	if selfID != "" && room.Status == models.StatusPlaying {
		for _, pl := range players {
			if pl.ID == selfID && !pl.IsImpostor {
				body["phrase"] = room.CurrentPhrase()
			}
		}
	}

	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	sess, _ := middleware.SessionFrom(r.Context())

	var req struct {
		MinPlayers int `json:"min_players"`
		MaxPlayers int `json:"max_players"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	room, err := s.rooms.UpdateSettings(r.Context(), sess, req.MinPlayers, req.MaxPlayers)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"room": viewRoom(room)})
}

func (s *Server) handleStartGame(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	sess, _ := middleware.SessionFrom(r.Context())

	var req struct {
		Phrases []string `json:"phrases"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	room, err := s.rooms.StartGame(r.Context(), sess, req.Phrases)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"room": viewRoom(room)})
}

func (s *Server) handleStartVoting(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	sess, _ := middleware.SessionFrom(r.Context())

	room, err := s.rooms.StartVoting(r.Context(), sess)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"room": viewRoom(room)})
}

func (s *Server) handleSubmitVote(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	sess, _ := middleware.SessionFrom(r.Context())

	var req struct {
		VotedForID string `json:"voted_for_id"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	if err := s.rooms.SubmitVote(r.Context(), sess, req.VotedForID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "vote recorded"})
}

func (s *Server) handleCountVotes(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	sess, _ := middleware.SessionFrom(r.Context())

	result, err := s.rooms.CountVotes(r.Context(), sess)
	if err != nil {
		writeError(w, err)
		return
	}

	if result.Outcome.Kind == game.OutcomeWaiting {
		writeJSON(w, http.StatusAccepted, map[string]any{
			"outcome": result.Outcome.Kind,
			"room":    viewRoom(result.Room),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"outcome":   result.Outcome.Kind,
		"target_id": result.Outcome.TargetID,
		"counts":    result.Outcome.Counts,
		"room":      viewRoom(result.Room),
	})
}

func (s *Server) handleEndGame(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	sess, _ := middleware.SessionFrom(r.Context())

	if err := s.rooms.EndGame(r.Context(), sess); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "room deleted"})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
