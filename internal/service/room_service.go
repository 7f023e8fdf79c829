// Package service implements the room lifecycle: creating and joining rooms,
// starting games, collecting ballots and resolving rounds. All game-state
// authority lives here; clients only see snapshots and change events.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fmarinoa/el-impostor-game/internal/auth"
	"github.com/fmarinoa/el-impostor-game/internal/events"
	"github.com/fmarinoa/el-impostor-game/internal/game"
	"github.com/fmarinoa/el-impostor-game/internal/metrics"
	"github.com/fmarinoa/el-impostor-game/internal/models"
	"github.com/fmarinoa/el-impostor-game/internal/storage"
)

const (
	defaultMinPlayers = 3
	defaultMaxPlayers = 10

	// absolute bounds the host may configure within
	lowestMinPlayers  = 2
	highestMaxPlayers = 20

	// codeAttempts bounds retries when a generated join code collides.
	codeAttempts = 5
)

// RoomService orchestrates the game state machine over the store, publishing
// a change event for every mutation.
type RoomService struct {
	store   storage.Store
	hub     *events.Hub
	tokens  *auth.JWTManager
	metrics *metrics.Metrics
}

// NewRoomService creates a RoomService with the given collaborators.
func NewRoomService(store storage.Store, hub *events.Hub, tokens *auth.JWTManager, m *metrics.Metrics) *RoomService {
	return &RoomService{store: store, hub: hub, tokens: tokens, metrics: m}
}

// JoinResult is returned by CreateRoom and JoinRoom.
type JoinResult struct {
	Room   *models.Room
	Player *models.Player
	Token  string
}

// TallyResult is returned by CountVotes.
type TallyResult struct {
	Outcome game.Outcome
	Room    *models.Room
}

// CreateRoom creates a lobby with the given player as host and returns a
// session token for them.
func (s *RoomService) CreateRoom(ctx context.Context, hostName string) (*JoinResult, error) {
	hostName = strings.TrimSpace(hostName)
	if hostName == "" {
		return nil, ErrNameRequired
	}

	slog.Info("CreateRoom request received", "host_name", hostName)

	var room *models.Room
	for attempt := 0; ; attempt++ {
		room = &models.Room{
			Code:       game.NewRoomCode(),
			HostName:   hostName,
			Status:     models.StatusLobby,
			MinPlayers: defaultMinPlayers,
			MaxPlayers: defaultMaxPlayers,
		}
		err := s.store.CreateRoom(ctx, room)
		if err == nil {
			break
		}
		if errors.Is(err, storage.ErrDuplicateCode) && attempt < codeAttempts {
			continue
		}
		slog.Error("CreateRoom failed", "error", err)
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	host := &models.Player{RoomID: room.ID, Name: hostName, IsHost: true}
	if err := s.store.CreatePlayer(ctx, host); err != nil {
		slog.Error("CreateRoom failed to create host player", "room_id", room.ID, "error", err)
		return nil, fmt.Errorf("failed to create host player: %w", err)
	}

	token, err := s.issueSession(ctx, host, room)
	if err != nil {
		return nil, err
	}

	s.metrics.RoomsCreated.Inc()
	s.metrics.PlayersJoined.Inc()
	s.publish(events.CollectionRooms, events.EventInsert, room.Code, room, nil)
	s.publish(events.CollectionPlayers, events.EventInsert, room.Code, host, nil)

	slog.Info("Room created", "room_id", room.ID, "code", room.Code, "host", hostName)
	return &JoinResult{Room: room, Player: host, Token: token}, nil
}

// JoinRoom adds a player to a lobby by join code.
func (s *RoomService) JoinRoom(ctx context.Context, code, name string) (*JoinResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrCodeRequired
	}

	slog.Info("JoinRoom request received", "code", code, "name", name)

	room, err := s.getRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	if room.Status != models.StatusLobby {
		return nil, ErrWrongPhase
	}

	player := &models.Player{RoomID: room.ID, Name: name}
	if err := s.store.CreatePlayer(ctx, player); err != nil {
		if errors.Is(err, storage.ErrDuplicateName) {
			return nil, err
		}
		slog.Error("JoinRoom failed", "room_id", room.ID, "error", err)
		return nil, fmt.Errorf("failed to create player: %w", err)
	}

	token, err := s.issueSession(ctx, player, room)
	if err != nil {
		return nil, err
	}

	s.metrics.PlayersJoined.Inc()
	s.publish(events.CollectionPlayers, events.EventInsert, room.Code, player, nil)

	slog.Info("Player joined", "room_id", room.ID, "player_id", player.ID, "name", name)
	return &JoinResult{Room: room, Player: player, Token: token}, nil
}

// Snapshot returns the room and its players for an initial fetch or a
// re-fetch after reconnect.
func (s *RoomService) Snapshot(ctx context.Context, code string) (*models.Room, []models.Player, error) {
	room, err := s.getRoom(ctx, code)
	if err != nil {
		return nil, nil, err
	}
	players, err := s.store.ListPlayers(ctx, room.ID)
	if err != nil {
		slog.Error("Snapshot failed to list players", "room_id", room.ID, "error", err)
		return nil, nil, fmt.Errorf("failed to list players: %w", err)
	}
	return room, players, nil
}

// UpdateSettings lets the host adjust player bounds while in the lobby.
func (s *RoomService) UpdateSettings(ctx context.Context, sess Session, minPlayers, maxPlayers int) (*models.Room, error) {
	room, _, err := s.requireHost(ctx, sess)
	if err != nil {
		return nil, err
	}
	if room.Status != models.StatusLobby {
		return nil, ErrWrongPhase
	}
	if minPlayers < lowestMinPlayers || maxPlayers > highestMaxPlayers || minPlayers > maxPlayers {
		return nil, ErrPlayerBounds
	}

	room.MinPlayers = minPlayers
	room.MaxPlayers = maxPlayers
	if err := s.store.UpdateRoom(ctx, room, models.StatusLobby); err != nil {
		slog.Error("UpdateSettings failed", "room_id", room.ID, "error", err)
		return nil, err
	}

	s.publish(events.CollectionRooms, events.EventUpdate, room.Code, room, nil)
	slog.Info("Room settings updated", "room_id", room.ID, "min_players", minPlayers, "max_players", maxPlayers)
	return room, nil
}

// StartGame shuffles the phrase list, assigns one impostor and moves the room
// from lobby to playing. Host only.
func (s *RoomService) StartGame(ctx context.Context, sess Session, phrases []string) (*models.Room, error) {
	room, _, err := s.requireHost(ctx, sess)
	if err != nil {
		return nil, err
	}
	if room.Status != models.StatusLobby {
		return nil, ErrWrongPhase
	}

	cleaned := make([]string, 0, len(phrases))
	for _, p := range phrases {
		if p = strings.TrimSpace(p); p != "" {
			cleaned = append(cleaned, p)
		}
	}
	if len(cleaned) == 0 {
		return nil, ErrPhrasesRequired
	}

	players, err := s.store.ListPlayers(ctx, room.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	if len(players) < room.MinPlayers || len(players) > room.MaxPlayers {
		return nil, ErrPlayerCount
	}

	room.Phrases = game.ShufflePhrases(cleaned)
	room.CurrentPhraseIndex = 0
	room.CurrentRound = 1
	room.Status = models.StatusPlaying

	// Claim the transition first; the losing writer of a race stops here.
	if err := s.store.UpdateRoom(ctx, room, models.StatusLobby); err != nil {
		slog.Warn("StartGame lost transition", "room_id", room.ID, "error", err)
		return nil, err
	}

	impostors := game.PickImpostors(players, 1)
	if err := s.store.SetImpostors(ctx, room.ID, impostors); err != nil {
		slog.Error("StartGame failed to assign impostor", "room_id", room.ID, "error", err)
		return nil, fmt.Errorf("failed to assign impostor: %w", err)
	}

	s.publish(events.CollectionRooms, events.EventUpdate, room.Code, room, nil)
	s.publish(events.CollectionPlayers, events.EventUpdate, room.Code, nil, nil)

	slog.Info("Game started",
		"room_id", room.ID,
		"players", len(players),
		"phrases", len(room.Phrases),
	)
	return room, nil
}

// StartVoting freezes phrase reveal and opens the ballot. Host only.
func (s *RoomService) StartVoting(ctx context.Context, sess Session) (*models.Room, error) {
	room, _, err := s.requireHost(ctx, sess)
	if err != nil {
		return nil, err
	}
	if room.Status != models.StatusPlaying {
		return nil, ErrWrongPhase
	}

	room.Status = models.StatusVoting
	if err := s.store.UpdateRoom(ctx, room, models.StatusPlaying); err != nil {
		slog.Warn("StartVoting lost transition", "room_id", room.ID, "error", err)
		return nil, err
	}

	s.publish(events.CollectionRooms, events.EventUpdate, room.Code, room, nil)
	slog.Info("Voting opened", "room_id", room.ID, "round", room.CurrentRound)
	return room, nil
}

// SubmitVote records one ballot entry for the current round. Any active
// player may vote once per round for another active player.
func (s *RoomService) SubmitVote(ctx context.Context, sess Session, targetID string) error {
	room, err := s.getRoom(ctx, sess.RoomCode)
	if err != nil {
		return err
	}
	if room.Status != models.StatusVoting {
		return ErrWrongPhase
	}

	voter, err := s.store.GetPlayer(ctx, sess.PlayerID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrPlayerNotFound
		}
		return fmt.Errorf("failed to load voter: %w", err)
	}
	if voter.RoomID != room.ID {
		return ErrPlayerNotFound
	}
	if voter.IsEliminated {
		return ErrEliminated
	}
	if targetID == voter.ID {
		return ErrSelfVote
	}

	target, err := s.store.GetPlayer(ctx, targetID)
	if err != nil || target.RoomID != room.ID || target.IsEliminated {
		return ErrInvalidTarget
	}

	vote := &models.Vote{
		RoomID:      room.ID,
		RoundNumber: room.CurrentRound,
		VoterID:     voter.ID,
		VotedForID:  target.ID,
	}
	if err := s.store.CreateVote(ctx, vote); err != nil {
		if errors.Is(err, storage.ErrDuplicateVote) {
			return err
		}
		slog.Error("SubmitVote failed", "room_id", room.ID, "error", err)
		return fmt.Errorf("failed to record vote: %w", err)
	}

	s.metrics.VotesCast.Inc()
	s.publish(events.CollectionVotes, events.EventInsert, room.Code, vote, nil)

	slog.Info("Vote recorded",
		"room_id", room.ID,
		"round", room.CurrentRound,
		"voter_id", voter.ID,
	)
	return nil
}

// CountVotes tallies the current round's ballot and applies the outcome.
// Host only. If not every active player has voted yet, the outcome is
// OutcomeWaiting and nothing changes.
func (s *RoomService) CountVotes(ctx context.Context, sess Session) (*TallyResult, error) {
	room, _, err := s.requireHost(ctx, sess)
	if err != nil {
		return nil, err
	}
	if room.Status != models.StatusVoting {
		return nil, ErrWrongPhase
	}

	players, err := s.store.ListPlayers(ctx, room.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	votes, err := s.store.ListVotes(ctx, room.ID, room.CurrentRound)
	if err != nil {
		return nil, fmt.Errorf("failed to list votes: %w", err)
	}

	outcome, err := game.ResolveBallot(models.ActivePlayers(players), votes)
	if err != nil {
		slog.Error("CountVotes failed to resolve ballot", "room_id", room.ID, "error", err)
		return nil, fmt.Errorf("failed to resolve ballot: %w", err)
	}

	switch outcome.Kind {
	case game.OutcomeWaiting:
		slog.Info("Tally waiting on votes",
			"room_id", room.ID,
			"round", room.CurrentRound,
			"votes", len(votes),
		)
		return &TallyResult{Outcome: outcome, Room: room}, nil

	case game.OutcomeImpostorCaught:
		if err := s.advancePhrase(ctx, room, players); err != nil {
			return nil, err
		}

	case game.OutcomeEliminated:
		room.CurrentRound++
		room.Status = models.StatusPlaying
		if err := s.store.UpdateRoom(ctx, room, models.StatusVoting); err != nil {
			slog.Warn("CountVotes lost transition", "room_id", room.ID, "error", err)
			return nil, err
		}
		if err := s.store.EliminatePlayer(ctx, outcome.TargetID); err != nil {
			return nil, fmt.Errorf("failed to eliminate player: %w", err)
		}
		s.publish(events.CollectionPlayers, events.EventUpdate, room.Code, nil, nil)
		s.publish(events.CollectionRooms, events.EventUpdate, room.Code, room, nil)

	case game.OutcomeImpostorsWin:
		room.Status = models.StatusFinished
		if err := s.store.UpdateRoom(ctx, room, models.StatusVoting); err != nil {
			slog.Warn("CountVotes lost transition", "room_id", room.ID, "error", err)
			return nil, err
		}
		if err := s.store.EliminatePlayer(ctx, outcome.TargetID); err != nil {
			return nil, fmt.Errorf("failed to eliminate player: %w", err)
		}
		s.metrics.GamesFinished.Inc()
		s.publish(events.CollectionPlayers, events.EventUpdate, room.Code, nil, nil)
		s.publish(events.CollectionRooms, events.EventUpdate, room.Code, room, nil)
	}

	slog.Info("Tally applied",
		"room_id", room.ID,
		"outcome", outcome.Kind,
		"target_id", outcome.TargetID,
		"status", room.Status,
	)
	return &TallyResult{Outcome: outcome, Room: room}, nil
}

// EndGame deletes the room and everything it owns. Host only.
func (s *RoomService) EndGame(ctx context.Context, sess Session) error {
	room, _, err := s.requireHost(ctx, sess)
	if err != nil {
		return err
	}

	if err := s.store.DeleteRoom(ctx, room.ID); err != nil {
		slog.Error("EndGame failed", "room_id", room.ID, "error", err)
		return fmt.Errorf("failed to delete room: %w", err)
	}

	s.publish(events.CollectionRooms, events.EventDelete, room.Code, nil, room)
	slog.Info("Room deleted", "room_id", room.ID, "code", room.Code)
	return nil
}

// advancePhrase moves the room to the next phrase, or finishes the game when
// the list is exhausted. Impostors are resampled count-preserving from the
// players still in the game; eliminations carry over.
func (s *RoomService) advancePhrase(ctx context.Context, room *models.Room, players []models.Player) error {
	nextIndex := room.CurrentPhraseIndex + 1

	if nextIndex >= len(room.Phrases) {
		room.Status = models.StatusFinished
		if err := s.store.UpdateRoom(ctx, room, models.StatusVoting); err != nil {
			slog.Warn("advancePhrase lost transition", "room_id", room.ID, "error", err)
			return err
		}
		s.metrics.GamesFinished.Inc()
		s.publish(events.CollectionRooms, events.EventUpdate, room.Code, room, nil)
		slog.Info("Game finished", "room_id", room.ID, "phrases_played", len(room.Phrases))
		return nil
	}

	room.CurrentPhraseIndex = nextIndex
	room.CurrentRound++
	room.Status = models.StatusPlaying
	if err := s.store.UpdateRoom(ctx, room, models.StatusVoting); err != nil {
		slog.Warn("advancePhrase lost transition", "room_id", room.ID, "error", err)
		return err
	}

	active := models.ActivePlayers(players)
	count := game.CountImpostors(players)
	if count < 1 {
		count = 1
	}
	impostors := game.PickImpostors(active, count)
	if err := s.store.SetImpostors(ctx, room.ID, impostors); err != nil {
		return fmt.Errorf("failed to reassign impostors: %w", err)
	}

	s.publish(events.CollectionRooms, events.EventUpdate, room.Code, room, nil)
	s.publish(events.CollectionPlayers, events.EventUpdate, room.Code, nil, nil)
	slog.Info("Phrase advanced", "room_id", room.ID, "phrase_index", nextIndex, "round", room.CurrentRound)
	return nil
}

// getRoom fetches a room by code, translating storage.ErrNotFound.
func (s *RoomService) getRoom(ctx context.Context, code string) (*models.Room, error) {
	room, err := s.store.GetRoomByCode(ctx, code)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	return room, nil
}

// requireHost loads the session's room and player and verifies the player is
// the room's host. The flag is checked against the store, never the token.
func (s *RoomService) requireHost(ctx context.Context, sess Session) (*models.Room, *models.Player, error) {
	room, err := s.getRoom(ctx, sess.RoomCode)
	if err != nil {
		return nil, nil, err
	}
	player, err := s.store.GetPlayer(ctx, sess.PlayerID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, ErrPlayerNotFound
		}
		return nil, nil, fmt.Errorf("failed to load player: %w", err)
	}
	if player.RoomID != room.ID || !player.IsHost {
		return nil, nil, ErrNotHost
	}
	return room, player, nil
}

// issueSession persists an identity record and signs a token for it.
func (s *RoomService) issueSession(ctx context.Context, player *models.Player, room *models.Room) (string, error) {
	session := &models.Session{PlayerID: player.ID, RoomID: room.ID, CreatedAt: time.Now().Unix()}
	if err := s.store.CreateSession(ctx, session); err != nil {
		slog.Error("Failed to persist session", "player_id", player.ID, "error", err)
		return "", fmt.Errorf("failed to persist session: %w", err)
	}

	token, err := s.tokens.Generate(player, room)
	if err != nil {
		slog.Error("Failed to sign session token", "player_id", player.ID, "error", err)
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return token, nil
}

func (s *RoomService) publish(collection string, typ events.EventType, roomCode string, newRow, oldRow any) {
	s.hub.Publish(events.Event{
		Collection: collection,
		Type:       typ,
		RoomCode:   roomCode,
		New:        newRow,
		Old:        oldRow,
	})
}
