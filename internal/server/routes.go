package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"wordgames-server/internal/database"
	"wordgames-server/internal/game"
)

func (s *Server) RegisterRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(requestLogger)
	r.Use(corsMiddleware)

	r.Get("/", s.HelloWorldHandler)
	r.Get("/health", s.healthHandler)
	r.Get("/websocket", s.websocketHandler)

	r.Route("/stats/{game}", func(r chi.Router) {
		r.Get("/leaderboard", s.leaderboardHandler)
		r.Get("/players/{player}", s.playerStatsHandler)
	})
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		log.Warn().Err(err).Msg("failed to write response")
	}
}

func (s *Server) HelloWorldHandler(w http.ResponseWriter, r *http.Request) {
	names := []string{}
	for _, k := range game.Kinds() {
		names = append(names, k.Name)
	}
	writeJSON(w, http.StatusOK, map[string]any{"service": "wordgames", "games": names})
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	health := database.Health(r.Context(), s.statsDriver, s.stats)
	health["games"] = strconv.Itoa(len(s.registry.Active()))
	status := http.StatusOK
	if health["status"] != "up" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, health)
}

func (s *Server) leaderboardHandler(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "game")
	if _, err := game.Lookup(name); err != nil {
		writeJSON(w, http.StatusNotFound, errorPayload(err.Error()))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	records, err := s.stats.Leaderboard(r.Context(), name, limit)
	if err != nil {
		log.Error().Err(err).Str("game", name).Msg("failed to load leaderboard")
		writeJSON(w, http.StatusInternalServerError, ErrorMessage{Message: game.UnexpectedErrorText})
		return
	}
	writeJSON(w, http.StatusOK, LeaderboardResponse{Game: name, Records: records})
}

func (s *Server) playerStatsHandler(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "game")
	if _, err := game.Lookup(name); err != nil {
		writeJSON(w, http.StatusNotFound, errorPayload(err.Error()))
		return
	}

	rec, err := s.stats.GetRecord(r.Context(), name, chi.URLParam(r, "player"))
	if err != nil {
		log.Error().Err(err).Str("game", name).Msg("failed to load player record")
		writeJSON(w, http.StatusInternalServerError, ErrorMessage{Message: game.UnexpectedErrorText})
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) websocketHandler(w http.ResponseWriter, r *http.Request) {
	socket, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		log.Warn().Err(err).Msg("failed to open websocket")
		return
	}
	defer socket.Close(websocket.StatusGoingAway, "Server closing")

	ctx := r.Context()

	connectionID := uuid.New().String()
	logger := log.With().Str("connection", connectionID).Logger()
	logger.Debug().Msg("new connection")

	s.connectionManager.AddConnection(connectionID, socket)
	defer func() {
		s.connectionManager.RemoveConnection(connectionID)
		s.rateLimiter.RemoveConnection(connectionID)
		s.connectionHealth.RemoveConnection(connectionID)
		logger.Debug().Msg("connection closed")
	}()

	for {
		msgType, data, err := socket.Read(ctx)
		if err != nil {
			logger.Debug().Err(err).Msg("read ended")
			return
		}
		s.connectionHealth.UpdateActivity(connectionID)

		if !s.rateLimiter.Allow(connectionID) {
			s.sendError(ctx, socket, "RATE_LIMITED: Too many messages, slow down")
			continue
		}
		if msgType != websocket.MessageText {
			continue
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.sendError(ctx, socket, "INVALID_JSON: Invalid JSON")
			continue
		}
		if err := ValidateMessageType(msg.Type); err != nil {
			s.sendError(ctx, socket, err.Error())
			continue
		}

		switch msg.Type {
		case "ping":
			s.sendMessage(ctx, socket, ServerMessage{Type: "pong", Payload: struct{}{}})
		case "join":
			s.handleJoin(ctx, socket, connectionID, msg.Payload)
		case "say":
			s.handleSay(ctx, socket, connectionID, msg.Payload)
		case "dm":
			s.handleDirect(ctx, socket, connectionID, msg.Payload)
		case "react":
			s.handleReact(ctx, socket, connectionID, msg.Payload)
		}
	}
}

func (s *Server) sendMessage(ctx context.Context, socket *websocket.Conn, msg ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Str("type", msg.Type).Msg("failed to marshal message")
		return
	}
	if err := socket.Write(ctx, websocket.MessageText, data); err != nil {
		log.Debug().Err(err).Str("type", msg.Type).Msg("failed to send message")
	}
}

// errorPayload splits "CODE: message" errors into their parts.
func errorPayload(text string) ErrorMessage {
	code, msg, found := strings.Cut(text, ": ")
	if !found || code != strings.ToUpper(code) || strings.Contains(code, " ") {
		return ErrorMessage{Message: text}
	}
	return ErrorMessage{Code: code, Message: msg}
}

func (s *Server) sendError(ctx context.Context, socket *websocket.Conn, text string) {
	s.sendMessage(ctx, socket, ServerMessage{Type: "error", Payload: errorPayload(text)})
}

func (s *Server) member(ctx context.Context, socket *websocket.Conn, connectionID string) (Member, bool) {
	m, ok := s.connectionManager.Member(connectionID)
	if !ok {
		s.sendError(ctx, socket, "NOT_JOINED: Join a channel first")
		return Member{}, false
	}
	s.sessionManager.Touch(m.Token)
	return m, true
}

func (s *Server) handleJoin(ctx context.Context, socket *websocket.Conn, connectionID string, payload json.RawMessage) {
	var req JoinRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		s.sendError(ctx, socket, "INVALID_PAYLOAD: Invalid join payload")
		return
	}

	var session SessionInfo
	if req.Token != "" {
		var err error
		if session, err = s.sessionManager.GetSession(req.Token); err != nil {
			s.sendError(ctx, socket, err.Error())
			return
		}
		s.sessionManager.Touch(session.Token)
	} else {
		username := strings.TrimSpace(req.Username)
		if err := ValidateUsername(username); err != nil {
			s.sendError(ctx, socket, err.Error())
			return
		}
		channel := NormalizeChannel(req.Channel)
		if err := ValidateChannel(channel); err != nil {
			s.sendError(ctx, socket, err.Error())
			return
		}
		if s.connectionManager.UsernameTaken(channel, username, "") {
			s.sendError(ctx, socket, fmt.Sprintf("USERNAME_TAKEN: %s is already in %s", username, channel))
			return
		}
		session = s.sessionManager.CreateSession(username, channel)
	}

	previous := s.connectionManager.Join(connectionID, Member{
		Token:    session.Token,
		Username: session.Username,
		Channel:  session.Channel,
	})
	if previous != "" {
		if old := s.connectionManager.GetConnection(previous); old != nil {
			s.sendMessage(context.Background(), old, ServerMessage{
				Type:    "disconnected_elsewhere",
				Payload: ErrorMessage{Message: "You connected on another device"},
			})
			old.Close(websocket.StatusNormalClosure, "Connected from another device")
		}
	}

	s.sendMessage(ctx, socket, ServerMessage{
		Type: "joined",
		Payload: JoinResponse{
			Token:    session.Token,
			Username: session.Username,
			Channel:  session.Channel,
			Members:  s.connectionManager.Members(session.Channel),
		},
	})
}

func (s *Server) handleSay(ctx context.Context, socket *websocket.Conn, connectionID string, payload json.RawMessage) {
	var req SayRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		s.sendError(ctx, socket, "INVALID_PAYLOAD: Invalid say payload")
		return
	}
	m, ok := s.member(ctx, socket, connectionID)
	if !ok {
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return
	}

	s.broadcast(m.Channel, ChatMessage{Channel: m.Channel, Author: m.Username, Text: text})

	if cmd, ok := ParseCommand(text); ok {
		if reply, handled := s.runCommand(ctx, m, cmd); handled {
			if reply != "" {
				s.broadcast(m.Channel, ChatMessage{Channel: m.Channel, Kind: string(game.KindNotice), Text: reply})
			}
			return
		}
	}

	if inst, ok := s.registry.InputTarget(game.FlagPlay, m.Channel); ok {
		inst.Play(m.Username, text)
	}
}

// directAuthor names a dm sender for the game in channel. Usernames are only
// unique within a channel, so senders from other channels carry their own.
func directAuthor(m Member, channel string) string {
	if m.Channel == channel {
		return m.Username
	}
	return m.Username + "@" + m.Channel
}

// handleDirect hands a private message to every game taking direct input.
func (s *Server) handleDirect(ctx context.Context, socket *websocket.Conn, connectionID string, payload json.RawMessage) {
	var req SayRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		s.sendError(ctx, socket, "INVALID_PAYLOAD: Invalid dm payload")
		return
	}
	m, ok := s.member(ctx, socket, connectionID)
	if !ok {
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return
	}

	for _, channel := range s.registry.Flagged(game.FlagDirect) {
		if inst, ok := s.registry.InputTarget(game.FlagDirect, channel); ok {
			inst.Play(directAuthor(m, channel), text)
		}
	}
}

func (s *Server) handleReact(ctx context.Context, socket *websocket.Conn, connectionID string, payload json.RawMessage) {
	var req ReactRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		s.sendError(ctx, socket, "INVALID_PAYLOAD: Invalid react payload")
		return
	}
	m, ok := s.member(ctx, socket, connectionID)
	if !ok {
		return
	}

	if inst, ok := s.registry.InputTarget(game.FlagVoting, m.Channel); ok {
		inst.Vote(m.Username, req.Marker)
	}
}

// broadcast posts a chat line to channel.
func (s *Server) broadcast(channel string, msg ChatMessage) {
	if err := s.connectionManager.Broadcast(context.Background(), channel, ServerMessage{Type: "message", Payload: msg}); err != nil {
		log.Debug().Err(err).Str("channel", channel).Msg("broadcast incomplete")
	}
}
