// ABOUTME: REST snapshot endpoints: status, games, queue, leaderboard, archive
// ABOUTME: Control endpoints for exhibitions and the royale simulator

package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cyberdreadx/the-crucible/internal/game"
	"github.com/cyberdreadx/the-crucible/internal/royale"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("encoding response failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// handleStatus summarizes the whole arena in one response.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"agents_connected": s.matchmaker.AgentCount(),
		"queue":            s.matchmaker.QueueStatus(),
		"live_games":       len(s.matchmaker.LiveSessions()),
		"players_ranked":   s.scores.Size(),
		"royale_active":    s.royale.Active(),
		"uptime":           time.Since(s.startedAt).Round(time.Second).String(),
	})
}

// handleGames lists the playable variants.
func (s *Server) handleGames(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"games": game.Catalog()})
}

// handleLiveGames lists sessions in play, including recently finished
// ones still inside the cleanup window.
func (s *Server) handleLiveGames(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"games": s.matchmaker.LiveSessions()})
}

// handleQueueStatus reports the waiting line.
func (s *Server) handleQueueStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.matchmaker.QueueStatus())
}

// handleLeaderboard serves the top players. ?limit= caps the list,
// default 10.
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries := s.scores.TopN(limit)
	out := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		out = append(out, map[string]any{
			"name":     e.Name,
			"wins":     e.Wins,
			"losses":   e.Losses,
			"games":    e.Games,
			"win_rate": e.WinRate(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"leaderboard": out})
}

// handleRecentMatches reads the archive, newest first.
func (s *Server) handleRecentMatches(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	matches, err := s.archive.RecentMatches(r.Context(), limit)
	if err != nil {
		s.logger.Error("reading archive failed", "error", err)
		writeError(w, http.StatusInternalServerError, "archive unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"matches": matches})
}

// handleExhibition launches a bot match: POST /api/exhibition/{variant}.
func (s *Server) handleExhibition(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	variant := game.Variant(strings.TrimPrefix(r.URL.Path, "/api/exhibition/"))
	if !game.Valid(variant) {
		writeError(w, http.StatusBadRequest, "unknown game variant")
		return
	}

	// Exhibitions run in the background; spectators watch the frames.
	go func() {
		if _, err := s.exhibitions.Play(context.Background(), variant); err != nil {
			s.logger.Warn("exhibition failed", "game", variant, "error", err)
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]any{
		"started": true,
		"game":    string(variant),
	})
}

// handleRoyaleStart seeds a royale with the posted tribute names, or the
// current leaderboard when none are given.
func (s *Server) handleRoyaleStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var body struct {
		Tributes []string `json:"tributes"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	names := body.Tributes
	if len(names) == 0 {
		for _, e := range s.scores.TopN(0) {
			names = append(names, e.Name)
		}
	}

	if err := s.royale.Start(names); err != nil {
		switch err {
		case royale.ErrAlreadyRunning:
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"started": true, "tributes": len(names)})
}

// handleRoyaleStop halts the current royale.
func (s *Server) handleRoyaleStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	s.royale.Stop()
	writeJSON(w, http.StatusOK, map[string]any{"stopped": true})
}

// handleRoyaleStatus returns the tribute board.
func (s *Server) handleRoyaleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.royale.Snapshot())
}
