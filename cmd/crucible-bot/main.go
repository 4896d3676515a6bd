// ABOUTME: Autoplaying arena agent for load testing and populating the ladder
// ABOUTME: Joins, queues, answers challenge frames, and requeues after each match

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/cyberdreadx/the-crucible/internal/game"
	"github.com/cyberdreadx/the-crucible/internal/sim"
)

const moveDelay = 100 * time.Millisecond

func main() {
	configPath := flag.String("config", "", "TOML config file path")
	serverURL := flag.String("url", "", "arena websocket URL (overrides config)")
	name := flag.String("name", "", "display name (overrides config)")
	matches := flag.Int("matches", -1, "matches to play before exiting, 0 for forever (overrides config)")
	flag.Parse()

	cfg := Default()
	if *configPath != "" {
		loaded, err := Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *serverURL != "" {
		cfg.Server.URL = *serverURL
	}
	if *name != "" {
		cfg.Bot.Name = *name
	}
	if *matches >= 0 {
		cfg.Bot.Matches = *matches
	}
	if cfg.Bot.Name == "" {
		cfg.Bot.Name = "bot-" + uuid.NewString()[:8]
	}

	logger := setupLogger(cfg.Logging.Level)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setupLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

// bot is one connected arena agent.
type bot struct {
	cfg    *Config
	logger *slog.Logger

	mu sync.Mutex
	ws *websocket.Conn

	agentID string
	variant game.Variant
	player  *sim.BotPlayer
	played  int
}

func run(ctx context.Context, cfg *Config, logger *slog.Logger) error {
	b := &bot{cfg: cfg, logger: logger.With("bot", cfg.Bot.Name)}

	ws, _, err := websocket.DefaultDialer.DialContext(ctx, cfg.Server.URL, nil)
	if err != nil {
		return fmt.Errorf("dialing arena: %w", err)
	}
	b.ws = ws
	defer ws.Close()

	// Close the socket when the context ends so the read loop unblocks.
	go func() {
		<-ctx.Done()
		_ = ws.Close()
	}()

	if err := b.send(map[string]any{"type": "join", "name": cfg.Bot.Name}); err != nil {
		return fmt.Errorf("joining: %w", err)
	}

	interval, _ := cfg.heartbeatInterval()
	go b.heartbeatLoop(ctx, interval)

	if err := b.readLoop(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func (b *bot) send(frame map[string]any) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	_ = b.ws.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return b.ws.WriteJSON(frame)
}

func (b *bot) heartbeatLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := b.send(map[string]any{"type": "heartbeat"}); err != nil {
				return
			}
		}
	}
}

func (b *bot) readLoop(ctx context.Context) error {
	for {
		var frame map[string]any
		if err := b.ws.ReadJSON(&frame); err != nil {
			return fmt.Errorf("connection lost: %w", err)
		}
		if done, err := b.handle(frame); done || err != nil {
			return err
		}
	}
}

// handle processes one server frame. Returns done=true when the match
// quota is reached.
func (b *bot) handle(frame map[string]any) (bool, error) {
	switch frame["type"] {
	case "connected":
		b.agentID = str(frame["agent_id"])
		b.logger.Info("connected", "agent_id", b.agentID)
		return false, b.send(map[string]any{"type": "queue"})

	case "queued":
		b.logger.Info("waiting for opponent", "position", frame["position"])

	case "match_start":
		b.variant = game.Variant(str(frame["game"]))
		b.player = sim.NewBotPlayer(b.agentID, b.cfg.Bot.Name)
		b.logger.Info("match started",
			"game", frame["game"], "opponent", frame["opponent"])

	case "challenge":
		if turn, ok := frame["your_turn"].(bool); ok && !turn {
			return false, nil
		}
		if b.player == nil {
			return false, nil
		}
		time.Sleep(moveDelay)
		move := b.player.MoveFor(b.variant, normalizePrompt(frame))
		if move == "" {
			return false, nil
		}
		return false, b.send(map[string]any{"type": "move", "move": move})

	case "move_rejected":
		b.logger.Debug("move rejected")

	case "match_end":
		b.played++
		b.logger.Info("match over",
			"winner", frame["winner"], "played", b.played)
		b.player = nil
		if b.cfg.Bot.Matches > 0 && b.played >= b.cfg.Bot.Matches {
			return true, nil
		}
		return false, b.send(map[string]any{"type": "queue"})

	case "heartbeat_ack":

	case "error":
		b.logger.Warn("server error", "message", frame["message"])

	default:
		b.logger.Debug("unhandled frame", "type", frame["type"])
	}
	return false, nil
}

// normalizePrompt rebuilds the typed prompt values that JSON decoding
// flattens into []any, so the move picker sees what in-process callers see.
func normalizePrompt(frame map[string]any) map[string]any {
	prompt := make(map[string]any, len(frame))
	for k, v := range frame {
		prompt[k] = v
	}

	if raw, ok := prompt["board"].([]any); ok {
		board := make([][]string, 0, len(raw))
		rows := true
		for _, r := range raw {
			cells, ok := r.([]any)
			if !ok {
				rows = false
				break
			}
			row := make([]string, 0, len(cells))
			for _, c := range cells {
				row = append(row, str(c))
			}
			board = append(board, row)
		}
		if rows {
			prompt["board"] = board
		}
	}

	if raw, ok := prompt["hints"].([]any); ok {
		hints := make([]string, 0, len(raw))
		for _, h := range raw {
			hints = append(hints, str(h))
		}
		prompt["hints"] = hints
	}

	return prompt
}

func str(v any) string {
	s, _ := v.(string)
	return s
}
