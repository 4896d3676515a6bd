// ABOUTME: Server orchestrator wiring matchmaker, hub, ledger, archive, royale
// ABOUTME: Manages the HTTP listener (TCP or tsnet) and graceful shutdown

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"tailscale.com/tsnet"

	"github.com/cyberdreadx/the-crucible/internal/arena"
	"github.com/cyberdreadx/the-crucible/internal/config"
	"github.com/cyberdreadx/the-crucible/internal/hub"
	"github.com/cyberdreadx/the-crucible/internal/ledger"
	"github.com/cyberdreadx/the-crucible/internal/royale"
	"github.com/cyberdreadx/the-crucible/internal/sim"
	"github.com/cyberdreadx/the-crucible/internal/store"
)

// exhibitionPace is the delay between bot moves so spectators can follow.
const exhibitionPace = 300 * time.Millisecond

// Server hosts the arena: agent and spectator websockets, the REST
// snapshots, protocol docs, and the background loops.
type Server struct {
	cfg         *config.Config
	matchmaker  *arena.Matchmaker
	hub         *hub.Hub
	scores      *ledger.Ledger
	archive     store.Store
	royale      *royale.Simulator
	exhibitions *sim.Runner
	httpServer  *http.Server
	tsnetServer *tsnet.Server
	startedAt   time.Time
	logger      *slog.Logger
}

// New creates a fully wired server from configuration.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	archive, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("initializing match archive: %w", err)
	}

	h := hub.New(logger)
	scores := ledger.New(logger)
	mm := arena.New(arena.Config{
		HeartbeatTimeout: cfg.Arena.HeartbeatTimeout,
		WatchdogInterval: cfg.Arena.WatchdogInterval,
		CleanupDelay:     cfg.Arena.CleanupDelay,
		Variants:         cfg.GameVariants(),
	}, h, scores, archive, logger)

	roy := royale.New(h, logger)
	mm.SetDamageSink(roy.ApplyDamageByName)

	s := &Server{
		cfg:         cfg,
		matchmaker:  mm,
		hub:         h,
		scores:      scores,
		archive:     archive,
		royale:      roy,
		exhibitions: sim.NewRunner(h, exhibitionPace, logger),
		startedAt:   time.Now(),
		logger:      logger.With("component", "server"),
	}

	s.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// routes builds the full HTTP surface.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/ws/play", s.handleAgentWS)
	mux.HandleFunc("/ws/spectate", s.handleSpectatorWS)

	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/games", s.handleGames)
	mux.HandleFunc("/api/live-games", s.handleLiveGames)
	mux.HandleFunc("/api/queue-status", s.handleQueueStatus)
	mux.HandleFunc("/api/leaderboard", s.handleLeaderboard)
	mux.HandleFunc("/api/matches/recent", s.handleRecentMatches)
	mux.HandleFunc("/api/exhibition/", s.handleExhibition)
	mux.HandleFunc("/api/royale/start", s.handleRoyaleStart)
	mux.HandleFunc("/api/royale/stop", s.handleRoyaleStop)
	mux.HandleFunc("/api/royale", s.handleRoyaleStatus)

	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/skill.md", s.handleSkillDoc)
	mux.HandleFunc("/heartbeat.md", s.handleHeartbeatDoc)

	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/health/ready", s.handleReady)

	return mux
}

// Run starts the server and blocks until the context is canceled.
// Returns nil on graceful shutdown, or an error if the listener fails.
func (s *Server) Run(ctx context.Context) error {
	ln, err := s.setupListener(ctx)
	if err != nil {
		return err
	}

	watchCtx, cancelWatch := context.WithCancel(ctx)
	defer cancelWatch()
	go s.matchmaker.Run(watchCtx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	var serverErr error
	select {
	case <-ctx.Done():
		s.logger.Info("context canceled, initiating shutdown")
	case serverErr = <-errCh:
		s.logger.Error("server error", "error", serverErr)
	}

	shutdownErr := s.gracefulShutdown()
	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// gracefulShutdown performs shutdown with a fresh context and timeout.
// Uses context.Background() intentionally since the original context is
// already canceled.
func (s *Server) gracefulShutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.Shutdown(ctx)
}

// Shutdown stops everything in dependency order: listener first, then
// connections, then the background loops and the archive.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down")

	var errs []error
	if err := s.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("HTTP shutdown: %w", err))
	}

	s.matchmaker.Close()
	s.royale.Stop()
	s.hub.Close()

	if s.tsnetServer != nil {
		if err := s.tsnetServer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("tailscale shutdown: %w", err))
		}
	}
	if err := s.archive.Close(); err != nil {
		errs = append(errs, fmt.Errorf("archive close: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}
	return nil
}

// setupListener creates the listener based on configuration.
func (s *Server) setupListener(ctx context.Context) (net.Listener, error) {
	if s.cfg.Tailscale.Enabled {
		return s.setupTailscaleListener(ctx)
	}
	ln, err := net.Listen("tcp", s.cfg.Server.HTTPAddr)
	if err != nil {
		return nil, fmt.Errorf("listening on HTTP address: %w", err)
	}
	return ln, nil
}

// setupTailscaleListener starts a tsnet node and listens on its port 80.
func (s *Server) setupTailscaleListener(ctx context.Context) (net.Listener, error) {
	tsCfg := s.cfg.Tailscale

	stateDir, err := resolveTailscaleStateDir(tsCfg.StateDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(stateDir, 0700); err != nil {
		return nil, fmt.Errorf("creating tailscale state dir: %w", err)
	}

	authKey, err := resolveTailscaleAuthKey(tsCfg.AuthKey)
	if err != nil {
		return nil, err
	}

	s.tsnetServer = &tsnet.Server{
		Hostname:  tsCfg.Hostname,
		Dir:       stateDir,
		Ephemeral: tsCfg.Ephemeral,
		AuthKey:   authKey,
	}

	s.logger.Info("starting tailscale node",
		"hostname", tsCfg.Hostname,
		"state_dir", stateDir,
		"ephemeral", tsCfg.Ephemeral)
	status, err := s.tsnetServer.Up(ctx)
	if err != nil {
		_ = s.tsnetServer.Close()
		return nil, fmt.Errorf("starting tailscale: %w", err)
	}
	if len(status.TailscaleIPs) > 0 {
		s.logger.Info("tailscale node ready",
			"hostname", tsCfg.Hostname,
			"tailscale_ip", status.TailscaleIPs[0].String())
	}

	ln, err := s.tsnetServer.Listen("tcp", ":80")
	if err != nil {
		_ = s.tsnetServer.Close()
		return nil, fmt.Errorf("listening on tailscale port: %w", err)
	}
	return ln, nil
}

// resolveTailscaleStateDir returns the state directory, using default if not configured.
func resolveTailscaleStateDir(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory for tailscale state (set tailscale.state_dir explicitly): %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "the-crucible", "tailscale"), nil
}

// resolveTailscaleAuthKey returns the auth key from config or environment.
func resolveTailscaleAuthKey(configured string) (string, error) {
	authKey := configured
	if authKey == "" {
		authKey = os.Getenv("TS_AUTHKEY")
	}
	if authKey == "" {
		return "", errors.New("tailscale auth key required: set auth_key in config or TS_AUTHKEY environment variable")
	}
	return authKey, nil
}

// handleHealth returns 200 OK if the server is alive.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleReady returns 200 OK once the server is accepting agents.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "ready (%d agents)", s.matchmaker.AgentCount())
}
