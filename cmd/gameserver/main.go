// Command gameserver runs the tick-driven world core: it wires the
// repositories and the economic engine, builds a server.World, and serves
// player connections over websocket while the tick scheduler and socket
// liveness checks run alongside it.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/tickrealm/core/internal/config"
	"github.com/tickrealm/core/internal/db"
	"github.com/tickrealm/core/internal/econ"
	"github.com/tickrealm/core/internal/model"
	"github.com/tickrealm/core/internal/server"
	"github.com/tickrealm/core/internal/transport"
)

const (
	defaultConfigPath   = "config/gameserver.yaml"
	spawnPointConfigKey = "spawnPoint"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig.String())
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("gameserver exited", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := defaultConfigPath
	if p := os.Getenv("TICKREALM_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))
	slog.Info("gameserver starting", "bind", cfg.BindAddress, "port", cfg.Port)

	database, err := db.New(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()

	if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("migrations applied")

	pool := database.Pool()
	users := db.NewUserRepository(pool)
	bans := db.NewBanRepository(pool)
	entities := db.NewEntityRepository(pool)
	settings := db.NewConfigRepository(pool)
	inventory := db.NewInventoryRepository(pool)
	bank := db.NewBankRepository(pool)

	econEngine := econ.NewEngine(pool, inventory, bank,
		cfg.DeadlockRetryDelaysMs, cfg.OuterRetryDelaysMs,
		time.Duration(cfg.DuelIdempotencyTTLSec)*time.Second)

	spawnPoint := loadSpawnPoint(ctx, settings)

	world := server.NewWorld(cfg, server.Dependencies{
		Users:      users,
		Bans:       bans,
		Entities:   entities,
		Settings:   settings,
		Econ:       econEngine,
		Terrain:    server.FlatTerrain{Height: spawnPoint.Y},
		SpawnPoint: spawnPoint,
		PIDSeed1:   0x9e3779b97f4a7c15,
		PIDSeed2:   0xbf58476d1ce4e5b9,
	})
	world.RegisterHandlers()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("tick scheduler starting", "period", cfg.TickPeriod)
		return world.Tick.Start(gctx)
	})

	g.Go(func() error {
		return runSocketLiveness(gctx, world, cfg)
	})

	g.Go(func() error {
		return runSaveLoop(gctx, world, cfg)
	})

	g.Go(func() error {
		return serveHTTP(gctx, world, cfg)
	})

	return g.Wait()
}

// runSocketLiveness drives the ping/pong eviction sweep on its own interval,
// independent of the tick scheduler (spec: connection liveness is a wall
// clock concern, not a game-tick one).
func runSocketLiveness(ctx context.Context, w *server.World, cfg config.Config) error {
	interval := time.Duration(cfg.WSPingIntervalSec) * time.Second
	if interval <= 0 {
		interval = 15 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			w.SocketMgr.Tick(now)
		}
	}
}

// runSaveLoop wakes on an interval separate from the tick scheduler,
// mirroring the teacher's periodic character-save loop; each wake only logs
// a debug line and writes nothing to the database.
func runSaveLoop(ctx context.Context, w *server.World, cfg config.Config) error {
	interval := time.Duration(cfg.SaveIntervalSec) * time.Second
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			slog.Debug("save tick", "tick", w.Tick.CurrentTick())
		}
	}
}

func serveHTTP(ctx context.Context, w *server.World, cfg config.Config) error {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(rw http.ResponseWriter, r *http.Request) {
		login := r.URL.Query().Get("login")
		password := r.URL.Query().Get("password")

		user, err := w.Authenticate(r.Context(), login, password)
		if err != nil {
			http.Error(rw, "unauthorized", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(rw, r, nil)
		if err != nil {
			slog.Warn("websocket upgrade failed", "err", err)
			return
		}

		socket := model.NewSocket(uuid.NewString(), user.ID, transport.NewWSSender(conn))
		w.AddSocket(socket)
		go readLoop(w, socket, conn)
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.BindAddress, cfg.Port),
		Handler: mux,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- fmt.Errorf("http server: %w", err)
			return
		}
		serveErr <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-serveErr:
		return err
	}
}

// readLoop dispatches packets from one connection until it errors or closes,
// then tears the socket out of every manager that tracked it.
func readLoop(w *server.World, socket *model.Socket, conn *websocket.Conn) {
	defer w.Disconnect(socket.ID, 0)
	for {
		env, err := transport.ReadEnvelope(conn)
		if err != nil {
			return
		}
		w.Router.Dispatch(socket, env.Name, env.Data)
	}
}

// loadSpawnPoint reads the persisted world spawn point, falling back to the
// origin when nothing has been configured yet.
func loadSpawnPoint(ctx context.Context, settings *db.ConfigRepository) model.Location {
	fallback := model.Location{X: 0, Y: 0, Z: 0, Heading: 0}

	raw, err := settings.Get(ctx, spawnPointConfigKey)
	if err != nil {
		slog.Warn("loading spawn point, using fallback", "err", err)
		return fallback
	}
	if raw == nil {
		return fallback
	}

	var loc model.Location
	if err := json.Unmarshal(raw, &loc); err != nil {
		slog.Warn("malformed spawn point config, using fallback", "err", err)
		return fallback
	}
	return loc
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
