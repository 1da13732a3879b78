package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"

	"github.com/lawnchairsociety/hearthmud/internal/auth"
	"github.com/lawnchairsociety/hearthmud/internal/chat"
	"github.com/lawnchairsociety/hearthmud/internal/command"
	"github.com/lawnchairsociety/hearthmud/internal/config"
	"github.com/lawnchairsociety/hearthmud/internal/database"
	"github.com/lawnchairsociety/hearthmud/internal/gametime"
	"github.com/lawnchairsociety/hearthmud/internal/message"
	"github.com/lawnchairsociety/hearthmud/internal/namefilter"
	"github.com/lawnchairsociety/hearthmud/internal/password"
	"github.com/lawnchairsociety/hearthmud/internal/server"
	"github.com/lawnchairsociety/hearthmud/internal/session"
	"github.com/lawnchairsociety/hearthmud/internal/text"
	"github.com/lawnchairsociety/hearthmud/internal/transport"
	"github.com/lawnchairsociety/hearthmud/internal/world"
)

var errNotRunning = errors.New("server is not running")

// app owns the long-lived store and builds a fresh world, registry and
// transport each time the server starts.
type app struct {
	cfg *config.ServerConfig
	log *slog.Logger

	mu       sync.Mutex
	store    database.Store
	loop     *server.EventLoop
	done     chan error
	sessions *session.Registry
	addr     net.Addr
}

func newApp(cfg *config.ServerConfig, log *slog.Logger) *app {
	return &app{cfg: cfg, log: log}
}

// openStore opens the character store once. Callers hold a.mu.
func (a *app) openStore() error {
	if a.store != nil {
		return nil
	}
	store, err := database.OpenStore(a.cfg.Database)
	if err != nil {
		return err
	}
	a.store = store
	a.log.Info("Character store ready", "driver", a.cfg.Database.Driver)
	return nil
}

func (a *app) createDB() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.openStore()
}

func (a *app) welcome() string {
	if a.cfg.World.TextFile == "" {
		return text.Default().Welcome()
	}
	t, err := text.Load(a.cfg.World.TextFile)
	if err != nil {
		a.log.Warn("Failed to load text file, using fallback text", "path", a.cfg.World.TextFile, "error", err)
		return text.Default().Welcome()
	}
	return t.Welcome()
}

func (a *app) start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.loop != nil {
		return server.ErrAlreadyRunning
	}
	if err := a.openStore(); err != nil {
		return err
	}

	cfg := a.cfg
	w, err := world.Load(cfg.World.DataFile)
	if err != nil {
		return err
	}
	if _, ok := w.RoomByID(cfg.World.StartRoom); !ok {
		return fmt.Errorf("start room %q is not in %s", cfg.World.StartRoom, cfg.World.DataFile)
	}
	a.log.Info("World loaded", "path", cfg.World.DataFile, "rooms", w.RoomCount())

	sessions := session.NewRegistry()
	router, err := message.NewRouter(sessions, w, message.Options{
		Encoding:  cfg.Server.Encoding,
		WrapWidth: cfg.Server.WrapWidth,
		Prompt:    cfg.Server.Prompt,
	}, a.log)
	if err != nil {
		return err
	}

	names := namefilter.New(&cfg.Names)
	if names.Enabled() {
		a.log.Info("Name filter enabled", "banned_words", len(cfg.Names.BannedWords), "banned_names", len(cfg.Names.BannedNames))
	}

	game := &command.Game{
		World:         w,
		Sessions:      sessions,
		Router:        router,
		Store:         a.store,
		Passwords:     password.NewBcrypt(cfg.Password.Cost),
		Policy:        cfg.Password,
		Names:         names,
		Limiter:       auth.NewLoginRateLimiter(cfg.RateLimit),
		Chat:          chat.NewFilter(&cfg.Chat),
		Flood:         chat.NewFloodLimiter(cfg.Chat.Flood),
		Clock:         gametime.NewClock(cfg.Maintenance.StartHour, cfg.Maintenance.MinutesPerGameHour),
		Table:         command.NewDefaultTable(),
		Log:           a.log,
		StartRoom:     cfg.World.StartRoom,
		StartingItems: cfg.World.StartingItems,
	}

	tr := transport.New(cfg.Server, cfg.Connections, a.log)
	addr, err := tr.ListenTCP(cfg.Server.Address)
	if err != nil {
		tr.Close()
		return fmt.Errorf("telnet listener: %w", err)
	}
	if cfg.WebSocket.Enabled {
		if _, err := tr.ListenWebSocket(cfg.WebSocket); err != nil {
			tr.Close()
			return fmt.Errorf("websocket listener: %w", err)
		}
		if len(cfg.WebSocket.AllowedOrigins) == 0 {
			a.log.Info("WebSocket CORS policy", "mode", "same-origin")
		} else {
			a.log.Info("WebSocket CORS policy", "allowed_origins", cfg.WebSocket.AllowedOrigins)
		}
	}

	loop := server.NewEventLoop(tr, game, server.Config{
		PollInterval:     cfg.Server.PollInterval,
		AutosaveInterval: cfg.Maintenance.AutosaveInterval,
		SpawnInterval:    cfg.Maintenance.SpawnInterval,
		Welcome:          a.welcome(),
	}, a.log)
	items, npcs := loop.Spawner().Replenish()
	a.log.Info("Initial spawns placed", "items", items, "npcs", npcs)

	done := make(chan error, 1)
	go func() { done <- loop.Start(ctx) }()

	a.loop, a.done, a.sessions, a.addr = loop, done, sessions, addr
	return nil
}

// stop shuts the running server down and waits for it.
func (a *app) stop() error {
	a.mu.Lock()
	loop, done := a.loop, a.done
	a.loop, a.done, a.sessions, a.addr = nil, nil, nil, nil
	a.mu.Unlock()

	if loop == nil {
		return errNotRunning
	}
	loop.Stop()
	if err := <-done; err != nil && !errors.Is(err, server.ErrStopped) {
		return err
	}
	return nil
}

func (a *app) status() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.loop == nil || a.loop.State() != server.Running {
		return "stopped"
	}
	return fmt.Sprintf("running on %s, %d connected, %d playing",
		a.addr, a.sessions.Len(), len(a.sessions.LoggedIn()))
}

// close stops the server if needed and releases the store.
func (a *app) close() {
	if err := a.stop(); err != nil && !errors.Is(err, errNotRunning) {
		a.log.Error("Server stopped with error", "error", err)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn("Failed to close character store", "error", err)
		}
		a.store = nil
	}
}

// runConsole reads operator commands from in until exit, EOF or ctx ends.
func (a *app) runConsole(ctx context.Context, in io.Reader, out io.Writer) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			lines <- sc.Text()
		}
		scanErr <- sc.Err()
		close(lines)
	}()

	fmt.Fprint(out, "mud> ")
	for {
		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return nil
		case l, ok := <-lines:
			if !ok {
				return <-scanErr
			}
			line = strings.TrimSpace(l)
		}

		switch strings.ToLower(line) {
		case "":
		case "start":
			if err := a.start(ctx); err != nil {
				fmt.Fprintf(out, "start failed: %v\n", err)
			} else {
				fmt.Fprintln(out, a.status())
			}
		case "stop":
			if err := a.stop(); err != nil {
				fmt.Fprintf(out, "stop: %v\n", err)
			} else {
				fmt.Fprintln(out, "stopped")
			}
		case "status":
			fmt.Fprintln(out, a.status())
		case "create-db":
			if err := a.createDB(); err != nil {
				fmt.Fprintf(out, "create-db failed: %v\n", err)
			} else {
				fmt.Fprintln(out, "database ready")
			}
		case "exit", "quit":
			return nil
		default:
			fmt.Fprintf(out, "unknown command %q (start, stop, status, create-db, exit)\n", line)
		}
		fmt.Fprint(out, "mud> ")
	}
}
