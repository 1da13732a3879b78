package smoke

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lawnchairsociety/hearthmud/internal/auth"
	"github.com/lawnchairsociety/hearthmud/internal/chat"
	"github.com/lawnchairsociety/hearthmud/internal/command"
	"github.com/lawnchairsociety/hearthmud/internal/config"
	"github.com/lawnchairsociety/hearthmud/internal/database"
	"github.com/lawnchairsociety/hearthmud/internal/gametime"
	"github.com/lawnchairsociety/hearthmud/internal/logger"
	"github.com/lawnchairsociety/hearthmud/internal/message"
	"github.com/lawnchairsociety/hearthmud/internal/namefilter"
	passwordpkg "github.com/lawnchairsociety/hearthmud/internal/password"
	"github.com/lawnchairsociety/hearthmud/internal/server"
	"github.com/lawnchairsociety/hearthmud/internal/session"
	"github.com/lawnchairsociety/hearthmud/internal/transport"
	"github.com/lawnchairsociety/hearthmud/internal/world"
)

// startShipped serves data/world.yaml with the shipped config on loopback.
func startShipped(t *testing.T) string {
	t.Helper()
	cfg, err := config.LoadConfig("../../config/server.yaml")
	require.NoError(t, err)

	w, err := world.Load("../../data/world.yaml")
	require.NoError(t, err)
	db, err := database.Open(filepath.Join(t.TempDir(), "smoke.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sessions := session.NewRegistry()
	router, err := message.NewRouter(sessions, w, message.Options{Prompt: cfg.Server.Prompt}, logger.Discard())
	require.NoError(t, err)

	game := &command.Game{
		World:         w,
		Sessions:      sessions,
		Router:        router,
		Store:         db,
		Passwords:     passwordpkg.NewBcrypt(4),
		Policy:        cfg.Password,
		Names:         namefilter.New(&cfg.Names),
		Limiter:       auth.NewLoginRateLimiter(cfg.RateLimit),
		Chat:          chat.NewFilter(&cfg.Chat),
		Clock:         gametime.NewClock(cfg.Maintenance.StartHour, cfg.Maintenance.MinutesPerGameHour),
		Table:         command.NewDefaultTable(),
		Log:           logger.Discard(),
		StartRoom:     cfg.World.StartRoom,
		StartingItems: cfg.World.StartingItems,
	}

	srv := cfg.Server
	srv.WriteTimeout = time.Second
	tr := transport.New(srv, config.ConnectionsConfig{}, logger.Discard())
	addr, err := tr.ListenTCP("127.0.0.1:0")
	require.NoError(t, err)

	loop := server.NewEventLoop(tr, game, server.Config{
		PollInterval: 5 * time.Millisecond,
		Welcome:      "Welcome to Hearth!",
	}, logger.Discard())
	loop.Spawner().Replenish()
	go loop.Start(context.Background())
	t.Cleanup(loop.Stop)
	require.Eventually(t, func() bool { return loop.State() == server.Running }, 2*time.Second, 5*time.Millisecond)
	return addr.String()
}

func TestScenarios(t *testing.T) {
	if testing.Short() {
		t.Skip("end-to-end scenarios")
	}
	addr := startShipped(t)

	for _, sc := range Scenarios {
		t.Run(sc.Name, func(t *testing.T) {
			res := Run(addr, sc, Options{})
			assert.True(t, res.Passed, res.Message)
		})
	}
}

func TestUniqueName(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		n := uniqueName("Abc")
		assert.Regexp(t, `^Abc[a-z]+$`, n)
		assert.LessOrEqual(t, len(n), 16)
		assert.False(t, seen[n], "duplicate name %s", n)
		seen[n] = true
	}
}

func TestRunReportsFailure(t *testing.T) {
	res := Run("127.0.0.1:1", Scenario{Name: "unreachable", Run: connection}, Options{})
	assert.False(t, res.Passed)
	assert.Contains(t, res.Message, "failed to connect")
}

func TestVerboseStepsGoToLog(t *testing.T) {
	if testing.Short() {
		t.Skip("end-to-end scenarios")
	}
	addr := startShipped(t)

	var quiet, loud strings.Builder
	sc := Scenario{Name: "say", Run: say}
	require.True(t, Run(addr, sc, Options{Log: &quiet}).Passed)
	require.True(t, Run(addr, sc, Options{Verbose: true, Log: &loud}).Passed)

	assert.Empty(t, quiet.String())
	assert.Contains(t, loud.String(), "  [say] registering ")
}
