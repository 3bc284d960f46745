package main

import (
	"context"
	"net/rpc"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/iWeeti/bancho-autohost/bancho"
	"github.com/iWeeti/bancho-autohost/commands"
	"github.com/iWeeti/bancho-autohost/config"
	"github.com/iWeeti/bancho-autohost/lobby"
	"github.com/iWeeti/bancho-autohost/logger"
	"github.com/iWeeti/bancho-autohost/models"
	"github.com/iWeeti/bancho-autohost/monitor"
	"github.com/iWeeti/bancho-autohost/osuapi"
	"github.com/iWeeti/bancho-autohost/performance"
	"github.com/iWeeti/bancho-autohost/persistence"
	"github.com/iWeeti/bancho-autohost/server"
	"github.com/iWeeti/bancho-autohost/services"

	autohost_rpc "github.com/iWeeti/bancho-autohost/rpc"
)

func main() {
	// Local development credentials; missing file is fine.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		panic(err)
	}

	logger.Init(cfg.Logging.Level)

	db, err := persistence.NewGormPostgreSQL(
		cfg.Database.Postgres.Host,
		cfg.Database.Postgres.Port,
		cfg.Database.Postgres.User,
		cfg.Database.Postgres.Password,
		cfg.Database.Postgres.DBName,
	)
	if err != nil {
		logger.Log.Fatalf("Failed to connect to database: %v", err)
	}
	logger.Log.Info("Database connection successful.")

	listener, err := persistence.NewConfigListener(
		cfg.Database.Postgres.Host,
		cfg.Database.Postgres.Port,
		cfg.Database.Postgres.User,
		cfg.Database.Postgres.Password,
		cfg.Database.Postgres.DBName,
		db,
	)
	if err != nil {
		logger.Log.Fatalf("Failed to start config listener: %v", err)
	}

	mon := monitor.NewMonitor(cfg.Bot.MetricNamespace)
	api := osuapi.New(cfg.OsuAPI.Key)
	scores := services.NewScoreService(db, api)

	var perf *performance.Client
	if cfg.Bot.PerformanceURL != "" {
		perf = performance.New(cfg.Bot.PerformanceURL)
	}

	client, err := bancho.Dial(bancho.ClientConfig{
		Server:     cfg.IRC.Server,
		Username:   cfg.IRC.Username,
		Password:   cfg.IRC.Password,
		BotAccount: cfg.IRC.BotAccount,
	}, api)
	if err != nil {
		logger.Log.Fatalf("Failed to connect to bancho: %v", err)
	}
	logger.Log.Info("Connected to bancho.")

	commandDeps := commands.Deps{
		Store:   db,
		Scores:  api,
		Maps:    api,
		Metrics: mon,
	}
	if perf != nil {
		commandDeps.Performance = perf
	}
	dispatcher := commands.NewDispatcher(cfg.Bot.CommandPrefix, commandDeps)

	registry := lobby.NewRegistry(mon)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	startCtx, startCancel := context.WithTimeout(ctx, time.Minute)
	lobbyConfigs, err := db.Lobbies(startCtx)
	startCancel()
	if err != nil {
		logger.Log.Fatalf("Failed to load lobby configurations: %v", err)
	}
	if len(lobbyConfigs) == 0 {
		logger.Log.Warn("No lobby configurations stored, nothing to manage.")
	}

	for _, lobbyCfg := range lobbyConfigs {
		channel, err := openChannel(client, db, &lobbyCfg)
		if err != nil {
			logger.Log.Errorf("Failed to open lobby %d (%s): %v", lobbyCfg.ID, lobbyCfg.Name, err)
			continue
		}

		deps := lobby.Deps{
			Channel:      channel,
			Store:        db,
			Scores:       scores,
			Maps:         api,
			Metrics:      mon,
			Commands:     dispatcher,
			Subscription: listener.Subscribe(lobbyCfg.ID),
		}
		if perf != nil {
			deps.Performance = perf
		}

		m := lobby.NewManager(lobbyCfg, deps)
		registry.Add(m)
		go func(id int64) {
			m.Run(ctx)
			registry.Remove(id)
		}(lobbyCfg.ID)
		logger.Log.Infof("Managing lobby #mp_%d (%s)", lobbyCfg.ID, lobbyCfg.Name)
	}

	httpServer := server.NewServer(cfg.Server.HTTPAddress, registry)
	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Log.Errorf("HTTP server stopped: %v", err)
		}
	}()

	rpcServer, err := autohost_rpc.NewServer(cfg.Server.RPCAddress)
	if err != nil {
		logger.Log.Fatalf("Failed to create RPC server: %v", err)
	}
	if err := rpc.Register(autohost_rpc.NewAdminService(registry, db)); err != nil {
		logger.Log.Fatalf("Failed to register RPC service: %v", err)
	}
	go rpcServer.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down.")

	cancel()
	if err := client.Disconnect(); err != nil {
		logger.Log.Warnf("Disconnecting from bancho: %v", err)
	}
	scores.Wait()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Log.Warnf("Shutting down HTTP server: %v", err)
	}
	rpcServer.Stop()

	if err := listener.Close(); err != nil {
		logger.Log.Warnf("Closing config listener: %v", err)
	}
	if err := db.Close(); err != nil {
		logger.Log.Warnf("Closing database: %v", err)
	}
}

// openChannel joins the stored multiplayer room, or creates a fresh one
// when the config has no room id yet (or the old room is gone), and
// records the new id.
func openChannel(client *bancho.IRCClient, db persistence.Database, lobbyCfg *models.LobbyConfig) (bancho.Channel, error) {
	if lobbyCfg.ID != 0 {
		channel, err := client.JoinLobby(lobbyCfg.ID)
		if err == nil {
			return channel, nil
		}
		logger.Log.Warnf("Joining #mp_%d failed (%v), creating a new lobby.", lobbyCfg.ID, err)
	}

	channel, err := client.CreateLobby(lobbyCfg.Name)
	if err != nil {
		return nil, err
	}

	lobbyCfg.ID = channel.ID()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.UpdateLobby(ctx, *lobbyCfg); err != nil {
		logger.Log.Errorf("Recording new lobby id %d: %v", lobbyCfg.ID, err)
	}
	return channel, nil
}
