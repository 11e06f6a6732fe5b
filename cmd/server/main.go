package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DoyleJ11/battleship-backend/internal/config"
	"github.com/DoyleJ11/battleship-backend/internal/httpapi"
	"github.com/DoyleJ11/battleship-backend/internal/registry"
	"github.com/DoyleJ11/battleship-backend/internal/session"
	"github.com/DoyleJ11/battleship-backend/internal/store"
	"github.com/DoyleJ11/battleship-backend/internal/ws"
)

func main() {
	if err := config.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(1)
	}

	cmd := newCommand()
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", cmd.Name, err)
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	def := config.Default()
	return &cli.Command{
		Name:  "battleship-server",
		Usage: "serve four-seat naval combat games over websockets",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Value: def.Addr, Usage: "listen address", Sources: cli.EnvVars("ADDR")},
			&cli.StringFlag{Name: "static-dir", Value: def.StaticDir, Usage: "directory of client assets, empty to disable", Sources: cli.EnvVars("STATIC_DIR")},
			&cli.StringFlag{Name: "index", Value: def.IndexFile, Usage: "default document under static-dir", Sources: cli.EnvVars("INDEX_FILE")},
			&cli.StringFlag{Name: "database-url", Usage: "postgres DSN for match results, empty to disable", Sources: cli.EnvVars("DATABASE_URL")},
			&cli.StringFlag{Name: "log-level", Value: def.LogLevel, Usage: "debug, info, warn or error", Sources: cli.EnvVars("LOG_LEVEL")},
			&cli.BoolFlag{Name: "dev", Usage: "human readable development logging", Sources: cli.EnvVars("DEV")},
			&cli.StringSliceFlag{Name: "allowed-origin", Usage: "extra websocket origin patterns", Sources: cli.EnvVars("ALLOWED_ORIGINS")},
			&cli.IntFlag{Name: "inbox-size", Value: def.InboxSize, Usage: "queued commands per game", Sources: cli.EnvVars("INBOX_SIZE")},
			&cli.IntFlag{Name: "outbox-size", Value: def.OutboxSize, Usage: "queued events per connection before it is dropped", Sources: cli.EnvVars("OUTBOX_SIZE")},
			&cli.DurationFlag{Name: "write-timeout", Value: def.WriteTimeout, Usage: "websocket write deadline", Sources: cli.EnvVars("WRITE_TIMEOUT")},
			&cli.DurationFlag{Name: "shutdown-timeout", Value: def.ShutdownTimeout, Usage: "graceful shutdown budget", Sources: cli.EnvVars("SHUTDOWN_TIMEOUT")},
			&cli.DurationFlag{Name: "lobby-grace", Value: def.Rules.LobbyGrace, Usage: "empty lobby lifetime", Sources: cli.EnvVars("LOBBY_GRACE")},
			&cli.DurationFlag{Name: "active-grace", Value: def.Rules.ActiveGrace, Usage: "abandoned game lifetime", Sources: cli.EnvVars("ACTIVE_GRACE")},
			&cli.DurationFlag{Name: "concluded-grace", Value: def.Rules.ConcludedGrace, Usage: "finished game lifetime", Sources: cli.EnvVars("CONCLUDED_GRACE")},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := def
			cfg.Addr = cmd.String("addr")
			cfg.StaticDir = cmd.String("static-dir")
			cfg.IndexFile = cmd.String("index")
			cfg.DatabaseURL = cmd.String("database-url")
			cfg.LogLevel = cmd.String("log-level")
			cfg.Development = cmd.Bool("dev")
			cfg.AllowedOrigins = cmd.StringSlice("allowed-origin")
			cfg.InboxSize = cmd.Int("inbox-size")
			cfg.OutboxSize = cmd.Int("outbox-size")
			cfg.WriteTimeout = cmd.Duration("write-timeout")
			cfg.ShutdownTimeout = cmd.Duration("shutdown-timeout")
			cfg.Rules.LobbyGrace = cmd.Duration("lobby-grace")
			cfg.Rules.ActiveGrace = cmd.Duration("active-grace")
			cfg.Rules.ConcludedGrace = cmd.Duration("concluded-grace")
			return run(ctx, cfg)
		},
	}
}

func run(ctx context.Context, cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	log, err := cfg.Logger()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := session.Options{
		Rules:     cfg.Rules,
		InboxSize: cfg.InboxSize,
		Logger:    log,
	}
	var rec *store.Recorder
	if cfg.DatabaseURL != "" {
		openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		rec, err = store.Open(openCtx, cfg.DatabaseURL, log)
		cancel()
		if err != nil {
			return err
		}
		opts.Recorder = rec
		log.Info("recording match results")
	}

	reg := registry.New(context.Background(), opts)
	srv := &http.Server{
		Addr: cfg.Addr,
		Handler: httpapi.SetupRoutes(reg, httpapi.Options{
			StaticDir: cfg.StaticDir,
			IndexFile: cfg.IndexFile,
			Logger:    log,
			WS: ws.Options{
				OutboxSize:     cfg.OutboxSize,
				WriteTimeout:   cfg.WriteTimeout,
				OriginPatterns: cfg.AllowedOrigins,
			},
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		err := srv.Shutdown(shutdownCtx)
		err = multierr.Append(err, reg.Shutdown(shutdownCtx))
		if rec != nil {
			err = multierr.Append(err, rec.Close())
		}
		return err
	})

	return g.Wait()
}
