// Command iptvbot runs the WhatsApp sales bot: the Evolution API webhook
// server, the conversation engine and the Telegram admin console.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m3rciful/iptvbot/core/config"
	"github.com/m3rciful/iptvbot/core/database"
	"github.com/m3rciful/iptvbot/core/logger"
	"github.com/m3rciful/iptvbot/core/sender"
	"github.com/m3rciful/iptvbot/internal/admin"
	"github.com/m3rciful/iptvbot/internal/bot"
	"github.com/m3rciful/iptvbot/internal/evolution"
	"github.com/m3rciful/iptvbot/internal/httpserver"
	"github.com/m3rciful/iptvbot/internal/session"
	"github.com/m3rciful/iptvbot/internal/storage"
)

const (
	defaultConfigPath = "config.yaml"
	migrationsDir     = "migrations"
	shutdownTimeout   = 10 * time.Second
	dbWaitAttempts    = 10
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("iptvbot: %v", err)
	}
}

func run() error {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = defaultConfigPath
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger.InitLogger(logger.Options{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Profile: cfg.Logging.Profile,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	db, err := database.WaitForPostgres(ctx, cfg.Database, dbWaitAttempts)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(db, migrationsDir); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	store := storage.New(db)

	sessions := session.NewManager(session.Options{
		SweepInterval: cfg.Session.SweepInterval(),
		Retention:     cfg.Session.Retention(),
	})
	go sessions.Run(ctx)

	sendTimeout := time.Duration(cfg.Evolution.SendTimeoutSeconds) * time.Second
	gateway := evolution.NewClient(cfg.Evolution.URL, cfg.Evolution.APIKey, cfg.Evolution.Instance, sendTimeout)

	outbox := sender.New(ctx, gateway.SendText, sender.Options{})
	defer outbox.Close()

	engine := bot.New(store, sessions, queueSender{outbox}, nil)

	var console *admin.Console
	if cfg.Telegram.Token != "" {
		console, err = admin.New(admin.Options{
			Token:           cfg.Telegram.Token,
			AdminID:         cfg.Telegram.AdminID,
			LongPollTimeout: time.Duration(cfg.Telegram.LongPollTimeoutSeconds) * time.Second,
		}, store, engine)
		if err != nil {
			return fmt.Errorf("admin console: %w", err)
		}
		engine.SetAdmin(console)
	} else {
		logger.Warn(ctx, "app", "admin_console_disabled")
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Listen, cfg.HTTP.Port),
		Handler:           httpserver.New(engine, store, outbox).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 2)

	go func() {
		logger.Info(ctx, "app", "http_listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	if console != nil {
		go func() {
			if err := console.Run(ctx); err != nil {
				errCh <- fmt.Errorf("admin console: %w", err)
			}
		}()
	}

	logger.Info(ctx, "app", "ready",
		slog.String("instance", cfg.Evolution.Instance),
		slog.Bool("admin_console", console != nil),
	)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		cancel()
		logger.Error(context.Background(), "app", "fatal", logger.Err(err))
		return err
	}

	logger.Info(context.Background(), "app", "shutdown_started")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn(shutdownCtx, "app", "http_shutdown_failed", logger.Err(err))
	}

	outbox.Close()
	logger.Info(context.Background(), "app", "shutdown_complete")
	return nil
}

// queueSender adapts the outbound dispatcher to the engine's sender interface.
type queueSender struct {
	outbox *sender.Dispatcher
}

func (q queueSender) SendText(_ context.Context, phone, text string) error {
	return q.outbox.Enqueue(sender.Outgoing{Phone: phone, Text: text})
}
