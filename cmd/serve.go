package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/saudedigital/saude/internal/chat"
	"github.com/saudedigital/saude/internal/config"
	"github.com/saudedigital/saude/internal/dashboard"
	"github.com/saudedigital/saude/internal/db"
	"github.com/saudedigital/saude/internal/facilities"
	"github.com/saudedigital/saude/internal/logging"
	"github.com/saudedigital/saude/internal/notifications"
	"github.com/saudedigital/saude/internal/server"
	"github.com/saudedigital/saude/internal/triage"
)

const shutdownTimeout = 15 * time.Second

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the triage chat server",
	Long:  `Starts the HTTP server backing the chat widget (REST and websocket), the facility locator, emergency contacts and the notification API.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = servePort
		}

		logger, err := newLogger(cfg)
		if err != nil {
			return fmt.Errorf("creating logger: %w", err)
		}
		defer logger.Sync()

		engine, err := buildEngine(cfg)
		if err != nil {
			return err
		}

		// Open database.
		if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}
		database, err := db.Open(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		srv := server.New(server.Config{
			Port:           cfg.Server.Port,
			AllowedOrigins: cfg.Server.AllowedOrigins,
		}, database, logger)

		manager := registerAllRoutes(srv, cfg, engine, logger)

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go manager.Run(ctx, cfg.Chat.SweepInterval)

		go func() {
			<-ctx.Done()
			logger.Info("shutting down server")
			defer logging.Duration(logger, "shutdown")()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			manager.Shutdown()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("server shutdown", zap.Error(err))
			}
		}()

		logger.Info("saude server starting",
			zap.String("version", Version),
			zap.Int("port", cfg.Server.Port),
			zap.String("database", cfg.Database.Path),
			zap.Int("triggers", engine.Lexicon().Len()),
			zap.Duration("delay_min", cfg.Triage.DelayMin),
			zap.Duration("delay_max", cfg.Triage.DelayMax),
		)

		return srv.Start()
	},
}

// registerAllRoutes wires up the feature routes and returns the chat
// session registry.
func registerAllRoutes(srv *server.Server, cfg *config.Config, engine *triage.Engine, logger *zap.Logger) *chat.Manager {
	r := srv.Router()

	// Notifications
	notifStore := notifications.NewStore(srv.Database())
	notifDispatcher := notifications.NewDispatcher(notifStore,
		notifications.WithLogger(logger.Named("notifications")),
		notifications.WithWebhooks(staticWebhooks(cfg)...),
	)
	notifications.RegisterRoutes(r, notifStore, notifDispatcher)

	// Facility locator and emergency contacts
	facilities.RegisterRoutes(r, facilities.Default())

	// Chat widget
	manager := chat.NewManager(engine, cfg.Chat.IdleTimeout,
		chat.WithDelay(replyDelay(cfg)),
		chat.WithNotifier(notifDispatcher),
		chat.WithLogger(logger.Named("chat")),
	)
	chat.RegisterRoutes(r, manager, logger.Named("ws"))

	// Widget page and care-team overview
	dashboard.New(manager, notifStore).RegisterRoutes(r)

	return manager
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on (overrides server.port)")
	rootCmd.AddCommand(serveCmd)
}
