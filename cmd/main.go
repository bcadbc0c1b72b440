package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"building_monitor/internal/handlers"
	"building_monitor/internal/ledger"
	"building_monitor/internal/logger"
	"building_monitor/internal/notify"
	"building_monitor/internal/repository"
	"building_monitor/internal/repository/db"
	"building_monitor/internal/server"
	"building_monitor/internal/service"

	"github.com/spf13/viper"
)

const defaultPollTick = 5 * time.Second

func main() {
	// init logger
	log := logger.Get(logger.InfoLevel)

	// load config.yml
	if err := loadConfig(); err != nil {
		log.Fatalw("error reading config", "err", err)
	}

	// open DB
	database, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := database.Close(); cerr != nil {
			log.Fatalw("failed to close sqlite", "err", cerr)
		}
	}()

	// wire dependencies
	repos := repository.NewRepository(database)

	ledgerClient, err := ledger.NewClient(viper.GetString("ledger.base_url"), log.Named("ledger"))
	if err != nil {
		log.Fatalw("failed to init ledger client", "err", err)
	}

	channel := notificationChannel(log)

	services := service.NewService(repos, ledgerClient, channel, log)
	apiHandler := handlers.NewHandler(services, log)

	// hydrate the alert collection before monitoring starts
	if alerts, ok := services.Alerts.(*service.AlertService); ok {
		if err := alerts.Load(context.Background()); err != nil {
			log.Fatalw("failed to load alerts", "err", err)
		}
	}

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// start the monitoring coordinator
	services.Monitor.Start()
	go services.Monitor.Run(ctx, pollTick())

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	return viper.ReadInConfig()
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "app.db")
		dbPath = "app.db"
	}
	return db.InitDB(dbPath)
}

// notificationChannel builds the delivery channel, or nil when no webhook is
// configured. A nil channel leaves the dispatcher disabled, not broken.
func notificationChannel(log *logger.Logger) notify.Channel {
	url := viper.GetString("notify.webhook_url")
	if url == "" {
		log.Infow("notify.webhook_url not set; notifications disabled")
		return nil
	}
	channel, err := notify.NewWebhookChannel(url)
	if err != nil {
		log.Fatalw("failed to init webhook channel", "err", err)
	}
	return channel
}

func pollTick() time.Duration {
	if d := viper.GetDuration("monitor.poll_interval"); d > 0 {
		return d
	}
	return defaultPollTick
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
