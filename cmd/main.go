package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"smart_hub/internal/config"
	"smart_hub/internal/decision"
	"smart_hub/internal/handlers"
	"smart_hub/internal/logger"
	"smart_hub/internal/metrics"
	"smart_hub/internal/notify"
	"smart_hub/internal/repository"
	"smart_hub/internal/repository/db"
	"smart_hub/internal/server"
	"smart_hub/internal/service"
	"smart_hub/internal/sunset"
)

const configDir = "configs"

// @title       Smart Hub API
// @version     1.0
// @description Preferences, sensor ingestion and fan/light decisions for a home hub.
// @BasePath    /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// load config.yml (+ SMARTHUB_* env)
	cfg, err := config.Load(configDir)
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}

	// init logger
	log := logger.Get(cfg.LogLevel)

	// open DB
	sqlDB, err := db.InitDB(cfg.DB.Path)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err, "path", cfg.DB.Path)
	}
	defer func() {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	publisher, err := newPublisher(cfg.Notify)
	if err != nil {
		log.Fatalw("failed to init decision publisher", "err", err, "driver", cfg.Notify.Driver)
	}
	defer func() {
		if cerr := publisher.Close(); cerr != nil {
			log.Errorw("failed to close decision publisher", "err", cerr)
		}
	}()

	// wire dependencies
	m := metrics.New()
	repos := repository.NewRepository(sqlDB)
	services := service.NewService(repos, service.Deps{
		Sunset:    newSunsetResolver(cfg, m, log),
		Engine:    decision.New(cfg.Decision.LegacyExactMatch),
		Publisher: publisher,
		TZ:        cfg.TZ(),
		Auth: service.AuthConfig{
			SigningKey: cfg.Auth.SigningKey,
			TokenTTL:   cfg.Auth.TokenTTL,
		},
	})
	apiHandler := handlers.NewHandler(services, log.Component("http"), handlers.Options{
		Metrics:        m,
		AuthEnabled:    cfg.Auth.Enabled,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Sim.Enabled {
		log.Infow("device simulator enabled", "tick", cfg.Sim.Tick)
		go services.Simulator.Run(ctx, cfg.Sim.Tick)
	}

	// start HTTP server
	srv := server.New(cfg.Port, apiHandler.Routes())
	runHTTPServer(srv, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
}

// newSunsetResolver builds API -> (computed fallback) -> per-day cache, with
// every upstream lookup counted.
func newSunsetResolver(cfg config.Config, m *metrics.Metrics, log *logger.Logger) sunset.Resolver {
	loc := sunset.Location{
		Latitude:  cfg.Location.Latitude,
		Longitude: cfg.Location.Longitude,
		TZ:        cfg.TZ(),
	}

	var r sunset.Resolver = sunset.NewAPIResolver(cfg.Sunset.APIURL, loc,
		sunset.WithTimeout(cfg.Sunset.Timeout),
		sunset.WithRetries(cfg.Sunset.Retries),
	)
	if cfg.Sunset.FallbackComputed {
		r = sunset.NewFallbackResolver(r, sunset.NewComputedResolver(loc), func(err error) {
			log.Warnw("sunset api failed; using computed sunset", "err", err)
		})
	}
	return sunset.NewCachedResolver(m.InstrumentResolver(r), loc.TZ)
}

func newPublisher(cfg config.Notify) (notify.Publisher, error) {
	switch cfg.Driver {
	case config.NotifyMQTT:
		p, err := notify.NewMQTTPublisher(cfg.MQTT.Broker, cfg.MQTT.ClientID, cfg.MQTT.Topic)
		if err != nil {
			return nil, err
		}
		return p, nil
	case config.NotifyKafka:
		return notify.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic), nil
	default:
		return notify.Nop{}, nil
	}
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, log *logger.Logger) {
	go func() {
		log.Infow("http server listening", "addr", srv.Addr())
		if err := srv.Run(); err != nil {
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
	ctx, shutdownCancel := context.WithTimeout(context.Background(), server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
