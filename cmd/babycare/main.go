// Baby Care Tracker Core
//
// This is the main entry point for the baby care tracker add-on. It
// ingests device triggers from an MQTT broker (Zigbee2MQTT, Home
// Assistant states, Z-Wave, and custom topics), maps them to baby care
// events, stores them in SQLite, and serves analytics over HTTP and
// WebSocket.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	_ "github.com/nerrad567/babycare-core/migrations"

	"github.com/nerrad567/babycare-core/internal/analytics"
	"github.com/nerrad567/babycare-core/internal/api"
	"github.com/nerrad567/babycare-core/internal/event"
	"github.com/nerrad567/babycare-core/internal/export"
	"github.com/nerrad567/babycare-core/internal/infrastructure/config"
	"github.com/nerrad567/babycare-core/internal/infrastructure/database"
	"github.com/nerrad567/babycare-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/babycare-core/internal/infrastructure/logging"
	"github.com/nerrad567/babycare-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/babycare-core/internal/ingest"
	"github.com/nerrad567/babycare-core/internal/mapping"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting baby care tracker",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Repositories and analytics engine
	eventRepo := event.NewSQLiteRepository(db.DB)
	mappingRepo := mapping.NewSQLiteRepository(db.DB)
	engine := analytics.NewEngine(eventRepo, analytics.Config{
		IdealDailySleepHours: cfg.Analytics.IdealDailySleepHours,
		LiveStatusWindow:     cfg.Analytics.LiveStatusWindow,
	})

	// Connect to MQTT broker. Connect never fails hard: if the broker
	// is down the client retries in the background with backoff.
	mqttClient := mqtt.Connect(cfg.MQTT, version)
	mqttClient.SetLogger(log)
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	log.Info("MQTT client started",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
		"topic_prefix", cfg.MQTT.TopicPrefix,
	)

	mqttClient.SetOnConnect(func() {
		log.Info("MQTT connected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})

	// Connect to InfluxDB (optional event mirror)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
	} else {
		log.Info("InfluxDB disabled")
	}

	// Ingestion pipeline
	pipeline := ingest.NewPipeline(ingest.Config{
		Normalizer:  ingest.NewNormalizer(cfg.MQTT.TopicPrefix),
		Resolver:    mappingRepo,
		Store:       eventRepo,
		Publisher:   mqttClient,
		Topics:      mqttClient.Topics(),
		HADiscovery: cfg.MQTT.HADiscovery,
		Version:     version,
		Logger:      log,
	})

	// Subscribe to the device topic families. Subscriptions are tracked
	// by the client and restored after every reconnect.
	for _, topic := range mqttClient.Topics().Subscriptions() {
		if subErr := mqttClient.Subscribe(topic, byte(cfg.MQTT.QoS), pipeline.HandleMessage); subErr != nil {
			return fmt.Errorf("subscribing to %s: %w", topic, subErr)
		}
		log.Info("subscribed", "topic", topic)
	}

	// HTTP API server
	server, err := api.New(api.Deps{
		Config:    cfg.API,
		WS:        cfg.WebSocket,
		Logger:    log,
		Events:    eventRepo,
		Mappings:  mappingRepo,
		Analytics: engine,
		Database:  db,
		MQTT:      mqttClient,
		Version:   version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	// Fan recorded events out to WebSocket clients and the InfluxDB
	// mirror. All best-effort; SQLite is the durable record.
	hub := server.Hub()
	pipeline.SetOnDomainEvent(func(n ingest.Notification) {
		hub.Broadcast(api.ChannelEventRecorded, n)
		if influxClient != nil {
			influxClient.WriteDomainEvent(n.Type, n.DeviceID, n.OccurredAt)
		}
		if hub.ClientCount() > 0 {
			statsCtx, statsCancel := context.WithTimeout(context.Background(), 5*time.Second)
			if live, liveErr := engine.Live(statsCtx); liveErr == nil {
				hub.Broadcast(api.ChannelLiveStats, live)
			} else {
				log.Warn("live stats refresh failed", "error", liveErr)
			}
			statsCancel()
		}
	})

	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		log.Info("stopping API server")
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()
	log.Info("API server listening", "host", cfg.API.Host, "port", cfg.API.Port)

	// Verify storage is healthy. Broker availability is deliberately
	// not a startup gate; the connector reconnects on its own.
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("health check failed: database: %w", err)
	}
	log.Info("initialisation complete, waiting for shutdown signal")

	// Background loops
	g, gctx := errgroup.WithContext(ctx)
	if cfg.Retention.AutoCleanup {
		g.Go(func() error {
			return retentionLoop(gctx, cfg.Retention, eventRepo, log)
		})
	}
	if cfg.Export.Enabled {
		exporter, expErr := export.NewExporter(cfg.Export.Dir)
		if expErr != nil {
			return fmt.Errorf("creating exporter: %w", expErr)
		}
		log.Info("daily report scheduler enabled", "dir", cfg.Export.Dir)
		g.Go(func() error {
			return export.NewScheduler(exporter, eventRepo, log).Run(gctx)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. API server
	// 2. InfluxDB (if enabled)
	// 3. MQTT (publishes the retained offline status)
	// 4. Database

	log.Info("baby care tracker stopped")
	return nil
}

// retentionLoop periodically removes events older than the retention
// horizon. Sweep failures are logged and retried on the next tick.
func retentionLoop(ctx context.Context, cfg config.RetentionConfig, repo *event.SQLiteRepository, log *logging.Logger) error {
	interval := cfg.CleanupInterval()
	horizon := cfg.RetentionHorizon()

	log.Info("retention sweep enabled",
		"days", cfg.Days,
		"interval_hours", cfg.IntervalHours,
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			removed, err := repo.Cleanup(ctx, horizon)
			if err != nil {
				log.Error("retention sweep failed", "error", err)
				continue
			}
			if removed > 0 {
				log.Info("retention sweep complete", "removed", removed)
			}
		}
	}
}

// getConfigPath returns the configuration file path.
// Uses BABYCARE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("BABYCARE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
