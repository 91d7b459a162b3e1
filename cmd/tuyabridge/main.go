// Command tuyabridge runs the Tuya BLE bridge core.
//
// It loads configuration, opens the SQLite config-entry store, connects
// to the MQTT broker (and optionally InfluxDB), warms the cloud
// credential cache from stored entries, and then waits for a BLE
// session layer to attach devices to the hub.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openble/tuya-ble-bridge/internal/bridge"
	"github.com/openble/tuya-ble-bridge/internal/cloud"
	"github.com/openble/tuya-ble-bridge/internal/credentials"
	"github.com/openble/tuya-ble-bridge/internal/entries"
	"github.com/openble/tuya-ble-bridge/internal/infrastructure/config"
	"github.com/openble/tuya-ble-bridge/internal/infrastructure/database"
	"github.com/openble/tuya-ble-bridge/internal/infrastructure/influxdb"
	"github.com/openble/tuya-ble-bridge/internal/infrastructure/logging"
	"github.com/openble/tuya-ble-bridge/internal/infrastructure/mqtt"

	// Register embedded SQL migrations.
	_ "github.com/openble/tuya-ble-bridge/migrations"
)

// Build-time variables set via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const (
	defaultConfigPath  = "configs/config.yaml"
	healthCheckTimeout = 5 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "tuyabridge: %v\n", err)
		os.Exit(1)
	}
}

// getConfigPath returns the configuration file path, preferring the
// TUYABRIDGE_CONFIG environment variable over the default.
func getConfigPath() string {
	if path := os.Getenv("TUYABRIDGE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

func run(ctx context.Context) error {
	// Bootstrap logger until config is loaded.
	log := logging.Default()
	log.Info("starting tuya ble bridge",
		"version", version,
		"commit", commit,
		"built", date,
	)

	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Re-initialise the logger with the configured level and format.
	log = logging.New(cfg.Logging, version)
	log.Info("configuration loaded",
		"config", getConfigPath(),
		"bridge_id", cfg.Bridge.ID,
	)

	// Database and schema.
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("failed to close database", "error", err)
		}
	}()

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	log.Info("database ready", "path", db.Path())

	repo := entries.NewSQLiteRepository(db.DB)

	// MQTT broker.
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to mqtt broker: %w", err)
	}
	defer func() {
		if err := mqttClient.Close(); err != nil {
			log.Error("failed to close mqtt client", "error", err)
		}
	}()

	mqttClient.SetLogger(log.With("component", "mqtt"))
	mqttClient.SetOnConnect(func() {
		log.Info("mqtt connected", "broker", cfg.MQTT.Broker.Host)
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("mqtt connection lost", "error", err)
	})
	log.Info("mqtt ready",
		"broker", cfg.MQTT.Broker.Host,
		"port", cfg.MQTT.Broker.Port,
	)

	// InfluxDB is optional: the bridge runs without availability history.
	var history *influxdb.Client
	if cfg.InfluxDB.Enabled {
		history, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			log.Warn("influxdb unavailable, availability history disabled", "error", err)
			history = nil
		} else {
			history.SetOnError(func(err error) {
				log.Warn("influxdb write failed", "error", err)
			})
			defer func() {
				if err := history.Close(); err != nil {
					log.Error("failed to close influxdb client", "error", err)
				}
			}()
			log.Info("influxdb ready", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
		}
	}

	// Cloud credential resolution.
	store := credentials.NewStore()
	cloudLog := log.With("component", "cloud")
	api := cloud.NewOpenAPI(nil, cloudLog)

	var defaultAccount credentials.Data
	if cfg.Cloud.IsSet() {
		defaultAccount = credentials.Data{
			credentials.FieldEndpoint:     cfg.Cloud.Endpoint,
			credentials.FieldAccessID:     cfg.Cloud.AccessID,
			credentials.FieldAccessSecret: cfg.Cloud.AccessSecret,
			credentials.FieldUsername:     cfg.Cloud.Username,
			credentials.FieldPassword:     cfg.Cloud.Password,
			credentials.FieldCountryCode:  cfg.Cloud.CountryCode,
		}
	}
	manager := cloud.NewManager(defaultAccount, store, api, cloudLog)
	if history != nil {
		manager.SetFetchObserver(func(cacheKey string, deviceCount int, elapsed time.Duration) {
			history.WriteCloudFetch(cacheKey, deviceCount, elapsed)
		})
	}

	if err := warmCache(ctx, log, repo, manager, defaultAccount); err != nil {
		return err
	}

	// Attachment point for the BLE session layer.
	hubOpts := []bridge.Option{
		bridge.WithLogger(log.With("component", "bridge")),
		bridge.WithDisconnectGrace(cfg.GetDisconnectGrace()),
	}
	if history != nil {
		hubOpts = append(hubOpts, bridge.WithHistory(history))
	}
	hub := bridge.NewHub(mqttClient, hubOpts...)
	if err := hub.ListenCommands(mqttClient); err != nil {
		return fmt.Errorf("subscribing to device commands: %w", err)
	}

	healthCheck(ctx, log, db, mqttClient, history)

	log.Info("bridge ready, waiting for shutdown signal",
		"attached_devices", hub.Len(),
	)
	<-ctx.Done()

	log.Info("shutdown signal received, stopping")
	return nil
}

// warmCache pre-populates the credential cache from stored config
// entries and the default account, so device credential resolution
// after startup is served from memory where possible.
func warmCache(
	ctx context.Context,
	log *logging.Logger,
	repo entries.Repository,
	manager *cloud.Manager,
	defaultAccount credentials.Data,
) error {
	accounts, err := repo.ListByKind(ctx, entries.KindAccount)
	if err != nil {
		return fmt.Errorf("listing account entries: %w", err)
	}
	devices, err := repo.ListByKind(ctx, entries.KindDevice)
	if err != nil {
		return fmt.Errorf("listing device entries: %w", err)
	}

	sources := [][]credentials.Data{}
	if len(defaultAccount) > 0 {
		sources = append(sources, []credentials.Data{defaultAccount})
	}
	sources = append(sources, entries.LoginRecords(accounts), entries.LoginRecords(devices))

	start := time.Now()
	manager.BuildCache(ctx, sources...)
	log.Info("credential cache warmed",
		"account_entries", len(accounts),
		"device_entries", len(devices),
		"elapsed", time.Since(start),
	)
	return nil
}

// healthCheck verifies all infrastructure connections are functioning.
// Failures are logged but not fatal: MQTT reconnects automatically and
// the bridge can serve cached credentials without the database.
func healthCheck(
	ctx context.Context,
	log *logging.Logger,
	db *database.DB,
	mqttClient *mqtt.Client,
	history *influxdb.Client,
) {
	checkCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	if err := db.HealthCheck(checkCtx); err != nil {
		log.Warn("database health check failed", "error", err)
	}
	if err := mqttClient.HealthCheck(checkCtx); err != nil {
		log.Warn("mqtt health check failed", "error", err)
	}
	if history != nil {
		if err := history.HealthCheck(checkCtx); err != nil {
			log.Warn("influxdb health check failed", "error", err)
		}
	}
}
