// Entrance Cockpit Mock
//
// This is the main entry point of the mock backend for the entrance-control
// cockpit. It serves:
//   - A WebSocket push channel of monitoring events (/events)
//   - REST collaborators for devices, users, doors, logs and manual access
//   - An optional auto mode emitting random badge events on a fixed cadence
//
// The MQTT bridge and InfluxDB telemetry are optional; the mock runs fully
// standalone when both are disabled.
package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/nerrad567/entrance-cockpit-mock/internal/api"
	"github.com/nerrad567/entrance-cockpit-mock/internal/bridges/iot"
	"github.com/nerrad567/entrance-cockpit-mock/internal/device"
	"github.com/nerrad567/entrance-cockpit-mock/internal/directory"
	"github.com/nerrad567/entrance-cockpit-mock/internal/generator"
	"github.com/nerrad567/entrance-cockpit-mock/internal/infrastructure/config"
	"github.com/nerrad567/entrance-cockpit-mock/internal/infrastructure/database"
	"github.com/nerrad567/entrance-cockpit-mock/internal/infrastructure/influxdb"
	"github.com/nerrad567/entrance-cockpit-mock/internal/infrastructure/logging"
	"github.com/nerrad567/entrance-cockpit-mock/internal/infrastructure/mqtt"
	"github.com/nerrad567/entrance-cockpit-mock/internal/journal"
	"github.com/nerrad567/entrance-cockpit-mock/internal/monitoring"
	"github.com/nerrad567/entrance-cockpit-mock/internal/telemetry"
	"github.com/nerrad567/entrance-cockpit-mock/internal/user"
	"github.com/nerrad567/entrance-cockpit-mock/migrations"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run wires every component and blocks until ctx is cancelled.
// A missing config file falls back to defaults; a broken one is an error.
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting entrance cockpit mock",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version)

	// Journal
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
	if migrateErr := db.Migrate(ctx, migrations.FS); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	events := journal.NewSQLiteRepository(db.DB)
	log.Info("event journal ready", "path", db.Path())

	// Core services
	dir := directory.New(directory.WithRand(newRand(cfg.Mock.Seed, 1)))
	hub := monitoring.NewHub(monitoring.WithLogger(log.Component("monitoring")))

	gen, err := generator.New(generatorConfig(cfg), hub, dir,
		generator.WithLogger(log.Component("generator")),
		generator.WithRand(newRand(cfg.Mock.Seed, 2)),
		generator.WithRecorder(events),
	)
	if err != nil {
		return fmt.Errorf("creating event generator: %w", err)
	}

	devices := device.NewRegistry(dir.DoorIDs())
	devices.SetLogger(log.Component("devices"))

	users := user.NewDirectory(user.SeedProfiles())
	users.SetRand(newRand(cfg.Mock.Seed, 3))

	// Optional infrastructure
	mqttClient, influxClient := connectOptional(cfg, log)
	if mqttClient != nil {
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
	}
	if influxClient != nil {
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		gen.AddRecorder(telemetry.NewRecorder(influxClient, dir))
	}

	healthChecks := map[string]api.HealthChecker{"database": db}

	var bridge *iot.Bridge
	if mqttClient != nil {
		var bridgeErr error
		bridge, bridgeErr = iot.NewBridge(iot.BridgeOptions{
			MQTTClient: mqttClient,
			Publisher:  gen,
			Topics:     mqttClient.Topics(),
			QoS:        mqttClient.QoS(),
			Doors:      dir,
			Logger:     log.Component("iot"),
		})
		if bridgeErr != nil {
			return fmt.Errorf("creating IoT bridge: %w", bridgeErr)
		}
		if startErr := bridge.Start(ctx); startErr != nil {
			return fmt.Errorf("starting IoT bridge: %w", startErr)
		}
		defer bridge.Stop()
		gen.AddRecorder(bridge)
		healthChecks["mqtt"] = mqttClient
	}
	if influxClient != nil {
		healthChecks["influxdb"] = influxClient
	}

	// HTTP API
	server, err := api.New(api.Deps{
		Config:       cfg.API,
		WS:           cfg.WebSocket,
		Logger:       log.Component("api"),
		Hub:          hub,
		Generator:    gen,
		Directory:    dir,
		Devices:      devices,
		Users:        users,
		Journal:      events,
		HealthChecks: healthChecks,
		Version:      version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	gen.StartAuto()
	defer gen.Stop()

	log.Info("initialisation complete, waiting for shutdown signal",
		"address", server.Addr(),
		"auto_mode", gen.Running(),
	)

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Stop producers before the API goes away. Both calls are idempotent,
	// the deferred ones then close the API server and observer sessions,
	// InfluxDB, MQTT and finally the database.
	gen.Stop()
	if bridge != nil {
		bridge.Stop()
	}

	log.Info("entrance cockpit mock stopped")
	return nil
}

// connectOptional dials the enabled brokers in parallel. A broker that
// cannot be reached is logged and left nil; the mock runs without it.
func connectOptional(cfg *config.Config, log *logging.Logger) (*mqtt.Client, *influxdb.Client) {
	var (
		mqttClient   *mqtt.Client
		influxClient *influxdb.Client
	)

	var g errgroup.Group

	if cfg.MQTT.Enabled {
		g.Go(func() error {
			c, err := mqtt.Connect(cfg.MQTT)
			if err != nil {
				log.Warn("MQTT unavailable, IoT bridge disabled", "error", err)
				return nil
			}
			c.SetLogger(log.Component("mqtt"))
			c.SetOnDisconnect(func(err error) {
				log.Warn("MQTT disconnected", "error", err)
			})
			mqttClient = c
			log.Info("MQTT connected",
				"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
				"client_id", cfg.MQTT.Broker.ClientID,
			)
			return nil
		})
	} else {
		log.Info("MQTT disabled")
	}

	if cfg.InfluxDB.Enabled {
		g.Go(func() error {
			c, err := influxdb.Connect(cfg.InfluxDB)
			if err != nil {
				log.Warn("InfluxDB unavailable, telemetry disabled", "error", err)
				return nil
			}
			c.SetOnError(func(err error) {
				log.Error("InfluxDB write error", "error", err)
			})
			influxClient = c
			log.Info("InfluxDB connected",
				"url", cfg.InfluxDB.URL,
				"org", cfg.InfluxDB.Org,
				"bucket", cfg.InfluxDB.Bucket,
			)
			return nil
		})
	} else {
		log.Info("InfluxDB disabled")
	}

	g.Wait() //nolint:errcheck // Goroutines never return an error

	return mqttClient, influxClient
}

// generatorConfig maps the mock section onto generator settings.
func generatorConfig(cfg *config.Config) generator.Config {
	return generator.Config{
		AutoMode:                cfg.Mock.Events.Auto,
		Interval:                cfg.GetEventInterval(),
		SuccessProbability:      cfg.Mock.Events.SuccessProbability,
		UnknownBadgeProbability: cfg.Mock.Events.UnknownBadgeProbability,
	}
}

// newRand returns a PRNG for one component. A zero seed draws from the
// runtime source; otherwise stream keeps components independent.
func newRand(seed, stream uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seed, stream))
}

// getConfigPath returns the configuration file path.
// Uses ENTRANCEMOCK_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("ENTRANCEMOCK_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
