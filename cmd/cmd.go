package cmd

import (
	"context"
	"errors"
	"fmt"

	paho_mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/jackc/pgx/v5"
	"github.com/robfig/cron/v3"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/anicoll/chatbridge/internal/pkg/config"
	"github.com/anicoll/chatbridge/internal/pkg/database"
	"github.com/anicoll/chatbridge/internal/pkg/database/migration"
	"github.com/anicoll/chatbridge/internal/pkg/device"
	"github.com/anicoll/chatbridge/internal/pkg/dispatcher"
	"github.com/anicoll/chatbridge/internal/pkg/listener"
	"github.com/anicoll/chatbridge/internal/pkg/mqtt"
	"github.com/anicoll/chatbridge/internal/pkg/notifier"
	"github.com/anicoll/chatbridge/internal/pkg/registry"
	"github.com/anicoll/chatbridge/internal/pkg/sink"
	"github.com/anicoll/chatbridge/internal/pkg/statusqueue"
)

var errCron = errors.New("cron error")

func configFromCli(ctx *cli.Context) *config.Config {
	return &config.Config{
		MqttCfg: &config.MqttConfig{
			Host:     ctx.String("mqtt-host"),
			Username: ctx.String("mqtt-user"),
			Password: ctx.String("mqtt-pass"),
		},
		QueueCfg: &config.QueueConfig{
			URL: ctx.String("nats-url"),
		},
		ChatCfg: &config.ChatConfig{
			TelegramToken:   ctx.String("telegram-token"),
			LineAPIURL:      ctx.String("line-api-url"),
			LineAccessToken: ctx.String("line-token"),
		},
		DatabaseURL:      ctx.String("database-url"),
		MigrationsFolder: ctx.String("migrations-folder"),
		LogLevel:         ctx.String("log-level"),
	}
}

// BrokerCommand runs the dispatch/fan-out broker.
func BrokerCommand(ctx *cli.Context) error {
	return runBroker(ctx.Context, configFromCli(ctx))
}

// DeviceCommand runs the simulated devices of the configured catalog.
func DeviceCommand(ctx *cli.Context) error {
	return runDevices(ctx.Context, configFromCli(ctx))
}

func newLogger(level string) (*zap.Logger, error) {
	logCfg := zap.NewProductionConfig()
	var err error
	logCfg.Level, err = zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	logCfg.OutputPaths = []string{"stdout"}
	logCfg.ErrorOutputPaths = []string{"stdout"}
	logCfg.Sampling = nil
	return zap.Must(logCfg.Build(zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel))), nil
}

func newMqttClient(cfg *config.MqttConfig, clientID string) paho_mqtt.Client {
	opts := paho_mqtt.NewClientOptions().
		AddBroker(cfg.Host).
		SetClientID(clientID).
		SetAutoReconnect(true)
	if cfg.Username != "" {
		opts = opts.SetUsername(cfg.Username).SetPassword(cfg.Password)
	}
	return paho_mqtt.NewClient(opts)
}

func runBroker(ctx context.Context, cfg *config.Config) error {
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync() // flushes buffer, if any.
	}()
	zap.ReplaceGlobals(logger)

	catalog, defaultDevice, err := config.LoadCatalog()
	if err != nil {
		return err
	}

	if err := migration.Migrate(cfg.DatabaseURL, cfg.MigrationsFolder); err != nil {
		return err
	}
	conn, err := pgx.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	db := database.NewDatabase(conn)
	defer db.Close()

	// first connect failures are fatal: better to refuse startup than to run
	// without the device transport or the status queue
	bridge := mqtt.New(newMqttClient(cfg.MqttCfg, "chatbridge-broker"))
	if err := bridge.Connect(); err != nil {
		return fmt.Errorf("device transport unavailable: %w", err)
	}
	defer bridge.Disconnect()

	queue := statusqueue.New(cfg.QueueCfg.URL)
	if err := queue.Connect(ctx); err != nil {
		return fmt.Errorf("status queue unavailable: %w", err)
	}
	defer queue.Close()

	reg := registry.New()
	disp := dispatcher.New(catalog, defaultDevice, reg, bridge)

	tgListener, err := listener.NewTelegram(cfg.ChatCfg.TelegramToken, disp)
	if err != nil {
		return err
	}

	sinks := sink.NewRegistry()
	if err := sinks.Register(sink.NewTelegram(tgListener.Bot())); err != nil {
		return err
	}
	if err := sinks.Register(sink.NewLine(cfg.ChatCfg.LineAPIURL, cfg.ChatCfg.LineAccessToken)); err != nil {
		return err
	}

	notif := notifier.New(reg, sinks, db)

	return run(ctx, queue, tgListener, notif.OnStatusEvent, db)
}

func run(ctx context.Context, queue statusConsumer, chat chatListener, handler statusqueue.Handler, db *database.Database) error {
	errorChan := make(chan error, 1000)
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		return queue.Run(ctx, handler)
	})

	eg.Go(func() error {
		return chat.Run(ctx)
	})

	if db != nil {
		eg.Go(func() error {
			return cronDbCleanup(db, errorChan)
		})
	}

	eg.Go(func() error {
		// handle any async errors from services
		for {
			select {
			case err := <-errorChan:
				if errors.Is(err, errCron) {
					zap.L().Error("cron error", zap.Error(err))
					return err
				}
			case <-ctx.Done():
				zap.L().Info("context done")
				return ctx.Err()
			}
		}
	})

	return eg.Wait()
}

func cronDbCleanup(db *database.Database, errChan chan error) error {
	if err := db.Cleanup(context.Background()); err != nil {
		return err
	}

	// CRON automation
	c := cron.New()
	if _, err := c.AddFunc("0 3 * * *", func() {
		if err := db.Cleanup(context.Background()); err != nil {
			zap.L().Error("error cleaning up database", zap.Error(err))
			errChan <- errCron
			return
		}
		zap.L().Info("pruned status event history")
	}); err != nil {
		return err
	}

	c.Run()
	return nil
}

func runDevices(ctx context.Context, cfg *config.Config) error {
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()
	zap.ReplaceGlobals(logger)

	catalog, _, err := config.LoadCatalog()
	if err != nil {
		return err
	}

	bridge := mqtt.New(newMqttClient(cfg.MqttCfg, "chatbridge-devices"))
	if err := bridge.Connect(); err != nil {
		return fmt.Errorf("device transport unavailable: %w", err)
	}
	defer bridge.Disconnect()

	// publish-only process: the client reconnects on its own, there is no
	// consume loop to do it
	queue := statusqueue.New(cfg.QueueCfg.URL, statusqueue.WithClientReconnect())
	if err := queue.Connect(ctx); err != nil {
		return fmt.Errorf("status queue unavailable: %w", err)
	}
	defer queue.Close()

	for _, d := range catalog {
		rt := device.New(d, bridge, queue)
		if err := rt.Start(ctx); err != nil {
			return err
		}
		logger.Info("simulated device started", zap.String("device_id", d.ID))
	}

	<-ctx.Done()
	return ctx.Err()
}
