package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"spendtrack/internal/amqp"
	"spendtrack/internal/config"
	"spendtrack/internal/log"
	"spendtrack/internal/store"
	"spendtrack/internal/store/jsonfile"
	"spendtrack/internal/store/sheets"
	"spendtrack/internal/worker"
)

// sync-worker consumes transaction sync messages published by the
// sqlite backend and mirrors them into a secondary store: Google
// Sheets when a spreadsheet is configured, a JSON mirror file
// otherwise.
func main() {
	_ = godotenv.Load()

	logger := log.New(log.Config{
		Level:     log.DefaultConfig().Level,
		Component: log.ComponentWorker,
	})
	log.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("fatal", log.FieldError, err.Error())
		os.Exit(1)
	}
}

func run(logger *log.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	provider := config.NewProvider(config.DefaultPath())
	settings, err := provider.Settings()
	if err != nil {
		return err
	}
	if settings.AMQP.URL == "" {
		return errors.New("no AMQP URL configured, nothing to consume")
	}

	target, err := openMirror(ctx, settings, logger)
	if err != nil {
		return err
	}
	defer target.Close()

	client, err := amqp.NewClient(settings.AMQP.URL, settings.AMQP.Exchange, settings.AMQP.Queue, logger.Logger)
	if err != nil {
		return err
	}
	defer client.Close()

	sw := worker.NewSyncWorker(target, logger.Logger)

	logger.Info("consuming sync messages",
		"exchange", settings.AMQP.Exchange,
		"queue", settings.AMQP.Queue)
	if err := client.ConsumeSync(ctx, sw.HandleSyncMessage); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("worker stopped")
	return nil
}

func openMirror(ctx context.Context, settings *config.Settings, logger *log.Logger) (store.TransactionStore, error) {
	if settings.Sheets.SpreadsheetID != "" {
		st, err := sheets.New(ctx, sheets.Config{
			SpreadsheetID: settings.Sheets.SpreadsheetID,
			SheetName:     settings.Sheets.SheetName,
		}, logger.Logger)
		if err != nil {
			return nil, err
		}
		logger.Info("mirroring to google sheets", "worksheet", settings.Sheets.SheetName)
		return st, nil
	}

	path := filepath.Join(filepath.Dir(settings.Data.JSONPath), "mirror.json")
	logger.Info("mirroring to json file", log.FieldPath, path)
	return jsonfile.New(path, logger.Logger), nil
}
