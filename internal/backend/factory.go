package backend

import (
	"context"
	"fmt"
	"log/slog"

	"spendtrack/internal/amqp"
	"spendtrack/internal/store/jsonfile"
	"spendtrack/internal/store/sheets"
	"spendtrack/internal/store/sqlite"
)

// Open builds the configured store. The returned cleanup closes the
// store and any attached AMQP client.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Type {
	case JSONFileBackend:
		return openJSONFile(cfg, logger)
	case SQLiteBackend:
		return openSQLite(cfg, logger)
	case SheetsBackend:
		return openSheets(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported backend type %q", cfg.Type)
	}
}

func openJSONFile(cfg Config, logger *slog.Logger) (*Result, error) {
	st := jsonfile.New(cfg.JSONPath, logger)
	logger.Info("initialized jsonfile backend", slog.String("path", cfg.JSONPath))
	return &Result{Store: st, Cleanup: st.Close}, nil
}

func openSQLite(cfg Config, logger *slog.Logger) (*Result, error) {
	// AMQP is optional; a dead broker must not keep the app from
	// starting.
	var relay sqlite.Relay
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("AMQP unavailable, continuing without sync mirroring", slog.String("error", err.Error()))
		} else {
			relay = client
			amqpClient = client
			logger.Info("initialized AMQP sync mirroring",
				slog.String("exchange", cfg.AMQPExchange),
				slog.String("queue", cfg.AMQPQueue))
		}
	}

	st, err := sqlite.Open(cfg.SQLiteDBPath, relay, logger)
	if err != nil {
		if amqpClient != nil {
			amqpClient.Close()
		}
		return nil, fmt.Errorf("initialize sqlite backend: %w", err)
	}

	logger.Info("initialized sqlite backend",
		slog.String("path", cfg.SQLiteDBPath),
		slog.Bool("amqp_enabled", relay != nil))

	cleanup := func() error {
		if amqpClient != nil {
			amqpClient.Close()
		}
		return st.Close()
	}
	return &Result{Store: st, Cleanup: cleanup}, nil
}

func openSheets(ctx context.Context, cfg Config, logger *slog.Logger) (*Result, error) {
	st, err := sheets.New(ctx, sheets.Config{
		SpreadsheetID: cfg.SpreadsheetID,
		SheetName:     cfg.SheetName,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("initialize sheets backend: %w", err)
	}
	logger.Info("initialized google sheets backend", slog.String("worksheet", cfg.SheetName))
	return &Result{Store: st, Cleanup: st.Close}, nil
}
