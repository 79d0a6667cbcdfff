package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"spendtrack/internal/backend"
	"spendtrack/internal/config"
	apphttp "spendtrack/internal/http"
	"spendtrack/internal/log"
	"spendtrack/internal/mail"
	"spendtrack/internal/services"
)

func main() {
	// .env is for local development only; missing files are fine.
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("fatal", log.FieldError, err.Error())
		os.Exit(1)
	}
}

func run(logger *log.Logger) error {
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	provider := config.NewProvider(config.DefaultPath())
	settings, err := provider.Settings()
	if err != nil {
		return err
	}

	res, err := backend.Open(rootCtx, settings.BackendConfig(), logger.WithComponent(log.ComponentBackend).Logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("backend cleanup failed", log.FieldError, err.Error())
		}
	}()

	budgets, err := settings.DomainBudgets(time.Now())
	if err != nil {
		return err
	}
	tracker := services.NewBudgetTracker(budgets)
	svc := services.NewService(res.Store, tracker, settings.Currency.Symbol,
		logger.WithComponent(log.ComponentService))

	processor := services.NewRecurringProcessor(provider, svc,
		logger.WithComponent(log.ComponentRecurring))
	if n, err := processor.ProcessDue(rootCtx); err != nil {
		logger.Error("startup recurring pass failed", log.FieldError, err.Error())
	} else if n > 0 {
		logger.Info("materialized recurring transactions", log.FieldCount, n)
	}

	var mailer mail.Mailer
	if settings.Email.APIURL != "" {
		mailer = mail.NewHTTPMailer(settings.Email.APIURL, settings.Email.APIKey,
			settings.Email.From, logger.WithComponent(log.ComponentMail))
	}
	scheduler := services.NewReportScheduler(provider, svc, mailer,
		logger.WithComponent(log.ComponentScheduler))

	if err := scheduler.Start(rootCtx); err != nil {
		if errors.Is(err, services.ErrScheduleDisabled) {
			logger.Info("report schedule disabled")
		} else {
			return err
		}
	}
	defer func() {
		if err := scheduler.Stop(); err != nil {
			logger.Error("scheduler stop failed", log.FieldError, err.Error())
		}
	}()

	srv := apphttp.NewServer(":"+settings.Server.Port, svc, tracker, processor, scheduler,
		logger.WithComponent(log.ComponentHTTP))

	g, ctx := errgroup.WithContext(rootCtx)
	g.Go(func() error {
		logger.Info("server listening",
			"port", settings.Server.Port,
			log.FieldBackend, settings.Data.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
