package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/triagestack/triage-engine/internal/api"
	"github.com/triagestack/triage-engine/internal/config"
	"github.com/triagestack/triage-engine/internal/dispatch"
	"github.com/triagestack/triage-engine/internal/ingest"
	"github.com/triagestack/triage-engine/internal/metrics"
	"github.com/triagestack/triage-engine/internal/services"
	"github.com/triagestack/triage-engine/internal/store"
	"github.com/triagestack/triage-engine/internal/triage"
	"github.com/triagestack/triage-engine/internal/utils"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.Logging.Level, cfg.Logging.JSON, cfg.Logging.File)
	slog.SetDefault(logger)

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		logger.Error("failed to register metrics", slog.Any("error", err))
		os.Exit(1)
	}

	var repo *store.Repository
	if cfg.Store.Path != "" {
		repo, err = store.NewRepository(cfg.Store.Path)
		if err != nil {
			logger.Error("failed to open decision store",
				slog.String("path", cfg.Store.Path), slog.Any("error", err))
			os.Exit(1)
		}
		defer repo.Close()
		logger.Info("decision store ready", slog.String("path", cfg.Store.Path))
	} else {
		logger.Warn("decision store disabled, audit records will not persist")
	}

	validator, err := triage.LoadSafetyValidator(cfg.Safety.PhrasesPath)
	if err != nil {
		logger.Error("failed to load safety phrases",
			slog.String("path", cfg.Safety.PhrasesPath), slog.Any("error", err))
		os.Exit(1)
	}
	engine := triage.NewEngine(logger, validator)

	var twilioClient *dispatch.TwilioClient
	if cfg.Alerts.Twilio.AccountSID != "" && cfg.Alerts.Twilio.AuthToken != "" {
		twilioClient = dispatch.NewTwilioClient(dispatch.TwilioConfig{
			AccountSID:          cfg.Alerts.Twilio.AccountSID,
			AuthToken:           cfg.Alerts.Twilio.AuthToken,
			FromPhone:           cfg.Alerts.Twilio.FromPhone,
			MessagingServiceSID: cfg.Alerts.Twilio.MessagingServiceSID,
			Timeout:             cfg.Alerts.Twilio.Timeout,
		})
		logger.Info("Twilio alerting configured",
			slog.Bool("voice_fallback", cfg.Alerts.Twilio.VoiceFallback))
	} else {
		logger.Warn("Twilio alerting not configured, SMS and voice escalation disabled")
	}

	var kafkaPublisher *dispatch.KafkaPublisher
	if cfg.Alerts.Kafka.Enabled {
		kafkaPublisher, err = dispatch.NewKafkaPublisher(cfg.Alerts.Kafka.Brokers, cfg.Alerts.Kafka.Topic)
		if err != nil {
			logger.Error("failed to create Kafka publisher", slog.Any("error", err))
			os.Exit(1)
		}
		defer kafkaPublisher.Close()
		logger.Info("Kafka alert fan-out enabled",
			slog.String("brokers", cfg.Alerts.Kafka.Brokers),
			slog.String("topic", cfg.Alerts.Kafka.Topic))
	}

	var dispatcher *dispatch.Dispatcher
	if twilioClient != nil || kafkaPublisher != nil {
		dispatcher = dispatch.NewDispatcher(logger, twilioClient, kafkaPublisher,
			cfg.Alerts.Twilio.EmergencyContact, cfg.Alerts.Twilio.ContactName,
			cfg.Alerts.Twilio.VoiceFallback)
	}

	var decisionStore services.DecisionStore
	if repo != nil {
		decisionStore = repo
	}
	var alertDispatcher services.AlertDispatcher
	var statusReporter api.AlertStatusReporter
	if dispatcher != nil {
		alertDispatcher = dispatcher
		statusReporter = dispatcher
	}

	service := services.NewTriageService(logger, engine, decisionStore, alertDispatcher)

	handler := api.NewHandler(logger, service, statusReporter)
	server := api.NewServer(cfg.Server.Address, cfg.Server.GracefulTimeout, logger, handler)

	if cfg.Ingest.Enabled {
		mqttClient, err := ingest.Connect(ingest.Options{
			Broker:   cfg.Ingest.Broker,
			ClientID: cfg.Ingest.ClientID,
			Username: cfg.Ingest.Username,
			Password: cfg.Ingest.Password,
			Topic:    cfg.Ingest.Topic,
		}, logger, service)
		if err != nil {
			logger.Error("failed to connect MQTT ingest", slog.Any("error", err))
			os.Exit(1)
		}
		defer mqttClient.Disconnect(250)
	}

	metricsServer := &http.Server{
		Addr:              cfg.Server.MetricsAddress,
		Handler:           promhttp.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("metrics server listening", slog.String("addr", cfg.Server.MetricsAddress))
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server failed", slog.Any("error", err))
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error("HTTP server failed", slog.Any("error", err))
			os.Exit(1)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), server.GracefulTimeout())
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown failed", slog.Any("error", err))
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics shutdown failed", slog.Any("error", err))
	}
	logger.Info("triage engine stopped")
}
