package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	api "github.com/OvyFlash/telegram-bot-api"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/javierhorta/mashi/internal/adapters"
	"github.com/javierhorta/mashi/internal/adapters/llm/gemini"
	"github.com/javierhorta/mashi/internal/adapters/llm/openai"
	"github.com/javierhorta/mashi/internal/bot"
	"github.com/javierhorta/mashi/internal/config"
	"github.com/javierhorta/mashi/internal/db/sqlite"
	"github.com/javierhorta/mashi/internal/engine"
	"github.com/javierhorta/mashi/internal/flood"
	"github.com/javierhorta/mashi/internal/handlers"
	"github.com/javierhorta/mashi/internal/infra"
	"github.com/javierhorta/mashi/internal/lifecycle"
	"github.com/javierhorta/mashi/internal/moderation"
	"github.com/javierhorta/mashi/internal/observability"
	"github.com/javierhorta/mashi/internal/reputation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatalln("cant load config")
	}
	log.SetFormatter(&config.GuardianFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.Level(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := observability.Init(ctx, cfg.MetricsAddr); err != nil {
		log.WithError(err).Fatalln("cant initialize observability")
	}

	botAPI, err := api.NewBotAPI(cfg.TelegramAPIToken)
	if err != nil {
		log.WithError(err).Errorln("cant initialize bot api")
		time.Sleep(1 * time.Second)
		log.Fatalln("exiting")
	}
	if log.Level(cfg.LogLevel) == log.TraceLevel {
		botAPI.Debug = true
	}

	dbClient, err := sqlite.NewSQLiteClient(ctx, infra.GetWorkDir(), "mashi.db")
	if err != nil {
		log.WithError(err).Fatalln("cant initialize db")
	}

	service := bot.NewService(botAPI, dbClient, cfg)

	reputationService := reputation.NewService(dbClient, cfg.Warnings.BanThreshold, cfg.Warnings.BanDuration)
	floodTracker := flood.NewTracker(cfg.Flood.Window, cfg.Flood.Threshold)
	history := engine.NewConversationContext(cfg.Guardian.HistoryWindowLines)
	decisionEngine := engine.New(reputationService, floodTracker, history, cfg)
	actuator := moderation.NewActuator(botAPI, dbClient)

	bot.RegisterUpdateHandler("admin", handlers.NewAdmin(service, actuator, reputationService))
	bot.RegisterUpdateHandler("gatekeeper", handlers.NewGatekeeper(service, actuator, reputationService))
	bot.RegisterUpdateHandler("guardian", handlers.NewGuardian(service, decisionEngine, actuator, history, newLLM(ctx, cfg)))

	runtime := lifecycle.NewRuntime(
		lifecycle.ComponentFunc{OnStop: func(context.Context) error {
			botAPI.StopReceivingUpdates()
			return nil
		}},
		lifecycle.ComponentFunc{OnStop: func(context.Context) error {
			return dbClient.Close()
		}},
	)
	if err := runtime.Start(ctx); err != nil {
		log.WithError(err).Fatalln("cant start runtime")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := runtime.Stop(shutdownCtx); err != nil {
			log.WithError(err).Errorln("shutdown errors")
		}
	}()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		updateConfig := api.NewUpdate(0)
		updateConfig.Timeout = 60
		updateProcessor := bot.NewUpdateProcessor(service)

		updateChan, errorChan := bot.GetUpdatesChans(ctx, botAPI, updateConfig)
		for {
			select {
			case err := <-errorChan:
				return err
			case update := <-updateChan:
				infra.GoRecoverable(-1, "process_update", func() {
					if err := updateProcessor.Process(ctx, &update); err != nil {
						log.WithError(err).Errorln("cant process update")
					}
				})
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})

	if err := group.Wait(); err != nil {
		log.WithError(err).Errorln("no more updates")
	}
}

func newLLM(ctx context.Context, cfg config.Config) adapters.LLM {
	if cfg.LLM.APIKey == "" {
		log.Warnln("no llm api key, canned replies only")
		return nil
	}
	logger := log.WithField("object", "LLM")
	switch cfg.LLM.Type {
	case "openai":
		return openai.NewOpenAI(cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.BaseURL, logger)
	default:
		llmAPI, err := gemini.NewGemini(ctx, cfg.LLM.APIKey, cfg.LLM.Model, logger)
		if err != nil {
			log.WithError(err).Errorln("cant initialize gemini, canned replies only")
			return nil
		}
		return llmAPI
	}
}
