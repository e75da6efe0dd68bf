package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vantagepay/payment-engine/internal/config"
	"github.com/vantagepay/payment-engine/internal/events"
	"github.com/vantagepay/payment-engine/internal/fraud"
	"github.com/vantagepay/payment-engine/internal/orchestrator"
	"github.com/vantagepay/payment-engine/internal/provider"
	"github.com/vantagepay/payment-engine/internal/retry"
	"github.com/vantagepay/payment-engine/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	providers := provider.DefaultProviders()
	gatewayIDs := make([]string, 0, len(providers))
	for _, p := range providers {
		gatewayIDs = append(gatewayIDs, p.ID)
	}
	env := config.LoadEnv(gatewayIDs)

	var st store.Store
	if env.StorePath != "" {
		boltStore, err := store.NewBoltStore(env.StorePath)
		if err != nil {
			slog.Error("store_open_failed", "path", env.StorePath, "error", err)
			os.Exit(1)
		}
		defer boltStore.Close()
		st = boltStore
		slog.Info("store_opened", "backend", "bolt", "path", env.StorePath)
	} else {
		st = store.NewMemoryStore()
		slog.Info("store_opened", "backend", "memory")
	}

	bus := events.NewBus()
	if env.KafkaBroker != "" {
		sink := events.NewKafkaSink(env.KafkaBroker, env.KafkaTopic)
		defer sink.Close()
		sink.Attach(bus)
		slog.Info("kafka_sink_attached", "broker", env.KafkaBroker, "topic", env.KafkaTopic)
	}

	assessor := fraud.NewAssessor(fraud.DefaultRuleTable())
	feedback := fraud.NewFeedbackWindow()
	refresher := fraud.NewRefresher(assessor, feedback)

	creds := make(map[string]provider.Credentials, len(env.Gateways))
	for id, gw := range env.Gateways {
		creds[id] = provider.Credentials{APIKey: gw.APIKey, Environment: gw.Environment}
	}

	registry := provider.NewRegistry(providers)
	adapterMap := provider.DefaultAdapters(creds)
	adapters := make([]provider.Adapter, 0, len(adapterMap))
	for _, a := range adapterMap {
		adapters = append(adapters, a)
	}

	queue := retry.NewQueue()
	engine := orchestrator.New(assessor, registry, adapters, st, bus, queue)
	worker := retry.NewWorker(queue, engine)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	refresher.Start(ctx)
	worker.Start(ctx)
	defer worker.Stop()
	defer refresher.Stop()

	slog.Info("engine_started", "providers", len(providers), "rules", len(assessor.Table().Rules()))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	slog.Info("engine_stopping")
}
