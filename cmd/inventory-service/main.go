// cmd/inventory-service/main.go
package main

import (
	"context"

	"go.opentelemetry.io/otel"

	"ticketing/internal/pkg/bootstrap"
	"ticketing/internal/pkg/logger"
	"ticketing/internal/pkg/mq"
	"ticketing/internal/pkg/push"
	"ticketing/internal/service/inventory"
	"ticketing/internal/service/inventory/application"
	"ticketing/internal/service/inventory/domain/port"
	"ticketing/internal/service/inventory/infrastructure"
	"ticketing/internal/service/inventory/infrastructure/rule"
	"ticketing/internal/service/inventory/interfaces"
)

const (
	serviceName = "inventory-service"
	servicePort = 8082
)

func main() {
	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName:      serviceName,
		Port:             servicePort,
		RegisterHandlers: registerHandlers,
	})
}

func registerHandlers(app bootstrap.AppCtx) error {
	cfg := app.Config
	tracer := otel.Tracer(serviceName)

	// 1. 存储与锁
	repo, closeRepo, err := inventory.NewRepository(app.Ctx, cfg)
	if err != nil {
		return err
	}
	app.OnShutdown(func(context.Context) { closeRepo() })

	locker, closeLocker, err := inventory.NewLocker(cfg)
	if err != nil {
		return err
	}
	app.OnShutdown(func(context.Context) { closeLocker() })

	// 2. 购票规则
	policy, err := rule.NewCELPurchasePolicy(cfg.App.Inventory.PurchaseRule)
	if err != nil {
		return err
	}

	// 3. 事件发布
	var publisher port.EventPublisher = infrastructure.NoopEventPublisher{}
	if cfg.App.Inventory.PublishEvents {
		writer := mq.NewKafkaWriter(cfg.Infra.Kafka.Brokers, cfg.Infra.Kafka.TicketEventsTopic)
		app.OnShutdown(func(context.Context) {
			if err := writer.Close(); err != nil {
				logger.Logger.Error().Err(err).Msg("failed to close kafka writer")
			}
		})
		publisher = infrastructure.NewTicketEventKafkaAdapter(writer, cfg.Infra.Kafka.TicketEventsTopic)
	}

	// 4. 可售状态推送
	hub := push.NewHub()
	app.Go(hub.Run)
	app.Mux.HandleFunc("/ws/availability", hub.ServeWs)

	ledger := application.NewLedgerService(repo, tracer,
		application.WithLocker(locker),
		application.WithPublisher(publisher),
		application.WithBroadcaster(infrastructure.NewAvailabilityPushAdapter(hub)),
		application.WithPurchasePolicy(policy),
	)
	interfaces.NewInventoryHandler(ledger, tracer).RegisterRoutes(app.Mux)

	logger.Logger.Info().
		Str("store", cfg.App.Inventory.Store).
		Str("lock", cfg.App.Inventory.Lock).
		Str("purchase_rule", policy.Expression()).
		Bool("publish_events", cfg.App.Inventory.PublishEvents).
		Msg("inventory ledger ready")
	return nil
}
