// cmd/notification-service/main.go
package main

import (
	"context"

	"go.opentelemetry.io/otel"

	"ticketing/internal/pkg/bootstrap"
	"ticketing/internal/pkg/logger"
	"ticketing/internal/pkg/mq"
	"ticketing/internal/service/notification/application"
	"ticketing/internal/service/notification/infrastructure"
	"ticketing/internal/service/notification/interfaces"
)

const (
	serviceName = "notification-service"
	servicePort = 8083
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
	kafkaCfg := cfg.Infra.Kafka
	notif := cfg.App.Notification
	tracer := otel.Tracer(serviceName)

	svc := application.NewConfirmationService(infrastructure.NewLogNotifier(), application.EventInfo{
		Sender:       notif.Sender,
		Name:         notif.EventName,
		Date:         notif.EventDate,
		Location:     notif.EventLocation,
		SupportEmail: notif.SupportEmail,
	}, tracer)

	dltWriter := mq.NewKafkaWriter(kafkaCfg.Brokers, kafkaCfg.DeadLetterTopic)
	eventReader := mq.NewKafkaReader(kafkaCfg.Brokers, kafkaCfg.TicketEventsTopic, kafkaCfg.ConsumerGroupID)
	dltReader := mq.NewKafkaReader(kafkaCfg.Brokers, kafkaCfg.DeadLetterTopic, kafkaCfg.ConsumerGroupID+"-dlt")

	app.OnShutdown(func(context.Context) {
		for name, closer := range map[string]interface{ Close() error }{
			"event reader": eventReader,
			"dlt reader":   dltReader,
			"dlt writer":   dltWriter,
		} {
			if err := closer.Close(); err != nil {
				logger.Logger.Error().Err(err).Str("component", name).Msg("failed to close kafka client")
			}
		}
	})

	consumer := interfaces.NewTicketEventConsumer(
		eventReader,
		kafkaCfg.TicketEventsTopic,
		svc,
		mq.NewFailureHandler(dltWriter, kafkaCfg.DeadLetterTopic),
		tracer,
	)
	app.Go(consumer.Run)
	app.Go(interfaces.NewDltConsumer(dltReader, kafkaCfg.DeadLetterTopic).Run)
	return nil
}
