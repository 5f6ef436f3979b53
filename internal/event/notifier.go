// Package event publishes storefront notifications to Kafka for downstream
// consumers (toast rendering, analytics). Delivery is best-effort: a broker
// failure is logged, never surfaced to the operation that emitted it.
package event

import (
	"context"
	"log/slog"

	"github.com/cipr/storefront/internal/service"
	pkgkafka "github.com/cipr/storefront/pkg/kafka"
	"github.com/cipr/storefront/pkg/logger"
)

// Aggregate type and source identifiers for storefront events.
const (
	AggregateTypeSession = "session"
	SourceStorefront     = "storefront"
)

// KafkaNotifier implements service.Notifier on top of the shared Kafka
// producer.
type KafkaNotifier struct {
	producer *pkgkafka.Producer
	topic    string
	logger   *slog.Logger
}

// NewKafkaNotifier creates a notifier publishing to the given topic.
func NewKafkaNotifier(producer *pkgkafka.Producer, topic string, logger *slog.Logger) *KafkaNotifier {
	return &KafkaNotifier{
		producer: producer,
		topic:    topic,
		logger:   logger,
	}
}

type notificationData struct {
	Message string         `json:"message,omitempty"`
	Fields  map[string]any `json:"fields,omitempty"`
}

// Notify publishes the notification as an event envelope. The session id is
// not part of the notification, so the aggregate is the emitting service.
func (n *KafkaNotifier) Notify(ctx context.Context, notification service.Notification) {
	data := notificationData{
		Message: notification.Message,
		Fields:  notification.Fields,
	}

	evt, err := pkgkafka.NewEvent(notification.Kind, SourceStorefront, AggregateTypeSession, SourceStorefront, data)
	if err != nil {
		n.logger.ErrorContext(ctx, "building notification event failed",
			slog.String("kind", notification.Kind),
			slog.String("error", err.Error()),
		)
		return
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		evt.WithCorrelationID(id)
	}

	if err := n.producer.Publish(ctx, n.topic, evt); err != nil {
		n.logger.WarnContext(ctx, "notification publish failed",
			slog.String("kind", notification.Kind),
			slog.String("error", err.Error()),
		)
	}
}
