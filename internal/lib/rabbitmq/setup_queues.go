package rabbitmq

import (
	"fmt"

	"github.com/streadway/amqp"
)

// Exchange имя direct-обменника для всех уведомлений.
const Exchange = "notifications"

const (
	// QueueProductStatus очередь писем о решении модерации по продукту.
	QueueProductStatus = "notification.product_status"
	// QueueComment очередь писем о новых комментариях владельцу продукта.
	QueueComment = "notification.comment"

	// RoutingKeyProductStatus ключ маршрутизации для писем модерации.
	RoutingKeyProductStatus = "product_status"
	// RoutingKeyComment ключ маршрутизации для писем о комментариях.
	RoutingKeyComment = "comment"
)

// QueueConfig описывает очередь и её ключ маршрутизации.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetNotificationQueues возвращает очереди, которые потребляет notification-sender.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: QueueProductStatus, RoutingKey: RoutingKeyProductStatus},
		{QueueName: QueueComment, RoutingKey: RoutingKeyComment},
	}
}

// SetupChannel открывает канал, объявляет обменник и привязывает очереди.
func SetupChannel(conn *amqp.Connection, queues []QueueConfig) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupChannel"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := ch.Qos(10, 0, false); err != nil {
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	err = ch.ExchangeDeclare(
		Exchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, q := range queues {
		_, err := ch.QueueDeclare(
			q.QueueName,
			true,
			false,
			false,
			false,
			nil,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to declare queue %s: %w", op, q.QueueName, err)
		}

		err = ch.QueueBind(
			q.QueueName,
			q.RoutingKey,
			Exchange,
			false,
			nil,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to bind queue %s with routing key %s: %w", op, q.QueueName, q.RoutingKey, err)
		}
	}

	return ch, nil
}
