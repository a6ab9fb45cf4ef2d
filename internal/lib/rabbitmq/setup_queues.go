package rabbitmq

// NotificationsExchange — direct-обменник для рассылок SafeZone.
const NotificationsExchange = "notifications"

// RoutingKeyEmergency — ключ маршрутизации уведомлений о тревогах.
const RoutingKeyEmergency = "emergency"

// QueueConfig описывает очередь и ключ, которым она привязана к обменнику.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetNotificationQueues возвращает очереди, которые объявляются при старте.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "notification.emergency", RoutingKey: RoutingKeyEmergency},
	}
}
