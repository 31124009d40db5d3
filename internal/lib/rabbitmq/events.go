package rabbitmq

// EventPublisher публикует события жизненного цикла подписчика в exchange рассылки.
type EventPublisher struct {
	ch Channel
}

// NewEventPublisher создает новый EventPublisher поверх открытого канала.
func NewEventPublisher(ch Channel) *EventPublisher {
	return &EventPublisher{ch: ch}
}

// Publish отправляет событие с указанным ключом маршрутизации.
func (p *EventPublisher) Publish(routingKey string, event SubscriberEvent) error {
	return PublishMessage(p.ch, Exchange, routingKey, event)
}
