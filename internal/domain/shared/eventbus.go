package shared

import "context"

// EventHandler reacts to domain events dispatched by the bus.
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	// EventTypes names the event types this handler wants. An empty
	// slice subscribes the handler to every event.
	EventTypes() []string
}

// EventPublisher is the write side of the bus. Application services
// publish the events collected on their aggregates after a successful
// commit.
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventBus dispatches published events to subscribed handlers. Start
// and Stop bracket any background processing the implementation needs.
type EventBus interface {
	EventPublisher
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
