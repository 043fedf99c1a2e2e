package services

import (
	"context"
	"encoding/json"

	"taskdesk/taskdesk/broker"
	applog "taskdesk/taskdesk/logger"
	"taskdesk/taskdesk/metrics"
	"taskdesk/taskdesk/models"
)

// EventPublisher receives domain events after a write has committed.
// Publishing is best-effort: it never fails the write that produced the event.
type EventPublisher interface {
	Publish(ctx context.Context, event *models.Event)
}

// UserNotifier delivers a message to every live connection of a user.
type UserNotifier interface {
	SendToUser(userID uint, message *models.StandardMessage)
}

// EventService publishes to the broker when one is configured; the broker consumer then
// feeds the websocket hub on every instance. Without a broker, events go to the local hub.
type EventService struct {
	producer broker.Producer
	notifier UserNotifier
}

func NewEventService(producer broker.Producer, notifier UserNotifier) *EventService {
	return &EventService{producer: producer, notifier: notifier}
}

func (s *EventService) Publish(ctx context.Context, event *models.Event) {
	log := applog.Get()

	if s.producer != nil {
		data, err := event.ToJSON()
		if err != nil {
			log.Error().Err(err).Str("event", event.Event).Msg("failed to encode event")
			return
		}
		topic := broker.TopicForEntity(event.Entity)
		if err := s.producer.PublishMessage(topic, event.Event, data); err != nil {
			metrics.EventsPublishedTotal.WithLabelValues("broker", "error").Inc()
			log.Warn().Err(err).Str("event", event.Event).Str("topic", topic).Msg("failed to publish event")
			return
		}
		metrics.EventsPublishedTotal.WithLabelValues("broker", "ok").Inc()
		return
	}

	s.deliver(event)
}

// HandleBrokerMessage is the broker consumer callback.
func (s *EventService) HandleBrokerMessage(msg broker.Message) {
	var event models.Event
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		applog.Get().Warn().Err(err).Str("subject", msg.Subject).Msg("could not decode broker message")
		return
	}
	s.deliver(&event)
}

func (s *EventService) deliver(event *models.Event) {
	if s.notifier == nil || event.ActorID == models.Anonymous {
		return
	}
	s.notifier.SendToUser(event.ActorID, models.FromEvent(event))
	metrics.EventsPublishedTotal.WithLabelValues("websocket", "ok").Inc()
}

// publishEvent builds and publishes an event, logging instead of failing.
func publishEvent(ctx context.Context, pub EventPublisher, eventType broker.EventType, entity string, actorID uint, data interface{}) {
	if pub == nil {
		return
	}
	event, err := models.NewEvent(string(eventType), entity, actorID, data)
	if err != nil {
		applog.Get().Error().Err(err).Str("event", string(eventType)).Msg("failed to build event")
		return
	}
	pub.Publish(ctx, event)
}
