package broker

import (
	"fmt"

	applog "taskdesk/taskdesk/logger"

	"github.com/nats-io/nats.go"
)

// Message is a broker message decoupled from the NATS client types.
type Message struct {
	Subject string
	Key     string
	Data    []byte
}

// Handler processes a single message.
type Handler func(msg Message)

// ToMessage extracts the subject, event type header and payload.
func ToMessage(m *nats.Msg) Message {
	msg := Message{Subject: m.Subject, Data: m.Data}
	if m.Header != nil {
		msg.Key = m.Header.Get(EventTypeHeader)
	}
	return msg
}

// Consumer holds the subscriptions opened by StartConsumer.
type Consumer struct {
	subs []*nats.Subscription
}

// StartConsumer subscribes handler to every topic.
func StartConsumer(conn *nats.Conn, topics []string, handler Handler) (*Consumer, error) {
	log := applog.Get()
	c := &Consumer{}
	for _, topic := range topics {
		sub, err := conn.Subscribe(topic, func(m *nats.Msg) {
			handler(ToMessage(m))
		})
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("subscribe %s: %w", topic, err)
		}
		c.subs = append(c.subs, sub)
	}
	log.Info().Strs("topics", topics).Msg("nats consumer started")
	return c, nil
}

func (c *Consumer) Close() {
	for _, sub := range c.subs {
		if err := sub.Unsubscribe(); err != nil {
			applog.Get().Warn().Err(err).Str("subject", sub.Subject).Msg("failed to unsubscribe")
		}
	}
	c.subs = nil
}
