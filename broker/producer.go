package broker

import (
	"errors"
	"fmt"
	"time"

	applog "taskdesk/taskdesk/logger"

	"github.com/nats-io/nats.go"
)

var ErrProducerClosed = errors.New("producer is closed")

// Producer publishes keyed messages to a topic.
type Producer interface {
	PublishMessage(topic string, key string, value []byte) error
	Close()
}

// NatsProducer publishes to NATS subjects; the key travels in the Event-Type header.
type NatsProducer struct {
	conn *nats.Conn
}

// Connect dials the NATS server at url.
func Connect(url string) (*nats.Conn, error) {
	log := applog.Get()
	conn, err := nats.Connect(url,
		nats.Name("taskdesk"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn().Err(err).Msg("nats disconnected")
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info().Str("url", c.ConnectedUrl()).Msg("nats reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	log.Info().Str("url", conn.ConnectedUrl()).Msg("nats producer initialized")
	return conn, nil
}

func NewNatsProducer(conn *nats.Conn) *NatsProducer {
	return &NatsProducer{conn: conn}
}

// Conn exposes the connection so consumers can share it.
func (p *NatsProducer) Conn() *nats.Conn {
	return p.conn
}

func (p *NatsProducer) PublishMessage(topic string, key string, value []byte) error {
	if p.conn == nil || p.conn.IsClosed() {
		return ErrProducerClosed
	}

	msg := nats.NewMsg(topic)
	msg.Header.Set(EventTypeHeader, key)
	msg.Data = value

	if err := p.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	applog.Get().Debug().Str("topic", topic).Str("event", key).Msg("published message")
	return nil
}

func (p *NatsProducer) Close() {
	if p.conn != nil && !p.conn.IsClosed() {
		if err := p.conn.Drain(); err != nil {
			p.conn.Close()
		}
	}
}
