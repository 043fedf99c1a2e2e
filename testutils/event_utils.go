package testutils

import (
	"context"
	"sync"

	"taskdesk/taskdesk/models"
)

// RecordingPublisher collects published events for assertions.
type RecordingPublisher struct {
	mu     sync.Mutex
	events []*models.Event
}

func (p *RecordingPublisher) Publish(ctx context.Context, event *models.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *RecordingPublisher) Events() []*models.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*models.Event, len(p.events))
	copy(out, p.events)
	return out
}

// EventNames returns the event types in publish order.
func (p *RecordingPublisher) EventNames() []string {
	events := p.Events()
	names := make([]string, 0, len(events))
	for _, e := range events {
		names = append(names, e.Event)
	}
	return names
}

// RecordingNotifier collects messages sent to users.
type RecordingNotifier struct {
	mu       sync.Mutex
	Messages map[uint][]*models.StandardMessage
}

func NewRecordingNotifier() *RecordingNotifier {
	return &RecordingNotifier{Messages: make(map[uint][]*models.StandardMessage)}
}

func (n *RecordingNotifier) SendToUser(userID uint, message *models.StandardMessage) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Messages[userID] = append(n.Messages[userID], message)
}

func (n *RecordingNotifier) Count(userID uint) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.Messages[userID])
}

// FakeProducer records broker publishes and can be told to fail.
type FakeProducer struct {
	mu        sync.Mutex
	Published []PublishedMessage
	Err       error
	Closed    bool
}

type PublishedMessage struct {
	Topic string
	Key   string
	Value []byte
}

func (p *FakeProducer) PublishMessage(topic string, key string, value []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.Published = append(p.Published, PublishedMessage{Topic: topic, Key: key, Value: value})
	return nil
}

func (p *FakeProducer) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Closed = true
}
