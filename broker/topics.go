package broker

const (
	UserEventsTopic = "taskdesk.user_events"
	TaskEventsTopic = "taskdesk.task_events"

	// EventTypeHeader carries the EventType of a published message.
	EventTypeHeader = "Event-Type"
)

// Topics lists every subject the service publishes to.
func Topics() []string {
	return []string{UserEventsTopic, TaskEventsTopic}
}

// TopicForEntity maps an event entity to its subject.
func TopicForEntity(entity string) string {
	switch entity {
	case "user":
		return UserEventsTopic
	default:
		return TaskEventsTopic
	}
}
