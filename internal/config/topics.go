package config

const (
	// TopicTaskAssigned is the NSQ topic for assignment notification events.
	TopicTaskAssigned = "tasks.assigned"

	// TopicTaskCreated is the NSQ topic for task creation events.
	TopicTaskCreated = "tasks.created"
)
