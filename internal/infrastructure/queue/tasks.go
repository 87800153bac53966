package queue

// Queues, highest priority first
const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

// Queues returns the asynq priority weights of every queue.
func Queues() map[string]int {
	return map[string]int{
		QueueCritical: 6,
		QueueDefault:  3,
		QueueLow:      1,
	}
}

// Task types handled by the worker besides email:send.
const (
	TypeExpirePendingBookings = "booking:expire_pending"
)
