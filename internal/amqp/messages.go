package amqp

import (
	"encoding/json"
	"time"
)

// NotificationMessage is a user-facing notification published to the bus so
// out-of-process consumers (the notify worker) can deliver it. Severity uses
// the same values as the in-process notifier.
type NotificationMessage struct {
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Severity  string    `json:"severity"`
	Timestamp time.Time `json:"timestamp"`
}

// NewNotificationMessage creates a notification message stamped with the current time
func NewNotificationMessage(title, message, severity string) *NotificationMessage {
	return &NotificationMessage{
		Title:     title,
		Message:   message,
		Severity:  severity,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *NotificationMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// NotificationMessageFromJSON creates a message from JSON bytes
func NotificationMessageFromJSON(data []byte) (*NotificationMessage, error) {
	var msg NotificationMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
