package model

import "time"

type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationSuccess NotificationType = "success"
	NotificationWarning NotificationType = "warning"
	NotificationError   NotificationType = "error"
)

// Notification is an immutable feed entry. Entries are never edited after
// creation; the feed itself is capped and evicts oldest-first.
type Notification struct {
	ID            string           `json:"id"`
	Timestamp     time.Time        `json:"timestamp"`
	Type          NotificationType `json:"type"`
	Title         string           `json:"title"`
	Message       string           `json:"message"`
	AppointmentID string           `json:"appointmentId,omitempty"`
	CaseID        string           `json:"caseId,omitempty"`
	PaymentID     string           `json:"paymentId,omitempty"`
}
