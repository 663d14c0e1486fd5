package state

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tahmid-rahman/counselhub/internal/model"
)

// Action is the sealed set of state transitions. Every time-derived value
// (id, timestamp, deadline) is computed by the caller and carried in the
// action so Apply stays deterministic.
type Action interface {
	isAction()
}

type AppointmentCreated struct {
	Appointment model.Appointment `json:"appointment"`
}

// AppointmentStatusChanged replaces the status and both deadline fields.
// At stamps the matching terminal timestamp when the new status has one.
type AppointmentStatusChanged struct {
	ID               string                  `json:"id"`
	Status           model.AppointmentStatus `json:"status"`
	At               time.Time               `json:"at"`
	ApprovalDeadline *time.Time              `json:"approvalDeadline,omitempty"`
	PaymentDeadline  *time.Time              `json:"paymentDeadline,omitempty"`
}

type PaymentAdded struct {
	Payment model.Payment `json:"payment"`
}

type PaymentStatusChanged struct {
	ID     string              `json:"id"`
	Status model.PaymentStatus `json:"status"`
	At     time.Time           `json:"at"`
}

type CaseAdded struct {
	Case model.Case `json:"case"`
}

type CaseStatusChanged struct {
	ID     string           `json:"id"`
	Status model.CaseStatus `json:"status"`
	At     time.Time        `json:"at"`
	Reason string           `json:"reason,omitempty"`
}

// CaseFeesChanged replaces the fee bookkeeping fields of a case.
type CaseFeesChanged struct {
	ID                  string          `json:"id"`
	TotalFees           decimal.Decimal `json:"totalFees"`
	PaidAmount          decimal.Decimal `json:"paidAmount"`
	NextPaymentDeadline *time.Time      `json:"nextPaymentDeadline,omitempty"`
}

type DocumentAddedToCase struct {
	CaseID   string         `json:"caseId"`
	Document model.Document `json:"document"`
}

type MessageAddedToCase struct {
	CaseID  string        `json:"caseId"`
	Message model.Message `json:"message"`
}

type CaseProgressSet struct {
	CaseID   string `json:"caseId"`
	Progress int    `json:"progress"`
}

type NotificationAdded struct {
	Notification model.Notification `json:"notification"`
}

type NotificationDismissed struct {
	ID string `json:"id"`
}

type NotificationsCleared struct{}

type ConfigUpdated struct {
	Config model.Config `json:"config"`
}

func (AppointmentCreated) isAction()       {}
func (AppointmentStatusChanged) isAction() {}
func (PaymentAdded) isAction()             {}
func (PaymentStatusChanged) isAction()     {}
func (CaseAdded) isAction()                {}
func (CaseStatusChanged) isAction()        {}
func (CaseFeesChanged) isAction()          {}
func (DocumentAddedToCase) isAction()      {}
func (MessageAddedToCase) isAction()       {}
func (CaseProgressSet) isAction()          {}
func (NotificationAdded) isAction()        {}
func (NotificationDismissed) isAction()    {}
func (NotificationsCleared) isAction()     {}
func (ConfigUpdated) isAction()            {}

// Name returns a stable identifier for journalling.
func Name(a Action) string {
	switch a.(type) {
	case AppointmentCreated:
		return "appointment.created"
	case AppointmentStatusChanged:
		return "appointment.status_changed"
	case PaymentAdded:
		return "payment.added"
	case PaymentStatusChanged:
		return "payment.status_changed"
	case CaseAdded:
		return "case.added"
	case CaseStatusChanged:
		return "case.status_changed"
	case CaseFeesChanged:
		return "case.fees_changed"
	case DocumentAddedToCase:
		return "case.document_added"
	case MessageAddedToCase:
		return "case.message_added"
	case CaseProgressSet:
		return "case.progress_set"
	case NotificationAdded:
		return "notification.added"
	case NotificationDismissed:
		return "notification.dismissed"
	case NotificationsCleared:
		return "notification.cleared"
	case ConfigUpdated:
		return "config.updated"
	}
	return "unknown"
}
