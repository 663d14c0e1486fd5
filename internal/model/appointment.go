package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type AppointmentStatus string

const (
	AppointmentPendingApproval AppointmentStatus = "PENDING_APPROVAL"
	AppointmentAwaitingPayment AppointmentStatus = "APPROVED_AWAITING_PAYMENT"
	AppointmentConfirmed       AppointmentStatus = "CONFIRMED"
	AppointmentCompleted       AppointmentStatus = "COMPLETED"
	AppointmentCancelled       AppointmentStatus = "CANCELLED"
	AppointmentDeclined        AppointmentStatus = "DECLINED"
	AppointmentExpired         AppointmentStatus = "EXPIRED"
)

var appointmentEdges = map[AppointmentStatus][]AppointmentStatus{
	AppointmentPendingApproval: {AppointmentAwaitingPayment, AppointmentDeclined, AppointmentExpired},
	AppointmentAwaitingPayment: {AppointmentConfirmed, AppointmentExpired},
	AppointmentConfirmed:       {AppointmentCompleted, AppointmentCancelled},
}

// CanTransition reports whether to is reachable from s through the normal
// edge graph. Administrative overrides bypass this check.
func (s AppointmentStatus) CanTransition(to AppointmentStatus) bool {
	for _, next := range appointmentEdges[s] {
		if next == to {
			return true
		}
	}
	return false
}

func (s AppointmentStatus) Terminal() bool {
	switch s {
	case AppointmentDeclined, AppointmentExpired, AppointmentCompleted, AppointmentCancelled:
		return true
	}
	return false
}

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentPendingApproval, AppointmentAwaitingPayment, AppointmentConfirmed,
		AppointmentCompleted, AppointmentCancelled, AppointmentDeclined, AppointmentExpired:
		return true
	}
	return false
}

// Appointment is a client's time-bound request for a lawyer's consultation.
// While the status is a waiting state exactly one of ApprovalDeadline or
// PaymentDeadline is set; both are nil once the status is terminal.
type Appointment struct {
	ID               string            `json:"id"`
	ClientID         string            `json:"clientId"`
	LawyerID         string            `json:"lawyerId"`
	LawyerName       string            `json:"lawyerName"`
	Status           AppointmentStatus `json:"status"`
	ConsultationFee  decimal.Decimal   `json:"consultationFee"`
	CreatedAt        time.Time         `json:"createdAt"`
	ApprovalDeadline *time.Time        `json:"approvalDeadline,omitempty"`
	PaymentDeadline  *time.Time        `json:"paymentDeadline,omitempty"`
	CompletedAt      *time.Time        `json:"completedAt,omitempty"`
	CancelledAt      *time.Time        `json:"cancelledAt,omitempty"`
	DeclinedAt       *time.Time        `json:"declinedAt,omitempty"`
}
