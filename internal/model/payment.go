package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentType string

const (
	PaymentConsultationFee PaymentType = "consultation_fee"
	PaymentCaseFee         PaymentType = "case_fee"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentSuccess  PaymentStatus = "SUCCESS"
	PaymentExpired  PaymentStatus = "EXPIRED"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

var paymentEdges = map[PaymentStatus][]PaymentStatus{
	PaymentPending: {PaymentSuccess, PaymentExpired, PaymentRefunded},
}

func (s PaymentStatus) CanTransition(to PaymentStatus) bool {
	for _, next := range paymentEdges[s] {
		if next == to {
			return true
		}
	}
	return false
}

func (s PaymentStatus) Terminal() bool {
	return s == PaymentSuccess || s == PaymentExpired || s == PaymentRefunded
}

// Payment is a financial obligation driven by either an Appointment
// (consultation fee, AppointmentID set) or a Case (case fee, CaseID set),
// never both.
type Payment struct {
	ID            string          `json:"id"`
	AppointmentID string          `json:"appointmentId,omitempty"`
	CaseID        string          `json:"caseId,omitempty"`
	ClientID      string          `json:"clientId"`
	LawyerID      string          `json:"lawyerId"`
	Amount        decimal.Decimal `json:"amount"`
	Type          PaymentType     `json:"type"`
	Status        PaymentStatus   `json:"status"`
	Description   string          `json:"description,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	Deadline      time.Time       `json:"deadline"`
	PaidAt        *time.Time      `json:"paidAt,omitempty"`
}
