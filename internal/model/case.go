package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type CaseStatus string

const (
	CaseActive         CaseStatus = "ACTIVE"
	CasePaymentPending CaseStatus = "PAYMENT_PENDING"
	CaseOverdue        CaseStatus = "OVERDUE"
	CaseClosed         CaseStatus = "CLOSED"
	CaseTerminated     CaseStatus = "TERMINATED"
)

var caseEdges = map[CaseStatus][]CaseStatus{
	CaseActive:         {CasePaymentPending, CaseClosed, CaseTerminated},
	CasePaymentPending: {CaseActive, CaseOverdue},
	CaseOverdue:        {CaseClosed, CaseTerminated},
}

func (s CaseStatus) CanTransition(to CaseStatus) bool {
	for _, next := range caseEdges[s] {
		if next == to {
			return true
		}
	}
	return false
}

func (s CaseStatus) Terminal() bool {
	return s == CaseClosed || s == CaseTerminated
}

func (s CaseStatus) Valid() bool {
	switch s {
	case CaseActive, CasePaymentPending, CaseOverdue, CaseClosed, CaseTerminated:
		return true
	}
	return false
}

type Document struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	UploadedBy string    `json:"uploadedBy"`
	UploadedAt time.Time `json:"uploadedAt"`
}

type Message struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId"`
	SenderRole Role      `json:"senderRole"`
	Body       string    `json:"body"`
	SentAt     time.Time `json:"sentAt"`
}

// Case is the persistent engagement created from a confirmed consultation.
// PaidAmount may exceed TotalFees; both are exposed so consumers can show a
// credit balance.
type Case struct {
	ID                  string          `json:"id"`
	AppointmentID       string          `json:"appointmentId"`
	ClientID            string          `json:"clientId"`
	LawyerID            string          `json:"lawyerId"`
	Status              CaseStatus      `json:"status"`
	Documents           []Document      `json:"documents"`
	Messages            []Message       `json:"messages"`
	TotalFees           decimal.Decimal `json:"totalFees"`
	PaidAmount          decimal.Decimal `json:"paidAmount"`
	NextPaymentDeadline *time.Time      `json:"nextPaymentDeadline,omitempty"`
	Progress            int             `json:"progress"`
	CreatedAt           time.Time       `json:"createdAt"`
	ClosedAt            *time.Time      `json:"closedAt,omitempty"`
	TerminationReason   string          `json:"terminationReason,omitempty"`
}
