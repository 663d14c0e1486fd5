// Package seed builds the engine's startup snapshot. Ids are fixed so the
// harness and the dashboards that consume its feed see stable data across
// restarts.
package seed

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tahmid-rahman/counselhub/internal/model"
	"github.com/tahmid-rahman/counselhub/internal/state"
)

const (
	ClientAnika  = "client-anika"
	ClientFarhan = "client-farhan"
	LawyerRahim  = "lawyer-rahim"
	LawyerSultan = "lawyer-sultana"
)

// Snapshot returns the initial collections: one appointment still waiting
// for approval, one waiting for payment with its pending fee, and one active
// case from an earlier confirmed consultation.
func Snapshot(now time.Time) state.Snapshot {
	cfg := model.DefaultConfig()

	approvalDue := now.Add(cfg.ApprovalWindow())
	paymentDue := now.Add(cfg.PaymentWindow())
	confirmedAt := now.Add(-72 * time.Hour)
	paidAt := confirmedAt.Add(10 * time.Minute)

	return state.Snapshot{
		Config: cfg,
		Appointments: []model.Appointment{
			{
				ID:               "apt-1001",
				ClientID:         ClientAnika,
				LawyerID:         LawyerRahim,
				LawyerName:       "Rahim Uddin",
				Status:           model.AppointmentPendingApproval,
				ConsultationFee:  decimal.NewFromInt(5000),
				CreatedAt:        now,
				ApprovalDeadline: &approvalDue,
			},
			{
				ID:              "apt-1002",
				ClientID:        ClientFarhan,
				LawyerID:        LawyerSultan,
				LawyerName:      "Sultana Begum",
				Status:          model.AppointmentAwaitingPayment,
				ConsultationFee: decimal.NewFromInt(8000),
				CreatedAt:       now.Add(-2 * time.Hour),
				PaymentDeadline: &paymentDue,
			},
			{
				ID:              "apt-1003",
				ClientID:        ClientAnika,
				LawyerID:        LawyerSultan,
				LawyerName:      "Sultana Begum",
				Status:          model.AppointmentConfirmed,
				ConsultationFee: decimal.NewFromInt(6000),
				CreatedAt:       confirmedAt,
			},
		},
		Payments: []model.Payment{
			{
				ID:            "pay-2001",
				AppointmentID: "apt-1002",
				ClientID:      ClientFarhan,
				LawyerID:      LawyerSultan,
				Amount:        decimal.NewFromInt(8000),
				Type:          model.PaymentConsultationFee,
				Status:        model.PaymentPending,
				CreatedAt:     now.Add(-2 * time.Hour),
				Deadline:      paymentDue,
			},
			{
				ID:            "pay-2002",
				AppointmentID: "apt-1003",
				ClientID:      ClientAnika,
				LawyerID:      LawyerSultan,
				Amount:        decimal.NewFromInt(6000),
				Type:          model.PaymentConsultationFee,
				Status:        model.PaymentSuccess,
				CreatedAt:     confirmedAt,
				Deadline:      confirmedAt.Add(cfg.PaymentWindow()),
				PaidAt:        &paidAt,
			},
		},
		Cases: []model.Case{
			{
				ID:            "case-3001",
				AppointmentID: "apt-1003",
				ClientID:      ClientAnika,
				LawyerID:      LawyerSultan,
				Status:        model.CaseActive,
				TotalFees:     decimal.NewFromInt(6000),
				PaidAmount:    decimal.NewFromInt(6000),
				Progress:      10,
				CreatedAt:     confirmedAt.Add(time.Hour),
				Messages: []model.Message{
					{
						ID:         "msg-4001",
						SenderID:   LawyerSultan,
						SenderRole: model.RoleLawyer,
						Body:       "I have reviewed the documents you shared during the consultation.",
						SentAt:     confirmedAt.Add(2 * time.Hour),
					},
				},
			},
		},
		Notifications: []model.Notification{
			{
				ID:            "ntf-5001",
				Timestamp:     confirmedAt.Add(time.Hour),
				Type:          model.NotificationSuccess,
				Title:         "Case opened",
				Message:       "An engagement with Sultana Begum is now active.",
				AppointmentID: "apt-1003",
				CaseID:        "case-3001",
			},
		},
	}
}
