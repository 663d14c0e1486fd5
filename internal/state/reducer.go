package state

import (
	"github.com/tahmid-rahman/counselhub/internal/model"
)

// Apply is the single source of truth for mutations: it maps the current
// snapshot and one action to the next snapshot. It is pure: no clock, no
// randomness, no I/O. It is total: an action addressing an unknown id leaves
// the snapshot unchanged (operations validate before dispatching).
func Apply(s Snapshot, a Action) Snapshot {
	switch act := a.(type) {
	case AppointmentCreated:
		s.Appointments = appendAppointment(s.Appointments, act.Appointment)

	case AppointmentStatusChanged:
		s.Appointments = mapAppointments(s.Appointments, act.ID, func(appt model.Appointment) model.Appointment {
			appt.Status = act.Status
			appt.ApprovalDeadline = act.ApprovalDeadline
			appt.PaymentDeadline = act.PaymentDeadline
			at := act.At
			switch act.Status {
			case model.AppointmentCompleted:
				appt.CompletedAt = &at
			case model.AppointmentCancelled:
				appt.CancelledAt = &at
			case model.AppointmentDeclined:
				appt.DeclinedAt = &at
			}
			return appt
		})

	case PaymentAdded:
		payments := make([]model.Payment, 0, len(s.Payments)+1)
		payments = append(payments, s.Payments...)
		s.Payments = append(payments, act.Payment)

	case PaymentStatusChanged:
		s.Payments = mapPayments(s.Payments, act.ID, func(p model.Payment) model.Payment {
			p.Status = act.Status
			if act.Status == model.PaymentSuccess {
				at := act.At
				p.PaidAt = &at
			}
			return p
		})

	case CaseAdded:
		cases := make([]model.Case, 0, len(s.Cases)+1)
		cases = append(cases, s.Cases...)
		s.Cases = append(cases, act.Case)

	case CaseStatusChanged:
		s.Cases = mapCases(s.Cases, act.ID, func(c model.Case) model.Case {
			c.Status = act.Status
			switch act.Status {
			case model.CaseClosed:
				at := act.At
				c.ClosedAt = &at
				c.NextPaymentDeadline = nil
				c.Progress = 100
			case model.CaseTerminated:
				at := act.At
				c.ClosedAt = &at
				c.NextPaymentDeadline = nil
				c.TerminationReason = act.Reason
			}
			return c
		})

	case CaseFeesChanged:
		s.Cases = mapCases(s.Cases, act.ID, func(c model.Case) model.Case {
			c.TotalFees = act.TotalFees
			c.PaidAmount = act.PaidAmount
			c.NextPaymentDeadline = act.NextPaymentDeadline
			return c
		})

	case DocumentAddedToCase:
		s.Cases = mapCases(s.Cases, act.CaseID, func(c model.Case) model.Case {
			docs := make([]model.Document, 0, len(c.Documents)+1)
			docs = append(docs, c.Documents...)
			c.Documents = append(docs, act.Document)
			return c
		})

	case MessageAddedToCase:
		s.Cases = mapCases(s.Cases, act.CaseID, func(c model.Case) model.Case {
			msgs := make([]model.Message, 0, len(c.Messages)+1)
			msgs = append(msgs, c.Messages...)
			c.Messages = append(msgs, act.Message)
			return c
		})

	case CaseProgressSet:
		s.Cases = mapCases(s.Cases, act.CaseID, func(c model.Case) model.Case {
			c.Progress = act.Progress
			return c
		})

	case NotificationAdded:
		feed := make([]model.Notification, 0, len(s.Notifications)+1)
		feed = append(feed, act.Notification)
		feed = append(feed, s.Notifications...)
		if len(feed) > FeedCap {
			feed = feed[:FeedCap]
		}
		s.Notifications = feed

	case NotificationDismissed:
		feed := make([]model.Notification, 0, len(s.Notifications))
		for _, n := range s.Notifications {
			if n.ID != act.ID {
				feed = append(feed, n)
			}
		}
		s.Notifications = feed

	case NotificationsCleared:
		s.Notifications = nil

	case ConfigUpdated:
		s.Config = act.Config
	}
	return s
}

func appendAppointment(appts []model.Appointment, a model.Appointment) []model.Appointment {
	out := make([]model.Appointment, 0, len(appts)+1)
	out = append(out, appts...)
	return append(out, a)
}

func mapAppointments(appts []model.Appointment, id string, fn func(model.Appointment) model.Appointment) []model.Appointment {
	out := append([]model.Appointment(nil), appts...)
	for i, a := range out {
		if a.ID == id {
			out[i] = fn(a)
		}
	}
	return out
}

func mapPayments(payments []model.Payment, id string, fn func(model.Payment) model.Payment) []model.Payment {
	out := append([]model.Payment(nil), payments...)
	for i, p := range out {
		if p.ID == id {
			out[i] = fn(p)
		}
	}
	return out
}

func mapCases(cases []model.Case, id string, fn func(model.Case) model.Case) []model.Case {
	out := append([]model.Case(nil), cases...)
	for i, c := range out {
		if c.ID == id {
			out[i] = fn(c)
		}
	}
	return out
}
