package engine

import (
	"container/heap"
	"context"
	"time"

	"github.com/tahmid-rahman/counselhub/internal/model"
	"github.com/tahmid-rahman/counselhub/internal/state"
)

type deadlineKind int

const (
	deadlineApproval deadlineKind = iota
	deadlinePayment
	deadlineCasePayment
)

type deadlineEntry struct {
	at   time.Time
	kind deadlineKind
	id   string // appointment or case id
}

// deadlineHeap is a min-heap keyed by deadline. Entries are never removed
// when an entity leaves its waiting state; Sweep re-checks the breach
// predicate on pop and drops stale entries (lazy deletion), which is what
// makes sweeping idempotent at any cadence.
type deadlineHeap []deadlineEntry

func (h deadlineHeap) Len() int            { return len(h) }
func (h deadlineHeap) Less(i, j int) bool  { return h[i].at.Before(h[j].at) }
func (h deadlineHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *deadlineHeap) Push(x any)         { *h = append(*h, x.(deadlineEntry)) }
func (h *deadlineHeap) Pop() any {
	old := *h
	n := len(old)
	entry := old[n-1]
	*h = old[:n-1]
	return entry
}

// pushDeadline registers a materialized deadline. Caller holds e.mu.
func (e *Engine) pushDeadline(at time.Time, kind deadlineKind, id string) {
	heap.Push(&e.deadlines, deadlineEntry{at: at, kind: kind, id: id})
}

// indexDeadlines seeds the heap from an initial snapshot so entities already
// waiting when the engine starts still expire on time.
func (e *Engine) indexDeadlines(s state.Snapshot) {
	for _, a := range s.Appointments {
		switch {
		case a.Status == model.AppointmentPendingApproval && a.ApprovalDeadline != nil:
			e.pushDeadline(*a.ApprovalDeadline, deadlineApproval, a.ID)
		case a.Status == model.AppointmentAwaitingPayment && a.PaymentDeadline != nil:
			e.pushDeadline(*a.PaymentDeadline, deadlinePayment, a.ID)
		}
	}
	for _, c := range s.Cases {
		if c.Status == model.CasePaymentPending && c.NextPaymentDeadline != nil {
			e.pushDeadline(*c.NextPaymentDeadline, deadlineCasePayment, c.ID)
		}
	}
}

// Sweep applies every corrective transition whose deadline is at or before
// now and returns how many breaches it acted on. Because each expiry moves
// the entity out of its waiting state, re-running at the same or a later
// instant is a no-op for already-handled entities.
func (e *Engine) Sweep(ctx context.Context, now time.Time) int {
	ctx, span := e.tracer.Start(ctx, "engine.sweep")
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	breached := 0
	for e.deadlines.Len() > 0 && !e.deadlines[0].at.After(now) {
		entry := heap.Pop(&e.deadlines).(deadlineEntry)
		if e.expire(ctx, entry, now) {
			breached++
		}
	}
	return breached
}

// expire re-checks the breach predicate and applies the transition when it
// still holds. Caller holds e.mu.
func (e *Engine) expire(ctx context.Context, entry deadlineEntry, now time.Time) bool {
	switch entry.kind {
	case deadlineApproval:
		appt, ok := e.snap.Appointment(entry.id)
		if !ok || appt.Status != model.AppointmentPendingApproval ||
			appt.ApprovalDeadline == nil || now.Before(*appt.ApprovalDeadline) {
			return false
		}
		e.apply(ctx,
			state.AppointmentStatusChanged{ID: appt.ID, Status: model.AppointmentExpired, At: now},
			state.NotificationAdded{Notification: e.newNotification(now, model.NotificationWarning,
				"Appointment request expired",
				"The lawyer did not respond before the approval deadline.",
				ref{appointmentID: appt.ID})},
		)
		e.logger.Info("approval deadline breached", "appointment_id", appt.ID)
		return true

	case deadlinePayment:
		appt, ok := e.snap.Appointment(entry.id)
		if !ok || appt.Status != model.AppointmentAwaitingPayment ||
			appt.PaymentDeadline == nil || now.Before(*appt.PaymentDeadline) {
			return false
		}
		actions := []state.Action{
			state.AppointmentStatusChanged{ID: appt.ID, Status: model.AppointmentExpired, At: now},
		}
		paymentID := ""
		for _, p := range e.snap.Payments {
			if p.AppointmentID == appt.ID && p.Status == model.PaymentPending {
				paymentID = p.ID
				actions = append(actions, state.PaymentStatusChanged{ID: p.ID, Status: model.PaymentExpired, At: now})
			}
		}
		actions = append(actions, state.NotificationAdded{Notification: e.newNotification(now, model.NotificationWarning,
			"Appointment expired",
			"The consultation fee was not paid before the payment deadline.",
			ref{appointmentID: appt.ID, paymentID: paymentID})})
		e.apply(ctx, actions...)
		e.logger.Info("payment deadline breached", "appointment_id", appt.ID, "payment_id", paymentID)
		return true

	case deadlineCasePayment:
		kase, ok := e.snap.Case(entry.id)
		if !ok || kase.Status != model.CasePaymentPending ||
			kase.NextPaymentDeadline == nil || now.Before(*kase.NextPaymentDeadline) {
			return false
		}
		actions := []state.Action{
			state.CaseStatusChanged{ID: kase.ID, Status: model.CaseOverdue, At: now},
		}
		paymentID := ""
		for _, p := range e.snap.Payments {
			if p.CaseID == kase.ID && p.Status == model.PaymentPending {
				paymentID = p.ID
				actions = append(actions, state.PaymentStatusChanged{ID: p.ID, Status: model.PaymentExpired, At: now})
			}
		}
		actions = append(actions, state.NotificationAdded{Notification: e.newNotification(now, model.NotificationWarning,
			"Case payment overdue",
			"A requested case payment was not made before its deadline.",
			ref{caseID: kase.ID, paymentID: paymentID})})
		e.apply(ctx, actions...)
		e.logger.Info("case payment deadline breached", "case_id", kase.ID, "payment_id", paymentID)
		return true
	}
	return false
}
