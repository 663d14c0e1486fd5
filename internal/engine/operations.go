package engine

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tahmid-rahman/counselhub/internal/model"
	"github.com/tahmid-rahman/counselhub/internal/state"
)

type BookAppointmentInput struct {
	LawyerID        string
	LawyerName      string
	ConsultationFee decimal.Decimal
}

// BookAppointment creates a PENDING_APPROVAL appointment for the calling
// client with approvalDeadline = now + config.lawyerApprovalHours.
func (e *Engine) BookAppointment(ctx context.Context, actor model.Actor, in BookAppointmentInput) (model.Appointment, error) {
	ctx, span := e.tracer.Start(ctx, "engine.book_appointment")
	defer span.End()

	if actor.Role != model.RoleClient {
		return model.Appointment{}, denied("book appointment")
	}
	if in.LawyerID == "" {
		return model.Appointment{}, fmt.Errorf("lawyer id required: %w", ErrInvalidArgument)
	}
	if !in.ConsultationFee.IsPositive() {
		return model.Appointment{}, fmt.Errorf("consultation fee must be positive: %w", ErrInvalidArgument)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clk.Now()
	deadline := now.Add(e.snap.Config.ApprovalWindow())
	appt := model.Appointment{
		ID:               e.newID(),
		ClientID:         actor.ID,
		LawyerID:         in.LawyerID,
		LawyerName:       in.LawyerName,
		Status:           model.AppointmentPendingApproval,
		ConsultationFee:  in.ConsultationFee,
		CreatedAt:        now,
		ApprovalDeadline: &deadline,
	}
	e.apply(ctx,
		state.AppointmentCreated{Appointment: appt},
		state.NotificationAdded{Notification: e.newNotification(now, model.NotificationInfo,
			"Appointment requested",
			fmt.Sprintf("Consultation requested with %s.", in.LawyerName),
			ref{appointmentID: appt.ID})},
	)
	e.pushDeadline(deadline, deadlineApproval, appt.ID)
	e.logger.Info("appointment booked", "appointment_id", appt.ID, "lawyer_id", in.LawyerID)
	return appt, nil
}

// ApproveAppointment moves a pending appointment to APPROVED_AWAITING_PAYMENT
// and creates the linked PENDING consultation-fee payment, both due at
// now + config.clientPaymentMinutes. Only the assigned lawyer may approve.
func (e *Engine) ApproveAppointment(ctx context.Context, actor model.Actor, id string) (model.Appointment, error) {
	ctx, span := e.tracer.Start(ctx, "engine.approve_appointment")
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	appt, ok := e.snap.Appointment(id)
	if !ok {
		return model.Appointment{}, notFound("appointment", id)
	}
	if actor.Role != model.RoleLawyer || actor.ID != appt.LawyerID {
		return model.Appointment{}, denied("approve appointment")
	}
	if appt.Status != model.AppointmentPendingApproval {
		return model.Appointment{}, invalidTransition("appointment", id, appt.Status, model.AppointmentAwaitingPayment)
	}
	now := e.clk.Now()
	if appt.ApprovalDeadline != nil && !now.Before(*appt.ApprovalDeadline) {
		return model.Appointment{}, fmt.Errorf("appointment %q approval window elapsed: %w", id, ErrDeadlinePassed)
	}

	paymentDeadline := now.Add(e.snap.Config.PaymentWindow())
	payment := model.Payment{
		ID:            e.newID(),
		AppointmentID: appt.ID,
		ClientID:      appt.ClientID,
		LawyerID:      appt.LawyerID,
		Amount:        appt.ConsultationFee,
		Type:          model.PaymentConsultationFee,
		Status:        model.PaymentPending,
		CreatedAt:     now,
		Deadline:      paymentDeadline,
	}
	e.apply(ctx,
		state.AppointmentStatusChanged{
			ID:              appt.ID,
			Status:          model.AppointmentAwaitingPayment,
			At:              now,
			PaymentDeadline: &paymentDeadline,
		},
		state.PaymentAdded{Payment: payment},
		state.NotificationAdded{Notification: e.newNotification(now, model.NotificationSuccess,
			"Appointment approved",
			"The lawyer approved your request. Pay the consultation fee to confirm.",
			ref{appointmentID: appt.ID, paymentID: payment.ID})},
	)
	e.pushDeadline(paymentDeadline, deadlinePayment, appt.ID)
	e.logger.Info("appointment approved", "appointment_id", appt.ID, "payment_id", payment.ID)

	updated, _ := e.snap.Appointment(id)
	return updated, nil
}

// DeclineAppointment is the assigned lawyer rejecting a pending request.
func (e *Engine) DeclineAppointment(ctx context.Context, actor model.Actor, id string) (model.Appointment, error) {
	ctx, span := e.tracer.Start(ctx, "engine.decline_appointment")
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	appt, ok := e.snap.Appointment(id)
	if !ok {
		return model.Appointment{}, notFound("appointment", id)
	}
	if actor.Role != model.RoleLawyer || actor.ID != appt.LawyerID {
		return model.Appointment{}, denied("decline appointment")
	}
	if appt.Status != model.AppointmentPendingApproval {
		return model.Appointment{}, invalidTransition("appointment", id, appt.Status, model.AppointmentDeclined)
	}

	now := e.clk.Now()
	e.apply(ctx,
		state.AppointmentStatusChanged{ID: appt.ID, Status: model.AppointmentDeclined, At: now},
		state.NotificationAdded{Notification: e.newNotification(now, model.NotificationWarning,
			"Appointment declined",
			"The lawyer declined this consultation request.",
			ref{appointmentID: appt.ID})},
	)
	e.logger.Info("appointment declined", "appointment_id", appt.ID)

	updated, _ := e.snap.Appointment(id)
	return updated, nil
}

// CancelAppointment cancels a confirmed appointment. Either party may cancel.
func (e *Engine) CancelAppointment(ctx context.Context, actor model.Actor, id string) (model.Appointment, error) {
	ctx, span := e.tracer.Start(ctx, "engine.cancel_appointment")
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	appt, ok := e.snap.Appointment(id)
	if !ok {
		return model.Appointment{}, notFound("appointment", id)
	}
	if !isAppointmentParty(actor, appt) {
		return model.Appointment{}, denied("cancel appointment")
	}
	if appt.Status != model.AppointmentConfirmed {
		return model.Appointment{}, invalidTransition("appointment", id, appt.Status, model.AppointmentCancelled)
	}

	now := e.clk.Now()
	e.apply(ctx,
		state.AppointmentStatusChanged{ID: appt.ID, Status: model.AppointmentCancelled, At: now},
		state.NotificationAdded{Notification: e.newNotification(now, model.NotificationWarning,
			"Appointment cancelled",
			"A confirmed consultation was cancelled.",
			ref{appointmentID: appt.ID})},
	)
	e.logger.Info("appointment cancelled", "appointment_id", appt.ID, "by", actor.ID)

	updated, _ := e.snap.Appointment(id)
	return updated, nil
}

// CompleteAppointment marks a confirmed consultation as done.
func (e *Engine) CompleteAppointment(ctx context.Context, actor model.Actor, id string) (model.Appointment, error) {
	ctx, span := e.tracer.Start(ctx, "engine.complete_appointment")
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	appt, ok := e.snap.Appointment(id)
	if !ok {
		return model.Appointment{}, notFound("appointment", id)
	}
	if actor.Role != model.RoleLawyer || actor.ID != appt.LawyerID {
		return model.Appointment{}, denied("complete appointment")
	}
	if appt.Status != model.AppointmentConfirmed {
		return model.Appointment{}, invalidTransition("appointment", id, appt.Status, model.AppointmentCompleted)
	}

	now := e.clk.Now()
	e.apply(ctx,
		state.AppointmentStatusChanged{ID: appt.ID, Status: model.AppointmentCompleted, At: now},
		state.NotificationAdded{Notification: e.newNotification(now, model.NotificationSuccess,
			"Consultation completed",
			"The consultation took place. A case can now be opened from it.",
			ref{appointmentID: appt.ID})},
	)
	e.logger.Info("appointment completed", "appointment_id", appt.ID)

	updated, _ := e.snap.Appointment(id)
	return updated, nil
}

// ConfirmPayment settles a pending payment. Confirming an appointment-linked
// payment confirms the appointment; confirming a case-linked payment returns
// the case to ACTIVE, increments paidAmount, and clears the payment deadline.
// Re-confirming an already successful payment is an idempotent no-op.
func (e *Engine) ConfirmPayment(ctx context.Context, actor model.Actor, id string) (model.Payment, error) {
	ctx, span := e.tracer.Start(ctx, "engine.confirm_payment")
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	payment, ok := e.snap.Payment(id)
	if !ok {
		return model.Payment{}, notFound("payment", id)
	}
	if actor.Role != model.RoleClient || actor.ID != payment.ClientID {
		return model.Payment{}, denied("confirm payment")
	}
	if payment.Status == model.PaymentSuccess {
		return payment, nil
	}
	if payment.Status != model.PaymentPending {
		return model.Payment{}, invalidTransition("payment", id, payment.Status, model.PaymentSuccess)
	}
	now := e.clk.Now()
	if !now.Before(payment.Deadline) {
		return model.Payment{}, fmt.Errorf("payment %q window elapsed: %w", id, ErrDeadlinePassed)
	}

	actions := []state.Action{
		state.PaymentStatusChanged{ID: payment.ID, Status: model.PaymentSuccess, At: now},
	}
	notifRef := ref{paymentID: payment.ID}

	if payment.AppointmentID != "" {
		if appt, found := e.snap.Appointment(payment.AppointmentID); found && appt.Status == model.AppointmentAwaitingPayment {
			actions = append(actions, state.AppointmentStatusChanged{
				ID:     appt.ID,
				Status: model.AppointmentConfirmed,
				At:     now,
			})
			notifRef.appointmentID = appt.ID
		}
	}
	if payment.CaseID != "" {
		if kase, found := e.snap.Case(payment.CaseID); found {
			fees := state.CaseFeesChanged{
				ID:         kase.ID,
				TotalFees:  kase.TotalFees,
				PaidAmount: kase.PaidAmount.Add(payment.Amount),
			}
			actions = append(actions, fees)
			if kase.Status == model.CasePaymentPending {
				actions = append(actions, state.CaseStatusChanged{ID: kase.ID, Status: model.CaseActive, At: now})
			}
			notifRef.caseID = kase.ID
		}
	}

	actions = append(actions, state.NotificationAdded{Notification: e.newNotification(now, model.NotificationSuccess,
		"Payment received",
		fmt.Sprintf("Payment of %s confirmed.", payment.Amount.StringFixed(2)),
		notifRef)})
	e.apply(ctx, actions...)
	e.logger.Info("payment confirmed", "payment_id", payment.ID, "amount", payment.Amount.String())

	updated, _ := e.snap.Payment(id)
	return updated, nil
}

// RefundPayment is the administrative exit from PENDING.
func (e *Engine) RefundPayment(ctx context.Context, actor model.Actor, id string) (model.Payment, error) {
	ctx, span := e.tracer.Start(ctx, "engine.refund_payment")
	defer span.End()

	if actor.Role != model.RoleAdmin {
		return model.Payment{}, denied("refund payment")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	payment, ok := e.snap.Payment(id)
	if !ok {
		return model.Payment{}, notFound("payment", id)
	}
	if payment.Status != model.PaymentPending {
		return model.Payment{}, invalidTransition("payment", id, payment.Status, model.PaymentRefunded)
	}

	now := e.clk.Now()
	e.apply(ctx,
		state.PaymentStatusChanged{ID: payment.ID, Status: model.PaymentRefunded, At: now},
		state.NotificationAdded{Notification: e.newNotification(now, model.NotificationInfo,
			"Payment refunded",
			"An administrator refunded a pending payment.",
			ref{paymentID: payment.ID})},
	)
	e.logger.Info("payment refunded", "payment_id", payment.ID)

	updated, _ := e.snap.Payment(id)
	return updated, nil
}

// StartCase opens an ACTIVE case from a confirmed or completed consultation,
// carrying over the parties and the consultation fee as the opening books.
func (e *Engine) StartCase(ctx context.Context, actor model.Actor, appointmentID string) (model.Case, error) {
	ctx, span := e.tracer.Start(ctx, "engine.start_case")
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	appt, ok := e.snap.Appointment(appointmentID)
	if !ok {
		return model.Case{}, notFound("appointment", appointmentID)
	}
	if actor.Role != model.RoleLawyer || actor.ID != appt.LawyerID {
		return model.Case{}, denied("start case")
	}
	if appt.Status != model.AppointmentConfirmed && appt.Status != model.AppointmentCompleted {
		return model.Case{}, invalidTransition("appointment", appointmentID, appt.Status, "case start")
	}
	for _, c := range e.snap.Cases {
		if c.AppointmentID == appointmentID {
			return model.Case{}, fmt.Errorf("appointment %q already has case %q: %w", appointmentID, c.ID, ErrInvalidTransition)
		}
	}

	now := e.clk.Now()
	kase := model.Case{
		ID:            e.newID(),
		AppointmentID: appt.ID,
		ClientID:      appt.ClientID,
		LawyerID:      appt.LawyerID,
		Status:        model.CaseActive,
		TotalFees:     appt.ConsultationFee,
		PaidAmount:    appt.ConsultationFee,
		Progress:      0,
		CreatedAt:     now,
	}
	e.apply(ctx,
		state.CaseAdded{Case: kase},
		state.NotificationAdded{Notification: e.newNotification(now, model.NotificationSuccess,
			"Case opened",
			fmt.Sprintf("An engagement with %s is now active.", appt.LawyerName),
			ref{appointmentID: appt.ID, caseID: kase.ID})},
	)
	e.logger.Info("case started", "case_id", kase.ID, "appointment_id", appt.ID)
	return kase, nil
}

// RequestCasePayment bills an additional case fee: the case moves to
// PAYMENT_PENDING with deadline now + config.casePaymentDays and totalFees
// grows by the requested amount. The only producer of PAYMENT_PENDING.
func (e *Engine) RequestCasePayment(ctx context.Context, actor model.Actor, caseID string, amount decimal.Decimal, description string) (model.Payment, error) {
	ctx, span := e.tracer.Start(ctx, "engine.request_case_payment")
	defer span.End()

	if !amount.IsPositive() {
		return model.Payment{}, fmt.Errorf("amount must be positive: %w", ErrInvalidArgument)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	kase, ok := e.snap.Case(caseID)
	if !ok {
		return model.Payment{}, notFound("case", caseID)
	}
	if actor.Role != model.RoleLawyer || actor.ID != kase.LawyerID {
		return model.Payment{}, denied("request case payment")
	}
	if kase.Status != model.CaseActive {
		return model.Payment{}, invalidTransition("case", caseID, kase.Status, model.CasePaymentPending)
	}

	now := e.clk.Now()
	deadline := now.Add(e.snap.Config.CasePaymentWindow())
	payment := model.Payment{
		ID:          e.newID(),
		CaseID:      kase.ID,
		ClientID:    kase.ClientID,
		LawyerID:    kase.LawyerID,
		Amount:      amount,
		Type:        model.PaymentCaseFee,
		Status:      model.PaymentPending,
		Description: description,
		CreatedAt:   now,
		Deadline:    deadline,
	}
	e.apply(ctx,
		state.PaymentAdded{Payment: payment},
		state.CaseStatusChanged{ID: kase.ID, Status: model.CasePaymentPending, At: now},
		state.CaseFeesChanged{
			ID:                  kase.ID,
			TotalFees:           kase.TotalFees.Add(amount),
			PaidAmount:          kase.PaidAmount,
			NextPaymentDeadline: &deadline,
		},
		state.NotificationAdded{Notification: e.newNotification(now, model.NotificationInfo,
			"Case payment requested",
			fmt.Sprintf("%s: %s due.", description, amount.StringFixed(2)),
			ref{caseID: kase.ID, paymentID: payment.ID})},
	)
	e.pushDeadline(deadline, deadlineCasePayment, kase.ID)
	e.logger.Info("case payment requested", "case_id", kase.ID, "payment_id", payment.ID, "amount", amount.String())
	return payment, nil
}

// CloseCase resolves an active or overdue case. Pending counterpart replies
// are cancelled so nothing lands on a closed case.
func (e *Engine) CloseCase(ctx context.Context, actor model.Actor, caseID string) (model.Case, error) {
	ctx, span := e.tracer.Start(ctx, "engine.close_case")
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	kase, ok := e.snap.Case(caseID)
	if !ok {
		return model.Case{}, notFound("case", caseID)
	}
	if !canResolveCase(actor, kase) {
		return model.Case{}, denied("close case")
	}
	if !kase.Status.CanTransition(model.CaseClosed) {
		return model.Case{}, invalidTransition("case", caseID, kase.Status, model.CaseClosed)
	}

	now := e.clk.Now()
	e.apply(ctx,
		state.CaseStatusChanged{ID: kase.ID, Status: model.CaseClosed, At: now},
		state.NotificationAdded{Notification: e.newNotification(now, model.NotificationSuccess,
			"Case closed",
			"The engagement was closed.",
			ref{caseID: kase.ID})},
	)
	e.cancelReply(caseID)
	e.logger.Info("case closed", "case_id", kase.ID)

	updated, _ := e.snap.Case(caseID)
	return updated, nil
}

// TerminateCase ends an engagement abnormally, recording the reason.
func (e *Engine) TerminateCase(ctx context.Context, actor model.Actor, caseID, reason string) (model.Case, error) {
	ctx, span := e.tracer.Start(ctx, "engine.terminate_case")
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	kase, ok := e.snap.Case(caseID)
	if !ok {
		return model.Case{}, notFound("case", caseID)
	}
	if !canResolveCase(actor, kase) {
		return model.Case{}, denied("terminate case")
	}
	if !kase.Status.CanTransition(model.CaseTerminated) {
		return model.Case{}, invalidTransition("case", caseID, kase.Status, model.CaseTerminated)
	}

	now := e.clk.Now()
	e.apply(ctx,
		state.CaseStatusChanged{ID: kase.ID, Status: model.CaseTerminated, At: now, Reason: reason},
		state.NotificationAdded{Notification: e.newNotification(now, model.NotificationError,
			"Case terminated",
			fmt.Sprintf("The engagement was terminated: %s.", reason),
			ref{caseID: kase.ID})},
	)
	e.cancelReply(caseID)
	e.logger.Info("case terminated", "case_id", kase.ID, "reason", reason)

	updated, _ := e.snap.Case(caseID)
	return updated, nil
}

// SetCaseProgress records the lawyer's progress estimate (0-100). Monotonic
// by convention only; the engine does not reject a step back.
func (e *Engine) SetCaseProgress(ctx context.Context, actor model.Actor, caseID string, progress int) (model.Case, error) {
	ctx, span := e.tracer.Start(ctx, "engine.set_case_progress")
	defer span.End()

	if progress < 0 || progress > 100 {
		return model.Case{}, fmt.Errorf("progress must be 0-100: %w", ErrInvalidArgument)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	kase, ok := e.snap.Case(caseID)
	if !ok {
		return model.Case{}, notFound("case", caseID)
	}
	if actor.Role != model.RoleLawyer || actor.ID != kase.LawyerID {
		return model.Case{}, denied("set case progress")
	}
	if kase.Status.Terminal() {
		return model.Case{}, invalidTransition("case", caseID, kase.Status, "progress update")
	}

	e.apply(ctx, state.CaseProgressSet{CaseID: kase.ID, Progress: progress})

	updated, _ := e.snap.Case(caseID)
	return updated, nil
}

// AddCaseDocument attaches a document record to an open case.
func (e *Engine) AddCaseDocument(ctx context.Context, actor model.Actor, caseID, name string) (model.Document, error) {
	ctx, span := e.tracer.Start(ctx, "engine.add_case_document")
	defer span.End()

	if name == "" {
		return model.Document{}, fmt.Errorf("document name required: %w", ErrInvalidArgument)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	kase, ok := e.snap.Case(caseID)
	if !ok {
		return model.Document{}, notFound("case", caseID)
	}
	if !isCaseParty(actor, kase) {
		return model.Document{}, denied("add case document")
	}
	if kase.Status.Terminal() {
		return model.Document{}, invalidTransition("case", caseID, kase.Status, "document upload")
	}

	now := e.clk.Now()
	doc := model.Document{
		ID:         e.newID(),
		Name:       name,
		UploadedBy: actor.ID,
		UploadedAt: now,
	}
	e.apply(ctx,
		state.DocumentAddedToCase{CaseID: kase.ID, Document: doc},
		state.NotificationAdded{Notification: e.newNotification(now, model.NotificationInfo,
			"Document added",
			fmt.Sprintf("%q was added to the case file.", name),
			ref{caseID: kase.ID})},
	)
	return doc, nil
}

// OverrideAppointmentStatus is the administrative escape hatch: it sets the
// status directly, bypassing the edge graph, and is logged distinctly.
func (e *Engine) OverrideAppointmentStatus(ctx context.Context, actor model.Actor, id string, status model.AppointmentStatus) (model.Appointment, error) {
	ctx, span := e.tracer.Start(ctx, "engine.override_appointment_status")
	defer span.End()

	if actor.Role != model.RoleAdmin {
		return model.Appointment{}, denied("override appointment status")
	}
	if !status.Valid() {
		return model.Appointment{}, fmt.Errorf("unknown appointment status %q: %w", status, ErrInvalidArgument)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	appt, ok := e.snap.Appointment(id)
	if !ok {
		return model.Appointment{}, notFound("appointment", id)
	}

	now := e.clk.Now()
	change := state.AppointmentStatusChanged{ID: appt.ID, Status: status, At: now}
	if !status.Terminal() {
		// A forced move back into a waiting state keeps whatever deadlines
		// already existed; overrides never mint new ones.
		change.ApprovalDeadline = appt.ApprovalDeadline
		change.PaymentDeadline = appt.PaymentDeadline
	}
	e.apply(ctx,
		change,
		state.NotificationAdded{Notification: e.newNotification(now, model.NotificationWarning,
			"Admin override",
			fmt.Sprintf("Appointment status forced from %s to %s by an administrator.", appt.Status, status),
			ref{appointmentID: appt.ID})},
	)
	e.logger.Warn("admin override", "entity", "appointment", "id", appt.ID, "from", appt.Status, "to", status, "admin", actor.ID)

	updated, _ := e.snap.Appointment(id)
	return updated, nil
}

// OverrideCaseStatus force-sets a case status, bypassing the edge graph.
func (e *Engine) OverrideCaseStatus(ctx context.Context, actor model.Actor, id string, status model.CaseStatus) (model.Case, error) {
	ctx, span := e.tracer.Start(ctx, "engine.override_case_status")
	defer span.End()

	if actor.Role != model.RoleAdmin {
		return model.Case{}, denied("override case status")
	}
	if !status.Valid() {
		return model.Case{}, fmt.Errorf("unknown case status %q: %w", status, ErrInvalidArgument)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	kase, ok := e.snap.Case(id)
	if !ok {
		return model.Case{}, notFound("case", id)
	}

	now := e.clk.Now()
	e.apply(ctx,
		state.CaseStatusChanged{ID: kase.ID, Status: status, At: now},
		state.NotificationAdded{Notification: e.newNotification(now, model.NotificationWarning,
			"Admin override",
			fmt.Sprintf("Case status forced from %s to %s by an administrator.", kase.Status, status),
			ref{caseID: kase.ID})},
	)
	if status.Terminal() {
		e.cancelReply(id)
	}
	e.logger.Warn("admin override", "entity", "case", "id", kase.ID, "from", kase.Status, "to", status, "admin", actor.ID)

	updated, _ := e.snap.Case(id)
	return updated, nil
}

// UpdateConfig merges a timing-policy patch. It never touches a deadline
// already materialized on an entity; new values apply only to future
// waiting periods.
func (e *Engine) UpdateConfig(ctx context.Context, actor model.Actor, patch model.ConfigPatch) (model.Config, error) {
	ctx, span := e.tracer.Start(ctx, "engine.update_config")
	defer span.End()

	if actor.Role != model.RoleAdmin {
		return model.Config{}, denied("update config")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.snap.Config
	if patch.LawyerApprovalHours != nil {
		if *patch.LawyerApprovalHours <= 0 || *patch.LawyerApprovalHours > 24*365 {
			return model.Config{}, fmt.Errorf("lawyerApprovalHours %d: %w", *patch.LawyerApprovalHours, ErrConfigOutOfRange)
		}
		next.LawyerApprovalHours = *patch.LawyerApprovalHours
	}
	if patch.ClientPaymentMinutes != nil {
		if *patch.ClientPaymentMinutes <= 0 || *patch.ClientPaymentMinutes > 60*24*365 {
			return model.Config{}, fmt.Errorf("clientPaymentMinutes %d: %w", *patch.ClientPaymentMinutes, ErrConfigOutOfRange)
		}
		next.ClientPaymentMinutes = *patch.ClientPaymentMinutes
	}
	if patch.CasePaymentDays != nil {
		if *patch.CasePaymentDays <= 0 || *patch.CasePaymentDays > 365 {
			return model.Config{}, fmt.Errorf("casePaymentDays %d: %w", *patch.CasePaymentDays, ErrConfigOutOfRange)
		}
		next.CasePaymentDays = *patch.CasePaymentDays
	}

	e.apply(ctx, state.ConfigUpdated{Config: next})
	e.logger.Info("timing policy updated",
		"approval_hours", next.LawyerApprovalHours,
		"payment_minutes", next.ClientPaymentMinutes,
		"case_payment_days", next.CasePaymentDays,
	)
	return next, nil
}

// DismissNotification removes one feed entry. Any role may dismiss.
func (e *Engine) DismissNotification(ctx context.Context, _ model.Actor, id string) error {
	ctx, span := e.tracer.Start(ctx, "engine.dismiss_notification")
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.snap.Notification(id); !ok {
		return notFound("notification", id)
	}
	e.apply(ctx, state.NotificationDismissed{ID: id})
	return nil
}

// ClearNotifications empties the feed.
func (e *Engine) ClearNotifications(ctx context.Context, actor model.Actor) error {
	ctx, span := e.tracer.Start(ctx, "engine.clear_notifications")
	defer span.End()

	if actor.Role != model.RoleAdmin {
		return denied("clear notifications")
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.apply(ctx, state.NotificationsCleared{})
	return nil
}

func isAppointmentParty(actor model.Actor, appt model.Appointment) bool {
	switch actor.Role {
	case model.RoleClient:
		return actor.ID == appt.ClientID
	case model.RoleLawyer:
		return actor.ID == appt.LawyerID
	}
	return false
}

func isCaseParty(actor model.Actor, kase model.Case) bool {
	switch actor.Role {
	case model.RoleClient:
		return actor.ID == kase.ClientID
	case model.RoleLawyer:
		return actor.ID == kase.LawyerID
	}
	return false
}

func canResolveCase(actor model.Actor, kase model.Case) bool {
	if actor.Role == model.RoleAdmin {
		return true
	}
	return actor.Role == model.RoleLawyer && actor.ID == kase.LawyerID
}
