package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tahmid-rahman/counselhub/internal/clock"
	"github.com/tahmid-rahman/counselhub/internal/model"
	"github.com/tahmid-rahman/counselhub/internal/state"
)

var (
	client = model.Actor{ID: "client-1", Role: model.RoleClient}
	lawyer = model.Actor{ID: "lawyer-1", Role: model.RoleLawyer}
	admin  = model.Actor{ID: "admin-1", Role: model.RoleAdmin}

	testStart = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
)

func newTestEngine(t *testing.T) (*Engine, *clock.Manual) {
	t.Helper()
	clk := clock.NewManual(testStart)
	e := New(state.Snapshot{Config: model.Config{
		LawyerApprovalHours:  24,
		ClientPaymentMinutes: 30,
		CasePaymentDays:      7,
	}},
		WithClock(clk),
		WithReplyDelay(func() time.Duration { return 3 * time.Second }),
	)
	t.Cleanup(e.Close)
	return e, clk
}

func book(t *testing.T, e *Engine, fee int64) model.Appointment {
	t.Helper()
	appt, err := e.BookAppointment(context.Background(), client, BookAppointmentInput{
		LawyerID:        lawyer.ID,
		LawyerName:      "Ayesha Rahman",
		ConsultationFee: decimal.NewFromInt(fee),
	})
	if err != nil {
		t.Fatalf("BookAppointment: %v", err)
	}
	return appt
}

func consultationPayment(t *testing.T, e *Engine, appointmentID string) model.Payment {
	t.Helper()
	for _, p := range e.Snapshot().Payments {
		if p.AppointmentID == appointmentID {
			return p
		}
	}
	t.Fatalf("no payment linked to appointment %s", appointmentID)
	return model.Payment{}
}

// confirmedAppointment walks book -> approve -> pay.
func confirmedAppointment(t *testing.T, e *Engine) model.Appointment {
	t.Helper()
	ctx := context.Background()
	appt := book(t, e, 5000)
	if _, err := e.ApproveAppointment(ctx, lawyer, appt.ID); err != nil {
		t.Fatalf("ApproveAppointment: %v", err)
	}
	payment := consultationPayment(t, e, appt.ID)
	if _, err := e.ConfirmPayment(ctx, client, payment.ID); err != nil {
		t.Fatalf("ConfirmPayment: %v", err)
	}
	updated, _ := e.Snapshot().Appointment(appt.ID)
	return updated
}

func activeCase(t *testing.T, e *Engine) model.Case {
	t.Helper()
	appt := confirmedAppointment(t, e)
	kase, err := e.StartCase(context.Background(), lawyer, appt.ID)
	if err != nil {
		t.Fatalf("StartCase: %v", err)
	}
	return kase
}

func TestBookAppointment(t *testing.T) {
	e, _ := newTestEngine(t)

	appt := book(t, e, 5000)

	if appt.Status != model.AppointmentPendingApproval {
		t.Fatalf("status = %s, want PENDING_APPROVAL", appt.Status)
	}
	if appt.ApprovalDeadline == nil || !appt.ApprovalDeadline.Equal(appt.CreatedAt.Add(24*time.Hour)) {
		t.Fatalf("approvalDeadline = %v, want createdAt+24h", appt.ApprovalDeadline)
	}
	if appt.PaymentDeadline != nil {
		t.Fatal("paymentDeadline must not be set yet")
	}

	snap := e.Snapshot()
	if len(snap.Notifications) != 1 || snap.Notifications[0].Type != model.NotificationInfo {
		t.Fatalf("expected one info notification, got %v", snap.Notifications)
	}
	if snap.Notifications[0].AppointmentID != appt.ID {
		t.Fatal("notification should reference the appointment")
	}
}

func TestBookAppointmentRejectsNonClient(t *testing.T) {
	e, _ := newTestEngine(t)
	_, err := e.BookAppointment(context.Background(), lawyer, BookAppointmentInput{
		LawyerID:        lawyer.ID,
		ConsultationFee: decimal.NewFromInt(100),
	})
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("err = %v, want ErrPermissionDenied", err)
	}
	if snap := e.Snapshot(); len(snap.Appointments) != 0 || len(snap.Notifications) != 0 {
		t.Fatal("rejected operation must not mutate the store")
	}
}

func TestApproveAppointment(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()
	appt := book(t, e, 5000)

	approved, err := e.ApproveAppointment(ctx, lawyer, appt.ID)
	if err != nil {
		t.Fatalf("ApproveAppointment: %v", err)
	}
	if approved.Status != model.AppointmentAwaitingPayment {
		t.Fatalf("status = %s, want APPROVED_AWAITING_PAYMENT", approved.Status)
	}
	if approved.ApprovalDeadline != nil {
		t.Fatal("approvalDeadline must clear on approval")
	}
	if approved.PaymentDeadline == nil || !approved.PaymentDeadline.Equal(testStart.Add(30*time.Minute)) {
		t.Fatalf("paymentDeadline = %v, want now+30m", approved.PaymentDeadline)
	}

	payment := consultationPayment(t, e, appt.ID)
	if payment.Status != model.PaymentPending {
		t.Fatalf("payment status = %s, want PENDING", payment.Status)
	}
	if payment.Type != model.PaymentConsultationFee {
		t.Fatalf("payment type = %s", payment.Type)
	}
	if !payment.Amount.Equal(decimal.NewFromInt(5000)) {
		t.Fatalf("payment amount = %s, want 5000", payment.Amount)
	}
}

func TestApproveAppointmentPreconditions(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()
	appt := book(t, e, 5000)

	if _, err := e.ApproveAppointment(ctx, client, appt.ID); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("client approval: err = %v, want ErrPermissionDenied", err)
	}
	other := model.Actor{ID: "lawyer-2", Role: model.RoleLawyer}
	if _, err := e.ApproveAppointment(ctx, other, appt.ID); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("unassigned lawyer: err = %v, want ErrPermissionDenied", err)
	}
	if _, err := e.ApproveAppointment(ctx, lawyer, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing id: err = %v, want ErrNotFound", err)
	}

	if _, err := e.DeclineAppointment(ctx, lawyer, appt.ID); err != nil {
		t.Fatalf("DeclineAppointment: %v", err)
	}
	if _, err := e.ApproveAppointment(ctx, lawyer, appt.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("approving a declined appointment: err = %v, want ErrInvalidTransition", err)
	}
}

func TestApproveAfterDeadlineIsRejected(t *testing.T) {
	e, clk := newTestEngine(t)
	appt := book(t, e, 5000)

	clk.Advance(25 * time.Hour)

	notifs := len(e.Snapshot().Notifications)
	if _, err := e.ApproveAppointment(context.Background(), lawyer, appt.ID); !errors.Is(err, ErrDeadlinePassed) {
		t.Fatalf("err = %v, want ErrDeadlinePassed", err)
	}
	if len(e.Snapshot().Notifications) != notifs {
		t.Fatal("rejected approval must not emit a notification")
	}
}

func TestConfirmPaymentConfirmsAppointment(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()
	appt := book(t, e, 5000)
	if _, err := e.ApproveAppointment(ctx, lawyer, appt.ID); err != nil {
		t.Fatal(err)
	}
	payment := consultationPayment(t, e, appt.ID)

	paid, err := e.ConfirmPayment(ctx, client, payment.ID)
	if err != nil {
		t.Fatalf("ConfirmPayment: %v", err)
	}
	if paid.Status != model.PaymentSuccess {
		t.Fatalf("payment status = %s, want SUCCESS", paid.Status)
	}
	if paid.PaidAt == nil {
		t.Fatal("paidAt must be set on SUCCESS")
	}

	updated, _ := e.Snapshot().Appointment(appt.ID)
	if updated.Status != model.AppointmentConfirmed {
		t.Fatalf("appointment status = %s, want CONFIRMED", updated.Status)
	}
	if updated.PaymentDeadline != nil || updated.ApprovalDeadline != nil {
		t.Fatal("deadlines must be nil once past the waiting states")
	}
}

func TestConfirmPaymentIsIdempotentOnSuccess(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()
	appt := book(t, e, 5000)
	if _, err := e.ApproveAppointment(ctx, lawyer, appt.ID); err != nil {
		t.Fatal(err)
	}
	payment := consultationPayment(t, e, appt.ID)
	if _, err := e.ConfirmPayment(ctx, client, payment.ID); err != nil {
		t.Fatal(err)
	}

	before := e.Snapshot()
	again, err := e.ConfirmPayment(ctx, client, payment.ID)
	if err != nil {
		t.Fatalf("re-confirming SUCCESS should be a no-op, got %v", err)
	}
	if again.Status != model.PaymentSuccess {
		t.Fatalf("status = %s", again.Status)
	}
	after := e.Snapshot()
	if len(after.Notifications) != len(before.Notifications) {
		t.Fatal("idempotent re-confirm must not emit a notification")
	}
}

func TestConfirmPaymentRequiresOwningClient(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()
	appt := book(t, e, 5000)
	if _, err := e.ApproveAppointment(ctx, lawyer, appt.ID); err != nil {
		t.Fatal(err)
	}
	payment := consultationPayment(t, e, appt.ID)

	stranger := model.Actor{ID: "client-2", Role: model.RoleClient}
	if _, err := e.ConfirmPayment(ctx, stranger, payment.ID); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("err = %v, want ErrPermissionDenied", err)
	}
}

func TestStartCaseCarriesOverIdentityAndFee(t *testing.T) {
	e, _ := newTestEngine(t)
	appt := confirmedAppointment(t, e)

	kase, err := e.StartCase(context.Background(), lawyer, appt.ID)
	if err != nil {
		t.Fatalf("StartCase: %v", err)
	}
	if kase.Status != model.CaseActive {
		t.Fatalf("status = %s, want ACTIVE", kase.Status)
	}
	if kase.ClientID != appt.ClientID || kase.LawyerID != appt.LawyerID {
		t.Fatal("case must carry over the parties")
	}
	if !kase.PaidAmount.Equal(decimal.NewFromInt(5000)) {
		t.Fatalf("paidAmount = %s, want the consultation fee", kase.PaidAmount)
	}

	if _, err := e.StartCase(context.Background(), lawyer, appt.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("second case for one appointment: err = %v, want ErrInvalidTransition", err)
	}
}

func TestRequestCasePayment(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()
	kase := activeCase(t, e)

	payment, err := e.RequestCasePayment(ctx, lawyer, kase.ID, decimal.NewFromInt(15000), "Court filing fee")
	if err != nil {
		t.Fatalf("RequestCasePayment: %v", err)
	}
	if payment.Type != model.PaymentCaseFee || payment.Status != model.PaymentPending {
		t.Fatalf("payment = %+v", payment)
	}
	if !payment.Deadline.Equal(testStart.Add(7 * 24 * time.Hour)) {
		t.Fatalf("deadline = %s, want now + 7d", payment.Deadline)
	}

	updated, _ := e.Snapshot().Case(kase.ID)
	if updated.Status != model.CasePaymentPending {
		t.Fatalf("case status = %s, want PAYMENT_PENDING", updated.Status)
	}
	if !updated.TotalFees.Equal(kase.TotalFees.Add(decimal.NewFromInt(15000))) {
		t.Fatalf("totalFees = %s", updated.TotalFees)
	}
	if updated.NextPaymentDeadline == nil || !updated.NextPaymentDeadline.Equal(payment.Deadline) {
		t.Fatal("nextPaymentDeadline must match the payment deadline")
	}

	// A second request while one is pending is off the edge graph.
	if _, err := e.RequestCasePayment(ctx, lawyer, kase.ID, decimal.NewFromInt(1), "again"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}
}

func TestConfirmCasePaymentCascade(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()
	kase := activeCase(t, e)

	payment, err := e.RequestCasePayment(ctx, lawyer, kase.ID, decimal.NewFromInt(15000), "Court filing fee")
	if err != nil {
		t.Fatal(err)
	}
	pending, _ := e.Snapshot().Case(kase.ID)

	if _, err := e.ConfirmPayment(ctx, client, payment.ID); err != nil {
		t.Fatalf("ConfirmPayment: %v", err)
	}

	updated, _ := e.Snapshot().Case(kase.ID)
	if updated.Status != model.CaseActive {
		t.Fatalf("case status = %s, want ACTIVE again", updated.Status)
	}
	if !updated.PaidAmount.Equal(pending.PaidAmount.Add(payment.Amount)) {
		t.Fatalf("paidAmount = %s, want +%s exactly", updated.PaidAmount, payment.Amount)
	}
	if !updated.TotalFees.Equal(pending.TotalFees) {
		t.Fatal("totalFees must not change on payment confirmation")
	}
	if updated.NextPaymentDeadline != nil {
		t.Fatal("nextPaymentDeadline must clear on payment")
	}
}

func TestCloseAndTerminateCase(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()
	kase := activeCase(t, e)

	closed, err := e.CloseCase(ctx, lawyer, kase.ID)
	if err != nil {
		t.Fatalf("CloseCase: %v", err)
	}
	if closed.Status != model.CaseClosed || closed.Progress != 100 || closed.ClosedAt == nil {
		t.Fatalf("closed = %+v", closed)
	}
	if _, err := e.CloseCase(ctx, lawyer, kase.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("closing twice: err = %v, want ErrInvalidTransition", err)
	}
}

func TestTerminateRecordsReason(t *testing.T) {
	e, _ := newTestEngine(t)
	kase := activeCase(t, e)

	terminated, err := e.TerminateCase(context.Background(), admin, kase.ID, "conflict of interest")
	if err != nil {
		t.Fatalf("TerminateCase: %v", err)
	}
	if terminated.Status != model.CaseTerminated || terminated.TerminationReason != "conflict of interest" {
		t.Fatalf("terminated = %+v", terminated)
	}
}

func TestCloseWhilePaymentPendingRejected(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()
	kase := activeCase(t, e)
	if _, err := e.RequestCasePayment(ctx, lawyer, kase.ID, decimal.NewFromInt(100), "fee"); err != nil {
		t.Fatal(err)
	}
	if _, err := e.CloseCase(ctx, lawyer, kase.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}
}

func TestUpdateConfigKeepsMaterializedDeadlines(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()
	appt := book(t, e, 5000)
	original := *appt.ApprovalDeadline

	hours := 48
	if _, err := e.UpdateConfig(ctx, admin, model.ConfigPatch{LawyerApprovalHours: &hours}); err != nil {
		t.Fatalf("UpdateConfig: %v", err)
	}

	after, _ := e.Snapshot().Appointment(appt.ID)
	if after.ApprovalDeadline == nil || !after.ApprovalDeadline.Equal(original) {
		t.Fatal("config change must not move an already-set deadline")
	}

	// A fresh booking picks up the new window.
	second := book(t, e, 5000)
	if !second.ApprovalDeadline.Equal(second.CreatedAt.Add(48 * time.Hour)) {
		t.Fatalf("new deadline = %v, want createdAt+48h", second.ApprovalDeadline)
	}
}

func TestUpdateConfigValidation(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	zero := 0
	if _, err := e.UpdateConfig(ctx, admin, model.ConfigPatch{CasePaymentDays: &zero}); !errors.Is(err, ErrConfigOutOfRange) {
		t.Fatalf("err = %v, want ErrConfigOutOfRange", err)
	}
	huge := 100000
	if _, err := e.UpdateConfig(ctx, admin, model.ConfigPatch{LawyerApprovalHours: &huge}); !errors.Is(err, ErrConfigOutOfRange) {
		t.Fatalf("err = %v, want ErrConfigOutOfRange", err)
	}
	ok := 12
	if _, err := e.UpdateConfig(ctx, client, model.ConfigPatch{LawyerApprovalHours: &ok}); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("err = %v, want ErrPermissionDenied", err)
	}
}

func TestOverrideBypassesGraphAndLogsDistinctly(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()
	appt := book(t, e, 5000)

	// PENDING_APPROVAL -> COMPLETED has no edge; the override forces it.
	forced, err := e.OverrideAppointmentStatus(ctx, admin, appt.ID, model.AppointmentCompleted)
	if err != nil {
		t.Fatalf("OverrideAppointmentStatus: %v", err)
	}
	if forced.Status != model.AppointmentCompleted {
		t.Fatalf("status = %s", forced.Status)
	}
	if forced.ApprovalDeadline != nil {
		t.Fatal("terminal override must clear deadlines")
	}

	snap := e.Snapshot()
	if snap.Notifications[0].Title != "Admin override" {
		t.Fatalf("override must be logged distinctly, got %q", snap.Notifications[0].Title)
	}

	if _, err := e.OverrideAppointmentStatus(ctx, lawyer, appt.ID, model.AppointmentExpired); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("non-admin override: err = %v, want ErrPermissionDenied", err)
	}
}

func TestRefundPayment(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()
	appt := book(t, e, 5000)
	if _, err := e.ApproveAppointment(ctx, lawyer, appt.ID); err != nil {
		t.Fatal(err)
	}
	payment := consultationPayment(t, e, appt.ID)

	if _, err := e.RefundPayment(ctx, client, payment.ID); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("err = %v, want ErrPermissionDenied", err)
	}
	refunded, err := e.RefundPayment(ctx, admin, payment.ID)
	if err != nil {
		t.Fatalf("RefundPayment: %v", err)
	}
	if refunded.Status != model.PaymentRefunded {
		t.Fatalf("status = %s", refunded.Status)
	}
	if _, err := e.RefundPayment(ctx, admin, payment.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("double refund: err = %v, want ErrInvalidTransition", err)
	}
}

func TestDismissAndClearNotifications(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()
	book(t, e, 5000)

	snap := e.Snapshot()
	if err := e.DismissNotification(ctx, client, snap.Notifications[0].ID); err != nil {
		t.Fatalf("DismissNotification: %v", err)
	}
	if err := e.DismissNotification(ctx, client, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	book(t, e, 5000)
	if err := e.ClearNotifications(ctx, client); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("err = %v, want ErrPermissionDenied", err)
	}
	if err := e.ClearNotifications(ctx, admin); err != nil {
		t.Fatalf("ClearNotifications: %v", err)
	}
	if len(e.Snapshot().Notifications) != 0 {
		t.Fatal("feed should be empty")
	}
}

func TestSetCaseProgress(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()
	kase := activeCase(t, e)

	updated, err := e.SetCaseProgress(ctx, lawyer, kase.ID, 40)
	if err != nil {
		t.Fatalf("SetCaseProgress: %v", err)
	}
	if updated.Progress != 40 {
		t.Fatalf("progress = %d", updated.Progress)
	}
	if _, err := e.SetCaseProgress(ctx, lawyer, kase.ID, 150); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}
	if _, err := e.SetCaseProgress(ctx, client, kase.ID, 50); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("err = %v, want ErrPermissionDenied", err)
	}
}

func TestAddCaseDocument(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()
	kase := activeCase(t, e)

	doc, err := e.AddCaseDocument(ctx, client, kase.ID, "evidence.pdf")
	if err != nil {
		t.Fatalf("AddCaseDocument: %v", err)
	}
	if doc.UploadedBy != client.ID {
		t.Fatalf("uploadedBy = %s", doc.UploadedBy)
	}
	updated, _ := e.Snapshot().Case(kase.ID)
	if len(updated.Documents) != 1 || updated.Documents[0].Name != "evidence.pdf" {
		t.Fatalf("documents = %v", updated.Documents)
	}
}
