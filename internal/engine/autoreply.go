package engine

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/tahmid-rahman/counselhub/internal/model"
	"github.com/tahmid-rahman/counselhub/internal/state"
)

// The counterpart reply simulates the other party answering a case message.
// It fires after a short random delay, is keyed by case id so closing the
// case cancels it, and re-checks case status at fire time.

func defaultReplyDelay() time.Duration {
	return 2*time.Second + time.Duration(rand.Int63n(int64(2*time.Second)))
}

// AddCaseMessage appends a message from one party and schedules the
// simulated reply from the other.
func (e *Engine) AddCaseMessage(ctx context.Context, actor model.Actor, caseID, body string) (model.Message, error) {
	ctx, span := e.tracer.Start(ctx, "engine.add_case_message")
	defer span.End()

	if body == "" {
		return model.Message{}, fmt.Errorf("message body required: %w", ErrInvalidArgument)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	kase, ok := e.snap.Case(caseID)
	if !ok {
		return model.Message{}, notFound("case", caseID)
	}
	if !isCaseParty(actor, kase) {
		return model.Message{}, denied("add case message")
	}
	if kase.Status.Terminal() {
		return model.Message{}, invalidTransition("case", caseID, kase.Status, "message")
	}

	now := e.clk.Now()
	msg := model.Message{
		ID:         e.newID(),
		SenderID:   actor.ID,
		SenderRole: actor.Role,
		Body:       body,
		SentAt:     now,
	}
	e.apply(ctx,
		state.MessageAddedToCase{CaseID: kase.ID, Message: msg},
		state.NotificationAdded{Notification: e.newNotification(now, model.NotificationInfo,
			"New message",
			"A new message was posted on the case.",
			ref{caseID: kase.ID})},
	)

	e.scheduleReply(kase, actor.Role)
	return msg, nil
}

// scheduleReply arms (or re-arms) the reply timer for a case. Caller holds
// e.mu.
func (e *Engine) scheduleReply(kase model.Case, senderRole model.Role) {
	responderID, responderRole := kase.LawyerID, model.RoleLawyer
	if senderRole == model.RoleLawyer {
		responderID, responderRole = kase.ClientID, model.RoleClient
	}

	if prev, ok := e.replies[kase.ID]; ok {
		prev.Stop()
	}
	caseID := kase.ID
	e.replies[caseID] = e.clk.AfterFunc(e.replyDelay(), func() {
		e.fireReply(caseID, responderID, responderRole)
	})
}

func (e *Engine) fireReply(caseID, responderID string, responderRole model.Role) {
	e.mu.Lock()
	defer e.mu.Unlock()

	delete(e.replies, caseID)

	// The case may have closed between scheduling and firing.
	kase, ok := e.snap.Case(caseID)
	if !ok || kase.Status.Terminal() {
		return
	}

	now := e.clk.Now()
	msg := model.Message{
		ID:         e.newID(),
		SenderID:   responderID,
		SenderRole: responderRole,
		Body:       "Thanks for the update. I will review and get back to you shortly.",
		SentAt:     now,
	}
	e.apply(context.Background(),
		state.MessageAddedToCase{CaseID: caseID, Message: msg},
		state.NotificationAdded{Notification: e.newNotification(now, model.NotificationInfo,
			"New message",
			"A new message was posted on the case.",
			ref{caseID: caseID})},
	)
	e.logger.Info("counterpart reply delivered", "case_id", caseID)
}

// cancelReply stops a pending reply timer for a case. Caller holds e.mu.
func (e *Engine) cancelReply(caseID string) {
	if t, ok := e.replies[caseID]; ok {
		t.Stop()
		delete(e.replies, caseID)
	}
}
