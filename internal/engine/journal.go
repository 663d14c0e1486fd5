package engine

import (
	"context"
	"encoding/json"
	"time"

	"github.com/tahmid-rahman/counselhub/internal/state"
)

// Journal is the persistence replacement point: every applied action is
// offered to it as an envelope. The in-memory snapshot stays authoritative;
// a journal failure is logged, never propagated into an operation.
type Journal interface {
	Record(ctx context.Context, entry JournalEntry) error
}

type JournalEntry struct {
	At      time.Time
	Action  string
	Payload []byte
}

const journalBuffer = 256

// record enqueues an applied action for the journal pump. Caller holds e.mu;
// the send never blocks so no I/O happens inside the critical section.
func (e *Engine) record(a state.Action, at time.Time) {
	if e.journal == nil {
		return
	}
	payload, err := json.Marshal(a)
	if err != nil {
		e.logger.Error("journal encode failed", "action", state.Name(a), "err", err)
		return
	}
	entry := JournalEntry{At: at, Action: state.Name(a), Payload: payload}
	select {
	case e.journalCh <- entry:
	default:
		e.logger.Warn("journal buffer full, dropping entry", "action", entry.Action)
	}
}

// runJournal drains the buffer in the background, the same shape as an
// outbox publisher loop.
func (e *Engine) runJournal() {
	for {
		select {
		case <-e.done:
			return
		case entry := <-e.journalCh:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := e.journal.Record(ctx, entry); err != nil {
				e.logger.Error("journal append failed", "action", entry.Action, "err", err)
			}
			cancel()
		}
	}
}
