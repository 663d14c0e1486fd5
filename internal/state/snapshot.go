package state

import "github.com/tahmid-rahman/counselhub/internal/model"

// FeedCap is the maximum number of notifications retained, newest first.
const FeedCap = 50

// Snapshot is the complete engine state. Apply treats it as immutable:
// only the collection addressed by an action is replaced, the rest is
// shared with the previous snapshot.
type Snapshot struct {
	Appointments  []model.Appointment  `json:"appointments"`
	Cases         []model.Case         `json:"cases"`
	Payments      []model.Payment      `json:"payments"`
	Notifications []model.Notification `json:"notifications"`
	Config        model.Config         `json:"config"`
}

func (s Snapshot) Appointment(id string) (model.Appointment, bool) {
	for _, a := range s.Appointments {
		if a.ID == id {
			return a, true
		}
	}
	return model.Appointment{}, false
}

func (s Snapshot) Case(id string) (model.Case, bool) {
	for _, c := range s.Cases {
		if c.ID == id {
			return c, true
		}
	}
	return model.Case{}, false
}

func (s Snapshot) Payment(id string) (model.Payment, bool) {
	for _, p := range s.Payments {
		if p.ID == id {
			return p, true
		}
	}
	return model.Payment{}, false
}

func (s Snapshot) Notification(id string) (model.Notification, bool) {
	for _, n := range s.Notifications {
		if n.ID == id {
			return n, true
		}
	}
	return model.Notification{}, false
}

// Clone deep-copies the snapshot, including per-case documents and messages,
// so callers can hold it without racing the engine.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Appointments = append([]model.Appointment(nil), s.Appointments...)
	out.Payments = append([]model.Payment(nil), s.Payments...)
	out.Notifications = append([]model.Notification(nil), s.Notifications...)
	out.Cases = make([]model.Case, len(s.Cases))
	for i, c := range s.Cases {
		c.Documents = append([]model.Document(nil), c.Documents...)
		c.Messages = append([]model.Message(nil), c.Messages...)
		out.Cases[i] = c
	}
	return out
}
