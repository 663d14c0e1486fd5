package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/tahmid-rahman/counselhub/internal/model"
	"github.com/tahmid-rahman/counselhub/internal/state"
)

// SnapshotSource is the read side of the lifecycle engine.
type SnapshotSource interface {
	Snapshot() state.Snapshot
}

type StateHandler struct {
	source SnapshotSource
	logger *slog.Logger
}

func NewStateHandler(source SnapshotSource, logger *slog.Logger) *StateHandler {
	return &StateHandler{source: source, logger: logger}
}

type stateOverview struct {
	Appointments  []model.Appointment  `json:"appointments"`
	Cases         []model.Case         `json:"cases"`
	Payments      []model.Payment      `json:"payments"`
	Notifications []model.Notification `json:"notifications"`
	Config        model.Config         `json:"config"`
}

func (h *StateHandler) Overview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snap := h.source.Snapshot()
	sortAppointments(snap.Appointments)
	sortCases(snap.Cases)
	sortPayments(snap.Payments)
	resp := stateOverview{
		Appointments:  emptyIfNil(snap.Appointments),
		Cases:         emptyIfNil(snap.Cases),
		Payments:      emptyIfNil(snap.Payments),
		Notifications: emptyIfNil(snap.Notifications),
		Config:        snap.Config,
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *StateHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	items := emptyIfNil(h.source.Snapshot().Notifications)

	limit := len(items)
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		if n < limit {
			limit = n
		}
	}
	h.writeJSON(w, http.StatusOK, items[:limit])
}

func (h *StateHandler) Config(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.writeJSON(w, http.StatusOK, h.source.Snapshot().Config)
}

func (h *StateHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		h.logger.Error("failed to build response", "err", err)
		http.Error(w, "failed to build response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func emptyIfNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}

func sortAppointments(items []model.Appointment) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
}

func sortCases(items []model.Case) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
}

func sortPayments(items []model.Payment) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
}
