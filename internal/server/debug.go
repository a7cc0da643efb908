package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/scutrobotlab/SimulatorX-sub000/internal/core/types"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/engine"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/infrastructure/storage"
	"github.com/scutrobotlab/SimulatorX-sub000/pkg/api"
)

// MatchHistory - чтение архива матчей (storage.MatchStore).
type MatchHistory interface {
	ListMatches(ctx context.Context, limit int) ([]storage.MatchRow, error)
	Events(ctx context.Context, matchID string) ([]storage.EventRow, error)
}

// DebugHandler предоставляет доступ к внутреннему состоянию движка.
//
// Состояние матча читается только через Instance.Inspect, на горутине цикла.
type DebugHandler struct {
	Service *engine.GameService
	History MatchHistory
}

func NewDebugHandler(s *engine.GameService, history MatchHistory) *DebugHandler {
	return &DebugHandler{Service: s, History: history}
}

// RegisterRoutes регистрирует debug-эндпоинты
func (h *DebugHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/debug/matches", h.handleListMatches)
	mux.HandleFunc("/debug/entities", h.handleDumpEntities)
	mux.HandleFunc("/debug/subscriptions", h.handleSubscriptions)
	mux.HandleFunc("/debug/history", h.handleHistory)
}

// /debug/matches - активные матчи
func (h *DebugHandler) handleListMatches(w http.ResponseWriter, r *http.Request) {
	summary := []api.MatchInfo{}
	for _, inst := range h.Service.Matches() {
		var info api.MatchInfo
		if err := inst.Inspect(r.Context(), func(*engine.Sim) { info = inst.Info() }); err != nil {
			continue
		}
		summary = append(summary, info)
	}

	writeJSON(w, summary)
}

// /debug/entities?match=ID - полный снимок матча
func (h *DebugHandler) handleDumpEntities(w http.ResponseWriter, r *http.Request) {
	inst, ok := h.match(w, r)
	if !ok {
		return
	}

	var frame api.Frame
	err := inst.Inspect(r.Context(), func(*engine.Sim) {
		frame = inst.BuildSnapshot(types.NilIdentity)
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, frame)
}

// /debug/subscriptions?match=ID - индекс подписок шины: действие -> получатели
func (h *DebugHandler) handleSubscriptions(w http.ResponseWriter, r *http.Request) {
	inst, ok := h.match(w, r)
	if !ok {
		return
	}

	var dump map[string][]string
	err := inst.Inspect(r.Context(), func(sim *engine.Sim) {
		dump = sim.Dispatcher.DebugDump()
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, dump)
}

// /debug/history?limit=N - последние сыгранные матчи
// /debug/history?match=ID - события одного матча
func (h *DebugHandler) handleHistory(w http.ResponseWriter, r *http.Request) {
	if h.History == nil {
		http.Error(w, "Match archive is disabled", http.StatusNotFound)
		return
	}

	if id := r.URL.Query().Get("match"); id != "" {
		events, err := h.History.Events(r.Context(), id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, events)
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, "limit must be a positive number", http.StatusBadRequest)
			return
		}
		limit = n
	}

	rows, err := h.History.ListMatches(r.Context(), limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, rows)
}

func (h *DebugHandler) match(w http.ResponseWriter, r *http.Request) (*engine.Instance, bool) {
	inst, ok := h.Service.Match(r.URL.Query().Get("match"))
	if !ok {
		http.Error(w, engine.ErrMatchNotFound.Error(), http.StatusNotFound)
		return nil, false
	}
	return inst, true
}

func writeJSON(w http.ResponseWriter, data any) {
	// Разрешаем запросы с любого источника (нужно для локального debug_client.html)
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	w.Header().Set("Content-Type", "application/json")

	// Пустой список отдаём как [], а не null
	if data == nil {
		_, _ = w.Write([]byte("[]"))
		return
	}

	_ = json.NewEncoder(w).Encode(data)
}
