// Package httpapi serves the guard as a JSON API for browser and edge
// clients.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ppiankov/wellwatch/internal/guard"
	"github.com/ppiankov/wellwatch/internal/metrics"
	"github.com/ppiankov/wellwatch/internal/scorer"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Handler routes the JSON API.
type Handler struct {
	guard   *guard.Guard
	metrics *metrics.Collector
	logger  *slog.Logger
	mux     *http.ServeMux
}

// New builds the API handler. m may be nil, which disables /metrics.
func New(g *guard.Guard, m *metrics.Collector, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	h := &Handler{guard: g, metrics: m, logger: logger, mux: http.NewServeMux()}

	h.mux.HandleFunc("POST /api/analyze", h.handleAnalyze)
	h.mux.HandleFunc("POST /api/conversation", h.handleConversation)
	h.mux.HandleFunc("GET /api/sessions/{id}/summary", h.handleSummary)
	h.mux.HandleFunc("POST /api/sessions/{id}/end", h.handleEndSession)
	h.mux.HandleFunc("GET /healthz", h.handleHealth)
	if m != nil {
		h.mux.Handle("GET /metrics", m.Handler())
	}
	return h
}

// ServeHTTP adds CORS headers and answers preflight requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	addCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	body, ok := h.decode(w, r)
	if !ok {
		return
	}
	msg, err := guard.MessageFromMap(body)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.guard.CheckMessage(r.Context(), msg))
}

func (h *Handler) handleConversation(w http.ResponseWriter, r *http.Request) {
	body, ok := h.decode(w, r)
	if !ok {
		return
	}
	req, err := guard.ConversationFromMap(body)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.guard.Conversation(r.Context(), req.SessionID, req.Locale, req.Messages))
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.guard.Summarize(r.PathValue("id")))
}

func (h *Handler) handleEndSession(w http.ResponseWriter, r *http.Request) {
	locale := r.URL.Query().Get("locale")
	if r.ContentLength != 0 {
		body, ok := h.decode(w, r)
		if !ok {
			return
		}
		req, err := guard.ConversationFromMap(body)
		if err != nil {
			h.writeError(w, err)
			return
		}
		if req.Locale != "" {
			locale = req.Locale
		}
	}
	writeJSON(w, http.StatusOK, h.guard.EndSession(r.Context(), r.PathValue("id"), locale))
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":          "ok",
		"lexicon_hash":    h.guard.LexiconHash(),
		"active_sessions": h.guard.Tracker().Len(),
	})
}

// decode reads a JSON object body. Any other JSON value is a bad request;
// a body over maxBodyBytes is 413.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	var body map[string]any
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{
				Error: fmt.Sprintf("payload exceeds %d bytes", tooLarge.Limit),
			})
			return nil, false
		}
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid payload: " + err.Error()})
		return nil, false
	}
	if body == nil {
		body = map[string]any{}
	}
	return body, true
}

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	Field string `json:"field,omitempty"`
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var kindErr *scorer.InputKindError
	if errors.As(err, &kindErr) {
		writeJSON(w, http.StatusBadRequest, errorBody{
			Error: err.Error(),
			Kind:  "InvalidInputKind",
			Field: kindErr.Field,
		})
		return
	}
	h.logger.Error("request failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func addCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", strings.Join([]string{
		"Content-Type",
	}, ", "))
}
