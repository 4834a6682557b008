package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/okian/volley/internal/domain/model"
	"github.com/okian/volley/internal/domain/types"
)

// SessionsHandler handles analysis and session requests.
type SessionsHandler struct {
	deps         Dependencies
	maxBodyBytes int64
	maxFrames    int
	now          func() time.Time
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(deps Dependencies, maxBodyBytes int64, maxFrames int) *SessionsHandler {
	return &SessionsHandler{
		deps:         deps,
		maxBodyBytes: maxBodyBytes,
		maxFrames:    maxFrames,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

type listResponse struct {
	Sessions []types.SessionStatus `json:"sessions"`
}

func (h *SessionsHandler) readSession(w http.ResponseWriter, r *http.Request, op string) (*model.Session, error) {
	var req types.SessionRequest
	if err := readAndValidate(w, r, h.maxBodyBytes, &req); err != nil {
		return nil, NewKind(op, err)
	}
	if h.maxFrames > 0 && len(req.Frames) > h.maxFrames {
		return nil, WrapKind(op, ErrTooLarge, fmt.Errorf("%d frames exceed the limit of %d", len(req.Frames), h.maxFrames))
	}
	return req.ToSession(h.now()), nil
}

// HandleAnalyze handles POST /v1/analyze requests.
func (h *SessionsHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	const op = "api.analyze"
	s, err := h.readSession(w, r, op)
	if err != nil {
		writeKindError(w, err)
		return
	}
	res, err := h.deps.Analyze(r.Context(), s)
	if err != nil {
		writeKindError(w, kindOf(op, err))
		return
	}
	writeJSON(w, http.StatusOK, types.FromResult(res))
}

// HandleSubmit handles POST /v1/sessions requests.
func (h *SessionsHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit"
	s, err := h.readSession(w, r, op)
	if err != nil {
		writeKindError(w, err)
		return
	}
	ack, err := h.deps.Submit(r.Context(), s)
	if err != nil {
		writeKindError(w, kindOf(op, err))
		return
	}
	status := http.StatusAccepted
	if ack.Duplicate {
		status = http.StatusOK
	}
	writeJSON(w, status, types.SubmitResponse{
		SessionID: ack.SessionID,
		Status:    string(ack.Status),
		Duplicate: ack.Duplicate,
	})
}

// HandleList handles GET /v1/sessions?limit=N requests.
func (h *SessionsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_sessions"
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxListLimit {
			writeKindError(w, WrapKind(op, ErrBadRequest, fmt.Errorf("limit must be between 1 and %d", maxListLimit)))
			return
		}
		limit = n
	}
	list, err := h.deps.Sessions(r.Context(), limit)
	if err != nil {
		writeKindError(w, kindOf(op, err))
		return
	}
	if list == nil {
		list = []types.SessionStatus{}
	}
	writeJSON(w, http.StatusOK, listResponse{Sessions: list})
}

// HandleGet handles GET /v1/sessions/{id} requests.
func (h *SessionsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_session"
	st, err := h.deps.Session(r.Context(), r.PathValue("id"))
	if err != nil {
		writeKindError(w, kindOf(op, err))
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// HandleDelete handles DELETE /v1/sessions/{id} requests.
func (h *SessionsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_session"
	if err := h.deps.DeleteSession(r.Context(), r.PathValue("id")); err != nil {
		writeKindError(w, kindOf(op, err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
