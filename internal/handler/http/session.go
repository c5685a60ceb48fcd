package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/saudkhanbpk/EMS-sub000/internal/domain/session"
	"github.com/saudkhanbpk/EMS-sub000/internal/handler/http/middleware"
	"github.com/saudkhanbpk/EMS-sub000/internal/handler/http/response"
)

type SessionHandler interface {
	CheckIn(w http.ResponseWriter, r *http.Request)
	StartBreak(w http.ResponseWriter, r *http.Request)
	EndBreak(w http.ResponseWriter, r *http.Request)
	CheckOut(w http.ResponseWriter, r *http.Request)
	GetOpen(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
}

type sessionHandlerImpl struct {
	sessionService session.SessionService
}

func NewSessionHandler(sessionService session.SessionService) SessionHandler {
	return &sessionHandlerImpl{
		sessionService: sessionService,
	}
}

// CheckIn implements SessionHandler.
func (h *sessionHandlerImpl) CheckIn(w http.ResponseWriter, r *http.Request) {
	var req session.CheckInRequest

	if err := decodeBody(r, &req); err != nil {
		slog.Error("Failed to decode check-in request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if req.Kind == "" {
		req.Kind = session.KindRegular
	}
	req.UserID = middleware.UserID(r)

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.sessionService.CheckIn(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Check in successful", result)
}

// StartBreak implements SessionHandler.
func (h *sessionHandlerImpl) StartBreak(w http.ResponseWriter, r *http.Request) {
	ref, ok := h.sessionRef(w, r)
	if !ok {
		return
	}

	result, err := h.sessionService.StartBreak(r.Context(), ref)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Break started", result)
}

// EndBreak implements SessionHandler.
func (h *sessionHandlerImpl) EndBreak(w http.ResponseWriter, r *http.Request) {
	ref, ok := h.sessionRef(w, r)
	if !ok {
		return
	}

	result, err := h.sessionService.EndBreak(r.Context(), ref)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Break ended", result)
}

// CheckOut implements SessionHandler.
func (h *sessionHandlerImpl) CheckOut(w http.ResponseWriter, r *http.Request) {
	ref, ok := h.sessionRef(w, r)
	if !ok {
		return
	}

	result, err := h.sessionService.CheckOut(r.Context(), ref)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Check out successful", result)
}

// GetOpen implements SessionHandler.
func (h *sessionHandlerImpl) GetOpen(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r)
	kind := session.Kind(r.URL.Query().Get("kind"))
	if kind == "" {
		kind = session.KindRegular
	}

	result, err := h.sessionService.GetOpenSession(r.Context(), userID, kind)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// List implements SessionHandler.
func (h *sessionHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r)

	var filter session.SessionFilter
	query := r.URL.Query()
	if v := query.Get("start_date"); v != "" {
		filter.StartDate = &v
	}
	if v := query.Get("end_date"); v != "" {
		filter.EndDate = &v
	}
	if v := query.Get("kind"); v != "" {
		filter.Kind = &v
	}

	result, err := h.sessionService.ListSessions(r.Context(), userID, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// sessionRef builds a SessionRef from an optional JSON body. Break and
// checkout endpoints work without a body; the service resolves the open
// session from the authenticated user.
func (h *sessionHandlerImpl) sessionRef(w http.ResponseWriter, r *http.Request) (session.SessionRef, bool) {
	var ref session.SessionRef

	if err := decodeBody(r, &ref); err != nil {
		slog.Error("Failed to decode session reference", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return session.SessionRef{}, false
	}
	ref.UserID = middleware.UserID(r)

	if err := ref.Validate(); err != nil {
		response.HandleError(w, err)
		return session.SessionRef{}, false
	}
	return ref, true
}

func decodeBody(r *http.Request, dst interface{}) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == io.EOF {
		return nil // empty body is fine, fields keep defaults
	}
	return err
}
