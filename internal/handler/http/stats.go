package http

import (
	"net/http"
	"time"

	"github.com/saudkhanbpk/EMS-sub000/internal/domain/stats"
	"github.com/saudkhanbpk/EMS-sub000/internal/handler/http/middleware"
	"github.com/saudkhanbpk/EMS-sub000/internal/handler/http/response"
)

type StatsHandler interface {
	Daily(w http.ResponseWriter, r *http.Request)
	Weekly(w http.ResponseWriter, r *http.Request)
	Monthly(w http.ResponseWriter, r *http.Request)
	Range(w http.ResponseWriter, r *http.Request)
	RangeAllUsers(w http.ResponseWriter, r *http.Request)
}

type statsHandlerImpl struct {
	statsService stats.StatsService
	loc          *time.Location
}

func NewStatsHandler(statsService stats.StatsService, loc *time.Location) StatsHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &statsHandlerImpl{
		statsService: statsService,
		loc:          loc,
	}
}

// Daily implements StatsHandler.
func (h *statsHandlerImpl) Daily(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r)
	day, ok := h.dayParam(w, r)
	if !ok {
		return
	}

	result, err := h.statsService.DailyStats(r.Context(), userID, day)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Weekly implements StatsHandler.
func (h *statsHandlerImpl) Weekly(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r)
	day, ok := h.dayParam(w, r)
	if !ok {
		return
	}

	result, err := h.statsService.WeeklyStats(r.Context(), userID, day)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Monthly implements StatsHandler.
func (h *statsHandlerImpl) Monthly(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r)
	day, ok := h.dayParam(w, r)
	if !ok {
		return
	}

	result, err := h.statsService.MonthlyStats(r.Context(), userID, day)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Range implements StatsHandler.
func (h *statsHandlerImpl) Range(w http.ResponseWriter, r *http.Request) {
	req := stats.RangeRequest{
		UserID:    middleware.UserID(r),
		StartDate: r.URL.Query().Get("start_date"),
		EndDate:   r.URL.Query().Get("end_date"),
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	start, end := req.Range(h.loc)
	result, err := h.statsService.ComputeStats(r.Context(), req.UserID, start, end)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// RangeAllUsers implements StatsHandler. Admin only, enforced by the router.
func (h *statsHandlerImpl) RangeAllUsers(w http.ResponseWriter, r *http.Request) {
	req := stats.RangeRequest{
		UserID:    middleware.UserID(r),
		StartDate: r.URL.Query().Get("start_date"),
		EndDate:   r.URL.Query().Get("end_date"),
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	start, end := req.Range(h.loc)
	result, err := h.statsService.ComputeStatsForAllUsers(r.Context(), start, end)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// dayParam reads the optional ?date=YYYY-MM-DD query value, defaulting to
// today in the configured timezone.
func (h *statsHandlerImpl) dayParam(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		return time.Now().In(h.loc), true
	}

	day, err := time.ParseInLocation("2006-01-02", raw, h.loc)
	if err != nil {
		response.BadRequest(w, "date must be in YYYY-MM-DD format", nil)
		return time.Time{}, false
	}
	return day, true
}
