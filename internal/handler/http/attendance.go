package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gilitu/attendance-backend-go/internal/domain/attendance"
	"github.com/gilitu/attendance-backend-go/internal/handler/http/response"
	"github.com/gilitu/attendance-backend-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type AttendanceHandler interface {
	CheckIn(w http.ResponseWriter, r *http.Request)
	CheckOut(w http.ResponseWriter, r *http.Request)
	History(w http.ResponseWriter, r *http.Request)
	ListByDate(w http.ResponseWriter, r *http.Request)
	Summary(w http.ResponseWriter, r *http.Request)
	Initialize(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

// CheckIn implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckIn(w http.ResponseWriter, r *http.Request) {
	var req attendance.CheckInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.CheckIn(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Check-in recorded", result)
}

// CheckOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckOut(w http.ResponseWriter, r *http.Request) {
	var req attendance.CheckOutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.CheckOut(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Check-out recorded", result)
}

// History implements AttendanceHandler.
func (h *attendanceHandlerImpl) History(w http.ResponseWriter, r *http.Request) {
	employeeID, err := strconv.ParseInt(chi.URLParam(r, "employeeID"), 10, 64)
	if err != nil || employeeID <= 0 {
		response.BadRequest(w, "Invalid employee ID", nil)
		return
	}

	records, err := h.attendanceService.GetHistory(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, records)
}

// ListByDate implements AttendanceHandler.
func (h *attendanceHandlerImpl) ListByDate(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	if !validator.IsValidDate(date) {
		response.BadRequest(w, "Invalid date, expected YYYY-MM-DD", nil)
		return
	}

	records, err := h.attendanceService.GetByDate(r.Context(), date)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, records)
}

// Summary implements AttendanceHandler.
func (h *attendanceHandlerImpl) Summary(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	if !validator.IsValidDate(date) {
		response.BadRequest(w, "Invalid date, expected YYYY-MM-DD", nil)
		return
	}

	summary, err := h.attendanceService.GetSummary(r.Context(), date)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, summary)
}

// Initialize implements AttendanceHandler.
func (h *attendanceHandlerImpl) Initialize(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.InitializeDay(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Attendance day initialized", result)
}
