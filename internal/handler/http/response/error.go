package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gilitu/attendance-backend-go/internal/domain/attendance"
	"github.com/gilitu/attendance-backend-go/internal/domain/employee"
	"github.com/gilitu/attendance-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses.
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	case errors.Is(err, attendance.ErrOutsideGeofence):
		Forbidden(w, err.Error())
	case errors.Is(err, attendance.ErrOutsideWindow):
		Forbidden(w, err.Error())
	case errors.Is(err, attendance.ErrCheckInRecorded):
		Conflict(w, err.Error())
	case errors.Is(err, attendance.ErrNoActiveCheckIn):
		NotFound(w, err.Error())
	case errors.Is(err, attendance.ErrRecordNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, err.Error())
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
