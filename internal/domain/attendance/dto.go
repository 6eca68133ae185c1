package attendance

import (
	"github.com/gilitu/attendance-backend-go/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

type CheckInRequest struct {
	EmployeeID int64    `json:"employee_id"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
}

func (r *CheckInRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.EmployeeID <= 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if r.Latitude == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude is required",
		})
	} else if !validator.IsLatitude(*r.Latitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude must be between -90 and 90",
		})
	}

	if r.Longitude == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude is required",
		})
	} else if !validator.IsLongitude(*r.Longitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude must be between -180 and 180",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type CheckOutRequest struct {
	EmployeeID int64    `json:"employee_id"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
}

func (r *CheckOutRequest) Validate() error {
	in := CheckInRequest{EmployeeID: r.EmployeeID, Latitude: r.Latitude, Longitude: r.Longitude}
	return in.Validate()
}

type CheckInResponse struct {
	EmployeeID  int64  `json:"employee_id"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Status      string `json:"status"`
	Punctuality *int   `json:"punctuality,omitempty"`
}

type CheckOutResponse struct {
	EmployeeID int64  `json:"employee_id"`
	Date       string `json:"date"`
	Time       string `json:"time"`
}

type RecordResponse struct {
	ID           string  `json:"id"`
	EmployeeID   int64   `json:"employee_id"`
	EmployeeName *string `json:"employee_name,omitempty"`
	EmployeeRole *string `json:"employee_role,omitempty"`
	Date         string  `json:"date"`
	Shift        string  `json:"shift,omitempty"`
	CheckInTime  *string `json:"check_in_time"`
	CheckOutTime *string `json:"check_out_time"`
	Status       string  `json:"status"`
	Punctuality  *int    `json:"punctuality,omitempty"`
}

type SummaryResponse struct {
	Date   string           `json:"date"`
	Counts map[string]int64 `json:"counts"`
	Total  int64            `json:"total"`
}

type InitializeResponse struct {
	Date     string `json:"date"`
	Inserted int64  `json:"inserted"`
}
