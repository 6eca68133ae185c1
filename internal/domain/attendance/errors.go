package attendance

import "errors"

// Attendance domain errors
var (
	// Check-in errors
	ErrOutsideGeofence = errors.New("you are outside the company area")
	ErrOutsideWindow   = errors.New("action not allowed at this time")
	ErrCheckInRecorded = errors.New("check-in already recorded for today")

	// Check-out errors
	ErrNoActiveCheckIn = errors.New("no active check-in found")

	// General errors
	ErrRecordNotFound = errors.New("attendance record not found")
)
