package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/gilitu/attendance-backend-go/internal/domain/attendance"
	"github.com/gilitu/attendance-backend-go/internal/domain/employee"
	"github.com/gilitu/attendance-backend-go/internal/pkg/clock"
	"github.com/gilitu/attendance-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Expected schema:
//
//	CREATE TABLE attendance (
//	    id             UUID PRIMARY KEY,
//	    employee_id    BIGINT NOT NULL REFERENCES employee (id),
//	    date           DATE NOT NULL,
//	    shift          TEXT,
//	    check_in_time  TIME,
//	    check_out_time TIME,
//	    status         TEXT NOT NULL DEFAULT 'pending',
//	    punctuality    INT,
//	    created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
//	    updated_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
//	    UNIQUE (employee_id, date)
//	);
//
// The UNIQUE constraint is what makes EnsureRecord idempotent under
// concurrent calls: the conflict is swallowed, not surfaced.
type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

const recordColumns = `
	a.id, a.employee_id, to_char(a.date, 'YYYY-MM-DD'), a.shift,
	to_char(a.check_in_time, 'HH24:MI:SS'), to_char(a.check_out_time, 'HH24:MI:SS'),
	a.status, a.punctuality, a.created_at, a.updated_at
`

// EnsureRecords implements attendance.AttendanceRepository.
func (r *attendanceRepository) EnsureRecords(ctx context.Context, date clock.Date) (int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendance (id, employee_id, date, shift, status)
		SELECT gen_random_uuid(), e.id, $1::date, e.shift, 'pending'
		FROM employee e
		ON CONFLICT (employee_id, date) DO NOTHING
	`

	tag, err := q.Exec(ctx, query, date.String())
	if err != nil {
		return 0, fmt.Errorf("failed to ensure attendance records: %w", err)
	}

	return tag.RowsAffected(), nil
}

// EnsureRecord implements attendance.AttendanceRepository.
func (r *attendanceRepository) EnsureRecord(ctx context.Context, employeeID int64, date clock.Date) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendance (id, employee_id, date, shift, status)
		SELECT $1, e.id, $3::date, e.shift, 'pending'
		FROM employee e
		WHERE e.id = $2
		ON CONFLICT (employee_id, date) DO NOTHING
	`

	if _, err := q.Exec(ctx, query, uuid.New().String(), employeeID, date.String()); err != nil {
		return fmt.Errorf("failed to ensure attendance record: %w", err)
	}

	return nil
}

// RecordCheckIn implements attendance.AttendanceRepository.
func (r *attendanceRepository) RecordCheckIn(ctx context.Context, employeeID int64, date clock.Date, t clock.TimeOfDay, shift employee.Shift, status attendance.Status, punctuality *int) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendance
		SET check_in_time = $1::time,
		    status = $2,
		    shift = COALESCE(NULLIF($3, ''), shift),
		    punctuality = $4,
		    updated_at = now()
		WHERE employee_id = $5
		  AND date = $6::date
		  AND check_in_time IS NULL
	`

	tag, err := q.Exec(ctx, query, t.String(), string(status), string(shift), punctuality, employeeID, date.String())
	if err != nil {
		return fmt.Errorf("failed to record check-in: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return attendance.ErrCheckInRecorded
	}

	return nil
}

// RecordCheckOut implements attendance.AttendanceRepository.
func (r *attendanceRepository) RecordCheckOut(ctx context.Context, employeeID int64, date clock.Date, t clock.TimeOfDay) error {
	q := GetQuerier(ctx, r.db)

	// The open-row predicate doubles as the concurrency guard: a checkout
	// racing an auto-close affects zero rows on the losing side.
	query := `
		UPDATE attendance
		SET check_out_time = $1::time,
		    updated_at = now()
		WHERE employee_id = $2
		  AND date = $3::date
		  AND check_in_time IS NOT NULL
		  AND check_out_time IS NULL
	`

	tag, err := q.Exec(ctx, query, t.String(), employeeID, date.String())
	if err != nil {
		return fmt.Errorf("failed to record check-out: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return attendance.ErrNoActiveCheckIn
	}

	return nil
}

// AutoCheckOut implements attendance.AttendanceRepository.
func (r *attendanceRepository) AutoCheckOut(ctx context.Context, shift employee.Shift, date clock.Date, cutoff clock.TimeOfDay, roles []employee.Role) (int64, error) {
	q := GetQuerier(ctx, r.db)

	roleFilter := roleStrings(roles)

	// Present rows are demoted to late when force-closed.
	demote := `
		UPDATE attendance a
		SET check_out_time = $1::time, status = 'late', updated_at = now()
		FROM employee e
		WHERE e.id = a.employee_id
		  AND a.date = $2::date
		  AND COALESCE(a.shift, e.shift) = $3
		  AND a.check_in_time IS NOT NULL
		  AND a.check_out_time IS NULL
		  AND a.status = 'present'
		  AND ($4::text[] IS NULL OR e.role = ANY($4::text[]))
	`

	demoted, err := q.Exec(ctx, demote, cutoff.String(), date.String(), string(shift), roleFilter)
	if err != nil {
		return 0, fmt.Errorf("failed to auto-close present rows: %w", err)
	}

	// Remaining dangling rows keep their status and only get the time.
	fill := `
		UPDATE attendance a
		SET check_out_time = $1::time, updated_at = now()
		FROM employee e
		WHERE e.id = a.employee_id
		  AND a.date = $2::date
		  AND COALESCE(a.shift, e.shift) = $3
		  AND a.check_in_time IS NOT NULL
		  AND a.check_out_time IS NULL
		  AND ($4::text[] IS NULL OR e.role = ANY($4::text[]))
	`

	filled, err := q.Exec(ctx, fill, cutoff.String(), date.String(), string(shift), roleFilter)
	if err != nil {
		return 0, fmt.Errorf("failed to auto-close dangling rows: %w", err)
	}

	return demoted.RowsAffected() + filled.RowsAffected(), nil
}

// FinalizeDay implements attendance.AttendanceRepository.
func (r *attendanceRepository) FinalizeDay(ctx context.Context, date clock.Date, opts attendance.FinalizeOptions) (attendance.FinalizeResult, error) {
	var result attendance.FinalizeResult

	exempt := roleStrings(opts.ExemptRoles)
	if exempt == nil {
		exempt = []string{}
	}

	err := WithTransaction(ctx, r.db, func(ctx context.Context) error {
		q := GetQuerier(ctx, r.db)

		// Pending rows with no check-in become absent with synthetic times.
		absent := `
			UPDATE attendance a
			SET status = 'absent',
			    check_in_time = '00:00:00'::time,
			    check_out_time = '00:00:00'::time,
			    updated_at = now()
			FROM employee e
			WHERE e.id = a.employee_id
			  AND a.date = $1::date
			  AND a.status = 'pending'
			  AND a.check_in_time IS NULL
			  AND NOT (e.role = ANY($2::text[]))
		`
		tag, err := q.Exec(ctx, absent, date.String(), exempt)
		if err != nil {
			return fmt.Errorf("absent transition: %w", err)
		}
		result.MarkedAbsent = tag.RowsAffected()

		// Absent is terminal: backfill null times only, never the status.
		backfill := `
			UPDATE attendance a
			SET check_in_time = COALESCE(a.check_in_time, '00:00:00'::time),
			    check_out_time = COALESCE(a.check_out_time, '00:00:00'::time),
			    updated_at = now()
			FROM employee e
			WHERE e.id = a.employee_id
			  AND a.date = $1::date
			  AND a.status = 'absent'
			  AND (a.check_in_time IS NULL OR a.check_out_time IS NULL)
			  AND NOT (e.role = ANY($2::text[]))
		`
		tag, err = q.Exec(ctx, backfill, date.String(), exempt)
		if err != nil {
			return fmt.Errorf("absent backfill: %w", err)
		}
		result.Backfilled = tag.RowsAffected()

		// Checked in but never out: late, with the shift's default end time.
		late := `
			UPDATE attendance a
			SET status = 'late',
			    check_out_time = CASE COALESCE(a.shift, e.shift)
			        WHEN 'night' THEN $2::time
			        WHEN 'day' THEN $3::time
			        ELSE '00:00:00'::time
			    END,
			    updated_at = now()
			FROM employee e
			WHERE e.id = a.employee_id
			  AND a.date = $1::date
			  AND a.check_in_time IS NOT NULL
			  AND a.check_out_time IS NULL
			  AND a.status IN ('present', 'pending')
			  AND NOT (e.role = ANY($4::text[]))
		`
		tag, err = q.Exec(ctx, late, date.String(), opts.NightShiftEnd.String(), opts.DayShiftEnd.String(), exempt)
		if err != nil {
			return fmt.Errorf("late transition: %w", err)
		}
		result.MarkedLate = tag.RowsAffected()

		return nil
	})
	if err != nil {
		return attendance.FinalizeResult{}, fmt.Errorf("failed to finalize %s: %w", date, err)
	}

	return result, nil
}

// GetByEmployee implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetByEmployee(ctx context.Context, employeeID int64) ([]attendance.AttendanceRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + recordColumns + `
		FROM attendance a
		WHERE a.employee_id = $1
		ORDER BY a.date DESC
	`

	rows, err := q.Query(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance history: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows, false)
}

// GetByDate implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetByDate(ctx context.Context, date clock.Date) ([]attendance.AttendanceRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + recordColumns + `,
			e.name AS employee_name,
			e.role AS employee_role
		FROM attendance a
		JOIN employee e ON e.id = a.employee_id
		WHERE a.date = $1::date
		ORDER BY e.name ASC
	`

	rows, err := q.Query(ctx, query, date.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance by date: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows, true)
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID int64, date clock.Date) (*attendance.AttendanceRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + recordColumns + `
		FROM attendance a
		WHERE a.employee_id = $1
		  AND a.date = $2::date
		LIMIT 1
	`

	rec, err := scanRecord(q.QueryRow(ctx, query, employeeID, date.String()), false)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance by employee and date: %w", err)
	}

	return &rec, nil
}

// Summary implements attendance.AttendanceRepository.
func (r *attendanceRepository) Summary(ctx context.Context, date clock.Date) (map[attendance.Status]int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT status, COUNT(*)
		FROM attendance
		WHERE date = $1::date
		GROUP BY status
	`

	rows, err := q.Query(ctx, query, date.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance summary: %w", err)
	}
	defer rows.Close()

	counts := make(map[attendance.Status]int64)
	for rows.Next() {
		var status string
		var total int64
		if err := rows.Scan(&status, &total); err != nil {
			return nil, fmt.Errorf("failed to scan summary row: %w", err)
		}
		counts[attendance.Status(status)] = total
	}

	return counts, rows.Err()
}

func roleStrings(roles []employee.Role) []string {
	if len(roles) == 0 {
		return nil
	}
	out := make([]string, 0, len(roles))
	for _, role := range roles {
		out = append(out, string(role))
	}
	return out
}

func scanRecord(row pgx.Row, withEmployee bool) (attendance.AttendanceRecord, error) {
	var rec attendance.AttendanceRecord
	var date string
	var shift, checkIn, checkOut *string

	dest := []interface{}{
		&rec.ID, &rec.EmployeeID, &date, &shift,
		&checkIn, &checkOut,
		&rec.Status, &rec.Punctuality, &rec.CreatedAt, &rec.UpdatedAt,
	}
	if withEmployee {
		dest = append(dest, &rec.EmployeeName, &rec.EmployeeRole)
	}

	if err := row.Scan(dest...); err != nil {
		return attendance.AttendanceRecord{}, err
	}

	rec.Date = clock.Date(date)
	if shift != nil {
		rec.Shift = employee.Shift(*shift)
	}
	rec.CheckInTime = toTimeOfDay(checkIn)
	rec.CheckOutTime = toTimeOfDay(checkOut)

	return rec, nil
}

func scanRecords(rows pgx.Rows, withEmployee bool) ([]attendance.AttendanceRecord, error) {
	var records []attendance.AttendanceRecord
	for rows.Next() {
		rec, err := scanRecord(rows, withEmployee)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func toTimeOfDay(s *string) *clock.TimeOfDay {
	if s == nil {
		return nil
	}
	tod, err := clock.ParseTimeOfDay(*s)
	if err != nil {
		return nil
	}
	return &tod
}
