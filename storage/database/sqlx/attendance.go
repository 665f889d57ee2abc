package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/maktabuz/maktab/core"
	"github.com/maktabuz/maktab/core/attendance"
)

const attendanceColumns = `id, student_id, class_id, subject_id, teacher_id, date, status, time_in, reason, notes, created_at, updated_at`

type attendanceRow struct {
	ID        string      `db:"id"`
	StudentID string      `db:"student_id"`
	ClassID   string      `db:"class_id"`
	SubjectID null.String `db:"subject_id"`
	TeacherID string      `db:"teacher_id"`
	Date      time.Time   `db:"date"`
	Status    string      `db:"status"`
	TimeIn    null.Time   `db:"time_in"`
	Reason    null.String `db:"reason"`
	Notes     null.String `db:"notes"`
	CreatedAt time.Time   `db:"created_at"`
	UpdatedAt time.Time   `db:"updated_at"`
}

func (r attendanceRow) toAttendance() attendance.Attendance {
	return attendance.Attendance{
		ID:        r.ID,
		StudentID: r.StudentID,
		ClassID:   r.ClassID,
		SubjectID: r.SubjectID,
		TeacherID: r.TeacherID,
		Date:      r.Date,
		Status:    attendance.Status(r.Status),
		TimeIn:    r.TimeIn,
		Reason:    r.Reason,
		Notes:     r.Notes,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type attendanceRepository struct {
	db *sqlx.DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *sqlx.DB) *attendanceRepository {
	return &attendanceRepository{db: db}
}

func (repo attendanceRepository) trapNoRowsErr(err error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return attendance.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo attendanceRepository) attendanceConds(filter attendance.QueryFilter) *conds {
	c := new(conds)
	if len(filter.StudentIDs) > 0 {
		c.add("student_id IN (?)", filter.StudentIDs)
	}
	if filter.StudentID != "" {
		c.add("student_id = ?", filter.StudentID)
	}
	if filter.ClassID != "" {
		c.add("class_id = ?", filter.ClassID)
	}
	if filter.SubjectID != "" {
		c.add("subject_id = ?", filter.SubjectID)
	}
	if filter.TeacherID != "" {
		c.add("teacher_id = ?", filter.TeacherID)
	}
	if filter.Status != "" {
		c.add("status = ?", filter.Status)
	}
	if !filter.DateFrom.IsZero() {
		c.add("date >= ?", filter.DateFrom)
	}
	if !filter.DateTo.IsZero() {
		c.add("date <= ?", filter.DateTo)
	}
	return c
}

// UpsertAttendance relies on the unique (student_id, class_id, date) index:
// conflicting marks overwrite the mutable fields, last write wins.
func (repo attendanceRepository) UpsertAttendance(ctx context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	att.ID = uuid.New().String()
	query := repo.db.Rebind(`
INSERT INTO attendance (` + attendanceColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (student_id, class_id, date) DO UPDATE
SET subject_id = EXCLUDED.subject_id,
    teacher_id = EXCLUDED.teacher_id,
    status     = EXCLUDED.status,
    time_in    = EXCLUDED.time_in,
    reason     = EXCLUDED.reason,
    notes      = EXCLUDED.notes,
    updated_at = EXCLUDED.updated_at
RETURNING ` + attendanceColumns)

	var row attendanceRow
	err := repo.db.GetContext(ctx, &row, query,
		att.ID, att.StudentID, att.ClassID, att.SubjectID, att.TeacherID,
		att.Date, string(att.Status), att.TimeIn, att.Reason, att.Notes,
		att.CreatedAt, att.UpdatedAt,
	)
	if err != nil {
		return attendance.Attendance{}, trapPqErr(err, "upserting attendance", attendance.ErrUnknownReference, attendance.ErrUnknownReference)
	}
	return row.toAttendance(), nil
}

func (repo attendanceRepository) GetAttendance(ctx context.Context, filter attendance.GetFilter) (attendance.Attendance, error) {
	c := new(conds)
	switch {
	case filter.ID != "":
		c.add("id = ?", filter.ID)
	case filter.StudentID != "" && filter.ClassID != "" && !filter.Date.IsZero():
		c.add("student_id = ?", filter.StudentID)
		c.add("class_id = ?", filter.ClassID)
		c.add("date = ?", filter.Date)
	default:
		return attendance.Attendance{}, attendance.ErrNotFound
	}

	var row attendanceRow
	query := repo.db.Rebind(`SELECT ` + attendanceColumns + ` FROM attendance` + c.where())
	if err := repo.db.GetContext(ctx, &row, query, c.args...); err != nil {
		return attendance.Attendance{}, repo.trapNoRowsErr(err, "getting attendance")
	}
	return row.toAttendance(), nil
}

func (repo attendanceRepository) queryAttendance(ctx context.Context, filter attendance.QueryFilter, ordering []core.DBOrdering, page core.Pagination) ([]attendance.Attendance, error) {
	c := repo.attendanceConds(filter)
	limit, limitArgs := paginate(page)

	query, args, err := sqlx.In(
		`SELECT `+attendanceColumns+` FROM attendance`+c.where()+orderBy(ordering, attendance.DefaultOrdering())+limit,
		append(c.args, limitArgs...)...,
	)
	if err != nil {
		return nil, errors.Wrap(err, "building attendance query")
	}

	var rows []attendanceRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "querying attendance")
	}
	records := make([]attendance.Attendance, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.toAttendance())
	}
	return records, nil
}

func (repo attendanceRepository) QueryAttendance(ctx context.Context, filter attendance.QueryFilter, ordering []core.DBOrdering, page core.Pagination) ([]attendance.Attendance, error) {
	return repo.queryAttendance(ctx, filter, ordering, page)
}

func (repo attendanceRepository) QueryAllAttendance(ctx context.Context, filter attendance.QueryFilter) ([]attendance.Attendance, error) {
	return repo.queryAttendance(ctx, filter, nil, core.Pagination{})
}

func (repo attendanceRepository) CountAttendance(ctx context.Context, filter attendance.QueryFilter) (int, error) {
	c := repo.attendanceConds(filter)
	query, args, err := sqlx.In(`SELECT COUNT(*) FROM attendance`+c.where(), c.args...)
	if err != nil {
		return 0, errors.Wrap(err, "building attendance count query")
	}
	var total int
	if err := repo.db.GetContext(ctx, &total, repo.db.Rebind(query), args...); err != nil {
		return 0, errors.Wrap(err, "counting attendance")
	}
	return total, nil
}
