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
	"github.com/maktabuz/maktab/core/student"
)

const studentColumns = `id, user_id, first_name, last_name, student_number, class_id, status, enrollment_date, created_at, updated_at`

type studentRow struct {
	ID             string      `db:"id"`
	UserID         string      `db:"user_id"`
	FirstName      string      `db:"first_name"`
	LastName       string      `db:"last_name"`
	StudentNumber  string      `db:"student_number"`
	ClassID        null.String `db:"class_id"`
	Status         string      `db:"status"`
	EnrollmentDate time.Time   `db:"enrollment_date"`
	CreatedAt      time.Time   `db:"created_at"`
	UpdatedAt      time.Time   `db:"updated_at"`
}

func (r studentRow) toStudent() student.Student {
	return student.Student{
		ID:             r.ID,
		UserID:         r.UserID,
		FirstName:      r.FirstName,
		LastName:       r.LastName,
		StudentNumber:  r.StudentNumber,
		ClassID:        r.ClassID,
		Status:         student.Status(r.Status),
		EnrollmentDate: r.EnrollmentDate,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) *studentRepository {
	return &studentRepository{db: db}
}

func (repo studentRepository) trapNoRowsErr(err error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return student.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo studentRepository) studentConds(filter student.QueryFilter) *conds {
	c := new(conds)
	if len(filter.IDs) > 0 {
		c.add("id IN (?)", filter.IDs)
	}
	c.addSearch(filter.Search, "first_name", "last_name", "student_number")
	if filter.ClassID != "" {
		c.add("class_id = ?", filter.ClassID)
	}
	if filter.Status != "" {
		c.add("status = ?", filter.Status)
	}
	if !filter.EnrolledFrom.IsZero() {
		c.add("enrollment_date >= ?", filter.EnrolledFrom)
	}
	if !filter.EnrolledTo.IsZero() {
		c.add("enrollment_date <= ?", filter.EnrolledTo)
	}
	return c
}

func (repo studentRepository) CreateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	std.ID = uuid.New().String()
	query := repo.db.Rebind(`
INSERT INTO student (` + studentColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := repo.db.ExecContext(ctx, query,
		std.ID, std.UserID, std.FirstName, std.LastName, std.StudentNumber,
		std.ClassID, string(std.Status), std.EnrollmentDate, std.CreatedAt, std.UpdatedAt,
	)
	if err != nil {
		return student.Student{}, trapPqErr(err, "inserting student", student.ErrNumberExists, student.ErrUnknownClass)
	}
	return std, nil
}

func (repo studentRepository) GetStudent(ctx context.Context, filter student.GetFilter) (student.Student, error) {
	c := new(conds)
	switch {
	case filter.ID != "":
		c.add("id = ?", filter.ID)
	case filter.UserID != "":
		c.add("user_id = ?", filter.UserID)
	case filter.StudentNumber != "":
		c.add("student_number = ?", filter.StudentNumber)
	default:
		return student.Student{}, student.ErrNotFound
	}

	var row studentRow
	query := repo.db.Rebind(`SELECT ` + studentColumns + ` FROM student` + c.where())
	if err := repo.db.GetContext(ctx, &row, query, c.args...); err != nil {
		return student.Student{}, repo.trapNoRowsErr(err, "getting student")
	}
	return row.toStudent(), nil
}

func (repo studentRepository) QueryStudents(ctx context.Context, filter student.QueryFilter, ordering []core.DBOrdering, page core.Pagination) ([]student.Student, error) {
	c := repo.studentConds(filter)
	limit, limitArgs := paginate(page)

	query, args, err := sqlx.In(
		`SELECT `+studentColumns+` FROM student`+c.where()+orderBy(ordering, student.DefaultOrdering())+limit,
		append(c.args, limitArgs...)...,
	)
	if err != nil {
		return nil, errors.Wrap(err, "building student query")
	}

	var rows []studentRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	students := make([]student.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, row.toStudent())
	}
	return students, nil
}

func (repo studentRepository) CountStudents(ctx context.Context, filter student.QueryFilter) (int, error) {
	c := repo.studentConds(filter)
	query, args, err := sqlx.In(`SELECT COUNT(*) FROM student`+c.where(), c.args...)
	if err != nil {
		return 0, errors.Wrap(err, "building student count query")
	}
	var total int
	if err := repo.db.GetContext(ctx, &total, repo.db.Rebind(query), args...); err != nil {
		return 0, errors.Wrap(err, "counting students")
	}
	return total, nil
}

func (repo studentRepository) UpdateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	query := repo.db.Rebind(`
UPDATE student
SET first_name = ?, last_name = ?, class_id = ?, status = ?, updated_at = ?
WHERE id = ?`)
	res, err := repo.db.ExecContext(ctx, query,
		std.FirstName, std.LastName, std.ClassID, string(std.Status), std.UpdatedAt, std.ID,
	)
	if err != nil {
		return student.Student{}, trapPqErr(err, "updating student", student.ErrNumberExists, student.ErrUnknownClass)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return std, nil
}

func (repo studentRepository) GuardianIDs(ctx context.Context, studentID string) ([]string, error) {
	var ids []string
	query := repo.db.Rebind(`SELECT guardian_id FROM guardian_student WHERE student_id = ?`)
	if err := repo.db.SelectContext(ctx, &ids, query, studentID); err != nil {
		return nil, errors.Wrap(err, "querying student guardians")
	}
	return ids, nil
}
