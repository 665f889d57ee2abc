package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/maktabuz/maktab/core"
	"github.com/maktabuz/maktab/core/teacher"
)

const teacherColumns = `id, user_id, first_name, last_name, employee_number, status, hire_date, created_at, updated_at`

type teacherRow struct {
	ID             string    `db:"id"`
	UserID         string    `db:"user_id"`
	FirstName      string    `db:"first_name"`
	LastName       string    `db:"last_name"`
	EmployeeNumber string    `db:"employee_number"`
	Status         string    `db:"status"`
	HireDate       time.Time `db:"hire_date"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

func (r teacherRow) toTeacher() teacher.Teacher {
	return teacher.Teacher{
		ID:             r.ID,
		UserID:         r.UserID,
		FirstName:      r.FirstName,
		LastName:       r.LastName,
		EmployeeNumber: r.EmployeeNumber,
		Status:         teacher.Status(r.Status),
		HireDate:       r.HireDate,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

type teacherRepository struct {
	db *sqlx.DB
}

var _ teacher.Repository = (*teacherRepository)(nil) // interface compliance check

func NewTeacherRepository(db *sqlx.DB) *teacherRepository {
	return &teacherRepository{db: db}
}

func (repo teacherRepository) trapNoRowsErr(err error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return teacher.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo teacherRepository) teacherConds(filter teacher.QueryFilter) *conds {
	c := new(conds)
	c.addSearch(filter.Search, "first_name", "last_name", "employee_number")
	if filter.Status != "" {
		c.add("status = ?", filter.Status)
	}
	if filter.SubjectID != "" {
		c.add("id IN (SELECT teacher_id FROM subject_teacher WHERE subject_id = ?)", filter.SubjectID)
	}
	if filter.ClassID != "" {
		c.add("id IN (SELECT teacher_id FROM class_teacher WHERE class_id = ?)", filter.ClassID)
	}
	return c
}

func (repo teacherRepository) CreateTeacher(ctx context.Context, tch teacher.Teacher) (teacher.Teacher, error) {
	tch.ID = uuid.New().String()
	query := repo.db.Rebind(`
INSERT INTO teacher (` + teacherColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := repo.db.ExecContext(ctx, query,
		tch.ID, tch.UserID, tch.FirstName, tch.LastName, tch.EmployeeNumber,
		string(tch.Status), tch.HireDate, tch.CreatedAt, tch.UpdatedAt,
	)
	if err != nil {
		return teacher.Teacher{}, trapPqErr(err, "inserting teacher", teacher.ErrNumberExists, teacher.ErrUnknownUser)
	}
	return tch, nil
}

func (repo teacherRepository) GetTeacher(ctx context.Context, filter teacher.GetFilter) (teacher.Teacher, error) {
	c := new(conds)
	switch {
	case filter.ID != "":
		c.add("id = ?", filter.ID)
	case filter.UserID != "":
		c.add("user_id = ?", filter.UserID)
	case filter.EmployeeNumber != "":
		c.add("employee_number = ?", filter.EmployeeNumber)
	default:
		return teacher.Teacher{}, teacher.ErrNotFound
	}

	var row teacherRow
	query := repo.db.Rebind(`SELECT ` + teacherColumns + ` FROM teacher` + c.where())
	if err := repo.db.GetContext(ctx, &row, query, c.args...); err != nil {
		return teacher.Teacher{}, repo.trapNoRowsErr(err, "getting teacher")
	}
	return row.toTeacher(), nil
}

func (repo teacherRepository) QueryTeachers(ctx context.Context, filter teacher.QueryFilter, ordering []core.DBOrdering, page core.Pagination) ([]teacher.Teacher, error) {
	c := repo.teacherConds(filter)
	limit, limitArgs := paginate(page)
	query := `SELECT ` + teacherColumns + ` FROM teacher` + c.where() + orderBy(ordering, teacher.DefaultOrdering()) + limit

	var rows []teacherRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(query), append(c.args, limitArgs...)...); err != nil {
		return nil, errors.Wrap(err, "querying teachers")
	}
	teachers := make([]teacher.Teacher, 0, len(rows))
	for _, row := range rows {
		teachers = append(teachers, row.toTeacher())
	}
	return teachers, nil
}

func (repo teacherRepository) CountTeachers(ctx context.Context, filter teacher.QueryFilter) (int, error) {
	c := repo.teacherConds(filter)
	var total int
	query := repo.db.Rebind(`SELECT COUNT(*) FROM teacher` + c.where())
	if err := repo.db.GetContext(ctx, &total, query, c.args...); err != nil {
		return 0, errors.Wrap(err, "counting teachers")
	}
	return total, nil
}

func (repo teacherRepository) UpdateTeacher(ctx context.Context, tch teacher.Teacher) (teacher.Teacher, error) {
	query := repo.db.Rebind(`
UPDATE teacher
SET first_name = ?, last_name = ?, status = ?, updated_at = ?
WHERE id = ?`)
	res, err := repo.db.ExecContext(ctx, query,
		tch.FirstName, tch.LastName, string(tch.Status), tch.UpdatedAt, tch.ID,
	)
	if err != nil {
		return teacher.Teacher{}, errors.Wrap(err, "updating teacher")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return teacher.Teacher{}, teacher.ErrNotFound
	}
	return tch, nil
}

func (repo teacherRepository) ClassIDs(ctx context.Context, teacherID string) ([]string, error) {
	var ids []string
	query := repo.db.Rebind(`SELECT class_id FROM class_teacher WHERE teacher_id = ?`)
	if err := repo.db.SelectContext(ctx, &ids, query, teacherID); err != nil {
		return nil, errors.Wrap(err, "querying teacher classes")
	}
	return ids, nil
}

func (repo teacherRepository) SubjectIDs(ctx context.Context, teacherID string) ([]string, error) {
	var ids []string
	query := repo.db.Rebind(`SELECT subject_id FROM subject_teacher WHERE teacher_id = ?`)
	if err := repo.db.SelectContext(ctx, &ids, query, teacherID); err != nil {
		return nil, errors.Wrap(err, "querying teacher subjects")
	}
	return ids, nil
}
