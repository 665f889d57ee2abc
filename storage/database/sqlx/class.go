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
	"github.com/maktabuz/maktab/core/class"
)

const classColumns = `id, grade, section, academic_year, class_teacher_id, created_at, updated_at`

type classRow struct {
	ID             string      `db:"id"`
	Grade          int         `db:"grade"`
	Section        string      `db:"section"`
	AcademicYear   string      `db:"academic_year"`
	ClassTeacherID null.String `db:"class_teacher_id"`
	CreatedAt      time.Time   `db:"created_at"`
	UpdatedAt      time.Time   `db:"updated_at"`
}

func (r classRow) toClass() class.Class {
	return class.Class{
		ID:             r.ID,
		Grade:          r.Grade,
		Section:        r.Section,
		AcademicYear:   r.AcademicYear,
		ClassTeacherID: r.ClassTeacherID,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

type classRepository struct {
	db *sqlx.DB
}

var _ class.Repository = (*classRepository)(nil) // interface compliance check

func NewClassRepository(db *sqlx.DB) *classRepository {
	return &classRepository{db: db}
}

func (repo classRepository) trapNoRowsErr(err error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return class.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo classRepository) classConds(filter class.QueryFilter) *conds {
	c := new(conds)
	if filter.Grade != 0 {
		c.add("grade = ?", filter.Grade)
	}
	if filter.Section != "" {
		c.add("section = ?", filter.Section)
	}
	if filter.AcademicYear != "" {
		c.add("academic_year = ?", filter.AcademicYear)
	}
	if filter.TeacherID != "" {
		c.add("id IN (SELECT class_id FROM class_teacher WHERE teacher_id = ?)", filter.TeacherID)
	}
	return c
}

func (repo classRepository) CreateClass(ctx context.Context, cls class.Class) (class.Class, error) {
	cls.ID = uuid.New().String()
	query := repo.db.Rebind(`
INSERT INTO class (` + classColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?)`)
	_, err := repo.db.ExecContext(ctx, query,
		cls.ID, cls.Grade, cls.Section, cls.AcademicYear, cls.ClassTeacherID, cls.CreatedAt, cls.UpdatedAt,
	)
	if err != nil {
		return class.Class{}, trapPqErr(err, "inserting class", class.ErrClassExists, class.ErrUnknownTeacher)
	}
	return cls, nil
}

func (repo classRepository) GetClass(ctx context.Context, filter class.GetFilter) (class.Class, error) {
	if filter.ID == "" {
		return class.Class{}, class.ErrNotFound
	}
	var row classRow
	query := repo.db.Rebind(`SELECT ` + classColumns + ` FROM class WHERE id = ?`)
	if err := repo.db.GetContext(ctx, &row, query, filter.ID); err != nil {
		return class.Class{}, repo.trapNoRowsErr(err, "getting class")
	}
	return row.toClass(), nil
}

func (repo classRepository) QueryClasses(ctx context.Context, filter class.QueryFilter, ordering []core.DBOrdering, page core.Pagination) ([]class.Class, error) {
	c := repo.classConds(filter)
	limit, limitArgs := paginate(page)
	query := `SELECT ` + classColumns + ` FROM class` + c.where() + orderBy(ordering, class.DefaultOrdering()) + limit

	var rows []classRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(query), append(c.args, limitArgs...)...); err != nil {
		return nil, errors.Wrap(err, "querying classes")
	}
	classes := make([]class.Class, 0, len(rows))
	for _, row := range rows {
		classes = append(classes, row.toClass())
	}
	return classes, nil
}

func (repo classRepository) CountClasses(ctx context.Context, filter class.QueryFilter) (int, error) {
	c := repo.classConds(filter)
	var total int
	query := repo.db.Rebind(`SELECT COUNT(*) FROM class` + c.where())
	if err := repo.db.GetContext(ctx, &total, query, c.args...); err != nil {
		return 0, errors.Wrap(err, "counting classes")
	}
	return total, nil
}

func (repo classRepository) UpdateClass(ctx context.Context, cls class.Class) (class.Class, error) {
	query := repo.db.Rebind(`
UPDATE class
SET class_teacher_id = ?, updated_at = ?
WHERE id = ?`)
	res, err := repo.db.ExecContext(ctx, query, cls.ClassTeacherID, cls.UpdatedAt, cls.ID)
	if err != nil {
		return class.Class{}, trapPqErr(err, "updating class", class.ErrClassExists, class.ErrUnknownTeacher)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return class.Class{}, class.ErrNotFound
	}
	return cls, nil
}

func (repo classRepository) AssignTeacher(ctx context.Context, classID, teacherID string) error {
	query := repo.db.Rebind(`
INSERT INTO class_teacher (class_id, teacher_id) VALUES (?, ?)
ON CONFLICT (class_id, teacher_id) DO NOTHING`)
	if _, err := repo.db.ExecContext(ctx, query, classID, teacherID); err != nil {
		return trapPqErr(err, "assigning teacher", class.ErrClassExists, class.ErrUnknownTeacher)
	}
	return nil
}

func (repo classRepository) UnassignTeacher(ctx context.Context, classID, teacherID string) error {
	query := repo.db.Rebind(`DELETE FROM class_teacher WHERE class_id = ? AND teacher_id = ?`)
	if _, err := repo.db.ExecContext(ctx, query, classID, teacherID); err != nil {
		return errors.Wrap(err, "unassigning teacher")
	}
	return nil
}

func (repo classRepository) TeacherIDs(ctx context.Context, classID string) ([]string, error) {
	var ids []string
	query := repo.db.Rebind(`SELECT teacher_id FROM class_teacher WHERE class_id = ?`)
	if err := repo.db.SelectContext(ctx, &ids, query, classID); err != nil {
		return nil, errors.Wrap(err, "querying class teachers")
	}
	return ids, nil
}
