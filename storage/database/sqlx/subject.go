package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/maktabuz/maktab/core"
	"github.com/maktabuz/maktab/core/subject"
)

const subjectColumns = `id, name, code, grade_level, created_at, updated_at`

type subjectRow struct {
	ID         string    `db:"id"`
	Name       string    `db:"name"`
	Code       string    `db:"code"`
	GradeLevel int       `db:"grade_level"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (r subjectRow) toSubject() subject.Subject {
	return subject.Subject{
		ID:         r.ID,
		Name:       r.Name,
		Code:       r.Code,
		GradeLevel: r.GradeLevel,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

type subjectRepository struct {
	db *sqlx.DB
}

var _ subject.Repository = (*subjectRepository)(nil) // interface compliance check

func NewSubjectRepository(db *sqlx.DB) *subjectRepository {
	return &subjectRepository{db: db}
}

func (repo subjectRepository) trapNoRowsErr(err error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return subject.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo subjectRepository) subjectConds(filter subject.QueryFilter) *conds {
	c := new(conds)
	c.addSearch(filter.Search, "name", "code")
	if filter.GradeLevel != 0 {
		c.add("grade_level = ?", filter.GradeLevel)
	}
	if filter.TeacherID != "" {
		c.add("id IN (SELECT subject_id FROM subject_teacher WHERE teacher_id = ?)", filter.TeacherID)
	}
	return c
}

func (repo subjectRepository) CreateSubject(ctx context.Context, sbj subject.Subject) (subject.Subject, error) {
	sbj.ID = uuid.New().String()
	query := repo.db.Rebind(`
INSERT INTO subject (` + subjectColumns + `)
VALUES (?, ?, ?, ?, ?, ?)`)
	_, err := repo.db.ExecContext(ctx, query,
		sbj.ID, sbj.Name, sbj.Code, sbj.GradeLevel, sbj.CreatedAt, sbj.UpdatedAt,
	)
	if err != nil {
		return subject.Subject{}, trapPqErr(err, "inserting subject", subject.ErrCodeExists, subject.ErrUnknownTeacher)
	}
	return sbj, nil
}

func (repo subjectRepository) GetSubject(ctx context.Context, filter subject.GetFilter) (subject.Subject, error) {
	c := new(conds)
	switch {
	case filter.ID != "":
		c.add("id = ?", filter.ID)
	case filter.Code != "":
		c.add("code = ?", filter.Code)
	default:
		return subject.Subject{}, subject.ErrNotFound
	}

	var row subjectRow
	query := repo.db.Rebind(`SELECT ` + subjectColumns + ` FROM subject` + c.where())
	if err := repo.db.GetContext(ctx, &row, query, c.args...); err != nil {
		return subject.Subject{}, repo.trapNoRowsErr(err, "getting subject")
	}
	return row.toSubject(), nil
}

func (repo subjectRepository) QuerySubjects(ctx context.Context, filter subject.QueryFilter, ordering []core.DBOrdering, page core.Pagination) ([]subject.Subject, error) {
	c := repo.subjectConds(filter)
	limit, limitArgs := paginate(page)
	query := `SELECT ` + subjectColumns + ` FROM subject` + c.where() + orderBy(ordering, subject.DefaultOrdering()) + limit

	var rows []subjectRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(query), append(c.args, limitArgs...)...); err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}
	subjects := make([]subject.Subject, 0, len(rows))
	for _, row := range rows {
		subjects = append(subjects, row.toSubject())
	}
	return subjects, nil
}

func (repo subjectRepository) CountSubjects(ctx context.Context, filter subject.QueryFilter) (int, error) {
	c := repo.subjectConds(filter)
	var total int
	query := repo.db.Rebind(`SELECT COUNT(*) FROM subject` + c.where())
	if err := repo.db.GetContext(ctx, &total, query, c.args...); err != nil {
		return 0, errors.Wrap(err, "counting subjects")
	}
	return total, nil
}

func (repo subjectRepository) UpdateSubject(ctx context.Context, sbj subject.Subject) (subject.Subject, error) {
	query := repo.db.Rebind(`
UPDATE subject
SET name = ?, grade_level = ?, updated_at = ?
WHERE id = ?`)
	res, err := repo.db.ExecContext(ctx, query, sbj.Name, sbj.GradeLevel, sbj.UpdatedAt, sbj.ID)
	if err != nil {
		return subject.Subject{}, trapPqErr(err, "updating subject", subject.ErrCodeExists, subject.ErrUnknownTeacher)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return subject.Subject{}, subject.ErrNotFound
	}
	return sbj, nil
}

func (repo subjectRepository) AssignTeacher(ctx context.Context, subjectID, teacherID string) error {
	query := repo.db.Rebind(`
INSERT INTO subject_teacher (subject_id, teacher_id) VALUES (?, ?)
ON CONFLICT (subject_id, teacher_id) DO NOTHING`)
	if _, err := repo.db.ExecContext(ctx, query, subjectID, teacherID); err != nil {
		return trapPqErr(err, "assigning teacher", subject.ErrCodeExists, subject.ErrUnknownTeacher)
	}
	return nil
}

func (repo subjectRepository) UnassignTeacher(ctx context.Context, subjectID, teacherID string) error {
	query := repo.db.Rebind(`DELETE FROM subject_teacher WHERE subject_id = ? AND teacher_id = ?`)
	if _, err := repo.db.ExecContext(ctx, query, subjectID, teacherID); err != nil {
		return errors.Wrap(err, "unassigning teacher")
	}
	return nil
}

func (repo subjectRepository) TeacherIDs(ctx context.Context, subjectID string) ([]string, error) {
	var ids []string
	query := repo.db.Rebind(`SELECT teacher_id FROM subject_teacher WHERE subject_id = ?`)
	if err := repo.db.SelectContext(ctx, &ids, query, subjectID); err != nil {
		return nil, errors.Wrap(err, "querying subject teachers")
	}
	return ids, nil
}
