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
	"github.com/maktabuz/maktab/core/grade"
)

const gradeColumns = `id, student_id, subject_id, class_id, teacher_id, grade_value, grade_type, semester, academic_year, weight, grade_date, comment, created_at, updated_at`

type gradeRow struct {
	ID           string      `db:"id"`
	StudentID    string      `db:"student_id"`
	SubjectID    string      `db:"subject_id"`
	ClassID      string      `db:"class_id"`
	TeacherID    string      `db:"teacher_id"`
	Value        float64     `db:"grade_value"`
	Type         string      `db:"grade_type"`
	Semester     int         `db:"semester"`
	AcademicYear string      `db:"academic_year"`
	Weight       float64     `db:"weight"`
	GradeDate    time.Time   `db:"grade_date"`
	Comment      null.String `db:"comment"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
}

func (r gradeRow) toGrade() grade.Grade {
	return grade.Grade{
		ID:           r.ID,
		StudentID:    r.StudentID,
		SubjectID:    r.SubjectID,
		ClassID:      r.ClassID,
		TeacherID:    r.TeacherID,
		Value:        r.Value,
		Type:         grade.Type(r.Type),
		Semester:     r.Semester,
		AcademicYear: r.AcademicYear,
		Weight:       r.Weight,
		GradeDate:    r.GradeDate,
		Comment:      r.Comment,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

type gradeRepository struct {
	db *sqlx.DB
}

var _ grade.Repository = (*gradeRepository)(nil) // interface compliance check

func NewGradeRepository(db *sqlx.DB) *gradeRepository {
	return &gradeRepository{db: db}
}

func (repo gradeRepository) trapNoRowsErr(err error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return grade.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo gradeRepository) gradeConds(filter grade.QueryFilter) *conds {
	c := new(conds)
	if len(filter.StudentIDs) > 0 {
		c.add("student_id IN (?)", filter.StudentIDs)
	}
	if filter.StudentID != "" {
		c.add("student_id = ?", filter.StudentID)
	}
	if filter.SubjectID != "" {
		c.add("subject_id = ?", filter.SubjectID)
	}
	if filter.ClassID != "" {
		c.add("class_id = ?", filter.ClassID)
	}
	if filter.TeacherID != "" {
		c.add("teacher_id = ?", filter.TeacherID)
	}
	if filter.Type != "" {
		c.add("grade_type = ?", filter.Type)
	}
	if filter.Semester != 0 {
		c.add("semester = ?", filter.Semester)
	}
	if filter.AcademicYear != "" {
		c.add("academic_year = ?", filter.AcademicYear)
	}
	if !filter.DateFrom.IsZero() {
		c.add("grade_date >= ?", filter.DateFrom)
	}
	if !filter.DateTo.IsZero() {
		c.add("grade_date <= ?", filter.DateTo)
	}
	return c
}

func (repo gradeRepository) CreateGrade(ctx context.Context, grd grade.Grade) (grade.Grade, error) {
	grd.ID = uuid.New().String()
	query := repo.db.Rebind(`
INSERT INTO grade (` + gradeColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := repo.db.ExecContext(ctx, query,
		grd.ID, grd.StudentID, grd.SubjectID, grd.ClassID, grd.TeacherID,
		grd.Value, string(grd.Type), grd.Semester, grd.AcademicYear, grd.Weight,
		grd.GradeDate, grd.Comment, grd.CreatedAt, grd.UpdatedAt,
	)
	if err != nil {
		return grade.Grade{}, trapPqErr(err, "inserting grade", grade.ErrUnknownReference, grade.ErrUnknownReference)
	}
	return grd, nil
}

func (repo gradeRepository) GetGrade(ctx context.Context, filter grade.GetFilter) (grade.Grade, error) {
	if filter.ID == "" {
		return grade.Grade{}, grade.ErrNotFound
	}
	var row gradeRow
	query := repo.db.Rebind(`SELECT ` + gradeColumns + ` FROM grade WHERE id = ?`)
	if err := repo.db.GetContext(ctx, &row, query, filter.ID); err != nil {
		return grade.Grade{}, repo.trapNoRowsErr(err, "getting grade")
	}
	return row.toGrade(), nil
}

func (repo gradeRepository) queryGrades(ctx context.Context, filter grade.QueryFilter, ordering []core.DBOrdering, page core.Pagination) ([]grade.Grade, error) {
	c := repo.gradeConds(filter)
	limit, limitArgs := paginate(page)

	query, args, err := sqlx.In(
		`SELECT `+gradeColumns+` FROM grade`+c.where()+orderBy(ordering, grade.DefaultOrdering())+limit,
		append(c.args, limitArgs...)...,
	)
	if err != nil {
		return nil, errors.Wrap(err, "building grade query")
	}

	var rows []gradeRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "querying grades")
	}
	grades := make([]grade.Grade, 0, len(rows))
	for _, row := range rows {
		grades = append(grades, row.toGrade())
	}
	return grades, nil
}

func (repo gradeRepository) QueryGrades(ctx context.Context, filter grade.QueryFilter, ordering []core.DBOrdering, page core.Pagination) ([]grade.Grade, error) {
	return repo.queryGrades(ctx, filter, ordering, page)
}

func (repo gradeRepository) QueryAllGrades(ctx context.Context, filter grade.QueryFilter) ([]grade.Grade, error) {
	return repo.queryGrades(ctx, filter, nil, core.Pagination{})
}

func (repo gradeRepository) CountGrades(ctx context.Context, filter grade.QueryFilter) (int, error) {
	c := repo.gradeConds(filter)
	query, args, err := sqlx.In(`SELECT COUNT(*) FROM grade`+c.where(), c.args...)
	if err != nil {
		return 0, errors.Wrap(err, "building grade count query")
	}
	var total int
	if err := repo.db.GetContext(ctx, &total, repo.db.Rebind(query), args...); err != nil {
		return 0, errors.Wrap(err, "counting grades")
	}
	return total, nil
}

func (repo gradeRepository) UpdateGrade(ctx context.Context, grd grade.Grade) (grade.Grade, error) {
	query := repo.db.Rebind(`
UPDATE grade
SET grade_value = ?, grade_type = ?, weight = ?, grade_date = ?, comment = ?, updated_at = ?
WHERE id = ?`)
	res, err := repo.db.ExecContext(ctx, query,
		grd.Value, string(grd.Type), grd.Weight, grd.GradeDate, grd.Comment, grd.UpdatedAt, grd.ID,
	)
	if err != nil {
		return grade.Grade{}, errors.Wrap(err, "updating grade")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return grade.Grade{}, grade.ErrNotFound
	}
	return grd, nil
}

func (repo gradeRepository) DeleteGradesByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM grade WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building grade delete query")
	}
	if _, err := repo.db.ExecContext(ctx, repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting grades")
	}
	return nil
}
