package grade

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/maktabuz/maktab/core"
)

var (
	ErrNotFound         = core.NewNotFoundError("grade not found", "baho topilmadi")
	ErrUnknownReference = core.NewReferenceError(
		"referenced student, subject, class or teacher does not exist",
		"ko'rsatilgan o'quvchi, fan, sinf yoki o'qituvchi mavjud emas",
	)
)

type (
	Repository interface {
		CreateGrade(ctx context.Context, grd Grade) (Grade, error)
		GetGrade(ctx context.Context, filter GetFilter) (Grade, error)
		QueryGrades(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering, page core.Pagination) ([]Grade, error)
		// QueryAllGrades returns every matching grade, unpaginated, for the
		// aggregate calculators.
		QueryAllGrades(ctx context.Context, filter QueryFilter) ([]Grade, error)
		CountGrades(ctx context.Context, filter QueryFilter) (int, error)
		UpdateGrade(ctx context.Context, grd Grade) (Grade, error)
		DeleteGradesByID(ctx context.Context, ids ...string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, ng NewGrade) (Grade, error) {
	ng.Clean()

	now := time.Now().UTC()
	grd := Grade{
		StudentID:    ng.StudentID,
		SubjectID:    ng.SubjectID,
		ClassID:      ng.ClassID,
		TeacherID:    ng.TeacherID,
		Value:        ng.Value,
		Type:         ng.Type,
		Semester:     ng.Semester,
		AcademicYear: ng.AcademicYear,
		Weight:       1,
		GradeDate:    ng.GradeDate,
		Comment:      null.NewString(ng.Comment, ng.Comment != ""),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if ng.Weight != nil {
		grd.Weight = *ng.Weight
	}
	if grd.AcademicYear == "" {
		grd.AcademicYear = core.CurrentAcademicYear()
	}
	if grd.GradeDate.IsZero() {
		grd.GradeDate = now
	}

	grd, err := svc.repo.CreateGrade(ctx, grd)
	if err != nil {
		return Grade{}, errors.Wrap(err, "creating grade")
	}
	return grd, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Grade, error) {
	return svc.repo.GetGrade(ctx, GetFilter{ID: id})
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering, page core.Pagination) ([]Grade, int, error) {
	if filter.None {
		return []Grade{}, 0, nil
	}
	grades, err := svc.repo.QueryGrades(ctx, filter, ordering, page)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying grades")
	}
	total, err := svc.repo.CountGrades(ctx, filter)
	if err != nil {
		return nil, 0, errors.Wrap(err, "counting grades")
	}
	return grades, total, nil
}

func (svc *Service) Update(ctx context.Context, id string, ug UpdateGrade) (Grade, error) {
	grd, err := svc.repo.GetGrade(ctx, GetFilter{ID: id})
	if err != nil {
		return Grade{}, err
	}
	if ug.Value != nil {
		grd.Value = *ug.Value
	}
	if ug.Type != "" {
		grd.Type = ug.Type
	}
	if ug.Weight != nil {
		grd.Weight = *ug.Weight
	}
	if !ug.GradeDate.IsZero() {
		grd.GradeDate = ug.GradeDate
	}
	if ug.Comment != nil {
		comment := core.CleanString(*ug.Comment)
		grd.Comment = null.NewString(comment, comment != "")
	}
	grd.UpdatedAt = time.Now().UTC()

	return svc.repo.UpdateGrade(ctx, grd)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteGradesByID(ctx, ids...)
}

// Statistics computes the aggregate statistics of every grade matching the
// (already narrowed) filter.
func (svc *Service) Statistics(ctx context.Context, filter QueryFilter) (Statistics, error) {
	if filter.None {
		return ComputeStatistics(nil), nil
	}
	grades, err := svc.repo.QueryAllGrades(ctx, filter)
	if err != nil {
		return Statistics{}, errors.Wrap(err, "querying grades for statistics")
	}
	return ComputeStatistics(grades), nil
}
