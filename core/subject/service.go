package subject

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/maktabuz/maktab/core"
)

var (
	ErrNotFound       = core.NewNotFoundError("subject not found", "fan topilmadi")
	ErrCodeExists     = core.NewConflictError("a subject with this code already exists", "bu kodli fan allaqachon mavjud")
	ErrUnknownTeacher = core.NewReferenceError("referenced teacher does not exist", "ko'rsatilgan o'qituvchi mavjud emas")
)

type (
	Repository interface {
		CreateSubject(ctx context.Context, sbj Subject) (Subject, error)
		GetSubject(ctx context.Context, filter GetFilter) (Subject, error)
		QuerySubjects(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering, page core.Pagination) ([]Subject, error)
		CountSubjects(ctx context.Context, filter QueryFilter) (int, error)
		UpdateSubject(ctx context.Context, sbj Subject) (Subject, error)
		AssignTeacher(ctx context.Context, subjectID, teacherID string) error
		UnassignTeacher(ctx context.Context, subjectID, teacherID string) error
		// TeacherIDs returns the ids of the teachers assigned to the subject.
		TeacherIDs(ctx context.Context, subjectID string) ([]string, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, ns NewSubject) (Subject, error) {
	ns.Clean()

	now := time.Now().UTC()
	sbj := Subject{
		Name:       ns.Name,
		Code:       ns.Code,
		GradeLevel: ns.GradeLevel,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	sbj, err := svc.repo.CreateSubject(ctx, sbj)
	if err != nil {
		return Subject{}, errors.Wrap(err, "creating subject")
	}
	return sbj, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Subject, error) {
	return svc.repo.GetSubject(ctx, GetFilter{ID: id})
}

func (svc *Service) GetByCode(ctx context.Context, code string) (Subject, error) {
	return svc.repo.GetSubject(ctx, GetFilter{Code: core.CleanString(code)})
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering, page core.Pagination) ([]Subject, int, error) {
	subjects, err := svc.repo.QuerySubjects(ctx, filter, ordering, page)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying subjects")
	}
	total, err := svc.repo.CountSubjects(ctx, filter)
	if err != nil {
		return nil, 0, errors.Wrap(err, "counting subjects")
	}
	return subjects, total, nil
}

func (svc *Service) Update(ctx context.Context, id string, us UpdateSubject) (Subject, error) {
	us.Clean()

	sbj, err := svc.repo.GetSubject(ctx, GetFilter{ID: id})
	if err != nil {
		return Subject{}, err
	}
	if us.Name != "" {
		sbj.Name = us.Name
	}
	if us.GradeLevel != 0 {
		sbj.GradeLevel = us.GradeLevel
	}
	sbj.UpdatedAt = time.Now().UTC()

	return svc.repo.UpdateSubject(ctx, sbj)
}

func (svc *Service) AssignTeacher(ctx context.Context, subjectID, teacherID string) error {
	if _, err := svc.repo.GetSubject(ctx, GetFilter{ID: subjectID}); err != nil {
		return err
	}
	return svc.repo.AssignTeacher(ctx, subjectID, teacherID)
}

func (svc *Service) UnassignTeacher(ctx context.Context, subjectID, teacherID string) error {
	if _, err := svc.repo.GetSubject(ctx, GetFilter{ID: subjectID}); err != nil {
		return err
	}
	return svc.repo.UnassignTeacher(ctx, subjectID, teacherID)
}

func (svc *Service) TeacherIDs(ctx context.Context, subjectID string) ([]string, error) {
	ids, err := svc.repo.TeacherIDs(ctx, subjectID)
	return ids, errors.Wrap(err, "resolving subject teachers")
}
