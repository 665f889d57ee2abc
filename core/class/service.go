package class

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/maktabuz/maktab/core"
)

var (
	ErrNotFound       = core.NewNotFoundError("class not found", "sinf topilmadi")
	ErrClassExists    = core.NewConflictError("a class with this grade, section and academic year already exists", "bu sinf allaqachon mavjud")
	ErrUnknownTeacher = core.NewReferenceError("referenced teacher does not exist", "ko'rsatilgan o'qituvchi mavjud emas")
)

type (
	Repository interface {
		CreateClass(ctx context.Context, cls Class) (Class, error)
		GetClass(ctx context.Context, filter GetFilter) (Class, error)
		QueryClasses(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering, page core.Pagination) ([]Class, error)
		CountClasses(ctx context.Context, filter QueryFilter) (int, error)
		UpdateClass(ctx context.Context, cls Class) (Class, error)
		AssignTeacher(ctx context.Context, classID, teacherID string) error
		UnassignTeacher(ctx context.Context, classID, teacherID string) error
		// TeacherIDs returns the ids of the teachers assigned to the class;
		// it feeds the authorization policy's assignment checks.
		TeacherIDs(ctx context.Context, classID string) ([]string, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, nc NewClass) (Class, error) {
	nc.Clean()

	now := time.Now().UTC()
	cls := Class{
		Grade:          nc.Grade,
		Section:        nc.Section,
		AcademicYear:   nc.AcademicYear,
		ClassTeacherID: null.NewString(nc.ClassTeacherID, nc.ClassTeacherID != ""),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	cls, err := svc.repo.CreateClass(ctx, cls)
	if err != nil {
		return Class{}, errors.Wrap(err, "creating class")
	}
	return cls, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Class, error) {
	return svc.repo.GetClass(ctx, GetFilter{ID: id})
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering, page core.Pagination) ([]Class, int, error) {
	classes, err := svc.repo.QueryClasses(ctx, filter, ordering, page)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying classes")
	}
	total, err := svc.repo.CountClasses(ctx, filter)
	if err != nil {
		return nil, 0, errors.Wrap(err, "counting classes")
	}
	return classes, total, nil
}

func (svc *Service) Update(ctx context.Context, id string, uc UpdateClass) (Class, error) {
	cls, err := svc.repo.GetClass(ctx, GetFilter{ID: id})
	if err != nil {
		return Class{}, err
	}
	if uc.ClassTeacherID != nil {
		cls.ClassTeacherID = null.NewString(*uc.ClassTeacherID, *uc.ClassTeacherID != "")
	}
	cls.UpdatedAt = time.Now().UTC()

	return svc.repo.UpdateClass(ctx, cls)
}

func (svc *Service) AssignTeacher(ctx context.Context, classID, teacherID string) error {
	if _, err := svc.repo.GetClass(ctx, GetFilter{ID: classID}); err != nil {
		return err
	}
	return svc.repo.AssignTeacher(ctx, classID, teacherID)
}

func (svc *Service) UnassignTeacher(ctx context.Context, classID, teacherID string) error {
	if _, err := svc.repo.GetClass(ctx, GetFilter{ID: classID}); err != nil {
		return err
	}
	return svc.repo.UnassignTeacher(ctx, classID, teacherID)
}

func (svc *Service) TeacherIDs(ctx context.Context, classID string) ([]string, error) {
	ids, err := svc.repo.TeacherIDs(ctx, classID)
	return ids, errors.Wrap(err, "resolving class teachers")
}
