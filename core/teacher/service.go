package teacher

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/maktabuz/maktab/core"
)

var (
	ErrNotFound     = core.NewNotFoundError("teacher not found", "o'qituvchi topilmadi")
	ErrNumberExists = core.NewConflictError("a teacher with this employee number already exists", "bu raqamli o'qituvchi allaqachon mavjud")
	ErrUnknownUser  = core.NewReferenceError("referenced user does not exist", "ko'rsatilgan foydalanuvchi mavjud emas")
)

type (
	Repository interface {
		CreateTeacher(ctx context.Context, tch Teacher) (Teacher, error)
		GetTeacher(ctx context.Context, filter GetFilter) (Teacher, error)
		QueryTeachers(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering, page core.Pagination) ([]Teacher, error)
		CountTeachers(ctx context.Context, filter QueryFilter) (int, error)
		UpdateTeacher(ctx context.Context, tch Teacher) (Teacher, error)
		// ClassIDs and SubjectIDs return the teacher's assignment sets; they
		// feed the authorization policy's assigned-resource checks.
		ClassIDs(ctx context.Context, teacherID string) ([]string, error)
		SubjectIDs(ctx context.Context, teacherID string) ([]string, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, nt NewTeacher) (Teacher, error) {
	nt.Clean()

	now := time.Now().UTC()
	tch := Teacher{
		UserID:         nt.UserID,
		FirstName:      nt.FirstName,
		LastName:       nt.LastName,
		EmployeeNumber: nt.EmployeeNumber,
		Status:         StatusActive,
		HireDate:       nt.HireDate,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	tch, err := svc.repo.CreateTeacher(ctx, tch)
	if err != nil {
		return Teacher{}, errors.Wrap(err, "creating teacher")
	}
	return tch, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Teacher, error) {
	return svc.repo.GetTeacher(ctx, GetFilter{ID: id})
}

func (svc *Service) GetByUserID(ctx context.Context, userID string) (Teacher, error) {
	return svc.repo.GetTeacher(ctx, GetFilter{UserID: userID})
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering, page core.Pagination) ([]Teacher, int, error) {
	teachers, err := svc.repo.QueryTeachers(ctx, filter, ordering, page)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying teachers")
	}
	total, err := svc.repo.CountTeachers(ctx, filter)
	if err != nil {
		return nil, 0, errors.Wrap(err, "counting teachers")
	}
	return teachers, total, nil
}

func (svc *Service) Update(ctx context.Context, id string, ut UpdateTeacher) (Teacher, error) {
	ut.Clean()

	tch, err := svc.repo.GetTeacher(ctx, GetFilter{ID: id})
	if err != nil {
		return Teacher{}, err
	}
	if ut.FirstName != "" {
		tch.FirstName = ut.FirstName
	}
	if ut.LastName != "" {
		tch.LastName = ut.LastName
	}
	if ut.Status != "" {
		tch.Status = ut.Status
	}
	tch.UpdatedAt = time.Now().UTC()

	return svc.repo.UpdateTeacher(ctx, tch)
}

// Terminate soft-deletes the teacher; assignments and authored records stay.
func (svc *Service) Terminate(ctx context.Context, id string) (Teacher, error) {
	return svc.Update(ctx, id, UpdateTeacher{Status: StatusTerminated})
}

// Assignments resolves the teacher's class and subject sets in one call, for
// building authorization references.
func (svc *Service) Assignments(ctx context.Context, teacherID string) (classIDs, subjectIDs []string, err error) {
	if classIDs, err = svc.repo.ClassIDs(ctx, teacherID); err != nil {
		return nil, nil, errors.Wrap(err, "resolving teacher classes")
	}
	if subjectIDs, err = svc.repo.SubjectIDs(ctx, teacherID); err != nil {
		return nil, nil, errors.Wrap(err, "resolving teacher subjects")
	}
	return classIDs, subjectIDs, nil
}
