package student

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/maktabuz/maktab/core"
)

var (
	ErrNotFound      = core.NewNotFoundError("student not found", "o'quvchi topilmadi")
	ErrNumberExists  = core.NewConflictError("a student with this student number already exists", "bu raqamli o'quvchi allaqachon mavjud")
	ErrUnknownClass  = core.NewReferenceError("referenced class does not exist", "ko'rsatilgan sinf mavjud emas")
	ErrUnknownUser   = core.NewReferenceError("referenced user does not exist", "ko'rsatilgan foydalanuvchi mavjud emas")
	ErrNotEnrollable = core.NewValidationError(errors.New("student status does not permit class assignment"))
)

type (
	Repository interface {
		CreateStudent(ctx context.Context, std Student) (Student, error)
		GetStudent(ctx context.Context, filter GetFilter) (Student, error)
		// QueryStudents applies AND on available QueryFilter fields;
		// QueryFilter.Search does a case-insensitive match on one of
		// FirstName, LastName or StudentNumber.
		QueryStudents(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering, page core.Pagination) ([]Student, error)
		CountStudents(ctx context.Context, filter QueryFilter) (int, error)
		UpdateStudent(ctx context.Context, std Student) (Student, error)
		// GuardianIDs returns the ids of the guardians linked to the student.
		GuardianIDs(ctx context.Context, studentID string) ([]string, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	ns.Clean()

	now := time.Now().UTC()
	std := Student{
		UserID:         ns.UserID,
		FirstName:      ns.FirstName,
		LastName:       ns.LastName,
		StudentNumber:  ns.StudentNumber,
		ClassID:        null.NewString(ns.ClassID, ns.ClassID != ""),
		Status:         StatusActive,
		EnrollmentDate: ns.EnrollmentDate,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	std, err := svc.repo.CreateStudent(ctx, std)
	if err != nil {
		return Student{}, errors.Wrap(err, "creating student")
	}
	return std, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudent(ctx, GetFilter{ID: id})
}

func (svc *Service) GetByUserID(ctx context.Context, userID string) (Student, error) {
	return svc.repo.GetStudent(ctx, GetFilter{UserID: userID})
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering, page core.Pagination) ([]Student, int, error) {
	if filter.None {
		return []Student{}, 0, nil
	}
	students, err := svc.repo.QueryStudents(ctx, filter, ordering, page)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying students")
	}
	total, err := svc.repo.CountStudents(ctx, filter)
	if err != nil {
		return nil, 0, errors.Wrap(err, "counting students")
	}
	return students, total, nil
}

func (svc *Service) Update(ctx context.Context, id string, us UpdateStudent) (Student, error) {
	us.Clean()

	std, err := svc.repo.GetStudent(ctx, GetFilter{ID: id})
	if err != nil {
		return Student{}, err
	}
	if us.FirstName != "" {
		std.FirstName = us.FirstName
	}
	if us.LastName != "" {
		std.LastName = us.LastName
	}
	if us.ClassID != nil {
		if *us.ClassID != "" && std.Status.Terminal() {
			return Student{}, ErrNotEnrollable
		}
		std.ClassID = null.NewString(*us.ClassID, *us.ClassID != "")
	}
	if us.Status != "" {
		std.Status = us.Status
		if us.Status.Terminal() {
			std.ClassID = null.String{}
		}
	}
	std.UpdatedAt = time.Now().UTC()

	return svc.repo.UpdateStudent(ctx, std)
}

// Withdraw soft-deletes the student: the row stays, the status becomes
// terminal and the class assignment is cleared.
func (svc *Service) Withdraw(ctx context.Context, id string) (Student, error) {
	return svc.Update(ctx, id, UpdateStudent{Status: StatusWithdrawn})
}

func (svc *Service) GuardianIDs(ctx context.Context, studentID string) ([]string, error) {
	ids, err := svc.repo.GuardianIDs(ctx, studentID)
	return ids, errors.Wrap(err, "resolving student guardians")
}
