package guardian

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/maktabuz/maktab/core"
)

var (
	ErrNotFound       = core.NewNotFoundError("guardian not found", "vasiy topilmadi")
	ErrUnknownUser    = core.NewReferenceError("referenced user does not exist", "ko'rsatilgan foydalanuvchi mavjud emas")
	ErrUnknownStudent = core.NewReferenceError("referenced student does not exist", "ko'rsatilgan o'quvchi mavjud emas")
	ErrAlreadyLinked  = core.NewConflictError("guardian is already linked to this student", "vasiy bu o'quvchiga allaqachon bog'langan")
)

type (
	Repository interface {
		CreateGuardian(ctx context.Context, grd Guardian) (Guardian, error)
		GetGuardian(ctx context.Context, filter GetFilter) (Guardian, error)
		QueryGuardians(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering, page core.Pagination) ([]Guardian, error)
		CountGuardians(ctx context.Context, filter QueryFilter) (int, error)
		UpdateGuardian(ctx context.Context, grd Guardian) (Guardian, error)
		LinkStudent(ctx context.Context, guardianID, studentID string) error
		UnlinkStudent(ctx context.Context, guardianID, studentID string) error
		// StudentIDs returns the ids of the students linked to the guardian.
		// It resolves Actor.ChildIDs for parent callers.
		StudentIDs(ctx context.Context, guardianID string) ([]string, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, ng NewGuardian) (Guardian, error) {
	ng.Clean()

	now := time.Now().UTC()
	grd := Guardian{
		UserID:       ng.UserID,
		FirstName:    ng.FirstName,
		LastName:     ng.LastName,
		Relationship: ng.Relationship,
		Phone:        ng.Phone,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	grd, err := svc.repo.CreateGuardian(ctx, grd)
	if err != nil {
		return Guardian{}, errors.Wrap(err, "creating guardian")
	}
	return grd, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Guardian, error) {
	return svc.repo.GetGuardian(ctx, GetFilter{ID: id})
}

func (svc *Service) GetByUserID(ctx context.Context, userID string) (Guardian, error) {
	return svc.repo.GetGuardian(ctx, GetFilter{UserID: userID})
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering, page core.Pagination) ([]Guardian, int, error) {
	guardians, err := svc.repo.QueryGuardians(ctx, filter, ordering, page)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying guardians")
	}
	total, err := svc.repo.CountGuardians(ctx, filter)
	if err != nil {
		return nil, 0, errors.Wrap(err, "counting guardians")
	}
	return guardians, total, nil
}

func (svc *Service) Update(ctx context.Context, id string, ug UpdateGuardian) (Guardian, error) {
	ug.Clean()

	grd, err := svc.repo.GetGuardian(ctx, GetFilter{ID: id})
	if err != nil {
		return Guardian{}, err
	}
	if ug.FirstName != "" {
		grd.FirstName = ug.FirstName
	}
	if ug.LastName != "" {
		grd.LastName = ug.LastName
	}
	if ug.Relationship != "" {
		grd.Relationship = ug.Relationship
	}
	if ug.Phone != "" {
		grd.Phone = ug.Phone
	}
	grd.UpdatedAt = time.Now().UTC()

	return svc.repo.UpdateGuardian(ctx, grd)
}

// LinkStudent attaches a student to the guardian. The link is what grants a
// parent read access to the student's records.
func (svc *Service) LinkStudent(ctx context.Context, guardianID, studentID string) error {
	if _, err := svc.repo.GetGuardian(ctx, GetFilter{ID: guardianID}); err != nil {
		return err
	}
	return svc.repo.LinkStudent(ctx, guardianID, studentID)
}

func (svc *Service) UnlinkStudent(ctx context.Context, guardianID, studentID string) error {
	if _, err := svc.repo.GetGuardian(ctx, GetFilter{ID: guardianID}); err != nil {
		return err
	}
	return svc.repo.UnlinkStudent(ctx, guardianID, studentID)
}

func (svc *Service) StudentIDs(ctx context.Context, guardianID string) ([]string, error) {
	ids, err := svc.repo.StudentIDs(ctx, guardianID)
	return ids, errors.Wrap(err, "resolving guardian students")
}
