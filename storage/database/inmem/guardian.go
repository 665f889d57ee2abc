package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/maktabuz/maktab/core"
	"github.com/maktabuz/maktab/core/guardian"
)

type guardianRepository struct {
	db *DB
}

var _ guardian.Repository = (*guardianRepository)(nil) // interface compliance check

func NewGuardianRepository(db *DB) *guardianRepository {
	return &guardianRepository{db: db}
}

func (repo *guardianRepository) match(filter guardian.QueryFilter) []guardian.Guardian {
	guardians := make([]guardian.Guardian, 0, len(repo.db.guardians))
	for _, grd := range repo.db.guardians {
		if !filter.Match(*grd) {
			continue
		}
		if filter.StudentID != "" {
			if _, ok := repo.db.guardianStudents[link{grd.ID, filter.StudentID}]; !ok {
				continue
			}
		}
		guardians = append(guardians, *grd)
	}
	return guardians
}

func sortGuardians(guardians []guardian.Guardian, ordering []core.DBOrdering) {
	if len(ordering) == 0 {
		ordering = guardian.DefaultOrdering()
	}
	sort.SliceStable(guardians, func(i, j int) bool {
		for _, ord := range ordering {
			a, b := guardians[i], guardians[j]
			if !ord.Ascending {
				a, b = b, a
			}
			switch ord.Field {
			case "first_name":
				if a.FirstName != b.FirstName {
					return a.FirstName < b.FirstName
				}
			case "last_name":
				if a.LastName != b.LastName {
					return a.LastName < b.LastName
				}
			case "relationship":
				if a.Relationship != b.Relationship {
					return a.Relationship < b.Relationship
				}
			case "created_at":
				if !a.CreatedAt.Equal(b.CreatedAt) {
					return a.CreatedAt.Before(b.CreatedAt)
				}
			}
		}
		return false
	})
}

func (repo *guardianRepository) CreateGuardian(ctx context.Context, grd guardian.Guardian) (guardian.Guardian, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	grd.ID = uuid.New().String()
	repo.db.guardians[grd.ID] = &grd
	return grd, nil
}

func (repo *guardianRepository) GetGuardian(ctx context.Context, filter guardian.GetFilter) (guardian.Guardian, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, grd := range repo.db.guardians {
		switch {
		case filter.ID != "":
			if grd.ID == filter.ID {
				return *grd, nil
			}
		case filter.UserID != "":
			if grd.UserID == filter.UserID {
				return *grd, nil
			}
		}
	}
	return guardian.Guardian{}, guardian.ErrNotFound
}

func (repo *guardianRepository) QueryGuardians(ctx context.Context, filter guardian.QueryFilter, ordering []core.DBOrdering, page core.Pagination) ([]guardian.Guardian, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	guardians := repo.match(filter)
	sortGuardians(guardians, ordering)
	start, end := pageBounds(len(guardians), page)
	return guardians[start:end], nil
}

func (repo *guardianRepository) CountGuardians(ctx context.Context, filter guardian.QueryFilter) (int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return len(repo.match(filter)), nil
}

func (repo *guardianRepository) UpdateGuardian(ctx context.Context, grd guardian.Guardian) (guardian.Guardian, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.guardians[grd.ID]; !ok {
		return guardian.Guardian{}, guardian.ErrNotFound
	}
	repo.db.guardians[grd.ID] = &grd
	return grd, nil
}

func (repo *guardianRepository) LinkStudent(ctx context.Context, guardianID, studentID string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.students[studentID]; !ok {
		return guardian.ErrUnknownStudent
	}
	l := link{guardianID, studentID}
	if _, ok := repo.db.guardianStudents[l]; ok {
		return guardian.ErrAlreadyLinked
	}
	repo.db.guardianStudents[l] = struct{}{}
	return nil
}

func (repo *guardianRepository) UnlinkStudent(ctx context.Context, guardianID, studentID string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	delete(repo.db.guardianStudents, link{guardianID, studentID})
	return nil
}

func (repo *guardianRepository) StudentIDs(ctx context.Context, guardianID string) ([]string, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var ids []string
	for l := range repo.db.guardianStudents {
		if l.left == guardianID {
			ids = append(ids, l.right)
		}
	}
	sort.Strings(ids)
	return ids, nil
}
