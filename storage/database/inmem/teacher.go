package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/maktabuz/maktab/core"
	"github.com/maktabuz/maktab/core/teacher"
)

type teacherRepository struct {
	db *DB
}

var _ teacher.Repository = (*teacherRepository)(nil) // interface compliance check

func NewTeacherRepository(db *DB) *teacherRepository {
	return &teacherRepository{db: db}
}

func (repo *teacherRepository) match(filter teacher.QueryFilter) []teacher.Teacher {
	teachers := make([]teacher.Teacher, 0, len(repo.db.teachers))
	for _, tch := range repo.db.teachers {
		if !filter.Match(*tch) {
			continue
		}
		if filter.SubjectID != "" {
			if _, ok := repo.db.subjectTeachers[link{filter.SubjectID, tch.ID}]; !ok {
				continue
			}
		}
		if filter.ClassID != "" {
			if _, ok := repo.db.classTeachers[link{filter.ClassID, tch.ID}]; !ok {
				continue
			}
		}
		teachers = append(teachers, *tch)
	}
	return teachers
}

func sortTeachers(teachers []teacher.Teacher, ordering []core.DBOrdering) {
	if len(ordering) == 0 {
		ordering = teacher.DefaultOrdering()
	}
	sort.SliceStable(teachers, func(i, j int) bool {
		for _, ord := range ordering {
			a, b := teachers[i], teachers[j]
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
			case "employee_number":
				if a.EmployeeNumber != b.EmployeeNumber {
					return a.EmployeeNumber < b.EmployeeNumber
				}
			case "hire_date":
				if !a.HireDate.Equal(b.HireDate) {
					return a.HireDate.Before(b.HireDate)
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

func (repo *teacherRepository) CreateTeacher(ctx context.Context, tch teacher.Teacher) (teacher.Teacher, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, other := range repo.db.teachers {
		if other.EmployeeNumber == tch.EmployeeNumber {
			return teacher.Teacher{}, teacher.ErrNumberExists
		}
	}
	tch.ID = uuid.New().String()
	repo.db.teachers[tch.ID] = &tch
	return tch, nil
}

func (repo *teacherRepository) GetTeacher(ctx context.Context, filter teacher.GetFilter) (teacher.Teacher, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, tch := range repo.db.teachers {
		switch {
		case filter.ID != "":
			if tch.ID == filter.ID {
				return *tch, nil
			}
		case filter.UserID != "":
			if tch.UserID == filter.UserID {
				return *tch, nil
			}
		case filter.EmployeeNumber != "":
			if tch.EmployeeNumber == filter.EmployeeNumber {
				return *tch, nil
			}
		}
	}
	return teacher.Teacher{}, teacher.ErrNotFound
}

func (repo *teacherRepository) QueryTeachers(ctx context.Context, filter teacher.QueryFilter, ordering []core.DBOrdering, page core.Pagination) ([]teacher.Teacher, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	teachers := repo.match(filter)
	sortTeachers(teachers, ordering)
	start, end := pageBounds(len(teachers), page)
	return teachers[start:end], nil
}

func (repo *teacherRepository) CountTeachers(ctx context.Context, filter teacher.QueryFilter) (int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return len(repo.match(filter)), nil
}

func (repo *teacherRepository) UpdateTeacher(ctx context.Context, tch teacher.Teacher) (teacher.Teacher, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.teachers[tch.ID]; !ok {
		return teacher.Teacher{}, teacher.ErrNotFound
	}
	repo.db.teachers[tch.ID] = &tch
	return tch, nil
}

func (repo *teacherRepository) ClassIDs(ctx context.Context, teacherID string) ([]string, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var ids []string
	for l := range repo.db.classTeachers {
		if l.right == teacherID {
			ids = append(ids, l.left)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (repo *teacherRepository) SubjectIDs(ctx context.Context, teacherID string) ([]string, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var ids []string
	for l := range repo.db.subjectTeachers {
		if l.right == teacherID {
			ids = append(ids, l.left)
		}
	}
	sort.Strings(ids)
	return ids, nil
}
