package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/maktabuz/maktab/core"
	"github.com/maktabuz/maktab/core/class"
)

type classRepository struct {
	db *DB
}

var _ class.Repository = (*classRepository)(nil) // interface compliance check

func NewClassRepository(db *DB) *classRepository {
	return &classRepository{db: db}
}

func (repo *classRepository) match(filter class.QueryFilter) []class.Class {
	classes := make([]class.Class, 0, len(repo.db.classes))
	for _, cls := range repo.db.classes {
		if !filter.Match(*cls) {
			continue
		}
		if filter.TeacherID != "" {
			if _, ok := repo.db.classTeachers[link{cls.ID, filter.TeacherID}]; !ok {
				continue
			}
		}
		classes = append(classes, *cls)
	}
	return classes
}

func sortClasses(classes []class.Class, ordering []core.DBOrdering) {
	if len(ordering) == 0 {
		ordering = class.DefaultOrdering()
	}
	sort.SliceStable(classes, func(i, j int) bool {
		for _, ord := range ordering {
			a, b := classes[i], classes[j]
			if !ord.Ascending {
				a, b = b, a
			}
			switch ord.Field {
			case "grade":
				if a.Grade != b.Grade {
					return a.Grade < b.Grade
				}
			case "section":
				if a.Section != b.Section {
					return a.Section < b.Section
				}
			case "academic_year":
				if a.AcademicYear != b.AcademicYear {
					return a.AcademicYear < b.AcademicYear
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

func (repo *classRepository) CreateClass(ctx context.Context, cls class.Class) (class.Class, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, other := range repo.db.classes {
		if other.Grade == cls.Grade && other.Section == cls.Section && other.AcademicYear == cls.AcademicYear {
			return class.Class{}, class.ErrClassExists
		}
	}
	cls.ID = uuid.New().String()
	repo.db.classes[cls.ID] = &cls
	return cls, nil
}

func (repo *classRepository) GetClass(ctx context.Context, filter class.GetFilter) (class.Class, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if cls, ok := repo.db.classes[filter.ID]; ok {
		return *cls, nil
	}
	return class.Class{}, class.ErrNotFound
}

func (repo *classRepository) QueryClasses(ctx context.Context, filter class.QueryFilter, ordering []core.DBOrdering, page core.Pagination) ([]class.Class, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	classes := repo.match(filter)
	sortClasses(classes, ordering)
	start, end := pageBounds(len(classes), page)
	return classes[start:end], nil
}

func (repo *classRepository) CountClasses(ctx context.Context, filter class.QueryFilter) (int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return len(repo.match(filter)), nil
}

func (repo *classRepository) UpdateClass(ctx context.Context, cls class.Class) (class.Class, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.classes[cls.ID]; !ok {
		return class.Class{}, class.ErrNotFound
	}
	repo.db.classes[cls.ID] = &cls
	return cls, nil
}

func (repo *classRepository) AssignTeacher(ctx context.Context, classID, teacherID string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.teachers[teacherID]; !ok {
		return class.ErrUnknownTeacher
	}
	repo.db.classTeachers[link{classID, teacherID}] = struct{}{}
	return nil
}

func (repo *classRepository) UnassignTeacher(ctx context.Context, classID, teacherID string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	delete(repo.db.classTeachers, link{classID, teacherID})
	return nil
}

func (repo *classRepository) TeacherIDs(ctx context.Context, classID string) ([]string, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var ids []string
	for l := range repo.db.classTeachers {
		if l.left == classID {
			ids = append(ids, l.right)
		}
	}
	sort.Strings(ids)
	return ids, nil
}
