package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/maktabuz/maktab/core"
	"github.com/maktabuz/maktab/core/subject"
)

type subjectRepository struct {
	db *DB
}

var _ subject.Repository = (*subjectRepository)(nil) // interface compliance check

func NewSubjectRepository(db *DB) *subjectRepository {
	return &subjectRepository{db: db}
}

func (repo *subjectRepository) match(filter subject.QueryFilter) []subject.Subject {
	subjects := make([]subject.Subject, 0, len(repo.db.subjects))
	for _, sbj := range repo.db.subjects {
		if !filter.Match(*sbj) {
			continue
		}
		if filter.TeacherID != "" {
			if _, ok := repo.db.subjectTeachers[link{sbj.ID, filter.TeacherID}]; !ok {
				continue
			}
		}
		subjects = append(subjects, *sbj)
	}
	return subjects
}

func sortSubjects(subjects []subject.Subject, ordering []core.DBOrdering) {
	if len(ordering) == 0 {
		ordering = subject.DefaultOrdering()
	}
	sort.SliceStable(subjects, func(i, j int) bool {
		for _, ord := range ordering {
			a, b := subjects[i], subjects[j]
			if !ord.Ascending {
				a, b = b, a
			}
			switch ord.Field {
			case "name":
				if a.Name != b.Name {
					return a.Name < b.Name
				}
			case "code":
				if a.Code != b.Code {
					return a.Code < b.Code
				}
			case "grade_level":
				if a.GradeLevel != b.GradeLevel {
					return a.GradeLevel < b.GradeLevel
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

func (repo *subjectRepository) CreateSubject(ctx context.Context, sbj subject.Subject) (subject.Subject, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, other := range repo.db.subjects {
		if other.Code == sbj.Code {
			return subject.Subject{}, subject.ErrCodeExists
		}
	}
	sbj.ID = uuid.New().String()
	repo.db.subjects[sbj.ID] = &sbj
	return sbj, nil
}

func (repo *subjectRepository) GetSubject(ctx context.Context, filter subject.GetFilter) (subject.Subject, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, sbj := range repo.db.subjects {
		switch {
		case filter.ID != "":
			if sbj.ID == filter.ID {
				return *sbj, nil
			}
		case filter.Code != "":
			if sbj.Code == filter.Code {
				return *sbj, nil
			}
		}
	}
	return subject.Subject{}, subject.ErrNotFound
}

func (repo *subjectRepository) QuerySubjects(ctx context.Context, filter subject.QueryFilter, ordering []core.DBOrdering, page core.Pagination) ([]subject.Subject, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	subjects := repo.match(filter)
	sortSubjects(subjects, ordering)
	start, end := pageBounds(len(subjects), page)
	return subjects[start:end], nil
}

func (repo *subjectRepository) CountSubjects(ctx context.Context, filter subject.QueryFilter) (int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return len(repo.match(filter)), nil
}

func (repo *subjectRepository) UpdateSubject(ctx context.Context, sbj subject.Subject) (subject.Subject, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.subjects[sbj.ID]; !ok {
		return subject.Subject{}, subject.ErrNotFound
	}
	repo.db.subjects[sbj.ID] = &sbj
	return sbj, nil
}

func (repo *subjectRepository) AssignTeacher(ctx context.Context, subjectID, teacherID string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.teachers[teacherID]; !ok {
		return subject.ErrUnknownTeacher
	}
	repo.db.subjectTeachers[link{subjectID, teacherID}] = struct{}{}
	return nil
}

func (repo *subjectRepository) UnassignTeacher(ctx context.Context, subjectID, teacherID string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	delete(repo.db.subjectTeachers, link{subjectID, teacherID})
	return nil
}

func (repo *subjectRepository) TeacherIDs(ctx context.Context, subjectID string) ([]string, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var ids []string
	for l := range repo.db.subjectTeachers {
		if l.left == subjectID {
			ids = append(ids, l.right)
		}
	}
	sort.Strings(ids)
	return ids, nil
}
