package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/maktabuz/maktab/core"
	"github.com/maktabuz/maktab/core/grade"
)

type gradeRepository struct {
	db *DB
}

var _ grade.Repository = (*gradeRepository)(nil) // interface compliance check

func NewGradeRepository(db *DB) *gradeRepository {
	return &gradeRepository{db: db}
}

func (repo *gradeRepository) match(filter grade.QueryFilter) []grade.Grade {
	grades := make([]grade.Grade, 0, len(repo.db.grades))
	for _, grd := range repo.db.grades {
		if filter.Match(*grd) {
			grades = append(grades, *grd)
		}
	}
	return grades
}

func sortGrades(grades []grade.Grade, ordering []core.DBOrdering) {
	if len(ordering) == 0 {
		ordering = grade.DefaultOrdering()
	}
	sort.SliceStable(grades, func(i, j int) bool {
		for _, ord := range ordering {
			a, b := grades[i], grades[j]
			if !ord.Ascending {
				a, b = b, a
			}
			switch ord.Field {
			case "grade_date":
				if !a.GradeDate.Equal(b.GradeDate) {
					return a.GradeDate.Before(b.GradeDate)
				}
			case "grade_value":
				if a.Value != b.Value {
					return a.Value < b.Value
				}
			case "semester":
				if a.Semester != b.Semester {
					return a.Semester < b.Semester
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

func (repo *gradeRepository) CreateGrade(ctx context.Context, grd grade.Grade) (grade.Grade, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	grd.ID = uuid.New().String()
	repo.db.grades[grd.ID] = &grd
	return grd, nil
}

func (repo *gradeRepository) GetGrade(ctx context.Context, filter grade.GetFilter) (grade.Grade, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if grd, ok := repo.db.grades[filter.ID]; ok {
		return *grd, nil
	}
	return grade.Grade{}, grade.ErrNotFound
}

func (repo *gradeRepository) QueryGrades(ctx context.Context, filter grade.QueryFilter, ordering []core.DBOrdering, page core.Pagination) ([]grade.Grade, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	grades := repo.match(filter)
	sortGrades(grades, ordering)
	start, end := pageBounds(len(grades), page)
	return grades[start:end], nil
}

func (repo *gradeRepository) QueryAllGrades(ctx context.Context, filter grade.QueryFilter) ([]grade.Grade, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	grades := repo.match(filter)
	sortGrades(grades, nil)
	return grades, nil
}

func (repo *gradeRepository) CountGrades(ctx context.Context, filter grade.QueryFilter) (int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return len(repo.match(filter)), nil
}

func (repo *gradeRepository) UpdateGrade(ctx context.Context, grd grade.Grade) (grade.Grade, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.grades[grd.ID]; !ok {
		return grade.Grade{}, grade.ErrNotFound
	}
	repo.db.grades[grd.ID] = &grd
	return grd, nil
}

func (repo *gradeRepository) DeleteGradesByID(ctx context.Context, ids ...string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, id := range ids {
		delete(repo.db.grades, id)
	}
	return nil
}
