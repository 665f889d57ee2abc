package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/maktabuz/maktab/core"
	"github.com/maktabuz/maktab/core/student"
)

type studentRepository struct {
	db *DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) *studentRepository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) match(filter student.QueryFilter) []student.Student {
	students := make([]student.Student, 0, len(repo.db.students))
	for _, std := range repo.db.students {
		if filter.Match(*std) {
			students = append(students, *std)
		}
	}
	return students
}

func sortStudents(students []student.Student, ordering []core.DBOrdering) {
	if len(ordering) == 0 {
		ordering = student.DefaultOrdering()
	}
	sort.SliceStable(students, func(i, j int) bool {
		for _, ord := range ordering {
			a, b := students[i], students[j]
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
			case "student_number":
				if a.StudentNumber != b.StudentNumber {
					return a.StudentNumber < b.StudentNumber
				}
			case "enrollment_date":
				if !a.EnrollmentDate.Equal(b.EnrollmentDate) {
					return a.EnrollmentDate.Before(b.EnrollmentDate)
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

func (repo *studentRepository) CreateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, other := range repo.db.students {
		if other.StudentNumber == std.StudentNumber {
			return student.Student{}, student.ErrNumberExists
		}
	}
	std.ID = uuid.New().String()
	repo.db.students[std.ID] = &std
	return std, nil
}

func (repo *studentRepository) GetStudent(ctx context.Context, filter student.GetFilter) (student.Student, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, std := range repo.db.students {
		switch {
		case filter.ID != "":
			if std.ID == filter.ID {
				return *std, nil
			}
		case filter.UserID != "":
			if std.UserID == filter.UserID {
				return *std, nil
			}
		case filter.StudentNumber != "":
			if std.StudentNumber == filter.StudentNumber {
				return *std, nil
			}
		}
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) QueryStudents(ctx context.Context, filter student.QueryFilter, ordering []core.DBOrdering, page core.Pagination) ([]student.Student, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	students := repo.match(filter)
	sortStudents(students, ordering)
	start, end := pageBounds(len(students), page)
	return students[start:end], nil
}

func (repo *studentRepository) CountStudents(ctx context.Context, filter student.QueryFilter) (int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return len(repo.match(filter)), nil
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.students[std.ID]; !ok {
		return student.Student{}, student.ErrNotFound
	}
	repo.db.students[std.ID] = &std
	return std, nil
}

func (repo *studentRepository) GuardianIDs(ctx context.Context, studentID string) ([]string, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var ids []string
	for l := range repo.db.guardianStudents {
		if l.right == studentID {
			ids = append(ids, l.left)
		}
	}
	sort.Strings(ids)
	return ids, nil
}
