package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/maktabuz/maktab/core"
	"github.com/maktabuz/maktab/core/attendance"
)

type attendanceRepository struct {
	db *DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *DB) *attendanceRepository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) match(filter attendance.QueryFilter) []attendance.Attendance {
	records := make([]attendance.Attendance, 0, len(repo.db.attendance))
	for _, att := range repo.db.attendance {
		if filter.Match(*att) {
			records = append(records, *att)
		}
	}
	return records
}

func sortAttendance(records []attendance.Attendance, ordering []core.DBOrdering) {
	if len(ordering) == 0 {
		ordering = attendance.DefaultOrdering()
	}
	sort.SliceStable(records, func(i, j int) bool {
		for _, ord := range ordering {
			a, b := records[i], records[j]
			if !ord.Ascending {
				a, b = b, a
			}
			switch ord.Field {
			case "date":
				if !a.Date.Equal(b.Date) {
					return a.Date.Before(b.Date)
				}
			case "time_in":
				if !a.TimeIn.Time.Equal(b.TimeIn.Time) {
					return a.TimeIn.Time.Before(b.TimeIn.Time)
				}
			case "status":
				if a.Status != b.Status {
					return a.Status < b.Status
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

func (repo *attendanceRepository) UpsertAttendance(ctx context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, existing := range repo.db.attendance {
		if existing.StudentID == att.StudentID && existing.ClassID == att.ClassID && existing.Date.Equal(att.Date) {
			// overwrite in place, keeping identity and creation time
			att.ID = existing.ID
			att.CreatedAt = existing.CreatedAt
			repo.db.attendance[att.ID] = &att
			return att, nil
		}
	}
	att.ID = uuid.New().String()
	repo.db.attendance[att.ID] = &att
	return att, nil
}

func (repo *attendanceRepository) GetAttendance(ctx context.Context, filter attendance.GetFilter) (attendance.Attendance, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, att := range repo.db.attendance {
		switch {
		case filter.ID != "":
			if att.ID == filter.ID {
				return *att, nil
			}
		case filter.StudentID != "" && filter.ClassID != "" && !filter.Date.IsZero():
			if att.StudentID == filter.StudentID && att.ClassID == filter.ClassID && att.Date.Equal(filter.Date) {
				return *att, nil
			}
		}
	}
	return attendance.Attendance{}, attendance.ErrNotFound
}

func (repo *attendanceRepository) QueryAttendance(ctx context.Context, filter attendance.QueryFilter, ordering []core.DBOrdering, page core.Pagination) ([]attendance.Attendance, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	records := repo.match(filter)
	sortAttendance(records, ordering)
	start, end := pageBounds(len(records), page)
	return records[start:end], nil
}

func (repo *attendanceRepository) QueryAllAttendance(ctx context.Context, filter attendance.QueryFilter) ([]attendance.Attendance, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	records := repo.match(filter)
	sortAttendance(records, nil)
	return records, nil
}

func (repo *attendanceRepository) CountAttendance(ctx context.Context, filter attendance.QueryFilter) (int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return len(repo.match(filter)), nil
}
