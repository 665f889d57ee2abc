package attendance

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/maktabuz/maktab/core"
)

var (
	ErrNotFound         = core.NewNotFoundError("attendance record not found", "davomat yozuvi topilmadi")
	ErrUnknownReference = core.NewReferenceError(
		"referenced student, class, subject or teacher does not exist",
		"ko'rsatilgan o'quvchi, sinf, fan yoki o'qituvchi mavjud emas",
	)
)

type (
	Repository interface {
		// UpsertAttendance creates the row or, when one already exists for
		// (StudentID, ClassID, Date), overwrites its mutable fields. Last
		// write wins; there is no locking.
		UpsertAttendance(ctx context.Context, att Attendance) (Attendance, error)
		GetAttendance(ctx context.Context, filter GetFilter) (Attendance, error)
		QueryAttendance(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering, page core.Pagination) ([]Attendance, error)
		// QueryAllAttendance returns every matching record, unpaginated, for
		// the aggregate calculators.
		QueryAllAttendance(ctx context.Context, filter QueryFilter) ([]Attendance, error)
		CountAttendance(ctx context.Context, filter QueryFilter) (int, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Mark records attendance with upsert semantics: marking the same
// (student, class, date) twice leaves exactly one row holding the latest
// values.
func (svc *Service) Mark(ctx context.Context, m Mark) (Attendance, error) {
	m.Clean()

	now := time.Now().UTC()
	att := Attendance{
		StudentID: m.StudentID,
		ClassID:   m.ClassID,
		SubjectID: null.NewString(m.SubjectID, m.SubjectID != ""),
		TeacherID: m.TeacherID,
		Date:      m.Date,
		Status:    m.Status,
		Reason:    null.NewString(m.Reason, m.Reason != ""),
		Notes:     null.NewString(m.Notes, m.Notes != ""),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if m.TimeIn != nil {
		att.TimeIn = null.TimeFrom(*m.TimeIn)
	}
	if att.Date.IsZero() {
		att.Date = truncateToDay(now)
	} else {
		att.Date = truncateToDay(att.Date)
	}

	att, err := svc.repo.UpsertAttendance(ctx, att)
	if err != nil {
		return Attendance{}, errors.Wrap(err, "marking attendance")
	}
	return att, nil
}

// MarkBatch applies Mark per item, sequentially and non-transactionally:
// a failing item does not roll back the ones before it. The returned slice
// has one Result per input item, in order.
func (svc *Service) MarkBatch(ctx context.Context, marks []Mark) []Result {
	results := make([]Result, len(marks))
	for i, m := range marks {
		results[i].Index = i
		if !m.Status.Valid() {
			results[i].Error = "unknown status"
			continue
		}
		att, err := svc.Mark(ctx, m)
		if err != nil {
			results[i].Error = errors.Cause(err).Error()
			continue
		}
		results[i].Attendance = &att
	}
	return results
}

func (svc *Service) GetByID(ctx context.Context, id string) (Attendance, error) {
	return svc.repo.GetAttendance(ctx, GetFilter{ID: id})
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering, page core.Pagination) ([]Attendance, int, error) {
	if filter.None {
		return []Attendance{}, 0, nil
	}
	records, err := svc.repo.QueryAttendance(ctx, filter, ordering, page)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying attendance")
	}
	total, err := svc.repo.CountAttendance(ctx, filter)
	if err != nil {
		return nil, 0, errors.Wrap(err, "counting attendance")
	}
	return records, total, nil
}

// Statistics computes the aggregate statistics of every record matching the
// (already narrowed) filter.
func (svc *Service) Statistics(ctx context.Context, filter QueryFilter) (Statistics, error) {
	if filter.None {
		return ComputeStatistics(nil), nil
	}
	records, err := svc.repo.QueryAllAttendance(ctx, filter)
	if err != nil {
		return Statistics{}, errors.Wrap(err, "querying attendance for statistics")
	}
	return ComputeStatistics(records), nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
