package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/maktabuz/maktab/core"
	"github.com/maktabuz/maktab/core/guardian"
)

const guardianColumns = `id, user_id, first_name, last_name, relationship, phone, created_at, updated_at`

type guardianRow struct {
	ID           string    `db:"id"`
	UserID       string    `db:"user_id"`
	FirstName    string    `db:"first_name"`
	LastName     string    `db:"last_name"`
	Relationship string    `db:"relationship"`
	Phone        string    `db:"phone"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r guardianRow) toGuardian() guardian.Guardian {
	return guardian.Guardian{
		ID:           r.ID,
		UserID:       r.UserID,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		Relationship: guardian.Relationship(r.Relationship),
		Phone:        r.Phone,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

type guardianRepository struct {
	db *sqlx.DB
}

var _ guardian.Repository = (*guardianRepository)(nil) // interface compliance check

func NewGuardianRepository(db *sqlx.DB) *guardianRepository {
	return &guardianRepository{db: db}
}

func (repo guardianRepository) trapNoRowsErr(err error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return guardian.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo guardianRepository) guardianConds(filter guardian.QueryFilter) *conds {
	c := new(conds)
	c.addSearch(filter.Search, "first_name", "last_name", "phone")
	if filter.Relationship != "" {
		c.add("relationship = ?", filter.Relationship)
	}
	if filter.StudentID != "" {
		c.add("id IN (SELECT guardian_id FROM guardian_student WHERE student_id = ?)", filter.StudentID)
	}
	return c
}

func (repo guardianRepository) CreateGuardian(ctx context.Context, grd guardian.Guardian) (guardian.Guardian, error) {
	grd.ID = uuid.New().String()
	query := repo.db.Rebind(`
INSERT INTO guardian (` + guardianColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := repo.db.ExecContext(ctx, query,
		grd.ID, grd.UserID, grd.FirstName, grd.LastName,
		string(grd.Relationship), grd.Phone, grd.CreatedAt, grd.UpdatedAt,
	)
	if err != nil {
		return guardian.Guardian{}, trapPqErr(err, "inserting guardian", guardian.ErrAlreadyLinked, guardian.ErrUnknownUser)
	}
	return grd, nil
}

func (repo guardianRepository) GetGuardian(ctx context.Context, filter guardian.GetFilter) (guardian.Guardian, error) {
	c := new(conds)
	switch {
	case filter.ID != "":
		c.add("id = ?", filter.ID)
	case filter.UserID != "":
		c.add("user_id = ?", filter.UserID)
	default:
		return guardian.Guardian{}, guardian.ErrNotFound
	}

	var row guardianRow
	query := repo.db.Rebind(`SELECT ` + guardianColumns + ` FROM guardian` + c.where())
	if err := repo.db.GetContext(ctx, &row, query, c.args...); err != nil {
		return guardian.Guardian{}, repo.trapNoRowsErr(err, "getting guardian")
	}
	return row.toGuardian(), nil
}

func (repo guardianRepository) QueryGuardians(ctx context.Context, filter guardian.QueryFilter, ordering []core.DBOrdering, page core.Pagination) ([]guardian.Guardian, error) {
	c := repo.guardianConds(filter)
	limit, limitArgs := paginate(page)
	query := `SELECT ` + guardianColumns + ` FROM guardian` + c.where() + orderBy(ordering, guardian.DefaultOrdering()) + limit

	var rows []guardianRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(query), append(c.args, limitArgs...)...); err != nil {
		return nil, errors.Wrap(err, "querying guardians")
	}
	guardians := make([]guardian.Guardian, 0, len(rows))
	for _, row := range rows {
		guardians = append(guardians, row.toGuardian())
	}
	return guardians, nil
}

func (repo guardianRepository) CountGuardians(ctx context.Context, filter guardian.QueryFilter) (int, error) {
	c := repo.guardianConds(filter)
	var total int
	query := repo.db.Rebind(`SELECT COUNT(*) FROM guardian` + c.where())
	if err := repo.db.GetContext(ctx, &total, query, c.args...); err != nil {
		return 0, errors.Wrap(err, "counting guardians")
	}
	return total, nil
}

func (repo guardianRepository) UpdateGuardian(ctx context.Context, grd guardian.Guardian) (guardian.Guardian, error) {
	query := repo.db.Rebind(`
UPDATE guardian
SET first_name = ?, last_name = ?, relationship = ?, phone = ?, updated_at = ?
WHERE id = ?`)
	res, err := repo.db.ExecContext(ctx, query,
		grd.FirstName, grd.LastName, string(grd.Relationship), grd.Phone, grd.UpdatedAt, grd.ID,
	)
	if err != nil {
		return guardian.Guardian{}, errors.Wrap(err, "updating guardian")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return guardian.Guardian{}, guardian.ErrNotFound
	}
	return grd, nil
}

func (repo guardianRepository) LinkStudent(ctx context.Context, guardianID, studentID string) error {
	query := repo.db.Rebind(`INSERT INTO guardian_student (guardian_id, student_id) VALUES (?, ?)`)
	if _, err := repo.db.ExecContext(ctx, query, guardianID, studentID); err != nil {
		return trapPqErr(err, "linking student", guardian.ErrAlreadyLinked, guardian.ErrUnknownStudent)
	}
	return nil
}

func (repo guardianRepository) UnlinkStudent(ctx context.Context, guardianID, studentID string) error {
	query := repo.db.Rebind(`DELETE FROM guardian_student WHERE guardian_id = ? AND student_id = ?`)
	if _, err := repo.db.ExecContext(ctx, query, guardianID, studentID); err != nil {
		return errors.Wrap(err, "unlinking student")
	}
	return nil
}

func (repo guardianRepository) StudentIDs(ctx context.Context, guardianID string) ([]string, error) {
	var ids []string
	query := repo.db.Rebind(`SELECT student_id FROM guardian_student WHERE guardian_id = ?`)
	if err := repo.db.SelectContext(ctx, &ids, query, guardianID); err != nil {
		return nil, errors.Wrap(err, "querying guardian students")
	}
	return ids, nil
}
