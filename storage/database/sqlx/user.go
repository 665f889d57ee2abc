package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/maktabuz/maktab/core"
	"github.com/maktabuz/maktab/core/access"
	"github.com/maktabuz/maktab/core/user"
)

const userColumns = `id, name, username, email, role, is_active, password_hash, created_at, updated_at, last_login`

type userRow struct {
	ID           string      `db:"id"`
	Name         string      `db:"name"`
	Username     null.String `db:"username"`
	Email        null.String `db:"email"`
	Role         string      `db:"role"`
	IsActive     bool        `db:"is_active"`
	PasswordHash []byte      `db:"password_hash"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
	LastLogin    null.Time   `db:"last_login"`
}

func (r userRow) toUser() user.User {
	isActive := r.IsActive
	return user.User{
		ID:           r.ID,
		Name:         r.Name,
		Username:     r.Username.String,
		Email:        r.Email.String,
		Role:         access.Role(r.Role),
		IsActive:     &isActive,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		LastLogin:    r.LastLogin.Time,
	}
}

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

// trapNoRowsErr maps psql "no rows" err to user.ErrNotFound
func (repo userRepository) trapNoRowsErr(err error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo userRepository) userConds(filter user.QueryFilter) *conds {
	c := new(conds)
	c.addSearch(filter.Search, "name", "username", "email")
	if filter.Role != "" {
		c.add("role = ?", filter.Role)
	}
	if filter.IsActive != nil {
		c.add("is_active = ?", *filter.IsActive)
	}
	if !filter.CreatedFrom.IsZero() {
		c.add("created_at >= ?", filter.CreatedFrom)
	}
	if !filter.CreatedTo.IsZero() {
		c.add("created_at <= ?", filter.CreatedTo)
	}
	return c
}

func (repo userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	c := new(conds)
	c.add("(username = ? OR email = ?)", username, email)
	if len(excludedUsers) > 0 {
		ids := make([]string, 0, len(excludedUsers))
		for _, usr := range excludedUsers {
			ids = append(ids, usr.ID)
		}
		c.add("id NOT IN (?)", ids)
	}

	query, args, err := sqlx.In(`SELECT EXISTS (SELECT 1 FROM "user"`+c.where()+`)`, c.args...)
	if err != nil {
		return errors.Wrap(err, "building uniqueness query")
	}

	var exists bool
	if err := repo.db.GetContext(ctx, &exists, repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "checking user uniqueness")
	}
	if exists {
		return user.ErrUserExists
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = uuid.New().String()
	query := repo.db.Rebind(`
INSERT INTO "user" (` + userColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := repo.db.ExecContext(ctx, query,
		usr.ID, usr.Name,
		null.NewString(usr.Username, usr.Username != ""),
		null.NewString(usr.Email, usr.Email != ""),
		string(usr.Role), usr.Active(), usr.PasswordHash,
		usr.CreatedAt, usr.UpdatedAt,
		null.NewTime(usr.LastLogin, !usr.LastLogin.IsZero()),
	)
	if err != nil {
		return user.User{}, trapPqErr(err, "inserting user", user.ErrUserExists, user.ErrNotFound)
	}
	return usr, nil
}

func (repo userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	c := new(conds)
	switch {
	case filter.ID != "":
		c.add("id = ?", filter.ID)
	case filter.Username != "":
		c.add("username = ?", filter.Username)
	case filter.Email != "":
		c.add("email = ?", filter.Email)
	case filter.UsernameOrEmail != "":
		c.add("(username = ? OR email = ?)", filter.UsernameOrEmail, filter.UsernameOrEmail)
	default:
		return user.User{}, user.ErrNotFound
	}

	var row userRow
	query := repo.db.Rebind(`SELECT ` + userColumns + ` FROM "user"` + c.where())
	if err := repo.db.GetContext(ctx, &row, query, c.args...); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "getting user")
	}
	return row.toUser(), nil
}

func (repo userRepository) QueryUsers(ctx context.Context, filter user.QueryFilter, ordering []core.DBOrdering, page core.Pagination) ([]user.User, error) {
	c := repo.userConds(filter)
	limit, limitArgs := paginate(page)
	query := `SELECT ` + userColumns + ` FROM "user"` + c.where() + orderBy(ordering, user.DefaultOrdering()) + limit

	var rows []userRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(query), append(c.args, limitArgs...)...); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.toUser())
	}
	return users, nil
}

func (repo userRepository) CountUsers(ctx context.Context, filter user.QueryFilter) (int, error) {
	c := repo.userConds(filter)
	var total int
	query := repo.db.Rebind(`SELECT COUNT(*) FROM "user"` + c.where())
	if err := repo.db.GetContext(ctx, &total, query, c.args...); err != nil {
		return 0, errors.Wrap(err, "counting users")
	}
	return total, nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User, isActive *bool) (user.User, error) {
	if isActive != nil {
		usr.IsActive = isActive
	}
	query := repo.db.Rebind(`
UPDATE "user"
SET name = ?, username = ?, email = ?, is_active = ?, password_hash = ?, updated_at = ?, last_login = ?
WHERE id = ?`)
	res, err := repo.db.ExecContext(ctx, query,
		usr.Name,
		null.NewString(usr.Username, usr.Username != ""),
		null.NewString(usr.Email, usr.Email != ""),
		usr.Active(), usr.PasswordHash, usr.UpdatedAt,
		null.NewTime(usr.LastLogin, !usr.LastLogin.IsZero()),
		usr.ID,
	)
	if err != nil {
		return user.User{}, trapPqErr(err, "updating user", user.ErrUserExists, user.ErrNotFound)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}

func (repo userRepository) DeleteUsersByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM "user" WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err := repo.db.ExecContext(ctx, repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting users")
	}
	return nil
}
