package sqlite

import (
	"context"
	"database/sql"

	"github.com/nathanprivate2901-devops/vpn-access-manager/internal/vpnaccess/domain"
	"github.com/nathanprivate2901-devops/vpn-access-manager/internal/vpnaccess/store"
)

type usersRepo struct {
	db *sql.DB
}

const userColumns = `id, email, username, email_verified, display_name, role, password_hash, created_at, updated_at`

func (r *usersRepo) GetUserByID(ctx context.Context, id int64) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	return scanUser(row)
}

func (r *usersRepo) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (email, username, email_verified, display_name, role, password_hash)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		u.Email, mapOptionalString(u.Username), u.EmailVerified, u.DisplayName, u.Role, u.PasswordHash)
	if err != nil {
		return 0, mapConstraint(err)
	}
	return res.LastInsertId()
}

func (r *usersRepo) SetEmailVerified(ctx context.Context, id int64) error {
	return r.exec(ctx,
		`UPDATE users SET email_verified = 1, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, id)
}

func (r *usersRepo) UpdateUsername(ctx context.Context, id int64, username string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET username = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, username, id)
	if err != nil {
		return mapConstraint(err)
	}
	return checkAffected(res)
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, id int64, newHash string) error {
	return r.exec(ctx,
		`UPDATE users SET password_hash = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, newHash, id)
}

func (r *usersRepo) UpdateDisplayName(ctx context.Context, id int64, displayName string) error {
	return r.exec(ctx,
		`UPDATE users SET display_name = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, displayName, id)
}

func (r *usersRepo) DeleteUser(ctx context.Context, id int64) error {
	return r.exec(ctx, `DELETE FROM users WHERE id = ?`, id)
}

func (r *usersRepo) CountUsers(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}

// exec runs a mutation that must touch exactly one existing row.
func (r *usersRepo) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (domain.User, error) {
	var (
		u        domain.User
		username sql.NullString
	)
	err := row.Scan(
		&u.ID,
		&u.Email,
		&username,
		&u.EmailVerified,
		&u.DisplayName,
		&u.Role,
		&u.PasswordHash,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	u.Username = mapNullString(username)
	return u, nil
}
