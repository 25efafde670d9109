package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/geocoder89/boardhub/internal/domain/user"
	"github.com/geocoder89/boardhub/internal/observability"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UsersRepo struct {
	pool  *pgxpool.Pool
	prom  *observability.Prom
	roles *RolesRepo
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom, roles *RolesRepo) *UsersRepo {
	return &UsersRepo{pool: pool, prom: prom, roles: roles}
}

const userColumns = `u.id, u.username, u.email, u.password_hash, r.name, u.created_at, u.updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (user.User, error) {
	var (
		u        user.User
		roleName string
	)

	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &roleName, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return user.User{}, err
	}

	u.Role, err = user.ParseRole(roleName)
	if err != nil {
		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return r.getOne(ctx, "users.get_by_email", `u.email = $1`, user.NormalizeEmail(email))
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	return r.getOne(ctx, "users.get_by_id", `u.id = $1`, id)
}

func (r *UsersRepo) getOne(ctx context.Context, op, where string, arg any) (user.User, error) {
	var u user.User

	err := r.prom.ObserveDB(op, func() error {
		var err error
		u, err = scanUser(r.pool.QueryRow(ctx,
			`SELECT `+userColumns+`
			FROM users u
			JOIN roles r ON r.id = u.role_id
			WHERE `+where,
			arg,
		))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) Create(ctx context.Context, p user.CreateParams) (user.User, error) {
	roleID, err := r.roles.IDFor(ctx, p.Role)
	if err != nil {
		return user.User{}, err
	}

	now := Now()
	u := user.User{
		ID:           uuid.NewString(),
		Username:     p.Username,
		Email:        user.NormalizeEmail(p.Email),
		PasswordHash: p.PasswordHash,
		Role:         p.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = r.prom.ObserveDB("users.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO users (id, username, email, password_hash, role_id, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			u.ID, u.Username, u.Email, u.PasswordHash, roleID, u.CreatedAt, u.UpdatedAt,
		)
		return err
	})

	if err != nil {
		if IsUniqueViolation(err) {
			return user.User{}, user.ErrEmailTaken
		}
		return user.User{}, fmt.Errorf("insert user: %w", err)
	}

	return u, nil
}

func (r *UsersRepo) Update(ctx context.Context, id string, p user.Patch) (user.User, error) {
	if p.Email != nil {
		normalized := user.NormalizeEmail(*p.Email)
		p.Email = &normalized
	}

	var u user.User

	err := r.prom.ObserveDB("users.update", func() error {
		var err error
		u, err = scanUser(r.pool.QueryRow(ctx,
			`WITH updated AS (
				UPDATE users
				SET username = COALESCE($2, username),
					email = COALESCE($3, email),
					password_hash = COALESCE($4, password_hash),
					updated_at = NOW()
				WHERE id = $1
				RETURNING *
			)
			SELECT `+userColumns+`
			FROM updated u
			JOIN roles r ON r.id = u.role_id`,
			id, p.Username, p.Email, p.PasswordHash,
		))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		if IsUniqueViolation(err) {
			return user.User{}, user.ErrEmailTaken
		}
		return user.User{}, err
	}

	return u, nil
}

// Delete removes the user; profiles, projects and tickets go with it via ON DELETE CASCADE.
func (r *UsersRepo) Delete(ctx context.Context, id string) error {
	var affected int64

	err := r.prom.ObserveDB("users.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
		affected = tag.RowsAffected()
		return err
	})
	if err != nil {
		return err
	}

	if affected == 0 {
		return user.ErrNotFound
	}
	return nil
}
