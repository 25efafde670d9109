package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/boardhub/internal/domain/profile"
	"github.com/geocoder89/boardhub/internal/domain/user"
	"github.com/geocoder89/boardhub/internal/observability"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProfilesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewProfilesRepo(pool *pgxpool.Pool, prom *observability.Prom) *ProfilesRepo {
	return &ProfilesRepo{pool: pool, prom: prom}
}

const profileColumns = `id, user_id, first_name, last_name, phone_number, avatar_url, created_at, updated_at`

func scanProfile(row rowScanner) (profile.Profile, error) {
	var p profile.Profile
	err := row.Scan(&p.ID, &p.UserID, &p.FirstName, &p.LastName, &p.PhoneNumber, &p.AvatarURL, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *ProfilesRepo) List(ctx context.Context) ([]profile.Profile, error) {
	out := make([]profile.Profile, 0)

	err := r.prom.ObserveDB("profiles.list", func() error {
		rows, err := r.pool.Query(ctx, `SELECT `+profileColumns+` FROM profiles ORDER BY created_at ASC, id ASC`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			p, err := scanProfile(rows)
			if err != nil {
				return err
			}
			out = append(out, p)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *ProfilesRepo) GetByUserID(ctx context.Context, userID string) (profile.Profile, error) {
	var p profile.Profile

	err := r.prom.ObserveDB("profiles.get_by_user", func() error {
		var err error
		p, err = scanProfile(r.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE user_id = $1`, userID))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return profile.Profile{}, profile.ErrNotFound
		}
		return profile.Profile{}, err
	}

	return p, nil
}

func (r *ProfilesRepo) Create(ctx context.Context, np profile.NewParams) (profile.Profile, error) {
	now := Now()
	p := profile.Profile{
		ID:          uuid.NewString(),
		UserID:      np.UserID,
		FirstName:   np.FirstName,
		LastName:    np.LastName,
		PhoneNumber: np.PhoneNumber,
		AvatarURL:   np.AvatarURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := r.prom.ObserveDB("profiles.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO profiles (`+profileColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			p.ID, p.UserID, p.FirstName, p.LastName, p.PhoneNumber, p.AvatarURL, p.CreatedAt, p.UpdatedAt,
		)
		return err
	})

	switch {
	case err == nil:
		return p, nil
	case IsUniqueViolation(err):
		return profile.Profile{}, profile.ErrAlreadyExists
	case IsForeignKeyViolation(err):
		return profile.Profile{}, user.ErrOwnerNotFound
	default:
		return profile.Profile{}, err
	}
}

func (r *ProfilesRepo) UpdateByUserID(ctx context.Context, userID string, patch profile.Patch) (profile.Profile, error) {
	var p profile.Profile

	err := r.prom.ObserveDB("profiles.update", func() error {
		var err error
		p, err = scanProfile(r.pool.QueryRow(ctx,
			`UPDATE profiles
			SET first_name = COALESCE($2, first_name),
				last_name = COALESCE($3, last_name),
				phone_number = COALESCE($4, phone_number),
				avatar_url = COALESCE($5, avatar_url),
				updated_at = NOW()
			WHERE user_id = $1
			RETURNING `+profileColumns,
			userID, patch.FirstName, patch.LastName, patch.PhoneNumber, patch.AvatarURL,
		))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return profile.Profile{}, profile.ErrNotFound
		}
		return profile.Profile{}, err
	}

	return p, nil
}
