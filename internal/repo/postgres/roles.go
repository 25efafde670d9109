package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/geocoder89/boardhub/internal/cache"
	"github.com/geocoder89/boardhub/internal/domain/user"
	"github.com/geocoder89/boardhub/internal/observability"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RolesRepo resolves role names to ids. Roles are static, so lookups are cached.
type RolesRepo struct {
	pool  *pgxpool.Pool
	prom  *observability.Prom
	cache *cache.Cache
}

func NewRolesRepo(pool *pgxpool.Pool, prom *observability.Prom) *RolesRepo {
	return &RolesRepo{
		pool:  pool,
		prom:  prom,
		cache: cache.New(10 * time.Minute),
	}
}

func (r *RolesRepo) IDFor(ctx context.Context, role user.Role) (int16, error) {
	key := "role:" + role.String()

	if v, ok := r.cache.Get(key); ok {
		return v.(int16), nil
	}

	var id int16
	err := r.prom.ObserveDB("roles.id_for", func() error {
		return r.pool.QueryRow(ctx, `SELECT id FROM roles WHERE name = $1`, role.String()).Scan(&id)
	})
	if err != nil {
		return 0, fmt.Errorf("lookup role %s: %w", role, err)
	}

	r.cache.Set(key, id)

	return id, nil
}
