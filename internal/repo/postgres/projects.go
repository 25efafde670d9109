package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/geocoder89/boardhub/internal/access"
	"github.com/geocoder89/boardhub/internal/domain/project"
	"github.com/geocoder89/boardhub/internal/domain/user"
	"github.com/geocoder89/boardhub/internal/observability"
	"github.com/geocoder89/boardhub/internal/pagination"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProjectsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewProjectsRepo(pool *pgxpool.Pool, prom *observability.Prom) *ProjectsRepo {
	return &ProjectsRepo{pool: pool, prom: prom}
}

const projectColumns = `id, name, description, user_id, created_at, updated_at`

func scanProject(row rowScanner) (project.Project, error) {
	var p project.Project
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.UserID, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// scoped appends the owner condition for restricted scopes.
// next is the placeholder index the condition would use.
func scoped(scope access.Scope, column string, next int, args []any) (string, []any) {
	ownerID, ok := scope.OwnerFilter()
	if !ok {
		return "", args
	}
	return fmt.Sprintf(" AND %s = $%d", column, next), append(args, ownerID)
}

// keyset appends the after-cursor condition and the LIMIT clause.
// One extra row is fetched so pagination.Trim can tell whether another page exists.
func keyset(page pagination.Request, createdCol, idCol string, args []any) (string, []any) {
	var clause string
	if page.After != nil {
		args = append(args, page.After.CreatedAt, page.After.ID)
		clause = fmt.Sprintf(" AND (%s, %s) > ($%d, $%d)", createdCol, idCol, len(args)-1, len(args))
	}
	args = append(args, page.Size()+1)
	clause += fmt.Sprintf(" ORDER BY %s ASC, %s ASC LIMIT $%d", createdCol, idCol, len(args))
	return clause, args
}

func (r *ProjectsRepo) List(ctx context.Context, scope access.Scope, page pagination.Request) (pagination.Page[project.Project], error) {
	cond, args := scoped(scope, "user_id", 1, nil)
	tail, args := keyset(page, "created_at", "id", args)

	out := make([]project.Project, 0)

	err := r.prom.ObserveDB("projects.list", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT `+projectColumns+` FROM projects WHERE TRUE`+cond+tail,
			args...,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			p, err := scanProject(rows)
			if err != nil {
				return err
			}
			out = append(out, p)
		}
		return rows.Err()
	})
	if err != nil {
		return pagination.Page[project.Project]{}, err
	}

	return pagination.Trim(out, page, project.Project.Cursor)
}

func (r *ProjectsRepo) Get(ctx context.Context, scope access.Scope, id string) (project.Project, error) {
	cond, args := scoped(scope, "user_id", 2, []any{id})

	var p project.Project

	err := r.prom.ObserveDB("projects.get", func() error {
		var err error
		p, err = scanProject(r.pool.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`+cond, args...))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return project.Project{}, project.ErrNotFound
		}
		return project.Project{}, err
	}

	return p, nil
}

func (r *ProjectsRepo) Create(ctx context.Context, np project.NewParams) (project.Project, error) {
	now := Now()
	p := project.Project{
		ID:          uuid.NewString(),
		Name:        np.Name,
		Description: np.Description,
		UserID:      np.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := r.prom.ObserveDB("projects.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO projects (`+projectColumns+`) VALUES ($1,$2,$3,$4,$5,$6)`,
			p.ID, p.Name, p.Description, p.UserID, p.CreatedAt, p.UpdatedAt,
		)
		return err
	})
	if err != nil {
		if IsForeignKeyViolation(err) {
			return project.Project{}, user.ErrOwnerNotFound
		}
		return project.Project{}, err
	}

	return p, nil
}

func (r *ProjectsRepo) Update(ctx context.Context, scope access.Scope, id string, patch project.Patch) (project.Project, error) {
	cond, args := scoped(scope, "user_id", 5, []any{id, patch.Name, patch.Description, patch.UserID})

	var p project.Project

	err := r.prom.ObserveDB("projects.update", func() error {
		var err error
		p, err = scanProject(r.pool.QueryRow(ctx,
			`UPDATE projects
			SET name = COALESCE($2, name),
				description = COALESCE($3, description),
				user_id = COALESCE($4, user_id),
				updated_at = NOW()
			WHERE id = $1`+cond+`
			RETURNING `+projectColumns,
			args...,
		))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return project.Project{}, project.ErrNotFound
		}
		if IsForeignKeyViolation(err) {
			return project.Project{}, user.ErrOwnerNotFound
		}
		return project.Project{}, err
	}

	return p, nil
}

func (r *ProjectsRepo) Delete(ctx context.Context, scope access.Scope, id string) error {
	cond, args := scoped(scope, "user_id", 2, []any{id})

	var affected int64

	err := r.prom.ObserveDB("projects.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`+cond, args...)
		affected = tag.RowsAffected()
		return err
	})
	if err != nil {
		return err
	}

	if affected == 0 {
		return project.ErrNotFound
	}
	return nil
}
