package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/geocoder89/boardhub/internal/access"
	"github.com/geocoder89/boardhub/internal/domain/project"
	"github.com/geocoder89/boardhub/internal/domain/ticket"
	"github.com/geocoder89/boardhub/internal/observability"
	"github.com/geocoder89/boardhub/internal/pagination"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TicketsRepo scopes tickets through the owning project's user_id.
type TicketsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewTicketsRepo(pool *pgxpool.Pool, prom *observability.Prom) *TicketsRepo {
	return &TicketsRepo{pool: pool, prom: prom}
}

const ticketColumns = `t.id, t.name, t.description, t.status, t.project_id, t.created_at, t.updated_at`

func scanTicket(row rowScanner) (ticket.Ticket, error) {
	var t ticket.Ticket
	err := row.Scan(&t.ID, &t.Name, &t.Description, &t.Status, &t.ProjectID, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func (r *TicketsRepo) List(ctx context.Context, scope access.Scope, filter ticket.ListFilter) (pagination.Page[ticket.Ticket], error) {
	query := `SELECT ` + ticketColumns + `
		FROM tickets t
		JOIN projects p ON p.id = t.project_id
		WHERE TRUE`
	var args []any

	if filter.ProjectID != nil {
		args = append(args, *filter.ProjectID)
		query += fmt.Sprintf(" AND t.project_id = $%d", len(args))
	}

	cond, args := scoped(scope, "p.user_id", len(args)+1, args)
	tail, args := keyset(filter.Page, "t.created_at", "t.id", args)
	query += cond + tail

	out := make([]ticket.Ticket, 0)

	err := r.prom.ObserveDB("tickets.list", func() error {
		rows, err := r.pool.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			t, err := scanTicket(rows)
			if err != nil {
				return err
			}
			out = append(out, t)
		}
		return rows.Err()
	})
	if err != nil {
		return pagination.Page[ticket.Ticket]{}, err
	}

	return pagination.Trim(out, filter.Page, ticket.Ticket.Cursor)
}

func (r *TicketsRepo) Get(ctx context.Context, scope access.Scope, id string) (ticket.Ticket, error) {
	cond, args := scoped(scope, "p.user_id", 2, []any{id})

	var t ticket.Ticket

	err := r.prom.ObserveDB("tickets.get", func() error {
		var err error
		t, err = scanTicket(r.pool.QueryRow(ctx,
			`SELECT `+ticketColumns+`
			FROM tickets t
			JOIN projects p ON p.id = t.project_id
			WHERE t.id = $1`+cond,
			args...,
		))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ticket.Ticket{}, ticket.ErrNotFound
		}
		return ticket.Ticket{}, err
	}

	return t, nil
}

// Create expects the caller to have checked the project is visible.
// A project deleted in the meantime surfaces as project.ErrNotFound.
func (r *TicketsRepo) Create(ctx context.Context, np ticket.NewParams) (ticket.Ticket, error) {
	now := Now()
	t := ticket.Ticket{
		ID:          uuid.NewString(),
		Name:        np.Name,
		Description: np.Description,
		Status:      np.Status,
		ProjectID:   np.ProjectID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := r.prom.ObserveDB("tickets.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO tickets (id, name, description, status, project_id, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			t.ID, t.Name, t.Description, t.Status, t.ProjectID, t.CreatedAt, t.UpdatedAt,
		)
		return err
	})
	if err != nil {
		if IsForeignKeyViolation(err) {
			return ticket.Ticket{}, project.ErrNotFound
		}
		return ticket.Ticket{}, err
	}

	return t, nil
}

func (r *TicketsRepo) Update(ctx context.Context, scope access.Scope, id string, patch ticket.Patch) (ticket.Ticket, error) {
	args := []any{id, patch.Name, patch.Description, patch.Status, patch.ProjectID}

	from, where := "", ""
	if ownerID, ok := scope.OwnerFilter(); ok {
		args = append(args, ownerID)
		from = ` FROM projects p`
		where = ` AND p.id = t.project_id AND p.user_id = $6`
	}

	var t ticket.Ticket

	err := r.prom.ObserveDB("tickets.update", func() error {
		var err error
		t, err = scanTicket(r.pool.QueryRow(ctx,
			`UPDATE tickets t
			SET name = COALESCE($2, t.name),
				description = COALESCE($3, t.description),
				status = COALESCE($4, t.status),
				project_id = COALESCE($5, t.project_id),
				updated_at = NOW()`+from+`
			WHERE t.id = $1`+where+`
			RETURNING `+ticketColumns,
			args...,
		))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ticket.Ticket{}, ticket.ErrNotFound
		}
		if IsForeignKeyViolation(err) {
			return ticket.Ticket{}, project.ErrNotFound
		}
		return ticket.Ticket{}, err
	}

	return t, nil
}

func (r *TicketsRepo) Delete(ctx context.Context, scope access.Scope, id string) error {
	query := `DELETE FROM tickets t WHERE t.id = $1`
	args := []any{id}

	if ownerID, ok := scope.OwnerFilter(); ok {
		query = `DELETE FROM tickets t USING projects p
			WHERE t.id = $1 AND p.id = t.project_id AND p.user_id = $2`
		args = append(args, ownerID)
	}

	var affected int64

	err := r.prom.ObserveDB("tickets.delete", func() error {
		tag, err := r.pool.Exec(ctx, query, args...)
		affected = tag.RowsAffected()
		return err
	})
	if err != nil {
		return err
	}

	if affected == 0 {
		return ticket.ErrNotFound
	}
	return nil
}
