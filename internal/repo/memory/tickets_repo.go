package memory

import (
	"context"
	"time"

	"github.com/geocoder89/boardhub/internal/access"
	"github.com/geocoder89/boardhub/internal/domain/project"
	"github.com/geocoder89/boardhub/internal/domain/ticket"
	"github.com/geocoder89/boardhub/internal/pagination"
	"github.com/google/uuid"
)

type TicketsRepo struct {
	s *Store
}

// ownerLocked resolves a ticket's owner through its project.
func (r *TicketsRepo) ownerLocked(t ticket.Ticket) string {
	return r.s.projects[t.ProjectID].UserID
}

func (r *TicketsRepo) List(ctx context.Context, scope access.Scope, filter ticket.ListFilter) (pagination.Page[ticket.Ticket], error) {
	r.s.mu.RLock()
	all := make([]ticket.Ticket, 0, len(r.s.tickets))
	for _, t := range r.s.tickets {
		if filter.ProjectID != nil && t.ProjectID != *filter.ProjectID {
			continue
		}
		all = append(all, t)
	}
	out := access.Filter(scope, all, r.ownerLocked)
	r.s.mu.RUnlock()

	sortByCreated(out,
		func(t ticket.Ticket) time.Time { return t.CreatedAt },
		func(t ticket.Ticket) string { return t.ID },
	)
	return pagination.Slice(out, filter.Page, ticket.Ticket.Cursor)
}

func (r *TicketsRepo) Get(ctx context.Context, scope access.Scope, id string) (ticket.Ticket, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.getLocked(scope, id)
}

func (r *TicketsRepo) getLocked(scope access.Scope, id string) (ticket.Ticket, error) {
	t, ok := r.s.tickets[id]
	if !ok || !scope.Visible(r.ownerLocked(t)) {
		return ticket.Ticket{}, ticket.ErrNotFound
	}
	return t, nil
}

func (r *TicketsRepo) Create(ctx context.Context, np ticket.NewParams) (ticket.Ticket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.projects[np.ProjectID]; !ok {
		return ticket.Ticket{}, project.ErrNotFound
	}

	now := r.s.now()
	t := ticket.Ticket{
		ID:          uuid.NewString(),
		Name:        np.Name,
		Description: np.Description,
		Status:      np.Status,
		ProjectID:   np.ProjectID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.s.tickets[t.ID] = t

	return t, nil
}

func (r *TicketsRepo) Update(ctx context.Context, scope access.Scope, id string, patch ticket.Patch) (ticket.Ticket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, err := r.getLocked(scope, id)
	if err != nil {
		return ticket.Ticket{}, err
	}

	if patch.ProjectID != nil {
		if _, ok := r.s.projects[*patch.ProjectID]; !ok {
			return ticket.Ticket{}, project.ErrNotFound
		}
	}

	t = patch.Apply(t)
	t.UpdatedAt = r.s.now()
	r.s.tickets[id] = t

	return t, nil
}

func (r *TicketsRepo) Delete(ctx context.Context, scope access.Scope, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, err := r.getLocked(scope, id); err != nil {
		return err
	}
	delete(r.s.tickets, id)

	return nil
}
