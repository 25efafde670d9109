package memory

import (
	"context"
	"time"

	"github.com/geocoder89/boardhub/internal/access"
	"github.com/geocoder89/boardhub/internal/domain/project"
	"github.com/geocoder89/boardhub/internal/domain/user"
	"github.com/geocoder89/boardhub/internal/pagination"
	"github.com/google/uuid"
)

type ProjectsRepo struct {
	s *Store
}

func (r *ProjectsRepo) List(ctx context.Context, scope access.Scope, page pagination.Request) (pagination.Page[project.Project], error) {
	r.s.mu.RLock()
	all := make([]project.Project, 0, len(r.s.projects))
	for _, p := range r.s.projects {
		all = append(all, p)
	}
	r.s.mu.RUnlock()

	out := access.Filter(scope, all, func(p project.Project) string { return p.UserID })
	sortByCreated(out,
		func(p project.Project) time.Time { return p.CreatedAt },
		func(p project.Project) string { return p.ID },
	)
	return pagination.Slice(out, page, project.Project.Cursor)
}

func (r *ProjectsRepo) Get(ctx context.Context, scope access.Scope, id string) (project.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.getLocked(scope, id)
}

func (r *ProjectsRepo) getLocked(scope access.Scope, id string) (project.Project, error) {
	p, ok := r.s.projects[id]
	if !ok || !scope.Visible(p.UserID) {
		return project.Project{}, project.ErrNotFound
	}
	return p, nil
}

func (r *ProjectsRepo) Create(ctx context.Context, np project.NewParams) (project.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[np.UserID]; !ok {
		return project.Project{}, user.ErrOwnerNotFound
	}

	now := r.s.now()
	p := project.Project{
		ID:          uuid.NewString(),
		Name:        np.Name,
		Description: np.Description,
		UserID:      np.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.s.projects[p.ID] = p

	return p, nil
}

func (r *ProjectsRepo) Update(ctx context.Context, scope access.Scope, id string, patch project.Patch) (project.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, err := r.getLocked(scope, id)
	if err != nil {
		return project.Project{}, err
	}

	if patch.UserID != nil {
		if _, ok := r.s.users[*patch.UserID]; !ok {
			return project.Project{}, user.ErrOwnerNotFound
		}
	}

	p = patch.Apply(p)
	p.UpdatedAt = r.s.now()
	r.s.projects[id] = p

	return p, nil
}

func (r *ProjectsRepo) Delete(ctx context.Context, scope access.Scope, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, err := r.getLocked(scope, id); err != nil {
		return err
	}
	r.s.deleteProjectLocked(id)

	return nil
}
