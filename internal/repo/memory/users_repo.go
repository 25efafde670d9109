package memory

import (
	"context"

	"github.com/geocoder89/boardhub/internal/domain/user"
	"github.com/google/uuid"
)

type UsersRepo struct {
	s *Store
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	email = user.NormalizeEmail(email)

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (r *UsersRepo) Create(ctx context.Context, p user.CreateParams) (user.User, error) {
	if !p.Role.Valid() {
		return user.User{}, user.ErrUnknownRole
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	email := user.NormalizeEmail(p.Email)
	if r.emailTakenLocked(email, "") {
		return user.User{}, user.ErrEmailTaken
	}

	now := r.s.now()
	u := user.User{
		ID:           uuid.NewString(),
		Username:     p.Username,
		Email:        email,
		PasswordHash: p.PasswordHash,
		Role:         p.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.s.users[u.ID] = u

	return u, nil
}

func (r *UsersRepo) Update(ctx context.Context, id string, p user.Patch) (user.User, error) {
	if p.Email != nil {
		normalized := user.NormalizeEmail(*p.Email)
		p.Email = &normalized
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	if p.Email != nil && r.emailTakenLocked(*p.Email, id) {
		return user.User{}, user.ErrEmailTaken
	}

	u = p.Apply(u)
	u.UpdatedAt = r.s.now()
	r.s.users[id] = u

	return u, nil
}

func (r *UsersRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return user.ErrNotFound
	}
	r.s.deleteUserLocked(id)

	return nil
}

func (r *UsersRepo) emailTakenLocked(email, exceptID string) bool {
	for _, u := range r.s.users {
		if u.Email == email && u.ID != exceptID {
			return true
		}
	}
	return false
}
