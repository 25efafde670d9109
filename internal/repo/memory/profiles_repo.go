package memory

import (
	"context"
	"time"

	"github.com/geocoder89/boardhub/internal/domain/profile"
	"github.com/geocoder89/boardhub/internal/domain/user"
	"github.com/google/uuid"
)

type ProfilesRepo struct {
	s *Store
}

func (r *ProfilesRepo) List(ctx context.Context) ([]profile.Profile, error) {
	r.s.mu.RLock()
	out := make([]profile.Profile, 0, len(r.s.profiles))
	for _, p := range r.s.profiles {
		out = append(out, p)
	}
	r.s.mu.RUnlock()

	sortByCreated(out,
		func(p profile.Profile) time.Time { return p.CreatedAt },
		func(p profile.Profile) string { return p.ID },
	)
	return out, nil
}

func (r *ProfilesRepo) GetByUserID(ctx context.Context, userID string) (profile.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.profiles[userID]
	if !ok {
		return profile.Profile{}, profile.ErrNotFound
	}
	return p, nil
}

func (r *ProfilesRepo) Create(ctx context.Context, np profile.NewParams) (profile.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[np.UserID]; !ok {
		return profile.Profile{}, user.ErrOwnerNotFound
	}
	if _, ok := r.s.profiles[np.UserID]; ok {
		return profile.Profile{}, profile.ErrAlreadyExists
	}

	now := r.s.now()
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
	r.s.profiles[np.UserID] = p

	return p, nil
}

func (r *ProfilesRepo) UpdateByUserID(ctx context.Context, userID string, patch profile.Patch) (profile.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.profiles[userID]
	if !ok {
		return profile.Profile{}, profile.ErrNotFound
	}

	p = patch.Apply(p)
	p.UpdatedAt = r.s.now()
	r.s.profiles[userID] = p

	return p, nil
}
