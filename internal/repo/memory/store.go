package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/geocoder89/boardhub/internal/domain/profile"
	"github.com/geocoder89/boardhub/internal/domain/project"
	"github.com/geocoder89/boardhub/internal/domain/ticket"
	"github.com/geocoder89/boardhub/internal/domain/user"
)

// Store keeps every table behind one lock so foreign-key checks and
// cascading deletes stay consistent, the way the Postgres schema does.
type Store struct {
	mu       sync.RWMutex
	now      func() time.Time
	users    map[string]user.User
	profiles map[string]profile.Profile // keyed by user id
	projects map[string]project.Project
	tickets  map[string]ticket.Ticket
}

func NewStore() *Store {
	return &Store{
		now:      func() time.Time { return time.Now().UTC() },
		users:    make(map[string]user.User),
		profiles: make(map[string]profile.Profile),
		projects: make(map[string]project.Project),
		tickets:  make(map[string]ticket.Ticket),
	}
}

func (s *Store) Users() *UsersRepo       { return &UsersRepo{s: s} }
func (s *Store) Profiles() *ProfilesRepo { return &ProfilesRepo{s: s} }
func (s *Store) Projects() *ProjectsRepo { return &ProjectsRepo{s: s} }
func (s *Store) Tickets() *TicketsRepo   { return &TicketsRepo{s: s} }

// deleteUserLocked cascades like ON DELETE CASCADE. Caller holds s.mu.
func (s *Store) deleteUserLocked(id string) {
	delete(s.users, id)
	delete(s.profiles, id)

	for pid, p := range s.projects {
		if p.UserID == id {
			s.deleteProjectLocked(pid)
		}
	}
}

func (s *Store) deleteProjectLocked(id string) {
	delete(s.projects, id)

	for tid, t := range s.tickets {
		if t.ProjectID == id {
			delete(s.tickets, tid)
		}
	}
}

type timestamped interface {
	profile.Profile | project.Project | ticket.Ticket
}

// sortByCreated matches the ORDER BY created_at, id of the SQL stores.
func sortByCreated[T timestamped](items []T, created func(T) time.Time, id func(T) string) {
	sort.Slice(items, func(i, j int) bool {
		ci, cj := created(items[i]), created(items[j])
		if !ci.Equal(cj) {
			return ci.Before(cj)
		}
		return id(items[i]) < id(items[j])
	})
}
