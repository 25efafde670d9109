package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/geocoder89/boardhub/internal/access"
	"github.com/geocoder89/boardhub/internal/actorctx"
	"github.com/geocoder89/boardhub/internal/auth"
	"github.com/geocoder89/boardhub/internal/domain/profile"
	"github.com/geocoder89/boardhub/internal/domain/project"
	"github.com/geocoder89/boardhub/internal/domain/ticket"
	"github.com/geocoder89/boardhub/internal/domain/user"
	"github.com/geocoder89/boardhub/internal/http/handlers"
	"github.com/geocoder89/boardhub/internal/pagination"
	"github.com/gin-gonic/gin"
)

const (
	adminID   = "00000000-0000-0000-0000-0000000000aa"
	managerID = "00000000-0000-0000-0000-0000000000bb"
	otherID   = "00000000-0000-0000-0000-0000000000cc"
	projectID = "11111111-1111-1111-1111-111111111111"
	ticketID  = "22222222-2222-2222-2222-222222222222"
)

var (
	admin   = auth.Principal{ID: adminID, Email: "admin@example.com", Role: user.RoleAdmin}
	manager = auth.Principal{ID: managerID, Email: "m@example.com", Role: user.RoleManager}
)

type fakeProjects struct {
	list   func(ctx context.Context, scope access.Scope, page pagination.Request) (pagination.Page[project.Project], error)
	get    func(ctx context.Context, scope access.Scope, id string) (project.Project, error)
	create func(ctx context.Context, np project.NewParams) (project.Project, error)
	update func(ctx context.Context, scope access.Scope, id string, patch project.Patch) (project.Project, error)
	delete func(ctx context.Context, scope access.Scope, id string) error
}

func (f *fakeProjects) List(ctx context.Context, scope access.Scope, page pagination.Request) (pagination.Page[project.Project], error) {
	return f.list(ctx, scope, page)
}

func (f *fakeProjects) Get(ctx context.Context, scope access.Scope, id string) (project.Project, error) {
	return f.get(ctx, scope, id)
}

func (f *fakeProjects) Create(ctx context.Context, np project.NewParams) (project.Project, error) {
	return f.create(ctx, np)
}

func (f *fakeProjects) Update(ctx context.Context, scope access.Scope, id string, patch project.Patch) (project.Project, error) {
	return f.update(ctx, scope, id, patch)
}

func (f *fakeProjects) Delete(ctx context.Context, scope access.Scope, id string) error {
	return f.delete(ctx, scope, id)
}

type fakeTickets struct {
	create func(ctx context.Context, np ticket.NewParams) (ticket.Ticket, error)
	list   func(ctx context.Context, scope access.Scope, filter ticket.ListFilter) (pagination.Page[ticket.Ticket], error)
}

func (f *fakeTickets) List(ctx context.Context, scope access.Scope, filter ticket.ListFilter) (pagination.Page[ticket.Ticket], error) {
	return f.list(ctx, scope, filter)
}

func (f *fakeTickets) Get(context.Context, access.Scope, string) (ticket.Ticket, error) {
	return ticket.Ticket{}, ticket.ErrNotFound
}

func (f *fakeTickets) Create(ctx context.Context, np ticket.NewParams) (ticket.Ticket, error) {
	return f.create(ctx, np)
}

func (f *fakeTickets) Update(context.Context, access.Scope, string, ticket.Patch) (ticket.Ticket, error) {
	return ticket.Ticket{}, ticket.ErrNotFound
}

func (f *fakeTickets) Delete(context.Context, access.Scope, string) error {
	return ticket.ErrNotFound
}

// as attaches p the way RequireAuth does.
func as(p auth.Principal) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Request = ctx.Request.WithContext(actorctx.WithPrincipal(ctx.Request.Context(), p))
		ctx.Next()
	}
}

func serve(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func projectsRouter(p auth.Principal, store handlers.ProjectStore) *gin.Engine {
	gin.SetMode(gin.TestMode)

	h := handlers.NewProjectsHandler(store)
	r := gin.New()
	g := r.Group("/board", as(p))
	g.GET("/projects", h.List)
	g.POST("/projects", h.Create)
	g.GET("/projects/:id", h.Get)
	g.PATCH("/projects/:id", h.Update)
	g.DELETE("/projects/:id", h.Delete)
	return r
}

func TestProjectsCreate_Owner(t *testing.T) {
	tests := []struct {
		name      string
		principal auth.Principal
		body      string
		wantOwner string
	}{
		{name: "manager_defaults_to_self", principal: manager, body: `{"name":"p"}`, wantOwner: managerID},
		{name: "manager_cannot_assign_other", principal: manager, body: `{"name":"p","user_id":"` + otherID + `"}`, wantOwner: managerID},
		{name: "admin_assigns_other", principal: admin, body: `{"name":"p","user_id":"` + otherID + `"}`, wantOwner: otherID},
		{name: "admin_defaults_to_self", principal: admin, body: `{"name":"p"}`, wantOwner: adminID},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			var got project.NewParams
			store := &fakeProjects{
				create: func(_ context.Context, np project.NewParams) (project.Project, error) {
					got = np
					return project.Project{ID: projectID, Name: np.Name, UserID: np.UserID, CreatedAt: time.Now()}, nil
				},
			}

			w := serve(projectsRouter(tt.principal, store), http.MethodPost, "/board/projects", tt.body)
			if w.Code != http.StatusCreated {
				t.Fatalf("got %d body=%s", w.Code, w.Body.String())
			}
			if got.UserID != tt.wantOwner {
				t.Fatalf("got owner %q, want %q", got.UserID, tt.wantOwner)
			}
		})
	}
}

func TestProjectsCreate_UnknownOwner(t *testing.T) {
	store := &fakeProjects{
		create: func(context.Context, project.NewParams) (project.Project, error) {
			return project.Project{}, user.ErrOwnerNotFound
		},
	}

	w := serve(projectsRouter(admin, store), http.MethodPost, "/board/projects", `{"name":"p","user_id":"`+otherID+`"}`)
	if w.Code != http.StatusBadRequest || errorCode(t, w) != "owner_not_found" {
		t.Fatalf("got %d body=%s", w.Code, w.Body.String())
	}
}

func TestProjectsGet(t *testing.T) {
	store := &fakeProjects{
		get: func(_ context.Context, scope access.Scope, id string) (project.Project, error) {
			if !scope.Visible(otherID) {
				return project.Project{}, project.ErrNotFound
			}
			return project.Project{ID: id, Name: "p", UserID: otherID}, nil
		},
	}

	tests := []struct {
		name      string
		principal auth.Principal
		path      string
		want      int
	}{
		{name: "admin_sees_foreign", principal: admin, path: "/board/projects/" + projectID, want: http.StatusOK},
		{name: "manager_foreign_is_404", principal: manager, path: "/board/projects/" + projectID, want: http.StatusNotFound},
		{name: "malformed_id_is_404", principal: admin, path: "/board/projects/not-a-uuid", want: http.StatusNotFound},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			w := serve(projectsRouter(tt.principal, store), http.MethodGet, tt.path, "")
			if w.Code != tt.want {
				t.Fatalf("got %d want %d body=%s", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestProjectsGet_ETag(t *testing.T) {
	store := &fakeProjects{
		get: func(_ context.Context, _ access.Scope, id string) (project.Project, error) {
			return project.Project{ID: id, Name: "p", UserID: adminID}, nil
		},
	}
	r := projectsRouter(admin, store)

	w := serve(r, http.MethodGet, "/board/projects/"+projectID, "")
	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatalf("missing ETag")
	}

	req := httptest.NewRequest(http.MethodGet, "/board/projects/"+projectID, nil)
	req.Header.Set("If-None-Match", etag)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotModified {
		t.Fatalf("got %d, want 304", w.Code)
	}
}

func TestProjectsUpdate_OnlyAdminReassigns(t *testing.T) {
	tests := []struct {
		name       string
		principal  auth.Principal
		wantUserID bool
	}{
		{name: "manager", principal: manager, wantUserID: false},
		{name: "admin", principal: admin, wantUserID: true},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			var got project.Patch
			store := &fakeProjects{
				update: func(_ context.Context, _ access.Scope, id string, patch project.Patch) (project.Project, error) {
					got = patch
					return project.Project{ID: id}, nil
				},
			}

			body := `{"name":"renamed","user_id":"` + otherID + `"}`
			w := serve(projectsRouter(tt.principal, store), http.MethodPatch, "/board/projects/"+projectID, body)
			if w.Code != http.StatusOK {
				t.Fatalf("got %d body=%s", w.Code, w.Body.String())
			}
			if (got.UserID != nil) != tt.wantUserID {
				t.Fatalf("user_id passed through = %v, want %v", got.UserID != nil, tt.wantUserID)
			}
			if got.Name == nil || *got.Name != "renamed" {
				t.Fatalf("name not forwarded: %+v", got)
			}
		})
	}
}

func TestProjectsDelete(t *testing.T) {
	store := &fakeProjects{
		delete: func(_ context.Context, scope access.Scope, _ string) error {
			if !scope.Unrestricted() {
				return project.ErrNotFound
			}
			return nil
		},
	}

	if w := serve(projectsRouter(admin, store), http.MethodDelete, "/board/projects/"+projectID, ""); w.Code != http.StatusNoContent {
		t.Fatalf("admin delete: got %d", w.Code)
	}
	if w := serve(projectsRouter(manager, store), http.MethodDelete, "/board/projects/"+projectID, ""); w.Code != http.StatusNotFound {
		t.Fatalf("manager delete: got %d", w.Code)
	}
}

func ticketsRouter(p auth.Principal, tickets handlers.TicketStore, projects handlers.ProjectStore) *gin.Engine {
	gin.SetMode(gin.TestMode)

	h := handlers.NewTicketsHandler(tickets, projects)
	r := gin.New()
	g := r.Group("/board", as(p))
	g.GET("/tickets", h.List)
	g.POST("/tickets", h.Create)
	return r
}

func TestTicketsCreate_ChecksProjectVisibility(t *testing.T) {
	projects := &fakeProjects{
		get: func(_ context.Context, scope access.Scope, id string) (project.Project, error) {
			if !scope.Visible(otherID) {
				return project.Project{}, project.ErrNotFound
			}
			return project.Project{ID: id, UserID: otherID}, nil
		},
	}

	created := 0
	tickets := &fakeTickets{
		create: func(_ context.Context, np ticket.NewParams) (ticket.Ticket, error) {
			created++
			return ticket.Ticket{ID: ticketID, Name: np.Name, Status: np.Status, ProjectID: np.ProjectID}, nil
		},
	}

	body := `{"name":"t","project_id":"` + projectID + `"}`

	w := serve(ticketsRouter(manager, tickets, projects), http.MethodPost, "/board/tickets", body)
	if w.Code != http.StatusNotFound {
		t.Fatalf("manager on foreign project: got %d", w.Code)
	}
	if created != 0 {
		t.Fatalf("ticket must not be created on an invisible project")
	}

	w = serve(ticketsRouter(admin, tickets, projects), http.MethodPost, "/board/tickets", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("admin: got %d body=%s", w.Code, w.Body.String())
	}

	var got ticket.Ticket
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Status != ticket.DefaultStatus {
		t.Fatalf("got status %q, want default %q", got.Status, ticket.DefaultStatus)
	}
}

func TestTicketsList_ProjectFilter(t *testing.T) {
	var got ticket.ListFilter
	tickets := &fakeTickets{
		list: func(_ context.Context, _ access.Scope, filter ticket.ListFilter) (pagination.Page[ticket.Ticket], error) {
			got = filter
			return pagination.Page[ticket.Ticket]{}, nil
		},
	}
	r := ticketsRouter(manager, tickets, &fakeProjects{})

	if w := serve(r, http.MethodGet, "/board/tickets?project_id="+projectID, ""); w.Code != http.StatusOK {
		t.Fatalf("got %d", w.Code)
	}
	if got.ProjectID == nil || *got.ProjectID != projectID {
		t.Fatalf("filter not forwarded: %+v", got)
	}

	if w := serve(r, http.MethodGet, "/board/tickets?project_id=bogus", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("bogus filter: got %d", w.Code)
	}
}

type fakeProfiles struct {
	byUser map[string]profile.Profile
}

func (f *fakeProfiles) List(context.Context) ([]profile.Profile, error) {
	out := make([]profile.Profile, 0, len(f.byUser))
	for _, p := range f.byUser {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeProfiles) GetByUserID(_ context.Context, userID string) (profile.Profile, error) {
	p, ok := f.byUser[userID]
	if !ok {
		return profile.Profile{}, profile.ErrNotFound
	}
	return p, nil
}

func (f *fakeProfiles) Create(_ context.Context, np profile.NewParams) (profile.Profile, error) {
	if _, ok := f.byUser[np.UserID]; ok {
		return profile.Profile{}, profile.ErrAlreadyExists
	}
	p := profile.Profile{ID: ticketID, UserID: np.UserID, FirstName: np.FirstName, LastName: np.LastName}
	f.byUser[np.UserID] = p
	return p, nil
}

func (f *fakeProfiles) UpdateByUserID(_ context.Context, userID string, patch profile.Patch) (profile.Profile, error) {
	p, ok := f.byUser[userID]
	if !ok {
		return profile.Profile{}, profile.ErrNotFound
	}
	p = patch.Apply(p)
	f.byUser[userID] = p
	return p, nil
}

func TestMyProfile(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := &fakeProfiles{byUser: map[string]profile.Profile{}}
	h := handlers.NewProfilesHandler(store)

	r := gin.New()
	g := r.Group("/board", as(manager))
	g.GET("/my_profile", h.GetMine)
	g.POST("/my_profile", h.CreateMine)
	g.PATCH("/my_profile", h.PatchMine)

	if w := serve(r, http.MethodGet, "/board/my_profile", ""); w.Code != http.StatusNotFound {
		t.Fatalf("missing profile: got %d", w.Code)
	}

	body := `{"first_name":"Ann","last_name":"Lee","user_id":"` + otherID + `"}`
	if w := serve(r, http.MethodPost, "/board/my_profile", body); w.Code != http.StatusCreated {
		t.Fatalf("create: got %d body=%s", w.Code, w.Body.String())
	}
	if _, ok := store.byUser[managerID]; !ok {
		t.Fatalf("non-admin profile must be created for the caller")
	}

	w := serve(r, http.MethodPost, "/board/my_profile", body)
	if w.Code != http.StatusConflict || errorCode(t, w) != "profile_exists" {
		t.Fatalf("second create: got %d body=%s", w.Code, w.Body.String())
	}

	w = serve(r, http.MethodPatch, "/board/my_profile", `{"last_name":"Park"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("patch: got %d", w.Code)
	}
	if store.byUser[managerID].LastName != "Park" {
		t.Fatalf("patch not applied")
	}
}

func TestProjectsList_Paging(t *testing.T) {
	var got pagination.Request
	store := &fakeProjects{
		list: func(_ context.Context, _ access.Scope, page pagination.Request) (pagination.Page[project.Project], error) {
			got = page
			return pagination.Page[project.Project]{
				Items:      []project.Project{{ID: projectID, Name: "p", UserID: managerID}},
				NextCursor: "next",
			}, nil
		},
	}
	r := projectsRouter(manager, store)

	cursor, err := pagination.Encode(pagination.Cursor{CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), ID: projectID})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	w := serve(r, http.MethodGet, "/board/projects?limit=1&cursor="+cursor, "")
	if w.Code != http.StatusOK {
		t.Fatalf("got %d body=%s", w.Code, w.Body.String())
	}
	if got.Limit != 1 || got.After == nil || got.After.ID != projectID {
		t.Fatalf("page request not forwarded: %+v", got)
	}

	var body struct {
		Count      int    `json:"count"`
		NextCursor string `json:"next_cursor"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Count != 1 || body.NextCursor != "next" {
		t.Fatalf("unexpected body: %+v", body)
	}

	tests := []struct {
		name     string
		query    string
		wantCode string
	}{
		{name: "bad_cursor", query: "?cursor=%21%21", wantCode: "invalid_cursor"},
		{name: "cursor_id_not_uuid", query: "?cursor=eyJjcmVhdGVkX2F0IjoiMjAyNi0wMS0wMVQwMDowMDowMFoiLCJpZCI6Im5vdC1hLXV1aWQifQ", wantCode: "invalid_cursor"},
		{name: "limit_too_large", query: "?limit=1000", wantCode: "invalid_request"},
		{name: "limit_not_a_number", query: "?limit=ten", wantCode: "invalid_request"},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, http.MethodGet, "/board/projects"+tt.query, "")
			if w.Code != http.StatusBadRequest || errorCode(t, w) != tt.wantCode {
				t.Fatalf("got %d body=%s", w.Code, w.Body.String())
			}
		})
	}
}
