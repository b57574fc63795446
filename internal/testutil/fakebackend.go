package testutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"taskboard/internal/apiclient"
	"taskboard/internal/service"
)

// RecordedRequest is a request seen by FakeBackend.
type RecordedRequest struct {
	Method        string
	Path          string
	RawQuery      string
	Authorization string
	ContentType   string
	Body          string
}

type backendUser struct {
	user service.User
	hash []byte
}

type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// FakeBackend is an HTTP server speaking the task API. Accounts and tokens
// are real: passwords are bcrypt hashes and access tokens are HS256 JWTs.
// Everything else is stored in Data, so tests can seed it and inject
// errors through the FakeService fields.
type FakeBackend struct {
	*httptest.Server
	Data *FakeService

	mu       sync.Mutex
	secret   []byte
	users    map[string]backendUser // email -> user
	requests []RecordedRequest
}

// NewFakeBackend starts a FakeBackend. It is closed when the test ends.
func NewFakeBackend(t interface {
	Helper()
	Cleanup(func())
}) *FakeBackend {
	t.Helper()
	b := &FakeBackend{
		Data:   NewFakeService(),
		secret: []byte(uuid.NewString()),
		users:  make(map[string]backendUser),
	}
	b.Server = httptest.NewServer(b.router())
	t.Cleanup(b.Server.Close)
	return b
}

// AddUser creates an account directly.
func (b *FakeBackend) AddUser(email, password string) service.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	u := service.User{ID: uuid.NewString(), Email: email, IsActive: true}
	b.users[email] = backendUser{user: u, hash: hash}
	return u
}

// IssueToken returns a valid access token for email.
func (b *FakeBackend) IssueToken(email string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	tok, err := b.sign(email)
	if err != nil {
		panic(err)
	}
	return tok
}

// ExpireTokens rotates the signing key so every issued token is rejected.
func (b *FakeBackend) ExpireTokens() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.secret = []byte(uuid.NewString())
}

// Requests returns the requests received so far.
func (b *FakeBackend) Requests() []RecordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]RecordedRequest, len(b.requests))
	copy(out, b.requests)
	return out
}

// LastRequest returns the most recent request.
func (b *FakeBackend) LastRequest() RecordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.requests) == 0 {
		return RecordedRequest{}
	}
	return b.requests[len(b.requests)-1]
}

func (b *FakeBackend) sign(email string) (string, error) {
	now := time.Now()
	c := claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(b.secret)
}

func (b *FakeBackend) router() http.Handler {
	r := chi.NewRouter()
	r.Use(b.record)

	r.Post("/auth/register", b.register)
	r.Post("/auth/login", b.login)

	r.Group(func(r chi.Router) {
		r.Use(b.bearerAuth)

		r.Get("/auth/me", b.me)

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", b.listTasks)
			r.Post("/", b.createTask)
			r.Get("/{id}", b.getTask)
			r.Patch("/{id}", b.updateTask)
			r.Get("/{id}/comments", b.listComments)
			r.Post("/{id}/comments", b.addComment)
		})

		r.Route("/teams", func(r chi.Router) {
			r.Get("/", b.listTeams)
			r.Post("/", b.createTeam)
			r.Get("/{id}", b.getTeam)
			r.Post("/{id}/members", b.addMember)
		})

		r.Get("/notifications", b.listNotifications)
		r.Get("/analytics/teams/{id}", b.teamAnalytics)
		r.Get("/analytics/projects/{id}", b.projectAnalytics)
	})
	return r
}

func (b *FakeBackend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			body, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewReader(body))
		}
		b.mu.Lock()
		b.requests = append(b.requests, RecordedRequest{
			Method:        r.Method,
			Path:          r.URL.Path,
			RawQuery:      r.URL.RawQuery,
			Authorization: r.Header.Get("Authorization"),
			ContentType:   r.Header.Get("Content-Type"),
			Body:          string(body),
		})
		b.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (b *FakeBackend) bearerAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		b.mu.Lock()
		secret := b.secret
		b.mu.Unlock()

		var c claims
		_, err := jwt.ParseWithClaims(raw, &c, func(*jwt.Token) (any, error) {
			return secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		r.Header.Set("X-User-Email", c.Email)
		next.ServeHTTP(w, r)
	})
}

func (b *FakeBackend) register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		writeValidation(w, "email and password are required")
		return
	}
	b.mu.Lock()
	_, exists := b.users[req.Email]
	b.mu.Unlock()
	if exists {
		writeDetail(w, http.StatusBadRequest, "Email already registered")
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}
	u := service.User{ID: uuid.NewString(), Email: req.Email, Roles: req.Roles, IsActive: true}
	b.mu.Lock()
	b.users[req.Email] = backendUser{user: u, hash: hash}
	b.mu.Unlock()
	writeJSON(w, http.StatusCreated, u)
}

func (b *FakeBackend) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decode(w, r, &req) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.users[req.Email]
	if !ok || bcrypt.CompareHashAndPassword(u.hash, []byte(req.Password)) != nil {
		writeDetail(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	tok, err := b.sign(req.Email)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, service.AuthToken{AccessToken: tok, TokenType: "bearer"})
}

func (b *FakeBackend) me(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	u, ok := b.users[r.Header.Get("X-User-Email")]
	b.mu.Unlock()
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}
	writeJSON(w, http.StatusOK, u.user)
}

func (b *FakeBackend) listTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := service.TaskFilter{
		ProjectID: q.Get("project_id"),
		TeamID:    q.Get("team_id"),
		Q:         q.Get("q"),
		Status:    q.Get("status"),
		Priority:  q.Get("priority"),
	}
	if !filter.Scoped() {
		writeDetail(w, http.StatusBadRequest, "project_id or team_id is required")
		return
	}
	page, err := b.Data.ListTasks(r.Context(), filter, window(r))
	respond(w, http.StatusOK, page, err)
}

func (b *FakeBackend) createTask(w http.ResponseWriter, r *http.Request) {
	var req service.CreateTaskRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Title == "" {
		writeValidation(w, "title is required")
		return
	}
	task, err := b.Data.CreateTask(r.Context(), req)
	respond(w, http.StatusCreated, task, err)
}

func (b *FakeBackend) getTask(w http.ResponseWriter, r *http.Request) {
	task, err := b.Data.GetTask(r.Context(), chi.URLParam(r, "id"))
	respond(w, http.StatusOK, task, err)
}

func (b *FakeBackend) updateTask(w http.ResponseWriter, r *http.Request) {
	var patch service.TaskPatch
	if !decode(w, r, &patch) {
		return
	}
	if patch.Status != nil && !service.ValidStatus(*patch.Status) {
		writeValidation(w, "Input should be 'open', 'in_progress' or 'done'")
		return
	}
	task, err := b.Data.UpdateTask(r.Context(), chi.URLParam(r, "id"), patch)
	respond(w, http.StatusOK, task, err)
}

func (b *FakeBackend) listComments(w http.ResponseWriter, r *http.Request) {
	comments, err := b.Data.ListComments(r.Context(), chi.URLParam(r, "id"))
	respond(w, http.StatusOK, comments, err)
}

func (b *FakeBackend) addComment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Body string `json:"body"`
	}
	if !decode(w, r, &req) {
		return
	}
	c, err := b.Data.AddComment(r.Context(), chi.URLParam(r, "id"), req.Body)
	respond(w, http.StatusCreated, c, err)
}

func (b *FakeBackend) listTeams(w http.ResponseWriter, r *http.Request) {
	page, err := b.Data.ListTeams(r.Context(), window(r))
	respond(w, http.StatusOK, page, err)
}

func (b *FakeBackend) createTeam(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decode(w, r, &req) {
		return
	}
	team, err := b.Data.CreateTeam(r.Context(), req.Name)
	respond(w, http.StatusCreated, team, err)
}

func (b *FakeBackend) getTeam(w http.ResponseWriter, r *http.Request) {
	team, err := b.Data.GetTeam(r.Context(), chi.URLParam(r, "id"))
	respond(w, http.StatusOK, team, err)
}

func (b *FakeBackend) addMember(w http.ResponseWriter, r *http.Request) {
	var req service.AddMemberRequest
	if !decode(w, r, &req) {
		return
	}
	if err := b.Data.AddTeamMember(r.Context(), chi.URLParam(r, "id"), req); err != nil {
		respond(w, 0, nil, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (b *FakeBackend) listNotifications(w http.ResponseWriter, r *http.Request) {
	unread, _ := strconv.ParseBool(r.URL.Query().Get("unread_only"))
	page, err := b.Data.ListNotifications(r.Context(), service.NotificationFilter{UnreadOnly: unread}, window(r))
	respond(w, http.StatusOK, page, err)
}

func (b *FakeBackend) teamAnalytics(w http.ResponseWriter, r *http.Request) {
	rollup, err := b.Data.TeamAnalytics(r.Context(), chi.URLParam(r, "id"))
	respond(w, http.StatusOK, rollup, err)
}

func (b *FakeBackend) projectAnalytics(w http.ResponseWriter, r *http.Request) {
	rollup, err := b.Data.ProjectAnalytics(r.Context(), chi.URLParam(r, "id"))
	respond(w, http.StatusOK, rollup, err)
}

func window(r *http.Request) service.Window {
	q := r.URL.Query()
	limit, err := strconv.Atoi(q.Get("limit"))
	if err != nil || limit <= 0 {
		limit = 20
	}
	offset, err := strconv.Atoi(q.Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return service.Window{Limit: limit, Offset: offset}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// respond writes v with status, or the backend error carried by err.
func respond(w http.ResponseWriter, status int, v any, err error) {
	if err == nil {
		writeJSON(w, status, v)
		return
	}
	var apiErr *apiclient.Error
	if errors.As(err, &apiErr) {
		writeDetail(w, apiErr.Status, apiErr.Message)
		return
	}
	writeDetail(w, http.StatusInternalServerError, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"detail": msg})
}

// writeValidation writes a 422 in the list-of-issues shape.
func writeValidation(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
		"detail": []map[string]any{{"loc": []string{"body"}, "msg": msg, "type": "value_error"}},
	})
}
