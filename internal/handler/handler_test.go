package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/service-window/backend/internal/cache"
	"github.com/sysu-ecnc-dev/service-window/backend/internal/config"
	"github.com/sysu-ecnc-dev/service-window/backend/internal/domain"
	"github.com/sysu-ecnc-dev/service-window/backend/internal/optimizer"
)

type fakeStore struct {
	mu        sync.Mutex
	users     map[int64]*domain.User
	runs      map[int64]*domain.OptimizationRun
	nextRunID int64
}

func newFakeStore(users ...*domain.User) *fakeStore {
	s := &fakeStore{
		users: make(map[int64]*domain.User),
		runs:  make(map[int64]*domain.OptimizationRun),
	}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeStore) GetUserByID(id int64) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (s *fakeStore) GetUserByUsername(username string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *fakeStore) GetAllUsers() ([]*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]*domain.User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, user)
	}
	return users, nil
}

func (s *fakeStore) CreateUser(user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Username == user.Username {
			return &pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"}
		}
		if existing.Email == user.Email {
			return &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
		}
	}

	user.ID = int64(len(s.users) + 100)
	user.IsActive = true
	user.CreatedAt = time.Now()
	s.users[user.ID] = user
	return nil
}

func (s *fakeStore) InsertOptimizationRun(run *domain.OptimizationRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextRunID++
	run.ID = s.nextRunID
	run.CreatedAt = time.Now()
	s.runs[run.ID] = run
	return nil
}

func (s *fakeStore) GetOptimizationRunByID(id int64) (*domain.OptimizationRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.runs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return run, nil
}

func (s *fakeStore) GetOptimizationRunsByUserID(userID int64) ([]*domain.OptimizationRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	runs := make([]*domain.OptimizationRun, 0)
	for _, run := range s.runs {
		if run.CreatedBy == userID {
			runs = append(runs, run)
		}
	}
	return runs, nil
}

func (s *fakeStore) DeleteOptimizationRun(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.runs, id)
	return nil
}

type fakeCache struct {
	mu        sync.Mutex
	solutions map[string]*optimizer.Solution
	gets      int
	sets      int
}

func newFakeCache() *fakeCache {
	return &fakeCache{solutions: make(map[string]*optimizer.Solution)}
}

func (c *fakeCache) Get(ctx context.Context, key string) (*optimizer.Solution, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gets++
	solution, ok := c.solutions[key]
	if !ok {
		return nil, cache.ErrMiss
	}
	return solution, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, solution *optimizer.Solution) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sets++
	c.solutions[key] = solution
	return nil
}

type fakePublisher struct {
	mu       sync.Mutex
	messages []domain.MailMessage
}

func (p *fakePublisher) Publish(ctx context.Context, msg domain.MailMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.messages = append(p.messages, msg)
	return nil
}

type testEnv struct {
	handler   *Handler
	store     *fakeStore
	cache     *fakeCache
	publisher *fakePublisher
}

var (
	testOperator = &domain.User{ID: 1, Username: "operator", FullName: "张伟", Email: "operator@example.com", Role: domain.RoleOperator, IsActive: true}
	testOther    = &domain.User{ID: 2, Username: "other", FullName: "李娜", Email: "other@example.com", Role: domain.RoleOperator, IsActive: true}
	testAdmin    = &domain.User{ID: 3, Username: "admin", FullName: "管理员", Email: "admin@example.com", Role: domain.RoleAdmin, IsActive: true}
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.Expiration = 1
	cfg.NewUser.PasswordLength = 12
	cfg.Optimizer.PopulationSize = 10
	cfg.Optimizer.Generations = 100
	cfg.Optimizer.MutationRate = 0.1
	cfg.Optimizer.MaxCustomers = 100
	cfg.Optimizer.MaxWindows = 50
	cfg.Optimizer.MaxPopulationSize = 500
	cfg.Optimizer.MaxGenerations = 1000
	return cfg
}

func newTestEnv(t *testing.T, users ...*domain.User) *testEnv {
	t.Helper()

	env := &testEnv{
		store:     newFakeStore(users...),
		cache:     newFakeCache(),
		publisher: &fakePublisher{},
	}

	h, err := NewHandler(testConfig(), env.store, env.publisher, env.cache)
	require.NoError(t, err)
	h.RegisterRoutes()
	env.handler = h

	return env
}

type testResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (e *testEnv) do(t *testing.T, method, path string, body io.Reader, contentType string, cookie *http.Cookie) (*httptest.ResponseRecorder, testResponse) {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	e.handler.Mux.ServeHTTP(rec, req)

	var resp testResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return rec, resp
}

func (e *testEnv) cookieFor(t *testing.T, user *domain.User) *http.Cookie {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AuthClaims{
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   strconv.FormatInt(user.ID, 10),
		},
	})
	ss, err := token.SignedString([]byte(e.handler.config.JWT.Secret))
	require.NoError(t, err)

	return &http.Cookie{Name: tokenCookieName, Value: ss}
}
