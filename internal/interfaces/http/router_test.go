package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Agromercado-api/internal/application/auth"
	"github.com/jhoicas/Agromercado-api/internal/application/dto"
	"github.com/jhoicas/Agromercado-api/internal/application/ports"
	"github.com/jhoicas/Agromercado-api/internal/domain/entity"
	apphttp "github.com/jhoicas/Agromercado-api/internal/interfaces/http"
)

type memUsers struct {
	mu    sync.Mutex
	users map[string]*entity.User
}

func (m *memUsers) Create(_ context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.Email] = u
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[email], nil
}

type countingObserver struct {
	mu     sync.Mutex
	routes []string
}

func (o *countingObserver) Observe(_, route string, _ int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.routes = append(o.routes, route)
}

func newRouterApp(t *testing.T) (*fiber.App, *countingObserver) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("clave-segura"), bcrypt.MinCost)
	require.NoError(t, err)
	users := &memUsers{users: map[string]*entity.User{
		"ana@finca.co": {
			ID: testUserID, Email: "ana@finca.co", PasswordHash: string(hash),
			Name: "Ana", Role: entity.RoleMember, Status: entity.UserStatusActive,
		},
	}}
	throttle := auth.NewMemoryThrottle(ports.LockoutPolicy{
		MaxAttempts: 2, Window: 15 * time.Minute, BaseLock: time.Minute, MaxLock: time.Hour,
	})
	authUC := auth.NewAuthUseCase(users, throttle, auth.JWTConfig{
		Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer,
	}, zerolog.Nop())

	obs := &countingObserver{}
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:      authUC,
		JWTSecret:   testJWTSecret,
		ServiceName: "agromercado-test",
		Gatherer:    prometheus.NewRegistry(),
		Observer:    obs,
		Log:         zerolog.Nop(),
	})
	return app, obs
}

func send(t *testing.T, app *fiber.App, method, path, body, authHeader string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeError(t *testing.T, resp *http.Response) dto.ErrorResponse {
	t.Helper()
	defer resp.Body.Close()
	var e dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
	return e
}

func TestRouter_HealthYMetrics(t *testing.T) {
	app, obs := newRouterApp(t)

	resp := send(t, app, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = send(t, app, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Contains(t, obs.routes, "/health")
}

func TestRouter_LoginYRegistro(t *testing.T) {
	app, _ := newRouterApp(t)

	resp := send(t, app, http.MethodPost, "/api/auth/login", `{"email":"ana@finca.co","password":"clave-segura"}`, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out dto.LoginResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.NotEmpty(t, out.Token)
	assert.Equal(t, entity.RoleMember, out.User.Role)

	resp = send(t, app, http.MethodPost, "/api/auth/register", `{"email":"nuevo@cliente.co","password":"123"}`, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", decodeError(t, resp).Code)

	resp = send(t, app, http.MethodPost, "/api/auth/register", `{"email":"ana@finca.co","password":"otra-clave-1"}`, "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestRouter_LoginBloqueado423(t *testing.T) {
	app, _ := newRouterApp(t)
	bad := `{"email":"ana@finca.co","password":"incorrecta"}`

	resp := send(t, app, http.MethodPost, "/api/auth/login", bad, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = send(t, app, http.MethodPost, "/api/auth/login", bad, "")
	assert.Equal(t, http.StatusLocked, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))
	assert.Equal(t, "ACCOUNT_LOCKED", decodeError(t, resp).Code)

	// bloqueada incluso con la clave correcta
	resp = send(t, app, http.MethodPost, "/api/auth/login", `{"email":"ana@finca.co","password":"clave-segura"}`, "")
	assert.Equal(t, http.StatusLocked, resp.StatusCode)
}

func TestRouter_PermisosPorRol(t *testing.T) {
	app, _ := newRouterApp(t)
	orderID := "9b2f1c1e-3a44-4d55-8e66-777788889999"

	resp := send(t, app, http.MethodPost, "/api/orders/"+orderID+"/approve", "", tokenForRole(t, "customer"))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = send(t, app, http.MethodPost, "/api/orders/"+orderID+"/audit-trail", `{"contributions":[]}`, tokenForRole(t, "member"))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = send(t, app, http.MethodGet, "/api/members/me/revenue", "", tokenForRole(t, "staff"))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = send(t, app, http.MethodPatch, "/api/orders/"+orderID+"/delivery", `{"status":"delivered"}`, tokenForRole(t, "staff"))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = send(t, app, http.MethodPost, "/api/users", `{}`, tokenForRole(t, "staff"))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRouter_ValidacionAntesDelCasoDeUso(t *testing.T) {
	app, _ := newRouterApp(t)
	staff := tokenForRole(t, "staff")

	resp := send(t, app, http.MethodPost, "/api/orders/no-es-uuid/approve", "", staff)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	orderID := "9b2f1c1e-3a44-4d55-8e66-777788889999"
	resp = send(t, app, http.MethodPost, "/api/orders/"+orderID+"/audit-trail", `{"contributions":[]}`, staff)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = send(t, app, http.MethodPost, "/api/orders/"+orderID+"/audit-trail/validate", `{"expected_producer_ids":[]}`, staff)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = send(t, app, http.MethodGet, "/api/members/"+orderID+"/revenue?from=01-03-2026", "", staff)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decodeError(t, resp).Message, "from")
}

func TestRouter_HealthSinBaseDeDatos(t *testing.T) {
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		ServiceName: "agromercado-test",
		HealthCheck: func(context.Context) error { return errors.New("connection refused") },
		Log:         zerolog.Nop(),
	})

	resp := send(t, app, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestRouter_LotesDelProductor(t *testing.T) {
	app, _ := newRouterApp(t)
	body := `{"product_id":"9b2f1c1e-3a44-4d55-8e66-777788889999","category":"kilo","quantity":"4.5"}`

	resp := send(t, app, http.MethodPost, "/api/members/me/stock-lots", body, tokenForRole(t, "staff"))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = send(t, app, http.MethodGet, "/api/members/me/stock-lots", "", tokenForRole(t, "customer"))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	member := tokenForRole(t, "member")
	resp = send(t, app, http.MethodPost, "/api/members/me/stock-lots", `{"product_id":"9b2f1c1e-3a44-4d55-8e66-777788889999","category":"caja","quantity":"1"}`, member)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decodeError(t, resp).Message, "category")

	resp = send(t, app, http.MethodPost, "/api/members/me/stock-lots", `{"category":"kilo","quantity":"1"}`, member)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decodeError(t, resp).Message, "product_name")

	resp = send(t, app, http.MethodGet, "/api/members/me/stock-lots?limit=500", "", member)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
