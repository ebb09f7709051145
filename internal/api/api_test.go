package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/whatscooking/backend/internal/api"
	"github.com/pageza/whatscooking/backend/internal/model"
	"github.com/pageza/whatscooking/backend/internal/router"
	"github.com/pageza/whatscooking/backend/internal/service"
	"github.com/pageza/whatscooking/backend/internal/testhelpers"
)

type stubLLM struct {
	response string
	err      error
}

func (s *stubLLM) Complete(context.Context, string) (string, error) {
	return s.response, s.err
}

type captureEmail struct {
	mu   sync.Mutex
	otps map[string]string
}

func (c *captureEmail) Send(to, subject, htmlBody, textBody string) error { return nil }

func (c *captureEmail) SendOTPEmail(to, code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.otps[to] = code
	return nil
}

func (c *captureEmail) SendWelcomeEmail(to, name string) error { return nil }

func (c *captureEmail) otpFor(to string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.otps[to]
}

type memStore struct {
	mu      sync.Mutex
	pending map[string]*service.PendingSignup
	otps    map[string]string
}

func (m *memStore) PutPending(_ context.Context, token string, p *service.PendingSignup, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending[token] = p
	return nil
}

func (m *memStore) GetPending(_ context.Context, token string) (*service.PendingSignup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.pending[token]; ok {
		return p, nil
	}
	return nil, errors.New("not found")
}

func (m *memStore) DeletePending(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pending, token)
	return nil
}

func (m *memStore) PutOTP(_ context.Context, email, code string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.otps[email] = code
	return nil
}

func (m *memStore) GetOTP(_ context.Context, email string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if code, ok := m.otps[email]; ok {
		return code, nil
	}
	return "", errors.New("not found")
}

func (m *memStore) DeleteOTP(_ context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.otps, email)
	return nil
}

type testApp struct {
	router *gin.Engine
	db     *gorm.DB
	llm    *stubLLM
	email  *captureEmail
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupTestDatabase(t)
	llm := &stubLLM{}
	email := &captureEmail{otps: make(map[string]string)}
	store := &memStore{
		pending: make(map[string]*service.PendingSignup),
		otps:    make(map[string]string),
	}

	authService := service.NewAuthService(db, store, email, "test-secret")
	recipeService := service.NewRecipeService(db, llm)

	r := router.SetupRouter(
		api.NewAuthHandler(authService),
		api.NewRecipeHandler(recipeService, authService),
		nil,
		[]string{"http://localhost:3000"},
	)

	return &testApp{router: r, db: db, llm: llm, email: email}
}

func (a *testApp) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

// signUpAndLogin drives the full OTP registration flow and returns a bearer
// token for the new account.
func (a *testApp) signUpAndLogin(t *testing.T, email string) string {
	t.Helper()

	w := a.do(t, http.MethodPost, "/api/v1/auth/signup", "", gin.H{
		"fullName": "Test User",
		"email":    email,
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	signupToken := decode(t, w)["signup_token"].(string)

	w = a.do(t, http.MethodPost, "/api/v1/auth/verify-otp", "", gin.H{
		"signupToken": signupToken,
		"email":       email,
		"otp":         a.email.otpFor(email),
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode(t, w)["token"].(string)
}

const generationResponse = `{
  "recipes": [
    {"name": "Lemon Pasta", "cuisine_type": "Italian", "servings": 2},
    {"name": "Herb Chicken", "cuisine_type": "French", "servings": 4}
  ]
}`

func TestGenerateEndpoint(t *testing.T) {
	app := newTestApp(t)
	app.llm.response = generationResponse

	w := app.do(t, http.MethodPost, "/api/v1/recipes/generate", "", gin.H{
		"ingredients": []string{"lemon", "pasta"},
		"sessionId":   "s1",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, 2, body["count"])
}

func TestGenerateEndpointRequiresIngredients(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodPost, "/api/v1/recipes/generate", "", gin.H{"ingredients": []string{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Ingredients are required", decode(t, w)["error"])
}

func TestGenerateEndpointParseFailure(t *testing.T) {
	app := newTestApp(t)
	app.llm.response = "Sorry, I cannot do that."

	w := app.do(t, http.MethodPost, "/api/v1/recipes/generate", "", gin.H{"ingredients": []string{"rocks"}})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to parse recipe data", decode(t, w)["error"])
}

func TestGenerateEndpointReportsPartialPersistence(t *testing.T) {
	app := newTestApp(t)
	app.llm.response = generationResponse

	// First recipe row inserts, the second one fails mid-batch.
	var inserts int
	require.NoError(t, app.db.Callback().Create().Before("gorm:create").Register("fail_second_recipe", func(tx *gorm.DB) {
		if _, ok := tx.Statement.Dest.(*model.Recipe); !ok {
			return
		}
		inserts++
		if inserts > 1 {
			tx.AddError(errors.New("disk full"))
		}
	}))

	w := app.do(t, http.MethodPost, "/api/v1/recipes/generate", "", gin.H{"ingredients": []string{"lemon"}})
	require.Equal(t, http.StatusInternalServerError, w.Code)

	body := decode(t, w)
	assert.Equal(t, "Failed to save recipes to database.", body["error"])
	assert.EqualValues(t, 1, body["persisted_count"])
}

func TestGenerateEndpointModelUnavailable(t *testing.T) {
	app := newTestApp(t)
	app.llm.err = service.ErrModelTimeout

	w := app.do(t, http.MethodPost, "/api/v1/recipes/generate", "", gin.H{"ingredients": []string{"rice"}})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestSaveRequiresAuth(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodPost, "/api/v1/recipes/00000000-0000-4000-8000-000000000000/save", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSaveRejectsNonDurableID(t *testing.T) {
	app := newTestApp(t)
	token := app.signUpAndLogin(t, "saver@example.com")

	// A time-based (version 1) UUID cannot have come from the database.
	w := app.do(t, http.MethodPost, "/api/v1/recipes/2c5ea4c0-4067-11e9-8bad-9b1deb4d3b7d/save", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["error"], "temporary identifier")

	w = app.do(t, http.MethodPost, "/api/v1/recipes/not-a-uuid/save", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSaveUnsaveFlow(t *testing.T) {
	app := newTestApp(t)
	app.llm.response = generationResponse
	token := app.signUpAndLogin(t, "cook@example.com")

	w := app.do(t, http.MethodPost, "/api/v1/recipes/generate", "", gin.H{"ingredients": []string{"lemon"}})
	require.Equal(t, http.StatusOK, w.Code)

	var generated struct {
		Recipes []struct {
			ID string `json:"id"`
		} `json:"recipes"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &generated))
	require.NotEmpty(t, generated.Recipes)
	recipeID := generated.Recipes[0].ID

	w = app.do(t, http.MethodPost, fmt.Sprintf("/api/v1/recipes/%s/save", recipeID), token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = app.do(t, http.MethodGet, "/api/v1/saved-recipes", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var savedList struct {
		Recipes []struct {
			ID string `json:"id"`
		} `json:"recipes"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &savedList))
	require.Len(t, savedList.Recipes, 1)
	assert.Equal(t, recipeID, savedList.Recipes[0].ID)

	w = app.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/recipes/%s/save", recipeID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = app.do(t, http.MethodGet, "/api/v1/saved-recipes", token, nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &savedList))
	assert.Empty(t, savedList.Recipes)
}

func TestSaveMissingRecipe(t *testing.T) {
	app := newTestApp(t)
	token := app.signUpAndLogin(t, "ghost@example.com")

	w := app.do(t, http.MethodPost, "/api/v1/recipes/00000000-0000-4000-8000-000000000000/save", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuthFlow(t *testing.T) {
	app := newTestApp(t)
	token := app.signUpAndLogin(t, "flow@example.com")

	w := app.do(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	profile := decode(t, w)
	assert.Equal(t, "flow@example.com", profile["email"])
	assert.Equal(t, "Test User", profile["full_name"])

	w = app.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    "flow@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = app.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    "flow@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = app.do(t, http.MethodPost, "/api/v1/auth/logout", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSignupDuplicateEmail(t *testing.T) {
	app := newTestApp(t)
	app.signUpAndLogin(t, "dup@example.com")

	w := app.do(t, http.MethodPost, "/api/v1/auth/signup", "", gin.H{
		"fullName": "Second",
		"email":    "dup@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestVerifyOTPWrongCodeEndpoint(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodPost, "/api/v1/auth/signup", "", gin.H{
		"fullName": "Test User",
		"email":    "otp@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	signupToken := decode(t, w)["signup_token"].(string)

	wrong := "000000"
	if app.email.otpFor("otp@example.com") == wrong {
		wrong = "000001"
	}

	w = app.do(t, http.MethodPost, "/api/v1/auth/verify-otp", "", gin.H{
		"signupToken": signupToken,
		"email":       "otp@example.com",
		"otp":         wrong,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
