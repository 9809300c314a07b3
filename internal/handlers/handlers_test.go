package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/caltrack/internal/config"
	"github.com/ahmetcoskunkizilkaya/caltrack/internal/dto"
	"github.com/ahmetcoskunkizilkaya/caltrack/internal/flash"
	"github.com/ahmetcoskunkizilkaya/caltrack/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/caltrack/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/caltrack/internal/routes"
	"github.com/ahmetcoskunkizilkaya/caltrack/internal/services"
	"github.com/ahmetcoskunkizilkaya/caltrack/internal/store"
	"github.com/ahmetcoskunkizilkaya/caltrack/internal/web"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	t       *testing.T
	app     *fiber.App
	store   *store.MemoryStore
	auth    *services.AuthService
	cookies map[string]string
}

type pingFailStore struct{ *store.MemoryStore }

func (pingFailStore) Ping(context.Context) error { return errors.New("connection refused") }

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := &config.Config{
		JWTSecret:     "test-secret",
		SessionTTL:    time.Hour,
		SessionCookie: "caltrack_session",
		AdminEmails:   "boss@example.com",
		CORSOrigins:   "*",
	}
	st := store.NewMemoryStore()
	fl := flash.New(session.New())
	auth := services.NewAuthService(st, cfg)
	tracker := services.NewTrackerService(st, nil)

	app := fiber.New(fiber.Config{Views: web.NewEngine()})
	app.Use(middleware.CSRF(cfg))
	routes.Setup(app, cfg, auth, fl,
		handlers.NewAuthHandler(auth, cfg, fl),
		handlers.NewTrackerHandler(tracker, fl),
		handlers.NewAdminHandler(services.NewAdminService(st), fl),
		handlers.NewAPIHandler(tracker),
		handlers.NewHealthHandler(st),
	)
	return &harness{t: t, app: app, store: st, auth: auth, cookies: map[string]string{}}
}

func (h *harness) do(req *http.Request) *http.Response {
	h.t.Helper()
	for name, value := range h.cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}
	resp, err := h.app.Test(req, -1)
	require.NoError(h.t, err)
	for _, c := range resp.Cookies() {
		if c.MaxAge < 0 || c.Value == "" {
			delete(h.cookies, c.Name)
			continue
		}
		h.cookies[c.Name] = c.Value
	}
	return resp
}

func (h *harness) get(path string) (*http.Response, string) {
	h.t.Helper()
	resp := h.do(httptest.NewRequest(http.MethodGet, path, nil))
	body, err := io.ReadAll(resp.Body)
	require.NoError(h.t, err)
	return resp, string(body)
}

// post submits a form the way a browser would, echoing the CSRF cookie in
// the hidden field.
func (h *harness) post(path string, form url.Values) *http.Response {
	h.t.Helper()
	if _, ok := h.cookies[middleware.CSRFCookie]; !ok {
		h.get("/favicon.ico")
	}
	require.NotEmpty(h.t, h.cookies[middleware.CSRFCookie])
	form.Set(middleware.CSRFFormField, h.cookies[middleware.CSRFCookie])
	return h.postRaw(path, form)
}

func (h *harness) postRaw(path string, form url.Values) *http.Response {
	h.t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", fiber.MIMEApplicationForm)
	return h.do(req)
}

func (h *harness) postJSON(path, token string, body any) (*http.Response, []byte) {
	h.t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(h.t, err)
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(string(raw)))
	req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := h.app.Test(req, -1)
	require.NoError(h.t, err)
	out, err := io.ReadAll(resp.Body)
	require.NoError(h.t, err)
	return resp, out
}

func (h *harness) getJSON(path, token string, v any) *http.Response {
	h.t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := h.app.Test(req, -1)
	require.NoError(h.t, err)
	if v != nil {
		require.NoError(h.t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp
}

func (h *harness) register(email string) {
	h.t.Helper()
	resp := h.post("/register", url.Values{"email": {email}, "password": {"password123"}})
	require.Equal(h.t, fiber.StatusSeeOther, resp.StatusCode)
	require.Equal(h.t, "/profile", resp.Header.Get("Location"))
}

func assertRedirect(t *testing.T, resp *http.Response, location string) {
	t.Helper()
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, location, resp.Header.Get("Location"))
}

func TestIndexIsPublic(t *testing.T) {
	h := newHarness(t)
	resp, body := h.get("/")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "CalTrack")
	assert.Contains(t, body, "/register")
}

func TestRegisterSignsInAndShowsWelcome(t *testing.T) {
	h := newHarness(t)
	h.register("jane@example.com")

	resp, body := h.get("/profile")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Welcome! Let&#39;s set up your profile.")
	assert.Contains(t, body, "unknown")

	// flash is shown once
	_, body = h.get("/profile")
	assert.NotContains(t, body, "Welcome!")
}

func TestRegisterErrors(t *testing.T) {
	h := newHarness(t)

	resp := h.post("/register", url.Values{"email": {""}, "password": {""}})
	assertRedirect(t, resp, "/register")
	_, body := h.get("/register")
	assert.Contains(t, body, "Email and password are required.")

	resp = h.post("/register", url.Values{"email": {"long@example.com"}, "password": {strings.Repeat("x", 80)}})
	assertRedirect(t, resp, "/register")
	_, body = h.get("/register")
	assert.Contains(t, body, "Password must be at most 72 characters.")

	h.register("jane@example.com")
	h.cookies = map[string]string{}

	resp = h.post("/register", url.Values{"email": {"JANE@example.com"}, "password": {"password123"}})
	assertRedirect(t, resp, "/register")
	_, body = h.get("/register")
	assert.Contains(t, body, "Email is already registered.")
}

var csrfInput = regexp.MustCompile(`name="_csrf" value="([^"]+)"`)

func TestCSRFTokenRequiredOnFormPosts(t *testing.T) {
	h := newHarness(t)
	creds := url.Values{"email": {"jane@example.com"}, "password": {"password123"}}

	resp := h.postRaw("/register", creds)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	_, body := h.get("/register")
	m := csrfInput.FindStringSubmatch(body)
	require.Len(t, m, 2)

	resp = h.postRaw("/register", url.Values{"email": {"jane@example.com"}, "password": {"password123"}, "_csrf": {"forged"}})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	creds.Set("_csrf", m[1])
	resp = h.postRaw("/register", creds)
	assertRedirect(t, resp, "/profile")
}

func TestLogin(t *testing.T) {
	h := newHarness(t)
	h.register("jane@example.com")
	h.cookies = map[string]string{}

	resp := h.post("/login", url.Values{"email": {"jane@example.com"}, "password": {"wrong-password"}})
	assertRedirect(t, resp, "/login")
	_, body := h.get("/login")
	assert.Contains(t, body, "Invalid credentials.")

	resp = h.post("/login", url.Values{"email": {"jane@example.com"}, "password": {"password123"}})
	assertRedirect(t, resp, "/dashboard")
	resp, body = h.get("/dashboard")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Logged in successfully.")
}

func TestProtectedPagesRedirectToLogin(t *testing.T) {
	h := newHarness(t)
	for _, path := range []string{"/dashboard", "/profile", "/add", "/admin", "/logout"} {
		resp, _ := h.get(path)
		assertRedirect(t, resp, "/login")
	}
}

func TestProfileUpdateDrivesDashboardMetrics(t *testing.T) {
	h := newHarness(t)
	h.register("jane@example.com")

	resp := h.post("/profile", url.Values{
		"height_ft": {"5"},
		"height_in": {"7"},
		"weight_lb": {"154"},
		"age":       {"30"},
		"sex":       {"M"},
		"activity":  {"moderately_active"},
		"goal":      {"lose"},
	})
	assertRedirect(t, resp, "/dashboard")

	_, body := h.get("/dashboard")
	assert.Contains(t, body, "Profile updated.")
	assert.NotContains(t, body, "<strong>unknown</strong>")
	assert.Contains(t, body, "<strong>1617</strong>")
	assert.Contains(t, body, "<strong>2006</strong>")
	assert.Contains(t, body, "Fat-loss focus: try intervals.")

	_, body = h.get("/profile")
	assert.Contains(t, body, `value="154"`)
}

func TestProfileValidationError(t *testing.T) {
	h := newHarness(t)
	h.register("jane@example.com")

	resp := h.post("/profile", url.Values{"weight_lb": {"-5"}})
	assertRedirect(t, resp, "/profile")
	_, body := h.get("/profile")
	assert.Contains(t, body, "Weight cannot be negative.")
}

func TestAddEntry(t *testing.T) {
	h := newHarness(t)
	h.register("jane@example.com")

	_, body := h.get("/add")
	assert.Contains(t, body, time.Now().UTC().Format("2006-01-02"))

	resp := h.post("/add", url.Values{
		"calories_in":  {"2100"},
		"calories_out": {"350"},
		"weight_lb":    {"150"},
		"notes":        {"pasta night"},
	})
	assertRedirect(t, resp, "/dashboard")

	_, body = h.get("/dashboard")
	assert.Contains(t, body, "Entry added.")
	assert.Contains(t, body, "pasta night")
	assert.Contains(t, body, "<strong>1750</strong>")

	resp = h.post("/add", url.Values{"calories_in": {"lots"}})
	assertRedirect(t, resp, "/add")
}

func TestLogoutRevokesSession(t *testing.T) {
	h := newHarness(t)
	h.register("jane@example.com")
	token := h.cookies["caltrack_session"]
	require.NotEmpty(t, token)

	resp, _ := h.get("/logout")
	assertRedirect(t, resp, "/")
	_, body := h.get("/")
	assert.Contains(t, body, "You are logged out.")

	h.cookies["caltrack_session"] = token
	resp, _ = h.get("/dashboard")
	assertRedirect(t, resp, "/login")
}

func TestDeleteAccount(t *testing.T) {
	h := newHarness(t)
	h.register("jane@example.com")

	resp := h.post("/account/delete", url.Values{"password": {"nope"}})
	assertRedirect(t, resp, "/profile")

	resp = h.post("/account/delete", url.Values{"password": {"password123"}})
	assertRedirect(t, resp, "/")

	_, err := h.store.GetUserByEmail(context.Background(), "jane@example.com")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAdminPage(t *testing.T) {
	h := newHarness(t)
	h.register("jane@example.com")

	resp, _ := h.get("/admin")
	assertRedirect(t, resp, "/dashboard")
	_, body := h.get("/dashboard")
	assert.Contains(t, body, "Admin access required.")

	h.cookies = map[string]string{}
	h.register("boss@example.com")
	resp, body = h.get("/admin")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "jane@example.com")
	assert.Contains(t, body, "boss@example.com")
}

func apiLogin(t *testing.T, h *harness, email string) string {
	t.Helper()
	_, err := h.auth.Register(context.Background(), email, "password123")
	require.NoError(t, err)

	resp, body := h.postJSON("/api/auth/login", "", dto.LoginRequest{Email: email, Password: "password123"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var out dto.AuthResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, email, out.User.Email)
	require.NotEmpty(t, out.AccessToken)
	return out.AccessToken
}

func TestAPILoginRejectsBadPassword(t *testing.T) {
	h := newHarness(t)
	apiLogin(t, h, "jane@example.com")

	resp, _ := h.postJSON("/api/auth/login", "", dto.LoginRequest{Email: "jane@example.com", Password: "nope"})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAPIMetricsUnknownUntilProfileComplete(t *testing.T) {
	h := newHarness(t)
	token := apiLogin(t, h, "jane@example.com")

	var m map[string]any
	resp := h.getJSON("/api/me/metrics", token, &m)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Nil(t, m["bmi"])
	assert.Nil(t, m["target_calories"])

	var recs dto.RecommendationsResponse
	h.getJSON("/api/me/recommendations", token, &recs)
	assert.Equal(t, "maintain", recs.Goal)
	assert.Len(t, recs.Recommendations, 7)

	resp = h.getJSON("/api/me/metrics", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAPIEntries(t *testing.T) {
	h := newHarness(t)
	token := apiLogin(t, h, "jane@example.com")

	weight := 70.0
	resp, body := h.postJSON("/api/me/entries", token, dto.CreateEntryRequest{
		CaloriesIn: 1800, CaloriesOut: 300, WeightKG: &weight,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var created dto.EntryResponse
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Equal(t, 1500, created.Net)

	resp, _ = h.postJSON("/api/me/entries", token, dto.CreateEntryRequest{CaloriesIn: -1})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var list dto.EntryListResponse
	resp = h.getJSON("/api/me/entries?days=7", token, &list)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Len(t, list.Entries, 1)
	assert.Equal(t, created.ID, list.Entries[0].ID)

	resp = h.getJSON("/api/me/entries?days=0", token, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	h := newHarness(t)
	var out dto.HealthResponse
	resp := h.getJSON("/api/health", "", &out)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", out.DB)

	app := fiber.New()
	app.Get("/health", handlers.NewHealthHandler(pingFailStore{store.NewMemoryStore()}).Check)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}
