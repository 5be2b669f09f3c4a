package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"blogicum/internal/cache"
	"blogicum/internal/config"
	"blogicum/internal/middleware"
	"blogicum/internal/models"
	"blogicum/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

const testPassword = "correct-horse-battery"

// harness runs the full app against in-memory SQLite, with miniredis
// backing the cache, token revocation and rate limits.
type harness struct {
	t     *testing.T
	db    *gorm.DB
	redis *miniredis.Miniredis
	srv   *Server
	app   *fiber.App
	fx    *testutil.Fixtures
	hash  string
}

func newHarness(t *testing.T, flags ...string) *harness {
	t.Helper()
	db := testutil.NewSQLiteDB(t)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := &config.Config{
		JWTSecret:    testSecret,
		JWTTTLHours:  1,
		Env:          "test",
		LoginURL:     "/auth/login",
		PostsPerPage: 10,
		TimeZone:     "UTC",
		FeatureFlags: strings.Join(flags, ","),
	}
	srv, err := NewServerWithDeps(cfg, db, rdb)
	require.NoError(t, err)
	t.Cleanup(func() { cache.SetClient(nil) })

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	return &harness{
		t:     t,
		db:    db,
		redis: mr,
		srv:   srv,
		app:   srv.App(),
		fx:    testutil.NewFixtures(t, db),
		hash:  string(hash),
	}
}

func (h *harness) user(username string) *models.User {
	return h.fx.User(username, h.hash)
}

func (h *harness) token(u *models.User) string {
	h.t.Helper()
	raw, _, err := middleware.IssueToken(testSecret, u.ID, u.Username, time.Hour)
	require.NoError(h.t, err)
	return raw
}

// do sends a request; a non-nil form is sent urlencoded.
func (h *harness) do(method, path string, form url.Values, token string) *http.Response {
	h.t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := h.app.Test(req, -1)
	require.NoError(h.t, err)
	h.t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (h *harness) doJSON(method, path string, payload any, token string) *http.Response {
	h.t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(h.t, err)
	req := httptest.NewRequest(method, path, strings.NewReader(string(raw)))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := h.app.Test(req, -1)
	require.NoError(h.t, err)
	h.t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// titles extracts object_list titles from a view document's page_obj.
func titles(t *testing.T, doc map[string]any) []string {
	t.Helper()
	page, ok := doc["page_obj"].(map[string]any)
	require.True(t, ok, "page_obj missing from %v", doc)
	list, _ := page["object_list"].([]any)
	out := make([]string, 0, len(list))
	for _, item := range list {
		out = append(out, item.(map[string]any)["title"].(string))
	}
	return out
}
