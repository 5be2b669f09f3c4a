package server

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"blogicum/internal/cache"
	"blogicum/internal/models"
	"blogicum/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfile(t *testing.T) {
	h := newHarness(t)
	alice := h.user("alice")
	bob := h.user("bob")
	travel := h.fx.Category("Travel", "travel", true)
	h.fx.Post(testutil.PostOpts{Title: "public", Author: alice, Category: travel})
	h.fx.Post(testutil.PostOpts{Title: "draft", Author: alice, Category: travel, Draft: true})
	h.fx.Post(testutil.PostOpts{Title: "bob's", Author: bob, Category: travel})

	t.Run("visitors see public posts", func(t *testing.T) {
		resp := h.do(http.MethodGet, "/profile/alice", nil, h.token(bob))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		doc := decode(t, resp)
		assert.Equal(t, "blog/profile.html", doc["template"])
		assert.Equal(t, "alice", doc["profile"].(map[string]any)["username"])
		assert.Equal(t, []string{"public"}, titles(t, doc))
	})

	t.Run("owner sees every post", func(t *testing.T) {
		doc := decode(t, h.do(http.MethodGet, "/profile/alice", nil, h.token(alice)))
		assert.ElementsMatch(t, []string{"public", "draft"}, titles(t, doc))
	})

	t.Run("unknown user", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/profile/nobody", nil, "").StatusCode)
	})
}

func TestProfileEdit(t *testing.T) {
	h := newHarness(t)
	alice := h.user("alice")
	h.user("bob")
	token := h.token(alice)

	doc := decode(t, h.do(http.MethodGet, "/profile/edit", nil, token))
	assert.Equal(t, "blog/user.html", doc["template"])
	assert.Equal(t, "alice", doc["form"].(map[string]any)["username"])

	t.Run("taken username", func(t *testing.T) {
		resp := h.do(http.MethodPost, "/profile/edit", url.Values{"username": {"bob"}}, token)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		errs := decode(t, resp)["form"].(map[string]any)["errors"].(map[string]any)
		assert.Contains(t, errs, "username")
	})

	t.Run("invalid email", func(t *testing.T) {
		resp := h.do(http.MethodPost, "/profile/edit", url.Values{"username": {"alice"}, "email": {"nope"}}, token)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		errs := decode(t, resp)["form"].(map[string]any)["errors"].(map[string]any)
		assert.Contains(t, errs, "email")
	})

	t.Run("rename", func(t *testing.T) {
		resp := h.do(http.MethodPost, "/profile/edit", url.Values{
			"username":   {"alicia"},
			"first_name": {"Alice"},
			"last_name":  {"Liddell"},
		}, token)
		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "/profile/alicia", resp.Header.Get("Location"))

		var stored models.User
		require.NoError(t, h.db.First(&stored, alice.ID).Error)
		assert.Equal(t, "alicia", stored.Username)
		assert.Equal(t, "Alice Liddell", stored.FullName())
	})
}

func TestProfileEdit_KeepsPasswordWhenUserIsCached(t *testing.T) {
	h := newHarness(t)
	alice := h.user("alice")
	token := h.token(alice)

	require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/profile/edit", nil, token).StatusCode)
	require.True(t, h.redis.Exists(cache.UserKey(alice.ID)))

	resp := h.do(http.MethodPost, "/profile/edit", url.Values{
		"username":   {"alice"},
		"first_name": {"Alice"},
	}, token)
	require.Equal(t, http.StatusFound, resp.StatusCode)

	var stored models.User
	require.NoError(t, h.db.First(&stored, alice.ID).Error)
	assert.Equal(t, h.hash, stored.Password)
	assert.Equal(t, "Alice", stored.FirstName)

	login := h.doJSON(http.MethodPost, "/auth/login", map[string]string{"username": "alice", "password": testPassword}, "")
	assert.Equal(t, http.StatusOK, login.StatusCode)
}

func TestProfileEdit_RenameRefreshesCachedViews(t *testing.T) {
	h := newHarness(t)
	alice := h.user("alice")
	travel := h.fx.Category("Travel", "travel", true)
	post := h.fx.Post(testutil.PostOpts{Title: "trip", Author: alice, Category: travel})
	token := h.token(alice)
	detailURL := fmt.Sprintf("/posts/%d", post.ID)

	doc := decode(t, h.do(http.MethodGet, detailURL, nil, token))
	assert.Equal(t, "alice", doc["post"].(map[string]any)["author"].(map[string]any)["username"])
	require.True(t, h.redis.Exists(cache.PostKey(post.ID)))

	resp := h.do(http.MethodPost, "/profile/edit", url.Values{"username": {"alicia"}}, token)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.False(t, h.redis.Exists(cache.PostKey(post.ID)))

	// The token still carries the old username.
	doc = decode(t, h.do(http.MethodGet, detailURL, nil, token))
	assert.Equal(t, "alicia", doc["post"].(map[string]any)["author"].(map[string]any)["username"])
	assert.Equal(t, "alicia", doc["user"].(map[string]any)["username"])
}

func TestAuthenticate_DeletedUserIsAnonymous(t *testing.T) {
	h := newHarness(t)
	ghost := h.user("ghost")
	token := h.token(ghost)
	require.NoError(t, h.db.Delete(&models.User{}, ghost.ID).Error)

	resp := h.do(http.MethodGet, "/profile/edit", nil, token)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Location"), "/auth/login")
}
